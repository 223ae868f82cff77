// Copyright (c) 2025 BVK Chaitanya

package account

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"

	"github.com/daanonymous12/real-time-stock-sim/api"
	"github.com/daanonymous12/real-time-stock-sim/cli"
	"github.com/daanonymous12/real-time-stock-sim/subcmds/cmdutil"
)

type Get struct {
	cmdutil.ClientFlags
}

func (c *Get) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("get", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	return fset, cli.CmdFunc(c.run)
}

func (c *Get) Synopsis() string {
	return "Fetches an account from the running daemon"
}

func (c *Get) run(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("needs two (ticker, user) arguments")
	}

	req := &api.AccountRequest{
		Ticker: args[0],
		User:   args[1],
	}
	resp, err := cmdutil.Post[api.AccountResponse](ctx, &c.ClientFlags, api.AccountPath, req)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(resp.Account, "", "  ")
	if err != nil {
		return err
	}
	fmt.Printf("%s\n", data)
	return nil
}
