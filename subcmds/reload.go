// Copyright (c) 2025 BVK Chaitanya

package subcmds

import (
	"context"
	"flag"
	"fmt"

	"github.com/daanonymous12/real-time-stock-sim/api"
	"github.com/daanonymous12/real-time-stock-sim/cli"
	"github.com/daanonymous12/real-time-stock-sim/subcmds/cmdutil"
)

type Reload struct {
	cmdutil.ClientFlags
}

func (c *Reload) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("reload", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	return fset, cli.CmdFunc(c.run)
}

func (c *Reload) Synopsis() string {
	return "Reloads the daemon's account baseline from the database"
}

func (c *Reload) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("command takes no arguments")
	}

	req := &api.ReloadRequest{}
	resp, err := cmdutil.Post[api.ReloadResponse](ctx, &c.ClientFlags, api.ReloadPath, req)
	if err != nil {
		return err
	}
	fmt.Printf("Num Accounts: %d\n", resp.NumAccounts)
	return nil
}
