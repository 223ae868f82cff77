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

type Status struct {
	cmdutil.ClientFlags
}

func (c *Status) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("status", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	return fset, cli.CmdFunc(c.run)
}

func (c *Status) Synopsis() string {
	return "Prints the daemon's simulation status"
}

func (c *Status) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("command takes no arguments")
	}

	req := &api.StatusRequest{}
	resp, err := cmdutil.Post[api.StatusResponse](ctx, &c.ClientFlags, api.StatusPath, req)
	if err != nil {
		return err
	}

	fmt.Printf("State: %s\n", resp.JobState)
	fmt.Printf("Num Accounts: %d\n", resp.NumAccounts)
	fmt.Printf("Num Cycles: %d\n", resp.NumCycles)
	if resp.LastCycleTime != 0 {
		fmt.Printf("Last Cycle Time: %d\n", resp.LastCycleTime)
	}
	return nil
}
