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

type Pause struct {
	cmdutil.ClientFlags
}

func (c *Pause) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("pause", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	return fset, cli.CmdFunc(c.run)
}

func (c *Pause) Synopsis() string {
	return "Pauses the simulation cycle loop"
}

func (c *Pause) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("command takes no arguments")
	}

	req := &api.PauseRequest{}
	resp, err := cmdutil.Post[api.PauseResponse](ctx, &c.ClientFlags, api.PausePath, req)
	if err != nil {
		return err
	}
	fmt.Printf("State: %s\n", resp.FinalState)
	return nil
}
