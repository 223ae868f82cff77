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

type Resume struct {
	cmdutil.ClientFlags
}

func (c *Resume) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("resume", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	return fset, cli.CmdFunc(c.run)
}

func (c *Resume) Synopsis() string {
	return "Resumes a paused simulation cycle loop"
}

func (c *Resume) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("command takes no arguments")
	}

	req := &api.ResumeRequest{}
	resp, err := cmdutil.Post[api.ResumeResponse](ctx, &c.ClientFlags, api.ResumePath, req)
	if err != nil {
		return err
	}
	fmt.Printf("State: %s\n", resp.FinalState)
	return nil
}
