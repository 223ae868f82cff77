// Copyright (c) 2025 BVK Chaitanya

package db

import (
	"context"
	"flag"
	"fmt"

	"github.com/bvkgo/kv"
	"github.com/daanonymous12/real-time-stock-sim/cli"
	"github.com/daanonymous12/real-time-stock-sim/subcmds/cmdutil"
)

type Delete struct {
	cmdutil.DBFlags
}

func (c *Delete) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("delete", flag.ContinueOnError)
	c.DBFlags.SetFlags(fset)
	return fset, cli.CmdFunc(c.run)
}

func (c *Delete) Synopsis() string {
	return "Deletes a key in the database"
}

func (c *Delete) run(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("needs one (key) argument")
	}

	db, closer, err := c.DBFlags.GetDatabase(ctx)
	if err != nil {
		return err
	}
	defer closer()

	del := func(ctx context.Context, rw kv.ReadWriter) error {
		return rw.Delete(ctx, args[0])
	}
	return kv.WithReadWriter(ctx, db, del)
}
