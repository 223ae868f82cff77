// Copyright (c) 2025 BVK Chaitanya

package db

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/bvkgo/kv"
	"github.com/daanonymous12/real-time-stock-sim/cli"
	"github.com/daanonymous12/real-time-stock-sim/subcmds/cmdutil"
)

type Set struct {
	cmdutil.DBFlags
}

func (c *Set) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("set", flag.ContinueOnError)
	c.DBFlags.SetFlags(fset)
	return fset, cli.CmdFunc(c.run)
}

func (c *Set) Synopsis() string {
	return "Updates the value for a key in the database"
}

func (c *Set) run(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("needs two (key, value) arguments")
	}

	db, closer, err := c.DBFlags.GetDatabase(ctx)
	if err != nil {
		return err
	}
	defer closer()

	set := func(ctx context.Context, rw kv.ReadWriter) error {
		return rw.Set(ctx, args[0], strings.NewReader(args[1]))
	}
	return kv.WithReadWriter(ctx, db, set)
}
