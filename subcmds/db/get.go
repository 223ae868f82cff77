// Copyright (c) 2025 BVK Chaitanya

// Package db implements subcommands to inspect and manage the key-value
// database.
package db

import (
	"context"
	"encoding/gob"
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/bvkgo/kv"
	"github.com/daanonymous12/real-time-stock-sim/cli"
	"github.com/daanonymous12/real-time-stock-sim/gobs"
	"github.com/daanonymous12/real-time-stock-sim/subcmds/cmdutil"
)

type Get struct {
	cmdutil.DBFlags

	valueType string
}

func (c *Get) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("get", flag.ContinueOnError)
	c.DBFlags.SetFlags(fset)
	fset.StringVar(&c.valueType, "value-type", "", "gob type name for the value")
	return fset, cli.CmdFunc(c.run)
}

func (c *Get) Synopsis() string {
	return "Prints the value of a key in the database"
}

func (c *Get) run(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("needs one (key) argument")
	}

	db, closer, err := c.DBFlags.GetDatabase(ctx)
	if err != nil {
		return err
	}
	defer closer()

	get := func(ctx context.Context, r kv.Reader) error {
		v, err := r.Get(ctx, args[0])
		if err != nil {
			return err
		}

		if len(c.valueType) == 0 {
			data, err := io.ReadAll(v)
			if err != nil {
				return err
			}
			fmt.Printf("%x\n", data)
			return nil
		}

		value, err := gobs.NewByTypename(c.valueType)
		if err != nil {
			return err
		}
		if err := gob.NewDecoder(v).Decode(value); err != nil {
			return fmt.Errorf("could not gob-decode value at key %q: %w", args[0], err)
		}
		data, err := json.Marshal(value)
		if err != nil {
			return err
		}
		fmt.Printf("%s\n", data)
		return nil
	}
	return kv.WithReader(ctx, db, get)
}
