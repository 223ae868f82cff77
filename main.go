// Copyright (c) 2025 BVK Chaitanya

package main

import (
	"context"
	"log"
	"os"

	"github.com/daanonymous12/real-time-stock-sim/cli"
	"github.com/daanonymous12/real-time-stock-sim/envfile"
	"github.com/daanonymous12/real-time-stock-sim/subcmds"
	"github.com/daanonymous12/real-time-stock-sim/subcmds/account"
	"github.com/daanonymous12/real-time-stock-sim/subcmds/db"
	"github.com/daanonymous12/real-time-stock-sim/subcmds/taq"
)

func main() {
	if err := envfile.UpdateEnv(".stocksim.env", envfile.SearchCurrentDir(true), envfile.VariableNamePrefix("STOCKSIM_")); err != nil {
		log.Fatal(err)
	}

	accountCmds := []cli.Command{
		new(account.Add),
		new(account.List),
		new(account.Get),
		new(account.Activity),
	}

	dbCmds := []cli.Command{
		new(db.Get),
		new(db.Set),
		new(db.Delete),
		new(db.List),
		new(db.Backup),
		new(db.Restore),
	}

	taqCmds := []cli.Command{
		new(taq.Export),
	}

	cmds := []cli.Command{
		new(subcmds.Run),
		new(subcmds.Status),
		new(subcmds.Reload),
		new(subcmds.Pause),
		new(subcmds.Resume),
		cli.CommandGroup("account", "Manage trading accounts", accountCmds...),
		cli.CommandGroup("db", "View/update database directly", dbCmds...),
		cli.CommandGroup("taq", "Convert TAQ quote dumps", taqCmds...),
	}
	if err := cli.Run(context.Background(), cmds, os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}
