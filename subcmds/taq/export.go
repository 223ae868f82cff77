// Copyright (c) 2025 BVK Chaitanya

// Package taq implements subcommands to convert TAQ quote dumps into
// CSV files.
package taq

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/daanonymous12/real-time-stock-sim/cli"
	"github.com/daanonymous12/real-time-stock-sim/taqfile"
)

type Export struct {
	output string
}

func (c *Export) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("export", flag.ContinueOnError)
	fset.StringVar(&c.output, "output", "", "path to the output csv file (default=stdout)")
	return fset, cli.CmdFunc(c.run)
}

func (c *Export) Synopsis() string {
	return "Converts TAQ dump archives into a CSV file"
}

func (c *Export) CommandHelp() string {
	return `

Command "export" reads gzip compressed TAQ quote dump files and writes
the quotes out as CSV rows of the form time,ticker,volume,price sorted
by time. The argument may be a single archive or a directory of
archives.

`
}

func (c *Export) run(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("command takes one (archive file or directory) argument")
	}

	fi, err := os.Stat(args[0])
	if err != nil {
		return fmt.Errorf("could not stat %q: %w", args[0], err)
	}

	var rows []taqfile.Row
	if fi.IsDir() {
		rows, err = taqfile.DecodeDir(args[0])
	} else {
		rows, err = taqfile.DecodeArchive(args[0])
	}
	if err != nil {
		return err
	}
	rows = taqfile.Prepare(rows)

	out := os.Stdout
	if len(c.output) != 0 {
		fp, err := os.OpenFile(c.output, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(0644))
		if err != nil {
			return fmt.Errorf("could not open output file %q: %w", c.output, err)
		}
		defer fp.Close()
		out = fp
	}

	bw := bufio.NewWriter(out)
	if err := taqfile.WriteCSV(bw, rows); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("could not flush csv output: %w", err)
	}
	return nil
}
