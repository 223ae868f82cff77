// Copyright (c) 2025 BVK Chaitanya

// Package account implements subcommands to create and inspect trading
// accounts in the database.
package account

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/bvkgo/kv"
	"github.com/daanonymous12/real-time-stock-sim/account"
	"github.com/daanonymous12/real-time-stock-sim/cli"
	"github.com/daanonymous12/real-time-stock-sim/store"
	"github.com/daanonymous12/real-time-stock-sim/subcmds/cmdutil"
	"github.com/shopspring/decimal"
)

type Add struct {
	cmdutil.DBFlags

	ticker string
	user   string

	buyThreshold  string
	sellThreshold string
	cash          string
	previousPrice string

	force bool
}

func (c *Add) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("add", flag.ContinueOnError)
	c.DBFlags.SetFlags(fset)
	fset.StringVar(&c.ticker, "ticker", "", "stock ticker symbol for the account")
	fset.StringVar(&c.user, "user", "", "user id owning the account")
	fset.StringVar(&c.buyThreshold, "buy-threshold", "", "price drop that triggers a buy")
	fset.StringVar(&c.sellThreshold, "sell-threshold", "", "price rise that triggers a sell")
	fset.StringVar(&c.cash, "cash", "", "initial cash balance")
	fset.StringVar(&c.previousPrice, "previous-price", "", "initial reference price")
	fset.BoolVar(&c.force, "force", false, "when true, overwrites an existing account")
	return fset, cli.CmdFunc(c.run)
}

func (c *Add) Synopsis() string {
	return "Adds a new trading account to the database"
}

func (c *Add) CommandHelp() string {
	return `

Command "add" creates a trading account for a (ticker, user) pair. The
running daemon picks up new accounts after a "reload".

Example:

    stocksim account add -ticker AAPL -user alice \
        -cash 10000 -buy-threshold 5 -sell-threshold 5 -previous-price 160

`
}

func (c *Add) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("command takes no arguments")
	}
	if len(c.ticker) == 0 || len(c.user) == 0 {
		return fmt.Errorf("ticker and user flags cannot be empty")
	}

	parse := func(name, value string) (decimal.Decimal, error) {
		if len(value) == 0 {
			return decimal.Zero, fmt.Errorf("%s flag cannot be empty", name)
		}
		v, err := decimal.NewFromString(value)
		if err != nil {
			return decimal.Zero, fmt.Errorf("invalid %s value %q: %w", name, value, err)
		}
		return v, nil
	}

	a := &account.Account{
		Ticker: c.ticker,
		User:   c.user,
	}
	var err error
	if a.BuyThreshold, err = parse("buy-threshold", c.buyThreshold); err != nil {
		return err
	}
	if a.SellThreshold, err = parse("sell-threshold", c.sellThreshold); err != nil {
		return err
	}
	if a.Cash, err = parse("cash", c.cash); err != nil {
		return err
	}
	if a.PreviousPrice, err = parse("previous-price", c.previousPrice); err != nil {
		return err
	}
	if err := a.Check(); err != nil {
		return fmt.Errorf("invalid account: %w", err)
	}

	db, closer, err := c.DBFlags.GetDatabase(ctx)
	if err != nil {
		return err
	}
	defer closer()

	add := func(ctx context.Context, rw kv.ReadWriter) error {
		if !c.force {
			_, err := store.LoadAccount(ctx, rw, c.ticker, c.user)
			if err == nil {
				return fmt.Errorf("account %q already exists, use the force flag to overwrite: %w", a.Key(), os.ErrExist)
			}
			if !errors.Is(err, os.ErrNotExist) {
				return err
			}
		}
		return store.SaveAccount(ctx, rw, a)
	}
	if err := kv.WithReadWriter(ctx, db, add); err != nil {
		return err
	}

	fmt.Printf("%s\n", a)
	return nil
}
