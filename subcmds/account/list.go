// Copyright (c) 2025 BVK Chaitanya

package account

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/daanonymous12/real-time-stock-sim/cli"
	"github.com/daanonymous12/real-time-stock-sim/store"
	"github.com/daanonymous12/real-time-stock-sim/subcmds/cmdutil"
)

type List struct {
	cmdutil.DBFlags

	ticker string
	user   string
}

func (c *List) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("list", flag.ContinueOnError)
	c.DBFlags.SetFlags(fset)
	fset.StringVar(&c.ticker, "ticker", "", "when non-empty, lists only accounts for this ticker")
	fset.StringVar(&c.user, "user", "", "when non-empty, lists only accounts for this user")
	return fset, cli.CmdFunc(c.run)
}

func (c *List) Synopsis() string {
	return "Prints trading accounts in the database"
}

func (c *List) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("command takes no arguments")
	}

	db, closer, err := c.DBFlags.GetDatabase(ctx)
	if err != nil {
		return err
	}
	defer closer()

	accounts, err := store.New(db).LoadAccounts(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 1, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Ticker\tUser\tCash\tShares\tTotalValue\tPrevPrice\tProfit\tUpdateTime\t\n")
	for _, a := range accounts {
		if len(c.ticker) != 0 && a.Ticker != c.ticker {
			continue
		}
		if len(c.user) != 0 && a.User != c.user {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\t%d\t\n", a.Ticker, a.User, a.Cash.StringFixed(2), a.Shares, a.TotalValue.StringFixed(2), a.PreviousPrice.StringFixed(2), a.Profit.StringFixed(2), a.UpdateTime)
	}
	return tw.Flush()
}
