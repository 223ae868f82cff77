// Copyright (c) 2025 BVK Chaitanya

package account

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"text/tabwriter"

	"github.com/daanonymous12/real-time-stock-sim/account"
	"github.com/daanonymous12/real-time-stock-sim/cli"
	"github.com/daanonymous12/real-time-stock-sim/gobs"
	"github.com/daanonymous12/real-time-stock-sim/store"
	"github.com/daanonymous12/real-time-stock-sim/subcmds/cmdutil"
)

type Activity struct {
	cmdutil.DBFlags

	ticker string
	user   string

	from int64
	till int64

	tradesOnly bool
}

func (c *Activity) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("activity", flag.ContinueOnError)
	c.DBFlags.SetFlags(fset)
	fset.StringVar(&c.ticker, "ticker", "", "when non-empty, prints only records for this ticker")
	fset.StringVar(&c.user, "user", "", "when non-empty, prints only records for this user")
	fset.Int64Var(&c.from, "from", 0, "lowest quote time to include")
	fset.Int64Var(&c.till, "till", math.MaxInt64, "highest quote time to include")
	fset.BoolVar(&c.tradesOnly, "trades-only", false, "when true, holds are not printed")
	return fset, cli.CmdFunc(c.run)
}

func (c *Activity) Synopsis() string {
	return "Prints the account activity log"
}

func (c *Activity) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("command takes no arguments")
	}

	db, closer, err := c.DBFlags.GetDatabase(ctx)
	if err != nil {
		return err
	}
	defer closer()

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 1, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "QuoteTime\tTicker\tUser\tDecision\tPrice\tCash\tShares\tProfit\t\n")
	print := func(v *gobs.Activity) error {
		if len(c.ticker) != 0 && v.Ticker != c.ticker {
			return nil
		}
		if len(c.user) != 0 && v.User != c.user {
			return nil
		}
		if c.tradesOnly && !account.Decision(v.Decision).Traded() {
			return nil
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%d\t%s\t\n", v.QuoteTime, v.Ticker, v.User, v.Decision, v.QuotePrice.StringFixed(2), v.Account.Cash.StringFixed(2), v.Account.Shares, v.Account.Profit.StringFixed(2))
		return nil
	}
	if err := store.New(db).ScanActivity(ctx, c.from, c.till, print); err != nil {
		return err
	}
	return tw.Flush()
}
