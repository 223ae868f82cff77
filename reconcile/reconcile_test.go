// Copyright (c) 2025 BVK Chaitanya

package reconcile

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/daanonymous12/real-time-stock-sim/account"
	"github.com/daanonymous12/real-time-stock-sim/quote"
	"github.com/shopspring/decimal"
)

func newTestAccount(ticker, user string) *account.Account {
	return &account.Account{
		Ticker:        ticker,
		User:          user,
		BuyThreshold:  decimal.NewFromInt(5),
		SellThreshold: decimal.NewFromInt(5),
		Cash:          decimal.NewFromInt(1000),
		PreviousPrice: decimal.NewFromInt(100),
	}
}

func newTestQuote(ticker, price string, tick int64) *quote.Quote {
	return &quote.Quote{
		Ticker: ticker,
		Time:   tick,
		Price:  decimal.RequireFromString(price),
		Volume: 100,
	}
}

func TestReconcile(t *testing.T) {
	ctx := context.Background()

	base, err := NewBaseline([]*account.Account{
		newTestAccount("AAPL", "alice"),
		newTestAccount("AAPL", "bob"),
		newTestAccount("MSFT", "alice"),
		newTestAccount("GOOG", "alice"),
	})
	if err != nil {
		t.Fatal(err)
	}

	quotes := []*quote.Quote{
		newTestQuote("AAPL", "90", 1),  // buys for alice and bob
		newTestQuote("MSFT", "98", 1),  // hold
		newTestQuote("TSLA", "200", 1), // no accounts
	}

	result, err := Reconcile(ctx, quotes, base, 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Traded) != 2 {
		t.Fatalf("wanted 2 traded outcomes, got %d", len(result.Traded))
	}
	if len(result.Inactive) != 1 {
		t.Fatalf("wanted 1 inactive outcome, got %d", len(result.Inactive))
	}
	if result.NumSkipped != 0 {
		t.Fatalf("wanted 0 skipped, got %d", result.NumSkipped)
	}

	for _, o := range result.Traded {
		if o.Decision != account.Buy {
			t.Fatalf("wanted %s, got %s", account.Buy, o.Decision)
		}
		if o.Account.Shares != 11 {
			t.Fatalf("wanted 11 shares, got %d", o.Account.Shares)
		}
	}
	if o := result.Inactive[0]; o.Account.Ticker != "MSFT" || o.Decision != account.Hold {
		t.Fatalf("wanted a MSFT hold, got %s %s", o.Account.Ticker, o.Decision)
	}

	// The GOOG account had no quote this cycle; merge must carry it over
	// untouched while the traded accounts are replaced.
	next, err := base.Merge(result.TradedAccounts())
	if err != nil {
		t.Fatal(err)
	}
	if next.NumAccounts() != 4 {
		t.Fatalf("wanted 4 accounts after merge, got %d", next.NumAccounts())
	}
	goog, ok := next.Get(account.Key("GOOG", "alice"))
	if !ok {
		t.Fatal("GOOG account dropped by merge")
	}
	if !goog.Equal(newTestAccount("GOOG", "alice")) {
		t.Fatalf("untouched account changed: %s", goog)
	}
	aapl, ok := next.Get(account.Key("AAPL", "alice"))
	if !ok {
		t.Fatal("AAPL account dropped by merge")
	}
	if aapl.Shares != 11 {
		t.Fatalf("merge did not replace the traded account: %s", aapl)
	}
	// The input baseline must be left alone.
	old, _ := base.Get(account.Key("AAPL", "alice"))
	if old.Shares != 0 {
		t.Fatalf("merge modified the old baseline: %s", old)
	}
}

func TestReconcileEmptyJoin(t *testing.T) {
	ctx := context.Background()

	base, err := NewBaseline([]*account.Account{newTestAccount("AAPL", "alice")})
	if err != nil {
		t.Fatal(err)
	}

	result, err := Reconcile(ctx, []*quote.Quote{newTestQuote("TSLA", "200", 1)}, base, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Traded) != 0 || len(result.Inactive) != 0 || result.NumSkipped != 0 {
		t.Fatalf("wanted an empty result, got %+v", result)
	}
}

func TestReconcileZeroPrice(t *testing.T) {
	ctx := context.Background()

	base, err := NewBaseline([]*account.Account{
		newTestAccount("AAPL", "alice"),
		newTestAccount("MSFT", "alice"),
	})
	if err != nil {
		t.Fatal(err)
	}

	quotes := []*quote.Quote{
		{Ticker: "AAPL", Time: 1, Price: decimal.Zero},
		newTestQuote("MSFT", "90", 1),
	}
	result, err := Reconcile(ctx, quotes, base, 2)
	if err != nil {
		t.Fatal(err)
	}
	// The zero price account is skipped; the rest of the cycle proceeds.
	if result.NumSkipped != 1 {
		t.Fatalf("wanted 1 skipped account, got %d", result.NumSkipped)
	}
	if len(result.Traded) != 1 {
		t.Fatalf("wanted 1 traded outcome, got %d", len(result.Traded))
	}
}

func TestReconcileParallel(t *testing.T) {
	ctx := context.Background()

	var accounts []*account.Account
	var quotes []*quote.Quote
	for i := 0; i < 100; i++ {
		ticker := fmt.Sprintf("TICK%03d", i)
		for _, user := range []string{"alice", "bob", "carol"} {
			accounts = append(accounts, newTestAccount(ticker, user))
		}
		price := fmt.Sprintf("%d", 80+i%40)
		quotes = append(quotes, newTestQuote(ticker, price, int64(i+1)))
	}
	base, err := NewBaseline(accounts)
	if err != nil {
		t.Fatal(err)
	}

	// Worker count must not change the outcome.
	serial, err := Reconcile(ctx, quotes, base, 1)
	if err != nil {
		t.Fatal(err)
	}
	parallel, err := Reconcile(ctx, quotes, base, 16)
	if err != nil {
		t.Fatal(err)
	}

	sortOutcomes := func(os []*Outcome) {
		sort.Slice(os, func(i, j int) bool {
			return os[i].Account.Key() < os[j].Account.Key()
		})
	}
	sortOutcomes(serial.Traded)
	sortOutcomes(parallel.Traded)
	if len(serial.Traded) != len(parallel.Traded) {
		t.Fatalf("traded count mismatch: %d != %d", len(serial.Traded), len(parallel.Traded))
	}
	for i := range serial.Traded {
		a, b := serial.Traded[i].Account, parallel.Traded[i].Account
		if !a.Equal(b) {
			t.Fatalf("outcome mismatch at %s: %s != %s", a.Key(), a, b)
		}
	}
	if len(serial.Inactive) != len(parallel.Inactive) {
		t.Fatalf("inactive count mismatch: %d != %d", len(serial.Inactive), len(parallel.Inactive))
	}
}

func TestMergeUnknownAccount(t *testing.T) {
	base, err := NewBaseline([]*account.Account{newTestAccount("AAPL", "alice")})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := base.Merge([]*account.Account{newTestAccount("TSLA", "alice")}); err == nil {
		t.Fatal("wanted an error for a traded account missing from the baseline")
	}
}

func TestNewBaselineDuplicates(t *testing.T) {
	accounts := []*account.Account{
		newTestAccount("AAPL", "alice"),
		newTestAccount("AAPL", "alice"),
	}
	if _, err := NewBaseline(accounts); err == nil {
		t.Fatal("wanted an error for duplicate account keys")
	}
}
