// Copyright (c) 2025 BVK Chaitanya

package store

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/bvkgo/kv"
	"github.com/bvkgo/kv/kvmemdb"
	"github.com/daanonymous12/real-time-stock-sim/account"
	"github.com/daanonymous12/real-time-stock-sim/gobs"
	"github.com/daanonymous12/real-time-stock-sim/quote"
	"github.com/daanonymous12/real-time-stock-sim/reconcile"
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

func TestAccountRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()

	want := newTestAccount("AAPL", "alice")
	save := func(ctx context.Context, rw kv.ReadWriter) error {
		return SaveAccount(ctx, rw, want)
	}
	if err := kv.WithReadWriter(ctx, db, save); err != nil {
		t.Fatal(err)
	}

	var got *account.Account
	load := func(ctx context.Context, r kv.Reader) error {
		v, err := LoadAccount(ctx, r, "AAPL", "alice")
		if err != nil {
			return err
		}
		got = v
		return nil
	}
	if err := kv.WithReader(ctx, db, load); err != nil {
		t.Fatal(err)
	}
	if !got.Equal(want) {
		t.Fatalf("wanted %s, got %s", want, got)
	}

	missing := func(ctx context.Context, r kv.Reader) error {
		_, err := LoadAccount(ctx, r, "AAPL", "nobody")
		return err
	}
	if err := kv.WithReader(ctx, db, missing); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("wanted ErrNotExist, got %v", err)
	}
}

func TestLoadAccounts(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()
	s := New(db)

	want := []*account.Account{
		newTestAccount("AAPL", "alice"),
		newTestAccount("AAPL", "bob"),
		newTestAccount("MSFT", "alice"),
	}
	save := func(ctx context.Context, rw kv.ReadWriter) error {
		for _, a := range want {
			if err := SaveAccount(ctx, rw, a); err != nil {
				return err
			}
		}
		// An unrelated key must not confuse the account scan.
		return rw.Set(ctx, "/server/state", strings.NewReader("x"))
	}
	if err := kv.WithReadWriter(ctx, db, save); err != nil {
		t.Fatal(err)
	}

	accounts, err := s.LoadAccounts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(accounts) != len(want) {
		t.Fatalf("wanted %d accounts, got %d", len(want), len(accounts))
	}
	for i, a := range accounts {
		if !a.Equal(want[i]) {
			t.Fatalf("account %d: wanted %s, got %s", i, want[i], a)
		}
	}
}

func TestSaveCycle(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()
	s := New(db)

	alice := newTestAccount("AAPL", "alice")
	save := func(ctx context.Context, rw kv.ReadWriter) error {
		return SaveAccount(ctx, rw, alice)
	}
	if err := kv.WithReadWriter(ctx, db, save); err != nil {
		t.Fatal(err)
	}

	q := &quote.Quote{Ticker: "AAPL", Time: 10, Price: decimal.NewFromInt(90), Volume: 100}
	traded, decision, err := account.Evaluate(alice, q)
	if err != nil {
		t.Fatal(err)
	}
	result := &reconcile.Result{
		Traded: []*reconcile.Outcome{{Account: traded, Decision: decision, Quote: q}},
	}
	state := &gobs.ServerState{NumCycles: 1, LastCycleTime: 10, NumAccounts: 1}
	if err := s.SaveCycle(ctx, result, state); err != nil {
		t.Fatal(err)
	}

	// The account record is overwritten.
	accounts, err := s.LoadAccounts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(accounts) != 1 || !accounts[0].Equal(traded) {
		t.Fatalf("wanted the traded account, got %v", accounts)
	}

	// The server state is rewritten.
	loaded, err := s.LoadState(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.NumCycles != 1 || loaded.LastCycleTime != 10 || loaded.NumAccounts != 1 {
		t.Fatalf("wanted the saved state, got %+v", loaded)
	}

	// One activity record exists for the trade.
	var activities []*gobs.Activity
	collect := func(v *gobs.Activity) error {
		activities = append(activities, v)
		return nil
	}
	if err := s.ScanActivity(ctx, 0, 100, collect); err != nil {
		t.Fatal(err)
	}
	if len(activities) != 1 {
		t.Fatalf("wanted 1 activity record, got %d", len(activities))
	}
	v := activities[0]
	if v.Ticker != "AAPL" || v.User != "alice" || v.Decision != string(account.Buy) {
		t.Fatalf("unexpected activity record: %+v", v)
	}
	if v.QuoteTime != 10 {
		t.Fatalf("wanted quote time 10, got %d", v.QuoteTime)
	}
	if v.Account == nil || v.Account.Shares != traded.Shares {
		t.Fatalf("activity must carry the post-trade account: %+v", v.Account)
	}
}

func TestSaveCycleInactive(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()
	s := New(db)

	alice := newTestAccount("AAPL", "alice")
	save := func(ctx context.Context, rw kv.ReadWriter) error {
		return SaveAccount(ctx, rw, alice)
	}
	if err := kv.WithReadWriter(ctx, db, save); err != nil {
		t.Fatal(err)
	}

	q := &quote.Quote{Ticker: "AAPL", Time: 20, Price: decimal.NewFromInt(98), Volume: 100}
	next, decision, err := account.Evaluate(alice, q)
	if err != nil {
		t.Fatal(err)
	}
	if decision != account.Hold {
		t.Fatalf("wanted %s, got %s", account.Hold, decision)
	}
	result := &reconcile.Result{
		Inactive: []*reconcile.Outcome{{Account: next, Decision: decision, Quote: q}},
	}
	if err := s.SaveCycle(ctx, result, &gobs.ServerState{NumCycles: 1}); err != nil {
		t.Fatal(err)
	}

	// Holds are logged but never rewrite the account record.
	var activities []*gobs.Activity
	collect := func(v *gobs.Activity) error {
		activities = append(activities, v)
		return nil
	}
	if err := s.ScanActivity(ctx, 0, 100, collect); err != nil {
		t.Fatal(err)
	}
	if len(activities) != 1 || activities[0].Decision != string(account.Hold) {
		t.Fatalf("wanted 1 hold record, got %v", activities)
	}

	accounts, err := s.LoadAccounts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(accounts) != 1 || !accounts[0].Equal(alice) {
		t.Fatalf("inactive outcome must not change the account record: %v", accounts)
	}
}

func TestScanActivityRange(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()
	s := New(db)

	for _, tick := range []int64{5, 10, 15} {
		a := newTestAccount("AAPL", "alice")
		q := &quote.Quote{Ticker: "AAPL", Time: tick, Price: decimal.NewFromInt(98), Volume: 1}
		result := &reconcile.Result{
			Inactive: []*reconcile.Outcome{{Account: a, Decision: account.Hold, Quote: q}},
		}
		if err := s.SaveCycle(ctx, result, &gobs.ServerState{}); err != nil {
			t.Fatal(err)
		}
	}

	var ticks []int64
	collect := func(v *gobs.Activity) error {
		ticks = append(ticks, v.QuoteTime)
		return nil
	}
	if err := s.ScanActivity(ctx, 6, 15, collect); err != nil {
		t.Fatal(err)
	}
	if len(ticks) != 2 || ticks[0] != 10 || ticks[1] != 15 {
		t.Fatalf("wanted ticks [10 15], got %v", ticks)
	}
}

func TestLoadStateDefault(t *testing.T) {
	ctx := context.Background()
	s := New(kvmemdb.New())

	state, err := s.LoadState(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if state.NumCycles != 0 || state.LastCycleTime != 0 || state.NumAccounts != 0 {
		t.Fatalf("wanted a zero state, got %+v", state)
	}
}
