// Copyright (c) 2025 BVK Chaitanya

package server

import (
	"context"
	"testing"
	"time"

	"github.com/bvkgo/kv"
	"github.com/bvkgo/kv/kvmemdb"
	"github.com/daanonymous12/real-time-stock-sim/account"
	"github.com/daanonymous12/real-time-stock-sim/api"
	"github.com/daanonymous12/real-time-stock-sim/job"
	"github.com/daanonymous12/real-time-stock-sim/store"
	"github.com/shopspring/decimal"
)

type fakeSource struct {
	msgCh chan []byte
}

func (s *fakeSource) Receive(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, context.Cause(ctx)
	case msg := <-s.msgCh:
		return msg, nil
	}
}

func (s *fakeSource) Close() error {
	return nil
}

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

func saveTestAccount(ctx context.Context, t *testing.T, db kv.Database, a *account.Account) {
	t.Helper()
	save := func(ctx context.Context, rw kv.ReadWriter) error {
		return store.SaveAccount(ctx, rw, a)
	}
	if err := kv.WithReadWriter(ctx, db, save); err != nil {
		t.Fatal(err)
	}
}

func waitForCycles(ctx context.Context, t *testing.T, s *Server, n int64) {
	t.Helper()
	for i := 0; i < 500; i++ {
		status, err := s.doStatus(ctx, &api.StatusRequest{})
		if err != nil {
			t.Fatal(err)
		}
		if status.NumCycles >= n {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for cycle %d", n)
}

func TestServerCycle(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()

	saveTestAccount(ctx, t, db, newTestAccount("AAPL", "alice"))

	source := &fakeSource{msgCh: make(chan []byte, 16)}
	source.msgCh <- []byte(`[1, "AAPL", 100, "90"]`)

	s, err := New(db, source, &Options{BatchInterval: 50 * time.Millisecond, NumWorkers: 2})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if err := s.Start(ctx); err != nil {
		t.Fatal(err)
	}
	waitForCycles(ctx, t, s, 1)

	// The buy is persisted and visible through the api.
	resp, err := s.doGetAccount(ctx, &api.AccountRequest{Ticker: "AAPL", User: "alice"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Account.Shares != 11 {
		t.Fatalf("wanted 11 shares, got %d", resp.Account.Shares)
	}

	// The merged baseline drives the next cycle.
	source.msgCh <- []byte(`[2, "AAPL", 100, "120"]`)
	waitForCycles(ctx, t, s, 2)

	resp, err = s.doGetAccount(ctx, &api.AccountRequest{Ticker: "AAPL", User: "alice"})
	if err != nil {
		t.Fatal(err)
	}
	if v := resp.Account.Profit.StringFixed(2); v != "330.00" {
		t.Fatalf("wanted profit 330.00, got %s", v)
	}

	status, err := s.doStatus(ctx, &api.StatusRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if status.JobState != string(job.Resumed) {
		t.Fatalf("wanted %s, got %s", job.Resumed, status.JobState)
	}
	if status.NumCycles < 2 || status.LastCycleTime != 2 || status.NumAccounts != 1 {
		t.Fatalf("unexpected status: %+v", status)
	}

	if err := s.Stop(ctx); err != nil {
		t.Fatal(err)
	}
}

func TestServerReload(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()

	saveTestAccount(ctx, t, db, newTestAccount("AAPL", "alice"))

	source := &fakeSource{msgCh: make(chan []byte, 16)}
	s, err := New(db, source, &Options{BatchInterval: 50 * time.Millisecond, NoResume: true})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if err := s.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if n := s.Baseline().NumAccounts(); n != 1 {
		t.Fatalf("wanted 1 account, got %d", n)
	}

	// An account added out-of-band becomes visible after a reload.
	saveTestAccount(ctx, t, db, newTestAccount("MSFT", "bob"))

	resp, err := s.doReload(ctx, &api.ReloadRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if resp.NumAccounts != 2 {
		t.Fatalf("wanted 2 accounts, got %d", resp.NumAccounts)
	}
	if _, ok := s.Baseline().Get(account.Key("MSFT", "bob")); !ok {
		t.Fatal("reloaded baseline is missing the new account")
	}
}

func TestServerPauseResume(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()

	saveTestAccount(ctx, t, db, newTestAccount("AAPL", "alice"))

	source := &fakeSource{msgCh: make(chan []byte, 16)}
	s, err := New(db, source, &Options{BatchInterval: 50 * time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if err := s.Start(ctx); err != nil {
		t.Fatal(err)
	}

	presp, err := s.doPause(ctx, &api.PauseRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if presp.FinalState != string(job.Paused) {
		t.Fatalf("wanted %s, got %s", job.Paused, presp.FinalState)
	}

	// A paused engine consumes no batches.
	source.msgCh <- []byte(`[1, "AAPL", 100, "90"]`)
	time.Sleep(200 * time.Millisecond)
	state, err := store.New(db).LoadState(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if state.NumCycles != 0 {
		t.Fatalf("paused engine ran %d cycles", state.NumCycles)
	}

	rresp, err := s.doResume(ctx, &api.ResumeRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if rresp.FinalState != string(job.Resumed) {
		t.Fatalf("wanted %s, got %s", job.Resumed, rresp.FinalState)
	}
	waitForCycles(ctx, t, s, 1)
}

func TestServerPauseSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()

	saveTestAccount(ctx, t, db, newTestAccount("AAPL", "alice"))
	opts := &Options{BatchInterval: 50 * time.Millisecond}

	s1, err := New(db, &fakeSource{msgCh: make(chan []byte, 16)}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if err := s1.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := s1.doPause(ctx, &api.PauseRequest{}); err != nil {
		t.Fatal(err)
	}
	if err := s1.Close(); err != nil {
		t.Fatal(err)
	}

	// An explicit pause holds across a restart.
	s2, err := New(db, &fakeSource{msgCh: make(chan []byte, 16)}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if err := s2.Start(ctx); err != nil {
		t.Fatal(err)
	}
	status, err := s2.doStatus(ctx, &api.StatusRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if status.JobState != string(job.Paused) {
		t.Fatalf("wanted %s after restart, got %s", job.Paused, status.JobState)
	}

	// A resume request clears the hold; a plain shutdown does not
	// re-establish it.
	if _, err := s2.doResume(ctx, &api.ResumeRequest{}); err != nil {
		t.Fatal(err)
	}
	if err := s2.Stop(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s2.Close(); err != nil {
		t.Fatal(err)
	}

	s3, err := New(db, &fakeSource{msgCh: make(chan []byte, 16)}, opts)
	if err != nil {
		t.Fatal(err)
	}
	defer s3.Close()
	if err := s3.Start(ctx); err != nil {
		t.Fatal(err)
	}
	status, err = s3.doStatus(ctx, &api.StatusRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if status.JobState != string(job.Resumed) {
		t.Fatalf("wanted %s after restart, got %s", job.Resumed, status.JobState)
	}
}
