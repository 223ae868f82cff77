// Copyright (c) 2025 BVK Chaitanya

// Package store persists accounts and per-cycle activity records in the
// key-value database. It is a pure data-access boundary; all trading
// decisions happen before a Store method is called.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"

	"github.com/bvkgo/kv"
	"github.com/daanonymous12/real-time-stock-sim/account"
	"github.com/daanonymous12/real-time-stock-sim/gobs"
	"github.com/daanonymous12/real-time-stock-sim/kvutil"
	"github.com/daanonymous12/real-time-stock-sim/reconcile"
	"github.com/google/uuid"
)

const (
	// AccountsKeyspace holds one record per (ticker, user) key.
	AccountsKeyspace = "/accounts/"

	// ActivityKeyspace is the append-only audit log of evaluated
	// accounts, ordered by quote tick id.
	ActivityKeyspace = "/activity/"

	// StateKey holds the engine's cycle summary.
	StateKey = "/server/state"
)

type Store struct {
	db kv.Database
}

func New(db kv.Database) *Store {
	return &Store{db: db}
}

func (s *Store) Database() kv.Database {
	return s.db
}

// AccountKey returns the database key for a (ticker, user) pair.
func AccountKey(ticker, user string) string {
	return path.Join(AccountsKeyspace, ticker, user)
}

// LoadAccounts reads the full account set in a single snapshot.
func (s *Store) LoadAccounts(ctx context.Context) ([]*account.Account, error) {
	var accounts []*account.Account
	begin, end := kvutil.PathRange(AccountsKeyspace)
	loader := func(ctx context.Context, r kv.Reader, key string, v *gobs.Account) error {
		a := (*account.Account)(v)
		if err := a.Check(); err != nil {
			return fmt.Errorf("invalid account at key %q: %w", key, err)
		}
		accounts = append(accounts, a)
		return nil
	}
	if err := kvutil.AscendDB(ctx, s.db, begin, end, loader); err != nil {
		return nil, fmt.Errorf("could not load accounts: %w", err)
	}
	return accounts, nil
}

// SaveAccount creates or overwrites one account record.
func SaveAccount(ctx context.Context, rw kv.ReadWriter, a *account.Account) error {
	if err := a.Check(); err != nil {
		return err
	}
	v := gobs.Account(*a)
	return kvutil.Set(ctx, rw, AccountKey(a.Ticker, a.User), &v)
}

// LoadAccount reads one account record by its (ticker, user) key.
func LoadAccount(ctx context.Context, r kv.Reader, ticker, user string) (*account.Account, error) {
	v, err := kvutil.Get[gobs.Account](ctx, r, AccountKey(ticker, user))
	if err != nil {
		return nil, err
	}
	return (*account.Account)(v), nil
}

// SaveCycle persists one cycle's outcome as a single transaction:
// traded accounts overwrite their records, every outcome is appended to
// the activity log and the server state is rewritten. Nothing is
// persisted if any write fails, so a failed cycle leaves the table
// exactly as the previous cycle left it.
func (s *Store) SaveCycle(ctx context.Context, result *reconcile.Result, state *gobs.ServerState) error {
	save := func(ctx context.Context, rw kv.ReadWriter) error {
		for _, o := range result.Traded {
			if err := SaveAccount(ctx, rw, o.Account); err != nil {
				return fmt.Errorf("could not save traded account %s: %w", o.Account.Key(), err)
			}
		}
		for _, o := range result.Traded {
			if err := appendActivity(ctx, rw, o); err != nil {
				return err
			}
		}
		for _, o := range result.Inactive {
			if err := appendActivity(ctx, rw, o); err != nil {
				return err
			}
		}
		return kvutil.Set(ctx, rw, StateKey, state)
	}
	if err := kv.WithReadWriter(ctx, s.db, save); err != nil {
		return fmt.Errorf("could not commit cycle: %w", err)
	}
	return nil
}

func appendActivity(ctx context.Context, rw kv.ReadWriter, o *reconcile.Outcome) error {
	v := gobs.Account(*o.Account)
	record := &gobs.Activity{
		Ticker:     o.Account.Ticker,
		User:       o.Account.User,
		Decision:   string(o.Decision),
		QuoteTime:  o.Quote.Time,
		QuotePrice: o.Quote.Price,
		Account:    &v,
	}
	key := path.Join(ActivityKeyspace, fmt.Sprintf("%019d", o.Quote.Time), uuid.New().String())
	if err := kvutil.Set(ctx, rw, key, record); err != nil {
		return fmt.Errorf("could not append activity for %s: %w", o.Account.Key(), err)
	}
	return nil
}

// LoadState returns the engine state summary saved by the last
// successful cycle, or a zero state if no cycle has completed yet.
func (s *Store) LoadState(ctx context.Context) (*gobs.ServerState, error) {
	state, err := kvutil.GetDB[gobs.ServerState](ctx, s.db, StateKey)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return new(gobs.ServerState), nil
		}
		return nil, err
	}
	return state, nil
}

// ScanActivity iterates the activity log in quote time order within the
// given tick id range.
func (s *Store) ScanActivity(ctx context.Context, from, till int64, fn func(*gobs.Activity) error) error {
	begin := path.Join(ActivityKeyspace, fmt.Sprintf("%019d", from))
	end := path.Join(ActivityKeyspace, fmt.Sprintf("%019d", till)) + string('/'+1)
	iter := func(ctx context.Context, r kv.Reader, key string, v *gobs.Activity) error {
		return fn(v)
	}
	return kvutil.AscendDB(ctx, s.db, begin, end, iter)
}
