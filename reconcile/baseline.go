// Copyright (c) 2025 BVK Chaitanya

// Package reconcile joins a batch of quotes against the in-memory
// account baseline, evaluates the threshold rule for every joined pair
// and merges traded results back into a new baseline.
package reconcile

import (
	"fmt"
	"sort"

	"github.com/daanonymous12/real-time-stock-sim/account"
)

// Baseline is an immutable snapshot of the full account set keyed by
// (ticker, user). The cycle driver replaces the whole snapshot after a
// successful merge; nothing mutates a Baseline after construction.
type Baseline struct {
	accounts map[string]*account.Account

	tickerMap map[string][]*account.Account
}

func NewBaseline(accounts []*account.Account) (*Baseline, error) {
	b := &Baseline{
		accounts:  make(map[string]*account.Account),
		tickerMap: make(map[string][]*account.Account),
	}
	for _, a := range accounts {
		if err := a.Check(); err != nil {
			return nil, fmt.Errorf("invalid account %s: %w", a.Key(), err)
		}
		if _, ok := b.accounts[a.Key()]; ok {
			return nil, fmt.Errorf("duplicate account key %s", a.Key())
		}
		b.accounts[a.Key()] = a
		b.tickerMap[a.Ticker] = append(b.tickerMap[a.Ticker], a)
	}
	return b, nil
}

func (b *Baseline) Get(key string) (*account.Account, bool) {
	a, ok := b.accounts[key]
	return a, ok
}

// ByTicker returns all accounts trading the given ticker.
func (b *Baseline) ByTicker(ticker string) []*account.Account {
	return b.tickerMap[ticker]
}

func (b *Baseline) NumAccounts() int {
	return len(b.accounts)
}

// Accounts returns all accounts sorted by key.
func (b *Baseline) Accounts() []*account.Account {
	accounts := make([]*account.Account, 0, len(b.accounts))
	for _, a := range b.accounts {
		accounts = append(accounts, a)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].Key() < accounts[j].Key()
	})
	return accounts
}

// Merge returns a new baseline where every account in traded replaces
// the stale record for the same key. Accounts without a replacement are
// carried over untouched. Merge is replace-on-key; it can never create a
// duplicate or drop an account that was not traded.
func (b *Baseline) Merge(traded []*account.Account) (*Baseline, error) {
	next := make([]*account.Account, 0, len(b.accounts))
	replaced := make(map[string]*account.Account)
	for _, a := range traded {
		if _, ok := b.accounts[a.Key()]; !ok {
			return nil, fmt.Errorf("traded account %s is not in the baseline", a.Key())
		}
		replaced[a.Key()] = a
	}
	for key, a := range b.accounts {
		if r, ok := replaced[key]; ok {
			next = append(next, r)
			continue
		}
		next = append(next, a)
	}
	return NewBaseline(next)
}
