// Copyright (c) 2025 BVK Chaitanya

package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/daanonymous12/real-time-stock-sim/account"
	"github.com/daanonymous12/real-time-stock-sim/quote"
)

// Outcome pairs an evaluated account with the quote and decision that
// produced it.
type Outcome struct {
	Account  *account.Account
	Decision account.Decision
	Quote    *quote.Quote
}

// Result partitions one cycle's evaluations. Traded outcomes replace
// their baseline records on merge; Inactive outcomes are recorded to the
// activity log only. Accounts whose ticker had no quote this cycle are
// not part of the result and stay untouched in the baseline.
type Result struct {
	Traded   []*Outcome
	Inactive []*Outcome

	// NumSkipped counts accounts skipped over evaluation errors, such
	// as a zero quote price.
	NumSkipped int
}

type pair struct {
	account *account.Account
	quote   *quote.Quote
}

// Reconcile inner-joins the batch quotes to the baseline accounts on
// ticker and evaluates every joined pair. Quotes for tickers with no
// accounts are dropped silently; a join producing zero pairs is a valid
// cycle with an empty result.
//
// Evaluations fan out over numWorkers goroutines. Each account is
// independent, so pairs are evaluated without coordination; all workers
// finish before the result is assembled and nothing reads the result
// until then.
func Reconcile(ctx context.Context, quotes []*quote.Quote, base *Baseline, numWorkers int) (*Result, error) {
	if base == nil {
		return nil, errors.New("baseline cannot be nil")
	}
	if numWorkers < 1 {
		numWorkers = 1
	}

	var pairs []pair
	for _, q := range quotes {
		for _, a := range base.ByTicker(q.Ticker) {
			pairs = append(pairs, pair{account: a, quote: q})
		}
	}

	outcomes := make([]*Outcome, len(pairs))
	errMap := make([]error, len(pairs))

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := w; i < len(pairs); i += numWorkers {
				next, decision, err := account.Evaluate(pairs[i].account, pairs[i].quote)
				if err != nil {
					errMap[i] = err
					continue
				}
				outcomes[i] = &Outcome{
					Account:  next,
					Decision: decision,
					Quote:    pairs[i].quote,
				}
			}
		}(w)
	}
	wg.Wait()

	result := new(Result)
	for i, o := range outcomes {
		if o == nil {
			if err := errMap[i]; errors.Is(err, account.ErrZeroPrice) {
				slog.WarnContext(ctx, "skipping account for this cycle", "account", pairs[i].account, "error", err)
				result.NumSkipped++
				continue
			}
			return nil, errMap[i]
		}
		if o.Decision.Traded() {
			result.Traded = append(result.Traded, o)
			continue
		}
		result.Inactive = append(result.Inactive, o)
	}
	return result, nil
}

// TradedAccounts returns the account states from the traded outcomes.
func (r *Result) TradedAccounts() []*account.Account {
	accounts := make([]*account.Account, 0, len(r.Traded))
	for _, o := range r.Traded {
		accounts = append(accounts, o.Account)
	}
	return accounts
}
