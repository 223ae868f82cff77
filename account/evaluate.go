// Copyright (c) 2025 BVK Chaitanya

package account

import (
	"errors"
	"fmt"

	"github.com/daanonymous12/real-time-stock-sim/quote"
	"github.com/shopspring/decimal"
)

// ErrZeroPrice is returned when an evaluation would divide by a zero
// quote price. Callers skip the account for the cycle instead of
// failing the whole batch.
var ErrZeroPrice = errors.New("quote price is zero")

type Decision string

const (
	Buy  Decision = "BUY"
	Sell Decision = "SELL"
	Hold Decision = "HOLD"
)

// Traded returns true if the decision mutated the account.
func (d Decision) Traded() bool {
	return d == Buy || d == Sell
}

// Evaluate applies the threshold rule to one account and one quote and
// returns the next account state. It is a pure function: the input
// account is never modified and the result is deterministic for a given
// (account, quote) pair.
//
// Both rule conditions are checked against the same immutable snapshot
// of the account, so a sell can never observe a value mutated by a buy
// within the same evaluation:
//
//   - Buy fires iff previous_price - price > buy_threshold. The account
//     buys floor(cash/price) shares, so cash never goes negative.
//   - Sell fires iff price - previous_price > sell_threshold. The whole
//     position is closed and shares*price - total_value is realized as
//     profit.
//
// The two conditions are mutually exclusive for non-negative thresholds.
// PreviousPrice and UpdateTime move only when a buy or sell fires.
func Evaluate(a *Account, q *quote.Quote) (*Account, Decision, error) {
	if a.Ticker != q.Ticker {
		return nil, "", fmt.Errorf("account ticker %q does not match quote ticker %q", a.Ticker, q.Ticker)
	}
	if q.Price.IsZero() {
		return nil, "", fmt.Errorf("cannot evaluate account %s: %w", a.Key(), ErrZeroPrice)
	}

	next := *a

	buys := a.PreviousPrice.Sub(q.Price).GreaterThan(a.BuyThreshold)
	sells := q.Price.Sub(a.PreviousPrice).GreaterThan(a.SellThreshold)

	decision := Hold
	switch {
	case buys:
		nshares := a.Cash.Div(q.Price).Floor()
		cost := nshares.Mul(q.Price)
		next.Shares = a.Shares + nshares.IntPart()
		next.TotalValue = a.TotalValue.Add(cost)
		next.Cash = a.Cash.Sub(cost)
		decision = Buy

	case sells:
		proceeds := decimal.NewFromInt(a.Shares).Mul(q.Price)
		next.Profit = a.Profit.Add(proceeds.Sub(a.TotalValue))
		next.Cash = a.Cash.Add(a.TotalValue)
		next.TotalValue = decimal.Zero
		next.Shares = 0
		decision = Sell
	}

	if decision.Traded() {
		next.PreviousPrice = q.Price
		next.UpdateTime = q.Time
	}
	return &next, decision, nil
}
