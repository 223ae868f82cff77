// Copyright (c) 2025 BVK Chaitanya

// Package account implements the per-(ticker, user) trading account and
// the threshold rule that advances it from one quote to the next.
package account

import (
	"fmt"
	"log/slog"
	"path"

	"github.com/daanonymous12/real-time-stock-sim/gobs"
)

type Account gobs.Account

// Key returns the unique (ticker, user) identity for the account. There
// is exactly one persisted record per key.
func Key(ticker, user string) string {
	return path.Join(ticker, user)
}

func (a *Account) Key() string {
	return Key(a.Ticker, a.User)
}

func (a *Account) String() string {
	return fmt.Sprintf("account:%s cash:%s shares:%d value:%s", a.Key(), a.Cash.StringFixed(2), a.Shares, a.TotalValue.StringFixed(2))
}

func (a *Account) LogValue() slog.Value {
	return slog.StringValue(a.String())
}

// Check verifies the account invariants. Every account entering or
// leaving the engine must satisfy these.
func (a *Account) Check() error {
	if len(a.Ticker) == 0 {
		return fmt.Errorf("account ticker cannot be empty")
	}
	if len(a.User) == 0 {
		return fmt.Errorf("account user cannot be empty")
	}
	if a.BuyThreshold.IsNegative() {
		return fmt.Errorf("buy threshold cannot be negative")
	}
	if a.SellThreshold.IsNegative() {
		return fmt.Errorf("sell threshold cannot be negative")
	}
	if a.Cash.IsNegative() {
		return fmt.Errorf("cash cannot be negative")
	}
	if a.Shares < 0 {
		return fmt.Errorf("shares cannot be negative")
	}
	if a.PreviousPrice.IsNegative() {
		return fmt.Errorf("previous price cannot be negative")
	}
	if a.Shares > 0 && !a.TotalValue.IsPositive() {
		return fmt.Errorf("open position must have positive total value")
	}
	if a.Shares == 0 && !a.TotalValue.IsZero() {
		return fmt.Errorf("closed position must have zero total value")
	}
	return nil
}

func Equal(a, b gobs.Account) bool {
	return a.Ticker == b.Ticker && a.User == b.User &&
		a.BuyThreshold.Equal(b.BuyThreshold) &&
		a.SellThreshold.Equal(b.SellThreshold) &&
		a.Cash.Equal(b.Cash) &&
		a.Shares == b.Shares &&
		a.TotalValue.Equal(b.TotalValue) &&
		a.PreviousPrice.Equal(b.PreviousPrice) &&
		a.Profit.Equal(b.Profit) &&
		a.UpdateTime == b.UpdateTime
}

func (a *Account) Equal(v *Account) bool {
	return Equal(gobs.Account(*a), gobs.Account(*v))
}
