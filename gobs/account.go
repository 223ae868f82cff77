// Copyright (c) 2025 BVK Chaitanya

package gobs

import "github.com/shopspring/decimal"

// Account holds the persistent trading state for one (ticker, user)
// pair. Accounts are gob-encoded into the key-value store under the
// accounts keyspace with one record per key.
type Account struct {
	Ticker string
	User   string

	// BuyThreshold and SellThreshold are minimum price-gap magnitudes
	// required to trigger a buy or a sell.
	BuyThreshold  decimal.Decimal
	SellThreshold decimal.Decimal

	// Cash is the uninvested balance. Never negative.
	Cash decimal.Decimal

	// Shares is the number of shares currently held. Positions are
	// all-or-nothing; Shares is zero iff TotalValue is zero.
	Shares int64

	// TotalValue is the cost basis of the open position.
	TotalValue decimal.Decimal

	// PreviousPrice is the price at which the last buy or sell fired. It
	// does not move on cycles where neither rule fires.
	PreviousPrice decimal.Decimal

	// Profit is the cumulative realized profit over all sells.
	Profit decimal.Decimal

	// UpdateTime is the tick id of the quote that last traded this
	// account.
	UpdateTime int64
}
