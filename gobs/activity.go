// Copyright (c) 2025 BVK Chaitanya

package gobs

import "github.com/shopspring/decimal"

// Activity is one append-only audit record written for every account
// considered in a cycle. Inactive accounts appear only here; they are
// never merged back into the accounts keyspace.
type Activity struct {
	Ticker string
	User   string

	// Decision is "BUY", "SELL" or "HOLD".
	Decision string

	// QuoteTime and QuotePrice identify the quote that was evaluated.
	QuoteTime  int64
	QuotePrice decimal.Decimal

	// Account is the account state after evaluation.
	Account *Account
}
