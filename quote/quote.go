// Copyright (c) 2025 BVK Chaitanya

// Package quote defines the canonical quote record and decodes the raw
// message-bus wire format into it.
package quote

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
)

// PricePrecision is the fixed number of decimal places kept on wire
// prices. All prices entering the engine are rounded to this precision.
const PricePrecision = 2

// Quote is one deduplicated (ticker, price, volume) observation for a
// cycle. Quotes are immutable and are discarded after the cycle that
// consumes them.
type Quote struct {
	Ticker string

	// Time is a monotonic tick id assigned by the feed.
	Time int64

	Price  decimal.Decimal
	Volume int64
}

func (q *Quote) String() string {
	return fmt.Sprintf("%s:%s@%d", q.Ticker, q.Price.StringFixed(PricePrecision), q.Time)
}

func (q *Quote) LogValue() slog.Value {
	return slog.StringValue(q.String())
}

func (q *Quote) Check() error {
	if len(q.Ticker) == 0 {
		return fmt.Errorf("quote ticker cannot be empty")
	}
	if q.Price.IsNegative() {
		return fmt.Errorf("quote price cannot be negative")
	}
	return nil
}

// Decode parses one wire message of the form
//
//	[time, "ticker", volume, price]
//
// where time and volume are integers and price is a number rounded to
// PricePrecision decimal places.
func Decode(msg []byte) (*Quote, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(msg, &raw); err != nil {
		return nil, fmt.Errorf("could not decode quote message: %w", err)
	}
	if len(raw) != 4 {
		return nil, fmt.Errorf("quote message needs 4 fields, has %d", len(raw))
	}

	var tick json.Number
	if err := json.Unmarshal(raw[0], &tick); err != nil {
		return nil, fmt.Errorf("could not decode quote time: %w", err)
	}
	time, err := tick.Int64()
	if err != nil {
		return nil, fmt.Errorf("quote time is not an integer: %w", err)
	}

	var ticker string
	if err := json.Unmarshal(raw[1], &ticker); err != nil {
		return nil, fmt.Errorf("could not decode quote ticker: %w", err)
	}

	var vol json.Number
	if err := json.Unmarshal(raw[2], &vol); err != nil {
		return nil, fmt.Errorf("could not decode quote volume: %w", err)
	}
	volume, err := vol.Int64()
	if err != nil {
		return nil, fmt.Errorf("quote volume is not an integer: %w", err)
	}

	var pnum json.Number
	if err := json.Unmarshal(raw[3], &pnum); err != nil {
		return nil, fmt.Errorf("could not decode quote price: %w", err)
	}
	price, err := decimal.NewFromString(pnum.String())
	if err != nil {
		return nil, fmt.Errorf("quote price is not a number: %w", err)
	}

	q := &Quote{
		Ticker: ticker,
		Time:   time,
		Volume: volume,
		Price:  price.Round(PricePrecision),
	}
	if err := q.Check(); err != nil {
		return nil, err
	}
	return q, nil
}
