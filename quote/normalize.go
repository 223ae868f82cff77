// Copyright (c) 2025 BVK Chaitanya

package quote

import (
	"log/slog"
	"sort"
)

// Normalize decodes a batch of raw messages into at most one Quote per
// ticker. Malformed messages are skipped with a log message; they are
// never fatal.
//
// Duplicate tickers within a batch are resolved by an explicit policy:
// the quote with the largest Time wins and the first-seen quote wins
// ties. Returned quotes are sorted by ticker for deterministic cycles.
func Normalize(msgs [][]byte) []*Quote {
	qmap := make(map[string]*Quote)
	for _, msg := range msgs {
		q, err := Decode(msg)
		if err != nil {
			slog.Warn("skipping malformed quote message", "error", err)
			continue
		}
		if prev, ok := qmap[q.Ticker]; ok && prev.Time >= q.Time {
			continue
		}
		qmap[q.Ticker] = q
	}

	quotes := make([]*Quote, 0, len(qmap))
	for _, q := range qmap {
		quotes = append(quotes, q)
	}
	sort.Slice(quotes, func(i, j int) bool {
		return quotes[i].Ticker < quotes[j].Ticker
	})
	return quotes
}
