// Copyright (c) 2025 BVK Chaitanya

package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/daanonymous12/real-time-stock-sim/ctxutil"
	"github.com/daanonymous12/real-time-stock-sim/quote"
	"github.com/daanonymous12/real-time-stock-sim/reconcile"
)

// runCycles is the cycle loop. A failed cycle is logged and dropped;
// the baseline keeps the last successfully persisted state and the next
// batch is processed against it.
func (s *Server) runCycles(ctx context.Context) error {
	for ctx.Err() == nil {
		batch, err := s.batcher.NextBatch(ctx)
		if err != nil {
			if ctx.Err() == nil {
				slog.WarnContext(ctx, "could not receive quote batch (retrying)", "error", err)
				ctxutil.Sleep(ctx, time.Second)
			}
			continue
		}
		if len(batch) == 0 {
			continue
		}
		if err := s.runCycle(ctx, batch); err != nil {
			if ctx.Err() == nil {
				slog.ErrorContext(ctx, "cycle was aborted with no state change", "error", err)
			}
		}
	}
	return context.Cause(ctx)
}

// runCycle processes one batch to completion: normalize, reconcile,
// persist, swap the baseline. The store write is the single atomic step
// with side effects; the in-memory baseline is replaced only after it
// succeeds.
func (s *Server) runCycle(ctx context.Context, batch [][]byte) error {
	quotes := quote.Normalize(batch)
	if len(quotes) == 0 {
		return nil
	}

	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()

	base := s.baseline.Load()
	result, err := reconcile.Reconcile(ctx, quotes, base, s.opts.NumWorkers)
	if err != nil {
		return err
	}

	s.mu.Lock()
	state := s.state
	s.mu.Unlock()
	state.NumCycles++
	state.NumAccounts = int64(base.NumAccounts())
	for _, q := range quotes {
		if q.Time > state.LastCycleTime {
			state.LastCycleTime = q.Time
		}
	}

	if err := s.store.SaveCycle(ctx, result, &state); err != nil {
		return err
	}

	next, err := base.Merge(result.TradedAccounts())
	if err != nil {
		return err
	}
	s.baseline.Store(next)

	s.mu.Lock()
	s.state = state
	s.mu.Unlock()

	slog.InfoContext(ctx, "completed cycle",
		"cycle", state.NumCycles,
		"quotes", len(quotes),
		"traded", len(result.Traded),
		"inactive", len(result.Inactive),
		"skipped", result.NumSkipped)
	return nil
}
