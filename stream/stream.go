// Copyright (c) 2025 BVK Chaitanya

// Package stream delivers raw quote messages from the message bus and
// assembles them into per-interval batches for the cycle driver.
package stream

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/daanonymous12/real-time-stock-sim/ctxutil"
)

// Source is one message-bus connection. Receive blocks for the next raw
// message; it returns the context error when the context expires.
type Source interface {
	Receive(ctx context.Context) ([]byte, error)
	Close() error
}

// Batcher collects messages from a source into time-sliced batches. One
// batch is handed out per interval; an interval with no traffic yields
// an empty batch, which is a valid cycle with nothing to do.
type Batcher struct {
	cg ctxutil.CloseGroup

	source   Source
	interval time.Duration

	msgCh chan []byte
}

func NewBatcher(source Source, interval time.Duration) *Batcher {
	b := &Batcher{
		source:   source,
		interval: interval,
		msgCh:    make(chan []byte, 1024),
	}
	b.cg.Go(b.goReceive)
	return b
}

func (b *Batcher) Close() error {
	b.cg.Close()
	return b.source.Close()
}

func (b *Batcher) goReceive(ctx context.Context) {
	for ctx.Err() == nil {
		msg, err := b.source.Receive(ctx)
		if err != nil {
			if ctx.Err() == nil {
				slog.Warn("could not receive from the message bus (retrying)", "error", err)
				ctxutil.Sleep(ctx, time.Second)
			}
			continue
		}
		select {
		case b.msgCh <- msg:
		case <-ctx.Done():
		}
	}
}

// NextBatch blocks for one batching interval and returns the messages
// received in it.
func (b *Batcher) NextBatch(ctx context.Context) ([][]byte, error) {
	timer := time.NewTimer(b.interval)
	defer timer.Stop()

	var batch [][]byte
	for {
		select {
		case <-ctx.Done():
			return nil, context.Cause(ctx)
		case <-b.cg.Context().Done():
			return nil, errors.New("message source is closed")
		case msg := <-b.msgCh:
			batch = append(batch, msg)
		case <-timer.C:
			return batch, nil
		}
	}
}
