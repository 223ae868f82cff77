// Copyright (c) 2025 BVK Chaitanya

// Package server runs the cycle driver: it owns the in-memory account
// baseline, receives quote batches from the message bus, reconciles
// them and persists the outcome, one cycle at a time.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"sync/atomic"

	"github.com/bvkgo/kv"
	"github.com/daanonymous12/real-time-stock-sim/api"
	"github.com/daanonymous12/real-time-stock-sim/gobs"
	"github.com/daanonymous12/real-time-stock-sim/job"
	"github.com/daanonymous12/real-time-stock-sim/kvutil"
	"github.com/daanonymous12/real-time-stock-sim/reconcile"
	"github.com/daanonymous12/real-time-stock-sim/store"
	"github.com/daanonymous12/real-time-stock-sim/stream"
)

// JobStateKey holds the saved cycle loop state, so that an explicitly
// paused engine stays paused across restarts.
const JobStateKey = "/server/job"

type Server struct {
	closeCtx  context.Context
	closeFunc context.CancelCauseFunc

	opts Options

	store   *store.Store
	batcher *stream.Batcher

	// baseline is replaced wholesale after a successful cycle merge or
	// a reload; it is never mutated in place.
	baseline atomic.Pointer[reconcile.Baseline]

	// cycleMu serializes cycle execution and baseline reloads. One
	// batch is processed to completion before the next is admitted.
	cycleMu sync.Mutex

	mu  sync.Mutex
	job *job.Job

	state gobs.ServerState
}

func New(db kv.Database, source stream.Source, opts *Options) (_ *Server, status error) {
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()

	ctx, cancel := context.WithCancelCause(context.Background())
	defer func() {
		if status != nil {
			cancel(status)
		}
	}()

	s := &Server{
		closeCtx:  ctx,
		closeFunc: cancel,
		opts:      *opts,
		store:     store.New(db),
		batcher:   stream.NewBatcher(source, opts.BatchInterval),
	}

	state, err := s.store.LoadState(context.Background())
	if err != nil {
		return nil, fmt.Errorf("could not load server state: %w", err)
	}
	s.state = *state
	return s, nil
}

func (s *Server) Close() error {
	s.mu.Lock()
	j := s.job
	s.mu.Unlock()
	if j != nil {
		j.Close()
	}
	s.closeFunc(os.ErrClosed)
	return s.batcher.Close()
}

// Start loads the full account baseline and resumes the cycle loop,
// unless an explicit pause is on record or NoResume is set.
func (s *Server) Start(ctx context.Context) error {
	if _, err := s.Reload(ctx); err != nil {
		return fmt.Errorf("could not load account baseline: %w", err)
	}

	last := job.Paused
	jstate, err := kvutil.GetDB[gobs.ServerJobState](ctx, s.store.Database(), JobStateKey)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("could not load job state: %w", err)
	}
	if err == nil && len(jstate.State) != 0 {
		last = job.State(jstate.State)
	}

	// The loop is not running yet, whatever the saved state says; the
	// saved state only decides whether to auto-resume below.
	s.mu.Lock()
	s.job = job.New(job.Paused, s.runCycles)
	s.mu.Unlock()

	if s.opts.NoResume || last == job.Paused && jstate != nil && jstate.NeedsManualResume {
		return nil
	}
	return s.resumeJob(ctx)
}

// Stop pauses the cycle loop for shutdown. The saved job state is left
// alone, so an engine that was running resumes on the next Start while
// an explicitly paused one stays paused. An in-flight cycle runs to
// completion before the loop stops, so no partial state is persisted.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	j := s.job
	s.mu.Unlock()
	if j == nil {
		return nil
	}
	if err := j.Pause(); err != nil && !errors.Is(err, os.ErrClosed) {
		return err
	}
	return nil
}

// Pause stops the cycle loop on an explicit user request. The pause is
// recorded in the database and holds across restarts until a resume
// request.
func (s *Server) Pause(ctx context.Context) error {
	s.mu.Lock()
	j := s.job
	s.mu.Unlock()
	if j == nil {
		return os.ErrInvalid
	}
	if err := j.Pause(); err != nil && !errors.Is(err, os.ErrClosed) {
		return err
	}
	return s.saveJobState(ctx, job.Paused, true /* manual */)
}

func (s *Server) resumeJob(ctx context.Context) error {
	s.mu.Lock()
	j := s.job
	s.mu.Unlock()
	if j == nil {
		return os.ErrInvalid
	}
	// The cycle loop must outlive the request context.
	if err := j.Resume(s.closeCtx); err != nil {
		return err
	}
	return s.saveJobState(ctx, job.Resumed, false)
}

func (s *Server) saveJobState(ctx context.Context, state job.State, manual bool) error {
	v := &gobs.ServerJobState{State: string(state), NeedsManualResume: manual}
	if err := kvutil.SetDB(ctx, s.store.Database(), JobStateKey, v); err != nil {
		return fmt.Errorf("could not save job state: %w", err)
	}
	return nil
}

// Reload re-reads the full account table from the database and replaces
// the in-memory baseline. This is how accounts added out-of-band become
// visible without a process restart.
func (s *Server) Reload(ctx context.Context) (int, error) {
	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()

	accounts, err := s.store.LoadAccounts(ctx)
	if err != nil {
		return 0, err
	}
	base, err := reconcile.NewBaseline(accounts)
	if err != nil {
		return 0, err
	}
	s.baseline.Store(base)
	return base.NumAccounts(), nil
}

// Baseline returns the current account baseline snapshot.
func (s *Server) Baseline() *reconcile.Baseline {
	return s.baseline.Load()
}

// HandlerMap returns the daemon's api handlers.
func (s *Server) HandlerMap() map[string]http.Handler {
	return map[string]http.Handler{
		api.StatusPath:  postHandler(s.doStatus),
		api.ReloadPath:  postHandler(s.doReload),
		api.PausePath:   postHandler(s.doPause),
		api.ResumePath:  postHandler(s.doResume),
		api.AccountPath: postHandler(s.doGetAccount),
	}
}
