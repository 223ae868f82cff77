// Copyright (c) 2025 BVK Chaitanya

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"github.com/daanonymous12/real-time-stock-sim/account"
	"github.com/daanonymous12/real-time-stock-sim/api"
	"github.com/daanonymous12/real-time-stock-sim/gobs"
	"github.com/daanonymous12/real-time-stock-sim/job"
)

func postHandler[REQ, RESP any](fn func(context.Context, *REQ) (*RESP, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "api requires a POST request", http.StatusMethodNotAllowed)
			return
		}
		req := new(REQ)
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		resp, err := fn(r.Context(), req)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, os.ErrNotExist) {
				status = http.StatusNotFound
			}
			http.Error(w, err.Error(), status)
			return
		}
		w.Header().Set("content-type", "application/json")
		json.NewEncoder(w).Encode(resp)
	})
}

func (s *Server) doStatus(ctx context.Context, req *api.StatusRequest) (*api.StatusResponse, error) {
	s.mu.Lock()
	state := s.state
	j := s.job
	s.mu.Unlock()

	resp := &api.StatusResponse{
		NumCycles:     state.NumCycles,
		LastCycleTime: state.LastCycleTime,
	}
	if base := s.baseline.Load(); base != nil {
		resp.NumAccounts = int64(base.NumAccounts())
	}
	if j != nil {
		resp.JobState = string(j.State())
	}
	return resp, nil
}

func (s *Server) doReload(ctx context.Context, req *api.ReloadRequest) (*api.ReloadResponse, error) {
	n, err := s.Reload(ctx)
	if err != nil {
		return nil, err
	}
	return &api.ReloadResponse{NumAccounts: int64(n)}, nil
}

func (s *Server) doPause(ctx context.Context, req *api.PauseRequest) (*api.PauseResponse, error) {
	if err := s.Pause(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	j := s.job
	s.mu.Unlock()
	resp := new(api.PauseResponse)
	if j != nil {
		resp.FinalState = string(j.State())
	}
	return resp, nil
}

func (s *Server) doResume(ctx context.Context, req *api.ResumeRequest) (*api.ResumeResponse, error) {
	if err := s.resumeJob(ctx); err != nil {
		return nil, err
	}
	return &api.ResumeResponse{FinalState: string(job.Resumed)}, nil
}

func (s *Server) doGetAccount(ctx context.Context, req *api.AccountRequest) (*api.AccountResponse, error) {
	base := s.baseline.Load()
	if base == nil {
		return nil, os.ErrNotExist
	}
	a, ok := base.Get(account.Key(req.Ticker, req.User))
	if !ok {
		return nil, os.ErrNotExist
	}
	v := gobs.Account(*a)
	return &api.AccountResponse{Account: &v}, nil
}
