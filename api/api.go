// Copyright (c) 2025 BVK Chaitanya

// Package api defines the JSON request/response types served by the
// stocksim daemon.
package api

import (
	"github.com/daanonymous12/real-time-stock-sim/gobs"
)

const (
	StatusPath  = "/stocksim/status"
	ReloadPath  = "/stocksim/reload"
	PausePath   = "/stocksim/pause"
	ResumePath  = "/stocksim/resume"
	AccountPath = "/stocksim/account"
)

type StatusRequest struct {
}

type StatusResponse struct {
	// JobState is the engine cycle loop state, e.g. "RESUMED" or
	// "PAUSED".
	JobState string

	NumAccounts int64

	NumCycles int64

	// LastCycleTime is the largest quote tick id of the last completed
	// cycle.
	LastCycleTime int64
}

type ReloadRequest struct {
}

type ReloadResponse struct {
	// NumAccounts is the baseline size after re-reading the full
	// account table from the database.
	NumAccounts int64
}

type PauseRequest struct {
}

type PauseResponse struct {
	FinalState string
}

type ResumeRequest struct {
}

type ResumeResponse struct {
	FinalState string
}

type AccountRequest struct {
	Ticker string
	User   string
}

type AccountResponse struct {
	Account *gobs.Account
}
