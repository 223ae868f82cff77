// Copyright (c) 2025 BVK Chaitanya

package server

import (
	"runtime"
	"time"
)

type Options struct {
	// BatchInterval is how long quotes are collected before a cycle is
	// run over them.
	BatchInterval time.Duration

	// NumWorkers is the evaluation fan-out within a cycle.
	NumWorkers int

	// NoResume, when true, leaves the cycle loop paused at startup
	// regardless of the state saved in the database.
	NoResume bool
}

func (v *Options) setDefaults() {
	if v.BatchInterval == 0 {
		v.BatchInterval = 8 * time.Second
	}
	if v.NumWorkers == 0 {
		v.NumWorkers = runtime.NumCPU()
	}
}
