// Copyright (c) 2025 BVK Chaitanya

package gobs

type ServerJobState struct {
	State string

	NeedsManualResume bool
}

// ServerState summarizes the engine's progress. It is rewritten at the
// end of every successful cycle as part of the cycle transaction.
type ServerState struct {
	// NumCycles counts completed cycles since the keyspace was created.
	NumCycles int64

	// LastCycleTime is the largest quote tick id seen in the last
	// completed cycle.
	LastCycleTime int64

	NumAccounts int64
}

type KeyValue struct {
	Key   string
	Value []byte
}
