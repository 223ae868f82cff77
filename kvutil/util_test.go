// Copyright (c) 2025 BVK Chaitanya

package kvutil

import (
	"bytes"
	"context"
	"testing"

	"github.com/bvkgo/kv"
	"github.com/bvkgo/kv/kvmemdb"
	"github.com/daanonymous12/real-time-stock-sim/gobs"
)

func TestGetSet(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()

	want := &gobs.ServerState{NumCycles: 5, LastCycleTime: 100, NumAccounts: 3}
	if err := SetDB(ctx, db, "/server/state", want); err != nil {
		t.Fatal(err)
	}
	got, err := GetDB[gobs.ServerState](ctx, db, "/server/state")
	if err != nil {
		t.Fatal(err)
	}
	if *got != *want {
		t.Fatalf("wanted %+v, got %+v", want, got)
	}
}

func TestPathRange(t *testing.T) {
	begin, end := PathRange("/accounts")
	if begin != "/accounts/" || end != "/accounts0" {
		t.Fatalf("unexpected range: %q %q", begin, end)
	}
	if begin, end := PathRange("/"); begin != "" || end != "" {
		t.Fatalf("unexpected root range: %q %q", begin, end)
	}
}

func TestExportImport(t *testing.T) {
	ctx := context.Background()
	src := kvmemdb.New()

	state := &gobs.ServerState{NumCycles: 1}
	if err := SetDB(ctx, src, "/server/state", state); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	export := func(ctx context.Context, r kv.Reader) error {
		return Export(ctx, r, &buf)
	}
	if err := kv.WithReader(ctx, src, export); err != nil {
		t.Fatal(err)
	}

	dst := kvmemdb.New()
	restore := func(ctx context.Context, rw kv.ReadWriter) error {
		return Import(ctx, &buf, rw)
	}
	if err := kv.WithReadWriter(ctx, dst, restore); err != nil {
		t.Fatal(err)
	}

	got, err := GetDB[gobs.ServerState](ctx, dst, "/server/state")
	if err != nil {
		t.Fatal(err)
	}
	if got.NumCycles != 1 {
		t.Fatalf("wanted 1 cycle, got %d", got.NumCycles)
	}
}
