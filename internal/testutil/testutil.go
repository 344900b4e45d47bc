// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Stepwise Authors

// Package testutil provides reusable test infrastructure and utilities.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stepwise-game/stepwise/internal/execution"
	"github.com/stepwise-game/stepwise/internal/host"
)

// WaitTimeout bounds every wait helper.
const WaitTimeout = 5 * time.Second

// StartHost builds a host with millisecond ticks and frames and runs its
// loop until the test ends.
func StartHost(t *testing.T, opts host.Options) *host.Host {
	t.Helper()
	if opts.TickInterval == 0 {
		opts.TickInterval = time.Millisecond
	}
	if opts.FrameInterval == 0 {
		opts.FrameInterval = time.Millisecond
	}
	h := host.New(opts)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = h.Loop(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})
	return h
}

// WaitFor fails the test if cond does not hold within WaitTimeout.
func WaitFor(t *testing.T, h *host.Host, cond func(host.Snapshot) bool) host.Snapshot {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), WaitTimeout)
	defer cancel()
	snap, err := h.WaitFor(ctx, cond)
	if err != nil {
		t.Fatalf("condition not reached: state=%s log=%q", snap.State, snap.Log)
	}
	return snap
}

// WaitState waits until the host reports state s.
func WaitState(t *testing.T, h *host.Host, s execution.State) host.Snapshot {
	t.Helper()
	return WaitFor(t, h, func(snap host.Snapshot) bool { return snap.State == s })
}

// WriteFile writes body to dir/name and returns the path.
func WriteFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}
