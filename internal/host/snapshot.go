// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Stepwise Authors

package host

import (
	"context"
	"time"

	"github.com/stepwise-game/stepwise/internal/execution"
	"github.com/stepwise-game/stepwise/internal/scripting"
	"github.com/stepwise-game/stepwise/internal/world"
)

// Snapshot is what a UI needs to draw one frame. It is taken at the end of
// every iteration, so it is consistent with one drain.
type Snapshot struct {
	Iteration      uint64
	State          execution.State
	Predicates     execution.Predicates
	StepperWaiting bool
	Level          string
	Goal           string // empty when the level has none
	View           world.View
	Log            string
	Script         string
	Language       scripting.Language
	PendingJobs    int
	RunID          string
	LastError      string
}

func (h *Host) refreshSnapshot() {
	state := h.machine.Current()
	snap := Snapshot{
		Iteration:      h.iterations.Load(),
		State:          state,
		Predicates:     state.Predicates(),
		StepperWaiting: h.stepper.IsWaiting(),
		Level:          h.world.Level().Name,
		Goal:           h.world.Level().Goal,
		View:           h.world.Look(),
		Log:            h.world.Log.String(),
		PendingJobs:    h.dispatcher.Pending(),
	}
	if active := h.supervisor.Active(); active != nil {
		snap.RunID = active.ID().String()
	}

	h.mu.Lock()
	snap.Script = h.script
	snap.Language = h.language
	snap.LastError = h.lastError
	h.snapshot = snap
	h.mu.Unlock()
}

// Snapshot returns the state as of the last iteration.
func (h *Host) Snapshot() Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snapshot
}

// WaitFor polls snapshots once per frame until cond holds or ctx is done.
func (h *Host) WaitFor(ctx context.Context, cond func(Snapshot) bool) (Snapshot, error) {
	poll := time.NewTicker(h.frameInterval)
	defer poll.Stop()
	for {
		snap := h.Snapshot()
		if cond(snap) {
			return snap, nil
		}
		select {
		case <-ctx.Done():
			return snap, ctx.Err()
		case <-poll.C:
		}
	}
}
