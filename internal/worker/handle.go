// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Stepwise Authors

// Package worker runs a script on a background goroutine and lets the owner
// observe and interrupt it.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// ErrSpawnConflict is returned by Spawn while a worker is already active.
var ErrSpawnConflict = errors.New("a script is already running")

// Runner is a script bound to the worker goroutine that built it.
type Runner interface {
	Run(ctx context.Context) error

	// Interrupt asks the script to stop at its next safe point. It must be
	// safe to call from any goroutine and after Run has returned.
	Interrupt()
}

// Factory builds the Runner. It is called on the worker goroutine.
type Factory func(ctx context.Context) (Runner, error)

// Handle is one spawned worker.
type Handle struct {
	id      uuid.UUID
	cancel  context.CancelFunc
	started chan struct{}
	once    sync.Once
	done    chan struct{}

	mu     sync.Mutex
	target Runner

	finished    atomic.Bool
	interrupted atomic.Bool
	err         error // written before done is closed
}

// ID identifies the run. It is assigned on the worker goroutine when the
// run begins and is the target of Interrupt.
func (h *Handle) ID() uuid.UUID { return h.id }

// IsFinished reports whether the worker goroutine has returned.
func (h *Handle) IsFinished() bool { return h.finished.Load() }

// Done is closed when the worker goroutine has returned.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Interrupted reports whether Interrupt has been called at least once.
func (h *Handle) Interrupted() bool { return h.interrupted.Load() }

// Err returns the run's error. It is only meaningful after Done.
func (h *Handle) Err() error {
	select {
	case <-h.done:
		return h.err
	default:
		return nil
	}
}

// Interrupt requests cancellation of the run. Delivery is best effort: the
// run context is cancelled and the runtime is asked to stop at its next
// safe point. On a finished worker this does nothing.
func (h *Handle) Interrupt() {
	if h.IsFinished() {
		return
	}
	h.interrupted.Store(true)
	h.cancel()

	h.mu.Lock()
	target := h.target
	h.mu.Unlock()
	if target != nil {
		target.Interrupt()
	}
}

func (h *Handle) markStarted() {
	h.once.Do(func() { close(h.started) })
}

func (h *Handle) run(ctx context.Context, factory Factory) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("script runtime panicked: %v", r)
		}
		h.markStarted()
	}()

	h.id = uuid.New()
	runner, err := factory(ctx)
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.target = runner
	h.mu.Unlock()
	h.markStarted()

	return runner.Run(ctx)
}
