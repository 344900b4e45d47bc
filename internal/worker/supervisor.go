// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Stepwise Authors

package worker

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/stepwise-game/stepwise/internal/execution"
)

// Reporter receives the error of a run that ended with one. It is called on
// the worker goroutine.
type Reporter func(id uuid.UUID, err error)

// Supervisor allows at most one active worker and reacts to its lifecycle
// once per owner iteration.
type Supervisor struct {
	mu       sync.Mutex
	active   *Handle
	starting bool // slot reserved by a Spawn waiting for its worker

	report Reporter
	logger *slog.Logger
}

func NewSupervisor(report Reporter, logger *slog.Logger) *Supervisor {
	if report == nil {
		report = func(uuid.UUID, error) {}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Supervisor{report: report, logger: logger}
}

// Active returns the current handle, or nil.
func (s *Supervisor) Active() *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Spawn starts factory's runner on a new goroutine and returns once it has
// begun executing. It fails with ErrSpawnConflict, changing nothing, while
// another worker is active.
func (s *Supervisor) Spawn(ctx context.Context, factory Factory) (*Handle, error) {
	s.mu.Lock()
	if s.active != nil || s.starting {
		s.mu.Unlock()
		return nil, ErrSpawnConflict
	}
	s.starting = true
	s.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	h := &Handle{
		cancel:  cancel,
		started: make(chan struct{}),
		done:    make(chan struct{}),
	}

	go func() {
		defer cancel()
		err := h.run(runCtx, factory)
		if err != nil {
			s.logger.Debug("script ended with error", "run", h.id, "error", err)
			s.report(h.id, err)
		}
		h.err = err
		h.finished.Store(true)
		close(h.done)
	}()

	<-h.started
	s.mu.Lock()
	s.active = h
	s.starting = false
	s.mu.Unlock()
	s.logger.Debug("script started", "run", h.id)
	return h, nil
}

// Watch is called once per owner iteration. While the worker runs and the
// state asks for shutdown it interrupts the worker and wakes the stepper in
// case the worker is parked there. Once the worker has finished it clears
// the handle and requests Stopped or Finished. It reports whether a worker
// was retired by this call.
//
// A state that needs a worker while none is active (a user action applied
// over the retirement request) is settled the same way on every call.
func (s *Supervisor) Watch(m *execution.Machine, stepper *execution.Stepper) bool {
	s.mu.Lock()
	h := s.active
	s.mu.Unlock()
	if h == nil {
		s.settle(m)
		return false
	}

	state := m.Current()
	if !h.IsFinished() {
		if state.Shutdown() {
			if !h.Interrupted() {
				s.logger.Debug("interrupting script", "run", h.id, "state", state)
			}
			h.Interrupt()
			stepper.Wake()
		}
		return false
	}

	s.mu.Lock()
	s.active = nil
	s.mu.Unlock()

	s.logger.Debug("script exited", "run", h.id)
	m.Request(afterRun(state))
	return true
}

// settle moves a worker state with no worker to where retirement would
// have taken it. A pending request for Stopped or Finished already does
// that and is left alone.
func (s *Supervisor) settle(m *execution.Machine) {
	state := m.Current()
	if !needsWorker(state) {
		return
	}
	if next, ok := m.Pending(); ok && !needsWorker(next) {
		return
	}
	s.logger.Debug("no script for state", "state", state)
	m.Request(afterRun(state))
}

func needsWorker(s execution.State) bool {
	switch s {
	case execution.Running, execution.Stepping, execution.Stopping:
		return true
	}
	return false
}

// afterRun is the state a run leaves behind once its worker is gone.
func afterRun(s execution.State) execution.State {
	if s.Shutdown() {
		return execution.Stopped
	}
	return execution.Finished
}

// Interrupt interrupts the active worker, if any.
func (s *Supervisor) Interrupt() {
	if h := s.Active(); h != nil {
		h.Interrupt()
	}
}
