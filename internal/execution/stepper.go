// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Stepwise Authors

package execution

import (
	"sync"
	"sync/atomic"
)

// Stepper parks the worker between single steps.
//
// Wait is called by the worker on every tick while the host is Stepping.
// Wake releases a parked Wait and is safe to call when nobody is parked.
// Skip lets exactly the next Wait return without parking; it does not
// affect a Wait that is already parked. Skip and Wake touch independent
// flags, so interleaved calls resolve as last write wins on each flag.
type Stepper struct {
	mu      sync.Mutex
	cond    *sync.Cond
	waiting bool
	skip    atomic.Bool
}

func NewStepper() *Stepper {
	s := &Stepper{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// IsWaiting reports whether a Wait is currently parked.
func (s *Stepper) IsWaiting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.waiting
}

func (s *Stepper) Wake() {
	s.mu.Lock()
	s.waiting = false
	s.mu.Unlock()
	s.cond.Broadcast()
}

func (s *Stepper) Skip() {
	s.skip.Store(true)
}

func (s *Stepper) Wait() {
	if s.skip.Swap(false) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waiting = true
	for s.waiting {
		s.cond.Wait()
	}
}
