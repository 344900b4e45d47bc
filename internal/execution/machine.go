// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Stepwise Authors

package execution

import (
	"sync"
	"sync/atomic"
)

// Transition describes a state change applied by Machine.Apply.
type Transition struct {
	From State
	To   State
}

// Exited reports whether the transition leaves s.
func (t Transition) Exited(s State) bool { return t.From == s && t.To != s }

// Entered reports whether the transition arrives in s.
func (t Transition) Entered(s State) bool { return t.To == s && t.From != s }

// Machine holds the current State and at most one pending request for the
// next one. Requests may come from any goroutine; Apply runs once per owner
// iteration. Legality of a request is the caller's business.
type Machine struct {
	current atomic.Int32

	mu      sync.Mutex
	next    State
	pending bool
}

// NewMachine returns a machine in the Stopped state.
func NewMachine() *Machine {
	return &Machine{}
}

// Current returns the applied state. It never blocks.
func (m *Machine) Current() State {
	return State(m.current.Load())
}

// Request records next as the state to apply on the next Apply call.
// A later request before Apply replaces an earlier one.
func (m *Machine) Request(next State) {
	m.mu.Lock()
	m.next = next
	m.pending = true
	m.mu.Unlock()
}

// Pending returns the requested state, if any.
func (m *Machine) Pending() (State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.next, m.pending
}

// Apply installs the pending request. changed is false when nothing was
// pending or the request named the current state.
func (m *Machine) Apply() (t Transition, changed bool) {
	m.mu.Lock()
	next, pending := m.next, m.pending
	m.pending = false
	m.mu.Unlock()

	cur := m.Current()
	if !pending || next == cur {
		return Transition{From: cur, To: cur}, false
	}
	m.current.Store(int32(next))
	return Transition{From: cur, To: next}, true
}
