// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Stepwise Authors

package host

import (
	"errors"
	"fmt"

	"github.com/stepwise-game/stepwise/internal/execution"
	"github.com/stepwise-game/stepwise/internal/scripting"
	"github.com/stepwise-game/stepwise/internal/world"
)

// Editor actions. They may be called from any goroutine; each takes effect
// on the host's next iteration.

var (
	// ErrNotAllowed means the action is not offered in the current state.
	ErrNotAllowed = errors.New("action not allowed")

	// ErrStepInFlight means the previous step has not reached the gate yet.
	ErrStepInFlight = errors.New("step already in progress")
)

func notAllowed(action string, s execution.State) error {
	return fmt.Errorf("%w: cannot %s while %s", ErrNotAllowed, action, s)
}

// State returns the applied execution state.
func (h *Host) State() execution.State { return h.machine.Current() }

// Run starts the script from Stopped, or resumes free running from
// Stepping.
func (h *Host) Run() error {
	s := h.machine.Current()
	if !s.CanRun() {
		return notAllowed("run", s)
	}
	h.pacer.Reset(h.tickInterval)
	h.machine.Request(execution.Running)
	h.stepper.Wake()
	return nil
}

// Step starts the script in single-step mode, or releases the next step of
// a script that is already stepping.
func (h *Host) Step() error {
	switch s := h.machine.Current(); s {
	case execution.Stopped:
		h.machine.Request(execution.Stepping)
		h.stepper.Skip()
		h.stepper.Wake()
		return nil
	case execution.Stepping:
		if !h.stepper.IsWaiting() {
			return ErrStepInFlight
		}
		h.stepper.Wake()
		return nil
	default:
		return notAllowed("step", s)
	}
}

// Stop asks a running script to stop, or returns a finished run to the
// editor.
func (h *Host) Stop() error {
	s := h.machine.Current()
	if !s.CanStop() {
		return notAllowed("stop", s)
	}
	if s == execution.Finished {
		h.machine.Request(execution.Stopped)
	} else {
		h.machine.Request(execution.Stopping)
	}
	return nil
}

// SetScript replaces the editor buffer. It is refused while a script runs.
func (h *Host) SetScript(code string, lang scripting.Language) error {
	if s := h.machine.Current(); !s.Interactive() {
		return notAllowed("edit the script", s)
	}
	h.mu.Lock()
	h.script = code
	if lang != "" {
		h.language = lang
	}
	h.mu.Unlock()
	return nil
}

// Script returns the editor buffer and its language.
func (h *Host) Script() (string, scripting.Language) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.script, h.language
}

// LoadLevel returns to Stopped and swaps the level in once no script is
// left running. A running script is interrupted first.
func (h *Host) LoadLevel(level *world.Level) {
	h.mu.Lock()
	h.pendingLevel = level
	h.mu.Unlock()
	switch h.machine.Current() {
	case execution.Running, execution.Stepping, execution.Stopping:
		h.machine.Request(execution.Stopping)
	default:
		h.machine.Request(execution.Stopped)
	}
}
