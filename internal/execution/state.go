// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Stepwise Authors

// Package execution holds the script lifecycle state machine and the
// primitives the worker uses to pace itself: the single-step gate and the
// minimum-interval tick pacer.
package execution

import (
	"fmt"
	"strings"
)

// State is the lifecycle of a script run as seen by the host.
type State int

const (
	Stopped State = iota // default; editor is interactive
	Running
	Stepping
	Stopping // shutdown requested, worker not yet finished
	Finished
)

// Predicates is the set of UI and shutdown flags derived from a State.
type Predicates struct {
	Interactive bool
	CanRun      bool
	CanStop     bool
	CanExit     bool
	ShowConsole bool
	Shutdown    bool
}

var predicates = [...]Predicates{
	Stopped:  {Interactive: true, CanRun: true, CanExit: true, Shutdown: true},
	Running:  {CanStop: true, ShowConsole: true},
	Stepping: {CanRun: true, CanStop: true, ShowConsole: true},
	Stopping: {ShowConsole: true, Shutdown: true},
	Finished: {CanStop: true, ShowConsole: true},
}

var stateNames = [...]string{
	Stopped:  "stopped",
	Running:  "running",
	Stepping: "stepping",
	Stopping: "stopping",
	Finished: "finished",
}

// Valid reports whether s is one of the five defined states.
func (s State) Valid() bool {
	return s >= Stopped && s <= Finished
}

// Predicates returns the flag tuple for s. Out of range values get the
// zero tuple.
func (s State) Predicates() Predicates {
	if !s.Valid() {
		return Predicates{}
	}
	return predicates[s]
}

func (s State) Interactive() bool { return s.Predicates().Interactive }
func (s State) CanRun() bool      { return s.Predicates().CanRun }
func (s State) CanStop() bool     { return s.Predicates().CanStop }
func (s State) CanExit() bool     { return s.Predicates().CanExit }
func (s State) ShowConsole() bool { return s.Predicates().ShowConsole }

// Shutdown reports whether a still-running worker must be interrupted.
func (s State) Shutdown() bool { return s.Predicates().Shutdown }

func (s State) String() string {
	if !s.Valid() {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// ParseState is the inverse of String, case-insensitive.
func ParseState(name string) (State, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for s, n := range stateNames {
		if n == name {
			return State(s), nil
		}
	}
	return Stopped, fmt.Errorf("unknown execution state %q", name)
}
