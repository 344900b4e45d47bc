// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Stepwise Authors

// Package host is the owner side of a script run: it holds the world, runs
// the per-frame loop that applies state requests, drains script jobs and
// watches the worker, and exposes the editor actions UIs call.
package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/stepwise-game/stepwise/internal/dispatch"
	"github.com/stepwise-game/stepwise/internal/execution"
	"github.com/stepwise-game/stepwise/internal/scripting"
	"github.com/stepwise-game/stepwise/internal/worker"
	"github.com/stepwise-game/stepwise/internal/world"
)

const (
	DefaultTickInterval  = 500 * time.Millisecond
	DefaultFrameInterval = 16 * time.Millisecond

	// how long Shutdown waits for an interrupted worker
	shutdownGrace = 2 * time.Second
)

// Options configures a Host. Zero values select defaults.
type Options struct {
	Level         *world.Level
	Script        string
	Language      scripting.Language
	TickInterval  time.Duration
	FrameInterval time.Duration
	Logger        *slog.Logger
}

// Host owns the world and everything that mutates it.
type Host struct {
	world      *world.World
	dispatcher *dispatch.Dispatcher[world.World]
	machine    *execution.Machine
	stepper    *execution.Stepper
	pacer      *execution.Pacer
	ticker     *execution.Ticker
	supervisor *worker.Supervisor
	api        *scripting.API

	tickInterval  time.Duration
	frameInterval time.Duration
	logger        *slog.Logger
	ctx           context.Context
	cancel        context.CancelFunc
	iterations    atomic.Uint64

	mu           sync.Mutex
	script       string
	language     scripting.Language
	pendingLevel *world.Level
	lastError    string
	snapshot     Snapshot
}

// New builds a host in the Stopped state.
func New(opts Options) *Host {
	if opts.Level == nil {
		opts.Level = world.DefaultLevel()
	}
	if opts.Language == "" {
		opts.Language = scripting.JavaScript
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = DefaultFrameInterval
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	h := &Host{
		world:         world.New(opts.Level),
		dispatcher:    dispatch.New[world.World](opts.Logger),
		machine:       execution.NewMachine(),
		stepper:       execution.NewStepper(),
		pacer:         execution.NewPacer(),
		tickInterval:  opts.TickInterval,
		frameInterval: opts.FrameInterval,
		logger:        opts.Logger,
		script:        opts.Script,
		language:      opts.Language,
	}
	h.ctx, h.cancel = context.WithCancel(context.Background())
	h.ticker = execution.NewTicker(h.queryState, h.stepper, h.pacer, h.tickInterval)
	h.api = scripting.NewAPI(h.dispatcher, h.ticker)
	h.supervisor = worker.NewSupervisor(h.reportScriptError, h.logger)
	h.refreshSnapshot()
	return h
}

// queryState reads the execution state through the dispatcher so the
// worker sees the state as of the owner's current iteration.
func (h *Host) queryState(ctx context.Context) (execution.State, error) {
	return dispatch.Submit(ctx, h.dispatcher, func(*world.World) execution.State {
		return h.machine.Current()
	})
}

// reportScriptError runs on the worker goroutine.
func (h *Host) reportScriptError(id uuid.UUID, err error) {
	msg := err.Error()
	var scriptErr *scripting.ScriptError
	if errors.As(err, &scriptErr) && scriptErr.Interrupted {
		h.logger.Info("script interrupted", "run", id)
	} else {
		h.logger.Error("script error", "run", id, "error", err)
	}

	h.mu.Lock()
	h.lastError = msg
	h.mu.Unlock()

	_, _ = dispatch.Submit(context.Background(), h.dispatcher, func(w *world.World) struct{} {
		w.Log.Append("Error: " + msg + "\n")
		return struct{}{}
	})
}

// Iterate runs one owner iteration. It must always be called from the same
// goroutine, and never from a script binding.
func (h *Host) Iterate() {
	h.iterations.Add(1)

	h.loadPendingLevel()
	if tr, changed := h.machine.Apply(); changed {
		h.logger.Debug("execution state", "from", tr.From, "to", tr.To)
		if tr.Exited(execution.Stopped) {
			h.spawn()
		}
		if tr.Entered(execution.Stopped) {
			// Jobs left by the retired worker still see the old run.
			h.dispatcher.Drain(h.world)
			h.world.Reset()
			h.loadPendingLevel()
		}
	}

	h.dispatcher.Drain(h.world)
	h.supervisor.Watch(h.machine, h.stepper)
	h.refreshSnapshot()
}

// loadPendingLevel swaps in a level queued by LoadLevel once the host is
// Stopped with no worker left.
func (h *Host) loadPendingLevel() {
	if h.machine.Current() != execution.Stopped || h.supervisor.Active() != nil {
		return
	}
	h.mu.Lock()
	level := h.pendingLevel
	h.pendingLevel = nil
	if level != nil {
		h.lastError = ""
	}
	h.mu.Unlock()
	if level == nil {
		return
	}
	h.dispatcher.Drain(h.world)
	h.world.Load(level)
	h.logger.Debug("level loaded", "level", level.Name)
}

func (h *Host) spawn() {
	h.mu.Lock()
	code, lang := h.script, h.language
	h.lastError = ""
	h.mu.Unlock()

	factory := func(ctx context.Context) (worker.Runner, error) {
		r, err := scripting.NewRunner(lang, h.api)
		if err != nil {
			return nil, err
		}
		return &scripting.Program{Runner: r, Code: code}, nil
	}
	if _, err := h.supervisor.Spawn(h.ctx, factory); err != nil {
		h.logger.Warn("cannot start script", "error", err)
		h.world.Log.Append(fmt.Sprintf("Error: %v\n", err))
		h.machine.Request(execution.Stopped)
	}
}

// Loop iterates every frame until ctx is done, then shuts down.
func (h *Host) Loop(ctx context.Context) error {
	frames := time.NewTicker(h.frameInterval)
	defer frames.Stop()

	for {
		h.Iterate()
		select {
		case <-ctx.Done():
			h.Shutdown()
			return nil
		case <-frames.C:
		}
	}
}

// Shutdown interrupts any running worker, stops accepting jobs and waits
// briefly for the worker to exit. The host cannot be iterated afterwards.
func (h *Host) Shutdown() {
	active := h.supervisor.Active()
	h.cancel()
	h.supervisor.Interrupt()
	h.stepper.Wake()
	h.dispatcher.Close()

	if active == nil {
		return
	}
	select {
	case <-active.Done():
	case <-time.After(shutdownGrace):
		h.logger.Warn("script did not stop in time", "run", active.ID())
	}
}

// Iterations returns how many times Iterate has run.
func (h *Host) Iterations() uint64 { return h.iterations.Load() }

// FrameInterval is the period Run iterates at.
func (h *Host) FrameInterval() time.Duration { return h.frameInterval }
