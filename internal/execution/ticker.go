// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Stepwise Authors

package execution

import (
	"context"
	"fmt"
	"time"
)

// StateQuery fetches the current state on behalf of the worker. The host
// implements it as a job submitted to the owner goroutine.
type StateQuery func(ctx context.Context) (State, error)

// Ticker is the worker-side step gate. Scripts call Tick before every
// action that advances the simulation.
type Ticker struct {
	query    StateQuery
	stepper  *Stepper
	pacer    *Pacer
	interval time.Duration
}

func NewTicker(query StateQuery, stepper *Stepper, pacer *Pacer, interval time.Duration) *Ticker {
	return &Ticker{query: query, stepper: stepper, pacer: pacer, interval: interval}
}

// Interval is the minimum time between two non-stepping ticks.
func (t *Ticker) Interval() time.Duration { return t.interval }

// Tick parks on the stepper while the host is single-stepping and otherwise
// waits out the pacer. It must not be called from the owner goroutine.
func (t *Ticker) Tick(ctx context.Context) error {
	state, err := t.query(ctx)
	if err != nil {
		return fmt.Errorf("query execution state: %w", err)
	}
	if state == Stepping {
		t.stepper.Wait()
		return ctx.Err()
	}
	return t.pacer.AdvanceOrWait(ctx, t.interval)
}
