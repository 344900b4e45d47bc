// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Stepwise Authors

package execution

import (
	"context"
	"sync"
	"time"
)

// Pacer enforces a minimum interval between script-driven simulation steps.
type Pacer struct {
	mu   sync.RWMutex
	next time.Time // zero means unset
}

func NewPacer() *Pacer {
	return &Pacer{}
}

// Next returns the earliest instant the next step may proceed, or the zero
// time if no step has been taken since the pacer was created.
func (p *Pacer) Next() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.next
}

// Reset pushes the next allowed instant to now+interval.
func (p *Pacer) Reset(interval time.Duration) {
	p.mu.Lock()
	p.next = time.Now().Add(interval)
	p.mu.Unlock()
}

// AdvanceOrWait sleeps until the next allowed instant if it lies in the
// future, then resets it to now+interval. A cancelled ctx ends the sleep
// early and leaves the pacer untouched.
func (p *Pacer) AdvanceOrWait(ctx context.Context, interval time.Duration) error {
	if next := p.Next(); !next.IsZero() {
		if d := time.Until(next); d > 0 {
			timer := time.NewTimer(d)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	p.Reset(interval)
	return nil
}
