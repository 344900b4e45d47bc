// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Stepwise Authors

// Package dispatch routes work from any goroutine to the single owner
// goroutine that is allowed to touch host state.
//
// Producers call Submit, which queues a Job and parks until the owner's next
// Drain has run it. The owner calls Drain once per loop iteration. Calling
// Submit from the owner goroutine deadlocks: the job can only run in a drain
// the caller is blocking.
package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// Dispatcher is an unbounded multi-producer, single-consumer FIFO of jobs
// over owner state W.
type Dispatcher[W any] struct {
	mu     sync.Mutex
	queue  []Runnable[W]
	closed bool
	logger *slog.Logger
}

// New creates a dispatcher. A nil logger falls back to slog.Default().
func New[W any](logger *slog.Logger) *Dispatcher[W] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher[W]{logger: logger}
}

// Enqueue appends r to the queue without waiting for it.
func (d *Dispatcher[W]) Enqueue(r Runnable[W]) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrDispatcherClosed
	}
	d.queue = append(d.queue, r)
	return nil
}

// Pending returns the number of queued jobs.
func (d *Dispatcher[W]) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue)
}

// Drain runs every job queued at the time of the call, in enqueue order,
// against w. Jobs enqueued while the drain is running wait for the next
// one. It returns the number of jobs taken. Owner goroutine only.
func (d *Dispatcher[W]) Drain(w *W) int {
	d.mu.Lock()
	batch := d.queue
	d.queue = nil
	d.mu.Unlock()

	for _, r := range batch {
		if err := r.Execute(w); err != nil {
			if errors.Is(err, ErrReentrantConsumption) {
				d.logger.Error("job executed twice", "error", err)
				continue
			}
			d.logger.Warn("job failed", "error", err)
		}
	}
	return len(batch)
}

// Close stops the dispatcher for good. Queued jobs and every later
// submission fail with ErrDispatcherClosed. Close is idempotent.
func (d *Dispatcher[W]) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	batch := d.queue
	d.queue = nil
	d.mu.Unlock()

	for _, r := range batch {
		r.fail(ErrDispatcherClosed)
	}
	if len(batch) > 0 {
		d.logger.Debug("dispatcher closed with queued jobs", "count", len(batch))
	}
}

// Closed reports whether Close has been called.
func (d *Dispatcher[W]) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// Submit runs fn on the owner goroutine during its next drain and returns
// the result. It blocks until then, or until ctx is done.
func Submit[W, T any](ctx context.Context, d *Dispatcher[W], fn func(*W) T) (T, error) {
	job := NewJob(fn)
	if err := d.Enqueue(job); err != nil {
		var zero T
		return zero, err
	}
	return job.Wait(ctx)
}

// Do is Submit for callables that can fail. The callable's error is
// returned as is.
func Do[W any](ctx context.Context, d *Dispatcher[W], fn func(*W) error) error {
	err, waitErr := Submit(ctx, d, fn)
	if waitErr != nil {
		return waitErr
	}
	return err
}
