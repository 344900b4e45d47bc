// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Stepwise Authors

package dispatch

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// Runnable is the type-erased view of a Job that the Dispatcher queues.
type Runnable[W any] interface {
	// Execute runs the job against the owner state. It is called on the
	// owner goroutine only.
	Execute(w *W) error

	// fail completes the job without running it.
	fail(err error)
}

// Job is a one-shot unit of work against owner state of type W producing
// a T. It is executed at most once and its result is taken at most once.
type Job[W, T any] struct {
	fn       func(*W) T
	executed atomic.Bool
	taken    atomic.Bool

	once  sync.Once
	done  chan struct{}
	value T
	err   error
}

// NewJob wraps fn. The job does nothing until a Dispatcher drains it or
// Execute is called directly.
func NewJob[W, T any](fn func(*W) T) *Job[W, T] {
	return &Job[W, T]{fn: fn, done: make(chan struct{})}
}

func (j *Job[W, T]) Execute(w *W) (err error) {
	if !j.executed.CompareAndSwap(false, true) {
		return ErrReentrantConsumption
	}
	fn := j.fn
	j.fn = nil

	var value T
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrJobPanicked, r)
			j.complete(value, err)
			return
		}
		j.complete(value, nil)
	}()
	value = fn(w)
	return nil
}

func (j *Job[W, T]) fail(err error) {
	if j.executed.CompareAndSwap(false, true) {
		j.fn = nil
		j.complete(*new(T), err)
	}
}

func (j *Job[W, T]) complete(value T, err error) {
	j.once.Do(func() {
		j.value = value
		j.err = err
		close(j.done)
	})
}

// Done is closed once the result slot has been written.
func (j *Job[W, T]) Done() <-chan struct{} { return j.done }

// Wait parks until the job has run, then takes its result. Cancelling ctx
// abandons the wait; the job itself stays queued and may still run.
func (j *Job[W, T]) Wait(ctx context.Context) (T, error) {
	var zero T
	select {
	case <-j.done:
	case <-ctx.Done():
		return zero, ctx.Err()
	}
	if !j.taken.CompareAndSwap(false, true) {
		return zero, ErrResultTaken
	}
	value, err := j.value, j.err
	j.value = zero
	return value, err
}
