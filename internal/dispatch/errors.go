// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Stepwise Authors

package dispatch

import "errors"

var (
	// ErrReentrantConsumption means a job was executed a second time.
	ErrReentrantConsumption = errors.New("job already executed")

	// ErrResultTaken means a job's result was read a second time.
	ErrResultTaken = errors.New("job result already taken")

	// ErrDispatcherClosed means the owner has stopped draining for good.
	ErrDispatcherClosed = errors.New("dispatcher closed")

	// ErrJobPanicked wraps a panic recovered from a job's callable.
	ErrJobPanicked = errors.New("job panicked")
)
