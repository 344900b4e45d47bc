// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Stepwise Authors

// Command stepwise runs puzzle scripts against a stepped simulation, either
// headless, in a line console or in a full-screen terminal UI.
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// exitError carries a specific exit status for errors already reported.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }
