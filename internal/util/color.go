// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Stepwise Authors

package util

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// ANSI colour codes used by the console.
const (
	ColorRed    = "31"
	ColorGreen  = "32"
	ColorYellow = "33"
	ColorCyan   = "36"
)

// SupportsColor checks if the terminal supports ANSI color codes
func SupportsColor() bool {
	if !term.IsTerminal(int(os.Stdout.Fd())) { // #nosec G115 - file descriptors are small integers
		return false
	}

	termEnv := os.Getenv("TERM")
	if termEnv == "" || termEnv == "dumb" {
		return false
	}

	return os.Getenv("NO_COLOR") == ""
}

// Colorize wraps text in an ANSI colour when stdout is a colour terminal.
func Colorize(code, text string) string {
	if code == "" || !SupportsColor() {
		return text
	}
	return fmt.Sprintf("\033[%sm%s\033[0m", code, text)
}
