// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Stepwise Authors

package util

import (
	"io"
	"log/slog"
	"os"
)

// Logger is the process-wide logger. It discards output until InitLogger
// runs.
var Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

// InitLogger initializes the global logger with appropriate log level.
// Debug logging is enabled by debug or by setting STEPWISE_DEBUG.
// Output goes to w; the script log owns stdout.
func InitLogger(w io.Writer, debug bool) {
	level := slog.LevelInfo

	if debug || os.Getenv("STEPWISE_DEBUG") != "" {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		// Remove timestamp for cleaner CLI output
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	})

	Logger = slog.New(handler)
	slog.SetDefault(Logger)
}

// Debug logs a debug message (only shown when debug logging is on)
func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}
