// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Stepwise Authors

package command

import (
	"errors"
	"fmt"
	"io"

	"github.com/stepwise-game/stepwise/internal/host"
	"github.com/stepwise-game/stepwise/internal/util"
)

// ErrExit is returned by the exit command; the console stops reading.
var ErrExit = errors.New("exit")

// Context provides command handlers with access to console state
type Context struct {
	Host     *host.Host
	Registry *Registry
	Out      io.Writer

	// DataDir is where relative level and script paths are resolved.
	DataDir string
}

func (c *Context) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.Out, format, args...)
}

// Resolve turns a user supplied path into one relative to the data dir.
func (c *Context) Resolve(path string) string {
	return util.ResolvePath(path, c.DataDir)
}
