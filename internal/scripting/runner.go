// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Stepwise Authors

// Package scripting provides interfaces and implementations for script execution.
// It abstracts the underlying VM (Goja, Lua) behind a common interface.
package scripting

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// ScriptError represents an error that occurred during script execution.
type ScriptError struct {
	Message string
	// Interrupted is true when the script was stopped from outside
	Interrupted bool
}

func (e *ScriptError) Error() string {
	return e.Message
}

// Result holds the outcome of running a script.
type Result struct {
	// Value is the exported result value (nil if IsEmpty is true)
	Value interface{}
	// IsEmpty is true if the script returned undefined/null/nil
	IsEmpty bool
}

// Runner is the low-level VM abstraction for executing scripts.
//
// A Runner is created on, and only used from, the worker goroutine that
// runs the script. Interrupt is the one exception: it may be called from
// any goroutine and takes effect at the VM's next safe point.
type Runner interface {
	// Run executes the given code and returns the result.
	// Errors include syntax errors, runtime exceptions, etc.
	Run(ctx context.Context, code string) (Result, error)

	// Interrupt stops the currently running script.
	Interrupt()
}

// Language selects a Runner implementation.
type Language string

const (
	JavaScript Language = "js"
	Lua        Language = "lua"
)

// ParseLanguage accepts the names used in config files and flags.
func ParseLanguage(name string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "js", "javascript":
		return JavaScript, nil
	case "lua":
		return Lua, nil
	}
	return "", fmt.Errorf("unsupported script language %q (must be js or lua)", name)
}

// LanguageFor guesses the language from a file extension, falling back to
// def for unknown extensions.
func LanguageFor(path string, def Language) Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".js", ".mjs":
		return JavaScript
	case ".lua":
		return Lua
	}
	return def
}

// NewRunner creates a runner for lang bound to api.
func NewRunner(lang Language, api *API) (Runner, error) {
	switch lang {
	case JavaScript:
		return NewGojaRunner(api)
	case Lua:
		return NewLuaRunner(api), nil
	}
	return nil, fmt.Errorf("unsupported script language %q", lang)
}

// Program is a Runner paired with the code it will run, as handed to the
// worker supervisor.
type Program struct {
	Runner Runner
	Code   string
}

func (p *Program) Run(ctx context.Context) error {
	_, err := p.Runner.Run(ctx, p.Code)
	return err
}

func (p *Program) Interrupt() {
	p.Runner.Interrupt()
}
