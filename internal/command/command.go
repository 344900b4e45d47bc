// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Stepwise Authors

// Package command holds the console command registry and the built-in
// commands that drive a host.
package command

// Command represents a console command with metadata
type Command struct {
	Name        string   // Primary command name
	Aliases     []string // Alternative names (e.g., "h" for "help")
	Usage       string   // Usage string: "load <level.yaml>"
	Description string   // One-line description
	LongHelp    string   // Multi-line detailed help (optional)
	Category    string
	Handler     Handler
}

// Handler is the interface all command handlers must implement
type Handler interface {
	Execute(args []string, ctx *Context) error
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(args []string, ctx *Context) error

func (f HandlerFunc) Execute(args []string, ctx *Context) error {
	return f(args, ctx)
}

// Category constants for organizing commands
const (
	CategoryExecution = "Execution"
	CategoryWorld     = "World"
	CategoryEditor    = "Editor"
	CategoryGeneral   = "General"
)

var categoryOrder = []string{
	CategoryExecution,
	CategoryWorld,
	CategoryEditor,
	CategoryGeneral,
}
