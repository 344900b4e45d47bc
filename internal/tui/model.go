// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Stepwise Authors

// Package tui is the full-screen front end. The bubbletea event loop is the
// host's owner goroutine: every frame message runs one host iteration.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/stepwise-game/stepwise/internal/host"
)

// Mode is what the keyboard currently drives.
type Mode int

const (
	ModeControl Mode = iota // keys map to run/step/stop
	ModeEdit                // keys go to the script editor
)

// frameMsg drives one host iteration.
type frameMsg time.Time

// Model is the main TUI application model
type Model struct {
	host       *host.Host
	snap       host.Snapshot
	scriptPath string // where ctrl+s saves, empty = nowhere

	mode   Mode
	editor textarea.Model
	logBox viewport.Model
	logLen int // length of the log text last shown

	// One-line feedback for the last key press
	status string

	width  int
	height int

	quitting bool
}

// NewModel creates a TUI model driving h. Nothing else may iterate h
// while the program runs.
func NewModel(h *host.Host, scriptPath string) Model {
	editor := textarea.New()
	editor.ShowLineNumbers = true
	editor.CharLimit = 0
	code, _ := h.Script()
	editor.SetValue(code)

	m := Model{
		host:       h,
		snap:       h.Snapshot(),
		scriptPath: scriptPath,
		editor:     editor,
		logBox:     viewport.New(80, 10),
	}
	m.layout(80, 24)
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.nextFrame()
}

func (m Model) nextFrame() tea.Cmd {
	return tea.Tick(m.host.FrameInterval(), func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// layout sizes the panes for a terminal of w by h cells.
func (m *Model) layout(w, h int) {
	m.width, m.height = w, h

	// header, status and help lines plus pane borders
	body := h - 8
	if body < 4 {
		body = 4
	}
	editorHeight := body / 2
	logHeight := body - editorHeight

	m.editor.SetWidth(w - 2)
	m.editor.SetHeight(editorHeight)
	m.logBox.Width = w - 2
	m.logBox.Height = logHeight
}

// Snapshot returns the host state as of the last frame.
func (m Model) Snapshot() host.Snapshot { return m.snap }

// Mode returns the keyboard mode.
func (m Model) Mode() Mode { return m.mode }

// Status returns the feedback line.
func (m Model) Status() string { return m.status }
