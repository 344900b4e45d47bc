// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Stepwise Authors

package tui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/stepwise-game/stepwise/internal/fsutil"
	"github.com/stepwise-game/stepwise/internal/host"
)

// Update handles all TUI events and messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.frame()
		if m.quitting {
			return m, nil
		}
		return m, m.nextFrame()

	case tea.WindowSizeMsg:
		m.layout(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if m.mode == ModeEdit {
			return m.handleEditKey(msg)
		}
		return m.handleControlKey(msg)
	}

	if m.mode == ModeEdit {
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd
	}
	return m, nil
}

// frame runs one host iteration and refreshes what the panes show.
func (m *Model) frame() {
	m.host.Iterate()
	m.snap = m.host.Snapshot()

	if len(m.snap.Log) != m.logLen {
		m.logLen = len(m.snap.Log)
		atBottom := m.logBox.AtBottom()
		m.logBox.SetContent(m.snap.Log)
		if atBottom {
			m.logBox.GotoBottom()
		}
	}

	// Keep the editor in sync with reloads from disk.
	if m.mode == ModeControl && m.snap.Script != m.editor.Value() {
		m.editor.SetValue(m.snap.Script)
	}
}

func (m Model) handleControlKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var err error
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "q":
		if !m.snap.Predicates.CanExit {
			m.status = "stop the script before quitting"
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit

	case "r":
		err = m.host.Run()
		m.status = "run"

	case "s", " ":
		err = m.host.Step()
		m.status = "step"

	case "x":
		err = m.host.Stop()
		m.status = "stop"

	case "ctrl+s":
		code, _ := m.host.Script()
		m.status = m.save(code)
		return m, nil

	case "e":
		if !m.snap.Predicates.Interactive {
			m.status = "the script can only be edited while stopped"
			return m, nil
		}
		m.mode = ModeEdit
		m.status = "editing (esc to finish)"
		return m, m.editor.Focus()

	case "up", "k":
		m.logBox.LineUp(1)
		return m, nil

	case "down", "j":
		m.logBox.LineDown(1)
		return m, nil

	default:
		return m, nil
	}

	if err != nil {
		if errors.Is(err, host.ErrStepInFlight) {
			m.status = "step in progress"
		} else {
			m.status = err.Error()
		}
	}
	return m, nil
}

func (m Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "esc":
		m.editor.Blur()
		m.mode = ModeControl
		m.status = m.commitEdit()
		return m, nil

	case "ctrl+s":
		if status := m.commitEdit(); status != "script updated" {
			m.status = status
			return m, nil
		}
		m.status = m.save(m.editor.Value())
		return m, nil
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

// commitEdit hands the editor buffer to the host.
func (m *Model) commitEdit() string {
	_, lang := m.host.Script()
	if err := m.host.SetScript(m.editor.Value(), lang); err != nil {
		return err.Error()
	}
	return "script updated"
}

func (m *Model) save(code string) string {
	if m.scriptPath == "" {
		return "no script file to save to"
	}
	if err := fsutil.WriteFileAtomic(m.scriptPath, []byte(code)); err != nil {
		return err.Error()
	}
	return "saved " + m.scriptPath
}
