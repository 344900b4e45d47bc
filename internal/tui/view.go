// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Stepwise Authors

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/stepwise-game/stepwise/internal/execution"
	"github.com/stepwise-game/stepwise/internal/world"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("241"))

	paneActiveStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("42")) // Green border when active

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	keyDisabledStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("238")).
				Strikethrough(true)
)

var stateStyles = map[execution.State]lipgloss.Style{
	execution.Stopped:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	execution.Running:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
	execution.Stepping: lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
	execution.Stopping: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	execution.Finished: lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Bold(true),
}

// View renders the TUI
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	if m.snap.Predicates.ShowConsole {
		b.WriteString(paneStyle.Render(m.logBox.View()))
	} else {
		style := paneStyle
		if m.mode == ModeEdit {
			style = paneActiveStyle
		}
		b.WriteString(style.Render(m.editor.View()))
	}
	b.WriteString("\n")
	b.WriteString(renderRoom(m.snap.View))
	b.WriteString("\n")

	if m.snap.LastError != "" {
		b.WriteString(errorStyle.Render("Error: " + m.snap.LastError))
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(subtitleStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m Model) renderHeader() string {
	state := m.snap.State
	label := stateStyles[state].Render(strings.ToUpper(state.String()))
	if state == execution.Stepping && m.snap.StepperWaiting {
		label += subtitleStyle.Render(" (waiting)")
	}
	info := fmt.Sprintf("  level %s  %s  jobs %d", m.snap.Level, m.snap.Language, m.snap.PendingJobs)
	return titleStyle.Render("stepwise") + "  " + label + subtitleStyle.Render(info)
}

func renderRoom(v world.View) string {
	exits := make([]string, len(v.Exits))
	for i, e := range v.Exits {
		exits[i] = e.Name
		if e.Locked {
			exits[i] += "🔒"
		}
	}
	line := fmt.Sprintf("Room %s  exits: %s  moves: %d", v.Room, strings.Join(exits, " "), v.Moves)
	if v.Item != nil {
		line += "  item: " + v.Item.String()
	}
	if len(v.Inventory) > 0 {
		line += fmt.Sprintf("  holding: %d", len(v.Inventory))
	}
	if v.Solved {
		line += "  " + titleStyle.Render("SOLVED")
	}
	return line
}

func (m Model) renderHelp() string {
	if m.mode == ModeEdit {
		return helpStyle.Render("esc: done editing • ctrl+s: save • ctrl+c: quit")
	}
	p := m.snap.Predicates
	keys := []string{
		key("r", "run", p.CanRun),
		key("s", "step", p.CanRun && (m.snap.State == execution.Stopped || m.snap.StepperWaiting)),
		key("x", "stop", p.CanStop),
		key("e", "edit", p.Interactive),
		key("ctrl+s", "save", m.scriptPath != ""),
		key("q", "quit", p.CanExit),
	}
	return strings.Join(keys, helpStyle.Render(" • "))
}

func key(k, action string, enabled bool) string {
	text := k + ": " + action
	if !enabled {
		return keyDisabledStyle.Render(text)
	}
	return helpStyle.Render(text)
}
