// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Stepwise Authors

package world

import "strings"

// Log is the console text scripts write to.
type Log struct {
	b strings.Builder
}

func (l *Log) Append(text string) {
	l.b.WriteString(text)
}

func (l *Log) String() string { return l.b.String() }

func (l *Log) Len() int { return l.b.Len() }

func (l *Log) Clear() { l.b.Reset() }
