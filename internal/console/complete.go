// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Stepwise Authors

package console

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chzyer/readline"

	"github.com/stepwise-game/stepwise/internal/command"
)

// Completer completes command names, and file names for the commands that
// take a path.
type Completer struct {
	registry *command.Registry
	dataDir  string
}

var _ readline.AutoCompleter = (*Completer)(nil)

func NewCompleter(registry *command.Registry, dataDir string) *Completer {
	return &Completer{registry: registry, dataDir: dataDir}
}

// Do implements readline.AutoCompleter.
func (c *Completer) Do(line []rune, pos int) ([][]rune, int) {
	input := string(line[:pos])
	fields := strings.Fields(input)
	trailingSpace := strings.HasSuffix(input, " ")

	// First word
	if len(fields) == 0 || (len(fields) == 1 && !trailingSpace) {
		partial := ""
		if len(fields) == 1 {
			partial = fields[0]
		}
		return suffixes(filterByPrefix(c.registry.Names(), partial), len(partial)), len(partial)
	}

	partial := ""
	if !trailingSpace {
		partial = fields[len(fields)-1]
	}
	argIndex := len(fields) - 1
	if trailingSpace {
		argIndex = len(fields)
	}
	if argIndex != 1 {
		return nil, 0
	}

	var candidates []string
	switch fields[0] {
	case "help", "h", "?":
		candidates = c.registry.Names()
	case "load":
		candidates = c.files(".yaml", ".yml")
	case "script":
		candidates = c.files(".js", ".mjs", ".lua")
	default:
		return nil, 0
	}
	return suffixes(filterByPrefix(candidates, partial), len(partial)), len(partial)
}

// files lists data dir entries with one of the given extensions.
func (c *Completer) files(exts ...string) []string {
	entries, err := os.ReadDir(c.dataDir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		for _, want := range exts {
			if ext == want {
				names = append(names, e.Name())
				break
			}
		}
	}
	sort.Strings(names)
	return names
}

// suffixes converts strings to suggestions showing only the remaining part
func suffixes(strs []string, partialLen int) [][]rune {
	suggestions := make([][]rune, 0, len(strs))
	for _, s := range strs {
		if partialLen <= len(s) {
			suggestions = append(suggestions, []rune(s[partialLen:]+" "))
		}
	}
	return suggestions
}

// filterByPrefix returns strings that match the prefix (case-insensitive)
func filterByPrefix(strs []string, prefix string) []string {
	prefixLower := strings.ToLower(prefix)
	var result []string
	for _, s := range strs {
		if strings.HasPrefix(strings.ToLower(s), prefixLower) {
			result = append(result, s)
		}
	}
	return result
}
