// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Stepwise Authors

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stepwise-game/stepwise/internal/command"
	"github.com/stepwise-game/stepwise/internal/world"
)

func newCheckCommand(_ *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check <level.yaml>...",
		Short: "Validate level files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, path := range args {
				level, err := world.LoadLevel(path)
				if err != nil {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✗ %v\n", err)
					failed++
					continue
				}
				goal := level.Goal
				if goal == "" {
					goal = "none"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ %s: level %q, %d rooms, start %s, goal %s\n",
					path, level.Name, len(level.Rooms), level.Start, goal)
				_, _ = fmt.Fprint(cmd.OutOrStdout(), indent(command.FormatView(world.New(level).Look())))
			}
			if failed > 0 {
				return &exitError{code: 1, err: fmt.Errorf("%d of %d levels invalid", failed, len(args))}
			}
			return nil
		},
	}
}

func indent(text string) string {
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	return "    " + strings.Join(lines, "\n    ") + "\n"
}
