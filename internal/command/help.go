// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Stepwise Authors

package command

import (
	"strings"
)

func ShowHelp(ctx *Context) {
	ctx.printf("\nAvailable commands:\n")

	categories := ctx.Registry.ByCategory()
	for _, category := range categoryOrder {
		commands, exists := categories[category]
		if !exists || len(commands) == 0 {
			continue
		}

		ctx.printf("\n%s:\n", category)
		for _, cmd := range commands {
			aliasStr := ""
			if len(cmd.Aliases) > 0 {
				aliasStr = " (aliases: " + strings.Join(cmd.Aliases, ", ") + ")"
			}
			ctx.printf("  %-24s - %s%s\n", cmd.Usage, cmd.Description, aliasStr)
		}
	}

	ctx.printf("\nCurrent state: %s\n", ctx.Host.State())
	ctx.printf("For detailed help on a command, type: help <command>\n")
}

func ShowCommandHelp(ctx *Context, cmd *Command) {
	ctx.printf("\nCommand: %s\n", cmd.Name)

	if len(cmd.Aliases) > 0 {
		ctx.printf("Aliases: %s\n", strings.Join(cmd.Aliases, ", "))
	}

	ctx.printf("Usage: %s\n", cmd.Usage)
	ctx.printf("Category: %s\n", cmd.Category)
	ctx.printf("\nDescription:\n%s\n", cmd.Description)

	if cmd.LongHelp != "" {
		ctx.printf("\nDetails:\n%s\n", cmd.LongHelp)
	}
}
