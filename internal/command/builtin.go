// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Stepwise Authors

package command

import (
	"fmt"
	"os"
	"strings"

	"github.com/stepwise-game/stepwise/internal/execution"
	"github.com/stepwise-game/stepwise/internal/fsutil"
	"github.com/stepwise-game/stepwise/internal/scripting"
	"github.com/stepwise-game/stepwise/internal/world"
)

// NewBuiltinRegistry returns a registry holding every console command.
func NewBuiltinRegistry() *Registry {
	r := NewRegistry()
	for _, cmd := range builtins() {
		if err := r.Register(cmd); err != nil {
			panic(err) // names are fixed at compile time
		}
	}
	return r
}

func builtins() []*Command {
	return []*Command{
		{
			Name:        "run",
			Aliases:     []string{"r"},
			Usage:       "run",
			Description: "Run the script, or resume free running from a step",
			Category:    CategoryExecution,
			Handler:     HandlerFunc(cmdRun),
		},
		{
			Name:        "step",
			Aliases:     []string{"s"},
			Usage:       "step",
			Description: "Start the script in single-step mode, or advance one action",
			LongHelp: "From the editor the script starts and performs its first world action.\n" +
				"While stepping, each further step releases exactly one more action.",
			Category: CategoryExecution,
			Handler:  HandlerFunc(cmdStep),
		},
		{
			Name:        "stop",
			Usage:       "stop",
			Description: "Stop the script, or return to the editor after it finished",
			Category:    CategoryExecution,
			Handler:     HandlerFunc(cmdStop),
		},
		{
			Name:        "state",
			Usage:       "state",
			Description: "Show the execution state and what it allows",
			Category:    CategoryExecution,
			Handler:     HandlerFunc(cmdState),
		},
		{
			Name:        "log",
			Usage:       "log",
			Description: "Print the script output",
			Category:    CategoryWorld,
			Handler:     HandlerFunc(cmdLog),
		},
		{
			Name:        "look",
			Aliases:     []string{"l"},
			Usage:       "look",
			Description: "Describe the current room",
			Category:    CategoryWorld,
			Handler:     HandlerFunc(cmdLook),
		},
		{
			Name:        "load",
			Usage:       "load <level.yaml>",
			Description: "Load a level file, stopping any running script",
			Category:    CategoryWorld,
			Handler:     HandlerFunc(cmdLoad),
		},
		{
			Name:        "script",
			Usage:       "script [file]",
			Description: "Load a script file into the editor, or show the current script",
			Category:    CategoryEditor,
			Handler:     HandlerFunc(cmdScript),
		},
		{
			Name:        "save",
			Usage:       "save <file>",
			Description: "Write the editor script to a file",
			Category:    CategoryEditor,
			Handler:     HandlerFunc(cmdSave),
		},
		{
			Name:        "help",
			Aliases:     []string{"h", "?"},
			Usage:       "help [command]",
			Description: "Show this help, or details for one command",
			Category:    CategoryGeneral,
			Handler:     HandlerFunc(cmdHelp),
		},
		{
			Name:        "exit",
			Aliases:     []string{"quit", "q"},
			Usage:       "exit",
			Description: "Leave the console",
			Category:    CategoryGeneral,
			Handler:     HandlerFunc(cmdExit),
		},
	}
}

func cmdRun(_ []string, ctx *Context) error {
	return ctx.Host.Run()
}

func cmdStep(_ []string, ctx *Context) error {
	return ctx.Host.Step()
}

func cmdStop(_ []string, ctx *Context) error {
	return ctx.Host.Stop()
}

func cmdState(_ []string, ctx *Context) error {
	snap := ctx.Host.Snapshot()
	ctx.printf("State: %s\n", snap.State)
	if snap.State == execution.Stepping {
		ctx.printf("Waiting for step: %t\n", snap.StepperWaiting)
	}
	ctx.printf("Allowed: %s\n", strings.Join(allowed(snap.Predicates), ", "))
	ctx.printf("Level: %s\n", snap.Level)
	if snap.RunID != "" {
		ctx.printf("Run: %s\n", snap.RunID)
	}
	if snap.LastError != "" {
		ctx.printf("Last error: %s\n", snap.LastError)
	}
	return nil
}

func allowed(p execution.Predicates) []string {
	var out []string
	if p.Interactive {
		out = append(out, "edit")
	}
	if p.CanRun {
		out = append(out, "run")
	}
	if p.CanStop {
		out = append(out, "stop")
	}
	if p.CanExit {
		out = append(out, "exit")
	}
	if len(out) == 0 {
		out = append(out, "nothing (waiting for the script to stop)")
	}
	return out
}

func cmdLog(_ []string, ctx *Context) error {
	text := ctx.Host.Snapshot().Log
	if text == "" {
		ctx.printf("(log is empty)\n")
		return nil
	}
	ctx.printf("%s", text)
	return nil
}

func cmdLook(_ []string, ctx *Context) error {
	ctx.printf("%s", FormatView(ctx.Host.Snapshot().View))
	return nil
}

// FormatView renders a room view as plain text.
func FormatView(v world.View) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Room: %s\n", v.Room)
	if len(v.Exits) == 0 {
		b.WriteString("Exits: none\n")
	} else {
		exits := make([]string, len(v.Exits))
		for i, e := range v.Exits {
			exits[i] = e.Name
			if e.Locked {
				exits[i] += " (locked)"
			}
		}
		fmt.Fprintf(&b, "Exits: %s\n", strings.Join(exits, ", "))
	}
	if v.Item != nil {
		fmt.Fprintf(&b, "Item: %s\n", v.Item)
	}
	if len(v.Inventory) > 0 {
		items := make([]string, len(v.Inventory))
		for i, it := range v.Inventory {
			items[i] = it.String()
		}
		fmt.Fprintf(&b, "Inventory: %s\n", strings.Join(items, ", "))
	}
	fmt.Fprintf(&b, "Moves: %d\n", v.Moves)
	if v.Solved {
		b.WriteString("Solved!\n")
	}
	return b.String()
}

func cmdLoad(args []string, ctx *Context) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: load <level.yaml>")
	}
	level, err := world.LoadLevel(ctx.Resolve(args[0]))
	if err != nil {
		return err
	}
	ctx.Host.LoadLevel(level)
	ctx.printf("Loaded level %q\n", level.Name)
	return nil
}

func cmdScript(args []string, ctx *Context) error {
	if len(args) == 0 {
		code, lang := ctx.Host.Script()
		ctx.printf("-- %s --\n%s\n", lang, code)
		return nil
	}
	if len(args) != 1 {
		return fmt.Errorf("usage: script [file]")
	}

	path := ctx.Resolve(args[0])
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}
	_, current := ctx.Host.Script()
	lang := scripting.LanguageFor(path, current)
	if err := ctx.Host.SetScript(string(data), lang); err != nil {
		return err
	}
	ctx.printf("Loaded %s script from %s\n", lang, path)
	return nil
}

func cmdSave(args []string, ctx *Context) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: save <file>")
	}
	path := ctx.Resolve(args[0])
	code, _ := ctx.Host.Script()
	if err := fsutil.WriteFileAtomic(path, []byte(code)); err != nil {
		return err
	}
	ctx.printf("Saved script to %s\n", path)
	return nil
}

func cmdHelp(args []string, ctx *Context) error {
	if len(args) == 0 {
		ShowHelp(ctx)
		return nil
	}
	cmd, ok := ctx.Registry.Lookup(args[0])
	if !ok {
		return fmt.Errorf("unknown command %q", args[0])
	}
	ShowCommandHelp(ctx, cmd)
	return nil
}

func cmdExit(_ []string, ctx *Context) error {
	if s := ctx.Host.State(); !s.CanExit() {
		return fmt.Errorf("cannot exit while %s (stop the script first)", s)
	}
	return ErrExit
}
