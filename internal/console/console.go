// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Stepwise Authors

// Package console is the line-oriented front end: a readline prompt that
// dispatches to the command registry while the host runs alongside it.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/chzyer/readline"

	"github.com/stepwise-game/stepwise/internal/command"
	"github.com/stepwise-game/stepwise/internal/util"
)

// Options configures a console session.
type Options struct {
	HistoryFile string
	In          io.ReadCloser // nil = stdin
	Out         io.Writer     // nil = stdout
}

// Run reads commands until exit, EOF or ctx is done. The host must be
// iterated by someone else for the duration.
func Run(ctx context.Context, cctx *command.Context, opts Options) error {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            prompt(cctx),
		HistoryFile:       opts.HistoryFile,
		HistoryLimit:      1000,
		AutoComplete:      NewCompleter(cctx.Registry, cctx.DataDir),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
		Stdin:             opts.In,
		Stdout:            opts.Out,
	})
	if err != nil {
		_, _ = fmt.Fprintf(opts.Out, "Failed to create readline instance, falling back to basic input: %v\n", err)
		in := opts.In
		if in == nil {
			in = os.Stdin
		}
		return runBasic(ctx, cctx, in, opts.Out)
	}
	var closeOnce sync.Once
	closeRL := func() { closeOnce.Do(func() { _ = rl.Close() }) }
	defer closeRL()

	cctx.Out = rl.Stdout()
	follower := NewFollower(cctx.Host, cctx.Out)
	followCtx, stopFollow := context.WithCancel(ctx)
	defer stopFollow()
	go follower.Run(followCtx)

	// Readline blocks; closing it is the only way to unblock on ctx.
	go func() {
		<-followCtx.Done()
		closeRL()
	}()

	for {
		rl.SetPrompt(prompt(cctx))
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if len(line) == 0 {
					_, _ = fmt.Fprintln(cctx.Out, "Use 'quit' or 'exit' to exit")
				}
				continue
			}
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("error reading input: %w", err)
		}

		if done := execute(cctx, line); done {
			_, _ = fmt.Fprintln(cctx.Out, "Goodbye!")
			return nil
		}
	}
}

func runBasic(ctx context.Context, cctx *command.Context, in io.Reader, out io.Writer) error {
	cctx.Out = out
	scanner := bufio.NewScanner(in)
	for ctx.Err() == nil {
		_, _ = fmt.Fprint(out, prompt(cctx))
		if !scanner.Scan() {
			break
		}
		if execute(cctx, scanner.Text()) {
			break
		}
	}
	return scanner.Err()
}

// execute runs one line and reports whether the console should exit.
func execute(cctx *command.Context, line string) bool {
	err := cctx.Registry.Execute(strings.TrimSpace(line), cctx)
	switch {
	case err == nil:
		return false
	case errors.Is(err, command.ErrExit):
		return true
	default:
		_, _ = fmt.Fprintln(cctx.Out, util.Colorize(util.ColorRed, "Error: "+err.Error()))
		return false
	}
}

func prompt(cctx *command.Context) string {
	return util.Colorize(util.ColorGreen, fmt.Sprintf("stepwise [%s]>", cctx.Host.State())) + " "
}
