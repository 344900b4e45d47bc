// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Stepwise Authors

package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/stepwise-game/stepwise/internal/command"
	"github.com/stepwise-game/stepwise/internal/console"
	"github.com/stepwise-game/stepwise/internal/fsutil"
	"github.com/stepwise-game/stepwise/internal/host"
	"github.com/stepwise-game/stepwise/internal/util"
)

func newConsoleCommand(rootOpts *rootOptions) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "console [script]",
		Short: "Drive the simulation from a command prompt",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var scriptPath string
			if len(args) == 1 {
				scriptPath = args[0]
			}
			s, err := newSession(rootOpts, cmd, scriptPath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			cctx := &command.Context{
				Host:     s.host,
				Registry: command.NewBuiltinRegistry(),
				Out:      cmd.OutOrStdout(),
				DataDir:  s.dataDir,
			}
			opts := console.Options{Out: cmd.OutOrStdout()}
			if s.dataDir != "" {
				if err := fsutil.MkdirAll(s.dataDir); err != nil {
					util.Logger.Warn("history disabled", "error", err)
				} else {
					opts.HistoryFile = filepath.Join(s.dataDir, "history")
				}
			}
			return runFrontEnd(ctx, s, watch, func(ctx context.Context) error {
				return console.Run(ctx, cctx, opts)
			})
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload the script file when it changes")

	return cmd
}

// runFrontEnd runs the host loop, the optional script watcher and a front
// end together. The front end returning ends all three.
func runFrontEnd(ctx context.Context, s *session, watch bool, frontEnd func(context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)
	loopCtx, stopLoop := context.WithCancel(gctx)
	defer stopLoop()

	g.Go(func() error { return s.host.Loop(loopCtx) })

	if (watch || s.config.WatchScript) && s.scriptPath != "" {
		w := host.NewScriptWatcher(s.host, s.scriptPath)
		g.Go(func() error { return w.Run(loopCtx) })
	}

	g.Go(func() error {
		defer stopLoop()
		return frontEnd(gctx)
	})
	return g.Wait()
}
