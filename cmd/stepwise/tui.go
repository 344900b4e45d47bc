// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Stepwise Authors

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/stepwise-game/stepwise/internal/host"
	"github.com/stepwise-game/stepwise/internal/tui"
)

func newTUICommand(rootOpts *rootOptions) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "tui [script]",
		Short: "Open the full-screen editor and simulation view",
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
			return runTUI(ctx, s, watch || s.config.WatchScript)
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload the script file when it changes")

	return cmd
}

// runTUI hands the host to the bubbletea loop, which iterates it every
// frame. Only the watcher runs beside it.
func runTUI(ctx context.Context, s *session, watch bool) error {
	defer s.host.Shutdown()

	g, gctx := errgroup.WithContext(ctx)
	watchCtx, stopWatch := context.WithCancel(gctx)
	defer stopWatch()

	if watch && s.scriptPath != "" {
		w := host.NewScriptWatcher(s.host, s.scriptPath)
		g.Go(func() error { return w.Run(watchCtx) })
	}

	g.Go(func() error {
		defer stopWatch()
		p := tea.NewProgram(tui.NewModel(s.host, s.scriptPath), tea.WithAltScreen(), tea.WithContext(gctx))
		if _, err := p.Run(); err != nil && gctx.Err() == nil {
			return fmt.Errorf("tui: %w", err)
		}
		return nil
	})
	return g.Wait()
}
