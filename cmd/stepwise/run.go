// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Stepwise Authors

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/stepwise-game/stepwise/internal/console"
	"github.com/stepwise-game/stepwise/internal/execution"
	"github.com/stepwise-game/stepwise/internal/host"
	"github.com/stepwise-game/stepwise/internal/util"
)

// exitInterrupted is the conventional status for a run ended by SIGINT.
const exitInterrupted = 130

func newRunCommand(rootOpts *rootOptions) *cobra.Command {
	var step bool

	cmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Run a script headless and print its output",
		Long: `Run a script against the level without a user interface.

Script output is streamed to stdout. The exit status is 1 when the script
ended with an error, 2 when it finished without reaching the level's goal
room and 130 when it was interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(rootOpts, cmd, args[0])
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runHeadless(ctx, s.host, cmd, step)
		},
	}
	cmd.Flags().BoolVar(&step, "step", false, "start in single-step mode and advance on every tick")

	return cmd
}

// runHeadless drives h from Stopped through one run and back. An interrupt
// on ctx stops the script the same way the stop action does.
func runHeadless(ctx context.Context, h *host.Host, cmd *cobra.Command, step bool) error {
	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()

	g := new(errgroup.Group)
	g.Go(func() error { return h.Loop(loopCtx) })

	follower := console.NewFollower(h, cmd.OutOrStdout())
	followCtx, stopFollow := context.WithCancel(context.Background())
	g.Go(func() error {
		follower.Run(followCtx)
		return nil
	})

	start := h.Run
	if step {
		start = h.Step
	}
	snap, interrupted, err := superviseRun(ctx, h, start, step)
	stopFollow()
	stopLoop()
	if werr := g.Wait(); werr != nil && err == nil {
		err = werr
	}
	follower.Poll()
	if err != nil {
		return err
	}

	switch {
	case interrupted:
		util.Logger.Info("script interrupted", "room", snap.View.Room)
		return &exitError{code: exitInterrupted, err: fmt.Errorf("interrupted")}
	case snap.LastError != "":
		return &exitError{code: 1, err: fmt.Errorf("script failed: %s", snap.LastError)}
	case snap.Goal != "" && !snap.View.Solved:
		util.Logger.Info("level not solved", "room", snap.View.Room, "moves", snap.View.Moves)
		return &exitError{code: 2, err: fmt.Errorf("level not solved")}
	}
	util.Logger.Info("script finished", "room", snap.View.Room, "moves", snap.View.Moves)
	return nil
}

// superviseRun starts the script and waits until it is Finished, or back
// in Stopped after an interrupt. interrupted is true when ctx ended the run.
func superviseRun(ctx context.Context, h *host.Host, start func() error, step bool) (host.Snapshot, bool, error) {
	if err := start(); err != nil {
		return host.Snapshot{}, false, err
	}
	started, err := h.WaitFor(context.Background(), func(s host.Snapshot) bool {
		return s.State != execution.Stopped
	})
	if err != nil {
		return started, false, err
	}

	stopping := false
	seen := started.Iteration
	for {
		snap, err := h.WaitFor(ctx, func(s host.Snapshot) bool {
			return s.Iteration > seen && (s.State == execution.Finished ||
				s.State == execution.Stopped || (step && s.StepperWaiting))
		})
		if err != nil && !stopping {
			// Interrupted by the user
			stopping = true
			if serr := h.Stop(); serr != nil {
				return snap, true, serr
			}
			ctx = context.Background()
			continue
		}
		seen = snap.Iteration
		switch {
		case snap.State == execution.Finished, snap.State == execution.Stopped:
			return snap, stopping, nil
		case snap.StepperWaiting:
			_ = h.Step()
		}
	}
}
