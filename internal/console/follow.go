// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Stepwise Authors

package console

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/stepwise-game/stepwise/internal/execution"
	"github.com/stepwise-game/stepwise/internal/host"
	"github.com/stepwise-game/stepwise/internal/util"
)

// Follower streams new script output and state changes to a writer.
type Follower struct {
	host  *host.Host
	out   io.Writer
	shown int
	state execution.State
}

func NewFollower(h *host.Host, out io.Writer) *Follower {
	return &Follower{host: h, out: out, state: h.State()}
}

// Run polls the host once per frame until ctx is done.
func (f *Follower) Run(ctx context.Context) {
	poll := time.NewTicker(f.host.FrameInterval())
	defer poll.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-poll.C:
			f.Poll()
		}
	}
}

// Poll prints whatever changed since the last call.
func (f *Follower) Poll() {
	snap := f.host.Snapshot()

	// The log is cleared when the world resets.
	if len(snap.Log) < f.shown {
		f.shown = 0
	}
	if len(snap.Log) > f.shown {
		text := snap.Log[f.shown:]
		f.shown = len(snap.Log)
		for _, line := range strings.SplitAfter(text, "\n") {
			if line == "" {
				continue
			}
			if strings.HasPrefix(line, "Error: ") {
				line = util.Colorize(util.ColorRed, strings.TrimSuffix(line, "\n")) + "\n"
			}
			_, _ = fmt.Fprint(f.out, line)
		}
	}

	if snap.State != f.state {
		f.state = snap.State
		_, _ = fmt.Fprintln(f.out, util.Colorize(util.ColorCyan, "["+snap.State.String()+"]"))
	}
}
