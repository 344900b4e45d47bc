// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Stepwise Authors

package scripting

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/stepwise-game/stepwise/internal/dispatch"
	"github.com/stepwise-game/stepwise/internal/execution"
	"github.com/stepwise-game/stepwise/internal/world"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// owner drains the dispatcher on its own goroutine, standing in for the
// host loop.
type owner struct {
	world      *world.World
	dispatcher *dispatch.Dispatcher[world.World]
	machine    *execution.Machine
	api        *API

	quit chan struct{}
	wg   sync.WaitGroup
}

func startOwner(t *testing.T) *owner {
	t.Helper()
	o := &owner{
		world:      world.New(world.DefaultLevel()),
		dispatcher: dispatch.New[world.World](nil),
		machine:    execution.NewMachine(),
		quit:       make(chan struct{}),
	}
	query := func(ctx context.Context) (execution.State, error) {
		return dispatch.Submit(ctx, o.dispatcher, func(*world.World) execution.State {
			return o.machine.Current()
		})
	}
	ticker := execution.NewTicker(query, execution.NewStepper(), execution.NewPacer(), 0)
	o.api = NewAPI(o.dispatcher, ticker)

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		for {
			o.dispatcher.Drain(o.world)
			select {
			case <-o.quit:
				return
			case <-time.After(time.Millisecond):
			}
		}
	}()
	t.Cleanup(o.stop)
	return o
}

// stop ends the owner loop; the world may be inspected afterwards.
func (o *owner) stop() {
	select {
	case <-o.quit:
		return
	default:
	}
	close(o.quit)
	o.wg.Wait()
	o.dispatcher.Close()
}
