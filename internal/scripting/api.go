// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Stepwise Authors

package scripting

import (
	"context"
	"strings"

	"github.com/stepwise-game/stepwise/internal/dispatch"
	"github.com/stepwise-game/stepwise/internal/execution"
	"github.com/stepwise-game/stepwise/internal/world"
)

// API is the Go side of the functions scripts can call. Every call that
// touches the world is a job on the owner goroutine; calls that advance the
// simulation tick first.
type API struct {
	dispatcher *dispatch.Dispatcher[world.World]
	ticker     *execution.Ticker
}

func NewAPI(d *dispatch.Dispatcher[world.World], ticker *execution.Ticker) *API {
	return &API{dispatcher: d, ticker: ticker}
}

// Tick waits for the step gate or the pacer.
func (a *API) Tick(ctx context.Context) error {
	return a.ticker.Tick(ctx)
}

// Move walks through the named connection.
func (a *API) Move(ctx context.Context, conn string) error {
	if err := a.Tick(ctx); err != nil {
		return err
	}
	return dispatch.Do(ctx, a.dispatcher, func(w *world.World) error {
		return w.Move(conn)
	})
}

// Pickup takes the item in the current room. It returns nil when the room
// is empty.
func (a *API) Pickup(ctx context.Context) (*world.Item, error) {
	if err := a.Tick(ctx); err != nil {
		return nil, err
	}
	return dispatch.Submit(ctx, a.dispatcher, func(w *world.World) *world.Item {
		item, ok := w.Pickup()
		if !ok {
			return nil
		}
		return &item
	})
}

// UseKey toggles the lock on a connection with a held key.
func (a *API) UseKey(ctx context.Context, key, conn string) error {
	if err := a.Tick(ctx); err != nil {
		return err
	}
	return dispatch.Do(ctx, a.dispatcher, func(w *world.World) error {
		return w.UseKey(key, conn)
	})
}

// Look describes the current room without advancing the simulation.
func (a *API) Look(ctx context.Context) (world.View, error) {
	return dispatch.Submit(ctx, a.dispatcher, func(w *world.World) world.View {
		return w.Look()
	})
}

// Print appends a line to the console log.
func (a *API) Print(ctx context.Context, parts []string, sep string) error {
	text := strings.Join(parts, sep) + "\n"
	_, err := dispatch.Submit(ctx, a.dispatcher, func(w *world.World) struct{} {
		w.Log.Append(text)
		return struct{}{}
	})
	return err
}
