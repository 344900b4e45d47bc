// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Stepwise Authors

package scripting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const solveLua = `
move("east")
local key = pickup()
print("got", key.key)
move("west")
move("north")
use_key(key.key, "door")
move("door")
return look().solved
`

func TestLuaRunner_SolvesDefaultLevel(t *testing.T) {
	o := startOwner(t)
	r := NewLuaRunner(o.api)

	res, err := r.Run(context.Background(), solveLua)
	require.NoError(t, err)
	assert.Equal(t, true, res.Value)

	o.stop()
	assert.Equal(t, "vault", o.world.Room())
	assert.Equal(t, "got\tbrass\n", o.world.Log.String())
}

func TestLuaRunner_WorldErrorBecomesScriptError(t *testing.T) {
	o := startOwner(t)
	r := NewLuaRunner(o.api)

	_, err := r.Run(context.Background(), `move("north") move("door")`)
	var scriptErr *ScriptError
	require.True(t, errors.As(err, &scriptErr))
	assert.Contains(t, scriptErr.Message, "connection is locked")
}

func TestLuaRunner_SyntaxError(t *testing.T) {
	o := startOwner(t)
	r := NewLuaRunner(o.api)

	_, err := r.Run(context.Background(), `move(`)
	var scriptErr *ScriptError
	require.True(t, errors.As(err, &scriptErr))
	assert.False(t, scriptErr.Interrupted)
}

func TestLuaRunner_Results(t *testing.T) {
	o := startOwner(t)
	r := NewLuaRunner(o.api)

	res, err := r.Run(context.Background(), `return 6 * 7`)
	require.NoError(t, err)
	assert.EqualValues(t, 42, res.Value)

	res, err = r.Run(context.Background(), `local x = 1`)
	require.NoError(t, err)
	assert.True(t, res.IsEmpty)

	res, err = r.Run(context.Background(), `return look().room`)
	require.NoError(t, err)
	assert.Equal(t, "stairs", res.Value)
}

func TestLuaRunner_InterruptStopsBusyLoop(t *testing.T) {
	o := startOwner(t)
	r := NewLuaRunner(o.api)

	errc := make(chan error, 1)
	go func() {
		_, err := r.Run(context.Background(), `while true do end`)
		errc <- err
	}()

	time.Sleep(20 * time.Millisecond)
	r.Interrupt()

	select {
	case err := <-errc:
		var scriptErr *ScriptError
		require.True(t, errors.As(err, &scriptErr))
		assert.True(t, scriptErr.Interrupted)
		assert.Contains(t, scriptErr.Message, "interrupted")
	case <-time.After(2 * time.Second):
		t.Fatal("interrupt was not delivered")
	}
}
