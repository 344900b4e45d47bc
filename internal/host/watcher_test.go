// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Stepwise Authors

package host

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stepwise-game/stepwise/internal/execution"
	"github.com/stepwise-game/stepwise/internal/scripting"
)

func TestScriptWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "solve.lua")
	require.NoError(t, os.WriteFile(path, []byte("print(1)"), 0o644))

	h := New(Options{})
	t.Cleanup(h.Shutdown)

	w := NewScriptWatcher(h, path)
	w.debounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, w.Run(ctx))
	}()
	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})

	// fsnotify has no ready signal; keep writing until a reload lands.
	deadline := time.After(5 * time.Second)
	for done := false; !done; {
		require.NoError(t, os.WriteFile(path, []byte("print(2)"), 0o644))
		select {
		case <-w.Reloaded():
			done = true
		case <-time.After(100 * time.Millisecond):
		case <-deadline:
			t.Fatal("script was not reloaded")
		}
	}

	code, lang := h.Script()
	assert.Equal(t, "print(2)", code)
	assert.Equal(t, scripting.Lua, lang)
}

func TestScriptWatcher_ReloadRefusedWhileRunning(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loop.js")
	require.NoError(t, os.WriteFile(path, []byte("print(1)"), 0o644))

	h := New(Options{Script: "original"})
	t.Cleanup(h.Shutdown)
	h.machine.Request(execution.Running)
	h.machine.Apply()

	w := NewScriptWatcher(h, path)
	assert.ErrorIs(t, w.Reload(), ErrNotAllowed)

	code, _ := h.Script()
	assert.Equal(t, "original", code)
}

func TestScriptWatcher_MissingFile(t *testing.T) {
	h := New(Options{})
	t.Cleanup(h.Shutdown)

	w := NewScriptWatcher(h, filepath.Join(t.TempDir(), "absent.js"))
	assert.Error(t, w.Reload())
}
