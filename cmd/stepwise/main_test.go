// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Stepwise Authors

package main

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/stepwise-game/stepwise/internal/execution"
	"github.com/stepwise-game/stepwise/internal/host"
	"github.com/stepwise-game/stepwise/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("os/signal.loop"))
}

// execute runs the root command with a fresh data dir.
func execute(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"-d", dataDir}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func dataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "config.yaml", "tick_interval: 1ms\nframe_interval: 1ms\n")
	return dir
}

func TestRun_Solves(t *testing.T) {
	dir := dataDir(t)
	script := testutil.WriteFile(t, dir, "solve.js", `
move("east");
var key = pickup();
print("got", key.key);
move("west");
move("north");
key.use("door");
move("door");
`)
	out, err := execute(t, dir, "run", script)
	require.NoError(t, err)
	assert.Contains(t, out, "got brass\n")
	assert.Contains(t, out, "[finished]")
}

func TestRun_Stepped(t *testing.T) {
	dir := dataDir(t)
	script := testutil.WriteFile(t, dir, "walk.lua", `move("east") print(look().room) move("west")`)

	out, err := execute(t, dir, "run", "--step", script)
	require.Error(t, err, "the walk does not reach the goal")
	var exitErr *exitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 2, exitErr.code)
	assert.Contains(t, out, "pantry\n")
}

func TestRun_ScriptError(t *testing.T) {
	dir := dataDir(t)
	script := testutil.WriteFile(t, dir, "bad.js", `move("nowhere");`)

	out, err := execute(t, dir, "run", script)
	var exitErr *exitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 1, exitErr.code)
	assert.Contains(t, out, "Error: ")
}

func TestRun_InterruptIsNotScriptError(t *testing.T) {
	h := host.New(host.Options{
		Script:        `for (;;) {}`,
		TickInterval:  time.Millisecond,
		FrameInterval: time.Millisecond,
	})
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	// The run is cancelled as soon as it is seen running.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := runHeadless(ctx, h, cmd, false)
	var exitErr *exitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, exitInterrupted, exitErr.code)
	assert.NotContains(t, err.Error(), "script failed")
	assert.Equal(t, execution.Stopped, h.State())
}

func TestRun_MissingScript(t *testing.T) {
	_, err := execute(t, dataDir(t), "run", "absent.js")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read script")
}

func TestRun_BadConfig(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "config.yaml", "language: cobol\n")
	_, err := execute(t, dir, "run", "x.js")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid language")
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	good := testutil.WriteFile(t, dir, "good.yaml", `
name: hall
rooms:
  - name: a
    connections:
      - {name: out, to: b}
  - name: b
`)
	bad := testutil.WriteFile(t, dir, "bad.yaml", `
name: broken
rooms:
  - name: a
    connections:
      - {name: out, to: nowhere}
`)

	out, err := execute(t, dir, "check", good)
	require.NoError(t, err)
	assert.Contains(t, out, `level "hall", 2 rooms, start a, goal none`)
	assert.Contains(t, out, "    Room: a\n")

	out, err = execute(t, dir, "check", good, bad)
	var exitErr *exitError
	require.True(t, errors.As(err, &exitErr))
	assert.Contains(t, out, "unknown room")
	assert.Contains(t, err.Error(), "1 of 2 levels invalid")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "stepwise dev")
}
