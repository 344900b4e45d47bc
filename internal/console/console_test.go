// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Stepwise Authors

package console

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/stepwise-game/stepwise/internal/command"
	"github.com/stepwise-game/stepwise/internal/execution"
	"github.com/stepwise-game/stepwise/internal/host"
	"github.com/stepwise-game/stepwise/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func completions(c *Completer, line string) []string {
	got, _ := c.Do([]rune(line), len(line))
	out := make([]string, len(got))
	for i, g := range got {
		out[i] = string(g)
	}
	return out
}

func TestCompleter(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"hall.yaml", "solve.js", "solve.lua", "notes.txt"} {
		testutil.WriteFile(t, dir, name, "")
	}
	c := NewCompleter(command.NewBuiltinRegistry(), dir)

	assert.Equal(t, []string{"ate ", "ep ", "op "}, completions(c, "st"))
	assert.Equal(t, []string{"e "}, completions(c, "stat"))
	assert.Equal(t, []string{"hall.yaml "}, completions(c, "load "))
	assert.Equal(t, []string{".js ", ".lua "}, completions(c, "script solve"))
	assert.Equal(t, []string{"it "}, completions(c, "help ex"))
	assert.Empty(t, completions(c, "run x"))
	assert.Empty(t, completions(c, "load hall.yaml "))
}

func TestFollower_StreamsLogAndState(t *testing.T) {
	h := testutil.StartHost(t, host.Options{Script: `print("one"); print("two"); move("nowhere");`})
	var out bytes.Buffer
	f := NewFollower(h, &out)

	require.NoError(t, h.Run())
	testutil.WaitState(t, h, execution.Finished)

	f.Poll()
	text := out.String()
	assert.True(t, strings.HasPrefix(text, "one\ntwo\nError: "), text)
	assert.Contains(t, text, "[finished]")

	// Nothing new, nothing printed.
	out.Reset()
	f.Poll()
	assert.Empty(t, out.String())

	// A reset starts over.
	require.NoError(t, h.Stop())
	testutil.WaitState(t, h, execution.Stopped)
	f.Poll()
	assert.Equal(t, "[stopped]\n", out.String())
}

func TestRunBasic(t *testing.T) {
	h := testutil.StartHost(t, host.Options{})
	var out bytes.Buffer
	cctx := &command.Context{Host: h, Registry: command.NewBuiltinRegistry(), Out: &out}

	in := strings.NewReader("state\nbogus\nexit\nlook\n")
	require.NoError(t, runBasic(context.Background(), cctx, in, &out))

	text := out.String()
	assert.Contains(t, text, "State: stopped")
	assert.Contains(t, text, `unknown command "bogus"`)
	assert.NotContains(t, text, "Room:", "commands after exit must not run")
}
