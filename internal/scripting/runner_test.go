// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Stepwise Authors

package scripting

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		in      string
		want    Language
		wantErr bool
	}{
		{"js", JavaScript, false},
		{"JavaScript", JavaScript, false},
		{" lua ", Lua, false},
		{"python", "", true},
	}
	for _, tt := range tests {
		got, err := ParseLanguage(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestLanguageFor(t *testing.T) {
	assert.Equal(t, JavaScript, LanguageFor("solve.js", Lua))
	assert.Equal(t, Lua, LanguageFor("/tmp/SOLVE.LUA", JavaScript))
	assert.Equal(t, Lua, LanguageFor("solve.txt", Lua))
}

func TestProgram_RunsCode(t *testing.T) {
	o := startOwner(t)
	r, err := NewRunner(Lua, o.api)
	require.NoError(t, err)

	p := &Program{Runner: r, Code: `print("hi")`}
	require.NoError(t, p.Run(context.Background()))

	o.stop()
	assert.Equal(t, "hi\n", o.world.Log.String())
}

func TestNewRunner_UnknownLanguage(t *testing.T) {
	_, err := NewRunner("python", nil)
	assert.Error(t, err)
}
