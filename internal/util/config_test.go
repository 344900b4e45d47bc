// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Stepwise Authors

package util

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o600))
	return dir
}

func TestLoadConfig_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_OverlaysFile(t *testing.T) {
	dir := writeConfig(t, `
tick_interval: 50ms
language: lua
level: levels/hall.yaml
watch_script: true
`)
	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 50*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, 16*time.Millisecond, cfg.FrameInterval)
	assert.Equal(t, "lua", cfg.Language)
	assert.Equal(t, filepath.Join(dir, "levels/hall.yaml"), cfg.Level)
	assert.True(t, cfg.WatchScript)
	assert.False(t, cfg.Debug)
}

func TestLoadConfig_EnvironmentWins(t *testing.T) {
	dir := writeConfig(t, "tick_interval: 50ms\nlanguage: lua\n")
	t.Setenv("STEPWISE_TICK_INTERVAL", "2s")
	t.Setenv("STEPWISE_DEBUG", "true")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.TickInterval)
	assert.Equal(t, "lua", cfg.Language)
	assert.True(t, cfg.Debug)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"language", "language: cobol\n", "invalid language"},
		{"negative tick", "tick_interval: -1s\n", "invalid tick_interval"},
		{"negative frame", "frame_interval: -1s\n", "invalid frame_interval"},
		{"yaml", "tick_interval: [\n", "failed to parse config file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadConfig_InvalidEnvironment(t *testing.T) {
	t.Setenv("STEPWISE_LANGUAGE", "cobol")
	_, err := LoadConfig(t.TempDir())
	assert.Error(t, err)
}

func TestGetDataDir(t *testing.T) {
	t.Setenv("STEPWISE_DATA", "/env/dir")
	assert.Equal(t, "/flag/dir", GetDataDir("/flag/dir"))
	assert.Equal(t, "/env/dir", GetDataDir(""))

	t.Setenv("STEPWISE_DATA", "")
	home, err := os.UserHomeDir()
	if err == nil {
		assert.Equal(t, filepath.Join(home, ".stepwise"), GetDataDir(""))
	}
}

func TestResolvePath(t *testing.T) {
	assert.Equal(t, "", ResolvePath("", "/data"))
	assert.Equal(t, "/abs/level.yaml", ResolvePath("/abs/level.yaml", "/data"))
	assert.Equal(t, filepath.Join("/data", "level.yaml"), ResolvePath("level.yaml", "/data"))
	assert.Equal(t, "level.yaml", ResolvePath("level.yaml", ""))
}
