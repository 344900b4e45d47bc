// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Stepwise Authors

package util

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitLogger(t *testing.T) {
	defer func(prev *slog.Logger) {
		Logger = prev
		slog.SetDefault(prev)
	}(Logger)
	t.Setenv("STEPWISE_DEBUG", "")

	var buf bytes.Buffer
	InitLogger(&buf, false)
	Debug("hidden")
	Logger.Info("shown", "n", 1)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown n=1")
	assert.NotContains(t, buf.String(), "time=")

	buf.Reset()
	InitLogger(&buf, true)
	Debug("visible")
	assert.Contains(t, buf.String(), "level=DEBUG msg=visible")
}
