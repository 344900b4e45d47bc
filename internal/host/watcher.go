// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Stepwise Authors

package host

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/stepwise-game/stepwise/internal/scripting"
)

const watchDebounce = 500 * time.Millisecond

// ScriptWatcher reloads a script file into the host's editor buffer when it
// changes on disk. Changes that arrive while a script is running are
// skipped; the next write after the run picks them up.
type ScriptWatcher struct {
	host     *Host
	path     string
	debounce time.Duration
	reloaded chan struct{}
}

// NewScriptWatcher watches path for the given host.
func NewScriptWatcher(h *Host, path string) *ScriptWatcher {
	return &ScriptWatcher{
		host:     h,
		path:     filepath.Clean(path),
		debounce: watchDebounce,
		reloaded: make(chan struct{}, 1),
	}
}

// Reloaded receives a value after each successful reload.
func (w *ScriptWatcher) Reloaded() <-chan struct{} { return w.reloaded }

// Reload reads the script file and hands it to the host.
func (w *ScriptWatcher) Reload() error {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}
	_, current := w.host.Script()
	lang := scripting.LanguageFor(w.path, current)
	if err := w.host.SetScript(string(data), lang); err != nil {
		return err
	}
	select {
	case w.reloaded <- struct{}{}:
	default:
	}
	return nil
}

// Run blocks until ctx is done. The parent directory is watched rather than
// the file so editors that replace the file by rename keep working.
func (w *ScriptWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch script directory: %w", err)
	}
	w.host.logger.Info("watching script", "path", w.path)

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounce, func() {
				err := w.Reload()
				switch {
				case err == nil:
					w.host.logger.Info("script reloaded", "path", w.path)
				case errors.Is(err, ErrNotAllowed):
					w.host.logger.Warn("script changed while running, not reloaded", "path", w.path)
				default:
					w.host.logger.Warn("error reloading script", "error", err)
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.host.logger.Warn("file watcher error", "error", err)
		}
	}
}
