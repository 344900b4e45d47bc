// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Stepwise Authors

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/stepwise-game/stepwise/internal/host"
	"github.com/stepwise-game/stepwise/internal/scripting"
	"github.com/stepwise-game/stepwise/internal/util"
	"github.com/stepwise-game/stepwise/internal/world"
)

// rootOptions holds global flags for all commands.
type rootOptions struct {
	dataDir  string
	level    string
	language string
	tick     time.Duration
	verbose  bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "stepwise",
		Short:         "Script a puzzle world one tick at a time",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.dataDir, "data", "d", "", "data directory (default $STEPWISE_DATA or ~/.stepwise)")
	cmd.PersistentFlags().StringVarP(&opts.level, "level", "l", "", "level file (default from config, else built-in)")
	cmd.PersistentFlags().StringVar(&opts.language, "lang", "", "script language (js|lua, default from file extension)")
	cmd.PersistentFlags().DurationVar(&opts.tick, "tick", 0, "minimum time between script actions (default from config)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(newRunCommand(opts))
	cmd.AddCommand(newConsoleCommand(opts))
	cmd.AddCommand(newTUICommand(opts))
	cmd.AddCommand(newCheckCommand(opts))
	cmd.AddCommand(newVersionCommand())

	return cmd
}

// session is everything a front end needs, resolved from flags and config.
type session struct {
	dataDir    string
	config     util.Config
	host       *host.Host
	scriptPath string
}

// newSession loads configuration, the level and the optional script file
// and builds a host in the Stopped state.
func newSession(opts *rootOptions, cmd *cobra.Command, scriptPath string) (*session, error) {
	dataDir := util.GetDataDir(opts.dataDir)
	cfg, err := util.LoadConfig(dataDir)
	if err != nil {
		return nil, err
	}
	util.InitLogger(cmd.ErrOrStderr(), cfg.Debug || opts.verbose)

	if opts.tick > 0 {
		cfg.TickInterval = opts.tick
	}

	levelPath := cfg.Level
	if opts.level != "" {
		levelPath = opts.level
	}
	level := world.DefaultLevel()
	if levelPath != "" {
		if level, err = world.LoadLevel(levelPath); err != nil {
			return nil, err
		}
	}

	lang, err := scripting.ParseLanguage(cfg.Language)
	if err != nil {
		return nil, err
	}
	var code string
	if scriptPath != "" {
		data, err := os.ReadFile(scriptPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read script: %w", err)
		}
		code = string(data)
		lang = scripting.LanguageFor(scriptPath, lang)
	}
	if opts.language != "" {
		if lang, err = scripting.ParseLanguage(opts.language); err != nil {
			return nil, err
		}
	}

	h := host.New(host.Options{
		Level:         level,
		Script:        code,
		Language:      lang,
		TickInterval:  cfg.TickInterval,
		FrameInterval: cfg.FrameInterval,
		Logger:        util.Logger,
	})
	util.Debug("session ready", "data", dataDir, "level", level.Name, "language", lang, "tick", cfg.TickInterval)

	return &session{dataDir: dataDir, config: cfg, host: h, scriptPath: scriptPath}, nil
}
