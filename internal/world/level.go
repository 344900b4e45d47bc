// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Stepwise Authors

package world

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed levels/default.yaml
var defaultLevel []byte

// Item is something lying in a room that can be picked up. Only keys exist
// for now.
type Item struct {
	Key string `yaml:"key" json:"key"`
}

func (i Item) String() string {
	return fmt.Sprintf("Key(%s)", i.Key)
}

// ConnectionSpec is a one-way passage out of a room.
type ConnectionSpec struct {
	Name   string `yaml:"name"`
	To     string `yaml:"to"`
	Locked bool   `yaml:"locked"`
	Key    string `yaml:"key"` // key that toggles the lock, empty = none
}

// RoomSpec describes a room in its initial state.
type RoomSpec struct {
	Name        string           `yaml:"name"`
	Item        *Item            `yaml:"item"`
	Connections []ConnectionSpec `yaml:"connections"`
}

// Level is the parsed, validated level description.
type Level struct {
	Name  string     `yaml:"name"`
	Start string     `yaml:"start"`
	Goal  string     `yaml:"goal"` // optional
	Rooms []RoomSpec `yaml:"rooms"`
}

// DefaultLevel returns the built-in level.
func DefaultLevel() *Level {
	level, err := ParseLevel(defaultLevel)
	if err != nil {
		// The embedded level is part of the binary
		panic("invalid built-in level: " + err.Error())
	}
	return level
}

// LoadLevel reads and validates a level file.
func LoadLevel(path string) (*Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read level: %w", err)
	}
	level, err := ParseLevel(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return level, nil
}

// ParseLevel decodes and validates YAML level data.
func ParseLevel(data []byte) (*Level, error) {
	var level Level
	if err := yaml.Unmarshal(data, &level); err != nil {
		return nil, fmt.Errorf("failed to parse level: %w", err)
	}
	if err := level.Validate(); err != nil {
		return nil, err
	}
	return &level, nil
}

// Validate checks that every reference in the level resolves.
func (l *Level) Validate() error {
	if len(l.Rooms) == 0 {
		return fmt.Errorf("level has no rooms")
	}

	rooms := make(map[string]bool, len(l.Rooms))
	for _, r := range l.Rooms {
		if r.Name == "" {
			return fmt.Errorf("room without a name")
		}
		if rooms[r.Name] {
			return fmt.Errorf("duplicate room %q", r.Name)
		}
		rooms[r.Name] = true
		if r.Item != nil && r.Item.Key == "" {
			return fmt.Errorf("room %q: item without a key name", r.Name)
		}
	}

	for _, r := range l.Rooms {
		seen := make(map[string]bool, len(r.Connections))
		for _, c := range r.Connections {
			if c.Name == "" {
				return fmt.Errorf("room %q: connection without a name", r.Name)
			}
			if seen[c.Name] {
				return fmt.Errorf("room %q: duplicate connection %q", r.Name, c.Name)
			}
			seen[c.Name] = true
			if !rooms[c.To] {
				return fmt.Errorf("room %q: connection %q leads to unknown room %q", r.Name, c.Name, c.To)
			}
		}
	}

	if l.Start == "" {
		l.Start = l.Rooms[0].Name
	}
	if !rooms[l.Start] {
		return fmt.Errorf("start room %q does not exist", l.Start)
	}
	if l.Goal != "" && !rooms[l.Goal] {
		return fmt.Errorf("goal room %q does not exist", l.Goal)
	}
	return nil
}
