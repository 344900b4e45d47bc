// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Stepwise Authors

// Package world is the host-owned puzzle state that scripts act on: rooms
// joined by connections, some locked, and keys lying around to open them.
//
// A World is not safe for concurrent use. The host only touches it from its
// owner goroutine; scripts reach it through dispatched jobs.
package world

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrInvalidConnection = errors.New("invalid connection")
	ErrLocked            = errors.New("connection is locked")
	ErrNoKey             = errors.New("key not in inventory")
	ErrWrongKey          = errors.New("key doesn't fit")
)

type connection struct {
	ConnectionSpec
	locked bool
}

type room struct {
	name  string
	item  *Item
	conns []*connection
}

func (r *room) connection(name string) (*connection, bool) {
	for _, c := range r.conns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// World is the mutable state of one level.
type World struct {
	level     *Level
	rooms     map[string]*room
	current   string
	inventory []Item
	moves     int

	Log Log
}

// New builds a world in the level's initial layout.
func New(level *Level) *World {
	w := &World{level: level}
	w.Reset()
	return w
}

// Level returns the level the world was built from.
func (w *World) Level() *Level { return w.level }

// Load replaces the level and resets to its initial layout.
func (w *World) Load(level *Level) {
	w.level = level
	w.Reset()
}

// Reset restores the initial layout and clears the log.
func (w *World) Reset() {
	w.rooms = make(map[string]*room, len(w.level.Rooms))
	for _, spec := range w.level.Rooms {
		r := &room{name: spec.Name}
		if spec.Item != nil {
			item := *spec.Item
			r.item = &item
		}
		for _, c := range spec.Connections {
			r.conns = append(r.conns, &connection{ConnectionSpec: c, locked: c.Locked})
		}
		w.rooms[spec.Name] = r
	}
	w.current = w.level.Start
	w.inventory = nil
	w.moves = 0
	w.Log.Clear()
}

// Room returns the name of the room the character is in.
func (w *World) Room() string { return w.current }

// Moves returns how many successful moves have been made since Reset.
func (w *World) Moves() int { return w.moves }

// Inventory returns a copy of the held items.
func (w *World) Inventory() []Item { return slices.Clone(w.inventory) }

// Solved reports whether the character stands in the goal room.
func (w *World) Solved() bool {
	return w.level.Goal != "" && w.current == w.level.Goal
}

// Move follows the named connection out of the current room.
func (w *World) Move(name string) error {
	c, ok := w.rooms[w.current].connection(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidConnection, name)
	}
	if c.locked {
		return fmt.Errorf("%w: %q", ErrLocked, name)
	}
	w.current = c.To
	w.moves++
	return nil
}

// Pickup takes the item lying in the current room, if any.
func (w *World) Pickup() (Item, bool) {
	r := w.rooms[w.current]
	if r.item == nil {
		return Item{}, false
	}
	item := *r.item
	r.item = nil
	w.inventory = append(w.inventory, item)
	return item, true
}

// UseKey toggles the lock of a connection out of the current room with a
// held key.
func (w *World) UseKey(key, name string) error {
	if !slices.Contains(w.inventory, Item{Key: key}) {
		return fmt.Errorf("%w: %q", ErrNoKey, key)
	}
	c, ok := w.rooms[w.current].connection(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidConnection, name)
	}
	if c.Key != key {
		return fmt.Errorf("%w: the %s key doesn't fit connection %q", ErrWrongKey, key, name)
	}
	c.locked = !c.locked
	return nil
}

// Exit is one connection as seen from inside a room.
type Exit struct {
	Name   string `json:"name"`
	To     string `json:"to"`
	Locked bool   `json:"locked"`
}

// View is a read-only snapshot of what the character can see.
type View struct {
	Room      string `json:"room"`
	Exits     []Exit `json:"exits"`
	Item      *Item  `json:"item,omitempty"`
	Inventory []Item `json:"inventory"`
	Solved    bool   `json:"solved"`
	Moves     int    `json:"moves"`
}

// Look returns a snapshot of the current room.
func (w *World) Look() View {
	r := w.rooms[w.current]
	v := View{
		Room:      r.name,
		Inventory: w.Inventory(),
		Solved:    w.Solved(),
		Moves:     w.moves,
	}
	if r.item != nil {
		item := *r.item
		v.Item = &item
	}
	for _, c := range r.conns {
		v.Exits = append(v.Exits, Exit{Name: c.Name, To: c.To, Locked: c.locked})
	}
	return v
}
