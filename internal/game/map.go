// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlayGrid Contributors

package game

import (
	"slices"
	"time"

	"github.com/playgrid/playgrid/internal/platform"
)

// Schematic references a buildable structure for a map. The file is
// pasted into the arena world by the hosting process; the core only
// carries the reference.
type Schematic struct {
	File    string `json:"file"`
	OffsetX int    `json:"offset_x,omitempty"`
	OffsetY int    `json:"offset_y,omitempty"`
	OffsetZ int    `json:"offset_z,omitempty"`
}

// Capacity is the set of admissible group sizes for a map. An empty
// capacity admits any size.
type Capacity []int

// Admits reports whether a group of the given size may play this map.
func (c Capacity) Admits(size int) bool {
	if len(c) == 0 {
		return true
	}
	return slices.Contains(c, size)
}

// DisplayItem describes how a map is presented in selection UIs.
type DisplayItem struct {
	Material string `json:"material"`
	Amount   int    `json:"amount,omitempty"`
	Title    string `json:"title,omitempty"`
}

// Map is a template describing a playable layout, identified per
// server, game and name. The identifier is immutable; the optional
// fields are mutated only through the owning process and written
// through to the store on save.
type Map struct {
	ID          MapID
	Schematic   *Schematic
	Capacity    Capacity
	DisplayItem *DisplayItem
	Spawn       *platform.Position
	CreatedAt   time.Time
}

// MapUpdate carries the mutable map fields for a save. Nil pointers
// and nil slices leave the current value untouched.
type MapUpdate struct {
	Schematic   *Schematic         `json:"schematic,omitempty"`
	Capacity    Capacity           `json:"capacity,omitempty"`
	DisplayItem *DisplayItem       `json:"display_item,omitempty"`
	Spawn       *platform.Position `json:"spawn,omitempty"`
}

// apply merges the update into the map.
func (u MapUpdate) apply(m *Map) {
	if u.Schematic != nil {
		m.Schematic = u.Schematic
	}
	if u.Capacity != nil {
		m.Capacity = u.Capacity
	}
	if u.DisplayItem != nil {
		m.DisplayItem = u.DisplayItem
	}
	if u.Spawn != nil {
		m.Spawn = u.Spawn
	}
}
