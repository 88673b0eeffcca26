// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlayGrid Contributors

// Package game implements the distributed minigame network core:
// globally addressable maps and arenas, per-process ownership
// registries, the session and group layer, and the operation bridge
// that executes remote requests against locally owned entities.
package game

import (
	"strings"

	"github.com/samber/oops"
)

// identifier segment separator.
const idSep = ":"

// MapID identifies a map template: one name per server and game.
type MapID struct {
	Server string
	Game   string
	Name   string
}

// NewMapID builds a map identifier from its segments.
func NewMapID(server, game, name string) MapID {
	return MapID{Server: server, Game: game, Name: name}
}

// String renders the identifier as "server:game:name".
func (id MapID) String() string {
	return id.Server + idSep + id.Game + idSep + id.Name
}

// Equal compares identifiers case-insensitively.
func (id MapID) Equal(other MapID) bool {
	return strings.EqualFold(id.Server, other.Server) &&
		strings.EqualFold(id.Game, other.Game) &&
		strings.EqualFold(id.Name, other.Name)
}

// ParseMapID parses "server:game:name". A wrong segment count is a
// programmer error and fails; identifiers are never truncated.
func ParseMapID(s string) (MapID, error) {
	parts := strings.Split(s, idSep)
	if len(parts) != 3 {
		return MapID{}, oops.Code("INVALID_IDENTIFIER").
			With("value", s).
			With("segments", len(parts)).
			Wrapf(ErrInvalidIdentifier, "map identifier %q", s)
	}
	return MapID{Server: parts[0], Game: parts[1], Name: parts[2]}, nil
}

// ArenaID identifies a map instantiated into a world. The world name
// never changes after creation, making the identifier stable for the
// arena's lifetime.
type ArenaID struct {
	Map   MapID
	World string
}

// NewArenaID builds an arena identifier.
func NewArenaID(mapID MapID, world string) ArenaID {
	return ArenaID{Map: mapID, World: world}
}

// String renders the identifier as "server:game:name:world".
func (id ArenaID) String() string {
	return id.Map.String() + idSep + id.World
}

// Equal compares identifiers case-insensitively.
func (id ArenaID) Equal(other ArenaID) bool {
	return id.Map.Equal(other.Map) && strings.EqualFold(id.World, other.World)
}

// ParseArenaID parses "server:game:name:world".
func ParseArenaID(s string) (ArenaID, error) {
	parts := strings.Split(s, idSep)
	if len(parts) != 4 {
		return ArenaID{}, oops.Code("INVALID_IDENTIFIER").
			With("value", s).
			With("segments", len(parts)).
			Wrapf(ErrInvalidIdentifier, "arena identifier %q", s)
	}
	return ArenaID{
		Map:   MapID{Server: parts[0], Game: parts[1], Name: parts[2]},
		World: parts[3],
	}, nil
}

// canonical lowercases an identifier for use as a registry or index
// key, matching the case-insensitive comparison rules.
func canonical(s string) string {
	return strings.ToLower(s)
}
