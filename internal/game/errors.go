// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlayGrid Contributors

package game

import "errors"

// Sentinel errors for the game core. Call sites wrap these with
// oops codes and context; callers match with errors.Is.
var (
	// ErrNotFound is returned when an entity is absent from the store
	// or registry.
	ErrNotFound = errors.New("not found")

	// ErrInvalidIdentifier is returned when an identifier string does
	// not split into the expected number of segments.
	ErrInvalidIdentifier = errors.New("invalid identifier format")

	// ErrGroupNotFound is returned by Activate when the group
	// identifier does not resolve.
	ErrGroupNotFound = errors.New("group not found")

	// ErrSpawnUndefined is returned by Activate when the arena's map
	// has no spawn point.
	ErrSpawnUndefined = errors.New("map has no spawn point")

	// ErrAlreadyActive is returned when an arena with a running
	// session is activated again.
	ErrAlreadyActive = errors.New("arena already active")

	// ErrAlreadyRegistered is returned when a local registry already
	// holds the identifier.
	ErrAlreadyRegistered = errors.New("identifier already registered")

	// ErrRecordCorrupt is returned when a stored record's encoded
	// fields cannot be decoded. List queries skip such records.
	ErrRecordCorrupt = errors.New("record corrupt")
)

// sentinelByCode maps wire error codes back to their sentinels, so a
// failure reported by a remote process still matches errors.Is at the
// caller.
var sentinelByCode = map[string]error{
	"MAP_NOT_FOUND":        ErrNotFound,
	"ARENA_NOT_FOUND":      ErrNotFound,
	"MEMBER_NOT_FOUND":     ErrNotFound,
	"GROUP_NOT_FOUND":      ErrGroupNotFound,
	"SPAWN_UNDEFINED":      ErrSpawnUndefined,
	"ARENA_ALREADY_ACTIVE": ErrAlreadyActive,
	"ALREADY_REGISTERED":   ErrAlreadyRegistered,
	"INVALID_IDENTIFIER":   ErrInvalidIdentifier,
	"RECORD_CORRUPT":       ErrRecordCorrupt,
}
