// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlayGrid Contributors

package game

import (
	"github.com/google/uuid"

	"github.com/playgrid/playgrid/internal/platform"
)

// Operation kinds carried on the bus. The target identifier on the
// envelope selects the entity; the kind selects the method.
const (
	OpMapSave          = "map.save"
	OpMapRemove        = "map.remove"
	OpArenaCreateWorld = "arena.create_world"
	OpArenaActivate    = "arena.activate"
	OpArenaDeactivate  = "arena.deactivate"
	OpArenaRemove      = "arena.remove"
	OpMemberTeleport   = "member.teleport"
)

// ActivateArgs is the payload for OpArenaActivate.
type ActivateArgs struct {
	GroupID uuid.UUID `json:"group_id"`
}

// TeleportArgs is the payload for OpMemberTeleport. The target
// identifier on the envelope is the member UUID; the owning process is
// whichever one hosts the member's connection.
type TeleportArgs struct {
	Pos platform.Position `json:"pos"`
}
