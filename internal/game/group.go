// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlayGrid Contributors

package game

import (
	"time"

	"github.com/google/uuid"
)

// Group is an ad-hoc ordered set of members queued to play a game
// together. Groups are persisted so any process can resolve them.
type Group struct {
	ID        uuid.UUID
	Game      string
	Members   []uuid.UUID
	CreatedAt time.Time
}

// Size returns the number of members.
func (g *Group) Size() int { return len(g.Members) }

// Member is a participant, persisted independently of any group or
// arena so it can be resolved on any process. Server is the name of
// the process currently hosting the member's connection, empty when
// offline.
type Member struct {
	ID     uuid.UUID
	Name   string
	Server string
}
