// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlayGrid Contributors

// Package bus delivers operation requests between game processes.
//
// Every event is broadcast to all subscribed processes; the one process
// that owns the target identifier executes the operation, marks the
// event complete and responds. All other processes pass. An event that
// no process claims comes back to the publisher unchanged with
// Complete false, a degraded outcome rather than an error.
package bus

import (
	"crypto/rand"
	"encoding/json"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Event is the wire envelope for a cross-process operation request.
type Event struct {
	// ID correlates a response with its request.
	ID ulid.ULID `json:"id"`

	// Target is the canonical identifier of the addressed entity
	// (map identifier, arena identifier, or member UUID).
	Target string `json:"target"`

	// Op names the requested operation. Operation kinds are defined
	// by the consumer; the bus treats them as opaque.
	Op string `json:"op"`

	// Args is the JSON-encoded operation arguments.
	Args json.RawMessage `json:"args,omitempty"`

	// Origin is the server name of the publishing process.
	Origin string `json:"origin"`

	// Complete is set by the responder that executed the operation.
	Complete bool `json:"complete"`

	// Error carries the execution failure from the responder, if any.
	// An event can be complete and still carry an error: the owner was
	// reached but the operation failed there.
	Error string `json:"error,omitempty"`

	// Code carries the machine-readable error code alongside Error, so
	// the publisher can restore the failure kind across the wire.
	Code string `json:"code,omitempty"`
}

var (
	entropy     = ulid.Monotonic(rand.Reader, 0)
	entropyLock sync.Mutex
)

// NewEvent creates an addressed event with a fresh correlation ID.
func NewEvent(origin, target, op string, args any) (Event, error) {
	var raw json.RawMessage
	if args != nil {
		b, err := json.Marshal(args)
		if err != nil {
			return Event{}, err
		}
		raw = b
	}

	entropyLock.Lock()
	id := ulid.MustNew(ulid.Timestamp(time.Now()), entropy)
	entropyLock.Unlock()

	return Event{
		ID:     id,
		Target: target,
		Op:     op,
		Args:   raw,
		Origin: origin,
	}, nil
}
