// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlayGrid Contributors

package bus

import (
	"context"
	"sync"
)

// Handler inspects an inbound event. If this process owns the target it
// executes the operation and returns the completed event with handled
// true; otherwise it returns handled false and the event is ignored.
type Handler func(ctx context.Context, ev Event) (out Event, handled bool)

// Bus broadcasts events to every subscribed process.
type Bus interface {
	// Publish sends the event to all processes and blocks until a
	// responder returns it completed or the bus timeout elapses. On
	// timeout the original event is returned with Complete false and
	// a nil error; callers that require success must check Complete.
	Publish(ctx context.Context, ev Event) (Event, error)

	// Subscribe registers this process's handler. Each process
	// registers exactly one handler, which receives every event.
	Subscribe(h Handler)
}

// MemoryBus is an in-process Bus for tests and single-node
// deployments. Delivery is synchronous: Publish runs every handler in
// registration order and returns the first completed response.
type MemoryBus struct {
	mu       sync.RWMutex
	handlers []Handler

	published int
}

// NewMemoryBus creates an empty MemoryBus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{}
}

// Subscribe implements Bus.
func (b *MemoryBus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Publish implements Bus. With no owning handler the original event is
// returned unclaimed, mirroring the distributed bus timeout path.
func (b *MemoryBus) Publish(ctx context.Context, ev Event) (Event, error) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	b.mu.Lock()
	b.published++
	b.mu.Unlock()

	for _, h := range handlers {
		if err := ctx.Err(); err != nil {
			return ev, err
		}
		if out, handled := h(ctx, ev); handled {
			return out, nil
		}
	}
	return ev, nil
}

// Published returns how many events have been published, letting tests
// assert that read paths never touch the bus.
func (b *MemoryBus) Published() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.published
}
