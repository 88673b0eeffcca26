// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlayGrid Contributors

package game

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/oops"
)

// SessionComponent is a pluggable sub-behavior of a session, such as a
// periodically refreshed scoreboard. Its lifecycle is tied 1:1 to its
// session's.
type SessionComponent interface {
	Start()
	Stop()
}

// Session is the live runtime state of a game in progress on an arena.
type Session struct {
	ArenaID   ArenaID
	GroupID   uuid.UUID
	StartedAt time.Time

	mu         sync.Mutex
	components []SessionComponent
	started    bool
}

// NewSession creates a session bound to an arena and group.
func NewSession(arenaID ArenaID, groupID uuid.UUID) *Session {
	return &Session{
		ArenaID:   arenaID,
		GroupID:   groupID,
		StartedAt: time.Now(),
	}
}

// AddComponent attaches a component. Components added after the session
// started are started immediately.
func (s *Session) AddComponent(c SessionComponent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.components = append(s.components, c)
	if s.started {
		c.Start()
	}
}

// Start starts all components. Starting twice is a no-op.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	for _, c := range s.components {
		c.Start()
	}
}

// Stop stops all components in reverse order. Stopping a session that
// never started, or twice, is a no-op.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	s.started = false
	for i := len(s.components) - 1; i >= 0; i-- {
		s.components[i].Stop()
	}
}

// SessionManager is the per-process session registry keyed by arena
// identifier. At most one session runs per arena at any instant.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionManager creates an empty manager.
func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[string]*Session)}
}

// Register adds and starts a session. A session already registered for
// the arena identifier fails with ErrAlreadyActive.
func (sm *SessionManager) Register(s *Session) error {
	key := canonical(s.ArenaID.String())

	sm.mu.Lock()
	if _, exists := sm.sessions[key]; exists {
		sm.mu.Unlock()
		return oops.Code("ARENA_ALREADY_ACTIVE").
			With("arena", s.ArenaID.String()).
			Wrap(ErrAlreadyActive)
	}
	sm.sessions[key] = s
	sm.mu.Unlock()

	s.Start()
	return nil
}

// Get returns the session for an arena identifier, if any.
func (sm *SessionManager) Get(arenaID string) (*Session, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	s, ok := sm.sessions[canonical(arenaID)]
	return s, ok
}

// Stop stops and unregisters the session for an arena identifier.
// Returns false when no session was running, which is not an error.
func (sm *SessionManager) Stop(arenaID string) bool {
	key := canonical(arenaID)

	sm.mu.Lock()
	s, ok := sm.sessions[key]
	if ok {
		delete(sm.sessions, key)
	}
	sm.mu.Unlock()

	if !ok {
		return false
	}
	s.Stop()
	return true
}

// StopAll stops every session. Called on process shutdown.
func (sm *SessionManager) StopAll() {
	sm.mu.Lock()
	sessions := sm.sessions
	sm.sessions = make(map[string]*Session)
	sm.mu.Unlock()

	for _, s := range sessions {
		s.Stop()
	}
	if len(sessions) > 0 {
		slog.Info("stopped all sessions", "count", len(sessions))
	}
}

// Len returns the number of running sessions.
func (sm *SessionManager) Len() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// IntervalComponent runs a function on a fixed interval while its
// session is running.
type IntervalComponent struct {
	Interval time.Duration
	Refresh  func()

	mu   sync.Mutex
	stop chan struct{}
}

// Start implements SessionComponent.
func (c *IntervalComponent) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != nil {
		return
	}
	c.stop = make(chan struct{})

	go func(stop chan struct{}) {
		ticker := time.NewTicker(c.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.Refresh()
			case <-stop:
				return
			}
		}
	}(c.stop)
}

// Stop implements SessionComponent.
func (c *IntervalComponent) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop == nil {
		return
	}
	close(c.stop)
	c.stop = nil
}
