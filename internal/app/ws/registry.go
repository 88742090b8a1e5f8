/*
Package ws contains the realtime core for the drawing server.

This file defines the Registry, the single piece of shared mutable state:
the process-wide table of live connections and the room slugs each has joined.
*/
package ws

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/binay-das/draw-it/internal/pkg/logx"
)

// ErrSessionActive is returned by Register when the user id already has a live
// connection. One authenticated session per user; a second concurrent connection
// is rejected rather than silently hijacking the delivery target.
var ErrSessionActive = errors.New("ws: session already registered for user")

// entry pairs a live client with the set of room slugs it has joined.
type entry struct {
	client *Client
	rooms  map[string]struct{}
}

// Registry is the in-memory session table mapping user ids to live connections
// and their room memberships. All access goes through the mutex so that joins,
// leaves, teardown, and delivery snapshots stay linearizable.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	logger   zerolog.Logger
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	registryLogger := logx.Logger().With().Str("component", "Registry").Logger()

	return &Registry{
		sessions: make(map[string]*entry),
		logger:   registryLogger,
	}
}

// Register inserts a new session with an empty room set.
// It returns ErrSessionActive if the user id is already registered.
func (reg *Registry) Register(userID string, client *Client) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, ok := reg.sessions[userID]; ok {
		reg.logger.Warn().Str("user_id", userID).Msg("Rejected duplicate session registration.")
		return ErrSessionActive
	}

	reg.sessions[userID] = &entry{
		client: client,
		rooms:  make(map[string]struct{}),
	}

	reg.logger.Info().Str("user_id", userID).Int("total_sessions", len(reg.sessions)).Msg("Session registered.")
	return nil
}

// Join adds slug to the user's room set. It reports whether the membership was
// newly added: false for unknown users and for repeat joins (idempotent).
func (reg *Registry) Join(userID string, slug string) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	e, ok := reg.sessions[userID]
	if !ok {
		reg.logger.Warn().Str("user_id", userID).Msg("Join for unregistered user ignored.")
		return false
	}

	if _, member := e.rooms[slug]; member {
		return false
	}

	e.rooms[slug] = struct{}{}
	reg.logger.Info().Str("user_id", userID).Str("room_slug", slug).Msg("User joined room.")
	return true
}

// Leave removes slug from the user's room set. No-op if not a member.
func (reg *Registry) Leave(userID string, slug string) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	e, ok := reg.sessions[userID]
	if !ok {
		return false
	}

	if _, member := e.rooms[slug]; !member {
		return false
	}

	delete(e.rooms, slug)
	reg.logger.Info().Str("user_id", userID).Str("room_slug", slug).Msg("User left room.")
	return true
}

// IsMember reports whether the user's session has joined slug.
func (reg *Registry) IsMember(userID string, slug string) bool {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	e, ok := reg.sessions[userID]
	if !ok {
		return false
	}

	_, member := e.rooms[slug]
	return member
}

// MembersOf returns a snapshot of all clients whose sessions have joined slug.
func (reg *Registry) MembersOf(slug string) []*Client {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	var members []*Client
	for _, e := range reg.sessions {
		if _, member := e.rooms[slug]; member {
			members = append(members, e.client)
		}
	}

	return members
}

// EachMember invokes fn for every client currently joined to slug, holding the
// read lock for the duration. This is the delivery path: running under the lock
// keeps enqueues ordered against Deregister closing a client's send queue.
func (reg *Registry) EachMember(slug string, fn func(*Client)) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	for _, e := range reg.sessions {
		if _, member := e.rooms[slug]; member {
			fn(e.client)
		}
	}
}

// Deregister removes the user's session entirely and closes its send queue.
// Called on socket close; safe to call for users that were never registered.
func (reg *Registry) Deregister(userID string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	e, ok := reg.sessions[userID]
	if !ok {
		return
	}

	delete(reg.sessions, userID)
	e.client.closeSend()

	reg.logger.Info().Str("user_id", userID).Int("total_sessions", len(reg.sessions)).Msg("Session deregistered.")
}

// Len returns the number of live sessions.
func (reg *Registry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	return len(reg.sessions)
}

// Shutdown closes every live session's send queue so the write pumps emit a
// close frame and exit. Used during graceful server shutdown.
func (reg *Registry) Shutdown() {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	for userID, e := range reg.sessions {
		e.client.closeSend()
		delete(reg.sessions, userID)
	}

	reg.logger.Info().Msg("Registry shutdown complete.")
}
