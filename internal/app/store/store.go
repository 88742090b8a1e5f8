/*
Package store is the persistence gateway for rooms and chat history.

The realtime core treats durability as a side channel: gateway failures are logged
by the caller and never block or roll back delivery to live peers.
*/
package store

import (
	"context"
	"errors"
)

// ErrRoomNotFound indicates the requested room slug has no durable record yet.
var ErrRoomNotFound = errors.New("store: room not found")

// Gateway is the storage collaborator consumed by the message router and the
// shapes backlog endpoint.
type Gateway interface {
	// UpsertRoom creates the room record if it does not exist, recording adminID
	// as the room admin. An existing room is left untouched; the admin is never
	// overwritten.
	UpsertRoom(ctx context.Context, slug string, adminID string) error

	// AppendMessage durably appends one serialized shape-edit payload to the room's
	// history. Ordering across concurrent callers is not guaranteed beyond
	// "eventually appears".
	AppendMessage(ctx context.Context, slug string, userID string, payload string) error

	// ListMessages returns the room's persisted payloads in insertion order,
	// used by clients for the join-time backlog fetch.
	// Returns ErrRoomNotFound when the slug has no room record.
	ListMessages(ctx context.Context, slug string) ([]string, error)
}
