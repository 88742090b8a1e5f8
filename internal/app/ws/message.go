/*
Package ws contains the realtime core: the session registry, the per-connection
client pumps, the envelope codec, the message router, and the room broadcaster.

This file defines the wire envelope exchanged over the WebSocket and the Codec
that turns raw inbound frames into validated envelopes.
*/
package ws

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/binay-das/draw-it/internal/app/shape"
)

// MessageType discriminates the envelope union.
type MessageType string

const (
	// TypeJoin adds the connection to a room's delivery set.
	TypeJoin MessageType = "join"

	// TypeLeave removes the connection from a room's delivery set.
	TypeLeave MessageType = "leave"

	// TypeChat carries one shape-edit record addressed to a room.
	TypeChat MessageType = "chat"
)

// Envelope is the wire unit exchanged over the socket, inbound and outbound.
// The Message payload is opaque to the server beyond shape-union validation;
// it is forwarded to peers and storage unmodified.
type Envelope struct {
	Type     MessageType     `json:"type"`
	RoomSlug string          `json:"roomSlug"`
	Message  json.RawMessage `json:"message,omitempty"`
}

// Codec parses and validates inbound frames against the envelope schema.
// Slug length bounds come from configuration.
type Codec struct {
	SlugMinLen int
	SlugMaxLen int
}

// NewCodec constructs a Codec with the given room slug length bounds.
func NewCodec(slugMinLen, slugMaxLen int) Codec {
	return Codec{SlugMinLen: slugMinLen, SlugMaxLen: slugMaxLen}
}

// Decode parses frame as JSON and validates the result against the envelope
// schema. It returns a human-readable reason on failure; the caller logs the
// reason and drops the frame without touching registry state.
func (c Codec) Decode(frame []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Envelope{}, fmt.Errorf("frame is not valid JSON: %w", err)
	}

	switch env.Type {
	case TypeJoin, TypeLeave, TypeChat:
	default:
		return Envelope{}, fmt.Errorf("unknown envelope type %q", env.Type)
	}

	if env.RoomSlug == "" {
		return Envelope{}, fmt.Errorf("roomSlug is required")
	}

	if n := utf8.RuneCountInString(env.RoomSlug); n < c.SlugMinLen || n > c.SlugMaxLen {
		return Envelope{}, fmt.Errorf("roomSlug %q length must be between %d and %d", env.RoomSlug, c.SlugMinLen, c.SlugMaxLen)
	}

	if env.Type == TypeChat {
		if err := shape.Validate(env.Message); err != nil {
			return Envelope{}, fmt.Errorf("chat message rejected: %w", err)
		}
	}

	return env, nil
}
