/*
Package ws contains the realtime core for the drawing server.

This file defines the Broadcaster, which fans one envelope out to every live
connection joined to the target room.
*/
package ws

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/binay-das/draw-it/internal/pkg/logx"
)

// Broadcaster delivers envelopes to the current membership of a room.
type Broadcaster struct {
	registry *Registry
	logger   zerolog.Logger
}

// NewBroadcaster constructs a Broadcaster over the given registry.
func NewBroadcaster(registry *Registry) *Broadcaster {
	broadcasterLogger := logx.Logger().With().Str("component", "Broadcaster").Logger()

	return &Broadcaster{
		registry: registry,
		logger:   broadcasterLogger,
	}
}

// Publish serializes env once and enqueues it to every connection joined to
// roomSlug at the moment of the call, the sender included. Delivery is
// best-effort per connection: a full queue drops the frame for that peer only
// and never aborts delivery to the rest. Returns the number of enqueued peers.
func (b *Broadcaster) Publish(roomSlug string, env Envelope) int {
	payload, err := json.Marshal(env)
	if err != nil {
		b.logger.Error().Err(err).Str("room_slug", roomSlug).Msg("Error marshaling envelope for broadcast.")
		return 0
	}

	delivered := 0
	b.registry.EachMember(roomSlug, func(client *Client) {
		if client.enqueue(payload) {
			delivered++
			return
		}

		b.logger.Warn().
			Str("user_id", client.UserID()).
			Str("room_slug", roomSlug).
			Msg("Client send queue full, dropping frame for this peer.")
	})

	return delivered
}
