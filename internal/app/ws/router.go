/*
Package ws contains the realtime core for the drawing server.

This file defines the Router, which dispatches validated envelopes to the join,
leave, and chat handlers, mutating the registry and invoking the persistence
gateway as side effects.
*/
package ws

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/binay-das/draw-it/internal/app/store"
	"github.com/binay-das/draw-it/internal/pkg/logx"
)

// persistTimeout bounds each fire-and-forget gateway call.
const persistTimeout = 5 * time.Second

// Router dispatches validated envelopes for a connection.
// Broadcast and persistence are independent side effects of a chat event:
// a gateway failure never suppresses delivery, and vice versa.
type Router struct {
	registry    *Registry
	broadcaster *Broadcaster
	gateway     store.Gateway
	logger      zerolog.Logger
}

// NewRouter constructs a Router over the given registry, broadcaster, and gateway.
func NewRouter(registry *Registry, broadcaster *Broadcaster, gateway store.Gateway) *Router {
	routerLogger := logx.Logger().With().Str("component", "Router").Logger()

	return &Router{
		registry:    registry,
		broadcaster: broadcaster,
		gateway:     gateway,
		logger:      routerLogger,
	}
}

// Dispatch routes one validated envelope from the given client.
func (rt *Router) Dispatch(c *Client, env Envelope) {
	switch env.Type {
	case TypeJoin:
		rt.handleJoin(c, env.RoomSlug)
	case TypeLeave:
		rt.handleLeave(c, env.RoomSlug)
	case TypeChat:
		rt.handleChat(c, env)
	}
}

// handleJoin adds the connection to the room's delivery set. Repeat joins are
// no-ops. A membership that is newly added triggers one durable room upsert,
// recording the joining user as admin only if the room record did not exist.
func (rt *Router) handleJoin(c *Client, slug string) {
	if !rt.registry.Join(c.UserID(), slug) {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()

		if err := rt.gateway.UpsertRoom(ctx, slug, c.UserID()); err != nil {
			rt.logger.Error().Err(err).
				Str("room_slug", slug).
				Str("user_id", c.UserID()).
				Msg("Room upsert failed.")
		}
	}()
}

// handleLeave removes the connection from the room's delivery set. No-op if the
// connection is not a member.
func (rt *Router) handleLeave(c *Client, slug string) {
	rt.registry.Leave(c.UserID(), slug)
}

// handleChat fans the shape-edit payload out to the room and appends a durable
// copy. Chat frames addressed to a room this connection has not joined are
// silently dropped: no broadcast, no persistence.
func (rt *Router) handleChat(c *Client, env Envelope) {
	if !rt.registry.IsMember(c.UserID(), env.RoomSlug) {
		rt.logger.Warn().
			Str("user_id", c.UserID()).
			Str("room_slug", env.RoomSlug).
			Msg("Dropping chat for room the sender has not joined.")
		return
	}

	outbound := Envelope{
		Type:     TypeChat,
		RoomSlug: env.RoomSlug,
		Message:  env.Message,
	}

	rt.broadcaster.Publish(env.RoomSlug, outbound)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()

		if err := rt.gateway.AppendMessage(ctx, env.RoomSlug, c.UserID(), string(env.Message)); err != nil {
			rt.logger.Error().Err(err).
				Str("room_slug", env.RoomSlug).
				Str("user_id", c.UserID()).
				Msg("Message append failed. Broadcast already delivered; durability gap accepted.")
		}
	}()
}
