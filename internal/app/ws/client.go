/*
Package ws contains the realtime core for the drawing server.

This file defines the Client struct, representing an active WebSocket connection.
It manages the client's lifecycle and the message communication loops (ReadPump
and WritePump).
*/
package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/binay-das/draw-it/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a message sent by the client.
	maxMessageSize = 8192

	// capacity of the per-client outbound queue.
	sendQueueSize = 256
)

// Custom WebSocket close codes (4000-4999 range) used during handshake rejection.
// Policy violations (disallowed origin) use the standard 1008 instead.
const (
	// CloseTokenMissing signals that no token cookie accompanied the handshake.
	CloseTokenMissing = 4001

	// CloseTokenExpired signals a correctly signed but expired credential,
	// telling the client UX to prompt a re-sign-in.
	CloseTokenExpired = 4002

	// CloseTokenInvalid signals a structurally broken or badly signed credential.
	CloseTokenInvalid = 4003

	// CloseSessionActive signals that the user already holds a live connection.
	CloseSessionActive = 4004
)

// Client struct represents an active WebSocket connection and its authenticated user.
type Client struct {
	// underlying WebSocket connection object.
	conn *websocket.Conn

	// owning user id; set once at authentication, immutable afterwards.
	userID string

	// a buffered channel used to queue messages waiting to be sent to the client.
	send chan []byte

	// closeOnce guards the send channel against double close (deregister vs shutdown).
	closeOnce sync.Once

	// the process-wide session registry, used for teardown on disconnect.
	registry *Registry

	// the message router dispatching validated envelopes.
	router *Router

	// codec validates inbound frames before routing.
	codec Codec

	// structured logger with client context.
	logger zerolog.Logger
}

// NewClient constructs and returns a new Client instance.
func NewClient(wsConn *websocket.Conn, userID string, registry *Registry, router *Router, codec Codec) *Client {
	clientLogger := logx.Logger().With().
		Str("user_id", userID).
		Logger()

	return &Client{
		conn:     wsConn,
		userID:   userID,
		send:     make(chan []byte, sendQueueSize),
		registry: registry,
		router:   router,
		codec:    codec,
		logger:   clientLogger,
	}
}

// UserID returns the authenticated owner of this connection.
func (c *Client) UserID() string {
	return c.userID
}

// ReadPump handles reading messages from the WebSocket connection.
// It handles heartbeats (Pong), frame decoding, and performs cleanup upon connection closure.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading message (Client close/going away)")
			}
			break
		}

		env, err := c.codec.Decode(frame)
		if err != nil {
			// A misbehaving client does not lose its session over one bad frame.
			c.logger.Warn().Err(err).Msg("Dropping malformed frame")
			continue
		}

		c.router.Dispatch(c, env)
	}
}

// cleanupOnDisconnect handles the necessary cleanup steps when the client's ReadPump terminates.
// Deregistration removes the connection from every room's delivery set.
func (c *Client) cleanupOnDisconnect() {
	c.logger.Info().Msg("Client connection cleanup starting.")

	c.registry.Deregister(c.userID)

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Client connection close error")
	}
}

// enqueue attempts a non-blocking hand-off of message to the client's send queue.
// A full queue reports false; a slow consumer never blocks delivery to its peers.
func (c *Client) enqueue(message []byte) bool {
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

// closeSend closes the send queue exactly once, signalling the WritePump to emit
// a close frame and exit. Only the Registry calls this, under its write lock.
func (c *Client) closeSend() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// WritePump handles writing messages from the Client.send channel to the WebSocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		// ensure the connection is closed on exit
		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !c.writeQueuedMessage(message, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePingMessage() {
				return
			}
		}
	}
}

// writeQueuedMessage handles messages pulled from the send channel, writing them to the WebSocket.
// Returns true if the WritePump loop should continue, false if it should terminate.
func (c *Client) writeQueuedMessage(message []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "")); err != nil {
			c.logger.Debug().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		c.logger.Error().Err(err).Msg("Error writing message")
		return false
	}

	return true
}

// writePingMessage sends a periodic WebSocket Ping message to maintain the connection heartbeat.
// Returns false if the WritePump loop should terminate due to write failure.
func (c *Client) writePingMessage() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Error().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}
