/*
Package handler provides the HTTP handler function for WebSocket connection upgrading and initialization.

This file contains the HandleWebSocket function, which is responsible for rate limiting,
upgrading the HTTP connection, authenticating the handshake (origin allow-list plus
token cookie), registering the session, and initiating the client lifecycle.
*/
package handler

import (
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/binay-das/draw-it/internal/app/ws"
	"github.com/binay-das/draw-it/internal/pkg/auth"
	"github.com/binay-das/draw-it/internal/pkg/auth/jwt"
	"github.com/binay-das/draw-it/internal/pkg/errs"
	"github.com/binay-das/draw-it/internal/pkg/limiter"
	"github.com/binay-das/draw-it/internal/pkg/logx"
	"github.com/binay-das/draw-it/internal/pkg/resp"
)

// handshakeCloseWait bounds the write of a rejection close frame.
const handshakeCloseWait = 5 * time.Second

// HandleWebSocket creates an HTTP HandlerFunc to process WebSocket connection requests.
//
// The origin and credential checks run after the upgrade so the browser client
// observes a distinguishable close code instead of an opaque failed handshake:
// 1008 for a disallowed origin, 4001/4002/4003 for missing/expired/invalid
// tokens, 4004 when the user already holds a live session.
func HandleWebSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if ip == "" {
			ip = "unknown_ip"
		}

		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		origin := r.Header.Get("Origin")
		if _, ok := allowedOrigins[origin]; !ok {
			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			closeWith(conn, websocket.ClosePolicyViolation, "origin not allowed")
			return
		}

		cookie, err := r.Cookie(jwt.TokenCookieName)
		if err != nil {
			logx.Warn("WebSocket connection rejected: Missing token cookie.")
			closeWith(conn, ws.CloseTokenMissing, "missing token")
			return
		}

		userID, err := deps.Verifier.Verify(cookie.Value)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				logx.Warn("WebSocket connection rejected: Token expired.")
				closeWith(conn, ws.CloseTokenExpired, "token expired")
				return
			}

			logx.Warn("WebSocket connection rejected: Token invalid.", "error", err.Error())
			closeWith(conn, ws.CloseTokenInvalid, "invalid token")
			return
		}

		client := ws.NewClient(conn, userID, deps.Registry, deps.Router, deps.Codec)

		if err := deps.Registry.Register(userID, client); err != nil {
			logx.Warn("WebSocket connection rejected: Session already active.", "user_id", userID)
			closeWith(conn, ws.CloseSessionActive, "session already active")
			return
		}

		logx.Info("WebSocket connection established and session registered", "user_id", userID)

		go client.WritePump()

		client.ReadPump()
	}
}

// closeWith sends a close control frame with the given code and reason, then
// closes the connection. Used for handshake rejections before any session exists.
func closeWith(conn *websocket.Conn, code int, reason string) {
	message := websocket.FormatCloseMessage(code, reason)

	conn.SetWriteDeadline(time.Now().Add(handshakeCloseWait))

	if err := conn.WriteMessage(websocket.CloseMessage, message); err != nil {
		logx.Warn("Failed to write rejection close frame.", "close_code", code)
	}

	if err := conn.Close(); err != nil {
		logx.Warn("Failed to close rejected connection.", "close_code", code)
	}
}
