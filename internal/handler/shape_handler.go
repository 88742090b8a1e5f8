/*
Package handler provides HTTP handlers for the REST surface of the drawing server.

This file contains the shapes backlog endpoint: the join-time fetch a client
performs to reconstruct the canvas before live events start flowing.
*/
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/binay-das/draw-it/internal/app/store"
	"github.com/binay-das/draw-it/internal/pkg/auth/jwt"
	"github.com/binay-das/draw-it/internal/pkg/errs"
	"github.com/binay-das/draw-it/internal/pkg/logx"
	"github.com/binay-das/draw-it/internal/pkg/resp"
)

// HandleListShapes returns the room's persisted shape-edit payloads in insertion
// order. Rows that are no longer valid JSON are skipped rather than failing the
// whole backlog.
func HandleListShapes(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := jwt.UserIDFromContext(r)

		slug := chi.URLParam(r, "slug")
		if n := utf8.RuneCountInString(slug); n < deps.Config.SlugMinLen || n > deps.Config.SlugMaxLen {
			resp.RespondError(w, r, errs.NewError(errs.ErrRoomSlugInvalid))
			return
		}

		messages, err := deps.Gateway.ListMessages(r.Context(), slug)
		if err != nil {
			if errors.Is(err, store.ErrRoomNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrRoomNotFound))
				return
			}

			logx.Error(err, "Failed to list room messages", "room_slug", slug, "user_id", userID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		shapes := make([]json.RawMessage, 0, len(messages))
		for _, message := range messages {
			raw := json.RawMessage(message)
			if !json.Valid(raw) {
				logx.Warn("Skipping stored shape that is not valid JSON", "room_slug", slug)
				continue
			}
			shapes = append(shapes, raw)
		}

		logx.Info("Served shape backlog", "room_slug", slug, "user_id", userID, "count", len(shapes))

		resp.RespondSuccess(w, r, map[string]any{
			"shapes": shapes,
		})
	}
}
