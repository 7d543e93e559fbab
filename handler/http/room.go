package http

import (
	"context"
	"net/http"

	"github.com/DRLee98/random-chat-backend-sub000/core"
)

// RoomListMine returns the chat rooms of the current user.
func RoomListMine(fn core.RoomListMineFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		var (
			ns     = namespaceFromContext(ctx)
			origin = originFromContext(ctx)
		)

		rs, err := fn(ns, origin)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		if len(rs) == 0 {
			respondJSON(w, http.StatusNoContent, nil)
			return
		}

		respondJSON(w, http.StatusOK, struct {
			Rooms []*core.ChatRoom `json:"rooms"`
			Count int              `json:"rooms_count"`
		}{
			Rooms: rs,
			Count: len(rs),
		})
	}
}
