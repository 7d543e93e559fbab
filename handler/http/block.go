package http

import (
	"context"
	"net/http"

	"github.com/DRLee98/random-chat-backend-sub000/core"
)

// BlockCreate hides the user from the current user's random matching.
func BlockCreate(fn core.BlockCreateFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		var (
			ns     = namespaceFromContext(ctx)
			origin = originFromContext(ctx)
		)

		id, err := extractUserID(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		b, err := fn(ns, origin, id)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusOK, b)
	}
}

// BlockDelete lifts a block of the current user.
func BlockDelete(fn core.BlockDeleteFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		var (
			ns     = namespaceFromContext(ctx)
			origin = originFromContext(ctx)
		)

		id, err := extractUserID(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		if err := fn(ns, origin, id); err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusNoContent, nil)
	}
}

// BlockListMine returns the users blocked by the current user.
func BlockListMine(fn core.BlockListMineFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		var (
			ns     = namespaceFromContext(ctx)
			origin = originFromContext(ctx)
		)

		us, err := fn(ns, origin)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		if len(us) == 0 {
			respondJSON(w, http.StatusNoContent, nil)
			return
		}

		respondJSON(w, http.StatusOK, &payloadUsers{users: us})
	}
}
