package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/DRLee98/random-chat-backend-sub000/core"
	"github.com/DRLee98/random-chat-backend-sub000/service/invite"
)

// InviteCandidates returns random users the current user can invite.
func InviteCandidates(fn core.InviteCandidatesFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		var (
			ns     = namespaceFromContext(ctx)
			origin = originFromContext(ctx)
		)

		count, err := extractCount(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		us, err := fn(ns, origin, count)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusOK, &payloadUsers{users: us})
	}
}

// InviteCreate starts a new invite batch for the current user.
func InviteCreate(fn core.InviteCreateFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		var (
			ns     = namespaceFromContext(ctx)
			origin = originFromContext(ctx)
			p      = payloadInviteCreate{}
		)

		err := json.NewDecoder(r.Body).Decode(&p)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		b, err := fn(ns, origin, p.UserIDs)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusCreated, b)
	}
}

// InviteListPending returns the invite batches of the current user.
func InviteListPending(fn core.InviteListPendingFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		var (
			ns     = namespaceFromContext(ctx)
			origin = originFromContext(ctx)
		)

		bs, err := fn(ns, origin)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		if len(bs) == 0 {
			respondJSON(w, http.StatusNoContent, nil)
			return
		}

		respondJSON(w, http.StatusOK, struct {
			Batches []*core.InviteBatch `json:"batches"`
			Count   int                 `json:"batches_count"`
		}{
			Batches: bs,
			Count:   len(bs),
		})
	}
}

// InviteRespond accepts or rejects an invite of the current user.
func InviteRespond(fn core.InviteRespondFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		var (
			ns     = namespaceFromContext(ctx)
			origin = originFromContext(ctx)
			p      = payloadInviteRespond{}
		)

		id, err := extractInviteID(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		err = json.NewDecoder(r.Body).Decode(&p)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		res, err := fn(ns, origin, id, p.Status)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusOK, res)
	}
}

type payloadInviteCreate struct {
	UserIDs []uint64 `json:"user_ids"`
}

type payloadInviteRespond struct {
	Status invite.Status `json:"status"`
}
