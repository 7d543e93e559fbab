package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gomodule/redigo/redis"
	"github.com/jmoiron/sqlx"

	"github.com/DRLee98/random-chat-backend-sub000/core"
	serr "github.com/DRLee98/random-chat-backend-sub000/error"
)

const pgHealthcheck = `SELECT 1`

// Handler is the gateway specific http.HandlerFunc expecting a context.Context.
type Handler func(context.Context, http.ResponseWriter, *http.Request)

// Middleware can be used to chain Handlers with different responsibilities.
type Middleware func(Handler) Handler

// Chain takes a varidatic number of Middlewares and returns a combined
// Middleware.
func Chain(ms ...Middleware) Middleware {
	return func(handler Handler) Handler {
		for i := len(ms) - 1; i >= 0; i-- {
			handler = ms[i](handler)
		}

		return handler
	}
}

// Wrap takes a Middleware and Handler and returns an http.HandlerFunc.
func Wrap(
	middleware Middleware,
	handler Handler,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		middleware(handler)(r.Context(), w, r)
	}
}

// Health checks for liveliness of backing services and responds with status.
func Health(pg *sqlx.DB, pool *redis.Pool) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		res := struct {
			Healthy  bool            `json:"healthy"`
			Services map[string]bool `json:"services"`
		}{
			Healthy: true,
			Services: map[string]bool{
				"postgres": true,
				"redis":    true,
			},
		}

		if _, err := pg.ExecContext(ctx, pgHealthcheck); err != nil {
			res.Healthy = false
			res.Services["postgres"] = false

			respondJSON(w, 500, &res)
			return
		}

		conn := pool.Get()
		defer conn.Close()

		if _, err := conn.Do("PING"); err != nil {
			res.Healthy = false
			res.Services["redis"] = false

			respondJSON(w, 500, &res)
			return
		}

		respondJSON(w, http.StatusOK, &res)
	}
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func createOrigin(deviceID string, userID uint64) core.Origin {
	return core.Origin{
		DeviceID:    deviceID,
		Integration: core.IntegrationApplication,
		UserID:      userID,
	}
}

func respondError(w http.ResponseWriter, code int, err error) {
	statusCode := http.StatusInternalServerError

	switch unwrapError(err) {
	case ErrBadRequest:
		statusCode = http.StatusBadRequest
	case ErrLimitExceeded:
		statusCode = http.StatusTooManyRequests
	case ErrUnauthorized:
		statusCode = http.StatusUnauthorized
	case core.ErrInvalidDecision, core.ErrInvalidEntity:
		statusCode = http.StatusBadRequest
	case core.ErrNotInviteOwner:
		statusCode = http.StatusForbidden
	case core.ErrInviteNotFound, core.ErrNotFound:
		statusCode = http.StatusNotFound
	case core.ErrAlreadyResolved:
		statusCode = http.StatusConflict
	case core.ErrNoEligibleTargets, core.ErrNoValidTargets:
		statusCode = http.StatusUnprocessableEntity
	case core.ErrUnauthorized:
		statusCode = http.StatusUnauthorized
	case serr.ErrLockUnavailable:
		statusCode = http.StatusServiceUnavailable
	}

	if code == 0 {
		code = statusCode
	}

	respondJSON(w, statusCode, struct {
		Errors []apiError `json:"errors"`
	}{
		Errors: []apiError{
			{Code: code, Message: err.Error()},
		},
	})
}

func respondJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	if statusCode == http.StatusNoContent {
		w.WriteHeader(statusCode)
		return
	}

	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}
