package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/DRLee98/random-chat-backend-sub000/core"
	"github.com/DRLee98/random-chat-backend-sub000/service/notification"
)

// NotificationListMine returns the notifications of the current user, newest
// first, paginated by creation time.
func NotificationListMine(fn core.NotificationListMineFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		var (
			ns     = namespaceFromContext(ctx)
			origin = originFromContext(ctx)
		)

		before, err := extractTimeCursorBefore(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		limit, err := extractLimit(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		list, err := fn(ns, origin, before, limit)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		if len(list) == 0 {
			respondJSON(w, http.StatusNoContent, nil)
			return
		}

		respondJSON(w, http.StatusOK, &payloadNotifications{
			notifications: list,
			pagination: pagination(
				r,
				limit,
				notificationCursorBefore(list, limit),
			),
		})
	}
}

// NotificationMarkRead flags a notification of the current user as read.
func NotificationMarkRead(fn core.NotificationMarkReadFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		var (
			ns     = namespaceFromContext(ctx)
			origin = originFromContext(ctx)
		)

		id, err := extractNotificationID(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		n, err := fn(ns, origin, id)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusOK, n)
	}
}

// NotificationUnreadCount returns the number of unread notifications of the
// current user.
func NotificationUnreadCount(fn core.NotificationUnreadCountFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		var (
			ns     = namespaceFromContext(ctx)
			origin = originFromContext(ctx)
		)

		count, err := fn(ns, origin)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusOK, struct {
			Unread int `json:"unread"`
		}{
			Unread: count,
		})
	}
}

type payloadNotifications struct {
	notifications notification.List
	pagination    *payloadPagination
}

func (p *payloadNotifications) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Notifications      notification.List  `json:"notifications"`
		NotificationsCount int                `json:"notifications_count"`
		Pagination         *payloadPagination `json:"paging"`
	}{
		Notifications:      p.notifications,
		NotificationsCount: len(p.notifications),
		Pagination:         p.pagination,
	})
}

func notificationCursorBefore(ns notification.List, limit int) string {
	if len(ns) < limit {
		return ""
	}

	return toTimeCursor(ns[len(ns)-1].CreatedAt)
}
