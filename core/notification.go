package core

import (
	"time"

	"github.com/go-kit/kit/log"

	"github.com/DRLee98/random-chat-backend-sub000/service/notification"
)

var defaultUnread = false

// NotifyFunc stores a notification for its user and hands it to the push
// pipeline.
type NotifyFunc func(ns string, n *notification.Notification) error

// Notify stores the notification with the given Service. Propagation to the
// push pipeline and unread count caching are concerns of the Service
// middlewares.
func Notify(notifications notification.Service) NotifyFunc {
	return func(ns string, n *notification.Notification) error {
		n.ID = 0
		n.Read = false

		_, err := notifications.Put(ns, n)

		return err
	}
}

// NotifyAsync detaches the notify call from the caller. Failures are logged
// and never reach the caller.
func NotifyAsync(logger log.Logger, notify NotifyFunc) NotifyFunc {
	return func(ns string, n *notification.Notification) error {
		go func(begin time.Time) {
			if err := notify(ns, n); err != nil {
				_ = logger.Log(
					"category", n.Category,
					"duration_ns", time.Since(begin).Nanoseconds(),
					"err", err,
					"namespace", ns,
					"user_id", n.UserID,
				)
			}
		}(time.Now())

		return nil
	}
}

// NotificationListMineFunc returns the notifications of the origin, newest
// first.
type NotificationListMineFunc func(
	ns string,
	origin Origin,
	before time.Time,
	limit int,
) (notification.List, error)

// NotificationListMine returns the notifications of the origin, newest first.
func NotificationListMine(
	notifications notification.Service,
) NotificationListMineFunc {
	return func(
		ns string,
		origin Origin,
		before time.Time,
		limit int,
	) (notification.List, error) {
		return notifications.Query(ns, notification.QueryOptions{
			Before: before,
			Limit:  limit,
			UserIDs: []uint64{
				origin.UserID,
			},
		})
	}
}

// NotificationMarkReadFunc flags a notification of the origin as read.
type NotificationMarkReadFunc func(
	ns string,
	origin Origin,
	id uint64,
) (*notification.Notification, error)

// NotificationMarkRead flags a notification of the origin as read.
func NotificationMarkRead(
	notifications notification.Service,
) NotificationMarkReadFunc {
	return func(
		ns string,
		origin Origin,
		id uint64,
	) (*notification.Notification, error) {
		list, err := notifications.Query(ns, notification.QueryOptions{
			IDs: []uint64{
				id,
			},
			UserIDs: []uint64{
				origin.UserID,
			},
		})
		if err != nil {
			return nil, err
		}

		if len(list) != 1 {
			return nil, wrapError(ErrNotFound, "notification %d", id)
		}

		n := list[0]

		if n.Read {
			return n, nil
		}

		n.Read = true

		return notifications.Put(ns, n)
	}
}

// NotificationUnreadCountFunc returns the number of unread notifications of
// the origin.
type NotificationUnreadCountFunc func(ns string, origin Origin) (int, error)

// NotificationUnreadCount returns the number of unread notifications of the
// origin.
func NotificationUnreadCount(
	notifications notification.Service,
) NotificationUnreadCountFunc {
	return func(ns string, origin Origin) (int, error) {
		return notifications.Count(ns, notification.QueryOptions{
			Read: &defaultUnread,
			UserIDs: []uint64{
				origin.UserID,
			},
		})
	}
}
