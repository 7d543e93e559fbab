// Package lock provides keyed mutual exclusion across concurrent requests.
package lock

import (
	"time"

	serr "github.com/DRLee98/random-chat-backend-sub000/error"
)

// Defaults.
const (
	DefaultTTL  = 10 * time.Second
	DefaultWait = 5 * time.Second
)

// Locker hands out exclusive ownership of a key. Lock blocks until the key is
// free or the wait budget is spent, in which case serr.ErrLockUnavailable is
// returned.
type Locker interface {
	Lock(key string) (Release, error)
}

// Release gives up ownership of a previously acquired key.
type Release func() error

// LockerMiddleware is a chainable behaviour modifier for Locker.
type LockerMiddleware func(Locker) Locker

func unavailable(key string, wait time.Duration) error {
	return serr.Wrap(serr.ErrLockUnavailable, "%s after %s", key, wait)
}
