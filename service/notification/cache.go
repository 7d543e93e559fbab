package notification

import (
	"fmt"
	"strings"

	"github.com/DRLee98/random-chat-backend-sub000/platform/cache"
)

const cachePrefixUnread = "notifications.unread"

type cacheService struct {
	countsCache cache.CountService
	next        Service
}

// CacheServiceMiddleware keeps per-user unread counts in the given
// CountService. Counts are read-through and dropped on every write for the
// affected user.
func CacheServiceMiddleware(countsCache cache.CountService) ServiceMiddleware {
	return func(next Service) Service {
		return &cacheService{
			countsCache: countsCache,
			next:        next,
		}
	}
}

func (s *cacheService) Count(ns string, opts QueryOptions) (int, error) {
	key, ok := cacheUnreadKey(opts)
	if !ok {
		return s.next.Count(ns, opts)
	}

	count, err := s.countsCache.Get(ns, key)
	if err == nil {
		return count, nil
	}

	if !cache.IsKeyNotFound(err) {
		return -1, err
	}

	count, err = s.next.Count(ns, opts)
	if err != nil {
		return -1, err
	}

	err = s.countsCache.Set(ns, key, count)

	return count, err
}

func (s *cacheService) Put(ns string, input *Notification) (*Notification, error) {
	n, err := s.next.Put(ns, input)
	if err != nil {
		return nil, err
	}

	unread := false
	key, _ := cacheUnreadKey(QueryOptions{
		Read:    &unread,
		UserIDs: []uint64{n.UserID},
	})

	if err := s.countsCache.Del(ns, key); err != nil {
		return nil, err
	}

	return n, nil
}

func (s *cacheService) Query(ns string, opts QueryOptions) (List, error) {
	return s.next.Query(ns, opts)
}

func (s *cacheService) Setup(ns string) error {
	return s.next.Setup(ns)
}

func (s *cacheService) Teardown(ns string) error {
	return s.next.Teardown(ns)
}

func cacheUnreadKey(opts QueryOptions) (string, bool) {
	if opts.Read == nil || *opts.Read || len(opts.UserIDs) != 1 {
		return "", false
	}

	if len(opts.IDs) > 0 || !opts.Before.IsZero() {
		return "", false
	}

	return strings.Join([]string{
		cachePrefixUnread,
		fmt.Sprintf("%d", opts.UserIDs[0]),
	}, cache.KeySeparator), true
}
