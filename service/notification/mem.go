package notification

import (
	"sync"
	"time"

	"github.com/DRLee98/random-chat-backend-sub000/platform/flake"
	"github.com/DRLee98/random-chat-backend-sub000/platform/pg"
)

type memService struct {
	mu            sync.Mutex
	notifications map[string]map[uint64]Notification
}

// MemService returns a memory backed implementation of Service.
func MemService() Service {
	return &memService{
		notifications: map[string]map[uint64]Notification{},
	}
}

func (s *memService) Count(ns string, opts QueryOptions) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setup(ns)

	opts.Limit = 0

	return len(filterMap(s.notifications[ns], opts)), nil
}

func (s *memService) Put(ns string, n *Notification) (*Notification, error) {
	if err := n.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.setup(ns)

	now, err := pg.ParseTime(pg.FormatTime(time.Now()))
	if err != nil {
		return nil, err
	}

	if n.ID == 0 {
		id, err := flake.NextID(flake.Namespace(ns, entity))
		if err != nil {
			return nil, err
		}

		n.ID = id
		n.CreatedAt = now
	} else {
		stored, ok := s.notifications[ns][n.ID]
		if !ok {
			return nil, wrapError(ErrNotFound, "%d", n.ID)
		}

		n.CreatedAt = stored.CreatedAt
	}

	n.UpdatedAt = now

	stored := *n
	stored.Data = copyData(n.Data)

	s.notifications[ns][n.ID] = stored

	return n, nil
}

func (s *memService) Query(ns string, opts QueryOptions) (List, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setup(ns)

	return filterMap(s.notifications[ns], opts), nil
}

func (s *memService) Setup(ns string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setup(ns)

	return nil
}

func (s *memService) Teardown(ns string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.notifications, ns)

	return nil
}

func (s *memService) setup(ns string) {
	if _, ok := s.notifications[ns]; !ok {
		s.notifications[ns] = map[uint64]Notification{}
	}
}

func copyData(d map[string]string) map[string]string {
	if d == nil {
		return nil
	}

	c := make(map[string]string, len(d))

	for k, v := range d {
		c[k] = v
	}

	return c
}

func filterMap(nm map[uint64]Notification, opts QueryOptions) List {
	ns := List{}

	for id, notification := range nm {
		if !opts.Before.IsZero() && !notification.CreatedAt.Before(opts.Before) {
			continue
		}

		if !inIDs(id, opts.IDs) {
			continue
		}

		if opts.Read != nil && notification.Read != *opts.Read {
			continue
		}

		if !inIDs(notification.UserID, opts.UserIDs) {
			continue
		}

		n := notification
		n.Data = copyData(notification.Data)

		ns = append(ns, &n)
	}

	ns = sortList(ns)

	if opts.Limit > 0 && len(ns) > opts.Limit {
		return ns[:opts.Limit]
	}

	return ns
}

func inIDs(id uint64, ids []uint64) bool {
	if len(ids) == 0 {
		return true
	}

	for _, i := range ids {
		if i == id {
			return true
		}
	}

	return false
}
