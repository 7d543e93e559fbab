package user

import (
	"strings"
	"sync"
	"time"

	"github.com/DRLee98/random-chat-backend-sub000/platform/flake"
	"github.com/DRLee98/random-chat-backend-sub000/platform/pg"
)

type memService struct {
	mu    sync.Mutex
	users map[string]map[uint64]User
}

// MemService returns a memory backed implementation of Service.
func MemService() Service {
	return &memService{
		users: map[string]map[uint64]User{},
	}
}

func (s *memService) Count(ns string, opts QueryOptions) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setup(ns)

	opts.Limit = 0

	return len(filterMap(s.users[ns], opts)), nil
}

func (s *memService) Put(ns string, user *User) (*User, error) {
	if err := user.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.setup(ns)

	for id, u := range s.users[ns] {
		if id != user.ID && u.Enabled && strings.EqualFold(u.Username, user.Username) {
			return nil, wrapError(ErrNotUnique, "%s", user.Username)
		}
	}

	now, err := pg.ParseTime(pg.FormatTime(time.Now()))
	if err != nil {
		return nil, err
	}

	if user.ID == 0 {
		id, err := flake.NextID(flake.Namespace(ns, entity))
		if err != nil {
			return nil, err
		}

		user.ID = id

		if user.CreatedAt.IsZero() {
			user.CreatedAt = now
		}
	} else {
		stored, ok := s.users[ns][user.ID]
		if !ok {
			return nil, wrapError(ErrNotFound, "%d", user.ID)
		}

		user.CreatedAt = stored.CreatedAt
	}

	user.CreatedAt, err = pg.ParseTime(pg.FormatTime(user.CreatedAt))
	if err != nil {
		return nil, err
	}
	user.UpdatedAt = now

	s.users[ns][user.ID] = *user

	return user, nil
}

func (s *memService) Query(ns string, opts QueryOptions) (List, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setup(ns)

	return filterMap(s.users[ns], opts), nil
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

	delete(s.users, ns)

	return nil
}

func (s *memService) setup(ns string) {
	if _, ok := s.users[ns]; !ok {
		s.users[ns] = map[uint64]User{}
	}
}

func filterMap(um map[uint64]User, opts QueryOptions) List {
	var (
		us      = List{}
		exclude = map[uint64]struct{}{}
	)

	for _, id := range opts.ExcludeIDs {
		exclude[id] = struct{}{}
	}

	for id, user := range um {
		if opts.ChatEnabled != nil && user.ChatEnabled != *opts.ChatEnabled {
			continue
		}

		if opts.Deleted != nil && user.Deleted != *opts.Deleted {
			continue
		}

		if opts.Enabled != nil && user.Enabled != *opts.Enabled {
			continue
		}

		if _, ok := exclude[id]; ok {
			continue
		}

		if !inIDs(id, opts.IDs) {
			continue
		}

		if !inUsernames(user.Username, opts.Usernames) {
			continue
		}

		u := user
		us = append(us, &u)
	}

	us = us.ToMap().ToList()

	if opts.Limit > 0 && len(us) > opts.Limit {
		return us[:opts.Limit]
	}

	return us
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

func inUsernames(name string, names []string) bool {
	if len(names) == 0 {
		return true
	}

	for _, n := range names {
		if strings.EqualFold(n, name) {
			return true
		}
	}

	return false
}
