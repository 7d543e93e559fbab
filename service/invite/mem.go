package invite

import (
	"sync"
	"time"

	"github.com/DRLee98/random-chat-backend-sub000/platform/flake"
	"github.com/DRLee98/random-chat-backend-sub000/platform/pg"
)

type memService struct {
	mu      sync.RWMutex
	invites map[string]map[uint64]Invite
}

// MemService returns a memory backed implementation of Service.
func MemService() Service {
	return &memService{
		invites: map[string]map[uint64]Invite{},
	}
}

func (s *memService) Delete(ns string, opts QueryOptions) error {
	if opts.Empty() {
		return wrapError(ErrInvalidQuery, "delete without constraints")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.setup(ns)

	for _, i := range filterMap(s.invites[ns], opts) {
		delete(s.invites[ns], i.ID)
	}

	return nil
}

func (s *memService) Put(ns string, i *Invite) (*Invite, error) {
	if err := i.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.setup(ns)

	now, err := pg.ParseTime(pg.FormatTime(time.Now()))
	if err != nil {
		return nil, err
	}

	if i.ID == 0 {
		id, err := flake.NextID(flake.Namespace(ns, entity))
		if err != nil {
			return nil, err
		}

		i.ID = id

		if i.CreatedAt.IsZero() {
			i.CreatedAt = now
		}
	} else {
		stored, ok := s.invites[ns][i.ID]
		if !ok {
			return nil, wrapError(ErrInvalidInvite, "invite %d not found", i.ID)
		}

		i.CreatedAt = stored.CreatedAt
	}

	i.CreatedAt, err = pg.ParseTime(pg.FormatTime(i.CreatedAt))
	if err != nil {
		return nil, err
	}
	i.UpdatedAt = now

	s.invites[ns][i.ID] = *i

	return i, nil
}

func (s *memService) Query(ns string, opts QueryOptions) (List, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setup(ns)

	return filterMap(s.invites[ns], opts), nil
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

	delete(s.invites, ns)

	return nil
}

func (s *memService) setup(ns string) {
	if _, ok := s.invites[ns]; !ok {
		s.invites[ns] = map[uint64]Invite{}
	}
}

func filterMap(im map[uint64]Invite, opts QueryOptions) List {
	is := List{}

	for id, invite := range im {
		if !opts.Before.IsZero() && !invite.CreatedAt.Before(opts.Before.UTC()) {
			continue
		}

		if !inIDs(id, opts.IDs) {
			continue
		}

		if !inIDs(invite.RoomID, opts.RoomIDs) {
			continue
		}

		if !inStatuses(invite.Status, opts.Statuses) {
			continue
		}

		if !inIDs(invite.UserID, opts.UserIDs) {
			continue
		}

		i := invite
		is = append(is, &i)
	}

	is = sortList(is)

	if opts.Limit > 0 && len(is) > opts.Limit {
		return is[:opts.Limit]
	}

	return is
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

func inStatuses(s Status, ss []Status) bool {
	if len(ss) == 0 {
		return true
	}

	for _, status := range ss {
		if s == status {
			return true
		}
	}

	return false
}

