package member

import (
	"sync"
	"time"

	"github.com/DRLee98/random-chat-backend-sub000/platform/flake"
	"github.com/DRLee98/random-chat-backend-sub000/platform/pg"
)

type memService struct {
	mu      sync.Mutex
	members map[string]map[uint64]Member
}

// MemService returns a memory backed implementation of Service.
func MemService() Service {
	return &memService{
		members: map[string]map[uint64]Member{},
	}
}

func (s *memService) Delete(ns string, opts QueryOptions) error {
	if opts.Empty() {
		return wrapError(ErrInvalidQuery, "delete without constraints")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.setup(ns)

	for _, m := range filterMap(s.members[ns], opts) {
		delete(s.members[ns], m.ID)
	}

	return nil
}

func (s *memService) Put(ns string, m *Member) (*Member, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.setup(ns)

	now, err := pg.ParseTime(pg.FormatTime(time.Now()))
	if err != nil {
		return nil, err
	}

	if m.ID == 0 {
		for _, stored := range s.members[ns] {
			if stored.RoomID == m.RoomID && stored.UserID == m.UserID {
				return nil, wrapError(ErrMemberExists, "user %d in room %d", m.UserID, m.RoomID)
			}
		}

		id, err := flake.NextID(flake.Namespace(ns, entity))
		if err != nil {
			return nil, err
		}

		m.ID = id

		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}
	} else {
		stored, ok := s.members[ns][m.ID]
		if !ok {
			return nil, wrapError(ErrInvalidMember, "member %d not found", m.ID)
		}

		m.CreatedAt = stored.CreatedAt
		m.RoomID = stored.RoomID
		m.UserID = stored.UserID
	}

	m.CreatedAt, err = pg.ParseTime(pg.FormatTime(m.CreatedAt))
	if err != nil {
		return nil, err
	}
	m.UpdatedAt = now

	if m.PinnedAt != nil {
		pinned, err := pg.ParseTime(pg.FormatTime(*m.PinnedAt))
		if err != nil {
			return nil, err
		}

		m.PinnedAt = &pinned
	}

	stored := *m

	if m.PinnedAt != nil {
		pinned := *m.PinnedAt
		stored.PinnedAt = &pinned
	}

	s.members[ns][m.ID] = stored

	return m, nil
}

func (s *memService) Query(ns string, opts QueryOptions) (List, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setup(ns)

	return filterMap(s.members[ns], opts), nil
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

	delete(s.members, ns)

	return nil
}

func (s *memService) setup(ns string) {
	if _, ok := s.members[ns]; !ok {
		s.members[ns] = map[uint64]Member{}
	}
}

func filterMap(mm map[uint64]Member, opts QueryOptions) List {
	ms := List{}

	for id, member := range mm {
		if !inIDs(id, opts.IDs) {
			continue
		}

		if !inIDs(member.RoomID, opts.RoomIDs) {
			continue
		}

		if !inIDs(member.UserID, opts.UserIDs) {
			continue
		}

		m := member

		if member.PinnedAt != nil {
			pinned := *member.PinnedAt
			m.PinnedAt = &pinned
		}

		ms = append(ms, &m)
	}

	ms = sortList(ms)

	if opts.Limit > 0 && len(ms) > opts.Limit {
		return ms[:opts.Limit]
	}

	return ms
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
