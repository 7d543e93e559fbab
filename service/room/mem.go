package room

import (
	"sync"
	"time"

	"github.com/DRLee98/random-chat-backend-sub000/platform/flake"
	"github.com/DRLee98/random-chat-backend-sub000/platform/pg"
)

type memService struct {
	mu    sync.Mutex
	rooms map[string]map[uint64]Room
}

// MemService returns a memory backed implementation of Service.
func MemService() Service {
	return &memService{
		rooms: map[string]map[uint64]Room{},
	}
}

func (s *memService) Delete(ns string, opts QueryOptions) error {
	if opts.Empty() {
		return wrapError(ErrInvalidQuery, "delete without constraints")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.setup(ns)

	for _, r := range filterMap(s.rooms[ns], opts) {
		delete(s.rooms[ns], r.ID)
	}

	return nil
}

func (s *memService) Put(ns string, r *Room) (*Room, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.setup(ns)

	now, err := pg.ParseTime(pg.FormatTime(time.Now()))
	if err != nil {
		return nil, err
	}

	if r.ID == 0 {
		id, err := flake.NextID(flake.Namespace(ns, entity))
		if err != nil {
			return nil, err
		}

		r.ID = id

		if r.CreatedAt.IsZero() {
			r.CreatedAt = now
		}
	} else {
		stored, ok := s.rooms[ns][r.ID]
		if !ok {
			return nil, wrapError(ErrInvalidRoom, "room %d not found", r.ID)
		}

		r.CreatedAt = stored.CreatedAt
	}

	r.CreatedAt, err = pg.ParseTime(pg.FormatTime(r.CreatedAt))
	if err != nil {
		return nil, err
	}
	r.UpdatedAt = now

	s.rooms[ns][r.ID] = *r

	return r, nil
}

func (s *memService) Query(ns string, opts QueryOptions) (List, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setup(ns)

	return filterMap(s.rooms[ns], opts), nil
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

	delete(s.rooms, ns)

	return nil
}

func (s *memService) setup(ns string) {
	if _, ok := s.rooms[ns]; !ok {
		s.rooms[ns] = map[uint64]Room{}
	}
}

func filterMap(rm map[uint64]Room, opts QueryOptions) List {
	rs := List{}

	for id, room := range rm {
		if !opts.Before.IsZero() && !room.CreatedAt.Before(opts.Before.UTC()) {
			continue
		}

		if !inIDs(id, opts.IDs) {
			continue
		}

		if !inKinds(room.Kind, opts.Kinds) {
			continue
		}

		r := room
		rs = append(rs, &r)
	}

	rs = sortList(rs)

	if opts.Limit > 0 && len(rs) > opts.Limit {
		return rs[:opts.Limit]
	}

	return rs
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

func inKinds(k Kind, ks []Kind) bool {
	if len(ks) == 0 {
		return true
	}

	for _, kind := range ks {
		if k == kind {
			return true
		}
	}

	return false
}
