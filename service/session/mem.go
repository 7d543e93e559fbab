package session

import (
	"sort"
	"sync"
	"time"

	"github.com/DRLee98/random-chat-backend-sub000/platform/pg"
)

type memService struct {
	mu       sync.Mutex
	sessions map[string]map[string]Session
}

// MemService returns a memory based Service implementation.
func MemService() Service {
	return &memService{
		sessions: map[string]map[string]Session{},
	}
}

func (s *memService) Put(ns string, session *Session) (*Session, error) {
	if err := session.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.setup(ns)

	if session.ID == "" {
		id, err := generateID()
		if err != nil {
			return nil, err
		}

		now, err := pg.ParseTime(pg.FormatTime(time.Now()))
		if err != nil {
			return nil, err
		}

		session.ID = id
		session.CreatedAt = now
	} else {
		stored, ok := s.sessions[ns][session.ID]
		if !ok {
			return nil, wrapError(ErrNotFound, "%s", session.ID)
		}

		session.CreatedAt = stored.CreatedAt
	}

	s.sessions[ns][session.ID] = *session

	return session, nil
}

func (s *memService) Query(ns string, opts QueryOptions) (List, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setup(ns)

	ss := List{}

	for id, session := range s.sessions[ns] {
		if !inStrings(session.DeviceID, opts.DeviceIDs) {
			continue
		}

		if opts.Enabled != nil && session.Enabled != *opts.Enabled {
			continue
		}

		if !inStrings(id, opts.IDs) {
			continue
		}

		if !inIDs(session.UserID, opts.UserIDs) {
			continue
		}

		c := session
		ss = append(ss, &c)
	}

	sort.Sort(ss)

	return ss, nil
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

	delete(s.sessions, ns)

	return nil
}

func (s *memService) setup(ns string) {
	if _, ok := s.sessions[ns]; !ok {
		s.sessions[ns] = map[string]Session{}
	}
}

func inIDs(id uint64, ids []uint64) bool {
	if len(ids) == 0 {
		return true
	}

	for _, i := range ids {
		if id == i {
			return true
		}
	}

	return false
}

func inStrings(v string, vs []string) bool {
	if len(vs) == 0 {
		return true
	}

	for _, s := range vs {
		if v == s {
			return true
		}
	}

	return false
}
