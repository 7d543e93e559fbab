package cache

import "sync"

type memCountService struct {
	mu     sync.Mutex
	counts map[string]int
}

// MemCountService returns an in-process CountService.
func MemCountService() CountService {
	return &memCountService{
		counts: map[string]int{},
	}
}

func (s *memCountService) Del(ns, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.counts, prefixKey(ns, key))

	return nil
}

func (s *memCountService) Get(ns, key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count, ok := s.counts[prefixKey(ns, key)]
	if !ok {
		return errCode, wrapError(ErrKeyNotFound, "%s.%s", ns, key)
	}

	return count, nil
}

func (s *memCountService) Incr(ns, key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := prefixKey(ns, key)

	count, ok := s.counts[k]
	if !ok {
		return errCode, wrapError(ErrKeyNotFound, "%s.%s", ns, key)
	}

	s.counts[k] = count + 1

	return count + 1, nil
}

func (s *memCountService) Set(ns, key string, count int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counts[prefixKey(ns, key)] = count

	return nil
}
