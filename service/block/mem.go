package block

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/DRLee98/random-chat-backend-sub000/platform/pg"
)

type memService struct {
	mu     sync.Mutex
	blocks map[string]map[string]Block
}

// MemService returns a memory backed implementation of Service.
func MemService() Service {
	return &memService{
		blocks: map[string]map[string]Block{},
	}
}

func (s *memService) Count(ns string, opts QueryOptions) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setup(ns)

	opts.Limit = 0

	return len(filterMap(s.blocks[ns], opts)), nil
}

func (s *memService) Put(ns string, b *Block) (*Block, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.setup(ns)

	now, err := pg.ParseTime(pg.FormatTime(time.Now()))
	if err != nil {
		return nil, err
	}

	if stored, ok := s.blocks[ns][stringKey(b)]; ok {
		b.CreatedAt = stored.CreatedAt
	} else {
		b.CreatedAt = now
	}

	b.UpdatedAt = now

	s.blocks[ns][stringKey(b)] = *b

	return b, nil
}

func (s *memService) Query(ns string, opts QueryOptions) (List, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setup(ns)

	return filterMap(s.blocks[ns], opts), nil
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

	delete(s.blocks, ns)

	return nil
}

func (s *memService) setup(ns string) {
	if _, ok := s.blocks[ns]; !ok {
		s.blocks[ns] = map[string]Block{}
	}
}

func filterMap(bm map[string]Block, opts QueryOptions) List {
	bs := List{}

	for _, block := range bm {
		if opts.Enabled != nil && block.Enabled != *opts.Enabled {
			continue
		}

		if !inIDs(block.FromID, opts.FromIDs) {
			continue
		}

		if !inIDs(block.ToID, opts.ToIDs) {
			continue
		}

		b := block
		bs = append(bs, &b)
	}

	sort.Sort(bs)

	if opts.Limit > 0 && len(bs) > opts.Limit {
		return bs[:opts.Limit]
	}

	return bs
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

func stringKey(b *Block) string {
	return fmt.Sprintf("%d-%d", b.FromID, b.ToID)
}
