package notification

import (
	"strconv"
	"sync"
	"time"

	serr "github.com/DRLee98/random-chat-backend-sub000/error"
)

type memSource struct {
	mu       sync.Mutex
	inflight map[string]*Delivery
	queue    []*Delivery
	seq      uint64
}

// MemSource returns an in-process Source. Consumed deliveries stay in flight
// until they are acked.
func MemSource() Source {
	return &memSource{
		inflight: map[string]*Delivery{},
		queue:    []*Delivery{},
	}
}

func (s *memSource) Ack(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.inflight[id]; !ok {
		return serr.Wrap(serr.ErrNotFound, "delivery %s", id)
	}

	delete(s.inflight, id)

	return nil
}

func (s *memSource) Consume() (*Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) == 0 {
		return nil, serr.ErrEmptySource
	}

	d := s.queue[0]
	s.queue = s.queue[1:]

	s.inflight[d.AckID] = d

	return d, nil
}

func (s *memSource) Propagate(ns string, n *Notification) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++

	var (
		id = strconv.FormatUint(s.seq, 10)
		c  = *n
	)

	c.Data = copyData(n.Data)

	s.queue = append(s.queue, &Delivery{
		AckID:        "ack-" + id,
		ID:           id,
		Namespace:    ns,
		Notification: &c,
		SentAt:       time.Now(),
	})

	return id, nil
}
