package limiter

import (
	"sync"
	"time"
)

type window struct {
	quota   int64
	expires time.Time
}

type memLimiter struct {
	mu      sync.Mutex
	now     func() time.Time
	windows map[string]*window
}

// Mem returns an in-process Limiter implementation.
func Mem() Limiter {
	return &memLimiter{
		now:     time.Now,
		windows: map[string]*window{},
	}
}

func (l *memLimiter) Request(limitee *Limitee) (int64, time.Time, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	w, ok := l.windows[limitee.Hash]
	if !ok || !now.Before(w.expires) {
		w = &window{
			quota:   limitee.Limit,
			expires: now.Add(limitee.WindowSize),
		}
		l.windows[limitee.Hash] = w
	}

	w.quota--

	if w.quota < 0 {
		w.quota = -1
	}

	return w.quota, w.expires, nil
}
