package lock

import (
	"sync"
	"time"
)

type entry struct {
	c    chan struct{}
	refs int
}

type memLocker struct {
	mu      sync.Mutex
	entries map[string]*entry
	wait    time.Duration
}

// MemLocker returns an in-process Locker, only valid when a single instance
// serves a key space.
func MemLocker(wait time.Duration) Locker {
	return &memLocker{
		entries: map[string]*entry{},
		wait:    wait,
	}
}

func (l *memLocker) Lock(key string) (Release, error) {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{c: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	l.mu.Unlock()

	timer := time.NewTimer(l.wait)
	defer timer.Stop()

	select {
	case e.c <- struct{}{}:
	case <-timer.C:
		l.put(key, e)

		return nil, unavailable(key, l.wait)
	}

	var once sync.Once

	return func() error {
		once.Do(func() {
			<-e.c
			l.put(key, e)
		})

		return nil
	}, nil
}

func (l *memLocker) put(key string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e.refs--

	if e.refs == 0 {
		delete(l.entries, key)
	}
}
