package cache

import "testing"

func TestMemCountService(t *testing.T) {
	var (
		key = "unread.7"
		ns  = "chat"
		s   = MemCountService()
	)

	if _, err := s.Get(ns, key); !IsKeyNotFound(err) {
		t.Errorf("have %v, want %v", err, ErrKeyNotFound)
	}

	if _, err := s.Incr(ns, key); !IsKeyNotFound(err) {
		t.Errorf("have %v, want %v", err, ErrKeyNotFound)
	}

	if err := s.Set(ns, key, 3); err != nil {
		t.Fatal(err)
	}

	count, err := s.Incr(ns, key)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := count, 4; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if err := s.Del(ns, key); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Get(ns, key); !IsKeyNotFound(err) {
		t.Errorf("have %v, want %v", err, ErrKeyNotFound)
	}
}
