package notification

import (
	"testing"

	"github.com/DRLee98/random-chat-backend-sub000/platform/cache"
)

func TestCacheServiceMiddleware(t *testing.T) {
	var (
		ns      = "cache"
		counts  = cache.MemCountService()
		service = CacheServiceMiddleware(counts)(MemService())
		userID  = uint64(7)
		unread  = false
		opts    = QueryOptions{
			Read:    &unread,
			UserIDs: []uint64{userID},
		}
	)

	key, ok := cacheUnreadKey(opts)
	if !ok {
		t.Fatal("want unread key")
	}

	created, err := service.Put(ns, testNotification(userID))
	if err != nil {
		t.Fatal(err)
	}

	count, err := service.Count(ns, opts)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := count, 1; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	cached, err := counts.Get(ns, key)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := cached, 1; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	created.Read = true

	if _, err := service.Put(ns, created); err != nil {
		t.Fatal(err)
	}

	if _, err := counts.Get(ns, key); !cache.IsKeyNotFound(err) {
		t.Errorf("have %v, want %v", err, cache.ErrKeyNotFound)
	}

	count, err = service.Count(ns, opts)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := count, 0; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestCacheUnreadKeyUncacheable(t *testing.T) {
	read := true

	for _, opts := range []QueryOptions{
		{},
		{Read: &read, UserIDs: []uint64{1}},
		{UserIDs: []uint64{1}},
		{UserIDs: []uint64{1, 2}},
	} {
		if _, ok := cacheUnreadKey(opts); ok {
			t.Errorf("%+v: want uncacheable", opts)
		}
	}
}
