package limiter

import (
	"testing"
	"time"
)

func TestMemLimiter(t *testing.T) {
	var (
		now     = time.Now()
		limitee = &Limitee{
			Hash:       "invite.create.1",
			Limit:      3,
			WindowSize: time.Minute,
		}
		l = Mem().(*memLimiter)
	)

	l.now = func() time.Time { return now }

	for i := int64(2); i >= 0; i-- {
		quota, _, err := l.Request(limitee)
		if err != nil {
			t.Fatal(err)
		}

		if have, want := quota, i; have != want {
			t.Errorf("have %v, want %v", have, want)
		}
	}

	quota, expires, err := l.Request(limitee)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := quota, int64(-1); have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := expires, now.Add(time.Minute); !have.Equal(want) {
		t.Errorf("have %v, want %v", have, want)
	}

	now = now.Add(time.Minute)

	quota, _, err = l.Request(limitee)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := quota, int64(2); have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}
