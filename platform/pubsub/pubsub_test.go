package pubsub

import (
	"testing"

	"github.com/go-kit/kit/log"
)

type event struct {
	UserID uint64
	Seq    int
}

func forUser(id uint64) Predicate {
	return func(payload interface{}) bool {
		e, ok := payload.(event)
		return ok && e.UserID == id
	}
}

func TestBusPredicate(t *testing.T) {
	b := New(log.NewNopLogger(), 4)
	b.Start()
	defer b.Stop()

	s1, err := b.Subscribe("invite", forUser(1))
	if err != nil {
		t.Fatal(err)
	}

	s2, err := b.Subscribe("invite", forUser(2))
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		if err := b.Publish("invite", event{UserID: 1, Seq: i}); err != nil {
			t.Fatal(err)
		}
	}

	if err := b.Publish("other", event{UserID: 2}); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		e := (<-s1.C()).(event)

		if have, want := e.Seq, i; have != want {
			t.Errorf("have %v, want %v", have, want)
		}
	}

	if have, want := len(s2.C()), 0; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestBusLateSubscriber(t *testing.T) {
	b := New(log.NewNopLogger(), 4)
	b.Start()
	defer b.Stop()

	if err := b.Publish("invite", event{UserID: 1}); err != nil {
		t.Fatal(err)
	}

	s, err := b.Subscribe("invite", nil)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(s.C()), 0; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestBusFullBufferDrops(t *testing.T) {
	b := New(log.NewNopLogger(), 1)
	b.Start()
	defer b.Stop()

	s, err := b.Subscribe("invite", nil)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		if err := b.Publish("invite", event{Seq: i}); err != nil {
			t.Fatal(err)
		}
	}

	if have, want := (<-s.C()).(event).Seq, 0; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := len(s.C()), 0; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestBusStop(t *testing.T) {
	b := New(log.NewNopLogger(), 1)

	if err := b.Publish("invite", nil); err != ErrStopped {
		t.Errorf("have %v, want %v", err, ErrStopped)
	}

	b.Start()

	s, err := b.Subscribe("invite", nil)
	if err != nil {
		t.Fatal(err)
	}

	b.Stop()

	if _, ok := <-s.C(); ok {
		t.Errorf("expected closed channel")
	}

	s.Close()

	if _, err := b.Subscribe("invite", nil); err != ErrStopped {
		t.Errorf("have %v, want %v", err, ErrStopped)
	}

	b.Start()

	if err := b.Publish("invite", nil); err != nil {
		t.Errorf("restart failed: %s", err)
	}
}

func TestSubscriptionClose(t *testing.T) {
	b := New(log.NewNopLogger(), 1)
	b.Start()
	defer b.Stop()

	s, err := b.Subscribe("invite", nil)
	if err != nil {
		t.Fatal(err)
	}

	s.Close()
	s.Close()

	if _, ok := <-s.C(); ok {
		t.Errorf("expected closed channel")
	}

	if have, want := len(b.topics), 0; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if err := b.Publish("invite", event{}); err != nil {
		t.Fatal(err)
	}
}
