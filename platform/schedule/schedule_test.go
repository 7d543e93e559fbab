package schedule

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-kit/kit/log"
)

func TestSchedulerRuns(t *testing.T) {
	var (
		calls int32
		ran   = make(chan struct{}, 8)
		s     = New(log.NewNopLogger(), "test", 5*time.Millisecond, func(time.Time) error {
			n := atomic.AddInt32(&calls, 1)

			select {
			case ran <- struct{}{}:
			default:
			}

			if n == 1 {
				return errors.New("first run fails")
			}
			if n == 2 {
				panic("second run panics")
			}

			return nil
		})
	)

	if err := s.Start(); err != nil {
		t.Fatal(err)
	}

	if err := s.Start(); err != ErrRunning {
		t.Errorf("have %v, want %v", err, ErrRunning)
	}

	for i := 0; i < 3; i++ {
		select {
		case <-ran:
		case <-time.After(time.Second):
			t.Fatal("job did not run")
		}
	}

	if err := s.Stop(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := s.Stop(context.Background()); err != ErrNotRunning {
		t.Errorf("have %v, want %v", err, ErrNotRunning)
	}

	stopped := atomic.LoadInt32(&calls)
	time.Sleep(20 * time.Millisecond)

	if have, want := atomic.LoadInt32(&calls), stopped; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if err := s.Start(); err != nil {
		t.Fatalf("restart failed: %s", err)
	}

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("job did not run after restart")
	}

	if err := s.Stop(context.Background()); err != nil {
		t.Fatal(err)
	}
}
