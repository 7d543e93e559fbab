// Package schedule runs jobs on a fixed interval, decoupled from request
// handling.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-kit/kit/log"
)

// Errors returned by the Scheduler.
var (
	ErrRunning    = errors.New("scheduler already running")
	ErrNotRunning = errors.New("scheduler not running")
)

// Job is invoked on every tick with the tick's time.
type Job func(now time.Time) error

// Scheduler invokes a Job on a fixed interval. Job errors and panics are
// logged and never end the loop. A stopped Scheduler can be started again.
type Scheduler struct {
	interval time.Duration
	job      Job
	logger   log.Logger
	name     string

	mu   sync.Mutex
	done chan struct{}
	stop chan struct{}
}

// New returns a Scheduler for job.
func New(logger log.Logger, name string, interval time.Duration, job Job) *Scheduler {
	return &Scheduler{
		interval: interval,
		job:      job,
		logger:   log.With(logger, "job", name),
		name:     name,
	}
}

// Start launches the loop.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stop != nil {
		return ErrRunning
	}

	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go s.loop(s.stop, s.done)

	_ = s.logger.Log("msg", "scheduler started", "interval", s.interval)

	return nil
}

// Stop ends the loop and waits for a running job to return or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()

	if stop == nil {
		return ErrNotRunning
	}

	close(stop)

	select {
	case <-done:
		_ = s.logger.Log("msg", "scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			s.run(now)
		}
	}
}

func (s *Scheduler) run(now time.Time) {
	var err error

	defer func(begin time.Time) {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}

		ps := []interface{}{
			"duration_ns", time.Since(begin).Nanoseconds(),
			"tick", now.UTC(),
		}

		if err != nil {
			ps = append(ps, "err", err)
		}

		_ = s.logger.Log(ps...)
	}(time.Now())

	err = s.job(now)
}
