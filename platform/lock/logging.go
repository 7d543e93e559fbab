package lock

import (
	"time"

	"github.com/go-kit/kit/log"
)

type logLocker struct {
	logger log.Logger
	next   Locker
}

// LogLockerMiddleware logs lock acquisitions that failed or had to wait.
func LogLockerMiddleware(logger log.Logger, store string) LockerMiddleware {
	return func(next Locker) Locker {
		logger = log.With(
			logger,
			"locker", "lock",
			"store", store,
		)

		return &logLocker{logger: logger, next: next}
	}
}

func (l *logLocker) Lock(key string) (release Release, err error) {
	defer func(begin time.Time) {
		d := time.Since(begin)

		if err == nil && d < 50*time.Millisecond {
			return
		}

		ps := []interface{}{
			"duration_ns", d.Nanoseconds(),
			"key", key,
			"method", "Lock",
		}

		if err != nil {
			ps = append(ps, "err", err)
		}

		_ = l.logger.Log(ps...)
	}(time.Now())

	return l.next.Lock(key)
}
