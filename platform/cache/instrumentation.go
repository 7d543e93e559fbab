package cache

import (
	"time"

	kitmetrics "github.com/go-kit/kit/metrics"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/DRLee98/random-chat-backend-sub000/platform/metrics"
)

type instrumentCountService struct {
	component string
	errCount  kitmetrics.Counter
	hitCount  kitmetrics.Counter
	next      CountService
	opCount   kitmetrics.Counter
	opLatency *prometheus.HistogramVec
	store     string
}

// InstrumentCountServiceMiddleware observes key metrics and cache hits.
func InstrumentCountServiceMiddleware(
	component, store string,
	errCount kitmetrics.Counter,
	hitCount kitmetrics.Counter,
	opCount kitmetrics.Counter,
	opLatency *prometheus.HistogramVec,
) CountServiceMiddleware {
	return func(next CountService) CountService {
		return &instrumentCountService{
			component: component,
			errCount:  errCount,
			hitCount:  hitCount,
			next:      next,
			opCount:   opCount,
			opLatency: opLatency,
			store:     store,
		}
	}
}

func (s *instrumentCountService) Del(ns, key string) (err error) {
	defer func(begin time.Time) {
		s.track("Del", ns, begin, err)
	}(time.Now())

	return s.next.Del(ns, key)
}

func (s *instrumentCountService) Get(ns, key string) (count int, err error) {
	defer func(begin time.Time) {
		if err == nil {
			s.trackHit("Get", ns)
		}
		if IsKeyNotFound(err) {
			s.track("Get", ns, begin, nil)
			return
		}

		s.track("Get", ns, begin, err)
	}(time.Now())

	return s.next.Get(ns, key)
}

func (s *instrumentCountService) Incr(ns, key string) (count int, err error) {
	defer func(begin time.Time) {
		if IsKeyNotFound(err) {
			s.track("Incr", ns, begin, nil)
			return
		}

		s.track("Incr", ns, begin, err)
	}(time.Now())

	return s.next.Incr(ns, key)
}

func (s *instrumentCountService) Set(ns, key string, count int) (err error) {
	defer func(begin time.Time) {
		s.track("Set", ns, begin, err)
	}(time.Now())

	return s.next.Set(ns, key, count)
}

func (s *instrumentCountService) track(
	method, namespace string,
	begin time.Time,
	err error,
) {
	if err != nil {
		s.errCount.With(
			metrics.FieldComponent, s.component,
			metrics.FieldMethod, method,
			metrics.FieldNamespace, namespace,
			metrics.FieldStore, s.store,
		).Add(1)

		return
	}

	s.opCount.With(
		metrics.FieldComponent, s.component,
		metrics.FieldMethod, method,
		metrics.FieldNamespace, namespace,
		metrics.FieldStore, s.store,
	).Add(1)

	s.opLatency.With(prometheus.Labels{
		metrics.FieldComponent: s.component,
		metrics.FieldMethod:    method,
		metrics.FieldNamespace: namespace,
		metrics.FieldStore:     s.store,
	}).Observe(time.Since(begin).Seconds())
}

func (s *instrumentCountService) trackHit(method, namespace string) {
	s.hitCount.With(
		metrics.FieldComponent, s.component,
		metrics.FieldMethod, method,
		metrics.FieldNamespace, namespace,
		metrics.FieldStore, s.store,
	).Add(1)
}
