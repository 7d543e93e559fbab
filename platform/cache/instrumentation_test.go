package cache

import (
	"reflect"
	"testing"

	kitmetrics "github.com/go-kit/kit/metrics"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/DRLee98/random-chat-backend-sub000/platform/metrics"
)

func TestInstrumentCountServiceMiddleware(t *testing.T) {
	var (
		errCount = &recordCounter{}
		hitCount = &recordCounter{}
		opCount  = &recordCounter{}
		key      = "unread.7"
		ns       = "chat"

		opLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cache_test",
			Name:      "latency_seconds",
		}, []string{
			metrics.FieldComponent,
			metrics.FieldMethod,
			metrics.FieldNamespace,
			metrics.FieldStore,
		})

		s = InstrumentCountServiceMiddleware(
			"gateway-http",
			"redis",
			errCount,
			hitCount,
			opCount,
			opLatency,
		)(MemCountService())
	)

	if _, err := s.Get(ns, key); !IsKeyNotFound(err) {
		t.Fatalf("have %v, want %v", err, ErrKeyNotFound)
	}

	if err := s.Set(ns, key, 3); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Get(ns, key); err != nil {
		t.Fatal(err)
	}

	if have, want := len(errCount.calls), 0; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := len(opCount.calls), 3; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := len(hitCount.calls), 1; have != want {
		t.Fatalf("have %v, want %v", have, want)
	}

	want := []string{
		metrics.FieldComponent, "gateway-http",
		metrics.FieldMethod, "Get",
		metrics.FieldNamespace, ns,
		metrics.FieldStore, "redis",
	}

	if have := hitCount.calls[0]; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}

	for _, method := range []string{"Get", "Set"} {
		ok := opLatency.Delete(prometheus.Labels{
			metrics.FieldComponent: "gateway-http",
			metrics.FieldMethod:    method,
			metrics.FieldNamespace: ns,
			metrics.FieldStore:     "redis",
		})
		if !ok {
			t.Errorf("latency not observed for %s", method)
		}
	}
}

type recordCounter struct {
	calls [][]string
}

func (c *recordCounter) With(labelValues ...string) kitmetrics.Counter {
	c.calls = append(c.calls, labelValues)

	return c
}

func (c *recordCounter) Add(delta float64) {}
