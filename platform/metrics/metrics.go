package metrics

import (
	"fmt"

	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	"github.com/prometheus/client_golang/prometheus"
)

// Field names for metric labels.
const (
	FieldComponent = "component"
	FieldMethod    = "method"
	FieldNamespace = "namespace"
	FieldOutcome   = "outcome"
	FieldRoute     = "route"
	FieldService   = "service"
	FieldSource    = "source"
	FieldStatus    = "status"
	FieldStore     = "store"
)

// Common metrics subsystems.
const (
	subsystemErr   = "err"
	subsystemOp    = "op"
	subsystemQueue = "queue"
	subsystemSweep = "sweep"
)

// BucketsQueue are used for Histograms observing queue latencies.
var BucketsQueue = []float64{
	.0005,
	.001,
	.0025,
	.005,
	.01,
	.025,
	.05,
	.1,
	.25,
	.5,
	1,
}

// KeyMetrics registers the error counter, op counter and op latency
// histogram every instrumented component reports to.
func KeyMetrics(
	namespace string,
	fieldKeys ...string,
) (*kitprometheus.Counter, *kitprometheus.Counter, *prometheus.HistogramVec) {
	errCount := kitprometheus.NewCounterFrom(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystemErr,
		Name:      "count",
		Help:      fmt.Sprintf("Number of failed %s operations", namespace),
	}, fieldKeys)

	opCount := kitprometheus.NewCounterFrom(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystemOp,
		Name:      "count",
		Help:      fmt.Sprintf("Number of %s operations performed", namespace),
	}, fieldKeys)

	opLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystemOp,
			Name:      "latency_seconds",
			Help:      fmt.Sprintf("Distribution of %s op duration in seconds", namespace),
		},
		fieldKeys,
	)
	prometheus.MustRegister(opLatency)

	return errCount, opCount, opLatency
}

// QueueMetrics registers the counters and latency histogram a source
// consumer reports to.
func QueueMetrics(
	namespace string,
) (*kitprometheus.Counter, *kitprometheus.Counter, *prometheus.HistogramVec) {
	fieldKeys := []string{FieldComponent, FieldMethod, FieldNamespace, FieldSource, FieldStore}

	errCount := kitprometheus.NewCounterFrom(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystemQueue,
		Name:      "err_count",
		Help:      "Number of failed queue operations",
	}, fieldKeys)

	opCount := kitprometheus.NewCounterFrom(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystemQueue,
		Name:      "op_count",
		Help:      "Number of queue operations performed",
	}, fieldKeys)

	queueLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystemQueue,
			Name:      "latency_seconds",
			Help:      "Distribution of message queue latency in seconds",
			Buckets:   BucketsQueue,
		},
		fieldKeys,
	)
	prometheus.MustRegister(queueLatency)

	return errCount, opCount, queueLatency
}

// SweepMetrics registers the counter of rooms discarded by the expiry sweep.
func SweepMetrics(namespace string) *kitprometheus.Counter {
	return kitprometheus.NewCounterFrom(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystemSweep,
		Name:      "rooms_discarded",
		Help:      "Number of invite rooms discarded by the expiry sweep",
	}, []string{FieldOutcome})
}
