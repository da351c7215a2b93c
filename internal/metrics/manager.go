package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager holds the service collectors.
type Manager struct {
	// http
	CounterRequests     *prometheus.CounterVec
	GaugeRequests       prometheus.Gauge
	HistRequestDuration *prometheus.HistogramVec

	// workout progress
	CounterCompletions   prometheus.Counter
	CounterUncompletions prometheus.Counter
	CounterSkips         prometheus.Counter
	CounterGated         prometheus.Counter
	CounterResets        prometheus.Counter

	CounterExports prometheus.Counter
}

func NewTestManager() *Manager {
	return NewManager("marathon", "test_server", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("marathon", "test_server", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		})
	}

	return &Manager{
		CounterRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request",
			Help:      "The total number of incoming requests",
		}, []string{"method", "route", "status"}),
		GaugeRequests: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "current_requests",
			Help:      "Current number of requests served",
		}),
		HistRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "Total duration of requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),

		CounterCompletions:   counter("workout_completions", "Workouts recorded as completed"),
		CounterUncompletions: counter("workout_uncompletions", "Completed workouts toggled back to pending"),
		CounterSkips:         counter("workout_skips", "Workouts marked as skipped"),
		CounterGated:         counter("workout_gated", "Completion attempts rejected because the previous workout is pending"),
		CounterResets:        counter("workout_progress_resets", "Progress records cleared by an admin"),
		CounterExports:       counter("progress_exports", "Progress exports uploaded to object storage"),
	}
}
