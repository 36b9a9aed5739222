package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	assignmentsCommitted *prometheus.CounterVec
	assignmentsRemoved   prometheus.Counter
	breakdownsReported   *prometheus.CounterVec
	alertsRaised         *prometheus.CounterVec
	matchScores          prometheus.Histogram
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, prometheus.Counter, *prometheus.CounterVec, *prometheus.CounterVec, prometheus.Histogram) {
	committed := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_assignments_total",
			Help: "Number of committed assignments",
		},
		[]string{"mode", "material"},
	)
	removed := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dispatch_assignments_removed_total",
			Help: "Number of removed assignments",
		},
	)
	breakdowns := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_breakdowns_total",
			Help: "Number of reported equipment breakdowns",
		},
		[]string{"kind"},
	)
	alerts := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_alerts_raised_total",
			Help: "Number of alerts raised by the engine",
		},
		[]string{"kind"},
	)
	scores := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dispatch_match_score",
			Help:    "Score distribution of accepted matcher candidates",
			Buckets: prometheus.LinearBuckets(0, 20, 10),
		},
	)
	return committed, removed, breakdowns, alerts, scores
}

func init() {
	assignmentsCommitted, assignmentsRemoved, breakdownsReported, alertsRaised, matchScores = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers dispatch metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(assignmentsCommitted, assignmentsRemoved, breakdownsReported, alertsRaised, matchScores)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	assignmentsCommitted, assignmentsRemoved, breakdownsReported, alertsRaised, matchScores = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
