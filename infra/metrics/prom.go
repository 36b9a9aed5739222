package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	coremetrics "github.com/pitops/minedispatch/core/metrics"
)

// PromSink records committed assignments in Prometheus metrics.
type PromSink struct {
	events *prometheus.CounterVec
	scores *prometheus.HistogramVec
	cycles *prometheus.HistogramVec
}

// NewPromSink registers assignment metrics on the default Prometheus
// registerer. The Prometheus server should be started separately using
// cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(cfg coremetrics.Config, reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "assignment_events_total",
		Help: "Total number of assignment events",
	}, []string{"loader_id", "material", "priority", "auto"})
	scores := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "assignment_score",
		Help:    "Score of committed assignments",
		Buckets: prometheus.LinearBuckets(0, 20, 10),
	}, []string{"material"})
	cycles := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "assignment_cycle_minutes",
		Help:    "Estimated cycle time of committed assignments",
		Buckets: []float64{5, 10, 15, 20, 30, 45, 60},
	}, []string{"material"})

	if err := reg.Register(events); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			events = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(scores); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			scores = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(cycles); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			cycles = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	return &PromSink{events: events, scores: scores, cycles: cycles}, nil
}

// RecordAssignments implements MetricsSink.
func (s *PromSink) RecordAssignments(recs []coremetrics.AssignmentRecord) error {
	for _, r := range recs {
		s.events.WithLabelValues(r.LoaderID, string(r.Material), r.Priority.String(), strconv.FormatBool(r.Auto)).Inc()
		s.scores.WithLabelValues(string(r.Material)).Observe(r.Score)
		s.cycles.WithLabelValues(string(r.Material)).Observe(r.EstimatedCycleMinutes)
	}
	return nil
}

// StartPromServer exposes /metrics on the given port until the context is
// cancelled.
func StartPromServer(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: ":" + port, Handler: mux}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
