// Package app wires the dispatch engine to its infrastructure: metrics
// sinks, the telemetry feed, the HTTP API and the clock loops.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/pitops/minedispatch/api"
	"github.com/pitops/minedispatch/config"
	"github.com/pitops/minedispatch/core/alert"
	"github.com/pitops/minedispatch/core/dispatch"
	"github.com/pitops/minedispatch/core/events"
	"github.com/pitops/minedispatch/core/fleet"
	coremetrics "github.com/pitops/minedispatch/core/metrics"
	"github.com/pitops/minedispatch/infra/logger"
	"github.com/pitops/minedispatch/infra/metrics"
	"github.com/pitops/minedispatch/infra/mqttfeed"
	"github.com/pitops/minedispatch/internal/eventbus"
	"github.com/pitops/minedispatch/simulator"
)

// Service orchestrates the dispatch manager and its connectors.
type Service struct {
	Manager *dispatch.Manager

	cfg         *config.Config
	bus         eventbus.EventBus
	feed        *mqttfeed.Feed
	httpSrv     *http.Server
	log         logger.Logger
	promEnabled bool
	promPort    string
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	var sinks []coremetrics.MetricsSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics))
	}
	var sink coremetrics.MetricsSink
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	var seed fleet.Snapshot
	if cfg.Fleet.Seed {
		seed = simulator.DemoFleet()
	}
	registry := fleet.NewRegistry(seed)
	bus := eventbus.New()
	manager, err := dispatch.NewManager(registry, alert.NewManager(), cfg.Dispatch, sink, bus, logg)
	if err != nil {
		return nil, fmt.Errorf("dispatch manager: %w", err)
	}

	var feed *mqttfeed.Feed
	if cfg.Feed.Enabled {
		feed, err = mqttfeed.New(cfg.Feed, registry, logger.New("mqtt-feed"))
		if err != nil {
			return nil, fmt.Errorf("telemetry feed: %w", err)
		}
	}

	return &Service{
		Manager:     manager,
		cfg:         cfg,
		bus:         bus,
		feed:        feed,
		httpSrv:     &http.Server{Addr: cfg.API.Addr, Handler: api.NewRouter(manager, logger.New("api"))},
		log:         logg,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promPort:    cfg.Metrics.PrometheusPort,
	}, nil
}

// Run starts the HTTP API and the engine clock loops and blocks until the
// context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	go func() {
		s.log.Infof("api listening on %s", s.httpSrv.Addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Errorf("api server: %v", err)
		}
	}()
	go s.watchEvents(ctx)

	engineCfg := s.Manager.Config()
	tick := time.NewTicker(time.Duration(engineCfg.TickSeconds) * time.Second)
	defer tick.Stop()
	optimize := time.NewTicker(time.Duration(engineCfg.OptimizeSeconds) * time.Second)
	defer optimize.Stop()

	last := time.Now()
	for {
		select {
		case now := <-tick.C:
			s.Manager.Tick(now.Sub(last))
			last = now
		case <-optimize.C:
			created := s.Manager.AutoAssign()
			if len(created) > 0 {
				s.log.Infof("optimization round committed %d assignment(s)", len(created))
			}
		case <-ctx.Done():
			return nil
		}
	}
}

// watchEvents logs engine events from the bus until the context is
// cancelled.
func (s *Service) watchEvents(ctx context.Context) {
	ch := s.bus.Subscribe()
	defer s.bus.Unsubscribe(ch)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return
			}
			switch e := ev.(type) {
			case events.AssignmentCreated:
				s.log.Debugw("assignment created", map[string]any{
					"id": e.Assignment.ID, "loader": e.Assignment.LoaderID,
					"hauler": e.Assignment.HaulerID, "score": e.Score, "auto": e.Auto,
				})
			case events.BreakdownReported:
				s.log.Warnf("breakdown reported for %s (%d hauler(s) reassigned)", e.EquipmentID, len(e.Reassigned))
			case events.AlertRaised:
				s.log.Debugf("alert %s raised for %s", e.Alert.Kind, e.Alert.EquipmentID)
			}
		case <-ctx.Done():
			return
		}
	}
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.feed != nil {
		s.feed.Close()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.httpSrv.Shutdown(ctx)
	s.bus.Close()
	return err
}
