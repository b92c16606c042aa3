// Package app assembles the engine from configuration and owns the live
// timeline between commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kilianp07/wheelsched/api"
	"github.com/kilianp07/wheelsched/config"
	"github.com/kilianp07/wheelsched/core/cmdlog"
	"github.com/kilianp07/wheelsched/core/events"
	"github.com/kilianp07/wheelsched/core/extract"
	coremetrics "github.com/kilianp07/wheelsched/core/metrics"
	"github.com/kilianp07/wheelsched/core/model"
	coremon "github.com/kilianp07/wheelsched/core/monitoring"
	"github.com/kilianp07/wheelsched/core/pipeline"
	"github.com/kilianp07/wheelsched/core/validate"
	"github.com/kilianp07/wheelsched/infra/dataset"
	"github.com/kilianp07/wheelsched/infra/logger"
	"github.com/kilianp07/wheelsched/infra/metrics"
	"github.com/kilianp07/wheelsched/infra/monitoring"
	"github.com/kilianp07/wheelsched/infra/mqtt"
	"github.com/kilianp07/wheelsched/internal/eventbus"
)

// drainTimeout bounds how long Close waits for pending change notices.
const drainTimeout = 2 * time.Second

// Service holds the current timeline and applies commands to it one at a time.
type Service struct {
	mu       sync.Mutex
	timeline model.Timeline
	engine   *pipeline.Engine
	loc      *time.Location
	store    cmdlog.Store
	sink     coremetrics.MetricsSink
	bus      *eventbus.Bus[events.TimelineChanged]
	notifier *mqtt.Notifier
	notified <-chan struct{}
	log      logger.Logger
	promPort string
	apiCfg   api.Config
	monitor  coremon.Monitor
}

// New loads the datasets named in cfg and builds the engine.
func New(ctx context.Context, cfg *config.Config) (*Service, error) {
	loc, err := cfg.Schedule.Location()
	if err != nil {
		return nil, err
	}
	orders, tl, err := dataset.NewLoader(loc).Load(cfg.Schedule.OrdersPath, cfg.Schedule.SchedulePath)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	return NewWithData(ctx, cfg, orders, tl)
}

// NewWithData builds the service around already loaded reference data.
func NewWithData(ctx context.Context, cfg *config.Config, orders model.Orders, tl model.Timeline) (*Service, error) {
	logg := logger.New("service")
	loc, err := cfg.Schedule.Location()
	if err != nil {
		return nil, err
	}

	monitor, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	ex := newExtractor(ctx, cfg, loc, logg)

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	store, err := cmdlog.Open(cfg.CommandLog.Options())
	if err != nil {
		return nil, fmt.Errorf("command log: %w", err)
	}

	svc := &Service{
		timeline: tl,
		loc:      loc,
		store:    store,
		sink:     sink,
		bus:      eventbus.New[events.TimelineChanged](),
		log:      logg,
		promPort: cfg.Metrics.PrometheusPort,
		apiCfg:   cfg.API,
		monitor:  monitor,
	}
	if cfg.MQTT.Enabled() {
		n, err := mqtt.NewNotifier(cfg.MQTT)
		if err != nil {
			_ = svc.Close()
			return nil, fmt.Errorf("mqtt notifier: %w", err)
		}
		n.SetMonitor(monitor)
		svc.notifier = n
	}
	svc.engine = pipeline.New(ex, validate.New(loc, cfg.Schedule.DefaultMoveTime), orders,
		pipeline.WithLogger(logger.New("pipeline")),
		pipeline.WithMetrics(sink),
		pipeline.WithHistory(cmdlog.NewRing(cfg.CommandLog.Capacity, store)),
		pipeline.WithMonitor(monitor),
	)
	logg.Infof("loaded %d orders and %d operations in %s", orders.Len(), tl.Len(), loc)
	return svc, nil
}

func newExtractor(ctx context.Context, cfg *config.Config, loc *time.Location, logg logger.Logger) *extract.Extractor {
	patterns := extract.NewPatternExtractor(extract.NewDateParser(loc, time.Now))
	opts := []extract.Option{
		extract.WithTimeout(cfg.Extractor.Timeout()),
		extract.WithLogger(logger.New("extractor")),
	}
	if cfg.Extractor.Enabled {
		m, err := extract.NewModelExtractor(ctx, cfg.Extractor.ModelConfig(loc.String()))
		switch {
		case errors.Is(err, extract.ErrNoCredential):
			logg.Warnf("model extraction enabled but %s is not set, using patterns only", cfg.Extractor.APIKeyEnv)
		case err != nil:
			logg.Warnf("model extraction unavailable, using patterns only: %v", err)
		default:
			opts = append(opts, extract.WithModel(m))
		}
	}
	return extract.New(patterns, opts...)
}

// Start launches the change notifier, the metrics endpoint and the
// read-only API when configured. All of them stop with ctx.
func (s *Service) Start(ctx context.Context) {
	if s.notifier != nil {
		s.notified = s.notifier.Run(ctx, s.bus)
	}
	if s.promPort != "" {
		go func() {
			defer s.monitor.Recover()
			if err := metrics.StartPromServer(ctx, s.promPort); err != nil {
				s.log.Errorf("prom server: %v", err)
				s.monitor.CaptureException(err, map[string]string{"stage": "prom_server"})
			}
		}()
	}
	if s.apiCfg.Listen != "" {
		h := api.NewRouter(s, s.engine.History(), s.apiCfg.Token, s.loc)
		go func() {
			defer s.monitor.Recover()
			if err := api.Serve(ctx, s.apiCfg.Listen, h); err != nil {
				s.log.Errorf("api server: %v", err)
				s.monitor.CaptureException(err, map[string]string{"stage": "api_server"})
			}
		}()
	}
}

// Submit processes one command text against the current timeline and keeps
// the result when the command applies.
func (s *Service) Submit(ctx context.Context, text string) pipeline.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.engine.Process(ctx, text, s.timeline)
	if !out.Applied {
		return out
	}
	s.timeline = out.Timeline
	s.bus.Publish(events.TimelineChanged{
		CommandID: out.Entry.ID,
		Intent:    string(out.Command.Intent()),
		Message:   out.Message,
		OrderIDs:  out.Command.Orders(),
		Changes:   out.Changes,
		Time:      out.Entry.Timestamp,
	})
	return out
}

// Timeline returns the current timeline.
func (s *Service) Timeline() model.Timeline {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeline
}

func (s *Service) Orders() model.Orders { return s.engine.Orders() }

func (s *Service) Location() *time.Location { return s.loc }

// History returns the in-memory command history, newest last.
func (s *Service) History() []cmdlog.Entry { return s.engine.History().Entries() }

// Store returns the durable command store, nil for the memory backend.
func (s *Service) Store() cmdlog.Store { return s.store }

// Events exposes the change bus so callers can observe applied commands.
func (s *Service) Events() *eventbus.Bus[events.TimelineChanged] { return s.bus }

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	if s.notified != nil {
		select {
		case <-s.notified:
		case <-time.After(drainTimeout):
			s.log.Warnf("change notifier still busy after %s", drainTimeout)
		}
	}
	if s.notifier != nil {
		s.notifier.Close()
	}
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	s.monitor.Flush(2 * time.Second)
	var err error
	if s.engine != nil {
		err = s.engine.History().Close()
	} else if s.store != nil {
		err = s.store.Close()
	}
	return err
}
