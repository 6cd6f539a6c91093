// Package app wires configuration into a running study plan service.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"time"

	"github.com/kilianp07/studyplan/api"
	"github.com/kilianp07/studyplan/app/plugins"
	"github.com/kilianp07/studyplan/config"
	"github.com/kilianp07/studyplan/core/factory"
	coremetrics "github.com/kilianp07/studyplan/core/metrics"
	coremon "github.com/kilianp07/studyplan/core/monitoring"
	"github.com/kilianp07/studyplan/core/planlog"
	"github.com/kilianp07/studyplan/core/planning"
	"github.com/kilianp07/studyplan/core/store"
	"github.com/kilianp07/studyplan/infra/logger"
	"github.com/kilianp07/studyplan/infra/metrics"
	"github.com/kilianp07/studyplan/infra/monitoring"
	"github.com/kilianp07/studyplan/infra/mqtt"
	"github.com/kilianp07/studyplan/internal/eventbus"
)

// Service owns the planning service and every adapter around it.
type Service struct {
	Planning *planning.Service

	cfg     *config.Config
	store   store.Store
	logs    planlog.LogStore
	sink    coremetrics.PlanSink
	monitor coremon.Monitor
	bus     *eventbus.Bus
	mqtt    *mqtt.PahoClient
	log     logger.Logger
}

// New creates a Service from the configuration. Resources opened before a
// failure are released.
func New(ctx context.Context, cfg *config.Config) (svc *Service, err error) {
	logg := logger.New("service")
	s := &Service{cfg: cfg, log: logg, bus: eventbus.New(eventbus.WithBuffer(cfg.Events.Buffer))}
	defer func() {
		if err != nil {
			if cerr := s.Close(); cerr != nil {
				logg.Errorf("cleanup: %v", cerr)
			}
		}
	}()

	if s.monitor, err = monitoring.NewSentryMonitor(cfg.Sentry); err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	if s.store, err = plugins.NewStore(ctx, cfg.Store.Type, cfg.Store.Conf); err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	if s.logs, err = plugins.LogStores.Create(cfg.Logging.Plugin().Module()); err != nil {
		return nil, fmt.Errorf("plan log: %w", err)
	}
	if s.sink, err = coremetrics.NewPlanSink(cfg.Metrics.Sinks); err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	if s.promEnabled() {
		if err = metrics.RegisterDroppedEvents(nil, s.bus.Dropped); err != nil {
			return nil, fmt.Errorf("metrics sink: %w", err)
		}
	}
	s.Planning, err = planning.NewService(s.store, cfg.Planning,
		planning.WithEventBus(s.bus),
		planning.WithMetrics(s.sink),
		planning.WithLogStore(s.logs),
		planning.WithMonitor(s.monitor),
		planning.WithLogger(logger.New("planning")),
	)
	if err != nil {
		return nil, err
	}
	if cfg.MQTT.Enabled {
		s.mqtt, err = mqtt.NewPahoClient(cfg.MQTT,
			mqtt.WithMonitor(s.monitor),
			mqtt.WithSessionCompleter(s.Planning),
		)
		if err != nil {
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
	}
	logg.Infof("service ready (store=%s, plan log=%s, sinks=%d, mqtt=%t)",
		cfg.Store.Type, cfg.Logging.Backend, len(cfg.Metrics.Sinks), cfg.MQTT.Enabled)
	return s, nil
}

// Handler returns the HTTP routes of the service.
func (s *Service) Handler() http.Handler {
	return api.NewRouter(s.Planning, api.Options{
		Token:   s.cfg.HTTP.Token,
		Metrics: s.promEnabled() && s.cfg.Metrics.PrometheusAddr == "",
	})
}

func (s *Service) promEnabled() bool {
	return slices.ContainsFunc(s.cfg.Metrics.Sinks, func(m factory.ModuleConfig) bool {
		return m.Type == "prometheus"
	})
}

// Run serves the API until the context is canceled.
func (s *Service) Run(ctx context.Context) error {
	collected := metrics.StartEventCollector(ctx, s.bus, s.sink)
	var notified <-chan struct{}
	if s.mqtt != nil {
		notified = mqtt.NewNotifier(s.mqtt, s.cfg.MQTT.TopicPrefix).Start(ctx, s.bus)
	}
	if s.promEnabled() && s.cfg.Metrics.PrometheusAddr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	srv := &http.Server{Addr: s.cfg.HTTP.Addr, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("listening on %s", s.cfg.HTTP.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.log.Errorf("http shutdown: %v", err)
	}
	s.bus.Close()
	<-collected
	if s.mqtt != nil {
		<-notified
	}
	if n := s.bus.Dropped(); n > 0 {
		s.log.Warnf("event bus dropped %d events", n)
	}
	return runErr
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	var errs []error
	if s.mqtt != nil {
		s.mqtt.Disconnect()
	}
	if c, ok := s.sink.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	if s.logs != nil {
		errs = append(errs, s.logs.Close())
	}
	if s.store != nil {
		errs = append(errs, s.store.Close())
	}
	if s.monitor != nil {
		s.monitor.Flush(2 * time.Second)
	}
	return errors.Join(errs...)
}
