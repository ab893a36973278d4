package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/kilianp07/wrsn/api/runs"
	"github.com/kilianp07/wrsn/config"
	"github.com/kilianp07/wrsn/core/clock"
	"github.com/kilianp07/wrsn/core/events"
	coremetrics "github.com/kilianp07/wrsn/core/metrics"
	"github.com/kilianp07/wrsn/core/runstatus"
	"github.com/kilianp07/wrsn/core/scheduler"
	"github.com/kilianp07/wrsn/infra/logger"
	"github.com/kilianp07/wrsn/infra/metrics"
	"github.com/kilianp07/wrsn/infra/mqtt"
	"github.com/kilianp07/wrsn/internal/eventbus"
)

// busBuffer bounds how far subscribers may lag behind the simulation.
const busBuffer = 4096

// Service wires a world, the scheduler and the configured outputs.
type Service struct {
	World     *World
	Scheduler *scheduler.Scheduler

	// Status follows the runs of this service through the event bus.
	Status *runstatus.MemoryStore

	cfg  *config.Config
	sink coremetrics.MetricsSink
	bus  *eventbus.Bus[events.Event]
	mqtt *mqtt.PahoClient
	log  logger.Logger
}

// New builds the world and every output from cfg. The MQTT client is only
// created when enabled.
func New(cfg *config.Config) (*Service, error) {
	if err := logger.Configure(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return nil, err
	}
	log := logger.New("service")

	world, err := BuildWorld(cfg)
	if err != nil {
		return nil, fmt.Errorf("build world: %w", err)
	}
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sinks: %w", err)
	}
	sched, err := scheduler.New(world.Field, world.Clusters, cfg.Simulation,
		clock.NewSimClock(time.Now()), logger.New("scheduler"), sink)
	if err != nil {
		return nil, fmt.Errorf("scheduler: %w", err)
	}
	bus := eventbus.New[events.Event](busBuffer)
	sched.SetPublisher(bus)

	svc := &Service{
		World:     world,
		Scheduler: sched,
		Status:    runstatus.NewMemoryStore(),
		cfg:       cfg,
		sink:      sink,
		bus:       bus,
		log:       log,
	}
	if cfg.MQTT.Enabled {
		client, err := mqtt.NewPahoClient(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		svc.mqtt = client
	}
	log.Infof("world ready: %d peripherals in %d clusters, policy %s",
		len(world.Peripherals), len(world.Clusters), cfg.Simulation.Policy)
	return svc, nil
}

// Run executes one simulation and blocks until it terminated and every
// subscriber drained the bus.
func (s *Service) Run(ctx context.Context) (*scheduler.Run, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if port := s.cfg.Metrics.PrometheusPort; port != "" {
		api := runs.NewHandler(s.Status, s.cfg.API.Token)
		routes := map[string]http.Handler{"/api/": api}
		go func() {
			if err := metrics.StartPromServer(ctx, port, routes); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	// Subscribers stop on bus close, not on ctx, so they see the termination.
	subCtx := context.WithoutCancel(ctx)
	waits := []<-chan struct{}{
		metrics.StartEventCollector(subCtx, s.bus, s.sink, logger.New("collector")),
		runstatus.Watch(subCtx, s.bus, s.Status),
	}
	if s.mqtt != nil {
		current := s.Scheduler.Begin().ID
		s.mqtt.OnStop(func(runID string) {
			if runID == "" || runID == current {
				cancel()
			}
		})
		waits = append(waits, mqtt.StartEventPublisher(subCtx, s.bus, s.mqtt, logger.New("mqtt_publisher")))
	}

	run, err := s.Scheduler.Run(ctx)
	s.bus.Close()
	for _, w := range waits {
		<-w
	}
	if dropped := s.bus.Dropped(); dropped > 0 {
		s.log.Warnf("%d events dropped by slow subscribers", dropped)
	}
	return run, err
}

// Close releases the outputs.
func (s *Service) Close() error {
	if s.mqtt != nil {
		s.mqtt.Disconnect()
	}
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	return nil
}
