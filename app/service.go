// Package app assembles a runnable simulator from the configuration:
// route files, solar oracle, metrics sinks, telemetry and run history.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/kilianp07/solarace/config"
	"github.com/kilianp07/solarace/core/model"
	"github.com/kilianp07/solarace/core/sim"
	"github.com/kilianp07/solarace/core/simmetrics"
	"github.com/kilianp07/solarace/core/solar"
	"github.com/kilianp07/solarace/core/terrain"
	"github.com/kilianp07/solarace/infra/history"
	"github.com/kilianp07/solarace/infra/logger"
	"github.com/kilianp07/solarace/infra/metrics"
	"github.com/kilianp07/solarace/infra/telemetry"
	"github.com/kilianp07/solarace/internal/eventbus"
	"github.com/kilianp07/solarace/pkg/export"
)

// Service owns one configured simulator and its attached sinks.
type Service struct {
	Simulator *sim.Simulator

	cfg       *config.Config
	bus       *eventbus.Bus[sim.Event]
	log       logger.Logger
	publisher telemetry.Publisher
	store     *history.SQLiteStore
	done      chan struct{}
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	stops, table, err := loadRoute(cfg.Route)
	if err != nil {
		return nil, err
	}

	sink, err := buildSink(cfg.Metrics)
	if err != nil {
		return nil, err
	}

	bus := eventbus.New[sim.Event]()
	oracle := solar.NewClearSkyEstimator(cfg.Solar.Constants())

	opts := sim.Options{
		Battery:            cfg.Battery.Spec(),
		Motor:              cfg.Motor.Constants(),
		Oracle:             oracle,
		FallbackKWhPerHour: cfg.Solar.FallbackKWhPerHour,
		Stops:              stops,
		Logger:             logger.New("simulator"),
		Sink:               sink,
		Bus:                bus,
	}
	if table != nil {
		opts.Terrain = table
	}
	simulator, err := sim.New(opts)
	if err != nil {
		return nil, fmt.Errorf("simulator: %w", err)
	}

	svc := &Service{Simulator: simulator, cfg: cfg, bus: bus, log: logg}

	if cfg.Telemetry.Enabled {
		pub, err := telemetry.NewPahoPublisher(cfg.Telemetry.MQTT)
		if err != nil {
			return nil, fmt.Errorf("telemetry: %w", err)
		}
		svc.publisher = pub
	}
	if cfg.History.Enabled {
		store, err := history.NewSQLiteStore(cfg.History.Path)
		if err != nil {
			return nil, fmt.Errorf("history store: %w", err)
		}
		svc.store = store
	}

	svc.done = make(chan struct{})
	// Subscribe before returning so a run started right after New
	// cannot publish ahead of the consumer.
	sub := bus.Subscribe()
	go svc.consumeEvents(sub)
	return svc, nil
}

func loadRoute(cfg config.RouteConfig) ([]model.ControlStop, *terrain.Table, error) {
	var stops []model.ControlStop
	if cfg.ControlStopsCSV != "" {
		var err error
		stops, err = terrain.LoadControlStopsCSV(cfg.ControlStopsCSV)
		if err != nil {
			return nil, nil, fmt.Errorf("control stops: %w", err)
		}
	}
	var table *terrain.Table
	if cfg.TerrainCSV != "" {
		points, err := terrain.LoadTerrainCSV(cfg.TerrainCSV)
		if err != nil {
			return nil, nil, fmt.Errorf("terrain: %w", err)
		}
		table = terrain.NewTable(points)
	}
	return stops, table, nil
}

func buildSink(cfg config.MetricsConfig) (simmetrics.Sink, error) {
	var sinks []simmetrics.Sink
	if cfg.PrometheusEnabled {
		sink, err := metrics.NewPromSink()
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.InfluxURL, cfg.InfluxToken, cfg.InfluxOrg, cfg.InfluxBucket))
	}
	switch len(sinks) {
	case 0:
		return nil, nil
	case 1:
		return sinks[0], nil
	default:
		return metrics.NewMultiSink(sinks...), nil
	}
}

// consumeEvents forwards day-progress events to the telemetry publisher
// and finished runs to the history store.
func (s *Service) consumeEvents(sub <-chan sim.Event) {
	defer close(s.done)
	for ev := range sub {
		switch e := ev.(type) {
		case sim.DayCompleted:
			s.log.Infof("day %d: %.1f km driven, %.1f km remaining, battery %.0f%%",
				e.Day.DayIndex, e.Day.TotalDistanceKm, e.RemainingKm, e.Day.EndBatteryPct)
			if s.publisher != nil {
				if err := s.publisher.PublishDay(e); err != nil {
					s.log.Errorf("publish day %d: %v", e.Day.DayIndex, err)
				}
			}
		case sim.RunFinished:
			if s.store != nil {
				if err := s.store.Add(e.Itinerary, time.Now()); err != nil {
					s.log.Errorf("store run %s: %v", e.Itinerary.RunID, err)
				}
			}
		}
	}
}

// Run executes one simulation and writes the configured outputs.
func (s *Service) Run(ctx context.Context) (*model.RouteItinerary, error) {
	params, err := s.cfg.Simulation.Parameters()
	if err != nil {
		return nil, err
	}
	itin, err := s.Simulator.CreateRouteItinerary(ctx, params)
	if err != nil {
		return nil, err
	}
	if err := s.writeOutputs(itin); err != nil {
		return itin, err
	}
	return itin, nil
}

func (s *Service) writeOutputs(itin *model.RouteItinerary) error {
	if path := s.cfg.Output.JSONPath; path != "" {
		if err := writeFile(path, itin, export.WriteJSON); err != nil {
			return fmt.Errorf("write json: %w", err)
		}
		s.log.Infof("itinerary written to %s", path)
	}
	if path := s.cfg.Output.CSVPath; path != "" {
		if err := writeFile(path, itin, export.WriteCSV); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		s.log.Infof("itinerary written to %s", path)
	}
	return nil
}

func writeFile(path string, itin *model.RouteItinerary, write func(w io.Writer, it *model.RouteItinerary) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f, itin); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Close flushes the event consumer and releases attached resources.
func (s *Service) Close() error {
	s.bus.Close()
	<-s.done
	if s.publisher != nil {
		s.publisher.Close()
	}
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
