// Package sim owns the multi-day simulation loop: it drives the segment
// planner one day at a time, applies overnight charging, detects the
// terminal conditions and aggregates the whole-trip itinerary.
package sim

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/solarace/core/battery"
	"github.com/kilianp07/solarace/core/logger"
	"github.com/kilianp07/solarace/core/model"
	"github.com/kilianp07/solarace/core/motor"
	"github.com/kilianp07/solarace/core/planner"
	"github.com/kilianp07/solarace/core/simmetrics"
	"github.com/kilianp07/solarace/core/solar"
	"github.com/kilianp07/solarace/internal/eventbus"
)

// MorningChargeHours is the fixed window of array harvesting applied
// between days before driving resumes.
const MorningChargeHours = 4.0

// Event is published on the progress bus. Concrete types are
// DayCompleted and RunFinished.
type Event any

// DayCompleted is published after each simulated day.
type DayCompleted struct {
	RunID       string
	Day         model.DailyItinerary
	RemainingKm float64
}

// RunFinished is published once per run, after aggregation.
type RunFinished struct {
	Itinerary *model.RouteItinerary
}

// Options wires a Simulator. Oracle is required; nil Logger, Sink and
// Bus default to no-ops.
type Options struct {
	Battery model.BatterySpec
	Motor   motor.Constants
	Oracle  solar.Oracle
	// FallbackKWhPerHour is the deterministic harvest assumed when the
	// oracle fails. Non-positive selects the package default.
	FallbackKWhPerHour float64
	Stops              []model.ControlStop
	Terrain            planner.SlopeSource
	Logger             logger.Logger
	Sink               simmetrics.Sink
	Bus                *eventbus.Bus[Event]
}

// Simulator runs route itineraries. One Simulator may serve concurrent
// runs: all mutable state is local to a CreateRouteItinerary call.
type Simulator struct {
	battery  battery.Model
	motor    motor.Model
	oracle   solar.Oracle
	fallback float64
	stops    []model.ControlStop
	terrain  planner.SlopeSource
	log      logger.Logger
	sink     simmetrics.Sink
	bus      *eventbus.Bus[Event]
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}

type flatTerrain struct{}

func (flatTerrain) SlopeAt(_, defaultPct float64) float64 { return defaultPct }

// New validates the wiring and returns a Simulator.
func New(opts Options) (*Simulator, error) {
	if err := opts.Battery.Validate(); err != nil {
		return nil, fmt.Errorf("battery spec: %w", err)
	}
	if opts.Oracle == nil {
		return nil, fmt.Errorf("solar oracle is required")
	}
	if opts.Logger == nil {
		opts.Logger = nopLogger{}
	}
	if opts.Sink == nil {
		opts.Sink = simmetrics.NopSink{}
	}
	if opts.Terrain == nil {
		opts.Terrain = flatTerrain{}
	}
	return &Simulator{
		battery:  battery.New(opts.Battery),
		motor:    motor.New(opts.Motor),
		oracle:   opts.Oracle,
		fallback: opts.FallbackKWhPerHour,
		stops:    opts.Stops,
		terrain:  opts.Terrain,
		log:      opts.Logger,
		sink:     opts.Sink,
		bus:      opts.Bus,
	}, nil
}

// CreateRouteItinerary simulates the whole trip for the given
// parameters. Invalid parameters are the only error; every terminal
// condition, including cancellation, is reported through
// RouteItinerary.Terminal with the partial itinerary built so far.
func (s *Simulator) CreateRouteItinerary(ctx context.Context, params model.SimulationParameters) (*model.RouteItinerary, error) {
	params.Normalize()
	if err := params.Validate(); err != nil {
		return nil, err
	}

	started := time.Now()
	itin := &model.RouteItinerary{RunID: uuid.NewString()}

	// Oracle failures are recovered per run; the cache keeps repeated
	// (date, interval) lookups from hitting a live backend twice.
	oracle := solar.NewCachedOracle(solar.NewFallbackOracle(s.oracle, s.fallback, s.log))
	panel := solar.PanelConfig{AreaM2: params.PanelAreaM2, Efficiency: params.PanelEfficiency, MPPT: params.MPPTEfficiency}

	if params.TotalDistanceKm == 0 {
		itin.Terminal = model.DestinationReached
		s.finish(ctx, itin, oracle, params, started)
		return itin, nil
	}

	pl := planner.New(params, s.battery, s.motor, oracle, s.stops, s.terrain, s.log)
	st := planner.State{RemainingKm: params.TotalDistanceKm, BatteryPct: 100}
	prevRemaining := st.RemainingKm
	stuckDays := 0

	for day := 1; ; day++ {
		if ctx.Err() != nil {
			itin.Terminal = model.Cancelled
			break
		}
		date := params.StartDate.AddDate(0, 0, day-1)

		res, err := pl.PlanDay(ctx, date, st)
		if err != nil {
			// Only cancellation escapes the planner.
			itin.Terminal = model.Cancelled
			break
		}
		if len(res.Segments) == 0 {
			s.log.Warnf("day %d produced no segments, aborting run", day)
			itin.Terminal = model.NoProgress
			break
		}

		daily := buildDaily(day, date, st, res)
		itin.Days = append(itin.Days, daily)
		s.recordDay(itin.RunID, daily, res)
		st = res.State

		if res.AbortedNoProgress && res.DistanceKm <= params.ProgressEpsilonKm {
			s.log.Warnf("day %d stuck with no distance, aborting run", day)
			itin.Terminal = model.NoProgress
			break
		}
		if res.DestinationReached || st.RemainingKm <= 0 {
			itin.Terminal = model.DestinationReached
			break
		}
		if math.Abs(prevRemaining-st.RemainingKm) < params.ProgressEpsilonKm {
			stuckDays++
		} else {
			stuckDays = 0
		}
		prevRemaining = st.RemainingKm
		if stuckDays >= params.MaxStuckDays {
			s.log.Warnf("no forward progress for %d days, aborting run", stuckDays)
			itin.Terminal = model.NoProgress
			break
		}
		if day >= params.MaxDays {
			itin.Days[len(itin.Days)-1].ReachedMaxDays = true
			itin.Terminal = model.MaxDaysReached
			break
		}

		// Overnight plus morning harvesting before the next day starts.
		produced, err := oracle.EstimateProduction(ctx, date.AddDate(0, 0, 1), MorningChargeHours/24, panel)
		if err != nil {
			itin.Terminal = model.Cancelled
			break
		}
		st.BatteryPct = s.battery.NewSoC(st.BatteryPct, produced, 0)
	}

	s.finish(ctx, itin, oracle, params, started)
	return itin, nil
}

func buildDaily(day int, date time.Time, before planner.State, res planner.DayResult) model.DailyItinerary {
	return model.DailyItinerary{
		DayIndex:             day,
		Date:                 date,
		Segments:             res.Segments,
		StartKm:              before.CurrentKm,
		EndKm:                res.State.CurrentKm,
		TotalDistanceKm:      res.DistanceKm,
		EnergyProductionKWh:  res.EnergyProducedKWh,
		EnergyConsumptionKWh: res.EnergyConsumedKWh,
		StartBatteryPct:      res.Segments[0].BatteryBefore,
		EndBatteryPct:        res.Segments[len(res.Segments)-1].BatteryAfter,
		TotalChargingHours:   res.ChargingHours,
	}
}

func (s *Simulator) recordDay(runID string, d model.DailyItinerary, res planner.DayResult) {
	rec := simmetrics.DayRecord{
		RunID:             runID,
		DayIndex:          d.DayIndex,
		Date:              d.Date,
		DistanceKm:        d.TotalDistanceKm,
		EnergyProducedKWh: d.EnergyProductionKWh,
		EnergyConsumedKWh: d.EnergyConsumptionKWh,
		ChargingHours:     d.TotalChargingHours,
		EndBatteryPct:     d.EndBatteryPct,
		ChargeStops:       res.ChargeStops,
		Segments:          len(d.Segments),
	}
	if err := s.sink.RecordDay(rec); err != nil {
		s.log.Errorf("record day %d: %v", d.DayIndex, err)
	}
	if s.bus != nil {
		s.bus.Publish(DayCompleted{RunID: runID, Day: d, RemainingKm: res.State.RemainingKm})
	}
}

func (s *Simulator) finish(ctx context.Context, itin *model.RouteItinerary, oracle solar.Oracle, params model.SimulationParameters, started time.Time) {
	s.aggregate(ctx, itin, oracle, params)

	rec := simmetrics.RunRecord{
		RunID:                     itin.RunID,
		Terminal:                  itin.Terminal,
		Days:                      len(itin.Days),
		TotalDistanceKm:           itin.TotalDistanceKm,
		TotalEnergyProductionKWh:  itin.TotalEnergyProductionKWh,
		TotalEnergyConsumptionKWh: itin.TotalEnergyConsumptionKWh,
		TotalChargingHours:        itin.TotalChargingHours,
		AverageBatteryPct:         itin.AverageBatteryPct,
		StartedAt:                 started,
		FinishedAt:                time.Now(),
	}
	if err := s.sink.RecordRun(rec); err != nil {
		s.log.Errorf("record run: %v", err)
	}
	if s.bus != nil {
		s.bus.Publish(RunFinished{Itinerary: itin})
	}
	s.log.Infof("run %s finished: %s after %d day(s), %.1f km", itin.RunID, itin.Terminal, len(itin.Days), itin.TotalDistanceKm)
}
