// Package planner decides, minute by minute, what the vehicle does over
// a single race day: drive toward the next constraint, dwell at a
// control stop, or pull over to charge a depleted pack.
package planner

import (
	"context"
	"math"
	"time"

	"github.com/kilianp07/solarace/core/battery"
	"github.com/kilianp07/solarace/core/logger"
	"github.com/kilianp07/solarace/core/model"
	"github.com/kilianp07/solarace/core/motor"
	"github.com/kilianp07/solarace/core/solar"
)

// ControlStopEpsilonKm is the snap distance for arriving at a control
// stop: a driving segment ending within this window is pinned to the
// stop's exact kilometre mark.
const ControlStopEpsilonKm = 0.1

// State is the mutable position of the simulation between days. The
// planner receives a snapshot and returns the advanced copy; it owns no
// state across calls.
type State struct {
	CurrentKm   float64
	RemainingKm float64
	BatteryPct  float64
	NextStopIdx int
}

// DayResult is the outcome of one planned day.
type DayResult struct {
	Segments []model.RouteSegment
	State    State

	DistanceKm        float64
	EnergyConsumedKWh float64
	EnergyProducedKWh float64
	ChargingHours     float64
	ChargeStops       int

	DestinationReached bool
	AbortedNoProgress  bool
}

// Planner plans single days against static route data and the physics
// models. Safe for reuse across days of one run; not across runs with
// different static data.
type Planner struct {
	params  model.SimulationParameters
	battery battery.Model
	motor   motor.Model
	oracle  solar.Oracle
	panel   solar.PanelConfig
	stops   []model.ControlStop
	terrain SlopeSource
	log     logger.Logger
}

// SlopeSource resolves local slope for a distance along the route.
type SlopeSource interface {
	SlopeAt(distanceKm, defaultPct float64) float64
}

// New builds a Planner. The control stop slice must be sorted by
// distance ascending; it is treated as read-only.
func New(params model.SimulationParameters, bat battery.Model, mot motor.Model, oracle solar.Oracle, stops []model.ControlStop, terrain SlopeSource, log logger.Logger) *Planner {
	params.Normalize()
	return &Planner{
		params:  params,
		battery: bat,
		motor:   mot,
		oracle:  oracle,
		panel: solar.PanelConfig{
			AreaM2:     params.PanelAreaM2,
			Efficiency: params.PanelEfficiency,
			MPPT:       params.MPPTEfficiency,
		},
		stops:   stops,
		terrain: terrain,
		log:     log,
	}
}

// PlanDay advances the vehicle through one day starting from st and
// returns the ordered segments plus the end-of-day state. The only error
// returned is context cancellation; every modeling dead end is reported
// through AbortedNoProgress instead.
func (p *Planner) PlanDay(ctx context.Context, date time.Time, st State) (DayResult, error) {
	res := DayResult{State: st}
	hoursLeft := p.params.DrivingHoursPerDay
	clock := p.params.DayStartHour
	eps := p.params.ProgressEpsilonKm
	stuck := 0

	// Skip stops already behind the current position.
	for res.State.NextStopIdx < len(p.stops) &&
		p.stops[res.State.NextStopIdx].DistanceFromStart < res.State.CurrentKm-ControlStopEpsilonKm {
		res.State.NextStopIdx++
	}

	for hoursLeft > 0 && res.State.RemainingKm > 0 {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		prevKm := res.State.CurrentKm
		prevRemaining := res.State.RemainingKm

		distToStop := math.Inf(1)
		if res.State.NextStopIdx < len(p.stops) {
			distToStop = p.stops[res.State.NextStopIdx].DistanceFromStart - res.State.CurrentKm
		}
		distByTime := hoursLeft * p.params.AverageSpeedKmh
		distByBattery := p.battery.RangeAboveKm(res.State.BatteryPct, p.params.LowBatteryThresholdPct, p.params.EnergyEfficiencyKmKWh)

		lowBattery := res.State.BatteryPct <= p.params.LowBatteryThresholdPct || distByBattery <= eps
		if lowBattery {
			if p.params.LowBatteryChargeHours <= 0 {
				// Charging cannot help; count the spin and bail out
				// before it loops forever.
				stuck++
				if stuck >= p.params.MaxStuckIterations {
					res.AbortedNoProgress = true
					break
				}
				continue
			}
			clock, hoursLeft = p.chargeStop(&res, clock, hoursLeft)
			stuck++
			if stuck >= p.params.MaxStuckIterations {
				res.AbortedNoProgress = true
				break
			}
			continue
		}

		dist := math.Min(math.Min(distToStop, distByTime), math.Min(distByBattery, res.State.RemainingKm))
		if dist <= eps {
			stuck++
			if stuck >= p.params.MaxStuckIterations {
				res.AbortedNoProgress = true
				break
			}
			continue
		}

		atStop := res.State.NextStopIdx < len(p.stops) &&
			math.Abs(res.State.CurrentKm+dist-p.stops[res.State.NextStopIdx].DistanceFromStart) <= ControlStopEpsilonKm

		if err := p.drive(ctx, date, &res, dist, atStop, &clock, &hoursLeft); err != nil {
			return res, err
		}
		if atStop && hoursLeft > 0 {
			if err := p.controlStop(ctx, date, &res, &clock, &hoursLeft); err != nil {
				return res, err
			}
		}

		if res.State.RemainingKm <= eps {
			res.State.RemainingKm = 0
			res.DestinationReached = true
			break
		}
		if math.Abs(res.State.CurrentKm-prevKm) < eps && math.Abs(res.State.RemainingKm-prevRemaining) < eps {
			stuck++
			if stuck >= p.params.MaxStuckIterations {
				res.AbortedNoProgress = true
				break
			}
		} else {
			stuck = 0
		}
	}
	return res, nil
}

// chargeStop emits a low-battery charging segment without advancing
// position. Time is consumed from the day's driving budget.
func (p *Planner) chargeStop(res *DayResult, clock, hoursLeft float64) (newClock, newHoursLeft float64) {
	hours := p.params.LowBatteryChargeHours
	before := res.State.BatteryPct
	after := p.battery.ChargingStopSoC(before, hours)
	res.Segments = append(res.Segments, model.NewChargingSegment(res.State.CurrentKm, hours, before, after, clock))
	res.State.BatteryPct = after
	res.ChargingHours += hours
	res.ChargeStops++
	p.log.Debugw("low battery charge", map[string]any{
		"km":     res.State.CurrentKm,
		"before": before,
		"after":  after,
		"hours":  hours,
	})
	return clock + hours, hoursLeft - hours
}

// drive emits one driving segment of dist kilometres. When atStop is
// set the segment end is pinned to the control stop's exact kilometre
// and the energy figures are computed from the pinned distance.
func (p *Planner) drive(ctx context.Context, date time.Time, res *DayResult, dist float64, atStop bool, clock, hoursLeft *float64) error {
	var stopKm float64
	if atStop {
		stopKm = p.stops[res.State.NextStopIdx].DistanceFromStart
		dist = stopKm - res.State.CurrentKm
	}
	slope := p.terrain.SlopeAt(res.State.CurrentKm+dist/2, p.params.DefaultSlopePct)

	consumed := p.motor.EnergyConsumedKWh(dist, p.params.AverageSpeedKmh, p.params.VehicleMassKg, p.params.FrontalAreaM2, p.params.DragCoefficient, slope)
	if motor.Faulty(consumed) {
		fallback := motor.FallbackEnergyKWh(dist, p.params.EnergyEfficiencyKmKWh)
		p.log.Warnf("motor model returned %v for %.2f km, using fallback %.3f kWh", consumed, dist, fallback)
		consumed = fallback
	}

	driveHours := dist / p.params.AverageSpeedKmh
	produced, err := p.oracle.EstimateProduction(ctx, date, driveHours/24, p.panel)
	if err != nil {
		return err
	}

	before := res.State.BatteryPct
	after := p.battery.NewSoC(before, produced, consumed)
	seg := model.NewDrivingSegment(res.State.CurrentKm, dist, before, after, *clock, *clock+driveHours, slope, consumed, produced)
	if atStop {
		// Absorb any float residue so the segment lands exactly on the
		// stop's kilometre mark.
		seg.EndKm = stopKm
		seg.Drive.DistanceKm = stopKm - seg.StartKm
		dist = seg.Drive.DistanceKm
	}
	res.Segments = append(res.Segments, seg)

	res.State.CurrentKm = seg.EndKm
	res.State.RemainingKm -= dist
	if res.State.RemainingKm < 0 {
		res.State.RemainingKm = 0
	}
	res.State.BatteryPct = after
	res.DistanceKm += dist
	res.EnergyConsumedKWh += consumed
	res.EnergyProducedKWh += produced
	*clock += driveHours
	*hoursLeft -= driveHours
	return nil
}

// controlStop emits the zero-distance dwell segment for the stop the
// vehicle just reached. The array keeps harvesting during the dwell.
func (p *Planner) controlStop(ctx context.Context, date time.Time, res *DayResult, clock, hoursLeft *float64) error {
	stop := p.stops[res.State.NextStopIdx]
	dwell := p.params.ControlStopDwellHours

	produced, err := p.oracle.EstimateProduction(ctx, date, dwell/24, p.panel)
	if err != nil {
		return err
	}
	before := res.State.BatteryPct
	after := p.battery.NewSoC(before, produced, 0)
	res.Segments = append(res.Segments, model.NewControlStopSegment(stop.DistanceFromStart, stop.Name, dwell, before, after, *clock, produced))

	res.State.BatteryPct = after
	res.State.NextStopIdx++
	res.EnergyProducedKWh += produced
	res.ChargingHours += dwell
	*clock += dwell
	*hoursLeft -= dwell
	return nil
}
