package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidParams wraps every parameter validation failure so callers
// can match the class with errors.Is.
var ErrInvalidParams = errors.New("invalid simulation parameters")

// SimulationParameters is the immutable input configuration for one
// itinerary run. It is copied by value into the simulator; callers can
// reuse the same struct for concurrent runs.
type SimulationParameters struct {
	StartDate              time.Time
	TotalDistanceKm        float64
	AverageSpeedKmh        float64
	DrivingHoursPerDay     float64
	EnergyEfficiencyKmKWh  float64 // km driven per kWh drawn from the pack
	PanelAreaM2            float64
	PanelEfficiency        float64 // [0,1]
	MPPTEfficiency         float64 // [0,1]
	ControlStopDwellHours  float64
	LowBatteryThresholdPct float64
	LowBatteryChargeHours  float64
	MaxDays                int
	VehicleMassKg          float64
	DefaultSlopePct        float64
	FrontalAreaM2          float64
	DragCoefficient        float64

	// DayStartHour is the wall-clock hour at which driving begins each day.
	DayStartHour float64

	// Stuck-progress guard knobs. Zero values select the defaults below.
	ProgressEpsilonKm  float64
	MaxStuckIterations int
	MaxStuckDays       int
}

// Guard defaults applied by Normalize.
const (
	DefaultProgressEpsilonKm  = 0.001
	DefaultMaxStuckIterations = 5
	DefaultMaxStuckDays       = 3
	DefaultDayStartHour       = 8.0
)

// Normalize fills unset guard knobs with their defaults.
func (p *SimulationParameters) Normalize() {
	if p.ProgressEpsilonKm <= 0 {
		p.ProgressEpsilonKm = DefaultProgressEpsilonKm
	}
	if p.MaxStuckIterations <= 0 {
		p.MaxStuckIterations = DefaultMaxStuckIterations
	}
	if p.MaxStuckDays <= 0 {
		p.MaxStuckDays = DefaultMaxStuckDays
	}
	if p.DayStartHour <= 0 {
		p.DayStartHour = DefaultDayStartHour
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidParams, fmt.Sprintf(format, args...))
}

// Validate checks that the parameter set can drive a terminating
// simulation. It must be called before the loop starts.
func (p SimulationParameters) Validate() error {
	if p.StartDate.IsZero() {
		return invalid("start date is required")
	}
	if p.TotalDistanceKm < 0 {
		return invalid("total distance must not be negative, got %g", p.TotalDistanceKm)
	}
	if p.AverageSpeedKmh <= 0 {
		return invalid("average speed must be positive, got %g", p.AverageSpeedKmh)
	}
	if p.DrivingHoursPerDay <= 0 || p.DrivingHoursPerDay > 24 {
		return invalid("driving hours per day must be in (0,24], got %g", p.DrivingHoursPerDay)
	}
	if p.EnergyEfficiencyKmKWh <= 0 {
		return invalid("energy efficiency must be positive, got %g", p.EnergyEfficiencyKmKWh)
	}
	if p.LowBatteryThresholdPct < 0 || p.LowBatteryThresholdPct > 100 {
		return invalid("low battery threshold must be in [0,100], got %g", p.LowBatteryThresholdPct)
	}
	if p.LowBatteryChargeHours < 0 {
		return invalid("low battery charge hours must not be negative, got %g", p.LowBatteryChargeHours)
	}
	if p.ControlStopDwellHours < 0 {
		return invalid("control stop dwell must not be negative, got %g", p.ControlStopDwellHours)
	}
	if p.MaxDays < 1 {
		return invalid("max days must be at least 1, got %d", p.MaxDays)
	}
	if p.VehicleMassKg <= 0 {
		return invalid("vehicle mass must be positive, got %g", p.VehicleMassKg)
	}
	if p.FrontalAreaM2 <= 0 {
		return invalid("frontal area must be positive, got %g", p.FrontalAreaM2)
	}
	if p.DragCoefficient <= 0 {
		return invalid("drag coefficient must be positive, got %g", p.DragCoefficient)
	}
	if p.PanelAreaM2 < 0 || p.PanelEfficiency < 0 || p.PanelEfficiency > 1 ||
		p.MPPTEfficiency < 0 || p.MPPTEfficiency > 1 {
		return invalid("panel configuration out of range")
	}
	return nil
}

// BatterySpec describes the fixed pack characteristics used by the
// battery model.
type BatterySpec struct {
	NominalVoltageV        float64
	CapacityAh             float64
	EnergyKWh              float64
	MaxChargeRateA         float64
	StandardChargeRateA    float64
	MaxDischargeRateA      float64
	StandardDischargeRateA float64
}

// Validate checks that the pack description is sound.
func (b BatterySpec) Validate() error {
	if b.EnergyKWh <= 0 {
		return invalid("battery energy must be positive")
	}
	if b.CapacityAh <= 0 {
		return invalid("battery capacity must be positive")
	}
	if b.StandardChargeRateA <= 0 {
		return invalid("standard charge rate must be positive")
	}
	return nil
}
