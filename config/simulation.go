package config

import (
	"fmt"
	"time"

	"github.com/kilianp07/solarace/core/model"
	"github.com/kilianp07/solarace/core/motor"
	"github.com/kilianp07/solarace/core/solar"
)

// SimulationConfig mirrors model.SimulationParameters in file-friendly
// form; StartDate is an ISO date string.
type SimulationConfig struct {
	StartDate              string  `json:"start_date"`
	TotalDistanceKm        float64 `json:"total_distance_km"`
	AverageSpeedKmh        float64 `json:"average_speed_kmh"`
	DrivingHoursPerDay     float64 `json:"driving_hours_per_day"`
	EnergyEfficiencyKmKWh  float64 `json:"energy_efficiency_km_kwh"`
	PanelAreaM2            float64 `json:"panel_area_m2"`
	PanelEfficiency        float64 `json:"panel_efficiency"`
	MPPTEfficiency         float64 `json:"mppt_efficiency"`
	ControlStopDwellHours  float64 `json:"control_stop_dwell_hours"`
	LowBatteryThresholdPct float64 `json:"low_battery_threshold_pct"`
	LowBatteryChargeHours  float64 `json:"low_battery_charge_hours"`
	MaxDays                int     `json:"max_days"`
	VehicleMassKg          float64 `json:"vehicle_mass_kg"`
	DefaultSlopePct        float64 `json:"default_slope_pct"`
	FrontalAreaM2          float64 `json:"frontal_area_m2"`
	DragCoefficient        float64 `json:"drag_coefficient"`
	DayStartHour           float64 `json:"day_start_hour"`

	ProgressEpsilonKm  float64 `json:"progress_epsilon_km"`
	MaxStuckIterations int     `json:"max_stuck_iterations"`
	MaxStuckDays       int     `json:"max_stuck_days"`
}

// SetDefaults fills the knobs a typical race config leaves out.
func (c *SimulationConfig) SetDefaults() {
	if c.AverageSpeedKmh == 0 {
		c.AverageSpeedKmh = 80
	}
	if c.DrivingHoursPerDay == 0 {
		c.DrivingHoursPerDay = 8
	}
	if c.MaxDays == 0 {
		c.MaxDays = 30
	}
	if c.LowBatteryThresholdPct == 0 {
		c.LowBatteryThresholdPct = 25
	}
	if c.LowBatteryChargeHours == 0 {
		c.LowBatteryChargeHours = 1
	}
	if c.ControlStopDwellHours == 0 {
		c.ControlStopDwellHours = 0.5
	}
	if c.DayStartHour == 0 {
		c.DayStartHour = model.DefaultDayStartHour
	}
}

// Validate parses the start date and delegates the numeric checks to the
// model so the CLI reports bad values before a run starts.
func (c SimulationConfig) Validate() error {
	p, err := c.Parameters()
	if err != nil {
		return err
	}
	p.Normalize()
	return p.Validate()
}

// Parameters converts the section into simulation parameters.
func (c SimulationConfig) Parameters() (model.SimulationParameters, error) {
	if c.StartDate == "" {
		return model.SimulationParameters{}, fmt.Errorf("start_date is required")
	}
	start, err := time.Parse("2006-01-02", c.StartDate)
	if err != nil {
		return model.SimulationParameters{}, fmt.Errorf("start_date: %w", err)
	}
	return model.SimulationParameters{
		StartDate:              start,
		TotalDistanceKm:        c.TotalDistanceKm,
		AverageSpeedKmh:        c.AverageSpeedKmh,
		DrivingHoursPerDay:     c.DrivingHoursPerDay,
		EnergyEfficiencyKmKWh:  c.EnergyEfficiencyKmKWh,
		PanelAreaM2:            c.PanelAreaM2,
		PanelEfficiency:        c.PanelEfficiency,
		MPPTEfficiency:         c.MPPTEfficiency,
		ControlStopDwellHours:  c.ControlStopDwellHours,
		LowBatteryThresholdPct: c.LowBatteryThresholdPct,
		LowBatteryChargeHours:  c.LowBatteryChargeHours,
		MaxDays:                c.MaxDays,
		VehicleMassKg:          c.VehicleMassKg,
		DefaultSlopePct:        c.DefaultSlopePct,
		FrontalAreaM2:          c.FrontalAreaM2,
		DragCoefficient:        c.DragCoefficient,
		DayStartHour:           c.DayStartHour,
		ProgressEpsilonKm:      c.ProgressEpsilonKm,
		MaxStuckIterations:     c.MaxStuckIterations,
		MaxStuckDays:           c.MaxStuckDays,
	}, nil
}

// BatteryConfig mirrors model.BatterySpec.
type BatteryConfig struct {
	NominalVoltageV        float64 `json:"nominal_voltage_v"`
	CapacityAh             float64 `json:"capacity_ah"`
	EnergyKWh              float64 `json:"energy_kwh"`
	MaxChargeRateA         float64 `json:"max_charge_rate_a"`
	StandardChargeRateA    float64 `json:"standard_charge_rate_a"`
	MaxDischargeRateA      float64 `json:"max_discharge_rate_a"`
	StandardDischargeRateA float64 `json:"standard_discharge_rate_a"`
}

func (c *BatteryConfig) SetDefaults() {
	if c.StandardChargeRateA == 0 && c.MaxChargeRateA > 0 {
		c.StandardChargeRateA = c.MaxChargeRateA / 2
	}
}

func (c BatteryConfig) Validate() error {
	return c.Spec().Validate()
}

// Spec converts the section into a battery spec.
func (c BatteryConfig) Spec() model.BatterySpec {
	return model.BatterySpec{
		NominalVoltageV:        c.NominalVoltageV,
		CapacityAh:             c.CapacityAh,
		EnergyKWh:              c.EnergyKWh,
		MaxChargeRateA:         c.MaxChargeRateA,
		StandardChargeRateA:    c.StandardChargeRateA,
		MaxDischargeRateA:      c.MaxDischargeRateA,
		StandardDischargeRateA: c.StandardDischargeRateA,
	}
}

// MotorConfig overrides the motor model constants. Zero fields keep the
// calibrated defaults.
type MotorConfig struct {
	NominalMotorPowerKW    float64 `json:"nominal_motor_power_kw"`
	AuxPowerKW             float64 `json:"aux_power_kw"`
	MinConsumptionKWhPerKm float64 `json:"min_consumption_kwh_per_km"`
}

func (c *MotorConfig) SetDefaults() {
	def := motor.DefaultConstants()
	if c.NominalMotorPowerKW == 0 {
		c.NominalMotorPowerKW = def.NominalMotorPowerKW
	}
	if c.AuxPowerKW == 0 {
		c.AuxPowerKW = def.AuxPowerKW
	}
	if c.MinConsumptionKWhPerKm == 0 {
		c.MinConsumptionKWhPerKm = def.MinConsumptionKWhPerKm
	}
}

// Constants converts the section into motor constants.
func (c MotorConfig) Constants() motor.Constants {
	return motor.Constants{
		NominalMotorPowerKW:    c.NominalMotorPowerKW,
		AuxPowerKW:             c.AuxPowerKW,
		MinConsumptionKWhPerKm: c.MinConsumptionKWhPerKm,
	}
}

// SolarConfig tunes the clear-sky production estimate and the fallback
// harvest assumed when the oracle fails.
type SolarConfig struct {
	PeakIrradianceKWm2 float64 `json:"peak_irradiance_kw_m2"`
	Derating           float64 `json:"derating"`
	InverterLoss       float64 `json:"inverter_loss"`
	DaylightHours      float64 `json:"daylight_hours"`
	FallbackKWhPerHour float64 `json:"fallback_kwh_per_hour"`
}

func (c *SolarConfig) SetDefaults() {
	if c.FallbackKWhPerHour == 0 {
		c.FallbackKWhPerHour = solar.DefaultFallbackKWhPerHour
	}
}

// Constants converts the section into estimator constants; zero fields
// fall back to the calibrated defaults inside the estimator.
func (c SolarConfig) Constants() solar.Constants {
	return solar.Constants{
		PeakIrradianceKWm2: c.PeakIrradianceKWm2,
		Derating:           c.Derating,
		InverterLoss:       c.InverterLoss,
		DaylightHours:      c.DaylightHours,
	}
}
