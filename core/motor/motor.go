// Package motor computes the mechanical and electrical energy needed to
// move the vehicle. All functions are pure; callers must treat a NaN or
// negative result from EnergyConsumedKWh as a computation fault and fall
// back to FallbackEnergyKWh.
package motor

import "math"

const (
	airDensity  = 1.225 // kg/m3 at sea level
	gravity     = 9.81  // m/s2
	rollingCoef = 0.01
)

// Constants groups the empirical tuning knobs of the consumption model.
// The values have no documented physical derivation; they are carried
// from field calibration and are overridable through configuration.
type Constants struct {
	// NominalMotorPowerKW anchors the load ratio of the efficiency curve.
	NominalMotorPowerKW float64
	// AuxPowerKW is the fixed auxiliary-system draw while driving.
	AuxPowerKW float64
	// MinConsumptionKWhPerKm floors the energy per driven kilometre.
	MinConsumptionKWhPerKm float64
}

// DefaultConstants returns the calibrated defaults.
func DefaultConstants() Constants {
	return Constants{
		NominalMotorPowerKW:    5.0,
		AuxPowerKW:             0.3,
		MinConsumptionKWhPerKm: 0.05,
	}
}

// Model evaluates the resistance and consumption equations for a fixed
// set of constants.
type Model struct {
	Constants Constants
}

// New returns a Model with the given constants, filling zero fields from
// the defaults.
func New(c Constants) Model {
	def := DefaultConstants()
	if c.NominalMotorPowerKW <= 0 {
		c.NominalMotorPowerKW = def.NominalMotorPowerKW
	}
	if c.AuxPowerKW <= 0 {
		c.AuxPowerKW = def.AuxPowerKW
	}
	if c.MinConsumptionKWhPerKm <= 0 {
		c.MinConsumptionKWhPerKm = def.MinConsumptionKWhPerKm
	}
	return Model{Constants: c}
}

// DrivingResistanceN returns the total resistance force in newtons for
// the given speed, mass, aero profile and slope.
func (m Model) DrivingResistanceN(speedKmh, massKg, frontalAreaM2, dragCoeff, slopePct float64) float64 {
	v := speedKmh / 3.6
	air := 0.5 * airDensity * dragCoeff * frontalAreaM2 * v * v
	rolling := rollingCoef * massKg * gravity
	grade := massKg * gravity * math.Sin(math.Atan(slopePct/100))
	return air + rolling + grade
}

// RequiredPowerKW converts a resistance force at a speed into power.
func (m Model) RequiredPowerKW(resistanceN, speedKmh float64) float64 {
	return resistanceN * (speedKmh / 3.6) / 1000
}

// Efficiency returns the motor efficiency for the given load ratio.
// The curve ramps 0.80 to 0.95 below 30% load, stays flat at 0.95 up to
// 80% and tapers to 0.90 at full load. The ratio is clamped to [0,1].
func (m Model) Efficiency(loadRatio float64) float64 {
	if loadRatio < 0 {
		loadRatio = 0
	}
	if loadRatio > 1 {
		loadRatio = 1
	}
	switch {
	case loadRatio < 0.3:
		return 0.80 + (0.95-0.80)*(loadRatio/0.3)
	case loadRatio <= 0.8:
		return 0.95
	default:
		return 0.95 - (0.95-0.90)*((loadRatio-0.8)/0.2)
	}
}

// EnergyConsumedKWh returns the battery energy drawn to drive distanceKm
// at speedKmh, including auxiliary draw, floored at the minimum
// consumption per kilometre. Zero for non-positive distances.
func (m Model) EnergyConsumedKWh(distanceKm, speedKmh, massKg, frontalAreaM2, dragCoeff, slopePct float64) float64 {
	if distanceKm <= 0 {
		return 0
	}
	resistance := m.DrivingResistanceN(speedKmh, massKg, frontalAreaM2, dragCoeff, slopePct)
	power := m.RequiredPowerKW(resistance, speedKmh)
	if power < 0 {
		// Steep descents can make the grade term dominate; the pack does
		// not regenerate in this model.
		power = 0
	}
	eff := m.Efficiency(power / m.Constants.NominalMotorPowerKW)
	hours := distanceKm / speedKmh
	energy := power/eff*hours + m.Constants.AuxPowerKW*hours

	if floor := distanceKm * m.Constants.MinConsumptionKWhPerKm; energy < floor {
		energy = floor
	}
	return energy
}

// FallbackEnergyKWh is the simple estimate callers substitute when
// EnergyConsumedKWh produces NaN or a negative value.
func FallbackEnergyKWh(distanceKm, efficiencyKmPerKWh float64) float64 {
	if distanceKm <= 0 || efficiencyKmPerKWh <= 0 {
		return 0
	}
	return distanceKm / efficiencyKmPerKWh
}

// Faulty reports whether an energy result must be discarded.
func Faulty(energyKWh float64) bool {
	return math.IsNaN(energyKWh) || energyKWh < 0
}
