// Package battery provides the pure state-of-charge arithmetic for the
// simulation. All functions are total and deterministic; invalid inputs
// (negative hours and the like) are the caller's responsibility.
package battery

import "github.com/kilianp07/solarace/core/model"

// Model evaluates SoC transitions against a fixed pack specification.
type Model struct {
	Spec model.BatterySpec
}

// New returns a Model for the given pack.
func New(spec model.BatterySpec) Model {
	return Model{Spec: spec}
}

// AvailableEnergyKWh returns the energy stored at the given SoC percent.
func (m Model) AvailableEnergyKWh(socPct float64) float64 {
	return clamp(socPct) / 100 * m.Spec.EnergyKWh
}

// RangeKm returns the distance drivable on the current charge at the
// given efficiency in km per kWh.
func (m Model) RangeKm(socPct, efficiencyKmPerKWh float64) float64 {
	return m.AvailableEnergyKWh(socPct) * efficiencyKmPerKWh
}

// RangeAboveKm returns the distance drivable before SoC falls to
// floorPct. Zero when the pack is already at or below the floor.
func (m Model) RangeAboveKm(socPct, floorPct, efficiencyKmPerKWh float64) float64 {
	usable := clamp(socPct) - clamp(floorPct)
	if usable <= 0 {
		return 0
	}
	return usable / 100 * m.Spec.EnergyKWh * efficiencyKmPerKWh
}

// NewSoC applies an energy balance to the pack and returns the new SoC.
// The result is always clamped to [0,100]; the pack can neither
// overcharge nor report negative charge.
func (m Model) NewSoC(socPct, producedKWh, consumedKWh float64) float64 {
	delta := (producedKWh - consumedKWh) / m.Spec.EnergyKWh * 100
	return clamp(socPct + delta)
}

// ChargingStopSoC models a constant-current charging stop at the
// standard rate and returns the SoC after the given hours. Only the CC
// phase is modelled; the CV tail does not gate the simulation loop.
func (m Model) ChargingStopSoC(socPct, hours float64) float64 {
	gained := m.Spec.StandardChargeRateA * hours / m.Spec.CapacityAh * 100
	return clamp(socPct + gained)
}

// FullChargeDuration estimates hours to reach 100% from the given SoC
// using a CC phase up to the knee and a slower CV tail above it. Display
// use only.
func (m Model) FullChargeDuration(socPct float64) float64 {
	const ccKneePct = 80.0
	soc := clamp(socPct)
	hoursPerPct := m.Spec.CapacityAh / m.Spec.StandardChargeRateA / 100

	var hours float64
	if soc < ccKneePct {
		hours += (ccKneePct - soc) * hoursPerPct
		soc = ccKneePct
	}
	// CV tail charges at roughly half the standard rate on average.
	hours += (100 - soc) * hoursPerPct * 2
	return hours
}

func clamp(pct float64) float64 {
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
