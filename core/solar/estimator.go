package solar

import (
	"context"
	"math"
	"time"
)

// Constants groups the empirical derating knobs of the clear-sky model.
// The values are field calibration, not validated physics; they are
// overridable through configuration.
type Constants struct {
	// PeakIrradianceKWm2 is the assumed clear-sky irradiance at noon.
	PeakIrradianceKWm2 float64
	// Derating scales the ideal harvest for dust, temperature and angle.
	Derating float64
	// InverterLoss is the fraction lost between array and pack.
	InverterLoss float64
	// DaylightHours bounds the productive window within a day.
	DaylightHours float64
}

// DefaultConstants returns the calibrated defaults.
func DefaultConstants() Constants {
	return Constants{
		PeakIrradianceKWm2: 1.0,
		Derating:           0.7,
		InverterLoss:       0.10,
		DaylightHours:      10,
	}
}

// ClearSkyEstimator is a deterministic Oracle implementation modelling a
// cloudless sky with a seasonal intensity swing. It stands in for the
// live weather-backed oracle and anchors tests and fallbacks.
type ClearSkyEstimator struct {
	Constants Constants
}

// NewClearSkyEstimator returns an estimator with the given constants,
// filling zero fields from the defaults.
func NewClearSkyEstimator(c Constants) *ClearSkyEstimator {
	def := DefaultConstants()
	if c.PeakIrradianceKWm2 <= 0 {
		c.PeakIrradianceKWm2 = def.PeakIrradianceKWm2
	}
	if c.Derating <= 0 {
		c.Derating = def.Derating
	}
	if c.InverterLoss < 0 || c.InverterLoss >= 1 {
		c.InverterLoss = def.InverterLoss
	}
	if c.DaylightHours <= 0 {
		c.DaylightHours = def.DaylightHours
	}
	return &ClearSkyEstimator{Constants: c}
}

// EstimateProduction implements Oracle. The harvest scales linearly with
// the interval length, capped at the daylight window, and swings with the
// day of year around a mid-January peak.
func (e *ClearSkyEstimator) EstimateProduction(ctx context.Context, date time.Time, dayFraction float64, panel PanelConfig) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if dayFraction <= 0 {
		return 0, nil
	}
	hours := dayFraction * 24
	if hours > e.Constants.DaylightHours {
		hours = e.Constants.DaylightHours
	}

	doy := float64(date.YearDay())
	seasonal := 0.8 + 0.2*math.Cos(2*math.Pi*(doy-15)/365)

	kw := e.Constants.PeakIrradianceKWm2 * panel.AreaM2 * panel.Efficiency * panel.MPPT
	energy := kw * hours * seasonal * e.Constants.Derating * (1 - e.Constants.InverterLoss)
	if energy < 0 {
		energy = 0
	}
	return energy, nil
}
