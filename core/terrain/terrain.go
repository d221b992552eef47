// Package terrain resolves local slope from static elevation samples
// along the route. Samples are loaded once per run and read-only for the
// run's duration.
package terrain

import (
	"sort"

	"gonum.org/v1/gonum/interp"

	"github.com/kilianp07/solarace/core/model"
)

// slopeProbeKm is the half-window used to differentiate the elevation
// profile when estimating slope at a point.
const slopeProbeKm = 0.25

// Table answers slope queries over a fitted elevation profile.
type Table struct {
	samples []model.TerrainPoint
	profile interp.PiecewiseLinear
	minKm   float64
	maxKm   float64
	fitted  bool
}

// NewTable builds a Table from the given samples. The slice is copied,
// sorted by distance and deduplicated before fitting; fewer than two
// distinct samples leave the table empty and every query returns the
// caller's default.
func NewTable(samples []model.TerrainPoint) *Table {
	t := &Table{}
	if len(samples) == 0 {
		return t
	}
	cp := make([]model.TerrainPoint, len(samples))
	copy(cp, samples)
	sort.Slice(cp, func(i, j int) bool { return cp[i].DistanceKm < cp[j].DistanceKm })

	dedup := cp[:1]
	for _, s := range cp[1:] {
		if s.DistanceKm > dedup[len(dedup)-1].DistanceKm {
			dedup = append(dedup, s)
		}
	}
	t.samples = dedup
	if len(dedup) < 2 {
		return t
	}

	xs := make([]float64, len(dedup))
	ys := make([]float64, len(dedup))
	for i, s := range dedup {
		xs[i] = s.DistanceKm
		ys[i] = s.ElevationM
	}
	if err := t.profile.Fit(xs, ys); err != nil {
		return t
	}
	t.minKm = xs[0]
	t.maxKm = xs[len(xs)-1]
	t.fitted = true
	return t
}

// Len returns the number of distinct samples retained.
func (t *Table) Len() int { return len(t.samples) }

// ElevationAt returns the interpolated elevation at the given distance,
// clamped to the sampled range. ok is false when no profile is fitted.
func (t *Table) ElevationAt(distanceKm float64) (elevationM float64, ok bool) {
	if !t.fitted {
		return 0, false
	}
	return t.profile.Predict(t.clampKm(distanceKm)), true
}

// SlopeAt returns the local slope in percent at the given distance,
// estimated by differentiating the elevation profile over a short
// window. defaultPct is returned when terrain data is absent.
func (t *Table) SlopeAt(distanceKm, defaultPct float64) float64 {
	if !t.fitted {
		return defaultPct
	}
	lo := t.clampKm(distanceKm - slopeProbeKm)
	hi := t.clampKm(distanceKm + slopeProbeKm)
	if hi <= lo {
		return defaultPct
	}
	rise := t.profile.Predict(hi) - t.profile.Predict(lo)
	runM := (hi - lo) * 1000
	return rise / runM * 100
}

func (t *Table) clampKm(km float64) float64 {
	if km < t.minKm {
		return t.minKm
	}
	if km > t.maxKm {
		return t.maxKm
	}
	return km
}
