package solar

import (
	"context"
	"time"

	"github.com/kilianp07/solarace/core/logger"
)

// DefaultFallbackKWhPerHour is the deterministic harvest assumed when
// the wrapped oracle fails.
const DefaultFallbackKWhPerHour = 0.25

// FallbackOracle wraps an Oracle and recovers failures with a constant
// per-hour estimate. Failures are logged but never propagate; the
// simulation must always advance state.
type FallbackOracle struct {
	inner         Oracle
	kwhPerHour    float64
	log           logger.Logger
	recoveredErrs int
}

// NewFallbackOracle wraps inner. A non-positive kwhPerHour selects the
// default constant.
func NewFallbackOracle(inner Oracle, kwhPerHour float64, log logger.Logger) *FallbackOracle {
	if kwhPerHour <= 0 {
		kwhPerHour = DefaultFallbackKWhPerHour
	}
	return &FallbackOracle{inner: inner, kwhPerHour: kwhPerHour, log: log}
}

// EstimateProduction implements Oracle and never returns an error except
// for context cancellation, which must stop the run, not be absorbed.
func (f *FallbackOracle) EstimateProduction(ctx context.Context, date time.Time, dayFraction float64, panel PanelConfig) (float64, error) {
	v, err := f.inner.EstimateProduction(ctx, date, dayFraction, panel)
	if err == nil {
		return v, nil
	}
	if ctx.Err() != nil {
		return 0, ctx.Err()
	}
	f.recoveredErrs++
	fallback := f.kwhPerHour * dayFraction * 24
	if fallback < 0 {
		fallback = 0
	}
	f.log.Warnf("solar oracle failed (%v), using fallback %.3f kWh for %s", err, fallback, date.Format("2006-01-02"))
	return fallback, nil
}

// Recovered returns how many oracle failures were absorbed.
func (f *FallbackOracle) Recovered() int { return f.recoveredErrs }
