// Package solar provides the energy-production oracle consumed by the
// simulation. The oracle abstracts weather and solar-position data; the
// simulation only ever sees kWh harvested over a fraction of a day,
// already netted against panel area and converter efficiencies.
package solar

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable indicates the oracle could not produce an estimate,
// typically because reference data is missing. Callers recover with a
// deterministic fallback; this error never fails a simulation run.
var ErrUnavailable = errors.New("solar estimate unavailable")

// PanelConfig describes the array feeding the pack.
type PanelConfig struct {
	AreaM2     float64
	Efficiency float64 // [0,1]
	MPPT       float64 // [0,1]
}

// Oracle estimates solar energy harvested at the vehicle's location.
// dayFraction is the length of the interval as a fraction of 24 hours.
type Oracle interface {
	EstimateProduction(ctx context.Context, date time.Time, dayFraction float64, panel PanelConfig) (float64, error)
}

// OracleFunc adapts a function to the Oracle interface.
type OracleFunc func(ctx context.Context, date time.Time, dayFraction float64, panel PanelConfig) (float64, error)

// EstimateProduction implements Oracle.
func (f OracleFunc) EstimateProduction(ctx context.Context, date time.Time, dayFraction float64, panel PanelConfig) (float64, error) {
	return f(ctx, date, dayFraction, panel)
}
