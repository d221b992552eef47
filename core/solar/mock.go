package solar

import (
	"context"
	"sync"
	"time"
)

// MockOracle returns deterministic estimates for tests. A fixed
// KWhPerHour rate is scaled by the interval length; Err, when set, is
// returned instead.
type MockOracle struct {
	KWhPerHour float64
	Err        error

	mu    sync.Mutex
	calls int
}

// EstimateProduction implements Oracle.
func (m *MockOracle) EstimateProduction(ctx context.Context, date time.Time, dayFraction float64, panel PanelConfig) (float64, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	if dayFraction < 0 {
		dayFraction = 0
	}
	return m.KWhPerHour * dayFraction * 24, nil
}

// Calls returns how many times the oracle was queried.
func (m *MockOracle) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
