// Package telemetry publishes simulation day progress over MQTT so a
// race-support dashboard can follow long runs live. Publishing is best
// effort; a failed publish never affects the simulation result.
package telemetry

import (
	"fmt"
	"sync"
	"time"

	"github.com/kilianp07/solarace/core/sim"
)

// Publisher pushes per-day progress updates for a run.
type Publisher interface {
	PublishDay(ev sim.DayCompleted) error
	Close()
}

// DayMessage is the wire payload for one completed day.
type DayMessage struct {
	RunID       string  `json:"run_id"`
	DayIndex    int     `json:"day_index"`
	Date        string  `json:"date"`
	DistanceKm  float64 `json:"distance_km"`
	EndKm       float64 `json:"end_km"`
	RemainingKm float64 `json:"remaining_km"`
	BatteryPct  float64 `json:"battery_pct"`
	ProducedKWh float64 `json:"produced_kwh"`
	ConsumedKWh float64 `json:"consumed_kwh"`
	ChargingHrs float64 `json:"charging_hours"`
	PublishedAt int64   `json:"published_at"`
}

func dayMessage(ev sim.DayCompleted) DayMessage {
	return DayMessage{
		RunID:       ev.RunID,
		DayIndex:    ev.Day.DayIndex,
		Date:        ev.Day.Date.Format("2006-01-02"),
		DistanceKm:  ev.Day.TotalDistanceKm,
		EndKm:       ev.Day.EndKm,
		RemainingKm: ev.RemainingKm,
		BatteryPct:  ev.Day.EndBatteryPct,
		ProducedKWh: ev.Day.EnergyProductionKWh,
		ConsumedKWh: ev.Day.EnergyConsumptionKWh,
		ChargingHrs: ev.Day.TotalChargingHours,
		PublishedAt: time.Now().UnixMilli(),
	}
}

// DayTopic returns the per-run topic progress updates are published on.
func DayTopic(runID string) string {
	return fmt.Sprintf("solarace/run/%s/day", runID)
}

// MockPublisher records published days for tests.
type MockPublisher struct {
	mu       sync.Mutex
	messages []DayMessage
	Err      error
	closed   bool
}

// NewMockPublisher creates an empty MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

// PublishDay records the message or returns the configured error.
func (m *MockPublisher) PublishDay(ev sim.DayCompleted) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.messages = append(m.messages, dayMessage(ev))
	return nil
}

// Messages returns a copy of everything published so far.
func (m *MockPublisher) Messages() []DayMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]DayMessage, len(m.messages))
	copy(out, m.messages)
	return out
}

// Close marks the publisher closed.
func (m *MockPublisher) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
}

// Closed reports whether Close was called.
func (m *MockPublisher) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
