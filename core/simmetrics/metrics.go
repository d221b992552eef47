// Package simmetrics defines the observability contract for simulation
// runs. Sinks receive one record per simulated day and one per finished
// run; implementations live under infra/metrics.
package simmetrics

import (
	"time"

	"github.com/kilianp07/solarace/core/model"
)

// DayRecord summarizes one simulated day for observability purposes.
type DayRecord struct {
	RunID             string
	DayIndex          int
	Date              time.Time
	DistanceKm        float64
	EnergyProducedKWh float64
	EnergyConsumedKWh float64
	ChargingHours     float64
	EndBatteryPct     float64
	ChargeStops       int
	Segments          int
}

// RunRecord summarizes a finished run.
type RunRecord struct {
	RunID                     string
	Terminal                  model.TerminalState
	Days                      int
	TotalDistanceKm           float64
	TotalEnergyProductionKWh  float64
	TotalEnergyConsumptionKWh float64
	TotalChargingHours        float64
	AverageBatteryPct         float64
	StartedAt                 time.Time
	FinishedAt                time.Time
}

// Sink records simulation progress. Recording failures must never fail a
// run; callers log and continue.
type Sink interface {
	RecordDay(rec DayRecord) error
	RecordRun(rec RunRecord) error
}

// NopSink discards all records.
type NopSink struct{}

// RecordDay implements Sink.
func (NopSink) RecordDay(DayRecord) error { return nil }

// RecordRun implements Sink.
func (NopSink) RecordRun(RunRecord) error { return nil }
