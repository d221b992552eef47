package model

import "time"

// TerminalState describes how a simulation run ended. Guard-triggered
// termination is a result variant, not an error: callers distinguish a
// completed trip, a capped trip and an infeasible trip from this value.
type TerminalState string

const (
	DestinationReached TerminalState = "destination_reached"
	MaxDaysReached     TerminalState = "max_days_reached"
	NoProgress         TerminalState = "no_progress"
	Cancelled          TerminalState = "cancelled"
)

// DailyItinerary is one simulated race day. Segments are stored in
// chronological order.
type DailyItinerary struct {
	DayIndex int            `json:"day_index"`
	Date     time.Time      `json:"date"`
	Segments []RouteSegment `json:"segments"`

	StartKm         float64 `json:"start_km"`
	EndKm           float64 `json:"end_km"`
	TotalDistanceKm float64 `json:"total_distance_km"`

	EnergyProductionKWh  float64 `json:"energy_production_kwh"`
	EnergyConsumptionKWh float64 `json:"energy_consumption_kwh"`

	StartBatteryPct float64 `json:"start_battery_pct"`
	EndBatteryPct   float64 `json:"end_battery_pct"`

	TotalChargingHours float64 `json:"total_charging_hours"`

	// ReachedMaxDays is set only on the terminal day when the day-count
	// cap cut the run short.
	ReachedMaxDays bool `json:"reached_max_days,omitempty"`
}

// RouteItinerary is the whole-trip result of one simulation run.
type RouteItinerary struct {
	RunID    string           `json:"run_id"`
	Terminal TerminalState    `json:"terminal_state"`
	Days     []DailyItinerary `json:"days"`

	TotalDistanceKm           float64 `json:"total_distance_km"`
	TotalEnergyProductionKWh  float64 `json:"total_energy_production_kwh"`
	TotalEnergyConsumptionKWh float64 `json:"total_energy_consumption_kwh"`
	TotalChargingHours        float64 `json:"total_charging_hours"`
	AverageBatteryPct         float64 `json:"average_battery_pct"`

	EstimatedArrivalDate string `json:"estimated_arrival_date,omitempty"`
	EstimatedArrivalTime string `json:"estimated_arrival_time,omitempty"`
}
