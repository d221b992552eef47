// Package history persists finished simulation runs so parameter sweeps
// can be compared after the fact.
package history

import (
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kilianp07/solarace/core/model"
)

// Entry is one persisted run summary.
type Entry struct {
	RunID             string
	Terminal          model.TerminalState
	Days              int
	TotalDistanceKm   float64
	TotalProducedKWh  float64
	TotalConsumedKWh  float64
	ChargingHours     float64
	AverageBatteryPct float64
	ArrivalDate       string
	FinishedAt        time.Time
}

// SQLiteStore persists run summaries in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS runs (
        run_id TEXT PRIMARY KEY,
        terminal TEXT,
        days INTEGER,
        distance_km REAL,
        produced_kwh REAL,
        consumed_kwh REAL,
        charging_hours REAL,
        avg_battery_pct REAL,
        arrival_date TEXT,
        finished_at INTEGER
    );`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Add inserts a run summary. Re-adding the same run replaces it.
func (s *SQLiteStore) Add(it *model.RouteItinerary, finishedAt time.Time) error {
	_, err := s.db.Exec(`INSERT INTO runs (run_id, terminal, days, distance_km,
        produced_kwh, consumed_kwh, charging_hours, avg_battery_pct, arrival_date, finished_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(run_id) DO UPDATE SET
            terminal = excluded.terminal,
            days = excluded.days,
            distance_km = excluded.distance_km,
            produced_kwh = excluded.produced_kwh,
            consumed_kwh = excluded.consumed_kwh,
            charging_hours = excluded.charging_hours,
            avg_battery_pct = excluded.avg_battery_pct,
            arrival_date = excluded.arrival_date,
            finished_at = excluded.finished_at`,
		it.RunID, string(it.Terminal), len(it.Days), it.TotalDistanceKm,
		it.TotalEnergyProductionKWh, it.TotalEnergyConsumptionKWh,
		it.TotalChargingHours, it.AverageBatteryPct, it.EstimatedArrivalDate,
		finishedAt.Unix())
	return err
}

// Recent returns the most recently finished runs, newest first.
func (s *SQLiteStore) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(`SELECT run_id, terminal, days, distance_km,
        produced_kwh, consumed_kwh, charging_hours, avg_battery_pct, arrival_date, finished_at
        FROM runs ORDER BY finished_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []Entry
	for rows.Next() {
		var e Entry
		var terminal string
		var ts int64
		if err := rows.Scan(&e.RunID, &terminal, &e.Days, &e.TotalDistanceKm,
			&e.TotalProducedKWh, &e.TotalConsumedKWh, &e.ChargingHours,
			&e.AverageBatteryPct, &e.ArrivalDate, &ts); err != nil {
			return nil, err
		}
		e.Terminal = model.TerminalState(terminal)
		e.FinishedAt = time.Unix(ts, 0).UTC()
		res = append(res, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
