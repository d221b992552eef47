package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/kilianp07/solarace/core/model"
)

func TestSQLiteStoreAddAndRecent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() { _ = store.Close() }()

	first := &model.RouteItinerary{
		RunID:                     "run-a",
		Terminal:                  model.DestinationReached,
		Days:                      []model.DailyItinerary{{DayIndex: 1}, {DayIndex: 2}},
		TotalDistanceKm:           480,
		TotalEnergyProductionKWh:  7,
		TotalEnergyConsumptionKWh: 24,
		TotalChargingHours:        2,
		AverageBatteryPct:         55,
		EstimatedArrivalDate:      "2026-10-19",
	}
	second := &model.RouteItinerary{
		RunID:           "run-b",
		Terminal:        model.MaxDaysReached,
		Days:            []model.DailyItinerary{{DayIndex: 1}},
		TotalDistanceKm: 240,
	}

	if err := store.Add(first, time.Unix(1000, 0)); err != nil {
		t.Fatalf("add first: %v", err)
	}
	if err := store.Add(second, time.Unix(2000, 0)); err != nil {
		t.Fatalf("add second: %v", err)
	}

	entries, err := store.Recent(10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].RunID != "run-b" {
		t.Fatalf("expected newest first, got %s", entries[0].RunID)
	}
	got := entries[1]
	if got.Terminal != model.DestinationReached || got.Days != 2 {
		t.Fatalf("unexpected entry %+v", got)
	}
	if got.TotalDistanceKm != 480 || got.ArrivalDate != "2026-10-19" {
		t.Fatalf("unexpected entry %+v", got)
	}
}

func TestSQLiteStoreReplaceRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() { _ = store.Close() }()

	run := &model.RouteItinerary{RunID: "run-a", Terminal: model.NoProgress}
	if err := store.Add(run, time.Unix(1000, 0)); err != nil {
		t.Fatalf("add: %v", err)
	}
	run.Terminal = model.DestinationReached
	run.TotalDistanceKm = 100
	if err := store.Add(run, time.Unix(1500, 0)); err != nil {
		t.Fatalf("re-add: %v", err)
	}

	entries, err := store.Recent(10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Terminal != model.DestinationReached || entries[0].TotalDistanceKm != 100 {
		t.Fatalf("replace did not apply: %+v", entries[0])
	}
}

func TestSQLiteStoreRecentLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() { _ = store.Close() }()

	for i := 0; i < 5; i++ {
		run := &model.RouteItinerary{RunID: string(rune('a' + i)), Terminal: model.DestinationReached}
		if err := store.Add(run, time.Unix(int64(1000+i), 0)); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}
	entries, err := store.Recent(3)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
}
