package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kilianp07/solarace/config"
	"github.com/kilianp07/solarace/core/model"
	"github.com/kilianp07/solarace/infra/history"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{
		Simulation: config.SimulationConfig{
			StartDate:             "2026-10-18",
			TotalDistanceKm:       60,
			EnergyEfficiencyKmKWh: 20,
			PanelAreaM2:           4,
			PanelEfficiency:       0.22,
			MPPTEfficiency:        0.97,
			VehicleMassKg:         300,
			FrontalAreaM2:         1,
			DragCoefficient:       0.12,
		},
		Battery: config.BatteryConfig{
			CapacityAh:          52,
			EnergyKWh:           5,
			StandardChargeRateA: 13,
		},
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate config: %v", err)
	}
	return cfg
}

// A run that finishes immediately after New must still reach the history
// store: the event consumer is subscribed before New returns.
func TestServicePersistsFinishedRun(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()
	cfg.History = config.HistoryConfig{Enabled: true, Path: filepath.Join(dir, "runs.db")}

	svc, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	itin, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if itin.Terminal != model.DestinationReached {
		t.Fatalf("terminal = %s, want %s", itin.Terminal, model.DestinationReached)
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	store, err := history.NewSQLiteStore(cfg.History.Path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer store.Close()
	entries, err := store.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d stored runs, want 1", len(entries))
	}
	if entries[0].RunID != itin.RunID {
		t.Fatalf("stored run %s, want %s", entries[0].RunID, itin.RunID)
	}
}

func TestServiceWritesOutputs(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()
	cfg.Output = config.OutputConfig{
		JSONPath: filepath.Join(dir, "itinerary.json"),
		CSVPath:  filepath.Join(dir, "itinerary.csv"),
	}

	svc, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer svc.Close()

	if _, err := svc.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, path := range []string{cfg.Output.JSONPath, cfg.Output.CSVPath} {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat %s: %v", path, err)
		}
		if info.Size() == 0 {
			t.Fatalf("%s is empty", path)
		}
	}
}
