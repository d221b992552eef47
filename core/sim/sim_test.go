package sim

import (
	"context"
	"testing"
	"time"

	"github.com/kilianp07/solarace/core/model"
	"github.com/kilianp07/solarace/core/motor"
	"github.com/kilianp07/solarace/core/simmetrics"
	"github.com/kilianp07/solarace/core/solar"
	"github.com/kilianp07/solarace/infra/logger"
	"github.com/kilianp07/solarace/internal/eventbus"
)

func testParams() model.SimulationParameters {
	return model.SimulationParameters{
		StartDate:              time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC),
		TotalDistanceKm:        300,
		AverageSpeedKmh:        80,
		DrivingHoursPerDay:     8,
		EnergyEfficiencyKmKWh:  20,
		PanelAreaM2:            4,
		PanelEfficiency:        0.22,
		MPPTEfficiency:         0.97,
		ControlStopDwellHours:  0.5,
		LowBatteryThresholdPct: 25,
		LowBatteryChargeHours:  1,
		MaxDays:                10,
		VehicleMassKg:          300,
		FrontalAreaM2:          1.0,
		DragCoefficient:        0.12,
	}
}

func testSpec() model.BatterySpec {
	return model.BatterySpec{
		NominalVoltageV:     96,
		CapacityAh:          52,
		EnergyKWh:           5.0,
		StandardChargeRateA: 13,
	}
}

func newSimulator(t *testing.T, oracle solar.Oracle) *Simulator {
	t.Helper()
	s, err := New(Options{
		Battery: testSpec(),
		Motor:   motor.Constants{},
		Oracle:  oracle,
		Logger:  logger.NopLogger{},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func run(t *testing.T, s *Simulator, params model.SimulationParameters) *model.RouteItinerary {
	t.Helper()
	done := make(chan *model.RouteItinerary, 1)
	go func() {
		itin, err := s.CreateRouteItinerary(context.Background(), params)
		if err != nil {
			t.Errorf("CreateRouteItinerary: %v", err)
			done <- nil
			return
		}
		done <- itin
	}()
	select {
	case itin := <-done:
		if itin == nil {
			t.FailNow()
		}
		return itin
	case <-time.After(10 * time.Second):
		t.Fatal("simulation hung")
		return nil
	}
}

func TestZeroDistanceImmediateArrival(t *testing.T) {
	s := newSimulator(t, &solar.MockOracle{KWhPerHour: 1})
	params := testParams()
	params.TotalDistanceKm = 0

	itin := run(t, s, params)
	if itin.Terminal != model.DestinationReached {
		t.Fatalf("expected destination reached, got %s", itin.Terminal)
	}
	if len(itin.Days) != 0 {
		t.Fatalf("expected zero days, got %d", len(itin.Days))
	}
	if itin.TotalDistanceKm != 0 {
		t.Fatalf("expected zero distance, got %v", itin.TotalDistanceKm)
	}
}

func TestSingleDayArrival(t *testing.T) {
	s := newSimulator(t, &solar.MockOracle{KWhPerHour: 1})
	params := testParams()
	params.TotalDistanceKm = 60

	itin := run(t, s, params)
	if itin.Terminal != model.DestinationReached {
		t.Fatalf("expected destination reached, got %s", itin.Terminal)
	}
	if len(itin.Days) != 1 {
		t.Fatalf("expected one day, got %d", len(itin.Days))
	}
	if itin.TotalDistanceKm != 60 {
		t.Fatalf("expected 60 km, got %v", itin.TotalDistanceKm)
	}
	if itin.EstimatedArrivalDate != "2026-10-18" {
		t.Fatalf("unexpected arrival date %q", itin.EstimatedArrivalDate)
	}
	if itin.EstimatedArrivalTime == "" {
		t.Fatal("missing arrival time")
	}
	if itin.RunID == "" {
		t.Fatal("missing run id")
	}
}

func TestMultiDayConservationAndDates(t *testing.T) {
	s := newSimulator(t, &solar.MockOracle{KWhPerHour: 2})
	params := testParams()
	params.TotalDistanceKm = 900

	itin := run(t, s, params)
	if itin.Terminal != model.DestinationReached && itin.Terminal != model.MaxDaysReached {
		t.Fatalf("unexpected terminal %s", itin.Terminal)
	}
	var sum float64
	var prevDate time.Time
	for i, d := range itin.Days {
		sum += d.TotalDistanceKm
		if d.TotalDistanceKm <= 0 {
			t.Fatalf("day %d kept with zero distance", d.DayIndex)
		}
		if i > 0 && !d.Date.After(prevDate) {
			t.Fatalf("dates not strictly increasing: %v then %v", prevDate, d.Date)
		}
		prevDate = d.Date
		if d.StartBatteryPct != d.Segments[0].BatteryBefore {
			t.Fatalf("day %d start battery mismatch", d.DayIndex)
		}
		if d.EndBatteryPct != d.Segments[len(d.Segments)-1].BatteryAfter {
			t.Fatalf("day %d end battery mismatch", d.DayIndex)
		}
	}
	if sum != itin.TotalDistanceKm {
		t.Fatalf("conservation violated: days sum %v, total %v", sum, itin.TotalDistanceKm)
	}
}

func TestMaxDaysCapsRun(t *testing.T) {
	s := newSimulator(t, &solar.MockOracle{KWhPerHour: 0})
	params := testParams()
	params.TotalDistanceKm = 3022
	params.MaxDays = 1

	itin := run(t, s, params)
	if itin.Terminal != model.MaxDaysReached {
		t.Fatalf("expected max days reached, got %s", itin.Terminal)
	}
	if len(itin.Days) != 1 {
		t.Fatalf("expected exactly one day, got %d", len(itin.Days))
	}
	if !itin.Days[0].ReachedMaxDays {
		t.Fatal("terminal day not flagged")
	}
	if itin.TotalDistanceKm >= params.TotalDistanceKm {
		t.Fatalf("capped run covered the whole route: %v", itin.TotalDistanceKm)
	}
}

func TestNoSunTerminates(t *testing.T) {
	s := newSimulator(t, &solar.MockOracle{KWhPerHour: 0})
	params := testParams()
	params.TotalDistanceKm = 3022
	params.MaxDays = 5

	itin := run(t, s, params)
	if itin.Terminal == model.DestinationReached {
		t.Fatalf("3022 km in 5 sunless days should be infeasible, got %s", itin.Terminal)
	}
	if itin.Terminal != model.MaxDaysReached && itin.Terminal != model.NoProgress {
		t.Fatalf("unexpected terminal %s", itin.Terminal)
	}
	if len(itin.Days) > params.MaxDays {
		t.Fatalf("too many days: %d", len(itin.Days))
	}
}

func TestInfeasiblePlanAbortsAsNoProgress(t *testing.T) {
	s := newSimulator(t, &solar.MockOracle{KWhPerHour: 0})
	params := testParams()
	params.LowBatteryThresholdPct = 100
	params.LowBatteryChargeHours = 0

	itin := run(t, s, params)
	if itin.Terminal != model.NoProgress {
		t.Fatalf("expected no-progress terminal, got %s", itin.Terminal)
	}
	if len(itin.Days) != 0 {
		t.Fatalf("expected no days, got %d", len(itin.Days))
	}
}

func TestCancellationReturnsPartial(t *testing.T) {
	s := newSimulator(t, &solar.MockOracle{KWhPerHour: 0})
	params := testParams()
	params.TotalDistanceKm = 50000
	params.MaxDays = 10000

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	itin, err := s.CreateRouteItinerary(ctx, params)
	if err != nil {
		t.Fatalf("cancellation must not be an error: %v", err)
	}
	if itin.Terminal != model.Cancelled {
		t.Fatalf("expected cancelled, got %s", itin.Terminal)
	}
}

func TestInvalidParametersRejected(t *testing.T) {
	s := newSimulator(t, &solar.MockOracle{KWhPerHour: 1})
	cases := []func(*model.SimulationParameters){
		func(p *model.SimulationParameters) { p.AverageSpeedKmh = 0 },
		func(p *model.SimulationParameters) { p.TotalDistanceKm = -1 },
		func(p *model.SimulationParameters) { p.LowBatteryThresholdPct = 150 },
		func(p *model.SimulationParameters) { p.MaxDays = 0 },
		func(p *model.SimulationParameters) { p.DrivingHoursPerDay = 25 },
		func(p *model.SimulationParameters) { p.VehicleMassKg = -10 },
	}
	for i, mutate := range cases {
		params := testParams()
		mutate(&params)
		if _, err := s.CreateRouteItinerary(context.Background(), params); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}

func TestOracleFailureDoesNotFailRun(t *testing.T) {
	s := newSimulator(t, &solar.MockOracle{Err: context.DeadlineExceeded})
	params := testParams()
	params.TotalDistanceKm = 60

	itin := run(t, s, params)
	if itin.Terminal != model.DestinationReached {
		t.Fatalf("fallback should carry the run, got %s", itin.Terminal)
	}
}

func TestDeterministicTotals(t *testing.T) {
	params := testParams()
	a := run(t, newSimulator(t, &solar.MockOracle{KWhPerHour: 1.5}), params)
	b := run(t, newSimulator(t, &solar.MockOracle{KWhPerHour: 1.5}), params)
	if a.TotalDistanceKm != b.TotalDistanceKm ||
		a.TotalEnergyConsumptionKWh != b.TotalEnergyConsumptionKWh ||
		len(a.Days) != len(b.Days) {
		t.Fatalf("runs diverged: %+v vs %+v", a, b)
	}
}

func TestSinkAndBusReceiveProgress(t *testing.T) {
	bus := eventbus.New[Event]()
	sub := bus.Subscribe()
	sink := &recordingSink{}
	s, err := New(Options{
		Battery: testSpec(),
		Oracle:  &solar.MockOracle{KWhPerHour: 1},
		Logger:  logger.NopLogger{},
		Sink:    sink,
		Bus:     bus,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	params := testParams()
	params.TotalDistanceKm = 60
	itin := run(t, s, params)

	if len(sink.days) != 1 || len(sink.runs) != 1 {
		t.Fatalf("sink got %d day and %d run records", len(sink.days), len(sink.runs))
	}
	if sink.runs[0].Terminal != model.DestinationReached {
		t.Fatalf("unexpected run record: %+v", sink.runs[0])
	}

	var sawDay, sawRun bool
	for i := 0; i < 2; i++ {
		select {
		case ev := <-sub:
			switch e := ev.(type) {
			case DayCompleted:
				sawDay = e.RunID == itin.RunID
			case RunFinished:
				sawRun = e.Itinerary.RunID == itin.RunID
			}
		default:
		}
	}
	if !sawDay || !sawRun {
		t.Fatalf("missing bus events: day=%v run=%v", sawDay, sawRun)
	}
}

type recordingSink struct {
	days []simmetrics.DayRecord
	runs []simmetrics.RunRecord
}

func (r *recordingSink) RecordDay(rec simmetrics.DayRecord) error {
	r.days = append(r.days, rec)
	return nil
}

func (r *recordingSink) RecordRun(rec simmetrics.RunRecord) error {
	r.runs = append(r.runs, rec)
	return nil
}
