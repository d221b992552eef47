package sim

import (
	"context"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/solarace/core/model"
	"github.com/kilianp07/solarace/core/solar"
)

// aggregate finalizes the itinerary: days that produced no distance are
// dropped, per-day production is recomputed from the actual date for an
// authoritative figure, and the trip totals and arrival estimate are
// derived from what remains.
func (s *Simulator) aggregate(ctx context.Context, itin *model.RouteItinerary, oracle solar.Oracle, params model.SimulationParameters) {
	panel := solar.PanelConfig{AreaM2: params.PanelAreaM2, Efficiency: params.PanelEfficiency, MPPT: params.MPPTEfficiency}

	kept := itin.Days[:0]
	for _, d := range itin.Days {
		if d.TotalDistanceKm > params.ProgressEpsilonKm {
			kept = append(kept, d)
		}
	}
	itin.Days = kept

	var endBattery []float64
	for i := range itin.Days {
		d := &itin.Days[i]

		// The live loop estimates production segment by segment; the
		// full-day figure from the same oracle is the authoritative one.
		if produced, err := oracle.EstimateProduction(ctx, d.Date, params.DrivingHoursPerDay/24, panel); err == nil {
			d.EnergyProductionKWh = produced
		}

		itin.TotalDistanceKm += d.TotalDistanceKm
		itin.TotalEnergyProductionKWh += d.EnergyProductionKWh
		itin.TotalEnergyConsumptionKWh += d.EnergyConsumptionKWh
		itin.TotalChargingHours += d.TotalChargingHours
		endBattery = append(endBattery, d.EndBatteryPct)
	}
	if len(endBattery) > 0 {
		itin.AverageBatteryPct = stat.Mean(endBattery, nil)
	}

	if n := len(itin.Days); n > 0 {
		last := itin.Days[n-1]
		itin.EstimatedArrivalDate = last.Date.Format("2006-01-02")
		if m := len(last.Segments); m > 0 {
			itin.EstimatedArrivalTime = last.Segments[m-1].EndTime
		}
	}
}
