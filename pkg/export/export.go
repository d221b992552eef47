// Package export writes finished itineraries to JSON and CSV for race
// crews that consume the plan outside the simulator.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/kilianp07/solarace/core/model"
)

// WriteJSON writes the full itinerary to w in indented JSON.
func WriteJSON(w io.Writer, it *model.RouteItinerary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(it)
}

// WriteCSV writes one row per segment across all days.
func WriteCSV(w io.Writer, it *model.RouteItinerary) error {
	cw := csv.NewWriter(w)
	header := []string{
		"day", "date", "kind", "detail", "start_km", "end_km",
		"start_time", "end_time", "battery_before_pct", "battery_after_pct",
		"consumed_kwh", "produced_kwh",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, day := range it.Days {
		date := day.Date.Format("2006-01-02")
		for _, seg := range day.Segments {
			rec := []string{
				strconv.Itoa(day.DayIndex),
				date,
				string(seg.Kind),
				segmentDetail(seg),
				fmtFloat(seg.StartKm),
				fmtFloat(seg.EndKm),
				seg.StartTime,
				seg.EndTime,
				fmtFloat(seg.BatteryBefore),
				fmtFloat(seg.BatteryAfter),
				fmtFloat(seg.EnergyConsumedKWh),
				fmtFloat(seg.EnergyProducedKWh),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func segmentDetail(seg model.RouteSegment) string {
	switch seg.Kind {
	case model.KindDriving:
		if seg.Drive != nil {
			return fmtFloat(seg.Drive.DistanceKm) + " km"
		}
	case model.KindControlStop:
		if seg.Stop != nil {
			return seg.Stop.Name
		}
	case model.KindBatteryCharging:
		if seg.Charge != nil {
			return fmtFloat(seg.Charge.Hours) + " h"
		}
	}
	return ""
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
