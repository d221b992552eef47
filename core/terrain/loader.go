package terrain

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/kilianp07/solarace/core/model"
)

// LoadTerrainCSV reads elevation samples from a CSV file with the header
// latitude,longitude,elevation_m,distance_km.
func LoadTerrainCSV(path string) ([]model.TerrainPoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open terrain file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ReadTerrain(f)
}

// ReadTerrain parses elevation samples from r.
func ReadTerrain(r io.Reader) ([]model.TerrainPoint, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read terrain csv: %w", err)
	}
	var points []model.TerrainPoint
	for i, rec := range records {
		if i == 0 {
			continue // header
		}
		if len(rec) < 4 {
			return nil, fmt.Errorf("terrain row %d: expected 4 fields, got %d", i, len(rec))
		}
		vals := make([]float64, 4)
		for j, s := range rec[:4] {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("terrain row %d field %d: %w", i, j, err)
			}
			vals[j] = v
		}
		points = append(points, model.TerrainPoint{
			Latitude:   vals[0],
			Longitude:  vals[1],
			ElevationM: vals[2],
			DistanceKm: vals[3],
		})
	}
	return points, nil
}

// LoadControlStopsCSV reads waypoints from a CSV file with the header
// name,distance_from_start_km and returns them sorted by distance.
func LoadControlStopsCSV(path string) ([]model.ControlStop, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open control stops file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ReadControlStops(f)
}

// ReadControlStops parses waypoints from r, sorted by distance.
func ReadControlStops(r io.Reader) ([]model.ControlStop, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read control stops csv: %w", err)
	}
	var stops []model.ControlStop
	for i, rec := range records {
		if i == 0 {
			continue
		}
		if len(rec) < 2 {
			return nil, fmt.Errorf("control stop row %d: expected 2 fields, got %d", i, len(rec))
		}
		d, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, fmt.Errorf("control stop row %d distance: %w", i, err)
		}
		if d < 0 {
			return nil, fmt.Errorf("control stop row %d: negative distance %g", i, d)
		}
		stops = append(stops, model.ControlStop{Name: rec[0], DistanceFromStart: d})
	}
	sort.Slice(stops, func(i, j int) bool { return stops[i].DistanceFromStart < stops[j].DistanceFromStart })
	return stops, nil
}
