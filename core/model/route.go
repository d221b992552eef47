package model

// ControlStop is a mandatory route waypoint where the vehicle must dwell.
// The list for a run is loaded once and sorted by distance from start.
type ControlStop struct {
	Name              string  `json:"name"`
	DistanceFromStart float64 `json:"distance_from_start_km"`
}

// TerrainPoint is a static elevation sample along the route.
type TerrainPoint struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	ElevationM float64 `json:"elevation_m"`
	DistanceKm float64 `json:"distance_km"`
}
