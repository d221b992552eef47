package model

import "fmt"

// SegmentKind discriminates the three atomic events on a day's timeline.
type SegmentKind string

const (
	KindDriving         SegmentKind = "driving"
	KindControlStop     SegmentKind = "control_stop"
	KindBatteryCharging SegmentKind = "battery_charging"
)

// DriveDetail carries the fields specific to a driving segment.
type DriveDetail struct {
	DistanceKm float64 `json:"distance_km"`
	SlopePct   float64 `json:"slope_pct"`
}

// StopDetail carries the fields specific to a control-stop segment.
type StopDetail struct {
	Name       string  `json:"name"`
	DwellHours float64 `json:"dwell_hours"`
}

// ChargeDetail carries the fields specific to a charging segment.
type ChargeDetail struct {
	Hours float64 `json:"hours"`
}

// RouteSegment is one atomic event on the timeline. Exactly one of the
// detail pointers is set, matching Kind; use the New*Segment constructors
// so the pairing and the battery/distance invariants hold.
type RouteSegment struct {
	Kind          SegmentKind   `json:"kind"`
	StartKm       float64       `json:"start_km"`
	EndKm         float64       `json:"end_km"`
	BatteryBefore float64       `json:"battery_before_pct"`
	BatteryAfter  float64       `json:"battery_after_pct"`
	StartTime     string        `json:"start_time"`
	EndTime       string        `json:"end_time"`
	Drive         *DriveDetail  `json:"drive,omitempty"`
	Stop          *StopDetail   `json:"stop,omitempty"`
	Charge        *ChargeDetail `json:"charge,omitempty"`

	EnergyConsumedKWh float64 `json:"energy_consumed_kwh"`
	EnergyProducedKWh float64 `json:"energy_produced_kwh"`
}

// DistanceKm returns the distance covered by the segment: positive only
// for driving segments.
func (s RouteSegment) DistanceKm() float64 {
	if s.Kind == KindDriving && s.Drive != nil {
		return s.Drive.DistanceKm
	}
	return 0
}

// ChargingHours returns the time the segment spends charging: the charge
// duration for charging segments and the dwell for control stops.
func (s RouteSegment) ChargingHours() float64 {
	switch s.Kind {
	case KindBatteryCharging:
		if s.Charge != nil {
			return s.Charge.Hours
		}
	case KindControlStop:
		if s.Stop != nil {
			return s.Stop.DwellHours
		}
	}
	return 0
}

func clampPct(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// ClockTime formats hours since midnight as HH:MM. Hours past 24 are
// not wrapped, so a day that runs over midnight keeps increasing times
// like 24:52.
func ClockTime(hours float64) string {
	if hours < 0 {
		hours = 0
	}
	h := int(hours)
	m := int((hours - float64(h)) * 60)
	return fmt.Sprintf("%02d:%02d", h, m)
}

// NewDrivingSegment builds a driving segment from startKm over distanceKm.
// Battery percentages are clamped to [0,100]; a negative distance is
// truncated to zero so EndKm never precedes StartKm.
func NewDrivingSegment(startKm, distanceKm, batteryBefore, batteryAfter, startHour, endHour, slopePct, consumedKWh, producedKWh float64) RouteSegment {
	if distanceKm < 0 {
		distanceKm = 0
	}
	return RouteSegment{
		Kind:              KindDriving,
		StartKm:           startKm,
		EndKm:             startKm + distanceKm,
		BatteryBefore:     clampPct(batteryBefore),
		BatteryAfter:      clampPct(batteryAfter),
		StartTime:         ClockTime(startHour),
		EndTime:           ClockTime(endHour),
		Drive:             &DriveDetail{DistanceKm: distanceKm, SlopePct: slopePct},
		EnergyConsumedKWh: consumedKWh,
		EnergyProducedKWh: producedKWh,
	}
}

// NewControlStopSegment builds a zero-distance control-stop segment.
func NewControlStopSegment(km float64, name string, dwellHours, batteryBefore, batteryAfter, startHour float64, producedKWh float64) RouteSegment {
	return RouteSegment{
		Kind:              KindControlStop,
		StartKm:           km,
		EndKm:             km,
		BatteryBefore:     clampPct(batteryBefore),
		BatteryAfter:      clampPct(batteryAfter),
		StartTime:         ClockTime(startHour),
		EndTime:           ClockTime(startHour + dwellHours),
		Stop:              &StopDetail{Name: name, DwellHours: dwellHours},
		EnergyProducedKWh: producedKWh,
	}
}

// NewChargingSegment builds a zero-distance low-battery charging segment.
func NewChargingSegment(km float64, hours, batteryBefore, batteryAfter, startHour float64) RouteSegment {
	return RouteSegment{
		Kind:          KindBatteryCharging,
		StartKm:       km,
		EndKm:         km,
		BatteryBefore: clampPct(batteryBefore),
		BatteryAfter:  clampPct(batteryAfter),
		StartTime:     ClockTime(startHour),
		EndTime:       ClockTime(startHour + hours),
		Charge:        &ChargeDetail{Hours: hours},
	}
}
