package model

import "testing"

func TestNewDrivingSegment(t *testing.T) {
	seg := NewDrivingSegment(10, 40, 90, 70, 8, 8.5, 1.5, 2.0, 0.4)
	if seg.Kind != KindDriving || seg.Drive == nil {
		t.Fatalf("unexpected segment %+v", seg)
	}
	if seg.Stop != nil || seg.Charge != nil {
		t.Fatal("only the drive detail may be set")
	}
	if seg.EndKm != 50 || seg.DistanceKm() != 40 {
		t.Fatalf("distance wrong: %+v", seg)
	}
	if seg.StartTime != "08:00" || seg.EndTime != "08:30" {
		t.Fatalf("times wrong: %s %s", seg.StartTime, seg.EndTime)
	}
	if seg.ChargingHours() != 0 {
		t.Fatal("driving segments never charge")
	}
}

func TestNewDrivingSegmentTruncatesNegativeDistance(t *testing.T) {
	seg := NewDrivingSegment(10, -5, 50, 50, 8, 8, 0, 0, 0)
	if seg.EndKm != 10 || seg.DistanceKm() != 0 {
		t.Fatalf("negative distance not truncated: %+v", seg)
	}
}

func TestNewControlStopSegment(t *testing.T) {
	seg := NewControlStopSegment(150, "Katherine", 0.5, 60, 65, 10, 0.2)
	if seg.Kind != KindControlStop || seg.Stop == nil {
		t.Fatalf("unexpected segment %+v", seg)
	}
	if seg.StartKm != 150 || seg.EndKm != 150 || seg.DistanceKm() != 0 {
		t.Fatalf("control stops cover no distance: %+v", seg)
	}
	if seg.ChargingHours() != 0.5 {
		t.Fatalf("dwell not counted: %v", seg.ChargingHours())
	}
	if seg.EndTime != "10:30" {
		t.Fatalf("end time %s", seg.EndTime)
	}
}

func TestNewChargingSegment(t *testing.T) {
	seg := NewChargingSegment(75, 1, 25, 50, 8.9375)
	if seg.Kind != KindBatteryCharging || seg.Charge == nil {
		t.Fatalf("unexpected segment %+v", seg)
	}
	if seg.ChargingHours() != 1 || seg.DistanceKm() != 0 {
		t.Fatalf("unexpected accounting %+v", seg)
	}
}

func TestBatteryClamping(t *testing.T) {
	seg := NewDrivingSegment(0, 1, 120, -5, 8, 8.1, 0, 0, 0)
	if seg.BatteryBefore != 100 || seg.BatteryAfter != 0 {
		t.Fatalf("battery not clamped: %v %v", seg.BatteryBefore, seg.BatteryAfter)
	}
}

func TestClockTime(t *testing.T) {
	cases := []struct {
		hours float64
		want  string
	}{
		{0, "00:00"},
		{8, "08:00"},
		{8.9375, "08:56"},
		{13.5, "13:30"},
		{24, "24:00"},
		{25.25, "25:15"},
		{-1, "00:00"},
	}
	for _, tc := range cases {
		if got := ClockTime(tc.hours); got != tc.want {
			t.Errorf("ClockTime(%v) = %q, want %q", tc.hours, got, tc.want)
		}
	}
}
