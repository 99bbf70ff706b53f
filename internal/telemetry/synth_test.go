package telemetry

import (
	"math"
	"testing"
)

func TestDemoSession_Valid(t *testing.T) {
	session := DemoSession()

	if len(session.Laps) != 2 {
		t.Fatalf("got %d laps, want 2", len(session.Laps))
	}
	for _, lap := range session.Laps {
		if err := lap.Validate(); err != nil {
			t.Errorf("lap %d invalid: %v", lap.LapNumber, err)
		}
		if !lap.HasAltitude() {
			t.Errorf("lap %d missing altitude channel", lap.LapNumber)
		}
		if lap.LapTime <= 0 {
			t.Errorf("lap %d has no lap time", lap.LapNumber)
		}
	}

	if err := ValidateCorners(session.Corners); err != nil {
		t.Errorf("demo corners invalid: %v", err)
	}
	if len(session.Grades) != len(session.Corners) {
		t.Errorf("%d grades for %d corners", len(session.Grades), len(session.Corners))
	}
	for _, cg := range session.Grades {
		if cg.Overall() == "" {
			t.Errorf("corner %d has no overall grade", cg.Corner)
		}
	}
}

// The two demo laps differ so the delta trace has structure, and the
// higher-skill lap is quicker.
func TestDemoSession_LapsDiffer(t *testing.T) {
	session := DemoSession()
	ref, cmp := session.Laps[0], session.Laps[1]

	if cmp.LapTime >= ref.LapTime {
		t.Errorf("lap 2 (%.3fs) should be faster than lap 1 (%.3fs)",
			cmp.LapTime, ref.LapTime)
	}

	ds, err := ComputeDelta(ref, cmp)
	if err != nil {
		t.Fatalf("ComputeDelta: %v", err)
	}
	if ds.TotalDelta <= 0 {
		t.Errorf("TotalDelta = %v, want positive (reference slower)", ds.TotalDelta)
	}
}

func TestDemoSession_PhysicallyPlausible(t *testing.T) {
	session := DemoSession()
	lap := session.Laps[0]

	for i, v := range lap.Speed {
		if v <= 0 || v > synthMaxSpeed+1e-9 {
			t.Fatalf("speed[%d] = %v outside (0, %v]", i, v, synthMaxSpeed)
		}
	}
	for i := range lap.Brake {
		if lap.Brake[i] < 0 || lap.Brake[i] > 1 || lap.Throttle[i] < 0 || lap.Throttle[i] > 1 {
			t.Fatalf("pedals[%d] = %v/%v outside [0, 1]", i, lap.Brake[i], lap.Throttle[i])
		}
	}

	// The heading comes back around: corner angles sum to a full turn,
	// so the final heading is near the initial one. The discrete corner
	// sampling leaves a few degrees of slack.
	n := lap.Len()
	endHeading := lap.Heading[n-1]
	if endHeading > 180 {
		endHeading -= 360
	}
	if math.Abs(endHeading-lap.Heading[0]) > 20 {
		t.Errorf("final heading %.1f°, want near %.1f°", lap.Heading[n-1], lap.Heading[0])
	}

	// The circuit has real 2-D extent but stays within a few km of the
	// demo center.
	minLat, maxLat := math.Inf(1), math.Inf(-1)
	for _, la := range lap.Latitude {
		minLat = math.Min(minLat, la)
		maxLat = math.Max(maxLat, la)
	}
	spanM := (maxLat - minLat) * math.Pi / 180 * earthRadiusM
	if spanM < 100 || spanM > 5000 {
		t.Errorf("latitude span = %.0f m, want a plausible circuit footprint", spanM)
	}
}

func TestSpeedProfile_RespectsLimits(t *testing.T) {
	curvature := make([]float64, 200)
	for i := 60; i < 90; i++ {
		curvature[i] = 0.02 // tight corner
	}
	speed := speedProfile(curvature, 0)

	cornerLimit := math.Sqrt(synthMaxLatG * 9.81 / 0.02)
	for i := 60; i < 90; i++ {
		if speed[i] > cornerLimit+1e-9 {
			t.Fatalf("speed[%d] = %v exceeds corner limit %v", i, speed[i], cornerLimit)
		}
	}

	// Acceleration between consecutive samples stays within the
	// traction and braking envelopes.
	for i := 1; i < len(speed); i++ {
		dv2 := speed[i]*speed[i] - speed[i-1]*speed[i-1]
		accel := dv2 / (2 * synthSampleStep)
		if accel > synthMaxAccel+1e-9 {
			t.Fatalf("accel %v at %d exceeds %v", accel, i, synthMaxAccel)
		}
		if accel < -synthMaxBrake-1e-9 {
			t.Fatalf("braking %v at %d exceeds %v", accel, i, synthMaxBrake)
		}
	}
}
