package telemetry

import (
	"strings"
	"testing"
)

const sessionJSON = `{
  "track": "Laguna Seca",
  "driver": "S. Ayrton",
  "laps": [
    {
      "lap_number": 3,
      "lap_time_s": 92.5,
      "distance_m": [0, 100, 200],
      "speed_mps": [40, 50, 45],
      "lateral_g": [0, 0.5, 1.1],
      "longitudinal_g": [0.2, 0, -0.8],
      "lat": [36.58, 36.581, 36.582],
      "lon": [-121.75, -121.751, -121.752],
      "heading": [0, 10, 25],
      "brake": [0, 0, 0.8],
      "throttle": [1, 1, 0.1],
      "altitude_m": [210, 212, 215]
    }
  ],
  "corners": [
    {
      "number": 1,
      "entry_distance_m": 120,
      "apex_distance_m": 160,
      "exit_distance_m": 200,
      "min_speed": 30,
      "brake_point_m": 95,
      "peak_brake_g": 1.2,
      "throttle_commit_m": 170,
      "apex_type": "late"
    }
  ],
  "grades": [
    {"corner": 1, "braking": "B", "min_speed": "A", "notes": "brake 5m later"}
  ]
}`

func TestReadSession(t *testing.T) {
	session, err := ReadSession(strings.NewReader(sessionJSON))
	if err != nil {
		t.Fatalf("ReadSession: %v", err)
	}

	if session.Track != "Laguna Seca" {
		t.Errorf("Track = %q", session.Track)
	}
	if session.Driver != "S. Ayrton" {
		t.Errorf("Driver = %q", session.Driver)
	}

	if len(session.Laps) != 1 {
		t.Fatalf("got %d laps, want 1", len(session.Laps))
	}
	lap := session.Laps[0]
	if lap.LapNumber != 3 || lap.LapTime != 92.5 {
		t.Errorf("lap = %d @ %vs", lap.LapNumber, lap.LapTime)
	}
	if lap.Len() != 3 {
		t.Errorf("samples = %d, want 3", lap.Len())
	}
	if !lap.HasAltitude() {
		t.Error("altitude channel lost in decoding")
	}

	if len(session.Corners) != 1 {
		t.Fatalf("got %d corners, want 1", len(session.Corners))
	}
	c := session.Corners[0]
	if c.Number != 1 || c.EntryDistance != 120 || c.Apex != ApexLate {
		t.Errorf("corner = %+v", c)
	}

	g := session.GradeFor(1)
	if g == nil {
		t.Fatal("grade for corner 1 missing")
	}
	if g.Braking != "B" || g.MinSpeed != "A" {
		t.Errorf("grades = %+v", g)
	}
	// Absent sub-grades stay absent and are excluded from the overall.
	if g.TrailBraking != "" || g.Throttle != "" {
		t.Errorf("absent grades decoded as %q/%q", g.TrailBraking, g.Throttle)
	}
	if g.Overall() != "B" {
		t.Errorf("Overall = %q, want B", g.Overall())
	}
}

func TestReadSession_Errors(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"not json", "{broken"},
		{"no laps", `{"track": "X", "laps": []}`},
		{
			"channel mismatch",
			`{"track": "X", "laps": [{"lap_number": 1,
				"distance_m": [0, 10], "speed_mps": [5],
				"lateral_g": [0, 0], "longitudinal_g": [0, 0],
				"lat": [0, 0], "lon": [0, 0], "heading": [0, 0],
				"brake": [0, 0], "throttle": [0, 0]}]}`,
		},
		{
			"decreasing distance",
			`{"track": "X", "laps": [{"lap_number": 1,
				"distance_m": [0, 10, 5], "speed_mps": [5, 5, 5],
				"lateral_g": [0, 0, 0], "longitudinal_g": [0, 0, 0],
				"lat": [0, 0, 0], "lon": [0, 0, 0], "heading": [0, 0, 0],
				"brake": [0, 0, 0], "throttle": [0, 0, 0]}]}`,
		},
		{
			"overlapping corners",
			`{"track": "X", "laps": [{"lap_number": 1,
				"distance_m": [0, 10], "speed_mps": [5, 5],
				"lateral_g": [0, 0], "longitudinal_g": [0, 0],
				"lat": [0, 0], "lon": [0, 0], "heading": [0, 0],
				"brake": [0, 0], "throttle": [0, 0]}],
			"corners": [
				{"number": 1, "entry_distance_m": 0, "apex_distance_m": 5, "exit_distance_m": 9},
				{"number": 2, "entry_distance_m": 7, "apex_distance_m": 8, "exit_distance_m": 10}
			]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadSession(strings.NewReader(tt.json)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadSession_MissingFile(t *testing.T) {
	if _, err := LoadSession("/nonexistent/session.json"); err == nil {
		t.Error("expected error for missing file")
	}
}
