package telemetry

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// sessionFile is the on-disk JSON shape of a session. Field names match
// the shapes the analysis backend exports.
type sessionFile struct {
	Track   string       `json:"track"`
	Driver  string       `json:"driver"`
	Laps    []lapFile    `json:"laps"`
	Corners []cornerFile `json:"corners"`
	Grades  []gradeFile  `json:"grades"`
}

type lapFile struct {
	LapNumber     int       `json:"lap_number"`
	LapTime       float64   `json:"lap_time_s"`
	Distance      []float64 `json:"distance_m"`
	Speed         []float64 `json:"speed_mps"`
	LateralG      []float64 `json:"lateral_g"`
	LongitudinalG []float64 `json:"longitudinal_g"`
	Latitude      []float64 `json:"lat"`
	Longitude     []float64 `json:"lon"`
	Heading       []float64 `json:"heading"`
	Brake         []float64 `json:"brake"`
	Throttle      []float64 `json:"throttle"`
	Altitude      []float64 `json:"altitude_m,omitempty"`
}

type cornerFile struct {
	Number         int     `json:"number"`
	EntryDistance  float64 `json:"entry_distance_m"`
	ApexDistance   float64 `json:"apex_distance_m"`
	ExitDistance   float64 `json:"exit_distance_m"`
	MinSpeed       float64 `json:"min_speed"`
	BrakePoint     float64 `json:"brake_point_m,omitempty"`
	PeakBrakeG     float64 `json:"peak_brake_g,omitempty"`
	ThrottleCommit float64 `json:"throttle_commit_m,omitempty"`
	ApexType       string  `json:"apex_type"`
}

type gradeFile struct {
	Corner       int    `json:"corner"`
	Braking      string `json:"braking,omitempty"`
	TrailBraking string `json:"trail_braking,omitempty"`
	MinSpeed     string `json:"min_speed,omitempty"`
	Throttle     string `json:"throttle,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// LoadSession reads and validates a session file.
func LoadSession(path string) (*Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	defer f.Close()

	return ReadSession(f)
}

// ReadSession decodes and validates a session from a reader.
func ReadSession(r io.Reader) (*Session, error) {
	var sf sessionFile
	dec := json.NewDecoder(r)
	if err := dec.Decode(&sf); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}

	session := &Session{
		Track:  sf.Track,
		Driver: sf.Driver,
	}

	for i := range sf.Laps {
		lf := &sf.Laps[i]
		lap := &Series{
			LapNumber:     lf.LapNumber,
			LapTime:       lf.LapTime,
			Distance:      lf.Distance,
			Speed:         lf.Speed,
			LateralG:      lf.LateralG,
			LongitudinalG: lf.LongitudinalG,
			Latitude:      lf.Latitude,
			Longitude:     lf.Longitude,
			Heading:       lf.Heading,
			Brake:         lf.Brake,
			Throttle:      lf.Throttle,
			Altitude:      lf.Altitude,
		}
		if err := lap.Validate(); err != nil {
			return nil, fmt.Errorf("session %q: %w", sf.Track, err)
		}
		session.Laps = append(session.Laps, lap)
	}
	if len(session.Laps) == 0 {
		return nil, fmt.Errorf("session %q: no laps", sf.Track)
	}

	for _, cf := range sf.Corners {
		session.Corners = append(session.Corners, Corner{
			Number:         cf.Number,
			EntryDistance:  cf.EntryDistance,
			ApexDistance:   cf.ApexDistance,
			ExitDistance:   cf.ExitDistance,
			MinSpeed:       cf.MinSpeed,
			BrakePoint:     cf.BrakePoint,
			PeakBrakeG:     cf.PeakBrakeG,
			ThrottleCommit: cf.ThrottleCommit,
			Apex:           ApexType(cf.ApexType),
		})
	}
	if err := ValidateCorners(session.Corners); err != nil {
		return nil, fmt.Errorf("session %q: %w", sf.Track, err)
	}

	for _, gf := range sf.Grades {
		session.Grades = append(session.Grades, CornerGrade{
			Corner:       gf.Corner,
			Braking:      Grade(gf.Braking),
			TrailBraking: Grade(gf.TrailBraking),
			MinSpeed:     Grade(gf.MinSpeed),
			Throttle:     Grade(gf.Throttle),
			Notes:        gf.Notes,
		})
	}

	return session, nil
}
