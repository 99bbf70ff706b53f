// Package telemetry provides types and derivations for per-lap racing telemetry.
package telemetry

import (
	"fmt"
	"sort"
)

// Series holds one lap of distance-indexed telemetry. All slices are the
// same length and index-aligned with Distance, which is monotonically
// non-decreasing in meters from the start/finish line. A Series is
// immutable once loaded.
type Series struct {
	LapNumber int
	LapTime   float64 // total lap time in seconds, 0 if unknown

	Distance      []float64 // meters
	Speed         []float64 // m/s
	LateralG      []float64
	LongitudinalG []float64
	Latitude      []float64 // degrees
	Longitude     []float64 // degrees
	Heading       []float64 // degrees
	Brake         []float64 // 0..1 pedal position
	Throttle      []float64 // 0..1 pedal position
	Altitude      []float64 // meters, optional (nil when absent)
}

// Len returns the number of samples in the series.
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Distance)
}

// TrackLength returns the distance of the last sample, or 0 for an empty series.
func (s *Series) TrackLength() float64 {
	if s.Len() == 0 {
		return 0
	}
	return s.Distance[len(s.Distance)-1]
}

// HasAltitude reports whether the lap carries an elevation channel.
func (s *Series) HasAltitude() bool {
	return s != nil && len(s.Altitude) == s.Len() && s.Len() > 0
}

// Validate checks the Series invariants: equal-length channels and a
// monotonically non-decreasing distance array.
func (s *Series) Validate() error {
	n := len(s.Distance)
	if n == 0 {
		return fmt.Errorf("lap %d: empty distance array", s.LapNumber)
	}

	channels := map[string][]float64{
		"speed":          s.Speed,
		"lateral_g":      s.LateralG,
		"longitudinal_g": s.LongitudinalG,
		"lat":            s.Latitude,
		"lon":            s.Longitude,
		"heading":        s.Heading,
		"brake":          s.Brake,
		"throttle":       s.Throttle,
	}
	for name, ch := range channels {
		if len(ch) != n {
			return fmt.Errorf("lap %d: %s has %d samples, distance has %d",
				s.LapNumber, name, len(ch), n)
		}
	}
	if s.Altitude != nil && len(s.Altitude) != n {
		return fmt.Errorf("lap %d: altitude has %d samples, distance has %d",
			s.LapNumber, len(s.Altitude), n)
	}

	for i := 1; i < n; i++ {
		if s.Distance[i] < s.Distance[i-1] {
			return fmt.Errorf("lap %d: distance decreases at sample %d (%.2f -> %.2f)",
				s.LapNumber, i, s.Distance[i-1], s.Distance[i])
		}
	}

	return nil
}

// ApexType classifies how a corner's apex sits within the corner zone.
type ApexType string

const (
	ApexEarly ApexType = "early"
	ApexMid   ApexType = "mid"
	ApexLate  ApexType = "late"
)

// Corner is an entry-to-exit distance range attributed to one numbered
// corner of the track, with optional per-corner reference metrics.
type Corner struct {
	Number         int
	EntryDistance  float64 // meters
	ApexDistance   float64 // meters
	ExitDistance   float64 // meters
	MinSpeed       float64 // m/s at apex
	BrakePoint     float64 // meters, 0 if unknown
	PeakBrakeG     float64
	ThrottleCommit float64 // meters, 0 if unknown
	Apex           ApexType
}

// Contains reports whether a lap distance falls inside the corner zone.
func (c Corner) Contains(distance float64) bool {
	return distance >= c.EntryDistance && distance <= c.ExitDistance
}

// Length returns the entry-to-exit span in meters.
func (c Corner) Length() float64 {
	return c.ExitDistance - c.EntryDistance
}

// ValidateCorners checks that corners are sorted by entry distance and
// that zones do not overlap.
func ValidateCorners(corners []Corner) error {
	if !sort.SliceIsSorted(corners, func(i, j int) bool {
		return corners[i].EntryDistance < corners[j].EntryDistance
	}) {
		return fmt.Errorf("corners not sorted by entry distance")
	}
	for i := range corners {
		c := corners[i]
		if c.ExitDistance < c.EntryDistance {
			return fmt.Errorf("corner %d: exit %.1f before entry %.1f",
				c.Number, c.ExitDistance, c.EntryDistance)
		}
		if c.ApexDistance < c.EntryDistance || c.ApexDistance > c.ExitDistance {
			return fmt.Errorf("corner %d: apex %.1f outside zone [%.1f, %.1f]",
				c.Number, c.ApexDistance, c.EntryDistance, c.ExitDistance)
		}
		if i > 0 && c.EntryDistance < corners[i-1].ExitDistance {
			return fmt.Errorf("corner %d overlaps corner %d",
				c.Number, corners[i-1].Number)
		}
	}
	return nil
}

// CornerAt returns the corner whose zone contains the given distance,
// or nil when the distance is on a straight.
func CornerAt(corners []Corner, distance float64) *Corner {
	// Corners are sorted by entry distance; binary search for the last
	// corner whose entry is at or before the query.
	i := sort.Search(len(corners), func(i int) bool {
		return corners[i].EntryDistance > distance
	})
	if i == 0 {
		return nil
	}
	if c := &corners[i-1]; c.Contains(distance) {
		return c
	}
	return nil
}

// Grade is a letter grade A (best) through F (worst). The zero value
// means "not graded".
type Grade string

// Valid reports whether the grade is one of A..F.
func (g Grade) Valid() bool {
	return len(g) == 1 && g[0] >= 'A' && g[0] <= 'F'
}

// CornerGrade carries the graded sub-metrics for one corner. Absent
// sub-grades are the zero Grade and are excluded from aggregation.
type CornerGrade struct {
	Corner       int
	Braking      Grade
	TrailBraking Grade
	MinSpeed     Grade
	Throttle     Grade
	Notes        string
}

// SubGrades returns the present sub-grades in a fixed order.
func (cg CornerGrade) SubGrades() []Grade {
	var out []Grade
	for _, g := range []Grade{cg.Braking, cg.TrailBraking, cg.MinSpeed, cg.Throttle} {
		if g.Valid() {
			out = append(out, g)
		}
	}
	return out
}

// WorstGrade returns the lowest letter among the given grades, excluding
// invalid/absent entries. With no valid grades it returns the zero Grade.
// The result is order-independent.
func WorstGrade(grades []Grade) Grade {
	var worst Grade
	for _, g := range grades {
		if !g.Valid() {
			continue
		}
		if worst == "" || g > worst {
			worst = g
		}
	}
	return worst
}

// Overall returns the corner's single representative grade under the
// worst-of-N rule.
func (cg CornerGrade) Overall() Grade {
	return WorstGrade(cg.SubGrades())
}

// DeltaSeries is a distance-indexed array of signed time differences
// between a reference lap and a comparison lap. Positive values mean the
// reference lap is slower at that point.
type DeltaSeries struct {
	RefLap     int
	CmpLap     int
	Distance   []float64 // meters
	Delta      []float64 // seconds
	TotalDelta float64   // seconds at the end of the overlap
}

// Session is one on-track session: laps plus the corner and grading data
// produced by external analysis.
type Session struct {
	Track   string
	Driver  string
	Laps    []*Series
	Corners []Corner
	Grades  []CornerGrade
}

// Lap returns the lap with the given number, or nil.
func (s *Session) Lap(number int) *Series {
	if s == nil {
		return nil
	}
	for _, lap := range s.Laps {
		if lap.LapNumber == number {
			return lap
		}
	}
	return nil
}

// GradeFor returns the grade record for a corner number, or nil.
func (s *Session) GradeFor(corner int) *CornerGrade {
	if s == nil {
		return nil
	}
	for i := range s.Grades {
		if s.Grades[i].Corner == corner {
			return &s.Grades[i]
		}
	}
	return nil
}

// FastestLap returns the lap with the lowest recorded lap time, falling
// back to the first lap when no times are recorded.
func (s *Session) FastestLap() *Series {
	if s == nil || len(s.Laps) == 0 {
		return nil
	}
	best := s.Laps[0]
	for _, lap := range s.Laps[1:] {
		if lap.LapTime > 0 && (best.LapTime == 0 || lap.LapTime < best.LapTime) {
			best = lap
		}
	}
	return best
}
