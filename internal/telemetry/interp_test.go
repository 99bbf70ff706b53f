package telemetry

import (
	"math"
	"testing"
)

func TestLookupDistance(t *testing.T) {
	dist := []float64{0, 100, 200, 300}

	tests := []struct {
		name      string
		query     float64
		wantIndex int
		wantFrac  float64
	}{
		{"before first clamps", -50, 0, 0},
		{"at first", 0, 0, 0},
		{"exact interior sample", 200, 2, 0},
		{"midpoint", 150, 1, 0.5},
		{"quarter", 125, 1, 0.25},
		{"at last", 300, 3, 0},
		{"after last clamps", 450, 3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LookupDistance(dist, tt.query)
			if got.Index != tt.wantIndex {
				t.Errorf("Index = %d, want %d", got.Index, tt.wantIndex)
			}
			if math.Abs(got.Frac-tt.wantFrac) > 1e-12 {
				t.Errorf("Frac = %v, want %v", got.Frac, tt.wantFrac)
			}
		})
	}
}

func TestLookupDistance_Empty(t *testing.T) {
	got := LookupDistance(nil, 100)
	if got.Index != 0 || got.Frac != 0 {
		t.Errorf("LookupDistance(nil) = %+v, want zero Lookup", got)
	}
}

// Repeated distance values must not divide by zero; either endpoint of
// the repeated run is an acceptable answer.
func TestLookupDistance_RepeatedValues(t *testing.T) {
	dist := []float64{0, 100, 100, 100, 200}
	got := LookupDistance(dist, 100)
	if got.Frac != 0 {
		t.Errorf("Frac = %v, want 0 at a repeated sample", got.Frac)
	}
	if dist[got.Index] != 100 {
		t.Errorf("resolved to dist[%d] = %v, want 100", got.Index, dist[got.Index])
	}
}

func TestValueAt(t *testing.T) {
	dist := []float64{0, 100, 200}
	vals := []float64{10, 30, 20}

	tests := []struct {
		query float64
		want  float64
	}{
		{-10, 10},  // clamp low
		{0, 10},    // exact
		{50, 20},   // halfway up the first segment
		{100, 30},  // exact interior
		{150, 25},  // halfway down the second segment
		{200, 20},  // exact last
		{9999, 20}, // clamp high
	}

	for _, tt := range tests {
		got := ValueAt(dist, vals, tt.query)
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("ValueAt(%v) = %v, want %v", tt.query, got, tt.want)
		}
	}
}

// Interpolated values never leave the envelope of the bracketing
// samples.
func TestValueAt_StaysWithinBracket(t *testing.T) {
	dist := []float64{0, 50, 120, 300, 310}
	vals := []float64{5, -2, 40, 40, 0}

	for q := -20.0; q <= 330; q += 1.7 {
		got := ValueAt(dist, vals, q)
		lk := LookupDistance(dist, q)
		lo, hi := vals[lk.Index], vals[lk.Index]
		if lk.Frac > 0 && lk.Index+1 < len(vals) {
			if vals[lk.Index+1] < lo {
				lo = vals[lk.Index+1]
			}
			if vals[lk.Index+1] > hi {
				hi = vals[lk.Index+1]
			}
		}
		if got < lo-1e-12 || got > hi+1e-12 {
			t.Fatalf("ValueAt(%v) = %v outside bracket [%v, %v]", q, got, lo, hi)
		}
	}
}

func TestLookupValue_Empty(t *testing.T) {
	if got := (Lookup{}).Value(nil); got != 0 {
		t.Errorf("Value(nil) = %v, want 0", got)
	}
}
