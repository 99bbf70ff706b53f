package telemetry

import (
	"math"
	"testing"
)

// constantSpeedLap builds a lap sampled every step meters at a constant
// speed.
func constantSpeedLap(lapNumber int, length, step, speed float64) *Series {
	s := &Series{LapNumber: lapNumber}
	for d := 0.0; d <= length; d += step {
		s.Distance = append(s.Distance, d)
		s.Speed = append(s.Speed, speed)
	}
	return s
}

func TestElapsedTimes_ConstantSpeed(t *testing.T) {
	lap := constantSpeedLap(1, 1000, 10, 50)
	times := ElapsedTimes(lap.Distance, lap.Speed)

	if times[0] != 0 {
		t.Errorf("times[0] = %v, want 0", times[0])
	}
	// 1000 m at 50 m/s = 20 s.
	got := times[len(times)-1]
	if math.Abs(got-20) > 1e-9 {
		t.Errorf("total time = %v, want 20", got)
	}
}

func TestElapsedTimes_StationaryGuard(t *testing.T) {
	dist := []float64{0, 10, 20}
	speed := []float64{50, 0, 50}
	times := ElapsedTimes(dist, speed)

	for i, tm := range times {
		if math.IsInf(tm, 0) || math.IsNaN(tm) {
			t.Fatalf("times[%d] = %v, want finite", i, tm)
		}
	}
	if times[2] <= times[1] || times[1] <= times[0] {
		t.Error("elapsed time must be strictly increasing over positive distance")
	}
}

func TestElapsedTimes_LengthMismatch(t *testing.T) {
	if got := ElapsedTimes([]float64{0, 1}, []float64{5}); got != nil {
		t.Errorf("ElapsedTimes with mismatched lengths = %v, want nil", got)
	}
}

// Two constant-speed laps: the delta must grow linearly with distance
// and its sign must mark the slower reference as positive.
func TestComputeDelta_ConstantSpeeds(t *testing.T) {
	fast := constantSpeedLap(1, 1000, 10, 50) // 20 s
	slow := constantSpeedLap(2, 1000, 10, 40) // 25 s

	// Fast reference vs slow comparison: reference is quicker, delta
	// goes negative.
	ds, err := ComputeDelta(fast, slow)
	if err != nil {
		t.Fatalf("ComputeDelta: %v", err)
	}
	if math.Abs(ds.TotalDelta-(-5)) > 1e-9 {
		t.Errorf("TotalDelta = %v, want -5", ds.TotalDelta)
	}

	// Halfway the gap is half of the total.
	half := ValueAt(ds.Distance, ds.Delta, 500)
	if math.Abs(half-(-2.5)) > 1e-9 {
		t.Errorf("delta at 500 m = %v, want -2.5", half)
	}

	// Monotone separation under constant speeds.
	for i := 1; i < len(ds.Delta); i++ {
		if ds.Delta[i] > ds.Delta[i-1]+1e-12 {
			t.Fatalf("delta increased at %v m with a faster reference", ds.Distance[i])
		}
	}

	// Swapping the roles flips the sign.
	rev, err := ComputeDelta(slow, fast)
	if err != nil {
		t.Fatalf("ComputeDelta reversed: %v", err)
	}
	if math.Abs(rev.TotalDelta-5) > 1e-9 {
		t.Errorf("reversed TotalDelta = %v, want +5", rev.TotalDelta)
	}
}

// Laps sampled on different distance grids still compare: the comparison
// lap is interpolated onto the reference grid.
func TestComputeDelta_FourSampleLaps(t *testing.T) {
	ref := &Series{LapNumber: 1,
		Distance: []float64{0, 10, 20, 30},
		Speed:    []float64{50, 60, 70, 80}}
	cmp := &Series{LapNumber: 2,
		Distance: []float64{0, 10, 20, 30},
		Speed:    []float64{50, 58, 69, 82}}

	ds, err := ComputeDelta(ref, cmp)
	if err != nil {
		t.Fatalf("ComputeDelta: %v", err)
	}

	// Trapezoidal elapsed times at 20 m:
	// ref: 5*(1/50+1/60) + 5*(1/60+1/70) = 0.3380952
	// cmp: 5*(1/50+1/58) + 5*(1/58+1/69) = 0.3448776
	// The comparison lap is slower there, so the reference gains.
	got := ValueAt(ds.Distance, ds.Delta, 20)
	want := -0.0067823
	if math.Abs(got-want) > 1e-5 {
		t.Errorf("delta at 20 m = %.7f, want %.7f", got, want)
	}
	if got >= 0 {
		t.Error("faster reference must carry a negative delta")
	}
}

func TestComputeDelta_DifferentGrids(t *testing.T) {
	ref := constantSpeedLap(1, 1000, 7, 50)
	cmp := constantSpeedLap(2, 1000, 13, 50)

	ds, err := ComputeDelta(ref, cmp)
	if err != nil {
		t.Fatalf("ComputeDelta: %v", err)
	}
	// Identical speeds: delta stays near zero everywhere.
	for i, dt := range ds.Delta {
		if math.Abs(dt) > 0.01 {
			t.Fatalf("delta[%d] = %v at %v m, want ~0", i, dt, ds.Distance[i])
		}
	}
}

// The delta grid stops where the shorter lap ends.
func TestComputeDelta_OverlapOnly(t *testing.T) {
	ref := constantSpeedLap(1, 1000, 10, 50)
	cmp := constantSpeedLap(2, 600, 10, 50)

	ds, err := ComputeDelta(ref, cmp)
	if err != nil {
		t.Fatalf("ComputeDelta: %v", err)
	}
	last := ds.Distance[len(ds.Distance)-1]
	if last > 600 {
		t.Errorf("delta extends to %v m, beyond the 600 m overlap", last)
	}
}

func TestComputeDelta_TooFewSamples(t *testing.T) {
	ref := &Series{LapNumber: 1, Distance: []float64{0}, Speed: []float64{10}}
	cmp := constantSpeedLap(2, 100, 10, 10)
	if _, err := ComputeDelta(ref, cmp); err == nil {
		t.Error("expected error for single-sample lap")
	}
}

func TestMaxAbsDelta(t *testing.T) {
	ds := &DeltaSeries{Delta: []float64{0.1, -0.8, 0.4}}
	if got := ds.MaxAbsDelta(); got != 0.8 {
		t.Errorf("MaxAbsDelta = %v, want 0.8", got)
	}

	empty := &DeltaSeries{}
	if got := empty.MaxAbsDelta(); got != 0 {
		t.Errorf("MaxAbsDelta on empty = %v, want 0", got)
	}
}
