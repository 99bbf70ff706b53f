package telemetry

import "fmt"

// minSpeed guards the time integration against stationary samples; below
// this the car is treated as crawling rather than stopped so elapsed time
// stays finite.
const minSpeed = 0.1 // m/s

// ElapsedTimes integrates elapsed time over a lap from its distance and
// speed channels using the trapezoidal rule. The result is index-aligned
// with dist and starts at 0.
func ElapsedTimes(dist, speed []float64) []float64 {
	n := len(dist)
	if n == 0 || len(speed) != n {
		return nil
	}

	times := make([]float64, n)
	for i := 1; i < n; i++ {
		v0 := speed[i-1]
		if v0 < minSpeed {
			v0 = minSpeed
		}
		v1 := speed[i]
		if v1 < minSpeed {
			v1 = minSpeed
		}
		dd := dist[i] - dist[i-1]
		times[i] = times[i-1] + dd*0.5*(1/v0+1/v1)
	}
	return times
}

// ComputeDelta produces the time-delta series between a reference and a
// comparison lap on the reference lap's distance grid. Positive delta
// means the reference lap is slower at that distance. The comparison
// lap's elapsed time is interpolated onto the reference grid, so the two
// laps may be sampled on different distance grids.
func ComputeDelta(ref, cmp *Series) (*DeltaSeries, error) {
	if ref.Len() < 2 || cmp.Len() < 2 {
		return nil, fmt.Errorf("delta lap %d vs %d: need at least 2 samples per lap",
			ref.LapNumber, cmp.LapNumber)
	}

	refTimes := ElapsedTimes(ref.Distance, ref.Speed)
	cmpTimes := ElapsedTimes(cmp.Distance, cmp.Speed)

	// Only compare over the distance range both laps cover.
	maxDist := ref.TrackLength()
	if cl := cmp.TrackLength(); cl < maxDist {
		maxDist = cl
	}

	ds := &DeltaSeries{
		RefLap: ref.LapNumber,
		CmpLap: cmp.LapNumber,
	}
	for i, d := range ref.Distance {
		if d > maxDist {
			break
		}
		dt := refTimes[i] - ValueAt(cmp.Distance, cmpTimes, d)
		ds.Distance = append(ds.Distance, d)
		ds.Delta = append(ds.Delta, dt)
	}
	if len(ds.Delta) == 0 {
		return nil, fmt.Errorf("delta lap %d vs %d: laps do not overlap in distance",
			ref.LapNumber, cmp.LapNumber)
	}

	ds.TotalDelta = ds.Delta[len(ds.Delta)-1]
	return ds, nil
}

// MaxAbsDelta returns the largest absolute delta value, used to normalize
// the diverging color scale. Returns 0 for an empty series.
func (ds *DeltaSeries) MaxAbsDelta() float64 {
	var maxAbs float64
	for _, dt := range ds.Delta {
		if dt < 0 {
			dt = -dt
		}
		if dt > maxAbs {
			maxAbs = dt
		}
	}
	return maxAbs
}
