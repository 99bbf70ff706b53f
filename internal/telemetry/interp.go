package telemetry

import "sort"

// Lookup is the result of a distance query against a sorted distance
// array: blend vals[Index] and vals[Index+1] by Frac. When Frac is 0 the
// query resolved exactly to (or was clamped to) sample Index, and Index+1
// may be out of range.
type Lookup struct {
	Index int
	Frac  float64
}

// LookupDistance locates a query distance within a monotonically
// non-decreasing distance array using binary search. Queries at or before
// the first sample clamp to it; queries at or after the last sample clamp
// to the last. O(log n).
func LookupDistance(dist []float64, query float64) Lookup {
	n := len(dist)
	if n == 0 {
		return Lookup{}
	}
	if query <= dist[0] {
		return Lookup{Index: 0}
	}
	if query >= dist[n-1] {
		return Lookup{Index: n - 1}
	}

	// First index whose distance is >= query; the bracket is [i-1, i].
	i := sort.SearchFloat64s(dist, query)
	if dist[i] == query {
		return Lookup{Index: i}
	}

	span := dist[i] - dist[i-1]
	if span <= 0 {
		// Repeated distance values; either endpoint is correct.
		return Lookup{Index: i - 1}
	}
	return Lookup{Index: i - 1, Frac: (query - dist[i-1]) / span}
}

// Value blends a parallel value array at the lookup position.
func (l Lookup) Value(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	if l.Frac == 0 || l.Index+1 >= len(vals) {
		return vals[l.Index]
	}
	return vals[l.Index]*(1-l.Frac) + vals[l.Index+1]*l.Frac
}

// ValueAt linearly interpolates a distance-indexed value array at an
// arbitrary query distance, clamping at the boundaries.
func ValueAt(dist, vals []float64, query float64) float64 {
	return LookupDistance(dist, query).Value(vals)
}
