package telemetry

// Downsample reduces a distance-indexed series to at most threshold
// points using Largest-Triangle-Three-Buckets, preserving the visual
// shape of the trace. The first and last points are always kept. Returns
// the input slices unchanged when no reduction is needed.
//
// https://skemman.is/bitstream/1946/15343/3/SS_MSthesis.pdf
func Downsample(dist, vals []float64, threshold int) ([]float64, []float64) {
	idx := DownsampleIndices(dist, vals, threshold)
	return Pick(dist, idx), Pick(vals, idx)
}

// DownsampleIndices runs the LTTB pass and returns the kept sample
// indices, in order, so several index-aligned channels can be reduced by
// one consistent selection. Returns nil when no reduction is needed,
// meaning the full index range.
func DownsampleIndices(dist, vals []float64, threshold int) []int {
	n := len(dist)
	if threshold >= n || threshold < 3 || len(vals) != n {
		return nil
	}

	out := make([]int, 0, threshold)
	out = append(out, 0)

	// Bucket size leaves room for the fixed first and last points.
	size := float64(n-2) / float64(threshold-2)

	prev := 0
	for i := 0; i < threshold-2; i++ {
		// Current bucket bounds.
		lo := int(float64(i)*size) + 1
		hi := int(float64(i+1)*size) + 1
		if hi >= n-1 {
			hi = n - 1
		}

		// Average of the next bucket forms the third triangle vertex.
		nLo := hi
		nHi := int(float64(i+2)*size) + 1
		if nHi > n-1 {
			nHi = n - 1
		}
		var avgD, avgV float64
		count := nHi - nLo
		if count < 1 {
			count = 1
			nHi = nLo + 1
		}
		for j := nLo; j < nHi; j++ {
			avgD += dist[j]
			avgV += vals[j]
		}
		avgD /= float64(count)
		avgV /= float64(count)

		// Pick the bucket point forming the largest triangle with the
		// previously selected point and the next bucket's average.
		var bestArea float64 = -1
		best := lo
		for j := lo; j < hi; j++ {
			area := triangleArea(dist[prev], vals[prev], dist[j], vals[j], avgD, avgV)
			if area > bestArea {
				bestArea = area
				best = j
			}
		}

		out = append(out, best)
		prev = best
	}

	out = append(out, n-1)
	return out
}

// Pick gathers the samples at idx from one channel. A nil idx is the
// no-reduction case and returns the channel unchanged.
func Pick(vals []float64, idx []int) []float64 {
	if idx == nil {
		return vals
	}
	out := make([]float64, len(idx))
	for k, i := range idx {
		out[k] = vals[i]
	}
	return out
}

func triangleArea(ax, ay, bx, by, cx, cy float64) float64 {
	area := (ax-cx)*(by-ay) - (ax-bx)*(cy-ay)
	if area < 0 {
		area = -area
	}
	return area * 0.5
}
