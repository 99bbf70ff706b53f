// Package geo projects geodetic track coordinates into screen or world space.
package geo

import "math"

const (
	// minExtent substitutes for a degenerate bounding box so projection
	// never divides by zero (e.g., a single-point track).
	minExtent = 1e-9

	// EarthRadiusM is the mean Earth radius.
	EarthRadiusM = 6371000.0

	// World3DSize is the nominal extent of normalized 3-D world
	// coordinates: every track fills roughly the same cube regardless of
	// its absolute size.
	World3DSize = 100.0

	// DefaultElevationExaggeration makes elevation changes legible at
	// track scale in the 3-D variant.
	DefaultElevationExaggeration = 3.0
)

// Projection is the cached result of fitting a track into a drawing area.
// X/Y are index-aligned 1:1 with the source lat/lon arrays, in the target
// area's coordinate units with y increasing downward (north-up display).
type Projection struct {
	X, Y  []float64
	Scale float64 // units per equirectangular meter-equivalent degree
}

// Project fits lat/lon arrays into a width×height area with the given
// padding, preserving the track's true aspect ratio. Longitude span is
// foreshortened by cos(mean latitude) before scaling (equirectangular
// approximation), a single uniform scale is chosen from the limiting
// axis, and the shorter axis is centered. Increasing latitude moves up.
//
// Zero-length input returns an empty projection.
func Project(lat, lon []float64, width, height, padding float64) Projection {
	n := len(lat)
	if n == 0 || len(lon) != n {
		return Projection{}
	}

	minLat, maxLat := extent(lat)
	minLon, maxLon := extent(lon)

	meanLat := (minLat + maxLat) / 2
	cosLat := math.Cos(meanLat * math.Pi / 180)

	latSpan := maxLat - minLat
	lonSpan := (maxLon - minLon) * cosLat
	if latSpan < minExtent {
		latSpan = minExtent
	}
	if lonSpan < minExtent {
		lonSpan = minExtent
	}

	availW := width - 2*padding
	availH := height - 2*padding
	if availW < 0 {
		availW = 0
	}
	if availH < 0 {
		availH = 0
	}

	// Uniform scale from the limiting axis.
	scale := availW / lonSpan
	if s := availH / latSpan; s < scale {
		scale = s
	}

	// Center the slack on both axes.
	offsetX := padding + (availW-lonSpan*scale)/2
	offsetY := padding + (availH-latSpan*scale)/2

	p := Projection{
		X:     make([]float64, n),
		Y:     make([]float64, n),
		Scale: scale,
	}
	for i := 0; i < n; i++ {
		p.X[i] = offsetX + (lon[i]-minLon)*cosLat*scale
		p.Y[i] = offsetY + (maxLat-lat[i])*scale // invert: north is up
	}
	return p
}

// Projection3D carries normalized world-space coordinates with an
// independently scaled elevation axis.
type Projection3D struct {
	X, Y, Z []float64
}

// Project3D maps lat/lon/alt into normalized world coordinates: the
// ground plane fills a World3DSize square (aspect preserved, centered at
// the origin) and altitude is scaled to the same meters-per-unit ratio
// times an exaggeration multiplier, centered on the altitude midrange.
// alt may be nil, producing a flat track. exaggeration <= 0 selects the
// default.
func Project3D(lat, lon, alt []float64, exaggeration float64) Projection3D {
	n := len(lat)
	if n == 0 || len(lon) != n {
		return Projection3D{}
	}
	if exaggeration <= 0 {
		exaggeration = DefaultElevationExaggeration
	}

	flat := Project(lat, lon, World3DSize, World3DSize, 0)

	p := Projection3D{
		X: make([]float64, n),
		Y: make([]float64, n),
		Z: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		p.X[i] = flat.X[i] - World3DSize/2
		p.Y[i] = flat.Y[i] - World3DSize/2
	}

	if len(alt) != n {
		return p
	}

	minAlt, maxAlt := extent(alt)
	midAlt := (minAlt + maxAlt) / 2

	// Meters per world unit on the ground plane, from the geographic
	// extent of the projected track.
	minLat, maxLat := extent(lat)
	minLon, maxLon := extent(lon)
	groundMeters := math.Max(
		GeodesicDistance(minLat, minLon, maxLat, minLon),
		GeodesicDistance(minLat, minLon, minLat, maxLon),
	)
	if groundMeters < minExtent {
		groundMeters = minExtent
	}
	unitsPerMeter := World3DSize / groundMeters

	for i := 0; i < n; i++ {
		p.Z[i] = (alt[i] - midAlt) * unitsPerMeter * exaggeration
	}
	return p
}

// GeodesicDistance returns the approximate ground distance in meters
// between two coordinates using the equirectangular approximation, which
// is accurate at track scale.
func GeodesicDistance(lat1, lon1, lat2, lon2 float64) float64 {
	meanLat := (lat1 + lat2) / 2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180 * math.Cos(meanLat)
	return EarthRadiusM * math.Hypot(dLat, dLon)
}

func extent(vals []float64) (minV, maxV float64) {
	minV, maxV = vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	return minV, maxV
}
