// Package render provides the dual-layer cell canvas, linear scales, and
// color classification shared by every chart view.
package render

// Scale is a linear mapping from a data domain onto a drawing range.
// A degenerate domain maps everything to the range start.
type Scale struct {
	DomainMin, DomainMax float64
	RangeMin, RangeMax   float64
}

// NewScale builds a scale. Domains may be inverted (min > max) to flip
// the axis, which vertical value axes use so larger values sit higher.
func NewScale(domainMin, domainMax, rangeMin, rangeMax float64) Scale {
	return Scale{
		DomainMin: domainMin,
		DomainMax: domainMax,
		RangeMin:  rangeMin,
		RangeMax:  rangeMax,
	}
}

// Apply maps a domain value into the range.
func (s Scale) Apply(v float64) float64 {
	span := s.DomainMax - s.DomainMin
	if span == 0 {
		return s.RangeMin
	}
	t := (v - s.DomainMin) / span
	return s.RangeMin + t*(s.RangeMax-s.RangeMin)
}

// Invert maps a range position back into the domain, clamped to the
// domain bounds. Used to turn a pointer x position into a distance.
func (s Scale) Invert(r float64) float64 {
	span := s.RangeMax - s.RangeMin
	if span == 0 {
		return s.DomainMin
	}
	t := (r - s.RangeMin) / span
	v := s.DomainMin + t*(s.DomainMax-s.DomainMin)
	return s.ClampDomain(v)
}

// ClampDomain clamps a value to the domain interval, handling inverted
// domains.
func (s Scale) ClampDomain(v float64) float64 {
	lo, hi := s.DomainMin, s.DomainMax
	if lo > hi {
		lo, hi = hi, lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
