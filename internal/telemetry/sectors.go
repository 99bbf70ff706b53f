package telemetry

// MiniSector is a fixed-length subdivision of a lap, independent of
// corner boundaries.
type MiniSector struct {
	Number int
	Start  float64 // meters
	End    float64 // meters
}

// MiniSectors splits a track length into fixed-length sectors. The final
// sector absorbs the remainder so sectors always tile the full lap.
func MiniSectors(trackLength, sectorLength float64) []MiniSector {
	if trackLength <= 0 || sectorLength <= 0 {
		return nil
	}

	var sectors []MiniSector
	start := 0.0
	for number := 1; start < trackLength; number++ {
		end := start + sectorLength
		// Avoid a sliver sector at the end.
		if trackLength-end < sectorLength/2 {
			end = trackLength
		}
		sectors = append(sectors, MiniSector{Number: number, Start: start, End: end})
		start = end
	}
	return sectors
}

// SectorTimes returns the elapsed time a lap spends in each mini-sector,
// interpolating lap time at sector boundaries.
func SectorTimes(lap *Series, sectors []MiniSector) []float64 {
	if lap.Len() < 2 {
		return nil
	}

	times := ElapsedTimes(lap.Distance, lap.Speed)
	out := make([]float64, len(sectors))
	for i, sec := range sectors {
		t0 := ValueAt(lap.Distance, times, sec.Start)
		t1 := ValueAt(lap.Distance, times, sec.End)
		out[i] = t1 - t0
	}
	return out
}

// BestSectorTimes returns, per mini-sector, the fastest time across the
// given laps. Laps too short to produce sector times are skipped.
func BestSectorTimes(laps []*Series, sectors []MiniSector) []float64 {
	best := make([]float64, len(sectors))
	for _, lap := range laps {
		times := SectorTimes(lap, sectors)
		if times == nil {
			continue
		}
		for i, t := range times {
			if t <= 0 {
				continue
			}
			if best[i] == 0 || t < best[i] {
				best[i] = t
			}
		}
	}
	return best
}
