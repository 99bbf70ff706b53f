package telemetry

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// SessionExport is the JSON-serializable snapshot of a loaded session
// plus the derived series the dashboard computes from it.
type SessionExport struct {
	Track   string        `json:"track"`
	Driver  string        `json:"driver,omitempty"`
	Laps    []LapExport   `json:"laps"`
	Corners []Corner      `json:"corners,omitempty"`
	Delta   *DeltaSeries  `json:"delta,omitempty"`
	Grades  []GradeExport `json:"grades,omitempty"`
}

// LapExport is a JSON-friendly lap summary with derived fields.
type LapExport struct {
	LapNumber   int     `json:"lap_number"`
	LapTime     float64 `json:"lap_time_s"`
	TrackLength float64 `json:"track_length_m"`
	TopSpeed    float64 `json:"top_speed_mps"`
	Samples     int     `json:"samples"`
}

// GradeExport is a JSON-friendly corner grade with the worst-of-N
// representative grade resolved.
type GradeExport struct {
	Corner       int    `json:"corner"`
	Overall      string `json:"overall"`
	Braking      string `json:"braking,omitempty"`
	TrailBraking string `json:"trail_braking,omitempty"`
	MinSpeed     string `json:"min_speed,omitempty"`
	Throttle     string `json:"throttle,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// ExportSession converts a session to its exportable form. When the
// session has at least two laps, the delta between the first two selected
// laps is included.
func ExportSession(session *Session) *SessionExport {
	if session == nil {
		return &SessionExport{}
	}

	export := &SessionExport{
		Track:   session.Track,
		Driver:  session.Driver,
		Corners: session.Corners,
	}

	for _, lap := range session.Laps {
		export.Laps = append(export.Laps, LapExport{
			LapNumber:   lap.LapNumber,
			LapTime:     lap.LapTime,
			TrackLength: lap.TrackLength(),
			TopSpeed:    maxOf(lap.Speed),
			Samples:     lap.Len(),
		})
	}

	if len(session.Laps) >= 2 {
		if delta, err := ComputeDelta(session.Laps[0], session.Laps[1]); err == nil {
			export.Delta = delta
		}
	}

	for _, cg := range session.Grades {
		export.Grades = append(export.Grades, GradeExport{
			Corner:       cg.Corner,
			Overall:      string(cg.Overall()),
			Braking:      string(cg.Braking),
			TrailBraking: string(cg.TrailBraking),
			MinSpeed:     string(cg.MinSpeed),
			Throttle:     string(cg.Throttle),
			Notes:        cg.Notes,
		})
	}

	return export
}

// WriteJSON writes the export as indented JSON.
func (e *SessionExport) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}

// WriteSummaryTable writes a per-lap text summary, with mini-sector bests
// when at least two laps are present.
func WriteSummaryTable(w io.Writer, session *Session) {
	if session == nil || len(session.Laps) == 0 {
		fmt.Fprintln(w, "No laps in session")
		return
	}

	fmt.Fprintf(w, "%s — %d laps\n", session.Track, len(session.Laps))
	fmt.Fprintln(w, strings.Repeat("─", 64))
	fmt.Fprintf(w, "%-5s %-10s %-12s %-12s %-8s\n",
		"Lap", "Time", "Length", "Top speed", "Samples")
	fmt.Fprintln(w, strings.Repeat("─", 64))

	fastest := session.FastestLap()
	for _, lap := range session.Laps {
		marker := ""
		if lap == fastest && len(session.Laps) > 1 {
			marker = " *"
		}
		fmt.Fprintf(w, "%-5d %-10s %9.0f m  %7.1f km/h %8d%s\n",
			lap.LapNumber,
			FormatLapTime(lap.LapTime),
			lap.TrackLength(),
			maxOf(lap.Speed)*3.6,
			lap.Len(),
			marker,
		)
	}

	if len(session.Laps) >= 2 {
		ref := session.Laps[0]
		sectors := MiniSectors(ref.TrackLength(), 400)
		best := BestSectorTimes(session.Laps, sectors)

		fmt.Fprintf(w, "\nMini-sectors (%d × ~400 m), best of session:\n", len(sectors))
		for i, sec := range sectors {
			fmt.Fprintf(w, "  S%-3d %6.0f–%-6.0f %s\n",
				sec.Number, sec.Start, sec.End, FormatLapTime(best[i]))
		}
	}

	if len(session.Corners) > 0 {
		fmt.Fprintf(w, "\n%d corners", len(session.Corners))
		if len(session.Grades) > 0 {
			var worst Grade
			var worstCorner int
			for _, cg := range session.Grades {
				if o := cg.Overall(); o.Valid() && (worst == "" || o > worst) {
					worst = o
					worstCorner = cg.Corner
				}
			}
			if worst != "" {
				fmt.Fprintf(w, ", priority: T%d (%s)", worstCorner, worst)
			}
		}
		fmt.Fprintln(w)
	}
}

// FormatLapTime renders seconds as m:ss.mmm, or s.mmm under a minute.
func FormatLapTime(seconds float64) string {
	if seconds <= 0 {
		return "—"
	}
	if seconds < 60 {
		return fmt.Sprintf("%.3fs", seconds)
	}
	minutes := int(seconds) / 60
	return fmt.Sprintf("%d:%06.3f", minutes, seconds-float64(minutes*60))
}

func maxOf(vals []float64) float64 {
	var maxVal float64
	for _, v := range vals {
		if v > maxVal {
			maxVal = v
		}
	}
	return maxVal
}
