package render

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color classification for telemetry values. One convention everywhere:
// negative delta = reference faster = gaining = green; positive delta =
// reference slower = losing = red. All functions clamp out-of-range
// inputs and never fail.

// LapPalette is Paul Tol's qualitative palette, colorblind-safe, used to
// give each selected lap a stable series color.
var LapPalette = []string{
	"#4477AA", // blue
	"#EE6677", // rose
	"#228833", // green
	"#CCBB44", // olive
	"#66CCEE", // cyan
	"#AA3377", // purple
	"#BBBBBB", // grey
	"#EE8866", // orange
}

// LapColor returns the series color for a lap slot, cycling the palette.
func LapColor(slot int) lipgloss.Color {
	if slot < 0 {
		slot = -slot
	}
	return lipgloss.Color(LapPalette[slot%len(LapPalette)])
}

// Diverging delta scale endpoints.
var (
	deltaGaining = mustHex("#22C55E") // reference faster
	deltaNeutral = mustHex("#8A8A8A")
	deltaLosing  = mustHex("#EF4444") // reference slower
)

// Sequential speed scale endpoints (slow -> fast).
var (
	speedSlow = mustHex("#3B4CC0")
	speedMid  = mustHex("#CCBB44")
	speedFast = mustHex("#EE6677")
)

// Grade letter palette. E shares D's color; the analysis backend emits
// A-D and F in practice.
var gradeColors = map[byte]string{
	'A': "#22C55E",
	'B': "#84CC16",
	'C': "#EAB308",
	'D': "#F97316",
	'E': "#F97316",
	'F': "#EF4444",
}

// DeltaColor maps a signed time delta onto the diverging scale,
// normalized by maxAbs (the series' largest absolute delta). maxAbs <= 0
// yields the neutral color.
func DeltaColor(delta, maxAbs float64) lipgloss.Color {
	if maxAbs <= 0 {
		return toLipgloss(deltaNeutral)
	}
	t := delta / maxAbs
	t = clamp(t, -1, 1)

	var c colorful.Color
	if t < 0 {
		c = deltaNeutral.BlendLuv(deltaGaining, -t)
	} else {
		c = deltaNeutral.BlendLuv(deltaLosing, t)
	}
	return toLipgloss(c)
}

// SpeedColor maps a speed onto the sequential scale normalized to the
// series' own [min, max] extent. A degenerate extent yields the mid
// color.
func SpeedColor(speed, minSpeed, maxSpeed float64) lipgloss.Color {
	span := maxSpeed - minSpeed
	if span <= 0 {
		return toLipgloss(speedMid)
	}
	t := clamp((speed-minSpeed)/span, 0, 1)

	var c colorful.Color
	if t < 0.5 {
		c = speedSlow.BlendLuv(speedMid, t*2)
	} else {
		c = speedMid.BlendLuv(speedFast, (t-0.5)*2)
	}
	return toLipgloss(c)
}

// GradeColor returns the fixed color for a letter grade. Unknown or
// absent grades get a muted grey.
func GradeColor(grade string) lipgloss.Color {
	if len(grade) == 1 {
		if hex, ok := gradeColors[grade[0]]; ok {
			return lipgloss.Color(hex)
		}
	}
	return lipgloss.Color("60")
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func toLipgloss(c colorful.Color) lipgloss.Color {
	return lipgloss.Color(c.Clamped().Hex())
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(fmt.Sprintf("bad palette hex %q: %v", s, err))
	}
	return c
}
