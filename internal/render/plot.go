package render

import "github.com/charmbracelet/lipgloss"

// Plot helpers shared by the chart views. All coordinates are plot-area
// (inner) coordinates; the offset parameters place them on the layer.

// PlotSeries draws a distance-indexed series as a connected trace: one
// glyph per column at the scaled value, with vertical fill between
// consecutive columns so steep sections stay visually connected.
func PlotSeries(l *Layer, dist, vals []float64, xScale, yScale Scale, offX, offY int, glyph rune, color lipgloss.Color) {
	if len(dist) == 0 || len(vals) != len(dist) {
		return
	}

	prevX, prevY := -1, 0
	for i := range dist {
		x := int(xScale.Apply(dist[i]) + 0.5)
		y := int(yScale.Apply(vals[i]) + 0.5)

		if prevX >= 0 && x >= prevX {
			// Fill the vertical gap to the previous column.
			fillColumnSpan(l, prevX, prevY, x, y, offX, offY, glyph, color)
		} else {
			l.Set(offX+x, offY+y, glyph, color)
		}
		prevX, prevY = x, y
	}
}

// fillColumnSpan connects (x0,y0)..(x1,y1) column by column.
func fillColumnSpan(l *Layer, x0, y0, x1, y1, offX, offY int, glyph rune, color lipgloss.Color) {
	if x1 == x0 {
		drawVertical(l, x1, y0, y1, offX, offY, glyph, color)
		return
	}
	for x := x0 + 1; x <= x1; x++ {
		t0 := float64(x-1-x0) / float64(x1-x0)
		t1 := float64(x-x0) / float64(x1-x0)
		ya := y0 + int(t0*float64(y1-y0)+0.5)
		yb := y0 + int(t1*float64(y1-y0)+0.5)
		drawVertical(l, x, ya, yb, offX, offY, glyph, color)
	}
}

func drawVertical(l *Layer, x, y0, y1, offX, offY int, glyph rune, color lipgloss.Color) {
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		l.Set(offX+x, offY+y, glyph, color)
	}
}

// DrawPolyline draws projected track geometry by stepping along each
// segment, used by the map views where both coordinates vary freely.
// Colors are per-point; segment cells take the color of their start
// point.
func DrawPolyline(l *Layer, xs, ys []float64, colors []lipgloss.Color, offX, offY int, glyph rune) {
	if len(xs) < 2 || len(ys) != len(xs) {
		return
	}

	for i := 1; i < len(xs); i++ {
		color := lipgloss.Color("")
		if colors != nil {
			color = colors[i-1]
		}
		drawSegment(l, xs[i-1], ys[i-1], xs[i], ys[i], offX, offY, glyph, color)
	}
}

func drawSegment(l *Layer, x0, y0, x1, y1 float64, offX, offY int, glyph rune, color lipgloss.Color) {
	dx := x1 - x0
	dy := y1 - y0
	steps := int(maxAbsF(dx, dy)) + 1
	for s := 0; s <= steps; s++ {
		t := float64(s) / float64(steps)
		x := int(x0 + dx*t + 0.5)
		y := int(y0 + dy*t + 0.5)
		l.Set(offX+x, offY+y, glyph, color)
	}
}

// VLine draws a vertical line through the full plot height, used for
// cursor crosshairs and corner boundaries.
func VLine(l *Layer, x, height, offX, offY int, glyph rune, color lipgloss.Color) {
	for y := 0; y < height; y++ {
		l.Set(offX+x, offY+y, glyph, color)
	}
}

func maxAbsF(a, b float64) float64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	if a > b {
		return a
	}
	return b
}
