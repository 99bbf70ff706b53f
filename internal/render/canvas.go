package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Cell is one character cell of a layer.
type Cell struct {
	Rune  rune
	Color lipgloss.Color
}

// blank is the empty cell; compositing treats it as transparent.
var blank = Cell{Rune: ' '}

// Layer is a single drawing surface of cells. Out-of-bounds writes are
// silently dropped so draw code never needs its own bounds checks.
type Layer struct {
	width, height int
	cells         []Cell
}

func newLayer(width, height int) *Layer {
	l := &Layer{width: width, height: height}
	l.cells = make([]Cell, width*height)
	l.Clear()
	return l
}

// Size returns the layer dimensions.
func (l *Layer) Size() (int, int) { return l.width, l.height }

// Clear resets every cell to transparent.
func (l *Layer) Clear() {
	for i := range l.cells {
		l.cells[i] = blank
	}
}

// Set writes one cell. Writes outside the layer are dropped.
func (l *Layer) Set(x, y int, r rune, color lipgloss.Color) {
	if x < 0 || x >= l.width || y < 0 || y >= l.height {
		return
	}
	l.cells[y*l.width+x] = Cell{Rune: r, Color: color}
}

// At reads one cell; out-of-bounds reads return the blank cell.
func (l *Layer) At(x, y int) Cell {
	if x < 0 || x >= l.width || y < 0 || y >= l.height {
		return blank
	}
	return l.cells[y*l.width+x]
}

// Text writes a string horizontally starting at (x, y).
func (l *Layer) Text(x, y int, s string, color lipgloss.Color) {
	for i, r := range []rune(s) {
		l.Set(x+i, y, r, color)
	}
}

// Margins reserve rows/columns around the plot area for axes and labels.
type Margins struct {
	Top, Right, Bottom, Left int
}

// Canvas maintains two stacked drawing surfaces for one chart: a data
// layer repainted only when its declared dependencies change, and an
// overlay layer cleared and fully redrawn every interactive frame.
type Canvas struct {
	width, height int
	margins       Margins

	data    *Layer
	overlay *Layer

	// dataKey fingerprints the inputs the data layer was painted from.
	dataKey string
}

// NewCanvas creates a canvas with the given margins and zero size; call
// SetSize before drawing. A zero-size canvas is a legitimate transient
// state and every operation no-ops on it.
func NewCanvas(margins Margins) *Canvas {
	return &Canvas{margins: margins}
}

// SetSize re-measures the canvas. Both layers are cleared and resized
// synchronously so no stale or stretched content survives a resize; the
// data layer is invalidated and will repaint on the next Data call.
func (c *Canvas) SetSize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	if width == c.width && height == c.height && c.data != nil {
		return
	}
	c.width = width
	c.height = height
	c.data = newLayer(width, height)
	c.overlay = newLayer(width, height)
	c.dataKey = ""
}

// Size returns the outer dimensions.
func (c *Canvas) Size() (int, int) { return c.width, c.height }

// Inner returns the plot-area dimensions inside the margins. Either may
// be zero when the canvas is too small to draw in.
func (c *Canvas) Inner() (int, int) {
	w := c.width - c.margins.Left - c.margins.Right
	h := c.height - c.margins.Top - c.margins.Bottom
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return w, h
}

// Margins returns the configured margins.
func (c *Canvas) Margins() Margins { return c.margins }

// Ready reports whether the canvas has a drawable plot area.
func (c *Canvas) Ready() bool {
	w, h := c.Inner()
	return w > 0 && h > 0
}

// Data repaints the data layer only when key differs from the key of the
// previous paint. The key fingerprints the layer's dependencies (series
// identity, scales, corner zones); pointer motion must not change it.
func (c *Canvas) Data(key string, paint func(*Layer)) {
	if !c.Ready() {
		return
	}
	if key == c.dataKey {
		return
	}
	c.data.Clear()
	paint(c.data)
	c.dataKey = key
}

// Overlay clears and fully redraws the overlay layer. Overlay content is
// cheap (a cursor line, a few labels), so no diffing is attempted.
func (c *Canvas) Overlay(paint func(*Layer)) {
	if !c.Ready() {
		return
	}
	c.overlay.Clear()
	paint(c.overlay)
}

// Render composites the overlay over the data layer into a styled
// string. Overlay cells win wherever they are non-blank.
func (c *Canvas) Render() string {
	if c.width == 0 || c.height == 0 || c.data == nil {
		return ""
	}

	var b strings.Builder
	for y := 0; y < c.height; y++ {
		var run strings.Builder
		var runColor lipgloss.Color
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if runColor == "" {
				b.WriteString(run.String())
			} else {
				b.WriteString(lipgloss.NewStyle().Foreground(runColor).Render(run.String()))
			}
			run.Reset()
		}

		for x := 0; x < c.width; x++ {
			cell := c.overlay.At(x, y)
			if cell == blank {
				cell = c.data.At(x, y)
			}
			// Batch adjacent same-color cells into one styled run; a
			// styled call per cell dominates render cost otherwise.
			if run.Len() > 0 && cell.Color != runColor {
				flush()
			}
			runColor = cell.Color
			run.WriteRune(cell.Rune)
		}
		flush()
		if y < c.height-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// PlotX converts an inner plot-area x to an outer canvas x.
func (c *Canvas) PlotX(x int) int { return x + c.margins.Left }

// PlotY converts an inner plot-area y to an outer canvas y.
func (c *Canvas) PlotY(y int) int { return y + c.margins.Top }

// InnerX converts an outer canvas x to plot-area coordinates, reporting
// whether it falls inside the plot bounds horizontally.
func (c *Canvas) InnerX(x int) (int, bool) {
	ix := x - c.margins.Left
	w, _ := c.Inner()
	return ix, ix >= 0 && ix < w
}

// InnerY converts an outer canvas y to plot-area coordinates, reporting
// whether it falls inside the plot bounds vertically.
func (c *Canvas) InnerY(y int) (int, bool) {
	iy := y - c.margins.Top
	_, h := c.Inner()
	return iy, iy >= 0 && iy < h
}
