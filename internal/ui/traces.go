package ui

import (
	"fmt"
	"math"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lapline/lapline/internal/render"
	"github.com/lapline/lapline/internal/state"
	"github.com/lapline/lapline/internal/telemetry"
)

// Stacked trace chart proportions, in tenths of the content height.
const (
	speedShare = 4
	deltaShare = 3
)

// Pedal channel colors, dimmed variants for the comparison lap.
var (
	throttleColors = []lipgloss.Color{"#22C55E", "#14532D"}
	brakeColors    = []lipgloss.Color{"#EF4444", "#7F1D1D"}
)

var (
	dimColor    = lipgloss.Color("60")
	cursorColor = lipgloss.Color("#9D4EDD")
	bandColor   = lipgloss.Color("237")
	axisColor   = lipgloss.Color("243")
)

// TracesModel renders the stacked speed, delta and pedal charts over a
// shared distance axis. Hovering moves the shared cursor; dragging
// horizontally zooms every chart to the dragged distance range.
type TracesModel struct {
	store   *state.Store
	session *telemetry.Session
	delta   *telemetry.DeltaSeries

	width  int
	height int

	speed  *render.Canvas
	deltaC *render.Canvas
	pedals *render.Canvas

	// Content-local top row of each canvas, for mouse hit testing.
	speedTop  int
	deltaTop  int
	pedalsTop int

	dragging  bool
	dragStart int // inner column where the drag began
	dragCur   int
}

// NewTracesModel creates the traces view bound to the shared store.
func NewTracesModel(store *state.Store) TracesModel {
	side := render.Margins{Top: 1, Right: 2, Left: 8}
	bottom := render.Margins{Top: 1, Right: 2, Bottom: 1, Left: 8}
	return TracesModel{
		store:  store,
		speed:  render.NewCanvas(side),
		deltaC: render.NewCanvas(side),
		pedals: render.NewCanvas(bottom),
	}
}

// SetSize splits the content area into the three stacked charts.
func (m TracesModel) SetSize(width, height int) TracesModel {
	m.width = width
	m.height = height

	speedH := height * speedShare / 10
	deltaH := height * deltaShare / 10
	pedalsH := height - speedH - deltaH

	m.speedTop = 0
	m.deltaTop = speedH
	m.pedalsTop = speedH + deltaH

	m.speed.SetSize(width, speedH)
	m.deltaC.SetSize(width, deltaH)
	m.pedals.SetSize(width, pedalsH)
	return m
}

// UpdateData installs new session data.
func (m TracesModel) UpdateData(session *telemetry.Session, delta *telemetry.DeltaSeries) TracesModel {
	m.session = session
	m.delta = delta
	return m
}

// Update implements the sub-model update contract.
func (m TracesModel) Update(msg tea.Msg) (TracesModel, tea.Cmd) {
	mouse, ok := msg.(tea.MouseMsg)
	if !ok {
		return m, nil
	}

	canvas, top := m.canvasAt(mouse.Y)
	if canvas == nil {
		m.dragging = false
		m.store.ClearCursor()
		return m, nil
	}

	ix, inX := canvas.InnerX(mouse.X)
	_, inY := canvas.InnerY(mouse.Y - top)
	if !inX || !inY {
		m.dragging = false
		m.store.ClearCursor()
		return m, nil
	}

	xScale, ok := m.xScale(canvas)
	if !ok {
		return m, nil
	}

	switch mouse.Action {
	case tea.MouseActionPress:
		if mouse.Button == tea.MouseButtonLeft {
			m.dragging = true
			m.dragStart = ix
			m.dragCur = ix
		}
		m.store.SetCursorDistance(xScale.Invert(float64(ix)))

	case tea.MouseActionMotion:
		if m.dragging {
			m.dragCur = ix
		}
		m.store.SetCursorDistance(xScale.Invert(float64(ix)))

	case tea.MouseActionRelease:
		if m.dragging {
			m.dragging = false
			if abs(m.dragCur-m.dragStart) >= 2 {
				d0 := xScale.Invert(float64(m.dragStart))
				d1 := xScale.Invert(float64(m.dragCur))
				m.store.SetZoomRange(math.Min(d0, d1), math.Max(d0, d1))
			}
		}
	}

	return m, nil
}

// canvasAt maps a content-local row to the chart under it.
func (m TracesModel) canvasAt(y int) (*render.Canvas, int) {
	switch {
	case y >= m.pedalsTop:
		return m.pedals, m.pedalsTop
	case y >= m.deltaTop:
		return m.deltaC, m.deltaTop
	case y >= m.speedTop:
		return m.speed, m.speedTop
	}
	return nil, 0
}

// domain resolves the visible distance range: the zoom range when one is
// set, the full lap extent otherwise.
func (m TracesModel) domain(snap state.Snapshot) (float64, float64, bool) {
	if snap.Zoom != nil {
		return snap.Zoom.Min, snap.Zoom.Max, true
	}
	ref := m.referenceLap(snap)
	if ref == nil || ref.TrackLength() <= 0 {
		return 0, 0, false
	}
	return 0, ref.TrackLength(), true
}

// xScale builds the shared distance axis for one canvas using the
// current store state. Used on the input path, where no frame snapshot
// exists yet.
func (m TracesModel) xScale(canvas *render.Canvas) (render.Scale, bool) {
	snap := m.store.Snapshot()
	lo, hi, ok := m.domain(snap)
	if !ok {
		return render.Scale{}, false
	}
	innerW, _ := canvas.Inner()
	if innerW < 2 {
		return render.Scale{}, false
	}
	return render.NewScale(lo, hi, 0, float64(innerW-1)), true
}

func (m TracesModel) referenceLap(snap state.Snapshot) *telemetry.Series {
	if m.session == nil {
		return nil
	}
	if len(snap.SelectedLaps) > 0 {
		if lap := m.session.Lap(snap.SelectedLaps[0]); lap != nil {
			return lap
		}
	}
	if len(m.session.Laps) > 0 {
		return m.session.Laps[0]
	}
	return nil
}

// selectedLaps resolves the selected lap numbers to series, in
// selection order.
func (m TracesModel) selectedLaps(snap state.Snapshot) []*telemetry.Series {
	var laps []*telemetry.Series
	for _, n := range snap.SelectedLaps {
		if lap := m.session.Lap(n); lap != nil {
			laps = append(laps, lap)
		}
	}
	return laps
}

// View renders the three stacked charts for one frame.
func (m TracesModel) View(snap state.Snapshot) string {
	lo, hi, ok := m.domain(snap)
	if !ok || !m.speed.Ready() || !m.deltaC.Ready() || !m.pedals.Ready() {
		return centerText("No data", m.width, m.height)
	}

	laps := m.selectedLaps(snap)
	key := m.dataKey(snap, lo, hi)

	m.paintSpeed(key, laps, lo, hi)
	m.paintDelta(key, lo, hi)
	m.paintPedals(key, laps, lo, hi)

	m.overlayAll(snap, laps, lo, hi)

	return m.speed.Render() + "\n" + m.deltaC.Render() + "\n" + m.pedals.Render()
}

// dataKey fingerprints everything the data layers depend on. Cursor
// position is deliberately absent: pointer motion must not repaint data.
func (m TracesModel) dataKey(snap state.Snapshot, lo, hi float64) string {
	deltaKey := 0
	if m.delta != nil {
		deltaKey = m.delta.RefLap*1000 + m.delta.CmpLap
	}
	return fmt.Sprintf("laps=%v zoom=%.2f:%.2f delta=%d corner=%d size=%dx%d",
		snap.SelectedLaps, lo, hi, deltaKey, snap.SelectedCorner, m.width, m.height)
}

func (m *TracesModel) paintSpeed(key string, laps []*telemetry.Series, lo, hi float64) {
	m.speed.Data(key, func(l *render.Layer) {
		innerW, innerH := m.speed.Inner()
		xScale := render.NewScale(lo, hi, 0, float64(innerW-1))

		minV, maxV := speedRange(laps, lo, hi)
		yScale := render.NewScale(maxV, minV, 0, float64(innerH-1))

		mg := m.speed.Margins()
		m.paintCornerBands(l, xScale, innerH, mg.Left, mg.Top)

		for i, lap := range laps {
			dist, vals := sliceRange(lap.Distance, lap.Speed, lo, hi)
			dist, vals = telemetry.Downsample(dist, vals, innerW*2)
			render.PlotSeries(l, dist, vals, xScale, yScale, mg.Left, mg.Top, '•', render.LapColor(i))
		}

		l.Text(1, 0, "SPEED km/h", dimColor)
		l.Text(1, mg.Top, fmt.Sprintf("%5.0f", maxV*3.6), axisColor)
		l.Text(1, mg.Top+innerH-1, fmt.Sprintf("%5.0f", minV*3.6), axisColor)
	})
}

func (m *TracesModel) paintDelta(key string, lo, hi float64) {
	m.deltaC.Data(key, func(l *render.Layer) {
		innerW, innerH := m.deltaC.Inner()
		mg := m.deltaC.Margins()
		xScale := render.NewScale(lo, hi, 0, float64(innerW-1))

		m.paintCornerBands(l, xScale, innerH, mg.Left, mg.Top)

		l.Text(1, 0, "DELTA s", dimColor)
		if m.delta == nil || len(m.delta.Distance) == 0 {
			l.Text(mg.Left+1, mg.Top+innerH/2, "computing delta...", dimColor)
			return
		}

		maxAbs := m.delta.MaxAbsDelta()
		if maxAbs < 0.05 {
			maxAbs = 0.05
		}
		yScale := render.NewScale(maxAbs, -maxAbs, 0, float64(innerH-1))

		// Zero line behind the trace.
		zeroY := int(yScale.Apply(0) + 0.5)
		for x := 0; x < innerW; x++ {
			l.Set(mg.Left+x, mg.Top+zeroY, '─', bandColor)
		}

		// Column-wise paint so each cell takes its sign color.
		prevY := -1
		for x := 0; x < innerW; x++ {
			d := xScale.Invert(float64(x))
			if d < m.delta.Distance[0] || d > m.delta.Distance[len(m.delta.Distance)-1] {
				prevY = -1
				continue
			}
			v := telemetry.ValueAt(m.delta.Distance, m.delta.Delta, d)
			y := int(yScale.Apply(v) + 0.5)
			color := render.DeltaColor(v, maxAbs)
			if prevY >= 0 {
				step := 1
				if y < prevY {
					step = -1
				}
				for yy := prevY; yy != y; yy += step {
					l.Set(mg.Left+x, mg.Top+yy, '•', color)
				}
			}
			l.Set(mg.Left+x, mg.Top+y, '•', color)
			prevY = y
		}

		l.Text(1, mg.Top, fmt.Sprintf("%+5.2f", maxAbs), axisColor)
		l.Text(1, mg.Top+innerH-1, fmt.Sprintf("%+5.2f", -maxAbs), axisColor)
	})
}

func (m *TracesModel) paintPedals(key string, laps []*telemetry.Series, lo, hi float64) {
	m.pedals.Data(key, func(l *render.Layer) {
		innerW, innerH := m.pedals.Inner()
		mg := m.pedals.Margins()
		xScale := render.NewScale(lo, hi, 0, float64(innerW-1))
		yScale := render.NewScale(1, 0, 0, float64(innerH-1))

		m.paintCornerBands(l, xScale, innerH, mg.Left, mg.Top)

		for i, lap := range laps {
			if i >= len(throttleColors) {
				break
			}
			dist, thr := sliceRange(lap.Distance, lap.Throttle, lo, hi)
			dist, thr = telemetry.Downsample(dist, thr, innerW*2)
			render.PlotSeries(l, dist, thr, xScale, yScale, mg.Left, mg.Top, '·', throttleColors[i])

			dist, brk := sliceRange(lap.Distance, lap.Brake, lo, hi)
			dist, brk = telemetry.Downsample(dist, brk, innerW*2)
			render.PlotSeries(l, dist, brk, xScale, yScale, mg.Left, mg.Top, '·', brakeColors[i])
		}

		l.Text(1, 0, "PEDALS", dimColor)
		l.Text(1, mg.Top, " 100%", axisColor)
		l.Text(1, mg.Top+innerH-1, "   0%", axisColor)

		// Distance axis under the bottom chart only.
		l.Text(mg.Left, mg.Top+innerH, fmt.Sprintf("%.0f m", lo), axisColor)
		hiLabel := fmt.Sprintf("%.0f m", hi)
		l.Text(mg.Left+innerW-len(hiLabel), mg.Top+innerH, hiLabel, axisColor)
	})
}

// paintCornerBands shades the corner zones so braking references line up
// across all three charts.
func (m *TracesModel) paintCornerBands(l *render.Layer, xScale render.Scale, innerH, offX, offY int) {
	if m.session == nil {
		return
	}
	innerW := int(xScale.RangeMax) + 1
	for _, c := range m.session.Corners {
		x0 := int(xScale.Apply(c.EntryDistance) + 0.5)
		x1 := int(xScale.Apply(c.ExitDistance) + 0.5)
		if x1 < 0 || x0 >= innerW {
			continue
		}
		for x := max(x0, 0); x <= min(x1, innerW-1); x++ {
			for y := 0; y < innerH; y++ {
				l.Set(offX+x, offY+y, '░', bandColor)
			}
		}
		// Corner number at the apex column.
		xa := int(xScale.Apply(c.ApexDistance) + 0.5)
		if xa >= 0 && xa < innerW {
			l.Text(offX+xa, offY, fmt.Sprintf("T%d", c.Number), axisColor)
		}
	}
}

// overlayAll redraws the interactive layer of every chart: the shared
// cursor line, drag selection, and value readouts.
func (m *TracesModel) overlayAll(snap state.Snapshot, laps []*telemetry.Series, lo, hi float64) {
	type chart struct {
		canvas  *render.Canvas
		readout func(dist float64) string
	}

	charts := []chart{
		{m.speed, func(d float64) string {
			out := ""
			for i, lap := range laps {
				if i > 0 {
					out += "  "
				}
				v := telemetry.ValueAt(lap.Distance, lap.Speed, d)
				out += fmt.Sprintf("L%d %3.0f", lap.LapNumber, v*3.6)
			}
			return out
		}},
		{m.deltaC, func(d float64) string {
			if m.delta == nil || len(m.delta.Distance) == 0 {
				return ""
			}
			v := telemetry.ValueAt(m.delta.Distance, m.delta.Delta, d)
			return fmt.Sprintf("Δ %+.3fs", v)
		}},
		{m.pedals, func(d float64) string {
			if len(laps) == 0 {
				return ""
			}
			thr := telemetry.ValueAt(laps[0].Distance, laps[0].Throttle, d)
			brk := telemetry.ValueAt(laps[0].Distance, laps[0].Brake, d)
			return fmt.Sprintf("thr %3.0f%%  brk %3.0f%%", thr*100, brk*100)
		}},
	}

	for _, ch := range charts {
		canvas, readout := ch.canvas, ch.readout
		canvas.Overlay(func(l *render.Layer) {
			innerW, innerH := canvas.Inner()
			mg := canvas.Margins()
			xScale := render.NewScale(lo, hi, 0, float64(innerW-1))

			if m.dragging {
				x0, x1 := m.dragStart, m.dragCur
				if x1 < x0 {
					x0, x1 = x1, x0
				}
				for x := x0; x <= x1; x++ {
					render.VLine(l, x, innerH, mg.Left, mg.Top, '▒', cursorColor)
				}
			}

			if !snap.HasCursor || snap.CursorDistance < lo || snap.CursorDistance > hi {
				return
			}
			x := int(xScale.Apply(snap.CursorDistance) + 0.5)
			render.VLine(l, x, innerH, mg.Left, mg.Top, '│', cursorColor)

			text := readout(snap.CursorDistance)
			if text == "" {
				return
			}
			// Readout in the title row, flipped to the left of the
			// cursor when it would overflow the right edge.
			tx := mg.Left + x + 2
			if tx+len(text) > mg.Left+innerW {
				tx = mg.Left + x - len(text) - 1
			}
			l.Text(tx, 0, text, cursorColor)
		})
	}
}

// speedRange finds the plotted y domain with a small headroom band.
func speedRange(laps []*telemetry.Series, lo, hi float64) (float64, float64) {
	minV, maxV := math.Inf(1), math.Inf(-1)
	for _, lap := range laps {
		_, vals := sliceRange(lap.Distance, lap.Speed, lo, hi)
		for _, v := range vals {
			minV = math.Min(minV, v)
			maxV = math.Max(maxV, v)
		}
	}
	if minV > maxV {
		return 0, 1
	}
	span := maxV - minV
	if span <= 0 {
		span = 1
	}
	return minV - span*0.05, maxV + span*0.05
}

// sliceRange clips an index-aligned series pair to a distance range,
// keeping one sample of margin on each side so traces reach the plot
// edges.
func sliceRange(dist, vals []float64, lo, hi float64) ([]float64, []float64) {
	if len(dist) == 0 {
		return nil, nil
	}
	i0 := telemetry.LookupDistance(dist, lo).Index
	i1 := telemetry.LookupDistance(dist, hi).Index + 2
	if i1 > len(dist) {
		i1 = len(dist)
	}
	return dist[i0:i1], vals[i0:i1]
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
