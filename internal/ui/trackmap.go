package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lapline/lapline/internal/geo"
	"github.com/lapline/lapline/internal/render"
	"github.com/lapline/lapline/internal/state"
	"github.com/lapline/lapline/internal/telemetry"
)

// MapColorMode selects which channel colors the track ribbon.
type MapColorMode int

const (
	MapColorSpeed MapColorMode = iota
	MapColorDelta
)

// Terminal cells are roughly twice as tall as wide; projecting into a
// doubled vertical resolution and halving y keeps the track shape true.
const cellAspect = 2

// mapPadding keeps the ribbon off the plot border, in cells.
const mapPadding = 2.0

// TrackMapModel renders the lap as a top-down track map colored by
// speed or delta. The shared cursor appears as a position marker on the
// ribbon; hovering the ribbon moves it for every other chart.
type TrackMapModel struct {
	store   *state.Store
	session *telemetry.Session
	delta   *telemetry.DeltaSeries

	width  int
	height int

	colorMode MapColorMode
	canvas    *render.Canvas

	// Cached projected geometry of the reference lap, keyed by lap and
	// canvas size. Distance is index-aligned with the projection.
	projKey  string
	projDist []float64
	proj     geo.Projection
}

// NewTrackMapModel creates the map view bound to the shared store.
func NewTrackMapModel(store *state.Store) TrackMapModel {
	return TrackMapModel{
		store:  store,
		canvas: render.NewCanvas(render.Margins{Top: 1, Right: 2, Bottom: 1, Left: 2}),
	}
}

// SetSize implements the sub-model sizing contract.
func (m TrackMapModel) SetSize(width, height int) TrackMapModel {
	m.width = width
	m.height = height
	m.canvas.SetSize(width, height)
	return m
}

// UpdateData installs new session data.
func (m TrackMapModel) UpdateData(session *telemetry.Session, delta *telemetry.DeltaSeries) TrackMapModel {
	m.session = session
	m.delta = delta
	return m
}

// Update implements the sub-model update contract.
func (m TrackMapModel) Update(msg tea.Msg) (TrackMapModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "m" {
			if m.colorMode == MapColorSpeed {
				m.colorMode = MapColorDelta
			} else {
				m.colorMode = MapColorSpeed
			}
		}

	case tea.MouseMsg:
		ix, inX := m.canvas.InnerX(msg.X)
		iy, inY := m.canvas.InnerY(msg.Y)
		if !inX || !inY {
			m.store.ClearCursor()
			break
		}
		// The projection cache lives on the model returned from
		// Update; View works on a copy, so hit testing refreshes here.
		if ref := m.currentReference(); ref != nil && ref.Len() >= 2 {
			m.refreshProjection(ref)
		}
		if dist, ok := m.nearestDistance(ix, iy); ok {
			m.store.SetCursorDistance(dist)
		} else {
			m.store.ClearCursor()
		}
	}
	return m, nil
}

// currentReference resolves the reference lap from the live store state.
func (m *TrackMapModel) currentReference() *telemetry.Series {
	if m.session == nil {
		return nil
	}
	snap := m.store.Snapshot()
	if ref := m.session.Lap(firstOr(snap.SelectedLaps, 0)); ref != nil {
		return ref
	}
	return m.session.FastestLap()
}

// nearestDistance finds the lap distance of the projected sample closest
// to an inner cell position, within a small pick radius.
func (m *TrackMapModel) nearestDistance(ix, iy int) (float64, bool) {
	if len(m.projDist) == 0 {
		return 0, false
	}

	const pickRadius = 3.0
	best := pickRadius * pickRadius
	bestDist := 0.0
	found := false

	px := float64(ix)
	py := float64(iy)
	for i := range m.projDist {
		dx := m.proj.X[i] - px
		dy := m.proj.Y[i]/cellAspect - py
		d2 := dx*dx + dy*dy
		if d2 < best {
			best = d2
			bestDist = m.projDist[i]
			found = true
		}
	}
	return bestDist, found
}

// refreshProjection re-projects the reference lap when the lap or the
// canvas size changed. The projection is shared by painting and by
// mouse hit testing, so both agree on geometry.
func (m *TrackMapModel) refreshProjection(ref *telemetry.Series) {
	innerW, innerH := m.canvas.Inner()
	key := fmt.Sprintf("lap=%d %dx%d", ref.LapNumber, innerW, innerH)
	if key == m.projKey {
		return
	}

	// One LTTB selection, applied to every channel, so distance, lat
	// and lon stay index-aligned after the reduction.
	idx := telemetry.DownsampleIndices(ref.Distance, ref.Latitude, innerW*4)
	dist := telemetry.Pick(ref.Distance, idx)
	lat := telemetry.Pick(ref.Latitude, idx)
	lon := telemetry.Pick(ref.Longitude, idx)

	m.proj = geo.Project(lat, lon, float64(innerW), float64(innerH*cellAspect), mapPadding)
	m.projDist = dist
	m.projKey = key
}

// View renders the map for one frame.
func (m TrackMapModel) View(snap state.Snapshot) string {
	if !m.canvas.Ready() || m.session == nil {
		return centerText("No data", m.width, m.height)
	}
	ref := m.session.Lap(firstOr(snap.SelectedLaps, 0))
	if ref == nil {
		ref = m.session.FastestLap()
	}
	if ref == nil || ref.Len() < 2 {
		return centerText("No data", m.width, m.height)
	}

	m.refreshProjection(ref)

	deltaKey := 0
	if m.delta != nil {
		deltaKey = m.delta.RefLap*1000 + m.delta.CmpLap
	}
	key := fmt.Sprintf("%s mode=%d delta=%d corner=%d",
		m.projKey, m.colorMode, deltaKey, snap.SelectedCorner)

	m.canvas.Data(key, func(l *render.Layer) {
		m.paintRibbon(l, ref, snap.SelectedCorner)
	})

	m.canvas.Overlay(func(l *render.Layer) {
		m.paintCursor(l, ref, snap)
	})

	return m.canvas.Render()
}

func (m *TrackMapModel) paintRibbon(l *render.Layer, ref *telemetry.Series, selectedCorner int) {
	mg := m.canvas.Margins()

	colors := m.ribbonColors(ref)
	ys := make([]float64, len(m.proj.Y))
	for i, y := range m.proj.Y {
		ys[i] = y / cellAspect
	}
	render.DrawPolyline(l, m.proj.X, ys, colors, mg.Left, mg.Top, '█')

	// Start/finish marker at the first sample.
	if len(m.proj.X) > 0 {
		l.Set(mg.Left+int(m.proj.X[0]+0.5), mg.Top+int(ys[0]+0.5), 'S', lipgloss.Color("#FFFFFF"))
	}

	// Apex markers, the selected corner brightened.
	for _, c := range m.session.Corners {
		x, y, ok := m.positionAt(c.ApexDistance)
		if !ok {
			continue
		}
		color := axisColor
		if c.Number == selectedCorner {
			color = lipgloss.Color("#FFFFFF")
		}
		l.Text(mg.Left+x+1, mg.Top+y, fmt.Sprintf("T%d", c.Number), color)
	}

	var title string
	switch m.colorMode {
	case MapColorSpeed:
		title = fmt.Sprintf("TRACK · lap %d · colored by speed", ref.LapNumber)
	case MapColorDelta:
		title = fmt.Sprintf("TRACK · lap %d · colored by delta", ref.LapNumber)
	}
	l.Text(1, 0, title, dimColor)
}

// ribbonColors computes the per-point classification of the ribbon.
func (m *TrackMapModel) ribbonColors(ref *telemetry.Series) []lipgloss.Color {
	colors := make([]lipgloss.Color, len(m.projDist))

	switch m.colorMode {
	case MapColorDelta:
		if m.delta == nil || len(m.delta.Distance) == 0 {
			for i := range colors {
				colors[i] = dimColor
			}
			return colors
		}
		maxAbs := m.delta.MaxAbsDelta()
		for i, d := range m.projDist {
			v := telemetry.ValueAt(m.delta.Distance, m.delta.Delta, d)
			colors[i] = render.DeltaColor(v, maxAbs)
		}

	default:
		minV, maxV := speedRange([]*telemetry.Series{ref}, 0, ref.TrackLength())
		for i, d := range m.projDist {
			v := telemetry.ValueAt(ref.Distance, ref.Speed, d)
			colors[i] = render.SpeedColor(v, minV, maxV)
		}
	}
	return colors
}

func (m *TrackMapModel) paintCursor(l *render.Layer, ref *telemetry.Series, snap state.Snapshot) {
	if !snap.HasCursor {
		return
	}
	x, y, ok := m.positionAt(snap.CursorDistance)
	if !ok {
		return
	}
	mg := m.canvas.Margins()
	l.Set(mg.Left+x, mg.Top+y, '●', cursorColor)

	label := fmt.Sprintf("%.0f m", snap.CursorDistance)
	if c := telemetry.CornerAt(m.session.Corners, snap.CursorDistance); c != nil {
		label += fmt.Sprintf(" · T%d", c.Number)
	}
	v := telemetry.ValueAt(ref.Distance, ref.Speed, snap.CursorDistance)
	label += fmt.Sprintf(" · %.0f km/h", v*3.6)

	innerW, _ := m.canvas.Inner()
	tx := mg.Left + x + 2
	if tx+len(label) > mg.Left+innerW {
		tx = mg.Left + x - len(label) - 1
	}
	l.Text(tx, y+mg.Top-1, label, cursorColor)
}

// positionAt interpolates the projected cell position at a lap distance.
func (m *TrackMapModel) positionAt(distance float64) (int, int, bool) {
	if len(m.projDist) == 0 {
		return 0, 0, false
	}
	lk := telemetry.LookupDistance(m.projDist, distance)
	x := lk.Value(m.proj.X)
	y := lk.Value(m.proj.Y) / cellAspect
	return int(x + 0.5), int(y + 0.5), true
}

func firstOr(vals []int, fallback int) int {
	if len(vals) > 0 {
		return vals[0]
	}
	return fallback
}
