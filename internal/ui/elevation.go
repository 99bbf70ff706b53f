package ui

import (
	"fmt"
	"math"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lapline/lapline/internal/geo"
	"github.com/lapline/lapline/internal/render"
	"github.com/lapline/lapline/internal/state"
	"github.com/lapline/lapline/internal/telemetry"
)

// Oblique projection constants: the ground-plane y axis is compressed
// and sheared so height differences read clearly in cells.
const (
	obliqueShear   = 0.45
	obliqueYSquash = 0.5
)

var exaggerationSteps = []float64{1, geo.DefaultElevationExaggeration, 6}

// ElevationModel renders the lap as an oblique 3-D ribbon with the
// elevation axis exaggerated, colored by altitude.
type ElevationModel struct {
	store   *state.Store
	session *telemetry.Session
	delta   *telemetry.DeltaSeries

	width  int
	height int

	exaggerationIdx int
	canvas          *render.Canvas

	// Cached screen-space geometry, index-aligned with projDist.
	projKey  string
	projDist []float64
	screenX  []float64
	screenY  []float64
	altitude []float64
}

// NewElevationModel creates the elevation view bound to the shared store.
func NewElevationModel(store *state.Store) ElevationModel {
	return ElevationModel{
		store:           store,
		exaggerationIdx: 1,
		canvas:          render.NewCanvas(render.Margins{Top: 1, Right: 2, Bottom: 1, Left: 2}),
	}
}

// SetSize implements the sub-model sizing contract.
func (m ElevationModel) SetSize(width, height int) ElevationModel {
	m.width = width
	m.height = height
	m.canvas.SetSize(width, height)
	return m
}

// UpdateData installs new session data.
func (m ElevationModel) UpdateData(session *telemetry.Session, delta *telemetry.DeltaSeries) ElevationModel {
	m.session = session
	m.delta = delta
	return m
}

// Update implements the sub-model update contract.
func (m ElevationModel) Update(msg tea.Msg) (ElevationModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "x" {
			m.exaggerationIdx = (m.exaggerationIdx + 1) % len(exaggerationSteps)
		}

	case tea.MouseMsg:
		ix, inX := m.canvas.InnerX(msg.X)
		iy, inY := m.canvas.InnerY(msg.Y)
		if !inX || !inY {
			m.store.ClearCursor()
			break
		}
		// Same cache discipline as the track map: View sees a copy, so
		// the input path owns the projection refresh.
		if ref := m.currentReference(); ref != nil && ref.Len() >= 2 && ref.HasAltitude() {
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

func (m *ElevationModel) currentReference() *telemetry.Series {
	if m.session == nil {
		return nil
	}
	snap := m.store.Snapshot()
	if ref := m.session.Lap(firstOr(snap.SelectedLaps, 0)); ref != nil {
		return ref
	}
	return m.session.FastestLap()
}

func (m *ElevationModel) nearestDistance(ix, iy int) (float64, bool) {
	if len(m.projDist) == 0 {
		return 0, false
	}
	const pickRadius = 3.0
	best := pickRadius * pickRadius
	bestDist := 0.0
	found := false
	for i := range m.projDist {
		dx := m.screenX[i] - float64(ix)
		dy := m.screenY[i] - float64(iy)
		d2 := dx*dx + dy*dy
		if d2 < best {
			best = d2
			bestDist = m.projDist[i]
			found = true
		}
	}
	return bestDist, found
}

// refreshProjection rebuilds the oblique screen geometry when the lap,
// the exaggeration, or the canvas size changed.
func (m *ElevationModel) refreshProjection(ref *telemetry.Series) {
	innerW, innerH := m.canvas.Inner()
	exag := exaggerationSteps[m.exaggerationIdx]
	key := fmt.Sprintf("lap=%d exag=%.1f %dx%d", ref.LapNumber, exag, innerW, innerH)
	if key == m.projKey {
		return
	}

	idx := telemetry.DownsampleIndices(ref.Distance, ref.Latitude, innerW*4)
	dist := telemetry.Pick(ref.Distance, idx)
	lat := telemetry.Pick(ref.Latitude, idx)
	lon := telemetry.Pick(ref.Longitude, idx)
	alt := telemetry.Pick(ref.Altitude, idx)

	p3 := geo.Project3D(lat, lon, alt, exag)

	// Oblique world-to-screen: shear the depth axis into x, squash it
	// in y, and let altitude push points up.
	sx := make([]float64, len(p3.X))
	sy := make([]float64, len(p3.X))
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for i := range p3.X {
		x := p3.X[i] + p3.Y[i]*obliqueShear
		y := p3.Y[i]*obliqueYSquash - p3.Z[i]
		sx[i], sy[i] = x, y
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}

	// Fit into the plot area with uniform scale, vertical cell aspect
	// folded in.
	spanX := maxX - minX
	spanY := (maxY - minY) / cellAspect
	if spanX <= 0 {
		spanX = 1
	}
	if spanY <= 0 {
		spanY = 1
	}
	scale := math.Min(
		(float64(innerW)-2*mapPadding)/spanX,
		(float64(innerH)-2*mapPadding/cellAspect)/spanY,
	)
	offX := (float64(innerW) - spanX*scale) / 2
	offY := (float64(innerH) - spanY*scale) / 2
	for i := range sx {
		sx[i] = offX + (sx[i]-minX)*scale
		sy[i] = offY + (sy[i]-minY)/cellAspect*scale
	}

	m.projDist = dist
	m.screenX = sx
	m.screenY = sy
	m.altitude = alt
	m.projKey = key
}

// View renders the elevation ribbon for one frame.
func (m ElevationModel) View(snap state.Snapshot) string {
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
	if !ref.HasAltitude() {
		return centerText("No elevation channel in this lap", m.width, m.height)
	}

	m.refreshProjection(ref)

	m.canvas.Data(m.projKey, func(l *render.Layer) {
		m.paintRibbon(l, ref)
	})

	m.canvas.Overlay(func(l *render.Layer) {
		m.paintCursor(l, snap)
	})

	return m.canvas.Render()
}

func (m *ElevationModel) paintRibbon(l *render.Layer, ref *telemetry.Series) {
	mg := m.canvas.Margins()

	minAlt, maxAlt := math.Inf(1), math.Inf(-1)
	for _, a := range m.altitude {
		minAlt = math.Min(minAlt, a)
		maxAlt = math.Max(maxAlt, a)
	}

	pointColors := make([]lipgloss.Color, len(m.altitude))
	for i, a := range m.altitude {
		pointColors[i] = render.SpeedColor(a, minAlt, maxAlt)
	}
	render.DrawPolyline(l, m.screenX, m.screenY, pointColors, mg.Left, mg.Top, '█')

	exag := exaggerationSteps[m.exaggerationIdx]
	l.Text(1, 0, fmt.Sprintf("ELEVATION · lap %d · %.0f–%.0f m · %.0fx vertical",
		ref.LapNumber, minAlt, maxAlt, exag), dimColor)
}

func (m *ElevationModel) paintCursor(l *render.Layer, snap state.Snapshot) {
	if !snap.HasCursor || len(m.projDist) == 0 {
		return
	}
	mg := m.canvas.Margins()
	lk := telemetry.LookupDistance(m.projDist, snap.CursorDistance)
	x := int(lk.Value(m.screenX) + 0.5)
	y := int(lk.Value(m.screenY) + 0.5)
	l.Set(mg.Left+x, mg.Top+y, '●', cursorColor)

	alt := lk.Value(m.altitude)
	label := fmt.Sprintf("%.0f m · alt %.1f m", snap.CursorDistance, alt)
	innerW, _ := m.canvas.Inner()
	tx := mg.Left + x + 2
	if tx+len(label) > mg.Left+innerW {
		tx = mg.Left + x - len(label) - 1
	}
	l.Text(tx, mg.Top+y-1, label, cursorColor)
}
