// Package ui provides the terminal dashboard using Bubble Tea.
package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lapline/lapline/internal/state"
	"github.com/lapline/lapline/internal/telemetry"
	"github.com/lapline/lapline/internal/version"
)

// ViewMode selects the active chart view.
type ViewMode int

const (
	ViewTraces ViewMode = iota
	ViewTrackMap
	ViewElevation
	ViewCorners
)

const viewCount = 4

// Header is 2 lines (title + tabs), footer is 2 (status + help).
const (
	headerLines = 2
	footerLines = 2
)

// Msg types for Bubble Tea
type (
	// SessionLoadedMsg carries an asynchronously loaded session. Path
	// identifies the request so superseded loads can be discarded.
	SessionLoadedMsg struct {
		Path    string
		Session *telemetry.Session
		Err     error
	}

	// deltaComputedMsg carries an asynchronously computed delta series,
	// keyed by the lap pair it was requested for.
	deltaComputedMsg struct {
		refLap int
		cmpLap int
		delta  *telemetry.DeltaSeries
		err    error
	}
)

// Model is the root Bubble Tea model. It owns the session data, the
// shared interaction store, and the chart view sub-models.
type Model struct {
	store *state.Store

	// UI state
	viewMode ViewMode
	width    int
	height   int
	ready    bool

	// Session data
	session     *telemetry.Session
	sessionPath string // identity key for in-flight loads
	loadErr     error
	loading     bool

	delta *telemetry.DeltaSeries

	// preferredLaps overrides the default lap selection on session
	// commit, from the -ref/-cmp flags.
	preferredLaps []int
	initCmd       tea.Cmd

	// Sub-models
	traces    TracesModel
	trackMap  TrackMapModel
	elevation ElevationModel
	corners   CornersModel
}

// New creates the root model. The store is injected so tests and
// headless tooling can observe interaction state from outside.
func New(store *state.Store) Model {
	return Model{
		store:     store,
		traces:    NewTracesModel(store),
		trackMap:  NewTrackMapModel(store),
		elevation: NewElevationModel(store),
		corners:   NewCornersModel(store),
	}
}

// LoadSession returns a command that loads a session file off the UI
// goroutine.
func LoadSession(path string) tea.Cmd {
	return func() tea.Msg {
		session, err := telemetry.LoadSession(path)
		return SessionLoadedMsg{Path: path, Session: session, Err: err}
	}
}

// WithSessionFile arranges for the session file to be loaded when the
// program starts. Superseded loads are recognized by path.
func (m Model) WithSessionFile(path string) Model {
	m.sessionPath = path
	m.loading = true
	m.initCmd = LoadSession(path)
	return m
}

// WithSession installs an already-loaded session (demo mode).
func (m Model) WithSession(session *telemetry.Session) Model {
	m.initCmd = tea.Batch(m.commitSession(session)...)
	return m
}

// WithLapSelection overrides the default lap pair chosen when a session
// commits. Unknown lap numbers are ignored at commit time.
func (m Model) WithLapSelection(ref, cmp int) Model {
	m.preferredLaps = []int{ref, cmp}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.initCmd
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "1", "t":
			m.viewMode = ViewTraces
		case "2", "g":
			m.viewMode = ViewTrackMap
		case "3", "e":
			m.viewMode = ViewElevation
		case "4", "c":
			m.viewMode = ViewCorners

		case "tab":
			m.viewMode = (m.viewMode + 1) % viewCount

		case "[", "]":
			if cmd := m.cycleComparisonLap(msg.String() == "]"); cmd != nil {
				cmds = append(cmds, cmd)
			}

		case "0", "esc":
			m.store.ClearZoom()

		default:
			cmds = append(cmds, m.updateActiveView(msg))
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.propagateSize()

	case tea.MouseMsg:
		// Translate to content-local coordinates before dispatch. A
		// pointer over the header or footer clears the cursor, same as
		// leaving a plot area does.
		local := msg
		local.Y -= headerLines
		if local.Y < 0 || local.Y >= m.contentHeight() {
			m.store.ClearCursor()
		} else {
			cmds = append(cmds, m.updateActiveView(local))
		}

	case SessionLoadedMsg:
		if msg.Path != m.sessionPath {
			// A newer load superseded this one; drop it.
			break
		}
		m.loading = false
		if msg.Err != nil {
			m.loadErr = msg.Err
			break
		}
		m.loadErr = nil
		cmds = append(cmds, m.commitSession(msg.Session)...)

	case deltaComputedMsg:
		ref, cmp, ok := m.selectedPair()
		if !ok || ref != msg.refLap || cmp != msg.cmpLap {
			// Selection moved on while this delta was being computed.
			break
		}
		if msg.err == nil {
			m.delta = msg.delta
		} else {
			m.delta = nil
		}
		m.propagateData()

	default:
		cmds = append(cmds, m.updateActiveView(msg))
	}

	return m, tea.Batch(cmds...)
}

// commitSession installs a session, seeds the lap selection and the
// shared distance extent, and starts the initial delta computation.
func (m *Model) commitSession(session *telemetry.Session) []tea.Cmd {
	m.session = session
	m.delta = nil

	if len(session.Laps) > 0 {
		laps := m.resolvePreferredLaps(session)
		if laps == nil {
			ref := session.FastestLap()
			laps = []int{ref.LapNumber}
			for _, lap := range session.Laps {
				if lap.LapNumber != ref.LapNumber {
					laps = append(laps, lap.LapNumber)
					break
				}
			}
		}
		m.store.SelectLaps(laps)
		if ref := session.Lap(laps[0]); ref != nil {
			m.store.SetFullExtent(0, ref.TrackLength())
		}
	}

	m.propagateData()

	var cmds []tea.Cmd
	if ref, cmp, ok := m.selectedPair(); ok {
		cmds = append(cmds, m.computeDelta(ref, cmp))
	}
	return cmds
}

// resolvePreferredLaps returns the -ref/-cmp lap pair when both exist in
// the session, nil otherwise.
func (m *Model) resolvePreferredLaps(session *telemetry.Session) []int {
	if len(m.preferredLaps) < 2 {
		return nil
	}
	for _, n := range m.preferredLaps {
		if session.Lap(n) == nil {
			return nil
		}
	}
	return m.preferredLaps
}

// selectedPair returns the reference and comparison lap numbers when at
// least two laps are selected.
func (m *Model) selectedPair() (int, int, bool) {
	laps := m.store.SelectedLaps()
	if len(laps) < 2 {
		return 0, 0, false
	}
	return laps[0], laps[1], true
}

func (m *Model) computeDelta(refLap, cmpLap int) tea.Cmd {
	session := m.session
	return func() tea.Msg {
		ref := session.Lap(refLap)
		cmp := session.Lap(cmpLap)
		if ref == nil || cmp == nil {
			return deltaComputedMsg{refLap: refLap, cmpLap: cmpLap,
				err: fmt.Errorf("lap %d or %d not in session", refLap, cmpLap)}
		}
		delta, err := telemetry.ComputeDelta(ref, cmp)
		return deltaComputedMsg{refLap: refLap, cmpLap: cmpLap, delta: delta, err: err}
	}
}

// cycleComparisonLap moves the comparison lap forward or backward
// through the session's laps, keeping the reference lap fixed.
func (m *Model) cycleComparisonLap(forward bool) tea.Cmd {
	if m.session == nil {
		return nil
	}
	ref, cmp, ok := m.selectedPair()
	if !ok {
		return nil
	}

	var others []int
	idx := 0
	for _, lap := range m.session.Laps {
		if lap.LapNumber == ref {
			continue
		}
		if lap.LapNumber == cmp {
			idx = len(others)
		}
		others = append(others, lap.LapNumber)
	}
	if len(others) < 2 {
		return nil
	}

	if forward {
		idx = (idx + 1) % len(others)
	} else {
		idx = (idx - 1 + len(others)) % len(others)
	}
	next := others[idx]

	m.store.SelectLaps([]int{ref, next})
	m.delta = nil
	m.propagateData()
	return m.computeDelta(ref, next)
}

func (m *Model) contentHeight() int {
	h := m.height - headerLines - footerLines
	if h < 0 {
		h = 0
	}
	return h
}

func (m *Model) propagateSize() {
	w, h := m.width, m.contentHeight()
	m.traces = m.traces.SetSize(w, h)
	m.trackMap = m.trackMap.SetSize(w, h)
	m.elevation = m.elevation.SetSize(w, h)
	m.corners = m.corners.SetSize(w, h)
}

func (m *Model) propagateData() {
	m.traces = m.traces.UpdateData(m.session, m.delta)
	m.trackMap = m.trackMap.UpdateData(m.session, m.delta)
	m.elevation = m.elevation.UpdateData(m.session, m.delta)
	m.corners = m.corners.UpdateData(m.session, m.delta)
}

func (m *Model) updateActiveView(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.viewMode {
	case ViewTraces:
		m.traces, cmd = m.traces.Update(msg)
	case ViewTrackMap:
		m.trackMap, cmd = m.trackMap.Update(msg)
	case ViewElevation:
		m.elevation, cmd = m.elevation.Update(msg)
	case ViewCorners:
		m.corners, cmd = m.corners.Update(msg)
	}
	return cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var content string
	switch {
	case m.loadErr != nil:
		content = errorPlaceholder("session", m.loadErr, m.width, m.contentHeight())
	case m.loading:
		content = centerText("Loading session...", m.width, m.contentHeight())
	case m.session == nil || len(m.session.Laps) == 0:
		content = centerText("No data", m.width, m.contentHeight())
	default:
		// One snapshot per frame: every view's overlay observes the
		// same interaction state, so cursors line up across charts.
		snap := m.store.Snapshot()
		switch m.viewMode {
		case ViewTraces:
			content = renderIsolated("traces", m.width, m.contentHeight(),
				func() string { return m.traces.View(snap) })
		case ViewTrackMap:
			content = renderIsolated("track map", m.width, m.contentHeight(),
				func() string { return m.trackMap.View(snap) })
		case ViewElevation:
			content = renderIsolated("elevation", m.width, m.contentHeight(),
				func() string { return m.elevation.View(snap) })
		case ViewCorners:
			content = renderIsolated("corners", m.width, m.contentHeight(),
				func() string { return m.corners.View(snap) })
		}
	}

	return m.renderHeader() + "\n" + content + "\n" + m.renderFooter()
}

// renderIsolated runs one view's draw routine with panic recovery so a
// failing chart degrades to a named placeholder instead of taking the
// whole dashboard down.
func renderIsolated(name string, width, height int, draw func() string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = errorPlaceholder(name, fmt.Errorf("%v", r), width, height)
		}
	}()
	return draw()
}

func errorPlaceholder(name string, err error, width, height int) string {
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27"))
	msg := errStyle.Render(fmt.Sprintf("%s unavailable: %v", name, err))
	return centerText(msg, width, height)
}

func centerText(s string, width, height int) string {
	var b strings.Builder
	top := height / 2
	for i := 0; i < top; i++ {
		b.WriteString("\n")
	}
	pad := (width - lipgloss.Width(s)) / 2
	if pad < 0 {
		pad = 0
	}
	b.WriteString(strings.Repeat(" ", pad))
	b.WriteString(s)
	for i := top + 1; i < height; i++ {
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderHeader() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#9D4EDD"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	title := titleStyle.Render("LAPLINE")
	info := ""
	if m.session != nil {
		info = dimStyle.Render(fmt.Sprintf("  %s · %s · %d laps · v%s",
			m.session.Track, m.session.Driver, len(m.session.Laps), version.Version))
	}

	return "  " + title + info + "\n" + m.renderTabs()
}

func (m Model) renderTabs() string {
	tabs := []string{"[1] Traces", "[2] Map", "[3] Elevation", "[4] Corners"}
	activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	var parts []string
	for i, tab := range tabs {
		if ViewMode(i) == m.viewMode {
			parts = append(parts, activeStyle.Render("▶ "+tab))
		} else {
			parts = append(parts, dimStyle.Render("  "+tab))
		}
	}
	return "  " + strings.Join(parts, "  ")
}

func (m Model) renderFooter() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#7B2CBF"))

	var help string
	switch m.viewMode {
	case ViewTraces:
		help = "hover: cursor | drag: zoom | 0: reset zoom | [/]: compare lap"
	case ViewTrackMap:
		help = "hover: cursor | m: color mode | [/]: compare lap"
	case ViewElevation:
		help = "hover: cursor | x: exaggeration | [/]: compare lap"
	case ViewCorners:
		help = "j/k: corner | enter: zoom to corner | 0: reset zoom"
	}

	return "  " + m.renderStatus(accentStyle, dimStyle) +
		"\n  " + dimStyle.Render(help+" | tab: view | q: quit")
}

func (m Model) renderStatus(accent, dim lipgloss.Style) string {
	if m.session == nil {
		return dim.Render("waiting for session")
	}

	snap := m.store.Snapshot()
	var parts []string

	if len(snap.SelectedLaps) >= 2 {
		parts = append(parts, accent.Render(
			fmt.Sprintf("lap %d vs %d", snap.SelectedLaps[0], snap.SelectedLaps[1])))
	} else if len(snap.SelectedLaps) == 1 {
		parts = append(parts, accent.Render(fmt.Sprintf("lap %d", snap.SelectedLaps[0])))
	}

	if m.delta != nil {
		parts = append(parts, dim.Render(fmt.Sprintf("total Δ %+.3fs", m.delta.TotalDelta)))
	}

	if snap.HasCursor {
		parts = append(parts, dim.Render(fmt.Sprintf("@ %.0f m", snap.CursorDistance)))
		if s := m.sectorStatus(snap); s != "" {
			parts = append(parts, dim.Render(s))
		}
	}

	if snap.Zoom != nil {
		parts = append(parts, dim.Render(
			fmt.Sprintf("zoom %.0f–%.0f m", snap.Zoom.Min, snap.Zoom.Max)))
	}

	if snap.SelectedCorner != 0 {
		parts = append(parts, dim.Render(fmt.Sprintf("T%d", snap.SelectedCorner)))
	}

	return strings.Join(parts, dim.Render("  |  "))
}

// Mini-sector length for the cursor readout, meters.
const miniSectorLength = 400.0

// sectorStatus reports the mini-sector under the cursor: the reference
// lap's time through it, with a star when that is the session best.
func (m Model) sectorStatus(snap state.Snapshot) string {
	if len(snap.SelectedLaps) == 0 {
		return ""
	}
	ref := m.session.Lap(snap.SelectedLaps[0])
	if ref == nil {
		return ""
	}

	sectors := telemetry.MiniSectors(ref.TrackLength(), miniSectorLength)
	idx := -1
	for i, s := range sectors {
		if snap.CursorDistance >= s.Start && snap.CursorDistance < s.End {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ""
	}

	times := telemetry.SectorTimes(ref, sectors)
	best := telemetry.BestSectorTimes(m.session.Laps, sectors)
	if idx >= len(times) || times[idx] <= 0 {
		return ""
	}

	out := fmt.Sprintf("S%d %.3fs", idx+1, times[idx])
	if idx < len(best) && best[idx] > 0 && times[idx] <= best[idx] {
		out += " ★"
	}
	return out
}
