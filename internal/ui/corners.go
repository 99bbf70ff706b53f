package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lapline/lapline/internal/render"
	"github.com/lapline/lapline/internal/state"
	"github.com/lapline/lapline/internal/telemetry"
)

// Zoom margin around a corner when jumping the traces to it, meters.
const cornerZoomMargin = 50.0

// CornersModel renders the corner grade table. Selecting a corner
// highlights it on the track map and zooming jumps the trace charts to
// its distance range.
type CornersModel struct {
	store   *state.Store
	session *telemetry.Session
	delta   *telemetry.DeltaSeries

	width  int
	height int

	selected int // index into session.Corners
	scroll   int
}

// NewCornersModel creates the corners view bound to the shared store.
func NewCornersModel(store *state.Store) CornersModel {
	return CornersModel{store: store}
}

// SetSize implements the sub-model sizing contract.
func (m CornersModel) SetSize(width, height int) CornersModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData installs new session data.
func (m CornersModel) UpdateData(session *telemetry.Session, delta *telemetry.DeltaSeries) CornersModel {
	m.session = session
	m.delta = delta
	if session == nil || m.selected >= len(session.Corners) {
		m.selected = 0
	}
	return m
}

// Update implements the sub-model update contract.
func (m CornersModel) Update(msg tea.Msg) (CornersModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || m.session == nil || len(m.session.Corners) == 0 {
		return m, nil
	}

	switch key.String() {
	case "j", "down":
		if m.selected < len(m.session.Corners)-1 {
			m.selected++
		}
		m.store.SelectCorner(m.session.Corners[m.selected].Number)

	case "k", "up":
		if m.selected > 0 {
			m.selected--
		}
		m.store.SelectCorner(m.session.Corners[m.selected].Number)

	case "enter", "z":
		c := m.session.Corners[m.selected]
		lo := c.EntryDistance - cornerZoomMargin
		if lo < 0 {
			lo = 0
		}
		hi := c.ExitDistance + cornerZoomMargin
		if ref := m.session.FastestLap(); ref != nil && hi > ref.TrackLength() {
			hi = ref.TrackLength()
		}
		m.store.SelectCorner(c.Number)
		m.store.SetZoomRange(lo, hi)
	}

	m.scrollIntoView()
	return m, nil
}

func (m *CornersModel) scrollIntoView() {
	rows := m.tableRows()
	if rows <= 0 {
		return
	}
	if m.selected < m.scroll {
		m.scroll = m.selected
	}
	if m.selected >= m.scroll+rows {
		m.scroll = m.selected - rows + 1
	}
}

// tableRows is the number of corner rows that fit: header and divider
// above, detail panel below.
func (m CornersModel) tableRows() int {
	return m.height - 8
}

// View renders the grade table for one frame.
func (m CornersModel) View(snap state.Snapshot) string {
	if m.session == nil || len(m.session.Corners) == 0 {
		return centerText("No corner data", m.width, m.height)
	}

	headerStyle := lipgloss.NewStyle().Foreground(dimColor).Bold(true)
	selStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(axisColor)

	var b strings.Builder
	b.WriteString("  " + headerStyle.Render(fmt.Sprintf(
		"%-4s %8s %8s %8s %9s  %-5s %-5s %-5s %-5s  %-7s %s",
		"TURN", "ENTRY", "APEX", "EXIT", "MIN km/h",
		"BRAKE", "TRAIL", "SPEED", "THROT", "OVERALL", "LOST")))
	b.WriteString("\n  " + headerStyle.Render(strings.Repeat("─", min(m.width-4, 90))))
	b.WriteString("\n")

	rows := m.tableRows()
	end := min(m.scroll+rows, len(m.session.Corners))
	for i := m.scroll; i < end; i++ {
		c := m.session.Corners[i]
		grade := m.session.GradeFor(c.Number)

		line := fmt.Sprintf("%-4s %7.0fm %7.0fm %7.0fm %9.0f  ",
			fmt.Sprintf("T%d", c.Number),
			c.EntryDistance, c.ApexDistance, c.ExitDistance, c.MinSpeed*3.6)

		if i == m.selected {
			b.WriteString("  " + selStyle.Render("▶ ") + rowStyle.Render(line))
		} else {
			b.WriteString("    " + rowStyle.Render(line))
		}

		if grade != nil {
			b.WriteString(gradeCell(grade.Braking))
			b.WriteString(gradeCell(grade.TrailBraking))
			b.WriteString(gradeCell(grade.MinSpeed))
			b.WriteString(gradeCell(grade.Throttle))
			overall := grade.Overall()
			b.WriteString("  " + lipgloss.NewStyle().
				Foreground(render.GradeColor(string(overall))).Bold(true).
				Render(fmt.Sprintf("%-7s", overall)))
		} else {
			b.WriteString(rowStyle.Render(fmt.Sprintf("%-29s", "ungraded")))
		}

		b.WriteString(rowStyle.Render(m.timeLost(c)))
		b.WriteString("\n")
	}

	for i := end - m.scroll; i < rows; i++ {
		b.WriteString("\n")
	}

	b.WriteString(m.renderDetail())
	return b.String()
}

// gradeCell renders one fixed-width sub-grade column; a missing grade
// renders as a dash.
func gradeCell(g telemetry.Grade) string {
	if g == "" {
		return lipgloss.NewStyle().Foreground(dimColor).Render(fmt.Sprintf("%-6s", "–"))
	}
	return lipgloss.NewStyle().Foreground(render.GradeColor(string(g))).Render(fmt.Sprintf("%-6s", g))
}

// timeLost reports the delta change across a corner: how much time the
// comparison lap gained or lost between entry and exit.
func (m CornersModel) timeLost(c telemetry.Corner) string {
	if m.delta == nil || len(m.delta.Distance) == 0 {
		return ""
	}
	entry := telemetry.ValueAt(m.delta.Distance, m.delta.Delta, c.EntryDistance)
	exit := telemetry.ValueAt(m.delta.Distance, m.delta.Delta, c.ExitDistance)
	return fmt.Sprintf("%+.3fs", exit-entry)
}

// renderDetail shows the selected corner's analysis notes.
func (m CornersModel) renderDetail() string {
	if m.selected >= len(m.session.Corners) {
		return ""
	}
	c := m.session.Corners[m.selected]
	grade := m.session.GradeFor(c.Number)

	dimStyle := lipgloss.NewStyle().Foreground(dimColor)
	textStyle := lipgloss.NewStyle().Foreground(axisColor)

	var b strings.Builder
	b.WriteString("\n  " + dimStyle.Render(strings.Repeat("─", min(m.width-4, 90))) + "\n")
	b.WriteString("  " + textStyle.Render(fmt.Sprintf(
		"T%d · %s apex · %.0f m long · brake at %.0f m (%.1fg peak) · back on throttle at %.0f m",
		c.Number, c.Apex, c.Length(), c.BrakePoint, c.PeakBrakeG, c.ThrottleCommit)) + "\n")

	if grade != nil && grade.Notes != "" {
		b.WriteString("  " + dimStyle.Render(grade.Notes) + "\n")
	}
	return b.String()
}
