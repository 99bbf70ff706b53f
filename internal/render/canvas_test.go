package render

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestCanvas_ZeroSizeNoops(t *testing.T) {
	c := NewCanvas(Margins{Top: 1, Left: 2})

	// Every operation on an unsized canvas is a no-op, not a panic.
	called := false
	c.Data("k", func(l *Layer) { called = true })
	c.Overlay(func(l *Layer) { called = true })
	if called {
		t.Error("paint callbacks ran on a zero-size canvas")
	}
	if out := c.Render(); out != "" {
		t.Errorf("Render on zero-size canvas = %q, want empty", out)
	}
	if c.Ready() {
		t.Error("zero-size canvas reports Ready")
	}
}

func TestCanvas_DataRepaintsOnlyOnKeyChange(t *testing.T) {
	c := NewCanvas(Margins{})
	c.SetSize(10, 4)

	paints := 0
	paint := func(l *Layer) { paints++ }

	c.Data("a", paint)
	c.Data("a", paint)
	c.Data("a", paint)
	if paints != 1 {
		t.Errorf("paints = %d, want 1 for a stable key", paints)
	}

	c.Data("b", paint)
	if paints != 2 {
		t.Errorf("paints = %d, want 2 after key change", paints)
	}
}

func TestCanvas_OverlayRedrawsEveryCall(t *testing.T) {
	c := NewCanvas(Margins{})
	c.SetSize(10, 2)

	c.Overlay(func(l *Layer) { l.Set(0, 0, 'X', "") })
	if !strings.Contains(c.Render(), "X") {
		t.Fatal("overlay content missing")
	}

	// The next overlay pass starts from a cleared layer.
	c.Overlay(func(l *Layer) {})
	if strings.Contains(c.Render(), "X") {
		t.Error("stale overlay content survived a redraw")
	}
}

func TestCanvas_CompositeOverlayWins(t *testing.T) {
	c := NewCanvas(Margins{})
	c.SetSize(5, 1)

	c.Data("k", func(l *Layer) {
		l.Text(0, 0, "ddddd", "")
	})
	c.Overlay(func(l *Layer) {
		l.Set(2, 0, 'o', "")
	})

	out := c.Render()
	if out != "ddodd" {
		t.Errorf("Render = %q, want overlay cell over data", out)
	}
}

func TestCanvas_ResizeClearsAndInvalidates(t *testing.T) {
	c := NewCanvas(Margins{})
	c.SetSize(8, 2)

	paints := 0
	c.Data("k", func(l *Layer) {
		paints++
		l.Text(0, 0, "data", "")
	})

	c.SetSize(12, 3)
	if strings.Contains(c.Render(), "data") {
		t.Error("stale data survived a resize")
	}

	// Same key repaints because the resize invalidated the layer.
	c.Data("k", func(l *Layer) { paints++ })
	if paints != 2 {
		t.Errorf("paints = %d, want repaint after resize", paints)
	}

	// Resizing to the current size is a no-op and keeps the data layer.
	c.Data("k2", func(l *Layer) { l.Set(0, 0, 'z', "") })
	c.SetSize(12, 3)
	if !strings.Contains(c.Render(), "z") {
		t.Error("same-size SetSize should not clear the data layer")
	}
}

func TestCanvas_InnerAndCoordinates(t *testing.T) {
	c := NewCanvas(Margins{Top: 1, Right: 2, Bottom: 1, Left: 8})
	c.SetSize(80, 20)

	w, h := c.Inner()
	if w != 70 || h != 18 {
		t.Errorf("Inner = %dx%d, want 70x18", w, h)
	}

	if c.PlotX(0) != 8 || c.PlotY(0) != 1 {
		t.Error("PlotX/PlotY must offset by the margins")
	}

	if ix, ok := c.InnerX(8); !ok || ix != 0 {
		t.Errorf("InnerX(8) = %d, %v, want 0, true", ix, ok)
	}
	if _, ok := c.InnerX(7); ok {
		t.Error("InnerX inside the left margin should report false")
	}
	if _, ok := c.InnerX(78); ok {
		t.Error("InnerX inside the right margin should report false")
	}
	if iy, ok := c.InnerY(18); !ok || iy != 17 {
		t.Errorf("InnerY(18) = %d, %v, want 17, true", iy, ok)
	}
	if _, ok := c.InnerY(19); ok {
		t.Error("InnerY inside the bottom margin should report false")
	}
}

func TestCanvas_TooSmallForMargins(t *testing.T) {
	c := NewCanvas(Margins{Top: 2, Bottom: 2, Left: 10, Right: 10})
	c.SetSize(8, 3)

	if c.Ready() {
		t.Error("canvas smaller than its margins reports Ready")
	}
	w, h := c.Inner()
	if w != 0 || h < 0 {
		t.Errorf("Inner = %dx%d, want clamped to zero", w, h)
	}
}

func TestLayer_OutOfBoundsSafe(t *testing.T) {
	l := newLayer(4, 2)
	l.Set(-1, 0, 'x', "")
	l.Set(0, -1, 'x', "")
	l.Set(4, 0, 'x', "")
	l.Set(0, 2, 'x', "")
	l.Text(-2, 0, "abcdefgh", "")

	if got := l.At(-5, 7); got != blank {
		t.Errorf("out-of-bounds At = %+v, want blank", got)
	}
	// In-bounds part of the clipped text landed.
	if l.At(0, 0).Rune != 'c' {
		t.Errorf("clipped Text: At(0,0) = %q, want 'c'", l.At(0, 0).Rune)
	}
}

func TestCanvas_RenderBatchesColorRuns(t *testing.T) {
	c := NewCanvas(Margins{})
	c.SetSize(6, 1)

	red := lipgloss.Color("#FF0000")
	c.Data("k", func(l *Layer) {
		for x := 0; x < 6; x++ {
			l.Set(x, 0, 'r', red)
		}
	})

	out := c.Render()
	if !strings.Contains(out, "rrrrrr") {
		t.Errorf("same-color cells should render as one run: %q", out)
	}
}
