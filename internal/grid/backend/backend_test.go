package backend

import (
	"strings"
	"testing"

	"github.com/dshills/gridstorm/internal/grid/core"
)

func TestNullBackendSetGetCell(t *testing.T) {
	b := NewNullBackend(20, 5)
	if err := b.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	cell := core.NewStyledCell('X', core.DefaultStyle().WithForeground(core.ColorRed))
	b.SetCell(3, 2, cell)

	if got := b.GetCell(3, 2); !got.Equals(cell) {
		t.Errorf("cell mismatch: expected %+v, got %+v", cell, got)
	}

	// Out of bounds should be ignored/return empty
	b.SetCell(-1, 0, cell)
	b.SetCell(100, 0, cell)
	if got := b.GetCell(-1, 0); !got.Equals(core.EmptyCell()) {
		t.Error("out of bounds should return empty cell")
	}
}

func TestNullBackendFillAndLine(t *testing.T) {
	b := NewNullBackend(10, 3)
	b.Init()

	b.Fill(core.NewRect(2, 1, 3, 1), core.NewStyledCell('#', core.DefaultStyle()))
	if got := b.Line(1); got != "  ###     " {
		t.Errorf("Line(1) = %q", got)
	}
	if got := b.Line(0); strings.TrimSpace(got) != "" {
		t.Errorf("Line(0) = %q, want blank", got)
	}

	b.Clear()
	if got := strings.TrimSpace(b.Line(1)); got != "" {
		t.Errorf("Line(1) after Clear = %q", got)
	}
}

func TestNullBackendCursorAndShow(t *testing.T) {
	b := NewNullBackend(10, 3)
	b.Init()

	b.ShowCursor(4, 1)
	if x, y, vis := b.CursorPosition(); x != 4 || y != 1 || !vis {
		t.Errorf("cursor = (%d, %d, %v), want (4, 1, true)", x, y, vis)
	}
	b.HideCursor()
	if _, _, vis := b.CursorPosition(); vis {
		t.Error("cursor should be hidden")
	}

	b.Show()
	b.Show()
	if b.Shows() != 2 {
		t.Errorf("Shows() = %d, want 2", b.Shows())
	}
}

func TestNullBackendInterrupt(t *testing.T) {
	b := NewNullBackend(10, 3)
	b.Interrupt()
	if ev := b.PollEvent(); ev.Type != EventInterrupt {
		t.Errorf("event type = %v, want EventInterrupt", ev.Type)
	}
}
