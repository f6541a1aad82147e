package mouse

import (
	"testing"
	"time"
)

func TestClickTrackerDoubleClick(t *testing.T) {
	tr := NewClickTracker(DefaultDoubleClickTime, DefaultDoubleClickDistance)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	if n := tr.Record(Position{X: 5, Y: 3}, base); n != 1 {
		t.Fatalf("first click = %d, want 1", n)
	}
	if n := tr.Record(Position{X: 5, Y: 3}, base.Add(100*time.Millisecond)); n != 2 {
		t.Fatalf("second click = %d, want 2", n)
	}
	if n := tr.Record(Position{X: 5, Y: 3}, base.Add(200*time.Millisecond)); n != 1 {
		t.Errorf("third click = %d, want 1 (sequence restarts)", n)
	}
}

func TestClickTrackerBreaksSequence(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("too slow", func(t *testing.T) {
		tr := NewClickTracker(DefaultDoubleClickTime, DefaultDoubleClickDistance)
		tr.Record(Position{}, base)
		if n := tr.Record(Position{}, base.Add(time.Second)); n != 1 {
			t.Errorf("slow click = %d, want 1", n)
		}
	})

	t.Run("too far", func(t *testing.T) {
		tr := NewClickTracker(DefaultDoubleClickTime, DefaultDoubleClickDistance)
		tr.Record(Position{X: 0, Y: 0}, base)
		if n := tr.Record(Position{X: 0, Y: 4}, base.Add(50*time.Millisecond)); n != 1 {
			t.Errorf("distant click = %d, want 1", n)
		}
	})

	t.Run("clock skew", func(t *testing.T) {
		tr := NewClickTracker(DefaultDoubleClickTime, DefaultDoubleClickDistance)
		tr.Record(Position{}, base)
		if n := tr.Record(Position{}, base.Add(-time.Millisecond)); n != 1 {
			t.Errorf("skewed click = %d, want 1", n)
		}
	})

	t.Run("reset", func(t *testing.T) {
		tr := NewClickTracker(DefaultDoubleClickTime, DefaultDoubleClickDistance)
		tr.Record(Position{}, base)
		tr.Reset()
		if n := tr.Record(Position{}, base.Add(time.Millisecond)); n != 1 {
			t.Errorf("click after reset = %d, want 1", n)
		}
	})
}

func TestButtonScroll(t *testing.T) {
	tests := []struct {
		button Button
		scroll bool
		dx, dy int
	}{
		{ButtonLeft, false, 0, 0},
		{ButtonScrollUp, true, 0, -1},
		{ButtonScrollDown, true, 0, 1},
		{ButtonScrollLeft, true, -1, 0},
		{ButtonScrollRight, true, 1, 0},
	}
	for _, tt := range tests {
		if got := tt.button.IsScroll(); got != tt.scroll {
			t.Errorf("%d.IsScroll() = %v, want %v", tt.button, got, tt.scroll)
		}
		if dx, dy := tt.button.Scroll(); dx != tt.dx || dy != tt.dy {
			t.Errorf("%d.Scroll() = (%d, %d), want (%d, %d)", tt.button, dx, dy, tt.dx, tt.dy)
		}
	}
}

func TestPositionNear(t *testing.T) {
	p := Position{X: 3, Y: 3}
	if !p.Near(Position{X: 4, Y: 2}, 1) {
		t.Error("diagonal neighbour should be near")
	}
	if p.Near(Position{X: 5, Y: 3}, 1) {
		t.Error("two cells away should not be near")
	}
}
