package layout

// Viewport is the scroll window over the grid body. The header is drawn with
// the same horizontal offset as the body.
type Viewport struct {
	top  int
	left int

	width  int
	height int

	rows         int
	contentWidth int
}

// NewViewport creates a viewport showing height body rows of width cells.
func NewViewport(width, height int) *Viewport {
	return &Viewport{width: max(0, width), height: max(0, height)}
}

// Top returns the first visible view position.
func (v *Viewport) Top() int { return v.top }

// Left returns the horizontal scroll offset.
func (v *Viewport) Left() int { return v.left }

// Width returns the visible width in cells.
func (v *Viewport) Width() int { return v.width }

// Height returns the number of visible body rows.
func (v *Viewport) Height() int { return v.height }

// Resize changes the visible area and re-clamps the offsets.
func (v *Viewport) Resize(width, height int) {
	v.width = max(0, width)
	v.height = max(0, height)
	v.Clamp()
}

// SetContent records the body's row count and content width.
func (v *Viewport) SetContent(rows, width int) {
	v.rows = max(0, rows)
	v.contentWidth = max(0, width)
	v.Clamp()
}

// Clamp keeps the offsets inside the content.
func (v *Viewport) Clamp() {
	v.top = max(0, min(v.top, v.rows-v.height))
	v.left = max(0, min(v.left, v.contentWidth-v.width))
}

// VisibleRange returns the half-open range of view positions on screen.
func (v *Viewport) VisibleRange() (first, last int) {
	return v.top, min(v.rows, v.top+v.height)
}

// IsVisible reports whether pos is on screen.
func (v *Viewport) IsVisible(pos int) bool {
	first, last := v.VisibleRange()
	return pos >= first && pos < last
}

// EnsureVisible scrolls the minimum amount to bring pos on screen. It reports
// whether the offset changed.
func (v *Viewport) EnsureVisible(pos int) bool {
	if pos < 0 || pos >= v.rows || v.height == 0 {
		return false
	}
	old := v.top
	switch {
	case pos < v.top:
		v.top = pos
	case pos >= v.top+v.height:
		v.top = pos - v.height + 1
	}
	v.Clamp()
	return v.top != old
}

// ScrollBy moves the vertical offset by delta rows.
func (v *Viewport) ScrollBy(delta int) bool {
	old := v.top
	v.top += delta
	v.Clamp()
	return v.top != old
}

// ScrollHorizontalBy moves the horizontal offset by delta cells.
func (v *Viewport) ScrollHorizontalBy(delta int) bool {
	old := v.left
	v.left += delta
	v.Clamp()
	return v.left != old
}

// RowAt maps a body-relative screen row to a view position, or -1.
func (v *Viewport) RowAt(y int) int {
	if y < 0 || y >= v.height {
		return -1
	}
	pos := v.top + y
	if pos >= v.rows {
		return -1
	}
	return pos
}
