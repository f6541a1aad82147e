// Package selection implements the grid's row selection state machine.
//
// Selection is a set of view positions plus two cursors: the focused
// position and the anchor that range gestures extend from. Every mutating
// method reports whether the selected set changed so the caller can emit a
// single notification per gesture.
package selection

import "sort"

// None marks an unset focus or anchor.
const None = -1

// Controller tracks selected view positions, focus and anchor.
// It is owned by one grid and is not safe for concurrent use.
type Controller struct {
	selected map[int]struct{}
	focused  int
	anchor   int
	size     int
}

// New creates a controller for a view of size rows.
func New(size int) *Controller {
	return &Controller{
		selected: make(map[int]struct{}),
		focused:  None,
		anchor:   None,
		size:     max(0, size),
	}
}

// Len returns the view size the controller validates positions against.
func (c *Controller) Len() int {
	return c.size
}

// Focused returns the focused position, or None.
func (c *Controller) Focused() int {
	return c.focused
}

// Anchor returns the range anchor, or None.
func (c *Controller) Anchor() int {
	return c.anchor
}

// Count returns the number of selected positions.
func (c *Controller) Count() int {
	return len(c.selected)
}

// IsSelected reports whether pos is selected.
func (c *Controller) IsSelected(pos int) bool {
	_, ok := c.selected[pos]
	return ok
}

// Selected returns the selected positions in ascending order.
func (c *Controller) Selected() []int {
	out := make([]int, 0, len(c.selected))
	for p := range c.selected {
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}

// Reset adapts the controller to a rebuilt view of size rows. The selection
// and anchor are cleared, never remapped. Focus is clamped into the new view.
func (c *Controller) Reset(size int) bool {
	c.size = max(0, size)
	c.anchor = None
	if c.focused >= c.size {
		c.focused = c.size - 1
	}
	return c.Clear()
}

// Clear empties the selection.
func (c *Controller) Clear() bool {
	if len(c.selected) == 0 {
		return false
	}
	clear(c.selected)
	return true
}

// SetFocus moves focus without touching the selection or anchor.
func (c *Controller) SetFocus(pos int) {
	if c.valid(pos) {
		c.focused = pos
	}
}

// Click selects exactly pos and makes it both focus and anchor.
func (c *Controller) Click(pos int) bool {
	if !c.valid(pos) {
		return false
	}
	c.focused = pos
	c.anchor = pos
	return c.replace(pos, pos)
}

// ToggleClick flips pos in the selection. Focus moves to pos regardless; a
// deselected position stops being the anchor.
func (c *Controller) ToggleClick(pos int) bool {
	if !c.valid(pos) {
		return false
	}
	if c.IsSelected(pos) {
		delete(c.selected, pos)
		if c.anchor == pos {
			c.anchor = None
		}
	} else {
		c.selected[pos] = struct{}{}
	}
	c.focused = pos
	return true
}

// ExtendTo replaces the selection with the inclusive range between the anchor
// and pos. Without an anchor the range starts at the focus, or at 0. The
// anchor stays put across successive extensions.
func (c *Controller) ExtendTo(pos int) bool {
	if !c.valid(pos) {
		return false
	}
	start := c.anchor
	if !c.valid(start) {
		start = c.focused
	}
	if !c.valid(start) {
		start = 0
	}
	c.anchor = start
	c.focused = pos
	return c.replace(min(start, pos), max(start, pos))
}

// ExtendBy extends the range from the focus by delta rows.
func (c *Controller) ExtendBy(delta int) bool {
	if c.size == 0 {
		return false
	}
	return c.ExtendTo(c.clamp(c.from() + delta))
}

// Move shifts focus by delta, selects only the new focus and re-anchors there.
func (c *Controller) Move(delta int) bool {
	if c.size == 0 {
		return false
	}
	return c.Click(c.clamp(c.from() + delta))
}

// MoveTo selects only pos, clamped into the view.
func (c *Controller) MoveTo(pos int) bool {
	if c.size == 0 {
		return false
	}
	return c.Click(c.clamp(pos))
}

// MoveFocus shifts focus by delta without changing the selection. It never
// reports a change.
func (c *Controller) MoveFocus(delta int) bool {
	if c.size == 0 {
		return false
	}
	c.focused = c.clamp(c.from() + delta)
	return false
}

// ToggleFocused flips the focused position and re-anchors on it.
func (c *Controller) ToggleFocused() bool {
	if !c.valid(c.focused) {
		return false
	}
	pos := c.focused
	if c.IsSelected(pos) {
		delete(c.selected, pos)
	} else {
		c.selected[pos] = struct{}{}
	}
	c.anchor = pos
	return true
}

// SelectAll selects every position in the view.
func (c *Controller) SelectAll() bool {
	if c.size == 0 {
		return false
	}
	if c.focused == None {
		c.focused = 0
	}
	return c.replace(0, c.size-1)
}

// from returns the position relative moves start from. With no focus a move
// lands on the first row.
func (c *Controller) from() int {
	if c.valid(c.focused) {
		return c.focused
	}
	return 0
}

// replace sets the selection to [lo, hi] and reports whether it changed.
func (c *Controller) replace(lo, hi int) bool {
	n := hi - lo + 1
	changed := len(c.selected) != n
	if !changed {
		for p := lo; p <= hi; p++ {
			if !c.IsSelected(p) {
				changed = true
				break
			}
		}
	}
	if !changed {
		return false
	}
	clear(c.selected)
	for p := lo; p <= hi; p++ {
		c.selected[p] = struct{}{}
	}
	return true
}

func (c *Controller) valid(pos int) bool {
	return pos >= 0 && pos < c.size
}

func (c *Controller) clamp(pos int) int {
	return max(0, min(pos, c.size-1))
}
