package grid

import (
	"github.com/dshills/gridstorm/internal/grid/notify"
	"github.com/dshills/gridstorm/internal/grid/render"
	"github.com/dshills/gridstorm/internal/grid/schedule"
	"github.com/dshills/gridstorm/internal/grid/selection"
	"github.com/dshills/gridstorm/internal/input/key"
	"github.com/dshills/gridstorm/internal/input/mouse"
	"github.com/rivo/uniseg"
)

// WheelStep is the number of rows one wheel notch scrolls.
const WheelStep = 3

// HorizontalStep is the number of cells Left/Right scroll when there is
// nothing to collapse or expand.
const HorizontalStep = 4

// Focus gives the grid keyboard focus.
func (g *Grid) Focus() {
	if g.focused {
		return
	}
	g.focused = true
	g.markDirty()
}

// Blur removes keyboard focus. An open editor session is committed once
// the event has been handled unless focus returns to it.
func (g *Grid) Blur() {
	if !g.focused {
		return
	}
	g.focused = false
	g.blurEditor()
	g.markDirty()
}

// HasFocus reports whether the grid has keyboard focus.
func (g *Grid) HasFocus() bool {
	return g.focused
}

// HandleKey dispatches a key event. It reports whether the key was used.
func (g *Grid) HandleKey(ev key.Event) bool {
	if g.editor.Active() {
		return g.handleEditorKey(ev)
	}

	var changed bool
	switch {
	case ev.Key == key.KeyUp || ev.Key == key.KeyDown:
		delta := 1
		if ev.Key == key.KeyUp {
			delta = -1
		}
		switch {
		case ev.Modifiers.HasShift():
			changed = g.sel.ExtendBy(delta)
		case ev.Modifiers.HasCommand():
			g.sel.MoveFocus(delta)
		default:
			changed = g.sel.Move(delta)
		}
	case ev.Key == key.KeyPageUp || ev.Key == key.KeyPageDown:
		delta := max(1, g.viewport.Height())
		if ev.Key == key.KeyPageUp {
			delta = -delta
		}
		if ev.Modifiers.HasShift() {
			changed = g.sel.ExtendBy(delta)
		} else {
			changed = g.sel.Move(delta)
		}
	case ev.Key == key.KeyHome || ev.Key == key.KeyEnd:
		pos := 0
		if ev.Key == key.KeyEnd {
			pos = g.sel.Len() - 1
		}
		if ev.Modifiers.HasShift() {
			changed = g.sel.ExtendTo(pos)
		} else {
			changed = g.sel.MoveTo(pos)
		}
	case ev.IsRuneWith(' ', key.ModCtrl):
		changed = g.sel.ToggleFocused()
	case ev.IsRuneWith('a', key.ModCtrl):
		changed = g.sel.SelectAll()
	case ev.Key == key.KeyLeft:
		if !g.collapseFocused() {
			g.viewport.ScrollHorizontalBy(-HorizontalStep)
		}
	case ev.Key == key.KeyRight:
		if !g.expandFocused() {
			g.viewport.ScrollHorizontalBy(HorizontalStep)
		}
	case ev.Key == key.KeyTab:
		g.moveActiveColumn(ev.Modifiers.HasShift())
	case ev.Key == key.KeyEnter || ev.Key == key.KeyF2:
		if f := g.sel.Focused(); f != selection.None {
			if err := g.CreateEditor(f, g.activeOrdinal()); err != nil {
				g.logger.Debug("no editor on row %d: %v", f, err)
			}
		}
	case ev.Key == key.KeyDelete:
		g.emitDelete()
	default:
		return false
	}

	if changed {
		g.emitSelection()
	}
	if f := g.sel.Focused(); f != selection.None {
		g.viewport.EnsureVisible(f)
	}
	g.markDirty()
	return true
}

func (g *Grid) handleEditorKey(ev key.Event) bool {
	switch {
	case ev.Key == key.KeyEscape:
		g.ClearEditor(true)
	case ev.Key == key.KeyEnter:
		if err := g.ClearEditor(false); err != nil {
			g.logger.Debug("commit rejected: %v", err)
		}
	case ev.Key == key.KeyTab:
		delta := 1
		if ev.Modifiers.HasShift() {
			delta = -1
		}
		g.editor.Session().Next(delta)
	default:
		if !g.editor.HandleKey(ev) {
			return false
		}
	}
	g.markDirty()
	return true
}

// HandleMouse dispatches a mouse press or wheel event. It reports whether
// the event was used.
func (g *Grid) HandleMouse(ev mouse.Event) bool {
	if ev.Button.IsScroll() {
		dx, dy := ev.Button.Scroll()
		moved := g.viewport.ScrollBy(dy * WheelStep)
		if g.viewport.ScrollHorizontalBy(dx * HorizontalStep) {
			moved = true
		}
		if moved {
			g.markDirty()
		}
		return true
	}
	if ev.Button != mouse.ButtonLeft || ev.Action != mouse.ActionPress {
		return false
	}

	x, y := ev.Position.X, ev.Position.Y
	if y < render.HeaderHeight {
		g.clicks.Reset()
		return g.headerClick(x)
	}
	pos := g.viewport.RowAt(y - render.HeaderHeight)
	ordinal, xInCell := g.columnAt(x)
	if pos < 0 {
		g.clicks.Reset()
		g.blurEditor()
		return false
	}

	if s := g.editor.Session(); s != nil {
		if g.renderer.PositionOf(s.DataIndex, s.ChildIndex) == pos {
			if ordinal >= 0 && s.Focus(ordinal) {
				g.markDirty()
				return true
			}
		} else {
			g.blurEditor()
		}
	}

	if g.onExpander(pos, ordinal, xInCell) {
		g.clicks.Reset()
		g.ToggleExpand(pos)
		return true
	}

	count := g.clicks.Record(ev.Position, ev.Timestamp)
	if count == 2 {
		g.doubleClick(pos, ordinal)
		return true
	}

	var changed bool
	switch {
	case ev.Modifiers.HasShift():
		changed = g.sel.ExtendTo(pos)
	case ev.Modifiers.HasCommand():
		changed = g.sel.ToggleClick(pos)
	default:
		changed = g.sel.Click(pos)
	}
	if changed {
		g.emitSelection()
	}
	if ordinal >= 0 {
		g.activeCol = g.visibleIndex(ordinal)
	}
	g.emitPointer(notify.RowClick, pos, -1)
	if ordinal >= 0 {
		g.emitPointer(notify.CellClick, pos, ordinal)
	}
	g.markDirty()
	return true
}

func (g *Grid) doubleClick(pos, ordinal int) {
	g.emitPointer(notify.RowDoubleClick, pos, -1)
	if ordinal >= 0 {
		g.emitPointer(notify.CellDoubleClick, pos, ordinal)
	}
	if g.editOnDoubleClick {
		if err := g.CreateEditor(pos, ordinal); err != nil {
			g.logger.Debug("no editor on row %d: %v", pos, err)
		}
	}
	g.markDirty()
}

func (g *Grid) headerClick(x int) bool {
	ordinal, _ := g.columnAt(x)
	if ordinal < 0 {
		return false
	}
	c := g.store.Column(ordinal)
	if !c.Sortable {
		return false
	}
	st := g.sorter.State()
	order := st.Order
	if st.Column == ordinal {
		order = order.Flip()
	}
	g.Sort(ordinal, order)
	g.markDirty()
	return true
}

// columnAt maps screen x to a visible column ordinal and the offset inside
// it, or -1.
func (g *Grid) columnAt(x int) (ordinal, offset int) {
	cx := x + g.viewport.Left()
	i := g.widths.TrackAt(cx)
	if i < 0 || i >= len(g.visibleCols) {
		return -1, 0
	}
	return g.visibleCols[i], cx - g.widths.Offset(i)
}

func (g *Grid) visibleIndex(ordinal int) int {
	for i, o := range g.visibleCols {
		if o == ordinal {
			return i
		}
	}
	return -1
}

func (g *Grid) activeOrdinal() int {
	if g.activeCol < 0 || g.activeCol >= len(g.visibleCols) {
		return -1
	}
	return g.visibleCols[g.activeCol]
}

func (g *Grid) moveActiveColumn(back bool) {
	n := len(g.visibleCols)
	if n == 0 {
		return
	}
	switch {
	case g.activeCol < 0 && back:
		g.activeCol = n - 1
	case g.activeCol < 0:
		g.activeCol = 0
	case back:
		g.activeCol = (g.activeCol - 1 + n) % n
	default:
		g.activeCol = (g.activeCol + 1) % n
	}
}

func (g *Grid) onExpander(pos, ordinal, xInCell int) bool {
	if !g.showChildren || len(g.visibleCols) == 0 || ordinal != g.visibleCols[0] {
		return false
	}
	d, ok := g.renderer.Row(pos)
	if !ok || d.Expander == render.ExpanderNone {
		return false
	}
	return xInCell < uniseg.StringWidth(render.GlyphCollapsed)
}

// ToggleExpand expands or collapses the parent row at pos.
func (g *Grid) ToggleExpand(pos int) bool {
	d, ok := g.renderer.Row(pos)
	if !ok || d.Expander == render.ExpanderNone {
		return false
	}
	if d.Expander == render.ExpanderExpanded {
		return g.collapse(pos)
	}
	return g.expand(pos)
}

func (g *Grid) expandFocused() bool {
	return g.expand(g.sel.Focused())
}

func (g *Grid) collapseFocused() bool {
	f := g.sel.Focused()
	d, ok := g.renderer.Row(f)
	if !ok {
		return false
	}
	if d.View.IsChild() {
		parent := g.renderer.PositionOf(d.View.Row, render.TopLevel)
		return g.collapseTo(parent, true)
	}
	return g.collapseTo(f, false)
}

func (g *Grid) expand(pos int) bool {
	if !g.showChildren || g.viewPending() {
		return false
	}
	d, ok := g.renderer.Row(pos)
	if !ok || !g.hasExpandState(d.View.Row) || g.renderer.Expand(g.source(), pos) == 0 {
		return false
	}
	g.expanded[d.View.Row] = true
	g.afterReflow(pos, false)
	return true
}

func (g *Grid) collapse(pos int) bool {
	return g.collapseTo(pos, false)
}

// collapseTo collapses the parent at pos. With move set the parent also
// becomes the single selected row.
func (g *Grid) collapseTo(pos int, move bool) bool {
	if g.viewPending() {
		return false
	}
	d, ok := g.renderer.Row(pos)
	if !ok || !g.hasExpandState(d.View.Row) || g.renderer.Collapse(pos) == 0 {
		return false
	}
	g.expanded[d.View.Row] = false
	g.afterReflow(pos, move)
	return true
}

// viewPending reports whether the rendered rows are waiting on a rebuild and
// may still describe rows that no longer exist.
func (g *Grid) viewPending() bool {
	return g.sched.Pending()&(schedule.PhaseColumns|schedule.PhaseSort|schedule.PhaseBuildRows) != 0
}

func (g *Grid) hasExpandState(row int) bool {
	return row >= 0 && row < len(g.expanded)
}

// afterReflow re-sizes the selection after rows were inserted or removed
// under pos and focuses pos, or selects it when move is set. At most one
// selection-changed is emitted.
func (g *Grid) afterReflow(pos int, move bool) {
	changed := g.sel.Reset(g.renderer.Len())
	if move {
		if g.sel.MoveTo(pos) {
			changed = true
		}
	} else {
		g.sel.SetFocus(pos)
	}
	if changed {
		g.emitSelection()
	}
	g.sched.RequestUpdate(schedule.PhaseResizeHeight)
	g.markDirty()
}

func (g *Grid) emitPointer(topic notify.Topic, pos, ordinal int) {
	ev := notify.Event{Topic: topic, Position: pos, DataIndex: -1, ChildIndex: -1, Column: ordinal}
	if d, ok := g.renderer.Row(pos); ok {
		ev.DataIndex, ev.ChildIndex = d.View.Row, d.View.Child
		if d.Data != nil {
			ev.Payload = d.Data.Payload
		}
	}
	g.notifier.Emit(ev)
}

// emitDelete publishes delete-row for the focused row. Removing it is up to
// the host.
func (g *Grid) emitDelete() {
	f := g.sel.Focused()
	if f == selection.None {
		return
	}
	g.emitPointer(notify.DeleteRow, f, -1)
}

// ScrollToRow scrolls the view position pos on screen after the next layout.
func (g *Grid) ScrollToRow(pos int) {
	g.scrollTarget = pos
	g.sched.RequestUpdate(schedule.PhaseResizeHeight)
}
