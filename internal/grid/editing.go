package grid

import (
	"errors"

	"github.com/dshills/gridstorm/internal/grid/editor"
	"github.com/dshills/gridstorm/internal/grid/notify"
	"github.com/dshills/gridstorm/internal/grid/render"
	"github.com/dshills/gridstorm/internal/grid/schedule"
)

// ErrViewPending is returned by CreateEditor while rows or columns changed
// and the view has not been rebuilt yet.
var ErrViewPending = errors.New("view awaiting rebuild")

// Editing reports whether an inline editor session is open.
func (g *Grid) Editing() bool {
	return g.editor.Active()
}

// EditorSession returns the open editor session, or nil.
func (g *Grid) EditorSession() *editor.Session {
	return g.editor.Session()
}

// EditorError returns the last validation failure of the open session.
func (g *Grid) EditorError() error {
	return g.editor.Err()
}

// CreateEditor opens inline editors on the row at view position pos,
// focusing column ordinal when it is editable (-1 focuses the first). An
// editor open on another row is committed first.
func (g *Grid) CreateEditor(pos, ordinal int) error {
	if g.viewPending() {
		return ErrViewPending
	}
	d, ok := g.renderer.Row(pos)
	if !ok || d.Data == nil {
		return editor.ErrNotEditable
	}
	t := editor.Target{
		Position:   pos,
		Row:        d.Data,
		DataIndex:  d.View.Row,
		ChildIndex: d.View.Child,
	}
	changes, err := g.editor.Open(t, g.store.Columns(), ordinal)
	g.emitChanges(changes)
	g.markDirty()
	if err != nil {
		return err
	}
	g.viewport.EnsureVisible(pos)
	return nil
}

// ClearEditor closes the open session. With discard set the edits are
// dropped; otherwise they are validated and committed, and a validation
// failure keeps the session open and is returned.
func (g *Grid) ClearEditor(discard bool) error {
	if !g.editor.Active() {
		return nil
	}
	g.markDirty()
	if discard {
		g.editor.Discard()
		return nil
	}
	changes, err := g.editor.Commit()
	if err != nil {
		return err
	}
	g.emitChanges(changes)
	return nil
}

// blurEditor starts the deferred focus-out check of the open session.
func (g *Grid) blurEditor() {
	if !g.editor.Active() {
		return
	}
	g.editor.FocusOut(func(changes []editor.Change, err error) {
		if err != nil {
			g.logger.Debug("focus out kept session open: %v", err)
		}
		g.emitChanges(changes)
		g.markDirty()
	})
	g.markDirty()
}

// emitChanges publishes one value-changed event per committed cell and
// re-renders the cells.
func (g *Grid) emitChanges(changes []editor.Change) {
	if len(changes) == 0 {
		return
	}
	for _, ch := range changes {
		g.notifier.Emit(notify.Event{
			Topic:      notify.ValueChanged,
			Position:   g.renderer.PositionOf(ch.DataIndex, ch.ChildIndex),
			DataIndex:  ch.DataIndex,
			ChildIndex: ch.ChildIndex,
			Column:     ch.Ordinal,
			Property:   ch.Property,
			NewValue:   ch.NewValue,
			OldValue:   ch.OldValue,
			Payload:    ch.Payload,
		})
	}
	g.sched.RequestUpdate(schedule.PhaseRows)
}

func (g *Grid) overlay() *render.Overlay {
	s := g.editor.Session()
	if s == nil {
		return nil
	}
	o := &render.Overlay{Position: g.renderer.PositionOf(s.DataIndex, s.ChildIndex), Cells: make(map[int]render.OverlayCell, len(s.Cells))}
	for _, c := range s.Cells {
		text, cursor := c.Editor.Text()
		o.Cells[c.Ordinal] = render.OverlayCell{Text: text, Cursor: cursor, Focused: c.Editor.Focused()}
	}
	return o
}
