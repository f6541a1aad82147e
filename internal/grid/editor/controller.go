// Package editor implements the grid's inline cell editors and the session
// that opens, commits and discards them one row at a time.
package editor

import (
	"reflect"

	"github.com/dshills/gridstorm/internal/grid/model"
	"github.com/dshills/gridstorm/internal/input/key"
	"github.com/dshills/gridstorm/internal/logging"
)

// Deferrer runs a task after the current event has been handled.
type Deferrer interface {
	Defer(fn func())
}

// Target identifies the row an editor session is opened on.
type Target struct {
	// Position is the view position of the row.
	Position int

	Row *model.Row

	// DataIndex is the top-level row index; for child rows, the parent.
	DataIndex int

	// ChildIndex is the child index, or -1 for top-level rows.
	ChildIndex int
}

// Cell is one open cell editor.
type Cell struct {
	Ordinal  int
	Property string
	Column   *model.Column
	Editor   model.Editor
	Original any
}

// Session is the set of editors open on one row.
type Session struct {
	Target
	Cells []*Cell

	active int
}

// Active returns the cell holding keyboard focus.
func (s *Session) Active() *Cell {
	if s.active < 0 || s.active >= len(s.Cells) {
		return nil
	}
	return s.Cells[s.active]
}

// Cell returns the editor for column ordinal, or nil.
func (s *Session) Cell(ordinal int) *Cell {
	for _, c := range s.Cells {
		if c.Ordinal == ordinal {
			return c
		}
	}
	return nil
}

// Focus moves keyboard focus to the editor for ordinal.
func (s *Session) Focus(ordinal int) bool {
	for i, c := range s.Cells {
		if c.Ordinal == ordinal {
			s.focusIndex(i)
			return true
		}
	}
	return false
}

// Next moves focus delta editors along the row, wrapping at the ends.
func (s *Session) Next(delta int) {
	n := len(s.Cells)
	if n == 0 {
		return
	}
	s.focusIndex(((s.active+delta)%n + n) % n)
}

func (s *Session) focusIndex(i int) {
	for j, c := range s.Cells {
		if j != i {
			c.Editor.Blur()
		}
	}
	s.active = i
	s.Cells[i].Editor.Focus()
}

func (s *Session) anyFocused() bool {
	for _, c := range s.Cells {
		if c.Editor.Focused() {
			return true
		}
	}
	return false
}

func (s *Session) destroy() {
	for _, c := range s.Cells {
		c.Editor.Destroy()
	}
}

// Change is one committed cell edit.
type Change struct {
	Ordinal    int
	Property   string
	NewValue   any
	OldValue   any
	DataIndex  int
	ChildIndex int
	Payload    any
}

// Controller owns the single editor session.
type Controller struct {
	session  *Session
	err      error
	deferrer Deferrer
	logger   *logging.Logger
}

// NewController creates a controller that schedules focus-out checks on d.
func NewController(d Deferrer, logger *logging.Logger) *Controller {
	return &Controller{
		deferrer: d,
		logger:   logging.OrNop(logger).WithComponent("editor"),
	}
}

// Session returns the open session, or nil.
func (c *Controller) Session() *Session {
	return c.session
}

// Active reports whether a session is open.
func (c *Controller) Active() bool {
	return c.session != nil
}

// Err returns the last validation failure, cleared by a successful commit
// or a discard.
func (c *Controller) Err() error {
	return c.err
}

// Open starts a session on t with one editor per editable column, focusing
// the clicked column when it has one. Opening the row already being edited
// is a no-op. A session on another row is committed first; its changes are
// returned, and if that commit fails the old session stays open.
func (c *Controller) Open(t Target, columns []*model.Column, clicked int) ([]Change, error) {
	if s := c.session; s != nil {
		if s.Row == t.Row && s.DataIndex == t.DataIndex && s.ChildIndex == t.ChildIndex {
			if clicked >= 0 {
				s.Focus(clicked)
			}
			return nil, nil
		}
	}

	var changes []Change
	if c.session != nil {
		var err error
		if changes, err = c.Commit(); err != nil {
			return nil, err
		}
	}

	if t.Row == nil {
		return changes, ErrNotEditable
	}

	s := &Session{Target: t}
	for ordinal, col := range columns {
		if col == nil || !col.Editable(t.Row) {
			continue
		}
		value, _ := t.Row.Value(col, ordinal)
		ed := New(col.Editor, value)
		if ed == nil {
			continue
		}
		s.Cells = append(s.Cells, &Cell{
			Ordinal:  ordinal,
			Property: col.Property(ordinal),
			Column:   col,
			Editor:   ed,
			Original: value,
		})
	}
	if len(s.Cells) == 0 {
		return changes, ErrNotEditable
	}

	c.session = s
	c.err = nil
	if clicked < 0 || !s.Focus(clicked) {
		s.focusIndex(0)
	}
	c.logger.Debug("open row %d/%d with %d editors", t.DataIndex, t.ChildIndex, len(s.Cells))
	return changes, nil
}

// Commit validates and writes back every changed cell, then closes the
// session. On a validation failure nothing is written, the session stays
// open with the failing editor focused, and the error is returned.
func (c *Controller) Commit() ([]Change, error) {
	s := c.session
	if s == nil {
		return nil, ErrNoSession
	}

	type pending struct {
		cell  *Cell
		value any
	}
	var dirty []pending
	for _, cell := range s.Cells {
		v := cell.Editor.Value()
		if reflect.DeepEqual(v, cell.Original) {
			continue
		}
		if err := validate(cell, v, s.Row); err != nil {
			c.err = &ValidationError{Ordinal: cell.Ordinal, Property: cell.Property, Err: err}
			s.Focus(cell.Ordinal)
			c.logger.Warn("rejected %s: %s", cell.Property, Message(err))
			return nil, c.err
		}
		dirty = append(dirty, pending{cell: cell, value: v})
	}

	changes := make([]Change, 0, len(dirty))
	for _, p := range dirty {
		s.Row.SetValue(p.cell.Column, p.cell.Ordinal, p.value)
		changes = append(changes, Change{
			Ordinal:    p.cell.Ordinal,
			Property:   p.cell.Property,
			NewValue:   p.value,
			OldValue:   p.cell.Original,
			DataIndex:  s.DataIndex,
			ChildIndex: s.ChildIndex,
			Payload:    s.Row.Payload,
		})
	}

	s.destroy()
	c.session = nil
	c.err = nil
	if len(changes) > 0 {
		c.logger.Info("committed %d change(s) on row %d/%d", len(changes), s.DataIndex, s.ChildIndex)
	}
	return changes, nil
}

func validate(cell *Cell, v any, row *model.Row) error {
	if sv, ok := cell.Editor.(model.SelfValidator); ok {
		if err := sv.Validate(); err != nil {
			return err
		}
	}
	if spec := cell.Column.Editor; spec != nil && spec.Validate != nil {
		return spec.Validate(cell.Original, v, row)
	}
	return nil
}

// Discard closes the session without writing anything back.
func (c *Controller) Discard() bool {
	s := c.session
	if s == nil {
		return false
	}
	s.destroy()
	c.session = nil
	c.err = nil
	c.logger.Debug("discarded row %d/%d", s.DataIndex, s.ChildIndex)
	return true
}

// FocusOut blurs the session and defers the decision: if no editor of the
// same session has regained focus by then, the session is committed and
// done receives the result.
func (c *Controller) FocusOut(done func([]Change, error)) {
	s := c.session
	if s == nil {
		return
	}
	for _, cell := range s.Cells {
		cell.Editor.Blur()
	}
	c.deferrer.Defer(func() {
		if c.session != s || s.anyFocused() {
			return
		}
		changes, err := c.Commit()
		if done != nil {
			done(changes, err)
		}
	})
}

// HandleKey forwards ev to the focused editor. It reports whether the key
// was consumed.
func (c *Controller) HandleKey(ev key.Event) bool {
	if c.session == nil {
		return false
	}
	cell := c.session.Active()
	if cell == nil || !cell.Editor.Focused() {
		return false
	}
	return cell.Editor.HandleKey(ev)
}
