package render

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/dshills/gridstorm/internal/grid/core"
	"github.com/dshills/gridstorm/internal/grid/model"
)

// Expander is the expand affordance shown on a parent row.
type Expander uint8

const (
	ExpanderNone Expander = iota
	ExpanderCollapsed
	ExpanderExpanded
)

// CellDesc is the rendered content of one cell.
type CellDesc struct {
	Ordinal int
	Value   any
	Text    string
	Tooltip string
	Style   core.Style
	Align   model.Align
	Wrap    bool
	Empty   bool
}

// RowDesc is one rendered view row.
type RowDesc struct {
	View     ViewRow
	Data     *model.Row
	Cells    []CellDesc
	Expander Expander
}

// Cell returns the cell for column ordinal, or nil.
func (r *RowDesc) Cell(ordinal int) *CellDesc {
	for i := range r.Cells {
		if r.Cells[i].Ordinal == ordinal {
			return &r.Cells[i]
		}
	}
	return nil
}

// Stats counts renderer passes.
type Stats struct {
	Builds  int
	Updates int
	Expands int
}

// Renderer holds the row descriptors of the current view and the cache of
// children hidden by a collapse.
type Renderer struct {
	rows  []RowDesc
	cache map[int][]RowDesc
	stats Stats
}

// New creates an empty renderer.
func New() *Renderer {
	return &Renderer{cache: make(map[int][]RowDesc)}
}

// Len returns the number of view rows.
func (r *Renderer) Len() int {
	return len(r.rows)
}

// Rows returns the row descriptors. Callers must not modify them.
func (r *Renderer) Rows() []RowDesc {
	return r.rows
}

// Row returns the descriptor at pos.
func (r *Renderer) Row(pos int) (RowDesc, bool) {
	if pos < 0 || pos >= len(r.rows) {
		return RowDesc{}, false
	}
	return r.rows[pos], true
}

// View returns the flattened view.
func (r *Renderer) View() []ViewRow {
	out := make([]ViewRow, len(r.rows))
	for i, d := range r.rows {
		out[i] = d.View
	}
	return out
}

// PositionOf returns the view position showing (row, child), or -1.
func (r *Renderer) PositionOf(row, child int) int {
	for i, d := range r.rows {
		if d.View.Row == row && d.View.Child == child {
			return i
		}
	}
	return -1
}

// Stats returns the pass counters.
func (r *Renderer) Stats() Stats {
	return r.stats
}

// Build flattens the view and renders every row from scratch. Cached
// children are dropped.
func (r *Renderer) Build(src Source) {
	r.stats.Builds++
	clear(r.cache)
	view := Flatten(src)
	r.rows = make([]RowDesc, 0, len(view))
	for _, v := range view {
		r.rows = append(r.rows, renderRow(src, v))
	}
}

// Update re-renders cell content in place without changing the view.
// Cached children are refreshed too.
func (r *Renderer) Update(src Source) {
	r.stats.Updates++
	for i, d := range r.rows {
		r.rows[i] = renderRow(src, d.View)
	}
	for parent, rows := range r.cache {
		for i, d := range rows {
			rows[i] = renderRow(src, d.View)
		}
		r.cache[parent] = rows
	}
}

// Expand inserts the children of the parent row at pos below it, from the
// cache when a previous collapse left them there. It returns the number of
// rows inserted.
func (r *Renderer) Expand(src Source, pos int) int {
	if pos < 0 || pos >= len(r.rows) {
		return 0
	}
	parent := r.rows[pos]
	if parent.View.IsChild() || !parent.Data.HasChildren() || r.expandedAt(pos) {
		return 0
	}
	r.stats.Expands++

	children, ok := r.cache[parent.View.Row]
	if ok {
		delete(r.cache, parent.View.Row)
	} else {
		for _, c := range src.childOrder(parent.View.Row) {
			children = append(children, renderRow(src, ViewRow{Row: parent.View.Row, Child: c}))
		}
	}

	r.rows[pos].Expander = ExpanderExpanded
	r.rows = append(r.rows[:pos+1], append(children, r.rows[pos+1:]...)...)
	return len(children)
}

// Collapse removes the children shown under pos and caches them. It returns
// the number of rows removed.
func (r *Renderer) Collapse(pos int) int {
	if pos < 0 || pos >= len(r.rows) || !r.expandedAt(pos) {
		return 0
	}
	parent := r.rows[pos].View.Row
	end := pos + 1
	for end < len(r.rows) && r.rows[end].View.Row == parent && r.rows[end].View.IsChild() {
		end++
	}
	removed := append([]RowDesc(nil), r.rows[pos+1:end]...)
	r.cache[parent] = removed
	r.rows = append(r.rows[:pos+1], r.rows[end:]...)
	r.rows[pos].Expander = ExpanderCollapsed
	return len(removed)
}

func (r *Renderer) expandedAt(pos int) bool {
	next := pos + 1
	return next < len(r.rows) && r.rows[next].View.IsChild() && r.rows[next].View.Row == r.rows[pos].View.Row
}

func renderRow(src Source, v ViewRow) RowDesc {
	row := src.resolve(v)
	d := RowDesc{View: v, Data: row}

	first := true
	for ordinal, col := range src.Store.Columns() {
		if !col.Visible {
			continue
		}
		d.Cells = append(d.Cells, RenderCell(src, col, ordinal, row, v))
		if first && src.Hierarchical && !v.IsChild() && row.HasChildren() {
			d.Expander = ExpanderCollapsed
			if src.IsExpanded(v.Row) {
				d.Expander = ExpanderExpanded
			}
		}
		first = false
	}
	return d
}

// RenderCell resolves and formats one cell.
func RenderCell(src Source, col *model.Column, ordinal int, row *model.Row, v ViewRow) CellDesc {
	value, ok := row.Value(col, ordinal)
	ctx := model.FormatContext{
		Value:      value,
		Row:        row,
		Column:     col,
		Ordinal:    ordinal,
		DataIndex:  v.Row,
		ChildIndex: v.Child,
	}

	c := CellDesc{
		Ordinal: ordinal,
		Value:   value,
		Style:   core.DefaultStyle(),
		Align:   col.Align,
		Wrap:    col.Wrap,
	}

	switch {
	case col.Formatter != nil:
		c.Text = Sanitize(col.Formatter(ctx))
	case !ok || isEmpty(value):
		c.Text = src.EmptyText
		c.Empty = true
	default:
		c.Text = Sanitize(fmt.Sprint(value))
	}
	if col.TooltipFormatter != nil {
		c.Tooltip = Sanitize(col.TooltipFormatter(ctx))
	}
	if col.StyleFormatter != nil {
		c.Style = col.StyleFormatter(ctx)
	}
	return c
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

// Sanitize replaces control characters so a value cannot move the cursor
// or break the row.
func Sanitize(s string) string {
	if strings.IndexFunc(s, unicode.IsControl) < 0 {
		return s
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
}
