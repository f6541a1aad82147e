package grid

import (
	"github.com/dshills/gridstorm/internal/grid/model"
	"github.com/dshills/gridstorm/internal/grid/schedule"
	"github.com/dshills/gridstorm/internal/grid/sorting"
)

const (
	columnsChanged = schedule.PhaseColumns | schedule.PhaseSort | schedule.PhaseBuildRows | schedule.PhaseResize
	rowsChanged    = schedule.PhaseSort | schedule.PhaseBuildRows
)

// Columns returns the column definitions. Callers must not modify the slice.
func (g *Grid) Columns() []*model.Column {
	return g.store.Columns()
}

// Column returns the column at ordinal, or nil.
func (g *Grid) Column(ordinal int) *model.Column {
	return g.store.Column(ordinal)
}

// SetColumns replaces every column.
func (g *Grid) SetColumns(cols []*model.Column) {
	g.store.SetColumns(cols)
	g.sched.RequestUpdate(columnsChanged)
}

// AddColumn appends one column.
func (g *Grid) AddColumn(c *model.Column) {
	g.AddColumns(c)
}

// AddColumns appends columns.
func (g *Grid) AddColumns(cols ...*model.Column) {
	g.store.AddColumns(cols...)
	g.sched.RequestUpdate(columnsChanged)
}

// Rows returns the dataset. Callers must not modify the slice.
func (g *Grid) Rows() []*model.Row {
	return g.store.Rows()
}

// Row returns data row i, or nil.
func (g *Grid) Row(i int) *model.Row {
	return g.store.Row(i)
}

// SetRows replaces the dataset. Expand state is reset.
func (g *Grid) SetRows(rows []*model.Row) {
	g.store.SetRows(rows)
	g.expanded = make([]bool, g.store.Len())
	g.sched.RequestUpdate(rowsChanged)
}

// AddRow appends one row.
func (g *Grid) AddRow(r *model.Row) {
	g.AddRows(r)
}

// AddRows appends rows. Nil rows are skipped.
func (g *Grid) AddRows(rows ...*model.Row) {
	before := g.store.Len()
	g.store.AddRows(rows...)
	for i := before; i < g.store.Len(); i++ {
		g.expanded = append(g.expanded, false)
	}
	g.sched.RequestUpdate(rowsChanged)
}

// RemoveRow removes data row i. Out-of-range indices are ignored.
func (g *Grid) RemoveRow(i int) bool {
	return g.RemoveRows(i) == 1
}

// RemoveRows removes the data rows at indices, ignoring duplicates and
// indices out of range. It returns the number removed.
func (g *Grid) RemoveRows(indices ...int) int {
	drop := make(map[int]bool, len(indices))
	for _, i := range indices {
		if i >= 0 && i < g.store.Len() {
			drop[i] = true
		}
	}
	if len(drop) == 0 {
		return 0
	}

	kept := g.expanded[:0]
	for i, e := range g.expanded {
		if !drop[i] {
			kept = append(kept, e)
		}
	}
	g.expanded = kept

	n := g.store.RemoveRows(indices...)
	g.sched.RequestUpdate(rowsChanged)
	return n
}

// RowsChanged reports an in-place edit of row data that keeps the row
// count and order. Only cell content is re-rendered.
func (g *Grid) RowsChanged() {
	g.sched.RequestUpdate(schedule.PhaseRows)
}

// ShowChildren reports whether hierarchical display is on.
func (g *Grid) ShowChildren() bool {
	return g.showChildren
}

// SetShowChildren toggles hierarchical display.
func (g *Grid) SetShowChildren(on bool) {
	if g.showChildren == on {
		return
	}
	g.showChildren = on
	g.sched.RequestUpdate(rowsChanged)
}

// Sort orders the grid by column. A negative column restores data order.
func (g *Grid) Sort(column int, order sorting.Order) {
	g.sorter.SetState(column, order)
	g.sched.RequestUpdate(rowsChanged)
}

// SortState returns the active sort column and direction.
func (g *Grid) SortState() sorting.State {
	return g.sorter.State()
}

// SortedRows returns the top-level permutation. A permutation made stale by
// mutations not yet flushed is recomputed first.
func (g *Grid) SortedRows() []int {
	g.ensureSorted()
	return g.sorter.Rows()
}

// SortedChildren returns the child permutation of data row i, or nil.
func (g *Grid) SortedChildren(i int) []int {
	g.ensureSorted()
	return g.sorter.Children(i)
}

func (g *Grid) ensureSorted() {
	if g.sched.Pending()&schedule.PhaseSort != 0 || g.sorter.Stale(g.store) {
		g.sorter.SetHierarchical(g.showChildren)
		g.sorter.Sort(g.store)
	}
}

// Selected returns the selected view positions in ascending order.
func (g *Grid) Selected() []int {
	return g.sel.Selected()
}

// SelectedCount returns the number of selected rows.
func (g *Grid) SelectedCount() int {
	return g.sel.Count()
}

// SelectedRows returns the rows behind the selection, in view order.
func (g *Grid) SelectedRows() []*model.Row {
	var out []*model.Row
	for _, pos := range g.sel.Selected() {
		if d, ok := g.renderer.Row(pos); ok && d.Data != nil {
			out = append(out, d.Data)
		}
	}
	return out
}

// PropertyOptions returns the editor options of the column bound to field.
func (g *Grid) PropertyOptions(field string) []model.Option {
	c, _ := g.store.ColumnByField(field)
	if c == nil || c.Editor == nil {
		return nil
	}
	return c.Editor.Options
}

// PropertyOption returns the option with key from the column bound to field.
func (g *Grid) PropertyOption(field, key string) (model.Option, bool) {
	for _, o := range g.PropertyOptions(field) {
		if o.Key == key {
			return o, true
		}
	}
	return model.Option{}, false
}

// ScrollToData scrolls row on screen after the next layout. Child rows are
// found through their parent when it is expanded.
func (g *Grid) ScrollToData(row *model.Row) bool {
	if i := g.store.IndexOf(row); i >= 0 {
		g.ScrollToRow(g.renderer.PositionOf(i, -1))
		return true
	}
	for i, parent := range g.store.Rows() {
		for c, child := range parent.Children {
			if child == row {
				if pos := g.renderer.PositionOf(i, c); pos >= 0 {
					g.ScrollToRow(pos)
					return true
				}
				return false
			}
		}
	}
	return false
}
