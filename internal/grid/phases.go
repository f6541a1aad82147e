package grid

import (
	"github.com/dshills/gridstorm/internal/grid/layout"
	"github.com/dshills/gridstorm/internal/grid/notify"
	"github.com/dshills/gridstorm/internal/grid/render"
	"github.com/dshills/gridstorm/internal/grid/schedule"
	"github.com/dshills/gridstorm/internal/grid/sorting"
)

func (g *Grid) runSort() {
	g.sorter.SetHierarchical(g.showChildren)
	g.sorter.Sort(g.store)
}

func (g *Grid) runColumns() {
	g.visibleCols = g.store.VisibleColumns()
	if st := g.sorter.State(); st.Column >= g.store.ColumnCount() {
		g.sorter.SetState(sorting.NoColumn, sorting.Ascending)
		g.sched.RequestUpdate(schedule.PhaseSort)
	}
	if g.activeCol >= len(g.visibleCols) {
		g.activeCol = -1
	}
	g.editor.Discard()
	g.sched.RequestUpdate(schedule.PhaseBuildRows | schedule.PhaseResize)
}

func (g *Grid) runRows() {
	g.renderer.Update(g.source())
	g.markDirty()
}

func (g *Grid) runBuildRows() {
	if g.sorter.Heal(g.store) {
		g.logger.Debug("sort permutation healed")
	}
	g.closeEditor()

	g.renderer.Build(g.source())
	if g.sel.Reset(g.renderer.Len()) {
		g.emitSelection()
	}
	g.sched.RequestUpdate(schedule.PhaseResize)
	g.markDirty()
}

// closeEditor ends an open session before the rows under it are rebuilt.
// A commit that fails validation is discarded.
func (g *Grid) closeEditor() {
	if !g.editor.Active() {
		return
	}
	changes, err := g.editor.Commit()
	if err != nil {
		g.logger.Warn("discarding edit on rebuild: %v", err)
		g.editor.Discard()
		return
	}
	g.emitChanges(changes)
}

func (g *Grid) runResize() {
	g.layoutWidth()
	g.layoutHeight()
}

func (g *Grid) runResizeHeight() {
	g.layoutHeight()
}

func (g *Grid) runResizeWidth() {
	g.layoutWidth()
}

func (g *Grid) layoutWidth() {
	if !g.visible {
		g.layoutPending = true
		return
	}
	tracks := make([]layout.Track, 0, len(g.visibleCols))
	for _, ordinal := range g.visibleCols {
		c := g.store.Column(ordinal)
		tracks = append(tracks, layout.Track{Width: c.Width, Spring: c.Spring})
	}
	g.widths = layout.Distribute(tracks, g.width)
	g.viewport.Resize(g.width, g.bodyHeight())
	g.viewport.SetContent(g.renderer.Len(), g.widths.Total)
	g.markDirty()
}

func (g *Grid) layoutHeight() {
	if !g.visible {
		g.layoutPending = true
		return
	}
	g.springHeight = layout.SpringRowHeight(g.height, render.HeaderHeight, render.FooterHeight, g.renderer.Len())
	g.viewport.Resize(g.width, g.bodyHeight())
	g.viewport.SetContent(g.renderer.Len(), g.widths.Total)
	if g.scrollTarget >= 0 {
		g.viewport.EnsureVisible(g.scrollTarget)
		g.scrollTarget = -1
	}
	g.markDirty()
}

// Resize sets the screen size the grid lays out into.
func (g *Grid) Resize(width, height int) {
	if width == g.width && height == g.height {
		return
	}
	var mask schedule.Phase
	if width != g.width {
		mask |= schedule.PhaseResizeWidth
	}
	if height != g.height {
		mask |= schedule.PhaseResizeHeight
	}
	g.width, g.height = width, height
	g.sched.RequestUpdate(mask)
}

// Size returns the screen size.
func (g *Grid) Size() (width, height int) {
	return g.width, g.height
}

// SpringHeight returns the height of the filler below the last row.
func (g *Grid) SpringHeight() int {
	return g.springHeight
}

// Visible reports whether the grid is shown.
func (g *Grid) Visible() bool {
	return g.visible
}

// SetVisible shows or hides the grid. Layout requested while hidden runs
// when the grid is shown again.
func (g *Grid) SetVisible(on bool) {
	if g.visible == on {
		return
	}
	g.visible = on
	if on && g.layoutPending {
		g.layoutPending = false
		g.sched.RequestUpdate(schedule.PhaseResize)
	}
	g.markDirty()
}

func (g *Grid) emitSelection() {
	g.notifier.Emit(notify.Event{
		Topic:      notify.SelectionChanged,
		Position:   g.sel.Focused(),
		DataIndex:  -1,
		ChildIndex: -1,
		Column:     -1,
		Selected:   g.sel.Selected(),
	})
	g.markDirty()
}
