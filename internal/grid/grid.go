// Package grid is the data grid widget: a column/row store rendered as a
// sortable, selectable, editable table.
//
// Every mutating call records the phases it invalidates on the update
// scheduler and returns. The scheduler runs the phases once per frame in
// dependency order (sort, columns, rows, buildRows, resize), so any number
// of synchronous mutations produce one rebuild and one paint. The grid is
// single-threaded: the host's event loop owns it.
package grid

import (
	"github.com/dshills/gridstorm/internal/grid/editor"
	"github.com/dshills/gridstorm/internal/grid/layout"
	"github.com/dshills/gridstorm/internal/grid/model"
	"github.com/dshills/gridstorm/internal/grid/notify"
	"github.com/dshills/gridstorm/internal/grid/render"
	"github.com/dshills/gridstorm/internal/grid/schedule"
	"github.com/dshills/gridstorm/internal/grid/selection"
	"github.com/dshills/gridstorm/internal/grid/sorting"
	"github.com/dshills/gridstorm/internal/input/mouse"
	"github.com/dshills/gridstorm/internal/logging"
)

// DefaultEmptyText is shown in cells without a value.
const DefaultEmptyText = ""

// Grid is the data grid widget.
type Grid struct {
	store    *model.Store
	sorter   *sorting.Sorter
	sel      *selection.Controller
	frames   *schedule.FrameQueue
	sched    *schedule.Scheduler
	renderer *render.Renderer
	editor   *editor.Controller
	notifier *notify.Notifier
	painter  *render.Painter
	viewport *layout.Viewport
	clicks   *mouse.ClickTracker
	logger   *logging.Logger

	expanded          []bool
	showChildren      bool
	emptyText         string
	editOnDoubleClick bool

	width, height int
	visible       bool
	focused       bool
	layoutPending bool

	visibleCols  []int
	widths       layout.Widths
	springHeight int
	scrollTarget int
	activeCol    int

	dirty  bool
	paints int
}

// Option configures a Grid.
type Option func(*Grid)

// WithLogger sets the grid logger.
func WithLogger(l *logging.Logger) Option {
	return func(g *Grid) { g.logger = logging.OrNop(l).WithComponent("grid") }
}

// WithShowChildren starts the grid in hierarchical mode.
func WithShowChildren(on bool) Option {
	return func(g *Grid) { g.showChildren = on }
}

// WithEmptyText sets the placeholder for empty cells.
func WithEmptyText(s string) Option {
	return func(g *Grid) { g.emptyText = s }
}

// WithEditOnDoubleClick opens the inline editor on double click.
func WithEditOnDoubleClick(on bool) Option {
	return func(g *Grid) { g.editOnDoubleClick = on }
}

// WithTheme sets the painter theme.
func WithTheme(t render.Theme) Option {
	return func(g *Grid) { g.painter = render.NewPainter(t) }
}

// WithSize sets the initial screen size.
func WithSize(width, height int) Option {
	return func(g *Grid) { g.width, g.height = width, height }
}

// New creates an empty, visible grid.
func New(opts ...Option) *Grid {
	g := &Grid{
		store:             model.NewStore(),
		sorter:            sorting.New(),
		sel:               selection.New(0),
		frames:            schedule.NewFrameQueue(),
		renderer:          render.New(),
		notifier:          notify.New(),
		painter:           render.NewPainter(render.DefaultTheme()),
		clicks:            mouse.NewClickTracker(mouse.DefaultDoubleClickTime, mouse.DefaultDoubleClickDistance),
		logger:            logging.Nop(),
		emptyText:         DefaultEmptyText,
		editOnDoubleClick: true,
		visible:           true,
		scrollTarget:      -1,
		activeCol:         -1,
	}
	for _, opt := range opts {
		opt(g)
	}

	g.sched = schedule.New(g.frames, schedule.WithLogger(g.logger))
	g.editor = editor.NewController(g.sched, g.logger)
	g.viewport = layout.NewViewport(g.width, g.bodyHeight())
	g.sorter.SetHierarchical(g.showChildren)

	g.sched.Handle(schedule.PhaseSort, g.runSort)
	g.sched.Handle(schedule.PhaseColumns, g.runColumns)
	g.sched.Handle(schedule.PhaseRows, g.runRows)
	g.sched.Handle(schedule.PhaseBuildRows, g.runBuildRows)
	g.sched.Handle(schedule.PhaseResize, g.runResize)
	g.sched.Handle(schedule.PhaseResizeHeight, g.runResizeHeight)
	g.sched.Handle(schedule.PhaseResizeWidth, g.runResizeWidth)

	g.sched.RequestUpdate(schedule.PhaseColumns | schedule.PhaseBuildRows | schedule.PhaseResize)
	return g
}

// Subscribe registers observer for one topic, or all topics when topic is
// empty.
func (g *Grid) Subscribe(topic notify.Topic, observer notify.Observer) *notify.Subscription {
	return g.notifier.On(topic, observer)
}

// Notifier returns the grid's event notifier.
func (g *Grid) Notifier() *notify.Notifier {
	return g.notifier
}

// Tick runs one frame of scheduled work and returns how many frame
// callbacks ran.
func (g *Grid) Tick() int {
	return g.frames.Tick()
}

// RunDeferred runs tasks deferred by the last event, such as the editor's
// focus-out check.
func (g *Grid) RunDeferred() int {
	return g.sched.RunDeferred()
}

// Stats returns the scheduler counters.
func (g *Grid) Stats() schedule.Stats {
	return g.sched.Stats()
}

// RenderStats returns the renderer counters.
func (g *Grid) RenderStats() render.Stats {
	return g.renderer.Stats()
}

// Paints returns how many times the grid has been drawn.
func (g *Grid) Paints() int {
	return g.paints
}

// NeedsPaint reports whether the grid changed since the last Draw.
func (g *Grid) NeedsPaint() bool {
	return g.dirty && g.visible
}

// Len returns the number of rows in the flattened view.
func (g *Grid) Len() int {
	return g.renderer.Len()
}

// ViewRow returns the view row at pos.
func (g *Grid) ViewRow(pos int) (render.ViewRow, bool) {
	d, ok := g.renderer.Row(pos)
	return d.View, ok
}

// Focused returns the focused view position, or -1.
func (g *Grid) Focused() int {
	return g.sel.Focused()
}

// Viewport returns the scroll viewport.
func (g *Grid) Viewport() *layout.Viewport {
	return g.viewport
}

// Widths returns the distributed widths of the visible columns.
func (g *Grid) Widths() layout.Widths {
	return g.widths
}

func (g *Grid) bodyHeight() int {
	return max(0, g.height-render.HeaderHeight-render.FooterHeight)
}

func (g *Grid) source() render.Source {
	return render.Source{
		Store:        g.store,
		Order:        g.sorter.Rows(),
		Children:     g.sorter.Children,
		Expanded:     g.expanded,
		Hierarchical: g.showChildren,
		EmptyText:    g.emptyText,
	}
}

func (g *Grid) markDirty() {
	g.dirty = true
}
