package grid

import (
	"errors"
	"strings"
	"testing"

	"github.com/dshills/gridstorm/internal/grid/backend"
	"github.com/dshills/gridstorm/internal/grid/model"
	"github.com/dshills/gridstorm/internal/grid/notify"
	"github.com/dshills/gridstorm/internal/grid/schedule"
	"github.com/dshills/gridstorm/internal/grid/sorting"
	"github.com/dshills/gridstorm/internal/input/key"
	"github.com/dshills/gridstorm/internal/input/mouse"
)

func people() []*model.Row {
	return []*model.Row{
		model.NewRow(map[string]any{"name": "carol", "age": 41}),
		model.NewRow(map[string]any{"name": "alice", "age": 29}),
		model.NewRow(map[string]any{"name": "bob", "age": 35}),
	}
}

func newGrid(t *testing.T, opts ...Option) *Grid {
	t.Helper()
	g := New(append([]Option{WithSize(30, 8)}, opts...)...)
	g.SetColumns([]*model.Column{
		model.NewColumn("Name", model.WithField("name"), model.WithWidth(12)),
		model.NewColumn("Age", model.WithField("age"), model.WithWidth(6)),
	})
	g.SetRows(people())
	settle(g)
	return g
}

// settle runs frames until no work is queued.
func settle(g *Grid) {
	for i := 0; i < 10 && g.Tick() > 0; i++ {
	}
}

type recorder struct {
	events []notify.Event
}

func (r *recorder) observe(ev notify.Event) { r.events = append(r.events, ev) }

func (r *recorder) topics() []notify.Topic {
	out := make([]notify.Topic, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Topic
	}
	return out
}

func watch(g *Grid, topic notify.Topic) *recorder {
	r := &recorder{}
	g.Subscribe(topic, r.observe)
	return r
}

func typeKeys(g *Grid, s string) {
	for _, r := range s {
		g.HandleKey(key.NewRuneEvent(r, key.ModNone))
	}
}

func clearEditor(g *Grid) {
	g.HandleKey(key.NewSpecialEvent(key.KeyEnd, key.ModNone))
	for i := 0; i < 16; i++ {
		g.HandleKey(key.NewSpecialEvent(key.KeyBackspace, key.ModNone))
	}
}

func TestRebuildClearsSelection(t *testing.T) {
	g := newGrid(t)
	g.sel.Click(1)
	g.sel.ExtendTo(2)
	if got := g.Selected(); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("Selected() = %v, want [1 2]", got)
	}

	rec := watch(g, notify.SelectionChanged)
	g.SetRows(nil)
	settle(g)

	if g.SelectedCount() != 0 {
		t.Errorf("SelectedCount() = %d, want 0", g.SelectedCount())
	}
	if len(rec.events) != 1 {
		t.Fatalf("selection-changed emitted %d times, want 1", len(rec.events))
	}
	if len(rec.events[0].Selected) != 0 {
		t.Errorf("event selection = %v, want empty", rec.events[0].Selected)
	}
}

func TestCommitEmitsOneValueChanged(t *testing.T) {
	g := newGrid(t)
	rec := watch(g, notify.ValueChanged)
	row := g.Row(0)

	if err := g.CreateEditor(0, 0); err != nil {
		t.Fatalf("CreateEditor: %v", err)
	}
	clearEditor(g)
	typeKeys(g, "xyz")
	g.HandleKey(key.NewSpecialEvent(key.KeyEnter, key.ModNone))

	if g.Editing() {
		t.Fatal("Enter should close the editor")
	}
	if len(rec.events) != 1 {
		t.Fatalf("value-changed emitted %d times, want 1", len(rec.events))
	}
	ev := rec.events[0]
	if ev.NewValue != "xyz" || ev.OldValue != "carol" || ev.Property != "name" || ev.DataIndex != 0 {
		t.Errorf("event = %+v", ev)
	}
	if row.Fields["name"] != "xyz" {
		t.Errorf("row name = %v, want xyz", row.Fields["name"])
	}
}

func TestEscapeDiscards(t *testing.T) {
	g := newGrid(t)
	rec := watch(g, notify.ValueChanged)

	g.CreateEditor(0, 0)
	typeKeys(g, "zzz")
	g.HandleKey(key.NewSpecialEvent(key.KeyEscape, key.ModNone))

	if g.Editing() {
		t.Fatal("Escape should close the editor")
	}
	if len(rec.events) != 0 {
		t.Errorf("value-changed emitted %d times, want 0", len(rec.events))
	}
	if g.Row(0).Fields["name"] != "carol" {
		t.Errorf("row changed on discard: %v", g.Row(0).Fields["name"])
	}
}

func TestUntouchedCommitEmitsNothing(t *testing.T) {
	g := newGrid(t)
	rec := watch(g, notify.ValueChanged)

	g.CreateEditor(1, 1)
	g.HandleKey(key.NewSpecialEvent(key.KeyTab, key.ModNone))
	g.HandleKey(key.NewSpecialEvent(key.KeyEnter, key.ModNone))
	if len(rec.events) != 0 {
		t.Errorf("untouched editors emitted %v", rec.topics())
	}
}

func TestMutationsCoalesce(t *testing.T) {
	g := newGrid(t)
	b := backend.NewNullBackend(30, 8)
	g.Draw(b)

	builds := g.RenderStats().Builds
	runs := g.Stats().Runs[schedule.PhaseBuildRows]
	paints := g.Paints()

	g.AddRow(model.NewRow(map[string]any{"name": "dan", "age": 50}))
	g.AddRow(model.NewRow(map[string]any{"name": "eve", "age": 22}))
	g.AddRow(model.NewRow(map[string]any{"name": "fay", "age": 31}))

	if n := g.Tick(); n != 1 {
		t.Fatalf("Tick() ran %d frames, want 1", n)
	}
	if n := g.Tick(); n != 0 {
		t.Errorf("second Tick() ran %d frames, want 0", n)
	}
	if g.NeedsPaint() {
		g.Draw(b)
	}

	if got := g.RenderStats().Builds - builds; got != 1 {
		t.Errorf("builds = %d, want 1", got)
	}
	if got := g.Stats().Runs[schedule.PhaseBuildRows] - runs; got != 1 {
		t.Errorf("buildRows runs = %d, want 1", got)
	}
	if got := g.Paints() - paints; got != 1 {
		t.Errorf("paints = %d, want 1", got)
	}
	if g.Len() != 6 {
		t.Errorf("Len() = %d, want 6", g.Len())
	}
}

func TestSortedRowsIsNeverStale(t *testing.T) {
	g := newGrid(t)
	g.Sort(0, sorting.Ascending)
	if got := g.SortedRows(); len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 0 {
		t.Fatalf("SortedRows() = %v, want [1 2 0]", got)
	}

	g.AddRow(model.NewRow(map[string]any{"name": "aaron", "age": 1}))
	if got := g.SortedRows(); len(got) != 4 || got[0] != 3 {
		t.Errorf("SortedRows() before flush = %v, want aaron first", got)
	}
}

func TestKeyboardSelection(t *testing.T) {
	g := newGrid(t)
	rec := watch(g, notify.SelectionChanged)

	g.HandleKey(key.NewSpecialEvent(key.KeyHome, key.ModNone))
	g.HandleKey(key.NewSpecialEvent(key.KeyDown, key.ModShift))
	g.HandleKey(key.NewSpecialEvent(key.KeyDown, key.ModShift))
	if got := g.Selected(); len(got) != 3 || g.Focused() != 2 {
		t.Fatalf("Selected() = %v focus %d, want [0 1 2] focus 2", got, g.Focused())
	}

	g.HandleKey(key.NewSpecialEvent(key.KeyUp, key.ModCtrl))
	if g.Focused() != 1 || g.SelectedCount() != 3 {
		t.Errorf("Ctrl+Up should move focus only: focus %d, count %d", g.Focused(), g.SelectedCount())
	}
	g.HandleKey(key.NewRuneEvent(' ', key.ModCtrl))
	if g.SelectedCount() != 2 {
		t.Errorf("Ctrl+Space should deselect the focused row, count %d", g.SelectedCount())
	}
	if len(rec.events) != 4 {
		t.Errorf("selection-changed emitted %d times, want 4", len(rec.events))
	}

	if !g.HandleKey(key.NewRuneEvent('a', key.ModCtrl)) || g.SelectedCount() != 3 {
		t.Errorf("Ctrl+A should select all, count %d", g.SelectedCount())
	}
	if g.HandleKey(key.NewRuneEvent('q', key.ModNone)) {
		t.Error("plain runes should not be consumed without an editor")
	}
}

func TestDeleteKeyEmitsOnly(t *testing.T) {
	g := newGrid(t)
	rec := watch(g, notify.DeleteRow)
	g.HandleKey(key.NewSpecialEvent(key.KeyEnd, key.ModNone))
	g.HandleKey(key.NewSpecialEvent(key.KeyDelete, key.ModNone))

	if len(rec.events) != 1 || rec.events[0].DataIndex != 2 {
		t.Fatalf("delete-row events = %+v", rec.events)
	}
	settle(g)
	if g.Len() != 3 {
		t.Error("the grid must not remove rows on its own")
	}
}

func TestMouseClicks(t *testing.T) {
	g := newGrid(t, WithEditOnDoubleClick(false))
	all := watch(g, "")

	// Body row 1 (screen y 2), Age column.
	g.HandleMouse(mouse.NewPress(14, 2, mouse.ButtonLeft, key.ModNone))
	want := []notify.Topic{notify.SelectionChanged, notify.RowClick, notify.CellClick}
	if got := all.topics(); !equalTopics(got, want) {
		t.Fatalf("topics = %v, want %v", got, want)
	}
	if ev := all.events[2]; ev.Column != 1 || ev.DataIndex != 1 {
		t.Errorf("cell-click = %+v", ev)
	}

	all.events = nil
	g.HandleMouse(mouse.NewPress(14, 2, mouse.ButtonLeft, key.ModNone))
	want = []notify.Topic{notify.RowDoubleClick, notify.CellDoubleClick}
	if got := all.topics(); !equalTopics(got, want) {
		t.Errorf("double click topics = %v, want %v", got, want)
	}
	if g.Editing() {
		t.Error("editor opened with edit-on-double-click off")
	}

	g.clicks.Reset()
	g.HandleMouse(mouse.NewPress(0, 3, mouse.ButtonLeft, key.ModShift))
	if got := g.Selected(); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("shift-click Selected() = %v, want [1 2]", got)
	}
}

func TestDoubleClickOpensEditor(t *testing.T) {
	g := newGrid(t)
	g.HandleMouse(mouse.NewPress(14, 1, mouse.ButtonLeft, key.ModNone))
	g.HandleMouse(mouse.NewPress(14, 1, mouse.ButtonLeft, key.ModNone))
	if !g.Editing() {
		t.Fatal("double click should open the editor")
	}
	if c := g.EditorSession().Active(); c == nil || c.Ordinal != 1 {
		t.Errorf("focused editor = %+v, want Age", c)
	}

	// A click on another row blurs the session; the commit runs deferred.
	g.HandleMouse(mouse.NewPress(0, 3, mouse.ButtonLeft, key.ModNone))
	if !g.Editing() {
		t.Fatal("focus-out must wait for the deferred check")
	}
	g.RunDeferred()
	if g.Editing() {
		t.Error("session should be closed after the deferred check")
	}
}

func TestHeaderClickSorts(t *testing.T) {
	g := newGrid(t)
	g.HandleMouse(mouse.NewPress(13, 0, mouse.ButtonLeft, key.ModNone))
	settle(g)
	if st := g.SortState(); st.Column != 1 || st.Order != sorting.Ascending {
		t.Fatalf("SortState() = %+v, want Age ascending", st)
	}
	if d, _ := g.renderer.Row(0); d.Data.Fields["name"] != "alice" {
		t.Errorf("first row = %v, want alice", d.Data.Fields["name"])
	}

	g.HandleMouse(mouse.NewPress(13, 0, mouse.ButtonLeft, key.ModNone))
	settle(g)
	if st := g.SortState(); st.Order != sorting.Descending {
		t.Errorf("second click should flip to descending, got %v", st.Order)
	}
	if d, _ := g.renderer.Row(0); d.Data.Fields["name"] != "carol" {
		t.Errorf("first row = %v, want carol", d.Data.Fields["name"])
	}
}

func TestExpandCollapse(t *testing.T) {
	g := New(WithSize(30, 8), WithShowChildren(true))
	g.SetColumns([]*model.Column{model.NewColumn("Name", model.WithField("name"), model.WithWidth(12))})
	parent := model.NewRow(map[string]any{"name": "p"})
	parent.Children = []*model.Row{
		model.NewRow(map[string]any{"name": "c2"}),
		model.NewRow(map[string]any{"name": "c1"}),
	}
	g.SetRows([]*model.Row{parent, model.NewRow(map[string]any{"name": "q"})})
	settle(g)

	if g.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 collapsed", g.Len())
	}
	g.HandleMouse(mouse.NewPress(0, 1, mouse.ButtonLeft, key.ModNone))
	if g.Len() != 4 {
		t.Fatalf("expander click: Len() = %d, want 4", g.Len())
	}
	if v, _ := g.ViewRow(1); v.Row != 0 || v.Child != 0 {
		t.Errorf("first child = %+v", v)
	}

	g.HandleKey(key.NewSpecialEvent(key.KeyDown, key.ModNone))
	g.HandleKey(key.NewSpecialEvent(key.KeyLeft, key.ModNone))
	if g.Len() != 2 || g.Focused() != 0 {
		t.Errorf("Left on a child should collapse to the parent: Len %d focus %d", g.Len(), g.Focused())
	}
	g.HandleKey(key.NewSpecialEvent(key.KeyRight, key.ModNone))
	if g.Len() != 4 || g.RenderStats().Builds != 1 {
		t.Errorf("Right should re-expand from cache: Len %d builds %d", g.Len(), g.RenderStats().Builds)
	}
}

func TestLayoutWaitsWhileHidden(t *testing.T) {
	g := New(WithSize(30, 8))
	g.SetColumns([]*model.Column{
		model.NewColumn("Name", model.WithField("name"), model.WithWidth(12), model.WithSpring()),
		model.NewColumn("Age", model.WithField("age"), model.WithWidth(6)),
	})
	g.SetRows(people())
	settle(g)
	if w := g.Widths().Columns; w[0] != 24 || w[1] != 6 {
		t.Fatalf("widths = %v, want [24 6]", w)
	}
	if g.SpringHeight() != 3 {
		t.Errorf("SpringHeight() = %d, want 3", g.SpringHeight())
	}

	g.SetVisible(false)
	g.Resize(40, 8)
	settle(g)
	if w := g.Widths().Columns; w[0] != 24 {
		t.Errorf("hidden grid laid out: %v", w)
	}
	if g.NeedsPaint() {
		t.Error("hidden grid should not need a paint")
	}

	g.SetVisible(true)
	settle(g)
	if w := g.Widths().Columns; w[0] != 34 {
		t.Errorf("widths after show = %v, want [34 6]", w)
	}
}

func TestDraw(t *testing.T) {
	g := newGrid(t)
	g.Sort(1, sorting.Descending)
	settle(g)
	b := backend.NewNullBackend(30, 8)
	g.Draw(b)

	if got := b.Line(0); !strings.HasPrefix(got, "Name        Age ▼") {
		t.Errorf("header = %q", got)
	}
	if got := b.Line(1); !strings.HasPrefix(got, "carol       41") {
		t.Errorf("row 0 = %q", got)
	}
	if got := b.Line(7); !strings.HasPrefix(got, "3 rows, 0 selected") {
		t.Errorf("footer = %q", got)
	}
	if b.Shows() != 1 || g.NeedsPaint() {
		t.Errorf("shows %d, needs paint %v", b.Shows(), g.NeedsPaint())
	}
}

func TestValidationErrorInFooter(t *testing.T) {
	g := New(WithSize(30, 6))
	g.SetColumns([]*model.Column{model.NewColumn("Age", model.WithField("age"), model.WithEditor(&model.EditorSpec{
		Validate: func(_, nv any, _ *model.Row) error {
			if n, ok := nv.(int); ok && n > 150 {
				return errTooOld
			}
			return nil
		},
	}))})
	g.SetRows([]*model.Row{model.NewRow(map[string]any{"age": 30})})
	settle(g)

	g.CreateEditor(0, 0)
	clearEditor(g)
	typeKeys(g, "200")
	g.HandleKey(key.NewSpecialEvent(key.KeyEnter, key.ModNone))
	if !g.Editing() {
		t.Fatal("invalid value should keep the editor open")
	}

	b := backend.NewNullBackend(30, 6)
	g.Draw(b)
	if got := b.Line(5); !strings.HasPrefix(got, "too old") {
		t.Errorf("footer = %q, want the validation message", got)
	}
}

var errTooOld = validationErr("too old")

type validationErr string

func (e validationErr) Error() string { return string(e) }

func equalTopics(a, b []notify.Topic) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func treeGrid(t *testing.T, rows ...*model.Row) *Grid {
	t.Helper()
	g := New(WithSize(30, 8), WithShowChildren(true))
	g.SetColumns([]*model.Column{model.NewColumn("Name", model.WithField("name"), model.WithWidth(12))})
	g.SetRows(rows)
	settle(g)
	return g
}

func parentRow(name string, children ...string) *model.Row {
	p := model.NewRow(map[string]any{"name": name})
	for _, c := range children {
		p.Children = append(p.Children, model.NewRow(map[string]any{"name": c}))
	}
	return p
}

func TestExpandWaitsForRebuild(t *testing.T) {
	g := treeGrid(t, model.NewRow(map[string]any{"name": "q"}), parentRow("p", "c1", "c2"))
	if !g.ToggleExpand(1) || g.Len() != 4 {
		t.Fatalf("expand: Len() = %d, want 4", g.Len())
	}

	g.RemoveRow(0)
	if g.ToggleExpand(1) {
		t.Error("ToggleExpand before the rebuild should be refused")
	}
	settle(g)
	if g.Len() != 3 {
		t.Fatalf("after rebuild Len() = %d, want parent and two children", g.Len())
	}
	if !g.ToggleExpand(0) || g.Len() != 1 {
		t.Errorf("collapse after rebuild: Len() = %d, want 1", g.Len())
	}
}

func TestKeysBeforeRebuildAreSafe(t *testing.T) {
	g := treeGrid(t, model.NewRow(map[string]any{"name": "q"}), parentRow("p", "c1"))
	g.ToggleExpand(1)
	g.ToggleExpand(1)
	if g.Focused() != 1 || g.Len() != 2 {
		t.Fatalf("focus %d Len %d, want focus on the collapsed parent", g.Focused(), g.Len())
	}

	g.SetRows([]*model.Row{model.NewRow(map[string]any{"name": "solo"})})
	g.HandleKey(key.NewSpecialEvent(key.KeyRight, key.ModNone))
	g.HandleKey(key.NewSpecialEvent(key.KeyLeft, key.ModNone))
	if err := g.CreateEditor(1, 0); !errors.Is(err, ErrViewPending) {
		t.Errorf("CreateEditor before rebuild = %v, want ErrViewPending", err)
	}
	if g.Editing() {
		t.Fatal("no session should open on a stale row")
	}

	settle(g)
	if g.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", g.Len())
	}
	if err := g.CreateEditor(0, 0); err != nil {
		t.Errorf("CreateEditor after rebuild: %v", err)
	}
}

func TestCollapseFromChildEmitsOnce(t *testing.T) {
	g := treeGrid(t, parentRow("p", "c1", "c2"), model.NewRow(map[string]any{"name": "q"}))
	g.ToggleExpand(0)
	g.HandleKey(key.NewSpecialEvent(key.KeyDown, key.ModNone))
	if got := g.Selected(); len(got) != 1 || got[0] != 1 {
		t.Fatalf("Selected() = %v, want the first child", got)
	}

	rec := watch(g, notify.SelectionChanged)
	g.HandleKey(key.NewSpecialEvent(key.KeyLeft, key.ModNone))
	if got := g.Selected(); len(got) != 1 || got[0] != 0 || g.Focused() != 0 {
		t.Errorf("Selected() = %v focus %d, want the parent", got, g.Focused())
	}
	if len(rec.events) != 1 {
		t.Errorf("selection-changed emitted %d times, want 1", len(rec.events))
	}
}
