package grid

import (
	"fmt"

	"github.com/dshills/gridstorm/internal/grid/backend"
	"github.com/dshills/gridstorm/internal/grid/editor"
	"github.com/dshills/gridstorm/internal/grid/render"
)

// Draw paints the grid onto b and shows it. A hidden grid draws nothing.
func (g *Grid) Draw(b backend.Backend) {
	if !g.visible {
		return
	}
	footer, isErr := g.footer()
	g.painter.Paint(b, &render.Frame{
		Columns:      g.store.Columns(),
		Visible:      g.visibleCols,
		Widths:       g.widths,
		Rows:         g.renderer.Rows(),
		Viewport:     g.viewport,
		Sort:         g.sorter.State(),
		Selected:     g.sel.IsSelected,
		Focused:      g.sel.Focused(),
		HasFocus:     g.focused,
		Hierarchical: g.showChildren,
		Editor:       g.overlay(),
		Footer:       footer,
		FooterError:  isErr,
	})
	b.Show()
	g.paints++
	g.dirty = false
}

// footer returns the status line: the editor's validation error, else the
// tooltip of the active cell, else the row and selection counts.
func (g *Grid) footer() (string, bool) {
	if err := g.editor.Err(); err != nil && g.editor.Active() {
		return editor.Message(err), true
	}
	if d, ok := g.renderer.Row(g.sel.Focused()); ok {
		if c := d.Cell(g.activeOrdinal()); c != nil && c.Tooltip != "" {
			return c.Tooltip, false
		}
	}
	return fmt.Sprintf("%d rows, %d selected", g.renderer.Len(), g.sel.Count()), false
}
