package render

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/dshills/gridstorm/internal/grid/backend"
	"github.com/dshills/gridstorm/internal/grid/core"
	"github.com/dshills/gridstorm/internal/grid/layout"
	"github.com/dshills/gridstorm/internal/grid/model"
	"github.com/dshills/gridstorm/internal/grid/sorting"
)

// Screen rows reserved above and below the body.
const (
	HeaderHeight = 1
	FooterHeight = 1
)

// Glyphs drawn by the painter.
const (
	GlyphAscending  = "▲"
	GlyphDescending = "▼"
	GlyphCollapsed  = "▸ "
	GlyphExpanded   = "▾ "
	ChildIndent     = "  "
	Ellipsis        = "…"
)

// Theme holds the styles the painter draws with.
type Theme struct {
	Header        core.Style
	Row           core.Style
	Selected      core.Style
	Focused       core.Style
	Filler        core.Style
	Footer        core.Style
	Error         core.Style
	Editor        core.Style
	EditorFocused core.Style
}

// DefaultTheme returns a legible theme for 256-color terminals.
func DefaultTheme() Theme {
	d := core.DefaultStyle()
	return Theme{
		Header:        d.Bold().Underline(),
		Row:           d,
		Selected:      d.WithBackground(core.ColorFromIndex(24)).WithForeground(core.ColorWhite),
		Focused:       d.Reverse(),
		Filler:        d,
		Footer:        d.Dim(),
		Error:         d.WithForeground(core.ColorRed).Bold(),
		Editor:        d.WithBackground(core.ColorFromIndex(236)),
		EditorFocused: d.WithBackground(core.ColorFromIndex(238)).Underline(),
	}
}

// OverlayCell is an open editor drawn over a cell.
type OverlayCell struct {
	Text    string
	Cursor  int
	Focused bool
}

// Overlay is the editor session drawn over one row.
type Overlay struct {
	Position int
	Cells    map[int]OverlayCell
}

// Frame is everything one paint needs.
type Frame struct {
	Columns []*model.Column

	// Visible lists the ordinals of visible columns in display order.
	Visible []int

	// Widths holds one width per entry of Visible.
	Widths layout.Widths

	Rows     []RowDesc
	Viewport *layout.Viewport
	Sort     sorting.State

	Selected func(pos int) bool
	Focused  int
	HasFocus bool

	Hierarchical bool
	Editor       *Overlay

	Footer      string
	FooterError bool
}

// Painter draws frames onto a backend.
type Painter struct {
	Theme Theme
}

// NewPainter creates a painter with theme.
func NewPainter(theme Theme) *Painter {
	return &Painter{Theme: theme}
}

// Paint draws the header, the visible body rows, the spring filler and the
// footer. It does not call Show.
func (p *Painter) Paint(b backend.Backend, f *Frame) {
	width, height := b.Size()
	if width <= 0 || height <= 0 {
		return
	}
	b.HideCursor()
	b.Fill(core.NewRect(0, 0, width, height), core.NewStyledCell(' ', p.Theme.Filler))

	left := 0
	if f.Viewport != nil {
		left = f.Viewport.Left()
	}

	p.paintHeader(b, f, width, left)

	bodyHeight := max(0, height-HeaderHeight-FooterHeight)
	first, last := 0, min(len(f.Rows), bodyHeight)
	if f.Viewport != nil {
		first, last = f.Viewport.VisibleRange()
		last = min(last, len(f.Rows))
	}
	for pos := first; pos < last; pos++ {
		y := HeaderHeight + pos - first
		if y >= HeaderHeight+bodyHeight {
			break
		}
		p.paintRow(b, f, pos, y, width, left)
	}

	if height > HeaderHeight {
		style := p.Theme.Footer
		if f.FooterError {
			style = p.Theme.Error
		}
		y := height - 1
		b.Fill(core.NewRect(0, y, width, 1), core.NewStyledCell(' ', style))
		putClipped(b, 0, y, width, Fit(Sanitize(f.Footer), width, false), style)
	}
}

func (p *Painter) paintHeader(b backend.Backend, f *Frame, width, left int) {
	b.Fill(core.NewRect(0, 0, width, HeaderHeight), core.NewStyledCell(' ', p.Theme.Header))
	for i, ordinal := range f.Visible {
		if i >= len(f.Widths.Columns) {
			break
		}
		col := f.Columns[ordinal]
		cw := f.Widths.Columns[i] - 1
		if cw <= 0 {
			continue
		}
		label := Sanitize(col.Label)
		if f.Sort.Active() && f.Sort.Column == ordinal {
			glyph := GlyphAscending
			if f.Sort.Order == sorting.Descending {
				glyph = GlyphDescending
			}
			label = Fit(label, max(0, cw-2), false) + " " + glyph
		}
		x := f.Widths.Offset(i) - left
		putClipped(b, x, 0, width, Align(Fit(label, cw, false), cw, col.Align), p.Theme.Header)
	}
}

func (p *Painter) paintRow(b backend.Backend, f *Frame, pos, y, width, left int) {
	row := f.Rows[pos]
	base := p.Theme.Row
	if f.Selected != nil && f.Selected(pos) {
		base = p.Theme.Selected
	}
	if f.HasFocus && pos == f.Focused {
		base = base.Merge(p.Theme.Focused)
	}
	b.Fill(core.NewRect(0, y, width, 1), core.NewStyledCell(' ', base))

	var overlay map[int]OverlayCell
	if f.Editor != nil && f.Editor.Position == pos {
		overlay = f.Editor.Cells
	}

	for i, ordinal := range f.Visible {
		if i >= len(f.Widths.Columns) {
			break
		}
		cw := f.Widths.Columns[i] - 1
		if cw <= 0 {
			continue
		}
		x := f.Widths.Offset(i) - left

		prefix := ""
		if i == 0 && f.Hierarchical {
			switch {
			case row.View.IsChild():
				prefix = ChildIndent
			case row.Expander == ExpanderCollapsed:
				prefix = GlyphCollapsed
			case row.Expander == ExpanderExpanded:
				prefix = GlyphExpanded
			}
		}

		if oc, ok := overlay[ordinal]; ok {
			style := base.Merge(p.Theme.Editor)
			if oc.Focused {
				style = base.Merge(p.Theme.EditorFocused)
			}
			if l, r := max(0, x), min(width, x+cw); r > l {
				b.Fill(core.NewRect(l, y, r-l, 1), core.NewStyledCell(' ', style))
			}
			text := prefix + Sanitize(oc.Text)
			putClipped(b, x, y, width, Fit(text, cw, true), style)
			if oc.Focused && oc.Cursor >= 0 {
				cx := x + runewidth.StringWidth(prefix) + oc.Cursor
				if cx >= 0 && cx < width && cx < x+cw {
					b.ShowCursor(cx, y)
				}
			}
			continue
		}

		cell := row.Cell(ordinal)
		if cell == nil {
			continue
		}
		style := base.Merge(cell.Style)
		text := Align(Fit(prefix+cell.Text, cw, cell.Wrap), cw, cell.Align)
		putClipped(b, x, y, width, text, style)
	}
}

// Fit truncates s to w cells. Clipped text is cut hard; otherwise an
// ellipsis marks the cut.
func Fit(s string, w int, clip bool) string {
	if w <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= w {
		return s
	}
	if clip {
		return runewidth.Truncate(s, w, "")
	}
	return runewidth.Truncate(s, w, Ellipsis)
}

// Align pads s to w cells.
func Align(s string, w int, a model.Align) string {
	sw := runewidth.StringWidth(s)
	if sw >= w {
		return s
	}
	switch a {
	case model.AlignRight:
		return runewidth.FillLeft(s, w)
	case model.AlignCenter:
		pad := w - sw
		return strings.Repeat(" ", pad/2) + s + strings.Repeat(" ", pad-pad/2)
	default:
		return runewidth.FillRight(s, w)
	}
}

// putClipped writes s at x, dropping cells left of 0 or right of width.
func putClipped(b backend.Backend, x, y, width int, s string, style core.Style) {
	for _, r := range s {
		rw := core.RuneWidth(r)
		if rw == 0 {
			continue
		}
		if x+rw > width {
			return
		}
		if x >= 0 {
			b.SetCell(x, y, core.NewStyledCell(r, style))
			if rw == 2 {
				cont := core.ContinuationCell()
				cont.Style = style
				b.SetCell(x+1, y, cont)
			}
		}
		x += rw
	}
}
