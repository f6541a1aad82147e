// Package render turns the sorted dataset into row descriptors and paints
// them onto a screen backend.
package render

import (
	"github.com/dshills/gridstorm/internal/grid/model"
)

// ViewRow maps one flattened view position to the data it shows.
type ViewRow struct {
	// Row is the top-level data index. For a child row it is the parent.
	Row int

	// Child is the child index under Row, or -1 for a top-level row.
	Child int
}

// TopLevel is the Child value of a top-level view row.
const TopLevel = -1

// IsChild reports whether the view row shows a child.
func (v ViewRow) IsChild() bool {
	return v.Child >= 0
}

// Source is everything the renderer reads to build rows.
type Source struct {
	Store *model.Store

	// Order is the top-level sort permutation.
	Order []int

	// Children returns a parent's child permutation.
	Children func(parent int) []int

	// Expanded is the expand state indexed by data row.
	Expanded []bool

	// Hierarchical enables children and expander glyphs.
	Hierarchical bool

	// EmptyText is shown for cells without a value.
	EmptyText string
}

// IsExpanded reports the expand state of data row i.
func (s Source) IsExpanded(i int) bool {
	return i >= 0 && i < len(s.Expanded) && s.Expanded[i]
}

// resolve returns the row a view row points at, or nil.
func (s Source) resolve(v ViewRow) *model.Row {
	row := s.Store.Row(v.Row)
	if v.IsChild() {
		return row.Child(v.Child)
	}
	return row
}

func (s Source) childOrder(parent int) []int {
	if s.Children != nil {
		if perm := s.Children(parent); perm != nil {
			return perm
		}
	}
	row := s.Store.Row(parent)
	if row == nil {
		return nil
	}
	perm := make([]int, len(row.Children))
	for i := range perm {
		perm[i] = i
	}
	return perm
}

// Flatten builds the visible row sequence from the permutation and the
// expand state. Children appear only in hierarchical mode, under expanded
// parents.
func Flatten(src Source) []ViewRow {
	out := make([]ViewRow, 0, len(src.Order))
	for _, i := range src.Order {
		row := src.Store.Row(i)
		if row == nil {
			continue
		}
		out = append(out, ViewRow{Row: i, Child: TopLevel})
		if src.Hierarchical && src.IsExpanded(i) && row.HasChildren() {
			for _, c := range src.childOrder(i) {
				out = append(out, ViewRow{Row: i, Child: c})
			}
		}
	}
	return out
}
