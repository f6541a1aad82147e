// Package sorting computes the row and child permutations that order the
// grid by one column.
//
// The sorter never moves rows in the store. It produces a permutation of
// top-level row indices and, per parent, a permutation of that parent's
// child indices. Both are regenerated whenever their length no longer
// matches the data they index.
package sorting

import (
	"sort"
	"strings"

	"github.com/dshills/gridstorm/internal/grid/model"
)

// NoColumn disables sorting. Rows keep their data order.
const NoColumn = -1

// ChildKeyDelimiter joins child keys into a parent's synthetic tie-break key.
const ChildKeyDelimiter = ","

// Order is the sort direction.
type Order uint8

const (
	Ascending Order = iota
	Descending
)

// String returns "asc" or "desc".
func (o Order) String() string {
	if o == Descending {
		return "desc"
	}
	return "asc"
}

// Flip returns the opposite direction.
func (o Order) Flip() Order {
	if o == Descending {
		return Ascending
	}
	return Descending
}

// ParseOrder parses "asc"/"ascending" or "desc"/"descending".
func ParseOrder(s string) Order {
	switch strings.ToLower(s) {
	case "desc", "descending":
		return Descending
	default:
		return Ascending
	}
}

func (o Order) multiplier() int {
	if o == Descending {
		return -1
	}
	return 1
}

// State is the active sort column and direction.
type State struct {
	Column int
	Order  Order
}

// Active reports whether a sort column is set.
func (s State) Active() bool {
	return s.Column >= 0
}

// Sorter holds the sort state and the derived permutations.
type Sorter struct {
	state        State
	hierarchical bool

	rows     []int
	children [][]int
}

// New creates a sorter with no active column.
func New() *Sorter {
	return &Sorter{state: State{Column: NoColumn}}
}

// State returns the current sort state.
func (s *Sorter) State() State {
	return s.state
}

// SetState sets the sort column and direction. The permutations are not
// touched until the next Sort.
func (s *Sorter) SetState(column int, order Order) {
	if column < 0 {
		column = NoColumn
	}
	s.state = State{Column: column, Order: order}
}

// SetHierarchical enables the child-aware tie-break rules.
func (s *Sorter) SetHierarchical(on bool) {
	s.hierarchical = on
}

// Hierarchical reports whether child-aware tie-breaks are enabled.
func (s *Sorter) Hierarchical() bool {
	return s.hierarchical
}

// Rows returns a copy of the top-level permutation.
func (s *Sorter) Rows() []int {
	return append([]int(nil), s.rows...)
}

// Children returns a copy of parent's child permutation, or nil when parent
// is out of range.
func (s *Sorter) Children(parent int) []int {
	if parent < 0 || parent >= len(s.children) {
		return nil
	}
	return append([]int(nil), s.children[parent]...)
}

// Stale reports whether any permutation length disagrees with store.
func (s *Sorter) Stale(store *model.Store) bool {
	if len(s.rows) != store.Len() || len(s.children) != store.Len() {
		return true
	}
	for i, r := range store.Rows() {
		if len(s.children[i]) != len(r.Children) {
			return true
		}
	}
	return false
}

// Heal regenerates every permutation whose length is stale, without
// re-sorting. It reports whether anything was regenerated.
func (s *Sorter) Heal(store *model.Store) bool {
	healed := false
	n := store.Len()
	if len(s.rows) != n {
		s.rows = identity(n)
		healed = true
	}
	if len(s.children) != n {
		s.children = make([][]int, n)
		healed = true
	}
	for i, r := range store.Rows() {
		if len(s.children[i]) != len(r.Children) {
			s.children[i] = identity(len(r.Children))
			healed = true
		}
	}
	return healed
}

// Reset discards the permutations so the next Heal or Sort regenerates them
// in data order.
func (s *Sorter) Reset() {
	s.rows = nil
	s.children = nil
}

// Sort recomputes both permutations from the store under the current state.
// The comparator always runs over the full permutation. Sorting is stable,
// so sorting twice with the same state yields the same permutation.
func (s *Sorter) Sort(store *model.Store) {
	s.Heal(store)

	col := store.Column(s.state.Column)
	if col == nil {
		s.rows = identity(store.Len())
		for i, r := range store.Rows() {
			s.children[i] = identity(len(r.Children))
		}
		return
	}
	ordinal := s.state.Column
	mult := s.state.Order.multiplier()
	rows := store.Rows()

	// Children first: the parent tie-break reads their sorted order.
	for parent, r := range rows {
		perm := s.children[parent]
		sort.SliceStable(perm, func(i, j int) bool {
			a, _ := r.Children[perm[i]].Value(col, ordinal)
			b, _ := r.Children[perm[j]].Value(col, ordinal)
			return Compare(a, b)*mult < 0
		})
	}

	keys := make([]any, len(rows))
	for i, r := range rows {
		keys[i], _ = r.Value(col, ordinal)
	}

	var childKeys []string
	if s.hierarchical {
		childKeys = make([]string, len(rows))
		for i, r := range rows {
			childKeys[i] = s.childKey(r, i, col, ordinal)
		}
	}

	sort.SliceStable(s.rows, func(i, j int) bool {
		a, b := s.rows[i], s.rows[j]
		if c := Compare(keys[a], keys[b]); c != 0 {
			return c*mult < 0
		}
		if !s.hierarchical {
			return false
		}
		ha, hb := rows[a].HasChildren(), rows[b].HasChildren()
		if ha != hb {
			c := 1
			if !ha {
				c = -1
			}
			return c*mult < 0
		}
		return strings.Compare(childKeys[a], childKeys[b])*mult < 0
	})
}

// childKey joins the parent's children's keys in their sorted order.
func (s *Sorter) childKey(r *model.Row, parent int, col *model.Column, ordinal int) string {
	if !r.HasChildren() {
		return ""
	}
	parts := make([]string, 0, len(r.Children))
	for _, ci := range s.children[parent] {
		v, _ := r.Children[ci].Value(col, ordinal)
		parts = append(parts, KeyString(v))
	}
	return strings.Join(parts, ChildKeyDelimiter)
}

func identity(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
