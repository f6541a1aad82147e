package sorting

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/dshills/gridstorm/internal/grid/model"
)

func newStore(values ...any) *model.Store {
	s := model.NewStore()
	s.SetColumns([]*model.Column{model.NewColumn("V", model.WithField("v"))})
	for _, v := range values {
		s.AddRows(model.NewRow(map[string]any{"v": v}))
	}
	return s
}

func keys(s *model.Store, perm []int) []any {
	out := make([]any, len(perm))
	for i, p := range perm {
		out[i] = s.Row(p).Fields["v"]
	}
	return out
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want int
	}{
		{"ints", 1, 2, -1},
		{"int vs float", 3, 2.5, 1},
		{"equal numbers", int64(4), 4.0, 0},
		{"strings", "apple", "banana", -1},
		{"bools", true, false, 1},
		{"nil first", nil, 0, -1},
		{"both nil", nil, nil, 0},
		{"mixed falls back to fmt", "10", 9, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compare(tt.a, tt.b); got != tt.want {
				t.Errorf("Compare(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSortAscendingDescending(t *testing.T) {
	store := newStore(5, 3, 9, 1, 3, 7)
	s := New()

	s.SetState(0, Ascending)
	s.Sort(store)
	asc := keys(store, s.Rows())
	for i := 1; i < len(asc); i++ {
		if Compare(asc[i-1], asc[i]) > 0 {
			t.Fatalf("ascending order broken at %d: %v", i, asc)
		}
	}

	s.SetState(0, Descending)
	s.Sort(store)
	desc := keys(store, s.Rows())
	for i := 1; i < len(desc); i++ {
		if Compare(desc[i-1], desc[i]) < 0 {
			t.Fatalf("descending order broken at %d: %v", i, desc)
		}
	}
}

func TestSortIdempotent(t *testing.T) {
	store := newStore("b", "a", "c", "a", "b")
	s := New()
	s.SetState(0, Descending)

	s.Sort(store)
	first := s.Rows()
	s.Sort(store)
	second := s.Rows()

	if !slices.Equal(first, second) {
		t.Errorf("second sort changed permutation: %v -> %v", first, second)
	}
}

func TestPermutationIntegrity(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	s := New()
	s.SetState(0, Ascending)

	for _, n := range []int{0, 1, 7, 50} {
		vals := make([]any, n)
		for i := range vals {
			vals[i] = rng.Intn(10)
		}
		store := newStore(vals...)
		s.Sort(store)

		perm := s.Rows()
		if len(perm) != n {
			t.Fatalf("len(perm) = %d, want %d", len(perm), n)
		}
		sorted := slices.Clone(perm)
		slices.Sort(sorted)
		for i, p := range sorted {
			if p != i {
				t.Fatalf("n=%d: permutation %v is not a permutation of 0..%d", n, perm, n-1)
			}
		}
	}
}

func TestHealAfterBulkMutation(t *testing.T) {
	store := newStore(3, 1, 2)
	s := New()
	s.SetState(0, Ascending)
	s.Sort(store)

	store.AddRows(model.NewRow(map[string]any{"v": 0}))
	if !s.Stale(store) {
		t.Fatal("sorter should be stale after AddRows")
	}
	if !s.Heal(store) {
		t.Fatal("Heal should regenerate the permutation")
	}
	if got := s.Rows(); !slices.Equal(got, []int{0, 1, 2, 3}) {
		t.Errorf("healed permutation = %v, want identity", got)
	}
	if s.Stale(store) {
		t.Error("sorter should not be stale after Heal")
	}
}

func TestNoColumnRestoresDataOrder(t *testing.T) {
	store := newStore(3, 1, 2)
	s := New()
	s.SetState(0, Ascending)
	s.Sort(store)

	s.SetState(NoColumn, Ascending)
	s.Sort(store)
	if got := s.Rows(); !slices.Equal(got, []int{0, 1, 2}) {
		t.Errorf("Rows() = %v, want data order", got)
	}
}

func TestSortChildren(t *testing.T) {
	store := newStore("p")
	parent := store.Row(0)
	for _, v := range []string{"c", "a", "b"} {
		parent.Children = append(parent.Children, model.NewRow(map[string]any{"v": v}))
	}

	s := New()
	s.SetState(0, Ascending)
	s.Sort(store)

	if got := s.Children(0); !slices.Equal(got, []int{1, 2, 0}) {
		t.Errorf("Children(0) = %v, want [1 2 0]", got)
	}
	if s.Children(5) != nil {
		t.Error("out-of-range Children should be nil")
	}

	s.SetState(0, Descending)
	s.Sort(store)
	if got := s.Children(0); !slices.Equal(got, []int{0, 2, 1}) {
		t.Errorf("descending Children(0) = %v, want [0 2 1]", got)
	}
}

func TestHierarchicalTieBreak(t *testing.T) {
	store := newStore("x", "x", "x")
	// Row 0 has children keyed "b", row 1 is childless, row 2 has children keyed "a".
	store.Row(0).Children = []*model.Row{model.NewRow(map[string]any{"v": "b"})}
	store.Row(2).Children = []*model.Row{model.NewRow(map[string]any{"v": "a"})}

	s := New()
	s.SetState(0, Ascending)

	s.Sort(store)
	if got := s.Rows(); !slices.Equal(got, []int{0, 1, 2}) {
		t.Errorf("flat mode must not break ties, got %v", got)
	}

	s.SetHierarchical(true)
	s.Sort(store)
	if got := s.Rows(); !slices.Equal(got, []int{1, 2, 0}) {
		t.Errorf("ascending hierarchical = %v, want [1 2 0]", got)
	}

	s.SetState(0, Descending)
	s.Sort(store)
	if got := s.Rows(); !slices.Equal(got, []int{0, 2, 1}) {
		t.Errorf("descending hierarchical = %v, want [0 2 1]", got)
	}
}

func TestParseOrder(t *testing.T) {
	if ParseOrder("DESC") != Descending || ParseOrder("asc") != Ascending || ParseOrder("") != Ascending {
		t.Error("ParseOrder mismatch")
	}
	if Ascending.Flip() != Descending || Descending.Flip() != Ascending {
		t.Error("Flip mismatch")
	}
}

func TestTiesKeepPreviousSortOrder(t *testing.T) {
	store := model.NewStore()
	store.SetColumns([]*model.Column{
		model.NewColumn("A", model.WithField("a")),
		model.NewColumn("B", model.WithField("b")),
	})
	store.AddRows(
		model.NewRow(map[string]any{"a": 2, "b": "same"}),
		model.NewRow(map[string]any{"a": 1, "b": "same"}),
	)
	s := New()

	s.SetState(0, Ascending)
	s.Sort(store)
	if got := s.Rows(); !slices.Equal(got, []int{1, 0}) {
		t.Fatalf("sorted by A = %v, want [1 0]", got)
	}

	s.SetState(1, Ascending)
	s.Sort(store)
	if got := s.Rows(); !slices.Equal(got, []int{1, 0}) {
		t.Errorf("tied on B = %v, want the order from A [1 0]", got)
	}
}
