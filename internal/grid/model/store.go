package model

import "sort"

// Store holds the column definitions and the row dataset.
// It is owned by a single grid and is not safe for concurrent use.
type Store struct {
	columns []*Column
	rows    []*Row
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Columns returns the column slice. Callers must not modify it.
func (s *Store) Columns() []*Column {
	return s.columns
}

// SetColumns replaces all columns.
func (s *Store) SetColumns(cols []*Column) {
	s.columns = append([]*Column(nil), cols...)
}

// AddColumns appends columns.
func (s *Store) AddColumns(cols ...*Column) {
	s.columns = append(s.columns, cols...)
}

// Column returns the column at ordinal, or nil when out of range.
func (s *Store) Column(ordinal int) *Column {
	if ordinal < 0 || ordinal >= len(s.columns) {
		return nil
	}
	return s.columns[ordinal]
}

// ColumnCount returns the number of columns.
func (s *Store) ColumnCount() int {
	return len(s.columns)
}

// VisibleColumns returns the ordinals of visible columns in display order.
func (s *Store) VisibleColumns() []int {
	out := make([]int, 0, len(s.columns))
	for i, c := range s.columns {
		if c.Visible {
			out = append(out, i)
		}
	}
	return out
}

// ColumnByField returns the first column bound to field, or the column whose
// positional index renders as field.
func (s *Store) ColumnByField(field string) (*Column, int) {
	for i, c := range s.columns {
		if c.Field == field {
			return c, i
		}
	}
	for i, c := range s.columns {
		if c.Field == "" && c.Property(i) == field {
			return c, i
		}
	}
	return nil, -1
}

// Rows returns the row slice. Callers must not modify it.
func (s *Store) Rows() []*Row {
	return s.rows
}

// SetRows replaces the dataset.
func (s *Store) SetRows(rows []*Row) {
	s.rows = append([]*Row(nil), rows...)
}

// AddRows appends rows, skipping nil entries.
func (s *Store) AddRows(rows ...*Row) {
	for _, r := range rows {
		if r != nil {
			s.rows = append(s.rows, r)
		}
	}
}

// Row returns row i, or nil when out of range.
func (s *Store) Row(i int) *Row {
	if i < 0 || i >= len(s.rows) {
		return nil
	}
	return s.rows[i]
}

// Len returns the number of top-level rows.
func (s *Store) Len() int {
	return len(s.rows)
}

// RemoveRows deletes the rows at the given indices. Duplicates and indices
// outside [0, Len()) are ignored. It returns the number of rows removed.
func (s *Store) RemoveRows(indices ...int) int {
	valid := make([]int, 0, len(indices))
	seen := make(map[int]bool, len(indices))
	for _, i := range indices {
		if i < 0 || i >= len(s.rows) || seen[i] {
			continue
		}
		seen[i] = true
		valid = append(valid, i)
	}
	if len(valid) == 0 {
		return 0
	}

	sort.Sort(sort.Reverse(sort.IntSlice(valid)))
	for _, i := range valid {
		s.rows = append(s.rows[:i], s.rows[i+1:]...)
	}
	return len(valid)
}

// IndexOf returns the top-level index of row, or -1.
func (s *Store) IndexOf(row *Row) int {
	for i, r := range s.rows {
		if r == row {
			return i
		}
	}
	return -1
}
