package model

// Row is one record in the grid. A row may carry one level of children that
// are displayed beneath it in hierarchical mode.
type Row struct {
	// Fields holds named values addressed by Column.Field.
	Fields map[string]any

	// Values holds positional values addressed by Column.Index or ordinal.
	Values []any

	// Children are nested rows.
	Children []*Row

	// Payload is opaque host data carried alongside the row.
	Payload any
}

// NewRow creates a row with the given named fields.
func NewRow(fields map[string]any) *Row {
	if fields == nil {
		fields = make(map[string]any)
	}
	return &Row{Fields: fields}
}

// NewValuesRow creates a row with positional values.
func NewValuesRow(values ...any) *Row {
	return &Row{Values: values}
}

// Value resolves the column's value for this row: Fields[field] when the
// column names a field, else Values[index] when in range. The second result
// is false when the slot is absent.
func (r *Row) Value(c *Column, ordinal int) (any, bool) {
	if r == nil || c == nil {
		return nil, false
	}
	if c.Field != "" {
		v, ok := r.Fields[c.Field]
		return v, ok
	}
	i := c.ResolvedIndex(ordinal)
	if i < 0 || i >= len(r.Values) {
		return nil, false
	}
	return r.Values[i], true
}

// SetValue writes v into the slot the column reads. Positional slots grow
// as needed.
func (r *Row) SetValue(c *Column, ordinal int, v any) {
	if r == nil || c == nil {
		return
	}
	if c.Field != "" {
		if r.Fields == nil {
			r.Fields = make(map[string]any)
		}
		r.Fields[c.Field] = v
		return
	}
	i := c.ResolvedIndex(ordinal)
	if i < 0 {
		return
	}
	for len(r.Values) <= i {
		r.Values = append(r.Values, nil)
	}
	r.Values[i] = v
}

// HasChildren reports whether the row has at least one child.
func (r *Row) HasChildren() bool {
	return r != nil && len(r.Children) > 0
}

// Child returns child i, or nil when out of range.
func (r *Row) Child(i int) *Row {
	if r == nil || i < 0 || i >= len(r.Children) {
		return nil
	}
	return r.Children[i]
}
