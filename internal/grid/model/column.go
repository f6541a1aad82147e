// Package model holds the grid's column definitions and row dataset.
//
// Rows never record their own position. Every positional lookup goes through
// the sort permutation and the flattened view built on top of this store.
package model

import (
	"strconv"

	"github.com/dshills/gridstorm/internal/grid/core"
)

// NoIndex marks a column without an explicit positional accessor.
const NoIndex = -1

// Align is the horizontal alignment of cell content.
type Align uint8

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// ParseAlign parses "left", "center" or "right". Unknown values are left.
func ParseAlign(s string) Align {
	switch s {
	case "center", "centre":
		return AlignCenter
	case "right":
		return AlignRight
	default:
		return AlignLeft
	}
}

// FormatContext is passed to column formatter hooks.
type FormatContext struct {
	Value   any
	Row     *Row
	Column  *Column
	Ordinal int

	// DataIndex is the top-level row index; for child rows it is the parent.
	DataIndex int

	// ChildIndex is the child's index under DataIndex, or -1 for top-level rows.
	ChildIndex int
}

// Column describes one grid column.
//
// Field and Index are mutually exclusive accessors into a row. With neither
// set, the column's ordinal position is used as the index.
type Column struct {
	Label    string
	Field    string
	Index    int
	Width    int
	Sortable bool
	Visible  bool
	Wrap     bool
	Spring   bool
	ReadOnly bool
	Align    Align

	Formatter        func(FormatContext) string
	StyleFormatter   func(FormatContext) core.Style
	TooltipFormatter func(FormatContext) string

	Editor *EditorSpec
}

// ColumnOption configures a Column created by NewColumn.
type ColumnOption func(*Column)

// NewColumn creates a visible, sortable column with the given label.
func NewColumn(label string, opts ...ColumnOption) *Column {
	c := &Column{
		Label:    label,
		Index:    NoIndex,
		Width:    10,
		Sortable: true,
		Visible:  true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithField binds the column to a named row field.
func WithField(name string) ColumnOption {
	return func(c *Column) {
		c.Field = name
		c.Index = NoIndex
	}
}

// WithIndex binds the column to a positional row value.
func WithIndex(i int) ColumnOption {
	return func(c *Column) {
		c.Field = ""
		c.Index = i
	}
}

// WithWidth sets the nominal width in cells.
func WithWidth(w int) ColumnOption {
	return func(c *Column) { c.Width = w }
}

// WithSpring marks the column as absorbing leftover width.
func WithSpring() ColumnOption {
	return func(c *Column) { c.Spring = true }
}

// WithReadOnly excludes the column from inline editing.
func WithReadOnly() ColumnOption {
	return func(c *Column) { c.ReadOnly = true }
}

// WithEditor attaches an editor spec.
func WithEditor(spec *EditorSpec) ColumnOption {
	return func(c *Column) { c.Editor = spec }
}

// WithFormatter sets the display formatter.
func WithFormatter(fn func(FormatContext) string) ColumnOption {
	return func(c *Column) { c.Formatter = fn }
}

// ResolvedIndex returns the positional index used when Field is empty.
func (c *Column) ResolvedIndex(ordinal int) int {
	if c.Index >= 0 {
		return c.Index
	}
	return ordinal
}

// Property identifies the row slot this column reads: its field name, or the
// positional index as a decimal string.
func (c *Column) Property(ordinal int) string {
	if c.Field != "" {
		return c.Field
	}
	return strconv.Itoa(c.ResolvedIndex(ordinal))
}

// Editable reports whether the column can receive an inline editor for row.
func (c *Column) Editable(row *Row) bool {
	if !c.Visible || c.ReadOnly {
		return false
	}
	if c.Editor != nil && c.Editor.Show != nil && !c.Editor.Show(row) {
		return false
	}
	return true
}

// EditorKind selects the inline editor implementation for a column.
type EditorKind uint8

const (
	// EditorAuto resolves the kind from the current value's runtime type.
	EditorAuto EditorKind = iota
	EditorText
	EditorNumber
	EditorBoolean
	EditorFlag
	EditorDropdown
	EditorCustom
)

// String returns the config name of the kind.
func (k EditorKind) String() string {
	switch k {
	case EditorText:
		return "text"
	case EditorNumber:
		return "number"
	case EditorBoolean:
		return "boolean"
	case EditorFlag:
		return "flag"
	case EditorDropdown:
		return "dropdown"
	case EditorCustom:
		return "custom"
	default:
		return "auto"
	}
}

// ParseEditorKind parses a config name. Unknown names resolve to EditorAuto.
func ParseEditorKind(s string) EditorKind {
	switch s {
	case "text":
		return EditorText
	case "number":
		return EditorNumber
	case "boolean", "bool":
		return EditorBoolean
	case "flag", "flags":
		return EditorFlag
	case "dropdown", "select":
		return EditorDropdown
	case "custom":
		return EditorCustom
	default:
		return EditorAuto
	}
}

// Option is one choice offered by dropdown and flag editors.
type Option struct {
	Key   string
	Label string
	Value any
}

// Validator checks a pending edit. A nil error accepts it.
type Validator func(oldValue, newValue any, row *Row) error

// EditorSpec configures inline editing for a column.
type EditorSpec struct {
	Kind    EditorKind
	Options []Option

	// Show, when set, decides per row whether the editor is offered.
	Show func(row *Row) bool

	// Validate, when set, must accept a changed value before it is written back.
	Validate Validator

	// New builds the editor for EditorCustom.
	New EditorFactory
}
