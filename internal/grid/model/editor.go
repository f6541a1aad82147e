package model

import "github.com/dshills/gridstorm/internal/input/key"

// Editor is the contract every inline cell editor satisfies.
type Editor interface {
	// Focus gives the editor keyboard focus.
	Focus()

	// Blur removes keyboard focus.
	Blur()

	// Focused reports whether the editor holds focus.
	Focused() bool

	// Value returns the edited value in its typed form.
	Value() any

	// SetValue replaces the edited value.
	SetValue(v any)

	// Text returns the display form of the value, and the cursor column
	// within it (-1 when the editor has no text cursor).
	Text() (string, int)

	// HandleKey applies a key press. It returns false if the key was not used.
	HandleKey(ev key.Event) bool

	// Destroy releases the editor. It must not be used afterwards.
	Destroy()
}

// SelfValidator is implemented by editors that can reject their own input,
// such as a number editor holding unparsable text.
type SelfValidator interface {
	Validate() error
}

// EditorFactory builds a custom editor seeded with value.
type EditorFactory func(value any, spec *EditorSpec) Editor
