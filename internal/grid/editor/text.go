package editor

import (
	"fmt"
	"strings"

	"github.com/rivo/uniseg"

	"github.com/dshills/gridstorm/internal/input/key"
)

// focusState is embedded by every built-in editor.
type focusState struct {
	focused   bool
	destroyed bool
}

func (f *focusState) Focus()        { f.focused = !f.destroyed }
func (f *focusState) Blur()         { f.focused = false }
func (f *focusState) Focused() bool { return f.focused }
func (f *focusState) Destroy()      { f.focused, f.destroyed = false, true }

// TextEditor edits a string one grapheme cluster at a time.
type TextEditor struct {
	focusState

	clusters []string
	cursor   int

	original any
	dirty    bool
}

// NewText creates a text editor holding v's string form.
func NewText(v any) *TextEditor {
	e := &TextEditor{}
	e.SetValue(v)
	return e
}

// Value returns the edited string, or the seeded value when untouched.
func (e *TextEditor) Value() any {
	if !e.dirty {
		return e.original
	}
	return e.String()
}

// SetValue replaces the content and moves the cursor to the end.
func (e *TextEditor) SetValue(v any) {
	e.original = v
	e.dirty = false
	e.setText(displayString(v))
}

func (e *TextEditor) setText(s string) {
	e.clusters = e.clusters[:0]
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		e.clusters = append(e.clusters, gr.Str())
	}
	e.cursor = len(e.clusters)
}

// String returns the current text.
func (e *TextEditor) String() string {
	return strings.Join(e.clusters, "")
}

// Text returns the text and the cursor's display column.
func (e *TextEditor) Text() (string, int) {
	col := 0
	for _, c := range e.clusters[:e.cursor] {
		col += uniseg.StringWidth(c)
	}
	return e.String(), col
}

// HandleKey applies editing and cursor keys.
func (e *TextEditor) HandleKey(ev key.Event) bool {
	switch {
	case ev.IsChar():
		e.insert(string(ev.Rune))
	case ev.Key == key.KeyBackspace:
		if e.cursor == 0 {
			return true
		}
		e.clusters = append(e.clusters[:e.cursor-1], e.clusters[e.cursor:]...)
		e.cursor--
		e.dirty = true
	case ev.Key == key.KeyDelete:
		if e.cursor == len(e.clusters) {
			return true
		}
		e.clusters = append(e.clusters[:e.cursor], e.clusters[e.cursor+1:]...)
		e.dirty = true
	case ev.Key == key.KeyLeft:
		e.cursor = max(0, e.cursor-1)
	case ev.Key == key.KeyRight:
		e.cursor = min(len(e.clusters), e.cursor+1)
	case ev.Key == key.KeyHome:
		e.cursor = 0
	case ev.Key == key.KeyEnd:
		e.cursor = len(e.clusters)
	default:
		return false
	}
	return true
}

// insert adds s at the cursor, re-segmenting so combining marks join the
// preceding cluster.
func (e *TextEditor) insert(s string) {
	before := strings.Join(e.clusters[:e.cursor], "") + s
	after := strings.Join(e.clusters[e.cursor:], "")
	e.setText(before)
	e.cursor = len(e.clusters)
	gr := uniseg.NewGraphemes(after)
	for gr.Next() {
		e.clusters = append(e.clusters, gr.Str())
	}
	e.dirty = true
}

// Type replaces the content as if typed, marking the editor dirty.
func (e *TextEditor) Type(s string) {
	e.setText(s)
	e.dirty = true
}

func displayString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
