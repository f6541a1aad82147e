package editor

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/dshills/gridstorm/internal/grid/model"
	"github.com/dshills/gridstorm/internal/input/key"
)

// BooleanEditor toggles a bool with Space or x.
type BooleanEditor struct {
	focusState
	value bool
}

// NewBoolean creates a boolean editor.
func NewBoolean(v any) *BooleanEditor {
	e := &BooleanEditor{}
	e.SetValue(v)
	return e
}

func (e *BooleanEditor) Value() any { return e.value }

func (e *BooleanEditor) SetValue(v any) {
	b, _ := v.(bool)
	e.value = b
}

func (e *BooleanEditor) Text() (string, int) {
	if e.value {
		return "[x]", 1
	}
	return "[ ]", 1
}

func (e *BooleanEditor) HandleKey(ev key.Event) bool {
	if ev.IsRuneWith(' ', key.ModNone) || ev.IsRuneWith('x', key.ModNone) {
		e.value = !e.value
		return true
	}
	return false
}

// DropdownEditor picks one option. Left and Right cycle; typing a letter
// jumps to the next option whose label starts with it.
type DropdownEditor struct {
	focusState
	options []model.Option
	index   int
	raw     any
}

// NewDropdown creates a dropdown over options.
func NewDropdown(v any, options []model.Option) *DropdownEditor {
	e := &DropdownEditor{options: options}
	e.SetValue(v)
	return e
}

// Value returns the selected option's value, or the seed when it matched
// no option and none was picked.
func (e *DropdownEditor) Value() any {
	if e.index < 0 {
		return e.raw
	}
	return OptionValue(e.options[e.index])
}

func (e *DropdownEditor) SetValue(v any) {
	e.raw = v
	e.index = -1
	for i, o := range e.options {
		if reflect.DeepEqual(OptionValue(o), v) || o.Key == displayString(v) {
			e.index = i
			return
		}
	}
}

func (e *DropdownEditor) Text() (string, int) {
	if e.index < 0 {
		return displayString(e.raw), -1
	}
	return "< " + optionLabel(e.options[e.index]) + " >", -1
}

func (e *DropdownEditor) HandleKey(ev key.Event) bool {
	if len(e.options) == 0 {
		return false
	}
	switch {
	case ev.Key == key.KeyRight, ev.IsRuneWith(' ', key.ModNone):
		e.index = (e.index + 1) % len(e.options)
	case ev.Key == key.KeyLeft:
		if e.index <= 0 {
			e.index = len(e.options) - 1
		} else {
			e.index--
		}
	case ev.IsChar():
		want := unicode.ToLower(ev.Rune)
		for step := 1; step <= len(e.options); step++ {
			i := (e.index + step) % len(e.options)
			label := []rune(strings.ToLower(optionLabel(e.options[i])))
			if len(label) > 0 && label[0] == want {
				e.index = i
				break
			}
		}
	default:
		return false
	}
	return true
}

// FlagEditor edits a bit set, one bit per option. An option whose Value is
// an int contributes that mask; otherwise option i contributes 1<<i.
type FlagEditor struct {
	focusState
	options []model.Option
	set     []bool
	cursor  int
}

// NewFlag creates a flag editor over options.
func NewFlag(v any, options []model.Option) *FlagEditor {
	e := &FlagEditor{options: options, set: make([]bool, len(options))}
	e.SetValue(v)
	return e
}

func (e *FlagEditor) bit(i int) int {
	if n, ok := toInt(e.options[i].Value); ok {
		return n
	}
	return 1 << i
}

func (e *FlagEditor) Value() any {
	v := 0
	for i, on := range e.set {
		if on {
			v |= e.bit(i)
		}
	}
	return v
}

func (e *FlagEditor) SetValue(v any) {
	n, _ := toInt(v)
	for i := range e.options {
		b := e.bit(i)
		e.set[i] = b != 0 && n&b == b
	}
}

func (e *FlagEditor) Text() (string, int) {
	var b strings.Builder
	cursorCol := -1
	for i, o := range e.options {
		if i > 0 {
			b.WriteByte(' ')
		}
		if i == e.cursor {
			cursorCol = b.Len() + 1
		}
		if e.set[i] {
			b.WriteString("[x]")
		} else {
			b.WriteString("[ ]")
		}
		b.WriteString(optionLabel(o))
	}
	return b.String(), cursorCol
}

func (e *FlagEditor) HandleKey(ev key.Event) bool {
	if len(e.options) == 0 {
		return false
	}
	switch {
	case ev.Key == key.KeyLeft:
		e.cursor = max(0, e.cursor-1)
	case ev.Key == key.KeyRight:
		e.cursor = min(len(e.options)-1, e.cursor+1)
	case ev.IsRuneWith(' ', key.ModNone), ev.IsRuneWith('x', key.ModNone):
		e.set[e.cursor] = !e.set[e.cursor]
	default:
		return false
	}
	return true
}

// OptionValue returns the option's value, falling back to its key.
func OptionValue(o model.Option) any {
	if o.Value != nil {
		return o.Value
	}
	return o.Key
}

func optionLabel(o model.Option) string {
	if o.Label != "" {
		return o.Label
	}
	if o.Key != "" {
		return o.Key
	}
	return fmt.Sprint(o.Value)
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case int32:
		return int(n), true
	case uint:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
