package editor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dshills/gridstorm/internal/input/key"
)

// NumberEditor is a text editor that parses its content as a number.
// Integer seeds produce int values; everything else produces float64.
type NumberEditor struct {
	TextEditor
	integer bool
}

// NewNumber creates a number editor.
func NewNumber(v any) *NumberEditor {
	e := &NumberEditor{}
	e.SetValue(v)
	return e
}

// SetValue seeds the editor and remembers whether v was an integer.
func (e *NumberEditor) SetValue(v any) {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		e.integer = true
	default:
		e.integer = false
	}
	e.TextEditor.SetValue(v)
}

// HandleKey accepts digits, sign, decimal point and exponent characters.
func (e *NumberEditor) HandleKey(ev key.Event) bool {
	if ev.IsChar() && !strings.ContainsRune("0123456789+-.eE", ev.Rune) {
		return true
	}
	return e.TextEditor.HandleKey(ev)
}

// Value returns the parsed number, the seed when untouched, or the raw text
// when it does not parse.
func (e *NumberEditor) Value() any {
	if !e.dirty {
		return e.original
	}
	n, err := e.parse()
	if err != nil {
		return e.String()
	}
	return n
}

// Validate rejects text that is not a number.
func (e *NumberEditor) Validate() error {
	if !e.dirty {
		return nil
	}
	if _, err := e.parse(); err != nil {
		return fmt.Errorf("%q is not a number", e.String())
	}
	return nil
}

func (e *NumberEditor) parse() (any, error) {
	s := strings.TrimSpace(e.String())
	if e.integer {
		if n, err := strconv.Atoi(s); err == nil {
			return n, nil
		}
	}
	return strconv.ParseFloat(s, 64)
}
