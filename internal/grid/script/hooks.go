package script

import (
	"errors"
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/gridstorm/internal/grid/core"
	"github.com/dshills/gridstorm/internal/grid/editor"
	"github.com/dshills/gridstorm/internal/grid/model"
)

// Formatter compiles a display formatter. The body sees value and row and
// returns the text to show. A failing call falls back to the plain value.
func (e *Engine) Formatter(name, body string) (func(model.FormatContext) string, error) {
	fn, err := e.Compile(name, body, "value", "row")
	if err != nil {
		return nil, err
	}
	return func(ctx model.FormatContext) string {
		ret, err := e.Call(fn, e.ToLua(ctx.Value), e.RowTable(ctx.Row))
		if err != nil {
			e.logger.Warn("formatter %s: %v", name, err)
			return fallbackText(ctx.Value)
		}
		if ret == lua.LNil {
			return ""
		}
		return lua.LVAsString(ret)
	}, nil
}

// Validator compiles an edit validator. The body sees old, new and row and
// returns true to accept, false to reject, or a string to reject with that
// message.
func (e *Engine) Validator(name, body string) (model.Validator, error) {
	fn, err := e.Compile(name, body, "old", "new", "row")
	if err != nil {
		return nil, err
	}
	return func(oldValue, newValue any, row *model.Row) error {
		ret, err := e.Call(fn, e.ToLua(oldValue), e.ToLua(newValue), e.RowTable(row))
		if err != nil {
			e.logger.Warn("validator %s: %v", name, err)
			return fmt.Errorf("%w: %v", editor.ErrInvalidValue, err)
		}
		switch t := ret.(type) {
		case lua.LBool:
			if t {
				return nil
			}
			return editor.ErrInvalidValue
		case lua.LString:
			return errors.New(string(t))
		case *lua.LNilType:
			return nil
		default:
			return editor.ErrInvalidValue
		}
	}, nil
}

// Style compiles a style hook. The body sees value and row and returns nil
// or a table with fg, bg (hex colors) and bold, dim, underline, reverse flags.
func (e *Engine) Style(name, body string) (func(model.FormatContext) core.Style, error) {
	fn, err := e.Compile(name, body, "value", "row")
	if err != nil {
		return nil, err
	}
	return func(ctx model.FormatContext) core.Style {
		ret, err := e.Call(fn, e.ToLua(ctx.Value), e.RowTable(ctx.Row))
		if err != nil {
			e.logger.Warn("style %s: %v", name, err)
			return core.DefaultStyle()
		}
		tbl, ok := ret.(*lua.LTable)
		if !ok {
			return core.DefaultStyle()
		}
		return e.styleFromTable(name, tbl)
	}, nil
}

func (e *Engine) styleFromTable(name string, tbl *lua.LTable) core.Style {
	s := core.DefaultStyle()
	if fg, ok := tbl.RawGetString("fg").(lua.LString); ok {
		if c, err := core.ColorFromHex(string(fg)); err == nil {
			s = s.WithForeground(c)
		} else {
			e.logger.Debug("style %s: %v", name, err)
		}
	}
	if bg, ok := tbl.RawGetString("bg").(lua.LString); ok {
		if c, err := core.ColorFromHex(string(bg)); err == nil {
			s = s.WithBackground(c)
		} else {
			e.logger.Debug("style %s: %v", name, err)
		}
	}
	if lua.LVAsBool(tbl.RawGetString("bold")) {
		s = s.Bold()
	}
	if lua.LVAsBool(tbl.RawGetString("dim")) {
		s = s.Dim()
	}
	if lua.LVAsBool(tbl.RawGetString("underline")) {
		s = s.Underline()
	}
	if lua.LVAsBool(tbl.RawGetString("reverse")) {
		s = s.Reverse()
	}
	return s
}

func fallbackText(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
