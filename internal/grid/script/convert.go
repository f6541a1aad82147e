package script

import (
	"fmt"
	"math"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/gridstorm/internal/grid/model"
)

// ToLua converts a Go row value into a Lua value.
func (e *Engine) ToLua(v any) lua.LValue {
	switch t := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(t)
	case string:
		return lua.LString(t)
	case int:
		return lua.LNumber(t)
	case int64:
		return lua.LNumber(t)
	case int32:
		return lua.LNumber(t)
	case uint:
		return lua.LNumber(t)
	case float32:
		return lua.LNumber(t)
	case float64:
		return lua.LNumber(t)
	case []any:
		tbl := e.L.NewTable()
		for _, item := range t {
			tbl.Append(e.ToLua(item))
		}
		return tbl
	case map[string]any:
		tbl := e.L.NewTable()
		for k, item := range t {
			tbl.RawSetString(k, e.ToLua(item))
		}
		return tbl
	default:
		return lua.LString(fmt.Sprint(t))
	}
}

// FromLua converts a Lua value back into Go. Integral numbers become int.
func FromLua(v lua.LValue) any {
	switch t := v.(type) {
	case *lua.LNilType:
		return nil
	case lua.LBool:
		return bool(t)
	case lua.LString:
		return string(t)
	case lua.LNumber:
		f := float64(t)
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return int(f)
		}
		return f
	case *lua.LTable:
		if n := t.Len(); n > 0 {
			out := make([]any, 0, n)
			for i := 1; i <= n; i++ {
				out = append(out, FromLua(t.RawGetInt(i)))
			}
			return out
		}
		out := make(map[string]any)
		t.ForEach(func(k, val lua.LValue) {
			out[k.String()] = FromLua(val)
		})
		return out
	default:
		return v.String()
	}
}

// RowTable exposes a row to Lua: named fields by name, positional values at
// 1-based indices, and the child count under "children".
func (e *Engine) RowTable(row *model.Row) *lua.LTable {
	tbl := e.L.NewTable()
	if row == nil {
		return tbl
	}
	for k, v := range row.Fields {
		tbl.RawSetString(k, e.ToLua(v))
	}
	for i, v := range row.Values {
		tbl.RawSetInt(i+1, e.ToLua(v))
	}
	tbl.RawSetString("children", lua.LNumber(len(row.Children)))
	return tbl
}
