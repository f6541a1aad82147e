package script

import (
	"errors"
	"testing"
	"time"

	"github.com/dshills/gridstorm/internal/grid/core"
	"github.com/dshills/gridstorm/internal/grid/editor"
	"github.com/dshills/gridstorm/internal/grid/model"
)

func TestFormatter(t *testing.T) {
	e := New()
	defer e.Close()

	f, err := e.Formatter("upper", `return string.upper(value) .. " (" .. row.age .. ")"`)
	if err != nil {
		t.Fatalf("Formatter: %v", err)
	}
	row := model.NewRow(map[string]any{"name": "ada", "age": 36})
	if got := f(model.FormatContext{Value: "ada", Row: row}); got != "ADA (36)" {
		t.Errorf("formatted = %q", got)
	}
}

func TestFormatterFallsBackOnError(t *testing.T) {
	e := New()
	defer e.Close()

	f, err := e.Formatter("broken", `return value.missing.field`)
	if err != nil {
		t.Fatalf("Formatter: %v", err)
	}
	if got := f(model.FormatContext{Value: 12}); got != "12" {
		t.Errorf("fallback = %q, want 12", got)
	}
}

func TestValidator(t *testing.T) {
	e := New()
	defer e.Close()

	v, err := e.Validator("range", `
if type(new) ~= "number" then return "not a number" end
if new > 150 then return false end
return true`)
	if err != nil {
		t.Fatalf("Validator: %v", err)
	}

	tests := []struct {
		name    string
		value   any
		wantErr error
		wantMsg string
	}{
		{"accept", 40, nil, ""},
		{"reject", 200, editor.ErrInvalidValue, ""},
		{"message", "abc", nil, "not a number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v(30, tt.value, nil)
			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("err = %v, want %v", err, tt.wantErr)
				}
			case tt.wantMsg != "":
				if err == nil || err.Error() != tt.wantMsg {
					t.Errorf("err = %v, want %q", err, tt.wantMsg)
				}
			default:
				if err != nil {
					t.Errorf("unexpected err %v", err)
				}
			}
		})
	}
}

func TestStyle(t *testing.T) {
	e := New()
	defer e.Close()

	s, err := e.Style("warn", `if value < 0 then return {fg = "#ff0000", bold = true} end`)
	if err != nil {
		t.Fatalf("Style: %v", err)
	}
	neg := s(model.FormatContext{Value: -1})
	if !neg.Foreground.Equals(core.ColorRed) || !neg.Attributes.Has(core.AttrBold) {
		t.Errorf("negative style = %+v", neg)
	}
	if !s(model.FormatContext{Value: 1}).IsDefault() {
		t.Error("nil return should give the default style")
	}
}

func TestSandbox(t *testing.T) {
	e := New()
	defer e.Close()

	for _, name := range []string{"os", "io", "dofile", "loadfile", "require"} {
		f, err := e.Formatter("probe", `return type(`+name+`)`)
		if err != nil {
			t.Fatalf("Formatter: %v", err)
		}
		if got := f(model.FormatContext{}); got != "nil" {
			t.Errorf("%s is %s inside the sandbox", name, got)
		}
	}
}

func TestCompileError(t *testing.T) {
	e := New()
	defer e.Close()

	if _, err := e.Formatter("bad", `return (`); !errors.Is(err, ErrCompile) {
		t.Errorf("err = %v, want ErrCompile", err)
	}
}

func TestTimeout(t *testing.T) {
	e := New(WithTimeout(20 * time.Millisecond))
	defer e.Close()

	f, err := e.Formatter("spin", `while true do end`)
	if err != nil {
		t.Fatalf("Formatter: %v", err)
	}
	if got := f(model.FormatContext{Value: "x"}); got != "x" {
		t.Errorf("timed-out formatter = %q, want fallback x", got)
	}
}

func TestClosed(t *testing.T) {
	e := New()
	e.Close()
	e.Close()
	if _, err := e.Compile("x", "return 1"); !errors.Is(err, ErrClosed) {
		t.Errorf("err = %v, want ErrClosed", err)
	}
}

func TestFromLua(t *testing.T) {
	e := New()
	defer e.Close()

	if got := FromLua(e.ToLua(3)); got != 3 {
		t.Errorf("int round trip = %#v", got)
	}
	if got := FromLua(e.ToLua(2.5)); got != 2.5 {
		t.Errorf("float round trip = %#v", got)
	}
	if got, ok := FromLua(e.ToLua([]any{"a", "b"})).([]any); !ok || len(got) != 2 {
		t.Errorf("list round trip = %#v", got)
	}
	row, ok := FromLua(e.RowTable(model.NewValuesRow("x"))).([]any)
	if !ok || len(row) != 1 || row[0] != "x" {
		t.Errorf("positional row = %#v", row)
	}
}
