// Package script runs column hooks written in Lua: formatters, validators
// and style hooks configured alongside the columns.
//
// Each hook is the body of a function receiving (value, row[, new]). The
// interpreter is sandboxed: only the base, table, string and math libraries
// are opened and the file-loading builtins are removed.
package script

import (
	"context"
	"errors"
	"fmt"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/gridstorm/internal/logging"
)

// DefaultTimeout bounds one hook call.
const DefaultTimeout = 100 * time.Millisecond

// Script errors.
var (
	ErrClosed  = errors.New("script engine closed")
	ErrCompile = errors.New("compile hook")
)

// Engine owns one Lua interpreter. Like the grid it serves, it must be used
// from a single goroutine.
type Engine struct {
	L       *lua.LState
	timeout time.Duration
	logger  *logging.Logger
	closed  bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout sets the per-call time limit.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// WithLogger sets the logger hook failures are reported to.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) { e.logger = l.WithComponent("script") }
}

// New creates a sandboxed engine.
func New(opts ...Option) *Engine {
	e := &Engine{timeout: DefaultTimeout, logger: logging.Nop()}
	for _, opt := range opts {
		opt(e)
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
	e.L = L
	return e
}

// Close releases the interpreter. It is safe to call twice.
func (e *Engine) Close() {
	if e.closed {
		return
	}
	e.closed = true
	e.L.Close()
}

// Compile turns a hook body into a callable function with the given
// parameter names.
func (e *Engine) Compile(name, body string, params ...string) (*lua.LFunction, error) {
	if e.closed {
		return nil, ErrClosed
	}
	args := ""
	for i, p := range params {
		if i > 0 {
			args += ", "
		}
		args += p
	}
	src := fmt.Sprintf("return function(%s)\n%s\nend", args, body)

	fn, err := e.L.LoadString(src)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrCompile, name, err)
	}
	if err := e.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}); err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrCompile, name, err)
	}
	ret := e.L.Get(-1)
	e.L.Pop(1)
	hook, ok := ret.(*lua.LFunction)
	if !ok {
		return nil, fmt.Errorf("%w %s: not a function", ErrCompile, name)
	}
	return hook, nil
}

// Call runs fn with a time limit and returns its first result.
func (e *Engine) Call(fn *lua.LFunction, args ...lua.LValue) (lua.LValue, error) {
	if e.closed {
		return lua.LNil, ErrClosed
	}
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()
	e.L.SetContext(ctx)
	defer e.L.RemoveContext()

	if err := e.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args...); err != nil {
		return lua.LNil, err
	}
	ret := e.L.Get(-1)
	e.L.Pop(1)
	return ret, nil
}
