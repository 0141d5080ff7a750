// Package hook runs user Lua scripts on shape lifecycle events.
//
// A script defines any of these global functions:
//
//	function on_commit(shape) end  -- an edit gesture ended
//	function on_delete(shape) end  -- the shape was removed
//
// shape is a table with id, left, top, width, height, region and editable.
// Scripts run in a sandbox without io, os, debug or package, and each call
// is bounded by a timeout.
package hook

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/borderedit/internal/editor"
	"github.com/dshills/borderedit/internal/shape"
)

// DefaultTimeout bounds a single hook call.
const DefaultTimeout = time.Second

// Hook function names.
const (
	FuncCommit = "on_commit"
	FuncDelete = "on_delete"
)

// ErrClosed is returned when calling into a closed runner.
var ErrClosed = errors.New("hook runner closed")

// Error reports a failing hook call.
type Error struct {
	Script string
	Func   string
	Err    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("hook %s in %s: %v", e.Func, e.Script, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Runner owns one sandboxed Lua state. gopher-lua states are not
// goroutine-safe; the mutex serializes all calls.
type Runner struct {
	mu sync.Mutex

	L       *lua.LState
	script  string
	timeout time.Duration
	print   func(string)
	closed  bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithPrint redirects the script's print output.
func WithPrint(fn func(string)) Option {
	return func(r *Runner) {
		r.print = fn
	}
}

// Load creates a runner and executes the script at path once, so that it
// can define its hook functions.
func Load(ctx context.Context, path string, opts ...Option) (*Runner, error) {
	r := newRunner(path, opts...)
	if err := r.run(ctx, "load", func() error { return r.L.DoFile(path) }); err != nil {
		r.L.Close()
		return nil, err
	}
	return r, nil
}

// LoadString is Load for an in-memory script.
func LoadString(ctx context.Context, name, code string, opts ...Option) (*Runner, error) {
	r := newRunner(name, opts...)
	if err := r.run(ctx, "load", func() error { return r.L.DoString(code) }); err != nil {
		r.L.Close()
		return nil, err
	}
	return r, nil
}

func newRunner(script string, opts ...Option) *Runner {
	r := &Runner{
		script:  script,
		timeout: DefaultTimeout,
		print:   func(string) {},
	}
	for _, opt := range opts {
		opt(r)
	}

	r.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(r.L)
	sandbox(r.L, r.print)
	return r
}

// openSafeLibraries opens only the side-effect free standard libraries.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes the loaders that reach the file system and captures
// print.
func sandbox(L *lua.LState, out func(string)) {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}

	L.SetGlobal("print", L.NewFunction(func(L *lua.LState) int {
		n := L.GetTop()
		var line string
		for i := 1; i <= n; i++ {
			if i > 1 {
				line += "\t"
			}
			line += L.ToStringMeta(L.Get(i)).String()
		}
		out(line)
		return 0
	}))
}

// Script returns the script name.
func (r *Runner) Script() string {
	return r.script
}

// Has reports whether the script defines the named function.
func (r *Runner) Has(fn string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return false
	}
	return r.L.GetGlobal(fn).Type() == lua.LTFunction
}

// Commit calls on_commit with the shape. A missing function is not an
// error.
func (r *Runner) Commit(ctx context.Context, snap shape.Snapshot) error {
	return r.call(ctx, FuncCommit, snap)
}

// Delete calls on_delete with the shape. A missing function is not an
// error.
func (r *Runner) Delete(ctx context.Context, snap shape.Snapshot) error {
	return r.call(ctx, FuncDelete, snap)
}

// Handle maps a controller change to a hook call. An edit gesture is
// committed when the controller returns to Idle with a shape.
func (r *Runner) Handle(ctx context.Context, ch editor.Change) error {
	switch {
	case ch.Kind == editor.ShapeRemoved:
		return r.Delete(ctx, ch.Shape)
	case ch.Kind == editor.StateChanged && ch.To == editor.StateIdle && ch.From != editor.StateIdle && ch.Shape.ID != "":
		return r.Commit(ctx, ch.Shape)
	}
	return nil
}

func (r *Runner) call(ctx context.Context, fn string, snap shape.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}

	fnVal := r.L.GetGlobal(fn)
	if fnVal.Type() != lua.LTFunction {
		return nil
	}

	return r.runLocked(ctx, fn, func() error {
		return r.L.CallByParam(lua.P{Fn: fnVal, NRet: 0, Protect: true}, shapeTable(r.L, snap))
	})
}

func (r *Runner) run(ctx context.Context, name string, fn func() error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runLocked(ctx, name, fn)
}

// runLocked executes fn under the timeout with panic recovery.
func (r *Runner) runLocked(ctx context.Context, name string, fn func() error) (err error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	r.L.SetContext(ctx)
	defer r.L.RemoveContext()

	defer func() {
		if rec := recover(); rec != nil {
			err = &Error{Script: r.script, Func: name, Err: fmt.Errorf("lua panic: %v", rec)}
		}
	}()

	if callErr := fn(); callErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			callErr = ctxErr
		}
		return &Error{Script: r.script, Func: name, Err: callErr}
	}
	return nil
}

// Close releases the Lua state.
func (r *Runner) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true
	r.L.Close()
	return nil
}

// shapeTable converts a snapshot to a Lua table.
func shapeTable(L *lua.LState, snap shape.Snapshot) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("id", lua.LString(snap.ID))
	t.RawSetString("left", lua.LNumber(snap.Rect.Left))
	t.RawSetString("top", lua.LNumber(snap.Rect.Top))
	t.RawSetString("width", lua.LNumber(snap.Rect.Width))
	t.RawSetString("height", lua.LNumber(snap.Rect.Height))
	t.RawSetString("region", lua.LString(snap.Region.String()))
	t.RawSetString("editable", lua.LBool(snap.Editable))
	return t
}
