package lua

import (
	"context"
	"fmt"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// State evaluates theme functions in sandboxed gopher-lua states.
//
// Every Eval runs in its own LState, so globals written by one function
// and changes to the standard libraries never reach the next call. State
// is safe for concurrent use.
type State struct {
	closed atomic.Bool
}

// NewState creates a new sandboxed Lua evaluator.
func NewState() *State {
	return &State{}
}

func newSandbox() *lua.LState {
	L := lua.NewState(lua.Options{
		SkipOpenLibs: true,
	})
	openSafeLibraries(L)
	installSandbox(L)
	return L
}

// Eval compiles src, which must evaluate to a function, and calls it with
// theme converted to a Lua table. named values are exposed as globals for
// the duration of the call.
func (s *State) Eval(ctx context.Context, src string, theme map[string]any, named map[string]any) (result any, err error) {
	if s.closed.Load() {
		return nil, ErrStateClosed
	}

	L := newSandbox()
	defer L.Close()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()

	L.SetContext(ctx)
	defer L.RemoveContext()

	for name, v := range named {
		L.SetGlobal(name, toLuaValue(L, v))
	}

	fn, err := L.LoadString("return " + src)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	L.Push(fn)
	if err := L.PCall(0, 1, nil); err != nil {
		return nil, err
	}
	compiled := L.Get(-1)

	callable, ok := compiled.(*lua.LFunction)
	if !ok {
		return nil, fmt.Errorf("%w (got %s)", ErrNotFunction, compiled.Type())
	}

	L.Push(callable)
	L.Push(toLuaValue(L, theme))
	if err := L.PCall(1, 1, nil); err != nil {
		return nil, err
	}
	return toGoValue(L.Get(-1)), nil
}

// Close stops further evaluations.
func (s *State) Close() error {
	s.closed.Store(true)
	return nil
}
