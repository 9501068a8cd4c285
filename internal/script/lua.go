package script

import (
	"context"
	"regexp"

	"github.com/dshills/themeforge/internal/script/lua"
)

var luaFunctionPattern = regexp.MustCompile(`^\s*function\s*\([^)]*\)[\s\S]*\bend\s*$`)

// Lua evaluates Lua function expressions such as
// `function(theme) return theme.spacing * 2 end`.
type Lua struct {
	state *lua.State
}

// NewLua creates a Lua evaluator. Each call runs in a fresh sandbox.
func NewLua() *Lua {
	return &Lua{state: lua.NewState()}
}

// Dialect implements Evaluator.
func (l *Lua) Dialect() Dialect { return DialectLua }

// Recognize implements Evaluator.
func (l *Lua) Recognize(src string) bool {
	return luaFunctionPattern.MatchString(src)
}

// Evaluate implements Evaluator.
func (l *Lua) Evaluate(ctx context.Context, src string, theme map[string]any) (any, error) {
	v, err := l.state.Eval(ctx, src, theme, namedValues(theme))
	if err != nil {
		return nil, err
	}
	return sanitize(v)
}

// Close releases the Lua state.
func (l *Lua) Close() error {
	return l.state.Close()
}
