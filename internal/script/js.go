package script

import (
	"context"
	"fmt"
	"regexp"

	"github.com/dop251/goja"
)

var jsFunctionPattern = regexp.MustCompile(`^\s*(?:async\s+)?(?:function\b[\s\S]*\}\s*$|\([^()]*\)\s*=>|[A-Za-z_$][\w$]*\s*=>)`)

// JS evaluates JavaScript function expressions such as
// "theme => theme.palette.mode === 'dark' ? '#000' : '#fff'".
// Each evaluation runs in a fresh runtime; the most recently used compiled
// programs are cached.
type JS struct {
	programs *programCache[*goja.Program]
}

// NewJS creates a JavaScript evaluator.
func NewJS() *JS {
	return &JS{programs: newProgramCache[*goja.Program](DefaultCacheSize)}
}

// Dialect implements Evaluator.
func (j *JS) Dialect() Dialect { return DialectJS }

// Recognize implements Evaluator.
func (j *JS) Recognize(src string) bool {
	return jsFunctionPattern.MatchString(src)
}

// Evaluate implements Evaluator. If src evaluates to a function it is
// called with the theme; otherwise the expression value is the result.
func (j *JS) Evaluate(ctx context.Context, src string, theme map[string]any) (any, error) {
	prg, err := j.compile(src)
	if err != nil {
		return nil, err
	}

	vm := goja.New()
	themeVal := vm.ToValue(theme)
	if err := vm.Set(ThemeVar, themeVal); err != nil {
		return nil, err
	}
	for name, v := range namedValues(theme) {
		if err := vm.Set(name, v); err != nil {
			return nil, err
		}
	}

	// Interrupt JS execution when the context is done.
	stop := context.AfterFunc(ctx, func() {
		vm.Interrupt(ctx.Err())
	})
	defer stop()

	v, err := vm.RunProgram(prg)
	if err != nil {
		return nil, err
	}
	if fn, ok := goja.AssertFunction(v); ok {
		v, err = fn(goja.Undefined(), themeVal)
		if err != nil {
			return nil, err
		}
	}

	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, nil
	}
	if _, ok := goja.AssertFunction(v); ok {
		return nil, fmt.Errorf("%w: function", ErrInvalidResult)
	}
	return sanitize(v.Export())
}

func (j *JS) compile(src string) (*goja.Program, error) {
	return j.programs.get(src, func(src string) (*goja.Program, error) {
		prg, err := goja.Compile("theme-function", "("+src+"\n)", false)
		if err != nil {
			return nil, fmt.Errorf("compile: %w", err)
		}
		return prg, nil
	})
}
