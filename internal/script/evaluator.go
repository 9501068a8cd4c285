// Package script evaluates function-valued theme edits.
//
// A function edit is source text in one of the supported dialects. It is
// evaluated with a single input, the configuration tree resolved so far,
// bound to "theme"; the top-level sections of that tree (palette,
// typography, spacing, ...) are also bound by name for convenience.
// Evaluation is sandboxed: no dialect exposes the file system, network,
// process state or module loading.
package script

import (
	"context"
	"fmt"
	"strings"
)

// Dialect names a function-edit language.
type Dialect string

// Supported dialects.
const (
	// DialectJS evaluates JavaScript arrow/function expressions with goja.
	DialectJS Dialect = "js"
	// DialectExpr evaluates "=" prefixed formulas with expr.
	DialectExpr Dialect = "expr"
	// DialectLua evaluates Lua functions with gopher-lua.
	DialectLua Dialect = "lua"
)

// Dialects lists every supported dialect.
var Dialects = []Dialect{DialectJS, DialectExpr, DialectLua}

// ParseDialect parses a dialect name.
func ParseDialect(s string) (Dialect, error) {
	switch d := Dialect(strings.ToLower(strings.TrimSpace(s))); d {
	case DialectJS, DialectExpr, DialectLua:
		return d, nil
	case "javascript", "":
		return DialectJS, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDialect, s)
	}
}

// ThemeVar is the name the resolved tree is bound to.
const ThemeVar = "theme"

// Accessors are the top-level sections bound by name next to ThemeVar.
var Accessors = []string{
	"palette",
	"typography",
	"spacing",
	"shape",
	"breakpoints",
	"shadows",
	"components",
	"transitions",
	"zIndex",
}

// Evaluator runs function source against a resolved tree.
type Evaluator interface {
	// Dialect returns the language the evaluator understands.
	Dialect() Dialect

	// Recognize reports whether src looks like a function in this dialect.
	Recognize(src string) bool

	// Evaluate runs src against theme. The evaluator may read but must not
	// retain theme.
	Evaluate(ctx context.Context, src string, theme map[string]any) (any, error)
}

// NewEvaluator creates the evaluator for a dialect.
func NewEvaluator(d Dialect) (Evaluator, error) {
	switch d {
	case DialectJS:
		return NewJS(), nil
	case DialectExpr:
		return NewExpr(), nil
	case DialectLua:
		return NewLua(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDialect, d)
	}
}

// namedValues returns the accessor bindings for a tree.
func namedValues(theme map[string]any) map[string]any {
	named := make(map[string]any, len(Accessors))
	for _, name := range Accessors {
		if v, ok := theme[name]; ok {
			named[name] = v
		}
	}
	return named
}

// sanitize checks that an evaluation result is plain tree data and
// normalizes the integer types dialects produce.
func sanitize(v any) (any, error) {
	switch t := v.(type) {
	case nil, bool, string, float64, int64:
		return v, nil
	case int:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case float32:
		return float64(t), nil
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			s, err := sanitize(e)
			if err != nil {
				return nil, err
			}
			out[i] = s
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			s, err := sanitize(e)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidResult, v)
	}
}
