package script

import (
	"context"
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// FormulaPrefix marks a string edit as an expr formula.
const FormulaPrefix = "="

// Expr evaluates spreadsheet-style formulas such as
// `= palette.mode == "dark" ? "#000" : "#fff"`. The grammar has no loops,
// assignments or host access, which makes it the most constrained dialect.
type Expr struct {
	programs *programCache[*vm.Program]
}

// NewExpr creates an expr evaluator.
func NewExpr() *Expr {
	return &Expr{programs: newProgramCache[*vm.Program](DefaultCacheSize)}
}

// Dialect implements Evaluator.
func (e *Expr) Dialect() Dialect { return DialectExpr }

// Recognize implements Evaluator.
func (e *Expr) Recognize(src string) bool {
	body, ok := strings.CutPrefix(strings.TrimSpace(src), FormulaPrefix)
	return ok && strings.TrimSpace(body) != ""
}

// Evaluate implements Evaluator.
func (e *Expr) Evaluate(ctx context.Context, src string, theme map[string]any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	program, err := e.compile(src)
	if err != nil {
		return nil, err
	}

	env := namedValues(theme)
	env[ThemeVar] = theme

	result, err := expr.Run(program, env)
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}
	return sanitize(result)
}

func (e *Expr) compile(src string) (*vm.Program, error) {
	body := strings.TrimPrefix(strings.TrimSpace(src), FormulaPrefix)
	return e.programs.get(body, func(body string) (*vm.Program, error) {
		program, err := expr.Compile(body, expr.AllowUndefinedVariables())
		if err != nil {
			return nil, fmt.Errorf("compile: %w", err)
		}
		return program, nil
	})
}
