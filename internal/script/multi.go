package script

import (
	"context"
	"errors"
	"io"
)

// Multi dispatches each source to the first dialect that recognizes it.
// Sources no dialect recognizes go to the primary dialect.
type Multi struct {
	primary    Evaluator
	evaluators []Evaluator
}

// NewMulti creates an evaluator for every dialect with primary tried first.
func NewMulti(primary Dialect) (*Multi, error) {
	first, err := NewEvaluator(primary)
	if err != nil {
		return nil, err
	}

	m := &Multi{primary: first, evaluators: []Evaluator{first}}
	for _, d := range Dialects {
		if d == primary {
			continue
		}
		e, err := NewEvaluator(d)
		if err != nil {
			return nil, err
		}
		m.evaluators = append(m.evaluators, e)
	}
	return m, nil
}

// Dialect implements Evaluator and returns the primary dialect.
func (m *Multi) Dialect() Dialect {
	return m.primary.Dialect()
}

// Recognize implements Evaluator.
func (m *Multi) Recognize(src string) bool {
	return m.For(src) != nil
}

// For returns the evaluator that recognizes src, or nil.
func (m *Multi) For(src string) Evaluator {
	for _, e := range m.evaluators {
		if e.Recognize(src) {
			return e
		}
	}
	return nil
}

// Evaluate implements Evaluator.
func (m *Multi) Evaluate(ctx context.Context, src string, theme map[string]any) (any, error) {
	e := m.For(src)
	if e == nil {
		e = m.primary
	}
	return e.Evaluate(ctx, src, theme)
}

// Close releases evaluators that hold resources.
func (m *Multi) Close() error {
	var errs []error
	for _, e := range m.evaluators {
		if c, ok := e.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}
