package script

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dshills/themeforge/internal/config/layer"
	"github.com/dshills/themeforge/internal/logging"
)

// Mode selects how evaluation failures are handled.
type Mode int

const (
	// Strict aborts on the first failing function.
	Strict Mode = iota
	// FailSafe substitutes a type-appropriate fallback and keeps going.
	FailSafe
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case Strict:
		return "strict"
	case FailSafe:
		return "failsafe"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// DefaultTimeout bounds a single function evaluation.
const DefaultTimeout = 250 * time.Millisecond

// FallbackColor is substituted for failed color and background functions.
const FallbackColor = "#808080"

// Fallback returns the value used in fail-safe mode when the function at
// path fails. A nil result means the path is left unset.
func Fallback(path string) any {
	p := strings.ToLower(path)
	switch {
	case strings.Contains(p, "color"), strings.Contains(p, "background"):
		return FallbackColor
	case strings.Contains(p, "spacing"), strings.Contains(p, "width"), strings.Contains(p, "height"):
		return int64(0)
	default:
		return nil
	}
}

// Hydrator turns function edits into concrete values.
type Hydrator struct {
	eval    Evaluator
	timeout time.Duration
	logger  *logging.Logger
}

// Option configures a Hydrator.
type Option func(*Hydrator)

// WithTimeout bounds each evaluation. Zero or negative disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(h *Hydrator) {
		h.timeout = d
	}
}

// WithLogger sets the logger used for fail-safe fallbacks.
func WithLogger(l *logging.Logger) Option {
	return func(h *Hydrator) {
		h.logger = l.WithComponent("hydrator")
	}
}

// NewHydrator creates a Hydrator that evaluates with eval.
func NewHydrator(eval Evaluator, opts ...Option) *Hydrator {
	h := &Hydrator{
		eval:    eval,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Evaluator returns the evaluator used for function edits.
func (h *Hydrator) Evaluator() Evaluator {
	return h.eval
}

// Hydrate evaluates every function in fns against resolved and returns a
// flat path map of the results. Each function sees its own deep copy of
// resolved, so evaluation order never matters and resolved is not modified.
//
// In Strict mode the first failure, in path order, is returned as a
// *HydrationError. In FailSafe mode failures are replaced by Fallback and
// Hydrate never fails; paths whose fallback is nil are omitted.
func (h *Hydrator) Hydrate(ctx context.Context, fns map[string]string, mode Mode, resolved map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(fns))

	for _, path := range layer.SortedPaths(fns) {
		v, err := h.evaluate(ctx, fns[path], resolved)
		if err == nil {
			out[path] = v
			continue
		}

		if mode == Strict {
			return nil, &HydrationError{Path: path, Err: err}
		}

		fallback := Fallback(path)
		h.logger.Warn("function edit failed, using fallback",
			"path", path,
			"error", err.Error(),
			"fallback", fallback,
		)
		if fallback != nil {
			out[path] = fallback
		}
	}

	return out, nil
}

func (h *Hydrator) evaluate(ctx context.Context, src string, resolved map[string]any) (result any, err error) {
	if h.eval == nil {
		return nil, fmt.Errorf("%w: no evaluator configured", ErrUnknownDialect)
	}

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("evaluator panic: %v", r)
		}
	}()

	theme := layer.Clone(resolved)
	if theme == nil {
		theme = make(map[string]any)
	}
	return h.eval.Evaluate(ctx, src, theme)
}
