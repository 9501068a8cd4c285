// Package resolver turns a base template, enabled composables and user edits
// into one concrete configuration tree.
//
// Layers are merged strictly in this order:
//
//	template → composables → committed literals → committed functions
//	→ raw literals → raw functions
//
// Function layers are hydrated against the tree merged so far, so a function
// always observes every layer beneath it and none of its siblings.
package resolver

import (
	"context"
	"fmt"
	"time"

	"github.com/dshills/themeforge/internal/catalog"
	"github.com/dshills/themeforge/internal/config/layer"
	"github.com/dshills/themeforge/internal/logging"
	"github.com/dshills/themeforge/internal/modification"
	"github.com/dshills/themeforge/internal/script"
)

// Source supplies templates and composable partials.
// *catalog.Catalog implements it.
type Source interface {
	Template(ctx context.Context, ref catalog.Ref, scheme string) (map[string]any, error)
	Partial(ctx context.Context, id string, base map[string]any) (map[string]any, error)
}

// Request describes one resolution.
type Request struct {
	// Base is the template to start from.
	Base catalog.Ref

	// Composables are the enabled composable ids in the order they were
	// enabled.
	Composables []string

	// Committed is the resolved modification set.
	Committed modification.Set

	// Raw is the uncommitted edit buffer. It is only used when
	// Options.IncludeRaw is set.
	Raw map[string]any

	// Masked lists committed paths that have a pending reset in the raw
	// buffer. They are skipped when Options.IncludeRaw is set.
	Masked []string

	// ColorScheme selects the template scheme and the scheme-qualified
	// edits. Empty means the template default.
	ColorScheme string
}

// Options controls how a request is resolved.
type Options struct {
	Mode       script.Mode
	IncludeRaw bool
}

// PreviewOptions is fail-safe and includes the raw buffer.
var PreviewOptions = Options{Mode: script.FailSafe, IncludeRaw: true}

// ExportOptions is strict and ignores the raw buffer.
var ExportOptions = Options{Mode: script.Strict, IncludeRaw: false}

// Resolver resolves requests against a Source.
type Resolver struct {
	source     Source
	hydrator   *script.Hydrator
	classifier *modification.Classifier
	logger     *logging.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the resolver logger.
func WithLogger(l *logging.Logger) Option {
	return func(r *Resolver) {
		r.logger = l
	}
}

// WithClassifier overrides the classifier used for the raw buffer.
func WithClassifier(c *modification.Classifier) Option {
	return func(r *Resolver) {
		r.classifier = c
	}
}

// New creates a resolver.
func New(source Source, hydrator *script.Hydrator, opts ...Option) *Resolver {
	r := &Resolver{
		source:   source,
		hydrator: hydrator,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.WithComponent("resolver")
	if r.classifier == nil {
		var recognize modification.Recognizer
		if hydrator != nil && hydrator.Evaluator() != nil {
			recognize = hydrator.Evaluator().Recognize
		}
		r.classifier = modification.NewClassifier(recognize, r.logger)
	}
	return r
}

// Classifier returns the classifier used for raw edits.
func (r *Resolver) Classifier() *modification.Classifier {
	return r.classifier
}

// Preview resolves req for live rendering. It fails only when the template
// or a composable cannot be found.
func (r *Resolver) Preview(ctx context.Context, req Request) (map[string]any, error) {
	return r.Resolve(ctx, req, PreviewOptions)
}

// Export resolves the committed state of req. Any function failure aborts.
func (r *Resolver) Export(ctx context.Context, req Request) (map[string]any, error) {
	return r.Resolve(ctx, req, ExportOptions)
}

// Base resolves only the template and composable layers of req.
func (r *Resolver) Base(ctx context.Context, req Request) (map[string]any, string, error) {
	tree, err := r.source.Template(ctx, req.Base, req.ColorScheme)
	if err != nil {
		return nil, "", fmt.Errorf("template %s: %w", req.Base, err)
	}

	scheme := req.ColorScheme
	if scheme == "" {
		scheme = effectiveScheme(tree)
	}

	base := layer.Clone(tree)
	for _, id := range req.Composables {
		partial, err := r.source.Partial(ctx, id, base)
		if err != nil {
			return nil, "", err
		}
		tree = layer.DeepMerge(tree, partial)
	}
	return tree, scheme, nil
}

// Resolve runs the full layer pipeline for req.
func (r *Resolver) Resolve(ctx context.Context, req Request, opts Options) (map[string]any, error) {
	start := time.Now()

	tree, scheme, err := r.Base(ctx, req)
	if err != nil {
		return nil, err
	}

	committed := req.Committed
	if opts.IncludeRaw && len(req.Masked) > 0 {
		committed = committed.Clone()
		for _, path := range req.Masked {
			delete(committed.Literals, path)
			delete(committed.Functions, path)
		}
	}

	tree, err = r.apply(ctx, tree, committed.ForScheme(scheme), opts.Mode)
	if err != nil {
		return nil, err
	}

	if opts.IncludeRaw && len(req.Raw) > 0 {
		raw := r.classifier.Classify(req.Raw).ForScheme(scheme)
		tree, err = r.apply(ctx, tree, raw, opts.Mode)
		if err != nil {
			return nil, err
		}
	}

	r.logger.Debug("resolved",
		"base", req.Base.String(),
		"scheme", scheme,
		"mode", opts.Mode.String(),
		"raw", opts.IncludeRaw,
		"elapsed", time.Since(start).String(),
	)
	return tree, nil
}

// apply merges the literal bucket of set onto tree and then the hydrated
// function bucket.
func (r *Resolver) apply(ctx context.Context, tree map[string]any, set modification.Set, mode script.Mode) (map[string]any, error) {
	if len(set.Literals) > 0 {
		tree = layer.DeepMerge(tree, layer.Expand(set.Literals))
	}
	if len(set.Functions) == 0 {
		return tree, nil
	}

	if r.hydrator == nil {
		if mode == script.Strict {
			return nil, fmt.Errorf("%w: no hydrator configured", script.ErrHydrationFailed)
		}
		r.logger.Warn("function edits ignored, no hydrator configured", "count", len(set.Functions))
		return tree, nil
	}

	values, err := r.hydrator.Hydrate(ctx, set.Functions, mode, tree)
	if err != nil {
		return nil, err
	}
	return layer.DeepMerge(tree, layer.Expand(values)), nil
}

// effectiveScheme reads palette.mode from a template tree.
func effectiveScheme(tree map[string]any) string {
	if v, ok := layer.GetByPath(tree, "palette.mode"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
