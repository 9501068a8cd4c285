// Package catalog provides the base templates and composables themes are
// built from.
//
// Templates are complete configuration trees, one per color scheme. Built-in
// ("static") templates ship with the editor; "imported" templates come from
// files or from imported JSON. Composables are partial trees layered on top
// of a template, either fixed or computed from the template they are
// applied to.
package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/dshills/themeforge/internal/config/layer"
	"github.com/dshills/themeforge/internal/logging"
	"github.com/dshills/themeforge/internal/script"
)

// Template is a base configuration with one tree per color scheme.
type Template struct {
	ID            string
	Name          string
	Description   string
	DefaultScheme string
	Schemes       map[string]map[string]any

	// Source is the file the template was loaded from, if any.
	Source string
}

// SchemeNames returns the template's color schemes, sorted.
func (t *Template) SchemeNames() []string {
	return layer.SortedPaths(t.Schemes)
}

// TransformFunc computes a composable's partial tree from the template it
// is applied to.
type TransformFunc func(ctx context.Context, base map[string]any) (map[string]any, error)

// Composable is a reusable partial configuration.
type Composable struct {
	ID          string
	Name        string
	Description string

	// Tree is the partial configuration of a static composable.
	Tree map[string]any

	// Transform makes the composable dynamic. It takes precedence over
	// Code and Tree.
	Transform TransformFunc

	// Code is function source evaluated with the catalog's evaluator
	// against the base template. It takes precedence over Tree.
	Code string

	// Source is the file the composable was loaded from, if any.
	Source string
}

// IsDynamic reports whether the composable depends on the base template.
func (c *Composable) IsDynamic() bool {
	return c.Transform != nil || c.Code != ""
}

// Catalog is a concurrency-safe registry of templates and composables.
type Catalog struct {
	mu sync.RWMutex

	static      map[string]*Template
	imported    map[string]*Template
	composables map[string]*Composable

	eval   script.Evaluator
	logger *logging.Logger
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithEvaluator sets the evaluator for code-defined composables.
func WithEvaluator(e script.Evaluator) Option {
	return func(c *Catalog) {
		c.eval = e
	}
}

// WithLogger sets the catalog logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Catalog) {
		c.logger = l.WithComponent("catalog")
	}
}

// New creates a catalog holding the built-in templates and composables.
func New(opts ...Option) *Catalog {
	c := &Catalog{
		static:      make(map[string]*Template),
		imported:    make(map[string]*Template),
		composables: make(map[string]*Composable),
	}
	for _, opt := range opts {
		opt(c)
	}

	for _, t := range builtinTemplates() {
		c.static[t.ID] = t
	}
	for _, comp := range builtinComposables() {
		c.composables[comp.ID] = comp
	}
	return c
}

// Template returns a copy of the tree for ref in the given color scheme.
// An empty scheme selects the template's default scheme.
func (c *Catalog) Template(ctx context.Context, ref Ref, scheme string) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t, err := c.Lookup(ref)
	if err != nil {
		return nil, err
	}

	if scheme == "" {
		scheme = t.DefaultScheme
	}
	tree, ok := t.Schemes[scheme]
	if !ok {
		return nil, &NotFoundError{Kind: ErrUnknownColorScheme, ID: ref.String() + "/" + scheme}
	}
	return layer.Clone(tree), nil
}

// Lookup returns the template for ref.
func (c *Catalog) Lookup(ref Ref) (*Template, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var t *Template
	switch ref.Type {
	case RefStatic:
		t = c.static[ref.Ref]
	case RefImported:
		t = c.imported[ref.Ref]
	}
	if t == nil {
		return nil, &NotFoundError{Kind: ErrUnknownTemplate, ID: ref.String()}
	}
	return t, nil
}

// Templates lists every template reference, static first, each sorted by id.
func (c *Catalog) Templates() []Ref {
	c.mu.RLock()
	defer c.mu.RUnlock()

	refs := make([]Ref, 0, len(c.static)+len(c.imported))
	for _, id := range layer.SortedPaths(c.static) {
		refs = append(refs, Ref{Type: RefStatic, Ref: id})
	}
	for _, id := range layer.SortedPaths(c.imported) {
		refs = append(refs, Ref{Type: RefImported, Ref: id})
	}
	return refs
}

// Import registers tree as an imported template. The tree's palette.mode
// names its scheme, "light" when unset. Importing the same id again adds
// or replaces that scheme.
func (c *Catalog) Import(id, name string, tree map[string]any) Ref {
	scheme := schemeOf(tree)

	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.imported[id]
	if !ok {
		t = &Template{
			ID:            id,
			Name:          name,
			DefaultScheme: scheme,
			Schemes:       make(map[string]map[string]any),
		}
		c.imported[id] = t
	}
	t.Schemes[scheme] = layer.Clone(tree)
	c.logger.Info("template imported", "id", id, "scheme", scheme)
	return Ref{Type: RefImported, Ref: id}
}

// Composable returns the composable registered under id.
func (c *Catalog) Composable(id string) (*Composable, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	comp, ok := c.composables[id]
	if !ok {
		return nil, &NotFoundError{Kind: ErrUnknownComposable, ID: id}
	}
	return comp, nil
}

// Composables lists every composable sorted by id.
func (c *Catalog) Composables() []*Composable {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*Composable, 0, len(c.composables))
	for _, id := range layer.SortedPaths(c.composables) {
		out = append(out, c.composables[id])
	}
	return out
}

// Register adds or replaces a composable.
func (c *Catalog) Register(comp *Composable) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.composables[comp.ID] = comp
}

// Partial returns the partial tree composable id contributes on top of
// base. base is never modified.
func (c *Catalog) Partial(ctx context.Context, id string, base map[string]any) (map[string]any, error) {
	comp, err := c.Composable(id)
	if err != nil {
		return nil, err
	}

	switch {
	case comp.Transform != nil:
		out, err := comp.Transform(ctx, layer.Clone(base))
		if err != nil {
			return nil, fmt.Errorf("composable %s: %w", id, err)
		}
		return out, nil

	case comp.Code != "":
		if c.eval == nil {
			return nil, fmt.Errorf("composable %s: no evaluator configured", id)
		}
		v, err := c.eval.Evaluate(ctx, comp.Code, layer.Clone(base))
		if err != nil {
			return nil, fmt.Errorf("composable %s: %w", id, err)
		}
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("composable %s: %w: got %T", id, ErrInvalidComposable, v)
		}
		// Accept both nested trees and flat path maps.
		return layer.Expand(layer.Flatten(m)), nil

	default:
		return layer.Clone(comp.Tree), nil
	}
}

func schemeOf(tree map[string]any) string {
	if mode, ok := layer.GetByPath(tree, "palette.mode"); ok {
		if s, ok := mode.(string); ok && s != "" {
			return s
		}
	}
	return SchemeLight
}
