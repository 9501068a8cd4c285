package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dshills/themeforge/internal/config/loader"
	"github.com/dshills/themeforge/internal/config/watcher"
)

// Catalog directory layout.
const (
	TemplatesDir   = "templates"
	ComposablesDir = "composables"
)

const maxIncludeDepth = 8

// LoadDir loads templates from dir/templates and composables from
// dir/composables. Files loaded by a previous LoadDir are replaced;
// built-ins and runtime imports are kept. Files that fail to parse are
// skipped and reported in the returned error; the rest are still loaded.
func (c *Catalog) LoadDir(dir string) error {
	var errs []error

	templates, err := readDir(filepath.Join(dir, TemplatesDir), parseTemplate)
	if err != nil {
		errs = append(errs, err)
	}
	composables, err := readDir(filepath.Join(dir, ComposablesDir), parseComposable)
	if err != nil {
		errs = append(errs, err)
	}

	c.mu.Lock()
	for id, t := range c.imported {
		if t.Source != "" {
			delete(c.imported, id)
		}
	}
	for _, t := range templates {
		c.imported[t.ID] = t
	}
	for id, comp := range c.composables {
		if comp.Source != "" {
			delete(c.composables, id)
		}
	}
	for _, comp := range composables {
		if existing, ok := c.composables[comp.ID]; ok && existing.Source == "" {
			errs = append(errs, fmt.Errorf("%s: composable %q shadows a built-in", comp.Source, comp.ID))
			continue
		}
		c.composables[comp.ID] = comp
	}
	c.mu.Unlock()

	c.logger.Info("catalog loaded",
		"dir", dir,
		"templates", len(templates),
		"composables", len(composables),
	)
	return errors.Join(errs...)
}

// Watch reloads the catalog whenever a file under dir/templates or
// dir/composables changes. onReload, if set, receives the result of every
// reload. The returned watcher must be closed by the caller.
func (c *Catalog) Watch(ctx context.Context, dir string, onReload func(error)) (*watcher.Watcher, error) {
	w, err := watcher.New(
		watcher.WithFilter(isCatalogFile),
		watcher.WithErrorHandler(func(err error) {
			c.logger.Warn("catalog watch error", "error", err.Error())
		}),
	)
	if err != nil {
		return nil, err
	}

	watched := 0
	for _, sub := range []string{TemplatesDir, ComposablesDir} {
		err := w.WatchDir(filepath.Join(dir, sub))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			w.Close()
			return nil, err
		}
		watched++
	}
	if watched == 0 {
		w.Close()
		return nil, fmt.Errorf("watch %s: no %s or %s directory", dir, TemplatesDir, ComposablesDir)
	}

	w.OnChange(func(events []watcher.Event) {
		c.logger.Debug("catalog files changed", "count", len(events))
		err := c.LoadDir(dir)
		if err != nil {
			c.logger.Error(err, "catalog reload")
		}
		if onReload != nil {
			onReload(err)
		}
	})

	if err := w.Start(ctx); err != nil {
		w.Close()
		return nil, err
	}
	return w, nil
}

func isCatalogFile(path string) bool {
	return slices.Contains(loader.Extensions, strings.ToLower(filepath.Ext(path)))
}

// readDir parses every catalog file in dir in name order. A missing dir is
// empty.
func readDir[T any](dir string, parse func(id, path string, doc map[string]any) (T, error)) ([]T, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var (
		out  []T
		errs []error
	)
	for _, e := range entries {
		if e.IsDir() || !isCatalogFile(e.Name()) {
			continue
		}
		path := filepath.Join(dir, e.Name())

		l, err := loader.NewFileLoader(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		doc, err := l.LoadWithIncludes(maxIncludeDepth)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if doc == nil {
			continue // removed between ReadDir and load
		}

		id := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		item, err := parse(id, path, doc)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		out = append(out, item)
	}
	return out, errors.Join(errs...)
}

// parseTemplate reads a template document:
//
//	name = "Brand"
//	defaultScheme = "light"
//	[schemes.light.palette.primary]
//	main = "#ff5722"
//
// A document with a single "theme" tree instead of "schemes" registers it
// under the scheme named by its palette.mode.
func parseTemplate(id, path string, doc map[string]any) (*Template, error) {
	t := &Template{
		ID:          id,
		Name:        stringField(doc, "name", id),
		Description: stringField(doc, "description", ""),
		Schemes:     make(map[string]map[string]any),
		Source:      path,
	}

	if schemes, ok := doc["schemes"].(map[string]any); ok {
		for name, tree := range schemes {
			m, ok := tree.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("scheme %q is not a table", name)
			}
			t.Schemes[name] = m
		}
	} else if tree, ok := doc["theme"].(map[string]any); ok {
		t.Schemes[schemeOf(tree)] = tree
	}
	if len(t.Schemes) == 0 {
		return nil, errors.New(`template needs "schemes" or "theme"`)
	}

	t.DefaultScheme = stringField(doc, "defaultScheme", "")
	if t.DefaultScheme == "" {
		if _, ok := t.Schemes[SchemeLight]; ok {
			t.DefaultScheme = SchemeLight
		} else {
			t.DefaultScheme = t.SchemeNames()[0]
		}
	}
	if _, ok := t.Schemes[t.DefaultScheme]; !ok {
		return nil, fmt.Errorf("default scheme %q is not defined", t.DefaultScheme)
	}
	return t, nil
}

// parseComposable reads a composable document with either a static "tree"
// or a "transform" function evaluated against the base template.
func parseComposable(id, path string, doc map[string]any) (*Composable, error) {
	comp := &Composable{
		ID:          id,
		Name:        stringField(doc, "name", id),
		Description: stringField(doc, "description", ""),
		Code:        stringField(doc, "transform", ""),
		Source:      path,
	}
	if tree, ok := doc["tree"].(map[string]any); ok {
		comp.Tree = tree
	}
	if comp.Tree == nil && comp.Code == "" {
		return nil, errors.New(`composable needs "tree" or "transform"`)
	}
	return comp, nil
}

func stringField(doc map[string]any, key, fallback string) string {
	if s, ok := doc[key].(string); ok && s != "" {
		return s
	}
	return fallback
}
