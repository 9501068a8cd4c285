// Package app wires the catalog, resolver, store and storage into a theme
// editor and exposes the per-path contract UI collaborators build on.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/themeforge/internal/catalog"
	"github.com/dshills/themeforge/internal/config"
	"github.com/dshills/themeforge/internal/config/layer"
	"github.com/dshills/themeforge/internal/config/watcher"
	"github.com/dshills/themeforge/internal/logging"
	"github.com/dshills/themeforge/internal/modification"
	"github.com/dshills/themeforge/internal/preview"
	"github.com/dshills/themeforge/internal/resolver"
	"github.com/dshills/themeforge/internal/script"
	"github.com/dshills/themeforge/internal/storage"
	"github.com/dshills/themeforge/internal/store"
	"github.com/dshills/themeforge/internal/transfer"
)

// Options configures an Editor.
type Options struct {
	// Settings are the loaded settings. Nil uses config.Default().
	Settings *config.Settings

	// Logger receives editor logs. Nil disables logging.
	Logger *logging.Logger

	// Repository stores designs. Nil disables Save and Open.
	Repository *storage.Repository

	// Frames overrides the frame scheduler used for batched edits.
	Frames store.FrameScheduler

	// Catalog overrides the catalog built from settings.
	Catalog *catalog.Catalog
}

// Editor is one editing session on one design.
type Editor struct {
	mu sync.Mutex

	settings  *config.Settings
	logger    *logging.Logger
	evaluator script.Evaluator
	catalog   *catalog.Catalog
	resolver  *resolver.Resolver
	store     *store.Store
	repo      *storage.Repository
	watcher   *watcher.Watcher
	metrics   *Metrics

	designID   uuid.UUID
	designName string
	lastGood   map[string]any
}

// New creates an editor holding an empty design on the default template.
func New(opts Options) (*Editor, error) {
	e := &Editor{
		settings: opts.Settings,
		logger:   opts.Logger,
		catalog:  opts.Catalog,
		repo:     opts.Repository,
		metrics:  NewMetrics(),
	}
	if e.settings == nil {
		e.settings = config.Default()
	}
	e.logger = e.logger.WithComponent("editor")

	if err := e.bootstrap(opts); err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

// bootstrap initializes components in dependency order.
func (e *Editor) bootstrap(opts Options) error {
	// 1. Evaluator
	dialect, err := script.ParseDialect(e.settings.Script.Dialect)
	if err != nil {
		return &InitError{Component: "script", Err: err}
	}
	multi, err := script.NewMulti(dialect)
	if err != nil {
		return &InitError{Component: "script", Err: err}
	}
	e.evaluator = multi

	// 2. Catalog
	if e.catalog == nil {
		e.catalog = catalog.New(
			catalog.WithEvaluator(e.evaluator),
			catalog.WithLogger(e.logger),
		)
		if dir := e.settings.Catalog.Dir; dir != "" {
			if err := e.catalog.LoadDir(dir); err != nil {
				// Bad catalog files are skipped; built-ins stay usable.
				e.logger.Warn("catalog load", "dir", dir, "error", err.Error())
			}
		}
	}

	// 3. Resolver
	hydrator := script.NewHydrator(e.evaluator,
		script.WithTimeout(e.settings.Script.Timeout.Std()),
		script.WithLogger(e.logger),
	)
	classifier := modification.NewClassifier(e.evaluator.Recognize, e.logger)
	e.resolver = resolver.New(e.catalog, hydrator,
		resolver.WithClassifier(classifier),
		resolver.WithLogger(e.logger),
	)

	// 4. Store
	frames := opts.Frames
	if frames == nil {
		frames = store.NewTimerFrames(e.settings.Preview.FrameInterval.Std())
	}
	e.store = store.New(e.newPersisted(),
		store.WithHistoryLimit(e.settings.History.Limit),
		store.WithFrames(frames),
		store.WithClassifier(classifier),
		store.WithScoping(modification.Scoping{Roots: e.settings.Scheme.ScopedRoots}),
		store.WithLogger(e.logger),
	)
	return nil
}

func (e *Editor) newPersisted() store.Persisted {
	p := store.NewPersisted(catalog.DefaultRef())
	p.ColorScheme = e.settings.Scheme.Default
	return p
}

// Start begins watching the catalog directory when settings ask for it.
// The watch ends when ctx is done or the editor is closed.
func (e *Editor) Start(ctx context.Context) error {
	dir := e.settings.Catalog.Dir
	if dir == "" || !e.settings.Catalog.Watch {
		return nil
	}

	w, err := e.catalog.Watch(ctx, dir, nil)
	if err != nil {
		return &InitError{Component: "catalog watcher", Err: err}
	}

	e.mu.Lock()
	e.watcher = w
	e.mu.Unlock()
	return nil
}

// Close stops the catalog watcher and releases the store and evaluators.
func (e *Editor) Close() error {
	e.mu.Lock()
	w := e.watcher
	e.watcher = nil
	e.mu.Unlock()

	var errs []error
	if w != nil {
		errs = append(errs, w.Close())
	}
	if e.store != nil {
		e.store.Close()
	}
	if c, ok := e.evaluator.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// Store returns the modification store.
func (e *Editor) Store() *store.Store { return e.store }

// Catalog returns the template and composable catalog.
func (e *Editor) Catalog() *catalog.Catalog { return e.catalog }

// Resolver returns the theme resolver.
func (e *Editor) Resolver() *resolver.Resolver { return e.resolver }

// Metrics returns the editor metrics.
func (e *Editor) Metrics() *Metrics { return e.metrics }

// Settings returns the editor settings.
func (e *Editor) Settings() *config.Settings { return e.settings }

// Preview resolves the current state for live rendering, raw edits
// included. Function failures fall back per path.
func (e *Editor) Preview(ctx context.Context) (map[string]any, error) {
	timer := StartTimer()
	tree, err := e.resolver.Preview(ctx, e.store.Request())
	e.metrics.RecordPreview(timer.Elapsed())
	return tree, err
}

// Export resolves the committed state strictly.
func (e *Editor) Export(ctx context.Context) (map[string]any, error) {
	timer := StartTimer()
	tree, err := e.resolver.Export(ctx, e.store.Request())
	e.metrics.RecordExport(timer.Elapsed(), err != nil)
	if err != nil {
		return nil, NewOperationError("export", e.DesignName(), err)
	}
	return tree, nil
}

// Changes lists the configuration paths an uncommitted edit adds, modifies
// or removes.
type Changes struct {
	Added    []string
	Modified []string
	Removed  []string
}

// IsEmpty reports whether no path changes.
func (c Changes) IsEmpty() bool {
	return len(c.Added) == 0 && len(c.Modified) == 0 && len(c.Removed) == 0
}

// PendingChanges compares the preview with and without the raw buffer.
func (e *Editor) PendingChanges(ctx context.Context) (Changes, error) {
	req := e.store.Request()
	committed, err := e.resolver.Resolve(ctx, req, resolver.Options{Mode: script.FailSafe})
	if err != nil {
		return Changes{}, err
	}
	live, err := e.resolver.Resolve(ctx, req, resolver.PreviewOptions)
	if err != nil {
		return Changes{}, err
	}

	var c Changes
	c.Added, c.Modified, c.Removed = layer.DiffMaps(committed, live)
	return c, nil
}

// LiveTheme resolves the preview and instantiates it. A failed resolution
// reuses the last configuration that resolved; a rejected configuration
// falls back to the default theme. LiveTheme never fails.
func (e *Editor) LiveTheme(ctx context.Context) *preview.Theme {
	tree, err := e.Preview(ctx)

	e.mu.Lock()
	if err == nil {
		e.lastGood = layer.Clone(tree)
	} else {
		e.logger.Error(err, "preview failed, using last good configuration")
		e.metrics.RecordLastGoodUsed()
		tree = layer.Clone(e.lastGood)
	}
	e.mu.Unlock()

	e.metrics.RecordInstantiation()
	return preview.SafeInstantiate(tree, e.logger)
}

// Commit folds the raw buffer into the committed edits after checking
// that the result exports cleanly. Nothing changes when it does not.
func (e *Editor) Commit(ctx context.Context) (bool, error) {
	e.store.Flush()

	req := e.store.Request()
	req.Committed = e.resolver.Classifier().Classify(req.Raw)
	req.Raw = nil
	if _, err := e.resolver.Export(ctx, req); err != nil {
		return false, NewOperationError("commit", e.DesignName(), err)
	}
	return e.store.CommitRawModifications(), nil
}

// Discard drops uncommitted edits.
func (e *Editor) Discard() {
	e.store.DiscardChanges()
}

// ToggleComposable enables or disables a composable known to the catalog.
func (e *Editor) ToggleComposable(id string, enabled bool) error {
	if enabled {
		if _, err := e.catalog.Composable(id); err != nil {
			return err
		}
	}
	e.store.ToggleComposable(id, enabled)
	return nil
}

// SetBaseTheme swaps the base template.
func (e *Editor) SetBaseTheme(ref catalog.Ref) error {
	if _, err := e.catalog.Lookup(ref); err != nil {
		return err
	}
	e.store.SetActiveBaseTheme(ref)
	return nil
}

// SetColorScheme selects a scheme the base template provides. An empty
// scheme selects the template default.
func (e *Editor) SetColorScheme(scheme string) error {
	if scheme != "" {
		t, err := e.catalog.Lookup(e.store.State().BaseTheme)
		if err != nil {
			return err
		}
		if _, ok := t.Schemes[scheme]; !ok {
			return &catalog.NotFoundError{Kind: catalog.ErrUnknownColorScheme, ID: scheme}
		}
	}
	e.store.SetColorScheme(scheme)
	return nil
}

// ImportTemplate registers a JSON configuration as an imported template
// and makes it the base theme.
func (e *Editor) ImportTemplate(id, name string, data []byte) (catalog.Ref, error) {
	flat, err := transfer.ImportTheme(data)
	if err != nil {
		return catalog.Ref{}, NewOperationError("import template", id, err)
	}
	ref := e.catalog.Import(id, name, layer.Expand(flat))
	e.store.SetActiveBaseTheme(ref)
	return ref, nil
}

// ImportModifications replaces the edits with a JSON modification set and
// commits them.
func (e *Editor) ImportModifications(ctx context.Context, data []byte) error {
	set, err := transfer.ImportModifications(data)
	if err != nil {
		return NewOperationError("import modifications", "", err)
	}

	previous := e.store.Raw()
	e.store.ReplaceRaw(set.Flat())
	if _, err := e.Commit(ctx); err != nil {
		e.store.ReplaceRaw(previous)
		return err
	}
	return nil
}

// ExportTheme returns the strictly resolved configuration as JSON.
func (e *Editor) ExportTheme(ctx context.Context) ([]byte, error) {
	tree, err := e.Export(ctx)
	if err != nil {
		return nil, err
	}
	return transfer.ExportTheme(tree)
}

// ExportModifications returns the committed edits as JSON.
func (e *Editor) ExportModifications() ([]byte, error) {
	return transfer.ExportModifications(e.store.State().Resolved)
}

// NewDesign starts an unsaved empty design.
func (e *Editor) NewDesign() {
	e.mu.Lock()
	e.designID = uuid.Nil
	e.designName = ""
	e.lastGood = nil
	e.mu.Unlock()

	e.store.Load(e.newPersisted())
}

// DesignName returns the name of the open design, or "" when unsaved.
func (e *Editor) DesignName() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.designName
}

// DesignID returns the id of the open design, or uuid.Nil when unsaved.
func (e *Editor) DesignID() uuid.UUID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.designID
}

// Save stores the committed state. An unsaved design is created under
// name; a saved one is updated and renamed when name differs.
// Uncommitted edits are refused.
func (e *Editor) Save(ctx context.Context, name string) (*storage.Design, error) {
	if e.repo == nil {
		return nil, NewOperationError("save", name, ErrComponentNotAvailable)
	}
	if e.store.IsDirty() {
		return nil, NewOperationError("save", name, ErrUnsavedChanges)
	}

	state := e.store.State()
	id := e.DesignID()
	if name == "" {
		name = e.DesignName()
	}
	if id == uuid.Nil && name == "" {
		return nil, NewOperationError("save", "", ErrNoDesign)
	}

	var (
		d   *storage.Design
		err error
	)
	if id == uuid.Nil {
		d, err = e.repo.Create(ctx, name, state)
	} else {
		d, err = e.repo.Save(ctx, id, state)
		if err == nil && name != d.Name {
			err = e.repo.Rename(ctx, id, name)
			d.Name = name
		}
	}
	if err != nil {
		return nil, NewOperationError("save", name, err)
	}

	e.mu.Lock()
	e.designID = d.ID
	e.designName = d.Name
	e.mu.Unlock()

	e.logger.Info("design saved", "id", d.ID.String(), "name", d.Name)
	return d, nil
}

// Designs lists the saved designs.
func (e *Editor) Designs(ctx context.Context) ([]storage.Design, error) {
	if e.repo == nil {
		return nil, NewOperationError("list", "", ErrComponentNotAvailable)
	}
	return e.repo.List(ctx)
}

// DeleteDesign removes a saved design by id or name. Deleting the open
// design leaves its state in the editor as an unsaved design.
func (e *Editor) DeleteDesign(ctx context.Context, idOrName string) error {
	if e.repo == nil {
		return NewOperationError("delete", idOrName, ErrComponentNotAvailable)
	}
	d, err := e.repo.Resolve(ctx, idOrName)
	if err != nil {
		return NewOperationError("delete", idOrName, err)
	}
	if err := e.repo.Delete(ctx, d.ID); err != nil {
		return NewOperationError("delete", idOrName, err)
	}

	e.mu.Lock()
	if e.designID == d.ID {
		e.designID = uuid.Nil
		e.designName = ""
	}
	e.mu.Unlock()
	return nil
}

// Open loads a saved design by id or name. History starts empty.
func (e *Editor) Open(ctx context.Context, idOrName string) error {
	if e.repo == nil {
		return NewOperationError("open", idOrName, ErrComponentNotAvailable)
	}

	d, err := e.repo.Resolve(ctx, idOrName)
	if err != nil {
		return NewOperationError("open", idOrName, err)
	}
	p, err := d.Persisted()
	if err != nil {
		return NewOperationError("open", idOrName, err)
	}
	if _, err := e.catalog.Lookup(p.BaseTheme); err != nil {
		return NewOperationError("open", idOrName, fmt.Errorf("base theme: %w", err))
	}

	e.store.Load(p)

	e.mu.Lock()
	e.designID = d.ID
	e.designName = d.Name
	e.lastGood = nil
	e.mu.Unlock()

	e.logger.Info("design opened", "id", d.ID.String(), "name", d.Name)
	return nil
}
