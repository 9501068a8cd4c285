package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"

	"github.com/dshills/themeforge/internal/catalog"
	"github.com/dshills/themeforge/internal/config/layer"
	"github.com/dshills/themeforge/internal/script"
	"github.com/dshills/themeforge/internal/storage"
	"github.com/dshills/themeforge/internal/store"
	"github.com/dshills/themeforge/internal/transfer"
)

func newTestEditor(t *testing.T) *Editor {
	t.Helper()
	db, err := storage.Open(storage.Config{DSN: storage.MemoryDSN, LogLevel: gormlogger.Silent})
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close(db) })

	e, err := New(Options{
		Repository: storage.NewRepository(db),
		Frames:     store.NewManualFrames(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func TestEditor_EndToEnd(t *testing.T) {
	e := newTestEditor(t)
	ctx := context.Background()

	_, err := e.ImportTemplate("minimal", "Minimal", []byte(`{"palette":{"mode":"light","primary":{"main":"#1976d2"}}}`))
	require.NoError(t, err)
	e.Catalog().Register(&catalog.Composable{ID: "spacing-4", Tree: map[string]any{"spacing": 4}})
	require.NoError(t, e.ToggleComposable("spacing-4", true))

	require.NoError(t, e.SetValue("palette.primary.main", "#ff0000"))
	require.NoError(t, e.SetValue("palette.primary.contrastText", "theme => theme.palette.mode === 'dark' ? '#000' : '#fff'"))
	_, err = e.Commit(ctx)
	require.NoError(t, err)
	assert.False(t, e.Store().IsDirty())

	tree, err := e.Export(ctx)
	require.NoError(t, err)
	assert.True(t, layer.Equal(map[string]any{
		"palette": map[string]any{
			"mode": "light",
			"primary": map[string]any{
				"main":         "#ff0000",
				"contrastText": "#fff",
			},
		},
		"spacing": 4,
	}, tree), "%v", tree)
}

func TestEditor_Field(t *testing.T) {
	e := newTestEditor(t)
	ctx := context.Background()

	f, err := e.Field(ctx, "palette.primary.main")
	require.NoError(t, err)
	assert.Equal(t, "#1976d2", f.Value)
	assert.False(t, f.IsOverridden)
	assert.False(t, f.IsControlledByFunction)

	require.NoError(t, f.SetValue("#00ff00"))
	f, err = e.Field(ctx, "palette.primary.main")
	require.NoError(t, err)
	assert.Equal(t, "#00ff00", f.Value)
	assert.True(t, f.IsOverridden)

	parent, err := e.Field(ctx, "palette.primary")
	require.NoError(t, err)
	assert.True(t, parent.IsOverridden)

	require.NoError(t, f.ResetToBase())
	f, err = e.Field(ctx, "palette.primary.main")
	require.NoError(t, err)
	assert.Equal(t, "#1976d2", f.Value)
	assert.False(t, f.IsOverridden)

	_, err = e.Field(ctx, "palette..main")
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestEditor_FunctionControlledField(t *testing.T) {
	e := newTestEditor(t)
	ctx := context.Background()

	require.NoError(t, e.SetValue("shape.borderRadius", "theme => theme.spacing / 2"))
	_, err := e.Commit(ctx)
	require.NoError(t, err)

	f, err := e.Field(ctx, "shape.borderRadius")
	require.NoError(t, err)
	assert.True(t, f.IsControlledByFunction)
	assert.Equal(t, "theme => theme.spacing / 2", f.Function)
	assert.EqualValues(t, 4, f.Value)

	assert.ErrorIs(t, f.SetValue(3), ErrFunctionControlled)
	assert.NoError(t, f.SetValue("theme => theme.spacing"))
}

func TestEditor_PendingChanges(t *testing.T) {
	e := newTestEditor(t)
	ctx := context.Background()

	changes, err := e.PendingChanges(ctx)
	require.NoError(t, err)
	assert.True(t, changes.IsEmpty())

	require.NoError(t, e.SetValue("spacing", 2))
	require.NoError(t, e.SetValue("custom.accent", "#123456"))
	changes, err = e.PendingChanges(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"custom.accent"}, changes.Added)
	assert.Equal(t, []string{"spacing"}, changes.Modified)
	assert.Empty(t, changes.Removed)

	_, err = e.Commit(ctx)
	require.NoError(t, err)
	changes, err = e.PendingChanges(ctx)
	require.NoError(t, err)
	assert.True(t, changes.IsEmpty())
}

func TestEditor_CommitRefusesBrokenFunctions(t *testing.T) {
	e := newTestEditor(t)
	ctx := context.Background()

	require.NoError(t, e.SetValue("palette.primary.contrastText", "theme => theme.nope.deeper"))

	// Preview falls back, commit refuses.
	_, err := e.Preview(ctx)
	require.NoError(t, err)

	committed, err := e.Commit(ctx)
	assert.False(t, committed)
	assert.ErrorIs(t, err, script.ErrHydrationFailed)
	assert.True(t, e.Store().IsDirty())
	assert.True(t, e.Store().State().Resolved.IsEmpty())
}

func TestEditor_LiveThemeFallsBack(t *testing.T) {
	e := newTestEditor(t)
	ctx := context.Background()

	require.NoError(t, e.SetValue("spacing", 6))
	theme := e.LiveTheme(ctx)
	assert.Equal(t, 6.0, theme.Spacing)

	// A base reference that no longer resolves reuses the last good tree.
	e.Store().SetActiveBaseTheme(catalog.Ref{Type: catalog.RefImported, Ref: "gone"})
	theme = e.LiveTheme(ctx)
	assert.Equal(t, 6.0, theme.Spacing)
	assert.EqualValues(t, 1, e.Metrics().Snapshot().LastGoodUsed)

	// A configuration the renderer rejects falls back to defaults.
	e.Store().Undo()
	require.NoError(t, e.SetValue("palette.mode", "sepia"))
	theme = e.LiveTheme(ctx)
	assert.Equal(t, "light", theme.Mode)
	assert.Equal(t, 8.0, theme.Spacing)
}

func TestEditor_Validation(t *testing.T) {
	e := newTestEditor(t)

	assert.ErrorIs(t, e.ToggleComposable("nope", true), catalog.ErrUnknownComposable)
	assert.NoError(t, e.ToggleComposable("nope", false))
	assert.ErrorIs(t, e.SetBaseTheme(catalog.Ref{Type: catalog.RefImported, Ref: "nope"}), catalog.ErrUnknownTemplate)
	assert.ErrorIs(t, e.SetColorScheme("sepia"), catalog.ErrUnknownColorScheme)
	assert.NoError(t, e.SetColorScheme(catalog.SchemeDark))
	assert.Equal(t, catalog.SchemeDark, e.Store().State().ColorScheme)
}

func TestEditor_ColorSchemeEdits(t *testing.T) {
	e := newTestEditor(t)
	ctx := context.Background()

	require.NoError(t, e.SetColorScheme(catalog.SchemeDark))
	require.NoError(t, e.SetValue("palette.primary.main", "#abcdef"))
	_, err := e.Commit(ctx)
	require.NoError(t, err)

	dark, err := e.Export(ctx)
	require.NoError(t, err)
	v, _ := layer.GetByPath(dark, "palette.primary.main")
	assert.Equal(t, "#abcdef", v)

	require.NoError(t, e.SetColorScheme(catalog.SchemeLight))
	light, err := e.Export(ctx)
	require.NoError(t, err)
	v, _ = layer.GetByPath(light, "palette.primary.main")
	assert.Equal(t, "#1976d2", v)
}

func TestEditor_SaveOpen(t *testing.T) {
	e := newTestEditor(t)
	ctx := context.Background()

	_, err := e.Save(ctx, "")
	assert.ErrorIs(t, err, ErrNoDesign)

	require.NoError(t, e.SetValue("spacing", 5))
	_, err = e.Save(ctx, "brand")
	assert.ErrorIs(t, err, ErrUnsavedChanges)

	_, err = e.Commit(ctx)
	require.NoError(t, err)
	require.NoError(t, e.ToggleComposable(catalog.ComposableRounded, true))

	d, err := e.Save(ctx, "brand")
	require.NoError(t, err)
	assert.Equal(t, "brand", e.DesignName())
	assert.Equal(t, d.ID, e.DesignID())

	e.NewDesign()
	assert.True(t, e.Store().State().Resolved.IsEmpty())
	assert.Empty(t, e.DesignName())

	require.NoError(t, e.Open(ctx, "brand"))
	state := e.Store().State()
	assert.EqualValues(t, 5, state.Resolved.Literals["spacing"])
	assert.Equal(t, []string{catalog.ComposableRounded}, state.EnabledComposables())
	assert.False(t, e.Store().CanUndo())

	require.NoError(t, e.SetValue("spacing", 7))
	_, err = e.Commit(ctx)
	require.NoError(t, err)
	_, err = e.Save(ctx, "renamed")
	require.NoError(t, err)
	require.NoError(t, e.Open(ctx, d.ID.String()))
	assert.Equal(t, "renamed", e.DesignName())
	assert.EqualValues(t, 7, e.Store().State().Resolved.Literals["spacing"])
}

func TestEditor_DeleteDesign(t *testing.T) {
	e := newTestEditor(t)
	ctx := context.Background()

	_, err := e.Save(ctx, "one")
	require.NoError(t, err)
	e.NewDesign()
	_, err = e.Save(ctx, "two")
	require.NoError(t, err)

	designs, err := e.Designs(ctx)
	require.NoError(t, err)
	assert.Len(t, designs, 2)

	require.NoError(t, e.DeleteDesign(ctx, "two"))
	assert.Empty(t, e.DesignName())
	assert.ErrorIs(t, e.DeleteDesign(ctx, "two"), storage.ErrNotFound)

	designs, err = e.Designs(ctx)
	require.NoError(t, err)
	require.Len(t, designs, 1)
	assert.Equal(t, "one", designs[0].Name)
}

func TestEditor_WithoutRepository(t *testing.T) {
	e, err := New(Options{Frames: store.NewManualFrames()})
	require.NoError(t, err)
	defer e.Close()

	_, err = e.Save(context.Background(), "x")
	assert.ErrorIs(t, err, ErrComponentNotAvailable)
	assert.ErrorIs(t, e.Open(context.Background(), "x"), ErrComponentNotAvailable)
}

func TestEditor_ImportExportModifications(t *testing.T) {
	e := newTestEditor(t)
	ctx := context.Background()

	require.NoError(t, e.SetValue("spacing", 3))
	require.NoError(t, e.SetValue("shape.borderRadius", "= spacing * 2"))
	_, err := e.Commit(ctx)
	require.NoError(t, err)

	data, err := e.ExportModifications()
	require.NoError(t, err)

	other := newTestEditor(t)
	require.NoError(t, other.ImportModifications(ctx, data))
	assert.True(t, e.Store().State().Resolved.Equal(other.Store().State().Resolved))

	themeJSON, err := other.ExportTheme(ctx)
	require.NoError(t, err)
	v, ok := transfer.Lookup(themeJSON, "shape.borderRadius")
	require.True(t, ok)
	assert.EqualValues(t, 6, v)

	assert.Error(t, other.ImportModifications(ctx, []byte(`{"functions":{"spacing":"theme => theme.nope.x"}}`)))
	assert.True(t, e.Store().State().Resolved.Equal(other.Store().State().Resolved))
}

func TestEditor_ResetUnqualifiedEditUnderScheme(t *testing.T) {
	e := newTestEditor(t)
	ctx := context.Background()

	require.NoError(t, e.SetValue("palette.primary.main", "#ff0000"))
	_, err := e.Commit(ctx)
	require.NoError(t, err)
	require.NoError(t, e.SetColorScheme(catalog.SchemeLight))

	f, err := e.Field(ctx, "palette.primary.main")
	require.NoError(t, err)
	require.Equal(t, "#ff0000", f.Value)
	require.True(t, f.IsOverridden)

	require.NoError(t, f.ResetToBase())
	f, err = e.Field(ctx, "palette.primary.main")
	require.NoError(t, err)
	assert.Equal(t, "#1976d2", f.Value)
	assert.False(t, f.IsOverridden)
	assert.True(t, e.Store().IsDirty())

	_, err = e.Commit(ctx)
	require.NoError(t, err)
	tree, err := e.Export(ctx)
	require.NoError(t, err)
	v, _ := layer.GetByPath(tree, "palette.primary.main")
	assert.Equal(t, "#1976d2", v)
}

func TestEditor_ResetParentOfRawMap(t *testing.T) {
	e := newTestEditor(t)
	ctx := context.Background()

	require.NoError(t, e.SetValue("palette.primary", map[string]any{"main": "#111111", "dark": "#000000"}))
	require.NoError(t, e.ResetToBase("palette.primary.main"))

	f, err := e.Field(ctx, "palette.primary.main")
	require.NoError(t, err)
	assert.Equal(t, "#1976d2", f.Value)
	assert.False(t, f.IsOverridden)

	f, err = e.Field(ctx, "palette.primary.dark")
	require.NoError(t, err)
	assert.Equal(t, "#000000", f.Value)
	assert.True(t, f.IsOverridden)
}

func TestEditor_LuaExportIsDeterministic(t *testing.T) {
	e := newTestEditor(t)
	ctx := context.Background()

	require.NoError(t, e.SetValue("spacing", "function(t) n = (n or 0) + 1 return n end"))
	_, err := e.Commit(ctx)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		tree, err := e.Export(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 1, tree["spacing"])
	}
}

func TestEditor_RejectsReservedPathsAndNonData(t *testing.T) {
	e := newTestEditor(t)
	ctx := context.Background()

	assert.ErrorIs(t, e.SetValue("$scheme.dark.palette.primary.main", "#000"), ErrInvalidPath)
	assert.ErrorIs(t, e.SetValue("components.MuiButton.onClick", func() {}), ErrInvalidValue)
	assert.ErrorIs(t, e.ScheduleValue("components", map[string]any{"x": make(chan int)}), ErrInvalidValue)

	// colorSchemes is an ordinary theme key.
	require.NoError(t, e.SetValue("colorSchemes.dark.palette.primary.main", "#222222"))
	tree, err := e.Preview(ctx)
	require.NoError(t, err)
	v, ok := layer.GetByPath(tree, "colorSchemes.dark.palette.primary.main")
	require.True(t, ok)
	assert.Equal(t, "#222222", v)
}
