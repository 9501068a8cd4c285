package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"

	"github.com/dshills/themeforge/internal/catalog"
	"github.com/dshills/themeforge/internal/store"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	db, err := Open(Config{DSN: MemoryDSN, LogLevel: gormlogger.Silent})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = Close(db)
	})
	return NewRepository(db)
}

func samplePersisted() store.Persisted {
	p := store.NewPersisted(catalog.DefaultRef())
	p.Composables = []store.Toggle{{ID: catalog.ComposableDenseSpacing, Enabled: true}}
	p.Resolved.Literals["palette.primary.main"] = "#ff0000"
	p.Resolved.Literals["spacing"] = 4
	p.Resolved.Functions["palette.primary.contrastText"] = "theme => '#fff'"
	p.ColorScheme = catalog.SchemeDark
	return p
}

func TestOpen_Errors(t *testing.T) {
	_, err := Open(Config{DSN: "  "})
	assert.ErrorIs(t, err, ErrEmptyDSN)
	assert.ErrorIs(t, AutoMigrate(nil), ErrNilDB)
}

func TestIsPostgres(t *testing.T) {
	assert.True(t, IsPostgres("postgres://user@localhost/db"))
	assert.True(t, IsPostgres("postgresql://localhost/db"))
	assert.False(t, IsPostgres("themeforge.db"))
	assert.False(t, IsPostgres(MemoryDSN))
}

func TestRepository_CreateGet(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, "brand", samplePersisted())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "brand", got.Name)

	p, err := got.Persisted()
	require.NoError(t, err)
	assert.True(t, samplePersisted().Equal(p))
}

func TestRepository_Save(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, "brand", store.NewPersisted(catalog.DefaultRef()))
	require.NoError(t, err)

	_, err = repo.Save(ctx, created.ID, samplePersisted())
	require.NoError(t, err)

	got, err := repo.Resolve(ctx, created.ID.String())
	require.NoError(t, err)
	p, err := got.Persisted()
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", p.Resolved.Literals["palette.primary.main"])

	_, err = repo.Save(ctx, uuid.New(), samplePersisted())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_ListRenameDelete(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	a, err := repo.Create(ctx, "alpha", samplePersisted())
	require.NoError(t, err)
	_, err = repo.Create(ctx, "beta", samplePersisted())
	require.NoError(t, err)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, repo.Rename(ctx, a.ID, "gamma"))
	found, err := repo.Resolve(ctx, "gamma")
	require.NoError(t, err)
	assert.Equal(t, a.ID, found.ID)

	require.NoError(t, repo.Delete(ctx, a.ID))
	_, err = repo.Get(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, a.ID), ErrNotFound)

	list, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "beta", list[0].Name)
}

func TestRepository_Validation(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, "  ", samplePersisted())
	assert.ErrorIs(t, err, ErrEmptyName)

	_, err = repo.FindByName(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, repo.Rename(ctx, uuid.New(), "x"), ErrNotFound)
}

func TestDesign_InvalidState(t *testing.T) {
	d := &Design{State: "{"}
	_, err := d.Persisted()
	assert.True(t, errors.Is(err, ErrInvalidState))
}
