// Package storage persists designs in a SQL database through gorm.
// SQLite is the default backend; DSNs starting with postgres:// or
// postgresql:// select PostgreSQL.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/dshills/themeforge/internal/store"
)

// Errors returned by the repository.
var (
	ErrNotFound     = errors.New("design not found")
	ErrEmptyName    = errors.New("design name must not be empty")
	ErrEmptyDSN     = errors.New("database DSN must not be empty")
	ErrNilDB        = errors.New("database handle is nil")
	ErrInvalidState = errors.New("stored design state is invalid")
)

// MemoryDSN opens a private in-memory SQLite database.
const MemoryDSN = ":memory:"

// Design is one saved design.
type Design struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"not null;index" json:"name"`
	State     string    `gorm:"type:text;not null" json:"state"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate assigns an id to new designs.
func (d *Design) BeforeCreate(*gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// Persisted decodes the stored state.
func (d *Design) Persisted() (store.Persisted, error) {
	var p store.Persisted
	if err := json.Unmarshal([]byte(d.State), &p); err != nil {
		return store.Persisted{}, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	return p.Clone(), nil
}

// SetPersisted encodes p as the stored state.
func (d *Design) SetPersisted(p store.Persisted) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode design state: %w", err)
	}
	d.State = string(data)
	return nil
}

// Config selects and tunes the database.
type Config struct {
	DSN          string
	MaxOpenConns int
	LogLevel     gormlogger.LogLevel
}

// IsPostgres reports whether dsn selects PostgreSQL.
func IsPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Open connects to the database and migrates the schema.
func Open(cfg Config) (*gorm.DB, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, ErrEmptyDSN
	}

	level := cfg.LogLevel
	if level == 0 {
		level = gormlogger.Warn
	}
	gormCfg := &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(level),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	var dialector gorm.Dialector
	if IsPostgres(dsn) {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	if !IsPostgres(dsn) {
		// One connection keeps an in-memory database alive.
		sqlDB.SetMaxOpenConns(1)
	} else if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// AutoMigrate creates or updates the schema.
func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		return ErrNilDB
	}
	if err := db.AutoMigrate(&Design{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Repository stores designs.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a repository on db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create saves a new design and returns it.
func (r *Repository) Create(ctx context.Context, name string, p store.Persisted) (*Design, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	d := &Design{Name: name}
	if err := d.SetPersisted(p); err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Create(d).Error; err != nil {
		return nil, fmt.Errorf("create design %q: %w", name, err)
	}
	return d, nil
}

// Save replaces the state of an existing design.
func (r *Repository) Save(ctx context.Context, id uuid.UUID, p store.Persisted) (*Design, error) {
	d, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := d.SetPersisted(p); err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Save(d).Error; err != nil {
		return nil, fmt.Errorf("save design %s: %w", id, err)
	}
	return d, nil
}

// Rename changes the name of a design.
func (r *Repository) Rename(ctx context.Context, id uuid.UUID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	res := r.db.WithContext(ctx).Model(&Design{}).Where("id = ?", id).Update("name", name)
	if res.Error != nil {
		return fmt.Errorf("rename design %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Get loads a design by id.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Design, error) {
	var d Design
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get design %s: %w", id, err)
	}
	return &d, nil
}

// FindByName loads the most recently updated design called name.
func (r *Repository) FindByName(ctx context.Context, name string) (*Design, error) {
	var d Design
	err := r.db.WithContext(ctx).Where("name = ?", name).Order("updated_at desc").First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("find design %q: %w", name, err)
	}
	return &d, nil
}

// Resolve finds a design by id or, failing that, by name.
func (r *Repository) Resolve(ctx context.Context, idOrName string) (*Design, error) {
	if id, err := uuid.Parse(idOrName); err == nil {
		return r.Get(ctx, id)
	}
	return r.FindByName(ctx, idOrName)
}

// List returns all designs, most recently updated first.
func (r *Repository) List(ctx context.Context) ([]Design, error) {
	var designs []Design
	if err := r.db.WithContext(ctx).Order("updated_at desc").Order("name").Find(&designs).Error; err != nil {
		return nil, fmt.Errorf("list designs: %w", err)
	}
	return designs, nil
}

// Delete removes a design.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Design{})
	if res.Error != nil {
		return fmt.Errorf("delete design %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
