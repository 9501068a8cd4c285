package config

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/dshills/themeforge/internal/config/layer"
	"github.com/dshills/themeforge/internal/config/loader"
)

// Settings holds every editor setting.
type Settings struct {
	History HistorySettings `yaml:"history"`
	Script  ScriptSettings  `yaml:"script"`
	Scheme  SchemeSettings  `yaml:"scheme"`
	Preview PreviewSettings `yaml:"preview"`
	Catalog CatalogSettings `yaml:"catalog"`
	Storage StorageSettings `yaml:"storage"`
	Logging LoggingSettings `yaml:"logging"`

	// origins maps a setting path to the layer that provided it.
	origins map[string]string
}

// HistorySettings configures undo/redo.
type HistorySettings struct {
	// Limit is the number of undo steps kept.
	Limit int `yaml:"limit" validate:"min=1,max=10000"`
}

// ScriptSettings configures function edits.
type ScriptSettings struct {
	// Dialect is the language new function edits are recognized in.
	Dialect string `yaml:"dialect" validate:"oneof=js expr lua"`
	// Timeout bounds a single function evaluation.
	Timeout Duration `yaml:"timeout" validate:"gt=0"`
}

// SchemeSettings configures color-scheme scoping.
type SchemeSettings struct {
	// ScopedRoots are the top-level sections whose edits are stored per
	// color scheme.
	ScopedRoots []string `yaml:"scopedRoots" validate:"dive,required,excludes=."`
	// Default is the color scheme selected for new designs.
	Default string `yaml:"default" validate:"omitempty,oneof=light dark"`
}

// PreviewSettings configures live preview.
type PreviewSettings struct {
	// FrameInterval is the delay before batched raw edits are applied.
	FrameInterval Duration `yaml:"frameInterval" validate:"gte=0"`
}

// CatalogSettings configures template and composable discovery.
type CatalogSettings struct {
	// Dir holds templates/ and composables/ subdirectories. Empty uses
	// built-ins only.
	Dir string `yaml:"dir"`
	// Watch reloads the catalog when files in Dir change.
	Watch bool `yaml:"watch"`
}

// StorageSettings configures design persistence.
type StorageSettings struct {
	// DSN is a sqlite path, "file::memory:", or a postgres:// URL.
	DSN string `yaml:"dsn" validate:"required"`
}

// LoggingSettings configures logging.
type LoggingSettings struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
	Human bool   `yaml:"human"`
}

// Defaults returns the built-in settings tree.
func Defaults() map[string]any {
	return map[string]any{
		"history": map[string]any{
			"limit": 50,
		},
		"script": map[string]any{
			"dialect": "js",
			"timeout": "250ms",
		},
		"scheme": map[string]any{
			"scopedRoots": []any{"palette", "shadows"},
			"default":     "",
		},
		"preview": map[string]any{
			"frameInterval": "16ms",
		},
		"catalog": map[string]any{
			"dir":   "",
			"watch": false,
		},
		"storage": map[string]any{
			"dsn": "themeforge.db",
		},
		"logging": map[string]any{
			"level": "info",
			"human": false,
		},
	}
}

// Default returns the built-in settings.
func Default() *Settings {
	s, err := decode(Defaults())
	if err != nil {
		panic(fmt.Sprintf("config: invalid defaults: %v", err))
	}
	return s
}

// Options controls where Load reads from.
type Options struct {
	// Path is a settings file. Empty means defaults and environment only.
	Path string
	// EnvPrefix overrides loader.DefaultEnvPrefix. "-" disables the
	// environment layer.
	EnvPrefix string
	// FS overrides the file system used to read Path.
	FS loader.FileSystem
}

// Load resolves settings from defaults, the settings file and the
// environment.
func Load(opts Options) (*Settings, error) {
	stack := layer.NewStack()
	stack.Push(layer.NewLayerWithData("defaults", layer.SourceDefaults, layer.PriorityDefaults, Defaults()))

	if opts.Path != "" {
		fsys := opts.FS
		if fsys == nil {
			fsys = loader.DefaultFS()
		}
		l, err := loader.NewFileLoaderWithFS(fsys, opts.Path)
		if err != nil {
			return nil, err
		}
		data, err := l.LoadWithIncludes(maxIncludeDepth)
		if err != nil {
			return nil, err
		}
		if data == nil {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, opts.Path)
		}
		stack.Push(layer.NewLayerWithData(opts.Path, layer.SourceFile, layer.PriorityFile, data))
	}

	prefix := opts.EnvPrefix
	if prefix == "" {
		prefix = loader.DefaultEnvPrefix
	}
	if prefix != "-" {
		env, err := loader.NewEnvLoader(prefix).Load()
		if err != nil {
			return nil, err
		}
		stack.Push(layer.NewLayerWithData("env", layer.SourceEnv, layer.PriorityEnv, env))
	}

	merged := stack.Merge()
	s, err := decode(merged)
	if err != nil {
		return nil, err
	}
	for path := range layer.Flatten(merged) {
		s.SetOrigin(path, stack.WhichLayer(path))
	}
	s.Catalog.Dir = loader.ExpandEnvInString(s.Catalog.Dir)
	s.Storage.DSN = loader.ExpandEnvInString(s.Storage.DSN)
	return s, nil
}

const maxIncludeDepth = 8

// decode converts a merged tree into validated Settings.
func decode(tree map[string]any) (*Settings, error) {
	data, err := yaml.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("encoding settings: %w", err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, &ValidationError{Fields: map[string]string{"settings": err.Error()}}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
			return name
		})
		validateInst = v
	})
	return validateInst
}

// Validate checks every setting.
func (s *Settings) Validate() error {
	err := validatorInstance().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		// Namespace is "Settings.script.timeout"
		_, path, _ := strings.Cut(fe.Namespace(), ".")
		fields[path] = describe(fe)
	}
	return &ValidationError{Fields: fields}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %v", fe.Param(), fe.Value())
	case "required":
		return "is required"
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "excludes":
		return fmt.Sprintf("must not contain %q", fe.Param())
	default:
		return fmt.Sprintf("failed %s", fe.Tag())
	}
}

// Origin names the layer a setting came from: "defaults", the settings
// file path, "env", or whatever SetOrigin recorded.
func (s *Settings) Origin(path string) string {
	if o, ok := s.origins[path]; ok && o != "" {
		return o
	}
	return "defaults"
}

// SetOrigin records where the setting at path came from.
func (s *Settings) SetOrigin(path, origin string) {
	if s.origins == nil {
		s.origins = make(map[string]string)
	}
	s.origins[path] = origin
}

// Values returns the settings as a flat map keyed by setting path.
func (s *Settings) Values() (map[string]any, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, err
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	return layer.Flatten(tree), nil
}

// Duration is a time.Duration that decodes from strings such as "250ms"
// or from integer milliseconds.
type Duration time.Duration

// Std returns the duration as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// String implements fmt.Stringer.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var ms int64
	if err := value.Decode(&ms); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("line %d: duration must be a string or milliseconds", value.Line)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
