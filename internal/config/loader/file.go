package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dshills/themeforge/internal/config/layer"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// IncludeKey names the directive that pulls other files in underneath the
// current one.
const IncludeKey = "@include"

// FileLoader loads a configuration tree from a TOML, YAML or JSON file.
type FileLoader struct {
	fs     FileSystem
	path   string
	format Format
}

// NewFileLoader creates a loader for path, choosing the format from its
// extension.
func NewFileLoader(path string) (*FileLoader, error) {
	return NewFileLoaderWithFS(DefaultFS(), path)
}

// NewFileLoaderWithFS creates a loader reading through a custom file system.
func NewFileLoaderWithFS(fsys FileSystem, path string) (*FileLoader, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	return &FileLoader{fs: fsys, path: path, format: format}, nil
}

// NewReaderLoader creates a loader for in-memory data of a known format.
func NewReaderLoader(format Format) *FileLoader {
	return &FileLoader{fs: DefaultFS(), format: format}
}

// Path returns the configured path.
func (l *FileLoader) Path() string {
	return l.path
}

// Format returns the decoded format.
func (l *FileLoader) Format() Format {
	return l.format
}

// Load reads configuration from the configured path.
func (l *FileLoader) Load() (map[string]any, error) {
	return l.LoadFrom(l.path)
}

// LoadFrom reads configuration from a specific path in the loader's format.
func (l *FileLoader) LoadFrom(path string) (map[string]any, error) {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil // File doesn't exist, not an error
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	return Parse(l.format, path, data)
}

// LoadFromReader reads configuration from an io.Reader.
func (l *FileLoader) LoadFromReader(r io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	return Parse(l.format, "<reader>", data)
}

// LoadWithIncludes loads the file and processes @include directives.
// Included files may use any supported format and sit underneath the
// including file: its own values win. maxDepth limits nesting.
func (l *FileLoader) LoadWithIncludes(maxDepth int) (map[string]any, error) {
	return l.loadWithIncludes(l.path, maxDepth)
}

func (l *FileLoader) loadWithIncludes(path string, maxDepth int) (map[string]any, error) {
	if maxDepth <= 0 {
		return nil, fmt.Errorf("include depth exceeded for %s", path)
	}

	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	sub := &FileLoader{fs: l.fs, path: path, format: format}

	config, err := sub.Load()
	if err != nil {
		return nil, err
	}
	if config == nil {
		return nil, nil
	}

	includes, ok := config[IncludeKey]
	if !ok {
		return config, nil
	}
	delete(config, IncludeKey)

	var includeList []string
	switch v := includes.(type) {
	case string:
		includeList = []string{v}
	case []any:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s must be string or array of strings", IncludeKey)
			}
			includeList = append(includeList, s)
		}
	default:
		return nil, fmt.Errorf("%s must be string or array of strings, got %T", IncludeKey, includes)
	}

	baseDir := filepath.Dir(path)
	merged := make(map[string]any)
	for _, inc := range includeList {
		incPath := inc
		if !filepath.IsAbs(inc) {
			incPath = filepath.Join(baseDir, inc)
		}

		incConfig, err := l.loadWithIncludes(incPath, maxDepth-1)
		if err != nil {
			return nil, fmt.Errorf("loading include %s: %w", incPath, err)
		}
		merged = layer.DeepMerge(merged, incConfig)
	}

	return layer.DeepMerge(merged, config), nil
}

// Parse decodes data in the given format. source names the data in errors.
func Parse(format Format, source string, data []byte) (map[string]any, error) {
	var (
		config map[string]any
		err    error
	)

	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, &config)
	case FormatYAML:
		err = yaml.Unmarshal(data, &config)
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err = dec.Decode(&config); err == nil {
			config = normalizeNumbers(config).(map[string]any)
		}
	default:
		return nil, &UnsupportedError{Path: source}
	}

	if err != nil {
		return nil, newParseError(source, err)
	}
	if config == nil {
		config = make(map[string]any)
	}
	return config, nil
}

// normalizeNumbers turns json.Number values into int64 when integral and
// float64 otherwise, matching what the TOML and YAML decoders produce.
func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case map[string]any:
		for k, e := range t {
			t[k] = normalizeNumbers(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = normalizeNumbers(e)
		}
		return t
	default:
		return v
	}
}

// ParseError represents an error while parsing a configuration file.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

func newParseError(source string, err error) *ParseError {
	pe := &ParseError{Path: source, Message: err.Error(), Err: err}

	var tomlErr *toml.DecodeError
	if errors.As(err, &tomlErr) {
		pe.Line, pe.Column = tomlErr.Position()
	}
	return pe
}

func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
