package loader

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MemFS is an in-memory file system for testing.
type MemFS struct {
	files map[string][]byte
}

func NewMemFS() *MemFS {
	return &MemFS{files: make(map[string][]byte)}
}

func (m *MemFS) AddFile(path string, content string) {
	m.files[path] = []byte(content)
}

func (m *MemFS) Open(name string) (fs.File, error) {
	return nil, fs.ErrNotExist
}

func (m *MemFS) ReadFile(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return data, nil
}

func (m *MemFS) Stat(path string) (fs.FileInfo, error) {
	if _, ok := m.files[path]; ok {
		return &memFileInfo{name: path}, nil
	}
	return nil, fs.ErrNotExist
}

type memFileInfo struct {
	name string
}

func (f *memFileInfo) Name() string       { return f.name }
func (f *memFileInfo) Size() int64        { return 0 }
func (f *memFileInfo) Mode() fs.FileMode  { return 0644 }
func (f *memFileInfo) ModTime() time.Time { return time.Now() }
func (f *memFileInfo) IsDir() bool        { return false }
func (f *memFileInfo) Sys() any           { return nil }

func TestFormatOf(t *testing.T) {
	for path, want := range map[string]Format{
		"a.toml": FormatTOML,
		"a.YAML": FormatYAML,
		"a.yml":  FormatYAML,
		"a.json": FormatJSON,
	} {
		got, err := FormatOf(path)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := FormatOf("a.ini")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestFileLoader_FormatsAgree(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/t.toml", `
[palette]
mode = "dark"
[palette.primary]
main = "#90caf9"
[shape]
borderRadius = 8
`)
	memfs.AddFile("/t.yaml", `
palette:
  mode: dark
  primary:
    main: "#90caf9"
shape:
  borderRadius: 8
`)
	memfs.AddFile("/t.json", `{"palette":{"mode":"dark","primary":{"main":"#90caf9"}},"shape":{"borderRadius":8}}`)

	for _, path := range []string{"/t.toml", "/t.yaml", "/t.json"} {
		t.Run(path, func(t *testing.T) {
			l, err := NewFileLoaderWithFS(memfs, path)
			require.NoError(t, err)
			config, err := l.Load()
			require.NoError(t, err)

			palette := config["palette"].(map[string]any)
			assert.Equal(t, "dark", palette["mode"])
			assert.Equal(t, "#90caf9", palette["primary"].(map[string]any)["main"])
			assert.EqualValues(t, 8, config["shape"].(map[string]any)["borderRadius"])
		})
	}
}

func TestFileLoader_JSONNumbers(t *testing.T) {
	config, err := Parse(FormatJSON, "inline", []byte(`{"spacing":8,"opacity":0.5}`))
	require.NoError(t, err)
	assert.Equal(t, int64(8), config["spacing"])
	assert.Equal(t, 0.5, config["opacity"])
}

func TestFileLoader_LoadNonExistent(t *testing.T) {
	l, err := NewFileLoaderWithFS(NewMemFS(), "/missing.toml")
	require.NoError(t, err)
	config, err := l.Load()
	require.NoError(t, err)
	assert.Nil(t, config)
}

func TestFileLoader_LoadInvalid(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/bad.toml", "[palette\nmode = ")

	l, err := NewFileLoaderWithFS(memfs, "/bad.toml")
	require.NoError(t, err)
	_, err = l.Load()
	require.Error(t, err)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "/bad.toml", pe.Path)
	assert.Positive(t, pe.Line)
}

func TestFileLoader_LoadFromReader(t *testing.T) {
	l := NewReaderLoader(FormatYAML)
	config, err := l.LoadFromReader(strings.NewReader("spacing: 4\n"))
	require.NoError(t, err)
	assert.Equal(t, 4, config["spacing"])
}

func TestFileLoader_LoadWithIncludes(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/themes/base.yaml", `
palette:
  mode: light
  primary:
    main: "#1976d2"
spacing: 8
`)
	memfs.AddFile("/themes/brand.toml", `
"@include" = "base.yaml"
[palette.primary]
main = "#ff5722"
`)

	l, err := NewFileLoaderWithFS(memfs, "/themes/brand.toml")
	require.NoError(t, err)
	config, err := l.LoadWithIncludes(4)
	require.NoError(t, err)

	assert.NotContains(t, config, IncludeKey)
	palette := config["palette"].(map[string]any)
	assert.Equal(t, "light", palette["mode"])
	assert.Equal(t, "#ff5722", palette["primary"].(map[string]any)["main"])
	assert.Equal(t, 8, config["spacing"])
}

func TestFileLoader_LoadWithIncludes_DepthExceeded(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/a.json", `{"@include": "b.json"}`)
	memfs.AddFile("/b.json", `{"@include": ["a.json"]}`)

	l, err := NewFileLoaderWithFS(memfs, "/a.json")
	require.NoError(t, err)
	_, err = l.LoadWithIncludes(3)
	assert.ErrorContains(t, err, "include depth exceeded")
}
