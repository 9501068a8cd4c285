package loader

import (
	"testing"

	"github.com/dshills/themeforge/internal/config/layer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvLoader_Load(t *testing.T) {
	t.Setenv("THEMEFORGE_LOG_LEVEL", "debug")
	t.Setenv("THEMEFORGE_HISTORY_LIMIT", "1")
	t.Setenv("THEMEFORGE_PREVIEW_FRAME_INTERVAL", "32ms")
	t.Setenv("THEMEFORGE_SCHEME_SCOPED_ROOTS", "palette, shadows,components")
	t.Setenv("THEMEFORGE_CATALOG_WATCH", "yes")

	config, err := NewEnvLoader(DefaultEnvPrefix).Load()
	require.NoError(t, err)

	get := func(path string) any {
		v, ok := layer.GetByPath(config, path)
		require.True(t, ok, path)
		return v
	}
	assert.Equal(t, "debug", get("logging.level"))
	assert.Equal(t, int64(1), get("history.limit"))
	assert.Equal(t, "32ms", get("preview.frameInterval"))
	assert.Equal(t, []any{"palette", "shadows", "components"}, get("scheme.scopedRoots"))
	assert.Equal(t, true, get("catalog.watch"))
}

func TestEnvLoader_envToPath(t *testing.T) {
	l := NewEnvLoader("THEMEFORGE_")
	tests := map[string]string{
		"THEMEFORGE_SCRIPT_TIMEOUT":         "script.timeout",
		"THEMEFORGE_PREVIEW_FRAME_INTERVAL": "preview.frameInterval",
		"THEMEFORGE_STORAGE":                "storage",
		"THEMEFORGE_":                       "",
	}
	for env, want := range tests {
		assert.Equal(t, want, l.envToPath(env), env)
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"", ""},
		{"true", true},
		{"OFF", false},
		{"1", int64(1)},
		{"0", int64(0)},
		{"1.5", 1.5},
		{"250ms", "250ms"},
		{`{"a":1}`, map[string]any{"a": float64(1)}},
		{"a,b", []any{"a", "b"}},
		{"sqlite://themes.db", "sqlite://themes.db"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseValue(tt.in), tt.in)
	}
}

func TestEnvLoader_Mappings(t *testing.T) {
	t.Setenv("APP_PALETTE", "dark")

	l := NewEnvLoaderWithMapping("APP_", map[string]string{})
	l.AddMapping("APP_PALETTE", "scheme.default")
	config, err := l.Load()
	require.NoError(t, err)
	v, _ := layer.GetByPath(config, "scheme.default")
	assert.Equal(t, "dark", v)

	l.RemoveMapping("APP_PALETTE")
	config, err = l.Load()
	require.NoError(t, err)
	v, _ = layer.GetByPath(config, "palette")
	assert.Equal(t, "dark", v)
}

func TestExpandEnvInString(t *testing.T) {
	t.Setenv("THEMEFORGE_TEST_HOME", "/home/x")
	assert.Equal(t, "/home/x/designs.db", ExpandEnvInString("${THEMEFORGE_TEST_HOME}/designs.db"))
}
