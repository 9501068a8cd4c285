package preview

import (
	"bytes"
	"errors"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/themeforge/internal/logging"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"#fff", "#ffffff", false},
		{"#1976D2", "#1976d2", false},
		{"#00000080", "#7f7f7f", false},
		{"rgb(255, 0, 0)", "#ff0000", false},
		{"rgba(0, 0, 0, 0.5)", "#808080", false},
		{"rgba(0, 0, 0, 1.5)", "", true},
		{"rgb(1, 2)", "", true},
		{"red", "", true},
		{"#zzzzzz", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := ParseColor(tt.in, white)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Hex())
		})
	}
}

func TestContrastText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"#1976d2", LightText},
		{"#90caf9", DarkText},
		{"#000", LightText},
		{"#fff", DarkText},
		{"#ffeb3b", DarkText},
	}
	for _, tt := range tests {
		got, ok := ContrastText(tt.in)
		require.True(t, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, ok := ContrastText("not a color")
	assert.False(t, ok)
}

func TestContrastRatio(t *testing.T) {
	black := colorful.Color{}
	assert.InDelta(t, 21.0, ContrastRatio(black, white), 0.01)
	assert.InDelta(t, 1.0, ContrastRatio(white, white), 0.001)
}

func TestInstantiate_Empty(t *testing.T) {
	th, err := Instantiate(nil)
	require.NoError(t, err)
	assert.Equal(t, "light", th.Mode)
	assert.Equal(t, "#1976d2", th.Color("primary"))
	assert.Equal(t, "#ffffff", th.Color("primaryText"))
	assert.Equal(t, 8.0, th.Spacing)
	assert.Contains(t, Render(th), "PRIMARY")
}

func TestInstantiate_Config(t *testing.T) {
	th, err := Instantiate(map[string]any{
		"palette": map[string]any{
			"mode":       "dark",
			"primary":    map[string]any{"main": "#90caf9", "contrastText": "rgba(0, 0, 0, 0.87)"},
			"background": map[string]any{"default": "#121212"},
		},
		"spacing":    int64(4),
		"shape":      map[string]any{"borderRadius": 0},
		"typography": map[string]any{"fontFamily": `"Inter", sans-serif`},
	})
	require.NoError(t, err)
	assert.Equal(t, "dark", th.Mode)
	assert.Equal(t, "#90caf9", th.Color("primary"))
	assert.Equal(t, "#121212", th.Color("background"))
	assert.Equal(t, 4.0, th.Spacing)
	assert.Equal(t, 0.0, th.BorderRadius)
	assert.Equal(t, "Inter", th.FontFamily)
	assert.Equal(t, "", th.Color("nope"))
}

func TestInstantiate_Rejects(t *testing.T) {
	tests := []struct {
		name string
		cfg  map[string]any
		path string
	}{
		{"bad color", map[string]any{"palette": map[string]any{"primary": map[string]any{"main": "blurple"}}}, "palette.primary.main"},
		{"color type", map[string]any{"palette": map[string]any{"divider": 3}}, "palette.divider"},
		{"mode", map[string]any{"palette": map[string]any{"mode": "sepia"}}, "palette.mode"},
		{"spacing", map[string]any{"spacing": "wide"}, "spacing"},
		{"radius", map[string]any{"shape": map[string]any{"borderRadius": -1}}, "shape.borderRadius"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Instantiate(tt.cfg)
			require.ErrorIs(t, err, ErrInstantiation)
			var ie *InstantiationError
			require.True(t, errors.As(err, &ie))
			assert.Equal(t, tt.path, ie.Path)
		})
	}
}

func TestSafeInstantiate(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(logging.Options{Level: logging.LevelDebug, Writer: &buf})

	th := SafeInstantiate(map[string]any{"palette": map[string]any{"mode": "sepia"}}, logger)
	require.NotNil(t, th)
	assert.Equal(t, "light", th.Mode)
	assert.Contains(t, buf.String(), "theme instantiation failed")

	th = SafeInstantiate(map[string]any{"palette": map[string]any{"mode": "dark"}}, nil)
	assert.Equal(t, "dark", th.Mode)
}
