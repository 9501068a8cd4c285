package transfer

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/themeforge/internal/config/layer"
	"github.com/dshills/themeforge/internal/modification"
)

func TestExportTheme(t *testing.T) {
	tree := map[string]any{
		"palette": map[string]any{
			"mode":    "light",
			"primary": map[string]any{"main": "#1976d2"},
		},
		"spacing": 8,
		"shadows": []any{"none", "0 1px 2px #000"},
		"components": map[string]any{
			"MuiButton": map[string]any{
				"styleOverrides": map[string]any{
					"root": map[string]any{"&:hover": map[string]any{"opacity": 0.9}},
				},
			},
		},
		"breakpoints": map[string]any{"values": map[string]any{"0": "xs"}},
		"mixins":      map[string]any{},
	}

	data, err := ExportTheme(tree)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, layer.Equal(tree, decoded), string(data))
	assert.Contains(t, string(data), "\n  \"palette\"")
}

func TestExportTheme_Deterministic(t *testing.T) {
	tree := map[string]any{"b": 1, "a": map[string]any{"d": 2, "c": 3}}
	first, err := ExportTheme(tree)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := ExportTheme(tree)
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}

func TestImportTheme(t *testing.T) {
	flat, err := ImportTheme([]byte(`{
		"palette": {"mode": "dark", "primary": {"main": "#90caf9"}},
		"spacing": 4,
		"shape": {"borderRadius": 4.5},
		"shadows": ["none"],
		"typography": {"button": {"textTransform": null}},
		"mixins": {}
	}`))
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"palette.mode":                    "dark",
		"palette.primary.main":            "#90caf9",
		"spacing":                         int64(4),
		"shape.borderRadius":              4.5,
		"shadows":                         []any{"none"},
		"typography.button.textTransform": nil,
	}, flat)
}

func TestImportTheme_Errors(t *testing.T) {
	_, err := ImportTheme([]byte(`{"palette":`))
	assert.ErrorIs(t, err, ErrInvalidJSON)

	_, err = ImportTheme([]byte(`[1,2]`))
	assert.ErrorIs(t, err, ErrNotObject)
}

func TestModifications_RoundTrip(t *testing.T) {
	set := modification.NewSet()
	set.Literals["palette.primary.main"] = "#ff0000"
	set.Literals["spacing"] = int64(4)
	set.Literals["$scheme.dark.palette.primary.main"] = "#eeeeee"
	set.Functions["palette.primary.contrastText"] = "theme => theme.palette.mode === 'dark' ? '#000' : '#fff'"

	data, err := ExportModifications(set)
	require.NoError(t, err)

	got, err := ImportModifications(data)
	require.NoError(t, err)
	assert.True(t, set.Equal(got), string(data))
}

func TestImportModifications_NestedLiterals(t *testing.T) {
	got, err := ImportModifications([]byte(`{"literals":{"shape":{"borderRadius":2}},"functions":{}}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"shape.borderRadius": int64(2)}, got.Literals)
	assert.Empty(t, got.Functions)
}

func TestImportModifications_FunctionWins(t *testing.T) {
	got, err := ImportModifications([]byte(`{"literals":{"spacing":2},"functions":{"spacing":"theme => 3"}}`))
	require.NoError(t, err)
	assert.Empty(t, got.Literals)
	assert.Equal(t, "theme => 3", got.Functions["spacing"])
}

func TestImportModifications_Errors(t *testing.T) {
	_, err := ImportModifications([]byte(`{"functions":{"spacing":3}}`))
	assert.ErrorIs(t, err, ErrInvalidFunction)

	_, err = ImportModifications([]byte(`{"literals":[]}`))
	assert.ErrorIs(t, err, ErrNotObject)

	_, err = ImportModifications([]byte(`nope`))
	assert.ErrorIs(t, err, ErrInvalidJSON)
}

func TestLookup(t *testing.T) {
	data := []byte(`{"palette":{"primary":{"main":"#fff"}},"spacing":8,"shadows":["none","x"]}`)

	v, ok := Lookup(data, "palette.primary.main")
	require.True(t, ok)
	assert.Equal(t, "#fff", v)

	v, ok = Lookup(data, "spacing")
	require.True(t, ok)
	assert.Equal(t, int64(8), v)

	v, ok = Lookup(data, "shadows")
	require.True(t, ok)
	assert.Equal(t, []any{"none", "x"}, v)

	_, ok = Lookup(data, "palette.secondary")
	assert.False(t, ok)
}
