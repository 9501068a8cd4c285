package layer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeepMerge(t *testing.T) {
	tests := []struct {
		name     string
		dst      map[string]any
		src      map[string]any
		expected map[string]any
	}{
		{
			name:     "nil dst",
			dst:      nil,
			src:      map[string]any{"a": 1},
			expected: map[string]any{"a": 1},
		},
		{
			name:     "nil src",
			dst:      map[string]any{"a": 1},
			src:      nil,
			expected: map[string]any{"a": 1},
		},
		{
			name:     "src overrides dst",
			dst:      map[string]any{"x": 1},
			src:      map[string]any{"x": 2},
			expected: map[string]any{"x": 2},
		},
		{
			name:     "nested maps merge",
			dst:      map[string]any{"a": map[string]any{"x": 1}},
			src:      map[string]any{"a": map[string]any{"y": 2}},
			expected: map[string]any{"a": map[string]any{"x": 1, "y": 2}},
		},
		{
			name:     "arrays are replaced",
			dst:      map[string]any{"shadows": []any{"a", "b", "c"}},
			src:      map[string]any{"shadows": []any{"none"}},
			expected: map[string]any{"shadows": []any{"none"}},
		},
		{
			name:     "non-map overwrites map",
			dst:      map[string]any{"palette": map[string]any{"mode": "light"}},
			src:      map[string]any{"palette": "broken"},
			expected: map[string]any{"palette": "broken"},
		},
		{
			name:     "map overwrites non-map",
			dst:      map[string]any{"shape": 4},
			src:      map[string]any{"shape": map[string]any{"borderRadius": 8}},
			expected: map[string]any{"shape": map[string]any{"borderRadius": 8}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DeepMerge(tt.dst, tt.src))
		})
	}
}

func TestMerge_LaterWins(t *testing.T) {
	assert.Equal(t, map[string]any{"x": 2}, Merge(map[string]any{"x": 1}, map[string]any{"x": 2}))
	assert.Equal(t,
		map[string]any{"a": map[string]any{"x": 1, "y": 2}},
		Merge(map[string]any{"a": map[string]any{"x": 1}}, map[string]any{"a": map[string]any{"y": 2}}),
	)
}

func TestMerge_Associative(t *testing.T) {
	a := map[string]any{
		"palette": map[string]any{"mode": "light", "primary": map[string]any{"main": "#1976d2"}},
		"spacing": 8,
	}
	b := map[string]any{
		"palette": map[string]any{"primary": map[string]any{"main": "#ff0000"}},
		"shape":   map[string]any{"borderRadius": 4},
	}
	c := map[string]any{
		"palette": map[string]any{"mode": "dark"},
		"spacing": 4,
		"shape":   []any{1, 2},
	}

	assert.Equal(t, Merge(a, b, c), Merge(Merge(a, b), c))
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	base := map[string]any{"palette": map[string]any{"primary": map[string]any{"main": "#1976d2"}}}
	edit := map[string]any{"palette": map[string]any{"primary": map[string]any{"main": "#ff0000"}}}

	merged := Merge(base, edit)
	merged["palette"].(map[string]any)["primary"].(map[string]any)["dark"] = "#000"

	v, ok := GetByPath(base, "palette.primary.main")
	require.True(t, ok)
	assert.Equal(t, "#1976d2", v)
	_, ok = GetByPath(edit, "palette.primary.dark")
	assert.False(t, ok)
}

func TestDiffMaps(t *testing.T) {
	old := map[string]any{
		"palette": map[string]any{"mode": "light", "primary": map[string]any{"main": "#1976d2"}},
		"spacing": 8,
	}
	updated := map[string]any{
		"palette": map[string]any{"mode": "dark", "primary": map[string]any{"main": "#1976d2"}},
		"shape":   map[string]any{"borderRadius": 4},
	}

	added, modified, removed := DiffMaps(old, updated)
	assert.Equal(t, []string{"shape.borderRadius"}, added)
	assert.Equal(t, []string{"palette.mode"}, modified)
	assert.Equal(t, []string{"spacing"}, removed)
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"both nil", nil, nil, true},
		{"nil vs value", nil, 1, false},
		{"int vs float", 4, 4.0, true},
		{"int64 vs int", int64(2), 2, true},
		{"strings", "#fff", "#fff", true},
		{"number vs string", 1, "1", false},
		{"slices", []any{1, "a"}, []any{1.0, "a"}, true},
		{"slice lengths", []any{1}, []any{1, 2}, false},
		{"uncomparable slices", []string{"a"}, []string{"a"}, true},
		{"maps", map[string]any{"a": map[string]any{"b": 1}}, map[string]any{"a": map[string]any{"b": 1.0}}, true},
		{"map key missing", map[string]any{"a": 1}, map[string]any{"b": 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.a, tt.b))
		})
	}
}

func TestClone(t *testing.T) {
	original := map[string]any{
		"typography": map[string]any{"fontFamily": "Roboto"},
		"shadows":    []any{"none", map[string]any{"x": 1}},
	}

	cloned := Clone(original)
	require.Equal(t, original, cloned)

	cloned["typography"].(map[string]any)["fontFamily"] = "Inter"
	cloned["shadows"].([]any)[1].(map[string]any)["x"] = 2

	assert.Equal(t, "Roboto", original["typography"].(map[string]any)["fontFamily"])
	assert.Equal(t, 1, original["shadows"].([]any)[1].(map[string]any)["x"])
	assert.Nil(t, Clone(nil))
}
