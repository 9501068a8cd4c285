package layer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStack_OrdersByPriorityStable(t *testing.T) {
	s := NewStack()
	s.Push(NewLayerWithData("literals", SourceLiteral, PriorityLiteral, map[string]any{"spacing": 6}))
	s.Push(NewLayerWithData("template", SourceTemplate, PriorityTemplate, map[string]any{"spacing": 8}))
	s.Push(NewLayerWithData("composable:a", SourceComposable, PriorityComposable, map[string]any{"spacing": 2}))
	s.Push(NewLayerWithData("composable:b", SourceComposable, PriorityComposable, map[string]any{"spacing": 4}))

	names := make([]string, 0, s.Len())
	for _, l := range s.Layers() {
		names = append(names, l.Name)
	}
	assert.Equal(t, []string{"template", "composable:a", "composable:b", "literals"}, names)
	assert.Equal(t, map[string]any{"spacing": 6}, s.Merge())
	assert.Equal(t, "literals", s.WhichLayer("spacing"))
}

func TestStack_MergeCacheInvalidation(t *testing.T) {
	s := NewStack()
	s.Push(NewLayerWithData("template", SourceTemplate, PriorityTemplate, map[string]any{"spacing": 8}))

	first := s.Merge()
	first["spacing"] = 100
	assert.Equal(t, 8, s.Merge()["spacing"], "merge result must be a copy")

	require.NoError(t, s.Update("template", map[string]any{"spacing": 10}))
	assert.Equal(t, 10, s.Merge()["spacing"])

	assert.Error(t, s.Update("missing", nil))

	assert.True(t, s.Remove("template"))
	assert.False(t, s.Remove("template"))
	assert.Empty(t, s.Merge())
}

func TestStack_Get(t *testing.T) {
	s := NewStack()
	s.Push(NewLayerWithData("template", SourceTemplate, PriorityTemplate, map[string]any{
		"palette": map[string]any{"mode": "light"},
	}))

	v, l, ok := s.Get("palette.mode")
	require.True(t, ok)
	assert.Equal(t, "light", v)
	assert.Equal(t, "template", l.Name)
	assert.NotNil(t, s.Layer("template"))
	assert.Nil(t, s.Layer("nope"))

	_, _, ok = s.Get("palette.primary")
	assert.False(t, ok)
	assert.Empty(t, s.WhichLayer("palette.primary"))
}

func TestLayer_Clone(t *testing.T) {
	original := NewLayerWithData("template", SourceTemplate, PriorityTemplate, map[string]any{
		"palette": map[string]any{"mode": "light"},
	})
	cloned := original.Clone()
	cloned.Data["palette"].(map[string]any)["mode"] = "dark"

	assert.Equal(t, "light", original.Data["palette"].(map[string]any)["mode"])
	assert.Equal(t, "template", SourceTemplate.String())
	assert.Equal(t, "unknown", Source(99).String())
	assert.Equal(t, PriorityRawFunction, DefaultPriority(SourceRawFunction))
}
