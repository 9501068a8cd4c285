package modification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoping_IsColorSchemeScoped(t *testing.T) {
	s := DefaultScoping()

	assert.True(t, s.IsColorSchemeScoped("palette.primary.main"))
	assert.True(t, s.IsColorSchemeScoped("shadows"))
	assert.False(t, s.IsColorSchemeScoped("typography.fontSize"))
	assert.False(t, s.IsColorSchemeScoped("spacing"))
	assert.False(t, s.IsColorSchemeScoped("paletteExtra.x"))

	custom := Scoping{Roots: []string{"brand"}}
	assert.True(t, custom.IsColorSchemeScoped("brand.accent"))
	assert.False(t, custom.IsColorSchemeScoped("palette.primary.main"))
}

func TestScoping_Qualify(t *testing.T) {
	s := DefaultScoping()

	assert.Equal(t, "$scheme.dark.palette.primary.main", s.Qualify("dark", "palette.primary.main"))
	assert.Equal(t, "spacing", s.Qualify("dark", "spacing"))
	assert.Equal(t, "palette.primary.main", s.Qualify("", "palette.primary.main"))
}

func TestSchemeOf(t *testing.T) {
	scheme, rest, ok := SchemeOf("$scheme.dark.palette.mode")
	assert.True(t, ok)
	assert.Equal(t, "dark", scheme)
	assert.Equal(t, "palette.mode", rest)

	_, rest, ok = SchemeOf("palette.mode")
	assert.False(t, ok)
	assert.Equal(t, "palette.mode", rest)

	_, _, ok = SchemeOf("$scheme.dark")
	assert.False(t, ok)
}

func TestForScheme(t *testing.T) {
	flat := map[string]any{
		"palette.primary.main":               "#global",
		"$scheme.dark.palette.primary.main":  "#dark",
		"$scheme.light.palette.primary.main": "#light",
		"spacing": 4,
	}

	assert.Equal(t, map[string]any{
		"palette.primary.main": "#dark",
		"spacing":              4,
	}, ForScheme(flat, "dark"))

	assert.Equal(t, map[string]any{
		"palette.primary.main": "#global",
		"spacing":              4,
	}, ForScheme(flat, "contrast"))
}

func TestSet_ForSchemeKeepsBucketsDisjoint(t *testing.T) {
	s := Set{
		Literals:  map[string]any{"palette.text.primary": "#111"},
		Functions: map[string]string{"$scheme.dark.palette.text.primary": "t => '#eee'"},
	}

	dark := s.ForScheme("dark")
	assert.Empty(t, dark.Literals)
	assert.Equal(t, map[string]string{"palette.text.primary": "t => '#eee'"}, dark.Functions)

	light := s.ForScheme("light")
	assert.Equal(t, map[string]any{"palette.text.primary": "#111"}, light.Literals)
	assert.Empty(t, light.Functions)
}
