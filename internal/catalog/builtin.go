package catalog

import (
	"context"
	"strconv"

	"github.com/dshills/themeforge/internal/preview"
)

// Built-in identifiers.
const (
	DefaultTemplateID = "default"

	SchemeLight = "light"
	SchemeDark  = "dark"

	ComposableDenseSpacing = "dense-spacing"
	ComposableRounded      = "rounded"
	ComposableFlat         = "flat"
	ComposableContrastText = "contrast-text"
)

// PaletteIntents are the palette entries that carry main/light/dark shades.
var PaletteIntents = []string{"primary", "secondary", "error", "warning", "info", "success"}

func builtinTemplates() []*Template {
	return []*Template{
		{
			ID:            DefaultTemplateID,
			Name:          "Material",
			Description:   "Material Design defaults",
			DefaultScheme: SchemeLight,
			Schemes: map[string]map[string]any{
				SchemeLight: materialTheme(SchemeLight),
				SchemeDark:  materialTheme(SchemeDark),
			},
		},
	}
}

func builtinComposables() []*Composable {
	return []*Composable{
		{
			ID:          ComposableDenseSpacing,
			Name:        "Dense spacing",
			Description: "Halves the spacing unit and tightens type",
			Tree: map[string]any{
				"spacing": 4,
				"typography": map[string]any{
					"fontSize": 13,
				},
			},
		},
		{
			ID:          ComposableRounded,
			Name:        "Rounded",
			Description: "Large corner radius",
			Tree: map[string]any{
				"shape": map[string]any{"borderRadius": 12},
			},
		},
		{
			ID:          ComposableFlat,
			Name:        "Flat",
			Description: "Removes every elevation shadow",
			Tree: map[string]any{
				"shadows": noShadows(),
				"components": map[string]any{
					"MuiPaper": map[string]any{
						"defaultProps": map[string]any{"elevation": 0},
					},
				},
			},
		},
		{
			ID:          ComposableContrastText,
			Name:        "Contrast text",
			Description: "Derives palette contrastText from each main color",
			Transform:   contrastTextTransform,
		},
	}
}

// contrastTextTransform fills palette.<intent>.contrastText from the
// intent's main color.
func contrastTextTransform(_ context.Context, base map[string]any) (map[string]any, error) {
	palette, _ := base["palette"].(map[string]any)
	out := make(map[string]any)
	for _, intent := range PaletteIntents {
		entry, ok := palette[intent].(map[string]any)
		if !ok {
			continue
		}
		main, ok := entry["main"].(string)
		if !ok {
			continue
		}
		if text, ok := preview.ContrastText(main); ok {
			out[intent] = map[string]any{"contrastText": text}
		}
	}
	if len(out) == 0 {
		return map[string]any{}, nil
	}
	return map[string]any{"palette": out}, nil
}

func noShadows() []any {
	shadows := make([]any, 25)
	for i := range shadows {
		shadows[i] = "none"
	}
	return shadows
}

// materialTheme builds the Material default configuration for a scheme.
// Each call returns a fresh tree.
func materialTheme(scheme string) map[string]any {
	dark := scheme == SchemeDark

	pick := func(light, dark2 any) any {
		if dark {
			return dark2
		}
		return light
	}
	shade := func(main, light, darkShade, contrast string) map[string]any {
		return map[string]any{
			"main":         main,
			"light":        light,
			"dark":         darkShade,
			"contrastText": contrast,
		}
	}

	palette := map[string]any{
		"mode": scheme,
		"common": map[string]any{
			"black": "#000",
			"white": "#fff",
		},
		"primary": pick(
			shade("#1976d2", "#42a5f5", "#1565c0", "#fff"),
			shade("#90caf9", "#e3f2fd", "#42a5f5", "rgba(0, 0, 0, 0.87)"),
		),
		"secondary": pick(
			shade("#9c27b0", "#ba68c8", "#7b1fa2", "#fff"),
			shade("#ce93d8", "#f3e5f5", "#ab47bc", "rgba(0, 0, 0, 0.87)"),
		),
		"error": pick(
			shade("#d32f2f", "#ef5350", "#c62828", "#fff"),
			shade("#f44336", "#e57373", "#d32f2f", "#fff"),
		),
		"warning": pick(
			shade("#ed6c02", "#ff9800", "#e65100", "#fff"),
			shade("#ffa726", "#ffb74d", "#f57c00", "rgba(0, 0, 0, 0.87)"),
		),
		"info": pick(
			shade("#0288d1", "#03a9f4", "#01579b", "#fff"),
			shade("#29b6f6", "#4fc3f7", "#0288d1", "rgba(0, 0, 0, 0.87)"),
		),
		"success": pick(
			shade("#2e7d32", "#4caf50", "#1b5e20", "#fff"),
			shade("#66bb6a", "#81c784", "#388e3c", "rgba(0, 0, 0, 0.87)"),
		),
		"text": pick(
			map[string]any{
				"primary":   "rgba(0, 0, 0, 0.87)",
				"secondary": "rgba(0, 0, 0, 0.6)",
				"disabled":  "rgba(0, 0, 0, 0.38)",
			},
			map[string]any{
				"primary":   "#fff",
				"secondary": "rgba(255, 255, 255, 0.7)",
				"disabled":  "rgba(255, 255, 255, 0.5)",
			},
		),
		"divider": pick("rgba(0, 0, 0, 0.12)", "rgba(255, 255, 255, 0.12)"),
		"background": pick(
			map[string]any{"default": "#fff", "paper": "#fff"},
			map[string]any{"default": "#121212", "paper": "#121212"},
		),
		"contrastThreshold": 3,
		"tonalOffset":       0.2,
	}

	return map[string]any{
		"palette": palette,
		"typography": map[string]any{
			"fontFamily":        `"Roboto", "Helvetica", "Arial", sans-serif`,
			"fontSize":          14,
			"htmlFontSize":      16,
			"fontWeightLight":   300,
			"fontWeightRegular": 400,
			"fontWeightMedium":  500,
			"fontWeightBold":    700,
			"h1":                map[string]any{"fontSize": "6rem", "fontWeight": 300, "lineHeight": 1.167},
			"h2":                map[string]any{"fontSize": "3.75rem", "fontWeight": 300, "lineHeight": 1.2},
			"h3":                map[string]any{"fontSize": "3rem", "fontWeight": 400, "lineHeight": 1.167},
			"body1":             map[string]any{"fontSize": "1rem", "fontWeight": 400, "lineHeight": 1.5},
			"body2":             map[string]any{"fontSize": "0.875rem", "fontWeight": 400, "lineHeight": 1.43},
			"button":            map[string]any{"fontSize": "0.875rem", "fontWeight": 500, "textTransform": "uppercase"},
		},
		"shape": map[string]any{
			"borderRadius": 4,
		},
		"spacing": 8,
		"breakpoints": map[string]any{
			"values": map[string]any{"xs": 0, "sm": 600, "md": 900, "lg": 1200, "xl": 1536},
		},
		"shadows": materialShadows(),
		"transitions": map[string]any{
			"duration": map[string]any{
				"shortest": 150,
				"shorter":  200,
				"short":    250,
				"standard": 300,
				"complex":  375,
			},
			"easing": map[string]any{
				"easeInOut": "cubic-bezier(0.4, 0, 0.2, 1)",
				"easeOut":   "cubic-bezier(0.0, 0, 0.2, 1)",
			},
		},
		"zIndex": map[string]any{
			"appBar":   1100,
			"drawer":   1200,
			"modal":    1300,
			"snackbar": 1400,
			"tooltip":  1500,
		},
		"components": map[string]any{},
	}
}

func materialShadows() []any {
	shadows := []any{"none"}
	for i := 1; i < 25; i++ {
		y := (i + 1) / 2
		shadows = append(shadows,
			"0px "+strconv.Itoa(y)+"px "+strconv.Itoa(i+1)+"px -1px rgba(0,0,0,0.2),"+
				"0px "+strconv.Itoa(i)+"px "+strconv.Itoa(i+1)+"px 0px rgba(0,0,0,0.14),"+
				"0px 1px "+strconv.Itoa(i*3)+"px 0px rgba(0,0,0,0.12)")
	}
	return shadows
}
