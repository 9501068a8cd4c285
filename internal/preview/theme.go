// Package preview turns a concrete configuration tree into a theme a
// terminal can render, and renders sample components with it.
package preview

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/themeforge/internal/config/layer"
	"github.com/dshills/themeforge/internal/logging"
)

// ErrInstantiation matches every *InstantiationError.
var ErrInstantiation = errors.New("theme instantiation failed")

// InstantiationError reports a configuration value the renderer rejected.
type InstantiationError struct {
	Path  string
	Value any
	Err   error
}

// Error implements the error interface.
func (e *InstantiationError) Error() string {
	return fmt.Sprintf("instantiate %s=%v: %v", e.Path, e.Value, e.Err)
}

// Unwrap returns the underlying error.
func (e *InstantiationError) Unwrap() error {
	return e.Err
}

// Is implements error matching for InstantiationError.
func (e *InstantiationError) Is(target error) bool {
	return target == ErrInstantiation
}

// Intents are the palette entries rendered as colored swatches.
var Intents = []string{"primary", "secondary", "error", "warning", "info", "success"}

// Theme is a renderable theme.
type Theme struct {
	Mode         string
	Colors       map[string]colorful.Color
	Spacing      float64
	BorderRadius float64
	FontFamily   string

	Styles Styles
}

// Styles are the lipgloss styles derived from a Theme.
type Styles struct {
	Intents   map[string]lipgloss.Style
	Text      lipgloss.Style
	Secondary lipgloss.Style
	Surface   lipgloss.Style
	Card      lipgloss.Style
}

// Color returns the hex form of a named theme color.
func (t *Theme) Color(name string) string {
	c, ok := t.Colors[name]
	if !ok {
		return ""
	}
	return c.Hex()
}

type colorSpec struct {
	name string
	path string
}

var colorSpecs = []colorSpec{
	{"background", "palette.background.default"},
	{"paper", "palette.background.paper"},
	{"text", "palette.text.primary"},
	{"textSecondary", "palette.text.secondary"},
	{"divider", "palette.divider"},
}

// Instantiate builds a Theme from a concrete configuration. Missing values
// take Material light defaults, so Instantiate(nil) always succeeds.
// Present values that cannot be used yield an *InstantiationError.
func Instantiate(cfg map[string]any) (*Theme, error) {
	t := &Theme{
		Mode:         "light",
		Colors:       make(map[string]colorful.Color),
		Spacing:      8,
		BorderRadius: 4,
		FontFamily:   "Roboto",
	}

	if v, ok := layer.GetByPath(cfg, "palette.mode"); ok {
		mode, isString := v.(string)
		if !isString || (mode != "light" && mode != "dark") {
			return nil, &InstantiationError{Path: "palette.mode", Value: v, Err: errors.New("must be light or dark")}
		}
		t.Mode = mode
	}
	defaults := defaultColors(t.Mode)

	// Background first: translucent colors blend over it.
	backdrop := defaults["background"]
	for _, spec := range slices.Concat(colorSpecs, intentSpecs()) {
		c, err := colorAt(cfg, spec.path, backdrop)
		if err != nil {
			return nil, err
		}
		if c == nil {
			t.Colors[spec.name] = defaults[spec.name]
		} else {
			t.Colors[spec.name] = *c
		}
		if spec.name == "background" {
			backdrop = t.Colors["background"]
		}
	}

	var err error
	if t.Spacing, err = numberAt(cfg, "spacing", t.Spacing); err != nil {
		return nil, err
	}
	if t.BorderRadius, err = numberAt(cfg, "shape.borderRadius", t.BorderRadius); err != nil {
		return nil, err
	}
	if v, ok := layer.GetByPath(cfg, "typography.fontFamily"); ok {
		s, isString := v.(string)
		if !isString {
			return nil, &InstantiationError{Path: "typography.fontFamily", Value: v, Err: errors.New("must be a string")}
		}
		t.FontFamily = firstFont(s)
	}

	t.Styles = buildStyles(t)
	return t, nil
}

// SafeInstantiate instantiates cfg and falls back to Instantiate(nil) when
// the renderer rejects it. The failure is logged.
func SafeInstantiate(cfg map[string]any, logger *logging.Logger) *Theme {
	t, err := Instantiate(cfg)
	if err == nil {
		return t
	}
	logger.Error(err, "theme instantiation failed, using defaults")

	t, err = Instantiate(nil)
	if err != nil {
		panic(fmt.Sprintf("preview: default theme: %v", err))
	}
	return t
}

func intentSpecs() []colorSpec {
	specs := make([]colorSpec, 0, len(Intents)*2)
	for _, intent := range Intents {
		specs = append(specs,
			colorSpec{intent, "palette." + intent + ".main"},
			colorSpec{intent + "Text", "palette." + intent + ".contrastText"},
		)
	}
	return specs
}

func colorAt(cfg map[string]any, path string, backdrop colorful.Color) (*colorful.Color, error) {
	v, ok := layer.GetByPath(cfg, path)
	if !ok || v == nil {
		return nil, nil
	}
	s, isString := v.(string)
	if !isString {
		return nil, &InstantiationError{Path: path, Value: v, Err: errors.New("color must be a string")}
	}
	c, err := ParseColor(s, backdrop)
	if err != nil {
		return nil, &InstantiationError{Path: path, Value: v, Err: err}
	}
	return &c, nil
}

func numberAt(cfg map[string]any, path string, fallback float64) (float64, error) {
	v, ok := layer.GetByPath(cfg, path)
	if !ok || v == nil {
		return fallback, nil
	}
	var n float64
	switch t := v.(type) {
	case int:
		n = float64(t)
	case int64:
		n = float64(t)
	case float64:
		n = t
	default:
		return 0, &InstantiationError{Path: path, Value: v, Err: errors.New("must be a number")}
	}
	if n < 0 {
		return 0, &InstantiationError{Path: path, Value: v, Err: errors.New("must not be negative")}
	}
	return n, nil
}

func firstFont(family string) string {
	first, _, _ := strings.Cut(family, ",")
	return strings.Trim(strings.TrimSpace(first), `"'`)
}

func defaultColors(mode string) map[string]colorful.Color {
	hex := map[string]string{
		"background":    "#ffffff",
		"paper":         "#ffffff",
		"text":          "#212121",
		"textSecondary": "#666666",
		"divider":       "#e0e0e0",
		"primary":       "#1976d2",
		"secondary":     "#9c27b0",
		"error":         "#d32f2f",
		"warning":       "#ed6c02",
		"info":          "#0288d1",
		"success":       "#2e7d32",
	}
	if mode == "dark" {
		hex["background"] = "#121212"
		hex["paper"] = "#121212"
		hex["text"] = "#ffffff"
		hex["textSecondary"] = "#b3b3b3"
		hex["divider"] = "#2e2e2e"
	}

	out := make(map[string]colorful.Color, len(hex)+len(Intents))
	for name, h := range hex {
		c, _ := colorful.Hex(h)
		out[name] = c
	}
	for _, intent := range Intents {
		text, _ := ContrastText(hex[intent])
		c, _ := ParseColor(text, out[intent])
		out[intent+"Text"] = c
	}
	return out
}

func buildStyles(t *Theme) Styles {
	pad := int(t.Spacing / 8)
	if pad > 3 {
		pad = 3
	}

	border := lipgloss.NormalBorder()
	if t.BorderRadius > 0 {
		border = lipgloss.RoundedBorder()
	}

	color := func(name string) lipgloss.Color {
		return lipgloss.Color(t.Colors[name].Hex())
	}

	s := Styles{
		Intents:   make(map[string]lipgloss.Style, len(Intents)),
		Text:      lipgloss.NewStyle().Foreground(color("text")),
		Secondary: lipgloss.NewStyle().Foreground(color("textSecondary")),
		Surface:   lipgloss.NewStyle().Background(color("background")).Foreground(color("text")),
		Card: lipgloss.NewStyle().
			Border(border).
			BorderForeground(color("divider")).
			Background(color("paper")).
			Padding(0, pad),
	}
	for _, intent := range Intents {
		s.Intents[intent] = lipgloss.NewStyle().
			Background(color(intent)).
			Foreground(color(intent + "Text")).
			Padding(0, pad)
	}
	return s
}

// Render draws the theme as a card of buttons and text samples.
func Render(t *Theme) string {
	var b strings.Builder

	title := t.Styles.Text.Bold(true).Render(fmt.Sprintf("%s · %s", t.Mode, t.FontFamily))
	b.WriteString(title)
	b.WriteString("\n\n")

	buttons := make([]string, 0, len(Intents))
	for _, intent := range Intents {
		buttons = append(buttons, t.Styles.Intents[intent].Render(strings.ToUpper(intent)))
	}
	b.WriteString(strings.Join(buttons, " "))
	b.WriteString("\n\n")

	for _, intent := range Intents {
		b.WriteString(t.Styles.Secondary.Render(fmt.Sprintf("%-10s %s", intent, t.Color(intent))))
		b.WriteString("\n")
	}
	b.WriteString(t.Styles.Secondary.Render(fmt.Sprintf("spacing %g · radius %g", t.Spacing, t.BorderRadius)))

	return t.Styles.Card.Render(b.String())
}
