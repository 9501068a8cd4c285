package preview

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Contrast text colors, matching the Material palette defaults.
const (
	LightText = "#fff"
	DarkText  = "rgba(0, 0, 0, 0.87)"
)

// ContrastThreshold is the minimum contrast ratio against white for white
// text to be chosen.
const ContrastThreshold = 3.0

// ParseColor parses a CSS color in #rgb, #rrggbb, #rrggbbaa, rgb() or
// rgba() form. Translucent colors are blended over backdrop.
func ParseColor(s string, backdrop colorful.Color) (colorful.Color, error) {
	s = strings.TrimSpace(strings.ToLower(s))

	switch {
	case strings.HasPrefix(s, "#") && len(s) == 9:
		c, err := colorful.Hex(s[:7])
		if err != nil {
			return colorful.Color{}, err
		}
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return colorful.Color{}, fmt.Errorf("color %q: %w", s, err)
		}
		return backdrop.BlendRgb(c, float64(a)/255).Clamped(), nil

	case strings.HasPrefix(s, "#"):
		return colorful.Hex(s)

	case strings.HasPrefix(s, "rgb"):
		return parseRGBFunc(s, backdrop)

	default:
		return colorful.Color{}, fmt.Errorf("unsupported color %q", s)
	}
}

func parseRGBFunc(s string, backdrop colorful.Color) (colorful.Color, error) {
	open, end := strings.IndexByte(s, '('), strings.LastIndexByte(s, ')')
	if open < 0 || end < open {
		return colorful.Color{}, fmt.Errorf("malformed color %q", s)
	}

	parts := strings.Split(s[open+1:end], ",")
	if len(parts) != 3 && len(parts) != 4 {
		return colorful.Color{}, fmt.Errorf("malformed color %q", s)
	}

	var ch [3]float64
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil || v < 0 || v > 255 {
			return colorful.Color{}, fmt.Errorf("malformed color %q", s)
		}
		ch[i] = v / 255
	}
	c := colorful.Color{R: ch[0], G: ch[1], B: ch[2]}

	if len(parts) == 4 {
		a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || a < 0 || a > 1 {
			return colorful.Color{}, fmt.Errorf("malformed alpha in %q", s)
		}
		c = backdrop.BlendRgb(c, a).Clamped()
	}
	return c, nil
}

// Luminance returns the relative luminance of c.
func Luminance(c colorful.Color) float64 {
	r, g, b := c.LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// ContrastRatio returns the contrast ratio between two colors, from 1 to 21.
func ContrastRatio(a, b colorful.Color) float64 {
	la, lb := Luminance(a), Luminance(b)
	if la < lb {
		la, lb = lb, la
	}
	return (la + 0.05) / (lb + 0.05)
}

// ContrastText picks a readable text color for a background color: white
// when it contrasts enough with the background, dark otherwise. It reports
// false when color cannot be parsed.
func ContrastText(color string) (string, bool) {
	c, err := ParseColor(color, white)
	if err != nil {
		return "", false
	}
	if ContrastRatio(c, white) >= ContrastThreshold {
		return LightText, true
	}
	return DarkText, true
}

var white = colorful.Color{R: 1, G: 1, B: 1}
