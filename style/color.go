package style

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color is a straight (non-premultiplied) sRGB color with floating alpha in
// [0, 1].
type Color struct {
	R, G, B uint8
	A       float64
}

var (
	Transparent = Color{}
	Black       = Color{A: 1}
	White       = Color{R: 0xFF, G: 0xFF, B: 0xFF, A: 1}
	Blue        = Color{B: 0xFF, A: 1}
	LightGray   = Color{R: 0xCC, G: 0xCC, B: 0xCC, A: 1}
)

// RGB returns opaque color.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 1}
}

// ParseColor accepts "#rgb", "#rrggbb" and "#rrggbbaa" forms.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		return Color{}, fmt.Errorf("color %q must start with '#'", s)
	}
	alpha := 1.0
	if len(s) == 9 {
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("color %q has bad alpha: %w", s, err)
		}
		alpha, s = float64(a)/255, s[:7]
	}
	if len(s) != 4 && len(s) != 7 {
		return Color{}, fmt.Errorf("color %q has unsupported length", s)
	}
	cf, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("color %q is not hexadecimal: %w", s, err)
	}
	return fromColorful(cf).WithAlpha(alpha), nil
}

func fromColorful(cf colorful.Color) Color {
	r, g, b := cf.Clamped().RGB255()
	return RGB(r, g, b)
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// MustParseColor is ParseColor for compile time constants.
func MustParseColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// WithAlpha returns copy of color with alpha replaced.
func (c Color) WithAlpha(a float64) Color {
	c.A = min(max(a, 0), 1)
	return c
}

// IsZero reports fully transparent black, which is used as "not set".
func (c Color) IsZero() bool {
	return c == Color{}
}

// Hex returns "#rrggbb" ignoring alpha.
func (c Color) Hex() string {
	return c.colorful().Hex()
}

// CSS returns CSS color notation, rgba() is used only when color is not
// opaque.
func (c Color) CSS() string {
	if c.A >= 1 {
		return c.Hex()
	}
	return fmt.Sprintf("rgba(%d,%d,%d,%s)", c.R, c.G, c.B, strconv.FormatFloat(c.A, 'f', -1, 64))
}

// Over composites c over opaque background bg and returns opaque result.
// Terminals have no notion of alpha so this is how faded text is shown there.
func (c Color) Over(bg Color) Color {
	return fromColorful(bg.colorful().BlendRgb(c.colorful(), c.A))
}

func (c Color) String() string {
	if c.A >= 1 {
		return c.Hex()
	}
	return fmt.Sprintf("%s@%.3f", c.Hex(), c.A)
}

// MarshalText writes color in "#rrggbb[aa]" form so it can live in YAML
// configuration.
func (c Color) MarshalText() ([]byte, error) {
	if c.A >= 1 {
		return []byte(c.Hex()), nil
	}
	return fmt.Appendf(nil, "%s%02x", c.Hex(), uint8(math.Round(c.A*255))), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	v, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}
