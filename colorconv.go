package stylekit

import (
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// colorFunctionNames is the set of color-producing CSS functions the value
// parser recognizes directly (as opposed to going through the function
// registry in E, which is reserved for named, user-extensible functions).
var colorFunctionNames = map[string]bool{
	"rgb": true, "rgba": true, "hsl": true, "hwb": true,
}

// parseColorIdent resolves a bare ident or hash token to a concrete color
// using the named/hash color lookup table. Hex forms with an alpha channel
// (#rgba, #rrggbbaa) are handled here directly, since tcell's table does
// not carry alpha; 3-digit #rgb is expanded to #rrggbb here; named colors
// and 6-digit hex are delegated to tcell.GetColor, which is this package's
// external collaborator for color-name lookup (per §1, that table is
// explicitly out of scope for hand-rolling here).
func parseColorIdent(text string) (Color, bool) {
	if strings.HasPrefix(text, "#") {
		if c, ok := parseHexWithAlpha(text); ok {
			return c, true
		}
		if len(text) == 4 {
			text = string([]byte{'#', text[1], text[1], text[2], text[2], text[3], text[3]})
		}
	}

	tc := tcell.GetColor(text)
	if tc == tcell.ColorDefault {
		return Color{}, false
	}
	r, g, b := tc.TrueColor().RGB()
	return RGBA(uint8(r), uint8(g), uint8(b), 255), true
}

// parseHexWithAlpha handles the #rgba and #rrggbbaa forms tcell's table
// does not support. It returns ok=false for any other length so the caller
// handles the standard #rgb/#rrggbb forms.
func parseHexWithAlpha(text string) (Color, bool) {
	hex := strings.TrimPrefix(text, "#")
	expand := func(c byte) (byte, byte) { return c, c }

	switch len(hex) {
	case 4: // #rgba
		r1, r2 := expand(hex[0])
		g1, g2 := expand(hex[1])
		b1, b2 := expand(hex[2])
		a1, a2 := expand(hex[3])
		r, okR := parseHexByte(string([]byte{r1, r2}))
		g, okG := parseHexByte(string([]byte{g1, g2}))
		b, okB := parseHexByte(string([]byte{b1, b2}))
		a, okA := parseHexByte(string([]byte{a1, a2}))
		if !(okR && okG && okB && okA) {
			return Color{}, false
		}
		return RGBA(r, g, b, a), true
	case 8: // #rrggbbaa
		r, okR := parseHexByte(hex[0:2])
		g, okG := parseHexByte(hex[2:4])
		b, okB := parseHexByte(hex[4:6])
		a, okA := parseHexByte(hex[6:8])
		if !(okR && okG && okB && okA) {
			return Color{}, false
		}
		return RGBA(r, g, b, a), true
	}
	return Color{}, false
}

func parseHexByte(s string) (uint8, bool) {
	v, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 0, false
	}
	return uint8(v), true
}

// colorArg is one numeric or percentage argument to a color function, as
// written: a percentage keeps its 0-100 value and sets isPercent, and the
// build* functions do the scaling.
type colorArg struct {
	value     float64
	isPercent bool
}

// buildRgbColor assembles an rgb()/rgba() color from already-parsed
// arguments. r/g/b may be given as 0-255 numbers or 0%-100% percentages;
// alpha may be a 0-1 number or a 0%-100% percentage.
func buildRgbColor(r, g, b colorArg, alpha *colorArg) Color {
	toByte := func(a colorArg) uint8 {
		v := a.value
		if a.isPercent {
			v = v * 255.0 / 100.0
		}
		return clampByte(int(v + 0.5))
	}
	a := uint8(255)
	if alpha != nil {
		v := alpha.value
		if alpha.isPercent {
			v = v / 100.0
		}
		a = clampByte(int(v*255.0 + 0.5))
	}
	return RGBA(toByte(r), toByte(g), toByte(b), a)
}

// buildHslColor converts an hsl() triple to RGBA via go-colorful,
// which is this package's external collaborator for HSL→RGB conversion.
func buildHslColor(hue float64, saturation, lightness colorArg, alpha *colorArg) Color {
	s := percentFraction(saturation)
	l := percentFraction(lightness)
	cf := colorful.Hsl(normalizeHue(hue), s, l).Clamped()
	r, g, b := cf.RGB255()
	a := uint8(255)
	if alpha != nil {
		v := alpha.value
		if alpha.isPercent {
			v = v / 100.0
		}
		a = clampByte(int(v*255.0 + 0.5))
	}
	return RGBA(r, g, b, a)
}

// buildHwbColor converts an hwb() triple to RGBA. go-colorful has no
// direct HWB constructor, so this bridges through its HSL conversion for
// the pure-hue color and then blends in whiteness/blackness by hand,
// following the standard CSS Color Level 4 HWB→RGB algorithm.
func buildHwbColor(hue float64, whiteness, blackness colorArg, alpha *colorArg) Color {
	w := percentFraction(whiteness)
	b := percentFraction(blackness)
	if w+b >= 1 {
		gray := clampByte(int(w/(w+b)*255.0 + 0.5))
		a := uint8(255)
		if alpha != nil {
			v := alpha.value
			if alpha.isPercent {
				v = v / 100.0
			}
			a = clampByte(int(v*255.0 + 0.5))
		}
		return RGBA(gray, gray, gray, a)
	}

	pure := colorful.Hsl(normalizeHue(hue), 1, 0.5)
	mix := func(channel float64) uint8 {
		v := channel*(1-w-b) + w
		if v < 0 {
			v = 0
		} else if v > 1 {
			v = 1
		}
		return clampByte(int(v*255.0 + 0.5))
	}
	a := uint8(255)
	if alpha != nil {
		v := alpha.value
		if alpha.isPercent {
			v = v / 100.0
		}
		a = clampByte(int(v*255.0 + 0.5))
	}
	return RGBA(mix(pure.R), mix(pure.G), mix(pure.B), a)
}

func percentFraction(a colorArg) float64 {
	if a.isPercent {
		return clamp01(a.value / 100.0)
	}
	return clamp01(a.value)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func normalizeHue(h float64) float64 {
	h = mod(h, 360)
	if h < 0 {
		h += 360
	}
	return h
}

func mod(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	m := a - b*float64(int(a/b))
	return m
}
