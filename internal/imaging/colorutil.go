package imaging

import (
	"math"
	"math/rand/v2"

	"github.com/lucasb-eyer/go-colorful"
)

// goldenRatioConjugate spaces successive hues as far apart as possible.
const goldenRatioConjugate = 0.6180339887498949

// HSVColor is a color in HSV space.
//
// H is in degrees [0,360); S and V are in [0,1].
type HSVColor struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	V float64 `json:"v"`
}

// HSVToRGB converts an HSV triple to 8-bit RGB.
//
// The hue is wrapped into [0,360) first, so negative hues and hues of 360
// or more are accepted. Each output component is rounded to the nearest
// byte. A saturation of zero yields the achromatic gray (v,v,v).
func HSVToRGB(h, s, v float64) RGBColor {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	if s == 0 {
		g := roundByte(v * 255)
		return RGBColor{R: g, G: g, B: g}
	}
	c := colorful.Hsv(h, s, v)
	return RGBColor{R: roundByte(c.R * 255), G: roundByte(c.G * 255), B: roundByte(c.B * 255)}
}

// RGBToHSV converts 8-bit RGB to HSV. The hue is rounded to the nearest
// whole degree and wrapped into [0,360). Achromatic colors get hue 0.
func RGBToHSV(r, g, b uint8) HSVColor {
	c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	h, s, v := c.Hsv()
	h = math.Round(h)
	if h >= 360 {
		h -= 360
	}
	return HSVColor{H: h, S: s, V: v}
}

// Luminance returns the BT.601 relative luminance of an RGB color in [0,1].
func Luminance(r, g, b uint8) float64 {
	return (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 255
}

// ColorDistance is the unweighted Euclidean distance between two colors in
// 8-bit RGB space. It ranges from 0 to about 441.67.
func ColorDistance(a, b RGBColor) float64 {
	dr := float64(a.R) - float64(b.R)
	dg := float64(a.G) - float64(b.G)
	db := float64(a.B) - float64(b.B)
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// DistinctColors generates count colors whose hues are spread around the
// color wheel by repeatedly adding the golden ratio conjugate to a random
// starting hue.
//
// Parameters:
//   - count: number of colors to produce. Zero or negative yields nil.
//   - s, v: saturation and value shared by every color (0.8 and 0.9 are
//     the usual choices).
//   - rng: source for the starting hue. Pass a seeded generator for
//     reproducible output; nil uses the process-wide generator.
func DistinctColors(count int, s, v float64, rng *rand.Rand) []RGBColor {
	if count <= 0 {
		return nil
	}
	hue := randFloat(rng)
	colors := make([]RGBColor, count)
	for i := range colors {
		hue = math.Mod(hue+goldenRatioConjugate, 1)
		colors[i] = HSVToRGB(hue*360, s, v)
	}
	return colors
}

// PreserveLuminance finds the color with the given hue and saturation whose
// luminance is closest to that of (r,g,b). It tries values 0.1 through 1.0
// in steps of 0.05 and keeps the first best match.
func PreserveLuminance(r, g, b uint8, targetHue, targetSat float64) RGBColor {
	want := Luminance(r, g, b)

	var best RGBColor
	bestDiff := math.Inf(1)
	for i := 0; i <= 18; i++ {
		c := HSVToRGB(targetHue, targetSat, 0.1+0.05*float64(i))
		if d := math.Abs(Luminance(c.R, c.G, c.B) - want); d < bestDiff {
			best, bestDiff = c, d
		}
	}
	return best
}

func randFloat(rng *rand.Rand) float64 {
	if rng == nil {
		return rand.Float64()
	}
	return rng.Float64()
}

// RandomHue returns a hue in [0,360) drawn from rng (or the process-wide
// generator when rng is nil).
func RandomHue(rng *rand.Rand) float64 {
	return randFloat(rng) * 360
}

func roundByte(v float64) uint8 {
	return ClampByte(math.Round(v))
}
