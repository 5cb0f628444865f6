package segmentation

import (
	"math"
	"math/rand/v2"

	"github.com/semajyllek/image-transform-app/internal/imaging"
)

// Scheme names a way of assigning display colors to segments.
type Scheme string

const (
	Rainbow            Scheme = "rainbow"
	Pastel             Scheme = "pastel"
	Grayscale          Scheme = "grayscale"
	HighContrast       Scheme = "highContrast"
	PreserveBrightness Scheme = "preserveBrightness"
)

// Schemes lists every known scheme.
var Schemes = []Scheme{Rainbow, Pastel, Grayscale, HighContrast, PreserveBrightness}

// Known reports whether s is one of Schemes.
func (s Scheme) Known() bool {
	for _, k := range Schemes {
		if s == k {
			return true
		}
	}
	return false
}

// Palette returns a display color for each of the n segments. means holds
// each segment's mean color and is only consulted by PreserveBrightness,
// which also draws one random hue per segment from rng. Unknown schemes
// fall back to Rainbow.
func (s Scheme) Palette(n int, means []imaging.RGBColor, rng *rand.Rand) []imaging.RGBColor {
	colors := make([]imaging.RGBColor, n)
	for i := range colors {
		frac := float64(i) / float64(n)
		switch s {
		case Pastel:
			colors[i] = imaging.HSVToRGB(frac*360, 0.4, 0.95)
		case Grayscale:
			g := uint8(255 - math.Round(frac*220))
			colors[i] = imaging.RGBColor{R: g, G: g, B: g}
		case HighContrast:
			colors[i] = imaging.HSVToRGB(math.Mod(float64(i)*137.5, 360), 1, 1)
		case PreserveBrightness:
			m := means[i]
			colors[i] = imaging.HSVToRGB(imaging.RandomHue(rng), 0.8, imaging.Luminance(m.R, m.G, m.B))
		default:
			colors[i] = imaging.HSVToRGB(frac*360, 0.8, 0.9)
		}
	}
	return colors
}
