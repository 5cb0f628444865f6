package imaging

import (
	"fmt"
)

// RGBColor represents an RGB color with 8-bit components.
//
// Each component ranges from 0 to 255, where:
//   - 0 represents no intensity (black for all components)
//   - 255 represents full intensity (white for all components)
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// RGBAColor represents an RGBA color with 8-bit components including alpha.
//
// The alpha component represents opacity:
//   - 0 = fully transparent
//   - 255 = fully opaque
type RGBAColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
	A uint8 `json:"a"` // Alpha/opacity component (0-255)
}

// Hex formats the color as "#RRGGBB".
func (c RGBColor) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// ColorResult contains a color value in multiple representations.
//
// This struct provides the same color in several formats to suit different
// use cases:
//   - Hex: Compact string format for CSS/web usage
//   - RGBA: 8-bit components with alpha for transparency
//   - HSV: Hue/saturation/value as used by the segmentation color schemes
//   - Luminance: BT.601 relative luminance (0-1)
type ColorResult struct {
	Hex       string    `json:"hex"`       // Hex format "#RRGGBB" (no alpha)
	RGBA      RGBAColor `json:"rgba"`      // RGBA components with alpha
	HSV       HSVColor  `json:"hsv"`       // HSV representation
	Luminance float64   `json:"luminance"` // Relative luminance (0-1)
}

// SampleColor extracts the color value at a specific pixel coordinate.
//
// Parameters:
//   - buf: The buffer to sample from.
//   - x: X coordinate (0-based, 0 = leftmost pixel).
//   - y: Y coordinate (0-based, 0 = topmost pixel).
//
// Returns:
//   - *ColorResult: The color at (x, y) in multiple formats.
//   - error: Non-nil if the buffer is malformed or the coordinates are
//     outside it.
func SampleColor(buf *PixelBuffer, x, y int) (*ColorResult, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	if x < 0 || x >= buf.Width || y < 0 || y >= buf.Height {
		return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds", x, y)
	}

	r, g, b, a := buf.RGBA(x, y)
	return &ColorResult{
		Hex:       RGBColor{R: r, G: g, B: b}.Hex(),
		RGBA:      RGBAColor{R: r, G: g, B: b, A: a},
		HSV:       RGBToHSV(r, g, b),
		Luminance: Luminance(r, g, b),
	}, nil
}
