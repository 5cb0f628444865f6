package imaging

import (
	"math"
	"testing"
)

func TestSampleColor(t *testing.T) {
	buf := solidBuffer(t, 10, 10, 255, 128, 64, 200)

	result, err := SampleColor(buf, 5, 5)
	if err != nil {
		t.Fatalf("SampleColor failed: %v", err)
	}

	if result.Hex != "#FF8040" {
		t.Errorf("Hex: got %s, want #FF8040", result.Hex)
	}
	if result.RGBA != (RGBAColor{255, 128, 64, 200}) {
		t.Errorf("RGBA: got %+v, want (255,128,64,200)", result.RGBA)
	}
	if result.HSV.H != 20 || result.HSV.V != 1 {
		t.Errorf("HSV: got %+v, want hue 20, value 1", result.HSV)
	}
	if math.Abs(result.Luminance-Luminance(255, 128, 64)) > 1e-12 {
		t.Errorf("Luminance: got %v", result.Luminance)
	}
}

func TestSampleColor_OutOfBounds(t *testing.T) {
	buf := solidBuffer(t, 100, 100, 255, 0, 0, 255)

	tests := []struct {
		name string
		x, y int
	}{
		{"negative x", -1, 50},
		{"negative y", 50, -1},
		{"x too large", 100, 50},
		{"y too large", 50, 100},
		{"both too large", 100, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SampleColor(buf, tt.x, tt.y)
			if err == nil {
				t.Error("SampleColor should fail for out-of-bounds coordinates")
			}
		})
	}
}

func TestSampleColor_EdgeCoordinates(t *testing.T) {
	buf := patternBuffer(t, 4, 3)
	for _, p := range [][2]int{{0, 0}, {3, 0}, {0, 2}, {3, 2}} {
		if _, err := SampleColor(buf, p[0], p[1]); err != nil {
			t.Errorf("SampleColor(%d,%d) failed: %v", p[0], p[1], err)
		}
	}
}

func TestRGBColor_Hex(t *testing.T) {
	tests := []struct {
		c    RGBColor
		want string
	}{
		{RGBColor{0, 0, 0}, "#000000"},
		{RGBColor{255, 255, 255}, "#FFFFFF"},
		{RGBColor{1, 171, 205}, "#01ABCD"},
	}
	for _, tt := range tests {
		if got := tt.c.Hex(); got != tt.want {
			t.Errorf("%v.Hex() = %s, want %s", tt.c, got, tt.want)
		}
	}
}
