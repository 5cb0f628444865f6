package segmentation

import (
	"math/rand/v2"
	"testing"

	"github.com/semajyllek/image-transform-app/internal/imaging"
)

func TestScheme_Known(t *testing.T) {
	for _, s := range Schemes {
		if !s.Known() {
			t.Errorf("%q should be known", s)
		}
	}
	for _, s := range []Scheme{"", "neon", "Rainbow"} {
		if s.Known() {
			t.Errorf("%q should not be known", s)
		}
	}
}

func TestScheme_Palette(t *testing.T) {
	tests := []struct {
		scheme Scheme
		want   []imaging.RGBColor
	}{
		{Rainbow, []imaging.RGBColor{
			imaging.HSVToRGB(0, 0.8, 0.9),
			imaging.HSVToRGB(90, 0.8, 0.9),
			imaging.HSVToRGB(180, 0.8, 0.9),
			imaging.HSVToRGB(270, 0.8, 0.9),
		}},
		{Pastel, []imaging.RGBColor{
			imaging.HSVToRGB(0, 0.4, 0.95),
			imaging.HSVToRGB(90, 0.4, 0.95),
			imaging.HSVToRGB(180, 0.4, 0.95),
			imaging.HSVToRGB(270, 0.4, 0.95),
		}},
		{Grayscale, []imaging.RGBColor{
			{R: 255, G: 255, B: 255},
			{R: 200, G: 200, B: 200},
			{R: 145, G: 145, B: 145},
			{R: 90, G: 90, B: 90},
		}},
		{HighContrast, []imaging.RGBColor{
			imaging.HSVToRGB(0, 1, 1),
			imaging.HSVToRGB(137.5, 1, 1),
			imaging.HSVToRGB(275, 1, 1),
			imaging.HSVToRGB(52.5, 1, 1),
		}},
	}

	for _, tt := range tests {
		t.Run(string(tt.scheme), func(t *testing.T) {
			got := tt.scheme.Palette(4, nil, nil)
			if len(got) != len(tt.want) {
				t.Fatalf("len: got %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("color %d: got %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestScheme_UnknownFallsBackToRainbow(t *testing.T) {
	got := Scheme("neon").Palette(5, nil, nil)
	want := Rainbow.Palette(5, nil, nil)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("color %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestScheme_PreserveBrightness(t *testing.T) {
	means := []imaging.RGBColor{{}, {R: 255, G: 255, B: 255}, {R: 40, G: 200, B: 90}}

	a := PreserveBrightness.Palette(3, means, rand.New(rand.NewPCG(1, 2)))
	b := PreserveBrightness.Palette(3, means, rand.New(rand.NewPCG(1, 2)))
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("color %d differs for the same seed: %v vs %v", i, a[i], b[i])
		}
	}

	if a[0] != (imaging.RGBColor{}) {
		t.Errorf("black mean: got %v, want black", a[0])
	}
	hsv := imaging.RGBToHSV(a[1].R, a[1].G, a[1].B)
	if hsv.V < 0.99 {
		t.Errorf("white mean: value %.3f, want 1", hsv.V)
	}
}

func TestScheme_PaletteEmpty(t *testing.T) {
	for _, s := range Schemes {
		if got := s.Palette(0, nil, nil); len(got) != 0 {
			t.Errorf("%s: got %d colors, want 0", s, len(got))
		}
	}
}
