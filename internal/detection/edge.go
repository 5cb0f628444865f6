package detection

import (
	"math"

	"github.com/semajyllek/image-transform-app/internal/imaging"
)

// Edge classes written by DoubleThreshold and consumed by Hysteresis.
const (
	EdgeNone   uint8 = 0
	EdgeWeak   uint8 = 128
	EdgeStrong uint8 = 255
)

var (
	sobelX = imaging.Kernel{Radius: 1, Weights: []float64{
		-1, 0, 1,
		-2, 0, 2,
		-1, 0, 1,
	}}
	sobelY = imaging.Kernel{Radius: 1, Weights: []float64{
		-1, -2, -1,
		0, 0, 0,
		1, 2, 1,
	}}
	gaussian = imaging.GaussianKernel5
)

// Sobel computes the gradient magnitude edge map of buf.
//
// The image is first reduced to luminance (0.299R + 0.587G + 0.114B). For
// every interior pixel the horizontal and vertical Sobel responses gx and
// gy are combined as sqrt(gx² + gy²) and written to R, G and B, saturating
// at 255. The one pixel border is then forced to opaque black. The output
// is always fully opaque and has the same dimensions as buf.
func Sobel(buf *imaging.PixelBuffer) (*imaging.PixelBuffer, error) {
	gray, err := imaging.Grayscale(buf)
	if err != nil {
		return nil, err
	}
	gx, err := imaging.KernelResponse(gray, sobelX, 0)
	if err != nil {
		return nil, err
	}
	gy, err := imaging.KernelResponse(gray, sobelY, 0)
	if err != nil {
		return nil, err
	}

	out, err := imaging.NewBuffer(buf.Width, buf.Height)
	if err != nil {
		return nil, err
	}
	w, h := buf.Width, buf.Height
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			m := imaging.ClampByte(math.Sqrt(gx[i]*gx[i] + gy[i]*gy[i]))
			out.SetRGBA(x, y, m, m, m, 255)
		}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x == 0 || y == 0 || x == w-1 || y == h-1 {
				out.SetRGBA(x, y, 0, 0, 0, 255)
			}
		}
	}
	return out, nil
}

// CannyOptions configures Canny.
type CannyOptions struct {
	// Low and High are the double-threshold bounds on gradient magnitude
	// (0-255). High is expected to be >= Low; an inverted pair is not
	// corrected and yields a degenerate map with no weak pixels.
	Low  float64
	High float64

	// FixedPoint repeats hysteresis until no weak pixel changes. The
	// default single pass only promotes weak pixels that directly touch
	// a strong one.
	FixedPoint bool
}

// Canny runs Canny-style edge detection: a 5x5 Gaussian blur on the color
// channels (the 2 pixel border keeps its original values), Sobel magnitude,
// double thresholding and hysteresis. The result holds only 0 and 255 in
// R, G and B with alpha 255.
func Canny(buf *imaging.PixelBuffer, opts CannyOptions) (*imaging.PixelBuffer, error) {
	blurred, err := blur(buf)
	if err != nil {
		return nil, err
	}
	mag, err := Sobel(blurred)
	if err != nil {
		return nil, err
	}
	classified, err := DoubleThreshold(mag, opts.Low, opts.High)
	if err != nil {
		return nil, err
	}
	return Hysteresis(classified, opts.FixedPoint)
}

// blur is Canny's noise reduction: the 5x5 Gaussian divided by 159 on R, G
// and B. The 2 pixel border ring and alpha keep their input values.
func blur(buf *imaging.PixelBuffer) (*imaging.PixelBuffer, error) {
	return imaging.ApplyKernel(buf, gaussian, imaging.ChannelsRGB)
}

// DoubleThreshold classifies each pixel of a magnitude map by its R value:
// above high is EdgeStrong, above low (and not above high) is EdgeWeak,
// anything else EdgeNone. The class goes to R, G and B; alpha is 255.
func DoubleThreshold(mag *imaging.PixelBuffer, low, high float64) (*imaging.PixelBuffer, error) {
	if err := mag.Validate(); err != nil {
		return nil, err
	}
	out := mag.Clone()
	p := out.Pix
	for i := 0; i < len(p); i += 4 {
		m := float64(p[i])
		class := EdgeNone
		switch {
		case m > high:
			class = EdgeStrong
		case m > low:
			class = EdgeWeak
		}
		p[i], p[i+1], p[i+2], p[i+3] = class, class, class, 255
	}
	return out, nil
}

// Hysteresis resolves weak pixels of a classified map.
//
// In a single pass (fixedPoint false) every interior weak pixel with at
// least one 8-connected neighbor that was strong before the pass becomes
// strong. Weak pixels promoted during the pass do not promote their own
// neighbors, so a weak chain two steps from a strong pixel is dropped.
// With fixedPoint the pass repeats until nothing changes. All remaining
// weak pixels, including any on the border, become EdgeNone.
func Hysteresis(classified *imaging.PixelBuffer, fixedPoint bool) (*imaging.PixelBuffer, error) {
	if err := classified.Validate(); err != nil {
		return nil, err
	}
	out := classified.Clone()
	for {
		snapshot := out.Clone()
		if !promoteWeak(snapshot, out) || !fixedPoint {
			break
		}
	}

	p := out.Pix
	for i := 0; i < len(p); i += 4 {
		if p[i] == EdgeWeak {
			p[i], p[i+1], p[i+2] = EdgeNone, EdgeNone, EdgeNone
		}
	}
	return out, nil
}

// promoteWeak promotes weak pixels of dst that touch a strong pixel of src
// and reports whether any pixel changed.
func promoteWeak(src, dst *imaging.PixelBuffer) bool {
	changed := false
	w, h := src.Width, src.Height
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := src.Offset(x, y)
			if src.Pix[i] != EdgeWeak || !hasStrongNeighbor(src, x, y) {
				continue
			}
			dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2] = EdgeStrong, EdgeStrong, EdgeStrong
			changed = true
		}
	}
	return changed
}

func hasStrongNeighbor(buf *imaging.PixelBuffer, x, y int) bool {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if (dx != 0 || dy != 0) && buf.Pix[buf.Offset(x+dx, y+dy)] == EdgeStrong {
				return true
			}
		}
	}
	return false
}
