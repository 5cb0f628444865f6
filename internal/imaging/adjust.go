package imaging

// AdjustContrast scales each color channel's distance from mid-gray by
// contrast/100. A contrast of 100 leaves the image unchanged; 0 flattens it
// to gray 128; 200 doubles the spread. Alpha is untouched.
func AdjustContrast(buf *PixelBuffer, contrast float64) (*PixelBuffer, error) {
	factor := contrast / 100
	return mapRGB(buf, func(v uint8) uint8 {
		return ClampByte((float64(v)-128)*factor + 128)
	})
}

// AdjustBrightness multiplies each color channel by brightness/100 and
// clamps. 100 is the identity.
func AdjustBrightness(buf *PixelBuffer, brightness float64) (*PixelBuffer, error) {
	factor := brightness / 100
	return mapRGB(buf, func(v uint8) uint8 {
		return ClampByte(float64(v) * factor)
	})
}

// Sharpen applies the kernel [0,-k,0; -k,1+4k,-k; 0,-k,0] with
// k = amount/10 to the color channels, computed as v + k*laplacian(v) so
// flat areas come out exactly unchanged. Results are clamped and
// truncated. The one pixel border and alpha are copied through. An amount
// of 0 is the identity.
func Sharpen(buf *PixelBuffer, amount float64) (*PixelBuffer, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	k := amount / 10
	out := buf.Clone()
	for y := 1; y < buf.Height-1; y++ {
		for x := 1; x < buf.Width-1; x++ {
			i := buf.Offset(x, y)
			for c := 0; c < 3; c++ {
				v := float64(buf.Pix[i+c])
				out.Pix[i+c] = ClampByte(v + k*convolveAt(buf, LaplacianKernel, x, y, c))
			}
		}
	}
	return out, nil
}

// Grayscale replaces R, G and B with the rounded BT.601 luminance of the
// pixel. Applying it twice gives the same result as applying it once.
func Grayscale(buf *PixelBuffer) (*PixelBuffer, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	out := buf.Clone()
	p := out.Pix
	for i := 0; i < len(p); i += 4 {
		g := grayLevel(p[i], p[i+1], p[i+2])
		p[i], p[i+1], p[i+2] = g, g, g
	}
	return out, nil
}

// Threshold sets R, G and B to 255 where the pixel's gray level is at least
// threshold and to 0 elsewhere. Alpha is untouched.
func Threshold(buf *PixelBuffer, threshold float64) (*PixelBuffer, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	out := buf.Clone()
	p := out.Pix
	for i := 0; i < len(p); i += 4 {
		var v uint8
		if float64(grayLevel(p[i], p[i+1], p[i+2])) >= threshold {
			v = 255
		}
		p[i], p[i+1], p[i+2] = v, v, v
	}
	return out, nil
}

func grayLevel(r, g, b uint8) uint8 {
	return roundByte(0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b))
}

func mapRGB(buf *PixelBuffer, f func(uint8) uint8) (*PixelBuffer, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	var lut [256]uint8
	for i := range lut {
		lut[i] = f(uint8(i))
	}
	out := buf.Clone()
	p := out.Pix
	for i := 0; i < len(p); i += 4 {
		p[i], p[i+1], p[i+2] = lut[p[i]], lut[p[i+1]], lut[p[i+2]]
	}
	return out, nil
}

