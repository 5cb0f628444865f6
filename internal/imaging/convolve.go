package imaging

import "fmt"

// Kernel is a square convolution kernel stored row-major.
//
// Weights are summed against the pixels first and the total is divided by
// Divisor once, so integer kernels stay exact. A zero Divisor means 1.
type Kernel struct {
	Weights []float64
	Radius  int
	Divisor float64
}

// Size returns the side length 2*Radius+1.
func (k Kernel) Size() int { return 2*k.Radius + 1 }

func (k Kernel) divisor() float64 {
	if k.Divisor == 0 {
		return 1
	}
	return k.Divisor
}

// GaussianKernel5 is the 5x5 Gaussian (sigma ~1.4) used before edge
// detection. Its weights sum to 159, which is also its divisor.
var GaussianKernel5 = Kernel{
	Radius:  2,
	Divisor: 159,
	Weights: []float64{
		2, 4, 5, 4, 2,
		4, 9, 12, 9, 4,
		5, 12, 15, 12, 5,
		4, 9, 12, 9, 4,
		2, 4, 5, 4, 2,
	},
}

// LaplacianKernel is the 4-neighbor Laplacian [0,-1,0; -1,4,-1; 0,-1,0].
// Its response on a flat area is exactly zero.
var LaplacianKernel = Kernel{
	Radius: 1,
	Weights: []float64{
		0, -1, 0,
		-1, 4, -1,
		0, -1, 0,
	},
}

// ApplyKernel convolves the selected channels of buf with kernel and returns
// a new buffer.
//
// Only pixels whose whole neighborhood lies inside the image are computed.
// Everything else, including the border ring of width kernel.Radius and any
// unselected channel, is copied through from buf unchanged; callers that want
// a different border policy overwrite it afterwards. Each sum is clamped to
// [0,255] and truncated after the division by kernel.Divisor; no other
// rounding is applied.
func ApplyKernel(buf *PixelBuffer, kernel Kernel, channels Channel) (*PixelBuffer, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	if err := checkKernel(kernel); err != nil {
		return nil, err
	}

	out := buf.Clone()
	for y := kernel.Radius; y < buf.Height-kernel.Radius; y++ {
		for x := kernel.Radius; x < buf.Width-kernel.Radius; x++ {
			dst := buf.Offset(x, y)
			for c := 0; c < 4; c++ {
				if channels&(1<<c) != 0 {
					out.Pix[dst+c] = ClampByte(convolveAt(buf, kernel, x, y, c))
				}
			}
		}
	}
	return out, nil
}

// KernelResponse returns the raw, unclamped (but divided) sums of kernel over
// channel c (0=R .. 3=A), one value per pixel in row-major order. Pixels
// within kernel.Radius of the border are left at 0.
func KernelResponse(buf *PixelBuffer, kernel Kernel, c int) ([]float64, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	if err := checkKernel(kernel); err != nil {
		return nil, err
	}
	if c < 0 || c > 3 {
		return nil, fmt.Errorf("channel index %d out of range", c)
	}
	resp := make([]float64, buf.Width*buf.Height)
	for y := kernel.Radius; y < buf.Height-kernel.Radius; y++ {
		for x := kernel.Radius; x < buf.Width-kernel.Radius; x++ {
			resp[y*buf.Width+x] = convolveAt(buf, kernel, x, y, c)
		}
	}
	return resp, nil
}

func checkKernel(k Kernel) error {
	size := k.Size()
	if k.Divisor < 0 {
		return fmt.Errorf("kernel divisor %g is negative", k.Divisor)
	}
	if k.Radius < 0 || len(k.Weights) != size*size {
		return fmt.Errorf("kernel has %d weights, want %d for radius %d",
			len(k.Weights), size*size, k.Radius)
	}
	return nil
}

func convolveAt(buf *PixelBuffer, k Kernel, x, y, c int) float64 {
	var sum float64
	size := k.Size()
	ki := 0
	for ky := -k.Radius; ky <= k.Radius; ky++ {
		row := buf.Offset(x-k.Radius, y+ky) + c
		for kx := 0; kx < size; kx++ {
			sum += float64(buf.Pix[row+kx*4]) * k.Weights[ki]
			ki++
		}
	}
	return sum / k.divisor()
}
