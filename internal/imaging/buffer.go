package imaging

import (
	"image"
	"math"
	"sync/atomic"
)

// DefaultMaxPixels bounds the size of any buffer created by this package
// unless SetMaxPixels overrides it.
const DefaultMaxPixels = 50_000_000

var maxPixels atomic.Int64

func init() { maxPixels.Store(DefaultMaxPixels) }

// SetMaxPixels changes the pixel-count ceiling enforced by NewBuffer and
// Validate. Values <= 0 restore DefaultMaxPixels.
//
// The ceiling is process configuration, not per-call state: set it once at
// start-up before any buffer is created. Reads and writes are atomic, so a
// late call is race-free, but operations already running may see either
// value.
func SetMaxPixels(n int) {
	if n <= 0 {
		n = DefaultMaxPixels
	}
	maxPixels.Store(int64(n))
}

// MaxPixels returns the current pixel-count ceiling.
func MaxPixels() int { return int(maxPixels.Load()) }

// Channel selects which components of a pixel an operator touches.
type Channel uint8

const (
	ChannelR Channel = 1 << iota
	ChannelG
	ChannelB
	ChannelA

	ChannelsRGB  = ChannelR | ChannelG | ChannelB
	ChannelsRGBA = ChannelsRGB | ChannelA
)

// PixelBuffer is a row-major RGBA8 image with straight (non-premultiplied)
// alpha. len(Pix) is always Width*Height*4 for a valid buffer.
type PixelBuffer struct {
	Width  int
	Height int
	Pix    []byte
}

// NewBuffer allocates a zeroed buffer of the given size.
//
// Returns ErrResourceExhausted if the pixel count overflows or exceeds the
// configured ceiling, and an *InvalidBufferError for negative dimensions.
func NewBuffer(width, height int) (*PixelBuffer, error) {
	if width < 0 || height < 0 {
		return nil, &InvalidBufferError{Width: width, Height: height, Len: 0}
	}
	n, err := byteLen(width, height)
	if err != nil {
		return nil, err
	}
	return &PixelBuffer{Width: width, Height: height, Pix: make([]byte, n)}, nil
}

// FromBytes wraps an existing RGBA8 byte slice after validating its length.
// The slice is not copied.
func FromBytes(width, height int, pix []byte) (*PixelBuffer, error) {
	b := &PixelBuffer{Width: width, Height: height, Pix: pix}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func byteLen(width, height int) (int, error) {
	if width != 0 && height > math.MaxInt/4/width {
		return 0, ErrResourceExhausted
	}
	if int64(width)*int64(height) > maxPixels.Load() {
		return 0, ErrResourceExhausted
	}
	return width * height * 4, nil
}

// Validate checks the length invariant. A nil buffer is invalid.
func (b *PixelBuffer) Validate() error {
	if b == nil {
		return &InvalidBufferError{}
	}
	if b.Width < 0 || b.Height < 0 {
		return &InvalidBufferError{Width: b.Width, Height: b.Height, Len: len(b.Pix)}
	}
	n, err := byteLen(b.Width, b.Height)
	if err != nil {
		return err
	}
	if len(b.Pix) != n {
		return &InvalidBufferError{Width: b.Width, Height: b.Height, Len: len(b.Pix)}
	}
	return nil
}

// Clone returns a deep copy.
func (b *PixelBuffer) Clone() *PixelBuffer {
	pix := make([]byte, len(b.Pix))
	copy(pix, b.Pix)
	return &PixelBuffer{Width: b.Width, Height: b.Height, Pix: pix}
}

// Offset returns the index of the R byte of pixel (x, y).
func (b *PixelBuffer) Offset(x, y int) int {
	return (y*b.Width + x) * 4
}

// RGBA returns the four channels of pixel (x, y).
func (b *PixelBuffer) RGBA(x, y int) (r, g, bl, a uint8) {
	i := b.Offset(x, y)
	return b.Pix[i], b.Pix[i+1], b.Pix[i+2], b.Pix[i+3]
}

// SetRGBA writes the four channels of pixel (x, y).
func (b *PixelBuffer) SetRGBA(x, y int, r, g, bl, a uint8) {
	i := b.Offset(x, y)
	b.Pix[i], b.Pix[i+1], b.Pix[i+2], b.Pix[i+3] = r, g, bl, a
}

// Equal reports whether two buffers have the same size and bytes.
func (b *PixelBuffer) Equal(o *PixelBuffer) bool {
	if b.Width != o.Width || b.Height != o.Height || len(b.Pix) != len(o.Pix) {
		return false
	}
	for i := range b.Pix {
		if b.Pix[i] != o.Pix[i] {
			return false
		}
	}
	return true
}

// Image exposes the buffer as an *image.NRGBA sharing the same bytes.
func (b *PixelBuffer) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    b.Pix,
		Stride: b.Width * 4,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}

// ClampByte saturates v into [0,255] and truncates toward zero.
func ClampByte(v float64) uint8 {
	if v <= 0 || v != v {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
