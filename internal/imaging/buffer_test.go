package imaging

import (
	"errors"
	"sync"
	"testing"
)

// solidBuffer creates a buffer filled with a single RGBA color.
func solidBuffer(t *testing.T, width, height int, r, g, b, a uint8) *PixelBuffer {
	t.Helper()
	buf, err := NewBuffer(width, height)
	if err != nil {
		t.Fatalf("NewBuffer(%d, %d) failed: %v", width, height, err)
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			buf.SetRGBA(x, y, r, g, b, a)
		}
	}
	return buf
}

// patternBuffer creates a buffer where every pixel has a different color
// and a varying alpha.
func patternBuffer(t *testing.T, width, height int) *PixelBuffer {
	t.Helper()
	buf, err := NewBuffer(width, height)
	if err != nil {
		t.Fatalf("NewBuffer(%d, %d) failed: %v", width, height, err)
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			buf.SetRGBA(x, y, uint8(x*37+y*11), uint8(x*5+y*53), uint8(255-x*19-y*7), uint8(100+x+y))
		}
	}
	return buf
}

func TestNewBuffer(t *testing.T) {
	buf, err := NewBuffer(3, 2)
	if err != nil {
		t.Fatalf("NewBuffer failed: %v", err)
	}
	if len(buf.Pix) != 24 {
		t.Errorf("len(Pix): got %d, want 24", len(buf.Pix))
	}
	if err := buf.Validate(); err != nil {
		t.Errorf("fresh buffer should be valid: %v", err)
	}
}

func TestNewBuffer_Empty(t *testing.T) {
	buf, err := NewBuffer(0, 0)
	if err != nil {
		t.Fatalf("NewBuffer(0, 0) failed: %v", err)
	}
	if len(buf.Pix) != 0 {
		t.Errorf("len(Pix): got %d, want 0", len(buf.Pix))
	}
}

func TestNewBuffer_Negative(t *testing.T) {
	_, err := NewBuffer(-1, 5)
	if !errors.Is(err, ErrInvalidBuffer) {
		t.Errorf("got %v, want ErrInvalidBuffer", err)
	}
}

func TestNewBuffer_ResourceExhausted(t *testing.T) {
	SetMaxPixels(100)
	defer SetMaxPixels(0)

	if _, err := NewBuffer(10, 10); err != nil {
		t.Errorf("100 pixels should be allowed: %v", err)
	}
	if _, err := NewBuffer(10, 11); !errors.Is(err, ErrResourceExhausted) {
		t.Errorf("110 pixels: got %v, want ErrResourceExhausted", err)
	}
}

func TestSetMaxPixels(t *testing.T) {
	defer SetMaxPixels(0)

	SetMaxPixels(1234)
	if got := MaxPixels(); got != 1234 {
		t.Errorf("MaxPixels: got %d, want 1234", got)
	}
	SetMaxPixels(-5)
	if got := MaxPixels(); got != DefaultMaxPixels {
		t.Errorf("after reset: got %d, want %d", got, DefaultMaxPixels)
	}
}

func TestSetMaxPixels_ConcurrentWithValidation(t *testing.T) {
	defer SetMaxPixels(0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			SetMaxPixels(1000 + n)
		}(i)
		go func() {
			defer wg.Done()
			buf, err := NewBuffer(10, 10)
			if err != nil {
				t.Errorf("NewBuffer failed: %v", err)
				return
			}
			if err := buf.Validate(); err != nil {
				t.Errorf("Validate failed: %v", err)
			}
		}()
	}
	wg.Wait()
}

func TestNewBuffer_Overflow(t *testing.T) {
	_, err := NewBuffer(1<<40, 1<<40)
	if !errors.Is(err, ErrResourceExhausted) {
		t.Errorf("got %v, want ErrResourceExhausted", err)
	}
}

func TestFromBytes(t *testing.T) {
	tests := []struct {
		name    string
		w, h, n int
		wantErr bool
	}{
		{"exact", 2, 2, 16, false},
		{"short", 2, 2, 15, true},
		{"long", 2, 2, 17, true},
		{"empty", 0, 0, 0, false},
		{"missing rows", 4, 4, 32, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromBytes(tt.w, tt.h, make([]byte, tt.n))
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidBuffer) {
					t.Errorf("got %v, want ErrInvalidBuffer", err)
				}
				var ibe *InvalidBufferError
				if !errors.As(err, &ibe) || ibe.Len != tt.n {
					t.Errorf("want *InvalidBufferError with Len %d, got %v", tt.n, err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidate_Nil(t *testing.T) {
	var buf *PixelBuffer
	if err := buf.Validate(); !errors.Is(err, ErrInvalidBuffer) {
		t.Errorf("nil buffer: got %v, want ErrInvalidBuffer", err)
	}
}

func TestClone_Independent(t *testing.T) {
	buf := solidBuffer(t, 2, 2, 10, 20, 30, 40)
	c := buf.Clone()
	c.SetRGBA(0, 0, 0, 0, 0, 0)

	if r, _, _, _ := buf.RGBA(0, 0); r != 10 {
		t.Errorf("clone write leaked into original: R=%d", r)
	}
	if !buf.Equal(solidBuffer(t, 2, 2, 10, 20, 30, 40)) {
		t.Error("original changed")
	}
}

func TestRGBA_Offset(t *testing.T) {
	buf := patternBuffer(t, 5, 4)
	buf.SetRGBA(3, 2, 1, 2, 3, 4)
	i := buf.Offset(3, 2)
	if i != (2*5+3)*4 {
		t.Errorf("Offset(3,2): got %d, want %d", i, (2*5+3)*4)
	}
	r, g, b, a := buf.RGBA(3, 2)
	if r != 1 || g != 2 || b != 3 || a != 4 {
		t.Errorf("RGBA(3,2): got (%d,%d,%d,%d), want (1,2,3,4)", r, g, b, a)
	}
}

func TestImage_SharesBytes(t *testing.T) {
	buf := solidBuffer(t, 3, 3, 50, 60, 70, 80)
	img := buf.Image()

	if img.Bounds().Dx() != 3 || img.Bounds().Dy() != 3 {
		t.Fatalf("bounds: got %v", img.Bounds())
	}
	c := img.NRGBAAt(1, 1)
	if c.R != 50 || c.G != 60 || c.B != 70 || c.A != 80 {
		t.Errorf("NRGBAAt(1,1): got %v", c)
	}

	buf.SetRGBA(1, 1, 1, 1, 1, 1)
	if img.NRGBAAt(1, 1).R != 1 {
		t.Error("Image should share the buffer's bytes")
	}
}

func TestClampByte(t *testing.T) {
	tests := []struct {
		in   float64
		want uint8
	}{
		{-10, 0},
		{0, 0},
		{0.99, 0},
		{127.9, 127},
		{255, 255},
		{300, 255},
	}

	for _, tt := range tests {
		if got := ClampByte(tt.in); got != tt.want {
			t.Errorf("ClampByte(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
