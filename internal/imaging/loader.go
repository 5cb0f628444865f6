package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/disintegration/imaging"
)

// BufferCache provides thread-safe caching of decoded pixel buffers to avoid
// redundant disk reads and decodes.
//
// Entries are keyed by file path and the max dimension they were loaded
// with. Cached buffers are shared; callers must treat them as read-only,
// which every operator in this module already does.
//
// # Example Usage
//
//	cache := imaging.NewBufferCache()
//	buf, err := cache.Load("/path/to/image.png", 0)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cache.Evict("/path/to/image.png") // Optional: free memory
type BufferCache struct {
	mu      sync.RWMutex
	buffers map[cacheKey]*PixelBuffer
}

type cacheKey struct {
	path   string
	maxDim int
}

// NewBufferCache creates and initializes a new empty buffer cache.
func NewBufferCache() *BufferCache {
	return &BufferCache{
		buffers: make(map[cacheKey]*PixelBuffer),
	}
}

// Load retrieves a buffer from the cache or decodes it from disk.
//
// Parameters:
//   - path: File path to the image. PNG, JPEG, GIF, BMP and TIFF are
//     supported. EXIF orientation is applied.
//   - maxDim: When > 0, images larger than maxDim in either direction are
//     downscaled to fit, preserving aspect ratio.
//
// # Errors
//
//   - Returns error if the file does not exist or cannot be decoded
//   - Returns ErrResourceExhausted if the decoded image is too large
func (c *BufferCache) Load(path string, maxDim int) (*PixelBuffer, error) {
	key := cacheKey{path: path, maxDim: maxDim}

	c.mu.RLock()
	if buf, ok := c.buffers[key]; ok {
		c.mu.RUnlock()
		return buf, nil
	}
	c.mu.RUnlock()

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	buf, err := FromImage(fit(img, maxDim))
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.buffers[key] = buf
	c.mu.Unlock()

	return buf, nil
}

// Clear removes all buffers from the cache.
func (c *BufferCache) Clear() {
	c.mu.Lock()
	c.buffers = make(map[cacheKey]*PixelBuffer)
	c.mu.Unlock()
}

// Evict removes every cached buffer loaded from path.
func (c *BufferCache) Evict(path string) {
	c.mu.Lock()
	for k := range c.buffers {
		if k.path == path {
			delete(c.buffers, k)
		}
	}
	c.mu.Unlock()
}

// Decode reads an encoded image from r into a PixelBuffer.
func Decode(r io.Reader) (*PixelBuffer, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return FromImage(img)
}

// FromImage converts any image.Image into a straight-alpha RGBA8 buffer.
func FromImage(img image.Image) (*PixelBuffer, error) {
	b := img.Bounds()
	if _, err := byteLen(b.Dx(), b.Dy()); err != nil {
		return nil, err
	}
	nrgba := imaging.Clone(img)
	buf := &PixelBuffer{Width: b.Dx(), Height: b.Dy(), Pix: nrgba.Pix}
	if nrgba.Stride != b.Dx()*4 {
		buf.Pix = make([]byte, b.Dx()*b.Dy()*4)
		for y := 0; y < b.Dy(); y++ {
			copy(buf.Pix[y*b.Dx()*4:(y+1)*b.Dx()*4], nrgba.Pix[y*nrgba.Stride:])
		}
	}
	return buf, nil
}

func fit(img image.Image, maxDim int) image.Image {
	if maxDim <= 0 {
		return img
	}
	b := img.Bounds()
	if b.Dx() <= maxDim && b.Dy() <= maxDim {
		return img
	}
	return imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
}

// EncodedImage is a buffer encoded as base64 PNG.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EncodePNG encodes buf as a base64 PNG.
func EncodePNG(buf *PixelBuffer) (*EncodedImage, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	var b bytes.Buffer
	if err := imaging.Encode(&b, buf.Image(), imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return &EncodedImage{
		Width:       buf.Width,
		Height:      buf.Height,
		ImageBase64: base64.StdEncoding.EncodeToString(b.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// Save writes buf to path. The format follows the extension: ".jpg" and
// ".jpeg" write JPEG at quality 95, ".bmp" writes BMP, anything else PNG.
func Save(path string, buf *PixelBuffer) error {
	if err := buf.Validate(); err != nil {
		return err
	}
	var enc imgio.Encoder
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		enc = imgio.JPEGEncoder(95)
	case ".bmp":
		enc = imgio.BMPEncoder()
	default:
		enc = imgio.PNGEncoder()
	}
	if err := imgio.Save(path, buf.Image(), enc); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	return nil
}

// ImageInfo contains metadata about a loaded image file.
type ImageInfo struct {
	// Width is the buffer width in pixels (after any downscale).
	Width int `json:"width"`

	// Height is the buffer height in pixels (after any downscale).
	Height int `json:"height"`

	// Format is derived from the file extension: "png", "jpeg", "gif",
	// "bmp", "tiff" or "unknown".
	Format string `json:"format"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads an image through the cache and reports its metadata.
func LoadImageInfo(cache *BufferCache, path string, maxDim int) (*ImageInfo, error) {
	buf, err := cache.Load(path, maxDim)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	format := "unknown"
	if f, err := imaging.FormatFromFilename(path); err == nil {
		format = strings.ToLower(f.String())
	}

	return &ImageInfo{
		Width:         buf.Width,
		Height:        buf.Height,
		Format:        format,
		FileSizeBytes: stat.Size(),
	}, nil
}

// DimensionsResult contains the width and height of an image.
type DimensionsResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// GetDimensions returns the dimensions of an image without additional metadata.
func GetDimensions(cache *BufferCache, path string) (*DimensionsResult, error) {
	buf, err := cache.Load(path, 0)
	if err != nil {
		return nil, err
	}
	return &DimensionsResult{Width: buf.Width, Height: buf.Height}, nil
}
