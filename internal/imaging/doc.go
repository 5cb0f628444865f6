// Package imaging provides the pixel buffer and the per-pixel operations
// the transform pipeline is built from.
//
// A PixelBuffer holds Width*Height pixels in row-major order, four bytes
// per pixel (R, G, B, A) with straight (non-premultiplied) alpha. Every
// operation validates the length invariant first and returns a new buffer;
// inputs are never modified.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//
// # Operations
//
//   - Color: HSV/RGB conversion, luminance, color distance and palettes
//   - Convolution: square kernels over selected channels, interior pixels only
//   - Adjustments: contrast, brightness, sharpen, grayscale, threshold
//   - I/O: decoding, caching, PNG/JPEG/BMP output and base64 encoding
//
// # Rounding
//
// Convolution results are clamped to [0,255] and truncated. Color
// conversions and grayscale round to the nearest byte, so grayscale is
// idempotent.
//
// # Thread Safety
//
// The BufferCache type is safe for concurrent use. Buffers handed out by
// the cache are shared and must be treated as read-only. Individual
// operations are stateless and can be called concurrently.
//
// # Error Handling
//
// Functions return errors for invalid inputs such as:
//   - Buffers whose byte length does not match their dimensions (ErrInvalidBuffer)
//   - Dimensions above the configured pixel ceiling (ErrResourceExhausted)
//   - Coordinates outside image bounds
//   - File I/O and encoding errors
package imaging
