// Package detection provides edge detection over pixel buffers.
//
// # Algorithms
//
//   - Sobel: gradient magnitude of the luminance image. Interior pixels hold
//     sqrt(gx² + gy²) saturated at 255; the one pixel border is black.
//   - Canny: 5x5 Gaussian blur, Sobel magnitude, double thresholding into
//     none/weak/strong and hysteresis. The output is binary (0 or 255).
//
// Both produce fully opaque images of the input's size.
//
// # Hysteresis
//
// By default hysteresis is a single pass: a weak pixel survives only if one
// of its eight neighbors was strong before the pass started. Setting
// CannyOptions.FixedPoint repeats the pass until nothing changes, which
// keeps whole weak chains connected to a strong pixel.
package detection
