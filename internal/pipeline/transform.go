package pipeline

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"

	"github.com/semajyllek/image-transform-app/internal/detection"
	"github.com/semajyllek/image-transform-app/internal/imaging"
	"github.com/semajyllek/image-transform-app/internal/segmentation"
)

// Kind is the wire name of a transform.
type Kind string

const (
	KindContrast     Kind = "contrast"
	KindBrightness   Kind = "brightness"
	KindSharpen      Kind = "sharpen"
	KindGrayscale    Kind = "grayscale"
	KindThreshold    Kind = "threshold"
	KindSobel        Kind = "sobel"
	KindCanny        Kind = "canny"
	KindSegmentation Kind = "segmentation"
)

// Transform is one pipeline stage. The set of implementations is closed:
// Contrast, Brightness, Sharpen, Grayscale, Threshold, Sobel, Canny,
// Segmentation and Passthrough. Values are immutable once built.
type Transform interface {
	Kind() Kind
	transform()
}

// Contrast scales distance from mid-gray by Value/100 (0-200, 100 = identity).
type Contrast struct{ Value float64 }

// Brightness scales channels by Value percent (0-200, 100 = identity).
type Brightness struct{ Value float64 }

// Sharpen applies an unsharp kernel of strength Amount (0-10).
type Sharpen struct{ Amount float64 }

// Grayscale reduces to BT.601 luminance.
type Grayscale struct{}

// Threshold binarizes at Value (0-255).
type Threshold struct{ Value float64 }

// Sobel produces a gradient magnitude edge map.
type Sobel struct{}

// Canny produces a binary edge map with thresholds Low and High (0-255).
type Canny struct{ Low, High float64 }

// Segmentation recolors color-similar regions.
type Segmentation struct {
	Tolerance   float64
	MinSize     int
	ColorScheme segmentation.Scheme
}

// Passthrough stands for a stage whose kind is not recognized. It returns
// its input unchanged and keeps its original name and params so the
// pipeline round-trips through JSON.
type Passthrough struct {
	Name   string
	Params json.RawMessage
}

func (Contrast) Kind() Kind     { return KindContrast }
func (Brightness) Kind() Kind   { return KindBrightness }
func (Sharpen) Kind() Kind      { return KindSharpen }
func (Grayscale) Kind() Kind    { return KindGrayscale }
func (Threshold) Kind() Kind    { return KindThreshold }
func (Sobel) Kind() Kind        { return KindSobel }
func (Canny) Kind() Kind        { return KindCanny }
func (Segmentation) Kind() Kind { return KindSegmentation }

// Kind returns the unrecognized name as given.
func (p Passthrough) Kind() Kind { return Kind(p.Name) }

func (Contrast) transform()     {}
func (Brightness) transform()   {}
func (Sharpen) transform()      {}
func (Grayscale) transform()    {}
func (Threshold) transform()    {}
func (Sobel) transform()        {}
func (Canny) transform()        {}
func (Segmentation) transform() {}
func (Passthrough) transform()  {}

// Env carries settings shared by every stage of a recompute.
type Env struct {
	// FixedPointHysteresis makes Canny iterate hysteresis to a fixed point.
	FixedPointHysteresis bool

	// NewRand, when set, supplies a generator for each stage that needs
	// randomness. Nil uses the process-wide generator.
	NewRand func() *rand.Rand
}

func (e Env) rand() *rand.Rand {
	if e.NewRand == nil {
		return nil
	}
	return e.NewRand()
}

// Apply runs a single transform on buf and returns a new buffer. buf is
// never modified. A Passthrough returns buf itself.
func Apply(t Transform, buf *imaging.PixelBuffer, env Env) (*imaging.PixelBuffer, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	switch t := t.(type) {
	case Contrast:
		return imaging.AdjustContrast(buf, t.Value)
	case Brightness:
		return imaging.AdjustBrightness(buf, t.Value)
	case Sharpen:
		return imaging.Sharpen(buf, t.Amount)
	case Grayscale:
		return imaging.Grayscale(buf)
	case Threshold:
		return imaging.Threshold(buf, t.Value)
	case Sobel:
		return detection.Sobel(buf)
	case Canny:
		return detection.Canny(buf, detection.CannyOptions{
			Low:        t.Low,
			High:       t.High,
			FixedPoint: env.FixedPointHysteresis,
		})
	case Segmentation:
		res, err := segmentation.Segment(buf, segmentation.Options{
			Tolerance: t.Tolerance,
			MinSize:   t.MinSize,
			Scheme:    t.ColorScheme,
			Rand:      env.rand(),
		})
		if err != nil {
			return nil, err
		}
		return res.Buffer, nil
	case Passthrough:
		return buf, nil
	default:
		panic(fmt.Sprintf("pipeline: unhandled transform %T", t))
	}
}

// ValidationError reports a transform rejected in strict mode.
type ValidationError struct {
	Kind   Kind
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid %q transform: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("invalid %q transform: %s %s", e.Kind, e.Field, e.Reason)
}

// Validate checks t against the declared parameter ranges. Recompute never
// calls it; callers that want strict behavior validate before appending.
func Validate(t Transform) error {
	switch t := t.(type) {
	case Contrast:
		return inRange(t.Kind(), "value", t.Value, 0, 200)
	case Brightness:
		return inRange(t.Kind(), "value", t.Value, 0, 200)
	case Sharpen:
		return inRange(t.Kind(), "amount", t.Amount, 0, 10)
	case Threshold:
		return inRange(t.Kind(), "value", t.Value, 0, 255)
	case Canny:
		if err := inRange(t.Kind(), "low", t.Low, 0, 255); err != nil {
			return err
		}
		if err := inRange(t.Kind(), "high", t.High, 0, 255); err != nil {
			return err
		}
		if t.High < t.Low {
			return &ValidationError{Kind: t.Kind(), Field: "high", Reason: "must not be below low"}
		}
	case Segmentation:
		if err := inRange(t.Kind(), "tolerance", t.Tolerance, 1, 50); err != nil {
			return err
		}
		if t.MinSize < 1 {
			return &ValidationError{Kind: t.Kind(), Field: "minSize", Reason: "must be at least 1"}
		}
		if !t.ColorScheme.Known() {
			return &ValidationError{Kind: t.Kind(), Field: "colorScheme",
				Reason: fmt.Sprintf("unknown scheme %q", t.ColorScheme)}
		}
	case Passthrough:
		return &ValidationError{Kind: t.Kind(), Reason: "unknown transform kind"}
	}
	return nil
}

func inRange(k Kind, field string, v, lo, hi float64) error {
	if v < lo || v > hi {
		return &ValidationError{Kind: k, Field: field, Reason: fmt.Sprintf("%g outside [%g, %g]", v, lo, hi)}
	}
	return nil
}
