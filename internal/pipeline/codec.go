package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/semajyllek/image-transform-app/internal/segmentation"
)

// Stage is the wire shape of one transform: {"kind": ..., "params": {...}}.
type Stage struct {
	Kind   string          `json:"kind"`
	Params json.RawMessage `json:"params,omitempty"`
}

type valueParams struct {
	Value *float64 `json:"value,omitempty"`
}

type sharpenParams struct {
	Amount *float64 `json:"amount,omitempty"`
}

type cannyParams struct {
	Low  *float64 `json:"low,omitempty"`
	High *float64 `json:"high,omitempty"`
}

type segmentationParams struct {
	Tolerance   *float64 `json:"tolerance,omitempty"`
	MinSize     *int     `json:"minSize,omitempty"`
	ColorScheme *string  `json:"colorScheme,omitempty"`
}

// Defaults applied when a param is missing from the wire form.
const (
	DefaultContrast    = 100
	DefaultBrightness  = 100
	DefaultSharpen     = 0
	DefaultThreshold   = 128
	DefaultCannyLow    = 50
	DefaultCannyHigh   = 150
	DefaultTolerance   = 10
	DefaultMinSize     = 50
	DefaultColorScheme = segmentation.Rainbow
)

// DecodeStage turns one wire stage into a Transform. Unknown kinds become a
// Passthrough; with strict set they fail with a *ValidationError, as do
// out-of-range params.
func DecodeStage(s Stage, strict bool) (Transform, error) {
	t, err := decodeStage(s)
	if err != nil {
		return nil, fmt.Errorf("decoding %q params: %w", s.Kind, err)
	}
	if strict {
		if err := Validate(t); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func decodeStage(s Stage) (Transform, error) {
	switch Kind(s.Kind) {
	case KindContrast, KindBrightness, KindThreshold:
		var p valueParams
		if err := unmarshalParams(s.Params, &p); err != nil {
			return nil, err
		}
		switch Kind(s.Kind) {
		case KindContrast:
			return Contrast{Value: orDefault(p.Value, DefaultContrast)}, nil
		case KindBrightness:
			return Brightness{Value: orDefault(p.Value, DefaultBrightness)}, nil
		default:
			return Threshold{Value: orDefault(p.Value, DefaultThreshold)}, nil
		}
	case KindSharpen:
		var p sharpenParams
		if err := unmarshalParams(s.Params, &p); err != nil {
			return nil, err
		}
		return Sharpen{Amount: orDefault(p.Amount, DefaultSharpen)}, nil
	case KindGrayscale:
		return Grayscale{}, nil
	case KindSobel:
		return Sobel{}, nil
	case KindCanny:
		var p cannyParams
		if err := unmarshalParams(s.Params, &p); err != nil {
			return nil, err
		}
		return Canny{Low: orDefault(p.Low, DefaultCannyLow), High: orDefault(p.High, DefaultCannyHigh)}, nil
	case KindSegmentation:
		var p segmentationParams
		if err := unmarshalParams(s.Params, &p); err != nil {
			return nil, err
		}
		seg := Segmentation{
			Tolerance:   orDefault(p.Tolerance, DefaultTolerance),
			MinSize:     DefaultMinSize,
			ColorScheme: DefaultColorScheme,
		}
		if p.MinSize != nil {
			seg.MinSize = *p.MinSize
		}
		if p.ColorScheme != nil {
			seg.ColorScheme = segmentation.Scheme(*p.ColorScheme)
		}
		return seg, nil
	default:
		return Passthrough{Name: s.Kind, Params: s.Params}, nil
	}
}

// EncodeStage is the inverse of DecodeStage.
func EncodeStage(t Transform) (Stage, error) {
	var params any
	switch t := t.(type) {
	case Contrast:
		params = valueParams{Value: &t.Value}
	case Brightness:
		params = valueParams{Value: &t.Value}
	case Threshold:
		params = valueParams{Value: &t.Value}
	case Sharpen:
		params = sharpenParams{Amount: &t.Amount}
	case Canny:
		params = cannyParams{Low: &t.Low, High: &t.High}
	case Segmentation:
		scheme := string(t.ColorScheme)
		params = segmentationParams{Tolerance: &t.Tolerance, MinSize: &t.MinSize, ColorScheme: &scheme}
	case Passthrough:
		return Stage{Kind: t.Name, Params: t.Params}, nil
	}

	s := Stage{Kind: string(t.Kind())}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return Stage{}, err
		}
		s.Params = raw
	}
	return s, nil
}

// Decode parses a JSON array of stages.
func Decode(data []byte, strict bool) ([]Transform, error) {
	var stages []Stage
	if err := json.Unmarshal(data, &stages); err != nil {
		return nil, fmt.Errorf("failed to parse pipeline: %w", err)
	}
	return DecodeStages(stages, strict)
}

// DecodeStages decodes already-parsed wire stages.
func DecodeStages(stages []Stage, strict bool) ([]Transform, error) {
	out := make([]Transform, 0, len(stages))
	for i, s := range stages {
		t, err := DecodeStage(s, strict)
		if err != nil {
			return nil, fmt.Errorf("stage %d: %w", i, err)
		}
		out = append(out, t)
	}
	return out, nil
}

// Encode renders transforms as a JSON array of stages.
func Encode(ts []Transform) ([]byte, error) {
	stages, err := EncodeStages(ts)
	if err != nil {
		return nil, err
	}
	return json.Marshal(stages)
}

// EncodeStages converts transforms to their wire stages.
func EncodeStages(ts []Transform) ([]Stage, error) {
	stages := make([]Stage, 0, len(ts))
	for _, t := range ts {
		s, err := EncodeStage(t)
		if err != nil {
			return nil, err
		}
		stages = append(stages, s)
	}
	return stages, nil
}

func unmarshalParams(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, v)
}

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
