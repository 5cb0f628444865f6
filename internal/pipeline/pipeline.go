package pipeline

import (
	"context"
	"fmt"

	"github.com/semajyllek/image-transform-app/internal/imaging"
)

// Pipeline is an ordered list of transforms; insertion order is application
// order. A Pipeline is not safe for concurrent mutation.
type Pipeline struct {
	stages []Transform
}

// New returns a pipeline holding ts in order.
func New(ts ...Transform) *Pipeline {
	return &Pipeline{stages: append([]Transform(nil), ts...)}
}

// Append adds t as the last stage.
func (p *Pipeline) Append(t Transform) {
	p.stages = append(p.stages, t)
}

// RemoveAt deletes the stage at index i.
func (p *Pipeline) RemoveAt(i int) error {
	if i < 0 || i >= len(p.stages) {
		return fmt.Errorf("stage index %d out of range [0,%d)", i, len(p.stages))
	}
	p.stages = append(p.stages[:i:i], p.stages[i+1:]...)
	return nil
}

// Clear removes every stage.
func (p *Pipeline) Clear() {
	p.stages = nil
}

// Len returns the number of stages.
func (p *Pipeline) Len() int { return len(p.stages) }

// Empty reports whether the pipeline has no stages.
func (p *Pipeline) Empty() bool { return len(p.stages) == 0 }

// Stages returns a copy of the stage list.
func (p *Pipeline) Stages() []Transform {
	return append([]Transform(nil), p.stages...)
}

// Recompute applies every stage, in order, starting from src. The result
// depends only on src and the stages; src itself is never modified and is
// never returned, so an empty pipeline yields a copy of src.
//
// ctx is checked between stages. A cancelled recompute returns ctx.Err()
// and no buffer.
func Recompute(ctx context.Context, src *imaging.PixelBuffer, stages []Transform, env Env) (*imaging.PixelBuffer, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	cur := src
	for i, t := range stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, err := Apply(t, cur, env)
		if err != nil {
			return nil, fmt.Errorf("stage %d (%s): %w", i, t.Kind(), err)
		}
		cur = out
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cur == src {
		return src.Clone(), nil
	}
	return cur, nil
}
