package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/semajyllek/image-transform-app/internal/imaging"
)

// ErrNoResult is returned by Wait before anything has been submitted.
var ErrNoResult = errors.New("no recompute submitted")

// Outcome is a published recompute result.
type Outcome struct {
	Generation uint64
	Buffer     *imaging.PixelBuffer
}

// Runner recomputes pipelines in the background for interactive use.
//
// Each Submit cancels the recompute in flight and starts a new one. Only the
// most recent submission may publish: a recompute that was superseded
// before finishing is discarded, and a failed recompute leaves the last
// published buffer in place.
type Runner struct {
	env Env
	log zerolog.Logger

	mu        sync.Mutex
	submitted uint64
	finished  uint64
	cancel    context.CancelFunc
	current   *Outcome
	err       error
	notify    chan struct{}
}

// NewRunner creates an idle runner.
func NewRunner(env Env, log zerolog.Logger) *Runner {
	return &Runner{env: env, log: log, notify: make(chan struct{})}
}

// Submit starts recomputing stages over src and returns the generation
// number of this submission. stages is copied.
func (r *Runner) Submit(src *imaging.PixelBuffer, stages []Transform) uint64 {
	stages = append([]Transform(nil), stages...)
	ctx, cancel := context.WithCancel(context.Background())

	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.submitted++
	gen := r.submitted
	r.cancel = cancel
	r.broadcastLocked()
	r.mu.Unlock()

	go r.run(ctx, cancel, gen, src, stages)
	return gen
}

func (r *Runner) run(ctx context.Context, cancel context.CancelFunc, gen uint64, src *imaging.PixelBuffer, stages []Transform) {
	defer cancel()
	start := time.Now()
	buf, err := Recompute(ctx, src, stages, r.env)

	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.submitted {
		r.log.Debug().Uint64("generation", gen).Msg("discarding superseded recompute")
		return
	}
	r.cancel = nil
	r.finished = gen
	r.err = err
	if err != nil {
		r.log.Error().Err(err).Uint64("generation", gen).Msg("recompute failed")
	} else {
		r.current = &Outcome{Generation: gen, Buffer: buf}
		r.log.Debug().
			Uint64("generation", gen).
			Int("stages", len(stages)).
			Dur("elapsed", time.Since(start)).
			Msg("recompute published")
	}
	r.broadcastLocked()
}

func (r *Runner) broadcastLocked() {
	close(r.notify)
	r.notify = make(chan struct{})
}

// Wait blocks until the latest submission has finished and returns the
// published outcome. If that recompute failed, its error is returned along
// with the previously published outcome, which may be nil.
func (r *Runner) Wait(ctx context.Context) (*Outcome, error) {
	for {
		r.mu.Lock()
		if r.submitted == 0 {
			r.mu.Unlock()
			return nil, ErrNoResult
		}
		if r.finished == r.submitted {
			out, err := r.current, r.err
			r.mu.Unlock()
			return out, err
		}
		ch := r.notify
		r.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Current returns the last published outcome without waiting. It is nil
// until a recompute succeeds.
func (r *Runner) Current() *Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Close cancels any recompute in flight.
func (r *Runner) Close() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.mu.Unlock()
}
