package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/semajyllek/image-transform-app/internal/imaging"
)

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestRunner_WaitBeforeSubmit(t *testing.T) {
	r := NewRunner(Env{}, zerolog.Nop())
	defer r.Close()

	if _, err := r.Wait(waitCtx(t)); !errors.Is(err, ErrNoResult) {
		t.Errorf("got %v, want ErrNoResult", err)
	}
	if r.Current() != nil {
		t.Error("Current should be nil before any recompute")
	}
}

func TestRunner_Submit(t *testing.T) {
	r := NewRunner(Env{}, zerolog.Nop())
	defer r.Close()

	src := testBuffer(t)
	stages := []Transform{Grayscale{}, Threshold{Value: 100}}
	gen := r.Submit(src, stages)
	if gen != 1 {
		t.Errorf("generation: got %d, want 1", gen)
	}

	out, err := r.Wait(waitCtx(t))
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	want, _ := Recompute(context.Background(), src, stages, Env{})
	if out.Generation != 1 || !out.Buffer.Equal(want) {
		t.Errorf("unexpected outcome: generation %d", out.Generation)
	}
	if r.Current() != out {
		t.Error("Current should return the published outcome")
	}
}

func TestRunner_LastSubmitWins(t *testing.T) {
	r := NewRunner(Env{}, zerolog.Nop())
	defer r.Close()

	src := testBuffer(t)
	for i := 0; i < 5; i++ {
		r.Submit(src, []Transform{Segmentation{Tolerance: 5, MinSize: 2}, Sobel{}})
	}
	last := []Transform{Brightness{Value: 30}}
	gen := r.Submit(src, last)

	out, err := r.Wait(waitCtx(t))
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if out.Generation != gen {
		t.Errorf("generation: got %d, want %d", out.Generation, gen)
	}
	want, _ := Recompute(context.Background(), src, last, Env{})
	if !out.Buffer.Equal(want) {
		t.Error("published buffer is not the last submission's result")
	}
}

func TestRunner_FailureKeepsPrevious(t *testing.T) {
	r := NewRunner(Env{}, zerolog.Nop())
	defer r.Close()

	r.Submit(testBuffer(t), []Transform{Grayscale{}})
	first, err := r.Wait(waitCtx(t))
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}

	bad := &imaging.PixelBuffer{Width: 3, Height: 3, Pix: make([]byte, 4)}
	r.Submit(bad, []Transform{Grayscale{}})
	out, err := r.Wait(waitCtx(t))
	if !errors.Is(err, imaging.ErrInvalidBuffer) {
		t.Errorf("got %v, want ErrInvalidBuffer", err)
	}
	if out != first {
		t.Error("failed recompute replaced the published outcome")
	}
	if r.Current() != first {
		t.Error("Current changed after a failed recompute")
	}
}

func TestRunner_WaitContextDone(t *testing.T) {
	r := NewRunner(Env{}, zerolog.Nop())
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Either the recompute already finished or Wait sees the cancelled
	// context; both are valid, but Wait must return.
	r.Submit(testBuffer(t), []Transform{Sobel{}})
	if _, err := r.Wait(ctx); err != nil && !errors.Is(err, context.Canceled) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRunner_CloseIdempotent(t *testing.T) {
	r := NewRunner(Env{}, zerolog.Nop())
	r.Submit(testBuffer(t), []Transform{Grayscale{}})
	r.Close()
	r.Close()
}
