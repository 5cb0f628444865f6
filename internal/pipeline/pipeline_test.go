package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/semajyllek/image-transform-app/internal/imaging"
)

func TestPipeline_Editing(t *testing.T) {
	p := New(Grayscale{}, Sobel{})
	if p.Len() != 2 || p.Empty() {
		t.Fatalf("Len: got %d", p.Len())
	}

	p.Append(Threshold{Value: 90})
	p.Append(Contrast{Value: 120})
	if err := p.RemoveAt(1); err != nil {
		t.Fatalf("RemoveAt failed: %v", err)
	}

	want := []Transform{Grayscale{}, Threshold{Value: 90}, Contrast{Value: 120}}
	got := p.Stages()
	if len(got) != len(want) {
		t.Fatalf("stages: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("stage %d: got %v, want %v", i, got[i], want[i])
		}
	}

	p.Clear()
	if !p.Empty() || p.Len() != 0 {
		t.Errorf("after Clear: Len %d", p.Len())
	}
}

func TestPipeline_RemoveAtOutOfRange(t *testing.T) {
	p := New(Grayscale{})
	for _, i := range []int{-1, 1, 5} {
		if err := p.RemoveAt(i); err == nil {
			t.Errorf("RemoveAt(%d) should fail", i)
		}
	}
	if p.Len() != 1 {
		t.Errorf("failed removals changed the pipeline: Len %d", p.Len())
	}
}

func TestPipeline_StagesIsCopy(t *testing.T) {
	p := New(Grayscale{}, Sobel{})
	s := p.Stages()
	s[0] = Threshold{Value: 1}
	if p.Stages()[0] != (Grayscale{}) {
		t.Error("modifying Stages() result changed the pipeline")
	}

	src := []Transform{Sobel{}}
	q := New(src...)
	src[0] = Grayscale{}
	if q.Stages()[0] != (Sobel{}) {
		t.Error("New kept a reference to its argument slice")
	}
}

func TestRecompute_Empty(t *testing.T) {
	src := testBuffer(t)
	got, err := Recompute(context.Background(), src, nil, Env{})
	if err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}
	if got == src {
		t.Error("empty pipeline returned the source buffer itself")
	}
	if !got.Equal(src) {
		t.Error("empty pipeline should yield a copy of the source")
	}
}

func TestRecompute_OnlyPassthrough(t *testing.T) {
	src := testBuffer(t)
	got, err := Recompute(context.Background(), src, []Transform{Passthrough{Name: "a"}, Passthrough{Name: "b"}}, Env{})
	if err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}
	if got == src || !got.Equal(src) {
		t.Error("passthrough pipeline should yield a distinct copy of the source")
	}
}

func TestRecompute_Order(t *testing.T) {
	src := testBuffer(t)
	ctx := context.Background()

	a, err := Recompute(ctx, src, []Transform{Threshold{Value: 128}, Brightness{Value: 50}}, Env{})
	if err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}
	b, err := Recompute(ctx, src, []Transform{Brightness{Value: 50}, Threshold{Value: 128}}, Env{})
	if err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}
	if a.Equal(b) {
		t.Error("stage order should change the result")
	}

	step, _ := imaging.Threshold(src, 128)
	want, _ := imaging.AdjustBrightness(step, 50)
	if !a.Equal(want) {
		t.Error("Recompute differs from applying the stages by hand")
	}
}

func TestRecompute_Deterministic(t *testing.T) {
	src := testBuffer(t)
	stages := []Transform{Contrast{Value: 140}, Sharpen{Amount: 5}, Canny{Low: 30, High: 100}}
	a, err := Recompute(context.Background(), src, stages, Env{})
	if err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}
	b, _ := Recompute(context.Background(), src, stages, Env{})
	if !a.Equal(b) {
		t.Error("same source and stages gave different results")
	}
}

func TestRecompute_SourceUntouched(t *testing.T) {
	src := testBuffer(t)
	orig := src.Clone()
	stages := []Transform{Grayscale{}, Sharpen{Amount: 10}, Segmentation{Tolerance: 20, MinSize: 3}, Sobel{}}
	if _, err := Recompute(context.Background(), src, stages, Env{}); err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}
	if !src.Equal(orig) {
		t.Error("Recompute modified the source buffer")
	}
}

func TestRecompute_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := Recompute(ctx, testBuffer(t), []Transform{Grayscale{}}, Env{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
	if got != nil {
		t.Error("cancelled recompute should not return a buffer")
	}
}

func TestRecompute_InvalidSource(t *testing.T) {
	bad := &imaging.PixelBuffer{Width: 2, Height: 2}
	if _, err := Recompute(context.Background(), bad, nil, Env{}); !errors.Is(err, imaging.ErrInvalidBuffer) {
		t.Errorf("got %v, want ErrInvalidBuffer", err)
	}
}
