package watermark

import (
	"context"
	"errors"
	"testing"

	"github.com/menta2k/image-fitter/pkg/recorder"
	"github.com/menta2k/image-fitter/pkg/strategy"
	"github.com/menta2k/image-fitter/pkg/types"
)

func TestApplyCentersOverLetterboxContent(t *testing.T) {
	ctx := context.Background()
	r := recorder.New()
	r.Sizes["photo.jpg"] = types.Dimensions{Width: 800, Height: 600}
	r.WatermarkSize = types.Dimensions{Width: 200, Height: 100}

	doc, err := r.Open(ctx, "photo.jpg")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	target := types.Dimensions{Width: 1000, Height: 1500}
	plan, _ := strategy.Letterbox{Background: types.White}.Plan(doc.Size(), target)
	if _, err := plan.Execute(ctx, r, doc); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	tests := []struct {
		sizing types.SizingMode
		scale  float64
		size   types.Dimensions
	}{
		{types.SizingOriginal, 100, types.Dimensions{Width: 200, Height: 100}},
		{types.SizingContain, 500, types.Dimensions{Width: 1000, Height: 500}},
		{types.SizingCover, 750, types.Dimensions{Width: 1500, Height: 750}},
	}
	for _, tt := range tests {
		s := types.WatermarkSettings{Enabled: true, Source: "logo.png", Opacity: 40, BlendMode: types.BlendMultiply, Sizing: tt.sizing}
		p, err := Apply(ctx, r, doc, s, plan.ContentRect)
		if err != nil {
			t.Fatalf("%s: Apply failed: %v", tt.sizing, err)
		}
		if p.Transform.ScalePercent != tt.scale {
			t.Errorf("%s: expected scale %v%%, got %v%%", tt.sizing, tt.scale, p.Transform.ScalePercent)
		}
		if p.Bounds.Size() != tt.size {
			t.Errorf("%s: expected size %s, got %s", tt.sizing, tt.size, p.Bounds.Size())
		}
		cx, cy := p.Bounds.Center()
		ccx, ccy := plan.ContentRect.Center()
		if cx != ccx || cy != ccy {
			t.Errorf("%s: watermark center (%v,%v) != content center (%v,%v)", tt.sizing, cx, cy, ccx, ccy)
		}
	}

	var sawOpacity, sawBlend bool
	for _, c := range r.Calls() {
		if c.Op == "opacity" && c.Detail == "40" {
			sawOpacity = true
		}
		if c.Op == "blend" && c.Detail == "multiply" {
			sawBlend = true
		}
	}
	if !sawOpacity || !sawBlend {
		t.Error("Opacity and blend mode should be passed through unchanged")
	}
}

func TestApplyPasteFailure(t *testing.T) {
	ctx := context.Background()
	r := recorder.New()
	r.Sizes["p.jpg"] = types.Dimensions{Width: 10, Height: 10}
	r.WatermarkSize = types.Dimensions{Width: 5, Height: 5}
	boom := errors.New("no such watermark")
	r.Fail["p.jpg:paste"] = boom

	doc, _ := r.Open(ctx, "p.jpg")
	_, err := Apply(ctx, r, doc, types.WatermarkSettings{Enabled: true, Source: "missing.png", Opacity: 100}, types.Rect{Width: 10, Height: 10})
	if !errors.Is(err, boom) {
		t.Errorf("Expected paste error, got %v", err)
	}
}
