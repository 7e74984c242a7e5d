package geometry

import (
	"math"
	"testing"

	"github.com/menta2k/image-fitter/pkg/types"
)

func dims(w, h int) types.Dimensions {
	return types.Dimensions{Width: w, Height: h}
}

// sampleSizes covers portrait, landscape, square, tiny and odd sizes
var sampleSizes = []types.Dimensions{
	dims(1, 1), dims(1, 1000), dims(1000, 1), dims(3, 7), dims(800, 600),
	dims(600, 800), dims(1000, 500), dims(1080, 1080), dims(1601, 2399),
	dims(4032, 3024), dims(333, 777), dims(1920, 1080), dims(5, 5000),
}

func TestFitWithinTargetNeverExceedsTarget(t *testing.T) {
	for _, src := range sampleSizes {
		for _, tgt := range sampleSizes {
			size, scale := FitWithinTarget(src, tgt)
			if size.Width > tgt.Width || size.Height > tgt.Height {
				t.Errorf("Fit(%s -> %s) = %s exceeds target", src, tgt, size)
			}
			if size.Width != tgt.Width && size.Height != tgt.Height {
				// one axis must touch the target, within a pixel of rounding
				dw := tgt.Width - size.Width
				dh := tgt.Height - size.Height
				if dw > 1 && dh > 1 {
					t.Errorf("Fit(%s -> %s) = %s touches neither axis", src, tgt, size)
				}
			}
			want := math.Min(float64(tgt.Width)/float64(src.Width), float64(tgt.Height)/float64(src.Height))
			if scale != want {
				t.Errorf("Fit(%s -> %s) scale = %v, want %v", src, tgt, scale, want)
			}
		}
	}
}

func TestFitWithinTargetIsPure(t *testing.T) {
	a, sa := FitWithinTarget(dims(4032, 3024), dims(1600, 2400))
	b, sb := FitWithinTarget(dims(4032, 3024), dims(1600, 2400))
	if a != b || sa != sb {
		t.Errorf("Repeated calls differ: %s/%v vs %s/%v", a, sa, b, sb)
	}
}

func TestLetterboxExample(t *testing.T) {
	size, scale := FitWithinTarget(dims(800, 600), dims(1600, 2400))
	if scale != 2.0 {
		t.Errorf("Expected scale 2.0, got %v", scale)
	}
	if size != dims(1600, 1200) {
		t.Errorf("Expected 1600x1200, got %s", size)
	}
	content := CenterIn(size, dims(1600, 2400))
	if content != (types.Rect{X: 0, Y: 600, Width: 1600, Height: 1200}) {
		t.Errorf("Expected content rect {0 600 1600 1200}, got %+v", content)
	}
}

func TestFillAndCropExample(t *testing.T) {
	scaled, crop := FillAndCropOneAxis(dims(1000, 500), dims(1080, 1080), types.AxisWidth)
	if scaled != dims(2160, 1080) {
		t.Errorf("Expected fallback to height primary with 2160x1080, got %s", scaled)
	}
	if crop != types.RectFromEdges(540, 0, 1620, 1080) {
		t.Errorf("Expected crop [540,0,1620,1080], got %s", crop)
	}
}

func TestFillAndCropAlwaysFillsTarget(t *testing.T) {
	for _, primary := range []types.Axis{types.AxisWidth, types.AxisHeight} {
		for _, src := range sampleSizes {
			for _, tgt := range sampleSizes {
				scaled, crop := FillAndCropOneAxis(src, tgt, primary)
				if crop.Size() != tgt {
					t.Errorf("%s primary: crop %s of %s -> %s is %s", primary, crop, src, tgt, crop.Size())
				}
				if crop.Left() < 0 || crop.Top() < 0 || crop.Right() > scaled.Width || crop.Bottom() > scaled.Height {
					t.Errorf("%s primary: crop %s outside scaled image %s (src %s, tgt %s)", primary, crop, scaled, src, tgt)
				}
				if scaled.Width != tgt.Width && scaled.Height != tgt.Height {
					t.Errorf("%s primary: scaled %s matches no target axis of %s", primary, scaled, tgt)
				}
			}
		}
	}
}

func TestFillAndCropOddExcess(t *testing.T) {
	// 101 wide after scaling to height 100, target 100x100: one pixel to trim
	scaled, crop := FillAndCropOneAxis(dims(101, 100), dims(100, 100), types.AxisHeight)
	if scaled != dims(101, 100) {
		t.Fatalf("Expected 101x100, got %s", scaled)
	}
	if crop.Left() != 1 || scaled.Width-crop.Right() != 0 {
		t.Errorf("Expected leading trim 1 and trailing trim 0, got crop %s", crop)
	}

	_, crop = FillAndCropOneAxis(dims(100, 103), dims(100, 100), types.AxisWidth)
	if crop.Top() != 2 || crop.Bottom() != 102 {
		t.Errorf("Expected vertical crop [2..102], got %s", crop)
	}
}

func TestCenterOffset(t *testing.T) {
	cases := []struct{ inner, outer, want int }{
		{1200, 2400, 600},
		{5, 10, 2},
		{10, 10, 0},
		{12, 10, -1},
		{13, 10, -2},
	}
	for _, c := range cases {
		if got := CenterOffset(c.inner, c.outer); got != c.want {
			t.Errorf("CenterOffset(%d, %d) = %d, want %d", c.inner, c.outer, got, c.want)
		}
	}
}

func TestWatermarkTransform(t *testing.T) {
	content := types.Rect{X: 0, Y: 600, Width: 1600, Height: 1200}
	wm := CenterIn(dims(400, 100), dims(1600, 2400)) // pasted at the canvas center

	orig := WatermarkTransform(content, wm, types.SizingOriginal)
	if orig.ScalePercent != 100 || orig.DX != 0 || orig.DY != 0 {
		t.Errorf("Original sizing over a centered content rect should be identity, got %+v", orig)
	}

	contain := WatermarkTransform(content, wm, types.SizingContain)
	if contain.ScalePercent != 400 {
		t.Errorf("Expected contain scale 400%%, got %v", contain.ScalePercent)
	}
	cover := WatermarkTransform(content, wm, types.SizingCover)
	if cover.ScalePercent != 1200 {
		t.Errorf("Expected cover scale 1200%%, got %v", cover.ScalePercent)
	}

	placed := contain.Apply(wm)
	if placed != (types.Rect{X: 0, Y: 1000, Width: 1600, Height: 400}) {
		t.Errorf("Contained 4:1 watermark should span content width centered vertically, got %+v", placed)
	}

	offCenter := types.Rect{X: 100, Y: 100, Width: 50, Height: 50}
	tr := WatermarkTransform(content, offCenter, types.SizingOriginal)
	cx, cy := content.Center()
	px, py := tr.Apply(offCenter).Center()
	if px != cx || py != cy {
		t.Errorf("Translated center (%v,%v) != content center (%v,%v)", px, py, cx, cy)
	}
}

func BenchmarkFillAndCropOneAxis(b *testing.B) {
	for i := 0; i < b.N; i++ {
		FillAndCropOneAxis(dims(4032, 3024), dims(1080, 1350), types.AxisHeight)
	}
}
