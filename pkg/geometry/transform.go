package geometry

import (
	"math"

	"github.com/menta2k/image-fitter/pkg/types"
)

// Transform scales a layer about its own center, then translates it
type Transform struct {
	ScalePercent float64 `json:"scale_percent"`
	DX           float64 `json:"dx"`
	DY           float64 `json:"dy"`
}

// Apply returns where a layer with the given bounds ends up after t
func (t Transform) Apply(bounds types.Rect) types.Rect {
	cx, cy := bounds.Center()
	w := maxInt(Round(float64(bounds.Width)*t.ScalePercent/100), 1)
	h := maxInt(Round(float64(bounds.Height)*t.ScalePercent/100), 1)
	return types.Rect{
		X:      Round(cx + t.DX - float64(w)/2),
		Y:      Round(cy + t.DY - float64(h)/2),
		Width:  w,
		Height: h,
	}
}

// WatermarkTransform computes the scale and translation that centers a
// watermark, currently occupying watermark, over content.
//
// original keeps 100%, contain fits the watermark inside content and cover
// makes it fill content on both axes (overflowing one of them).
func WatermarkTransform(content, watermark types.Rect, sizing types.SizingMode) Transform {
	scale := 1.0
	if watermark.Width > 0 && watermark.Height > 0 {
		wr := float64(content.Width) / float64(watermark.Width)
		hr := float64(content.Height) / float64(watermark.Height)
		switch sizing {
		case types.SizingContain:
			scale = math.Min(wr, hr)
		case types.SizingCover:
			scale = math.Max(wr, hr)
		}
	}

	// scaling about the center leaves the center where it was
	wx, wy := watermark.Center()
	cx, cy := content.Center()
	return Transform{ScalePercent: scale * 100, DX: cx - wx, DY: cy - wy}
}
