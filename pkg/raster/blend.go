package raster

import (
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/menta2k/image-fitter/pkg/types"
)

type blendFunc func(b, s float64) float64

var blendFuncs = map[types.BlendMode]blendFunc{
	types.BlendNormal:     func(_, s float64) float64 { return s },
	types.BlendDissolve:   func(_, s float64) float64 { return s },
	types.BlendMultiply:   func(b, s float64) float64 { return b * s },
	types.BlendScreen:     screen,
	types.BlendOverlay:    func(b, s float64) float64 { return hardLight(s, b) },
	types.BlendHardLight:  hardLight,
	types.BlendSoftLight:  softLight,
	types.BlendDifference: func(b, s float64) float64 { return math.Abs(b - s) },
	types.BlendExclusion:  func(b, s float64) float64 { return b + s - 2*b*s },
	types.BlendDarken:     math.Min,
	types.BlendLighten:    math.Max,
	types.BlendLinearLight: func(b, s float64) float64 {
		return clamp01(b + 2*s - 1)
	},
	types.BlendPinLight: func(b, s float64) float64 {
		if s <= 0.5 {
			return math.Min(b, 2*s)
		}
		return math.Max(b, 2*s-1)
	},
}

func screen(b, s float64) float64 { return b + s - b*s }

func hardLight(b, s float64) float64 {
	if s <= 0.5 {
		return b * 2 * s
	}
	return screen(b, 2*s-1)
}

func softLight(b, s float64) float64 {
	if s <= 0.5 {
		return b - (1-2*s)*b*(1-b)
	}
	var d float64
	if b <= 0.25 {
		d = ((16*b-12)*b + 4) * b
	} else {
		d = math.Sqrt(b)
	}
	return b + (2*s-1)*(d-b)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// composite draws src onto dst at offset using the separable blend formula
// Cs' = (1-ab)*Cs + ab*B(Cb,Cs), then source-over with alpha as*opacity.
func composite(dst, src *image.NRGBA, at image.Point, opacity float64, mode types.BlendMode) *image.NRGBA {
	if mode == types.BlendNormal || mode == "" {
		return imaging.Overlay(dst, src, at, opacity)
	}
	fn, ok := blendFuncs[mode]
	if !ok {
		fn = blendFuncs[types.BlendNormal]
	}

	area := src.Bounds().Add(at.Sub(src.Bounds().Min)).Intersect(dst.Bounds())
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			si := src.PixOffset(x-at.X+src.Bounds().Min.X, y-at.Y+src.Bounds().Min.Y)
			di := dst.PixOffset(x, y)
			sp := src.Pix[si : si+4 : si+4]
			dp := dst.Pix[di : di+4 : di+4]

			as := float64(sp[3]) / 255 * opacity
			if mode == types.BlendDissolve {
				// dissolve shows the source fully where noise falls under its alpha
				if noise(x, y) < as {
					as = 1
				} else {
					as = 0
				}
			}
			if as == 0 {
				continue
			}
			ab := float64(dp[3]) / 255
			ao := as + ab*(1-as)
			for c := 0; c < 3; c++ {
				cs := float64(sp[c]) / 255
				cb := float64(dp[c]) / 255
				mixed := (1-ab)*cs + ab*fn(cb, cs)
				co := (as*mixed + (1-as)*ab*cb) / ao
				dp[c] = uint8(math.Round(clamp01(co) * 255))
			}
			dp[3] = uint8(math.Round(ao * 255))
		}
	}
	return dst
}

// noise is a deterministic per-pixel value in [0,1)
func noise(x, y int) float64 {
	h := uint32(x)*374761393 + uint32(y)*668265263
	h = (h ^ (h >> 13)) * 1274126177
	h ^= h >> 16
	return float64(h&0xffffff) / float64(1<<24)
}
