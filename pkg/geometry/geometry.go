// Package geometry computes fit, crop and placement rectangles for the fill
// strategies. Everything here is a pure function of its arguments.
package geometry

import (
	"math"

	"github.com/menta2k/image-fitter/pkg/types"
)

// Round rounds half away from zero
func Round(v float64) int {
	return int(math.Round(v))
}

// FitWithinTarget scales source uniformly so it fits inside target.
// At least one axis of the result equals the target's, the other never exceeds it.
func FitWithinTarget(source, target types.Dimensions) (types.Dimensions, float64) {
	scale := math.Min(
		float64(target.Width)/float64(source.Width),
		float64(target.Height)/float64(source.Height),
	)
	size := types.Dimensions{
		Width:  Round(float64(source.Width) * scale),
		Height: Round(float64(source.Height) * scale),
	}
	// rounding can push the scaled axis past the target by a pixel
	size.Width = minInt(size.Width, target.Width)
	size.Height = minInt(size.Height, target.Height)
	size.Width = maxInt(size.Width, 1)
	size.Height = maxInt(size.Height, 1)
	return size, scale
}

// FillAndCropOneAxis scales source so the primary axis matches target exactly,
// then returns the crop rectangle (in scaled coordinates) that trims the
// secondary axis back to target, centered. If the secondary axis falls short
// of the target, the other axis becomes primary.
func FillAndCropOneAxis(source, target types.Dimensions, primary types.Axis) (types.Dimensions, types.Rect) {
	scaled := scaleToAxis(source, target, primary)
	secondary := primary.Other()
	if scaled.Along(secondary) < target.Along(secondary) {
		primary, secondary = secondary, primary
		scaled = scaleToAxis(source, target, primary)
	}

	excess := scaled.Along(secondary) - target.Along(secondary)
	trim := Round(float64(excess) / 2)

	crop := types.Rect{Width: target.Width, Height: target.Height}
	if secondary == types.AxisWidth {
		crop.X = trim
	} else {
		crop.Y = trim
	}
	return scaled, crop
}

func scaleToAxis(source, target types.Dimensions, primary types.Axis) types.Dimensions {
	if primary == types.AxisWidth {
		ratio := float64(target.Width) / float64(source.Width)
		return types.Dimensions{Width: target.Width, Height: Round(float64(source.Height) * ratio)}
	}
	ratio := float64(target.Height) / float64(source.Height)
	return types.Dimensions{Width: Round(float64(source.Width) * ratio), Height: target.Height}
}

// CenterOffset is the leading margin when inner is centered in outer.
// Odd margins put the extra pixel on the trailing side; a negative result
// means inner overflows outer.
func CenterOffset(inner, outer int) int {
	d := outer - inner
	if d >= 0 {
		return d / 2
	}
	return -((-d + 1) / 2)
}

// CenterIn returns inner centered within a canvas of size outer
func CenterIn(inner, outer types.Dimensions) types.Rect {
	return types.Rect{
		X:      CenterOffset(inner.Width, outer.Width),
		Y:      CenterOffset(inner.Height, outer.Height),
		Width:  inner.Width,
		Height: inner.Height,
	}
}

// Full returns the rectangle covering a whole canvas
func Full(size types.Dimensions) types.Rect {
	return types.Rect{Width: size.Width, Height: size.Height}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
