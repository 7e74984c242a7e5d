package raster

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// ErrProbeUnavailable means a probe is not configured or cannot be reached
var ErrProbeUnavailable = errors.New("outpaint probe unavailable")

// Probe synthesizes the area of canvas outside content. canvas is transparent
// there. Implementations return a new image the size of canvas.
type Probe interface {
	Name() string
	Outpaint(ctx context.Context, canvas *image.NRGBA, content image.Rectangle) (*image.NRGBA, error)
}

// BlurFill puts a blurred, cover-scaled copy of the content behind it
type BlurFill struct {
	// Sigma of the gaussian blur; zero picks one from the canvas size
	Sigma float64
}

func (BlurFill) Name() string { return "blur" }

func (b BlurFill) Outpaint(ctx context.Context, canvas *image.NRGBA, content image.Rectangle) (*image.NRGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w, h := canvas.Bounds().Dx(), canvas.Bounds().Dy()
	sigma := b.Sigma
	if sigma <= 0 {
		sigma = math.Max(float64(maxInt(w, h))/60, 4)
	}
	src := imaging.Crop(canvas, content)
	bg := imaging.Fill(src, w, h, imaging.Center, imaging.Linear)
	bg = imaging.Blur(bg, sigma)
	return imaging.Overlay(bg, canvas, image.Point{}, 1.0), nil
}

// EdgeExtend repeats the outermost content pixels into the margins
type EdgeExtend struct{}

func (EdgeExtend) Name() string { return "edge" }

func (EdgeExtend) Outpaint(ctx context.Context, canvas *image.NRGBA, content image.Rectangle) (*image.NRGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := imaging.Clone(canvas)
	b := out.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		sy := clampInt(y, content.Min.Y, content.Max.Y-1)
		for x := b.Min.X; x < b.Max.X; x++ {
			if image.Pt(x, y).In(content) {
				continue
			}
			sx := clampInt(x, content.Min.X, content.Max.X-1)
			copy(out.Pix[out.PixOffset(x, y):out.PixOffset(x, y)+4], canvas.Pix[canvas.PixOffset(sx, sy):canvas.PixOffset(sx, sy)+4])
		}
	}
	return out, nil
}

// ProbeByName returns the built-in probe for name. The generative probe lives
// in the inpaint package and is wired by the caller.
func ProbeByName(name string) (Probe, error) {
	switch name {
	case "blur":
		return BlurFill{}, nil
	case "edge":
		return EdgeExtend{}, nil
	}
	return nil, fmt.Errorf("unknown outpaint probe %q", name)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
