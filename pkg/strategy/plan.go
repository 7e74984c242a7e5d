package strategy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/menta2k/image-fitter/pkg/editor"
	"github.com/menta2k/image-fitter/pkg/types"
)

// Step is one primitive editing operation
type Step interface {
	Apply(ctx context.Context, d editor.Driver, doc editor.Document) error
	String() string
}

type ResizeStep struct {
	Size types.Dimensions
}

func (s ResizeStep) Apply(ctx context.Context, d editor.Driver, doc editor.Document) error {
	return d.Resize(ctx, doc, s.Size, editor.ResampleBicubic)
}

func (s ResizeStep) String() string { return "Resize(" + s.Size.String() + ")" }

type ResizeCanvasStep struct {
	Size   types.Dimensions
	Anchor editor.Anchor
}

func (s ResizeCanvasStep) Apply(ctx context.Context, d editor.Driver, doc editor.Document) error {
	return d.ResizeCanvas(ctx, doc, s.Size, s.Anchor)
}

func (s ResizeCanvasStep) String() string { return "ResizeCanvas(" + s.Size.String() + ", center)" }

type CropStep struct {
	Rect types.Rect
}

func (s CropStep) Apply(ctx context.Context, d editor.Driver, doc editor.Document) error {
	return d.Crop(ctx, doc, s.Rect)
}

func (s CropStep) String() string { return "Crop" + s.Rect.String() }

// FillBackgroundStep adds a solid layer below the image content
type FillBackgroundStep struct {
	Color types.RGBColor
}

func (s FillBackgroundStep) Apply(ctx context.Context, d editor.Driver, doc editor.Document) error {
	return d.AddFillLayer(ctx, doc, s.Color, editor.PlaceBottom)
}

func (s FillBackgroundStep) String() string { return "FillBackground(" + s.Color.Hex() + ")" }

// OutpaintStep asks the editor to synthesize the empty canvas margins
type OutpaintStep struct{}

func (OutpaintStep) Apply(ctx context.Context, d editor.Driver, doc editor.Document) error {
	return d.InvokeOutpaint(ctx, doc)
}

func (OutpaintStep) String() string { return "Outpaint" }

// Plan is the ordered list of steps for one image plus the rectangle of the
// final canvas that holds actual image content
type Plan struct {
	Steps       []Step
	ContentRect types.Rect
	Canvas      types.Dimensions
}

func (p Plan) String() string {
	parts := make([]string, len(p.Steps))
	for i, s := range p.Steps {
		parts[i] = s.String()
	}
	return strings.Join(parts, " -> ")
}

// Result reports how a plan ran
type Result struct {
	// Degraded is set when outpainting was unavailable and the canvas
	// kept empty margins
	Degraded bool
	Warning  string
}

// Execute applies the steps in order and stops at the first failure.
// An unsupported outpaint is recorded in Result instead of failing.
func (p Plan) Execute(ctx context.Context, d editor.Driver, doc editor.Document) (Result, error) {
	var res Result
	for i, step := range p.Steps {
		err := step.Apply(ctx, d, doc)
		if err == nil {
			continue
		}
		if _, ok := step.(OutpaintStep); ok && errors.Is(err, editor.ErrOutpaintUnsupported) {
			res.Degraded = true
			res.Warning = err.Error()
			continue
		}
		return res, fmt.Errorf("step %d %s: %w", i+1, step, err)
	}
	return res, nil
}
