// Package strategy turns a source size and a target canvas into an ordered
// editing plan for one of the three fill methods.
package strategy

import (
	"fmt"

	"github.com/menta2k/image-fitter/pkg/editor"
	"github.com/menta2k/image-fitter/pkg/geometry"
	"github.com/menta2k/image-fitter/pkg/types"
)

// Strategy produces a Plan for one image. Implementations are stateless.
type Strategy interface {
	Method() types.FillMethod
	Plan(source, target types.Dimensions) (Plan, error)
}

// Letterbox fits the whole image inside the canvas and pads with a solid color
type Letterbox struct {
	Background types.RGBColor
}

func (Letterbox) Method() types.FillMethod { return types.FillLetterbox }

func (l Letterbox) Plan(source, target types.Dimensions) (Plan, error) {
	if err := checkSizes(source, target); err != nil {
		return Plan{}, err
	}
	size, _ := geometry.FitWithinTarget(source, target)
	return Plan{
		Steps: []Step{
			ResizeStep{Size: size},
			ResizeCanvasStep{Size: target, Anchor: editor.AnchorCenter},
			FillBackgroundStep{Color: l.Background},
		},
		ContentRect: geometry.CenterIn(size, target),
		Canvas:      target,
	}, nil
}

// Crop scales to cover the canvas and trims the overflow, centered.
// PrimaryAxis is the axis matched first; the other takes over when it
// would leave a gap.
type Crop struct {
	PrimaryAxis types.Axis
}

func (Crop) Method() types.FillMethod { return types.FillCrop }

func (c Crop) Plan(source, target types.Dimensions) (Plan, error) {
	if err := checkSizes(source, target); err != nil {
		return Plan{}, err
	}
	scaled, rect := geometry.FillAndCropOneAxis(source, target, c.PrimaryAxis)
	steps := []Step{ResizeStep{Size: scaled}}
	if scaled != target {
		steps = append(steps, CropStep{Rect: rect})
	}
	return Plan{Steps: steps, ContentRect: geometry.Full(target), Canvas: target}, nil
}

// Outpaint fits the image like Letterbox and lets the editor synthesize the margins
type Outpaint struct{}

func (Outpaint) Method() types.FillMethod { return types.FillOutpaint }

func (Outpaint) Plan(source, target types.Dimensions) (Plan, error) {
	if err := checkSizes(source, target); err != nil {
		return Plan{}, err
	}
	size, _ := geometry.FitWithinTarget(source, target)
	return Plan{
		Steps: []Step{
			ResizeStep{Size: size},
			ResizeCanvasStep{Size: target, Anchor: editor.AnchorCenter},
			OutpaintStep{},
		},
		ContentRect: geometry.Full(target),
		Canvas:      target,
	}, nil
}

// Options carries the method-specific parameters used by New
type Options struct {
	Background  types.RGBColor
	PrimaryAxis types.Axis
}

// New returns the strategy for a fill method
func New(method types.FillMethod, opts Options) (Strategy, error) {
	switch method {
	case types.FillLetterbox:
		return Letterbox{Background: opts.Background}, nil
	case types.FillCrop:
		return Crop{PrimaryAxis: opts.PrimaryAxis}, nil
	case types.FillOutpaint:
		return Outpaint{}, nil
	}
	return nil, fmt.Errorf("unknown fill method %q", method)
}

func checkSizes(source, target types.Dimensions) error {
	if !source.Valid() {
		return fmt.Errorf("invalid source size %s", source)
	}
	if !target.Valid() {
		return fmt.Errorf("invalid target size %s", target)
	}
	return nil
}
