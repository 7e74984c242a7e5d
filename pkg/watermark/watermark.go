// Package watermark places a watermark image over the content area of a
// fitted document.
package watermark

import (
	"context"
	"fmt"

	"github.com/menta2k/image-fitter/pkg/editor"
	"github.com/menta2k/image-fitter/pkg/geometry"
	"github.com/menta2k/image-fitter/pkg/types"
)

// Placement is the outcome of applying a watermark
type Placement struct {
	Transform geometry.Transform
	Bounds    types.Rect
}

// Apply pastes the watermark as the top layer, passes opacity and blend mode
// through to the editor, then scales and centers it over content.
func Apply(ctx context.Context, d editor.Driver, doc editor.Document, s types.WatermarkSettings, content types.Rect) (Placement, error) {
	layer, err := d.PasteImage(ctx, doc, s.Source)
	if err != nil {
		return Placement{}, fmt.Errorf("failed to paste watermark: %w", err)
	}
	if err := d.SetLayerOpacity(ctx, layer, s.Opacity); err != nil {
		return Placement{}, fmt.Errorf("failed to set watermark opacity: %w", err)
	}
	mode := s.BlendMode
	if mode == "" {
		mode = types.BlendNormal
	}
	if err := d.SetLayerBlendMode(ctx, layer, mode); err != nil {
		return Placement{}, fmt.Errorf("failed to set watermark blend mode: %w", err)
	}

	t := geometry.WatermarkTransform(content, layer.Bounds(), s.Sizing)
	if err := d.TransformLayer(ctx, layer, t); err != nil {
		return Placement{}, fmt.Errorf("failed to position watermark: %w", err)
	}
	return Placement{Transform: t, Bounds: layer.Bounds()}, nil
}
