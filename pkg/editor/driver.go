// Package editor defines the capability interface the fill strategies and the
// batch controller drive. Implementations own pixels; callers only see handles.
package editor

import (
	"context"
	"errors"

	"github.com/menta2k/image-fitter/pkg/geometry"
	"github.com/menta2k/image-fitter/pkg/types"
)

var (
	// ErrOutpaintUnsupported means no outpaint capability could fill the canvas.
	// The canvas keeps its empty margins; callers treat this as degraded, not failed.
	ErrOutpaintUnsupported = errors.New("outpaint not supported by editor")

	// ErrDocumentClosed is returned when a handle is used after Close
	ErrDocumentClosed = errors.New("document is closed")

	// ErrUnsupportedOption is returned for an Anchor or Placement the driver
	// does not implement
	ErrUnsupportedOption = errors.New("unsupported editor option")
)

// Anchor positions existing content when the canvas is resized. Only
// centering is used by the fill strategies.
type Anchor int

const (
	AnchorCenter Anchor = iota
)

// Resample selects the interpolation used by Resize
type Resample int

const (
	ResampleBicubic Resample = iota
	ResampleBilinear
	ResampleLanczos
	ResampleNearest
)

// Placement is where a new layer goes in draw order. Fill layers always
// go under the image content.
type Placement int

const (
	PlaceBottom Placement = iota
)

// Document is an open image the driver is editing
type Document interface {
	Name() string
	Size() types.Dimensions
}

// Layer is one element of a document's draw stack
type Layer interface {
	Bounds() types.Rect
}

// Driver is everything the core needs from an image editor. Calls are made
// one at a time on a single document; implementations need not be safe for
// concurrent use.
type Driver interface {
	Open(ctx context.Context, path string) (Document, error)
	Resize(ctx context.Context, doc Document, size types.Dimensions, alg Resample) error
	ResizeCanvas(ctx context.Context, doc Document, size types.Dimensions, anchor Anchor) error
	Crop(ctx context.Context, doc Document, rect types.Rect) error
	AddFillLayer(ctx context.Context, doc Document, c types.RGBColor, at Placement) error
	PasteImage(ctx context.Context, doc Document, path string) (Layer, error)
	SetLayerOpacity(ctx context.Context, layer Layer, opacity int) error
	SetLayerBlendMode(ctx context.Context, layer Layer, mode types.BlendMode) error
	TransformLayer(ctx context.Context, layer Layer, t geometry.Transform) error
	// InvokeOutpaint fills empty canvas areas. It returns an error wrapping
	// ErrOutpaintUnsupported when every available method failed.
	InvokeOutpaint(ctx context.Context, doc Document) error
	// EncodeAndSave writes doc as JPEG; quality is on the 1..12 scale.
	EncodeAndSave(ctx context.Context, doc Document, path string, quality int) error
	// Close discards the document and any unsaved changes.
	Close(ctx context.Context, doc Document) error
}
