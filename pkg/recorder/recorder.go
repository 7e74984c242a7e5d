// Package recorder is an editor driver that tracks document geometry and
// records every call without touching pixels. It backs dry runs and tests.
package recorder

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"

	// decoders for header-only size probing
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/menta2k/image-fitter/pkg/editor"
	"github.com/menta2k/image-fitter/pkg/geometry"
	"github.com/menta2k/image-fitter/pkg/types"
)

// Call is one recorded driver invocation
type Call struct {
	Doc    string
	Op     string
	Detail string
}

func (c Call) String() string {
	if c.Detail == "" {
		return c.Doc + ": " + c.Op
	}
	return c.Doc + ": " + c.Op + " " + c.Detail
}

// Recorder implements editor.Driver
type Recorder struct {
	mu    sync.Mutex
	calls []Call
	saved []string

	// Sizes overrides size probing for a path (matched on base name)
	Sizes map[string]types.Dimensions
	// Fail injects an error for an operation on a base name, keyed "name:op"
	Fail map[string]error
	// OnOpen runs before each Open
	OnOpen func(path string)
	// OutpaintSupported controls whether InvokeOutpaint succeeds
	OutpaintSupported bool
	// WatermarkSize is the natural size reported for pasted images without a Sizes entry
	WatermarkSize types.Dimensions
	// Panic makes the named op panic, keyed like Fail
	Panic map[string]bool

	open int
}

// New creates a Recorder with outpainting available
func New() *Recorder {
	return &Recorder{
		Sizes:             map[string]types.Dimensions{},
		Fail:              map[string]error{},
		Panic:             map[string]bool{},
		OutpaintSupported: true,
	}
}

type document struct {
	name   string
	size   types.Dimensions
	layers []*layer
	closed bool
}

func (d *document) Name() string           { return d.name }
func (d *document) Size() types.Dimensions { return d.size }

type layer struct {
	doc    *document
	bounds types.Rect
}

func (l *layer) Bounds() types.Rect { return l.bounds }

// Calls returns a copy of the recorded calls
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Saved returns every path passed to a successful EncodeAndSave
func (r *Recorder) Saved() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.saved...)
}

// OpenDocuments is the number of documents opened and not yet closed
func (r *Recorder) OpenDocuments() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.open
}

func (r *Recorder) record(name, op, format string, args ...any) error {
	r.mu.Lock()
	r.calls = append(r.calls, Call{Doc: name, Op: op, Detail: fmt.Sprintf(format, args...)})
	err := r.Fail[name+":"+op]
	boom := r.Panic[name+":"+op]
	r.mu.Unlock()
	if boom {
		panic(fmt.Sprintf("recorder: injected panic in %s %s", op, name))
	}
	return err
}

func (r *Recorder) doc(d editor.Document) (*document, error) {
	doc, ok := d.(*document)
	if !ok {
		return nil, fmt.Errorf("recorder: foreign document %T", d)
	}
	if doc.closed {
		return nil, editor.ErrDocumentClosed
	}
	return doc, nil
}

func (r *Recorder) probeSize(path string) (types.Dimensions, error) {
	if s, ok := r.Sizes[filepath.Base(path)]; ok {
		return s, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return types.Dimensions{}, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return types.Dimensions{}, fmt.Errorf("failed to read image header: %w", err)
	}
	return types.Dimensions{Width: cfg.Width, Height: cfg.Height}, nil
}

func (r *Recorder) Open(_ context.Context, path string) (editor.Document, error) {
	if r.OnOpen != nil {
		r.OnOpen(path)
	}
	name := filepath.Base(path)
	if err := r.record(name, "open", "%s", path); err != nil {
		return nil, err
	}
	size, err := r.probeSize(path)
	if err != nil {
		return nil, err
	}
	doc := &document{name: name, size: size}
	doc.layers = []*layer{{doc: doc, bounds: geometry.Full(size)}}
	r.mu.Lock()
	r.open++
	r.mu.Unlock()
	return doc, nil
}

func (r *Recorder) Resize(_ context.Context, d editor.Document, size types.Dimensions, _ editor.Resample) error {
	doc, err := r.doc(d)
	if err != nil {
		return err
	}
	if err := r.record(doc.name, "resize", "%s", size); err != nil {
		return err
	}
	sx := float64(size.Width) / float64(doc.size.Width)
	sy := float64(size.Height) / float64(doc.size.Height)
	for _, l := range doc.layers {
		b := l.bounds
		l.bounds = types.Rect{
			X:      geometry.Round(float64(b.X) * sx),
			Y:      geometry.Round(float64(b.Y) * sy),
			Width:  geometry.Round(float64(b.Width) * sx),
			Height: geometry.Round(float64(b.Height) * sy),
		}
	}
	doc.size = size
	return nil
}

func (r *Recorder) ResizeCanvas(_ context.Context, d editor.Document, size types.Dimensions, anchor editor.Anchor) error {
	doc, err := r.doc(d)
	if err != nil {
		return err
	}
	if err := r.record(doc.name, "resize_canvas", "%s", size); err != nil {
		return err
	}
	if anchor != editor.AnchorCenter {
		return fmt.Errorf("%w: anchor %d", editor.ErrUnsupportedOption, anchor)
	}
	dx := geometry.CenterOffset(doc.size.Width, size.Width)
	dy := geometry.CenterOffset(doc.size.Height, size.Height)
	for _, l := range doc.layers {
		l.bounds.X += dx
		l.bounds.Y += dy
	}
	doc.size = size
	return nil
}

func (r *Recorder) Crop(_ context.Context, d editor.Document, rect types.Rect) error {
	doc, err := r.doc(d)
	if err != nil {
		return err
	}
	if err := r.record(doc.name, "crop", "%s", rect); err != nil {
		return err
	}
	for _, l := range doc.layers {
		l.bounds.X -= rect.X
		l.bounds.Y -= rect.Y
	}
	doc.size = rect.Size()
	return nil
}

func (r *Recorder) AddFillLayer(_ context.Context, d editor.Document, c types.RGBColor, at editor.Placement) error {
	doc, err := r.doc(d)
	if err != nil {
		return err
	}
	if err := r.record(doc.name, "fill", "%s", c.Hex()); err != nil {
		return err
	}
	if at != editor.PlaceBottom {
		return fmt.Errorf("%w: placement %d", editor.ErrUnsupportedOption, at)
	}
	l := &layer{doc: doc, bounds: geometry.Full(doc.size)}
	doc.layers = append([]*layer{l}, doc.layers...)
	return nil
}

func (r *Recorder) PasteImage(_ context.Context, d editor.Document, path string) (editor.Layer, error) {
	doc, err := r.doc(d)
	if err != nil {
		return nil, err
	}
	if err := r.record(doc.name, "paste", "%s", filepath.Base(path)); err != nil {
		return nil, err
	}
	size := r.WatermarkSize
	if !size.Valid() {
		if size, err = r.probeSize(path); err != nil {
			return nil, err
		}
	}
	l := &layer{doc: doc, bounds: geometry.CenterIn(size, doc.size)}
	doc.layers = append(doc.layers, l)
	return l, nil
}

func (r *Recorder) layer(l editor.Layer) (*layer, error) {
	ly, ok := l.(*layer)
	if !ok {
		return nil, fmt.Errorf("recorder: foreign layer %T", l)
	}
	if ly.doc.closed {
		return nil, editor.ErrDocumentClosed
	}
	return ly, nil
}

func (r *Recorder) SetLayerOpacity(_ context.Context, l editor.Layer, opacity int) error {
	ly, err := r.layer(l)
	if err != nil {
		return err
	}
	return r.record(ly.doc.name, "opacity", "%d", opacity)
}

func (r *Recorder) SetLayerBlendMode(_ context.Context, l editor.Layer, mode types.BlendMode) error {
	ly, err := r.layer(l)
	if err != nil {
		return err
	}
	return r.record(ly.doc.name, "blend", "%s", mode)
}

func (r *Recorder) TransformLayer(_ context.Context, l editor.Layer, t geometry.Transform) error {
	ly, err := r.layer(l)
	if err != nil {
		return err
	}
	if err := r.record(ly.doc.name, "transform", "%.2f%% (%.1f,%.1f)", t.ScalePercent, t.DX, t.DY); err != nil {
		return err
	}
	ly.bounds = t.Apply(ly.bounds)
	return nil
}

func (r *Recorder) InvokeOutpaint(_ context.Context, d editor.Document) error {
	doc, err := r.doc(d)
	if err != nil {
		return err
	}
	if err := r.record(doc.name, "outpaint", ""); err != nil {
		return err
	}
	if !r.OutpaintSupported {
		return fmt.Errorf("recorder: %w", editor.ErrOutpaintUnsupported)
	}
	return nil
}

func (r *Recorder) EncodeAndSave(_ context.Context, d editor.Document, path string, quality int) error {
	doc, err := r.doc(d)
	if err != nil {
		return err
	}
	if err := r.record(doc.name, "save", "%s q=%d size=%s", filepath.Base(path), quality, doc.size); err != nil {
		return err
	}
	r.mu.Lock()
	r.saved = append(r.saved, path)
	r.mu.Unlock()
	return nil
}

func (r *Recorder) Close(_ context.Context, d editor.Document) error {
	doc, ok := d.(*document)
	if !ok {
		return fmt.Errorf("recorder: foreign document %T", d)
	}
	if doc.closed {
		return nil
	}
	doc.closed = true
	r.mu.Lock()
	r.open--
	r.mu.Unlock()
	return r.record(doc.name, "close", "")
}

// Layers returns the bounds of a document's layers, bottom first
func Layers(d editor.Document) []types.Rect {
	doc, ok := d.(*document)
	if !ok {
		return nil
	}
	out := make([]types.Rect, len(doc.layers))
	for i, l := range doc.layers {
		out[i] = l.bounds
	}
	return out
}
