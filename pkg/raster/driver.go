// Package raster is an in-process editor driver. Documents are stacks of
// NRGBA layers composited on save.
package raster

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"
	"golang.org/x/image/draw"

	"github.com/menta2k/image-fitter/pkg/editor"
	"github.com/menta2k/image-fitter/pkg/geometry"
	"github.com/menta2k/image-fitter/pkg/types"
)

// Driver implements editor.Driver on top of imaging
type Driver struct {
	log    zerolog.Logger
	probes []Probe

	mu    sync.Mutex
	cache map[string]*image.NRGBA
}

// New creates a raster driver. Probes are tried in order by InvokeOutpaint.
func New(log zerolog.Logger, probes ...Probe) *Driver {
	return &Driver{
		log:    log,
		probes: probes,
		cache:  make(map[string]*image.NRGBA),
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
	doc     *document
	img     *image.NRGBA
	pos     image.Point
	opacity float64
	mode    types.BlendMode
}

func (l *layer) Bounds() types.Rect {
	b := l.img.Bounds()
	return types.Rect{X: l.pos.X, Y: l.pos.Y, Width: b.Dx(), Height: b.Dy()}
}

func newLayer(doc *document, img *image.NRGBA, pos image.Point) *layer {
	return &layer{doc: doc, img: img, pos: pos, opacity: 1, mode: types.BlendNormal}
}

func asDocument(d editor.Document) (*document, error) {
	doc, ok := d.(*document)
	if !ok {
		return nil, fmt.Errorf("raster: foreign document %T", d)
	}
	if doc.closed {
		return nil, editor.ErrDocumentClosed
	}
	return doc, nil
}

func asLayer(l editor.Layer) (*layer, error) {
	ly, ok := l.(*layer)
	if !ok {
		return nil, fmt.Errorf("raster: foreign layer %T", l)
	}
	if ly.doc.closed {
		return nil, editor.ErrDocumentClosed
	}
	return ly, nil
}

func filter(alg editor.Resample) imaging.ResampleFilter {
	switch alg {
	case editor.ResampleBilinear:
		return imaging.Linear
	case editor.ResampleLanczos:
		return imaging.Lanczos
	case editor.ResampleNearest:
		return imaging.NearestNeighbor
	}
	return imaging.CatmullRom
}

func (d *Driver) Open(_ context.Context, path string) (editor.Document, error) {
	img, err := LoadImage(path)
	if err != nil {
		return nil, err
	}
	nrgba := imaging.Clone(img)
	b := nrgba.Bounds()
	doc := &document{
		name: filepath.Base(path),
		size: types.Dimensions{Width: b.Dx(), Height: b.Dy()},
	}
	doc.layers = []*layer{newLayer(doc, nrgba, image.Point{})}
	d.log.Debug().Str("file", doc.name).Str("size", doc.size.String()).Msg("opened document")
	return doc, nil
}

// Resize scales every layer and its position by the canvas scale factors
func (d *Driver) Resize(ctx context.Context, ed editor.Document, size types.Dimensions, alg editor.Resample) error {
	doc, err := asDocument(ed)
	if err != nil {
		return err
	}
	if !size.Valid() {
		return fmt.Errorf("invalid resize target %s", size)
	}
	sx := float64(size.Width) / float64(doc.size.Width)
	sy := float64(size.Height) / float64(doc.size.Height)
	f := filter(alg)
	for _, l := range doc.layers {
		if err := ctx.Err(); err != nil {
			return err
		}
		b := l.Bounds()
		w := maxInt(geometry.Round(float64(b.Width)*sx), 1)
		h := maxInt(geometry.Round(float64(b.Height)*sy), 1)
		if w != b.Width || h != b.Height {
			l.img = imaging.Resize(l.img, w, h, f)
		}
		l.pos = image.Pt(geometry.Round(float64(b.X)*sx), geometry.Round(float64(b.Y)*sy))
	}
	doc.size = size
	return nil
}

func (d *Driver) ResizeCanvas(_ context.Context, ed editor.Document, size types.Dimensions, anchor editor.Anchor) error {
	doc, err := asDocument(ed)
	if err != nil {
		return err
	}
	if !size.Valid() {
		return fmt.Errorf("invalid canvas size %s", size)
	}
	if anchor != editor.AnchorCenter {
		return fmt.Errorf("%w: anchor %d", editor.ErrUnsupportedOption, anchor)
	}
	dx := geometry.CenterOffset(doc.size.Width, size.Width)
	dy := geometry.CenterOffset(doc.size.Height, size.Height)
	for _, l := range doc.layers {
		l.pos = l.pos.Add(image.Pt(dx, dy))
	}
	doc.size = size
	return nil
}

// Crop moves the canvas origin to rect and shrinks it to rect's size.
// Layer pixels outside the new canvas are kept until flatten.
func (d *Driver) Crop(_ context.Context, ed editor.Document, rect types.Rect) error {
	doc, err := asDocument(ed)
	if err != nil {
		return err
	}
	if !rect.Size().Valid() {
		return fmt.Errorf("invalid crop rectangle %s", rect)
	}
	for _, l := range doc.layers {
		l.pos = l.pos.Sub(image.Pt(rect.X, rect.Y))
	}
	doc.size = rect.Size()
	return nil
}

func (d *Driver) AddFillLayer(_ context.Context, ed editor.Document, c types.RGBColor, at editor.Placement) error {
	doc, err := asDocument(ed)
	if err != nil {
		return err
	}
	if at != editor.PlaceBottom {
		return fmt.Errorf("%w: placement %d", editor.ErrUnsupportedOption, at)
	}
	l := newLayer(doc, imaging.New(doc.size.Width, doc.size.Height, c.NRGBA()), image.Point{})
	doc.layers = append([]*layer{l}, doc.layers...)
	return nil
}

// PasteImage adds path as a new top layer centered on the canvas. Decoded
// images are cached so a watermark is read once per run.
func (d *Driver) PasteImage(_ context.Context, ed editor.Document, path string) (editor.Layer, error) {
	doc, err := asDocument(ed)
	if err != nil {
		return nil, err
	}
	src, err := d.cached(path)
	if err != nil {
		return nil, err
	}
	b := src.Bounds()
	r := geometry.CenterIn(types.Dimensions{Width: b.Dx(), Height: b.Dy()}, doc.size)
	l := newLayer(doc, imaging.Clone(src), image.Pt(r.X, r.Y))
	doc.layers = append(doc.layers, l)
	return l, nil
}

func (d *Driver) cached(path string) (*image.NRGBA, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if img, ok := d.cache[path]; ok {
		return img, nil
	}
	img, err := LoadImage(path)
	if err != nil {
		return nil, err
	}
	nrgba := imaging.Clone(img)
	d.cache[path] = nrgba
	return nrgba, nil
}

func (d *Driver) SetLayerOpacity(_ context.Context, l editor.Layer, opacity int) error {
	ly, err := asLayer(l)
	if err != nil {
		return err
	}
	if opacity < 0 || opacity > 100 {
		return fmt.Errorf("opacity %d out of range 0..100", opacity)
	}
	ly.opacity = float64(opacity) / 100
	return nil
}

func (d *Driver) SetLayerBlendMode(_ context.Context, l editor.Layer, mode types.BlendMode) error {
	ly, err := asLayer(l)
	if err != nil {
		return err
	}
	if _, ok := blendFuncs[mode]; !ok {
		return fmt.Errorf("unknown blend mode %q", mode)
	}
	ly.mode = mode
	return nil
}

// TransformLayer resamples the layer to the transformed size and moves it
func (d *Driver) TransformLayer(_ context.Context, l editor.Layer, t geometry.Transform) error {
	ly, err := asLayer(l)
	if err != nil {
		return err
	}
	if t.ScalePercent <= 0 {
		return fmt.Errorf("invalid scale %.2f%%", t.ScalePercent)
	}
	next := t.Apply(ly.Bounds())
	if next.Width != ly.img.Bounds().Dx() || next.Height != ly.img.Bounds().Dy() {
		dst := image.NewNRGBA(image.Rect(0, 0, next.Width, next.Height))
		draw.CatmullRom.Scale(dst, dst.Bounds(), ly.img, ly.img.Bounds(), draw.Src, nil)
		ly.img = dst
	}
	ly.pos = image.Pt(next.X, next.Y)
	return nil
}

// InvokeOutpaint flattens the document and hands the empty margins to the
// probes in order. The first probe that succeeds replaces the layer stack.
func (d *Driver) InvokeOutpaint(ctx context.Context, ed editor.Document) error {
	doc, err := asDocument(ed)
	if err != nil {
		return err
	}
	canvas := flatten(doc)
	content := contentBounds(doc)
	if content.Empty() {
		return fmt.Errorf("document %s has no visible content", doc.name)
	}
	if content == canvas.Bounds() {
		return nil
	}

	var reasons []string
	for _, p := range d.probes {
		out, err := p.Outpaint(ctx, canvas, content)
		if err != nil {
			if errors.Is(err, ErrProbeUnavailable) {
				d.log.Debug().Str("probe", p.Name()).Msg("outpaint probe unavailable")
			} else {
				d.log.Debug().Err(err).Str("probe", p.Name()).Str("file", doc.name).Msg("outpaint probe failed")
			}
			reasons = append(reasons, p.Name()+": "+err.Error())
			continue
		}
		if out.Bounds().Dx() != canvas.Bounds().Dx() || out.Bounds().Dy() != canvas.Bounds().Dy() {
			reasons = append(reasons, fmt.Sprintf("%s: returned %dx%d", p.Name(), out.Bounds().Dx(), out.Bounds().Dy()))
			continue
		}
		doc.layers = []*layer{newLayer(doc, imaging.Clone(out), image.Point{})}
		d.log.Debug().Str("probe", p.Name()).Str("file", doc.name).Msg("outpainted margins")
		return nil
	}
	if len(reasons) == 0 {
		return fmt.Errorf("no outpaint probes configured: %w", editor.ErrOutpaintUnsupported)
	}
	return fmt.Errorf("%s: %w", strings.Join(reasons, "; "), editor.ErrOutpaintUnsupported)
}

// EncodeAndSave flattens onto white and writes a baseline JPEG. The file is
// written next to path and renamed into place.
func (d *Driver) EncodeAndSave(_ context.Context, ed editor.Document, path string, quality int) error {
	doc, err := asDocument(ed)
	if err != nil {
		return err
	}
	if quality < editor.MinQuality || quality > editor.MaxQuality {
		return fmt.Errorf("quality %d out of range %d..%d", quality, editor.MinQuality, editor.MaxQuality)
	}
	flat := flatten(doc)
	out := imaging.Overlay(imaging.New(doc.size.Width, doc.size.Height, color.White), flat, image.Point{}, 1.0)

	tmp, err := os.CreateTemp(filepath.Dir(path), ".fitter-*.jpg")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := imaging.Encode(tmp, out, imaging.JPEG, imaging.JPEGQuality(editor.EncoderQuality(quality))); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to save %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Close drops the document without saving. Closing twice is a no-op.
func (d *Driver) Close(_ context.Context, ed editor.Document) error {
	doc, ok := ed.(*document)
	if !ok {
		return fmt.Errorf("raster: foreign document %T", ed)
	}
	doc.closed = true
	doc.layers = nil
	return nil
}

// flatten composites the layer stack, bottom first, onto a transparent canvas
func flatten(doc *document) *image.NRGBA {
	canvas := image.NewNRGBA(image.Rect(0, 0, doc.size.Width, doc.size.Height))
	for _, l := range doc.layers {
		canvas = composite(canvas, l.img, l.pos, l.opacity, l.mode)
	}
	return canvas
}

// contentBounds is the union of all layer rectangles clipped to the canvas
func contentBounds(doc *document) image.Rectangle {
	var r image.Rectangle
	for _, l := range doc.layers {
		b := l.img.Bounds()
		r = r.Union(image.Rect(l.pos.X, l.pos.Y, l.pos.X+b.Dx(), l.pos.Y+b.Dy()))
	}
	return r.Intersect(image.Rect(0, 0, doc.size.Width, doc.size.Height))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
