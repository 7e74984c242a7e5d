package types

import (
	"fmt"
	"strings"
)

// Dimensions is a pixel size. Both axes are positive for any real image or canvas.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Valid reports whether both axes are positive
func (d Dimensions) Valid() bool {
	return d.Width > 0 && d.Height > 0
}

// Along returns the extent of d on the given axis
func (d Dimensions) Along(a Axis) int {
	if a == AxisHeight {
		return d.Height
	}
	return d.Width
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

// Rect is an axis-aligned rectangle in pixel coordinates
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"w"`
	Height int `json:"h"`
}

// RectFromEdges builds a Rect from left, top, right and bottom edges
func RectFromEdges(left, top, right, bottom int) Rect {
	return Rect{X: left, Y: top, Width: right - left, Height: bottom - top}
}

func (r Rect) Left() int   { return r.X }
func (r Rect) Top() int    { return r.Y }
func (r Rect) Right() int  { return r.X + r.Width }
func (r Rect) Bottom() int { return r.Y + r.Height }

// Size returns the rectangle's extent
func (r Rect) Size() Dimensions {
	return Dimensions{Width: r.Width, Height: r.Height}
}

// Center returns the rectangle's center point
func (r Rect) Center() (float64, float64) {
	return float64(r.X) + float64(r.Width)/2, float64(r.Y) + float64(r.Height)/2
}

func (r Rect) String() string {
	return fmt.Sprintf("[%d,%d,%d,%d]", r.Left(), r.Top(), r.Right(), r.Bottom())
}

// Axis selects width or height
type Axis int

const (
	AxisWidth Axis = iota
	AxisHeight
)

// Other returns the opposite axis
func (a Axis) Other() Axis {
	if a == AxisWidth {
		return AxisHeight
	}
	return AxisWidth
}

func (a Axis) String() string {
	if a == AxisHeight {
		return "height"
	}
	return "width"
}

// ParseAxis accepts "width" or "height", case-insensitively
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "width":
		return AxisWidth, nil
	case "height":
		return AxisHeight, nil
	}
	return AxisWidth, fmt.Errorf("unknown axis %q (use width or height)", s)
}

// FillMethod names one of the three fill strategies
type FillMethod string

const (
	FillLetterbox FillMethod = "letterbox"
	FillCrop      FillMethod = "crop"
	FillOutpaint  FillMethod = "outpaint"
)

// ParseFillMethod also accepts the legacy names "normal" and "contentAware"
func ParseFillMethod(s string) (FillMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "letterbox", "normal":
		return FillLetterbox, nil
	case "crop":
		return FillCrop, nil
	case "outpaint", "contentaware", "generative":
		return FillOutpaint, nil
	}
	return "", fmt.Errorf("unknown fill method %q (use letterbox, crop or outpaint)", s)
}

// SizingMode controls how a watermark is scaled relative to the content area
type SizingMode string

const (
	SizingOriginal SizingMode = "original"
	SizingContain  SizingMode = "contain"
	SizingCover    SizingMode = "cover"
)

func ParseSizingMode(s string) (SizingMode, error) {
	switch m := SizingMode(strings.ToLower(strings.TrimSpace(s))); m {
	case SizingOriginal, SizingContain, SizingCover:
		return m, nil
	case "":
		return SizingOriginal, nil
	}
	return "", fmt.Errorf("unknown watermark sizing %q (use original, contain or cover)", s)
}

// BlendMode is a layer compositing mode
type BlendMode string

const (
	BlendNormal      BlendMode = "normal"
	BlendDissolve    BlendMode = "dissolve"
	BlendMultiply    BlendMode = "multiply"
	BlendOverlay     BlendMode = "overlay"
	BlendSoftLight   BlendMode = "softLight"
	BlendHardLight   BlendMode = "hardLight"
	BlendDifference  BlendMode = "difference"
	BlendExclusion   BlendMode = "exclusion"
	BlendScreen      BlendMode = "screen"
	BlendLinearLight BlendMode = "linearLight"
	BlendPinLight    BlendMode = "pinLight"
	BlendDarken      BlendMode = "darken"
	BlendLighten     BlendMode = "lighten"
)

// BlendModes lists every supported blend mode in menu order
func BlendModes() []BlendMode {
	return []BlendMode{
		BlendNormal, BlendDissolve, BlendMultiply, BlendOverlay, BlendSoftLight,
		BlendHardLight, BlendDifference, BlendExclusion, BlendScreen,
		BlendLinearLight, BlendPinLight, BlendDarken, BlendLighten,
	}
}

// ParseBlendMode matches names case-insensitively, ignoring '-' and '_'
func ParseBlendMode(s string) (BlendMode, error) {
	key := strings.NewReplacer("-", "", "_", "", " ", "").Replace(s)
	if key == "" {
		return BlendNormal, nil
	}
	for _, m := range BlendModes() {
		if strings.EqualFold(key, string(m)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown blend mode %q", s)
}

// WatermarkSettings configures the optional watermark step of a batch run
type WatermarkSettings struct {
	Enabled   bool       `json:"enabled"`
	Source    string     `json:"source"`
	Opacity   int        `json:"opacity"`
	BlendMode BlendMode  `json:"blend_mode"`
	Sizing    SizingMode `json:"sizing"`
}

// Active reports whether the watermark step should run
func (w *WatermarkSettings) Active() bool {
	return w != nil && w.Enabled
}
