package types

import (
	"errors"
	"fmt"
	"image/color"
	"regexp"
	"strconv"
)

// ErrInvalidHex is returned for anything that is not a #RRGGBB string
var ErrInvalidHex = errors.New("invalid hex color")

var hexPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// RGBColor is an 8-bit per channel color
type RGBColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

var White = RGBColor{255, 255, 255}

// IsValidHex reports whether s is a 6-digit #RRGGBB color
func IsValidHex(s string) bool {
	return hexPattern.MatchString(s)
}

// ParseHex converts #RRGGBB (any case) to an RGBColor
func ParseHex(s string) (RGBColor, error) {
	if !IsValidHex(s) {
		return RGBColor{}, fmt.Errorf("%w: %q (expected #RRGGBB)", ErrInvalidHex, s)
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return RGBColor{}, fmt.Errorf("%w: %v", ErrInvalidHex, err)
	}
	return RGBColor{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// Hex formats the color as uppercase #RRGGBB
func (c RGBColor) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

func (c RGBColor) String() string {
	return c.Hex()
}

// NRGBA returns the opaque image/color equivalent
func (c RGBColor) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}
}
