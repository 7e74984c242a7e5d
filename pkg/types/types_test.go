package types

import (
	"errors"
	"testing"
)

func TestHexRoundTrip(t *testing.T) {
	// every channel value on each axis, plus a coarse walk of the full cube
	for v := 0; v < 256; v++ {
		for _, c := range []RGBColor{{uint8(v), 0, 0}, {0, uint8(v), 0}, {0, 0, uint8(v)}, {uint8(v), uint8(255 - v), uint8(v / 2)}} {
			back, err := ParseHex(c.Hex())
			if err != nil {
				t.Fatalf("ParseHex(%s) failed: %v", c.Hex(), err)
			}
			if back != c {
				t.Errorf("round trip mismatch: %v -> %s -> %v", c, c.Hex(), back)
			}
		}
	}
	for r := 0; r < 256; r += 15 {
		for g := 0; g < 256; g += 17 {
			for b := 0; b < 256; b += 51 {
				c := RGBColor{uint8(r), uint8(g), uint8(b)}
				if back, _ := ParseHex(c.Hex()); back != c {
					t.Errorf("round trip mismatch for %v", c)
				}
			}
		}
	}
}

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#ff8000")
	if err != nil {
		t.Fatalf("ParseHex failed: %v", err)
	}
	if c != (RGBColor{255, 128, 0}) {
		t.Errorf("Expected {255 128 0}, got %v", c)
	}
	if c.Hex() != "#FF8000" {
		t.Errorf("Expected uppercase output #FF8000, got %s", c.Hex())
	}

	for _, bad := range []string{"", "FFFFFF", "#FFF", "#GGGGGG", "#FFFFFFF", " #FFFFFF"} {
		if _, err := ParseHex(bad); !errors.Is(err, ErrInvalidHex) {
			t.Errorf("ParseHex(%q) should fail with ErrInvalidHex, got %v", bad, err)
		}
	}
}

func TestParseFillMethod(t *testing.T) {
	cases := map[string]FillMethod{
		"letterbox":    FillLetterbox,
		"normal":       FillLetterbox,
		"Crop":         FillCrop,
		"outpaint":     FillOutpaint,
		"contentAware": FillOutpaint,
	}
	for in, want := range cases {
		got, err := ParseFillMethod(in)
		if err != nil || got != want {
			t.Errorf("ParseFillMethod(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseFillMethod("stretch"); err == nil {
		t.Error("Expected error for unknown fill method")
	}
}

func TestParseBlendMode(t *testing.T) {
	if len(BlendModes()) != 13 {
		t.Fatalf("Expected 13 blend modes, got %d", len(BlendModes()))
	}
	for _, in := range []string{"softLight", "softlight", "soft-light", "SOFT_LIGHT"} {
		m, err := ParseBlendMode(in)
		if err != nil || m != BlendSoftLight {
			t.Errorf("ParseBlendMode(%q) = %q, %v", in, m, err)
		}
	}
	if m, _ := ParseBlendMode(""); m != BlendNormal {
		t.Errorf("Empty blend mode should default to normal, got %q", m)
	}
	if _, err := ParseBlendMode("colorDodge"); err == nil {
		t.Error("Expected error for unsupported blend mode")
	}
}

func TestParseAxisAndSizing(t *testing.T) {
	if a, err := ParseAxis("Height"); err != nil || a != AxisHeight {
		t.Errorf("ParseAxis(Height) = %v, %v", a, err)
	}
	if AxisWidth.Other() != AxisHeight || AxisHeight.Other() != AxisWidth {
		t.Error("Other() should swap axes")
	}
	if _, err := ParseAxis("depth"); err == nil {
		t.Error("Expected error for unknown axis")
	}
	if s, err := ParseSizingMode("COVER"); err != nil || s != SizingCover {
		t.Errorf("ParseSizingMode(COVER) = %v, %v", s, err)
	}
}

func TestRect(t *testing.T) {
	r := RectFromEdges(540, 0, 1620, 1080)
	if r.Width != 1080 || r.Height != 1080 {
		t.Errorf("Expected 1080x1080, got %s", r.Size())
	}
	cx, cy := r.Center()
	if cx != 1080 || cy != 540 {
		t.Errorf("Expected center (1080,540), got (%v,%v)", cx, cy)
	}
	if r.String() != "[540,0,1620,1080]" {
		t.Errorf("Unexpected string form %s", r)
	}
}
