package raster

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedFormat is returned for layered editor formats that cannot be
// decoded in-process
var ErrUnsupportedFormat = errors.New("unsupported image format")

var layeredFormats = map[string]bool{".psd": true, ".psb": true, ".ai": true, ".svg": true}

// LoadImage decodes a file honoring EXIF orientation, with a WebP fallback
func LoadImage(path string) (image.Image, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if layeredFormats[ext] {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupportedFormat)
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err == nil {
		return img, nil
	}
	openErr := err

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if ext == ".webp" {
		if img, err := webp.Decode(f); err == nil {
			return img, nil
		}
	}
	return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), openErr)
}
