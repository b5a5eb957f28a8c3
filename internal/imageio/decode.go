// Package imageio turns uploaded bytes into images and images into the data
// URIs stored on a signature card.
package imageio

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	// ErrInvalidImage is returned for bytes that do not decode to a non-empty image.
	ErrInvalidImage = errors.New("invalid image")
	// ErrTooManyPixels is returned when the declared dimensions exceed the
	// decode limit. It matches ErrInvalidImage under errors.Is.
	ErrTooManyPixels = fmt.Errorf("%w: too many pixels", ErrInvalidImage)
)

// DefaultMaxPixels bounds the declared size of a raster upload, about the
// size of a 50 megapixel camera frame.
const DefaultMaxPixels = 50_000_000

// svgMinSide is the size the longer side of a vector upload is rasterized at.
const svgMinSide = 1024

// Sniff returns the media type of data without parameters, e.g. "image/png".
func Sniff(data []byte) string {
	m := mimetype.Detect(data).String()
	if i := strings.IndexByte(m, ';'); i >= 0 {
		m = m[:i]
	}
	return strings.TrimSpace(m)
}

// IsImage reports whether data sniffs as any image type.
func IsImage(data []byte) bool {
	return strings.HasPrefix(Sniff(data), "image/")
}

// Decode is DecodeLimit with DefaultMaxPixels.
func Decode(data []byte) (image.Image, string, error) {
	return DecodeLimit(data, DefaultMaxPixels)
}

// DecodeLimit rasterizes data and returns it with its sniffed media type. JPEG
// orientation tags are applied so portraits are upright. Raster images whose
// header declares more than maxPixels are rejected before any pixel data is
// read; SVGs are always rasterized at a fixed size.
func DecodeLimit(data []byte, maxPixels int) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", fmt.Errorf("%w: empty upload", ErrInvalidImage)
	}
	mt := Sniff(data)
	if !strings.HasPrefix(mt, "image/") {
		return nil, mt, fmt.Errorf("%w: unsupported type %s", ErrInvalidImage, mt)
	}

	var (
		img image.Image
		err error
	)
	if mt == "image/svg+xml" {
		img, err = decodeSVG(data)
	} else {
		if err := checkPixels(data, maxPixels); err != nil {
			return nil, mt, err
		}
		img, err = imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	}
	if err != nil {
		return nil, mt, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if img.Bounds().Empty() {
		return nil, mt, fmt.Errorf("%w: zero sized image", ErrInvalidImage)
	}
	return img, mt, nil
}

func decodeSVG(data []byte) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.WarnErrorMode)
	if err != nil {
		return nil, err
	}
	vw, vh := icon.ViewBox.W, icon.ViewBox.H
	if vw <= 0 || vh <= 0 {
		return nil, fmt.Errorf("svg has no view box")
	}
	scale := svgMinSide / math.Max(vw, vh)
	w := int(math.Ceil(vw * scale))
	h := int(math.Ceil(vh * scale))

	icon.SetTarget(0, 0, float64(w), float64(h))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1)
	return img, nil
}

func checkPixels(data []byte, maxPixels int) error {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("%w: zero sized image", ErrInvalidImage)
	}
	if maxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return fmt.Errorf("%w: %dx%d exceeds %d", ErrTooManyPixels, cfg.Width, cfg.Height, maxPixels)
	}
	return nil
}
