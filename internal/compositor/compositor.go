// Package compositor bakes a portrait photo and a brand coloured D shaped frame
// into a single opaque PNG that email clients render without any styling.
package compositor

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/cristianadrielbraun/sigbake/internal/imageio"
)

var (
	// ErrRenderingUnavailable means no drawing surface could be obtained.
	// Callers fall back to the undecoded upload.
	ErrRenderingUnavailable = errors.New("rendering unavailable")
	// ErrInvalidImage is returned for a missing or empty source bitmap.
	ErrInvalidImage = imageio.ErrInvalidImage
)

// DefaultMaxSurfacePixels bounds the canvas a single bake may allocate.
const DefaultMaxSurfacePixels = 4096 * 4096

// Surface allocates the canvas for one bake.
type Surface func(r image.Rectangle) (draw.Image, error)

// RGBASurface returns a Surface producing *image.RGBA canvases of at most maxPixels.
func RGBASurface(maxPixels int) Surface {
	return func(r image.Rectangle) (draw.Image, error) {
		if r.Dx()*r.Dy() > maxPixels {
			return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrRenderingUnavailable, r.Dx(), r.Dy(), maxPixels)
		}
		return image.NewRGBA(r), nil
	}
}

// Unavailable is a Surface for hosts without a raster backend.
func Unavailable(image.Rectangle) (draw.Image, error) {
	return nil, ErrRenderingUnavailable
}

// Baked is the flattened result of one bake.
type Baked struct {
	Image image.Image
	PNG   []byte
}

// DataURI returns the PNG embedded as an image/png data URI.
func (b *Baked) DataURI() string {
	return imageio.DataURI(imageio.MIMEPNG, b.PNG)
}

// Compositor renders portraits for a fixed Spec. It holds no per-bake state
// and is safe for concurrent use.
type Compositor struct {
	spec    Spec
	colors  Colors
	surface Surface
}

// Option configures a Compositor.
type Option func(*Compositor)

// WithColors overrides the neutral fills.
func WithColors(c Colors) Option {
	return func(cp *Compositor) { cp.colors = c }
}

// WithSurface overrides canvas allocation.
func WithSurface(s Surface) Option {
	return func(cp *Compositor) { cp.surface = s }
}

// New validates spec and returns a Compositor.
func New(spec Spec, opts ...Option) (*Compositor, error) {
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid composite spec: %w", err)
	}
	c := &Compositor{
		spec:    spec,
		colors:  DefaultColors(),
		surface: RGBASurface(DefaultMaxSurfacePixels),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Spec returns the geometry the compositor renders.
func (c *Compositor) Spec() Spec {
	return c.spec
}

// Bake flattens src into the frame painted with frame. The layers are, in
// order: page background, outer D in the frame colour, gap D in the gap fill,
// then src cover-fitted and clipped to the photo D.
func (c *Compositor) Bake(src image.Image, frame color.Color) (*Baked, error) {
	if src == nil || src.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty source bitmap", ErrInvalidImage)
	}

	canvas, err := c.surface(image.Rectangle{Max: c.spec.Size()})
	if err != nil {
		if !errors.Is(err, ErrRenderingUnavailable) {
			err = fmt.Errorf("%w: %v", ErrRenderingUnavailable, err)
		}
		return nil, err
	}

	layers := []layer{
		fillCanvas(opaque(c.colors.Background)),
		fillShape(c.spec.Outer(), opaque(frame)),
		fillShape(c.spec.GapShape(), opaque(c.colors.GapFill)),
		clippedPhoto(src, c.spec.PhotoShape()),
	}
	for _, l := range layers {
		l(canvas)
	}

	data, err := imageio.EncodePNG(canvas)
	if err != nil {
		return nil, err
	}
	return &Baked{Image: canvas, PNG: data}, nil
}
