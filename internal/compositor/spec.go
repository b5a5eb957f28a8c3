package compositor

import (
	"fmt"
	"image"
	"image/color"
)

// Spec holds the fixed geometry of a baked portrait, in display pixels.
// Every length is multiplied by Scale before rendering.
type Spec struct {
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
	// Radius of the two right-hand corners of the frame.
	Radius int `yaml:"radius" json:"radius"`
	// Gap between the outer frame edge and the inner gap shape.
	Gap int `yaml:"gap" json:"gap"`
	// PhotoInset shrinks the photo clip inside the gap shape. Zero means the
	// photo fills the gap shape completely.
	PhotoInset int `yaml:"photo_inset" json:"photoInset"`
	// Scale is the oversampling factor for high density displays.
	Scale int `yaml:"scale" json:"scale"`
}

// DefaultSpec is the portrait geometry used by the signature template.
func DefaultSpec() Spec {
	return Spec{Width: 95, Height: 125, Radius: 55, Gap: 5, Scale: 3}
}

// Validate checks that the spec describes a drawable D silhouette at every inset level.
func (s Spec) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("canvas must be positive, got %dx%d", s.Width, s.Height)
	}
	if s.Scale < 1 {
		return fmt.Errorf("scale must be >= 1, got %d", s.Scale)
	}
	if s.Gap < 0 || s.PhotoInset < 0 {
		return fmt.Errorf("gap and photo inset must not be negative")
	}
	if s.Gap+s.PhotoInset >= s.Radius {
		return fmt.Errorf("gap (%d) plus photo inset (%d) must be smaller than radius (%d)", s.Gap, s.PhotoInset, s.Radius)
	}
	// Only the right corners are rounded, so the radius is bounded by the full
	// width and by half the height rather than by min(W,H)/2.
	if s.Radius > s.Width || 2*s.Radius > s.Height {
		return fmt.Errorf("radius %d does not fit a %dx%d canvas", s.Radius, s.Width, s.Height)
	}
	// Insetting by d shrinks the width by 2d but the radius only by d, so the
	// straight top edge of the innermost shape keeps a non-negative length only
	// while R+d <= W.
	if d := s.Gap + s.PhotoInset; s.Radius+d > s.Width {
		return fmt.Errorf("radius %d plus inset %d exceeds width %d", s.Radius, d, s.Width)
	}
	return nil
}

// Size returns the output raster dimensions.
func (s Spec) Size() image.Point {
	return image.Pt(s.Width*s.Scale, s.Height*s.Scale)
}

// Outer is the frame silhouette covering the whole canvas.
func (s Spec) Outer() Shape {
	return s.inset(0)
}

// GapShape is the frame silhouette inset by Gap.
func (s Spec) GapShape() Shape {
	return s.inset(s.Gap)
}

// PhotoShape is the clip the photo is drawn through.
func (s Spec) PhotoShape() Shape {
	return s.inset(s.Gap + s.PhotoInset)
}

func (s Spec) inset(d int) Shape {
	k := s.Scale
	return DShape(
		float64(d*k),
		float64(d*k),
		float64((s.Width-2*d)*k),
		float64((s.Height-2*d)*k),
		float64((s.Radius-d)*k),
	)
}

// Colors are the neutral fills around the brand coloured frame.
type Colors struct {
	// Background is the page colour pre-filled into the corners.
	Background color.Color
	// GapFill backs the photo and shows through as the separation ring.
	GapFill color.Color
}

// DefaultColors match the signature table background.
func DefaultColors() Colors {
	return Colors{
		Background: color.RGBA{0xFA, 0xFA, 0xFA, 0xFF},
		GapFill:    color.RGBA{0xEE, 0xEE, 0xEE, 0xFF},
	}
}

// opaque drops any alpha from c so layers can never leave transparency behind.
func opaque(c color.Color) color.RGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return color.RGBA{R: n.R, G: n.G, B: n.B, A: 0xFF}
}
