package compositor

import (
	"image"
	"math"

	"github.com/srwiley/rasterx"
)

// kappa places cubic control points so a Bézier segment approximates a quarter circle.
const kappa = 0.5522847498

// Shape is a rectangle whose right edge is replaced by two quarter circles of
// radius R. The left corners stay square.
type Shape struct {
	X, Y, W, H, R float64
}

// DShape builds the D silhouette at the given position. It is the only path
// builder used by the compositor; the frame, gap and photo clip differ only in
// their arguments.
func DShape(x, y, w, h, r float64) Shape {
	return Shape{X: x, Y: y, W: w, H: h, R: r}
}

// Path traces the outline clockwise starting at the top-left corner.
func (s Shape) Path() rasterx.Path {
	var p rasterx.Path
	right, bottom := s.X+s.W, s.Y+s.H
	k := kappa * s.R

	p.Start(rasterx.ToFixedP(s.X, s.Y))
	p.Line(rasterx.ToFixedP(right-s.R, s.Y))
	p.CubeBezier(
		rasterx.ToFixedP(right-s.R+k, s.Y),
		rasterx.ToFixedP(right, s.Y+s.R-k),
		rasterx.ToFixedP(right, s.Y+s.R),
	)
	p.Line(rasterx.ToFixedP(right, bottom-s.R))
	p.CubeBezier(
		rasterx.ToFixedP(right, bottom-s.R+k),
		rasterx.ToFixedP(right-s.R+k, bottom),
		rasterx.ToFixedP(right-s.R, bottom),
	)
	p.Line(rasterx.ToFixedP(s.X, bottom))
	p.Stop(true)
	return p
}

// Bounds is the smallest pixel rectangle covering the shape.
func (s Shape) Bounds() image.Rectangle {
	return image.Rect(
		int(math.Floor(s.X)),
		int(math.Floor(s.Y)),
		int(math.Ceil(s.X+s.W)),
		int(math.Ceil(s.Y+s.H)),
	)
}

// Contains reports whether the point (px, py) lies inside the silhouette.
func (s Shape) Contains(px, py float64) bool {
	right, bottom := s.X+s.W, s.Y+s.H
	if px < s.X || px > right || py < s.Y || py > bottom {
		return false
	}
	// Straight band left of the arcs
	if px <= right-s.R {
		return true
	}
	// Vertical band between the arcs
	if py >= s.Y+s.R && py <= bottom-s.R {
		return true
	}
	cx := right - s.R
	cy := s.Y + s.R
	if py > bottom-s.R {
		cy = bottom - s.R
	}
	dx, dy := px-cx, py-cy
	return dx*dx+dy*dy <= s.R*s.R
}
