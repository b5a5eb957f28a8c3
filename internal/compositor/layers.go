package compositor

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"github.com/srwiley/rasterx"
)

// layer draws one step of the bake onto the canvas. Layers run in order and
// each one fully overdraws the area it covers, so the result depends only on
// the list and its inputs.
type layer func(canvas draw.Image)

// fillCanvas paints the whole surface with c.
func fillCanvas(c color.Color) layer {
	return func(canvas draw.Image) {
		draw.Draw(canvas, canvas.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	}
}

// fillShape paints the anti-aliased interior of s with c.
func fillShape(s Shape, c color.Color) layer {
	return func(canvas draw.Image) {
		rasterize(canvas, s, c)
	}
}

// clippedPhoto draws src, cover-fitted to the bounds of clip, through clip.
func clippedPhoto(src image.Image, clip Shape) layer {
	return func(canvas draw.Image) {
		dst := clip.Bounds().Intersect(canvas.Bounds())
		if dst.Empty() {
			return
		}
		sb := src.Bounds()
		crop := CoverCrop(sb.Dx(), sb.Dy(), dst.Dx(), dst.Dy()).Add(sb.Min)
		fitted := imaging.Resize(imaging.Crop(src, crop), dst.Dx(), dst.Dy(), imaging.Lanczos)

		mask := image.NewAlpha(canvas.Bounds())
		rasterize(mask, clip, color.Opaque)
		draw.DrawMask(canvas, dst, fitted, image.Point{}, mask, dst.Min, draw.Over)
	}
}

// rasterize fills the path of s onto dst. The scanner is scoped to the call.
func rasterize(dst draw.Image, s Shape, c color.Color) {
	b := dst.Bounds()
	scanner := rasterx.NewScannerGV(b.Dx(), b.Dy(), dst, b)
	filler := rasterx.NewFiller(b.Dx(), b.Dy(), scanner)
	filler.SetColor(c)
	path := s.Path()
	path.AddTo(filler)
	filler.Draw()
}
