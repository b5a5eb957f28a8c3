package compositor

import (
	"image"
	"math"
)

// CoverCrop returns the centred region of a srcW×srcH image that, scaled to
// dstW×dstH, fills the destination without letterboxing or distortion.
//
// A source wider than the target keeps its full height and loses columns on
// both sides; otherwise it keeps its full width and loses rows.
func CoverCrop(srcW, srcH, dstW, dstH int) image.Rectangle {
	if srcW <= 0 || srcH <= 0 || dstW <= 0 || dstH <= 0 {
		return image.Rectangle{}
	}
	imgRatio := float64(srcW) / float64(srcH)
	targetRatio := float64(dstW) / float64(dstH)

	if imgRatio > targetRatio {
		cropW := clamp(int(math.Round(float64(srcH)*targetRatio)), 1, srcW)
		x := (srcW - cropW) / 2
		return image.Rect(x, 0, x+cropW, srcH)
	}
	cropH := clamp(int(math.Round(float64(srcW)/targetRatio)), 1, srcH)
	y := (srcH - cropH) / 2
	return image.Rect(0, y, srcW, y+cropH)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
