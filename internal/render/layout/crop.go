package layout

import "math"

// Rect is a floating point rectangle in source or canvas pixel space.
type Rect struct {
	X, Y, W, H float64
}

// Ratio returns W/H, or 0 for an empty rect.
func (r Rect) Ratio() float64 {
	if r.H == 0 {
		return 0
	}
	return r.W / r.H
}

// Portrait ratio applied to square sources.
const (
	RatioW = 3.0
	RatioH = 4.0
)

// SourceCrop returns the region of a width x height source that is drawn.
// Only exactly square sources are cropped to 3:4, centered horizontally;
// any other source is used at its full extent and left to CoverFit.
func SourceCrop(width, height int) Rect {
	crop := Rect{W: float64(width), H: float64(height)}
	if width != height {
		return crop
	}
	crop.H = float64(width) * RatioH / RatioW
	if crop.H > float64(height) {
		crop.H = float64(height)
		crop.W = float64(height) * RatioW / RatioH
		crop.X = (float64(width) - crop.W) / 2
	}
	return crop
}

// CoverFit scales crop uniformly so it covers a canvasW x canvasH canvas and
// centers it. The returned destination rect may extend past the canvas.
func CoverFit(crop Rect, canvasW, canvasH int) (scale float64, dst Rect) {
	if crop.W <= 0 || crop.H <= 0 {
		return 0, Rect{}
	}
	scale = math.Max(float64(canvasW)/crop.W, float64(canvasH)/crop.H)
	dst.W = crop.W * scale
	dst.H = crop.H * scale
	dst.X = (float64(canvasW) - dst.W) / 2
	dst.Y = (float64(canvasH) - dst.H) / 2
	return scale, dst
}
