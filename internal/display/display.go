// Package display shows composed slides on the Linux framebuffer.
package display

import (
	"image"
	"image/color"
	"image/draw"
)

// DefaultDevice is the framebuffer opened when no path is given.
const DefaultDevice = "/dev/fb0"

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

// fitRect returns the largest rectangle with the aspect ratio of src that fits
// centered inside dst.
func fitRect(src, dst image.Rectangle) image.Rectangle {
	sw, sh := src.Dx(), src.Dy()
	dw, dh := dst.Dx(), dst.Dy()
	if sw <= 0 || sh <= 0 || dw <= 0 || dh <= 0 {
		return image.Rectangle{}
	}
	w, h := dw, dw*sh/sw
	if h > dh {
		w, h = dh*sw/sh, dh
	}
	x := dst.Min.X + (dw-w)/2
	y := dst.Min.Y + (dh-h)/2
	return image.Rect(x, y, x+w, y+h)
}

// blit letterboxes src onto dst with nearest-neighbor sampling. The bars are
// painted black.
func blit(dst draw.Image, src image.Image) {
	bounds := dst.Bounds()
	draw.Draw(dst, bounds, image.Black, image.Point{}, draw.Src)

	sb := src.Bounds()
	r := fitRect(sb, bounds)
	if r.Empty() {
		return
	}
	for y := 0; y < r.Dy(); y++ {
		sy := sb.Min.Y + (y*sb.Dy())/r.Dy()
		for x := 0; x < r.Dx(); x++ {
			sx := sb.Min.X + (x*sb.Dx())/r.Dx()
			cr, cg, cb, _ := src.At(sx, sy).RGBA()
			dst.Set(r.Min.X+x, r.Min.Y+y, color.RGBA{R: uint8(cr >> 8), G: uint8(cg >> 8), B: uint8(cb >> 8), A: 0xFF})
		}
	}
}
