package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"

	"github.com/golang/freetype/raster"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// OutlineRenderer draws captions from glyph outlines. In outline mode each line
// is stroked twice (wide light, narrower dark, round joins) and then filled.
type OutlineRenderer struct {
	Fonts FontProvider
}

func NewOutlineRenderer(fonts FontProvider) *OutlineRenderer {
	return &OutlineRenderer{Fonts: fonts}
}

// DrawLines implements TextDrawer. Blank lines are skipped but still occupy
// their slot, so line i is always placed at anchorY + i*spacing.
func (r *OutlineRenderer) DrawLines(dst draw.Image, lines []string, style TextStyle, anchorY float64) error {
	if len(lines) == 0 {
		return nil
	}
	f, err := r.Fonts.Resolve(style.Role)
	if err != nil {
		return err
	}

	var buf sfnt.Buffer
	ppem := fixed.Int26_6(math.Round(style.Size * 64))
	metrics, err := f.Metrics(&buf, ppem, font.HintingNone)
	if err != nil {
		return fmt.Errorf("%s font metrics: %w", style.Role, err)
	}

	bounds := dst.Bounds()
	anchorX := AnchorX(style.Align, bounds.Dx())
	spacing := style.Size * LineSpacing
	// Canvas-style "middle" baseline: the em box is centered on the line's y.
	middleOffset := float64(metrics.Ascent-metrics.Descent) / 64 / 2
	pad := int(math.Ceil(OutlineLightWidth))
	bandHalf := int(math.Ceil(style.Size*LineSpacing)) + pad

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lineY := anchorY + float64(i)*spacing

		advance, err := walkGlyphs(f, &buf, ppem, line, fixed.Point26_6{}, nil)
		if err != nil {
			return err
		}
		width := float64(advance) / 64
		originX := anchorX
		switch style.Align {
		case TextAlignCenter:
			originX -= width / 2
		case TextAlignRight:
			originX -= width
		}

		// Rasterize only the horizontal band around this line.
		band := image.Rect(0, int(lineY)-bandHalf, bounds.Dx(), int(lineY)+bandHalf+1)
		band = band.Intersect(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		if band.Empty() {
			continue
		}
		origin := fixed.Point26_6{
			X: toFixed(originX),
			Y: toFixed(lineY + middleOffset - float64(band.Min.Y)),
		}
		var path raster.Path
		if _, err := walkGlyphs(f, &buf, ppem, line, origin, func(segments sfnt.Segments, dot fixed.Point26_6) {
			appendSegments(&path, segments, dot)
		}); err != nil {
			return err
		}
		if len(path) == 0 {
			continue
		}

		target := band.Add(bounds.Min)
		if style.Effect == EffectOutline {
			paintPath(dst, target, path, OutlineLight, OutlineLightWidth)
			paintPath(dst, target, path, OutlineDark, OutlineDarkWidth)
		}
		paintPath(dst, target, path, style.Color, 0)
	}
	return nil
}

// walkGlyphs lays out text from origin, calling visit (when non-nil) with each
// glyph's outline at its pen position, and returns the total advance.
func walkGlyphs(f *opentype.Font, buf *sfnt.Buffer, ppem fixed.Int26_6, text string, origin fixed.Point26_6, visit func(sfnt.Segments, fixed.Point26_6)) (fixed.Int26_6, error) {
	dot := origin
	var prev sfnt.GlyphIndex
	for i, ch := range []rune(text) {
		idx, err := f.GlyphIndex(buf, ch)
		if err != nil {
			return 0, fmt.Errorf("glyph index %q: %w", ch, err)
		}
		if i > 0 {
			// Fonts without a kern table report ErrNotFound.
			if kern, err := f.Kern(buf, prev, idx, ppem, font.HintingNone); err == nil {
				dot.X += kern
			}
		}
		if visit != nil {
			segments, err := f.LoadGlyph(buf, idx, ppem, nil)
			if err != nil {
				return 0, fmt.Errorf("load glyph %q: %w", ch, err)
			}
			visit(segments, dot)
		}
		advance, err := f.GlyphAdvance(buf, idx, ppem, font.HintingNone)
		if err != nil {
			return 0, fmt.Errorf("glyph advance %q: %w", ch, err)
		}
		dot.X += advance
		prev = idx
	}
	return dot.X - origin.X, nil
}

// cubicSteps is the number of line segments a cubic is flattened into; the
// raster stroker only understands lines and quadratics.
const cubicSteps = 8

// appendSegments converts y-down sfnt segments into closed raster subpaths.
func appendSegments(path *raster.Path, segments sfnt.Segments, dot fixed.Point26_6) {
	var start, current fixed.Point26_6
	open := false
	closeContour := func() {
		if open && current != start {
			path.Add1(start)
		}
		open = false
	}
	for _, seg := range segments {
		a0 := seg.Args[0].Add(dot)
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			closeContour()
			path.Start(a0)
			start, current, open = a0, a0, true
		case sfnt.SegmentOpLineTo:
			if a0 == current {
				continue
			}
			path.Add1(a0)
			current = a0
		case sfnt.SegmentOpQuadTo:
			a1 := seg.Args[1].Add(dot)
			if a0 == current && a1 == current {
				continue
			}
			path.Add2(a0, a1)
			current = a1
		case sfnt.SegmentOpCubeTo:
			a1, a2 := seg.Args[1].Add(dot), seg.Args[2].Add(dot)
			p0 := current
			for step := 1; step <= cubicSteps; step++ {
				p := cubicAt(p0, a0, a1, a2, float64(step)/cubicSteps)
				if p == current {
					continue
				}
				path.Add1(p)
				current = p
			}
		}
	}
	closeContour()
}

// paintPath fills (strokeWidth == 0) or strokes path into the target band of dst.
func paintPath(dst draw.Image, target image.Rectangle, path raster.Path, c color.Color, strokeWidth float64) {
	w, h := target.Dx(), target.Dy()
	rz := raster.NewRasterizer(w, h)
	rz.UseNonZeroWinding = true
	if strokeWidth > 0 {
		rz.AddStroke(path, toFixed(strokeWidth), raster.RoundCapper, raster.RoundJoiner)
	} else {
		rz.AddPath(path)
	}
	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	rz.Rasterize(raster.NewAlphaOverPainter(mask))
	draw.DrawMask(dst, target, image.NewUniform(c), image.Point{}, mask, image.Point{}, draw.Over)
}

func cubicAt(p0, p1, p2, p3 fixed.Point26_6, t float64) fixed.Point26_6 {
	u := 1 - t
	b0, b1, b2, b3 := u*u*u, 3*u*u*t, 3*u*t*t, t*t*t
	x := b0*float64(p0.X) + b1*float64(p1.X) + b2*float64(p2.X) + b3*float64(p3.X)
	y := b0*float64(p0.Y) + b1*float64(p1.Y) + b2*float64(p2.Y) + b3*float64(p3.Y)
	return fixed.Point26_6{X: fixed.Int26_6(math.Round(x)), Y: fixed.Int26_6(math.Round(y))}
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}
