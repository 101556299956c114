package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"

	"github.com/Getabako/instagram-workflow-template/internal/render/layout"
	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Request is one composition: a decoded background and two caption texts.
// Either text may be blank, which omits that caption block.
type Request struct {
	Background image.Image
	Title      string
	Content    string
}

// Compositor turns a Request into a captioned 1080x1440 PNG.
type Compositor struct {
	Colors *ColorSelector
	Text   TextDrawer
	// Scaler resamples the background; nil means bilinear.
	Scaler xdraw.Interpolator
	Logger Logger
}

// NewCompositor wires a compositor that draws outlined captions with fonts.
func NewCompositor(colors *ColorSelector, fonts FontProvider) *Compositor {
	return &Compositor{Colors: colors, Text: NewOutlineRenderer(fonts)}
}

// Compose renders req and returns the PNG-encoded canvas.
func (c *Compositor) Compose(req Request) ([]byte, error) {
	canvas, err := c.Render(req)
	if err != nil {
		return nil, err
	}
	return EncodePNG(canvas)
}

func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// ComposeFile loads the background at path and composes it with the captions.
func (c *Compositor) ComposeFile(path, title, content string) ([]byte, error) {
	bg, err := LoadBackground(path)
	if err != nil {
		return nil, err
	}
	return c.Compose(Request{Background: bg, Title: title, Content: content})
}

// Render draws req onto a fresh canvas. Colors are always drawn for both
// roles, title first, even when a caption is blank.
func (c *Compositor) Render(req Request) (*image.RGBA, error) {
	if req.Background == nil || req.Background.Bounds().Empty() {
		return nil, &LoadError{Err: errEmptyImage}
	}

	canvas := image.NewRGBA(image.Rect(0, 0, CanvasWidth, CanvasHeight))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: Background}, image.Point{}, draw.Src)
	c.drawBackground(canvas, req.Background)

	titleColor, contentColor, err := c.Colors.PickPair()
	if err != nil {
		return nil, err
	}

	if err := c.drawBlock(canvas, req.Title, RoleTitle, TitleSize, titleColor, TitleAnchor); err != nil {
		return nil, err
	}
	if err := c.drawBlock(canvas, req.Content, RoleContent, ContentSize, contentColor, ContentAnchor); err != nil {
		return nil, err
	}
	return canvas, nil
}

func (c *Compositor) drawBlock(canvas *image.RGBA, text string, role Role, size float64, col color.Color, anchor float64) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	style := TextStyle{Role: role, Size: size, Color: col, Align: TextAlignCenter, Effect: EffectOutline}
	if err := c.Text.DrawLines(canvas, layout.Lines(text), style, CanvasHeight*anchor); err != nil {
		return fmt.Errorf("draw %s: %w", role, err)
	}
	return nil
}

// drawBackground cover-fits the source crop onto the canvas, centered.
func (c *Compositor) drawBackground(canvas *image.RGBA, src image.Image) {
	b := src.Bounds()
	crop := layout.SourceCrop(b.Dx(), b.Dy())
	scale, dst := layout.CoverFit(crop, CanvasWidth, CanvasHeight)

	sx := float64(b.Min.X) + crop.X
	sy := float64(b.Min.Y) + crop.Y
	s2d := f64.Aff3{
		scale, 0, dst.X - scale*sx,
		0, scale, dst.Y - scale*sy,
	}
	sr := image.Rect(
		int(math.Floor(sx)), int(math.Floor(sy)),
		int(math.Ceil(sx+crop.W)), int(math.Ceil(sy+crop.H)),
	).Intersect(b)

	scaler := c.Scaler
	if scaler == nil {
		scaler = xdraw.BiLinear
	}
	scaler.Transform(canvas, s2d, src, sr, xdraw.Over, nil)

	if c.Logger != nil {
		c.Logger.Infof("compose", "background %dx%d crop %.1fx%.1f+%.1f scale %.4f", b.Dx(), b.Dy(), crop.W, crop.H, crop.X, scale)
	}
}
