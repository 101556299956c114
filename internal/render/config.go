package render

import "image/color"

// Canvas and caption geometry.
const (
	// 3:4 portrait, the carousel post format.
	CanvasWidth  = 1080
	CanvasHeight = 1440

	TitleSize   = 120.0
	ContentSize = 90.0

	// Vertical anchors as a fraction of canvas height.
	TitleAnchor   = 0.10
	ContentAnchor = 0.45

	LineSpacing = 1.2
	SideMargin  = 50

	OutlineLightWidth = 20.0
	OutlineDarkWidth  = 12.0
)

var (
	Background   = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	OutlineLight = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	OutlineDark  = color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xFF}
)
