package render

import (
	"image/color"
	"image/draw"
)

// Role names a caption block. Each role has its own font and color memory.
type Role int

const (
	RoleTitle Role = iota
	RoleContent
)

func (r Role) String() string {
	switch r {
	case RoleTitle:
		return "title"
	case RoleContent:
		return "content"
	default:
		return "unknown"
	}
}

func (r Role) other() Role {
	if r == RoleTitle {
		return RoleContent
	}
	return RoleTitle
}

type TextAlign int

const (
	TextAlignLeft TextAlign = iota
	TextAlignCenter
	TextAlignRight
)

type Effect int

const (
	EffectNone Effect = iota
	EffectOutline
)

// TextStyle describes how a block of lines is drawn.
type TextStyle struct {
	Role   Role
	Size   float64 // pixels per em
	Color  color.Color
	Align  TextAlign
	Effect Effect
}

// TextDrawer draws display lines onto a surface. Line i is vertically
// centered at anchorY + i*Size*LineSpacing.
type TextDrawer interface {
	DrawLines(dst draw.Image, lines []string, style TextStyle, anchorY float64) error
}

// Logger is the component logger used across the render package.
type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

// AnchorX returns the horizontal anchor for a surface of the given width.
func AnchorX(align TextAlign, width int) float64 {
	switch align {
	case TextAlignLeft:
		return SideMargin
	case TextAlignRight:
		return float64(width - SideMargin)
	default:
		return float64(width) / 2
	}
}
