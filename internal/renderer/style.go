package renderer

import "github.com/dshills/borderedit/internal/renderer/core"

// Re-exported so callers need not import core for everyday drawing.
type (
	Style = core.Style
	Color = core.Color
	Cell  = core.Cell
)

// Common colors.
var (
	ColorDefault = core.ColorDefault
	ColorBlack   = core.ColorBlack
	ColorWhite   = core.ColorWhite
	ColorBlue    = core.ColorBlue
	ColorGray    = core.ColorGray
	ColorRed     = core.ColorFromRGB(255, 0, 0)
	ColorGreen   = core.ColorFromRGB(0, 160, 0)
	ColorYellow  = core.ColorFromRGB(255, 255, 0)
	ColorCyan    = core.ColorFromRGB(0, 255, 255)
	ColorMagenta = core.ColorFromRGB(255, 0, 255)
)

// Text attributes.
const (
	AttrNone = core.AttrNone
	AttrBold = core.AttrBold
	AttrDim  = core.AttrDim
)

// ColorFromHex parses a #RGB or #RRGGBB color.
func ColorFromHex(hex string) (Color, error) {
	return core.ColorFromHex(hex)
}

// DefaultStyle returns the default terminal style.
func DefaultStyle() Style {
	return core.DefaultStyle()
}

// NewStyle creates a style with the given foreground color.
func NewStyle(fg Color) Style {
	return core.NewStyle(fg)
}

// Styles holds the styles used to paint a shape.
type Styles struct {
	// Stroke paints the outline.
	Stroke Style

	// Handle paints the eight resize handles.
	Handle Style

	// Active paints the handle or outline under the pointer.
	Active Style

	// Inactive paints a shape that is not editable.
	Inactive Style
}

// DefaultStyles returns a blue outline with a lighter active highlight.
func DefaultStyles() Styles {
	return StylesFor(ColorBlue, ColorBlue, ColorBlue.Blend(ColorWhite, 0.5))
}

// StylesFor builds shape styles from three colors. The inactive style is
// the stroke color faded halfway to gray.
func StylesFor(stroke, handle, active Color) Styles {
	return Styles{
		Stroke:   NewStyle(stroke),
		Handle:   NewStyle(handle),
		Active:   NewStyle(active).Bold(),
		Inactive: NewStyle(stroke.Blend(ColorGray, 0.5)),
	}
}
