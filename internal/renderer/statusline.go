package renderer

import (
	"fmt"
	"strings"

	"github.com/rivo/uniseg"

	"github.com/dshills/borderedit/internal/geom"
	"github.com/dshills/borderedit/internal/renderer/backend"
	"github.com/dshills/borderedit/internal/shape"
)

// StatusLine renders the bottom status line: the interaction state, the
// shape bounds and the pointer glyph, or a transient message.
type StatusLine struct {
	state    string
	rect     geom.Rect
	cursor   shape.Cursor
	hasShape bool

	message     string
	messageType MessageType

	stateStyles map[string]Style

	width int
}

// MessageType indicates the type of status message.
type MessageType int

const (
	MessageNone MessageType = iota
	MessageInfo
	MessageWarning
	MessageError
)

// NewStatusLine creates a new status line.
func NewStatusLine() *StatusLine {
	return &StatusLine{
		state:       "idle",
		stateStyles: defaultStateStyles(),
	}
}

func defaultStateStyles() map[string]Style {
	return map[string]Style{
		"idle":     DefaultStyle().Bold().WithBackground(ColorBlue).WithForeground(ColorWhite),
		"creating": DefaultStyle().Bold().WithBackground(ColorGreen).WithForeground(ColorBlack),
		"dragging": DefaultStyle().Bold().WithBackground(ColorMagenta).WithForeground(ColorWhite),
		"resizing": DefaultStyle().Bold().WithBackground(ColorYellow).WithForeground(ColorBlack),
	}
}

// SetState updates the displayed interaction state.
func (s *StatusLine) SetState(state string) {
	if state != "" {
		s.state = state
	}
}

// State returns the displayed interaction state.
func (s *StatusLine) State() string {
	return s.state
}

// SetShape updates the displayed shape bounds and pointer glyph.
func (s *StatusLine) SetShape(rect geom.Rect, cursor shape.Cursor) {
	s.rect = rect
	s.cursor = cursor
	s.hasShape = true
}

// ClearShape shows that no shape exists.
func (s *StatusLine) ClearShape() {
	s.hasShape = false
	s.cursor = shape.CursorArrow
}

// SetMessage displays a status message in place of the status bar.
func (s *StatusLine) SetMessage(msg string, msgType MessageType) {
	s.message = msg
	s.messageType = msgType
}

// ClearMessage clears the status message.
func (s *StatusLine) ClearMessage() {
	s.message = ""
	s.messageType = MessageNone
}

// Message returns the current message and its type.
func (s *StatusLine) Message() (string, MessageType) {
	return s.message, s.messageType
}

// Resize updates the status line width.
func (s *StatusLine) Resize(width int) {
	s.width = width
}

// Render draws the status line to the backend at the given row.
func (s *StatusLine) Render(b backend.Backend, row int) {
	if s.message != "" {
		s.renderMessage(b, row)
		return
	}
	s.renderStatusBar(b, row)
}

// renderStatusBar renders the state badge on the left and the shape
// info on the right.
func (s *StatusLine) renderStatusBar(b backend.Backend, row int) {
	stateStyle, ok := s.stateStyles[s.state]
	if !ok {
		stateStyle = DefaultStyle().Bold().WithBackground(ColorGray)
	}
	barStyle := DefaultStyle().WithBackground(ColorGray).WithForeground(ColorWhite)

	s.clear(b, row, barStyle)

	col := drawText(b, 0, row, " "+strings.ToUpper(s.state)+" ", stateStyle, s.width)

	info := s.formatShape()
	infoWidth := uniseg.StringWidth(info)
	start := s.width - infoWidth - 1
	if start <= col {
		// Not enough room; keep the head of the info after the badge.
		drawText(b, col+1, row, truncate(info, s.width-col-1), barStyle, s.width)
		return
	}
	drawText(b, start, row, info, barStyle, s.width)
}

// renderMessage renders a status message.
func (s *StatusLine) renderMessage(b backend.Backend, row int) {
	var msgStyle Style
	switch s.messageType {
	case MessageError:
		msgStyle = NewStyle(ColorRed).Bold()
	case MessageWarning:
		msgStyle = NewStyle(ColorYellow)
	default:
		msgStyle = DefaultStyle()
	}

	s.clear(b, row, msgStyle)
	drawText(b, 0, row, truncate(s.message, s.width), msgStyle, s.width)
}

func (s *StatusLine) clear(b backend.Backend, row int, style Style) {
	for x := 0; x < s.width; x++ {
		b.SetCell(x, row, Cell{Rune: ' ', Width: 1, Style: style})
	}
}

// formatShape formats the shape info for the right side.
// Format: "12,40 64x32 | hand"
func (s *StatusLine) formatShape() string {
	if !s.hasShape {
		return "no shape | " + s.cursor.String()
	}
	return fmt.Sprintf("%g,%g %gx%g | %s",
		s.rect.Left, s.rect.Top, s.rect.Width, s.rect.Height, s.cursor)
}

// drawText draws s starting at col and returns the column after it.
// Wide clusters that would cross limit are dropped.
func drawText(b backend.Backend, col, row int, s string, style Style, limit int) int {
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		w := g.Width()
		if col+w > limit {
			break
		}
		runes := g.Runes()
		b.SetCell(col, row, Cell{Rune: runes[0], Width: w, Style: style})
		col += w
	}
	return col
}

// truncate shortens s to at most width display columns.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if uniseg.StringWidth(s) <= width {
		return s
	}

	var out strings.Builder
	used := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		w := g.Width()
		if used+w > width {
			break
		}
		out.WriteString(g.Str())
		used += w
	}
	return out.String()
}
