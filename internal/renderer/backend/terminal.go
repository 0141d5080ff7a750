package backend

import (
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/borderedit/internal/renderer/core"
)

// Terminal draws through a tcell screen and reports its keys, mouse and
// resizes.
type Terminal struct {
	mu       sync.Mutex
	screen   tcell.Screen
	onResize func(width, height int)
}

// NewTerminal creates a backend on the controlling terminal.
func NewTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewTerminalWithScreen(screen), nil
}

// NewTerminalWithScreen wraps an existing screen, such as a simulation screen.
func NewTerminalWithScreen(screen tcell.Screen) *Terminal {
	return &Terminal{screen: screen}
}

func (t *Terminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.screen.Init()
}

// Shutdown restores the terminal. A blocked PollEvent then returns
// EventClosed.
func (t *Terminal) Shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.Fini()
}

func (t *Terminal) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.screen.Size()
}

func (t *Terminal) OnResize(callback func(width, height int)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onResize = callback
}

func (t *Terminal) SetCell(x, y int, cell core.Cell) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.SetContent(x, y, cell.Rune, nil, tcellStyle(cell.Style))
}

func (t *Terminal) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.Clear()
}

func (t *Terminal) Show() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.Show()
}

func (t *Terminal) HideCursor() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.HideCursor()
}

// EnableMouse turns on button, drag and plain motion reports. Motion is
// needed for hover feedback.
func (t *Terminal) EnableMouse() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.EnableMouse(tcell.MouseMotionEvents)
}

func (t *Terminal) DisableMouse() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.DisableMouse()
}

func (t *Terminal) PollEvent() Event {
	ev := t.screen.PollEvent()
	if ev == nil {
		// nil once the screen is finalized
		return Event{Type: EventClosed}
	}
	return t.convert(ev)
}

func (t *Terminal) convert(ev tcell.Event) Event {
	switch e := ev.(type) {
	case *tcell.EventKey:
		return Event{Type: EventKey, Key: convertKey(e.Key()), Rune: e.Rune()}

	case *tcell.EventMouse:
		x, y := e.Position()
		return Event{Type: EventMouse, MouseX: x, MouseY: y, Buttons: convertMouseButtons(e.Buttons())}

	case *tcell.EventResize:
		w, h := e.Size()
		t.mu.Lock()
		onResize := t.onResize
		t.mu.Unlock()
		if onResize != nil {
			onResize(w, h)
		}
		return Event{Type: EventResize, Width: w, Height: h}
	}
	return Event{Type: EventNone}
}

func tcellStyle(s core.Style) tcell.Style {
	style := tcell.StyleDefault
	if !s.Foreground.IsDefault() {
		style = style.Foreground(tcellColor(s.Foreground))
	}
	if !s.Background.IsDefault() {
		style = style.Background(tcellColor(s.Background))
	}
	return style.
		Bold(s.Attributes.Has(core.AttrBold)).
		Dim(s.Attributes.Has(core.AttrDim)).
		Italic(s.Attributes.Has(core.AttrItalic)).
		Underline(s.Attributes.Has(core.AttrUnderline)).
		Reverse(s.Attributes.Has(core.AttrReverse))
}

func tcellColor(c core.Color) tcell.Color {
	if c.Indexed {
		return tcell.PaletteColor(int(c.R))
	}
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// convertKey maps the keys the shell reacts to; everything else is
// KeyNone.
func convertKey(k tcell.Key) Key {
	switch k {
	case tcell.KeyRune:
		return KeyRune
	case tcell.KeyEscape:
		return KeyEscape
	case tcell.KeyEnter:
		return KeyEnter
	case tcell.KeyCtrlC:
		return KeyCtrlC
	case tcell.KeyCtrlQ:
		return KeyCtrlQ
	}
	return KeyNone
}

// convertMouseButtons converts a tcell button mask to the set of held
// buttons. Wheel bits are dropped. tcell numbers the secondary button
// Button2 and the middle button Button3.
func convertMouseButtons(b tcell.ButtonMask) MouseMask {
	var result MouseMask
	if b&tcell.ButtonPrimary != 0 {
		result |= MouseLeft
	}
	if b&tcell.ButtonSecondary != 0 {
		result |= MouseRight
	}
	if b&tcell.ButtonMiddle != 0 {
		result |= MouseMid
	}
	return result
}
