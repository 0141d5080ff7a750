package mouse

import (
	"sync"
	"time"
)

// Button represents a mouse button.
type Button uint8

const (
	// ButtonNone indicates no button.
	ButtonNone Button = iota
	// ButtonLeft is the primary (left) mouse button.
	ButtonLeft
	// ButtonMiddle is the middle mouse button (scroll wheel click).
	ButtonMiddle
	// ButtonRight is the secondary (right) mouse button.
	ButtonRight
)

// String returns a string representation of the button.
func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonMiddle:
		return "middle"
	case ButtonRight:
		return "right"
	default:
		return "none"
	}
}

// Buttons is the set of buttons held at one instant.
type Buttons uint8

// Button masks.
const (
	HeldNone   Buttons = 0
	HeldLeft   Buttons = 1 << 0
	HeldMiddle Buttons = 1 << 1
	HeldRight  Buttons = 1 << 2
)

// buttonOrder is the order edges are reported in.
var buttonOrder = [...]Button{ButtonLeft, ButtonMiddle, ButtonRight}

// Mask returns the mask bit for a button.
func (b Button) Mask() Buttons {
	switch b {
	case ButtonLeft:
		return HeldLeft
	case ButtonMiddle:
		return HeldMiddle
	case ButtonRight:
		return HeldRight
	default:
		return HeldNone
	}
}

// Has returns true if the set contains the given button.
func (m Buttons) Has(b Button) bool {
	mask := b.Mask()
	return mask != HeldNone && m&mask != 0
}

// Action represents the type of mouse action.
type Action uint8

const (
	// ActionNone indicates no action.
	ActionNone Action = iota
	// ActionPress indicates a button press.
	ActionPress
	// ActionRelease indicates a button release.
	ActionRelease
	// ActionMove indicates mouse movement (no button held).
	ActionMove
	// ActionDrag indicates mouse movement with a button held.
	ActionDrag
)

// String returns a string representation of the action.
func (a Action) String() string {
	switch a {
	case ActionPress:
		return "press"
	case ActionRelease:
		return "release"
	case ActionMove:
		return "move"
	case ActionDrag:
		return "drag"
	default:
		return "none"
	}
}

// Position represents a screen coordinate in cells.
type Position struct {
	X int
	Y int
}

// Equal returns true if two positions are equal.
func (p Position) Equal(other Position) bool {
	return p.X == other.X && p.Y == other.Y
}

// Event represents a translated mouse event.
type Event struct {
	// Position is the screen coordinates.
	Position Position

	// Button is the button that changed; ButtonNone for moves.
	Button Button

	// Held is the button set after the event.
	Held Buttons

	// Action is the type of mouse action.
	Action Action

	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// Config configures translator behavior.
type Config struct {
	// ReportHover emits moves while no button is held.
	ReportHover bool

	// Buttons are the buttons whose edges are reported. Others are dropped
	// from the held set before translation.
	Buttons Buttons
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		ReportHover: true,
		Buttons:     HeldLeft | HeldMiddle | HeldRight,
	}
}

// Translator turns button-state reports into press, release and move events.
type Translator struct {
	mu     sync.Mutex
	config Config

	held    Buttons
	pos     Position
	started bool
}

// NewTranslator creates a new translator with the given configuration.
func NewTranslator(config Config) *Translator {
	return &Translator{config: config}
}

// Translate compares a report against the previous one and returns the
// resulting events, possibly none.
func (t *Translator) Translate(pos Position, held Buttons, at time.Time) []Event {
	t.mu.Lock()
	defer t.mu.Unlock()

	held &= t.config.Buttons
	prev := t.held
	var events []Event

	if !t.started || !pos.Equal(t.pos) {
		action := ActionMove
		if prev != HeldNone {
			action = ActionDrag
		}
		if action == ActionDrag || t.config.ReportHover {
			events = append(events, Event{Position: pos, Held: prev, Action: action, Timestamp: at})
		}
	}

	cur := prev
	for _, b := range buttonOrder {
		if prev.Has(b) && !held.Has(b) {
			cur &^= b.Mask()
			events = append(events, Event{Position: pos, Button: b, Held: cur, Action: ActionRelease, Timestamp: at})
		}
	}
	for _, b := range buttonOrder {
		if !prev.Has(b) && held.Has(b) {
			cur |= b.Mask()
			events = append(events, Event{Position: pos, Button: b, Held: cur, Action: ActionPress, Timestamp: at})
		}
	}

	t.held = held
	t.pos = pos
	t.started = true

	return events
}

// Held returns the buttons held after the last report.
func (t *Translator) Held() Buttons {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.held
}

// Reset clears all translator state.
func (t *Translator) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.held = HeldNone
	t.pos = Position{}
	t.started = false
}
