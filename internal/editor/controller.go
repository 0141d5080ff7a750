package editor

import (
	"github.com/dshills/borderedit/internal/geom"
	"github.com/dshills/borderedit/internal/shape"
)

// ChangeKind identifies what a Change reports.
type ChangeKind uint8

const (
	// StateChanged reports a transition between interaction states.
	StateChanged ChangeKind = iota
	// ShapeCreated reports a new shape added to the surface.
	ShapeCreated
	// ShapeUpdated reports a new position or size.
	ShapeUpdated
	// ShapeRemoved reports the shape deleted from the surface.
	ShapeRemoved
)

// String returns a human-readable change name.
func (k ChangeKind) String() string {
	switch k {
	case StateChanged:
		return "state"
	case ShapeCreated:
		return "created"
	case ShapeUpdated:
		return "updated"
	case ShapeRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Change describes one observable effect of a pointer event.
type Change struct {
	Kind ChangeKind

	// From and To are set for StateChanged.
	From StateKind
	To   StateKind

	// Shape is the shape as it was after the change. For ShapeRemoved it is
	// the last state of the removed shape. The zero value means no shape.
	Shape shape.Snapshot
}

// ChangeCallback is called after an event has been fully processed.
type ChangeCallback func(Change)

// Option configures a Controller.
type Option func(*Controller)

// WithMargin sets the handle margin of shapes the controller creates.
func WithMargin(margin float64) Option {
	return func(c *Controller) {
		c.SetMargin(margin)
	}
}

// Controller owns the edited shape and the current interaction state.
type Controller struct {
	surface Surface

	// shape is nil until the first left-down creates one.
	shape *shape.Shape
	state state

	margin   float64
	editable bool

	callbacks []ChangeCallback
	pending   []Change
}

// New creates a controller in the Idle state with no shape.
func New(surface Surface, opts ...Option) *Controller {
	c := &Controller{
		surface:  surface,
		state:    state{kind: StateIdle},
		margin:   geom.DefaultMargin,
		editable: true,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// PointerDown delivers a button press.
func (c *Controller) PointerDown(ev Event) {
	c.dispatch(phaseDown, ev)
}

// PointerMove delivers a pointer move.
// The shape sees the move first and recomputes its region, the way a host
// routes moves to the element under the pointer or holding capture.
func (c *Controller) PointerMove(ev Event) {
	if c.shape != nil {
		if ev.Target == TargetShape || c.surface.Captured() == c.shape {
			c.shape.PointerMove(c.shape.Rect().Local(ev.Position))
		} else {
			c.shape.PointerLeave()
		}
	}
	c.dispatch(phaseMove, ev)
}

// PointerUp delivers a button release. Once the shape has released
// capture, a pointer outside it is reported to it as a leave, so no region
// from the finished gesture survives.
func (c *Controller) PointerUp(ev Event) {
	c.dispatch(phaseUp, ev)
	if c.shape != nil && c.surface.Captured() != c.shape && !c.shape.Rect().Contains(ev.Position) {
		c.shape.PointerLeave()
	}
}

// State returns the current interaction state.
func (c *Controller) State() StateKind {
	return c.state.kind
}

// Shape returns a snapshot of the current shape.
// ok is false when no shape exists.
func (c *Controller) Shape() (snap shape.Snapshot, ok bool) {
	if c.shape == nil {
		return shape.Snapshot{}, false
	}
	return c.shape.Snapshot(), true
}

// SetMargin changes the handle margin used for shapes created from now on.
// Non-positive values are ignored.
func (c *Controller) SetMargin(margin float64) {
	if margin > 0 {
		c.margin = margin
	}
}

// Margin returns the handle margin for new shapes.
func (c *Controller) Margin() float64 {
	return c.margin
}

// SetEditable enables or disables interaction with the current shape and
// with shapes created later.
func (c *Controller) SetEditable(editable bool) {
	c.editable = editable
	if c.shape != nil {
		c.shape.SetEditable(editable)
	}
}

// OnChange registers a callback for changes.
// Returns a function to unregister the callback.
func (c *Controller) OnChange(callback ChangeCallback) func() {
	c.callbacks = append(c.callbacks, callback)
	index := len(c.callbacks) - 1

	return func() {
		// Remove callback by setting to nil (preserves indices)
		if index < len(c.callbacks) {
			c.callbacks[index] = nil
		}
	}
}

// dispatch runs the transition function for one event. A replay requested
// by the first step is honoured once; a replay requested by the replayed
// step is dropped.
func (c *Controller) dispatch(p phase, ev Event) {
	var before geom.Rect
	if c.shape != nil {
		before = c.shape.Rect()
	}

	next, replay := c.step(c.state, p, ev)
	c.transition(next)
	if replay {
		next, _ = c.step(c.state, p, ev)
		c.transition(next)
	}

	if c.shape != nil && c.shape.Rect() != before && p == phaseMove {
		c.emit(Change{Kind: ShapeUpdated, Shape: c.shape.Snapshot()})
	}

	c.flush()
}

func (c *Controller) transition(next state) {
	from := c.state.kind
	c.state = next
	if from != next.kind {
		c.emit(Change{Kind: StateChanged, From: from, To: next.kind, Shape: c.snapshot()})
	}
}

func (c *Controller) removeShape() {
	if c.shape == nil {
		return
	}
	snap := c.shape.Snapshot()
	c.surface.Remove(c.shape)
	c.shape = nil
	c.emit(Change{Kind: ShapeRemoved, Shape: snap})
}

func (c *Controller) clampPointer(p geom.Point) geom.Point {
	w, h := c.surface.Size()
	return geom.ClampPointer(p, w, h)
}

func (c *Controller) snapshot() shape.Snapshot {
	snap, _ := c.Shape()
	return snap
}

func (c *Controller) emit(ch Change) {
	c.pending = append(c.pending, ch)
}

// flush notifies callbacks once the state has settled.
func (c *Controller) flush() {
	if len(c.pending) == 0 {
		return
	}
	changes := c.pending
	c.pending = nil

	for _, ch := range changes {
		for _, cb := range c.callbacks {
			if cb != nil {
				cb(ch)
			}
		}
	}
}
