package editor

import (
	"github.com/dshills/borderedit/internal/geom"
	"github.com/dshills/borderedit/internal/shape"
)

// StateKind enumerates the interaction states.
type StateKind uint8

const (
	StateIdle StateKind = iota
	StateCreating
	StateDragging
	StateResizing
)

// String returns the state name.
func (k StateKind) String() string {
	switch k {
	case StateIdle:
		return "idle"
	case StateCreating:
		return "creating"
	case StateDragging:
		return "dragging"
	case StateResizing:
		return "resizing"
	default:
		return "unknown"
	}
}

// phase is the kind of pointer event being dispatched.
type phase uint8

const (
	phaseDown phase = iota
	phaseMove
	phaseUp
)

// state is the value the controller replaces on every transition.
type state struct {
	kind StateKind

	// anchor is the fixed point of the gesture: the create origin, the last
	// drag position, or the corner opposite the resized handle.
	anchor geom.Point

	// region is frozen at pointer-down while resizing.
	region geom.Region
}

// step applies one event to st and returns the next state. When replay is
// true the same event must be delivered once to the returned state.
func (c *Controller) step(st state, p phase, ev Event) (next state, replay bool) {
	switch st.kind {
	case StateIdle:
		return c.idle(st, p, ev)
	case StateCreating:
		return c.creating(st, p, ev), false
	case StateDragging:
		return c.dragging(st, p, ev), false
	case StateResizing:
		return c.resizing(st, p, ev), false
	default:
		return st, false
	}
}

func (c *Controller) idle(st state, p phase, ev Event) (state, bool) {
	if p != phaseDown {
		return st, false
	}

	switch {
	case ev.Button == ButtonLeft:
		if c.shape == nil {
			return state{kind: StateCreating}, true
		}
		switch region := c.shape.Region(); region {
		case geom.RegionNone:
			return st, false
		case geom.RegionCenter:
			return state{kind: StateDragging}, true
		default:
			return state{kind: StateResizing}, true
		}

	case ev.Button == ButtonRight && ev.Target == TargetSurface:
		c.removeShape()
		// Creating ignores the replayed right-button down, so the new shape
		// only appears on the next left-down.
		return state{kind: StateCreating}, true
	}

	return st, false
}

func (c *Controller) creating(st state, p phase, ev Event) state {
	switch p {
	case phaseDown:
		if ev.Button != ButtonLeft {
			return st
		}
		s := shape.New(ev.Position, shape.WithMargin(c.margin))
		s.SetEditable(c.editable)
		c.shape = s
		c.surface.Add(s)
		c.surface.Capture(s)
		c.emit(Change{Kind: ShapeCreated, Shape: s.Snapshot()})
		st.anchor = ev.Position

	case phaseMove:
		if c.shape == nil || !ev.LeftHeld || c.surface.Captured() != c.shape {
			return st
		}
		cur := c.clampPointer(ev.Position)
		c.shape.SetRect(geom.RectFromCorners(st.anchor, cur))

	case phaseUp:
		if ev.Button != ButtonLeft || c.shape == nil {
			return st
		}
		c.surface.Release(c.shape)
		return state{kind: StateIdle}
	}

	return st
}

func (c *Controller) dragging(st state, p phase, ev Event) state {
	switch p {
	case phaseDown:
		if ev.Button != ButtonLeft {
			return st
		}
		c.surface.Capture(c.shape)
		st.anchor = ev.Position

	case phaseMove:
		if !ev.LeftHeld {
			return st
		}
		delta := ev.Position.Sub(st.anchor)
		r := c.shape.Rect()
		w, h := c.surface.Size()
		c.shape.SetPosition(
			geom.ClampLeft(r.Left+delta.X, w, r.Width),
			geom.ClampTop(r.Top+delta.Y, h, r.Height),
		)
		st.anchor = ev.Position

	case phaseUp:
		if ev.Button != ButtonLeft {
			return st
		}
		c.surface.Release(c.shape)
		return state{kind: StateIdle}
	}

	return st
}

func (c *Controller) resizing(st state, p phase, ev Event) state {
	switch p {
	case phaseDown:
		if ev.Button != ButtonLeft {
			return st
		}
		c.surface.Capture(c.shape)
		st.region = c.shape.Region()
		st.anchor = resizeAnchor(st.region, c.shape.Rect())

	case phaseMove:
		if !ev.LeftHeld {
			return st
		}
		cur := c.clampPointer(ev.Position)
		r := geom.RectFromCorners(st.anchor, cur)
		if st.region.MovesX() {
			c.shape.SetHorizontal(r.Left, r.Width)
		}
		if st.region.MovesY() {
			c.shape.SetVertical(r.Top, r.Height)
		}

	case phaseUp:
		if ev.Button != ButtonLeft {
			return st
		}
		c.surface.Release(c.shape)
		return state{kind: StateIdle}
	}

	return st
}

// resizeAnchor returns the point that stays fixed while the handle for
// region is dragged.
func resizeAnchor(region geom.Region, r geom.Rect) geom.Point {
	switch region {
	case geom.RegionRight, geom.RegionBottom, geom.RegionBottomRight:
		return r.TopLeft()
	case geom.RegionLeft, geom.RegionTop, geom.RegionTopLeft:
		return r.BottomRight()
	case geom.RegionTopRight:
		return geom.Pt(r.Left, r.Top+r.Height)
	case geom.RegionBottomLeft:
		return geom.Pt(r.Left+r.Width, r.Top)
	default:
		return r.TopLeft()
	}
}
