package editor

import (
	"github.com/dshills/borderedit/internal/geom"
	"github.com/dshills/borderedit/internal/shape"
)

// Button identifies the pointer button that changed in an event.
type Button uint8

const (
	// ButtonNone is used for moves, where no button changed.
	ButtonNone Button = iota
	ButtonLeft
	ButtonMiddle
	ButtonRight
)

// String returns a human-readable button name.
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

// Target is the element a pointer event originated from.
type Target uint8

const (
	// TargetSurface means the event hit the bare surface.
	TargetSurface Target = iota
	// TargetShape means the event hit the shape or the shape holds capture.
	TargetShape
)

// String returns a human-readable target name.
func (t Target) String() string {
	if t == TargetShape {
		return "shape"
	}
	return "surface"
}

// Event is a pointer event in surface coordinates.
type Event struct {
	// Button is the button that changed (ButtonNone for moves).
	Button Button

	// LeftHeld and RightHeld report the button state after the event.
	LeftHeld  bool
	RightHeld bool

	// Position is relative to the surface's top-left corner.
	Position geom.Point

	Target Target
}

// Surface is the host the shape lives on.
// It reports its size for clamping, holds the shape's visual element and
// routes pointer input exclusively to a capturing shape.
type Surface interface {
	Size() (width, height float64)
	Add(s *shape.Shape)
	Remove(s *shape.Shape)
	Capture(s *shape.Shape)
	Release(s *shape.Shape)
	Captured() *shape.Shape
}
