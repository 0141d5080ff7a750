// Package shape provides the editable rectangle manipulated by the editor.
//
// A Shape owns the mutable editing buffer (position, size, active region).
// Readers such as the renderer, the exporter and lifecycle hooks never touch
// the buffer directly; they work on the immutable Snapshot returned by
// Shape.Snapshot.
package shape

import (
	"github.com/google/uuid"

	"github.com/dshills/borderedit/internal/geom"
)

// Shape is an editable axis-aligned rectangle.
// It is owned by a single editor and is not safe for concurrent use.
type Shape struct {
	id       string
	rect     geom.Rect
	margin   float64
	editable bool
	region   geom.Region
}

// Option configures a Shape.
type Option func(*Shape)

// WithMargin sets the handle sensitivity margin.
// Non-positive values keep the default.
func WithMargin(margin float64) Option {
	return func(s *Shape) {
		if margin > 0 {
			s.margin = margin
		}
	}
}

// WithID sets an explicit shape identifier.
func WithID(id string) Option {
	return func(s *Shape) {
		if id != "" {
			s.id = id
		}
	}
}

// New creates an editable, zero-sized shape with its top-left corner at pos.
func New(pos geom.Point, opts ...Option) *Shape {
	s := &Shape{
		id:       uuid.New().String(),
		rect:     geom.Rect{Left: pos.X, Top: pos.Y},
		margin:   geom.DefaultMargin,
		editable: true,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ID returns the unique shape identifier.
func (s *Shape) ID() string {
	return s.id
}

// Rect returns the current rectangle.
func (s *Shape) Rect() geom.Rect {
	return s.rect
}

// SetRect replaces the whole rectangle.
func (s *Shape) SetRect(r geom.Rect) {
	s.rect = r
}

// SetPosition moves the top-left corner, keeping the size.
func (s *Shape) SetPosition(left, top float64) {
	s.rect.Left = left
	s.rect.Top = top
}

// SetHorizontal updates the horizontal extent only.
func (s *Shape) SetHorizontal(left, width float64) {
	s.rect.Left = left
	s.rect.Width = width
}

// SetVertical updates the vertical extent only.
func (s *Shape) SetVertical(top, height float64) {
	s.rect.Top = top
	s.rect.Height = height
}

// Margin returns the handle sensitivity margin.
func (s *Shape) Margin() float64 {
	return s.margin
}

// Region returns the region computed on the last pointer move.
func (s *Shape) Region() geom.Region {
	return s.region
}

// Editable returns true while the shape accepts interaction.
func (s *Shape) Editable() bool {
	return s.editable
}

// SetEditable enables or disables interaction.
// Disabling clears the region so cursor feedback falls back to the arrow.
func (s *Shape) SetEditable(editable bool) {
	s.editable = editable
	if !editable {
		s.region = geom.RegionNone
	}
}

// PointerMove recomputes the active region from a pointer position given in
// the shape's own coordinate frame. Points the hit tester cannot classify
// leave the previous region in place.
func (s *Shape) PointerMove(local geom.Point) {
	if !s.editable {
		return
	}

	if region, ok := geom.Classify(local, s.rect.Width, s.rect.Height, s.margin); ok {
		s.region = region
	}
}

// PointerLeave resets the region once the pointer has left the shape.
func (s *Shape) PointerLeave() {
	s.region = geom.RegionNone
}

// Cursor returns the cursor glyph matching the current region.
func (s *Shape) Cursor() Cursor {
	return CursorFor(s.region)
}

// Snapshot returns an immutable copy of the shape state.
func (s *Shape) Snapshot() Snapshot {
	return Snapshot{
		ID:       s.id,
		Rect:     s.rect,
		Region:   s.region,
		Editable: s.editable,
		Margin:   s.margin,
	}
}

// Snapshot is a read-only view of a shape at one point in time.
type Snapshot struct {
	ID       string
	Rect     geom.Rect
	Region   geom.Region
	Editable bool
	Margin   float64
}

// Geometry returns the outline and handle markers for the snapshot.
func (s Snapshot) Geometry() Geometry {
	return GeometryFor(s.Rect.Width, s.Rect.Height)
}

// Cursor returns the cursor glyph for the snapshot's region.
func (s Snapshot) Cursor() Cursor {
	return CursorFor(s.Region)
}
