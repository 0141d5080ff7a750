// Package surface provides the terminal-backed host that shapes live on.
//
// A Canvas maps terminal cells to surface units, keeps the shapes added to
// it, routes pointer input to a capturing shape and resolves which element
// a pointer event targets. It implements editor.Surface.
package surface

import (
	"math"

	"github.com/dshills/borderedit/internal/editor"
	"github.com/dshills/borderedit/internal/geom"
	"github.com/dshills/borderedit/internal/input/mouse"
	"github.com/dshills/borderedit/internal/shape"
)

// Default cell size in surface units. Terminal cells are roughly twice as
// tall as they are wide.
const (
	DefaultCellWidth  = 4.0
	DefaultCellHeight = 8.0
)

// Pointer receives editor pointer events.
type Pointer interface {
	PointerDown(ev editor.Event)
	PointerMove(ev editor.Event)
	PointerUp(ev editor.Event)
}

// Canvas is a drawing surface of cols x rows terminal cells.
// It is not safe for concurrent use.
type Canvas struct {
	cols, rows   int
	cellW, cellH float64

	children []*shape.Shape
	captured *shape.Shape
}

// New creates a canvas. Non-positive cell sizes fall back to the defaults.
func New(cols, rows int, cellW, cellH float64) *Canvas {
	c := &Canvas{}
	c.Resize(cols, rows)
	c.SetCellSize(cellW, cellH)
	return c
}

// Resize changes the number of cells. Negative values are treated as zero.
func (c *Canvas) Resize(cols, rows int) {
	c.cols = max(cols, 0)
	c.rows = max(rows, 0)
}

// SetCellSize changes the size of one cell in surface units.
func (c *Canvas) SetCellSize(w, h float64) {
	if w <= 0 {
		w = DefaultCellWidth
	}
	if h <= 0 {
		h = DefaultCellHeight
	}
	c.cellW, c.cellH = w, h
}

// CellSize returns the size of one cell in surface units.
func (c *Canvas) CellSize() (w, h float64) {
	return c.cellW, c.cellH
}

// Cells returns the canvas size in cells.
func (c *Canvas) Cells() (cols, rows int) {
	return c.cols, c.rows
}

// Size returns the canvas size in surface units.
func (c *Canvas) Size() (width, height float64) {
	return float64(c.cols) * c.cellW, float64(c.rows) * c.cellH
}

// Add places a shape on the canvas. Adding a shape twice is a no-op.
func (c *Canvas) Add(s *shape.Shape) {
	if s == nil || c.indexOf(s) >= 0 {
		return
	}
	c.children = append(c.children, s)
}

// Remove takes a shape off the canvas and drops its capture.
func (c *Canvas) Remove(s *shape.Shape) {
	if i := c.indexOf(s); i >= 0 {
		c.children = append(c.children[:i], c.children[i+1:]...)
	}
	if c.captured == s {
		c.captured = nil
	}
}

// Children returns the shapes on the canvas, bottom first.
func (c *Canvas) Children() []*shape.Shape {
	out := make([]*shape.Shape, len(c.children))
	copy(out, c.children)
	return out
}

// Capture routes all pointer input to s until Release.
// Shapes that are not on the canvas cannot capture.
func (c *Canvas) Capture(s *shape.Shape) {
	if c.indexOf(s) >= 0 {
		c.captured = s
	}
}

// Release ends the capture held by s, if any.
func (c *Canvas) Release(s *shape.Shape) {
	if c.captured == s {
		c.captured = nil
	}
}

// Captured returns the shape holding capture, or nil.
func (c *Canvas) Captured() *shape.Shape {
	return c.captured
}

func (c *Canvas) indexOf(s *shape.Shape) int {
	for i, child := range c.children {
		if child == s {
			return i
		}
	}
	return -1
}

// ToUnits converts a cell position to surface units at the cell's
// top-left corner.
func (c *Canvas) ToUnits(p mouse.Position) geom.Point {
	return geom.Pt(float64(p.X)*c.cellW, float64(p.Y)*c.cellH)
}

// ToCell converts a point in surface units to the cell containing it.
func (c *Canvas) ToCell(p geom.Point) (col, row int) {
	return int(math.Floor(p.X / c.cellW)), int(math.Floor(p.Y / c.cellH))
}

// HitTest returns the topmost shape containing p, or nil.
func (c *Canvas) HitTest(p geom.Point) *shape.Shape {
	for i := len(c.children) - 1; i >= 0; i-- {
		if c.children[i].Rect().Contains(p) {
			return c.children[i]
		}
	}
	return nil
}

// TargetAt resolves the element a pointer event at p originates from.
// A capturing shape receives every event.
func (c *Canvas) TargetAt(p geom.Point) editor.Target {
	if c.captured != nil || c.HitTest(p) != nil {
		return editor.TargetShape
	}
	return editor.TargetSurface
}

// Event converts a translated mouse event into an editor event.
func (c *Canvas) Event(ev mouse.Event) editor.Event {
	p := c.ToUnits(ev.Position)
	return editor.Event{
		Button:    convertButton(ev.Button),
		LeftHeld:  ev.Held.Has(mouse.ButtonLeft),
		RightHeld: ev.Held.Has(mouse.ButtonRight),
		Position:  p,
		Target:    c.TargetAt(p),
	}
}

// Deliver converts ev and hands it to the matching pointer handler.
// Returns false for events the editor does not consume.
func (c *Canvas) Deliver(p Pointer, ev mouse.Event) bool {
	switch ev.Action {
	case mouse.ActionPress:
		p.PointerDown(c.Event(ev))
	case mouse.ActionRelease:
		p.PointerUp(c.Event(ev))
	case mouse.ActionMove, mouse.ActionDrag:
		p.PointerMove(c.Event(ev))
	default:
		return false
	}
	return true
}

func convertButton(b mouse.Button) editor.Button {
	switch b {
	case mouse.ButtonLeft:
		return editor.ButtonLeft
	case mouse.ButtonMiddle:
		return editor.ButtonMiddle
	case mouse.ButtonRight:
		return editor.ButtonRight
	default:
		return editor.ButtonNone
	}
}
