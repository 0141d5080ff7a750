package shape

import "github.com/dshills/borderedit/internal/geom"

// Inset is the distance between the shape bounds and its drawn outline.
// Handle markers use the same value as their radius.
const Inset = 3.0

// Handle positions, clockwise from the top-left corner.
const (
	HandleTopLeft = iota
	HandleTop
	HandleTopRight
	HandleRight
	HandleBottomRight
	HandleBottom
	HandleBottomLeft
	HandleLeft
	HandleCount
)

// Circle is a round handle marker.
type Circle struct {
	Center geom.Point
	Radius float64
}

// Geometry is everything a renderer needs to draw a shape, in shape-local
// coordinates.
type Geometry struct {
	// Outline is a closed polygon; the last point repeats the first.
	Outline [5]geom.Point

	// Handles are indexed by the Handle* constants.
	Handles [HandleCount]Circle
}

// GeometryFor builds the geometry of a width x height shape: the outline is
// the bounds inset by Inset on every side, with one handle on each corner and
// on each edge midpoint of that inset rectangle.
func GeometryFor(width, height float64) Geometry {
	x, y := Inset, Inset
	w := width - 2*Inset
	h := height - 2*Inset

	var g Geometry
	g.Outline = [5]geom.Point{
		{X: x, Y: y},
		{X: x, Y: y + h},
		{X: x + w, Y: y + h},
		{X: x + w, Y: y},
		{X: x, Y: y},
	}

	centers := [HandleCount]geom.Point{
		HandleTopLeft:     {X: x, Y: y},
		HandleTop:         {X: x + w/2, Y: y},
		HandleTopRight:    {X: x + w, Y: y},
		HandleRight:       {X: x + w, Y: y + h/2},
		HandleBottomRight: {X: x + w, Y: y + h},
		HandleBottom:      {X: x + w/2, Y: y + h},
		HandleBottomLeft:  {X: x, Y: y + h},
		HandleLeft:        {X: x, Y: y + h/2},
	}
	for i, c := range centers {
		g.Handles[i] = Circle{Center: c, Radius: Inset}
	}

	return g
}

// HandleRegion returns the region a handle marker resizes.
func HandleRegion(handle int) geom.Region {
	switch handle {
	case HandleTopLeft:
		return geom.RegionTopLeft
	case HandleTop:
		return geom.RegionTop
	case HandleTopRight:
		return geom.RegionTopRight
	case HandleRight:
		return geom.RegionRight
	case HandleBottomRight:
		return geom.RegionBottomRight
	case HandleBottom:
		return geom.RegionBottom
	case HandleBottomLeft:
		return geom.RegionBottomLeft
	case HandleLeft:
		return geom.RegionLeft
	default:
		return geom.RegionNone
	}
}

// Translate returns the geometry moved by offset, typically the shape's
// top-left corner to obtain surface coordinates.
func (g Geometry) Translate(offset geom.Point) Geometry {
	out := g
	for i := range out.Outline {
		out.Outline[i] = out.Outline[i].Add(offset)
	}
	for i := range out.Handles {
		out.Handles[i].Center = out.Handles[i].Center.Add(offset)
	}
	return out
}

// Cursor is the pointer glyph shown over a shape.
type Cursor uint8

const (
	// CursorArrow is the default pointer, shown outside the shape.
	CursorArrow Cursor = iota
	// CursorIBeam is shown over any border or corner handle.
	CursorIBeam
	// CursorHand is shown over the shape body.
	CursorHand
)

// String returns a human-readable cursor name.
func (c Cursor) String() string {
	switch c {
	case CursorIBeam:
		return "ibeam"
	case CursorHand:
		return "hand"
	default:
		return "arrow"
	}
}

// CursorFor maps a region to its cursor glyph.
func CursorFor(r geom.Region) Cursor {
	switch {
	case r == geom.RegionCenter:
		return CursorHand
	case r.IsHandle():
		return CursorIBeam
	default:
		return CursorArrow
	}
}
