package geom

// Region identifies the part of a shape under the pointer.
// Center is the body away from every edge; None means the pointer is outside
// the shape or editing is disabled.
type Region uint8

const (
	RegionNone Region = iota
	RegionLeft
	RegionRight
	RegionTop
	RegionBottom
	RegionCenter
	RegionTopLeft
	RegionTopRight
	RegionBottomLeft
	RegionBottomRight
)

// DefaultMargin is the default handle sensitivity, in surface units.
const DefaultMargin = 12.0

// String returns a human-readable region name.
func (r Region) String() string {
	switch r {
	case RegionLeft:
		return "left"
	case RegionRight:
		return "right"
	case RegionTop:
		return "top"
	case RegionBottom:
		return "bottom"
	case RegionCenter:
		return "center"
	case RegionTopLeft:
		return "top-left"
	case RegionTopRight:
		return "top-right"
	case RegionBottomLeft:
		return "bottom-left"
	case RegionBottomRight:
		return "bottom-right"
	default:
		return "none"
	}
}

// IsHandle returns true for the eight border and corner regions.
func (r Region) IsHandle() bool {
	return r != RegionNone && r != RegionCenter
}

// MovesX returns true if resizing from r changes the horizontal extent.
func (r Region) MovesX() bool {
	switch r {
	case RegionLeft, RegionRight,
		RegionTopLeft, RegionTopRight, RegionBottomLeft, RegionBottomRight:
		return true
	}
	return false
}

// MovesY returns true if resizing from r changes the vertical extent.
func (r Region) MovesY() bool {
	switch r {
	case RegionTop, RegionBottom,
		RegionTopLeft, RegionTopRight, RegionBottomLeft, RegionBottomRight:
		return true
	}
	return false
}

// Classify returns the region of a shape of the given size that contains
// the shape-local point p. Bands are margin wide and inclusive at their
// borders.
//
// Points left of the shape (x < 0) fall between the bands and are not
// classified; ok is false and callers keep their previous region.
func Classify(p Point, width, height, margin float64) (region Region, ok bool) {
	switch {
	case p.X >= 0 && p.X <= margin:
		return bandY(p.Y, height, margin, RegionTopLeft, RegionLeft, RegionBottomLeft), true
	case p.X >= width-margin:
		return bandY(p.Y, height, margin, RegionTopRight, RegionRight, RegionBottomRight), true
	case p.X >= margin && p.X <= width-margin:
		switch {
		case p.Y >= 0 && p.Y <= margin:
			return RegionTop, true
		case p.Y >= height-margin:
			return RegionBottom, true
		default:
			return RegionCenter, true
		}
	}
	return RegionNone, false
}

// bandY picks one of three regions for a side column.
func bandY(y, height, margin float64, top, middle, bottom Region) Region {
	switch {
	case y >= margin && y <= height-margin:
		return middle
	case y < margin:
		return top
	default:
		return bottom
	}
}
