package geom

// ClampLeft keeps a shape of width shapeWidth inside a surface of width
// surfaceWidth. It saturates instead of failing; when the shape is wider
// than the surface the result is 0.
func ClampLeft(proposed, surfaceWidth, shapeWidth float64) float64 {
	return clampPosition(proposed, surfaceWidth-shapeWidth)
}

// ClampTop is the vertical counterpart of ClampLeft.
func ClampTop(proposed, surfaceHeight, shapeHeight float64) float64 {
	return clampPosition(proposed, surfaceHeight-shapeHeight)
}

// ClampPointerX keeps a pointer coordinate inside [0, surfaceWidth].
func ClampPointerX(x, surfaceWidth float64) float64 {
	return clampPosition(x, surfaceWidth)
}

// ClampPointerY keeps a pointer coordinate inside [0, surfaceHeight].
func ClampPointerY(y, surfaceHeight float64) float64 {
	return clampPosition(y, surfaceHeight)
}

// ClampPointer clamps both pointer coordinates to a surface of size w x h.
func ClampPointer(p Point, w, h float64) Point {
	return Point{X: ClampPointerX(p.X, w), Y: ClampPointerY(p.Y, h)}
}

// clampPosition returns max(0, min(v, limit)).
func clampPosition(v, limit float64) float64 {
	if v > limit {
		v = limit
	}
	if v < 0 {
		v = 0
	}
	return v
}
