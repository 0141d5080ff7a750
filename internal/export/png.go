package export

import (
	"errors"
	"image"
	"image/png"
	"io"

	"golang.org/x/image/vector"

	"github.com/dshills/borderedit/internal/geom"
	"github.com/dshills/borderedit/internal/shape"
)

// kappa places cubic control points so four curves approximate a circle.
const kappa = 0.5522847498

// Rasterize paints the shape outline and handles onto a transparent image.
func Rasterize(snap shape.Snapshot, opts Options) (*image.RGBA, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, errors.New("image size must be positive")
	}
	if opts.StrokeWidth <= 0 {
		opts.StrokeWidth = 1
	}

	img := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	g := snap.Geometry().Translate(snap.Rect.TopLeft())

	z := vector.NewRasterizer(opts.Width, opts.Height)
	strokeRect(z, g.Outline[0], g.Outline[2], opts.StrokeWidth/2)
	z.Draw(img, img.Bounds(), image.NewUniform(opts.Stroke), image.Point{})

	z.Reset(opts.Width, opts.Height)
	for _, h := range g.Handles {
		circle(z, h.Center, h.Radius)
	}
	z.Draw(img, img.Bounds(), image.NewUniform(opts.Handle), image.Point{})

	return img, nil
}

// EncodePNG rasterizes the shape and writes it as PNG.
func EncodePNG(w io.Writer, snap shape.Snapshot, opts Options) error {
	img, err := Rasterize(snap, opts)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// strokeRect adds a ring of the given half width around the rectangle with
// corners a and b. The inner edge winds the other way so it is left empty.
func strokeRect(z *vector.Rasterizer, a, b geom.Point, half float64) {
	r := geom.RectFromCorners(a, b)
	x0, y0 := r.Left-half, r.Top-half
	x1, y1 := r.Left+r.Width+half, r.Top+r.Height+half

	z.MoveTo(f32(x0), f32(y0))
	z.LineTo(f32(x1), f32(y0))
	z.LineTo(f32(x1), f32(y1))
	z.LineTo(f32(x0), f32(y1))
	z.ClosePath()

	if r.Width <= 2*half || r.Height <= 2*half {
		return
	}

	x0, y0 = r.Left+half, r.Top+half
	x1, y1 = r.Left+r.Width-half, r.Top+r.Height-half

	z.MoveTo(f32(x0), f32(y0))
	z.LineTo(f32(x0), f32(y1))
	z.LineTo(f32(x1), f32(y1))
	z.LineTo(f32(x1), f32(y0))
	z.ClosePath()
}

// circle adds a filled circle built from four cubic curves.
func circle(z *vector.Rasterizer, c geom.Point, r float64) {
	k := r * kappa

	z.MoveTo(f32(c.X+r), f32(c.Y))
	z.CubeTo(f32(c.X+r), f32(c.Y+k), f32(c.X+k), f32(c.Y+r), f32(c.X), f32(c.Y+r))
	z.CubeTo(f32(c.X-k), f32(c.Y+r), f32(c.X-r), f32(c.Y+k), f32(c.X-r), f32(c.Y))
	z.CubeTo(f32(c.X-r), f32(c.Y-k), f32(c.X-k), f32(c.Y-r), f32(c.X), f32(c.Y-r))
	z.CubeTo(f32(c.X+k), f32(c.Y-r), f32(c.X+r), f32(c.Y-k), f32(c.X+r), f32(c.Y))
	z.ClosePath()
}

func f32(v float64) float32 {
	return float32(v)
}
