package renderer

import (
	"math"
	"sync"
	"time"

	"github.com/dshills/borderedit/internal/geom"
	"github.com/dshills/borderedit/internal/renderer/backend"
	"github.com/dshills/borderedit/internal/shape"
)

// Glyphs used to paint a shape.
const (
	GlyphHorizontal  = '─'
	GlyphVertical    = '│'
	GlyphTopLeft     = '┌'
	GlyphTopRight    = '┐'
	GlyphBottomLeft  = '└'
	GlyphBottomRight = '┘'
	GlyphHandle      = '●'
	GlyphPoint       = '□'
)

// Frame is everything the renderer needs to paint one screen.
type Frame struct {
	// Shape is the edited shape; ignored unless HasShape is set.
	Shape    shape.Snapshot
	HasShape bool

	// State names the current interaction state for the status line.
	State string
}

// Options configures the renderer.
type Options struct {
	// CellWidth and CellHeight give the size of one terminal cell in
	// surface units.
	CellWidth  float64
	CellHeight float64

	Styles Styles

	// ShowStatus reserves the bottom row for the status line.
	ShowStatus bool

	// MaxFPS limits Render. RenderNow ignores it.
	MaxFPS int
}

// DefaultOptions returns sensible default options.
func DefaultOptions() Options {
	return Options{
		CellWidth:  4,
		CellHeight: 8,
		Styles:     DefaultStyles(),
		ShowStatus: true,
		MaxFPS:     60,
	}
}

// Renderer is the main rendering facade.
// It paints a Frame onto a backend.
type Renderer struct {
	mu sync.RWMutex

	opts Options

	backend backend.Backend
	width   int
	height  int

	frame  Frame
	status *StatusLine

	lastFrame    time.Time
	minFrameTime time.Duration
	frameCount   uint64
	needsRedraw  bool
}

// New creates a new renderer with the given backend and options.
func New(b backend.Backend, opts Options) *Renderer {
	opts = normalizeOptions(opts)
	width, height := b.Size()

	r := &Renderer{
		opts:         opts,
		backend:      b,
		width:        width,
		height:       height,
		status:       NewStatusLine(),
		minFrameTime: time.Second / time.Duration(opts.MaxFPS),
		needsRedraw:  true,
	}
	r.status.Resize(width)

	b.OnResize(func(w, h int) {
		r.Resize(w, h)
	})

	return r
}

func normalizeOptions(opts Options) Options {
	def := DefaultOptions()
	if opts.CellWidth <= 0 {
		opts.CellWidth = def.CellWidth
	}
	if opts.CellHeight <= 0 {
		opts.CellHeight = def.CellHeight
	}
	if opts.MaxFPS <= 0 {
		opts.MaxFPS = def.MaxFPS
	}
	return opts
}

// SetFrame replaces the frame to paint on the next render.
func (r *Renderer) SetFrame(f Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frame = f
	r.needsRedraw = true
}

// Frame returns the frame painted by the next render.
func (r *Renderer) Frame() Frame {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frame
}

// StatusLine returns the status line for message updates.
// Callers must follow changes with MarkDirty.
func (r *Renderer) StatusLine() *StatusLine {
	return r.status
}

// Resize handles terminal resize events.
func (r *Renderer) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.width = width
	r.height = height
	r.status.Resize(width)
	r.needsRedraw = true
}

// MarkDirty marks the renderer as needing a redraw.
func (r *Renderer) MarkDirty() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.needsRedraw = true
}

// Options returns the current options.
func (r *Renderer) Options() Options {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.opts
}

// SetOptions updates the renderer options.
func (r *Renderer) SetOptions(opts Options) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.opts = normalizeOptions(opts)
	r.minFrameTime = time.Second / time.Duration(r.opts.MaxFPS)
	r.needsRedraw = true
}

// NeedsRedraw returns true if the renderer needs to redraw.
func (r *Renderer) NeedsRedraw() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.needsRedraw
}

// CanvasRows returns the number of rows available to the drawing surface.
func (r *Renderer) CanvasRows() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.canvasRows()
}

func (r *Renderer) canvasRows() int {
	if r.opts.ShowStatus && r.height > 0 {
		return r.height - 1
	}
	return r.height
}

// Render performs a full render cycle.
// Respects frame rate limiting.
func (r *Renderer) Render() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if now.Sub(r.lastFrame) < r.minFrameTime {
		return
	}
	if !r.needsRedraw {
		return
	}
	r.lastFrame = now

	r.render()
	r.needsRedraw = false
	r.frameCount++
}

// RenderNow performs an immediate render, ignoring frame rate limiting.
func (r *Renderer) RenderNow() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.render()
	r.needsRedraw = false
	r.frameCount++
	r.lastFrame = time.Now()
}

// render performs the actual rendering (must hold lock).
func (r *Renderer) render() {
	r.backend.Clear()
	r.backend.HideCursor()

	if r.frame.HasShape {
		r.renderShape(r.frame.Shape)
	}

	if r.opts.ShowStatus && r.height > 0 {
		r.status.SetState(r.frame.State)
		if r.frame.HasShape {
			r.status.SetShape(r.frame.Shape.Rect, r.frame.Shape.Cursor())
		} else {
			r.status.ClearShape()
		}
		r.status.Render(r.backend, r.height-1)
	}

	r.backend.Show()
}

// renderShape paints the outline and handle markers of a shape.
func (r *Renderer) renderShape(snap shape.Snapshot) {
	g := snap.Geometry().Translate(snap.Rect.TopLeft())

	stroke := r.opts.Styles.Stroke
	handle := r.opts.Styles.Handle
	active := r.opts.Styles.Active
	if !snap.Editable {
		stroke = r.opts.Styles.Inactive
		handle = r.opts.Styles.Inactive
	}
	if snap.Region == geom.RegionCenter {
		stroke = active
	}

	// Outline[0] and Outline[2] are opposite corners of the polygon.
	c0, r0 := r.toCell(g.Outline[0])
	c1, r1 := r.toCell(g.Outline[2])
	r.renderBox(min(c0, c1), min(r0, r1), max(c0, c1), max(r0, r1), stroke)

	for i, h := range g.Handles {
		style := handle
		if snap.Region == shape.HandleRegion(i) {
			style = active
		}
		col, row := r.toCell(h.Center)
		r.setCell(col, row, GlyphHandle, style)
	}
}

// renderBox draws a box-drawing rectangle between two cells, inclusive.
func (r *Renderer) renderBox(left, top, right, bottom int, style Style) {
	switch {
	case left == right && top == bottom:
		r.setCell(left, top, GlyphPoint, style)
		return
	case top == bottom:
		for x := left; x <= right; x++ {
			r.setCell(x, top, GlyphHorizontal, style)
		}
		return
	case left == right:
		for y := top; y <= bottom; y++ {
			r.setCell(left, y, GlyphVertical, style)
		}
		return
	}

	for x := left + 1; x < right; x++ {
		r.setCell(x, top, GlyphHorizontal, style)
		r.setCell(x, bottom, GlyphHorizontal, style)
	}
	for y := top + 1; y < bottom; y++ {
		r.setCell(left, y, GlyphVertical, style)
		r.setCell(right, y, GlyphVertical, style)
	}
	r.setCell(left, top, GlyphTopLeft, style)
	r.setCell(right, top, GlyphTopRight, style)
	r.setCell(left, bottom, GlyphBottomLeft, style)
	r.setCell(right, bottom, GlyphBottomRight, style)
}

// setCell paints one glyph, clipped to the canvas rows.
func (r *Renderer) setCell(col, row int, ch rune, style Style) {
	if col < 0 || col >= r.width || row < 0 || row >= r.canvasRows() {
		return
	}
	r.backend.SetCell(col, row, Cell{Rune: ch, Width: 1, Style: style})
}

func (r *Renderer) toCell(p geom.Point) (col, row int) {
	return int(math.Floor(p.X / r.opts.CellWidth)), int(math.Floor(p.Y / r.opts.CellHeight))
}

// FrameCount returns the number of frames rendered.
func (r *Renderer) FrameCount() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frameCount
}

// Size returns the current screen dimensions.
func (r *Renderer) Size() (width, height int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.width, r.height
}
