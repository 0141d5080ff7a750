// Package renderer provides the display layer for the borderedit editor.
//
// The renderer is responsible for:
//   - Painting the shape outline with box-drawing glyphs
//   - Painting the eight handle markers and highlighting the active one
//   - The status line with interaction state and pointer glyph
//   - Backend abstraction for terminal output
//
// Architecture:
//
//	┌─────────────────────────────────────────┐
//	│           Renderer (Facade)             │
//	├─────────────────────────────────────────┤
//	│  Frame (shape.Snapshot) │ StatusLine    │
//	├─────────────────────────────────────────┤
//	│           Backend Abstraction           │
//	├─────────────────────────────────────────┤
//	│  Terminal (tcell) │ NullBackend         │
//	└─────────────────────────────────────────┘
//
// The renderer never touches a live shape. It paints the immutable
// snapshot handed to SetFrame, converting surface units to cells with the
// configured cell size.
//
// Usage:
//
//	b, _ := backend.NewTerminal()
//	r := renderer.New(b, renderer.DefaultOptions())
//	r.SetFrame(renderer.Frame{Shape: snap, HasShape: true, State: "idle"})
//	r.Render()
package renderer
