// Package editor provides the interaction state machine for borderedit.
//
// The Controller owns at most one shape and exactly one interaction state.
// Pointer events are delegated to the current state, which may edit the shape
// and hand control to another state:
//   - Idle: resting state; decides what a pointer-down starts
//   - Creating: draws a new shape from its anchor corner
//   - Dragging: moves the shape by incremental pointer deltas
//   - Resizing: moves one edge or corner of the shape
//
// # Transitions
//
//	           left-down (no shape / right-click on surface)
//	  ┌──────┐ ─────────────────────────────────────▶ ┌──────────┐
//	  │ Idle │ ──── left-down over body ────────────▶ │ Dragging │
//	  │      │ ──── left-down over handle ──────────▶ │ Resizing │
//	  └──────┘ ◀──────────── left-up ──────────────── └──────────┘
//
// A state entered from Idle receives the triggering pointer-down once more
// (a replay). Replays are capped at one hop, so a single event never passes
// through more than two states.
//
// # Threading
//
// The Controller is not safe for concurrent use. All events must be
// delivered from one goroutine, which makes every transition atomic with
// respect to the next event.
package editor
