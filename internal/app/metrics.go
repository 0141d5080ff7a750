package app

import (
	"sync/atomic"
	"time"
)

// Metrics counts what happened during a session. It is safe for
// concurrent use.
type Metrics struct {
	pointerEvents atomic.Uint64
	keyEvents     atomic.Uint64

	renderCount   atomic.Uint64
	renderTotalNs atomic.Int64

	created atomic.Uint64
	removed atomic.Uint64
	commits atomic.Uint64

	hookFailures atomic.Uint64
	reloads      atomic.Uint64
	exports      atomic.Uint64

	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// RecordPointer records one pointer event delivered to the controller.
func (m *Metrics) RecordPointer() { m.pointerEvents.Add(1) }

// RecordKey records one key event.
func (m *Metrics) RecordKey() { m.keyEvents.Add(1) }

// RecordRender records render timing.
func (m *Metrics) RecordRender(duration time.Duration) {
	m.renderCount.Add(1)
	m.renderTotalNs.Add(duration.Nanoseconds())
}

// RecordCreated records a shape creation.
func (m *Metrics) RecordCreated() { m.created.Add(1) }

// RecordRemoved records a shape removal.
func (m *Metrics) RecordRemoved() { m.removed.Add(1) }

// RecordCommit records a finished edit gesture.
func (m *Metrics) RecordCommit() { m.commits.Add(1) }

// RecordHookFailure records a failing hook call.
func (m *Metrics) RecordHookFailure() { m.hookFailures.Add(1) }

// RecordReload records a configuration reload.
func (m *Metrics) RecordReload() { m.reloads.Add(1) }

// RecordExport records a written export file.
func (m *Metrics) RecordExport() { m.exports.Add(1) }

// MetricsSnapshot is a point-in-time copy of Metrics.
type MetricsSnapshot struct {
	PointerEvents uint64
	KeyEvents     uint64
	RenderCount   uint64
	RenderAvg     time.Duration
	Created       uint64
	Removed       uint64
	Commits       uint64
	HookFailures  uint64
	Reloads       uint64
	Exports       uint64
	Uptime        time.Duration
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{
		PointerEvents: m.pointerEvents.Load(),
		KeyEvents:     m.keyEvents.Load(),
		RenderCount:   m.renderCount.Load(),
		Created:       m.created.Load(),
		Removed:       m.removed.Load(),
		Commits:       m.commits.Load(),
		HookFailures:  m.hookFailures.Load(),
		Reloads:       m.reloads.Load(),
		Exports:       m.exports.Load(),
		Uptime:        time.Since(m.startTime),
	}
	if s.RenderCount > 0 {
		s.RenderAvg = time.Duration(m.renderTotalNs.Load() / int64(s.RenderCount))
	}
	return s
}

// Fields returns the snapshot as logger fields.
func (s MetricsSnapshot) Fields() map[string]any {
	return map[string]any{
		"pointer":       s.PointerEvents,
		"keys":          s.KeyEvents,
		"renders":       s.RenderCount,
		"render_avg":    s.RenderAvg,
		"created":       s.Created,
		"removed":       s.Removed,
		"commits":       s.Commits,
		"hook_failures": s.HookFailures,
		"reloads":       s.Reloads,
		"exports":       s.Exports,
		"uptime":        s.Uptime.Round(time.Millisecond),
	}
}
