package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func newWatcher(t *testing.T, opts ...Option) *Watcher {
	t.Helper()
	w, err := New(opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func TestNew_WithOptions(t *testing.T) {
	w := newWatcher(t, WithDebounce(50*time.Millisecond))
	if w.debounce != 50*time.Millisecond {
		t.Errorf("debounce = %v, want 50ms", w.debounce)
	}

	w = newWatcher(t, WithDebounce(-1))
	if w.debounce != 100*time.Millisecond {
		t.Errorf("debounce = %v, want default 100ms", w.debounce)
	}
}

func TestOperation_String(t *testing.T) {
	tests := []struct {
		op   Operation
		want string
	}{
		{OpWrite, "write"},
		{OpCreate, "create"},
		{OpRemove, "remove"},
		{OpRename, "rename"},
		{Operation(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.op, got, tt.want)
		}
	}
}

func TestConvertOp(t *testing.T) {
	tests := []struct {
		in     fsnotify.Op
		want   Operation
		wantOK bool
	}{
		{fsnotify.Write, OpWrite, true},
		{fsnotify.Create, OpCreate, true},
		{fsnotify.Create | fsnotify.Write, OpCreate, true},
		{fsnotify.Remove, OpRemove, true},
		{fsnotify.Rename, OpRename, true},
		{fsnotify.Chmod, 0, false},
	}

	for _, tt := range tests {
		got, ok := convertOp(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("convertOp(%v) = (%s, %v), want (%s, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestQueueEventCoalescing(t *testing.T) {
	tests := []struct {
		name string
		ops  []Operation
		want Operation
	}{
		{"write write", []Operation{OpWrite, OpWrite}, OpWrite},
		{"create write", []Operation{OpCreate, OpWrite}, OpCreate},
		{"write remove", []Operation{OpWrite, OpRemove}, OpRemove},
		{"remove create", []Operation{OpRemove, OpCreate}, OpWrite},
		{"rename create", []Operation{OpRename, OpCreate}, OpWrite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWatcher(t)
			base := time.Now()
			for i, op := range tt.ops {
				w.queueEvent(Event{Path: "/a", Op: op, Time: base.Add(time.Duration(i) * time.Millisecond)})
			}
			if got := w.pending["/a"].Op; got != tt.want {
				t.Errorf("coalesced op = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestStable(t *testing.T) {
	w := newWatcher(t, WithDebounce(100*time.Millisecond))
	now := time.Now()

	w.queueEvent(Event{Path: "/old", Op: OpWrite, Time: now.Add(-200 * time.Millisecond)})
	w.queueEvent(Event{Path: "/new", Op: OpWrite, Time: now})

	got := w.stable(now)
	if len(got) != 1 || got[0].Path != "/old" {
		t.Fatalf("stable() = %v, want only /old", got)
	}
	if _, ok := w.pending["/new"]; !ok {
		t.Error("recent event should stay pending")
	}
}

func TestWatchUnwatch(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.toml")
	b := filepath.Join(dir, "b.toml")

	w := newWatcher(t)
	if err := w.Watch(a); err != nil {
		t.Fatalf("Watch(a): %v", err)
	}
	if err := w.Watch(b); err != nil {
		t.Fatalf("Watch(b): %v", err)
	}
	if err := w.Watch(a); err != nil {
		t.Fatalf("Watch(a) twice: %v", err)
	}
	if got := len(w.WatchedFiles()); got != 2 {
		t.Errorf("len(WatchedFiles()) = %d, want 2", got)
	}

	if err := w.Unwatch(a); err != nil {
		t.Fatalf("Unwatch(a): %v", err)
	}
	if got := w.dirs[dir]; got != 1 {
		t.Errorf("dir refcount = %d, want 1", got)
	}
	if err := w.Unwatch(b); err != nil {
		t.Fatalf("Unwatch(b): %v", err)
	}
	if _, ok := w.dirs[dir]; ok {
		t.Error("directory should be released once no file uses it")
	}
}

func TestWatchAfterClose(t *testing.T) {
	w := newWatcher(t)
	_ = w.Close()

	if err := w.Watch(filepath.Join(t.TempDir(), "a.toml")); !errors.Is(err, ErrClosed) {
		t.Errorf("Watch after Close = %v, want ErrClosed", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close = %v, want nil", err)
	}
}

func TestRunDeliversWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("a = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w := newWatcher(t, WithDebounce(20*time.Millisecond))
	if err := w.Watch(path); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Unrelated files in the same directory are ignored.
	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("a = 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-w.Events():
		abs, _ := filepath.Abs(path)
		if ev.Path != abs {
			t.Errorf("event path = %q, want %q", ev.Path, abs)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no event delivered")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run = %v, want nil", err)
	}
}
