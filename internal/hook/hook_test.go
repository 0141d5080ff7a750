package hook

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dshills/borderedit/internal/editor"
	"github.com/dshills/borderedit/internal/geom"
	"github.com/dshills/borderedit/internal/shape"
)

func testSnapshot() shape.Snapshot {
	return shape.Snapshot{
		ID:       "s1",
		Rect:     geom.Rect{Left: 8, Top: 16, Width: 40, Height: 64},
		Region:   geom.RegionCenter,
		Editable: true,
		Margin:   12,
	}
}

func loadString(t *testing.T, code string, opts ...Option) (*Runner, *[]string) {
	t.Helper()
	var lines []string
	opts = append(opts, WithPrint(func(s string) { lines = append(lines, s) }))
	r, err := LoadString(context.Background(), "test.lua", code, opts...)
	if err != nil {
		t.Fatalf("LoadString: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r, &lines
}

func TestCommitReceivesShape(t *testing.T) {
	r, lines := loadString(t, `
function on_commit(s)
  print(s.id, s.left, s.top, s.width, s.height, s.region, tostring(s.editable))
end
`)

	if err := r.Commit(context.Background(), testSnapshot()); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	want := "s1\t8\t16\t40\t64\tcenter\ttrue"
	if len(*lines) != 1 || (*lines)[0] != want {
		t.Errorf("printed %q, want %q", *lines, want)
	}
}

func TestMissingFunctionIsNoop(t *testing.T) {
	r, _ := loadString(t, `x = 1`)

	if r.Has(FuncCommit) {
		t.Error("Has(on_commit) = true for a script without it")
	}
	if err := r.Commit(context.Background(), testSnapshot()); err != nil {
		t.Errorf("Commit = %v, want nil", err)
	}
	if err := r.Delete(context.Background(), testSnapshot()); err != nil {
		t.Errorf("Delete = %v, want nil", err)
	}
}

func TestScriptErrorIsReturned(t *testing.T) {
	r, _ := loadString(t, `function on_delete(s) error("boom") end`)

	err := r.Delete(context.Background(), testSnapshot())
	var herr *Error
	if !errors.As(err, &herr) {
		t.Fatalf("Delete = %v, want *Error", err)
	}
	if herr.Func != FuncDelete || !strings.Contains(err.Error(), "boom") {
		t.Errorf("error = %v, want on_delete boom", err)
	}

	// The runner stays usable after a failing call.
	if !r.Has(FuncDelete) {
		t.Error("runner unusable after error")
	}
}

func TestTimeout(t *testing.T) {
	r, _ := loadString(t, `function on_commit(s) while true do end end`, WithTimeout(50*time.Millisecond))

	start := time.Now()
	err := r.Commit(context.Background(), testSnapshot())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Commit = %v, want deadline exceeded", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Error("timeout not enforced")
	}
}

func TestSandbox(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{"io", `io.open("/etc/passwd")`},
		{"os", `os.exit(1)`},
		{"dofile", `dofile("/tmp/x.lua")`},
		{"require", `require("os")`},
		{"load", `load("return 1")`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadString(context.Background(), "bad.lua", tt.code)
			if err == nil {
				t.Errorf("%s should not be available", tt.name)
			}
		})
	}
}

func TestSafeLibraries(t *testing.T) {
	r, lines := loadString(t, `print(string.upper("a"), math.floor(2.5), #table.concat({"x", "y"}))`)
	_ = r
	if len(*lines) != 1 || (*lines)[0] != "A\t2\t2" {
		t.Errorf("printed %q", *lines)
	}
}

func TestHandle(t *testing.T) {
	r, lines := loadString(t, `
function on_commit(s) print("commit " .. s.id) end
function on_delete(s) print("delete " .. s.id) end
`)
	snap := testSnapshot()
	ctx := context.Background()

	changes := []editor.Change{
		{Kind: editor.StateChanged, From: editor.StateIdle, To: editor.StateCreating, Shape: snap},
		{Kind: editor.ShapeUpdated, Shape: snap},
		{Kind: editor.StateChanged, From: editor.StateCreating, To: editor.StateIdle, Shape: snap},
		{Kind: editor.StateChanged, From: editor.StateDragging, To: editor.StateIdle},
		{Kind: editor.ShapeRemoved, Shape: snap},
	}
	for _, ch := range changes {
		if err := r.Handle(ctx, ch); err != nil {
			t.Fatalf("Handle(%v): %v", ch.Kind, err)
		}
	}

	want := []string{"commit s1", "delete s1"}
	if strings.Join(*lines, ",") != strings.Join(want, ",") {
		t.Errorf("hook calls = %q, want %q", *lines, want)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hook.lua")
	if err := os.WriteFile(path, []byte(`function on_commit(s) end`), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !r.Has(FuncCommit) || r.Script() != path {
		t.Error("script not loaded")
	}
	_ = r.Close()

	if err := r.Commit(context.Background(), testSnapshot()); !errors.Is(err, ErrClosed) {
		t.Errorf("Commit after Close = %v, want ErrClosed", err)
	}

	if _, err := Load(context.Background(), filepath.Join(t.TempDir(), "none.lua")); err == nil {
		t.Error("Load of a missing file should fail")
	}
}
