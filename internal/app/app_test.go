package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tidwall/gjson"

	"github.com/dshills/borderedit/internal/editor"
	"github.com/dshills/borderedit/internal/geom"
	"github.com/dshills/borderedit/internal/input/mouse"
	"github.com/dshills/borderedit/internal/renderer/backend"
)

func newTestApp(t *testing.T, opts Options) (*Application, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	if opts.ConfigPath == "" {
		opts.ConfigPath = filepath.Join(t.TempDir(), "config.toml")
	}
	opts.NoWatch = true
	opts.Logger = NewLogger(LoggerConfig{Level: LogLevelDebug, Output: &buf})

	app, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })
	return app, &buf
}

func mouseAt(x, y int, buttons backend.MouseMask) backend.Event {
	return backend.Event{Type: backend.EventMouse, MouseX: x, MouseY: y, Buttons: buttons}
}

func quitKey() backend.Event {
	return backend.Event{Type: backend.EventKey, Key: backend.KeyRune, Rune: 'q'}
}

// runWith posts events to a null backend and runs the application until
// it quits.
func runWith(t *testing.T, app *Application, events ...backend.Event) *backend.NullBackend {
	t.Helper()
	nb := backend.NewNullBackend(50, 26)
	if err := app.SetBackend(nb); err != nil {
		t.Fatalf("SetBackend: %v", err)
	}
	for _, ev := range events {
		nb.PostEvent(ev)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ctx.Err() != nil {
		t.Fatal("Run did not quit before the timeout")
	}
	return nb
}

func createGesture() []backend.Event {
	return []backend.Event{
		mouseAt(2, 1, backend.MouseLeft),
		mouseAt(12, 9, backend.MouseLeft),
		mouseAt(12, 9, backend.MouseNone),
	}
}

func TestRunCreatesShape(t *testing.T) {
	app, logs := newTestApp(t, Options{})

	nb := runWith(t, app, append(createGesture(), quitKey())...)

	snap, ok := app.Controller().Shape()
	if !ok {
		t.Fatal("expected a shape")
	}
	if want := (geom.Rect{Left: 8, Top: 8, Width: 40, Height: 64}); snap.Rect != want {
		t.Errorf("Rect = %+v, want %+v", snap.Rect, want)
	}
	if app.Controller().State() != editor.StateIdle {
		t.Errorf("State = %s, want idle", app.Controller().State())
	}
	if nb.Shows() == 0 {
		t.Error("nothing was rendered")
	}

	m := app.Metrics().Snapshot()
	if m.Created != 1 || m.Commits != 1 || m.PointerEvents == 0 {
		t.Errorf("metrics = %+v, want one created and committed shape", m)
	}
	if !strings.Contains(logs.String(), "state idle -> creating") {
		t.Errorf("missing state transition in log:\n%s", logs.String())
	}
	if !strings.Contains(logs.String(), "session ended") {
		t.Error("missing session summary in log")
	}
}

func TestRunExportsOnQuit(t *testing.T) {
	out := filepath.Join(t.TempDir(), "shape.json")
	app, _ := newTestApp(t, Options{ExportPath: out})

	runWith(t, app, append(createGesture(), quitKey())...)

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("export not written: %v", err)
	}
	for path, want := range map[string]float64{"left": 8, "top": 8, "width": 40, "height": 64} {
		if got := gjson.GetBytes(data, path).Float(); got != want {
			t.Errorf("%s = %v, want %v", path, got, want)
		}
	}
	if app.Metrics().Snapshot().Exports != 1 {
		t.Error("export not counted")
	}
}

func TestRunWithoutShapeSkipsExport(t *testing.T) {
	out := filepath.Join(t.TempDir(), "shape.yaml")
	app, _ := newTestApp(t, Options{ExportPath: out})

	runWith(t, app, quitKey())

	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("export written without a shape: %v", err)
	}
}

func TestRunHooks(t *testing.T) {
	script := filepath.Join(t.TempDir(), "hook.lua")
	code := `
function on_commit(s) print("commit " .. s.width .. "x" .. s.height) end
function on_delete(s) print("delete " .. s.id) end
`
	if err := os.WriteFile(script, []byte(code), 0o644); err != nil {
		t.Fatal(err)
	}
	app, logs := newTestApp(t, Options{HookScript: script})

	events := createGesture()
	// Right-click on empty space deletes the shape.
	events = append(events,
		mouseAt(40, 20, backend.MouseRight),
		mouseAt(40, 20, backend.MouseNone),
		quitKey(),
	)
	runWith(t, app, events...)

	out := logs.String()
	if !strings.Contains(out, "commit 40x64") {
		t.Errorf("on_commit not called:\n%s", out)
	}
	if !strings.Contains(out, "delete ") {
		t.Errorf("on_delete not called:\n%s", out)
	}
}

func TestBrokenHookDoesNotStopEditor(t *testing.T) {
	script := filepath.Join(t.TempDir(), "hook.lua")
	if err := os.WriteFile(script, []byte(`function on_commit(s) error("bad hook") end`), 0o644); err != nil {
		t.Fatal(err)
	}
	app, logs := newTestApp(t, Options{HookScript: script})

	runWith(t, app, append(createGesture(), quitKey())...)

	if _, ok := app.Controller().Shape(); !ok {
		t.Error("shape lost after a failing hook")
	}
	if app.Metrics().Snapshot().HookFailures != 1 {
		t.Error("hook failure not counted")
	}
	if !strings.Contains(logs.String(), "bad hook") {
		t.Error("hook failure not logged")
	}
}

func TestHookLoadFailureIsLogged(t *testing.T) {
	app, logs := newTestApp(t, Options{HookScript: filepath.Join(t.TempDir(), "missing.lua")})

	if app.hooks != nil {
		t.Error("hooks should be disabled")
	}
	if !strings.Contains(logs.String(), "hooks disabled") {
		t.Error("hook load failure not logged")
	}
}

func TestRunQuitKeys(t *testing.T) {
	tests := []struct {
		name string
		ev   backend.Event
	}{
		{"escape", backend.Event{Type: backend.EventKey, Key: backend.KeyEscape}},
		{"ctrl-c", backend.Event{Type: backend.EventKey, Key: backend.KeyCtrlC}},
		{"ctrl-q", backend.Event{Type: backend.EventKey, Key: backend.KeyCtrlQ}},
		{"q", quitKey()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _ := newTestApp(t, Options{})
			if err := app.handleBackendEvent(tt.ev); !errors.Is(err, ErrQuit) {
				t.Errorf("handleBackendEvent = %v, want ErrQuit", err)
			}
		})
	}

	app, _ := newTestApp(t, Options{})
	if err := app.handleBackendEvent(backend.Event{Type: backend.EventKey, Key: backend.KeyRune, Rune: 'a'}); err != nil {
		t.Errorf("plain key = %v, want nil", err)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	app, _ := newTestApp(t, Options{})
	if err := app.SetBackend(backend.NewNullBackend(20, 10)); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestRunWithoutBackend(t *testing.T) {
	app, _ := newTestApp(t, Options{})
	if err := app.Run(context.Background()); !errors.Is(err, ErrNoBackend) {
		t.Errorf("Run = %v, want ErrNoBackend", err)
	}
}

func TestExportWithoutShape(t *testing.T) {
	app, _ := newTestApp(t, Options{})
	if err := app.Export(filepath.Join(t.TempDir(), "x.png")); !errors.Is(err, ErrNoShape) {
		t.Errorf("Export = %v, want ErrNoShape", err)
	}
}

func TestConfigApplied(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[editor]\nmargin = 5\neditable = false\n[surface]\ncell_width = 2\ncell_height = 4\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	app, _ := newTestApp(t, Options{ConfigPath: path})

	if got := app.Controller().Margin(); got != 5 {
		t.Errorf("Margin = %v, want 5", got)
	}
	if w, h := app.Canvas().CellSize(); w != 2 || h != 4 {
		t.Errorf("CellSize = %vx%v, want 2x4", w, h)
	}
}

func TestInvalidConfigIsLogged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[editor]\nmargin = -1\n[style]\nstroke = \"nope\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	app, logs := newTestApp(t, Options{ConfigPath: path})

	for _, key := range []string{"editor.margin", "style.stroke"} {
		if !strings.Contains(logs.String(), "[WARN] "+key) {
			t.Errorf("startup log has no warning for %s:\n%s", key, logs.String())
		}
	}
	if got := app.Controller().Margin(); got != 12 {
		t.Errorf("Margin = %v, want the default", got)
	}

	logs.Reset()
	if err := os.WriteFile(path, []byte("[surface]\ncell_width = -2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := app.Config().Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	app.applyConfig()

	out := logs.String()
	if !strings.Contains(out, "surface.cell_width") {
		t.Errorf("reload log has no warning for surface.cell_width:\n%s", out)
	}
	if strings.Contains(out, "editor.margin") {
		t.Errorf("stale warning logged after reload:\n%s", out)
	}
}

func TestApplyConfigOnReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[editor]\nmargin = 5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	app, _ := newTestApp(t, Options{ConfigPath: path})

	if err := os.WriteFile(path, []byte("[editor]\nmargin = 7\n[surface]\ncell_width = 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := app.Config().Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	select {
	case <-app.reloads:
	default:
		t.Fatal("reload not queued for the event loop")
	}
	app.applyConfig()

	if got := app.Controller().Margin(); got != 7 {
		t.Errorf("Margin = %v, want 7", got)
	}
	if w, _ := app.Canvas().CellSize(); w != 3 {
		t.Errorf("cell width = %v, want 3", w)
	}
}

func TestReloadChangesLogLevel(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	logPath := filepath.Join(dir, "borderedit.log")
	if err := os.WriteFile(cfgPath, []byte("[logging]\nlevel = \"warn\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	app, err := New(Options{ConfigPath: cfgPath, LogFile: logPath, NoWatch: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer app.Close()

	app.Logger().Info("before reload")

	if err := os.WriteFile(cfgPath, []byte("[logging]\nlevel = \"debug\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := app.Config().Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	app.applyConfig()
	app.Logger().Debug("after reload")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "before reload") {
		t.Error("info logged at warn level")
	}
	if !strings.Contains(string(data), "after reload") {
		t.Errorf("debug not logged after reload:\n%s", data)
	}
}

func TestRunDisablesMouseOnExit(t *testing.T) {
	app, _ := newTestApp(t, Options{})
	nb := runWith(t, app, quitKey())

	if nb.MouseEnabled() {
		t.Error("mouse reporting left on after exit")
	}
	if nb.Shows() == 0 {
		t.Error("nothing was rendered")
	}
}

func TestExportErrorContext(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "missing", "shape.json")
	app, logs := newTestApp(t, Options{ExportPath: out})

	nb := backend.NewNullBackend(50, 26)
	if err := app.SetBackend(nb); err != nil {
		t.Fatal(err)
	}
	for _, ev := range append(createGesture(), quitKey()) {
		nb.PostEvent(ev)
	}

	err := app.Run(context.Background())
	var opErr *OperationError
	if !errors.As(err, &opErr) {
		t.Fatalf("Run = %v, want an export OperationError", err)
	}
	if opErr.Op != "export" || opErr.Context != "on quit" {
		t.Errorf("error = %+v, want export on quit", opErr)
	}
	if !strings.Contains(logs.String(), "(on quit)") {
		t.Error("export failure not logged with its context")
	}
}

func TestConvertButtons(t *testing.T) {
	tests := []struct {
		in   backend.MouseMask
		want mouse.Buttons
	}{
		{backend.MouseNone, mouse.HeldNone},
		{backend.MouseLeft, mouse.HeldLeft},
		{backend.MouseRight, mouse.HeldRight},
		{backend.MouseMid, mouse.HeldMiddle},
		{backend.MouseLeft | backend.MouseRight, mouse.HeldLeft | mouse.HeldRight},
	}

	for _, tt := range tests {
		if got := convertButtons(tt.in); got != tt.want {
			t.Errorf("convertButtons(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
