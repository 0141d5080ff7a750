package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dshills/borderedit/internal/renderer"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func load(t *testing.T, path string) *Config {
	t.Helper()
	c := New(WithPath(path), WithEnv(false))
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return c
}

func TestDefaults(t *testing.T) {
	c := load(t, filepath.Join(t.TempDir(), "missing.toml"))

	if got := c.Editor(); got.Margin != DefaultMargin || !got.Editable {
		t.Errorf("Editor() = %+v, want defaults", got)
	}
	if got := c.Surface(); got.CellWidth != 4 || got.CellHeight != 8 {
		t.Errorf("Surface() = %+v, want 4x8", got)
	}
	style := c.Style()
	if !style.Stroke.Equals(renderer.ColorBlue) {
		t.Errorf("Stroke = %v, want blue", style.Stroke)
	}
	if want := renderer.ColorBlue.Blend(renderer.ColorWhite, 0.5); !style.Active.Equals(want) {
		t.Errorf("Active = %v, want %v", style.Active, want)
	}
	if got := c.Logging().Level; got != "info" {
		t.Errorf("Logging().Level = %q, want info", got)
	}
	if got := c.Hooks().Script; got != "" {
		t.Errorf("Hooks().Script = %q, want empty", got)
	}
	if len(c.ConfigErrors()) != 0 {
		t.Errorf("ConfigErrors() = %v, want none", c.ConfigErrors())
	}
}

func TestLoadFormats(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"config.toml", "[editor]\nmargin = 6\n[style]\nstroke = \"#FF0000\"\n[export]\npath = \"out.png\"\n"},
		{"config.yaml", "editor:\n  margin: 6\nstyle:\n  stroke: \"#FF0000\"\nexport:\n  path: out.png\n"},
		{"config.json", `{"editor": {"margin": 6}, "style": {"stroke": "#FF0000"}, "export": {"path": "out.png"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := load(t, writeConfig(t, tt.name, tt.content))

			if got := c.Editor().Margin; got != 6 {
				t.Errorf("Margin = %v, want 6", got)
			}
			if got := c.Style().Stroke; !got.Equals(renderer.ColorRed) {
				t.Errorf("Stroke = %v, want red", got)
			}
			if got := c.Export().Path; got != "out.png" {
				t.Errorf("Export().Path = %q, want out.png", got)
			}
			// Settings absent from the file keep their defaults.
			if got := c.Surface().CellHeight; got != DefaultCellHeight {
				t.Errorf("CellHeight = %v, want default", got)
			}
		})
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "config.toml", "[editor]\nmargin = 6\n[logging]\nlevel = \"warn\"\n")
	t.Setenv("BORDEREDIT_MARGIN", "9")
	t.Setenv("BORDEREDIT_LOG_LEVEL", "debug")

	c := New(WithPath(path))
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := c.Editor().Margin; got != 9 {
		t.Errorf("Margin = %v, want 9 from environment", got)
	}
	if got := c.Logging().Level; got != "debug" {
		t.Errorf("Level = %q, want debug from environment", got)
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	path := writeConfig(t, "config.toml", `
[editor]
margin = -1
editable = "yes"

[surface]
cell_width = 0

[style]
stroke = "not-a-colour"
active = "#00FF00"

[logging]
level = "loud"
`)
	c := load(t, path)

	if got := c.Editor(); got.Margin != DefaultMargin || !got.Editable {
		t.Errorf("Editor() = %+v, want defaults", got)
	}
	if got := c.Surface().CellWidth; got != DefaultCellWidth {
		t.Errorf("CellWidth = %v, want default", got)
	}
	style := c.Style()
	if !style.Stroke.Equals(renderer.ColorBlue) {
		t.Errorf("Stroke = %v, want default blue", style.Stroke)
	}
	if style.Active.ToHex() != "#00FF00" {
		t.Errorf("Active = %v, want #00FF00", style.Active)
	}
	if got := c.Logging().Level; got != "info" {
		t.Errorf("Level = %q, want info", got)
	}

	errs := c.ConfigErrors()
	for _, path := range []string{"editor.margin", "surface.cell_width", "style.stroke", "logging.level"} {
		if !errors.Is(errs[path], ErrValidationFailed) {
			t.Errorf("ConfigErrors()[%s] = %v, want validation error", path, errs[path])
		}
	}
	if !errors.Is(errs["editor.editable"], ErrTypeMismatch) {
		t.Errorf("ConfigErrors()[editor.editable] = %v, want type mismatch", errs["editor.editable"])
	}
	if got := len(c.Warnings()); got != len(errs) {
		t.Errorf("len(Warnings()) = %d, want %d", got, len(errs))
	}
}

func TestValidateReadsEverySection(t *testing.T) {
	path := writeConfig(t, "config.toml", "[editor]\nmargin = -1\n[style]\nstroke = \"nope\"\n[surface]\ncell_height = 0\n")
	c := load(t, path)

	warnings := c.Validate()
	if len(warnings) != 3 {
		t.Fatalf("Validate() = %v, want 3 warnings", warnings)
	}
	for i, prefix := range []string{"editor.margin:", "style.stroke:", "surface.cell_height:"} {
		if !strings.HasPrefix(warnings[i], prefix) {
			t.Errorf("warnings[%d] = %q, want prefix %q", i, warnings[i], prefix)
		}
	}

	// A fixed file clears the warnings on reload.
	if err := os.WriteFile(path, []byte("[editor]\nmargin = 6\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := c.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if got := c.Validate(); len(got) != 0 {
		t.Errorf("Validate() after fix = %v, want none", got)
	}
}

func TestLoadParseErrorKeepsPrevious(t *testing.T) {
	path := writeConfig(t, "config.toml", "[editor]\nmargin = 6\n")
	c := load(t, path)

	if err := os.WriteFile(path, []byte("[editor\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := c.Reload(context.Background()); err == nil {
		t.Fatal("Reload of a broken file should fail")
	}
	if got := c.Editor().Margin; got != 6 {
		t.Errorf("Margin = %v, want previous value 6", got)
	}
}

func TestUnknownExtension(t *testing.T) {
	c := New(WithPath(writeConfig(t, "config.ini", "x=1")), WithEnv(false))
	if err := c.Load(context.Background()); err == nil {
		t.Error("Load of .ini should fail")
	}
}

func TestGetTyped(t *testing.T) {
	c := load(t, writeConfig(t, "config.toml", "[editor]\nmargin = 6\n"))

	if _, err := c.GetString("editor.margin"); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("GetString(margin) = %v, want type mismatch", err)
	}
	if _, err := c.GetFloat("editor.nothing"); !errors.Is(err, ErrSettingNotFound) {
		t.Errorf("GetFloat(missing) = %v, want not found", err)
	}
	if v, err := c.GetFloat("editor.margin"); err != nil || v != 6 {
		t.Errorf("GetFloat(margin) = %v, %v; want 6", v, err)
	}

	merged := c.Merged()
	merged["editor"].(map[string]any)["margin"] = 99
	if v, _ := c.GetFloat("editor.margin"); v != 6 {
		t.Error("Merged() should return a copy")
	}
}

func TestOnChange(t *testing.T) {
	path := writeConfig(t, "config.toml", "[editor]\nmargin = 6\n")
	c := load(t, path)

	var got []float64
	unregister := c.OnChange(func(c *Config) {
		got = append(got, c.Editor().Margin)
	})

	if err := os.WriteFile(path, []byte("[editor]\nmargin = 7\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := c.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	unregister()
	if err := c.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	if len(got) != 1 || got[0] != 7 {
		t.Errorf("callback saw %v, want [7]", got)
	}
}

func TestWatchReloads(t *testing.T) {
	path := writeConfig(t, "config.toml", "[editor]\nmargin = 6\n")
	c := load(t, path)

	changed := make(chan float64, 4)
	c.OnChange(func(c *Config) {
		changed <- c.Editor().Margin
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Watch(ctx, nil) }()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte("[editor]\nmargin = 10\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case margin := <-changed:
		if margin != 10 {
			t.Errorf("margin after reload = %v, want 10", margin)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch = %v, want nil", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close = %v", err)
	}
}

func TestStyleConfigStyles(t *testing.T) {
	s := StyleConfig{Stroke: renderer.ColorRed, Handle: renderer.ColorBlue, Active: renderer.ColorWhite}
	styles := s.Styles()
	if !styles.Stroke.Foreground.Equals(renderer.ColorRed) {
		t.Errorf("Stroke style fg = %v, want red", styles.Stroke.Foreground)
	}
	if !styles.Handle.Foreground.Equals(renderer.ColorBlue) {
		t.Errorf("Handle style fg = %v, want blue", styles.Handle.Foreground)
	}
}
