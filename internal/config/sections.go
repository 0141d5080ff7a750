package config

import (
	"strings"

	"github.com/dshills/borderedit/internal/geom"
	"github.com/dshills/borderedit/internal/renderer"
	"github.com/dshills/borderedit/internal/surface"
)

// Section accessor methods return snapshot structs. Invalid values are
// replaced by their defaults and recorded in ConfigErrors.

// Defaults for settings that have one.
const (
	DefaultMargin     = geom.DefaultMargin
	DefaultCellWidth  = surface.DefaultCellWidth
	DefaultCellHeight = surface.DefaultCellHeight
	DefaultStroke     = "#0000FF"
	DefaultHandle     = "#0000FF"

	// DefaultActive is empty: the active colour is derived from the stroke.
	DefaultActive = ""
)

// EditorConfig holds editing behaviour.
type EditorConfig struct {
	// Margin is the handle sensitivity in surface units for new shapes.
	Margin float64

	// Editable enables pointer interaction with the shape.
	Editable bool
}

// SurfaceConfig holds the cell-to-unit scale of the terminal surface.
type SurfaceConfig struct {
	CellWidth  float64
	CellHeight float64
}

// StyleConfig holds the drawing colours.
type StyleConfig struct {
	Stroke renderer.Color
	Handle renderer.Color

	// Active highlights the handle or body under the pointer.
	Active renderer.Color
}

// Styles converts the colours to renderer styles.
func (s StyleConfig) Styles() renderer.Styles {
	return renderer.StylesFor(s.Stroke, s.Handle, s.Active)
}

// HooksConfig names the Lua hook script. Empty disables hooks.
type HooksConfig struct {
	Script string
}

// ExportConfig names the file the shape is written to on quit. The
// extension selects the format. Empty disables export.
type ExportConfig struct {
	Path string
}

// LoggingConfig controls the log output.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string

	// File is the log file. Empty discards the log, since the terminal is
	// owned by the editor.
	File string
}

// Validate reads every section so that invalid values are recorded, and
// returns the resulting warnings.
func (c *Config) Validate() []string {
	c.Editor()
	c.Surface()
	c.Style()
	c.Hooks()
	c.Export()
	c.Logging()
	return c.Warnings()
}

// Editor returns the editor section.
func (c *Config) Editor() EditorConfig {
	margin := c.getFloatOr("editor.margin", DefaultMargin)
	if margin <= 0 {
		c.recordConfigError("editor.margin", &ValidationError{
			Path: "editor.margin", Message: "must be positive", Value: margin,
		})
		margin = DefaultMargin
	}
	return EditorConfig{
		Margin:   margin,
		Editable: c.getBoolOr("editor.editable", true),
	}
}

// Surface returns the surface section.
func (c *Config) Surface() SurfaceConfig {
	return SurfaceConfig{
		CellWidth:  c.positiveOr("surface.cell_width", DefaultCellWidth),
		CellHeight: c.positiveOr("surface.cell_height", DefaultCellHeight),
	}
}

// Style returns the style section.
func (c *Config) Style() StyleConfig {
	stroke := c.colorOr("style.stroke", DefaultStroke)
	handle := c.colorOr("style.handle", DefaultHandle)

	active := c.colorOr("style.active", DefaultActive)
	if active.IsDefault() {
		active = stroke.Blend(renderer.ColorWhite, 0.5)
	}

	return StyleConfig{Stroke: stroke, Handle: handle, Active: active}
}

// Hooks returns the hooks section.
func (c *Config) Hooks() HooksConfig {
	return HooksConfig{Script: c.getStringOr("hooks.script", "")}
}

// Export returns the export section.
func (c *Config) Export() ExportConfig {
	return ExportConfig{Path: c.getStringOr("export.path", "")}
}

// Logging returns the logging section.
func (c *Config) Logging() LoggingConfig {
	level := strings.ToLower(c.getStringOr("logging.level", "info"))
	switch level {
	case "debug", "info", "warn", "error":
	default:
		c.recordConfigError("logging.level", &ValidationError{
			Path: "logging.level", Message: "must be debug, info, warn or error", Value: level,
		})
		level = "info"
	}
	return LoggingConfig{
		Level: level,
		File:  c.getStringOr("logging.file", ""),
	}
}

func (c *Config) positiveOr(path string, defaultValue float64) float64 {
	v := c.getFloatOr(path, defaultValue)
	if v <= 0 {
		c.recordConfigError(path, &ValidationError{Path: path, Message: "must be positive", Value: v})
		return defaultValue
	}
	return v
}

// colorOr parses a hex colour setting. An invalid value yields the
// default, or the default colour when def is empty.
func (c *Config) colorOr(path, def string) renderer.Color {
	fallback := renderer.ColorDefault
	if def != "" {
		fallback, _ = renderer.ColorFromHex(def)
	}

	s := c.getStringOr(path, def)
	if s == "" {
		return fallback
	}
	color, err := renderer.ColorFromHex(s)
	if err != nil {
		c.recordConfigError(path, &ValidationError{Path: path, Message: err.Error(), Value: s})
		return fallback
	}
	return color
}
