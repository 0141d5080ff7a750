// Package export writes the edited shape to disk as a PNG image or as a
// YAML or JSON document.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
	"gopkg.in/yaml.v3"

	"github.com/dshills/borderedit/internal/shape"
)

// ErrUnsupportedFormat is returned for paths with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Format identifies an export encoding.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatPNG
	FormatYAML
	FormatJSON
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatYAML:
		return "yaml"
	case FormatJSON:
		return "json"
	default:
		return "unknown"
	}
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return FormatPNG
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	default:
		return FormatUnknown
	}
}

// Document is the serialized form of a shape.
type Document struct {
	ID     string  `yaml:"id"`
	Left   float64 `yaml:"left"`
	Top    float64 `yaml:"top"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// DocumentFor converts a snapshot to its document form.
func DocumentFor(snap shape.Snapshot) Document {
	return Document{
		ID:     snap.ID,
		Left:   snap.Rect.Left,
		Top:    snap.Rect.Top,
		Width:  snap.Rect.Width,
		Height: snap.Rect.Height,
	}
}

// Options configures image export.
type Options struct {
	// Width and Height give the image size in pixels, one pixel per
	// surface unit. Usually the surface size.
	Width  int
	Height int

	// StrokeWidth is the outline thickness in pixels.
	StrokeWidth float64

	Stroke color.Color
	Handle color.Color
}

// DefaultOptions returns a blue outline with blue handles.
func DefaultOptions(width, height int) Options {
	blue := color.RGBA{B: 0xff, A: 0xff}
	return Options{
		Width:       width,
		Height:      height,
		StrokeWidth: 1,
		Stroke:      blue,
		Handle:      blue,
	}
}

// EncodeYAML encodes the shape as a YAML document.
func EncodeYAML(snap shape.Snapshot) ([]byte, error) {
	data, err := yaml.Marshal(DocumentFor(snap))
	if err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}
	return data, nil
}

// EncodeJSON encodes the shape as an indented JSON document.
func EncodeJSON(snap shape.Snapshot) ([]byte, error) {
	doc := DocumentFor(snap)
	fields := []struct {
		path  string
		value any
	}{
		{"id", doc.ID},
		{"left", doc.Left},
		{"top", doc.Top},
		{"width", doc.Width},
		{"height", doc.Height},
	}

	data := []byte(`{}`)
	for _, f := range fields {
		var err error
		data, err = sjson.SetBytes(data, f.path, f.value)
		if err != nil {
			return nil, fmt.Errorf("set %s: %w", f.path, err)
		}
	}
	return pretty.Pretty(data), nil
}

// Encode writes the shape to w in the given format.
func Encode(w io.Writer, f Format, snap shape.Snapshot, opts Options) error {
	var (
		data []byte
		err  error
	)

	switch f {
	case FormatPNG:
		return EncodePNG(w, snap, opts)
	case FormatYAML:
		data, err = EncodeYAML(snap)
	case FormatJSON:
		data, err = EncodeJSON(snap)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}
	if err != nil {
		return err
	}

	_, err = w.Write(data)
	return err
}

// Save writes the shape to path, picking the format from the extension.
func Save(path string, snap shape.Snapshot, opts Options) error {
	f := FormatFromPath(path)
	if f == FormatUnknown {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}

	var buf bytes.Buffer
	if err := Encode(&buf, f, snap, opts); err != nil {
		return fmt.Errorf("encode %s: %w", f, err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %q: %w", path, err)
	}
	return nil
}
