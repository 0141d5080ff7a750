// Package app provides the main application structure and coordination
// for borderedit. It wires the terminal backend, the drawing surface, the
// editor controller, hooks and configuration, and runs the event loop.
package app

import (
	"context"
	"errors"
	"image/color"
	"io"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/borderedit/internal/config"
	"github.com/dshills/borderedit/internal/editor"
	"github.com/dshills/borderedit/internal/export"
	"github.com/dshills/borderedit/internal/hook"
	"github.com/dshills/borderedit/internal/input/mouse"
	"github.com/dshills/borderedit/internal/renderer"
	"github.com/dshills/borderedit/internal/renderer/backend"
	"github.com/dshills/borderedit/internal/surface"
)

// Application is the central coordinator for all borderedit components.
type Application struct {
	mu sync.RWMutex

	config    *config.Config
	logger    *Logger
	logCloser io.Closer
	metrics   *Metrics

	backend  backend.Backend
	renderer *renderer.Renderer

	canvas     *surface.Canvas
	translator *mouse.Translator
	controller *editor.Controller
	hooks      *hook.Runner

	exportPath string

	// reloads carries config reloads from the watcher to the event loop,
	// which owns the controller.
	reloads chan struct{}

	running atomic.Bool
	opts    Options
}

// Options configures the application. Non-empty fields override the
// configuration file.
type Options struct {
	// ConfigPath is the path to the configuration file.
	ConfigPath string

	// LogLevel sets the logging verbosity.
	LogLevel string

	// LogFile is where the log is written.
	LogFile string

	// HookScript is a Lua script with lifecycle hooks.
	HookScript string

	// ExportPath is written with the final shape on quit.
	ExportPath string

	// NoWatch disables live config reload.
	NoWatch bool

	// Logger replaces the configured logger.
	Logger *Logger
}

// New creates a new Application with the given options.
func New(opts Options) (*Application, error) {
	app := &Application{
		opts:    opts,
		metrics: NewMetrics(),
		reloads: make(chan struct{}, 1),
	}

	if err := app.bootstrap(); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

// bootstrap initializes all components in dependency order.
func (app *Application) bootstrap() error {
	ctx := context.Background()

	// 1. Config. Load errors are non-fatal; the defaults stay in effect.
	var cfgOpts []config.Option
	if app.opts.ConfigPath != "" {
		cfgOpts = append(cfgOpts, config.WithPath(app.opts.ConfigPath))
	}
	app.config = config.New(cfgOpts...)
	loadErr := app.config.Load(ctx)

	// 2. Logger
	if app.opts.Logger != nil {
		app.logger = app.opts.Logger
	} else {
		logCfg := app.config.Logging()
		level := firstNonEmpty(app.opts.LogLevel, logCfg.Level)
		file := firstNonEmpty(app.opts.LogFile, logCfg.File)
		logger, closer, err := OpenLogger(level, file)
		if err != nil {
			return &InitError{Component: "logger", Err: err}
		}
		app.logger, app.logCloser = logger, closer
	}

	if loadErr != nil {
		app.logger.WithComponent("config").Warn("using defaults: %v", loadErr)
	}
	app.logConfigWarnings()

	// 3. Surface and controller
	surf := app.config.Surface()
	ed := app.config.Editor()
	app.canvas = surface.New(0, 0, surf.CellWidth, surf.CellHeight)
	app.translator = mouse.NewTranslator(mouse.DefaultConfig())
	app.controller = editor.New(app.canvas, editor.WithMargin(ed.Margin))
	app.controller.SetEditable(ed.Editable)
	app.controller.OnChange(app.handleChange)

	// 4. Hooks. A broken script is reported and skipped.
	if script := firstNonEmpty(app.opts.HookScript, app.config.Hooks().Script); script != "" {
		hookLog := app.logger.WithComponent("hook")
		runner, err := hook.Load(ctx, script, hook.WithPrint(func(line string) {
			hookLog.Info("%s", line)
		}))
		if err != nil {
			hookLog.Warn("hooks disabled: %v", err)
		} else {
			app.hooks = runner
		}
	}

	app.exportPath = firstNonEmpty(app.opts.ExportPath, app.config.Export().Path)

	app.config.OnChange(func(*config.Config) {
		select {
		case app.reloads <- struct{}{}:
		default:
		}
	})

	app.logger.Info("started, config %s", app.config.Path())
	return nil
}

// SetBackend sets the terminal backend.
// Must be called before Run().
func (app *Application) SetBackend(b backend.Backend) error {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.running.Load() {
		return ErrAlreadyRunning
	}

	app.backend = b
	return nil
}

// Run starts the application. It blocks until the user quits, ctx is
// done or a component fails. The final shape is exported on the way out.
func (app *Application) Run(ctx context.Context) error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	app.mu.Lock()
	b := app.backend
	app.mu.Unlock()
	if b == nil {
		return ErrNoBackend
	}

	if err := b.Init(); err != nil {
		return &InitError{Component: "backend", Err: err}
	}
	b.EnableMouse()

	r := renderer.New(b, app.renderOptions())
	app.mu.Lock()
	app.renderer = r
	app.mu.Unlock()

	width, _ := b.Size()
	app.canvas.Resize(width, r.CanvasRows())
	app.syncFrame()
	r.RenderNow()

	events := make(chan backend.Event, 100)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.pollInput(gctx, b, events)
		return nil
	})

	if !app.opts.NoWatch {
		g.Go(func() error {
			log := app.logger.WithComponent("config")
			if err := app.config.Watch(gctx, func(err error) {
				log.Warn("reload failed: %v", err)
			}); err != nil {
				log.Warn("live reload disabled: %v", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		// Shutting the backend down unblocks the poller.
		defer func() {
			b.DisableMouse()
			b.Shutdown()
		}()
		return app.eventLoop(gctx, events)
	})

	err := g.Wait()
	if errors.Is(err, ErrQuit) || errors.Is(err, context.Canceled) {
		err = nil
	}

	if app.exportPath != "" {
		if exportErr := app.exportShape(app.exportPath, "on quit"); exportErr != nil && !errors.Is(exportErr, ErrNoShape) {
			app.logger.Error("%v", exportErr)
			if err == nil {
				err = exportErr
			}
		}
	}

	app.logger.WithFields(app.metrics.Snapshot().Fields()).Info("session ended")
	return err
}

// Close releases hooks, the config watcher and the log file.
func (app *Application) Close() error {
	var errs ErrorList
	if app.hooks != nil {
		errs.Add(app.hooks.Close())
	}
	if app.config != nil {
		errs.Add(app.config.Close())
	}
	if app.logCloser != nil {
		errs.Add(app.logCloser.Close())
	}
	return errs.AsError()
}

// Export writes the current shape to path. The extension selects the
// format.
func (app *Application) Export(path string) error {
	return app.exportShape(path, "")
}

// exportShape writes the shape; when is recorded as the error context.
func (app *Application) exportShape(path, when string) error {
	snap, ok := app.controller.Shape()
	if !ok {
		return ErrNoShape
	}

	w, h := app.canvas.Size()
	opts := export.DefaultOptions(int(w), int(h))
	style := app.config.Style()
	opts.Stroke = toRGBA(style.Stroke, opts.Stroke)
	opts.Handle = toRGBA(style.Handle, opts.Handle)

	if err := export.Save(path, snap, opts); err != nil {
		opErr := NewOperationError("export", path, err)
		if when != "" {
			opErr = opErr.WithContext(when)
		}
		return opErr
	}
	app.metrics.RecordExport()
	app.logger.WithComponent("export").Info("wrote %s", path)
	return nil
}

// IsRunning returns true if the application is running.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// Config returns the configuration system.
func (app *Application) Config() *config.Config {
	return app.config
}

// Controller returns the editor controller.
func (app *Application) Controller() *editor.Controller {
	return app.controller
}

// Canvas returns the drawing surface.
func (app *Application) Canvas() *surface.Canvas {
	return app.canvas
}

// Renderer returns the renderer, or nil before Run.
func (app *Application) Renderer() *renderer.Renderer {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.renderer
}

// Metrics returns the session metrics.
func (app *Application) Metrics() *Metrics {
	return app.metrics
}

// Logger returns the application's logger instance.
func (app *Application) Logger() *Logger {
	return app.logger
}

func (app *Application) renderOptions() renderer.Options {
	opts := renderer.DefaultOptions()
	surf := app.config.Surface()
	opts.CellWidth = surf.CellWidth
	opts.CellHeight = surf.CellHeight
	opts.Styles = app.config.Style().Styles()
	return opts
}

func (app *Application) logConfigWarnings() {
	log := app.logger.WithComponent("config")
	for _, w := range app.config.Validate() {
		log.Warn("%s", w)
	}
}

func toRGBA(c renderer.Color, fallback color.Color) color.Color {
	if c.IsDefault() || c.Indexed {
		return fallback
	}
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
