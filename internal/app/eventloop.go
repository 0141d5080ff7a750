package app

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/dshills/borderedit/internal/editor"
	"github.com/dshills/borderedit/internal/input/mouse"
	"github.com/dshills/borderedit/internal/renderer"
	"github.com/dshills/borderedit/internal/renderer/backend"
)

// eventLoop is the main application loop. It owns the controller: every
// pointer event, config reload and render happens on this goroutine.
func (app *Application) eventLoop(ctx context.Context, events <-chan backend.Event) error {
	r := app.Renderer()
	frameTicker := time.NewTicker(time.Second / time.Duration(r.Options().MaxFPS))
	defer frameTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := app.safeHandle(ev); err != nil {
				return err
			}

		case <-app.reloads:
			app.applyConfig()

		case <-frameTicker.C:
			if r.NeedsRedraw() {
				start := time.Now()
				r.Render()
				app.metrics.RecordRender(time.Since(start))
			}
		}
	}
}

// safeHandle handles one event, turning a panic into an error so that the
// terminal is restored on the way out.
func (app *Application) safeHandle(ev backend.Event) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &RecoveredPanicError{Value: rec, Stack: string(debug.Stack())}
		}
	}()
	return app.handleBackendEvent(ev)
}

// handleBackendEvent processes a backend event and routes it appropriately.
// Returns ErrQuit if the application should exit.
func (app *Application) handleBackendEvent(ev backend.Event) error {
	switch ev.Type {
	case backend.EventResize:
		return app.handleResize(ev)
	case backend.EventKey:
		return app.handleKeyEvent(ev)
	case backend.EventMouse:
		return app.handleMouseEvent(ev)
	default:
		return nil
	}
}

// handleResize processes terminal resize events. Button reports may be lost
// across a resize, so the translator starts over.
func (app *Application) handleResize(ev backend.Event) error {
	app.translator.Reset()
	r := app.Renderer()
	r.Resize(ev.Width, ev.Height)
	app.canvas.Resize(ev.Width, r.CanvasRows())
	app.syncFrame()
	return nil
}

// handleKeyEvent processes keyboard input. Esc, q, Ctrl-C and Ctrl-Q quit;
// x exports the shape when an export path is set.
func (app *Application) handleKeyEvent(ev backend.Event) error {
	app.metrics.RecordKey()

	switch ev.Key {
	case backend.KeyEscape, backend.KeyCtrlC, backend.KeyCtrlQ:
		return ErrQuit
	case backend.KeyRune:
		switch ev.Rune {
		case 'q', 'Q':
			return ErrQuit
		case 'x', 'X':
			app.exportNow()
		}
	}
	return nil
}

// handleMouseEvent turns a button-state report into pointer events and
// delivers them to the controller through the surface.
func (app *Application) handleMouseEvent(ev backend.Event) error {
	pos := mouse.Position{X: ev.MouseX, Y: ev.MouseY}
	for _, me := range app.translator.Translate(pos, convertButtons(ev.Buttons), time.Now()) {
		if app.canvas.Deliver(app.controller, me) {
			app.metrics.RecordPointer()
		}
	}
	// Hover changes the active region without a controller change.
	app.syncFrame()
	return nil
}

// handleChange observes the controller. It runs on the event loop.
func (app *Application) handleChange(ch editor.Change) {
	log := app.logger.WithComponent("editor")

	switch ch.Kind {
	case editor.StateChanged:
		log.Debug("state %s -> %s", ch.From, ch.To)
		if ch.To == editor.StateIdle && ch.From != editor.StateIdle && ch.Shape.ID != "" {
			app.metrics.RecordCommit()
		}
	case editor.ShapeCreated:
		app.metrics.RecordCreated()
		log.Debug("created %s", ch.Shape.ID)
	case editor.ShapeUpdated:
		log.Debug("updated %s %+v", ch.Shape.ID, ch.Shape.Rect)
	case editor.ShapeRemoved:
		app.metrics.RecordRemoved()
		log.Debug("removed %s", ch.Shape.ID)
	}

	if app.hooks != nil {
		if err := app.hooks.Handle(context.Background(), ch); err != nil {
			app.metrics.RecordHookFailure()
			app.logger.WithComponent("hook").Warn("%v", err)
			app.setMessage(err.Error(), renderer.MessageWarning)
		}
	}
}

// syncFrame hands the current shape and state to the renderer.
func (app *Application) syncFrame() {
	r := app.Renderer()
	if r == nil {
		return
	}
	snap, ok := app.controller.Shape()
	r.SetFrame(renderer.Frame{
		Shape:    snap,
		HasShape: ok,
		State:    app.controller.State().String(),
	})
}

// applyConfig pushes reloaded settings into the running components.
func (app *Application) applyConfig() {
	app.metrics.RecordReload()
	app.logConfigWarnings()

	ed := app.config.Editor()
	app.controller.SetMargin(ed.Margin)
	app.controller.SetEditable(ed.Editable)

	surf := app.config.Surface()
	app.canvas.SetCellSize(surf.CellWidth, surf.CellHeight)

	// The -log-level flag and an injected logger win over the file.
	if app.opts.LogLevel == "" && app.opts.Logger == nil {
		app.logger.SetLevel(ParseLogLevel(app.config.Logging().Level))
	}

	if r := app.Renderer(); r != nil {
		opts := r.Options()
		opts.CellWidth = surf.CellWidth
		opts.CellHeight = surf.CellHeight
		opts.Styles = app.config.Style().Styles()
		r.SetOptions(opts)
	}

	app.logger.WithComponent("config").Info("reloaded")
	app.setMessage("config reloaded", renderer.MessageInfo)
	app.syncFrame()
}

// exportNow writes the shape on demand and reports the result on the
// status line.
func (app *Application) exportNow() {
	if app.exportPath == "" {
		app.setMessage("no export path", renderer.MessageWarning)
		return
	}
	if err := app.exportShape(app.exportPath, "on demand"); err != nil {
		app.logger.Warn("%v", err)
		app.setMessage(err.Error(), renderer.MessageError)
		return
	}
	app.setMessage(fmt.Sprintf("exported %s", app.exportPath), renderer.MessageInfo)
}

func (app *Application) setMessage(msg string, kind renderer.MessageType) {
	r := app.Renderer()
	if r == nil {
		return
	}
	r.StatusLine().SetMessage(msg, kind)
	r.MarkDirty()
}

// pollInput forwards backend events until the backend shuts down or ctx
// is done. PollEvent blocks; Shutdown unblocks it.
func (app *Application) pollInput(ctx context.Context, b backend.Backend, events chan<- backend.Event) {
	for {
		ev := b.PollEvent()
		if ev.Type == backend.EventClosed {
			return
		}
		select {
		case events <- ev:
		case <-ctx.Done():
			return
		}
	}
}

// convertButtons maps the backend button mask to the translator's.
func convertButtons(m backend.MouseMask) mouse.Buttons {
	var held mouse.Buttons
	if m.Has(backend.MouseLeft) {
		held |= mouse.HeldLeft
	}
	if m.Has(backend.MouseMid) {
		held |= mouse.HeldMiddle
	}
	if m.Has(backend.MouseRight) {
		held |= mouse.HeldRight
	}
	return held
}
