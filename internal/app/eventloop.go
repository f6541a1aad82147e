package app

import (
	"time"

	"github.com/dshills/gridstorm/internal/config"
	"github.com/dshills/gridstorm/internal/grid/backend"
	"github.com/dshills/gridstorm/internal/input/key"
)

const (
	targetFPS = 60
	frameTime = time.Second / targetFPS
)

// pollEvents forwards backend events to the loop until shutdown.
func (app *Application) pollEvents() {
	for {
		ev := app.backend.PollEvent()
		select {
		case <-app.done:
			return
		default:
		}
		if ev.Type == backend.EventInterrupt || ev.Type == backend.EventNone {
			continue
		}
		select {
		case app.events <- ev:
		case <-app.done:
			return
		}
	}
}

// eventLoop handles one event at a time, draining the grid's deferred
// tasks after each, and runs scheduled grid work once per frame.
func (app *Application) eventLoop() error {
	ticker := time.NewTicker(frameTime)
	defer ticker.Stop()

	var reloads <-chan config.Reload
	if app.watcher != nil {
		reloads = app.watcher.Reloads()
	}

	app.frame()
	for {
		select {
		case <-app.done:
			return nil

		case ev := <-app.events:
			err := app.handleBackendEvent(ev)
			app.grid.RunDeferred()
			if err != nil {
				app.stop()
				return err
			}

		case r, ok := <-reloads:
			if !ok {
				reloads = nil
				continue
			}
			app.applyReload(r)

		case <-ticker.C:
			app.frame()
		}
	}
}

func (app *Application) frame() {
	app.grid.Tick()
	if app.grid.NeedsPaint() {
		app.grid.Draw(app.backend)
	}
}

// handleBackendEvent routes one backend event. It returns ErrQuit when the
// user asks to leave.
func (app *Application) handleBackendEvent(ev backend.Event) error {
	switch ev.Type {
	case backend.EventResize:
		app.grid.Resize(ev.Width, ev.Height)
	case backend.EventKey:
		return app.handleKeyEvent(ev.Key)
	case backend.EventMouse:
		app.grid.HandleMouse(ev.Mouse)
	case backend.EventFocus:
		app.handleFocusEvent(ev.Focused)
	}
	return nil
}

func (app *Application) handleKeyEvent(ev key.Event) error {
	if ev.IsRuneWith('q', key.ModCtrl) || ev.IsRuneWith('c', key.ModCtrl) {
		return ErrQuit
	}
	if app.grid.HandleKey(ev) {
		return nil
	}
	if ev.IsRuneWith('q', key.ModNone) {
		return ErrQuit
	}
	return nil
}

// handleFocusEvent hides the grid while the terminal is in the background;
// layout requested meanwhile runs when it comes back.
func (app *Application) handleFocusEvent(focused bool) {
	if focused {
		app.grid.SetVisible(true)
		app.grid.Focus()
		return
	}
	app.grid.Blur()
	app.grid.SetVisible(false)
}

// applyReload swaps in the columns and grid settings of a reloaded config.
func (app *Application) applyReload(r config.Reload) {
	if r.Err != nil {
		app.logger.Warn("config reload: %v", r.Err)
		return
	}
	cfg := r.Config
	app.applyOverrides(cfg)
	cfg.Data = app.cfg.Data
	if err := app.applyColumns(cfg); err != nil {
		app.logger.Warn("config reload: %v", err)
		return
	}
	app.cfg = cfg
	app.logger.Info("columns reloaded")
}
