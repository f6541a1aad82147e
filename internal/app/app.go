package app

import (
	"io"
	"sync"
	"sync/atomic"

	"github.com/dshills/gridstorm/internal/config"
	"github.com/dshills/gridstorm/internal/grid"
	"github.com/dshills/gridstorm/internal/grid/backend"
	"github.com/dshills/gridstorm/internal/grid/notify"
	"github.com/dshills/gridstorm/internal/grid/script"
	"github.com/dshills/gridstorm/internal/logging"
)

// Options configures the application. Non-empty values override the
// config file.
type Options struct {
	// ConfigPath is the path to the configuration file.
	ConfigPath string

	// DataPath is the JSON dataset to open.
	DataPath string

	// LogLevel sets the logging verbosity.
	LogLevel string

	// LogFile receives the log.
	LogFile string

	// ReadOnly never writes edits back to the dataset.
	ReadOnly bool

	// Watch reloads columns when the config file changes.
	Watch bool
}

// Application owns the grid, its data and the terminal.
type Application struct {
	opts   Options
	loader *config.Loader
	cfg    *config.Config

	logger    *logging.Logger
	logCloser io.Closer

	scripts *script.Engine
	data    *Datasource
	grid    *grid.Grid
	backend backend.Backend
	watcher *config.Watcher

	events   chan backend.Event
	done     chan struct{}
	stopOnce sync.Once
	running  atomic.Bool
}

// New creates an application and loads its config and data.
func New(opts Options) (*Application, error) {
	app := &Application{
		opts:   opts,
		logger: logging.Nop(),
		events: make(chan backend.Event, 64),
		done:   make(chan struct{}),
	}
	if err := app.bootstrap(); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

// bootstrap initializes components in dependency order.
func (app *Application) bootstrap() error {
	// 1. Config
	app.loader = config.NewLoader(app.opts.ConfigPath)
	cfg, err := app.loader.Load()
	if err != nil {
		return &InitError{Component: "config", Err: err}
	}
	app.applyOverrides(cfg)
	app.cfg = cfg

	// 2. Logging
	if cfg.Logging.File != "" {
		l, closer, err := logging.OpenFile(cfg.Logging.File, cfg.LogLevel())
		if err != nil {
			return &InitError{Component: "logging", Err: err}
		}
		app.logger, app.logCloser = l, closer
	}

	// 3. Scripts
	timeout, _ := cfg.ScriptTimeout()
	scriptOpts := []script.Option{script.WithLogger(app.logger)}
	if timeout > 0 {
		scriptOpts = append(scriptOpts, script.WithTimeout(timeout))
	}
	app.scripts = script.New(scriptOpts...)

	// 4. Data
	if cfg.Data.Path != "" {
		if app.data, err = OpenDatasource(cfg.Data.Path, cfg.Data.RowsPath, cfg.Data.ChildrenKey); err != nil {
			return &InitError{Component: "data", Err: err}
		}
	}

	// 5. Grid
	app.grid = grid.New(
		grid.WithLogger(app.logger),
		grid.WithShowChildren(cfg.Grid.ShowChildren),
		grid.WithEmptyText(cfg.Grid.EmptyText),
		grid.WithEditOnDoubleClick(cfg.Grid.EditOnDoubleClick),
	)
	if err := app.applyColumns(cfg); err != nil {
		return &InitError{Component: "columns", Err: err}
	}
	if app.data != nil {
		rows, err := app.data.Rows()
		if err != nil {
			return &InitError{Component: "data", Err: err}
		}
		app.grid.SetRows(rows)
		app.logger.Info("loaded %d rows from %s", len(rows), cfg.Data.Path)
	}
	app.grid.Subscribe(notify.ValueChanged, app.onValueChanged)
	app.grid.Subscribe(notify.DeleteRow, app.onDeleteRow)

	// 6. Watcher (non-fatal)
	if app.opts.Watch && app.opts.ConfigPath != "" {
		w, err := config.NewWatcher(app.loader, config.WithWatchLogger(app.logger))
		if err != nil {
			app.logger.Warn("config watch disabled: %v", err)
		} else {
			app.watcher = w
		}
	}
	return nil
}

func (app *Application) applyOverrides(cfg *config.Config) {
	if app.opts.DataPath != "" {
		cfg.Data.Path = app.opts.DataPath
	}
	if app.opts.LogLevel != "" {
		cfg.Logging.Level = app.opts.LogLevel
	}
	if app.opts.LogFile != "" {
		cfg.Logging.File = app.opts.LogFile
	}
	if app.opts.ReadOnly {
		cfg.Data.SaveEdits = false
	}
}

// applyColumns builds the configured columns and the configured sort.
func (app *Application) applyColumns(cfg *config.Config) error {
	var fields []string
	if app.data != nil {
		fields = app.data.Fields()
	}
	cols, err := BuildColumns(cfg.Columns, fields, app.scripts)
	if err != nil {
		return err
	}
	app.grid.SetColumns(cols)
	app.grid.SetShowChildren(cfg.Grid.ShowChildren)
	app.grid.Sort(cfg.Sort(cols))
	return nil
}

// SetBackend sets the display backend Run draws on.
func (app *Application) SetBackend(b backend.Backend) {
	app.backend = b
}

// Grid returns the grid widget.
func (app *Application) Grid() *grid.Grid {
	return app.grid
}

// Config returns the active configuration.
func (app *Application) Config() *config.Config {
	return app.cfg
}

// Datasource returns the dataset, or nil when none was opened.
func (app *Application) Datasource() *Datasource {
	return app.data
}

// Run initializes the backend and runs the event loop until quit. It
// returns ErrQuit after a normal quit.
func (app *Application) Run() error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	if app.backend == nil {
		return ErrNoBackend
	}
	if err := app.backend.Init(); err != nil {
		return &InitError{Component: "backend", Err: err}
	}
	defer app.backend.Shutdown()

	app.grid.Resize(app.backend.Size())
	app.grid.Focus()

	go app.pollEvents()
	return app.eventLoop()
}

// Shutdown stops a running event loop.
func (app *Application) Shutdown() {
	app.stop()
}

func (app *Application) stop() {
	app.stopOnce.Do(func() {
		close(app.done)
		if app.backend != nil {
			app.backend.Interrupt()
		}
	})
}

// Close releases the scripts, the watcher and the log file.
func (app *Application) Close() {
	if app.watcher != nil {
		app.watcher.Close()
	}
	if app.scripts != nil {
		app.scripts.Close()
	}
	if app.logCloser != nil {
		app.logCloser.Close()
	}
}
