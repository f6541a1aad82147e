package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/gridstorm/internal/logging"
)

// DefaultDebounce collapses the burst of events an editor save produces.
const DefaultDebounce = 150 * time.Millisecond

// Reload is the outcome of reloading the config after a change.
type Reload struct {
	Config *Config
	Err    error
}

// Watcher reloads the config file when it changes on disk. The parent
// directory is watched so that saves by rename are seen.
type Watcher struct {
	mu     sync.Mutex
	loader *Loader
	path   string
	fs     *fsnotify.Watcher
	logger *logging.Logger

	debounce time.Duration
	reloads  chan Reload

	closed  bool
	closeCh chan struct{}
	wg      sync.WaitGroup
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the quiet period before a reload.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithWatchLogger sets the watcher logger.
func WithWatchLogger(l *logging.Logger) WatcherOption {
	return func(w *Watcher) { w.logger = logging.OrNop(l).WithComponent("config") }
}

// NewWatcher starts watching the loader's file.
func NewWatcher(l *Loader, opts ...WatcherOption) (*Watcher, error) {
	abs, err := filepath.Abs(l.Path())
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		loader:   l,
		path:     abs,
		fs:       fsw,
		logger:   logging.Nop(),
		debounce: DefaultDebounce,
		reloads:  make(chan Reload, 1),
		closeCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Reloads delivers a freshly loaded config after each change.
func (w *Watcher) Reloads() <-chan Reload {
	return w.reloads
}

// Close stops the watcher and closes the Reloads channel.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrWatcherClosed
	}
	w.closed = true
	close(w.closeCh)
	w.mu.Unlock()

	err := w.fs.Close()
	w.wg.Wait()
	close(w.reloads)
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.closeCh:
			return

		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			fire = timer.C

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error: %v", err)

		case <-fire:
			fire = nil
			cfg, err := w.loader.Load()
			if err != nil {
				w.logger.Warn("reload failed: %v", err)
			} else {
				w.logger.Info("reloaded %s", w.path)
			}
			select {
			case w.reloads <- Reload{Config: cfg, Err: err}:
			case <-w.closeCh:
				return
			}
		}
	}
}
