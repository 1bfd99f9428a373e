package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads configuration when files under the loader's base path change.
// Only settings that are safe to change at runtime are acted on by callbacks.
type Watcher struct {
	loader    *Loader
	logger    *zap.Logger
	fsWatcher *fsnotify.Watcher
	debounce  time.Duration

	mu        sync.Mutex
	callbacks []func(*Config)
	current   *Config

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewWatcher starts watching the loader's base directory.
func NewWatcher(loader *Loader, initial *Config, logger *zap.Logger) (*Watcher, error) {
	return newWatcher(loader, initial, logger, 500*time.Millisecond)
}

func newWatcher(loader *Loader, initial *Config, logger *zap.Logger, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(loader.BasePath()); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		loader:    loader,
		logger:    logger,
		fsWatcher: fsw,
		debounce:  debounce,
		current:   initial,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// OnChange registers fn to run after every successful reload.
func (w *Watcher) OnChange(fn func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, fn)
}

// Current returns the most recently loaded configuration.
func (w *Watcher) Current() *Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Stop ends the watch loop and releases the file watcher.
func (w *Watcher) Stop() error {
	select {
	case <-w.stopCh:
		return nil
	default:
		close(w.stopCh)
	}
	<-w.doneCh
	return w.fsWatcher.Close()
}

func (w *Watcher) run() {
	defer close(w.doneCh)

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-w.stopCh:
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !relevant(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.reload()

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Config watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := w.loader.Load()
	if err != nil {
		w.logger.Error("Config reload failed, keeping previous configuration", zap.Error(err))
		return
	}

	w.mu.Lock()
	w.current = cfg
	callbacks := append([]func(*Config){}, w.callbacks...)
	w.mu.Unlock()

	w.logger.Info("Configuration reloaded", zap.Strings("sources", cfg.LoadedFrom))
	for _, fn := range callbacks {
		fn(cfg)
	}
}

func relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	switch filepath.Ext(event.Name) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}
