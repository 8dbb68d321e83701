package config

import (
	"log/slog"
	"path/filepath"
	"reflect"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeHandler receives each reloaded config that differs from the last one.
type ChangeHandler func(cfg *Config)

// Watcher reloads the config file when it changes on disk. Event bursts are
// debounced into one reload. A file that fails to load or validate is logged
// and the last good config stays in effect; a reload that yields the same
// config (touch, editor swap files) is dropped.
type Watcher struct {
	path     string
	fs       *fsnotify.Watcher
	debounce time.Duration

	mu       sync.Mutex
	handlers []ChangeHandler
	last     *Config

	done     chan struct{}
	stopOnce sync.Once
}

// NewWatcher creates a watcher for path. current is the config already in
// use; reloads equal to it are not reported. Nothing is watched until Start.
func NewWatcher(path string, current *Config) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		path:     filepath.Clean(path),
		fs:       fw,
		debounce: 300 * time.Millisecond,
		last:     current,
		done:     make(chan struct{}),
	}, nil
}

// OnChange adds a handler. Handlers run on the watcher goroutine, in order.
func (w *Watcher) OnChange(h ChangeHandler) {
	w.mu.Lock()
	w.handlers = append(w.handlers, h)
	w.mu.Unlock()
}

// Start watches the parent directory, so editors that write a temp file and
// rename it over the config are still seen.
func (w *Watcher) Start() error {
	if err := w.fs.Add(filepath.Dir(w.path)); err != nil {
		return err
	}
	go w.loop()
	slog.Info("config watcher started", "path", w.path)
	return nil
}

// Stop halts the watcher. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.fs.Close()
		slog.Info("config watcher stopped")
	})
}

func (w *Watcher) loop() {
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, w.reload)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			slog.Error("config watcher error", "error", err)
		}
	}
}

func (w *Watcher) reload() {
	select {
	case <-w.done:
		return
	default:
	}

	cfg, err := Load(w.path)
	if err != nil {
		slog.Error("config reload failed, keeping previous config", "path", w.path, "error", err)
		return
	}

	w.mu.Lock()
	if w.last != nil && reflect.DeepEqual(w.last, cfg) {
		w.mu.Unlock()
		slog.Debug("config file changed but settings did not", "path", w.path)
		return
	}
	w.last = cfg
	handlers := append([]ChangeHandler(nil), w.handlers...)
	w.mu.Unlock()

	for _, h := range handlers {
		h(cfg)
	}
	slog.Info("config reloaded", "base_url", cfg.BaseURL, "user_id", cfg.UserID)
}
