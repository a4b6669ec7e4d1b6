package config

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/racerkit/internal/log"
)

// ReloadHandler is called with the freshly loaded config after the watched
// file changes. Load errors are logged and the previous config stays active.
type ReloadHandler func(cfg Config)

// Watcher monitors one config file and reloads it on change.
type Watcher struct {
	path    string
	fsw     *fsnotify.Watcher
	logger  *log.Logger
	handler ReloadHandler

	mu      sync.Mutex
	started bool
	done    chan struct{}
}

// NewWatcher creates a watcher for the config file at path.
func NewWatcher(path string, handler ReloadHandler, logger *log.Logger) (*Watcher, error) {
	if logger == nil {
		logger = log.Null
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the directory: editors typically replace config files by
	// rename, which drops a watch placed on the file itself.
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	return &Watcher{
		path:    path,
		fsw:     fsw,
		logger:  logger.WithComponent("config-watcher"),
		handler: handler,
		done:    make(chan struct{}),
	}, nil
}

// Start begins delivering reload events. It is a no-op if already started.
func (w *Watcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return
	}
	w.started = true
	go w.loop()
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Done is closed when the watch loop exits.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

func (w *Watcher) loop() {
	defer close(w.done)

	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.reload()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error: %v", err)
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.logger.Error("config reload failed, keeping previous config: %v", err)
		return
	}

	w.logger.Info("config reloaded from %s", w.path)
	if w.handler != nil {
		w.handler(cfg)
	}
}
