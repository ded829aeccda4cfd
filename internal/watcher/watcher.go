// Package watcher hot-reloads the component registry file: when the YAML
// definitions change on disk, the registry is replaced, the sanitizer
// schema rebuilt, and the compilation cache cleared.
package watcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/isleforge/isleforge/internal/logging"
	"github.com/isleforge/isleforge/internal/registry"
)

// ReloadHandler is invoked after the registry has been reloaded, so hosts
// can rebuild derived state (sanitizer schema, caches) and notify clients.
type ReloadHandler func()

// RegistryWatcher watches one registry file with debounced reloads.
type RegistryWatcher struct {
	path     string
	registry *registry.ComponentRegistry
	watcher  *fsnotify.Watcher
	logger   logging.Logger
	debounce time.Duration

	mutex    sync.Mutex
	handlers []ReloadHandler
	timer    *time.Timer
}

// NewRegistryWatcher creates a watcher for the registry file at path.
func NewRegistryWatcher(path string, reg *registry.ComponentRegistry, logger logging.Logger) (*RegistryWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the directory: editors often replace files atomically, which
	// drops a watch on the file itself.
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, err
	}

	return &RegistryWatcher{
		path:     path,
		registry: reg,
		watcher:  fsw,
		logger:   logger.WithComponent("registry_watcher"),
		debounce: 200 * time.Millisecond,
	}, nil
}

// OnReload registers a handler called after each successful reload.
func (w *RegistryWatcher) OnReload(handler ReloadHandler) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	w.handlers = append(w.handlers, handler)
}

// Start runs the watch loop until the context is canceled.
func (w *RegistryWatcher) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.watcher.Close()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleReload(ctx)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn(ctx, err, "registry watch error")
		}
	}
}

// scheduleReload coalesces rapid successive writes into one reload.
func (w *RegistryWatcher) scheduleReload(ctx context.Context) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.reload(ctx)
	})
}

func (w *RegistryWatcher) reload(ctx context.Context) {
	registrations, err := registry.LoadFile(w.path)
	if err != nil {
		w.logger.Warn(ctx, err, "registry reload skipped: file invalid", "path", w.path)
		return
	}

	merged := registry.BuiltinRegistrations()
	merged = append(merged, registrations...)
	w.registry.Replace(merged)

	w.logger.Info(ctx, "registry reloaded",
		"path", w.path, "components", w.registry.Count())

	w.mutex.Lock()
	handlers := make([]ReloadHandler, len(w.handlers))
	copy(handlers, w.handlers)
	w.mutex.Unlock()

	for _, handler := range handlers {
		handler()
	}
}
