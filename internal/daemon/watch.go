package daemon

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ConfigWatcher calls a reload function when the config file changes. The
// parent directory is watched because editors replace files on save.
type ConfigWatcher struct {
	path     string
	debounce time.Duration
	reload   func(ctx context.Context) error
	log      *zap.Logger
}

// NewConfigWatcher creates a watcher for the config file at path.
func NewConfigWatcher(path string, reload func(ctx context.Context) error, log *zap.Logger) *ConfigWatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &ConfigWatcher{
		path:     filepath.Clean(path),
		debounce: 250 * time.Millisecond,
		reload:   reload,
		log:      log.Named("watch"),
	}
}

// Run watches until ctx is canceled.
func (w *ConfigWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	w.log.Info("watching config", zap.String("path", w.path))

	// Stopped until the first relevant event arrives.
	settle := time.NewTimer(time.Hour)
	settle.Stop()
	defer settle.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			settle.Reset(w.debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", zap.Error(err))

		case <-settle.C:
			if _, err := os.Stat(w.path); err != nil {
				// Mid-rename; the create event follows.
				continue
			}
			if err := w.reload(ctx); err != nil {
				w.log.Error("config reload failed", zap.Error(err))
				continue
			}
			w.log.Info("config reloaded", zap.String("path", w.path))
		}
	}
}
