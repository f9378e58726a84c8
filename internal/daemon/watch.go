package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultWatchDebounce coalesces the burst of events editors produce on save.
const DefaultWatchDebounce = 250 * time.Millisecond

// ConfigWatcher reports changes to the config file. It watches the
// containing directory so that atomic rename-on-save is seen.
type ConfigWatcher struct {
	w        *fsnotify.Watcher
	path     string
	debounce time.Duration
	logger   *slog.Logger
}

// NewConfigWatcher starts watching path. The watch is active when it
// returns.
func NewConfigWatcher(path string, debounce time.Duration, logger *slog.Logger) (*ConfigWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create config watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ConfigWatcher{w: w, path: abs, debounce: debounce, logger: logger}, nil
}

// Run calls notify once per settled burst of changes to the config file.
// Blocks until ctx is cancelled, then closes the watcher.
func (cw *ConfigWatcher) Run(ctx context.Context, notify func()) {
	defer cw.w.Close()

	timer := time.NewTimer(cw.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-cw.w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != cw.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			cw.logger.Debug("config file changed", "path", cw.path, "op", ev.Op.String())
			timer.Reset(cw.debounce)
		case err, ok := <-cw.w.Errors:
			if !ok {
				return
			}
			cw.logger.Warn("config watcher error", "error", err)
		case <-timer.C:
			notify()
		}
	}
}
