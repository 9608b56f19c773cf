package cliconfig

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/lazymc-docker-proxy/internal/ports"
	"github.com/bft-labs/lazymc-docker-proxy/pkg/log"
)

// DefaultDebounce is the delay between a config file change and its reload.
const DefaultDebounce = 100 * time.Millisecond

// LevelWatcher reloads log_level from the config file when it changes.
// Flags and environment still win: a changed log level in either disables
// the reload.
type LevelWatcher struct {
	path     string
	debounce time.Duration
	apply    func(log.Level)
	logger   ports.Logger

	mu    sync.Mutex
	timer *time.Timer
}

// NewLevelWatcher creates a watcher for path calling apply with every new
// valid level.
func NewLevelWatcher(path string, apply func(log.Level), logger ports.Logger) *LevelWatcher {
	return &LevelWatcher{
		path:     path,
		debounce: DefaultDebounce,
		apply:    apply,
		logger:   logger.WithTarget("lazymc-docker-proxy::config"),
	}
}

// Run watches until ctx is done. The directory is watched rather than the
// file so that atomic replacements are seen.
func (w *LevelWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}
	name := filepath.Base(w.path)

	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			if w.timer != nil {
				w.timer.Stop()
			}
			w.mu.Unlock()
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.schedule()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watcher error", ports.Err(err))
		}
	}
}

func (w *LevelWatcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *LevelWatcher) reload() {
	fc, err := LoadFileConfig(w.path)
	if err != nil {
		w.logger.Warn("failed to reload config file", ports.String("path", w.path), ports.Err(err))
		return
	}
	if fc.LogLevel == "" {
		return
	}
	level, err := log.ParseConfigLevel(fc.LogLevel)
	if err != nil {
		w.logger.Warn("ignoring invalid log level", ports.String("log_level", fc.LogLevel))
		return
	}
	w.apply(level)
	w.logger.Info("log level changed", ports.String("level", level.String()))
}
