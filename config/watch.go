package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 100 * time.Millisecond

// Watch reloads the settings file at path whenever it changes and delivers
// each successfully parsed config on the returned channel. The parent
// directory is watched so editors that replace the file on save are seen.
// The channel is closed when ctx is done. If adjust is non-nil it is applied
// to every reloaded config before delivery, e.g. to re-apply command line
// overrides.
func Watch(ctx context.Context, path string, logger *slog.Logger, adjust func(*Config)) (<-chan *Config, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	out := make(chan *Config, 1)
	go func() {
		defer close(out)
		defer watcher.Close()

		// Debounce: collect events and reload after quiet period
		debounceTimer := time.NewTimer(watchDebounce)
		debounceTimer.Stop()
		pending := false

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(path) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				pending = true
				debounceTimer.Reset(watchDebounce)
			case <-debounceTimer.C:
				if !pending {
					continue
				}
				pending = false
				cfg, err := LoadFile(path)
				if err != nil {
					logger.Warn("settings reload failed", "path", path, "error", err)
					continue
				}
				if adjust != nil {
					adjust(cfg)
				}
				logger.Debug("settings reloaded", "path", path, "theme", cfg.Theme)
				// Latest config wins if the consumer has not caught up.
				select {
				case <-out:
				default:
				}
				select {
				case out <- cfg:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Debug("settings watcher error", "error", err)
			}
		}
	}()
	return out, nil
}
