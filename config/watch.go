package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch monitors the config file and delivers each successfully
// reloaded config. The file's parent directory is watched, since
// editors replace files rather than write them in place. Invalid
// configs are logged and skipped. The channel closes when ctx is done.
func Watch(ctx context.Context, path string) (<-chan *Config, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	out := make(chan *Config, 1)
	go watchLoop(ctx, watcher, path, out)
	return out, nil
}

func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, path string, out chan<- *Config) {
	defer watcher.Close()
	defer close(out)
	// wait for rapid changes to settle
	const debounce = 100 * time.Millisecond
	var lastChange time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if filepath.Base(event.Name) != filepath.Base(path) {
				continue
			}
			if time.Since(lastChange) < debounce {
				continue
			}
			lastChange = time.Now()
			cfg, err := Load(path)
			if err != nil {
				slog.Error("failed to reload config", "path", path, "err", err)
				continue
			}
			slog.Info("config reloaded", "path", path)
			select {
			case out <- cfg:
			case <-ctx.Done():
				return
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			slog.Error("config watcher error", "err", err)
		}
	}
}
