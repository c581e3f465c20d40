package export

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Debounce is how long Watch waits after the last change before re-running.
var Debounce = 200 * time.Millisecond

// Watch calls fn whenever one of paths is written, created or renamed, until
// ctx is done. Bursts of events within Debounce collapse into one call. A
// failing fn is logged and watching continues.
func (e *Exporter) Watch(ctx context.Context, paths []string, fn func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// Watch directories: editors often replace files by rename, which drops
	// a watch on the file itself.
	files := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		files[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
		dirs[dir] = true
	}
	e.log.Info("watching", zap.Strings("paths", paths))

	timer := time.NewTimer(Debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !files[filepath.Clean(event.Name)] {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			e.log.Debug("change detected", zap.String("path", event.Name), zap.Stringer("op", event.Op))
			timer.Reset(Debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			e.log.Warn("watch error", zap.Error(err))
		case <-timer.C:
			if err := fn(); err != nil {
				e.log.Error("re-export failed", zap.Error(err))
			}
		}
	}
}
