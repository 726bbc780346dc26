package game

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ReloadCatalog re-reads path and swaps it into src. A broken file keeps the
// previous catalog active.
func ReloadCatalog(src *CatalogSource, path string, log *zap.Logger) error {
	c, err := LoadCatalogFile(path)
	if err != nil {
		log.Warn("catalog reload failed, keeping previous catalog", zap.String("path", path), zap.Error(err))
		return err
	}
	src.Swap(c)
	log.Info("catalog reloaded", zap.String("path", path),
		zap.Int("fish", len(c.Fish)), zap.Int("rods", len(c.Rods)), zap.Int("ships", len(c.Ships)))
	return nil
}

// WatchCatalog reloads the catalog whenever the file at path is written.
// Editors often save in bursts, so events inside debounce are coalesced.
// It blocks until ctx is done.
func WatchCatalog(ctx context.Context, src *CatalogSource, path string, debounce time.Duration, log *zap.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory: many editors replace the file rather than write it.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}
	target := filepath.Clean(path)

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending = time.After(debounce)
		case <-pending:
			pending = nil
			_ = ReloadCatalog(src, path, log)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("catalog watcher error", zap.Error(err))
		}
	}
}
