// Package watch monitors the server's data directory. When a dataset file
// is created, rewritten or removed, the registry is updated and the whole
// analysis cache is invalidated, since cached keys may describe stale data.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/deepblue-labs/datachat/internal/cache"
	"github.com/deepblue-labs/datachat/internal/dataset"
)

type Watcher struct {
	watcher  *fsnotify.Watcher
	registry *dataset.Registry
	store    cache.Store
}

func New(registry *dataset.Registry, store cache.Store) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{watcher: w, registry: registry, store: store}, nil
}

// Watch monitors dir until ctx is canceled. It returns once the watch is
// registered; event handling runs in a goroutine.
func (w *Watcher) Watch(ctx context.Context, dir string) error {
	if err := w.watcher.Add(dir); err != nil {
		return err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				w.handle(event)
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("dataset watcher error", "error", err)
			}
		}
	}()
	return nil
}

func (w *Watcher) handle(event fsnotify.Event) {
	if _, err := dataset.FormatForPath(event.Name); err != nil {
		return
	}
	name := tableName(event.Name)

	switch {
	case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
		table, err := dataset.LoadFile(event.Name)
		if err != nil {
			slog.Warn("failed to reload dataset", "path", event.Name, "error", err)
			return
		}
		w.registry.Add(table)
		slog.Info("dataset reloaded", "name", name, "rows", table.NumRows())

	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		w.registry.Remove(name)
		slog.Info("dataset removed", "name", name)

	default:
		return
	}

	if err := w.store.InvalidateAll(); err != nil {
		slog.Warn("cache invalidation after dataset change failed", "error", err)
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

func tableName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
