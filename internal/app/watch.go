// ABOUTME: File watcher that re-syncs a content unit when its source changes.
// ABOUTME: Watches the parent directory so editor rename-on-save is caught.

package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/harper/marginalia/internal/selection"
)

const watchDebounce = 100 * time.Millisecond

// WatchText re-runs SyncText every time path is written, until ctx ends.
// Each sync result is passed to onSync.
func (a *App) WatchText(ctx context.Context, slug, path string, onSync func(*selection.Rendered, error)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	timer := time.NewTimer(watchDebounce)
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
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			a.Logger.DebugContext(ctx, "content source changed", slog.String("path", abs), slog.String("op", event.Op.String()))
			timer.Reset(watchDebounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.Logger.WarnContext(ctx, "watcher error", slog.Any("err", err))
		case <-timer.C:
			data, err := os.ReadFile(abs) //nolint:gosec // Path is chosen by the user
			if err != nil {
				onSync(nil, fmt.Errorf("read %s: %w", abs, err))
				continue
			}
			onSync(a.SyncText(ctx, slug, string(data)))
		}
	}
}
