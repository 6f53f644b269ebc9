// Package watcher turns filesystem activity under registered directories
// into debounced import triggers.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"plinth/internal/catalog"
	"plinth/internal/fileutil"
	"plinth/internal/logging"
)

// TriggerFunc runs one import cycle for a directory whose contents
// changed. It is invoked from the watcher's event loop, one call at a
// time.
type TriggerFunc func(ctx context.Context, dir catalog.Directory) error

// Watcher observes registered directories and fires the trigger after a
// quiet period, so a burst of writes from a copy or an export produces a
// single import instead of one per file event.
type Watcher struct {
	fs       *fsnotify.Watcher
	debounce time.Duration
	trigger  TriggerFunc
	logger   *slog.Logger

	mu     sync.Mutex
	dirs   map[string]catalog.Directory // watch root -> directory
	timers map[int64]*time.Timer
	fire   chan catalog.Directory
}

// New constructs a watcher over the given directories.
func New(dirs []*catalog.Directory, debounce time.Duration, trigger TriggerFunc, logger *slog.Logger) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		fs:       fs,
		debounce: debounce,
		trigger:  trigger,
		logger:   logging.NewComponentLogger(logger, "watcher"),
		dirs:     make(map[string]catalog.Directory),
		timers:   make(map[int64]*time.Timer),
		fire:     make(chan catalog.Directory, 16),
	}
	for _, dir := range dirs {
		if err := fs.Add(dir.Path); err != nil {
			fs.Close()
			return nil, fmt.Errorf("watch %s: %w", dir.Path, err)
		}
		w.dirs[dir.Path] = *dir
		w.logger.Info("watching directory",
			logging.String(logging.FieldDirectory, dir.Path))
	}
	return w, nil
}

// Run consumes filesystem events until the context ends. Each trigger
// invocation runs inline so imports never overlap.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case dir := <-w.fire:
			if err := w.trigger(ctx, dir); err != nil {
				w.logger.Error("triggered import failed",
					logging.String(logging.FieldDirectory, dir.Path),
					logging.Error(err),
				)
			}
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", logging.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Rename) {
		return
	}
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") || !fileutil.IsModelFile(name) {
		return
	}
	dir, ok := w.directoryFor(event.Name)
	if !ok {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if timer, ok := w.timers[dir.ID]; ok {
		timer.Reset(w.debounce)
		return
	}
	w.timers[dir.ID] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, dir.ID)
		w.mu.Unlock()
		select {
		case w.fire <- dir:
		default:
			// A trigger for this directory is already queued.
		}
	})
}

func (w *Watcher) directoryFor(path string) (catalog.Directory, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for root, dir := range w.dirs {
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			return dir, true
		}
	}
	return catalog.Directory{}, false
}

func (w *Watcher) close() {
	w.mu.Lock()
	for id, timer := range w.timers {
		timer.Stop()
		delete(w.timers, id)
	}
	w.mu.Unlock()
	if err := w.fs.Close(); err != nil {
		w.logger.Warn("closing watcher", logging.Error(err))
	}
}
