// Package watcher notices out-of-process writes to the activity store.
//
// It is used by `favs watch` to refresh the favorites list when another
// process links, unlinks or reorders resources.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aidanlsb/favs/internal/logging"
)

var errWatcherClosed = errors.New("file watcher closed")

// Watcher monitors a store file and reports debounced changes.
type Watcher struct {
	path string
	dir  string
	base string

	debounceDelay time.Duration
	logger        *zap.Logger

	fsWatcher *fsnotify.Watcher
	pending   time.Time
	mu        sync.Mutex

	onChange func()
}

// Config holds configuration options for the Watcher.
type Config struct {
	StorePath     string
	DebounceDelay time.Duration // Default (and for values <= 0): 100ms
	Logger        *zap.Logger
	OnChange      func() // Called from the watcher goroutine
}

// New creates a new Watcher with the given configuration.
func New(cfg Config) (*Watcher, error) {
	if cfg.StorePath == "" {
		return nil, fmt.Errorf("store path is required")
	}
	if cfg.OnChange == nil {
		return nil, fmt.Errorf("change callback is required")
	}

	debounce := cfg.DebounceDelay
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	abs, err := filepath.Abs(cfg.StorePath)
	if err != nil {
		return nil, err
	}
	return &Watcher{
		path:          abs,
		dir:           filepath.Dir(abs),
		base:          filepath.Base(abs),
		debounceDelay: debounce,
		logger:        logging.OrNop(cfg.Logger),
		onChange:      cfg.OnChange,
	}, nil
}

// Start begins watching the store for changes.
// It blocks until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	var err error
	w.fsWatcher, err = fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer w.fsWatcher.Close()

	// SQLite replaces and truncates its side files, so watch the directory
	// rather than the files themselves.
	if err := w.fsWatcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.logger.Debug("watching store", zap.String("path", w.path))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		w.processDebounced(gctx)
		return nil
	})
	g.Go(func() error {
		return w.loop(gctx)
	})
	return g.Wait()
}

// loop feeds fsnotify events to handleEvent until ctx is done.
func (w *Watcher) loop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return errWatcherClosed
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return errWatcherClosed
			}
			w.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

// handleEvent schedules a change for writes to the store or its side files.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !w.isStoreFile(event.Name) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	w.logger.Debug("store event", zap.String("op", event.Op.String()), zap.String("file", event.Name))

	w.mu.Lock()
	w.pending = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) isStoreFile(name string) bool {
	if filepath.Dir(name) != w.dir {
		return false
	}
	rest, ok := strings.CutPrefix(filepath.Base(name), w.base)
	if !ok {
		return false
	}
	switch rest {
	case "", "-wal", "-journal":
		return true
	}
	return false
}

const (
	defaultDebounce = 100 * time.Millisecond
	minTick         = time.Millisecond
)

// tickInterval is half the debounce delay, at least minTick.
func (w *Watcher) tickInterval() time.Duration {
	if d := w.debounceDelay / 2; d >= minTick {
		return d
	}
	return minTick
}

// processDebounced fires the callback once events have settled.
func (w *Watcher) processDebounced(ctx context.Context) {
	ticker := time.NewTicker(w.tickInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if w.ready(time.Now()) {
				w.onChange()
			}
		}
	}
}

// ready reports whether a pending change has been quiet for the debounce
// delay, and clears it if so.
func (w *Watcher) ready(now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.pending.IsZero() || now.Sub(w.pending) < w.debounceDelay {
		return false
	}
	w.pending = time.Time{}
	return true
}
