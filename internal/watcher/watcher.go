// Package watcher monitors configured directories for newly created git
// repositories and triggers rescans.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/devpulse/internal/logfields"
)

// RepoWatcher monitors watch paths for git repository creation and removal.
// A .git directory appearing or disappearing anywhere under a watch path
// triggers the rescan callback, debounced so a burst of filesystem events
// schedules a single rescan.
type RepoWatcher struct {
	paths        []string
	onChange     func(ctx context.Context)
	watcher      *fsnotify.Watcher
	logger       *slog.Logger
	mu           sync.Mutex
	stopChan     chan struct{}
	rescanChan   chan struct{}
	debounceTime time.Duration
}

// NewRepoWatcher creates a watcher over the given paths. onChange is called
// after the debounce interval whenever repository layout changes.
func NewRepoWatcher(paths []string, logger *slog.Logger, onChange func(ctx context.Context)) (*RepoWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	abs := make([]string, 0, len(paths))
	for _, p := range paths {
		a, err := filepath.Abs(p)
		if err != nil {
			watcher.Close()
			return nil, fmt.Errorf("resolve watch path %s: %w", p, err)
		}
		abs = append(abs, a)
	}

	return &RepoWatcher{
		paths:        abs,
		onChange:     onChange,
		watcher:      watcher,
		logger:       logger,
		stopChan:     make(chan struct{}),
		rescanChan:   make(chan struct{}, 1),
		debounceTime: 2 * time.Second,
	}, nil
}

// Start begins monitoring. Missing paths are logged and skipped so one bad
// entry does not disable the watcher.
func (w *RepoWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	watched := 0
	for _, p := range w.paths {
		if err := w.watcher.Add(p); err != nil {
			w.logger.Warn("cannot watch path", logfields.Path(p), logfields.Error(err))
			continue
		}
		watched++
	}
	if watched == 0 && len(w.paths) > 0 {
		return fmt.Errorf("no watchable paths among %d configured", len(w.paths))
	}

	w.logger.Info("repository watcher started", logfields.Count(watched))

	go w.watchLoop(ctx)
	go w.rescanLoop(ctx)
	return nil
}

// Stop stops the watcher and releases the underlying inotify resources.
func (w *RepoWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	close(w.stopChan)
	if w.watcher != nil {
		if err := w.watcher.Close(); err != nil {
			w.logger.Error("close file watcher", logfields.Error(err))
		}
	}
}

func (w *RepoWatcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("repository layout change", logfields.Path(event.Name))
			w.triggerRescan()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", logfields.Error(err))
		}
	}
}

// relevant reports whether the event can change the set of repositories:
// a directory created directly under a watch path, or a .git entry appearing
// or going away.
func (w *RepoWatcher) relevant(event fsnotify.Event) bool {
	base := filepath.Base(event.Name)
	if base == ".git" {
		return event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0
	}
	if event.Op&fsnotify.Create != 0 {
		for _, p := range w.paths {
			if filepath.Dir(event.Name) == p {
				return true
			}
		}
	}
	return false
}

func (w *RepoWatcher) rescanLoop(ctx context.Context) {
	var timer *time.Timer
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case <-w.stopChan:
			if timer != nil {
				timer.Stop()
			}
			return
		case <-w.rescanChan:
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounceTime, func() {
				w.logger.Info("rescanning after filesystem change")
				w.onChange(ctx)
			})
		}
	}
}

func (w *RepoWatcher) triggerRescan() {
	select {
	case w.rescanChan <- struct{}{}:
	default:
		// Rescan already pending
	}
}
