// Package watcher reports file system changes below a project root.
package watcher

import (
	"context"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"go.trai.ch/jig/internal/core/domain"
	"go.trai.ch/jig/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Watcher = (*Watcher)(nil)

// skippedDirectories are never watched.
var skippedDirectories = map[string]bool{
	".git":         true,
	".jj":          true,
	"node_modules": true,
	"vendor":       true,
}

const eventChannelBuffer = 100

// Watcher implements ports.Watcher using fsnotify.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	logger    ports.Logger
	events    chan ports.WatchEvent

	mu      sync.RWMutex
	ignored []string
	watched map[string]struct{}
}

// NewWatcher creates a new file system watcher.
func NewWatcher(logger ports.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrWatcherStartFailed.Error())
	}
	return &Watcher{
		fsWatcher: fsWatcher,
		logger:    logger,
		events:    make(chan ports.WatchEvent, eventChannelBuffer),
		watched:   make(map[string]struct{}),
	}, nil
}

// Start watches root and its subdirectories, pruning directories matched by ignored.
// Relative ignored patterns are resolved against root.
func (w *Watcher) Start(ctx context.Context, root string, ignored []string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrFailedToGetRoot.Error()), "root", root)
	}

	w.mu.Lock()
	w.ignored = domain.NormalizePaths(absRoot, ignored...)
	w.mu.Unlock()

	if err := w.addTree(absRoot); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrWatcherStartFailed.Error()), "root", absRoot)
	}

	go w.processEvents(ctx)
	return nil
}

// Add watches the static base directory of every absolute pattern so that files outside
// the root can still trigger events. Bases that do not exist are skipped.
func (w *Watcher) Add(patterns []string) error {
	for _, pattern := range patterns {
		base, _ := doublestar.SplitPattern(filepath.ToSlash(pattern))
		dir := filepath.FromSlash(base)
		info, err := os.Stat(dir)
		if err != nil {
			continue
		}
		if !info.IsDir() {
			dir = filepath.Dir(dir)
		}
		if err := w.addTree(dir); err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrWatcherStartFailed.Error()), "pattern", pattern)
		}
	}
	return nil
}

// Stop stops the watcher and releases all resources.
func (w *Watcher) Stop() error {
	return w.fsWatcher.Close()
}

// Events returns an iterator of file system events. It ends when the watcher stops.
func (w *Watcher) Events() iter.Seq[ports.WatchEvent] {
	return func(yield func(ports.WatchEvent) bool) {
		for event := range w.events {
			if !yield(event) {
				return
			}
		}
	}
}

func (w *Watcher) addTree(root string) error {
	for dir := range w.directories(root) {
		w.mu.Lock()
		_, seen := w.watched[dir]
		w.watched[dir] = struct{}{}
		w.mu.Unlock()
		if seen {
			continue
		}
		if err := w.fsWatcher.Add(dir); err != nil {
			return err
		}
	}
	return nil
}

// directories walks the tree below root and yields every directory worth watching.
func (w *Watcher) directories(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil //nolint:nilerr // unreadable directories are skipped
			}
			if !d.IsDir() {
				return nil
			}
			if path != root && w.shouldSkip(path) {
				return fs.SkipDir
			}
			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

// shouldSkip reports whether the directory at path is pruned.
func (w *Watcher) shouldSkip(path string) bool {
	if skippedDirectories[filepath.Base(path)] {
		return true
	}

	slashed := filepath.ToSlash(path)
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, pattern := range w.ignored {
		if ok, _ := doublestar.Match(pattern, slashed); ok {
			return true
		}
		if prefix, found := strings.CutSuffix(pattern, "/**"); found {
			if ok, _ := doublestar.Match(prefix, slashed); ok {
				return true
			}
		}
	}
	return false
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.events)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			watchEvent, ok := convertEvent(event)
			if !ok {
				continue
			}

			if watchEvent.Operation == ports.OpCreate {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if !w.watchNewDirectory(ctx, event.Name) {
						return
					}
					continue
				}
			}

			if !w.emit(ctx, watchEvent) {
				return
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher: file system error: " + err.Error())
		}
	}
}

// watchNewDirectory starts watching a directory that appeared after Start and reports the
// files already inside it, since they were created before the watch was in place.
func (w *Watcher) watchNewDirectory(ctx context.Context, dir string) bool {
	if w.shouldSkip(dir) {
		return true
	}
	if err := w.addTree(dir); err != nil {
		w.logger.Warn("watcher: cannot watch " + dir + ": " + err.Error())
		return true
	}

	var files []string
	for sub := range w.directories(dir) {
		entries, err := os.ReadDir(sub)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				files = append(files, filepath.Join(sub, entry.Name()))
			}
		}
	}
	for _, file := range files {
		if !w.emit(ctx, ports.WatchEvent{Path: file, Operation: ports.OpCreate}) {
			return false
		}
	}
	return true
}

func (w *Watcher) emit(ctx context.Context, event ports.WatchEvent) bool {
	select {
	case w.events <- event:
		return true
	case <-ctx.Done():
		return false
	}
}

// convertEvent maps an fsnotify event onto a ports.WatchEvent. Write wins over the
// other bits because editors often report CREATE|WRITE for a save.
func convertEvent(event fsnotify.Event) (ports.WatchEvent, bool) {
	var op ports.WatchOp
	switch {
	case event.Has(fsnotify.Write):
		op = ports.OpWrite
	case event.Has(fsnotify.Create):
		op = ports.OpCreate
	case event.Has(fsnotify.Remove):
		op = ports.OpRemove
	case event.Has(fsnotify.Rename):
		op = ports.OpRename
	default:
		return ports.WatchEvent{}, false
	}
	return ports.WatchEvent{Path: event.Name, Operation: op}, true
}
