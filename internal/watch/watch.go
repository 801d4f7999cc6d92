// Package watch reports changed input files under a directory tree.
//
// Events are collected until the tree has been quiet for the debounce delay,
// then delivered as one batch. Files in excluded or ignored directories are
// never reported, which keeps a converter from reacting to its own output.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/alnah/go-syllabify/internal/logger"
)

// DefaultDebounce is the quiet period before a batch is delivered.
const DefaultDebounce = 500 * time.Millisecond

var ErrNotDirectory = errors.New("watch root is not a directory")

// DefaultExcludeDirs are directory names skipped at any depth.
var DefaultExcludeDirs = []string{".git", "node_modules", "vendor"}

// Config configures a Watcher.
type Config struct {
	// Debounce is the quiet period before delivery. Zero means DefaultDebounce.
	Debounce time.Duration
	// Extensions lists accepted file extensions (".txt"). Empty accepts all.
	Extensions []string
	// ExcludeDirs lists directory names skipped at any depth.
	ExcludeDirs []string
	// Ignore lists directories skipped by path, such as an output folder.
	Ignore []string
	Logger logger.Logger
}

// Event is a changed file.
type Event struct {
	Path    string
	Removed bool
}

// Watcher watches a directory tree.
type Watcher struct {
	root       string
	debounce   time.Duration
	extensions map[string]bool
	excludes   map[string]bool
	ignore     []string
	logger     logger.Logger
	fsw        *fsnotify.Watcher
}

// New creates a watcher for root and registers every directory below it.
func New(root string, cfg Config) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}

	w := &Watcher{
		root:       abs,
		debounce:   cfg.Debounce,
		extensions: make(map[string]bool),
		excludes:   make(map[string]bool),
		logger:     cfg.Logger,
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	if w.logger == nil {
		w.logger = logger.NewNop()
	}
	for _, ext := range cfg.Extensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		w.extensions[strings.ToLower(ext)] = true
	}
	excludes := cfg.ExcludeDirs
	if len(excludes) == 0 {
		excludes = DefaultExcludeDirs
	}
	for _, dir := range excludes {
		w.excludes[dir] = true
	}
	for _, dir := range cfg.Ignore {
		if a, err := filepath.Abs(dir); err == nil {
			w.ignore = append(w.ignore, a)
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	w.fsw = fsw
	if err := w.addRecursive(abs, nil); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Root returns the absolute watched directory.
func (w *Watcher) Root() string {
	return w.root
}

// Close stops watching. Run returns once the watcher is closed.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run delivers debounced batches to fn until ctx is done or the watcher is
// closed. fn runs on the Run goroutine; events arriving meanwhile are queued
// for the next batch.
func (w *Watcher) Run(ctx context.Context, fn func([]Event)) error {
	pending := make(map[string]bool)
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if w.handle(ev, pending) {
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", logger.Error(err))

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			batch := make([]Event, 0, len(pending))
			for path, removed := range pending {
				batch = append(batch, Event{Path: path, Removed: removed})
			}
			clear(pending)
			sort.Slice(batch, func(i, j int) bool { return batch[i].Path < batch[j].Path })
			fn(batch)
		}
	}
}

// handle records ev in pending and reports whether the batch grew.
func (w *Watcher) handle(ev fsnotify.Event, pending map[string]bool) bool {
	path := ev.Name
	if w.skippedPath(path) {
		return false
	}

	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			grew := false
			err := w.addRecursive(path, func(file string) {
				pending[file] = false
				grew = true
			})
			if err != nil {
				w.logger.Warn("watching new directory failed", logger.String("path", path), logger.Error(err))
			}
			return grew
		}
	}
	if !w.Accepts(path) {
		return false
	}

	removed := ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
	if !removed && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return false
	}
	pending[path] = removed
	w.logger.Debug("change detected", logger.String("path", path), logger.String("op", ev.Op.String()))
	return true
}

// Accepts reports whether path has an accepted extension and lies outside
// excluded and ignored directories.
func (w *Watcher) Accepts(path string) bool {
	if len(w.extensions) > 0 && !w.extensions[strings.ToLower(filepath.Ext(path))] {
		return false
	}
	return !w.skippedPath(path)
}

func (w *Watcher) skippedPath(path string) bool {
	for _, dir := range w.ignore {
		if path == dir || strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return true
	}
	for _, part := range strings.Split(filepath.Dir(rel), string(filepath.Separator)) {
		if w.skipDir(part) {
			return true
		}
	}
	return false
}

func (w *Watcher) skipDir(base string) bool {
	return w.excludes[base] || (strings.HasPrefix(base, ".") && base != "." && base != "..")
}

// addRecursive watches root and the directories below it. found, when set,
// receives the accepted files already present.
func (w *Watcher) addRecursive(root string, found func(string)) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			if found != nil && d.Type().IsRegular() && w.Accepts(path) {
				found(path)
			}
			return nil
		}
		if path != w.root && (w.skipDir(d.Name()) || w.skippedPath(filepath.Join(path, "x"))) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			w.logger.Warn("watching directory failed", logger.String("path", path), logger.Error(err))
			return nil
		}
		w.logger.Debug("watching directory", logger.String("path", path))
		return nil
	})
}
