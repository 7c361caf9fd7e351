// Package watch monitors a directory tree for source file changes and
// reports them after a debounce window, so that rapid editor save bursts
// collapse into a single notification per file.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the event batching window used when Config.Debounce
// is zero.
const DefaultDebounce = 300 * time.Millisecond

// Config controls which files a Watcher reports and how events are batched.
type Config struct {
	// Debounce is how long to wait after the last event before flushing the
	// pending batch. Zero means DefaultDebounce.
	Debounce time.Duration

	// Extensions restricts reporting to files with one of these extensions
	// (including the leading dot). Empty means all files.
	Extensions []string

	// ExcludeDirs names directory basenames that are never descended into,
	// such as "node_modules" or ".git".
	ExcludeDirs []string
}

type eventKind int

const (
	eventChange eventKind = iota
	eventRemove
)

// Watcher wraps fsnotify with recursive directory watches, extension
// filtering, debouncing, and content-hash suppression of no-op writes.
type Watcher struct {
	fsw    *fsnotify.Watcher
	cfg    Config
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	onChange func(path string)
	onRemove func(path string)

	// hashes remembers the last seen content hash per path so saves that
	// leave the bytes untouched are suppressed.
	hashMu sync.Mutex
	hashes map[string]uint64

	pendingMu sync.Mutex
	pending   map[string]eventKind
	timer     *time.Timer
}

// New creates a Watcher that invokes onChange for created or modified files
// and onRemove for deleted or renamed-away files. Call Start to begin
// watching and Stop to shut down.
func New(cfg Config, onChange, onRemove func(path string)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create watcher: %w", err)
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		fsw:      fsw,
		cfg:      cfg,
		ctx:      ctx,
		cancel:   cancel,
		onChange: onChange,
		onRemove: onRemove,
		hashes:   make(map[string]uint64),
		pending:  make(map[string]eventKind),
	}, nil
}

// Start adds watches for root and every subdirectory, then begins
// processing events until Stop is called.
func (w *Watcher) Start(root string) error {
	if err := w.addWatches(root); err != nil {
		return fmt.Errorf("watch: add watches under %s: %w", root, err)
	}
	w.wg.Add(1)
	go w.run()
	return nil
}

// Stop cancels event processing and waits for the watcher goroutine to
// exit. Events pending in the debounce window are dropped.
func (w *Watcher) Stop() error {
	w.cancel()
	err := w.fsw.Close()
	w.wg.Wait()

	w.pendingMu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pendingMu.Unlock()
	return err
}

// addWatches walks root and registers every non-excluded directory.
// Symlink cycles are broken by tracking resolved paths.
func (w *Watcher) addWatches(root string) error {
	visited := make(map[string]bool)

	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || !info.IsDir() {
			return nil
		}
		if w.excludedDir(filepath.Base(path)) {
			return filepath.SkipDir
		}

		real, err := filepath.EvalSymlinks(path)
		if err != nil {
			return nil
		}
		if visited[real] {
			return filepath.SkipDir
		}
		visited[real] = true

		if err := w.fsw.Add(path); err != nil {
			fmt.Fprintf(os.Stderr, "watch: cannot watch %s: %v\n", path, err)
		}
		return nil
	})
}

func (w *Watcher) excludedDir(base string) bool {
	for _, d := range w.cfg.ExcludeDirs {
		if base == d {
			return true
		}
	}
	return false
}

func (w *Watcher) run() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			fmt.Fprintf(os.Stderr, "watch: %v\n", err)
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	path := ev.Name

	info, err := os.Stat(path)
	if err != nil {
		// Gone from disk: removal or rename-away.
		if ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 && w.wantsFile(path) {
			w.enqueue(path, eventRemove)
		}
		return
	}

	if info.IsDir() {
		// Watch newly created directories so files inside them are seen.
		if ev.Op&fsnotify.Create != 0 && !w.excludedDir(filepath.Base(path)) {
			if err := w.fsw.Add(path); err != nil {
				fmt.Fprintf(os.Stderr, "watch: cannot watch new directory %s: %v\n", path, err)
			}
		}
		return
	}

	if !w.wantsFile(path) {
		return
	}
	if ev.Op&(fsnotify.Create|fsnotify.Write) != 0 {
		w.enqueue(path, eventChange)
	}
}

// wantsFile reports whether a path passes the extension filter.
func (w *Watcher) wantsFile(path string) bool {
	if len(w.cfg.Extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range w.cfg.Extensions {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

func (w *Watcher) enqueue(path string, kind eventKind) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	// Latest event per path wins within a window.
	w.pending[path] = kind

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.cfg.Debounce, w.flush)
}

// flush delivers the batch accumulated during the debounce window.
// Removals are delivered before changes so a rename shows up as
// remove-then-change rather than the reverse.
func (w *Watcher) flush() {
	w.pendingMu.Lock()
	batch := w.pending
	w.pending = make(map[string]eventKind)
	w.pendingMu.Unlock()

	if w.ctx.Err() != nil {
		return
	}

	for path, kind := range batch {
		if kind != eventRemove {
			continue
		}
		w.forget(path)
		if w.onRemove != nil {
			w.onRemove(path)
		}
	}
	for path, kind := range batch {
		if kind != eventChange {
			continue
		}
		if !w.contentChanged(path) {
			continue
		}
		if w.onChange != nil {
			w.onChange(path)
		}
	}
}

// contentChanged hashes the file on disk and reports whether the bytes
// differ from the last delivered version. Unreadable files are treated as
// changed so the caller can decide what to do.
func (w *Watcher) contentChanged(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return true
	}
	sum := xxhash.Sum64(data)

	w.hashMu.Lock()
	defer w.hashMu.Unlock()
	if prev, ok := w.hashes[path]; ok && prev == sum {
		return false
	}
	w.hashes[path] = sum
	return true
}

func (w *Watcher) forget(path string) {
	w.hashMu.Lock()
	delete(w.hashes, path)
	w.hashMu.Unlock()
}
