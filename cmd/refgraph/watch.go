package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/jward/refgraph"
	"github.com/jward/refgraph/internal/watch"
	"github.com/spf13/cobra"
)

var (
	flagExtensions  string
	flagDebounceMs  int
	flagExcludeDirs string
)

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Watch a directory and track stale files in the graph",
	Long:  "Monitors the directory for source changes. Changed files are marked dirty in the graph so a reindex can target them; removed files are evicted with full cascade. The snapshot is written back on exit.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&flagExtensions, "ext", ".ts,.tsx,.js,.jsx", "comma-separated file extensions to watch")
	watchCmd.Flags().IntVar(&flagDebounceMs, "debounce", 300, "event batching window in milliseconds")
	watchCmd.Flags().StringVar(&flagExcludeDirs, "exclude", "node_modules,.git,dist", "comma-separated directory names to skip")
}

func runWatch(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return fmt.Errorf("not a directory: %s", root)
	}

	dbPath, err := ensureDBPath()
	if err != nil {
		return err
	}

	engine, err := refgraph.New()
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}
	if _, err := os.Stat(dbPath); err == nil {
		if err := engine.LoadSnapshot(dbPath); err != nil {
			return fmt.Errorf("loading snapshot: %w", err)
		}
	}

	// The graph stores parser-style paths relative to the watched root.
	relPath := func(abs string) string {
		rel, err := filepath.Rel(root, abs)
		if err != nil {
			return abs
		}
		return filepath.ToSlash(rel)
	}

	// Callbacks fire from the watcher goroutine; the graph is single-writer.
	var mu sync.Mutex
	g := engine.Graph()

	onChange := func(abs string) {
		mu.Lock()
		defer mu.Unlock()
		path := relPath(abs)
		g.MarkFileDirty(path)
		fmt.Fprintf(os.Stderr, "dirty: %s\n", path)
	}
	onRemove := func(abs string) {
		mu.Lock()
		defer mu.Unlock()
		path := relPath(abs)
		if g.HasFile(path) {
			g.RemoveFile(path)
			fmt.Fprintf(os.Stderr, "removed: %s\n", path)
		}
		g.MarkFileDirty(path)
	}

	w, err := watch.New(watch.Config{
		Debounce:    time.Duration(flagDebounceMs) * time.Millisecond,
		Extensions:  splitList(flagExtensions),
		ExcludeDirs: splitList(flagExcludeDirs),
	}, onChange, onRemove)
	if err != nil {
		return err
	}
	if err := w.Start(root); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Watching %s (ctrl-c to stop)\n", root)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	if err := w.Stop(); err != nil {
		fmt.Fprintf(os.Stderr, "stopping watcher: %v\n", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if err := engine.SaveSnapshot(dbPath); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Snapshot: %s (%d dirty file(s))\n", dbPath, len(g.DirtyFiles()))
	return nil
}

// splitList splits a comma-separated flag value, trimming whitespace and
// dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
