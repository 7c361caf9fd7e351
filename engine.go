package refgraph

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/jward/refgraph/internal/graph"
	"github.com/jward/refgraph/internal/runtime"
	"github.com/jward/refgraph/internal/snapshot"
)

// Engine owns a Graph and wires the optional collaborators around it:
// dump loading from external parsers, Risor analysis scripts, and SQLite
// snapshots. The Engine inherits the Graph's concurrency contract — one
// goroutine at a time, or an external mutex.
type Engine struct {
	graph      *graph.Graph
	runtime    *runtime.Runtime
	scriptsDir string
	scriptsFS  fs.FS
}

// Option configures an Engine.
type Option func(*Engine)

// WithScriptsDir configures the Engine to load Risor analysis scripts from
// a directory on disk.
func WithScriptsDir(dir string) Option {
	return func(e *Engine) {
		e.scriptsDir = dir
	}
}

// WithScriptsFS configures the Engine to load Risor analysis scripts from
// the given filesystem instead of from disk. This enables embedding scripts
// via go:embed. Takes precedence over WithScriptsDir for script loading.
func WithScriptsFS(fsys fs.FS) Option {
	return func(e *Engine) {
		e.scriptsFS = fsys
	}
}

// New creates an Engine with an empty Graph.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{graph: graph.New()}
	for _, opt := range opts {
		opt(e)
	}

	var rtOpts []runtime.RuntimeOption
	if e.scriptsFS != nil {
		rtOpts = append(rtOpts, runtime.WithRuntimeFS(e.scriptsFS))
	}
	e.runtime = runtime.NewRuntime(e.graph, e.scriptsDir, rtOpts...)

	return e, nil
}

// Graph returns the underlying Graph for direct access.
func (e *Engine) Graph() *Graph {
	return e.graph
}

// Query returns a new QueryBuilder over the Graph.
func (e *Engine) Query() *QueryBuilder {
	return &QueryBuilder{graph: e.graph}
}

// RunScript executes a Risor analysis script against the Graph. The path is
// resolved against the configured scripts source (fs.FS or directory).
func (e *Engine) RunScript(ctx context.Context, scriptPath string) error {
	return e.runtime.RunScript(ctx, scriptPath, nil)
}

// RunSource executes Risor source code directly against the Graph. Useful
// for one-off analyses and testing without script files.
func (e *Engine) RunSource(ctx context.Context, source string) error {
	return e.runtime.RunSource(ctx, source, nil)
}

// SaveSnapshot writes the current Graph to a SQLite database at path. The
// Graph itself never persists anything; snapshots are the host's concern
// and this is the hook for it.
func (e *Engine) SaveSnapshot(path string) error {
	if err := snapshot.Save(e.graph, path); err != nil {
		return fmt.Errorf("refgraph: save snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot replaces the Engine's Graph with one rebuilt from a SQLite
// snapshot. Adjacency is re-derived by replaying inserts, never trusted
// from disk.
func (e *Engine) LoadSnapshot(path string) error {
	g, err := snapshot.Load(path)
	if err != nil {
		return fmt.Errorf("refgraph: load snapshot: %w", err)
	}
	e.graph = g
	e.runtime.SetGraph(g)
	return nil
}
