// Package runtime embeds a Risor VM and exposes the reference graph to
// host-authored analysis scripts through host functions. Scripts receive
// maps and lists, never Go structs; missing map fields coerce to defaults,
// matching the index's tolerance for partial parser payloads.
package runtime

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/risor-io/risor"
	"github.com/risor-io/risor/importer"
	"github.com/risor-io/risor/object"

	"github.com/jward/refgraph/internal/graph"
)

// Runtime embeds a Risor VM wired to a Graph.
type Runtime struct {
	graph      *graph.Graph
	scriptsDir string
	fsys       fs.FS
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithRuntimeFS configures the Runtime to load scripts from an fs.FS
// instead of from disk. Also configures the Risor importer to use
// FSImporter for import statement resolution.
func WithRuntimeFS(fsys fs.FS) RuntimeOption {
	return func(r *Runtime) {
		r.fsys = fsys
	}
}

// NewRuntime creates a Runtime wired to the given Graph and scripts
// directory.
func NewRuntime(g *graph.Graph, scriptsDir string, opts ...RuntimeOption) *Runtime {
	r := &Runtime{
		graph:      g,
		scriptsDir: scriptsDir,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetGraph repoints the Runtime at a different Graph instance, used when
// the owning Engine swaps graphs (e.g. after loading a snapshot).
func (r *Runtime) SetGraph(g *graph.Graph) {
	r.graph = g
}

// RunScript loads and executes a Risor script with all graph globals plus
// any extra globals provided by the caller.
func (r *Runtime) RunScript(ctx context.Context, scriptPath string, extraGlobals map[string]any) error {
	src, err := r.LoadScript(scriptPath)
	if err != nil {
		return err
	}
	return r.eval(ctx, src, scriptPath, extraGlobals)
}

// RunSource executes Risor source code directly. Useful for one-off
// analyses and testing without script files.
func (r *Runtime) RunSource(ctx context.Context, source string, extraGlobals map[string]any) error {
	return r.eval(ctx, source, "<inline>", extraGlobals)
}

func (r *Runtime) eval(ctx context.Context, source, label string, extraGlobals map[string]any) error {
	globals := r.buildGlobals(extraGlobals)

	var opts []risor.Option
	for name, val := range globals {
		opts = append(opts, risor.WithGlobal(name, val))
	}

	if imp := r.buildImporter(globals); imp != nil {
		opts = append(opts, risor.WithImporter(imp))
	}

	_, err := risor.Eval(ctx, source, opts...)
	if err != nil {
		return fmt.Errorf("runtime: script %s: %w", label, err)
	}
	return nil
}

// buildImporter returns a Risor importer configured for the Runtime's
// script source. Returns nil if neither fs.FS nor scriptsDir is configured.
func (r *Runtime) buildImporter(globals map[string]any) importer.Importer {
	globalNames := make([]string, 0, len(globals))
	for name := range globals {
		globalNames = append(globalNames, name)
	}

	if r.fsys != nil {
		return importer.NewFSImporter(importer.FSImporterOptions{
			GlobalNames: globalNames,
			SourceFS:    r.fsys,
			Extensions:  []string{".risor"},
		})
	}
	if r.scriptsDir != "" {
		return importer.NewLocalImporter(importer.LocalImporterOptions{
			GlobalNames: globalNames,
			SourceDir:   r.scriptsDir,
			Extensions:  []string{".risor"},
		})
	}
	return nil
}

// LoadScript reads a .risor file and returns its source code. When an fs.FS
// is configured, uses fs.ReadFile on the embedded filesystem; otherwise
// os.ReadFile with scriptsDir as the base directory.
func (r *Runtime) LoadScript(path string) (string, error) {
	if r.fsys != nil {
		fsPath := strings.TrimPrefix(filepath.ToSlash(path), "/")
		data, err := fs.ReadFile(r.fsys, fsPath)
		if err != nil {
			return "", fmt.Errorf("runtime: loading script %s from fs: %w", fsPath, err)
		}
		return string(data), nil
	}

	fullPath := path
	if !filepath.IsAbs(path) {
		fullPath = filepath.Join(r.scriptsDir, path)
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		return "", fmt.Errorf("runtime: loading script %s: %w", fullPath, err)
	}
	return string(data), nil
}

// buildGlobals constructs the full set of globals exposed to Risor scripts.
func (r *Runtime) buildGlobals(extra map[string]any) map[string]any {
	globals := map[string]any{
		"log": mustProxy(&logObject{prefix: "refgraph"}),
	}

	if r.graph != nil {
		// Mutators — Risor cannot construct Go structs, so these accept
		// maps and build the values Go-side.
		globals["add_symbol"] = makeAddSymbolFn(r)
		globals["add_reference"] = makeAddReferenceFn(r)
		globals["add_file"] = makeAddFileFn(r)
		globals["update_file"] = makeUpdateFileFn(r)
		globals["remove_file"] = makeRemoveFileFn(r)
		globals["remove_references"] = makeRemoveReferencesFn(r)
		globals["mark_dirty"] = makeMarkDirtyFn(r)
		globals["clear_dirty"] = makeClearDirtyFn(r)

		// Queries
		globals["has_symbol"] = makeHasSymbolFn(r)
		globals["get_symbol"] = makeGetSymbolFn(r)
		globals["all_symbols"] = makeAllSymbolsFn(r)
		globals["find_callers"] = makeFindCallersFn(r)
		globals["find_callees"] = makeFindCalleesFn(r)
		globals["is_symbol_used"] = makeIsSymbolUsedFn(r)
		globals["unused_symbols"] = makeUnusedSymbolsFn(r)
		globals["symbols_by_name"] = makeSymbolsByNameFn(r)
		globals["symbols_by_file"] = makeSymbolsByFileFn(r)
		globals["exported_symbols"] = makeExportedSymbolsFn(r)
		globals["dirty_files"] = makeDirtyFilesFn(r)
		globals["graph_stats"] = makeGraphStatsFn(r)
	}

	for k, v := range extra {
		globals[k] = v
	}
	return globals
}

// logObject provides log.info/warn/error methods for Risor scripts.
type logObject struct {
	prefix string
}

func (l *logObject) Info(msg string) {
	fmt.Printf("[%s] INFO: %s\n", l.prefix, msg)
}

func (l *logObject) Warn(msg string) {
	fmt.Printf("[%s] WARN: %s\n", l.prefix, msg)
}

func (l *logObject) Error(msg string) {
	fmt.Printf("[%s] ERROR: %s\n", l.prefix, msg)
}

func mustProxy(v any) object.Object {
	p, err := object.NewProxy(v)
	if err != nil {
		panic(fmt.Sprintf("runtime: proxy error: %v", err))
	}
	return p
}
