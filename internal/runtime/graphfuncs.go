package runtime

import (
	"context"
	"fmt"

	"github.com/risor-io/risor/object"

	"github.com/jward/refgraph/internal/graph"
)

// Host functions wrapping Graph operations. Each closure reads r.graph at
// call time so a SetGraph swap is picked up by subsequent script runs.

func makeAddSymbolFn(r *Runtime) *object.Builtin {
	return object.NewBuiltin("add_symbol", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("add_symbol", 1, len(args))
		}
		m, err := extractMap(args[0])
		if err != nil {
			return object.Errorf("add_symbol: %v", err)
		}
		r.graph.AddSymbol(symbolFromMap(m))
		return object.Nil
	})
}

func makeAddReferenceFn(r *Runtime) *object.Builtin {
	return object.NewBuiltin("add_reference", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("add_reference", 1, len(args))
		}
		m, err := extractMap(args[0])
		if err != nil {
			return object.Errorf("add_reference: %v", err)
		}
		r.graph.AddReference(referenceFromMap(m))
		return object.Nil
	})
}

func makeAddFileFn(r *Runtime) *object.Builtin {
	return object.NewBuiltin("add_file", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("add_file", 1, len(args))
		}
		m, err := extractMap(args[0])
		if err != nil {
			return object.Errorf("add_file: %v", err)
		}
		fd, err := fileDataFromMap(m)
		if err != nil {
			return object.Errorf("add_file: %v", err)
		}
		r.graph.AddFile(fd)
		return object.Nil
	})
}

func makeUpdateFileFn(r *Runtime) *object.Builtin {
	return object.NewBuiltin("update_file", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 2 {
			return object.NewArgsError("update_file", 2, len(args))
		}
		path, err := toString(args[0])
		if err != nil {
			return object.Errorf("update_file: %v", err)
		}
		m, err := extractMap(args[1])
		if err != nil {
			return object.Errorf("update_file: %v", err)
		}
		fd, err := fileDataFromMap(m)
		if err != nil {
			return object.Errorf("update_file: %v", err)
		}
		r.graph.UpdateFile(path, fd)
		return object.Nil
	})
}

func makeRemoveFileFn(r *Runtime) *object.Builtin {
	return stringArgFn("remove_file", func(r *Runtime, path string) object.Object {
		r.graph.RemoveFile(path)
		return object.Nil
	}, r)
}

func makeRemoveReferencesFn(r *Runtime) *object.Builtin {
	return stringArgFn("remove_references", func(r *Runtime, id string) object.Object {
		r.graph.RemoveReferences(id)
		return object.Nil
	}, r)
}

func makeMarkDirtyFn(r *Runtime) *object.Builtin {
	return stringArgFn("mark_dirty", func(r *Runtime, path string) object.Object {
		r.graph.MarkFileDirty(path)
		return object.Nil
	}, r)
}

func makeClearDirtyFn(r *Runtime) *object.Builtin {
	return object.NewBuiltin("clear_dirty", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 0 {
			return object.NewArgsError("clear_dirty", 0, len(args))
		}
		r.graph.ClearDirtyFiles()
		return object.Nil
	})
}

func makeHasSymbolFn(r *Runtime) *object.Builtin {
	return stringArgFn("has_symbol", func(r *Runtime, id string) object.Object {
		return object.NewBool(r.graph.HasSymbol(id))
	}, r)
}

func makeGetSymbolFn(r *Runtime) *object.Builtin {
	return stringArgFn("get_symbol", func(r *Runtime, id string) object.Object {
		s, ok := r.graph.SymbolByID(id)
		if !ok {
			return object.Nil
		}
		return symbolToMap(s)
	}, r)
}

func makeAllSymbolsFn(r *Runtime) *object.Builtin {
	return object.NewBuiltin("all_symbols", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 0 {
			return object.NewArgsError("all_symbols", 0, len(args))
		}
		return symbolsToList(r.graph.AllSymbols())
	})
}

func makeFindCallersFn(r *Runtime) *object.Builtin {
	return stringArgFn("find_callers", func(r *Runtime, id string) object.Object {
		return referencesToList(r.graph.Callers(id))
	}, r)
}

func makeFindCalleesFn(r *Runtime) *object.Builtin {
	return stringArgFn("find_callees", func(r *Runtime, id string) object.Object {
		return referencesToList(r.graph.Callees(id))
	}, r)
}

func makeIsSymbolUsedFn(r *Runtime) *object.Builtin {
	return stringArgFn("is_symbol_used", func(r *Runtime, id string) object.Object {
		return object.NewBool(r.graph.IsSymbolUsed(id))
	}, r)
}

func makeUnusedSymbolsFn(r *Runtime) *object.Builtin {
	return object.NewBuiltin("unused_symbols", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 0 {
			return object.NewArgsError("unused_symbols", 0, len(args))
		}
		return symbolsToList(r.graph.UnusedSymbols())
	})
}

func makeSymbolsByNameFn(r *Runtime) *object.Builtin {
	return stringArgFn("symbols_by_name", func(r *Runtime, name string) object.Object {
		return symbolsToList(r.graph.SymbolsByName(name))
	}, r)
}

func makeSymbolsByFileFn(r *Runtime) *object.Builtin {
	return stringArgFn("symbols_by_file", func(r *Runtime, path string) object.Object {
		return symbolsToList(r.graph.SymbolsByFile(path))
	}, r)
}

func makeExportedSymbolsFn(r *Runtime) *object.Builtin {
	return object.NewBuiltin("exported_symbols", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 0 {
			return object.NewArgsError("exported_symbols", 0, len(args))
		}
		return symbolsToList(r.graph.ExportedSymbols())
	})
}

func makeDirtyFilesFn(r *Runtime) *object.Builtin {
	return object.NewBuiltin("dirty_files", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 0 {
			return object.NewArgsError("dirty_files", 0, len(args))
		}
		paths := r.graph.DirtyFiles()
		items := make([]object.Object, 0, len(paths))
		for _, p := range paths {
			items = append(items, object.NewString(p))
		}
		return object.NewList(items)
	})
}

func makeGraphStatsFn(r *Runtime) *object.Builtin {
	return object.NewBuiltin("graph_stats", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 0 {
			return object.NewArgsError("graph_stats", 0, len(args))
		}
		stats := r.graph.Stats()
		return object.NewMap(map[string]object.Object{
			"total_symbols":      object.NewInt(int64(stats.TotalSymbols)),
			"total_references":   object.NewInt(int64(stats.TotalReferences)),
			"total_files":        object.NewInt(int64(stats.TotalFiles)),
			"memory_usage_bytes": object.NewInt(int64(stats.MemoryUsageBytes)),
		})
	})
}

// stringArgFn builds a one-string-argument host function.
func stringArgFn(name string, fn func(*Runtime, string) object.Object, r *Runtime) *object.Builtin {
	return object.NewBuiltin(name, func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError(name, 1, len(args))
		}
		s, err := toString(args[0])
		if err != nil {
			return object.Errorf("%s: %v", name, err)
		}
		return fn(r, s)
	})
}

// --- Map/value conversion ---

// symbolFromMap coerces a Risor map to a Symbol; missing or mistyped fields
// become defaults, never errors.
func symbolFromMap(m map[string]object.Object) graph.Symbol {
	return graph.Symbol{
		ID:         getString(m, "id"),
		Name:       getString(m, "name"),
		Kind:       getString(m, "type"),
		FilePath:   getString(m, "file_path"),
		Line:       getInt(m, "line"),
		Column:     getInt(m, "column"),
		ClassName:  getString(m, "class_name"),
		IsExported: getBool(m, "is_exported"),
		IsStatic:   getBool(m, "is_static"),
	}
}

func referenceFromMap(m map[string]object.Object) graph.Reference {
	return graph.Reference{
		ID:           getString(m, "id"),
		FromSymbolID: getString(m, "from_symbol_id"),
		ToSymbolID:   getString(m, "to_symbol_id"),
		Kind:         getString(m, "type"),
		FilePath:     getString(m, "file_path"),
		Line:         getInt(m, "line"),
		Column:       getInt(m, "column"),
	}
}

func fileDataFromMap(m map[string]object.Object) (graph.FileData, error) {
	fd := graph.FileData{Path: getString(m, "path")}

	if v, ok := m["symbols"]; ok {
		list, ok := v.(*object.List)
		if !ok {
			return fd, fmt.Errorf("symbols: expected list, got %s", v.Type())
		}
		for _, item := range list.Value() {
			sm, err := extractMap(item)
			if err != nil {
				return fd, fmt.Errorf("symbols: %v", err)
			}
			fd.Symbols = append(fd.Symbols, symbolFromMap(sm))
		}
	}

	if v, ok := m["imports"]; ok {
		list, ok := v.(*object.List)
		if !ok {
			return fd, fmt.Errorf("imports: expected list, got %s", v.Type())
		}
		for _, item := range list.Value() {
			im, err := extractMap(item)
			if err != nil {
				return fd, fmt.Errorf("imports: %v", err)
			}
			entry := graph.ImportEntry{
				Source:     getString(im, "source"),
				IsTypeOnly: getBool(im, "is_type_only"),
			}
			if names, ok := im["imported"].(*object.List); ok {
				for _, n := range names.Value() {
					if s, ok := n.(*object.String); ok {
						entry.Imported = append(entry.Imported, s.Value())
					}
				}
			}
			fd.Imports = append(fd.Imports, entry)
		}
	}

	return fd, nil
}

func symbolToMap(s graph.Symbol) object.Object {
	return object.NewMap(map[string]object.Object{
		"id":          object.NewString(s.ID),
		"name":        object.NewString(s.Name),
		"type":        object.NewString(s.Kind),
		"file_path":   object.NewString(s.FilePath),
		"line":        object.NewInt(int64(s.Line)),
		"column":      object.NewInt(int64(s.Column)),
		"class_name":  object.NewString(s.ClassName),
		"is_exported": object.NewBool(s.IsExported),
		"is_static":   object.NewBool(s.IsStatic),
	})
}

func symbolsToList(syms []graph.Symbol) object.Object {
	results := make([]object.Object, 0, len(syms))
	for _, s := range syms {
		results = append(results, symbolToMap(s))
	}
	return object.NewList(results)
}

func referenceToMap(r graph.Reference) object.Object {
	return object.NewMap(map[string]object.Object{
		"id":             object.NewString(r.ID),
		"from_symbol_id": object.NewString(r.FromSymbolID),
		"to_symbol_id":   object.NewString(r.ToSymbolID),
		"type":           object.NewString(r.Kind),
		"file_path":      object.NewString(r.FilePath),
		"line":           object.NewInt(int64(r.Line)),
		"column":         object.NewInt(int64(r.Column)),
	})
}

func referencesToList(refs []graph.Reference) object.Object {
	results := make([]object.Object, 0, len(refs))
	for _, r := range refs {
		results = append(results, referenceToMap(r))
	}
	return object.NewList(results)
}

// --- Map extraction helpers ---

func extractMap(obj object.Object) (map[string]object.Object, error) {
	m, ok := obj.(*object.Map)
	if !ok {
		return nil, fmt.Errorf("expected map, got %s", obj.Type())
	}
	return m.Value(), nil
}

func getString(m map[string]object.Object, key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	if s, ok := v.(*object.String); ok {
		return s.Value()
	}
	return ""
}

func getInt(m map[string]object.Object, key string) int {
	v, ok := m[key]
	if !ok {
		return 0
	}
	if i, ok := v.(*object.Int); ok {
		return int(i.Value())
	}
	if f, ok := v.(*object.Float); ok {
		return int(f.Value())
	}
	return 0
}

func getBool(m map[string]object.Object, key string) bool {
	v, ok := m[key]
	if !ok {
		return false
	}
	if b, ok := v.(*object.Bool); ok {
		return b.Value()
	}
	return false
}

func toString(obj object.Object) (string, error) {
	if s, ok := obj.(*object.String); ok {
		return s.Value(), nil
	}
	return "", fmt.Errorf("expected string, got %s", obj.Type())
}
