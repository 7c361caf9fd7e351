package graph

// AddFile stores the file record keyed by its path and adds its symbols to
// the global symbol table. An existing record for the same path is
// overwritten without cascading cleanup — callers replacing a file's symbols
// use UpdateFile (or RemoveFile first). Imports are stored as-is and never
// interpreted.
func (g *Graph) AddFile(file FileData) {
	g.files[file.Path] = file
	g.AddSymbols(file.Symbols)
}

// UpdateFile replaces a file wholesale: RemoveFile then AddFile. This is a
// full cascading replace, not a diff — references not re-added by the caller
// afterwards are gone, and symbols absent from the new file are fully purged
// in both directions.
func (g *Graph) UpdateFile(path string, file FileData) {
	g.RemoveFile(path)
	g.AddFile(file)
}

// RemoveFile excises a file and everything it defined: for each symbol
// recorded under the file, its outgoing references are removed, the symbol
// is dropped from the global table, and every reference targeting it is
// unlinked from its origin's outgoing list and deleted. Unknown paths are a
// no-op. Symbols added directly via AddSymbol and never listed in a file are
// untouched.
func (g *Graph) RemoveFile(path string) {
	file, ok := g.files[path]
	if !ok {
		return
	}
	for _, sym := range file.Symbols {
		g.RemoveReferences(sym.ID)
		delete(g.symbols, sym.ID)

		for _, refID := range g.incoming[sym.ID] {
			r, ok := g.references[refID]
			if !ok {
				continue
			}
			g.outgoing[r.FromSymbolID] = removeID(g.outgoing[r.FromSymbolID], refID)
			if len(g.outgoing[r.FromSymbolID]) == 0 {
				delete(g.outgoing, r.FromSymbolID)
			}
			delete(g.references, refID)
		}
		delete(g.incoming, sym.ID)
	}
	delete(g.files, path)
}

// HasFile reports whether a file record exists for the path.
func (g *Graph) HasFile(path string) bool {
	_, ok := g.files[path]
	return ok
}

// SymbolsByFile returns the symbols recorded for a file. Unknown paths yield
// an empty result, indistinguishable from a file with no symbols.
func (g *Graph) SymbolsByFile(path string) []Symbol {
	return g.files[path].Symbols
}

// FileByPath returns the stored file record.
func (g *Graph) FileByPath(path string) (FileData, bool) {
	f, ok := g.files[path]
	return f, ok
}

// AllFiles returns every stored file path in unspecified order.
func (g *Graph) AllFiles() []string {
	paths := make([]string, 0, len(g.files))
	for p := range g.files {
		paths = append(paths, p)
	}
	return paths
}

// MarkFileDirty records a path as needing external re-indexing. The graph
// itself never reads the dirty set; it is bookkeeping for the host's
// incremental-recompute scheduling.
func (g *Graph) MarkFileDirty(path string) {
	g.dirty[path] = struct{}{}
}

// ClearDirtyFiles empties the dirty set.
func (g *Graph) ClearDirtyFiles() {
	g.dirty = make(map[string]struct{})
}

// DirtyFiles returns the currently dirty paths in unspecified order.
func (g *Graph) DirtyFiles() []string {
	paths := make([]string, 0, len(g.dirty))
	for p := range g.dirty {
		paths = append(paths, p)
	}
	return paths
}

// IsFileDirty reports whether the path is in the dirty set.
func (g *Graph) IsFileDirty(path string) bool {
	_, ok := g.dirty[path]
	return ok
}
