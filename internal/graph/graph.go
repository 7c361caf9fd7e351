package graph

// Graph is an in-memory index of symbols and the references between them,
// with bidirectional adjacency so callers and callees resolve without scans.
//
// Graph is not safe for concurrent use. Every operation is a synchronous map
// transformation with no suspension points; callers that share an instance
// across goroutines must wrap it in a single external mutex, since reads can
// observe transient states mid-removal otherwise.
type Graph struct {
	symbols    map[string]Symbol
	references map[string]Reference
	outgoing   map[string][]string // symbol ID -> reference IDs it originates
	incoming   map[string][]string // symbol ID -> reference IDs targeting it
	files      map[string]FileData
	dirty      map[string]struct{}
}

// New returns an empty Graph.
func New() *Graph {
	return &Graph{
		symbols:    make(map[string]Symbol),
		references: make(map[string]Reference),
		outgoing:   make(map[string][]string),
		incoming:   make(map[string][]string),
		files:      make(map[string]FileData),
		dirty:      make(map[string]struct{}),
	}
}

// AddSymbol inserts or overwrites the symbol keyed by its ID. Last write
// wins; there is no merging of field values.
func (g *Graph) AddSymbol(s Symbol) {
	g.symbols[s.ID] = s
}

// AddSymbols applies AddSymbol in order, so later entries override earlier
// ones sharing an ID.
func (g *Graph) AddSymbols(symbols []Symbol) {
	for _, s := range symbols {
		g.AddSymbol(s)
	}
}

// HasSymbol reports whether a symbol with the given ID is indexed.
func (g *Graph) HasSymbol(id string) bool {
	_, ok := g.symbols[id]
	return ok
}

// SymbolByID returns the symbol with the given ID. The second return value
// is false when the ID is unknown; a missing symbol is never represented as
// a zero-value Symbol.
func (g *Graph) SymbolByID(id string) (Symbol, bool) {
	s, ok := g.symbols[id]
	return s, ok
}

// AllSymbols returns every indexed symbol in unspecified order.
func (g *Graph) AllSymbols() []Symbol {
	result := make([]Symbol, 0, len(g.symbols))
	for _, s := range g.symbols {
		result = append(result, s)
	}
	return result
}

// AllReferences returns every indexed reference in unspecified order.
func (g *Graph) AllReferences() []Reference {
	result := make([]Reference, 0, len(g.references))
	for _, r := range g.references {
		result = append(result, r)
	}
	return result
}

// AddReference inserts or overwrites the reference keyed by its ID and
// records it in both endpoint adjacency lists. Re-adding an existing ID
// first unlinks the prior entry's endpoints, so an overwrite that moves an
// endpoint never leaves a stale adjacency entry behind.
func (g *Graph) AddReference(r Reference) {
	if old, ok := g.references[r.ID]; ok {
		g.unlink(old)
	}
	g.references[r.ID] = r
	g.outgoing[r.FromSymbolID] = append(g.outgoing[r.FromSymbolID], r.ID)
	g.incoming[r.ToSymbolID] = append(g.incoming[r.ToSymbolID], r.ID)
}

// AddReferences applies AddReference in order.
func (g *Graph) AddReferences(refs []Reference) {
	for _, r := range refs {
		g.AddReference(r)
	}
}

// RemoveReferences deletes every reference originating from the given
// symbol: each is removed from the reference table and pruned from its
// target's incoming list, then the symbol's outgoing list is dropped.
// References targeting the symbol survive — this clears what the symbol
// calls, not what calls it.
func (g *Graph) RemoveReferences(symbolID string) {
	ids, ok := g.outgoing[symbolID]
	if !ok {
		return
	}
	for _, refID := range ids {
		r, ok := g.references[refID]
		if !ok {
			continue
		}
		g.incoming[r.ToSymbolID] = removeID(g.incoming[r.ToSymbolID], refID)
		if len(g.incoming[r.ToSymbolID]) == 0 {
			delete(g.incoming, r.ToSymbolID)
		}
		delete(g.references, refID)
	}
	delete(g.outgoing, symbolID)
}

// Callers returns every reference targeting the given symbol, in
// adjacency-insertion order. Adjacency entries whose backing reference is
// gone are skipped silently.
func (g *Graph) Callers(symbolID string) []Reference {
	return g.resolve(g.incoming[symbolID])
}

// Callees returns every reference originating from the given symbol, in
// adjacency-insertion order, skipping dangling entries.
func (g *Graph) Callees(symbolID string) []Reference {
	return g.resolve(g.outgoing[symbolID])
}

// IsSymbolUsed reports whether at least one reference targets the symbol.
func (g *Graph) IsSymbolUsed(symbolID string) bool {
	return len(g.incoming[symbolID]) > 0
}

// UnusedSymbols returns every indexed symbol with no recorded caller.
func (g *Graph) UnusedSymbols() []Symbol {
	var unused []Symbol
	for id, s := range g.symbols {
		if !g.IsSymbolUsed(id) {
			unused = append(unused, s)
		}
	}
	return unused
}

// SymbolsByName returns all symbols whose name matches exactly. Linear scan;
// acceptable at single-project scale.
func (g *Graph) SymbolsByName(name string) []Symbol {
	var result []Symbol
	for _, s := range g.symbols {
		if s.Name == name {
			result = append(result, s)
		}
	}
	return result
}

// ExportedSymbols returns all symbols marked exported.
func (g *Graph) ExportedSymbols() []Symbol {
	var result []Symbol
	for _, s := range g.symbols {
		if s.IsExported {
			result = append(result, s)
		}
	}
	return result
}

// resolve looks up each reference ID, dropping dangling entries.
func (g *Graph) resolve(ids []string) []Reference {
	var result []Reference
	for _, id := range ids {
		if r, ok := g.references[id]; ok {
			result = append(result, r)
		}
	}
	return result
}

// unlink removes a reference's entries from both endpoint adjacency lists
// without touching the reference table.
func (g *Graph) unlink(r Reference) {
	g.outgoing[r.FromSymbolID] = removeID(g.outgoing[r.FromSymbolID], r.ID)
	if len(g.outgoing[r.FromSymbolID]) == 0 {
		delete(g.outgoing, r.FromSymbolID)
	}
	g.incoming[r.ToSymbolID] = removeID(g.incoming[r.ToSymbolID], r.ID)
	if len(g.incoming[r.ToSymbolID]) == 0 {
		delete(g.incoming, r.ToSymbolID)
	}
}

// removeID returns ids with the first occurrence of id removed, preserving
// order.
func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
