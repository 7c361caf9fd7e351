package graph

import "unsafe"

// Stats returns current entity counts and an approximate memory figure.
// The estimate is count × struct size per entity kind and ignores the bytes
// behind string and slice headers; callers must not treat it as exact.
func (g *Graph) Stats() GraphStats {
	return GraphStats{
		TotalSymbols:     len(g.symbols),
		TotalReferences:  len(g.references),
		TotalFiles:       len(g.files),
		MemoryUsageBytes: g.approxMemory(),
	}
}

// Size returns the symbol count.
func (g *Graph) Size() int {
	return len(g.symbols)
}

// Clear empties every map and the dirty set, equivalent to reconstructing
// the index from scratch.
func (g *Graph) Clear() {
	g.symbols = make(map[string]Symbol)
	g.references = make(map[string]Reference)
	g.outgoing = make(map[string][]string)
	g.incoming = make(map[string][]string)
	g.files = make(map[string]FileData)
	g.dirty = make(map[string]struct{})
}

func (g *Graph) approxMemory() uint64 {
	var (
		sym  Symbol
		ref  Reference
		file FileData
	)
	total := uint64(len(g.symbols)) * uint64(unsafe.Sizeof(sym))
	total += uint64(len(g.references)) * uint64(unsafe.Sizeof(ref))
	total += uint64(len(g.files)) * uint64(unsafe.Sizeof(file))
	return total
}
