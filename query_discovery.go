package refgraph

import "sort"

// SymbolFilter narrows a discovery query. Zero-value fields are ignored, so
// the empty filter matches every symbol. All matching is exact; linear scans
// are deliberate at single-project scale.
type SymbolFilter struct {
	Name         string // exact symbol name
	Kind         string // function, method, variable, class, parameter
	FilePath     string // symbol's declared file path
	ClassName    string // owning class for methods
	ExportedOnly bool
	UnusedOnly   bool // symbols with no recorded caller
}

// Symbols returns all symbols matching the filter, sorted by ID for
// deterministic output.
func (q *QueryBuilder) Symbols(filter SymbolFilter) []Symbol {
	var result []Symbol
	for _, s := range q.graph.AllSymbols() {
		if filter.Name != "" && s.Name != filter.Name {
			continue
		}
		if filter.Kind != "" && s.Kind != filter.Kind {
			continue
		}
		if filter.FilePath != "" && s.FilePath != filter.FilePath {
			continue
		}
		if filter.ClassName != "" && s.ClassName != filter.ClassName {
			continue
		}
		if filter.ExportedOnly && !s.IsExported {
			continue
		}
		if filter.UnusedOnly && q.graph.IsSymbolUsed(s.ID) {
			continue
		}
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}
