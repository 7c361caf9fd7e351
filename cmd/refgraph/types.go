package main

import "github.com/jward/refgraph"

// CLIResult is the top-level JSON envelope for all query commands.
type CLIResult struct {
	Command    string `json:"command"`
	Results    any    `json:"results"`
	TotalCount *int   `json:"total_count,omitempty"`
	Error      string `json:"error,omitempty"`
}

// CLISymbol is a JSON-friendly symbol representation.
type CLISymbol struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	File       string `json:"file,omitempty"`
	Line       int    `json:"line"`
	Column     int    `json:"column"`
	ClassName  string `json:"class_name,omitempty"`
	IsExported bool   `json:"is_exported"`
	IsStatic   bool   `json:"is_static"`
}

// CLIReference is a JSON-friendly reference edge.
type CLIReference struct {
	ID       string `json:"id"`
	FromID   string `json:"from_id"`
	FromName string `json:"from_name,omitempty"`
	ToID     string `json:"to_id"`
	ToName   string `json:"to_name,omitempty"`
	Kind     string `json:"kind"`
	File     string `json:"file,omitempty"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
}

// CLIStats is a JSON-friendly graph stats representation.
type CLIStats struct {
	TotalSymbols     int      `json:"total_symbols"`
	TotalReferences  int      `json:"total_references"`
	TotalFiles       int      `json:"total_files"`
	MemoryUsageBytes uint64   `json:"memory_usage_bytes"`
	DirtyFiles       []string `json:"dirty_files,omitempty"`
}

// CLICallGraph is a JSON-friendly transitive call graph.
type CLICallGraph struct {
	Root     string             `json:"root"`
	Nodes    []CLICallGraphNode `json:"nodes"`
	Edges    []CLIReference     `json:"edges"`
	MaxDepth int                `json:"max_depth"`
}

// CLICallGraphNode is a node in a transitive call graph.
type CLICallGraphNode struct {
	Symbol CLISymbol `json:"symbol"`
	Depth  int       `json:"depth"`
}

// CLIHotspot is a heavily-referenced symbol with fan-in/fan-out metrics.
type CLIHotspot struct {
	Symbol      CLISymbol `json:"symbol"`
	CallerCount int       `json:"caller_count"`
	CalleeCount int       `json:"callee_count"`
}

// symbolToCLI converts a refgraph.Symbol to a CLISymbol.
func symbolToCLI(s refgraph.Symbol) CLISymbol {
	return CLISymbol{
		ID:         s.ID,
		Name:       s.Name,
		Kind:       s.Kind,
		File:       s.FilePath,
		Line:       s.Line,
		Column:     s.Column,
		ClassName:  s.ClassName,
		IsExported: s.IsExported,
		IsStatic:   s.IsStatic,
	}
}

// symbolsToCLI converts a slice of symbols, always returning a non-nil slice
// so JSON output is [] rather than null.
func symbolsToCLI(syms []refgraph.Symbol) []CLISymbol {
	out := make([]CLISymbol, len(syms))
	for i, s := range syms {
		out[i] = symbolToCLI(s)
	}
	return out
}

// referenceToCLI converts a refgraph.Reference, resolving endpoint names
// when the symbol table knows them.
func referenceToCLI(g *refgraph.Graph, r refgraph.Reference) CLIReference {
	cli := CLIReference{
		ID:     r.ID,
		FromID: r.FromSymbolID,
		ToID:   r.ToSymbolID,
		Kind:   r.Kind,
		File:   r.FilePath,
		Line:   r.Line,
		Column: r.Column,
	}
	if s, ok := g.SymbolByID(r.FromSymbolID); ok {
		cli.FromName = s.Name
	}
	if s, ok := g.SymbolByID(r.ToSymbolID); ok {
		cli.ToName = s.Name
	}
	return cli
}

func referencesToCLI(g *refgraph.Graph, refs []refgraph.Reference) []CLIReference {
	out := make([]CLIReference, len(refs))
	for i, r := range refs {
		out[i] = referenceToCLI(g, r)
	}
	return out
}
