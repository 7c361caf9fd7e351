package refgraph

import "github.com/jward/refgraph/internal/graph"

// Public type aliases for internal graph types used throughout the API.
// These are Go type aliases (=) — identical to the internal types at compile
// time. External consumers use these names; no conversion is needed.

type Graph = graph.Graph
type Symbol = graph.Symbol
type Reference = graph.Reference
type ImportEntry = graph.ImportEntry
type FileData = graph.FileData
type GraphStats = graph.GraphStats

// Symbol kinds as produced by the parser dumps.
const (
	KindFunction  = graph.KindFunction
	KindMethod    = graph.KindMethod
	KindVariable  = graph.KindVariable
	KindClass     = graph.KindClass
	KindParameter = graph.KindParameter
)

// Reference kinds.
const (
	RefDirect   = graph.RefDirect
	RefMethod   = graph.RefMethod
	RefCallback = graph.RefCallback
	RefIndirect = graph.RefIndirect
)
