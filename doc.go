// Package refgraph maintains an in-memory, queryable index of source-code
// symbols and the references between them, scoped per project. It answers
// the code-intelligence questions behind a refactoring tool: who calls this
// symbol, what does it call, is it ever used, which exported symbols exist.
//
// refgraph does not parse source code. An external parser extracts symbols
// and references and feeds them in — individually, in batches, or as whole
// files via dump payloads. Symbol identity is solely the opaque ID string
// the parser supplies (typically "path::name::line"); symbols sharing a name
// across files are never merged.
//
// # Usage
//
// Create an Engine, load parser output, and query:
//
//	e, err := refgraph.New()
//	if err != nil { ... }
//
//	err = e.LoadDump("out/project.json")
//
//	g := e.Graph()
//	callers := g.Callers("src/app.ts::render::14")
//	dead := g.UnusedSymbols()
//
// The Graph holds three primary maps (symbols, references, files) and two
// adjacency indices (outgoing and incoming reference IDs per symbol) that
// stay mirrored on every insert and remove. Removing a file cascades: every
// symbol the file defined and every reference touching those symbols, in
// either direction, is excised.
//
// # Transitive queries
//
// [Engine.Query] returns a [QueryBuilder] for analyses above the direct
// adjacency level: [QueryBuilder.TransitiveCallers] and
// [QueryBuilder.TransitiveCallees] walk the graph with BFS up to a depth
// bound, and [QueryBuilder.Hotspots] ranks symbols by fan-in.
//
// # Concurrency
//
// A Graph is single-threaded by design: no internal locking, no background
// work. Share an instance across goroutines only behind one external mutex.
//
// # Host collaborators
//
// The internal/watch package marks changed files dirty from filesystem
// events, internal/snapshot persists a graph to SQLite for the host process,
// and internal/runtime exposes the graph to Risor analysis scripts. None of
// these are required to use the index itself.
package refgraph
