package refgraph

import (
	"fmt"
	"sort"

	"github.com/jward/refgraph/internal/graph"
)

// QueryBuilder provides analyses above the Graph's direct adjacency level.
type QueryBuilder struct {
	graph *graph.Graph
}

// CallGraph represents a transitive call graph rooted at a symbol. Edges
// are collected from the bulk-loaded adjacency and traversed with BFS.
type CallGraph struct {
	Root  string          // starting symbol ID
	Nodes []CallGraphNode // all symbols reachable within depth
	Edges []Reference     // all references in the subgraph
	Depth int             // actual max depth reached (may be < maxDepth if graph is shallow)
}

// CallGraphNode is a symbol in the call graph with its distance from the root.
type CallGraphNode struct {
	Symbol Symbol
	Depth  int // BFS depth from root (0 = root itself)
}

// callGraphData holds bulk-built forward/reverse symbol adjacency plus the
// references grouped per endpoint, so BFS never re-walks the full edge set.
type callGraphData struct {
	forward       map[string][]string // caller -> callees
	reverse       map[string][]string // callee -> callers
	edgesByCaller map[string][]graph.Reference
	edgesByCallee map[string][]graph.Reference
}

func (q *QueryBuilder) buildCallGraph() *callGraphData {
	data := &callGraphData{
		forward:       make(map[string][]string),
		reverse:       make(map[string][]string),
		edgesByCaller: make(map[string][]graph.Reference),
		edgesByCallee: make(map[string][]graph.Reference),
	}
	for _, r := range q.graph.AllReferences() {
		data.forward[r.FromSymbolID] = append(data.forward[r.FromSymbolID], r.ToSymbolID)
		data.reverse[r.ToSymbolID] = append(data.reverse[r.ToSymbolID], r.FromSymbolID)
		data.edgesByCaller[r.FromSymbolID] = append(data.edgesByCaller[r.FromSymbolID], r)
		data.edgesByCallee[r.ToSymbolID] = append(data.edgesByCallee[r.ToSymbolID], r)
	}
	return data
}

// TransitiveCallers returns all transitive callers of a symbol up to
// maxDepth. maxDepth of 0 returns only the root node (no traversal).
// Negative returns an error. Capped at 100. Returns nil, nil if symbolID
// does not exist.
func (q *QueryBuilder) TransitiveCallers(symbolID string, maxDepth int) (*CallGraph, error) {
	return q.transitive(symbolID, maxDepth, true)
}

// TransitiveCallees returns all transitive callees of a symbol up to
// maxDepth, with the same depth rules as TransitiveCallers.
func (q *QueryBuilder) TransitiveCallees(symbolID string, maxDepth int) (*CallGraph, error) {
	return q.transitive(symbolID, maxDepth, false)
}

func (q *QueryBuilder) transitive(symbolID string, maxDepth int, reverse bool) (*CallGraph, error) {
	op := "transitive callees"
	if reverse {
		op = "transitive callers"
	}
	if maxDepth < 0 {
		return nil, fmt.Errorf("%s: maxDepth must be non-negative, got %d", op, maxDepth)
	}
	if maxDepth > 100 {
		maxDepth = 100
	}

	rootSym, ok := q.graph.SymbolByID(symbolID)
	if !ok {
		return nil, nil
	}

	result := &CallGraph{
		Root:  symbolID,
		Nodes: []CallGraphNode{{Symbol: rootSym, Depth: 0}},
		Edges: []Reference{},
	}
	if maxDepth == 0 {
		return result, nil
	}

	data := q.buildCallGraph()
	adjacency := data.forward
	if reverse {
		adjacency = data.reverse
	}

	// BFS with a visited depth map. Dangling endpoint IDs traverse like any
	// other node but only produce result nodes when the symbol table knows
	// them.
	visited := map[string]int{symbolID: 0}
	type bfsEntry struct {
		id    string
		depth int
	}
	queue := []bfsEntry{{id: symbolID, depth: 0}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current.depth >= maxDepth {
			continue
		}

		for _, next := range adjacency[current.id] {
			if _, seen := visited[next]; !seen {
				newDepth := current.depth + 1
				visited[next] = newDepth
				if newDepth > result.Depth {
					result.Depth = newDepth
				}
				queue = append(queue, bfsEntry{id: next, depth: newDepth})
			}
		}
	}

	// Collect visited node IDs (except root, already added), sorted for
	// deterministic output.
	nodeIDs := make([]string, 0, len(visited)-1)
	for id := range visited {
		if id != symbolID {
			nodeIDs = append(nodeIDs, id)
		}
	}
	sort.Strings(nodeIDs)

	for _, id := range nodeIDs {
		if sym, ok := q.graph.SymbolByID(id); ok {
			result.Nodes = append(result.Nodes, CallGraphNode{Symbol: sym, Depth: visited[id]})
		}
	}

	// Collect edges connecting visited nodes, deduplicated by reference ID.
	edgeSeen := make(map[string]bool)
	for id := range visited {
		edges := data.edgesByCaller[id]
		if reverse {
			edges = data.edgesByCallee[id]
		}
		for _, edge := range edges {
			other := edge.ToSymbolID
			if reverse {
				other = edge.FromSymbolID
			}
			if _, ok := visited[other]; !ok {
				continue
			}
			if !edgeSeen[edge.ID] {
				edgeSeen[edge.ID] = true
				result.Edges = append(result.Edges, edge)
			}
		}
	}
	sort.Slice(result.Edges, func(i, j int) bool { return result.Edges[i].ID < result.Edges[j].ID })

	return result, nil
}

// HotspotResult is a heavily-referenced symbol with its fan-in and fan-out.
type HotspotResult struct {
	Symbol      Symbol
	CallerCount int // direct incoming references (fan-in)
	CalleeCount int // direct outgoing references (fan-out)
}

// Hotspots returns the top-N most-referenced symbols, sorted by fan-in
// descending (ties broken by symbol ID for determinism). Symbols with zero
// callers are excluded. topN of 0 returns an empty list. Negative returns
// an error.
func (q *QueryBuilder) Hotspots(topN int) ([]HotspotResult, error) {
	if topN < 0 {
		return nil, fmt.Errorf("hotspots: topN must be non-negative, got %d", topN)
	}
	if topN == 0 {
		return []HotspotResult{}, nil
	}

	var items []HotspotResult
	for _, sym := range q.graph.AllSymbols() {
		callers := len(q.graph.Callers(sym.ID))
		if callers == 0 {
			continue
		}
		items = append(items, HotspotResult{
			Symbol:      sym,
			CallerCount: callers,
			CalleeCount: len(q.graph.Callees(sym.ID)),
		})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CallerCount != items[j].CallerCount {
			return items[i].CallerCount > items[j].CallerCount
		}
		return items[i].Symbol.ID < items[j].Symbol.ID
	})
	if len(items) > topN {
		items = items[:topN]
	}
	if items == nil {
		items = []HotspotResult{}
	}
	return items, nil
}
