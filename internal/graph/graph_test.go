package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testSymbol builds a symbol with the "path::name::line" ID convention used
// by external parsers.
func testSymbol(id, name string) Symbol {
	return Symbol{ID: id, Name: name, Kind: KindFunction, FilePath: "main.ts", Line: 1}
}

func testRef(id, from, to string) Reference {
	return Reference{ID: id, FromSymbolID: from, ToSymbolID: to, Kind: RefDirect, FilePath: "main.ts", Line: 3}
}

func refIDs(refs []Reference) []string {
	ids := make([]string, 0, len(refs))
	for _, r := range refs {
		ids = append(ids, r.ID)
	}
	return ids
}

// =============================================================================
// Symbol table
// =============================================================================

func TestAddSymbol_OverwritesByID(t *testing.T) {
	t.Parallel()
	g := New()

	g.AddSymbol(testSymbol("f1::foo::1", "foo"))
	g.AddSymbol(Symbol{ID: "f1::foo::1", Name: "foo", Kind: KindMethod, ClassName: "Widget"})

	require.Equal(t, 1, g.Size())
	s, ok := g.SymbolByID("f1::foo::1")
	require.True(t, ok)
	assert.Equal(t, KindMethod, s.Kind)
	assert.Equal(t, "Widget", s.ClassName)
}

func TestAddSymbol_IdenticalReaddKeepsCardinality(t *testing.T) {
	t.Parallel()
	g := New()

	sym := testSymbol("f1::foo::1", "foo")
	g.AddSymbol(sym)
	g.AddSymbol(sym)

	assert.Len(t, g.AllSymbols(), 1)
}

func TestAddSymbols_LaterEntriesWin(t *testing.T) {
	t.Parallel()
	g := New()

	g.AddSymbols([]Symbol{
		{ID: "a", Name: "first"},
		{ID: "b", Name: "other"},
		{ID: "a", Name: "second"},
	})

	require.Equal(t, 2, g.Size())
	s, ok := g.SymbolByID("a")
	require.True(t, ok)
	assert.Equal(t, "second", s.Name)
}

func TestSymbolByID_Unknown(t *testing.T) {
	t.Parallel()
	g := New()

	_, ok := g.SymbolByID("missing")
	assert.False(t, ok)
	assert.False(t, g.HasSymbol("missing"))
}

func TestSymbolByID_EmptyIDIsStorable(t *testing.T) {
	t.Parallel()
	g := New()

	// A genuinely empty ID is valid data, distinguishable from absence.
	g.AddSymbol(Symbol{ID: "", Name: "anon"})
	s, ok := g.SymbolByID("")
	require.True(t, ok)
	assert.Equal(t, "anon", s.Name)
}

// =============================================================================
// References and adjacency
// =============================================================================

func TestAddReference_Symmetry(t *testing.T) {
	t.Parallel()
	g := New()

	g.AddSymbol(testSymbol("a", "a"))
	g.AddSymbol(testSymbol("b", "b"))
	g.AddReference(testRef("r1", "a", "b"))

	assert.Equal(t, []string{"r1"}, refIDs(g.Callees("a")))
	assert.Equal(t, []string{"r1"}, refIDs(g.Callers("b")))
	assert.Empty(t, g.Callers("a"))
	assert.Empty(t, g.Callees("b"))
}

func TestAddReference_DanglingEndpointsTolerated(t *testing.T) {
	t.Parallel()
	g := New()

	// Neither endpoint is in the symbol table; the edge still indexes.
	g.AddReference(testRef("r1", "ghost-from", "ghost-to"))

	assert.Equal(t, []string{"r1"}, refIDs(g.Callers("ghost-to")))
	assert.Equal(t, []string{"r1"}, refIDs(g.Callees("ghost-from")))
}

func TestAddReference_ReaddMovesEndpoints(t *testing.T) {
	t.Parallel()
	g := New()

	g.AddReference(testRef("r1", "a", "b"))
	g.AddReference(testRef("r1", "a", "c"))

	// The old adjacency entry for b must be unlinked, not left stale.
	assert.Empty(t, g.Callers("b"))
	assert.Equal(t, []string{"r1"}, refIDs(g.Callers("c")))
	assert.Equal(t, []string{"r1"}, refIDs(g.Callees("a")))
	assert.False(t, g.IsSymbolUsed("b"))
}

func TestAddReference_SelfReference(t *testing.T) {
	t.Parallel()
	g := New()

	g.AddSymbol(testSymbol("a", "a"))
	g.AddReference(testRef("r1", "a", "a"))

	assert.Equal(t, []string{"r1"}, refIDs(g.Callers("a")))
	assert.Equal(t, []string{"r1"}, refIDs(g.Callees("a")))

	g.RemoveReferences("a")
	assert.Empty(t, g.Callers("a"))
	assert.Empty(t, g.Callees("a"))
}

func TestCallers_AdjacencyInsertionOrder(t *testing.T) {
	t.Parallel()
	g := New()

	g.AddReferences([]Reference{
		testRef("r3", "x", "target"),
		testRef("r1", "y", "target"),
		testRef("r2", "z", "target"),
	})

	assert.Equal(t, []string{"r3", "r1", "r2"}, refIDs(g.Callers("target")))
}

func TestRemoveReferences_OutgoingOnly(t *testing.T) {
	t.Parallel()
	g := New()

	g.AddReference(testRef("out", "a", "b"))
	g.AddReference(testRef("in", "c", "a"))

	g.RemoveReferences("a")

	// What a calls is gone; what calls a survives.
	assert.Empty(t, g.Callees("a"))
	assert.Empty(t, g.Callers("b"))
	assert.Equal(t, []string{"in"}, refIDs(g.Callers("a")))
	assert.Equal(t, []string{"in"}, refIDs(g.Callees("c")))
}

func TestRemoveReferences_UnknownSymbolNoop(t *testing.T) {
	t.Parallel()
	g := New()

	g.AddReference(testRef("r1", "a", "b"))
	g.RemoveReferences("nobody")

	assert.Equal(t, []string{"r1"}, refIDs(g.Callees("a")))
}

// =============================================================================
// Usage queries
// =============================================================================

func TestUsedUnused_Partition(t *testing.T) {
	t.Parallel()
	g := New()

	g.AddSymbols([]Symbol{
		testSymbol("a", "a"),
		testSymbol("b", "b"),
		testSymbol("c", "c"),
	})
	g.AddReference(testRef("r1", "a", "b"))

	unused := map[string]bool{}
	for _, s := range g.UnusedSymbols() {
		unused[s.ID] = true
	}

	// Exactly one of used / unused holds for every symbol.
	for _, s := range g.AllSymbols() {
		assert.NotEqual(t, g.IsSymbolUsed(s.ID), unused[s.ID], "symbol %s", s.ID)
	}
	assert.True(t, g.IsSymbolUsed("b"))
	assert.True(t, unused["a"])
	assert.True(t, unused["c"])
}

func TestSymbolsByName_ExactMatch(t *testing.T) {
	t.Parallel()
	g := New()

	g.AddSymbols([]Symbol{
		{ID: "f1::render::3", Name: "render"},
		{ID: "f2::render::9", Name: "render"},
		{ID: "f1::rend::4", Name: "rend"},
	})

	matches := g.SymbolsByName("render")
	require.Len(t, matches, 2)
	assert.Empty(t, g.SymbolsByName("Render"))
}

func TestExportedSymbols(t *testing.T) {
	t.Parallel()
	g := New()

	g.AddSymbols([]Symbol{
		{ID: "a", Name: "a", IsExported: true},
		{ID: "b", Name: "b"},
	})

	exported := g.ExportedSymbols()
	require.Len(t, exported, 1)
	assert.Equal(t, "a", exported[0].ID)
}

// Scenario from the host contract: one exported callee, one unused caller.
func TestScenario_CallersUnusedExported(t *testing.T) {
	t.Parallel()
	g := New()

	g.AddSymbol(Symbol{ID: "f1::foo::1", Name: "foo", IsExported: true})
	g.AddSymbol(Symbol{ID: "f1::bar::5", Name: "bar"})
	g.AddReference(Reference{ID: "r1", FromSymbolID: "f1::bar::5", ToSymbolID: "f1::foo::1", Kind: RefDirect})

	assert.Equal(t, []string{"r1"}, refIDs(g.Callers("f1::foo::1")))

	unused := g.UnusedSymbols()
	require.Len(t, unused, 1)
	assert.Equal(t, "f1::bar::5", unused[0].ID)

	exported := g.ExportedSymbols()
	require.Len(t, exported, 1)
	assert.Equal(t, "f1::foo::1", exported[0].ID)
}

// =============================================================================
// Stats and lifecycle
// =============================================================================

func TestStats_ConsistentWithSize(t *testing.T) {
	t.Parallel()
	g := New()

	g.AddSymbols([]Symbol{testSymbol("a", "a"), testSymbol("b", "b")})
	g.AddReference(testRef("r1", "a", "b"))
	g.AddFile(FileData{Path: "main.ts"})

	stats := g.Stats()
	assert.Equal(t, 2, stats.TotalSymbols)
	assert.Equal(t, g.Size(), stats.TotalSymbols)
	assert.Len(t, g.AllSymbols(), stats.TotalSymbols)
	assert.Equal(t, 1, stats.TotalReferences)
	assert.Equal(t, 1, stats.TotalFiles)
	assert.Positive(t, stats.MemoryUsageBytes)
}

func TestClear_ResetsEverything(t *testing.T) {
	t.Parallel()
	g := New()

	g.AddFile(FileData{Path: "main.ts", Symbols: []Symbol{testSymbol("a", "a")}})
	g.AddReference(testRef("r1", "a", "b"))
	g.MarkFileDirty("main.ts")

	g.Clear()

	assert.Equal(t, 0, g.Size())
	assert.Empty(t, g.AllSymbols())
	assert.False(t, g.HasSymbol("a"))
	assert.False(t, g.HasFile("main.ts"))
	assert.Empty(t, g.Callers("b"))
	assert.Empty(t, g.Callees("a"))
	assert.Empty(t, g.DirtyFiles())
	assert.Equal(t, GraphStats{}, g.Stats())
}
