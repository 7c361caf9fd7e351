package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoFileFixture(g *Graph) {
	g.AddFile(FileData{
		Path: "a.ts",
		Symbols: []Symbol{
			{ID: "a.ts::alpha::1", Name: "alpha", FilePath: "a.ts", Line: 1, IsExported: true},
			{ID: "a.ts::beta::8", Name: "beta", FilePath: "a.ts", Line: 8},
		},
		Imports: []ImportEntry{{Source: "./b", Imported: []string{"gamma"}}},
	})
	g.AddFile(FileData{
		Path: "b.ts",
		Symbols: []Symbol{
			{ID: "b.ts::gamma::2", Name: "gamma", FilePath: "b.ts", Line: 2, IsExported: true},
		},
	})
	g.AddReferences([]Reference{
		{ID: "r-ab", FromSymbolID: "a.ts::alpha::1", ToSymbolID: "b.ts::gamma::2", Kind: RefDirect, FilePath: "a.ts"},
		{ID: "r-ba", FromSymbolID: "b.ts::gamma::2", ToSymbolID: "a.ts::beta::8", Kind: RefDirect, FilePath: "b.ts"},
		{ID: "r-aa", FromSymbolID: "a.ts::beta::8", ToSymbolID: "a.ts::alpha::1", Kind: RefMethod, FilePath: "a.ts"},
	})
}

// =============================================================================
// AddFile / HasFile / SymbolsByFile
// =============================================================================

func TestAddFile_PopulatesSymbolTable(t *testing.T) {
	t.Parallel()
	g := New()
	twoFileFixture(g)

	assert.True(t, g.HasFile("a.ts"))
	assert.True(t, g.HasSymbol("a.ts::alpha::1"))
	assert.True(t, g.HasSymbol("b.ts::gamma::2"))
	assert.Len(t, g.SymbolsByFile("a.ts"), 2)
	assert.Empty(t, g.SymbolsByFile("unknown.ts"))
}

func TestAddFile_OverwriteDoesNotCascade(t *testing.T) {
	t.Parallel()
	g := New()

	g.AddFile(FileData{Path: "a.ts", Symbols: []Symbol{{ID: "old", Name: "old"}}})
	g.AddFile(FileData{Path: "a.ts", Symbols: []Symbol{{ID: "new", Name: "new"}}})

	// AddFile replaces the record but leaves the old symbols in the table;
	// only UpdateFile cascades.
	assert.True(t, g.HasSymbol("old"))
	assert.True(t, g.HasSymbol("new"))
	require.Len(t, g.SymbolsByFile("a.ts"), 1)
	assert.Equal(t, "new", g.SymbolsByFile("a.ts")[0].ID)
}

func TestAddFile_StoresImports(t *testing.T) {
	t.Parallel()
	g := New()
	twoFileFixture(g)

	f, ok := g.FileByPath("a.ts")
	require.True(t, ok)
	require.Len(t, f.Imports, 1)
	assert.Equal(t, "./b", f.Imports[0].Source)
	assert.Equal(t, []string{"gamma"}, f.Imports[0].Imported)
}

// =============================================================================
// RemoveFile cascade
// =============================================================================

func TestRemoveFile_PurgesSymbolsAndBothDirections(t *testing.T) {
	t.Parallel()
	g := New()
	twoFileFixture(g)

	g.RemoveFile("a.ts")

	assert.False(t, g.HasFile("a.ts"))
	assert.False(t, g.HasSymbol("a.ts::alpha::1"))
	assert.False(t, g.HasSymbol("a.ts::beta::8"))
	assert.True(t, g.HasSymbol("b.ts::gamma::2"))

	// Every reference touching a.ts symbols is gone in both directions,
	// including r-ba which originated in the surviving file.
	assert.Empty(t, g.Callers("b.ts::gamma::2"))
	assert.Empty(t, g.Callees("b.ts::gamma::2"))
	assert.Empty(t, g.Callers("a.ts::alpha::1"))
	assert.Empty(t, g.Callees("a.ts::alpha::1"))
	assert.Equal(t, 0, g.Stats().TotalReferences)
}

func TestRemoveFile_UnknownPathNoop(t *testing.T) {
	t.Parallel()
	g := New()
	twoFileFixture(g)

	g.RemoveFile("never-added.ts")

	assert.Equal(t, 3, g.Size())
	assert.Equal(t, 3, g.Stats().TotalReferences)
}

func TestRemoveFile_LeavesDirectlyAddedSymbols(t *testing.T) {
	t.Parallel()
	g := New()

	// Added directly, never listed in any file record.
	g.AddSymbol(Symbol{ID: "floating", Name: "floating", FilePath: "a.ts"})
	g.AddFile(FileData{Path: "a.ts", Symbols: []Symbol{{ID: "listed", Name: "listed"}}})

	g.RemoveFile("a.ts")

	assert.True(t, g.HasSymbol("floating"))
	assert.False(t, g.HasSymbol("listed"))
}

// =============================================================================
// UpdateFile
// =============================================================================

func TestUpdateFile_ReplaceSemantics(t *testing.T) {
	t.Parallel()
	g := New()

	g.AddFile(FileData{Path: "p.ts", Symbols: []Symbol{{ID: "A", Name: "A"}}})
	g.AddSymbol(Symbol{ID: "B", Name: "B"})
	g.AddReference(Reference{ID: "rAB", FromSymbolID: "A", ToSymbolID: "B", Kind: RefDirect})

	g.UpdateFile("p.ts", FileData{Path: "p.ts", Symbols: []Symbol{{ID: "C", Name: "C"}}})

	assert.False(t, g.HasSymbol("A"))
	assert.True(t, g.HasSymbol("C"))
	assert.Empty(t, g.Callers("B"))
	require.Len(t, g.SymbolsByFile("p.ts"), 1)
	assert.Equal(t, "C", g.SymbolsByFile("p.ts")[0].ID)
}

func TestUpdateFile_NewPathActsAsAdd(t *testing.T) {
	t.Parallel()
	g := New()

	g.UpdateFile("fresh.ts", FileData{Path: "fresh.ts", Symbols: []Symbol{{ID: "x", Name: "x"}}})

	assert.True(t, g.HasFile("fresh.ts"))
	assert.True(t, g.HasSymbol("x"))
}

// =============================================================================
// Dirty set
// =============================================================================

func TestDirtyFiles_MarkAndClear(t *testing.T) {
	t.Parallel()
	g := New()

	g.MarkFileDirty("a.ts")
	g.MarkFileDirty("b.ts")
	g.MarkFileDirty("a.ts") // idempotent

	assert.Len(t, g.DirtyFiles(), 2)
	assert.True(t, g.IsFileDirty("a.ts"))
	assert.False(t, g.IsFileDirty("c.ts"))

	g.ClearDirtyFiles()
	assert.Empty(t, g.DirtyFiles())
}

func TestDirtyFiles_IndependentOfFileTable(t *testing.T) {
	t.Parallel()
	g := New()

	// Dirty marking works for paths the graph has never seen.
	g.MarkFileDirty("not-indexed.ts")
	assert.True(t, g.IsFileDirty("not-indexed.ts"))
	assert.False(t, g.HasFile("not-indexed.ts"))
}
