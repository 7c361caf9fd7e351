package refgraph

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Engine construction and wiring
// =============================================================================

func TestNew_StartsEmpty(t *testing.T) {
	t.Parallel()
	e, err := New()
	require.NoError(t, err)

	assert.Equal(t, 0, e.Graph().Size())
	assert.Equal(t, GraphStats{}, e.Graph().Stats())
}

func TestEngine_QuerySeesGraphMutations(t *testing.T) {
	t.Parallel()
	e, err := New()
	require.NoError(t, err)

	e.Graph().AddSymbol(Symbol{ID: "a", Name: "a", Kind: KindFunction})
	got := e.Query().Symbols(SymbolFilter{Name: "a"})
	require.Len(t, got, 1)
}

func TestEngine_RunSourceMutatesGraph(t *testing.T) {
	t.Parallel()
	e, err := New()
	require.NoError(t, err)

	err = e.RunSource(context.Background(), `add_symbol({"id": "scripted", "name": "scripted"})`)
	require.NoError(t, err)
	assert.True(t, e.Graph().HasSymbol("scripted"))
}

func TestEngine_RunScriptFromFS(t *testing.T) {
	t.Parallel()
	fsys := fstest.MapFS{
		"analysis/seed.risor": &fstest.MapFile{
			Data: []byte(`add_symbol({"id": "seeded", "name": "seeded"})`),
		},
	}

	e, err := New(WithScriptsFS(fsys))
	require.NoError(t, err)

	require.NoError(t, e.RunScript(context.Background(), "analysis/seed.risor"))
	assert.True(t, e.Graph().HasSymbol("seeded"))
}

// =============================================================================
// Snapshot round-trip through the Engine
// =============================================================================

func TestEngine_SnapshotRoundTrip(t *testing.T) {
	t.Parallel()
	dbPath := filepath.Join(t.TempDir(), "index.db")

	e, err := New()
	require.NoError(t, err)
	e.Graph().AddFile(FileData{
		Path: "app.ts",
		Symbols: []Symbol{
			{ID: "app.ts::main::1", Name: "main", Kind: KindFunction, FilePath: "app.ts", IsExported: true},
		},
	})
	e.Graph().AddReference(Reference{ID: "r1", FromSymbolID: "x", ToSymbolID: "app.ts::main::1", Kind: RefDirect})
	e.Graph().MarkFileDirty("app.ts")

	require.NoError(t, e.SaveSnapshot(dbPath))

	restored, err := New()
	require.NoError(t, err)
	require.NoError(t, restored.LoadSnapshot(dbPath))

	g := restored.Graph()
	assert.True(t, g.HasFile("app.ts"))
	assert.True(t, g.HasSymbol("app.ts::main::1"))
	assert.Len(t, g.Callers("app.ts::main::1"), 1)
	assert.Equal(t, []string{"app.ts"}, g.DirtyFiles())
}

func TestEngine_LoadSnapshotReplacesGraph(t *testing.T) {
	t.Parallel()
	dbPath := filepath.Join(t.TempDir(), "index.db")

	seed, err := New()
	require.NoError(t, err)
	seed.Graph().AddSymbol(Symbol{ID: "persisted", Name: "persisted"})
	require.NoError(t, seed.SaveSnapshot(dbPath))

	e, err := New()
	require.NoError(t, err)
	e.Graph().AddSymbol(Symbol{ID: "pre-load", Name: "pre-load"})

	require.NoError(t, e.LoadSnapshot(dbPath))

	assert.True(t, e.Graph().HasSymbol("persisted"))
	assert.False(t, e.Graph().HasSymbol("pre-load"))
}

func TestEngine_ScriptsSeeGraphAfterLoadSnapshot(t *testing.T) {
	t.Parallel()
	dbPath := filepath.Join(t.TempDir(), "index.db")

	seed, err := New()
	require.NoError(t, err)
	seed.Graph().AddSymbol(Symbol{ID: "persisted", Name: "persisted"})
	require.NoError(t, seed.SaveSnapshot(dbPath))

	e, err := New()
	require.NoError(t, err)
	require.NoError(t, e.LoadSnapshot(dbPath))

	// Host functions must be bound to the replacement graph, not the one the
	// Engine was constructed with.
	err = e.RunSource(context.Background(), `assert(has_symbol("persisted"), "script sees loaded graph")`)
	require.NoError(t, err)
}

func TestEngine_LoadSnapshotMissingFile(t *testing.T) {
	t.Parallel()
	e, err := New()
	require.NoError(t, err)

	err = e.LoadSnapshot(filepath.Join(t.TempDir(), "absent", "index.db"))
	require.Error(t, err)
}
