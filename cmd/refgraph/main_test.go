package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindRepoRoot_DirectGitDir(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}

	got := findRepoRoot(root)
	assert.Equal(t, root, got)
}

func TestFindRepoRoot_NestedSubdirectory(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	deep := filepath.Join(root, "sub", "deep")
	if err := os.MkdirAll(deep, 0o755); err != nil {
		t.Fatal(err)
	}

	got := findRepoRoot(deep)
	assert.Equal(t, root, got)
}

func TestFindRepoRoot_NoGitAncestor(t *testing.T) {
	t.Parallel()
	// TempDir has no .git directory anywhere in its ancestry
	// (unless /tmp itself is a repo, which would be unusual).
	dir := t.TempDir()

	got := findRepoRoot(dir)
	assert.Equal(t, dir, got)
}

func TestValidateFormat(t *testing.T) {
	t.Parallel()
	assert.NoError(t, validateFormat("json"))
	assert.NoError(t, validateFormat("text"))
	assert.Error(t, validateFormat("yaml"))
	assert.Error(t, validateFormat(""))
}

func TestResolveScriptPath(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "analysis/deadcode.risor", resolveScriptPath("deadcode"))
	assert.Equal(t, "analysis/fanin.risor", resolveScriptPath("fanin"))
	assert.Equal(t, "custom/report.risor", resolveScriptPath("custom/report.risor"))
	assert.Equal(t, "report.risor", resolveScriptPath("report.risor"))
}

func TestSplitList(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{".ts", ".tsx"}, splitList(".ts, .tsx"))
	assert.Equal(t, []string{"node_modules"}, splitList("node_modules,"))
	assert.Nil(t, splitList(""))
}
