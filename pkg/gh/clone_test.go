package gh

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestScanCheckout(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, dir, "README.md")
	writeFile(t, dir, "LICENSE")
	writeFile(t, dir, "main.py")
	writeFile(t, dir, "pkg/util.go")
	writeFile(t, dir, "tests/test_main.py")
	writeFile(t, dir, "pkg/util_test.go")
	writeFile(t, dir, "node_modules/dep/index.js")
	writeFile(t, dir, ".git/objects/ab/cd")
	writeFile(t, dir, "docs/notes.txt")

	stats, err := scanCheckout(dir)
	require.NoError(t, err)

	assert.True(t, stats.HasReadme)
	assert.True(t, stats.HasLicense)
	assert.False(t, stats.HasContributing)
	assert.Equal(t, 2, stats.TestFiles)
	assert.Equal(t, 2, stats.SourceFiles)
}

func TestIsTestPath(t *testing.T) {
	root := "/repo"
	assert.True(t, isTestPath(root, "/repo/tests/test_a.py", "test_a.py"))
	assert.True(t, isTestPath(root, "/repo/pkg/a_test.go", "a_test.go"))
	assert.True(t, isTestPath(root, "/repo/test/unit/b.py", "b.py"))
	assert.False(t, isTestPath(root, "/repo/pkg/a.go", "a.go"))
	assert.False(t, isTestPath(root, "/repo/contest/a.py", "a.py"))
}

func TestAnalyzeClone_BadURL(t *testing.T) {
	_, err := AnalyzeClone(context.Background(), "")
	assert.Error(t, err)
}
