package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/tscallgraph/internal/astprovider/tsprovider"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestFilesExcludesDependenciesAndTests(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "main.ts"), "function main() {}")
	writeFile(t, filepath.Join(root, "src", "main.test.ts"), "test content")
	writeFile(t, filepath.Join(root, "node_modules", "dep", "index.ts"), "function dep() {}")

	ts, err := tsprovider.New()
	require.NoError(t, err)

	l := New(ts)
	files, err := l.Files(ProjectContext{RootPath: root})
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, filepath.Join(root, "src", "main.ts"), files[0].Path)
}

func TestFilesIncludeTestFilesOptIn(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.test.ts"), "test content")

	ts, err := tsprovider.New()
	require.NoError(t, err)

	l := New(ts)
	files, err := l.Files(ProjectContext{RootPath: root, IncludeTestFiles: true})
	require.NoError(t, err)
	require.Len(t, files, 1)
}

func TestFilesMissingRootIsIOError(t *testing.T) {
	ts, err := tsprovider.New()
	require.NoError(t, err)

	l := New(ts)
	_, err = l.Files(ProjectContext{RootPath: "/does/not/exist"})
	require.Error(t, err)
}
