package entrypoint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/tscallgraph/internal/astprovider"
	"github.com/standardbeagle/tscallgraph/internal/astprovider/tsprovider"
	"github.com/standardbeagle/tscallgraph/internal/cgerrors"
	"github.com/standardbeagle/tscallgraph/internal/loader"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestParseRejectsMissingHash(t *testing.T) {
	_, err := Parse("src/main.ts")
	require.Error(t, err)
}

func TestParseRejectsTooManyDots(t *testing.T) {
	_, err := Parse("src/main.ts#A.b.c")
	require.Error(t, err)
}

func TestParseSplitsTwoSegments(t *testing.T) {
	ref, err := Parse("src/main.ts#Svc.process")
	require.NoError(t, err)
	require.Equal(t, "src/main.ts", ref.RelPath)
	require.Equal(t, []string{"Svc", "process"}, ref.Segments)
}

func TestFindTopLevelFunction(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.ts"), `
function main() {
  return helper();
}

function helper() {
  return 1;
}
`)
	ts, err := tsprovider.New()
	require.NoError(t, err)
	l := loader.New(ts)
	files, err := l.Files(loader.ProjectContext{RootPath: root})
	require.NoError(t, err)

	decl, err := Find("main.ts#main", root, files)
	require.NoError(t, err)
	require.Equal(t, "main", decl.Name)
	require.Equal(t, astprovider.DeclFunction, decl.Kind)
}

func TestFindMethodOnClass(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "svc.ts"), `
class Svc {
  process() {
    this.validate();
  }

  validate() {
    return true;
  }
}
`)
	ts, err := tsprovider.New()
	require.NoError(t, err)
	l := loader.New(ts)
	files, err := l.Files(loader.ProjectContext{RootPath: root})
	require.NoError(t, err)

	decl, err := Find("svc.ts#Svc.process", root, files)
	require.NoError(t, err)
	require.Equal(t, "process", decl.Name)
	require.Equal(t, "Svc", decl.OwningClass)
}

func TestFindMissingFileIsSourceFileNotFound(t *testing.T) {
	root := t.TempDir()
	ts, err := tsprovider.New()
	require.NoError(t, err)
	l := loader.New(ts)
	files, err := l.Files(loader.ProjectContext{RootPath: root})
	require.NoError(t, err)

	_, err = Find("missing.ts#main", root, files)
	require.Error(t, err)
	var cgErr *cgerrors.Error
	require.ErrorAs(t, err, &cgErr)
	require.Equal(t, cgerrors.SourceFileNotFound, cgErr.Kind)
}

func TestFindMissingDeclarationIsEntryPointNotFound(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.ts"), `function main() {}`)
	ts, err := tsprovider.New()
	require.NoError(t, err)
	l := loader.New(ts)
	files, err := l.Files(loader.ProjectContext{RootPath: root})
	require.NoError(t, err)

	_, err = Find("main.ts#nope", root, files)
	require.Error(t, err)
	var cgErr *cgerrors.Error
	require.ErrorAs(t, err, &cgErr)
	require.Equal(t, cgerrors.EntryPointNotFound, cgErr.Kind)
}

func TestFindResolvesOmittedExtension(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.ts"), `function main() {}`)
	ts, err := tsprovider.New()
	require.NoError(t, err)
	l := loader.New(ts)
	files, err := l.Files(loader.ProjectContext{RootPath: root})
	require.NoError(t, err)

	decl, err := Find("main#main", root, files)
	require.NoError(t, err)
	require.Equal(t, "main", decl.Name)
}
