package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/tscallgraph/internal/astprovider/tsprovider"
	"github.com/standardbeagle/tscallgraph/internal/loader"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func buildIndex(t *testing.T, root string) *ProjectIndex {
	t.Helper()
	ts, err := tsprovider.New()
	require.NoError(t, err)
	l := loader.New(ts)
	files, err := l.Files(loader.ProjectContext{RootPath: root})
	require.NoError(t, err)
	idx, softErrors := BuildIndex(files)
	require.Empty(t, softErrors)
	return idx
}

func TestResolveIdentifierSameFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.ts"), `
function main() {
  return helper();
}

function helper() {
  return 1;
}
`)
	idx := buildIndex(t, root)
	r := New(idx)

	mainPath := filepath.Join(root, "main.ts")
	owner, ok := idx.LookupLocal(mainPath, "main")
	require.True(t, ok)

	provider, _ := idx.Provider(mainPath)
	ast, _ := idx.FileAST(mainPath)
	sites := provider.CallSites(ast, owner)
	require.Len(t, sites, 1)

	decl, ok := r.resolveIdentifier(mainPath, sites[0].CalleeText)
	require.True(t, ok)
	require.Equal(t, "helper", decl.Name)
}

func TestResolveIdentifierCrossFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.ts"), `
import { helper } from './b';

function main() {
  return helper();
}
`)
	writeFile(t, filepath.Join(root, "b.ts"), `
export function helper() {
  return 1;
}
`)
	idx := buildIndex(t, root)
	r := New(idx)

	aPath := filepath.Join(root, "a.ts")
	decl, ok := r.resolveIdentifier(aPath, "helper")
	require.True(t, ok)
	require.Equal(t, filepath.Join(root, "b.ts"), decl.FilePath)
	require.Equal(t, "helper", decl.Name)
}

func TestResolveIdentifierAliasedImport(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.ts"), `
import { helper as h } from './b';

function main() {
  return h();
}
`)
	writeFile(t, filepath.Join(root, "b.ts"), `
export function helper() {
  return 1;
}
`)
	idx := buildIndex(t, root)
	r := New(idx)

	aPath := filepath.Join(root, "a.ts")
	decl, ok := r.resolveIdentifier(aPath, "h")
	require.True(t, ok)
	require.Equal(t, "helper", decl.Name)
}

func TestResolveIdentifierNamespaceImportStops(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.ts"), `
import * as utils from './b';

function main() {
  return utils();
}
`)
	writeFile(t, filepath.Join(root, "b.ts"), `
export function helper() {
  return 1;
}
`)
	idx := buildIndex(t, root)
	r := New(idx)

	aPath := filepath.Join(root, "a.ts")
	_, ok := r.resolveIdentifier(aPath, "utils")
	require.False(t, ok)
}

func TestResolveMemberAccessMatchesReceiverClass(t *testing.T) {
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
	idx := buildIndex(t, root)
	r := New(idx)

	svcPath := filepath.Join(root, "svc.ts")
	owner, ok := idx.LookupMethod("Svc", "process")
	require.True(t, ok)

	decl, ok := r.resolveMemberAccess(svcPath, owner, "this", "validate")
	require.True(t, ok)
	require.Equal(t, "validate", decl.Name)
	require.Equal(t, "Svc", decl.OwningClass)
}

func TestFullyQualifiedNameMatchesNodeID(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.ts"), `
function main() {}
`)
	idx := buildIndex(t, root)
	mainPath := filepath.Join(root, "main.ts")
	decl, ok := idx.LookupLocal(mainPath, "main")
	require.True(t, ok)
	require.Equal(t, NodeID(decl), FullyQualifiedName(decl))
}

func TestResolveCallCachesResult(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.ts"), `
function main() {
  return helper();
}

function helper() {
  return 1;
}
`)
	idx := buildIndex(t, root)
	r := New(idx)
	mainPath := filepath.Join(root, "main.ts")
	owner, ok := idx.LookupLocal(mainPath, "main")
	require.True(t, ok)

	provider, _ := idx.Provider(mainPath)
	ast, _ := idx.FileAST(mainPath)
	sites := provider.CallSites(ast, owner)
	require.Len(t, sites, 1)

	decl1, ok1 := r.ResolveCall(mainPath, owner, sites[0])
	require.True(t, ok1)
	key := cacheKey(mainPath, sites[0].Offset)
	entry, found := r.lookupCache(key)
	require.True(t, found)
	require.Equal(t, decl1.Name, entry.decl.Name)
}
