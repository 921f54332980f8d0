package callgraph

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/tscallgraph/internal/astprovider/tsprovider"
	"github.com/standardbeagle/tscallgraph/internal/entrypoint"
	"github.com/standardbeagle/tscallgraph/internal/loader"
	"github.com/standardbeagle/tscallgraph/internal/resolver"
	"github.com/standardbeagle/tscallgraph/internal/types"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func buildFromEntry(t *testing.T, root, entryRef string, cfg Config) *types.CallGraph {
	t.Helper()
	ts, err := tsprovider.New()
	require.NoError(t, err)
	l := loader.New(ts)
	files, err := l.Files(loader.ProjectContext{RootPath: root})
	require.NoError(t, err)

	entry, err := entrypoint.Find(entryRef, root, files)
	require.NoError(t, err)

	idx, softErrors := resolver.BuildIndex(files)
	require.Empty(t, softErrors)

	b := New(idx, cfg)
	graph, err := b.Build(entryRef, root, "", entry)
	require.NoError(t, err)
	return graph
}

func TestBuildLinearChain(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.ts"), `
function main() {
  return helper();
}

function helper() {
  return 1;
}
`)
	graph := buildFromEntry(t, root, "main.ts#main", DefaultConfig())

	require.Len(t, graph.Nodes, 2)
	require.Len(t, graph.Edges, 1)
	require.Equal(t, types.EdgeSync, graph.Edges[0].Variant)
	_, ok := graph.NodeByID(graph.EntryPointID)
	require.True(t, ok)
}

func TestBuildCycleDoesNotLoop(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.ts"), `
function a() {
  return b();
}

function b() {
  return a();
}
`)
	graph := buildFromEntry(t, root, "main.ts#a", DefaultConfig())
	require.Len(t, graph.Nodes, 2)
	require.Len(t, graph.Edges, 2)
}

func TestBuildRespectsMaxDepth(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.ts"), `
function a() { return b(); }
function b() { return c(); }
function c() { return 1; }
`)
	cfg := DefaultConfig()
	cfg.MaxDepth = 2
	graph := buildFromEntry(t, root, "main.ts#a", cfg)
	require.Len(t, graph.Nodes, 2)
	require.Len(t, graph.Edges, 1)

	edge := graph.Edges[0]
	_, sourceOK := graph.NodeByID(edge.Source)
	require.True(t, sourceOK, "edge source must be a node present in the graph")
	target, targetOK := graph.NodeByID(edge.Target)
	require.True(t, targetOK, "edge target must be a node present in the graph")
	require.Equal(t, "b", target.Name)

	// c is beyond the depth cap and must not appear as a dangling edge target.
	for _, n := range graph.Nodes {
		require.NotEqual(t, "c", n.Name)
	}
}

func TestBuildMaxDepthZeroYieldsEntryOnly(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.ts"), `
function a() { return b(); }
function b() { return 1; }
`)
	cfg := DefaultConfig()
	cfg.MaxDepth = 0
	graph := buildFromEntry(t, root, "main.ts#a", cfg)
	require.Len(t, graph.Nodes, 1)
	require.Empty(t, graph.Edges)
	_, ok := graph.NodeByID(graph.EntryPointID)
	require.True(t, ok)
}

func TestBuildCrossFileCall(t *testing.T) {
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
	graph := buildFromEntry(t, root, "a.ts#main", DefaultConfig())
	require.Len(t, graph.Nodes, 2)
	require.Len(t, graph.Edges, 1)
	target, ok := graph.NodeByID(graph.Edges[0].Target)
	require.True(t, ok)
	require.Equal(t, "helper", target.Name)
	require.Equal(t, filepath.Join(root, "b.ts"), target.FilePath)
}

func TestBuildConstructorEdge(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.ts"), `
class Widget {
  constructor() {}
}

function main() {
  return new Widget();
}
`)
	graph := buildFromEntry(t, root, "main.ts#main", DefaultConfig())
	require.Len(t, graph.Edges, 1)
	require.Equal(t, types.EdgeConstructor, graph.Edges[0].Variant)
}

func TestBuildCallbackEdge(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.ts"), `
function main() {
  [1, 2].map(x => x * 2);
}
`)
	graph := buildFromEntry(t, root, "main.ts#main", DefaultConfig())
	require.Len(t, graph.Nodes, 2)
	require.Len(t, graph.Edges, 1)
	require.Equal(t, types.EdgeCallback, graph.Edges[0].Variant)
}

func TestBuildCallbacksDisabled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.ts"), `
function main() {
  [1, 2].map(x => x * 2);
}
`)
	cfg := DefaultConfig()
	cfg.AnalyzeCallbacks = false
	graph := buildFromEntry(t, root, "main.ts#main", cfg)
	require.Len(t, graph.Nodes, 1)
	require.Empty(t, graph.Edges)
}
