package graphschema

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/tscallgraph/internal/astprovider/tsprovider"
	"github.com/standardbeagle/tscallgraph/internal/callgraph"
	"github.com/standardbeagle/tscallgraph/internal/entrypoint"
	"github.com/standardbeagle/tscallgraph/internal/loader"
	"github.com/standardbeagle/tscallgraph/internal/resolver"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestValidateAcceptsRealGraph(t *testing.T) {
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

	entry, err := entrypoint.Find("main.ts#main", root, files)
	require.NoError(t, err)

	idx, softErrors := resolver.BuildIndex(files)
	require.Empty(t, softErrors)

	b := callgraph.New(idx, callgraph.DefaultConfig())
	graph, err := b.Build("main.ts#main", root, "", entry)
	require.NoError(t, err)

	raw, err := json.Marshal(graph)
	require.NoError(t, err)

	require.NoError(t, Validate(raw))
}

func TestValidateRejectsMissingRequiredField(t *testing.T) {
	raw := []byte(`{
		"metadata": {
			"generatedAt": "2026-07-31T00:00:00Z",
			"entryPoint": "main.ts#main",
			"maxDepth": 10,
			"projectRoot": "/tmp/project"
		},
		"nodes": [
			{
				"id": "main.ts#main",
				"name": "main",
				"filePath": "main.ts",
				"line": 1,
				"async": false
			}
		],
		"edges": [],
		"entryPointId": "main.ts#main"
	}`)

	err := Validate(raw)
	require.Error(t, err)
}

func TestValidateRejectsUnknownNodeType(t *testing.T) {
	raw := []byte(`{
		"metadata": {
			"generatedAt": "2026-07-31T00:00:00Z",
			"entryPoint": "main.ts#main",
			"maxDepth": 10,
			"projectRoot": "/tmp/project"
		},
		"nodes": [
			{
				"id": "main.ts#main",
				"name": "main",
				"type": "not-a-real-kind",
				"filePath": "main.ts",
				"line": 1,
				"async": false
			}
		],
		"edges": [],
		"entryPointId": "main.ts#main"
	}`)

	err := Validate(raw)
	require.Error(t, err)
}

func TestValidateRejectsMalformedJSON(t *testing.T) {
	err := Validate([]byte(`{"metadata":`))
	require.Error(t, err)
}
