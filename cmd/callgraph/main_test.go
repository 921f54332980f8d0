package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/tscallgraph/internal/types"
)

func TestExitCodeForNilIsZero(t *testing.T) {
	assert.Equal(t, 0, exitCodeFor(nil))
}

func TestExitCodeForErrorIsOne(t *testing.T) {
	assert.Equal(t, 1, exitCodeFor(stringError("boom")))
}

type stringError string

func (e stringError) Error() string { return string(e) }

func TestToDOTEmitsNodesAndEdges(t *testing.T) {
	graph := &types.CallGraph{
		Nodes: []types.Node{
			{ID: "a.ts#main", Name: "main"},
			{ID: "a.ts#helper", Name: "helper"},
		},
		Edges: []types.Edge{
			{ID: "a.ts#main→a.ts#helper#0", Source: "a.ts#main", Target: "a.ts#helper", Variant: types.EdgeSync},
		},
	}

	dot := toDOT(graph)
	require.True(t, strings.HasPrefix(dot, "digraph callgraph {"))
	assert.Contains(t, dot, `"a.ts#main" [label="main"]`)
	assert.Contains(t, dot, `"a.ts#main" -> "a.ts#helper"`)
}

func TestProvidersRegistersEveryLanguageBinding(t *testing.T) {
	ps, err := providers()
	require.NoError(t, err)
	assert.Len(t, ps, 5)
}

func TestProviderFactoriesCoversEveryRegisteredExtension(t *testing.T) {
	factories := providerFactories()
	for _, ext := range []string{".ts", ".tsx", ".js", ".jsx", ".go", ".py", ".php", ".cs"} {
		_, ok := factories[ext]
		assert.True(t, ok, "missing factory for %s", ext)
	}
}
