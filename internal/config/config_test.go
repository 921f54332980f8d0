package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMatchesSpecDefaults(t *testing.T) {
	cfg := Default("/tmp/project")
	assert.Equal(t, 10, cfg.Analysis.MaxDepth)
	assert.False(t, cfg.Analysis.IncludeDependencies)
	assert.False(t, cfg.Analysis.IncludeTestFiles)
	assert.True(t, cfg.Analysis.FollowImports)
	assert.True(t, cfg.Analysis.AnalyzeCallbacks)
	assert.True(t, cfg.Analysis.CollectArgTypes)
	assert.False(t, cfg.Analysis.CollectMetrics)
	assert.Equal(t, 300, cfg.Performance.WatchDebounceMs)
}

func TestLoadWithNoKDLFileReturnsDefaults(t *testing.T) {
	root := t.TempDir()
	cfg, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Analysis.MaxDepth)
}

func TestLoadAppliesKDLOverrides(t *testing.T) {
	root := t.TempDir()
	kdlContent := `
analysis {
    max_depth 5
    include_dependencies true
    follow_imports false
    collect_arg_types false
}
performance {
    parallel_workers 4
    watch_debounce_ms 500
}
cache {
    max_age_hours 48
}
`
	require.NoError(t, os.WriteFile(filepath.Join(root, ".callgraph.kdl"), []byte(kdlContent), 0o644))

	cfg, err := Load(root)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Analysis.MaxDepth)
	assert.True(t, cfg.Analysis.IncludeDependencies)
	assert.False(t, cfg.Analysis.FollowImports)
	assert.False(t, cfg.Analysis.CollectArgTypes)
	assert.Equal(t, 4, cfg.Performance.ParallelWorkers)
	assert.Equal(t, 500, cfg.Performance.WatchDebounceMs)
	assert.Equal(t, 48, cfg.Cache.MaxAgeHours)
}

func TestLoadRejectsInvalidMaxDepth(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".callgraph.kdl"), []byte(`
analysis {
    max_depth 0
}
`), 0o644))

	_, err := Load(root)
	require.Error(t, err)
}

func TestWorkersDefaultsToNumCPU(t *testing.T) {
	p := Performance{ParallelWorkers: 0}
	assert.Greater(t, p.Workers(), 0)
}

func TestWorkersRespectsExplicitValue(t *testing.T) {
	p := Performance{ParallelWorkers: 3}
	assert.Equal(t, 3, p.Workers())
}
