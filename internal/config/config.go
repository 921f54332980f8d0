// Package config is the CLI/tool-level configuration surface: the Project
// Context and Analysis Options of spec.md §6, plus performance and cache
// knobs, loaded from an optional .callgraph.kdl file. This mirrors the
// teacher's split between a tool-level config (internal/config) and the
// target language's own, opaque project file, which no package in this
// repository parses (internal/loader only checks that it exists).
package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/standardbeagle/tscallgraph/internal/cgerrors"
)

// Project mirrors loader.ProjectContext's recognized options.
type Project struct {
	RootPath       string
	TypeConfigPath string
	IncludeGlobs   []string
	ExcludeGlobs   []string
}

// Analysis mirrors spec.md §6's Analysis options.
type Analysis struct {
	MaxDepth            int
	IncludeDependencies bool
	IncludeTestFiles    bool
	ExcludePatterns     []string
	IncludePatterns     []string
	FollowImports       bool
	AnalyzeCallbacks    bool
	CollectArgTypes     bool
	CollectMetrics      bool
}

// Performance controls the Parallel Driver's worker pool and the
// Incremental Driver's debounce window.
type Performance struct {
	ParallelWorkers int // 0 = auto-detect (NumCPU)
	WatchDebounceMs int
}

// Cache controls the Cache Manager's on-disk layout.
type Cache struct {
	Dir       string
	MaxAgeHours int
}

// Config is the fully-resolved tool configuration: defaults, overridden by
// an optional .callgraph.kdl, overridden by whatever the caller (typically
// the CLI) sets explicitly afterward.
type Config struct {
	Project     Project
	Analysis    Analysis
	Performance Performance
	Cache       Cache
}

// Default returns spec.md §6's documented defaults, rooted at root.
func Default(root string) Config {
	return Config{
		Project: Project{
			RootPath:     root,
			IncludeGlobs: []string{"src/**/*.ts"},
			ExcludeGlobs: []string{"**/node_modules/**", "**/*.test.ts", "**/*.spec.ts"},
		},
		Analysis: Analysis{
			MaxDepth:            10,
			IncludeDependencies: false,
			IncludeTestFiles:    false,
			FollowImports:       true,
			AnalyzeCallbacks:    true,
			CollectArgTypes:     true,
			CollectMetrics:      false,
		},
		Performance: Performance{
			ParallelWorkers: 0,
			WatchDebounceMs: 300,
		},
		Cache: Cache{
			Dir:         filepath.Join(root, ".callgraph-cache"),
			MaxAgeHours: 7 * 24,
		},
	}
}

// Workers resolves Performance.ParallelWorkers to a concrete worker count.
func (p Performance) Workers() int {
	if p.ParallelWorkers > 0 {
		return p.ParallelWorkers
	}
	return runtime.NumCPU()
}

// Validate checks that a loaded Config's values are usable, surfacing a
// configuration-error rather than letting a bad value silently no-op
// downstream (a zero max-depth, for instance, would make every run look
// like a max-depth boundary hit).
func (c Config) Validate() error {
	if c.Project.RootPath == "" {
		return cgerrors.New(cgerrors.ConfigurationError, "project root-path is required")
	}
	if c.Analysis.MaxDepth <= 0 {
		return cgerrors.New(cgerrors.ConfigurationError, "analysis max-depth must be positive")
	}
	if c.Performance.ParallelWorkers < 0 {
		return cgerrors.New(cgerrors.ConfigurationError, "performance parallel-workers must not be negative")
	}
	if c.Cache.MaxAgeHours < 0 {
		return cgerrors.New(cgerrors.ConfigurationError, "cache max-age-hours must not be negative")
	}
	return nil
}

// Load reads an optional .callgraph.kdl from root, layering it over
// Default(root). A missing file is not an error: the defaults stand.
func Load(root string) (Config, error) {
	cfg := Default(root)

	path := filepath.Join(root, ".callgraph.kdl")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, cgerrors.New(cgerrors.ConfigurationError, "could not read .callgraph.kdl").WithPath(path).WithUnderlying(err)
	}

	if err := applyKDL(&cfg, raw); err != nil {
		return cfg, cgerrors.New(cgerrors.ConfigurationError, "could not parse .callgraph.kdl").WithPath(path).WithUnderlying(err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
