// Package loader implements the Project Loader: it resolves a project
// context (root path, optional type-configuration, include/exclude globs)
// down to the set of in-project source files and hands back the
// astprovider.Provider instances that cover them.
//
// Grounded on the teacher's FileScanner (internal/indexing/pipeline_types.go),
// generalized from a single-language whole-repo indexer to a filter over
// whichever Providers the caller registers.
package loader

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/standardbeagle/tscallgraph/internal/astprovider"
	"github.com/standardbeagle/tscallgraph/internal/cgerrors"
)

// defaultExcludeDirs mirrors the teacher's dependency-directory exclusion
// list, broadened to cover every language this module's providers support.
var defaultExcludeDirs = []string{
	"node_modules", "vendor", ".git", "dist", "build", "__pycache__",
	".venv", "venv", "bin", "obj", "target",
}

var defaultTestDirs = []string{"__tests__", "/test/", "/tests/"}

// ProjectContext is the Project Loader's input: root path, optional
// type-configuration path, and include/exclude glob overrides.
type ProjectContext struct {
	RootPath       string
	TypeConfigPath string
	IncludeGlobs   []string
	ExcludeGlobs   []string

	// IncludeDependencies and IncludeTestFiles opt back into the default
	// exclusions the filtering policy applies.
	IncludeDependencies bool
	IncludeTestFiles    bool
}

// SourceFile is one file the loader decided is in scope, with the
// Provider that can parse it.
type SourceFile struct {
	Path     string
	Provider astprovider.Provider
}

// Loader presents a read-only view of a project's in-scope source files.
type Loader struct {
	providers []astprovider.Provider
	byExt     map[string]astprovider.Provider
}

// New builds a Loader covering the given providers, keyed by file
// extension so Files can dispatch without re-probing every provider.
func New(providers ...astprovider.Provider) *Loader {
	l := &Loader{providers: providers, byExt: make(map[string]astprovider.Provider)}
	for _, p := range providers {
		for _, ext := range p.Extensions() {
			l.byExt[ext] = p
		}
	}
	return l
}

// Files walks ctx.RootPath and returns every file the filtering policy
// accepts, paired with the Provider that owns its extension.
func (l *Loader) Files(ctx ProjectContext) ([]SourceFile, error) {
	root, err := filepath.Abs(ctx.RootPath)
	if err != nil {
		return nil, cgerrors.New(cgerrors.IOError, "cannot resolve root path").WithPath(ctx.RootPath).WithUnderlying(err)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return nil, cgerrors.New(cgerrors.IOError, "root path is unreadable").WithPath(root).WithUnderlying(err)
	}

	if ctx.TypeConfigPath != "" {
		if _, err := os.Stat(ctx.TypeConfigPath); err != nil {
			return nil, cgerrors.New(cgerrors.ConfigurationError, "type-configuration file is missing").WithPath(ctx.TypeConfigPath).WithUnderlying(err)
		}
	}

	var out []SourceFile
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." && l.shouldSkipDir(rel, ctx) {
				return filepath.SkipDir
			}
			return nil
		}

		provider, ok := l.byExt[filepath.Ext(path)]
		if !ok {
			return nil
		}
		if !l.inScope(rel, ctx) {
			return nil
		}
		out = append(out, SourceFile{Path: path, Provider: provider})
		return nil
	})
	if walkErr != nil {
		return nil, cgerrors.New(cgerrors.IOError, "failed walking project tree").WithPath(root).WithUnderlying(walkErr)
	}
	return out, nil
}

func (l *Loader) shouldSkipDir(rel string, ctx ProjectContext) bool {
	if ctx.IncludeDependencies {
		return false
	}
	base := filepath.Base(rel)
	for _, d := range defaultExcludeDirs {
		if base == d {
			return true
		}
	}
	return false
}

// inScope applies the filtering policy of §4.1 in order: dependency dirs
// are handled by shouldSkipDir during the walk, so inScope only needs to
// apply the test-file, include, and exclude rules.
func (l *Loader) inScope(rel string, ctx ProjectContext) bool {
	if !ctx.IncludeTestFiles && isTestFile(rel) {
		return false
	}
	if len(ctx.IncludeGlobs) > 0 && !matchesAny(ctx.IncludeGlobs, rel) {
		return false
	}
	if matchesAny(ctx.ExcludeGlobs, rel) {
		return false
	}
	return true
}

func isTestFile(rel string) bool {
	base := filepath.Base(rel)
	if strings.HasSuffix(base, "_test.go") || strings.Contains(base, ".test.") || strings.Contains(base, ".spec.") {
		return true
	}
	slashed := "/" + rel
	for _, marker := range defaultTestDirs {
		if strings.Contains(slashed, marker) {
			return true
		}
	}
	return false
}

func matchesAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// Provider returns the provider registered for a file extension, or false
// if no provider covers it.
func (l *Loader) Provider(ext string) (astprovider.Provider, bool) {
	p, ok := l.byExt[ext]
	return p, ok
}

// String renders a ProjectContext for diagnostics and debug logging.
func (ctx ProjectContext) String() string {
	return fmt.Sprintf("root=%s typeConfig=%s include=%v exclude=%v", ctx.RootPath, ctx.TypeConfigPath, ctx.IncludeGlobs, ctx.ExcludeGlobs)
}
