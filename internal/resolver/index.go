// Package resolver implements the Symbol Resolver (spec.md §4.2). Per this
// repository's Open Question decision, cross-file resolution goes through
// a ProjectIndex built once before any traversal or fan-out, rather than
// the teacher's post-hoc, lossy name re-targeting
// (internal/symbollinker/linker_engine.go's processImport/LinkSymbols
// pass, which runs after independent per-file extraction).
package resolver

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/standardbeagle/tscallgraph/internal/astprovider"
	"github.com/standardbeagle/tscallgraph/internal/cgerrors"
	"github.com/standardbeagle/tscallgraph/internal/loader"
)

type fileEntry struct {
	provider astprovider.Provider
	ast      astprovider.FileAST
	decls    []astprovider.Declaration
	imports  []astprovider.Import
}

// ProjectIndex holds every file's parsed declarations and imports, indexed
// for the lookups the Symbol Resolver needs. Building it is the one
// whole-project pass this module requires; after that, resolution is a
// map lookup instead of a second parse.
type ProjectIndex struct {
	files         map[string]*fileEntry
	byTopLevel    map[string][]astprovider.Declaration
	byClassMethod map[string]map[string]astprovider.Declaration
}

// ParsedFile is one file's already-parsed state, handed to
// BuildIndexFromParsed by a caller that did its own parsing (the Parallel
// Driver parses files concurrently, each on its own Provider instance,
// before handing the results here to build the shared index sequentially).
type ParsedFile struct {
	Path     string
	Provider astprovider.Provider
	AST      astprovider.FileAST
	Decls    []astprovider.Declaration
	Imports  []astprovider.Import
}

// BuildIndex parses every source file the loader selected and indexes its
// declarations and imports. A single file failing to parse is a soft
// failure: it is skipped, not fatal, matching the resolution-failure kind's
// fail-soft contract elsewhere in this pipeline.
func BuildIndex(files []loader.SourceFile) (*ProjectIndex, []error) {
	var parsed []ParsedFile
	var softErrors []error
	for _, sf := range files {
		src, err := os.ReadFile(sf.Path)
		if err != nil {
			softErrors = append(softErrors, cgerrors.New(cgerrors.IOError, "could not read source file").WithPath(sf.Path).WithUnderlying(err))
			continue
		}
		ast, err := sf.Provider.Parse(sf.Path, src)
		if err != nil {
			softErrors = append(softErrors, cgerrors.New(cgerrors.ResolutionFailure, "provider failed to parse file").WithPath(sf.Path).WithUnderlying(err))
			continue
		}
		parsed = append(parsed, ParsedFile{
			Path:     sf.Path,
			Provider: sf.Provider,
			AST:      ast,
			Decls:    sf.Provider.Declarations(ast),
			Imports:  sf.Provider.Imports(ast),
		})
	}
	return BuildIndexFromParsed(parsed), softErrors
}

// BuildIndexFromParsed indexes a set of already-parsed files. Used directly
// by the Parallel Driver, which owns the concurrent parsing step itself so
// each worker gets an isolated Provider instance (tree-sitter parsers are
// not safe for concurrent use).
func BuildIndexFromParsed(parsed []ParsedFile) *ProjectIndex {
	idx := &ProjectIndex{
		files:         make(map[string]*fileEntry, len(parsed)),
		byTopLevel:    make(map[string][]astprovider.Declaration),
		byClassMethod: make(map[string]map[string]astprovider.Declaration),
	}
	for _, pf := range parsed {
		idx.files[pf.Path] = &fileEntry{provider: pf.Provider, ast: pf.AST, decls: pf.Decls, imports: pf.Imports}
		idx.indexDeclarations(pf.Decls)
	}
	return idx
}

func (idx *ProjectIndex) indexDeclarations(decls []astprovider.Declaration) {
	for _, d := range decls {
		if d.OwningClass == "" {
			idx.byTopLevel[d.Name] = append(idx.byTopLevel[d.Name], d)
			continue
		}
		methods, ok := idx.byClassMethod[d.OwningClass]
		if !ok {
			methods = make(map[string]astprovider.Declaration)
			idx.byClassMethod[d.OwningClass] = methods
		}
		methods[d.Name] = d
	}
}

func (idx *ProjectIndex) Provider(path string) (astprovider.Provider, bool) {
	e, ok := idx.files[path]
	if !ok {
		return nil, false
	}
	return e.provider, true
}

func (idx *ProjectIndex) FileAST(path string) (astprovider.FileAST, bool) {
	e, ok := idx.files[path]
	if !ok {
		return nil, false
	}
	return e.ast, true
}

func (idx *ProjectIndex) Declarations(path string) []astprovider.Declaration {
	e, ok := idx.files[path]
	if !ok {
		return nil
	}
	return e.decls
}

func (idx *ProjectIndex) Imports(path string) []astprovider.Import {
	e, ok := idx.files[path]
	if !ok {
		return nil
	}
	return e.imports
}

// LookupLocal finds a top-level (non-method) declaration by name within a
// single file.
func (idx *ProjectIndex) LookupLocal(path, name string) (astprovider.Declaration, bool) {
	for _, d := range idx.Declarations(path) {
		if d.OwningClass == "" && d.Name == name {
			return d, true
		}
	}
	return astprovider.Declaration{}, false
}

// LookupMethod finds a method or accessor declared on the given class name,
// across the whole project. Declarations are unique per (class, member)
// within well-formed source; a project with two classes sharing the same
// name in different files is a known shadowing caveat (see DESIGN.md).
func (idx *ProjectIndex) LookupMethod(class, method string) (astprovider.Declaration, bool) {
	methods, ok := idx.byClassMethod[class]
	if !ok {
		return astprovider.Declaration{}, false
	}
	d, ok := methods[method]
	return d, ok
}

// LookupFunction finds a top-level declaration by name anywhere in the
// project. Used as the Resolver's last-resort fallback when an import
// cannot be traced to its source file; ambiguous when two files export the
// same top-level name (see DESIGN.md shadowing caveat).
func (idx *ProjectIndex) LookupFunction(name string) (astprovider.Declaration, bool) {
	decls, ok := idx.byTopLevel[name]
	if !ok || len(decls) == 0 {
		return astprovider.Declaration{}, false
	}
	return decls[0], true
}

// ResolveImportTarget maps a relative import's module path to an indexed
// file path, trying each provider's extensions in turn. Non-relative
// (bare package/module) specifiers are treated as external and return ok=false,
// consistent with the Symbol Resolver treating unresolved imports as a soft
// miss rather than an error.
func (idx *ProjectIndex) ResolveImportTarget(fromPath string, imp astprovider.Import) (string, bool) {
	if !strings.HasPrefix(imp.ModulePath, ".") {
		return "", false
	}
	base := filepath.Join(filepath.Dir(fromPath), imp.ModulePath)
	if e, ok := idx.files[base]; ok {
		_ = e
		return base, true
	}
	provider, hasProvider := idx.Provider(fromPath)
	if !hasProvider {
		return "", false
	}
	for _, ext := range provider.Extensions() {
		candidate := base + ext
		if _, ok := idx.files[candidate]; ok {
			return candidate, true
		}
	}
	for _, ext := range provider.Extensions() {
		candidate := filepath.Join(base, "index"+ext)
		if _, ok := idx.files[candidate]; ok {
			return candidate, true
		}
	}
	return "", false
}
