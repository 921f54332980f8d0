// Package entrypoint implements the Entry-Point Finder (spec.md §4.3): it
// turns a `path#ref` string into the declaration it names, trying the
// project's registered source extensions and the lookup order the spec
// defines for one- and two-segment references.
package entrypoint

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/standardbeagle/tscallgraph/internal/astprovider"
	"github.com/standardbeagle/tscallgraph/internal/cgerrors"
	"github.com/standardbeagle/tscallgraph/internal/loader"
)

// Reference is a parsed entry-point string: a file path (still relative,
// extension possibly omitted) and the dot-separated ref segments after `#`.
type Reference struct {
	RelPath  string
	Segments []string
}

// Parse splits a raw entry-point string on `#` and then `.`. More than two
// ref segments is a format error, as is a missing `#` or empty segment.
func Parse(raw string) (Reference, error) {
	hashIdx := strings.Index(raw, "#")
	if hashIdx < 0 {
		return Reference{}, cgerrors.InvalidEntryPoint(raw, "missing '#' separating file path from function reference")
	}
	relPath := raw[:hashIdx]
	ref := raw[hashIdx+1:]
	if relPath == "" || ref == "" {
		return Reference{}, cgerrors.InvalidEntryPoint(raw, "both file path and function reference must be non-empty")
	}
	segments := strings.Split(ref, ".")
	if len(segments) > 2 {
		return Reference{}, cgerrors.InvalidEntryPoint(raw, "function reference may have at most one '.'")
	}
	for _, s := range segments {
		if s == "" {
			return Reference{}, cgerrors.InvalidEntryPoint(raw, "empty segment in function reference")
		}
	}
	return Reference{RelPath: relPath, Segments: segments}, nil
}

// Find locates the source file `ref.RelPath` names (trying the provider's
// known extensions if it lacks one) within the files the Project Loader
// selected, then locates the declaration `ref.Segments` names inside it.
func Find(raw string, root string, files []loader.SourceFile) (astprovider.Declaration, error) {
	ref, err := Parse(raw)
	if err != nil {
		return astprovider.Declaration{}, err
	}

	sf, ok := locateFile(root, ref.RelPath, files)
	if !ok {
		return astprovider.Declaration{}, cgerrors.NotFoundSourceFile(filepath.Join(root, ref.RelPath))
	}

	src, readErr := os.ReadFile(sf.Path)
	if readErr != nil {
		return astprovider.Declaration{}, cgerrors.New(cgerrors.IOError, "could not read entry-point source file").WithPath(sf.Path).WithUnderlying(readErr)
	}
	ast, parseErr := sf.Provider.Parse(sf.Path, src)
	if parseErr != nil {
		return astprovider.Declaration{}, cgerrors.New(cgerrors.ResolutionFailure, "provider failed to parse entry-point file").WithPath(sf.Path).WithUnderlying(parseErr)
	}
	decls := sf.Provider.Declarations(ast)

	switch len(ref.Segments) {
	case 1:
		if d, ok := findTopLevel(decls, ref.Segments[0]); ok {
			return d, nil
		}
	case 2:
		if d, ok := findMember(decls, ref.Segments[0], ref.Segments[1]); ok {
			return d, nil
		}
	}
	return astprovider.Declaration{}, cgerrors.NotFoundEntryPoint(sf.Path, raw)
}

// findTopLevel implements the single-segment lookup order: a top-level
// function declaration first, then any other top-level declaration of that
// name (covering exported bindings and named function-expression/arrow
// bindings the provider already surfaces as declarations).
func findTopLevel(decls []astprovider.Declaration, name string) (astprovider.Declaration, bool) {
	var fallback astprovider.Declaration
	haveFallback := false
	for _, d := range decls {
		if d.OwningClass != "" || d.Name != name {
			continue
		}
		if d.Kind == astprovider.DeclFunction {
			return d, true
		}
		if !haveFallback {
			fallback = d
			haveFallback = true
		}
	}
	return fallback, haveFallback
}

// findMember implements the two-segment lookup order: a method, then an
// accessor, then — if the member name is "constructor" — the class's
// constructor declaration.
func findMember(decls []astprovider.Declaration, class, member string) (astprovider.Declaration, bool) {
	var accessor astprovider.Declaration
	haveAccessor := false
	for _, d := range decls {
		if d.OwningClass != class || d.Name != member {
			continue
		}
		if d.Kind == astprovider.DeclMethod {
			return d, true
		}
		if (d.Kind == astprovider.DeclGetter || d.Kind == astprovider.DeclSetter) && !haveAccessor {
			accessor = d
			haveAccessor = true
		}
	}
	if haveAccessor {
		return accessor, true
	}
	if member == "constructor" {
		for _, d := range decls {
			if d.OwningClass == class && d.Kind == astprovider.DeclConstructor {
				return d, true
			}
		}
	}
	return astprovider.Declaration{}, false
}

// locateFile finds the loader-selected file matching relPath, trying each
// extension the file's own provider set supports when relPath has none and
// no exact match exists.
func locateFile(root, relPath string, files []loader.SourceFile) (loader.SourceFile, bool) {
	want := filepath.Join(root, relPath)
	if filepath.Ext(relPath) != "" {
		for _, f := range files {
			if f.Path == want {
				return f, true
			}
		}
		return loader.SourceFile{}, false
	}
	for _, f := range files {
		if strings.TrimSuffix(f.Path, filepath.Ext(f.Path)) == want {
			return f, true
		}
	}
	return loader.SourceFile{}, false
}
