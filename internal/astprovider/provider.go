// Package astprovider defines the narrow interface the core consumes from a
// typed-AST provider (spec.md's "Typed-AST Provider (external)"), plus the
// tree-sitter traversal helpers shared by every concrete language provider
// in this repository's subpackages.
//
// The interface intentionally stops short of a full type checker: it gives
// the Symbol Resolver enough to follow local bindings, imports, and
// receiver-to-class mapping, which is all spec.md's resolve-identifier and
// resolve-member-access operations need.
package astprovider

import (
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// DeclKind mirrors types.NodeVariant but lives in this package so providers
// do not import the types package's JSON-serialization concerns.
type DeclKind string

const (
	DeclFunction     DeclKind = "function"
	DeclMethod       DeclKind = "method"
	DeclArrow        DeclKind = "arrow"
	DeclFunctionExpr DeclKind = "function-expression"
	DeclConstructor  DeclKind = "constructor"
	DeclGetter       DeclKind = "getter"
	DeclSetter       DeclKind = "setter"
)

// Parameter is one formal parameter as reported by a provider.
type Parameter struct {
	Name     string
	Type     string
	Optional bool
	Default  string
}

// Declaration is a function-like declaration as reported by a provider. The
// Offset field is the byte offset of the declaration's first token, used as
// a fallback disambiguator for truly anonymous nodes per spec.md §3.
type Declaration struct {
	Name        string
	Kind        DeclKind
	FilePath    string
	Line        int // 1-based
	Column      int // 0-based
	Offset      int
	Async       bool
	Static      bool
	Visibility  string
	OwningClass string
	Parameters  []Parameter
	ReturnType  string
}

// CallHint narrows how the Call-Graph Builder should classify a call site
// before applying its own await/promise/construct rules.
type CallHint string

const (
	HintNone       CallHint = ""
	HintAwait      CallHint = "await"
	HintPromise    CallHint = "promise"
	HintConstruct  CallHint = "construct"
)

// CallSite is one syntactic call expression found inside a declaration's
// body, in source order.
type CallSite struct {
	CalleeText string // e.g. "helper", "this.validate", "svc.process"
	Line       int
	Column     int
	Offset     int
	ArgTypes   []string
	Hint       CallHint
}

// ImportKind classifies one imported binding.
type ImportKind string

const (
	ImportNamed     ImportKind = "named"
	ImportDefault   ImportKind = "default"
	ImportNamespace ImportKind = "namespace"
	ImportReexport  ImportKind = "re-export"
)

// Import is one binding brought into a file's scope from another module.
type Import struct {
	LocalName  string
	SourceName string // name as exported by the source module; equals LocalName unless aliased
	ModulePath string // as written in source, unresolved
	Kind       ImportKind
}

// FileAST is an opaque parsed-file handle. Providers hand these back to
// every other method; callers never inspect them directly.
type FileAST interface {
	Path() string
	Bytes() []byte
}

// Provider is the interface every concrete language package in this
// directory implements.
type Provider interface {
	// Language is a short identifier, e.g. "typescript", "go", "python".
	Language() string
	// Extensions lists the file extensions this provider claims, including
	// the leading dot.
	Extensions() []string
	// Parse produces a FileAST from source bytes. Parse errors are
	// tree-sitter's own best-effort recovery; this method only fails on
	// I/O-adjacent problems (e.g. a nil source).
	Parse(path string, src []byte) (FileAST, error)
	// Declarations lists every function-like declaration in the file, in
	// source order, flat (methods and nested functions included).
	Declarations(f FileAST) []Declaration
	// Imports lists the file's import/re-export bindings.
	Imports(f FileAST) []Import
	// CallSites lists every call expression syntactically inside owner's
	// body, in source order.
	CallSites(f FileAST, owner Declaration) []CallSite
	// Callbacks lists every anonymous function-like literal (arrow,
	// function expression) syntactically inside owner's body, in source
	// order, excluding ones already reachable as a named Declaration.
	Callbacks(f FileAST, owner Declaration) []Declaration
	// ReceiverClass attempts to name the static class of a member-access
	// receiver expression (e.g. "this", a local variable constructed with
	// `new X()`, or a parameter whose declared type is a class name).
	ReceiverClass(f FileAST, owner Declaration, receiverText string) (string, bool)
}

// ParseTimeout is a per-file parse time budget. No Parse implementation or
// caller in this repository applies it; parses run without a deadline.
const ParseTimeout = 5 * time.Second

// NodeText returns the source text spanned by node.
func NodeText(src []byte, node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return string(src[node.StartByte():node.EndByte()])
}

// NodeLocation returns the 1-based line and 0-based column of node's first
// token, matching spec.md §3's node position convention.
func NodeLocation(node *sitter.Node) (line, column int) {
	if node == nil {
		return 0, 0
	}
	p := node.StartPosition()
	return int(p.Row) + 1, int(p.Column)
}

// FindChildByType returns the first direct child of node with the given
// kind, or nil.
func FindChildByType(node *sitter.Node, kind string) *sitter.Node {
	if node == nil {
		return nil
	}
	count := int(node.ChildCount())
	for i := 0; i < count; i++ {
		c := node.Child(uint(i))
		if c != nil && c.Kind() == kind {
			return c
		}
	}
	return nil
}

// FindChildrenByType returns every direct child of node with the given
// kind, in source order.
func FindChildrenByType(node *sitter.Node, kind string) []*sitter.Node {
	if node == nil {
		return nil
	}
	var out []*sitter.Node
	count := int(node.ChildCount())
	for i := 0; i < count; i++ {
		c := node.Child(uint(i))
		if c != nil && c.Kind() == kind {
			out = append(out, c)
		}
	}
	return out
}

// Walk performs a pre-order traversal of node's subtree, calling visit for
// every descendant (node included). Returning false from visit skips that
// node's children. A single pre-order traversal is sufficient for call-site
// enumeration per spec.md §9's design note against repeated full-tree scans.
func Walk(node *sitter.Node, visit func(*sitter.Node) bool) {
	if node == nil {
		return
	}
	if !visit(node) {
		return
	}
	count := int(node.ChildCount())
	for i := 0; i < count; i++ {
		Walk(node.Child(uint(i)), visit)
	}
}

// basicFileAST is the shared FileAST implementation used by every
// subpackage: a parsed tree plus the bytes it was parsed from.
type basicFileAST struct {
	path string
	src  []byte
	tree *sitter.Tree
}

func (f *basicFileAST) Path() string       { return f.path }
func (f *basicFileAST) Bytes() []byte      { return f.src }
func (f *basicFileAST) Tree() *sitter.Tree { return f.tree }

// NewFileAST is a constructor subpackages use to build their FileAST value;
// exported so language packages outside this directory (none currently, but
// tests in this package included) can construct one without a type
// assertion.
func NewFileAST(path string, src []byte, tree *sitter.Tree) FileAST {
	return &basicFileAST{path: path, src: src, tree: tree}
}

// TreeOf recovers the parsed tree from a FileAST produced by NewFileAST.
// Concrete providers call this immediately after Parse to get a
// *sitter.Node to traverse.
func TreeOf(f FileAST) *sitter.Tree {
	b, ok := f.(*basicFileAST)
	if !ok {
		return nil
	}
	return b.tree
}
