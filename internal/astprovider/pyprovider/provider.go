// Package pyprovider is a third Typed-AST Provider, covering Python: no
// static types, methods live inside class_definition bodies, and
// visibility follows the leading-underscore convention rather than a
// keyword. Owning-class resolution relies on a self-name ("self") rather
// than a fixed keyword, since Python lets the first parameter be renamed.
package pyprovider

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/standardbeagle/tscallgraph/internal/astprovider"
)

type Provider struct {
	parser *sitter.Parser
}

func New() (*Provider, error) {
	p := &Provider{parser: sitter.NewParser()}
	lang := sitter.NewLanguage(tree_sitter_python.Language())
	if err := p.parser.SetLanguage(lang); err != nil {
		return nil, fmt.Errorf("pyprovider: set language: %w", err)
	}
	return p, nil
}

func (p *Provider) Language() string     { return "python" }
func (p *Provider) Extensions() []string { return []string{".py", ".pyi"} }

func (p *Provider) Parse(path string, src []byte) (astprovider.FileAST, error) {
	buf := make([]byte, len(src))
	copy(buf, src)
	tree := p.parser.Parse(buf, nil)
	if tree == nil {
		return nil, fmt.Errorf("pyprovider: parse failed for %s", path)
	}
	return astprovider.NewFileAST(path, src, tree), nil
}

func root(f astprovider.FileAST) *sitter.Node {
	tree := astprovider.TreeOf(f)
	if tree == nil {
		return nil
	}
	return tree.RootNode()
}

func isFunctionLike(kind string) bool {
	return kind == "function_definition" || kind == "async_function_definition" || kind == "lambda"
}

// isPublic follows the leading-underscore convention: single or double
// leading underscore marks private/protected, everything else is public.
func isPublic(name string) bool {
	return name != "" && name[0] != '_'
}
