// Package phpprovider is a fourth Typed-AST Provider, covering PHP. PHP
// already has native `::` (static) and `->` (instance) call syntax, so the
// node-id scheme's two separators map directly onto the grammar instead of
// being inferred from context the way the primary provider has to.
package phpprovider

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"

	"github.com/standardbeagle/tscallgraph/internal/astprovider"
)

type Provider struct {
	parser *sitter.Parser
}

func New() (*Provider, error) {
	p := &Provider{parser: sitter.NewParser()}
	lang := sitter.NewLanguage(tree_sitter_php.LanguagePHP())
	if err := p.parser.SetLanguage(lang); err != nil {
		return nil, fmt.Errorf("phpprovider: set language: %w", err)
	}
	return p, nil
}

func (p *Provider) Language() string     { return "php" }
func (p *Provider) Extensions() []string { return []string{".php", ".phtml"} }

func (p *Provider) Parse(path string, src []byte) (astprovider.FileAST, error) {
	buf := make([]byte, len(src))
	copy(buf, src)
	tree := p.parser.Parse(buf, nil)
	if tree == nil {
		return nil, fmt.Errorf("phpprovider: parse failed for %s", path)
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
	return kind == "function_definition" || kind == "method_declaration" || kind == "anonymous_function_creation_expression" || kind == "arrow_function"
}

func extractVisibility(node *sitter.Node, src []byte) string {
	count := int(node.ChildCount())
	for i := 0; i < count; i++ {
		c := node.Child(uint(i))
		if c != nil && c.Kind() == "visibility_modifier" {
			return astprovider.NodeText(src, c)
		}
	}
	return "public"
}

func hasModifier(node *sitter.Node, src []byte, modifier string) bool {
	count := int(node.ChildCount())
	for i := 0; i < count; i++ {
		c := node.Child(uint(i))
		if c != nil && astprovider.NodeText(src, c) == modifier {
			return true
		}
	}
	return false
}
