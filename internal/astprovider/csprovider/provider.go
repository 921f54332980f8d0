// Package csprovider is a fifth Typed-AST Provider, covering C#. Unlike
// the primary provider, visibility is a grammar keyword rather than a
// naming convention, so the Declaration's Visibility field is read
// straight off the modifier list instead of inferred.
package csprovider

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_csharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"

	"github.com/standardbeagle/tscallgraph/internal/astprovider"
)

type Provider struct {
	parser *sitter.Parser
}

func New() (*Provider, error) {
	p := &Provider{parser: sitter.NewParser()}
	lang := sitter.NewLanguage(tree_sitter_csharp.Language())
	if err := p.parser.SetLanguage(lang); err != nil {
		return nil, fmt.Errorf("csprovider: set language: %w", err)
	}
	return p, nil
}

func (p *Provider) Language() string     { return "csharp" }
func (p *Provider) Extensions() []string { return []string{".cs"} }

func (p *Provider) Parse(path string, src []byte) (astprovider.FileAST, error) {
	buf := make([]byte, len(src))
	copy(buf, src)
	tree := p.parser.Parse(buf, nil)
	if tree == nil {
		return nil, fmt.Errorf("csprovider: parse failed for %s", path)
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
	switch kind {
	case "method_declaration", "constructor_declaration", "destructor_declaration",
		"local_function_statement", "lambda_expression", "anonymous_method_expression":
		return true
	}
	return false
}

func extractModifiers(node *sitter.Node, src []byte) []string {
	var mods []string
	count := int(node.ChildCount())
	for i := 0; i < count; i++ {
		c := node.Child(uint(i))
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "modifier":
			mc := int(c.ChildCount())
			for j := 0; j < mc; j++ {
				if gc := c.Child(uint(j)); gc != nil {
					mods = append(mods, astprovider.NodeText(src, gc))
				}
			}
		case "public", "private", "protected", "internal", "static", "abstract",
			"virtual", "override", "sealed", "partial", "async", "readonly":
			mods = append(mods, c.Kind())
		}
	}
	return mods
}

func visibilityFromModifiers(mods []string) string {
	for _, m := range mods {
		switch m {
		case "public", "private", "protected", "internal":
			return m
		}
	}
	return "private"
}

func hasModifier(mods []string, name string) bool {
	for _, m := range mods {
		if m == name {
			return true
		}
	}
	return false
}
