package csprovider

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/tscallgraph/internal/astprovider"
)

func (p *Provider) Imports(f astprovider.FileAST) []astprovider.Import {
	r := root(f)
	if r == nil {
		return nil
	}
	src := f.Bytes()
	var out []astprovider.Import
	astprovider.Walk(r, func(n *sitter.Node) bool {
		if n.Kind() == "using_directive" {
			out = append(out, usingDirective(n, src))
		}
		return true
	})
	return out
}

func usingDirective(node *sitter.Node, src []byte) astprovider.Import {
	var path, alias string
	isStatic := false
	count := int(node.ChildCount())
	for i := 0; i < count; i++ {
		c := node.Child(uint(i))
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "static":
			isStatic = true
		case "qualified_name", "identifier_name", "identifier":
			if path == "" {
				path = astprovider.NodeText(src, c)
			}
		case "name_equals":
			nc := int(c.ChildCount())
			for j := 0; j < nc; j++ {
				if id := c.Child(uint(j)); id != nil && id.Kind() == "identifier" {
					alias = astprovider.NodeText(src, id)
					break
				}
			}
		}
	}
	kind := astprovider.ImportNamespace
	if isStatic {
		kind = astprovider.ImportNamed
	}
	if alias == "" {
		alias = path
	}
	return astprovider.Import{LocalName: alias, SourceName: alias, ModulePath: path, Kind: kind}
}
