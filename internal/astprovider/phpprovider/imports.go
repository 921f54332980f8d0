package phpprovider

import (
	"strings"

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
		if n.Kind() == "namespace_use_declaration" {
			useDeclaration(n, src, &out)
		}
		return true
	})
	return out
}

func useDeclaration(node *sitter.Node, src []byte, out *[]astprovider.Import) {
	count := int(node.ChildCount())
	for i := 0; i < count; i++ {
		c := node.Child(uint(i))
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "namespace_use_clause":
			useClause(c, src, "", out)
		case "namespace_name":
			base := astprovider.NodeText(src, c)
			if g := astprovider.FindChildByType(node, "namespace_use_group"); g != nil {
				useGroup(g, src, base, out)
			}
		}
	}
}

func useClause(node *sitter.Node, src []byte, base string, out *[]astprovider.Import) {
	nameNode := astprovider.FindChildByType(node, "qualified_name")
	if nameNode == nil {
		nameNode = astprovider.FindChildByType(node, "name")
	}
	if nameNode == nil {
		return
	}
	path := astprovider.NodeText(src, nameNode)
	if base != "" {
		path = base + "\\" + path
	}
	alias := aliasOf(node, src)
	if alias == "" {
		parts := strings.Split(path, "\\")
		alias = parts[len(parts)-1]
	}
	*out = append(*out, astprovider.Import{LocalName: alias, SourceName: alias, ModulePath: path, Kind: astprovider.ImportDefault})
}

func useGroup(group *sitter.Node, src []byte, base string, out *[]astprovider.Import) {
	count := int(group.ChildCount())
	for i := 0; i < count; i++ {
		c := group.Child(uint(i))
		if c != nil && c.Kind() == "namespace_use_clause" {
			useClause(c, src, base, out)
		}
	}
}

func aliasOf(node *sitter.Node, src []byte) string {
	count := int(node.ChildCount())
	for i := 0; i < count; i++ {
		c := node.Child(uint(i))
		if c != nil && astprovider.NodeText(src, c) == "as" && i+1 < count {
			if next := node.Child(uint(i + 1)); next != nil {
				return astprovider.NodeText(src, next)
			}
		}
	}
	return ""
}
