package pyprovider

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
		switch n.Kind() {
		case "import_statement":
			importStatement(n, src, &out)
		case "import_from_statement":
			importFromStatement(n, src, &out)
		}
		return true
	})
	return out
}

func importStatement(node *sitter.Node, src []byte, out *[]astprovider.Import) {
	count := int(node.ChildCount())
	for i := 0; i < count; i++ {
		c := node.Child(uint(i))
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "dotted_name", "identifier":
			path := astprovider.NodeText(src, c)
			alias := path
			if idx := strings.LastIndex(path, "."); idx >= 0 {
				alias = path[idx+1:]
			}
			*out = append(*out, astprovider.Import{LocalName: alias, SourceName: alias, ModulePath: path, Kind: astprovider.ImportDefault})
		case "aliased_import":
			aliasedImport(c, src, out)
		}
	}
}

func aliasedImport(node *sitter.Node, src []byte, out *[]astprovider.Import) {
	var name, alias string
	count := int(node.ChildCount())
	for i := 0; i < count; i++ {
		c := node.Child(uint(i))
		if c == nil {
			continue
		}
		if c.Kind() == "dotted_name" || c.Kind() == "identifier" {
			if name == "" {
				name = astprovider.NodeText(src, c)
			} else {
				alias = astprovider.NodeText(src, c)
			}
		}
	}
	if name == "" {
		return
	}
	if alias == "" {
		alias = name
	}
	*out = append(*out, astprovider.Import{LocalName: alias, SourceName: name, ModulePath: name, Kind: astprovider.ImportDefault})
}

func importFromStatement(node *sitter.Node, src []byte, out *[]astprovider.Import) {
	var modulePath string
	var names []astprovider.Import
	wildcard := false
	count := int(node.ChildCount())
	for i := 0; i < count; i++ {
		c := node.Child(uint(i))
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "dotted_name", "relative_import":
			if modulePath == "" {
				modulePath = astprovider.NodeText(src, c)
			}
		case "wildcard_import":
			wildcard = true
		case "identifier":
			name := astprovider.NodeText(src, c)
			names = append(names, astprovider.Import{LocalName: name, SourceName: name})
		case "aliased_import":
			var name, alias string
			ic := int(c.ChildCount())
			for j := 0; j < ic; j++ {
				id := c.Child(uint(j))
				if id == nil || id.Kind() != "identifier" {
					continue
				}
				if name == "" {
					name = astprovider.NodeText(src, id)
				} else {
					alias = astprovider.NodeText(src, id)
				}
			}
			if alias == "" {
				alias = name
			}
			names = append(names, astprovider.Import{LocalName: alias, SourceName: name})
		}
	}
	if modulePath == "" {
		return
	}
	if wildcard {
		*out = append(*out, astprovider.Import{ModulePath: modulePath, Kind: astprovider.ImportNamespace})
		return
	}
	for _, n := range names {
		n.ModulePath = modulePath
		n.Kind = astprovider.ImportNamed
		*out = append(*out, n)
	}
}
