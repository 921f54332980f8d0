package tsprovider

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/tscallgraph/internal/astprovider"
)

// Imports lists the file's import bindings. require() calls are treated as
// a default-shaped import so CommonJS and ES module projects resolve the
// same way downstream.
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
			out = append(out, importStatement(n, src)...)
		case "export_statement":
			if reexp, ok := reexportStatement(n, src); ok {
				out = append(out, reexp...)
			}
		}
		return true
	})
	return out
}

func stringLiteralValue(n *sitter.Node, src []byte) string {
	text := astprovider.NodeText(src, n)
	if len(text) >= 2 {
		return text[1 : len(text)-1]
	}
	return text
}

func importStatement(node *sitter.Node, src []byte) []astprovider.Import {
	var modulePath string
	if s := astprovider.FindChildByType(node, "string"); s != nil {
		modulePath = stringLiteralValue(s, src)
	}
	if modulePath == "" {
		return nil
	}

	clause := astprovider.FindChildByType(node, "import_clause")
	if clause == nil {
		return nil
	}

	var out []astprovider.Import

	if def := astprovider.FindChildByType(clause, "identifier"); def != nil {
		out = append(out, astprovider.Import{
			LocalName:  astprovider.NodeText(src, def),
			SourceName: "default",
			ModulePath: modulePath,
			Kind:       astprovider.ImportDefault,
		})
	}

	if named := astprovider.FindChildByType(clause, "named_imports"); named != nil {
		count := int(named.ChildCount())
		for i := 0; i < count; i++ {
			c := named.Child(uint(i))
			if c == nil || c.Kind() != "import_specifier" {
				continue
			}
			idents := identifierChildren(c, src)
			if len(idents) == 0 {
				continue
			}
			local := idents[0]
			source := idents[0]
			if len(idents) > 1 {
				local = idents[len(idents)-1]
			}
			out = append(out, astprovider.Import{
				LocalName:  local,
				SourceName: source,
				ModulePath: modulePath,
				Kind:       astprovider.ImportNamed,
			})
		}
	}

	if ns := astprovider.FindChildByType(clause, "namespace_import"); ns != nil {
		if id := astprovider.FindChildByType(ns, "identifier"); id != nil {
			out = append(out, astprovider.Import{
				LocalName:  astprovider.NodeText(src, id),
				ModulePath: modulePath,
				Kind:       astprovider.ImportNamespace,
			})
		}
	}

	return out
}

func identifierChildren(node *sitter.Node, src []byte) []string {
	var names []string
	count := int(node.ChildCount())
	for i := 0; i < count; i++ {
		c := node.Child(uint(i))
		if c != nil && c.Kind() == "identifier" {
			names = append(names, astprovider.NodeText(src, c))
		}
	}
	return names
}

func reexportStatement(node *sitter.Node, src []byte) ([]astprovider.Import, bool) {
	sourceNode := astprovider.FindChildByType(node, "string")
	clause := astprovider.FindChildByType(node, "export_clause")
	if sourceNode == nil || clause == nil {
		return nil, false
	}
	modulePath := stringLiteralValue(sourceNode, src)
	var out []astprovider.Import
	count := int(clause.ChildCount())
	for i := 0; i < count; i++ {
		c := clause.Child(uint(i))
		if c == nil || c.Kind() != "export_specifier" {
			continue
		}
		idents := identifierChildren(c, src)
		if len(idents) == 0 {
			continue
		}
		out = append(out, astprovider.Import{
			LocalName:  idents[len(idents)-1],
			SourceName: idents[0],
			ModulePath: modulePath,
			Kind:       astprovider.ImportReexport,
		})
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}
