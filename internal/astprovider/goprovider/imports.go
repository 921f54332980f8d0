package goprovider

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
	count := int(r.ChildCount())
	for i := 0; i < count; i++ {
		decl := r.Child(uint(i))
		if decl == nil || decl.Kind() != "import_declaration" {
			continue
		}
		if list := astprovider.FindChildByType(decl, "import_spec_list"); list != nil {
			lc := int(list.ChildCount())
			for j := 0; j < lc; j++ {
				if spec := list.Child(uint(j)); spec != nil && spec.Kind() == "import_spec" {
					out = append(out, importSpec(spec, src))
				}
			}
			continue
		}
		if spec := astprovider.FindChildByType(decl, "import_spec"); spec != nil {
			out = append(out, importSpec(spec, src))
		}
	}
	return out
}

func importSpec(spec *sitter.Node, src []byte) astprovider.Import {
	var path, alias string
	count := int(spec.ChildCount())
	for i := 0; i < count; i++ {
		c := spec.Child(uint(i))
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "package_identifier", "blank_identifier":
			alias = astprovider.NodeText(src, c)
		case "interpreted_string_literal":
			text := astprovider.NodeText(src, c)
			if len(text) >= 2 {
				path = text[1 : len(text)-1]
			}
		case "dot":
			alias = "."
		}
	}
	kind := astprovider.ImportNamespace
	if alias == "" {
		parts := strings.Split(path, "/")
		alias = parts[len(parts)-1]
		kind = astprovider.ImportDefault
	}
	return astprovider.Import{LocalName: alias, SourceName: alias, ModulePath: path, Kind: kind}
}
