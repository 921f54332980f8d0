package phpprovider

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/tscallgraph/internal/astprovider"
)

func (p *Provider) Declarations(f astprovider.FileAST) []astprovider.Declaration {
	r := root(f)
	if r == nil {
		return nil
	}
	src := f.Bytes()
	path := f.Path()
	var out []astprovider.Declaration
	walkDeclarations(r, src, path, nil, &out)
	return out
}

func walkDeclarations(n *sitter.Node, src []byte, path string, class *string, out *[]astprovider.Declaration) {
	if n == nil {
		return
	}
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		child := n.Child(uint(i))
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "function_definition":
			*out = append(*out, functionDecl(child, src, path))
		case "method_declaration":
			*out = append(*out, methodDecl(child, src, path, class))
		case "class_declaration", "interface_declaration", "trait_declaration", "enum_declaration":
			name := astprovider.NodeText(src, astprovider.FindChildByType(child, "name"))
			body := astprovider.FindChildByType(child, "declaration_list")
			walkDeclarations(body, src, path, &name, out)
		default:
			walkDeclarations(child, src, path, class, out)
		}
	}
}

func functionDecl(node *sitter.Node, src []byte, path string) astprovider.Declaration {
	name := astprovider.NodeText(src, astprovider.FindChildByType(node, "name"))
	line, col := astprovider.NodeLocation(node)
	return astprovider.Declaration{
		Name:       name,
		Kind:       astprovider.DeclFunction,
		FilePath:   path,
		Line:       line,
		Column:     col,
		Offset:     int(node.StartByte()),
		Visibility: "public",
		Parameters: parametersOf(node, src),
		ReturnType: returnTypeOf(node, src),
	}
}

func methodDecl(node *sitter.Node, src []byte, path string, class *string) astprovider.Declaration {
	name := astprovider.NodeText(src, astprovider.FindChildByType(node, "name"))
	line, col := astprovider.NodeLocation(node)
	visibility := extractVisibility(node, src)
	static := hasModifier(node, src, "static")

	kind := astprovider.DeclMethod
	if name == "__construct" {
		kind = astprovider.DeclConstructor
	} else if name == "__get" {
		kind = astprovider.DeclGetter
	} else if name == "__set" {
		kind = astprovider.DeclSetter
	}

	decl := astprovider.Declaration{
		Name:       name,
		Kind:       kind,
		FilePath:   path,
		Line:       line,
		Column:     col,
		Offset:     int(node.StartByte()),
		Visibility: visibility,
		Static:     static,
		Parameters: parametersOf(node, src),
		ReturnType: returnTypeOf(node, src),
	}
	if class != nil {
		decl.OwningClass = *class
	}
	return decl
}

func parametersOf(node *sitter.Node, src []byte) []astprovider.Parameter {
	list := astprovider.FindChildByType(node, "formal_parameters")
	if list == nil {
		return nil
	}
	var out []astprovider.Parameter
	count := int(list.ChildCount())
	for i := 0; i < count; i++ {
		c := list.Child(uint(i))
		if c == nil || (c.Kind() != "simple_parameter" && c.Kind() != "variadic_parameter") {
			continue
		}
		nameNode := astprovider.FindChildByType(c, "variable_name")
		if nameNode == nil {
			continue
		}
		param := astprovider.Parameter{Name: astprovider.NodeText(src, nameNode)}
		if t := astprovider.FindChildByType(c, "type"); t != nil {
			param.Type = astprovider.NodeText(src, t)
		} else if t := astprovider.FindChildByType(c, "named_type"); t != nil {
			param.Type = astprovider.NodeText(src, t)
		}
		out = append(out, param)
	}
	return out
}

func returnTypeOf(node *sitter.Node, src []byte) string {
	t := astprovider.FindChildByType(node, "return_type")
	if t == nil {
		return ""
	}
	return astprovider.NodeText(src, t)
}
