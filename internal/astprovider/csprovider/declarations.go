package csprovider

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
		case "method_declaration":
			*out = append(*out, methodDecl(child, src, path, class, astprovider.DeclMethod))
		case "constructor_declaration":
			*out = append(*out, methodDecl(child, src, path, class, astprovider.DeclConstructor))
		case "class_declaration", "struct_declaration", "record_declaration", "interface_declaration":
			name := astprovider.NodeText(src, astprovider.FindChildByType(child, "identifier"))
			body := astprovider.FindChildByType(child, "declaration_list")
			walkDeclarations(body, src, path, &name, out)
		case "namespace_declaration", "file_scoped_namespace_declaration":
			walkDeclarations(child, src, path, class, out)
		default:
			walkDeclarations(child, src, path, class, out)
		}
	}
}

func methodDecl(node *sitter.Node, src []byte, path string, class *string, kind astprovider.DeclKind) astprovider.Declaration {
	nameNode := astprovider.FindChildByType(node, "identifier")
	name := astprovider.NodeText(src, nameNode)
	line, col := astprovider.NodeLocation(node)
	mods := extractModifiers(node, src)

	decl := astprovider.Declaration{
		Name:       name,
		Kind:       kind,
		FilePath:   path,
		Line:       line,
		Column:     col,
		Offset:     int(node.StartByte()),
		Visibility: visibilityFromModifiers(mods),
		Static:     hasModifier(mods, "static"),
		Async:      hasModifier(mods, "async"),
		Parameters: parametersOf(node, src),
		ReturnType: returnTypeOf(node, src),
	}
	if class != nil {
		decl.OwningClass = *class
	}
	return decl
}

func parametersOf(node *sitter.Node, src []byte) []astprovider.Parameter {
	list := astprovider.FindChildByType(node, "parameter_list")
	if list == nil {
		return nil
	}
	var out []astprovider.Parameter
	count := int(list.ChildCount())
	for i := 0; i < count; i++ {
		c := list.Child(uint(i))
		if c == nil || c.Kind() != "parameter" {
			continue
		}
		nameNode := astprovider.FindChildByType(c, "identifier")
		if nameNode == nil {
			continue
		}
		param := astprovider.Parameter{Name: astprovider.NodeText(src, nameNode)}
		pc := int(c.ChildCount())
		for j := 0; j < pc; j++ {
			tc := c.Child(uint(j))
			if tc == nil || tc == nameNode {
				continue
			}
			switch tc.Kind() {
			case "predefined_type", "identifier_name", "generic_name", "nullable_type", "array_type", "qualified_name":
				param.Type = astprovider.NodeText(src, tc)
			}
		}
		out = append(out, param)
	}
	return out
}

// returnTypeOf reports a method's declared return type: the node that
// precedes the method's own name identifier and parameter list, skipping
// modifier keywords.
func returnTypeOf(node *sitter.Node, src []byte) string {
	nameNode := astprovider.FindChildByType(node, "identifier")
	if nameNode == nil {
		return ""
	}
	count := int(node.ChildCount())
	for i := 0; i < count; i++ {
		c := node.Child(uint(i))
		if c == nameNode {
			break
		}
		switch c.Kind() {
		case "predefined_type", "identifier_name", "generic_name", "nullable_type", "array_type", "qualified_name", "void_keyword":
			return astprovider.NodeText(src, c)
		}
	}
	return ""
}
