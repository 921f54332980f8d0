package pyprovider

import (
	"strings"

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

// walkDeclarations descends the module tree carrying the enclosing class
// name (nil outside any class), stopping at function bodies: defs nested
// inside a function are not reported (Callbacks lists only lambdas).
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
		case "function_definition", "async_function_definition":
			decl := functionDef(child, src, path, class, child.Kind() == "async_function_definition")
			*out = append(*out, decl)
		case "class_definition":
			name := astprovider.NodeText(src, astprovider.FindChildByType(child, "identifier"))
			body := astprovider.FindChildByType(child, "block")
			walkDeclarations(body, src, path, &name, out)
		case "decorated_definition":
			walkDeclarations(child, src, path, class, out)
		default:
			walkDeclarations(child, src, path, class, out)
		}
	}
}

func functionDef(node *sitter.Node, src []byte, path string, class *string, async bool) astprovider.Declaration {
	nameNode := astprovider.FindChildByType(node, "identifier")
	name := astprovider.NodeText(src, nameNode)
	line, col := astprovider.NodeLocation(node)

	decl := astprovider.Declaration{
		Name:       name,
		FilePath:   path,
		Line:       line,
		Column:     col,
		Offset:     int(node.StartByte()),
		Async:      async,
		Parameters: parametersOf(node, src),
		ReturnType: returnTypeOf(node, src),
	}

	decorators := decoratorsOf(node, src)
	if class != nil {
		decl.Kind = astprovider.DeclMethod
		decl.OwningClass = *class
		if isPublic(name) {
			decl.Visibility = "public"
		} else {
			decl.Visibility = "private"
		}
		if name == "__init__" {
			decl.Kind = astprovider.DeclConstructor
		}
		if hasDecorator(decorators, "property") {
			decl.Kind = astprovider.DeclGetter
		}
	} else {
		decl.Kind = astprovider.DeclFunction
		decl.Visibility = "public"
	}
	return decl
}

func decoratorsOf(node *sitter.Node, src []byte) []string {
	parent := node.Parent()
	if parent == nil || parent.Kind() != "decorated_definition" {
		return nil
	}
	var out []string
	count := int(parent.ChildCount())
	for i := 0; i < count; i++ {
		c := parent.Child(uint(i))
		if c == nil || c == node {
			break
		}
		if c.Kind() == "decorator" {
			out = append(out, decoratorName(c, src))
		}
	}
	return out
}

func decoratorName(node *sitter.Node, src []byte) string {
	count := int(node.ChildCount())
	for i := 0; i < count; i++ {
		c := node.Child(uint(i))
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "identifier", "attribute":
			return astprovider.NodeText(src, c)
		case "call":
			fn := astprovider.FindChildByType(c, "identifier")
			if fn == nil {
				fn = astprovider.FindChildByType(c, "attribute")
			}
			return astprovider.NodeText(src, fn)
		}
	}
	return ""
}

func hasDecorator(decorators []string, name string) bool {
	for _, d := range decorators {
		if d == name || strings.HasSuffix(d, "."+name) {
			return true
		}
	}
	return false
}

func parametersOf(node *sitter.Node, src []byte) []astprovider.Parameter {
	params := astprovider.FindChildByType(node, "parameters")
	if params == nil {
		return nil
	}
	var out []astprovider.Parameter
	count := int(params.ChildCount())
	for i := 0; i < count; i++ {
		c := params.Child(uint(i))
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "identifier":
			out = append(out, astprovider.Parameter{Name: astprovider.NodeText(src, c)})
		case "typed_parameter", "default_parameter", "typed_default_parameter":
			nameNode := astprovider.FindChildByType(c, "identifier")
			if nameNode == nil {
				continue
			}
			param := astprovider.Parameter{Name: astprovider.NodeText(src, nameNode)}
			if t := astprovider.FindChildByType(c, "type"); t != nil {
				param.Type = astprovider.NodeText(src, t)
			}
			out = append(out, param)
		case "list_splat_pattern":
			if id := astprovider.FindChildByType(c, "identifier"); id != nil {
				out = append(out, astprovider.Parameter{Name: "*" + astprovider.NodeText(src, id)})
			}
		case "dictionary_splat_pattern":
			if id := astprovider.FindChildByType(c, "identifier"); id != nil {
				out = append(out, astprovider.Parameter{Name: "**" + astprovider.NodeText(src, id)})
			}
		}
	}
	return out
}

func returnTypeOf(node *sitter.Node, src []byte) string {
	t := astprovider.FindChildByType(node, "type")
	if t == nil {
		return ""
	}
	return astprovider.NodeText(src, t)
}

// selfParamName returns the declared name of a method's first parameter
// (conventionally "self"), since Python does not reserve the word.
func selfParamName(node *sitter.Node, src []byte) string {
	params := astprovider.FindChildByType(node, "parameters")
	if params == nil {
		return ""
	}
	count := int(params.ChildCount())
	for i := 0; i < count; i++ {
		c := params.Child(uint(i))
		if c == nil {
			continue
		}
		if c.Kind() == "identifier" {
			return astprovider.NodeText(src, c)
		}
		if c.Kind() == "typed_parameter" || c.Kind() == "default_parameter" {
			if id := astprovider.FindChildByType(c, "identifier"); id != nil {
				return astprovider.NodeText(src, id)
			}
		}
	}
	return ""
}
