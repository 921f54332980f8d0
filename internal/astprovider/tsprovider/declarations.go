package tsprovider

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/tscallgraph/internal/astprovider"
)

// Declarations walks the file once, collecting every function-like
// declaration in source order: top-level functions, class methods
// (including constructor and get/set accessors), and name-bound arrow and
// function expressions (`const f = () => ...`).
func (p *Provider) Declarations(f astprovider.FileAST) []astprovider.Declaration {
	r := root(f)
	if r == nil {
		return nil
	}
	src := f.Bytes()
	var out []astprovider.Declaration
	stack := &classStack{}
	walkDeclarations(r, src, f.Path(), stack, &out)
	return out
}

func walkDeclarations(node *sitter.Node, src []byte, path string, stack *classStack, out *[]astprovider.Declaration) {
	if node == nil {
		return
	}
	switch node.Kind() {
	case "class_declaration":
		name := classNameOf(node, src)
		stack.push(name)
		walkChildren(node, src, path, stack, out)
		stack.pop()
		return

	case "function_declaration":
		*out = append(*out, functionDeclaration(node, src, path))

	case "method_definition":
		*out = append(*out, methodDeclaration(node, src, path, stack.top()))

	case "variable_declarator":
		if decl, ok := boundFunctionLiteral(node, src, path); ok {
			*out = append(*out, decl)
		}
	}

	walkChildren(node, src, path, stack, out)
}

func walkChildren(node *sitter.Node, src []byte, path string, stack *classStack, out *[]astprovider.Declaration) {
	count := int(node.ChildCount())
	for i := 0; i < count; i++ {
		walkDeclarations(node.Child(uint(i)), src, path, stack, out)
	}
}

func classNameOf(node *sitter.Node, src []byte) string {
	n := astprovider.FindChildByType(node, "type_identifier")
	if n == nil {
		n = astprovider.FindChildByType(node, "identifier")
	}
	return astprovider.NodeText(src, n)
}

func isAsync(node *sitter.Node, src []byte) bool {
	count := int(node.ChildCount())
	for i := 0; i < count; i++ {
		c := node.Child(uint(i))
		if c != nil && astprovider.NodeText(src, c) == "async" {
			return true
		}
	}
	return false
}

func isStaticMember(node *sitter.Node, src []byte) bool {
	count := int(node.ChildCount())
	for i := 0; i < count; i++ {
		c := node.Child(uint(i))
		if c != nil && astprovider.NodeText(src, c) == "static" {
			return true
		}
	}
	return false
}

func functionDeclaration(node *sitter.Node, src []byte, path string) astprovider.Declaration {
	nameNode := astprovider.FindChildByType(node, "identifier")
	name := astprovider.NodeText(src, nameNode)
	line, col := astprovider.NodeLocation(node)
	return astprovider.Declaration{
		Name:       name,
		Kind:       astprovider.DeclFunction,
		FilePath:   path,
		Line:       line,
		Column:     col,
		Offset:     int(node.StartByte()),
		Async:      isAsync(node, src),
		Parameters: parametersOf(node, src),
		ReturnType: returnTypeOf(node, src),
	}
}

func methodDeclaration(node *sitter.Node, src []byte, path, owningClass string) astprovider.Declaration {
	nameNode := astprovider.FindChildByType(node, "property_identifier")
	if nameNode == nil {
		nameNode = astprovider.FindChildByType(node, "identifier")
	}
	name := astprovider.NodeText(src, nameNode)

	kind := astprovider.DeclMethod
	switch {
	case name == "constructor":
		kind = astprovider.DeclConstructor
	default:
		if hasGetSetKeyword(node, src, "get") {
			kind = astprovider.DeclGetter
		} else if hasGetSetKeyword(node, src, "set") {
			kind = astprovider.DeclSetter
		}
	}

	visibility := "public"
	if len(name) > 0 && (name[0] == '#' || name[0] == '_') {
		visibility = "private"
	}

	line, col := astprovider.NodeLocation(node)
	return astprovider.Declaration{
		Name:        name,
		Kind:        kind,
		FilePath:    path,
		Line:        line,
		Column:      col,
		Offset:      int(node.StartByte()),
		Async:       isAsync(node, src),
		Static:      isStaticMember(node, src),
		Visibility:  visibility,
		OwningClass: owningClass,
		Parameters:  parametersOf(node, src),
		ReturnType:  returnTypeOf(node, src),
	}
}

// hasGetSetKeyword checks for a leading "get"/"set" token before the method
// name, distinguishing accessors from a method literally named get/set.
func hasGetSetKeyword(node *sitter.Node, src []byte, kw string) bool {
	count := int(node.ChildCount())
	for i := 0; i < count; i++ {
		c := node.Child(uint(i))
		if c == nil {
			continue
		}
		if c.Kind() == "property_identifier" {
			return false
		}
		if astprovider.NodeText(src, c) == kw {
			return true
		}
	}
	return false
}

// boundFunctionLiteral reports the declaration for `const name = () => ...`
// or `const name = function() {...}`, per spec.md §3's name-bound arrow and
// function-expression rule.
func boundFunctionLiteral(node *sitter.Node, src []byte, path string) (astprovider.Declaration, bool) {
	nameNode := astprovider.FindChildByType(node, "identifier")
	if nameNode == nil {
		return astprovider.Declaration{}, false
	}
	var value *sitter.Node
	count := int(node.ChildCount())
	for i := 0; i < count; i++ {
		c := node.Child(uint(i))
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "arrow_function", "function_expression":
			value = c
		}
	}
	if value == nil {
		return astprovider.Declaration{}, false
	}
	kind := astprovider.DeclArrow
	if value.Kind() == "function_expression" {
		kind = astprovider.DeclFunctionExpr
	}
	line, col := astprovider.NodeLocation(value)
	return astprovider.Declaration{
		Name:       astprovider.NodeText(src, nameNode),
		Kind:       kind,
		FilePath:   path,
		Line:       line,
		Column:     col,
		Offset:     int(value.StartByte()),
		Async:      isAsync(value, src),
		Parameters: parametersOf(value, src),
		ReturnType: returnTypeOf(value, src),
	}, true
}

func parametersOf(node *sitter.Node, src []byte) []astprovider.Parameter {
	params := astprovider.FindChildByType(node, "formal_parameters")
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
		case "required_parameter", "optional_parameter":
			out = append(out, typedParameter(c, src, c.Kind() == "optional_parameter"))
		case "rest_pattern":
			nameNode := astprovider.FindChildByType(c, "identifier")
			out = append(out, astprovider.Parameter{Name: "..." + astprovider.NodeText(src, nameNode)})
		}
	}
	return out
}

func typedParameter(node *sitter.Node, src []byte, optional bool) astprovider.Parameter {
	nameNode := astprovider.FindChildByType(node, "identifier")
	p := astprovider.Parameter{Name: astprovider.NodeText(src, nameNode), Optional: optional}
	if t := astprovider.FindChildByType(node, "type_annotation"); t != nil {
		p.Type = astprovider.NodeText(src, t)
	}
	count := int(node.ChildCount())
	for i := 0; i < count; i++ {
		c := node.Child(uint(i))
		if c != nil && c.Kind() == "=" && i+1 < count {
			p.Default = astprovider.NodeText(src, node.Child(uint(i+1)))
		}
	}
	return p
}

func returnTypeOf(node *sitter.Node, src []byte) string {
	t := astprovider.FindChildByType(node, "type_annotation")
	return astprovider.NodeText(src, t)
}
