// Package goprovider is a second Typed-AST Provider, covering Go: no
// classes, methods are `func (r T) M()`, and `::`-style owning-class suffix
// rules collapse to the receiver's base type name. Proves the Provider
// interface generalizes past the primary target language.
package goprovider

import (
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"

	"github.com/standardbeagle/tscallgraph/internal/astprovider"
)

type Provider struct {
	parser *sitter.Parser
}

func New() (*Provider, error) {
	p := &Provider{parser: sitter.NewParser()}
	lang := sitter.NewLanguage(tree_sitter_go.Language())
	if err := p.parser.SetLanguage(lang); err != nil {
		return nil, fmt.Errorf("goprovider: set language: %w", err)
	}
	return p, nil
}

func (p *Provider) Language() string    { return "go" }
func (p *Provider) Extensions() []string { return []string{".go"} }

func (p *Provider) Parse(path string, src []byte) (astprovider.FileAST, error) {
	buf := make([]byte, len(src))
	copy(buf, src)
	tree := p.parser.Parse(buf, nil)
	if tree == nil {
		return nil, fmt.Errorf("goprovider: parse failed for %s", path)
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
	return kind == "function_declaration" || kind == "method_declaration" || kind == "func_literal"
}

func (p *Provider) Declarations(f astprovider.FileAST) []astprovider.Declaration {
	r := root(f)
	if r == nil {
		return nil
	}
	src := f.Bytes()
	path := f.Path()
	var out []astprovider.Declaration
	count := int(r.ChildCount())
	for i := 0; i < count; i++ {
		walkTopLevelDecl(r.Child(uint(i)), src, path, &out)
	}
	return out
}

func walkTopLevelDecl(n *sitter.Node, src []byte, path string, out *[]astprovider.Declaration) {
	if n == nil {
		return
	}
	switch n.Kind() {
	case "function_declaration":
		*out = append(*out, functionDecl(n, src, path))
	case "method_declaration":
		*out = append(*out, methodDecl(n, src, path))
	}
}

func functionDecl(node *sitter.Node, src []byte, path string) astprovider.Declaration {
	nameNode := astprovider.FindChildByType(node, "identifier")
	line, col := astprovider.NodeLocation(node)
	return astprovider.Declaration{
		Name:       astprovider.NodeText(src, nameNode),
		Kind:       astprovider.DeclFunction,
		FilePath:   path,
		Line:       line,
		Column:     col,
		Offset:     int(node.StartByte()),
		Parameters: parametersOf(node, src, true),
		ReturnType: resultOf(node, src),
	}
}

func methodDecl(node *sitter.Node, src []byte, path string) astprovider.Declaration {
	nameNode := astprovider.FindChildByType(node, "field_identifier")
	receiverType := receiverTypeOf(node, src)
	visibility := "private"
	name := astprovider.NodeText(src, nameNode)
	if name != "" && strings.ToUpper(name[:1]) == name[:1] {
		visibility = "public"
	}
	line, col := astprovider.NodeLocation(node)
	return astprovider.Declaration{
		Name:        name,
		Kind:        astprovider.DeclMethod,
		FilePath:    path,
		Line:        line,
		Column:      col,
		Offset:      int(node.StartByte()),
		Visibility:  visibility,
		OwningClass: strings.TrimPrefix(receiverType, "*"),
		Parameters:  parametersOf(node, src, false),
		ReturnType:  resultOf(node, src),
	}
}

// receiverTypeOf returns the method's receiver type name, including a `*`
// prefix for pointer receivers (trimmed by the caller for OwningClass).
func receiverTypeOf(node *sitter.Node, src []byte) string {
	recv := astprovider.FindChildByType(node, "parameter_list")
	if recv == nil {
		return ""
	}
	count := int(recv.ChildCount())
	for i := 0; i < count; i++ {
		param := recv.Child(uint(i))
		if param == nil || param.Kind() != "parameter_declaration" {
			continue
		}
		if t := astprovider.FindChildByType(param, "type_identifier"); t != nil {
			return astprovider.NodeText(src, t)
		}
		if ptr := astprovider.FindChildByType(param, "pointer_type"); ptr != nil {
			if t := astprovider.FindChildByType(ptr, "type_identifier"); t != nil {
				return "*" + astprovider.NodeText(src, t)
			}
		}
	}
	return ""
}

// receiverNameOf returns the method receiver's local variable name (the `r`
// in `func (r T) M()`), used by ReceiverClass to map a selector's left-hand
// identifier back to the owning class.
func receiverNameOf(node *sitter.Node, src []byte) string {
	recv := astprovider.FindChildByType(node, "parameter_list")
	if recv == nil {
		return ""
	}
	count := int(recv.ChildCount())
	for i := 0; i < count; i++ {
		param := recv.Child(uint(i))
		if param == nil || param.Kind() != "parameter_declaration" {
			continue
		}
		if id := astprovider.FindChildByType(param, "identifier"); id != nil {
			return astprovider.NodeText(src, id)
		}
	}
	return ""
}

func parametersOf(node *sitter.Node, src []byte, first bool) []astprovider.Parameter {
	lists := astprovider.FindChildrenByType(node, "parameter_list")
	if len(lists) == 0 {
		return nil
	}
	target := lists[0]
	if !first && len(lists) > 1 {
		target = lists[1]
	}
	var out []astprovider.Parameter
	count := int(target.ChildCount())
	for i := 0; i < count; i++ {
		p := target.Child(uint(i))
		if p == nil || p.Kind() != "parameter_declaration" {
			continue
		}
		nameNode := astprovider.FindChildByType(p, "identifier")
		if nameNode == nil {
			continue
		}
		param := astprovider.Parameter{Name: astprovider.NodeText(src, nameNode)}
		pc := int(p.ChildCount())
		for j := 0; j < pc; j++ {
			c := p.Child(uint(j))
			if c == nil || c == nameNode {
				continue
			}
			switch c.Kind() {
			case "type_identifier", "pointer_type", "slice_type", "array_type", "map_type", "interface_type", "qualified_type":
				param.Type = astprovider.NodeText(src, c)
			}
		}
		out = append(out, param)
	}
	return out
}

func resultOf(node *sitter.Node, src []byte) string {
	lists := astprovider.FindChildrenByType(node, "parameter_list")
	// the result, if parenthesized, is itself a parameter_list; a bare
	// single type result shows up as a direct type node instead.
	for _, kind := range []string{"type_identifier", "pointer_type", "qualified_type", "slice_type"} {
		if t := astprovider.FindChildByType(node, kind); t != nil && t.Parent() == node {
			return astprovider.NodeText(src, t)
		}
	}
	if len(lists) > 1 {
		return astprovider.NodeText(src, lists[len(lists)-1])
	}
	return ""
}
