package phpprovider

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/tscallgraph/internal/astprovider"
)

func nodeAtOffset(r *sitter.Node, offset int) *sitter.Node {
	var found *sitter.Node
	astprovider.Walk(r, func(n *sitter.Node) bool {
		if found != nil {
			return false
		}
		if isFunctionLike(n.Kind()) && int(n.StartByte()) == offset {
			found = n
			return false
		}
		return true
	})
	return found
}

func walkBody(root *sitter.Node, visit func(*sitter.Node)) {
	var rec func(n *sitter.Node, top bool)
	rec = func(n *sitter.Node, top bool) {
		if n == nil {
			return
		}
		if !top && isFunctionLike(n.Kind()) {
			visit(n)
			return
		}
		visit(n)
		count := int(n.ChildCount())
		for i := 0; i < count; i++ {
			rec(n.Child(uint(i)), false)
		}
	}
	rec(root, true)
}

func (p *Provider) CallSites(f astprovider.FileAST, owner astprovider.Declaration) []astprovider.CallSite {
	r := root(f)
	if r == nil {
		return nil
	}
	ownerNode := nodeAtOffset(r, owner.Offset)
	if ownerNode == nil {
		return nil
	}
	src := f.Bytes()
	var out []astprovider.CallSite
	walkBody(ownerNode, func(n *sitter.Node) {
		switch n.Kind() {
		case "function_call_expression", "member_call_expression", "scoped_call_expression":
			line, col := astprovider.NodeLocation(n)
			out = append(out, astprovider.CallSite{
				CalleeText: calleeOf(n, src),
				Line:       line,
				Column:     col,
				Offset:     int(n.StartByte()),
				Hint:       classify(n),
				ArgTypes:   argTypesOf(n, src),
			})
		case "object_creation_expression":
			line, col := astprovider.NodeLocation(n)
			out = append(out, astprovider.CallSite{
				CalleeText: constructedClass(n, src),
				Line:       line,
				Column:     col,
				Offset:     int(n.StartByte()),
				Hint:       astprovider.HintConstruct,
				ArgTypes:   argTypesOf(n, src),
			})
		}
	})
	return out
}

func calleeOf(node *sitter.Node, src []byte) string {
	switch node.Kind() {
	case "function_call_expression":
		if n := astprovider.FindChildByType(node, "name"); n != nil {
			return astprovider.NodeText(src, n)
		}
		if n := astprovider.FindChildByType(node, "qualified_name"); n != nil {
			return astprovider.NodeText(src, n)
		}
	case "member_call_expression":
		obj := node.Child(0)
		name := astprovider.FindChildByType(node, "name")
		if obj != nil && name != nil {
			return astprovider.NodeText(src, obj) + "->" + astprovider.NodeText(src, name)
		}
	case "scoped_call_expression":
		obj := node.Child(0)
		name := astprovider.FindChildByType(node, "name")
		if obj != nil && name != nil {
			return astprovider.NodeText(src, obj) + "::" + astprovider.NodeText(src, name)
		}
	}
	return astprovider.NodeText(src, node)
}

func constructedClass(node *sitter.Node, src []byte) string {
	if n := astprovider.FindChildByType(node, "name"); n != nil {
		return astprovider.NodeText(src, n)
	}
	if n := astprovider.FindChildByType(node, "qualified_name"); n != nil {
		return astprovider.NodeText(src, n)
	}
	return ""
}

// classify returns HintNone for every call: core PHP has no native await,
// so call expressions are always sync. Object creation gets HintConstruct
// directly in CallSites, not here.
func classify(node *sitter.Node) astprovider.CallHint {
	return astprovider.HintNone
}

func argTypesOf(node *sitter.Node, src []byte) []string {
	args := astprovider.FindChildByType(node, "arguments")
	if args == nil {
		return nil
	}
	var out []string
	count := int(args.ChildCount())
	for i := 0; i < count; i++ {
		c := args.Child(uint(i))
		if c == nil || c.Kind() == "(" || c.Kind() == ")" || c.Kind() == "," {
			continue
		}
		out = append(out, astprovider.NodeText(src, c))
	}
	return out
}

// Callbacks enumerates anonymous functions and arrow functions passed as
// arguments, PHP's equivalent of an inline callback.
func (p *Provider) Callbacks(f astprovider.FileAST, owner astprovider.Declaration) []astprovider.Declaration {
	r := root(f)
	if r == nil {
		return nil
	}
	ownerNode := nodeAtOffset(r, owner.Offset)
	if ownerNode == nil {
		return nil
	}
	src := f.Bytes()
	path := f.Path()
	var out []astprovider.Declaration
	walkBody(ownerNode, func(n *sitter.Node) {
		if n == ownerNode {
			return
		}
		if n.Kind() != "anonymous_function_creation_expression" && n.Kind() != "arrow_function" {
			return
		}
		line, col := astprovider.NodeLocation(n)
		out = append(out, astprovider.Declaration{
			Kind:       astprovider.DeclFunctionExpr,
			FilePath:   path,
			Line:       line,
			Column:     col,
			Offset:     int(n.StartByte()),
			Parameters: parametersOf(n, src),
		})
	})
	return out
}

// ReceiverClass resolves `$this->method()` calls; PHP's `$this` is a
// reserved variable, so unlike the Go or Python providers no per-method
// lookup of the receiver's declared name is required.
func (p *Provider) ReceiverClass(f astprovider.FileAST, owner astprovider.Declaration, receiverText string) (string, bool) {
	if receiverText == "$this" && owner.OwningClass != "" {
		return owner.OwningClass, true
	}
	return "", false
}
