package goprovider

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
		if n.Kind() != "call_expression" {
			return
		}
		line, col := astprovider.NodeLocation(n)
		out = append(out, astprovider.CallSite{
			CalleeText: calleeOf(n, src),
			Line:       line,
			Column:     col,
			Offset:     int(n.StartByte()),
			ArgTypes:   argTypesOf(n, src),
		})
	})
	return out
}

func calleeOf(node *sitter.Node, src []byte) string {
	count := int(node.ChildCount())
	for i := 0; i < count; i++ {
		c := node.Child(uint(i))
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "identifier", "selector_expression":
			return astprovider.NodeText(src, c)
		}
	}
	return ""
}

func argTypesOf(node *sitter.Node, src []byte) []string {
	args := astprovider.FindChildByType(node, "argument_list")
	if args == nil {
		return nil
	}
	var out []string
	count := int(args.ChildCount())
	for i := 0; i < count; i++ {
		c := args.Child(uint(i))
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "(", ")", ",":
			continue
		}
		out = append(out, astprovider.NodeText(src, c))
	}
	return out
}

// Callbacks enumerates func_literal descendants (anonymous functions passed
// as arguments or launched via `go`), consistent with the primary
// provider's treatment of inline callbacks.
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
		if n == ownerNode || n.Kind() != "func_literal" {
			return
		}
		line, col := astprovider.NodeLocation(n)
		out = append(out, astprovider.Declaration{
			Kind:       astprovider.DeclFunctionExpr,
			FilePath:   path,
			Line:       line,
			Column:     col,
			Offset:     int(n.StartByte()),
			Parameters: parametersOf(n, src, true),
			ReturnType: resultOf(n, src),
		})
	})
	return out
}

// ReceiverClass maps the method's own receiver variable to its owning type;
// Go has no `this`, so calls like `s.Validate()` resolve only when the
// selector's left-hand identifier is literally the receiver name.
func (p *Provider) ReceiverClass(f astprovider.FileAST, owner astprovider.Declaration, receiverText string) (string, bool) {
	r := root(f)
	if r == nil {
		return "", false
	}
	ownerNode := nodeAtOffset(r, owner.Offset)
	if ownerNode == nil || ownerNode.Kind() != "method_declaration" {
		return "", false
	}
	src := f.Bytes()
	if receiverNameOf(ownerNode, src) == receiverText && owner.OwningClass != "" {
		return owner.OwningClass, true
	}
	return "", false
}
