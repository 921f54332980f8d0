package csprovider

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
		case "invocation_expression":
			line, col := astprovider.NodeLocation(n)
			out = append(out, astprovider.CallSite{
				CalleeText: calleeOf(n, src),
				Line:       line,
				Column:     col,
				Offset:     int(n.StartByte()),
				Hint:       classify(n, src),
				ArgTypes:   argTypesOf(n, src),
			})
		case "object_creation_expression":
			line, col := astprovider.NodeLocation(n)
			typeNode := n.Child(1)
			text := ""
			if typeNode != nil {
				text = astprovider.NodeText(src, typeNode)
			}
			out = append(out, astprovider.CallSite{
				CalleeText: text,
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
	c := node.Child(0)
	if c == nil {
		return ""
	}
	return astprovider.NodeText(src, c)
}

// classify honors `await` wrapping and `.ConfigureAwait`/Task-returning
// continuation chains the way the primary provider does for Promises.
func classify(node *sitter.Node, src []byte) astprovider.CallHint {
	if parent := node.Parent(); parent != nil && parent.Kind() == "await_expression" {
		return astprovider.HintAwait
	}
	callee := calleeOf(node, src)
	for _, suffix := range []string{".ContinueWith", ".ConfigureAwait"} {
		if len(callee) >= len(suffix) && callee[len(callee)-len(suffix):] == suffix {
			return astprovider.HintPromise
		}
	}
	return astprovider.HintNone
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
		if c == nil || c.Kind() == "(" || c.Kind() == ")" || c.Kind() == "," {
			continue
		}
		out = append(out, astprovider.NodeText(src, c))
	}
	return out
}

// Callbacks enumerates lambda and anonymous-method expressions, C#'s
// equivalent of an inline arrow-function callback.
func (p *Provider) Callbacks(f astprovider.FileAST, owner astprovider.Declaration) []astprovider.Declaration {
	r := root(f)
	if r == nil {
		return nil
	}
	ownerNode := nodeAtOffset(r, owner.Offset)
	if ownerNode == nil {
		return nil
	}
	path := f.Path()
	var out []astprovider.Declaration
	walkBody(ownerNode, func(n *sitter.Node) {
		if n == ownerNode {
			return
		}
		if n.Kind() != "lambda_expression" && n.Kind() != "anonymous_method_expression" {
			return
		}
		line, col := astprovider.NodeLocation(n)
		out = append(out, astprovider.Declaration{
			Kind:     astprovider.DeclFunctionExpr,
			FilePath: path,
			Line:     line,
			Column:   col,
			Offset:   int(n.StartByte()),
		})
	})
	return out
}

// ReceiverClass resolves `this.Method()` calls; `this` is reserved in C#
// so, unlike the Go provider, no per-method lookup of a receiver variable
// name is required.
func (p *Provider) ReceiverClass(f astprovider.FileAST, owner astprovider.Declaration, receiverText string) (string, bool) {
	if receiverText == "this" && owner.OwningClass != "" {
		return owner.OwningClass, true
	}
	return "", false
}
