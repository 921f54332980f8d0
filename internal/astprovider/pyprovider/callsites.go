package pyprovider

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
		if n.Kind() != "call" {
			return
		}
		callee := calleeOf(n, src)
		line, col := astprovider.NodeLocation(n)
		out = append(out, astprovider.CallSite{
			CalleeText: callee,
			Line:       line,
			Column:     col,
			Offset:     int(n.StartByte()),
			Hint:       classify(n, callee),
			ArgTypes:   argTypesOf(n, src),
		})
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

// classify honors await-wrapping for async hints and treats a call to a
// capitalized name as a constructor, the idiomatic Python stand-in for a
// `new` keyword: classes conventionally start with an uppercase letter.
func classify(node *sitter.Node, callee string) astprovider.CallHint {
	if parent := node.Parent(); parent != nil && parent.Kind() == "await" {
		return astprovider.HintAwait
	}
	name := callee
	for i := len(callee) - 1; i >= 0; i-- {
		if callee[i] == '.' {
			name = callee[i+1:]
			break
		}
	}
	if name != "" && name[0] >= 'A' && name[0] <= 'Z' {
		return astprovider.HintConstruct
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

// Callbacks enumerates lambda expressions in the declaration's body, the
// closest Python analogue to an inline arrow-function callback.
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
		if n == ownerNode || n.Kind() != "lambda" {
			return
		}
		line, col := astprovider.NodeLocation(n)
		out = append(out, astprovider.Declaration{
			Kind:     astprovider.DeclArrow,
			FilePath: path,
			Line:     line,
			Column:   col,
			Offset:   int(n.StartByte()),
		})
	})
	return out
}

// ReceiverClass resolves `self.method()` calls to the owning method's
// class, matching whatever name the method itself gave its first
// parameter rather than assuming the literal word "self".
func (p *Provider) ReceiverClass(f astprovider.FileAST, owner astprovider.Declaration, receiverText string) (string, bool) {
	r := root(f)
	if r == nil {
		return "", false
	}
	ownerNode := nodeAtOffset(r, owner.Offset)
	if ownerNode == nil || owner.OwningClass == "" {
		return "", false
	}
	src := f.Bytes()
	if selfParamName(ownerNode, src) == receiverText {
		return owner.OwningClass, true
	}
	return "", false
}
