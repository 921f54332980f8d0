package tsprovider

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/tscallgraph/internal/astprovider"
)

func isFunctionLike(kind string) bool {
	switch kind {
	case "function_declaration", "function_expression", "arrow_function", "method_definition":
		return true
	}
	return false
}

// nodeAtOffset locates the function-like node whose first token starts at
// offset. Declarations and CallSites/Callbacks agree on this offset, so the
// core can hand a Declaration back to the provider without keeping its own
// tree-sitter handles alive across calls.
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

// walkBody visits every call_expression (or, for collectCallbacks,
// arrow_function/function_expression) reachable from root without
// descending into a nested function-like boundary — a lambda passed to
// `.map` is scanned, but a lambda's own nested lambda is left for its own
// traversal depth, matching the Call-Graph Builder's recursion model.
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
		out = append(out, callSiteOf(n, src))
	})
	return out
}

func callSiteOf(node *sitter.Node, src []byte) astprovider.CallSite {
	callee := calleeOf(node, src)
	line, col := astprovider.NodeLocation(node)
	hint := astprovider.HintNone
	if awaitedBy(node) {
		hint = astprovider.HintAwait
	} else if isPromiseContinuation(callee) {
		hint = astprovider.HintPromise
	} else if constructedBy(node) {
		hint = astprovider.HintConstruct
	}
	return astprovider.CallSite{
		CalleeText: callee,
		Line:       line,
		Column:     col,
		Offset:     int(node.StartByte()),
		ArgTypes:   argTypesOf(node, src),
		Hint:       hint,
	}
}

func calleeOf(node *sitter.Node, src []byte) string {
	count := int(node.ChildCount())
	for i := 0; i < count; i++ {
		c := node.Child(uint(i))
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "identifier", "member_expression":
			return astprovider.NodeText(src, c)
		}
	}
	return ""
}

func isPromiseContinuation(calleeText string) bool {
	for _, m := range []string{".then", ".catch", ".finally"} {
		if len(calleeText) > len(m) && calleeText[len(calleeText)-len(m):] == m {
			return true
		}
	}
	return false
}

// awaitedBy reports whether node is the direct operand of an await
// expression, i.e. its parent is "await_expression".
func awaitedBy(node *sitter.Node) bool {
	parent := node.Parent()
	return parent != nil && parent.Kind() == "await_expression"
}

// constructedBy reports whether node's call is actually a `new` expression
// target — tree-sitter-typescript models `new X()` as new_expression wrapping
// the callee and arguments directly, not a call_expression, so this only
// fires when a call_expression is itself the constructor argument list owner
// walked from a new_expression ancestor one level up.
func constructedBy(node *sitter.Node) bool {
	parent := node.Parent()
	return parent != nil && parent.Kind() == "new_expression"
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
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "(", ")", ",":
			continue
		}
		out = append(out, staticTypeGuess(c, src))
	}
	return out
}

// staticTypeGuess gives a best-effort textual type for an argument
// expression without a type checker: literal kinds map to their JS type
// name, everything else falls back to its source text.
func staticTypeGuess(node *sitter.Node, src []byte) string {
	switch node.Kind() {
	case "string":
		return "string"
	case "number":
		return "number"
	case "true", "false":
		return "boolean"
	default:
		return astprovider.NodeText(src, node)
	}
}

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
		switch n.Kind() {
		case "arrow_function":
			out = append(out, inlineLambda(n, src, path, astprovider.DeclArrow))
		case "function_expression":
			out = append(out, inlineLambda(n, src, path, astprovider.DeclFunctionExpr))
		}
	})
	return out
}

func inlineLambda(node *sitter.Node, src []byte, path string, kind astprovider.DeclKind) astprovider.Declaration {
	name := ""
	if parent := node.Parent(); parent != nil && parent.Kind() == "variable_declarator" {
		if id := astprovider.FindChildByType(parent, "identifier"); id != nil {
			name = astprovider.NodeText(src, id)
		}
	}
	line, col := astprovider.NodeLocation(node)
	return astprovider.Declaration{
		Name:       name,
		Kind:       kind,
		FilePath:   path,
		Line:       line,
		Column:     col,
		Offset:     int(node.StartByte()),
		Async:      isAsync(node, src),
		Parameters: parametersOf(node, src),
		ReturnType: returnTypeOf(node, src),
	}
}

// ReceiverClass resolves `this` to the owner's own class, and otherwise
// gives up: tracking a local variable's constructed class through
// reassignment needs real type information the tree-sitter grammar does not
// give us, and spec.md's Non-goals explicitly exclude following calls
// through values whose type has been erased.
func (p *Provider) ReceiverClass(f astprovider.FileAST, owner astprovider.Declaration, receiverText string) (string, bool) {
	if receiverText == "this" && owner.OwningClass != "" {
		return owner.OwningClass, true
	}
	return "", false
}
