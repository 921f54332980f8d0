package resolver

import (
	"fmt"

	"github.com/standardbeagle/tscallgraph/internal/astprovider"
)

// NodeID computes the deterministic node id for a declaration, per the
// node-id scheme fixed by this repository's Open Question decision: `.`
// for static members and constructors, `::` for instance members,
// `Class::get:prop` / `Class::set:prop` for accessors (static variants use
// `.`), a bare name for top-level functions, the binding name for named
// arrow/function expressions, and a byte-offset fallback for anonymous
// nodes. internal/callgraph reuses this function so the builder and the
// resolver never disagree on identity.
func NodeID(decl astprovider.Declaration) string {
	return fmt.Sprintf("%s#%s", decl.FilePath, disambiguator(decl))
}

func disambiguator(decl astprovider.Declaration) string {
	switch decl.Kind {
	case astprovider.DeclConstructor:
		return decl.OwningClass + ".constructor"
	case astprovider.DeclMethod:
		if decl.Static {
			return decl.OwningClass + "." + decl.Name
		}
		return decl.OwningClass + "::" + decl.Name
	case astprovider.DeclGetter:
		if decl.Static {
			return decl.OwningClass + ".get:" + decl.Name
		}
		return decl.OwningClass + "::get:" + decl.Name
	case astprovider.DeclSetter:
		if decl.Static {
			return decl.OwningClass + ".set:" + decl.Name
		}
		return decl.OwningClass + "::set:" + decl.Name
	case astprovider.DeclFunction:
		return decl.Name
	case astprovider.DeclArrow, astprovider.DeclFunctionExpr:
		if decl.Name != "" {
			return decl.Name
		}
		return fmt.Sprintf("%d", decl.Offset)
	default:
		return fmt.Sprintf("%d", decl.Offset)
	}
}
