package resolver

import (
	"strconv"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/standardbeagle/tscallgraph/internal/astprovider"
)

// maxAliasHops bounds re-export/alias chasing so a pathological import
// cycle degrades to a resolution miss instead of an infinite loop.
const maxAliasHops = 8

type cacheEntry struct {
	decl astprovider.Declaration
	ok   bool
}

// Resolver implements spec.md §4.2's three operations: resolve-identifier,
// resolve-member-access, and fully-qualified-name, backed by a ProjectIndex.
// A miss never produces a wrong answer, only a slower one: callers that
// rebuild the index see the cache invalidated along with it.
type Resolver struct {
	index *ProjectIndex

	mu    sync.Mutex
	cache map[uint64]cacheEntry
}

// New builds a Resolver over an already-built ProjectIndex.
func New(index *ProjectIndex) *Resolver {
	return &Resolver{index: index, cache: make(map[uint64]cacheEntry)}
}

// ResolveCall resolves one call site discovered inside owner (declared in
// path) to the declaration it targets. Plain identifiers are resolved via
// resolve-identifier; receiver-qualified callees (this.x, self.x, $this->x,
// Class::x) go through resolve-member-access.
func (r *Resolver) ResolveCall(path string, owner astprovider.Declaration, site astprovider.CallSite) (astprovider.Declaration, bool) {
	key := cacheKey(path, site.Offset)
	if entry, found := r.lookupCache(key); found {
		return entry.decl, entry.ok
	}
	decl, ok := r.resolveUncached(path, owner, site.CalleeText)
	r.storeCache(key, cacheEntry{decl: decl, ok: ok})
	return decl, ok
}

func (r *Resolver) lookupCache(key uint64) (cacheEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.cache[key]
	return e, ok
}

func (r *Resolver) storeCache(key uint64, e cacheEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache[key] = e
}

func cacheKey(path string, offset int) uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(path)
	_, _ = h.Write([]byte{0})
	_, _ = h.WriteString(strconv.Itoa(offset))
	return h.Sum64()
}

func (r *Resolver) resolveUncached(path string, owner astprovider.Declaration, calleeText string) (astprovider.Declaration, bool) {
	if recv, member, ok := splitReceiver(calleeText); ok {
		return r.resolveMemberAccess(path, owner, recv, member)
	}
	return r.resolveIdentifier(path, calleeText)
}

// resolveMemberAccess implements spec.md's resolve-member-access: the
// receiver expression is matched against the owning declaration's own
// receiver name (ReceiverClass), and the member is looked up on that class
// across the whole project. Receivers that aren't the enclosing instance
// (a field, a module alias, an unrelated local) are out of scope for this
// pass and fail soft.
func (r *Resolver) resolveMemberAccess(path string, owner astprovider.Declaration, recv, member string) (astprovider.Declaration, bool) {
	provider, ok := r.index.Provider(path)
	if !ok {
		return astprovider.Declaration{}, false
	}
	ast, ok := r.index.FileAST(path)
	if !ok {
		return astprovider.Declaration{}, false
	}
	class, ok := provider.ReceiverClass(ast, owner, recv)
	if !ok {
		return astprovider.Declaration{}, false
	}
	return r.index.LookupMethod(class, member)
}

// resolveIdentifier implements spec.md's resolve-identifier: same-file
// top-level declarations win first, then the file's own imports (unwinding
// aliases up to maxAliasHops), then a project-wide fallback by name. A
// namespace import never binds a callable directly, so the chain stops
// there rather than guessing.
func (r *Resolver) resolveIdentifier(path, name string) (astprovider.Declaration, bool) {
	if decl, ok := r.index.LookupLocal(path, name); ok {
		return decl, true
	}

	currentPath, currentName := path, name
	for hop := 0; hop < maxAliasHops; hop++ {
		imp, ok := findImport(r.index.Imports(currentPath), currentName)
		if !ok {
			break
		}
		if imp.Kind == astprovider.ImportNamespace {
			return astprovider.Declaration{}, false
		}
		targetPath, ok := r.index.ResolveImportTarget(currentPath, imp)
		if !ok {
			break
		}
		if decl, ok := r.index.LookupLocal(targetPath, imp.SourceName); ok {
			return decl, true
		}
		currentPath, currentName = targetPath, imp.SourceName
	}

	return r.index.LookupFunction(name)
}

func findImport(imports []astprovider.Import, localName string) (astprovider.Import, bool) {
	for _, imp := range imports {
		if imp.LocalName == localName {
			return imp, true
		}
	}
	return astprovider.Import{}, false
}

// FullyQualifiedName implements spec.md's fully-qualified-name operation:
// it is the same deterministic string the Call-Graph Builder uses as a
// node id, so a resolved call site and a graph node always agree.
func FullyQualifiedName(decl astprovider.Declaration) string {
	return NodeID(decl)
}

// splitReceiver splits a callee text like "this.validate", "$this->validate",
// "Widget::create", or "svc.process" into a receiver and member name. It
// recognizes PHP's "->" and "::" alongside the "." every other supported
// language uses; a bare identifier with no separator is not a member access.
func splitReceiver(calleeText string) (receiver, member string, ok bool) {
	if i := strings.LastIndex(calleeText, "->"); i >= 0 {
		return calleeText[:i], calleeText[i+2:], true
	}
	if i := strings.LastIndex(calleeText, "::"); i >= 0 {
		return calleeText[:i], calleeText[i+2:], true
	}
	if i := strings.LastIndex(calleeText, "."); i >= 0 {
		return calleeText[:i], calleeText[i+1:], true
	}
	return "", "", false
}
