// Package callgraph implements the Call-Graph Builder (spec.md §4.4): a
// depth-bounded, cycle-safe traversal from an entry-point declaration that
// enumerates call sites, resolves them via internal/resolver, and
// materializes an immutable internal/types.CallGraph.
package callgraph

import (
	"strconv"
	"time"

	"github.com/standardbeagle/tscallgraph/internal/astprovider"
	"github.com/standardbeagle/tscallgraph/internal/cgerrors"
	"github.com/standardbeagle/tscallgraph/internal/resolver"
	"github.com/standardbeagle/tscallgraph/internal/types"
)

// Config controls the traversal. The zero value is not ready to use; call
// DefaultConfig for spec-mandated defaults.
type Config struct {
	MaxDepth         int
	FollowImports    bool
	AnalyzeCallbacks bool
	CollectArgTypes  bool
}

// DefaultConfig returns spec.md §4.4's defaults: depth 10, imports
// followed, callbacks treated as reachable, argument types collected.
func DefaultConfig() Config {
	return Config{MaxDepth: 10, FollowImports: true, AnalyzeCallbacks: true, CollectArgTypes: true}
}

// Builder drives one traversal. It is not safe for concurrent use by
// multiple goroutines against the same entry point — a single traversal is
// inherently sequential per spec.md §5, since each resolution can affect
// what gets visited next.
type Builder struct {
	index    *resolver.ProjectIndex
	resolver *resolver.Resolver
	cfg      Config
}

// New builds a Builder over an already-built project index.
func New(index *resolver.ProjectIndex, cfg Config) *Builder {
	return &Builder{index: index, resolver: resolver.New(index), cfg: cfg}
}

type work struct {
	decl  astprovider.Declaration
	depth int
}

// Build runs the traversal from entry and returns the completed graph. The
// entry declaration itself must belong to a file the index knows about;
// Build fails hard (the only hard failure path in this package) if it
// cannot read that file's declarations.
func (b *Builder) Build(entryRef string, projectRoot, typeConfigPath string, entry astprovider.Declaration) (*types.CallGraph, error) {
	start := time.Now()

	entryID := resolver.NodeID(entry)
	visited := make(map[string]bool)
	nodesByID := make(map[string]types.Node)
	var nodeOrder []string
	var edges []types.Edge
	filesSeen := make(map[string]bool)

	// A work item is only ever enqueued once its depth has already been
	// checked against MaxDepth (see the two enqueue sites below), so every
	// dequeued item is visited and its node inserted unconditionally — this
	// keeps the entry itself in nodes even when MaxDepth is 0, and keeps
	// every edge's target among nodes (spec.md's "max-depth=0 ⇒ only the
	// entry" and "every edge's target is a node id present in nodes").
	queue := []work{{decl: entry, depth: 0}}
	for len(queue) > 0 {
		w := queue[0]
		queue = queue[1:]

		id := resolver.NodeID(w.decl)
		if visited[id] {
			continue
		}
		visited[id] = true

		if _, ok := b.index.FileAST(w.decl.FilePath); !ok {
			return nil, cgerrors.New(cgerrors.IOError, "entry declaration's file is not indexed").WithPath(w.decl.FilePath)
		}

		node := toNode(id, w.decl)
		nodesByID[id] = node
		nodeOrder = append(nodeOrder, id)
		filesSeen[w.decl.FilePath] = true

		provider, _ := b.index.Provider(w.decl.FilePath)
		ast, _ := b.index.FileAST(w.decl.FilePath)

		childDepth := w.depth + 1
		if childDepth >= b.cfg.MaxDepth {
			continue
		}

		for _, site := range provider.CallSites(ast, w.decl) {
			target, ok := b.resolver.ResolveCall(w.decl.FilePath, w.decl, site)
			if !ok {
				continue
			}
			if !b.cfg.FollowImports && target.FilePath != w.decl.FilePath {
				continue
			}
			targetID := resolver.NodeID(target)
			edges = append(edges, types.Edge{
				ID:       edgeID(id, targetID, len(edges)),
				Source:   id,
				Target:   targetID,
				Variant:  classify(site.Hint),
				Line:     site.Line,
				Column:   site.Column,
				ArgTypes: argTypesOrNil(b.cfg, site.ArgTypes),
			})
			queue = append(queue, work{decl: target, depth: childDepth})
		}

		if b.cfg.AnalyzeCallbacks {
			for _, cb := range provider.Callbacks(ast, w.decl) {
				cbID := resolver.NodeID(cb)
				edges = append(edges, types.Edge{
					ID:      edgeID(id, cbID, len(edges)),
					Source:  id,
					Target:  cbID,
					Variant: types.EdgeCallback,
					Line:    cb.Line,
					Column:  cb.Column,
				})
				queue = append(queue, work{decl: cb, depth: childDepth})
			}
		}
	}

	nodes := make([]types.Node, 0, len(nodeOrder))
	for _, id := range nodeOrder {
		nodes = append(nodes, nodesByID[id])
	}

	graph := &types.CallGraph{
		Metadata: types.Metadata{
			GeneratedAt:    start,
			EntryPoint:     entryRef,
			MaxDepth:       b.cfg.MaxDepth,
			ProjectRoot:    projectRoot,
			TypeConfigPath: typeConfigPath,
			TotalFilesSeen: len(filesSeen),
			AnalysisTime:   time.Since(start),
			NodeCount:      len(nodes),
			EdgeCount:      len(edges),
		},
		Nodes:        nodes,
		Edges:        edges,
		EntryPointID: entryID,
	}
	return graph, nil
}

func argTypesOrNil(cfg Config, argTypes []string) []string {
	if !cfg.CollectArgTypes {
		return nil
	}
	return argTypes
}

func classify(hint astprovider.CallHint) types.EdgeVariant {
	switch hint {
	case astprovider.HintAwait, astprovider.HintPromise:
		return types.EdgeAsync
	case astprovider.HintConstruct:
		return types.EdgeConstructor
	default:
		return types.EdgeSync
	}
}

func toNode(id string, decl astprovider.Declaration) types.Node {
	return types.Node{
		ID:          id,
		Name:        decl.Name,
		Variant:     variantOf(decl.Kind),
		FilePath:    decl.FilePath,
		Line:        decl.Line,
		Column:      decl.Column,
		Async:       decl.Async,
		Static:      decl.Static,
		Visibility:  types.Visibility(decl.Visibility),
		OwningClass: decl.OwningClass,
		Parameters:  parametersOf(decl.Parameters),
		ReturnType:  decl.ReturnType,
	}
}

func parametersOf(params []astprovider.Parameter) []types.Parameter {
	if len(params) == 0 {
		return nil
	}
	out := make([]types.Parameter, len(params))
	for i, p := range params {
		out[i] = types.Parameter{Name: p.Name, Type: p.Type, Optional: p.Optional, Default: p.Default}
	}
	return out
}

func variantOf(kind astprovider.DeclKind) types.NodeVariant {
	switch kind {
	case astprovider.DeclMethod:
		return types.NodeMethod
	case astprovider.DeclArrow:
		return types.NodeArrow
	case astprovider.DeclFunctionExpr:
		return types.NodeFunctionExpr
	case astprovider.DeclConstructor:
		return types.NodeConstructor
	case astprovider.DeclGetter:
		return types.NodeGetter
	case astprovider.DeclSetter:
		return types.NodeSetter
	default:
		return types.NodeFunction
	}
}

func edgeID(source, target string, count int) string {
	return source + "→" + target + "#" + strconv.Itoa(count)
}
