// Package types holds the data model shared by the call-graph extraction
// pipeline: the graph itself (Node, Edge, CallGraph) and the small value
// types the Project Loader, Symbol Resolver, and Call-Graph Builder pass
// between each other.
package types

import "time"

// FileID is a per-run handle type for an indexed source file. No package in
// this repository assigns one; files are identified by absolute path.
type FileID uint32

// NodeVariant classifies a function-like declaration.
type NodeVariant string

const (
	NodeFunction         NodeVariant = "function"
	NodeMethod           NodeVariant = "method"
	NodeArrow            NodeVariant = "arrow"
	NodeFunctionExpr     NodeVariant = "function-expression"
	NodeConstructor      NodeVariant = "constructor"
	NodeGetter           NodeVariant = "getter"
	NodeSetter           NodeVariant = "setter"
)

// EdgeVariant classifies a resolved call site.
type EdgeVariant string

const (
	EdgeSync        EdgeVariant = "sync"
	EdgeAsync       EdgeVariant = "async"
	EdgeCallback    EdgeVariant = "callback"
	EdgeConstructor EdgeVariant = "constructor"
)

// Visibility mirrors the target language's access modifiers. The zero value
// means "not applicable / not declared".
type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityPrivate   Visibility = "private"
	VisibilityProtected Visibility = "protected"
)

// Parameter is one formal parameter of a function-like declaration.
type Parameter struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Optional bool   `json:"optional,omitempty"`
	Default  string `json:"default,omitempty"`
}

// Node is a function-like declaration reachable from the entry point.
type Node struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Variant     NodeVariant `json:"type"`
	FilePath    string      `json:"filePath"`
	Line        int         `json:"line"`
	Column      int         `json:"column"`
	Async       bool        `json:"async"`
	Static      bool        `json:"static,omitempty"`
	Visibility  Visibility  `json:"visibility,omitempty"`
	OwningClass string      `json:"owningClass,omitempty"`
	Parameters  []Parameter `json:"parameters,omitempty"`
	ReturnType  string      `json:"returnType,omitempty"`
}

// Edge is a resolved call site between two nodes already present in the
// same graph.
type Edge struct {
	ID        string      `json:"id"`
	Source    string      `json:"source"`
	Target    string      `json:"target"`
	Variant   EdgeVariant `json:"type"`
	Line      int         `json:"line"`
	Column    int         `json:"column"`
	ArgTypes  []string    `json:"argTypes,omitempty"`
}

// Metadata carries the generation context of a CallGraph.
type Metadata struct {
	GeneratedAt     time.Time `json:"generatedAt"`
	EntryPoint      string    `json:"entryPoint"`
	MaxDepth        int       `json:"maxDepth"`
	ProjectRoot     string    `json:"projectRoot"`
	TypeConfigPath  string    `json:"typeConfigPath,omitempty"`
	TotalFilesSeen  int       `json:"totalFilesSeen"`
	AnalysisTime    time.Duration `json:"analysisDurationNanos"`
	NodeCount       int       `json:"nodeCount,omitempty"`
	EdgeCount       int       `json:"edgeCount,omitempty"`
}

// CallGraph is the neutral, in-memory output of the Call-Graph Builder.
// Once returned from Build, it is immutable: nodes and edges are never
// mutated or removed, only appended during construction.
type CallGraph struct {
	Metadata    Metadata `json:"metadata"`
	Nodes       []Node   `json:"nodes"`
	Edges       []Edge   `json:"edges"`
	EntryPointID string  `json:"entryPointId"`
}

// NodeByID returns the node with the given id, and whether it was found.
// Linear scan is intentional: call sites use it only for validation and
// small tooling, never on the traversal's hot path (which keeps its own
// map keyed by id while building).
func (g *CallGraph) NodeByID(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}
