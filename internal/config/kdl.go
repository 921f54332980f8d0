package config

import (
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// applyKDL overlays the nodes of a .callgraph.kdl document onto cfg.
// Unrecognized nodes are ignored rather than rejected, matching the
// teacher's KDL config loader.
func applyKDL(cfg *Config, raw []byte) error {
	doc, err := kdl.Parse(strings.NewReader(string(raw)))
	if err != nil {
		return err
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "type_config_path":
					if s, ok := firstStringArg(cn); ok {
						cfg.Project.TypeConfigPath = s
					}
				case "include":
					cfg.Project.IncludeGlobs = collectStringArgs(cn)
				case "exclude":
					cfg.Project.ExcludeGlobs = collectStringArgs(cn)
				}
			}
		case "analysis":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "max_depth":
					if v, ok := firstIntArg(cn); ok {
						cfg.Analysis.MaxDepth = v
					}
				case "include_dependencies":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Analysis.IncludeDependencies = b
					}
				case "include_test_files":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Analysis.IncludeTestFiles = b
					}
				case "exclude_patterns":
					cfg.Analysis.ExcludePatterns = collectStringArgs(cn)
				case "include_patterns":
					cfg.Analysis.IncludePatterns = collectStringArgs(cn)
				case "follow_imports":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Analysis.FollowImports = b
					}
				case "analyze_callbacks":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Analysis.AnalyzeCallbacks = b
					}
				case "collect_arg_types":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Analysis.CollectArgTypes = b
					}
				case "collect_metrics":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Analysis.CollectMetrics = b
					}
				}
			}
		case "performance":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "parallel_workers":
					if v, ok := firstIntArg(cn); ok {
						cfg.Performance.ParallelWorkers = v
					}
				case "watch_debounce_ms":
					if v, ok := firstIntArg(cn); ok {
						cfg.Performance.WatchDebounceMs = v
					}
				}
			}
		case "cache":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "dir":
					if s, ok := firstStringArg(cn); ok {
						cfg.Cache.Dir = s
					}
				case "max_age_hours":
					if v, ok := firstIntArg(cn); ok {
						cfg.Cache.MaxAgeHours = v
					}
				}
			}
		}
	}

	return nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	s, ok := n.Arguments[0].Value.(string)
	return s, ok
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	b, ok := n.Arguments[0].Value.(bool)
	return b, ok
}

func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 && len(n.Children) > 0 {
		out = make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}
