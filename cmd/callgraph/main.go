// Command callgraph is the CLI front end over the analysis engine:
// analyze, cache management, and schema validation. It is explicitly
// outside the core (spec.md §1) and carries no analysis logic of its own,
// only wiring.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/tscallgraph/internal/astprovider"
	"github.com/standardbeagle/tscallgraph/internal/astprovider/csprovider"
	"github.com/standardbeagle/tscallgraph/internal/astprovider/goprovider"
	"github.com/standardbeagle/tscallgraph/internal/astprovider/phpprovider"
	"github.com/standardbeagle/tscallgraph/internal/astprovider/pyprovider"
	"github.com/standardbeagle/tscallgraph/internal/astprovider/tsprovider"
	"github.com/standardbeagle/tscallgraph/internal/cache"
	"github.com/standardbeagle/tscallgraph/internal/callgraph"
	"github.com/standardbeagle/tscallgraph/internal/cgerrors"
	"github.com/standardbeagle/tscallgraph/internal/config"
	"github.com/standardbeagle/tscallgraph/internal/entrypoint"
	"github.com/standardbeagle/tscallgraph/internal/graphschema"
	"github.com/standardbeagle/tscallgraph/internal/loader"
	"github.com/standardbeagle/tscallgraph/internal/parallel"
	"github.com/standardbeagle/tscallgraph/internal/resolver"
	"github.com/standardbeagle/tscallgraph/internal/types"
	"github.com/standardbeagle/tscallgraph/internal/version"
)

// providers lists every registered language binding. A fresh instance is
// built per invocation (and per worker, in whole-project mode) since a
// tree-sitter parser is not safe to share across goroutines.
func providers() ([]astprovider.Provider, error) {
	var out []astprovider.Provider
	factories := []func() (astprovider.Provider, error){
		func() (astprovider.Provider, error) { return tsprovider.New() },
		func() (astprovider.Provider, error) { return goprovider.New() },
		func() (astprovider.Provider, error) { return pyprovider.New() },
		func() (astprovider.Provider, error) { return phpprovider.New() },
		func() (astprovider.Provider, error) { return csprovider.New() },
	}
	for _, f := range factories {
		p, err := f()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func providerFactories() map[string]parallel.ProviderFactory {
	factories := map[string]parallel.ProviderFactory{
		".ts":   func() (astprovider.Provider, error) { return tsprovider.New() },
		".tsx":  func() (astprovider.Provider, error) { return tsprovider.New() },
		".js":   func() (astprovider.Provider, error) { return tsprovider.New() },
		".jsx":  func() (astprovider.Provider, error) { return tsprovider.New() },
		".go":   func() (astprovider.Provider, error) { return goprovider.New() },
		".py":   func() (astprovider.Provider, error) { return pyprovider.New() },
		".php":  func() (astprovider.Provider, error) { return phpprovider.New() },
		".cs":   func() (astprovider.Provider, error) { return csprovider.New() },
	}
	return factories
}

func main() {
	app := &cli.App{
		Name:    "callgraph",
		Usage:   "static call-graph extraction for statically-typed, class-and-module languages",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "root", Aliases: []string{"r"}, Usage: "project root directory", Value: "."},
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path to .callgraph.kdl (default: <root>/.callgraph.kdl)"},
		},
		Commands: []*cli.Command{
			analyzeCommand(),
			cacheCommand(),
			validateCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCodeFor(err))
	}
}

func exitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	return 1
}

func loadConfig(c *cli.Context) (config.Config, error) {
	root := c.String("root")
	return config.Load(root)
}

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "build a call graph from an entry point, or the whole project",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "entry", Aliases: []string{"e"}, Usage: "entry point in path#ref form; omit for whole-project mode"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "output format: json or dot", Value: "json"},
			&cli.IntFlag{Name: "max-depth", Usage: "override configured max traversal depth"},
			&cli.BoolFlag{Name: "no-cache", Usage: "disable the cache manager for this run"},
		},
		Action: runAnalyze,
	}
}

func runAnalyze(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if v := c.Int("max-depth"); v > 0 {
		cfg.Analysis.MaxDepth = v
	}

	ps, err := providers()
	if err != nil {
		return err
	}
	l := loader.New(ps...)
	files, err := l.Files(loader.ProjectContext{
		RootPath:            cfg.Project.RootPath,
		TypeConfigPath:      cfg.Project.TypeConfigPath,
		IncludeGlobs:        cfg.Project.IncludeGlobs,
		ExcludeGlobs:        cfg.Project.ExcludeGlobs,
		IncludeDependencies: cfg.Analysis.IncludeDependencies,
		IncludeTestFiles:    cfg.Analysis.IncludeTestFiles,
	})
	if err != nil {
		return err
	}

	entryRef := c.String("entry")
	var graph *types.CallGraph

	if entryRef == "" {
		var cacheMgr *cache.Manager
		if !c.Bool("no-cache") {
			cacheMgr = cache.New(cfg.Cache.Dir, time.Duration(cfg.Cache.MaxAgeHours)*time.Hour)
		}
		driver := parallel.New(cfg.Performance.Workers(), cacheMgr, parallel.ContinueOnError, providerFactories(), cfg.Analysis.CollectArgTypes)
		graph, err = driver.Analyze(context.Background(), cfg.Project.RootPath, files)
		if err != nil {
			return err
		}
	} else {
		entry, err := entrypoint.Find(entryRef, cfg.Project.RootPath, files)
		if err != nil {
			return err
		}
		idx, softErrors := resolver.BuildIndex(files)
		for _, se := range softErrors {
			fmt.Fprintln(os.Stderr, "warning:", se)
		}
		builderCfg := callgraph.Config{
			MaxDepth:         cfg.Analysis.MaxDepth,
			FollowImports:    cfg.Analysis.FollowImports,
			AnalyzeCallbacks: cfg.Analysis.AnalyzeCallbacks,
			CollectArgTypes:  cfg.Analysis.CollectArgTypes,
		}
		b := callgraph.New(idx, builderCfg)
		graph, err = b.Build(entryRef, cfg.Project.RootPath, cfg.Project.TypeConfigPath, entry)
		if err != nil {
			return err
		}
	}

	return writeGraph(c, graph)
}

func writeGraph(c *cli.Context, graph *types.CallGraph) error {
	switch c.String("format") {
	case "dot":
		fmt.Println(toDOT(graph))
		return nil
	default:
		raw, err := json.MarshalIndent(graph, "", "  ")
		if err != nil {
			return cgerrors.New(cgerrors.IOError, "could not marshal graph").WithUnderlying(err)
		}
		fmt.Println(string(raw))
		return nil
	}
}

func toDOT(graph *types.CallGraph) string {
	out := "digraph callgraph {\n"
	for _, n := range graph.Nodes {
		out += fmt.Sprintf("  %q [label=%q];\n", n.ID, n.Name)
	}
	for _, e := range graph.Edges {
		out += fmt.Sprintf("  %q -> %q [label=%q];\n", e.Source, e.Target, e.Variant)
	}
	out += "}\n"
	return out
}

func cacheCommand() *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "inspect and manage the on-disk cache manager",
		Subcommands: []*cli.Command{
			{
				Name:  "stats",
				Usage: "print cache hit/miss/eviction counters and health status",
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig(c)
					if err != nil {
						return err
					}
					mgr := cache.New(cfg.Cache.Dir, time.Duration(cfg.Cache.MaxAgeHours)*time.Hour)
					stats := mgr.Stats()
					raw, err := json.MarshalIndent(stats, "", "  ")
					if err != nil {
						return err
					}
					fmt.Println(string(raw))
					return nil
				},
			},
			{
				Name:  "prune",
				Usage: "remove expired cache entries",
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig(c)
					if err != nil {
						return err
					}
					mgr := cache.New(cfg.Cache.Dir, time.Duration(cfg.Cache.MaxAgeHours)*time.Hour)
					removed, err := mgr.PruneExpired()
					if err != nil {
						return err
					}
					fmt.Printf("pruned %d expired entries\n", removed)
					return nil
				},
			},
			{
				Name:  "clear",
				Usage: "empty the cache directory",
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig(c)
					if err != nil {
						return err
					}
					mgr := cache.New(cfg.Cache.Dir, time.Duration(cfg.Cache.MaxAgeHours)*time.Hour)
					return mgr.Clear()
				},
			},
		},
	}
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "validate a serialized graph (as produced by analyze --format json) against the schema",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "path to a graph JSON file; omit to read stdin"},
		},
		Action: func(c *cli.Context) error {
			var raw []byte
			var err error
			if path := c.String("file"); path != "" {
				raw, err = os.ReadFile(path)
			} else {
				raw, err = os.ReadFile("/dev/stdin")
			}
			if err != nil {
				return cgerrors.New(cgerrors.IOError, "could not read graph input").WithUnderlying(err)
			}
			if err := graphschema.Validate(raw); err != nil {
				return err
			}
			fmt.Println("ok")
			return nil
		},
	}
}
