// Package version holds the build-time version string that cmd/callgraph
// reports. Cache entries do not record it.
package version

// Version is overridden at build time via -ldflags where the build system
// supports it; the default marks a source build.
var Version = "dev"
