// Package pathutil provides utilities for converting between absolute and
// relative paths, and for normalizing a path into the stable form the Cache
// Manager hashes as its entry key.
//
// Architecture Pattern:
// This repository uses absolute paths internally for consistency and to
// avoid ambiguity (declarations, node ids, and the Cache Manager's key
// derivation all operate on absolute paths). ToRelative converts such a path
// to root-relative form for display; the graphs cmd/callgraph prints keep
// absolute paths and do not call it.
package pathutil

import (
	"path/filepath"
	"strings"
)

// ToRelative converts an absolute path to relative based on a root directory.
// Falls back to the original path if conversion fails or path is already relative.
//
// Examples:
//   - ToRelative("/home/user/project/src/main.go", "/home/user/project") → "src/main.go"
//   - ToRelative("/other/location/file.go", "/home/user/project") → "/other/location/file.go" (outside root)
//   - ToRelative("src/main.go", "/home/user/project") → "src/main.go" (already relative)
func ToRelative(absPath, rootDir string) string {
	if absPath == "" || rootDir == "" {
		return absPath
	}
	if !filepath.IsAbs(absPath) {
		return absPath
	}

	absPath = filepath.Clean(absPath)
	rootDir = filepath.Clean(rootDir)

	relPath, err := filepath.Rel(rootDir, absPath)
	if err != nil {
		return absPath
	}
	if strings.HasPrefix(relPath, "..") {
		return absPath
	}
	return relPath
}

// Normalize resolves path to an absolute, cleaned, slash-separated form.
// This is the canonical representation the Cache Manager hashes for its
// per-file entry filename: two different spellings of the same file (a
// trailing slash, a `./` prefix, backslashes on a cross-compiled run) must
// normalize to the same key.
func Normalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(filepath.Clean(abs)), nil
}
