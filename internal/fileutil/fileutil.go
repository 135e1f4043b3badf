// Package fileutil is the external-collaborator file discovery
// utility spec §1 places outside the core analysis engine: it
// enumerates .c/.cc/.cpp files under a path for the --recursive CLI
// flag. Grounded on the second C/C++-tooling-in-Go repo in the
// example pack (WojciechMazur-gazelle_cc), which resolves its own
// source-file globs with doublestar.Glob over an os.DirFS.
package fileutil

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// sourceExtensions is the case-insensitive extension filter of spec
// §6: ".c", ".cc", ".cpp".
var sourceExtensions = map[string]bool{".c": true, ".cc": true, ".cpp": true}

// HasSourceExtension reports whether path's extension is one recognized
// by spec §6, matched case-insensitively.
func HasSourceExtension(path string) bool {
	return sourceExtensions[strings.ToLower(filepath.Ext(path))]
}

// Discover returns every .c/.cc/.cpp file reachable under root,
// lexicographically sorted (spec §5: "files are processed serially in
// lexicographically sorted order"). root may itself be a single file,
// in which case it is returned unchanged if its extension matches.
func Discover(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if HasSourceExtension(root) {
			return []string{root}, nil
		}
		return nil, nil
	}

	fsys := os.DirFS(root)
	matched, err := doublestar.Glob(fsys, "**/*", doublestar.WithFilesOnly(), doublestar.WithNoFollow())
	if err != nil {
		return nil, err
	}

	var out []string
	for _, rel := range matched {
		if !HasSourceExtension(rel) {
			continue
		}
		out = append(out, filepath.Join(root, rel))
	}
	sort.Strings(out)
	return out, nil
}

// DiscoverAll runs Discover over every root and concatenates the
// results, still sorted within each root's contribution in the order
// the CLI passed them (spec §6 imposes no cross-argument ordering
// requirement beyond per-file lexicographic order).
func DiscoverAll(roots []string) ([]string, error) {
	var out []string
	for _, root := range roots {
		found, err := Discover(root)
		if err != nil {
			return nil, err
		}
		out = append(out, found...)
	}
	return out, nil
}
