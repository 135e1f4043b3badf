package token

import "strings"

// Registry is the ordered list of file paths contributing tokens to a
// translation unit. A token's FileIndex is its position here. Index 0
// is always the top-level input file; any later index is an included
// header.
type Registry struct {
	paths []string
}

// NewRegistry returns an empty file registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// IndexOf returns the index of path if it is already registered
// (case-insensitive, matching the tokenizer's de-duplication rule for
// #include), and false otherwise.
func (r *Registry) IndexOf(path string) (int, bool) {
	for i, p := range r.paths {
		if strings.EqualFold(p, path) {
			return i, true
		}
	}
	return 0, false
}

// Add appends path and returns its new index. Callers should check
// IndexOf first; Add does not de-duplicate on its own.
func (r *Registry) Add(path string) int {
	r.paths = append(r.paths, path)
	return len(r.paths) - 1
}

// Path returns the path registered at index i, or "" if out of range.
func (r *Registry) Path(i int) string {
	if i < 0 || i >= len(r.paths) {
		return ""
	}
	return r.paths[i]
}

// Len returns the number of registered files.
func (r *Registry) Len() int { return len(r.paths) }
