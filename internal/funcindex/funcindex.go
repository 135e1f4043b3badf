// Package funcindex implements the §4.E function index: a
// post-simplification scan that records, for every top-level function
// definition, where its body and parameter list live. The memory-leak
// analyzer's cross-procedural step (§4.F) looks functions up here
// rather than re-scanning the file.
package funcindex

import (
	"sort"

	"github.com/danmar/cppcheck-sub017/internal/match"
	"github.com/danmar/cppcheck-sub017/internal/token"
)

// Func is one indexed function definition.
type Func struct {
	Body    token.Cursor // the opening "{" of the function body
	SigOpen token.Cursor // the opening "(" of the parameter list
}

// Index is a name -> Func lookup table. A name seen more than once
// (overload, or a duplicate definition the analyzer can't resolve) is
// dropped entirely rather than guessed at, matching spec §4.E.
type Index struct {
	byName map[string]Func
}

// Build scans l for top-level function definitions: a name-then-"("
// pattern at brace depth 0 whose matching ")" is directly followed by
// "{". Member functions defined inline inside a class body are found
// the same way: a class/struct/namespace's own brace is transparent
// to the depth count, so "top-level" means "not nested in a function
// or control-flow body", not "outside every class".
func Build(l *token.List) *Index {
	idx := &Index{byName: map[string]Func{}}
	dup := map[string]bool{}
	depth := 0
	var counted []bool // parallel brace stack: did this "{" bump depth?

	c := l.Head()
	for c.Valid() {
		lx := l.Lexeme(c)

		if lx == "class" || lx == "struct" || lx == "namespace" {
			if brace, ok := containerBrace(l, c); ok {
				counted = append(counted, false)
				c = l.Next(brace)
				continue
			}
		}

		switch lx {
		case "{":
			depth++
			counted = append(counted, true)
			c = l.Next(c)
			continue
		case "}":
			if n := len(counted); n > 0 {
				if counted[n-1] && depth > 0 {
					depth--
				}
				counted = counted[:n-1]
			}
			c = l.Next(c)
			continue
		}

		if depth == 0 && match.IsName(lx) {
			open := l.Next(c)
			if open.Valid() && l.Lexeme(open) == "(" {
				if closeParen := match.MatchingClose(l, open); closeParen.Valid() {
					brace := l.Next(closeParen)
					if brace.Valid() && l.Lexeme(brace) == "{" {
						if _, exists := idx.byName[lx]; exists {
							dup[lx] = true
						} else {
							idx.byName[lx] = Func{Body: brace, SigOpen: open}
						}
						c = brace
						continue
					}
				}
			}
		}
		c = l.Next(c)
	}

	for name := range dup {
		delete(idx.byName, name)
	}
	return idx
}

// containerBrace returns the "{" that opens a class/struct/namespace
// body starting at its keyword token, or false for a forward
// declaration (a ";" reached before any "{").
func containerBrace(l *token.List, start token.Cursor) (token.Cursor, bool) {
	for c := l.Next(start); c.Valid(); c = l.Next(c) {
		switch l.Lexeme(c) {
		case "{":
			return c, true
		case ";":
			return token.Cursor{}, false
		}
	}
	return token.Cursor{}, false
}

// Lookup returns the indexed function named name, if any.
func (idx *Index) Lookup(name string) (Func, bool) {
	f, ok := idx.byName[name]
	return f, ok
}

// Len reports how many distinct functions are indexed.
func (idx *Index) Len() int { return len(idx.byName) }

// Names returns every indexed function name, sorted so callers that
// iterate over the whole index get deterministic diagnostic order.
func (idx *Index) Names() []string {
	out := make([]string, 0, len(idx.byName))
	for name := range idx.byName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
