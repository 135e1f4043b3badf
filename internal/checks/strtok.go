package checks

import (
	"sort"

	"github.com/danmar/cppcheck-sub017/internal/diag"
	"github.com/danmar/cppcheck-sub017/internal/funcindex"
	"github.com/danmar/cppcheck-sub017/internal/match"
	"github.com/danmar/cppcheck-sub017/internal/token"
)

// StrtokReachability is the §4.G "strtok reachability" check:
// strtok() keeps parsing state internally between calls, so a
// function that uses it and also (transitively) calls another
// function using it risks the two interleaving and corrupting each
// other's state.
func StrtokReachability(l *token.List, idx *funcindex.Index, file string, sink *diag.Sink) {
	usesStrtok := map[string]bool{}
	for _, name := range idx.Names() {
		fn, ok := idx.Lookup(name)
		if !ok {
			continue
		}
		end := matchingBrace(l, fn.Body)
		if !end.Valid() {
			continue
		}
		for c := l.Next(fn.Body); c.Valid() && c != end; c = l.Next(c) {
			if l.Lexeme(c) == "strtok" && match.At(l, c, 1) == "(" {
				usesStrtok[name] = true
				break
			}
		}
	}
	if len(usesStrtok) < 2 {
		return
	}

	calls := map[string]map[string]bool{}
	for name := range usesStrtok {
		fn, _ := idx.Lookup(name)
		end := matchingBrace(l, fn.Body)
		calls[name] = calledFunctions(l, fn.Body, end, idx)
	}

	reported := map[string]bool{}
	for _, name := range sortedKeys(usesStrtok) {
		if reported[name] {
			continue
		}
		if reachesAnother(name, name, calls, usesStrtok, map[string]bool{}) {
			fn, _ := idx.Lookup(name)
			sink.Report(file, l.Line(fn.Body), "Dangerous usage of 'strtok': state is shared across calls to other strtok-using functions")
			reported[name] = true
		}
	}
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// calledFunctions returns every indexed function name called (by
// a simple "name (" pattern) anywhere in (bodyStart, end).
func calledFunctions(l *token.List, bodyStart, end token.Cursor, idx *funcindex.Index) map[string]bool {
	out := map[string]bool{}
	for c := l.Next(bodyStart); c.Valid() && c != end; c = l.Next(c) {
		lx := l.Lexeme(c)
		if !match.IsName(lx) || match.At(l, c, 1) != "(" {
			continue
		}
		if _, ok := idx.Lookup(lx); ok {
			out[lx] = true
		}
	}
	return out
}

// reachesAnother does a depth-first search over the call graph
// restricted to strtok-using functions, reporting whether start can
// reach any strtok-using function other than itself.
func reachesAnother(start, cur string, calls map[string]map[string]bool, usesStrtok, visited map[string]bool) bool {
	for callee := range calls[cur] {
		if !usesStrtok[callee] {
			continue
		}
		if callee != start {
			return true
		}
		if visited[callee] {
			continue
		}
		visited[callee] = true
		if reachesAnother(start, callee, calls, usesStrtok, visited) {
			return true
		}
	}
	return false
}
