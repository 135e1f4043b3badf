package leak

import (
	"github.com/danmar/cppcheck-sub017/internal/diag"
	"github.com/danmar/cppcheck-sub017/internal/funcindex"
	"github.com/danmar/cppcheck-sub017/internal/match"
	"github.com/danmar/cppcheck-sub017/internal/token"
)

// Run is the §4.F entry point: it finds every candidate local pointer
// and class pointer member in l and analyzes each one, reporting
// through sink. AnalyzeVariable and AnalyzeClassMember only know how
// to analyze a single already-identified candidate; Run is the
// scanning step spec §4.F describes ("for each candidate local
// pointer ... and for each candidate class pointer member").
func Run(l *token.List, idx *funcindex.Index, file string, sink *diag.Sink, showAll bool) {
	e := New(l, idx, file, sink)
	for _, name := range idx.Names() {
		fn, ok := idx.Lookup(name)
		if !ok {
			continue
		}
		end := matchingBrace(l, fn.Body)
		if !end.Valid() {
			continue
		}
		seen := map[string]bool{}
		for _, v := range localPointerNames(l, fn.Body, end) {
			if seen[v] {
				continue
			}
			seen[v] = true
			e.AnalyzeVariable(fn.Body, v, showAll)
		}
	}

	analyzeClasses(l, idx, file, sink)
}

// matchingBrace returns the cursor of the "}" that closes the brace
// opened at open, tracking nested depth.
func matchingBrace(l *token.List, open token.Cursor) token.Cursor {
	depth := 0
	for c := open; c.Valid(); c = l.Next(c) {
		switch l.Lexeme(c) {
		case "{":
			depth++
		case "}":
			depth--
			if depth == 0 {
				return c
			}
		}
	}
	return token.Cursor{}
}

// localPointerNames scans (bodyStart, end) for "T * name" and
// "T T * name" declarations - the two shapes spec §4.F names for a
// candidate local pointer. Declarations nested in an inner block still
// count: the whole function body is "block depth > 0".
func localPointerNames(l *token.List, bodyStart, end token.Cursor) []string {
	var out []string
	for c := l.Next(bodyStart); c.Valid() && c != end; c = l.Next(c) {
		lx := l.Lexeme(c)
		if !match.IsName(lx) {
			continue
		}

		// T * name
		if match.At(l, c, 1) == "*" && match.IsName(match.At(l, c, 2)) {
			if follow := match.At(l, c, 3); follow == "=" || follow == ";" || follow == "," {
				out = append(out, match.At(l, c, 2))
				continue
			}
		}

		// T T * name (e.g. "unsigned char * name")
		if match.IsName(match.At(l, c, 1)) && match.At(l, c, 2) == "*" && match.IsName(match.At(l, c, 3)) {
			if follow := match.At(l, c, 4); follow == "=" || follow == ";" || follow == "," {
				out = append(out, match.At(l, c, 3))
			}
		}
	}
	return out
}

// classPointerMemberNames scans a class body (brace, end) for simple
// pointer-member declarations "T * name ;" at class scope.
func classPointerMemberNames(l *token.List, brace, end token.Cursor) []string {
	var out []string
	for c := l.Next(brace); c.Valid() && c != end; c = l.Next(c) {
		lx := l.Lexeme(c)
		if !match.IsName(lx) {
			continue
		}
		if match.At(l, c, 1) == "*" && match.IsName(match.At(l, c, 2)) && match.At(l, c, 3) == ";" {
			out = append(out, match.At(l, c, 2))
		}
	}
	return out
}

// findClassBrace returns the class's opening "{", or an invalid
// cursor for a forward declaration (a top-level ";" reached first).
func findClassBrace(l *token.List, classTok token.Cursor) token.Cursor {
	for c := l.Next(classTok); c.Valid(); c = l.Next(c) {
		switch l.Lexeme(c) {
		case "{":
			return c
		case ";":
			return token.Cursor{}
		}
	}
	return token.Cursor{}
}

// methodBodiesWithin returns the body cursor of every indexed function
// whose opening brace lies within (brace, end) - i.e. every member
// function defined inline inside the class.
func methodBodiesWithin(l *token.List, idx *funcindex.Index, brace, end token.Cursor) []token.Cursor {
	var bodies []token.Cursor
	for _, name := range idx.Names() {
		fn, ok := idx.Lookup(name)
		if !ok {
			continue
		}
		if withinRange(l, brace, end, fn.Body) {
			bodies = append(bodies, fn.Body)
		}
	}
	return bodies
}

func withinRange(l *token.List, start, end, target token.Cursor) bool {
	for c := l.Next(start); c.Valid() && c != end; c = l.Next(c) {
		if c == target {
			return true
		}
	}
	return false
}

func analyzeClasses(l *token.List, idx *funcindex.Index, file string, sink *diag.Sink) {
	e := New(l, idx, file, sink)
	for c := l.Head(); c.Valid(); c = l.Next(c) {
		if l.Lexeme(c) != "class" {
			continue
		}
		name := match.At(l, c, 1)
		if !match.IsName(name) {
			continue
		}
		brace := findClassBrace(l, c)
		if !brace.Valid() {
			continue
		}
		end := matchingBrace(l, brace)
		if !end.Valid() {
			continue
		}
		members := classPointerMemberNames(l, brace, end)
		if len(members) == 0 {
			continue
		}
		bodies := methodBodiesWithin(l, idx, brace, end)
		if len(bodies) == 0 {
			continue
		}
		for _, m := range members {
			e.AnalyzeClassMember(name, m, bodies)
		}
	}
}
