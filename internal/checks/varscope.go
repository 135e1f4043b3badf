package checks

import (
	"fmt"

	"github.com/danmar/cppcheck-sub017/internal/diag"
	"github.com/danmar/cppcheck-sub017/internal/funcindex"
	"github.com/danmar/cppcheck-sub017/internal/match"
	"github.com/danmar/cppcheck-sub017/internal/token"
)

// VariableScope is the §4.G "variable scope" style check: a local
// variable declared directly in a function body but only ever used
// inside one inner block could have been declared there instead.
func VariableScope(l *token.List, idx *funcindex.Index, file string, sink *diag.Sink) {
	for _, name := range idx.Names() {
		fn, ok := idx.Lookup(name)
		if !ok {
			continue
		}
		end := matchingBrace(l, fn.Body)
		if !end.Valid() {
			continue
		}
		checkFunctionVariableScope(l, fn.Body, end, file, sink)
	}
}

type scopeDecl struct {
	name string
	cur  token.Cursor
}

type scopeUsage struct {
	innerBlock  token.Cursor
	sawAny      bool
	narrowToOne bool
}

func checkFunctionVariableScope(l *token.List, bodyStart, end token.Cursor, file string, sink *diag.Sink) {
	decls := declaredLocals(l, bodyStart, end)
	if len(decls) == 0 {
		return
	}
	declSet := map[string]token.Cursor{}
	for _, d := range decls {
		declSet[d.name] = d.cur
	}

	usageOf := map[string]*scopeUsage{}
	var stack []token.Cursor
	stack = append(stack, bodyStart)
	for c := l.Next(bodyStart); c.Valid() && c != end; c = l.Next(c) {
		switch l.Lexeme(c) {
		case "{":
			stack = append(stack, c)
			continue
		case "}":
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
			continue
		}

		declCur, isDecl := declSet[l.Lexeme(c)]
		if !isDecl || c == declCur {
			continue
		}
		u, ok := usageOf[l.Lexeme(c)]
		if !ok {
			u = &scopeUsage{narrowToOne: true}
			usageOf[l.Lexeme(c)] = u
		}
		if len(stack) <= 1 {
			u.narrowToOne = false
			continue
		}
		block := stack[1]
		if !u.sawAny {
			u.innerBlock = block
			u.sawAny = true
		} else if u.innerBlock != block {
			u.narrowToOne = false
		}
	}

	for _, d := range decls {
		u, ok := usageOf[d.name]
		if !ok || !u.sawAny || !u.narrowToOne {
			continue
		}
		sink.Report(file, l.Line(d.cur), fmt.Sprintf("The scope of the variable '%s' can be reduced", d.name))
	}
}

// declaredLocals finds simple "T name ;" / "T name = ..." declarations
// at depth 1 directly inside a function body (not in a nested block -
// those are already minimally scoped).
func declaredLocals(l *token.List, bodyStart, end token.Cursor) []scopeDecl {
	var out []scopeDecl
	depth := 0
	for c := l.Next(bodyStart); c.Valid() && c != end; c = l.Next(c) {
		switch l.Lexeme(c) {
		case "{":
			depth++
			continue
		case "}":
			if depth > 0 {
				depth--
			}
			continue
		}
		if depth != 0 || !match.IsName(l.Lexeme(c)) {
			continue
		}
		name := match.At(l, c, 1)
		if !match.IsName(name) {
			continue
		}
		follow := match.At(l, c, 2)
		if follow != ";" && follow != "=" {
			continue
		}
		out = append(out, scopeDecl{name: name, cur: match.TokAt(l, c, 1)})
	}
	return out
}
