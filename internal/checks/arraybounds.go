package checks

import (
	"fmt"

	"github.com/danmar/cppcheck-sub017/internal/diag"
	"github.com/danmar/cppcheck-sub017/internal/match"
	"github.com/danmar/cppcheck-sub017/internal/token"
)

// copyFuncBound names the memset/memcpy-family functions whose size
// argument is checked against a destination array's byte capacity,
// mapped to that argument's zero-based position.
var copyFuncBound = map[string]int{
	"memset": 2, "memcpy": 2, "memmove": 2, "memcmp": 2, "strncpy": 2, "fgets": 1,
}

// ArrayBounds implements the array-index-out-of-bounds checker: a
// literal index against a known-size primitive array, a literal size
// argument to the memset/memcpy family, a loop whose bound reaches
// past the array it indexes, and an oversized strcpy source literal.
func ArrayBounds(l *token.List, file string, sink *diag.Sink) {
	arrays := findArrayDecls(l)
	if len(arrays) == 0 {
		return
	}

	for c := l.Head(); c.Valid(); c = l.Next(c) {
		arr, ok := arrays[l.Lexeme(c)]
		if !ok {
			continue
		}
		if c == l.Next(arr.Decl) {
			continue
		}
		if match.At(l, c, 1) == "[" && match.IsNumber(match.At(l, c, 2)) && match.At(l, c, 3) == "]" {
			k := atoiOr(match.At(l, c, 2), -1)
			if k >= arr.Count {
				sink.Report(file, l.Line(c), fmt.Sprintf("Buffer overrun: %s[%d] is out of bounds (size %d)", l.Lexeme(c), k, arr.Count))
			}
		}
	}

	for fn, argIdx := range copyFuncBound {
		for c := l.Head(); c.Valid(); c = l.Next(c) {
			if l.Lexeme(c) != fn || match.At(l, c, 1) != "(" {
				continue
			}
			open := match.TokAt(l, c, 1)
			closeParen := match.MatchingClose(l, open)
			if !closeParen.Valid() {
				continue
			}
			args := match.SplitArgs(l, open, closeParen)
			if len(args) == 0 || len(args[0]) != 1 || argIdx >= len(args) || len(args[argIdx]) != 1 {
				continue
			}
			arr, ok := arrays[l.Lexeme(args[0][0])]
			if !ok {
				continue
			}
			k := atoiOr(l.Lexeme(args[argIdx][0]), -1)
			if k < 0 {
				continue
			}
			if k > arr.Count*arr.ElemSize {
				sink.Report(file, l.Line(c), fmt.Sprintf("Buffer overrun: %s(%s, ...) writes %d bytes into a %d-byte buffer", fn, l.Lexeme(args[0][0]), k, arr.Count*arr.ElemSize))
			}
		}
	}

	strcpyBound(l, file, sink, arrays)
	loopBound(l, file, sink, arrays)
}

func strcpyBound(l *token.List, file string, sink *diag.Sink, arrays map[string]arrayDecl) {
	for c := l.Head(); c.Valid(); c = l.Next(c) {
		if l.Lexeme(c) != "strcpy" || match.At(l, c, 1) != "(" {
			continue
		}
		open := match.TokAt(l, c, 1)
		closeParen := match.MatchingClose(l, open)
		if !closeParen.Valid() {
			continue
		}
		args := match.SplitArgs(l, open, closeParen)
		if len(args) != 2 || len(args[0]) != 1 || len(args[1]) != 1 {
			continue
		}
		arr, ok := arrays[l.Lexeme(args[0][0])]
		if !ok {
			continue
		}
		n, ok := stringLiteralContentLen(l.Lexeme(args[1][0]))
		if !ok {
			continue
		}
		if n >= arr.Count {
			sink.Report(file, l.Line(c), fmt.Sprintf("Buffer overrun: strcpy source literal of %d bytes does not fit %s[%d]", n, l.Lexeme(args[0][0]), arr.Count))
		}
	}
}

// loopBound flags `for ( [type] v = 0 ; v OP K ; ... ) { ... name[v] ... }`
// when the effective bound (K, or K+1 for the "<=" variant) exceeds
// the size of an array indexed by v inside the loop body.
func loopBound(l *token.List, file string, sink *diag.Sink, arrays map[string]arrayDecl) {
	optionalTypes := map[string]bool{"int": true, "unsigned": true, "long": true, "short": true, "size_t": true}
	for c := l.Head(); c.Valid(); c = l.Next(c) {
		if l.Lexeme(c) != "for" || match.At(l, c, 1) != "(" {
			continue
		}
		open := match.TokAt(l, c, 1)
		closeParen := match.MatchingClose(l, open)
		if !closeParen.Valid() {
			continue
		}

		idx := 2
		if optionalTypes[match.At(l, c, idx)] {
			idx++
		}
		v := match.At(l, c, idx)
		if !match.IsName(v) || match.At(l, c, idx+1) != "=" || match.At(l, c, idx+2) != "0" ||
			match.At(l, c, idx+3) != ";" || match.At(l, c, idx+4) != v {
			continue
		}
		op := match.At(l, c, idx+5)
		if op != "<" && op != "<=" {
			continue
		}
		boundLx := match.At(l, c, idx+6)
		if !match.IsNumber(boundLx) {
			continue
		}
		bound := atoiOr(boundLx, -1)
		if op == "<=" {
			bound++
		}

		brace := l.Next(closeParen)
		if !brace.Valid() || l.Lexeme(brace) != "{" {
			continue
		}
		bodyEnd := matchingBrace(l, brace)
		if !bodyEnd.Valid() {
			continue
		}
		for b := l.Next(brace); b.Valid() && b != bodyEnd; b = l.Next(b) {
			arr, ok := arrays[l.Lexeme(b)]
			if !ok || match.At(l, b, 1) != "[" || match.At(l, b, 2) != v || match.At(l, b, 3) != "]" {
				continue
			}
			if bound > arr.Count {
				sink.Report(file, l.Line(c), fmt.Sprintf("Buffer overrun: loop bound %d exceeds %s[%d]", bound, l.Lexeme(b), arr.Count))
			}
		}
	}
}
