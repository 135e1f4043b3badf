package checks

import (
	"fmt"

	"github.com/danmar/cppcheck-sub017/internal/diag"
	"github.com/danmar/cppcheck-sub017/internal/match"
	"github.com/danmar/cppcheck-sub017/internal/token"
)

// DynamicDataCopy is the §4.G "dynamic data copy" check: strcpy/strcat
// into dst from a src that is a pointer declared earlier in the same
// function with no observed bounds check. showAll narrows the
// "no bounds check observed" heuristic to "no strlen(src) observed",
// matching the --all mode the spec names for this check.
func DynamicDataCopy(l *token.List, file string, sink *diag.Sink, showAll bool) {
	declaredPointers := declaredPointerNames(l)
	if len(declaredPointers) == 0 {
		return
	}

	for c := l.Head(); c.Valid(); c = l.Next(c) {
		lx := l.Lexeme(c)
		if lx != "strcpy" && lx != "strcat" && lx != "sprintf" {
			continue
		}
		if match.At(l, c, 1) != "(" {
			continue
		}
		open := match.TokAt(l, c, 1)
		closeParen := match.MatchingClose(l, open)
		if !closeParen.Valid() {
			continue
		}
		args := match.SplitArgs(l, open, closeParen)
		if len(args) < 2 {
			continue
		}
		// sprintf's source is its last argument; strcpy/strcat's is its
		// second.
		src := args[1]
		if lx == "sprintf" {
			src = args[len(args)-1]
		}
		if len(src) != 1 {
			continue
		}
		srcName := l.Lexeme(src[0])
		if !declaredPointers[srcName] {
			continue
		}
		if showAll {
			if strlenObserved(l, srcName) {
				continue
			}
		} else if boundsCheckObserved(l, srcName) {
			continue
		}
		sink.Report(file, l.Line(c), fmt.Sprintf("Unknown length of '%s' copied with '%s'; length not verified", srcName, lx))
	}
}

// declaredPointerNames collects every name declared as "T * name"
// anywhere in the file, regardless of scope - this check does not
// need per-function precision, only "declared earlier" vs. "unknown".
func declaredPointerNames(l *token.List) map[string]bool {
	out := map[string]bool{}
	for c := l.Head(); c.Valid(); c = l.Next(c) {
		if !match.IsName(l.Lexeme(c)) {
			continue
		}
		if match.At(l, c, 1) == "*" && match.IsName(match.At(l, c, 2)) {
			follow := match.At(l, c, 3)
			if follow == "=" || follow == ";" || follow == "," || follow == ")" {
				out[match.At(l, c, 2)] = true
			}
		}
	}
	return out
}

func strlenObserved(l *token.List, name string) bool {
	for c := l.Head(); c.Valid(); c = l.Next(c) {
		if l.Lexeme(c) == "strlen" && match.At(l, c, 1) == "(" && match.At(l, c, 2) == name {
			return true
		}
	}
	return false
}

// boundsCheckObserved is the weaker, default-mode heuristic: any
// comparison or strlen mentioning name at all counts as "checked".
func boundsCheckObserved(l *token.List, name string) bool {
	if strlenObserved(l, name) {
		return true
	}
	for c := l.Head(); c.Valid(); c = l.Next(c) {
		if l.Lexeme(c) != name {
			continue
		}
		switch match.At(l, c, 1) {
		case "<", ">", "<=", ">=":
			return true
		}
	}
	return false
}
