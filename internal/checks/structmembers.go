package checks

import (
	"fmt"

	"github.com/danmar/cppcheck-sub017/internal/diag"
	"github.com/danmar/cppcheck-sub017/internal/match"
	"github.com/danmar/cppcheck-sub017/internal/token"
)

// UnusedStructMember implements the style-mode "struct member never
// read" diagnostic: for each `struct S { T m ; ... } ;`, a member with
// no `.m` or `->m` read anywhere is reported. A write immediately
// followed by "=" does not count as a read.
func UnusedStructMember(l *token.List, file string, sink *diag.Sink) {
	for c := l.Head(); c.Valid(); c = l.Next(c) {
		if l.Lexeme(c) != "struct" {
			continue
		}
		name := match.At(l, c, 1)
		if !match.IsName(name) {
			continue
		}
		brace := match.TokAt(l, c, 2)
		if !brace.Valid() || l.Lexeme(brace) != "{" {
			continue
		}
		end := matchingBrace(l, brace)
		if !end.Valid() {
			continue
		}
		for _, member := range collectStructMembers(l, brace, end) {
			if !structMemberRead(l, member) {
				sink.Report(file, l.Line(brace), fmt.Sprintf("struct member '%s::%s' is never read", name, member))
			}
		}
	}
}

// collectStructMembers gathers simple `Type name ;` members declared
// directly inside a struct body.
func collectStructMembers(l *token.List, brace, end token.Cursor) []string {
	var out []string
	for c := l.Next(brace); c.Valid() && c != end; c = l.Next(c) {
		if !match.IsName(l.Lexeme(c)) {
			continue
		}
		name := match.At(l, c, 1)
		if match.IsName(name) && match.At(l, c, 2) == ";" {
			out = append(out, name)
		}
	}
	return out
}

func structMemberRead(l *token.List, member string) bool {
	for c := l.Head(); c.Valid(); c = l.Next(c) {
		lx := l.Lexeme(c)
		if lx != "." && lx != "->" {
			continue
		}
		if match.At(l, c, 1) != member {
			continue
		}
		if match.At(l, c, 2) == "=" {
			continue
		}
		return true
	}
	return false
}
