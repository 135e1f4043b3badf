package checks

import (
	"fmt"

	"github.com/danmar/cppcheck-sub017/internal/diag"
	"github.com/danmar/cppcheck-sub017/internal/match"
	"github.com/danmar/cppcheck-sub017/internal/token"
)

// DangerousFunctions flags gets() unconditionally, and scanf() whose
// literal format string contains an unbounded "%s" conversion.
func DangerousFunctions(l *token.List, file string, sink *diag.Sink) {
	for c := l.Head(); c.Valid(); c = l.Next(c) {
		switch l.Lexeme(c) {
		case "gets":
			if match.At(l, c, 1) == "(" {
				sink.Report(file, l.Line(c), "Found 'gets'. You should use 'fgets' instead")
			}
		case "scanf":
			if match.At(l, c, 1) == "(" && containsUnboundedS(match.At(l, c, 2)) {
				sink.Report(file, l.Line(c), "scanf() without a field width can overflow its destination buffer")
			}
		}
	}
}

func containsUnboundedS(literal string) bool {
	for i := 0; i+1 < len(literal); i++ {
		if literal[i] == '%' && literal[i+1] == 's' {
			return true
		}
	}
	return false
}

// InvalidUsage flags strtol/strtoul calls whose literal base argument
// is neither 0 nor within [2, 36].
func InvalidUsage(l *token.List, file string, sink *diag.Sink) {
	for c := l.Head(); c.Valid(); c = l.Next(c) {
		lx := l.Lexeme(c)
		if lx != "strtol" && lx != "strtoul" {
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
		if len(args) != 3 || len(args[2]) != 1 {
			continue
		}
		baseLx := l.Lexeme(args[2][0])
		if !match.IsNumber(baseLx) {
			continue
		}
		base := atoiOr(baseLx, -1)
		if base != 0 && (base < 2 || base > 36) {
			sink.Report(file, l.Line(c), fmt.Sprintf("Invalid radix %d passed to %s(); must be 0 or in [2,36]", base, lx))
		}
	}
}

// RedundantNullGuard flags `if (p)` / `if (p != NULL|nullptr|0)`
// immediately followed by `delete p;`, `delete [] p;`, or `free(p);`:
// deallocating a null pointer is always safe, so the guard has no
// effect.
func RedundantNullGuard(l *token.List, file string, sink *diag.Sink) {
	for c := l.Head(); c.Valid(); c = l.Next(c) {
		if l.Lexeme(c) != "if" || match.At(l, c, 1) != "(" {
			continue
		}
		open := match.TokAt(l, c, 1)
		closeParen := match.MatchingClose(l, open)
		if !closeParen.Valid() {
			continue
		}
		varName := conditionNullCheckVar(l, open, closeParen)
		if varName == "" {
			continue
		}
		after := l.Next(closeParen)
		if l.Lexeme(after) == "{" {
			after = l.Next(after)
		}
		if !isDeallocOf(l, after, varName) {
			continue
		}
		sink.Report(file, l.Line(c), fmt.Sprintf("Redundant null check before deallocating '%s'", varName))
	}
}

func conditionNullCheckVar(l *token.List, open, closeParen token.Cursor) string {
	args := match.SplitArgs(l, open, closeParen)
	if len(args) != 1 {
		return ""
	}
	toks := args[0]
	if len(toks) == 1 && match.IsName(l.Lexeme(toks[0])) {
		return l.Lexeme(toks[0])
	}
	if len(toks) == 3 && match.IsName(l.Lexeme(toks[0])) && l.Lexeme(toks[1]) == "!=" {
		rhs := l.Lexeme(toks[2])
		if rhs == "NULL" || rhs == "nullptr" || rhs == "0" {
			return l.Lexeme(toks[0])
		}
	}
	return ""
}

func isDeallocOf(l *token.List, c token.Cursor, varName string) bool {
	switch l.Lexeme(c) {
	case "delete":
		n := l.Next(c)
		if l.Lexeme(n) == "[" && l.Lexeme(l.Next(n)) == "]" {
			n = l.Next(l.Next(n))
		}
		return l.Lexeme(n) == varName
	case "free":
		if match.At(l, c, 1) != "(" {
			return false
		}
		open := match.TokAt(l, c, 1)
		closeParen := match.MatchingClose(l, open)
		args := match.SplitArgs(l, open, closeParen)
		return len(args) == 1 && len(args[0]) == 1 && l.Lexeme(args[0][0]) == varName
	}
	return false
}

// EmptyIfNoElse flags `if (condition);` with no following `else`: the
// guarded statement is empty, almost always a stray semicolon.
func EmptyIfNoElse(l *token.List, file string, sink *diag.Sink) {
	for c := l.Head(); c.Valid(); c = l.Next(c) {
		if l.Lexeme(c) != "if" || match.At(l, c, 1) != "(" {
			continue
		}
		open := match.TokAt(l, c, 1)
		closeParen := match.MatchingClose(l, open)
		if !closeParen.Valid() {
			continue
		}
		after := l.Next(closeParen)
		if !after.Valid() || l.Lexeme(after) != ";" {
			continue
		}
		next := l.Next(after)
		if next.Valid() && l.Lexeme(next) == "else" {
			continue
		}
		sink.Report(file, l.Line(c), "Found an 'if' with an empty body (stray ';')")
	}
}

// AlwaysTrueFalseComparison flags `a = b ; if (a OP a)` and
// `a = b ; if (a OP b)` for OP in {==,!=,<=,>=,<,>}: the comparison's
// result is already determined by the preceding assignment.
func AlwaysTrueFalseComparison(l *token.List, file string, sink *diag.Sink) {
	cmpOps := map[string]bool{"==": true, "!=": true, "<=": true, ">=": true, "<": true, ">": true}
	for c := l.Head(); c.Valid(); c = l.Next(c) {
		a := l.Lexeme(c)
		if !match.IsName(a) || match.At(l, c, 1) != "=" {
			continue
		}
		b := match.At(l, c, 2)
		if !match.IsName(b) || match.At(l, c, 3) != ";" {
			continue
		}
		ifTok := match.TokAt(l, c, 4)
		if !ifTok.Valid() || l.Lexeme(ifTok) != "if" || match.At(l, ifTok, 1) != "(" {
			continue
		}
		lhs := match.At(l, ifTok, 2)
		op := match.At(l, ifTok, 3)
		rhs := match.At(l, ifTok, 4)
		if !cmpOps[op] {
			continue
		}
		if (lhs == a && rhs == b) || (lhs == b && rhs == a) || (lhs == a && rhs == a) || (lhs == b && rhs == b) {
			sink.Report(file, l.Line(ifTok), fmt.Sprintf("Comparison '%s %s %s' has a result determined by the preceding assignment", lhs, op, rhs))
		}
	}
}

// AssignmentInCondition flags `if (v = ...)` where the right-hand side
// is a literal, string, or bare variable: a single '=' inside a
// condition is almost always a typo for '=='.
func AssignmentInCondition(l *token.List, file string, sink *diag.Sink) {
	for c := l.Head(); c.Valid(); c = l.Next(c) {
		if l.Lexeme(c) != "if" || match.At(l, c, 1) != "(" {
			continue
		}
		v := match.At(l, c, 2)
		if !match.IsName(v) || match.At(l, c, 3) != "=" {
			continue
		}
		rhs := match.At(l, c, 4)
		if rhs == "" {
			continue
		}
		if match.IsNumber(rhs) || match.IsName(rhs) || rhs[0] == '"' {
			sink.Report(file, l.Line(c), fmt.Sprintf("Suspicious assignment '%s = %s' inside an 'if' condition", v, rhs))
		}
	}
}

// CaseWithoutBreak flags a `case`/`default` label whose statements run
// into the next label without an intervening break, return, continue,
// or goto.
func CaseWithoutBreak(l *token.List, file string, sink *diag.Sink) {
	for c := l.Head(); c.Valid(); c = l.Next(c) {
		if l.Lexeme(c) != "case" && l.Lexeme(c) != "default" {
			continue
		}
		colon := c
		for colon.Valid() && l.Lexeme(colon) != ":" {
			colon = l.Next(colon)
		}
		if !colon.Valid() {
			continue
		}

		hasStatement := false
		exits := false
		reachesLabel := false
		depth := 0
		for b := l.Next(colon); b.Valid(); b = l.Next(b) {
			lx := l.Lexeme(b)
			if lx == "}" {
				if depth == 0 {
					break
				}
				depth--
			} else if lx == "{" {
				depth++
			} else if depth == 0 && (lx == "case" || lx == "default") {
				reachesLabel = true
				break
			}
			hasStatement = true
			if lx == "break" || lx == "return" || lx == "continue" || lx == "goto" {
				exits = true
				break
			}
		}
		if hasStatement && !exits && reachesLabel {
			sink.Report(file, l.Line(c), "Switch case falls through to the next case without a 'break'")
		}
	}
}
