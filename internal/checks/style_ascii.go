package checks

import (
	"github.com/danmar/cppcheck-sub017/internal/diag"
	"github.com/danmar/cppcheck-sub017/internal/match"
	"github.com/danmar/cppcheck-sub017/internal/token"
)

// ASCIIRangeStyle is the supplemented WarningIsDigit/WarningIsAlpha
// style check: a hand-rolled ASCII range comparison is suggested to
// become isdigit()/isalpha(). The digit shape is `v >= '0' && v <=
// '9'`; the alpha shape is either case's `v >= 'a' && v <= 'z'` /
// `v >= 'A' && v <= 'Z'`.
func ASCIIRangeStyle(l *token.List, file string, sink *diag.Sink) {
	for c := l.Head(); c.Valid(); c = l.Next(c) {
		v := l.Lexeme(c)
		if !match.IsName(v) {
			continue
		}
		if rangeAt(l, c, v, "'0'", "'9'") {
			sink.Report(file, l.Line(c), "Replace hand-rolled digit-range check with isdigit("+v+")")
		}
		if rangeAt(l, c, v, "'a'", "'z'") || rangeAt(l, c, v, "'A'", "'Z'") {
			sink.Report(file, l.Line(c), "Replace hand-rolled alphabetic-range check with isalpha("+v+")")
		}
	}
}

// rangeAt reports whether `v >= lo && v <= hi` starts at c.
func rangeAt(l *token.List, c token.Cursor, v, lo, hi string) bool {
	return match.At(l, c, 1) == ">=" && match.At(l, c, 2) == lo &&
		match.At(l, c, 3) == "&&" && match.At(l, c, 4) == v &&
		match.At(l, c, 5) == "<=" && match.At(l, c, 6) == hi
}
