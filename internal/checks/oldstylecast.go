package checks

import (
	"fmt"

	"github.com/danmar/cppcheck-sub017/internal/diag"
	"github.com/danmar/cppcheck-sub017/internal/match"
	"github.com/danmar/cppcheck-sub017/internal/token"
)

// OldStyleCast is the supplemented WarningOldStylePointerCast check:
// a C-style pointer cast `(Type *)var` where Type names a declared
// class, restricted to .cpp files exactly as the original check is.
func OldStyleCast(l *token.List, file string, sink *diag.Sink) {
	if !hasSuffixFold(file, ".cpp") {
		return
	}
	classes := classNames(l)
	if len(classes) == 0 {
		return
	}
	for c := l.Head(); c.Valid(); c = l.Next(c) {
		if l.Lexeme(c) != "(" {
			continue
		}
		typeName := match.At(l, c, 1)
		if !classes[typeName] {
			continue
		}
		if match.At(l, c, 2) != "*" || match.At(l, c, 3) != ")" {
			continue
		}
		v := match.At(l, c, 4)
		if !match.IsName(v) {
			continue
		}
		sink.Report(file, l.Line(c), fmt.Sprintf("C-style pointer cast to '%s *'; prefer static_cast or dynamic_cast", typeName))
	}
}
