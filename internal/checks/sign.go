package checks

import (
	"fmt"

	"github.com/danmar/cppcheck-sub017/internal/diag"
	"github.com/danmar/cppcheck-sub017/internal/match"
	"github.com/danmar/cppcheck-sub017/internal/token"
)

// SignMismatch flags `a / b` where one operand was declared unsigned
// and the other a plain signed integer type, in the same file.
func SignMismatch(l *token.List, file string, sink *diag.Sink) {
	signs := declaredSigns(l)
	if len(signs) == 0 {
		return
	}
	for c := l.Head(); c.Valid(); c = l.Next(c) {
		a := l.Lexeme(c)
		if match.At(l, c, 1) != "/" {
			continue
		}
		b := match.At(l, c, 2)
		sa, ok1 := signs[a]
		sb, ok2 := signs[b]
		if !ok1 || !ok2 || sa == sb {
			continue
		}
		sink.Report(file, l.Line(c), fmt.Sprintf("Division '%s / %s' mixes a signed and an unsigned operand", a, b))
	}
}

// CharAsIndexOrBitop flags a char-typed variable used as an array
// index or as the operand of |, &, or ^. Taking its address suppresses
// the warning: "&name" passes it by reference rather than evaluating
// its (possibly negative) value.
func CharAsIndexOrBitop(l *token.List, file string, sink *diag.Sink) {
	chars := map[string]bool{}
	for c := l.Head(); c.Valid(); c = l.Next(c) {
		if l.Lexeme(c) != "char" {
			continue
		}
		if name := match.At(l, c, 1); match.IsName(name) {
			chars[name] = true
		}
	}
	if len(chars) == 0 {
		return
	}

	prev := ""
	for c := l.Head(); c.Valid(); c = l.Next(c) {
		name := l.Lexeme(c)
		if !chars[name] {
			prev = name
			continue
		}
		if prev == "&" {
			prev = name
			continue
		}
		if prev == "[" && match.At(l, c, 1) == "]" {
			sink.Report(file, l.Line(c), fmt.Sprintf("'%s' is a char used as an array index; it may be negative on some platforms", name))
		} else if op := match.At(l, c, 1); op == "|" || op == "&" || op == "^" {
			sink.Report(file, l.Line(c), fmt.Sprintf("'%s' is a char used in a bitwise operation; it may sign-extend unexpectedly", name))
		}
		prev = name
	}
}

// ConstByValueParams flags a parameter declared `const std::T v` or
// `const UserT v` (UserT a declared class) passed by value, where a
// const reference would avoid the copy.
func ConstByValueParams(l *token.List, file string, sink *diag.Sink) {
	classes := classNames(l)
	for c := l.Head(); c.Valid(); c = l.Next(c) {
		if l.Lexeme(c) != "const" {
			continue
		}
		typeTok := match.TokAt(l, c, 1)
		typeName := l.Lexeme(typeTok)
		if typeName == "std" {
			if match.At(l, c, 2) != "::" {
				continue
			}
			typeName = match.At(l, c, 3)
			typeTok = match.TokAt(l, c, 3)
		} else if !classes[typeName] {
			continue
		}

		nameTok := l.Next(typeTok)
		name := l.Lexeme(nameTok)
		if !match.IsName(name) {
			continue
		}
		after := match.At(l, nameTok, 1)
		if after != "," && after != ")" {
			continue
		}
		sink.Report(file, l.Line(c), fmt.Sprintf("Parameter '%s' of type '%s' is passed by value; consider a const reference", name, typeName))
	}
}
