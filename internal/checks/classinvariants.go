package checks

import (
	"fmt"

	"github.com/danmar/cppcheck-sub017/internal/diag"
	"github.com/danmar/cppcheck-sub017/internal/match"
	"github.com/danmar/cppcheck-sub017/internal/token"
)

// ClassInvariants implements a representative slice of the class
// checks: a class with no constructor, an assignment operator
// declared to return void, and memset() applied directly to a class
// instance. Full member-initialization tracking (constructor body
// walk, memset/Clear suppression, static-member-definition lookup) is
// not attempted.
func ClassInvariants(l *token.List, file string, sink *diag.Sink) {
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
		checkConstructor(l, file, sink, name, brace, end)
		checkOperatorAssign(l, file, sink, brace, end)
	}
	checkMemsetOnClass(l, file, sink)
}

// UnusedPrivateMethods is the style-mode "unused private function"
// check named directly in spec §6's --style list.
func UnusedPrivateMethods(l *token.List, file string, sink *diag.Sink) {
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
		checkUnusedPrivateMethods(l, file, sink, name, brace, end)
	}
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

func checkConstructor(l *token.List, file string, sink *diag.Sink, name string, brace, end token.Cursor) {
	for c := l.Next(brace); c.Valid() && c != end; c = l.Next(c) {
		if l.Lexeme(c) == name && match.At(l, c, 1) == "(" {
			return
		}
	}
	sink.Report(file, l.Line(brace), fmt.Sprintf("class '%s' has no constructor", name))
}

func checkOperatorAssign(l *token.List, file string, sink *diag.Sink, brace, end token.Cursor) {
	for c := l.Next(brace); c.Valid() && c != end; c = l.Next(c) {
		if l.Lexeme(c) == "void" && match.At(l, c, 1) == "operator" && match.At(l, c, 2) == "=" {
			sink.Report(file, l.Line(c), "assignment operator 'operator=' should return a reference to *this")
		}
	}
}

// checkUnusedPrivateMethods flags a private, non-constructor member
// function with a body that is never called anywhere in the file.
// Classes that grant friendship are skipped: a friend may be the only
// caller, and this check never looks inside friend bodies.
func checkUnusedPrivateMethods(l *token.List, file string, sink *diag.Sink, className string, brace, end token.Cursor) {
	for c := l.Next(brace); c.Valid() && c != end; c = l.Next(c) {
		if l.Lexeme(c) == "friend" && match.At(l, c, 1) == "class" {
			return
		}
	}

	type decl struct {
		name string
		cur  token.Cursor
	}
	var methods []decl
	inPrivate := false
	for c := l.Next(brace); c.Valid() && c != end; c = l.Next(c) {
		lx := l.Lexeme(c)
		if (lx == "public" || lx == "protected" || lx == "private") && match.At(l, c, 1) == ":" {
			inPrivate = lx == "private"
			continue
		}
		if !inPrivate || !match.IsName(lx) || lx == className || match.At(l, c, 1) != "(" {
			continue
		}
		open := match.TokAt(l, c, 1)
		cp := match.MatchingClose(l, open)
		if cp.Valid() && l.Lexeme(l.Next(cp)) == "{" {
			methods = append(methods, decl{name: lx, cur: c})
		}
	}

	for _, m := range methods {
		used := false
		for c := l.Head(); c.Valid(); c = l.Next(c) {
			if c == m.cur {
				continue
			}
			if l.Lexeme(c) == m.name && match.At(l, c, 1) == "(" {
				used = true
				break
			}
		}
		if !used {
			sink.Report(file, l.Line(m.cur), fmt.Sprintf("Private function '%s::%s' is never called", className, m.name))
		}
	}
}

// checkMemsetOnClass flags memset(x, n, sizeof(T)) where T names a
// declared class: zeroing a class's raw bytes bypasses its
// constructor-established invariants and any vtable pointer.
func checkMemsetOnClass(l *token.List, file string, sink *diag.Sink) {
	classes := classNames(l)
	if len(classes) == 0 {
		return
	}
	for c := l.Head(); c.Valid(); c = l.Next(c) {
		if l.Lexeme(c) != "memset" || match.At(l, c, 1) != "(" {
			continue
		}
		open := match.TokAt(l, c, 1)
		closeParen := match.MatchingClose(l, open)
		if !closeParen.Valid() {
			continue
		}
		args := match.SplitArgs(l, open, closeParen)
		if len(args) != 3 || len(args[2]) < 3 {
			continue
		}
		sz := args[2]
		if l.Lexeme(sz[0]) != "sizeof" || l.Lexeme(sz[1]) != "(" {
			continue
		}
		typeName := l.Lexeme(sz[2])
		if classes[typeName] {
			sink.Report(file, l.Line(c), fmt.Sprintf("Using memset() on class '%s' overwrites its internal state directly", typeName))
		}
	}
}
