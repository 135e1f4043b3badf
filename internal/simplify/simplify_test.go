package simplify

import (
	"testing"

	"github.com/danmar/cppcheck-sub017/internal/token"
)

func build(lexemes ...string) *token.List {
	l := token.New()
	for _, lx := range lexemes {
		l.Append(lx, 1, 0)
	}
	return l
}

func lexemes(l *token.List) []string {
	var out []string
	l.Walk(func(c token.Cursor) bool {
		out = append(out, l.Lexeme(c))
		return true
	})
	return out
}

func assertTokens(t *testing.T, l *token.List, want []string) {
	t.Helper()
	got := lexemes(l)
	if len(got) != len(want) {
		t.Fatalf("tokens = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token[%d] = %q, want %q (all: %v)", i, got[i], want[i], got)
		}
	}
}

func TestFuseOperators(t *testing.T) {
	l := build("a", "=", "=", "b", "&", "&", "c")
	Run(l)
	assertTokens(t, l, []string{"a", "==", "b", "&&", "c"})
}

func TestFuseAccessSpecifier(t *testing.T) {
	l := build("class", "C", "{", "public", ":", "int", "i", ";", "}", ";")
	Run(l)
	assertTokens(t, l, []string{"class", "C", "{", "public:", "int", "i", ";", "}", ";"})
}

func TestInlineConstant(t *testing.T) {
	l := build("const", "int", "SIZE", "=", "10", ";", "int", "a", "[", "SIZE", "]", ";")
	Run(l)
	assertTokens(t, l, []string{"const", "int", "SIZE", "=", "10", ";", "int", "a", "[", "10", "]", ";"})
}

func TestInlineUnsignedConstant(t *testing.T) {
	l := build("const", "unsigned", "int", "N", "=", "4", ";", "x", "=", "N", ";")
	Run(l)
	assertTokens(t, l, []string{"const", "unsigned", "int", "N", "=", "4", ";", "x", "=", "4", ";"})
}

func TestFoldSizeofPointer(t *testing.T) {
	l := build("int", "s", "=", "sizeof", "(", "int", "*", ")", ";")
	Run(l)
	assertTokens(t, l, []string{"int", "s", "=", "8", ";"})
}

func TestFoldSizeofPrimitive(t *testing.T) {
	l := build("int", "s", "=", "sizeof", "(", "char", ")", ";")
	Run(l)
	assertTokens(t, l, []string{"int", "s", "=", "1", ";"})
}

func TestFoldSizeofArray(t *testing.T) {
	l := build("void", "f", "(", ")", "{",
		"char", "buf", "[", "10", "]", ";",
		"memset", "(", "buf", ",", "0", ",", "sizeof", "(", "buf", ")", ")", ";",
		"}")
	Run(l)
	assertTokens(t, l, []string{"void", "f", "(", ")", "{",
		"char", "buf", "[", "10", "]", ";",
		"memset", "(", "buf", ",", "0", ",", "10", ")", ";",
		"}"})
}

func TestFoldSizeofArrayOutOfScopeNotReplaced(t *testing.T) {
	l := build("void", "f", "(", ")", "{",
		"{", "char", "buf", "[", "4", "]", ";", "}",
		"int", "s", "=", "sizeof", "(", "buf", ")", ";",
		"}")
	Run(l)
	got := lexemes(l)
	found := false
	for _, lx := range got {
		if lx == "sizeof" {
			found = true
		}
	}
	if !found {
		t.Fatalf("sizeof(buf) was folded after buf went out of scope: %v", got)
	}
}

func TestFoldIntegerArithmetic(t *testing.T) {
	l := build("int", "a", "[", "2", "+", "3", "]", ";")
	Run(l)
	assertTokens(t, l, []string{"int", "a", "[", "5", "]", ";"})
}

func TestFoldIntegerDivisionByZeroNotFolded(t *testing.T) {
	l := build("x", "=", "4", "/", "0", ";")
	Run(l)
	assertTokens(t, l, []string{"x", "=", "4", "/", "0", ";"})
}

func TestDeleteMulByOneBothOrders(t *testing.T) {
	l := build("x", "=", "n", "*", "1", ";", "y", "=", "1", "*", "m", ";")
	Run(l)
	assertTokens(t, l, []string{"x", "=", "n", ";", "y", "=", "m", ";"})
}

func TestSimplifyIsIdempotent(t *testing.T) {
	l := build("a", "=", "=", "b", ";", "int", "s", "=", "sizeof", "(", "int", ")", ";")
	Run(l)
	first := lexemes(l)
	Run(l)
	second := lexemes(l)
	if len(first) != len(second) {
		t.Fatalf("second Run() changed token count: %v -> %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("second Run() changed token[%d]: %v -> %v", i, first, second)
		}
	}
}
