package match

import (
	"testing"

	"github.com/danmar/cppcheck-sub017/internal/token"
)

func build(l *token.List, lexemes ...string) {
	for _, lx := range lexemes {
		l.Append(lx, 1, 0)
	}
}

func TestMatchLiteralsAndPlaceholders(t *testing.T) {
	l := token.New()
	build(l, "if", "(", "p", ")", "delete", "p", ";")

	if !Match(l, l.Head(), "if ( var )") {
		t.Fatalf("expected pattern to match")
	}
	if Match(l, l.Head(), "if ( num )") {
		t.Fatalf("num should not match an identifier")
	}
}

func TestMatchNum(t *testing.T) {
	l := token.New()
	build(l, "x", "=", "42", ";")

	c := TokAt(l, l.Head(), 2)
	if !Match(l, c, "num ;") {
		t.Fatalf("expected num to match a digit-leading lexeme")
	}
}

func TestMatchAlternation(t *testing.T) {
	l := token.New()
	build(l, "free", "(", "p", ")", ";")

	if !Match(l, l.Head(), "free|delete (") {
		t.Fatalf("expected alternation to match free")
	}

	l2 := token.New()
	build(l2, "fclose", "(", "p", ")", ";")
	if Match(l2, l2.Head(), "free|delete (") {
		t.Fatalf("fclose should not match free|delete")
	}
}

func TestMatchNegatedAlternation(t *testing.T) {
	l := token.New()
	build(l, "x", "=", "y", ";")

	// "|int|char" with the leading empty branch means "not int, not char".
	if !Match(l, l.Head(), "|int|char") {
		t.Fatalf("expected negated alternation to match a non-listed lexeme")
	}

	l2 := token.New()
	build(l2, "int", "x", ";")
	if Match(l2, l2.Head(), "|int|char") {
		t.Fatalf("negated alternation should not match a listed lexeme")
	}
}

func TestMatchFailsShortOfEnd(t *testing.T) {
	l := token.New()
	build(l, "if", "(")

	if Match(l, l.Head(), "if ( var )") {
		t.Fatalf("pattern longer than the remaining tokens must not match")
	}
}

func TestAtOutOfRangeReturnsEmpty(t *testing.T) {
	l := token.New()
	build(l, "a", "b")

	if got := At(l, l.Head(), 10); got != "" {
		t.Fatalf("At() out of range = %q, want \"\"", got)
	}
}

func TestFindScansForward(t *testing.T) {
	l := token.New()
	build(l, "int", "x", ";", "free", "(", "x", ")", ";")

	c := Find(l, l.Head(), "free (")
	if l.Lexeme(c) != "free" {
		t.Fatalf("Find() landed on %q, want \"free\"", l.Lexeme(c))
	}
}

func TestFindNoMatchReturnsInvalid(t *testing.T) {
	l := token.New()
	build(l, "int", "x", ";")

	c := Find(l, l.Head(), "free (")
	if c.Valid() {
		t.Fatalf("expected invalid cursor when nothing matches")
	}
}
