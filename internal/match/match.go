// Package match implements the string-pattern matcher that every
// checker in this analyzer is built on top of: short
// whitespace-separated patterns with placeholders, evaluated against
// a token cursor. It is deliberately not an AST matcher — see
// DESIGN.md for why the textual form is kept.
package match

import (
	"strings"

	"github.com/danmar/cppcheck-sub017/internal/token"
)

type kind int

const (
	kindLiteral kind = iota
	kindVar
	kindType
	kindNum
	kindAlt
)

type atomDesc struct {
	kind    kind
	literal string
	alts    []string
	negate  bool // true when the alternation had an empty branch: "match if NOT one of alts"
}

// Pattern is a pre-compiled sequence of atom descriptors, compiled
// once at load time per the teacher's and the spec's guidance.
type Pattern struct {
	atoms []atomDesc
}

// Compile parses a whitespace-separated pattern string into a
// reusable Pattern. Malformed alternations (e.g. a bare "|") are
// treated as literal pipes; the matcher never panics on a pattern.
func Compile(pattern string) *Pattern {
	fields := strings.Fields(pattern)
	p := &Pattern{atoms: make([]atomDesc, 0, len(fields))}
	for _, f := range fields {
		p.atoms = append(p.atoms, compileAtom(f))
	}
	return p
}

func compileAtom(f string) atomDesc {
	switch f {
	case "var":
		return atomDesc{kind: kindVar}
	case "type":
		return atomDesc{kind: kindType}
	case "num":
		return atomDesc{kind: kindNum}
	}
	if strings.Contains(f, "|") && strings.Trim(f, "|") != "" {
		parts := strings.Split(f, "|")
		negate := false
		var alts []string
		for _, part := range parts {
			if part == "" {
				negate = true
				continue
			}
			alts = append(alts, part)
		}
		return atomDesc{kind: kindAlt, alts: alts, negate: negate}
	}
	return atomDesc{kind: kindLiteral, literal: f}
}

func isNameStart(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigitStart(s string) bool {
	return s != "" && s[0] >= '0' && s[0] <= '9'
}

func (a atomDesc) matches(lexeme string) bool {
	switch a.kind {
	case kindVar, kindType:
		return isNameStart(lexeme)
	case kindNum:
		return isDigitStart(lexeme)
	case kindAlt:
		in := false
		for _, alt := range a.alts {
			if alt == lexeme {
				in = true
				break
			}
		}
		if a.negate {
			return !in
		}
		return in
	default:
		return a.literal == lexeme
	}
}

// Match reports whether the compiled pattern matches the token
// sequence starting at start. The cursor itself is never advanced;
// callers that need to continue past a match do so with At/gettok-style
// indexed lookups.
func (p *Pattern) Match(l *token.List, start token.Cursor) bool {
	c := start
	for _, a := range p.atoms {
		if !c.Valid() {
			return false
		}
		if !a.matches(l.Lexeme(c)) {
			return false
		}
		c = l.Next(c)
	}
	return true
}

// Match compiles pattern and evaluates it against start in one call.
// Prefer Compile+Pattern.Match on any path evaluated more than once.
func Match(l *token.List, start token.Cursor, pattern string) bool {
	return Compile(pattern).Match(l, start)
}

// At returns the lexeme n steps ahead of start without advancing any
// cursor. Out-of-range requests return "" rather than panicking.
func At(l *token.List, start token.Cursor, n int) string {
	c := start
	for i := 0; i < n; i++ {
		if !c.Valid() {
			return ""
		}
		c = l.Next(c)
	}
	if !c.Valid() {
		return ""
	}
	return l.Lexeme(c)
}

// TokAt returns the cursor n steps ahead of start, or an invalid
// cursor if out of range.
func TokAt(l *token.List, start token.Cursor, n int) token.Cursor {
	c := start
	for i := 0; i < n; i++ {
		if !c.Valid() {
			return token.Cursor{}
		}
		c = l.Next(c)
	}
	return c
}

// IsName reports whether s would match the "var"/"type" placeholder;
// exported so callers (and tests asserting the round-trip property in
// spec §8) can share the rule with the tokenizer's identifier lexing.
func IsName(s string) bool { return isNameStart(s) }

// IsNumber reports whether s would match the "num" placeholder.
func IsNumber(s string) bool { return isDigitStart(s) }

// Find scans forward from start (inclusive) for the first cursor at
// which pattern matches, mirroring the original findtoken/findmatch
// helper used throughout every checker.
func Find(l *token.List, start token.Cursor, pattern string) token.Cursor {
	p := Compile(pattern)
	return p.Find(l, start)
}

// Find scans forward from start (inclusive) for the first match of p.
func (p *Pattern) Find(l *token.List, start token.Cursor) token.Cursor {
	for c := start; c.Valid(); c = l.Next(c) {
		if p.Match(l, c) {
			return c
		}
	}
	return token.Cursor{}
}

// MatchingClose returns the cursor of the token that closes the
// bracket opened at open ("(" or "["), tracking nested depth of the
// same bracket-kind pair. Every checker that needs to skip a
// parenthesized condition or argument list shares this helper rather
// than re-implementing paren counting.
func MatchingClose(l *token.List, open token.Cursor) token.Cursor {
	openLx := l.Lexeme(open)
	closeLx := ")"
	if openLx == "[" {
		closeLx = "]"
	}
	depth := 0
	for c := open; c.Valid(); c = l.Next(c) {
		switch l.Lexeme(c) {
		case openLx:
			depth++
		case closeLx:
			depth--
			if depth == 0 {
				return c
			}
		}
	}
	return token.Cursor{}
}

// SplitArgs splits the tokens strictly between open and close on
// top-level commas (commas nested inside a further bracket pair do
// not split), returning each comma-separated group as a cursor slice.
// A group may be empty (e.g. an empty argument list never produces a
// group; a trailing comma would).
func SplitArgs(l *token.List, open, close token.Cursor) [][]token.Cursor {
	var args [][]token.Cursor
	var cur []token.Cursor
	depth := 0
	for c := l.Next(open); c.Valid() && c != close; {
		lx := l.Lexeme(c)
		switch lx {
		case "(", "[":
			depth++
		case ")", "]":
			depth--
		}
		if lx == "," && depth == 0 {
			args = append(args, cur)
			cur = nil
			c = l.Next(c)
			continue
		}
		cur = append(cur, c)
		c = l.Next(c)
	}
	if len(cur) > 0 || len(args) > 0 {
		args = append(args, cur)
	}
	return args
}
