// Package checks implements the §4.G checker battery: a set of
// independent passes over the simplified token list, each reporting
// through the shared diagnostic sink. Every checker is a flat scan
// built on the same match helpers the simplifier and leak analyzer
// use; none of them build a symbol table or control-flow graph.
package checks

import (
	"strconv"
	"strings"

	"github.com/danmar/cppcheck-sub017/internal/match"
	"github.com/danmar/cppcheck-sub017/internal/token"
)

// arrayDecl is one `T name [ N ] ;`-shaped declaration of a primitive
// array with a literal size.
type arrayDecl struct {
	ElemSize int
	Count    int
	Decl     token.Cursor
}

// primitiveSize gives sizeof(T) for the primitive types the bounds
// checker reasons about; anything else is left alone.
var primitiveSize = map[string]int{
	"char": 1, "bool": 1,
	"short": 2,
	"int":   4, "float": 4,
	"long": 8, "double": 8,
}

func findArrayDecls(l *token.List) map[string]arrayDecl {
	out := map[string]arrayDecl{}
	for c := l.Head(); c.Valid(); c = l.Next(c) {
		size, ok := primitiveSize[l.Lexeme(c)]
		if !ok {
			continue
		}
		name := match.At(l, c, 1)
		if !match.IsName(name) {
			continue
		}
		if match.At(l, c, 2) != "[" || !match.IsNumber(match.At(l, c, 3)) ||
			match.At(l, c, 4) != "]" || match.At(l, c, 5) != ";" {
			continue
		}
		n, err := strconv.Atoi(match.At(l, c, 3))
		if err != nil {
			continue
		}
		out[name] = arrayDecl{ElemSize: size, Count: n, Decl: c}
	}
	return out
}

// declaredSigns records, for each name first declared with a plain
// integer-family type, whether that declaration was "unsigned" or a
// signed type. Later re-declarations of the same name are ignored.
func declaredSigns(l *token.List) map[string]string {
	out := map[string]string{}
	for c := l.Head(); c.Valid(); c = l.Next(c) {
		lx := l.Lexeme(c)
		if lx != "unsigned" && lx != "int" && lx != "long" && lx != "short" {
			continue
		}
		name := match.At(l, c, 1)
		if lx == "unsigned" && (name == "int" || name == "long" || name == "short" || name == "char") {
			name = match.At(l, c, 2)
		}
		if !match.IsName(name) {
			continue
		}
		if _, exists := out[name]; exists {
			continue
		}
		if lx == "unsigned" {
			out[name] = "unsigned"
		} else {
			out[name] = "signed"
		}
	}
	return out
}

// classNames collects every name declared with "class Name" anywhere
// in the file; shared by the class-invariant checks, the old-style
// cast check, and the const-by-value-parameter check.
func classNames(l *token.List) map[string]bool {
	out := map[string]bool{}
	for c := l.Head(); c.Valid(); c = l.Next(c) {
		if l.Lexeme(c) == "class" && match.IsName(match.At(l, c, 1)) {
			out[match.At(l, c, 1)] = true
		}
	}
	return out
}

// matchingBrace returns the cursor of the "}" that closes the brace
// opened at open, tracking nested depth. match.MatchingClose only
// handles "(" / "[" pairs, so brace nesting gets its own helper.
func matchingBrace(l *token.List, open token.Cursor) token.Cursor {
	depth := 0
	for c := open; c.Valid(); c = l.Next(c) {
		switch l.Lexeme(c) {
		case "{":
			depth++
		case "}":
			depth--
			if depth == 0 {
				return c
			}
		}
	}
	return token.Cursor{}
}

// stringLiteralContentLen returns the length of a string literal's
// content (escapes counted as one byte each, quotes excluded).
func stringLiteralContentLen(lexeme string) (int, bool) {
	if len(lexeme) < 2 || lexeme[0] != '"' || lexeme[len(lexeme)-1] != '"' {
		return 0, false
	}
	inner := lexeme[1 : len(lexeme)-1]
	n := 0
	for i := 0; i < len(inner); i++ {
		if inner[i] == '\\' && i+1 < len(inner) {
			i++
		}
		n++
	}
	return n, true
}

func hasSuffixFold(s, suffix string) bool {
	return len(s) >= len(suffix) && strings.EqualFold(s[len(s)-len(suffix):], suffix)
}

// atoiOr parses an unsigned decimal literal, returning fallback on
// anything that isn't one (the tokenizer never emits a leading '-' as
// part of a number literal, so this is the full grammar it needs to
// accept).
func atoiOr(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return fallback
		}
		n = n*10 + int(s[i]-'0')
	}
	return n
}
