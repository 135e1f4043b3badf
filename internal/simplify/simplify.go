// Package simplify implements the §4.D token-list simplifier: a
// fixed-point rewrite pass that fuses multi-character operators,
// inlines integer const variables, folds sizeof of primitives and
// fixed-size arrays, and folds constant integer arithmetic. It is
// written as a flat fixed-point loop over the token list rather than
// a recursive traversal, per the design notes' guidance for the
// rewrite-based passes in this analyzer.
package simplify

import (
	"strconv"

	"github.com/danmar/cppcheck-sub017/internal/match"
	"github.com/danmar/cppcheck-sub017/internal/token"
)

// maxPasses bounds the fixed-point loop so a bug in a rewrite rule
// cannot hang the analyzer on pathological input; any real C/C++ file
// reaches a fixed point in a handful of passes.
const maxPasses = 10000

// fusedOperators is the closed set of adjacent-pair fusions recognized
// by operator fusion (§3 invariants).
var fusedOperators = map[string]bool{
	"==": true, "!=": true, "<=": true, ">=": true,
	"&&": true, "||": true, "<<": true, ">>": true,
	"::": true, "->": true,
	"+=": true, "-=": true, "*=": true, "/=": true, "&=": true, "|=": true,
}

var accessSpecifiers = map[string]bool{"public": true, "private": true, "protected": true}

var primitiveSize = map[string]string{"char": "1", "int": "4", "double": "8"}

const pointerSize = "8"

// Run applies every §4.D rewrite to l until a full scan produces no
// change (spec §8: "simplification is a fixed point").
func Run(l *token.List) {
	for i := 0; i < maxPasses; i++ {
		changed := false
		changed = fuseOperators(l) || changed
		changed = inlineConstants(l) || changed
		changed = foldSizeof(l) || changed
		changed = deleteMulByOne(l) || changed
		changed = foldIntegerArithmetic(l) || changed
		if !changed {
			return
		}
	}
}

// fuseOperators combines adjacent punctuation pairs that form a
// recognized multi-char operator, and fuses an access specifier with
// its trailing colon ("public" ":" -> "public:").
func fuseOperators(l *token.List) bool {
	changed := false
	c := l.Head()
	for c.Valid() {
		n := l.Next(c)
		if !n.Valid() {
			return changed
		}
		a, b := l.Lexeme(c), l.Lexeme(n)
		if fusedOperators[a+b] || (accessSpecifiers[a] && b == ":") {
			l.SetLexeme(c, a+b)
			l.EraseRange(c, l.Next(n))
			changed = true
			continue // re-examine c against its new neighbor
		}
		c = n
	}
	return changed
}

// inlineConstants implements "const [unsigned] int NAME = NUM ;"
// inlining: every later occurrence of NAME in the same file is
// replaced by NUM. Declaration detection is syntactic; shadowing is
// not considered, matching spec §4.D point 2.
func inlineConstants(l *token.List) bool {
	changed := false
	declPlain := match.Compile("const int var = num ;")
	declUnsigned := match.Compile("const unsigned int var = num ;")
	consts := map[int]map[string]string{}

	c := l.Head()
	for c.Valid() {
		if l.Lexeme(c) == "const" {
			if declUnsigned.Match(l, c) {
				registerConst(l, consts, match.TokAt(l, c, 3), match.TokAt(l, c, 5))
				c = l.Next(match.TokAt(l, c, 6))
				continue
			}
			if declPlain.Match(l, c) {
				registerConst(l, consts, match.TokAt(l, c, 2), match.TokAt(l, c, 4))
				c = l.Next(match.TokAt(l, c, 5))
				continue
			}
		}
		if names, ok := consts[l.FileIndex(c)]; ok {
			if v, ok2 := names[l.Lexeme(c)]; ok2 && l.Lexeme(c) != v {
				l.SetLexeme(c, v)
				changed = true
			}
		}
		c = l.Next(c)
	}
	return changed
}

func registerConst(l *token.List, consts map[int]map[string]string, name, num token.Cursor) {
	fi := l.FileIndex(name)
	if consts[fi] == nil {
		consts[fi] = map[string]string{}
	}
	consts[fi][l.Lexeme(name)] = l.Lexeme(num)
}

// foldSizeof folds sizeof(T*), sizeof(T) for a known-size primitive
// T, and sizeof(NAME) for a fixed-size array NAME declared earlier in
// the same enclosing block.
func foldSizeof(l *token.List) bool {
	changed := false
	ptrPattern := match.Compile("sizeof ( type * )")

	type arrayDecl struct {
		name  string
		size  int64
		count int64
		depth int
	}
	var stack []arrayDecl
	depth := 0

	c := l.Head()
	for c.Valid() {
		lx := l.Lexeme(c)

		switch lx {
		case "{":
			depth++
			c = l.Next(c)
			continue
		case "}":
			depth--
			for len(stack) > 0 && stack[len(stack)-1].depth > depth {
				stack = stack[:len(stack)-1]
			}
			c = l.Next(c)
			continue
		}

		if lx == "sizeof" {
			if ptrPattern.Match(l, c) {
				end := match.TokAt(l, c, 4)
				collapse(l, c, end, pointerSize)
				changed = true
				c = l.Next(c)
				continue
			}
			if match.At(l, c, 1) == "(" && match.At(l, c, 3) == ")" {
				arg := match.At(l, c, 2)
				closeTok := match.TokAt(l, c, 3)
				if size, ok := primitiveSize[arg]; ok {
					collapse(l, c, closeTok, size)
					changed = true
					c = l.Next(c)
					continue
				}
				for i := len(stack) - 1; i >= 0; i-- {
					if stack[i].name == arg {
						collapse(l, c, closeTok, strconv.FormatInt(stack[i].count*stack[i].size, 10))
						changed = true
						break
					}
				}
			}
		}

		if size, ok := primitiveSize[lx]; ok {
			nameCur := match.TokAt(l, c, 1)
			if match.IsName(l.Lexeme(nameCur)) && match.At(l, c, 2) == "[" &&
				match.IsNumber(match.At(l, c, 3)) && match.At(l, c, 4) == "]" && match.At(l, c, 5) == ";" {
				n, err := strconv.ParseInt(match.At(l, c, 3), 10, 64)
				sz, _ := strconv.ParseInt(size, 10, 64)
				if err == nil {
					stack = append(stack, arrayDecl{name: l.Lexeme(nameCur), size: sz, count: n, depth: depth})
				}
			}
		}

		c = l.Next(c)
	}
	return changed
}

// foldIntegerArithmetic folds "NUM OP NUM" windows bounded by the
// delimiter set named in spec §4.D point 4.
func foldIntegerArithmetic(l *token.List) bool {
	changed := false
	leftDelims := map[string]bool{"[": true, ",": true, "(": true, "=": true, "<": true, ">": true}
	rightDelims := map[string]bool{"]": true, ",": true, ")": true, ";": true, "=": true, "<": true, ">": true}

	var prev token.Cursor
	c := l.Head()
	for c.Valid() {
		n1 := l.Next(c)
		if !n1.Valid() {
			return changed
		}
		n2 := l.Next(n1)
		if !n2.Valid() {
			prev, c = c, n1
			continue
		}

		a, op, b := l.Lexeme(c), l.Lexeme(n1), l.Lexeme(n2)
		if match.IsNumber(a) && match.IsNumber(b) && (op == "+" || op == "-" || op == "*" || op == "/") {
			leftOK := !prev.Valid() || leftDelims[l.Lexeme(prev)]
			after := l.Next(n2)
			rightOK := !after.Valid() || rightDelims[l.Lexeme(after)]
			if leftOK && rightOK {
				if v, ok := evalFold(a, op, b); ok {
					collapse(l, c, n2, v)
					changed = true
					continue
				}
			}
		}

		prev, c = c, n1
	}
	return changed
}

// deleteMulByOne deletes any adjacent "* 1" or "1 *" pair, collapsing
// "x * 1" / "1 * x" to "x".
func deleteMulByOne(l *token.List) bool {
	changed := false
	var prev token.Cursor
	c := l.Head()
	for c.Valid() {
		n := l.Next(c)
		if !n.Valid() {
			return changed
		}
		a, b := l.Lexeme(c), l.Lexeme(n)
		if (a == "*" && b == "1") || (a == "1" && b == "*") {
			after := l.Next(n)
			l.EraseRange(prev, after)
			changed = true
			if prev.Valid() {
				c = l.Next(prev)
			} else {
				c = l.Head()
			}
			continue
		}
		prev, c = c, n
	}
	return changed
}

// collapse rewrites the inclusive range [first,last] to a single
// token carrying value.
func collapse(l *token.List, first, last token.Cursor, value string) {
	l.SetLexeme(first, value)
	l.EraseRange(first, l.Next(last))
}

func evalFold(a, op, b string) (string, bool) {
	x, err1 := strconv.ParseInt(a, 10, 64)
	y, err2 := strconv.ParseInt(b, 10, 64)
	if err1 != nil || err2 != nil {
		return "", false
	}
	switch op {
	case "+":
		return strconv.FormatInt(x+y, 10), true
	case "-":
		return strconv.FormatInt(x-y, 10), true
	case "*":
		return strconv.FormatInt(x*y, 10), true
	case "/":
		if y == 0 {
			return "", false
		}
		return strconv.FormatInt(x/y, 10), true
	}
	return "", false
}
