// Package lexer implements the tokenizer of spec §4.B: it lexes a C
// or C++ translation unit into the shared token.List, transitively
// inlining quoted #include directives and registering object-like
// #define substitutions of integer literals.
package lexer

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/danmar/cppcheck-sub017/internal/token"
)

// defaultMaxIncludeDepth bounds #include recursion; the spec only
// requires "depth-limited", not a specific number.
const defaultMaxIncludeDepth = 200

// Option configures a Lex run.
type Option func(*options)

type options struct {
	maxIncludeDepth int
}

// WithMaxIncludeDepth overrides the default include-recursion bound.
func WithMaxIncludeDepth(n int) Option {
	return func(o *options) { o.maxIncludeDepth = n }
}

// Lex tokenizes path and, transitively, every quoted #include it
// reaches, appending tokens to a single shared token.List and
// token.Registry for the whole translation unit. Returns an error only
// when path itself cannot be opened; a header that cannot be opened
// is silently skipped per spec §4.B/§7.
func Lex(path string, opts ...Option) (*token.List, *token.Registry, error) {
	o := options{maxIncludeDepth: defaultMaxIncludeDepth}
	for _, opt := range opts {
		opt(&o)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	list := token.New()
	reg := token.NewRegistry()
	s := &session{
		list:    list,
		reg:     reg,
		defines: map[string]string{},
		opts:    o,
	}

	fi := reg.Add(path)
	s.lexFile(fi, string(content), filepath.Dir(path), 0)
	return list, reg, nil
}

// session carries the mutable state threaded through recursive
// #include handling: the shared token list, file registry, the
// object-like #define substitution table, and the include-recursion
// bound. #define substitutions persist across header boundaries, the
// same simplification the teacher's own directive handling makes for
// its {$DEFINE} table (internal/lexer's conditional-compilation
// state used to be file-scoped too).
type session struct {
	list    *token.List
	reg     *token.Registry
	defines map[string]string
	opts    options
}

// lexFile tokenizes the content of one already-registered file,
// recursing into #include "..." directives it finds along the way.
func (s *session) lexFile(fileIndex int, content, dir string, depth int) {
	sc := newScanner(content)
	for {
		lx, line, ok := sc.next()
		if !ok {
			return
		}
		if strings.HasPrefix(lx, "#") {
			s.directive(sc, lx, line, fileIndex, dir, depth)
			continue
		}
		s.emit(lx, line, fileIndex)
	}
}

// emit appends lx to the shared list, substituting a registered
// #define value if lx names one.
func (s *session) emit(lx string, line, fileIndex int) {
	if v, ok := s.defines[lx]; ok {
		lx = v
	}
	s.list.Append(lx, line, fileIndex)
}

// directive dispatches a leading '#'-token to #include/#define
// handling, or silently consumes any other directive line.
func (s *session) directive(sc *scanner, lx string, line, fileIndex int, dir string, depth int) {
	switch lx {
	case "#include":
		s.include(sc, line, fileIndex, dir, depth)
	case "#define":
		s.define(sc, line)
	default:
		skipLine(sc, line)
	}
}

// include handles a quoted #include, recursing into the resolved
// file; an angle-bracket include is ignored entirely per spec §4.B.
func (s *session) include(sc *scanner, line, fileIndex int, dir string, depth int) {
	nxt, nline, ok := sc.next()
	if !ok || nline != line {
		return
	}
	if !strings.HasPrefix(nxt, "\"") {
		skipLine(sc, line)
		return
	}

	s.list.Append("#include", line, fileIndex)
	s.list.Append(nxt, line, fileIndex)

	rel := strings.Trim(nxt, "\"")
	if rel == "" {
		return
	}
	resolved := filepath.Join(dir, rel)
	if _, already := s.reg.IndexOf(resolved); already {
		return
	}
	if depth+1 > s.opts.maxIncludeDepth {
		return
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return
	}
	fi := s.reg.Add(resolved)
	s.lexFile(fi, string(data), filepath.Dir(resolved), depth+1)
}

// define registers an object-like #define of a decimal or hex integer
// literal; anything else is ignored (the directive is still consumed).
func (s *session) define(sc *scanner, line int) {
	name, nline, ok := sc.next()
	if !ok || nline != line || !isIdentLike(name) {
		return
	}
	val, vline, ok := sc.next()
	if !ok || vline != line {
		return
	}
	if isIntegerLiteral(val) {
		s.defines[name] = val
	}
}

func isIdentLike(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIntegerLiteral(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// skipLine discards every raw token remaining on line (an ignored
// directive); hex literal conversion already happened during lexing,
// so nothing observable is lost by not reconstructing the directive.
func skipLine(sc *scanner, line int) {
	for {
		save := *sc
		lx, l, ok := sc.next()
		if !ok || l != line {
			*sc = save
			return
		}
		_ = lx
	}
}

// toDecimal converts a hex integer literal's digits to its decimal
// string form; used at lex time so later stages never see "0x...".
func toDecimal(hexDigits string) (string, bool) {
	v, err := strconv.ParseUint(hexDigits, 16, 64)
	if err != nil {
		return "", false
	}
	return strconv.FormatUint(v, 10), true
}
