package checks

import (
	"fmt"
	"path/filepath"

	"github.com/danmar/cppcheck-sub017/internal/diag"
	"github.com/danmar/cppcheck-sub017/internal/match"
	"github.com/danmar/cppcheck-sub017/internal/token"
)

// containerKeyword names the container keywords the unneeded-header
// check looks for in a header file: class, struct, namespace and enum.
// Plain variable declarations are found separately, by type keyword.
var containerKeyword = map[string]bool{"class": true, "struct": true, "namespace": true, "enum": true}

// UnneededHeader is the §4.G "unneeded header" check. It must run on
// the *un-simplified* token list (rawList) so that the #include
// tokens emitted by the tokenizer (spec §4.B) are still present; reg
// resolves each #include's file index back to the header's own name
// list. Every top-level name the header declares is searched for in
// the tokens that did not come from that header; an #include none of
// whose names is used there earns one diagnostic.
func UnneededHeader(rawList *token.List, reg *token.Registry, file string, sink *diag.Sink) {
	for c := rawList.Head(); c.Valid(); c = rawList.Next(c) {
		if rawList.Lexeme(c) != "#include" {
			continue
		}
		pathTok := match.At(rawList, c, 1)
		path, ok := unquote(pathTok)
		if !ok {
			continue
		}
		// The registry keys #include targets by the path resolved
		// against the including file's directory (internal/lexer's
		// include()), not the bare quoted literal.
		resolved := filepath.Join(filepath.Dir(file), path)
		hIdx, found := reg.IndexOf(resolved)
		if !found || hIdx == 0 {
			continue
		}

		names := topLevelNames(rawList, hIdx)
		if len(names) == 0 {
			continue
		}
		anyUsed := false
		for _, n := range names {
			if nameUsedOutsideHeader(rawList, hIdx, n) {
				anyUsed = true
				break
			}
		}
		if !anyUsed {
			sink.Report(file, rawList.Line(c), fmt.Sprintf("#include \"%s\" is not needed to compile this file", path))
		}
	}
}

func unquote(s string) (string, bool) {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", false
	}
	return s[1 : len(s)-1], true
}

// topLevelNames collects the declared names of every class, struct,
// namespace, enum, or simple variable declaration whose tokens came
// from fileIdx, at that file's own brace depth 0.
func topLevelNames(l *token.List, fileIdx int) []string {
	var out []string
	depth := 0
	for c := l.Head(); c.Valid(); c = l.Next(c) {
		if l.FileIndex(c) != fileIdx {
			continue
		}
		switch l.Lexeme(c) {
		case "{":
			depth++
			continue
		case "}":
			if depth > 0 {
				depth--
			}
			continue
		}
		if depth != 0 {
			continue
		}
		lx := l.Lexeme(c)
		if containerKeyword[lx] {
			if name := match.At(l, c, 1); match.IsName(name) {
				out = append(out, name)
			}
			continue
		}
		if primitiveSize[lx] > 0 || lx == "unsigned" {
			if name := match.At(l, c, 1); match.IsName(name) {
				out = append(out, name)
			}
		}
	}
	return out
}

// nameUsedOutsideHeader reports whether name is mentioned by any token
// whose file index differs from headerIdx.
func nameUsedOutsideHeader(l *token.List, headerIdx int, name string) bool {
	for c := l.Head(); c.Valid(); c = l.Next(c) {
		if l.FileIndex(c) == headerIdx {
			continue
		}
		if l.Lexeme(c) == name {
			return true
		}
	}
	return false
}
