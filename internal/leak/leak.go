// Package leak implements the §4.F memory-leak analyzer: it walks a
// tracked variable's scope reducing it to a closed alphabet of
// events, rewrites that stream to a fixed point, and classifies the
// result as a leak, a mismatched allocator/deallocator pair, or
// clean. It never builds a control-flow graph; like the simplifier it
// is a flat pass over the token sequence, which is why it can only
// ever be best-effort on constructs it doesn't model (switch lowering
// chief among them - see DESIGN.md).
package leak

import (
	"fmt"

	"github.com/danmar/cppcheck-sub017/internal/diag"
	"github.com/danmar/cppcheck-sub017/internal/funcindex"
	"github.com/danmar/cppcheck-sub017/internal/match"
	"github.com/danmar/cppcheck-sub017/internal/token"
)

// Kind names the allocation/deallocation family a variable was last
// observed going through, so a later call from the mismatched family
// can be flagged (e.g. malloc'd then delete'd).
type Kind int

const (
	None Kind = iota
	Malloc
	GlibMalloc
	NewScalar
	NewArray
	FileOpen
	PipeOpen
)

func (k Kind) String() string {
	switch k {
	case Malloc:
		return "malloc"
	case GlibMalloc:
		return "g_malloc"
	case NewScalar:
		return "new"
	case NewArray:
		return "new[]"
	case FileOpen:
		return "fopen"
	case PipeOpen:
		return "popen"
	default:
		return "none"
	}
}

var mallocFamily = map[string]bool{
	"malloc": true, "calloc": true, "strdup": true,
	"kmalloc": true, "kzalloc": true, "kcalloc": true,
}

var deallocName = map[string]Kind{
	"free": Malloc, "kfree": Malloc, "g_free": GlibMalloc,
	"fclose": FileOpen, "pclose": PipeOpen,
}

// Event is one atom of the reduced stream. Cur anchors it to the
// token that produced it, so a classification can report a location.
type Event struct {
	Tag  string
	Kind Kind
	Cur  token.Cursor
}

// Extractor pulls the reduced event stream for one tracked variable
// out of a scope's tokens (stage 1 of §4.F), and reports mismatches
// as it finds them (mismatch reporting does not wait on stage 3).
type Extractor struct {
	List   *token.List
	Index  *funcindex.Index
	File   string
	Sink   *diag.Sink
	extra  map[string]Kind // runtime-registered additional allocation producers
}

// New returns an Extractor bound to one file's token list, function
// index, and diagnostic sink.
func New(l *token.List, idx *funcindex.Index, file string, sink *diag.Sink) *Extractor {
	return &Extractor{List: l, Index: idx, File: file, Sink: sink, extra: map[string]Kind{}}
}

// RegisterProducer adds an additional allocation-producer function
// name, mapped to the kind it should be tracked as. Spec §4.F allows
// a caller to extend the built-in malloc/new/fopen/popen families
// this way (e.g. a project-specific wrapper around malloc).
func (e *Extractor) RegisterProducer(name string, k Kind) { e.extra[name] = k }

func (e *Extractor) allocKindOf(name string) (Kind, bool) {
	if mallocFamily[name] {
		return Malloc, true
	}
	if len(name) > 2 && name[0] == 'g' && name[1] == '_' {
		return GlibMalloc, true
	}
	if name == "fopen" {
		return FileOpen, true
	}
	if name == "popen" {
		return PipeOpen, true
	}
	if k, ok := e.extra[name]; ok {
		return k, true
	}
	return None, false
}

// AnalyzeVariable extracts and classifies the reduced stream for one
// local variable and reports a leak diagnostic when classification
// finds one. Mismatches are reported independently during extraction.
func (e *Extractor) AnalyzeVariable(bodyStart token.Cursor, varName string, showAll bool) {
	events := e.Extract(bodyStart, varName, 0)
	if leak, at := Classify(events, showAll); leak {
		e.Sink.Report(e.File, e.List.Line(at), fmt.Sprintf("Memory leak: %s", varName))
	}
}

// AnalyzeClassMember classifies a pointer member across every member
// function body, reporting a leak tagged with the fully-qualified
// name when some function allocates the member and no function (of
// those given) ever releases it.
func (e *Extractor) AnalyzeClassMember(className, memberName string, methodBodies []token.Cursor) {
	anyAlloc, anyDealloc := false, false
	var allocAt token.Cursor
	for _, body := range methodBodies {
		for _, ev := range e.Extract(body, memberName, 0) {
			switch ev.Tag {
			case "alloc":
				anyAlloc = true
				if !allocAt.Valid() {
					allocAt = ev.Cur
				}
			case "dealloc":
				anyDealloc = true
			}
		}
	}
	if anyAlloc && !anyDealloc {
		e.Sink.Report(e.File, e.List.Line(allocAt), fmt.Sprintf("Memory leak: %s::%s", className, memberName))
	}
}

func (e *Extractor) reportMismatch(c token.Cursor, varName string, have, want Kind) {
	_ = have
	_ = want
	e.Sink.Report(e.File, e.List.Line(c), fmt.Sprintf("Mismatching allocation and deallocation: %s", varName))
}

// Extract walks tokens from just inside bodyStart ("{") to its
// matching "}", tracking varName, and returns its reduced event
// stream (stage 1 of §4.F). callDepth bounds cross-procedural descent
// into called functions at 2, per spec.
func (e *Extractor) Extract(bodyStart token.Cursor, varName string, callDepth int) []Event {
	l := e.List
	var events []Event
	var kind Kind
	depth := 0
	prev := ""
	c := l.Next(bodyStart)

	advance := func(x token.Cursor) {
		prev = l.Lexeme(x)
		c = l.Next(x)
	}

	for c.Valid() {
		lx := l.Lexeme(c)

		switch lx {
		case "{":
			depth++
			events = append(events, Event{Tag: "{", Cur: c})
			advance(c)
			continue
		case "}":
			if depth == 0 {
				return events
			}
			depth--
			events = append(events, Event{Tag: "}", Cur: c})
			advance(c)
			continue
		}

		if last, dealCur, k, ok := e.matchRedundantDeallocGuard(c, varName); ok {
			if kind != None && kind != k {
				e.reportMismatch(dealCur, varName, kind, k)
			}
			kind = k
			events = append(events, Event{Tag: "dealloc", Kind: k, Cur: dealCur}, Event{Tag: ";", Cur: dealCur})
			advance(last)
			continue
		}

		if e.isAssignToVar(c, varName) {
			rhs := match.TokAt(l, c, 2)
			if k, ok := e.matchAllocProducer(rhs, varName); ok {
				if kind != None && kind != k {
					e.reportMismatch(c, varName, kind, k)
				}
				kind = k
				events = append(events, Event{Tag: "alloc", Kind: k, Cur: c})
				next, foundSemi := e.skipToSemicolon(c)
				if foundSemi {
					events = append(events, Event{Tag: ";", Cur: c})
				}
				c = next
				prev = ";"
				continue
			}
		}

		if end, k, ok := e.matchDeallocCall(c, varName); ok {
			if kind != None && kind != k {
				e.reportMismatch(c, varName, kind, k)
			}
			kind = k
			events = append(events, Event{Tag: "dealloc", Kind: k, Cur: c})
			advance(end)
			continue
		}

		if tag, end, ok := e.matchIf(c, varName); ok {
			events = append(events, Event{Tag: tag, Cur: c})
			advance(end)
			continue
		}

		if lx == "for" || lx == "while" {
			open := match.TokAt(l, c, 1)
			closeParen := match.MatchingClose(l, open)
			cond := conditionTokens(l, open, closeParen)
			events = append(events, Event{Tag: "loop", Cur: c})
			if len(cond) == 2 && cond[0] == "!" && cond[1] == varName {
				events = append(events, Event{Tag: "!var", Cur: c})
			}
			if closeParen.Valid() {
				advance(closeParen)
			} else {
				advance(c)
			}
			continue
		}

		if lx == "switch" {
			open := match.TokAt(l, c, 1)
			closeParen := match.MatchingClose(l, open)
			events = append(events, Event{Tag: "switch", Cur: c})
			if closeParen.Valid() {
				advance(closeParen)
			} else {
				advance(c)
			}
			continue
		}

		if lx == "case" || lx == "default" {
			events = append(events, Event{Tag: "case", Cur: c}, Event{Tag: ";", Cur: c})
			c = e.skipToColon(c)
			prev = ":"
			continue
		}

		if lx == "else" {
			events = append(events, Event{Tag: lx, Cur: c})
			advance(c)
			continue
		}

		if lx == "do" {
			if extra, next, ok := e.extractDoWhile(c, varName, callDepth); ok {
				events = append(events, extra...)
				c = next
				prev = ";"
				continue
			}
			events = append(events, Event{Tag: lx, Cur: c})
			advance(c)
			continue
		}

		if lx == "continue" || lx == "break" || lx == "goto" {
			events = append(events, Event{Tag: lx, Cur: c})
			next, foundSemi := e.skipToSemicolon(c)
			if foundSemi {
				events = append(events, Event{Tag: ";", Cur: c})
			}
			c = next
			prev = ";"
			continue
		}

		// throw ⇒ return, per spec §4.F stage 2's explicit alias: a
		// thrown exception abandons the tracked variable the same way a
		// return does, so it shares the classifier's exit-guard patterns
		// rather than needing its own.
		if lx == "throw" {
			events = append(events, Event{Tag: "return", Cur: c})
			next, foundSemi := e.skipToSemicolon(c)
			if foundSemi {
				events = append(events, Event{Tag: ";", Cur: c})
			}
			c = next
			prev = ";"
			continue
		}

		if lx == "return" {
			events = append(events, Event{Tag: "return", Cur: c})
			if e.returnsVar(c, varName) {
				events = append(events, Event{Tag: "use", Cur: c})
			}
			next, foundSemi := e.skipToSemicolon(c)
			if foundSemi {
				events = append(events, Event{Tag: ";", Cur: c})
			}
			c = next
			prev = ";"
			continue
		}

		if lx == varName && prev == "=" && match.At(l, c, 1) == ";" {
			events = append(events, Event{Tag: "use", Cur: c})
			advance(match.TokAt(l, c, 1))
			continue
		}

		if lx == "&" && match.At(l, c, 1) == varName &&
			(prev == "=" || prev == "(" || prev == ",") &&
			(match.At(l, c, 2) == "." || match.At(l, c, 2) == "[") {
			events = append(events, Event{Tag: "use", Cur: c})
			advance(c)
			continue
		}

		if lx == "!" && match.At(l, c, 1) == varName {
			events = append(events, Event{Tag: "!var", Cur: c})
			advance(c)
			continue
		}

		if match.IsName(lx) && lx != varName && match.At(l, c, 1) == "(" {
			if ev, ok := e.tryCallArgument(c, varName, callDepth); ok {
				events = append(events, ev)
			}
		}

		if lx == ";" {
			events = append(events, Event{Tag: ";", Cur: c})
		}

		advance(c)
	}
	return events
}

// extractDoWhile desugars `do { B } while (cond) ;` per spec §4.F
// stage 2 into `{ B } while(cond) { B }` - the body is extracted once
// and its events appear twice, unconditionally and again inside the
// loop it feeds, so a reallocation on every pass is visible to the
// same `loop alloc ;` pattern an ordinary for/while produces. ok is
// false (and the other results unset) unless c's lexeme is "do" and it
// is followed by a braced body and a "while (...) ;"; the caller
// should fall back to a bare "do" atom in that case. next is the
// cursor the caller should resume from.
func (e *Extractor) extractDoWhile(c token.Cursor, varName string, callDepth int) (extra []Event, next token.Cursor, ok bool) {
	l := e.List
	bodyOpen := match.TokAt(l, c, 1)
	if l.Lexeme(bodyOpen) != "{" {
		return nil, token.Cursor{}, false
	}
	bodyClose := matchingBrace(l, bodyOpen)
	if !bodyClose.Valid() {
		return nil, token.Cursor{}, false
	}
	afterBody := l.Next(bodyClose)
	if l.Lexeme(afterBody) != "while" || match.At(l, afterBody, 1) != "(" {
		return nil, token.Cursor{}, false
	}
	open := match.TokAt(l, afterBody, 1)
	closeParen := match.MatchingClose(l, open)
	if !closeParen.Valid() {
		return nil, token.Cursor{}, false
	}

	bodyEvents := e.Extract(bodyOpen, varName, callDepth)
	braced := func() []Event {
		out := make([]Event, 0, len(bodyEvents)+2)
		out = append(out, Event{Tag: "{", Cur: bodyOpen})
		out = append(out, bodyEvents...)
		out = append(out, Event{Tag: "}", Cur: bodyClose})
		return out
	}

	extra = append(extra, braced()...)

	cond := conditionTokens(l, open, closeParen)
	extra = append(extra, Event{Tag: "loop", Cur: afterBody})
	if len(cond) == 2 && cond[0] == "!" && cond[1] == varName {
		extra = append(extra, Event{Tag: "!var", Cur: afterBody})
	}
	extra = append(extra, braced()...)

	next = l.Next(closeParen)
	if l.Lexeme(next) == ";" {
		extra = append(extra, Event{Tag: ";", Cur: next})
		next = l.Next(next)
	}
	return extra, next, true
}

func (e *Extractor) isAssignToVar(c token.Cursor, varName string) bool {
	l := e.List
	return l.Lexeme(c) == varName && match.At(l, c, 1) == "="
}

// stripCast skips a single leading C-style cast, e.g. "(char *)",
// returning the cursor just past it. Anything that isn't a leading
// "(" is returned unchanged.
func (e *Extractor) stripCast(c token.Cursor) token.Cursor {
	l := e.List
	if !c.Valid() || l.Lexeme(c) != "(" {
		return c
	}
	closeParen := match.MatchingClose(l, c)
	if !closeParen.Valid() {
		return c
	}
	return l.Next(closeParen)
}

func (e *Extractor) matchAllocProducer(rhs token.Cursor, varName string) (Kind, bool) {
	l := e.List
	rhs = e.stripCast(rhs)
	if !rhs.Valid() {
		return None, false
	}
	lx := l.Lexeme(rhs)
	if lx == "new" {
		if match.At(l, rhs, 2) == "[" {
			return NewArray, true
		}
		return NewScalar, true
	}
	if match.At(l, rhs, 1) == "(" {
		if k, ok := e.allocKindOf(lx); ok {
			return k, true
		}
	}
	return None, false
}

func (e *Extractor) matchDeallocCall(c token.Cursor, varName string) (token.Cursor, Kind, bool) {
	l := e.List
	lx := l.Lexeme(c)
	if lx == "delete" {
		n1 := match.TokAt(l, c, 1)
		if l.Lexeme(n1) == "[" && match.At(l, c, 2) == "]" && match.At(l, c, 3) == varName {
			return match.TokAt(l, c, 3), NewArray, true
		}
		if l.Lexeme(n1) == varName {
			return n1, NewScalar, true
		}
		return token.Cursor{}, None, false
	}
	if k, ok := deallocName[lx]; ok {
		if match.At(l, c, 1) == "(" && match.At(l, c, 2) == varName && match.At(l, c, 3) == ")" {
			return match.TokAt(l, c, 3), k, true
		}
	}
	return token.Cursor{}, None, false
}

// matchRedundantDeallocGuard recognizes "if (x) dealloc-call ;" and
// its braced form, stripping the guard entirely so only the dealloc
// event is emitted (spec §4.F: "a redundant enclosing if(x) around a
// deallocator is stripped during extraction").
func (e *Extractor) matchRedundantDeallocGuard(c token.Cursor, varName string) (token.Cursor, token.Cursor, Kind, bool) {
	l := e.List
	if l.Lexeme(c) != "if" || match.At(l, c, 1) != "(" || match.At(l, c, 2) != varName || match.At(l, c, 3) != ")" {
		return token.Cursor{}, token.Cursor{}, None, false
	}
	body := match.TokAt(l, c, 4)
	braced := false
	if l.Lexeme(body) == "{" {
		braced = true
		body = l.Next(body)
	}
	end, kind, ok := e.matchDeallocCall(body, varName)
	if !ok {
		return token.Cursor{}, token.Cursor{}, None, false
	}
	semi := l.Next(end)
	if l.Lexeme(semi) != ";" {
		return token.Cursor{}, token.Cursor{}, None, false
	}
	last := semi
	if braced {
		closeBrace := l.Next(semi)
		if l.Lexeme(closeBrace) != "}" {
			return token.Cursor{}, token.Cursor{}, None, false
		}
		last = closeBrace
	}
	return last, body, kind, true
}

func conditionTokens(l *token.List, open, closeParen token.Cursor) []string {
	var out []string
	for c := l.Next(open); c.Valid() && c != closeParen; c = l.Next(c) {
		out = append(out, l.Lexeme(c))
	}
	return out
}

func classifyCondition(cond []string, varName string) string {
	switch {
	case len(cond) == 1 && cond[0] == "true":
		return "if(true)"
	case len(cond) == 1 && cond[0] == "false":
		return "if(false)"
	case len(cond) == 1 && cond[0] == varName:
		return "if(var)"
	case len(cond) == 2 && cond[0] == "!" && cond[1] == varName:
		return "if(!var)"
	case len(cond) == 3 && cond[0] == varName && cond[1] == "!=" && cond[2] == "0":
		return "if(var)"
	case len(cond) == 3 && cond[0] == "0" && cond[1] == "!=" && cond[2] == varName:
		return "if(var)"
	case len(cond) == 3 && cond[0] == varName && cond[1] == "==" && cond[2] == "0":
		return "if(!var)"
	case len(cond) == 3 && cond[0] == "0" && cond[1] == "==" && cond[2] == varName:
		return "if(!var)"
	case len(cond) == 4 && cond[0] == "unlikely" && cond[1] == "(" && cond[2] == varName && cond[3] == ")":
		return "if(var)"
	case len(cond) == 5 && cond[0] == "unlikely" && cond[1] == "(" && cond[2] == "!" && cond[3] == varName && cond[4] == ")":
		return "if(!var)"
	}
	for _, t := range cond {
		if t == varName {
			return "ifv"
		}
	}
	return "if"
}

func (e *Extractor) matchIf(c token.Cursor, varName string) (string, token.Cursor, bool) {
	l := e.List
	if l.Lexeme(c) != "if" || match.At(l, c, 1) != "(" {
		return "", token.Cursor{}, false
	}
	open := match.TokAt(l, c, 1)
	closeParen := match.MatchingClose(l, open)
	if !closeParen.Valid() {
		return "", token.Cursor{}, false
	}
	cond := conditionTokens(l, open, closeParen)
	return classifyCondition(cond, varName), closeParen, true
}

func (e *Extractor) returnsVar(c token.Cursor, varName string) bool {
	l := e.List
	n1 := match.TokAt(l, c, 1)
	if l.Lexeme(n1) == varName {
		return true
	}
	if l.Lexeme(n1) == "&" && match.At(l, c, 2) == varName {
		return true
	}
	return false
}

// skipToSemicolon advances from a statement's first token through its
// closing top-level ";", returning the cursor just past it and
// whether a ";" was actually found. A nested "{" ends the skip early
// (a compound statement has no terminating ";" of its own); the
// caller's main loop then processes it normally.
func (e *Extractor) skipToSemicolon(from token.Cursor) (token.Cursor, bool) {
	l := e.List
	depth := 0
	c := from
	for c.Valid() {
		switch l.Lexeme(c) {
		case "(", "[":
			depth++
		case ")", "]":
			depth--
		case "{":
			return c, false
		case ";":
			if depth <= 0 {
				return l.Next(c), true
			}
		}
		c = l.Next(c)
	}
	return c, false
}

// skipToColon advances from a case/default label through its top-level
// ":", returning the cursor just past it.
func (e *Extractor) skipToColon(from token.Cursor) token.Cursor {
	l := e.List
	depth := 0
	c := from
	for c.Valid() {
		switch l.Lexeme(c) {
		case "(", "[":
			depth++
		case ")", "]":
			depth--
		case ":":
			if depth <= 0 {
				return l.Next(c)
			}
		}
		c = l.Next(c)
	}
	return c
}

// tryCallArgument detects varName passed as a bare argument to a
// function the index knows, and recursively reduces that function's
// body with the matching parameter tracked (spec §4.F's 2-deep
// cross-procedural step). Unknown functions, or functions passed the
// variable only as part of a larger expression, produce no event.
func (e *Extractor) tryCallArgument(c token.Cursor, varName string, callDepth int) (Event, bool) {
	if callDepth >= 2 {
		return Event{}, false
	}
	l := e.List
	fnName := l.Lexeme(c)
	open := match.TokAt(l, c, 1)
	closeParen := match.MatchingClose(l, open)
	if !closeParen.Valid() {
		return Event{}, false
	}
	args := match.SplitArgs(l, open, closeParen)
	argIdx := -1
	for i, a := range args {
		if len(a) == 1 && l.Lexeme(a[0]) == varName {
			argIdx = i
			break
		}
	}
	if argIdx < 0 {
		return Event{}, false
	}
	fn, ok := e.Index.Lookup(fnName)
	if !ok {
		return Event{}, false
	}
	sigClose := match.MatchingClose(l, fn.SigOpen)
	if !sigClose.Valid() {
		return Event{}, false
	}
	params := match.SplitArgs(l, fn.SigOpen, sigClose)
	if argIdx >= len(params) {
		return Event{}, false
	}
	paramName := ""
	for i := len(params[argIdx]) - 1; i >= 0; i-- {
		if match.IsName(l.Lexeme(params[argIdx][i])) {
			paramName = l.Lexeme(params[argIdx][i])
			break
		}
	}
	if paramName == "" {
		return Event{}, false
	}

	sub := e.Extract(fn.Body, paramName, callDepth+1)
	tags := tagsOf(Reduce(sub))
	switch {
	case contains(tags, "goto"), contains(tags, "dealloc"):
		return Event{Tag: "dealloc", Cur: c}, true
	case contains(tags, "use"):
		return Event{Tag: "use", Cur: c}, true
	}
	return Event{}, false
}
