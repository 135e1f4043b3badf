package leak

import (
	"strings"
	"testing"

	"github.com/danmar/cppcheck-sub017/internal/diag"
	"github.com/danmar/cppcheck-sub017/internal/funcindex"
	"github.com/danmar/cppcheck-sub017/internal/token"
)

func build(lexemes ...string) *token.List {
	l := token.New()
	for _, lx := range lexemes {
		l.Append(lx, 1, 0)
	}
	return l
}

func messages(s *diag.Sink) []string {
	var out []string
	for _, d := range s.All() {
		out = append(out, d.Message)
	}
	return out
}

func hasMessage(s *diag.Sink, substr string) bool {
	for _, m := range messages(s) {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

func analyzeFirstFunction(t *testing.T, l *token.List, varName string) *diag.Sink {
	t.Helper()
	idx := funcindex.Build(l)
	fn, ok := idx.Lookup("f")
	if !ok {
		t.Fatalf("funcindex did not find function f")
	}
	sink := diag.New(true)
	e := New(l, idx, "test.cpp", sink)
	e.AnalyzeVariable(fn.Body, varName, false)
	return sink
}

func TestStraightLeakAtEndOfScope(t *testing.T) {
	l := build("void", "f", "(", ")", "{",
		"int", "*", "a", "=", "new", "int", "[", "10", "]", ";",
		"}")
	sink := analyzeFirstFunction(t, l, "a")
	if !hasMessage(sink, "Memory leak: a") {
		t.Fatalf("messages = %v, want a leak on a", messages(sink))
	}
}

func TestMismatchedAllocatorDeallocator(t *testing.T) {
	l := build("void", "f", "(", ")", "{",
		"int", "*", "a", "=", "new", "int", "[", "10", "]", ";",
		"free", "(", "a", ")", ";",
		"}")
	sink := analyzeFirstFunction(t, l, "a")
	if !hasMessage(sink, "Mismatching allocation and deallocation: a") {
		t.Fatalf("messages = %v, want a mismatch on a", messages(sink))
	}
	if hasMessage(sink, "Memory leak") {
		t.Fatalf("messages = %v, want no leak once freed (mismatched family or not)", messages(sink))
	}
}

func TestCleanAllocAndFreeNoDiagnostic(t *testing.T) {
	l := build("void", "f", "(", ")", "{",
		"char", "*", "a", "=", "malloc", "(", "10", ")", ";",
		"free", "(", "a", ")", ";",
		"}")
	sink := analyzeFirstFunction(t, l, "a")
	if sink.Len() != 0 {
		t.Fatalf("messages = %v, want none", messages(sink))
	}
}

func TestGuardedReturnLeak(t *testing.T) {
	l := build("void", "f", "(", "int", "cond", ")", "{",
		"char", "*", "s", "=", "strdup", "(", "x", ")", ";",
		"if", "(", "cond", ")", "{", "return", ";", "}",
		"free", "(", "s", ")", ";",
		"}")
	sink := analyzeFirstFunction(t, l, "s")
	if !hasMessage(sink, "Memory leak: s") {
		t.Fatalf("messages = %v, want a leak on s at the guarded return", messages(sink))
	}
}

func TestLoopAllocationLeak(t *testing.T) {
	l := build("void", "f", "(", ")", "{",
		"for", "(", "int", "i", "=", "0", ";", "i", "<", "10", ";", "i", "++", ")", "{",
		"p", "=", "malloc", "(", "1", ")", ";",
		"}",
		"}")
	sink := analyzeFirstFunction(t, l, "p")
	if !hasMessage(sink, "Memory leak: p") {
		t.Fatalf("messages = %v, want a leak on p reallocated every iteration", messages(sink))
	}
}

func TestLoopAllocationFreedEveryIterationIsClean(t *testing.T) {
	l := build("void", "f", "(", ")", "{",
		"for", "(", "int", "i", "=", "0", ";", "i", "<", "10", ";", "i", "++", ")", "{",
		"p", "=", "malloc", "(", "1", ")", ";",
		"free", "(", "p", ")", ";",
		"}",
		"}")
	sink := analyzeFirstFunction(t, l, "p")
	if sink.Len() != 0 {
		t.Fatalf("messages = %v, want none (p is freed every iteration before the next alloc)", messages(sink))
	}
}

func TestDoWhileReallocationEveryPassIsLeak(t *testing.T) {
	l := build("void", "f", "(", ")", "{",
		"do", "{",
		"p", "=", "malloc", "(", "1", ")", ";",
		"}", "while", "(", "cond", ")", ";",
		"}")
	sink := analyzeFirstFunction(t, l, "p")
	if !hasMessage(sink, "Memory leak: p") {
		t.Fatalf("messages = %v, want a leak on p reallocated every do-while pass", messages(sink))
	}
}

func TestDoWhileAllocFreedEveryPassIsClean(t *testing.T) {
	l := build("void", "f", "(", ")", "{",
		"do", "{",
		"p", "=", "malloc", "(", "1", ")", ";",
		"free", "(", "p", ")", ";",
		"}", "while", "(", "cond", ")", ";",
		"}")
	sink := analyzeFirstFunction(t, l, "p")
	if sink.Len() != 0 {
		t.Fatalf("messages = %v, want none (p is freed every do-while pass)", messages(sink))
	}
}

func TestThrowOnGuardedExitIsLeak(t *testing.T) {
	l := build("void", "f", "(", "int", "cond", ")", "{",
		"char", "*", "s", "=", "strdup", "(", "x", ")", ";",
		"if", "(", "cond", ")", "{", "throw", "err", ";", "}",
		"free", "(", "s", ")", ";",
		"}")
	sink := analyzeFirstFunction(t, l, "s")
	if !hasMessage(sink, "Memory leak: s") {
		t.Fatalf("messages = %v, want a leak on s at the guarded throw (throw aliases return)", messages(sink))
	}
}

func TestRedundantGuardAroundDeallocIsClean(t *testing.T) {
	l := build("void", "f", "(", ")", "{",
		"char", "*", "a", "=", "malloc", "(", "10", ")", ";",
		"if", "(", "a", ")", "free", "(", "a", ")", ";",
		"}")
	sink := analyzeFirstFunction(t, l, "a")
	if sink.Len() != 0 {
		t.Fatalf("messages = %v, want none (redundant if(a) guard around free is stripped)", messages(sink))
	}
}

func TestGotoSuppressesClassification(t *testing.T) {
	l := build("void", "f", "(", ")", "{",
		"int", "*", "a", "=", "new", "int", "[", "10", "]", ";",
		"goto", "done", ";",
		"done", ":", ";",
		"}")
	sink := analyzeFirstFunction(t, l, "a")
	if sink.Len() != 0 {
		t.Fatalf("messages = %v, want none (goto bails out conservatively)", messages(sink))
	}
}

func TestUseSuppressesLeak(t *testing.T) {
	l := build("void", "f", "(", ")", "{",
		"int", "*", "a", "=", "new", "int", "[", "10", "]", ";",
		"return", "a", ";",
		"}")
	sink := analyzeFirstFunction(t, l, "a")
	if sink.Len() != 0 {
		t.Fatalf("messages = %v, want none (ownership returned to caller)", messages(sink))
	}
}

func TestReassignmentWithoutFreeIsLeak(t *testing.T) {
	l := build("void", "f", "(", ")", "{",
		"int", "*", "a", "=", "new", "int", "[", "1", "]", ";",
		"a", "=", "new", "int", "[", "2", "]", ";",
		"}")
	sink := analyzeFirstFunction(t, l, "a")
	if !hasMessage(sink, "Memory leak: a") {
		t.Fatalf("messages = %v, want a leak (a reassigned before being freed)", messages(sink))
	}
}

func TestAnalyzeClassMemberLeaksWhenNoMethodFrees(t *testing.T) {
	l := token.New()
	ctorBrace := token.Cursor{}
	for i, lx := range []string{
		"void", "ctor", "(", ")", "{",
		"data", "=", "new", "int", "[", "10", "]", ";",
		"}",
	} {
		c := l.Append(lx, 1, 0)
		if i == 4 {
			ctorBrace = c
		}
	}
	dtorBrace := token.Cursor{}
	for i, lx := range []string{"void", "dtor", "(", ")", "{", "}"} {
		c := l.Append(lx, 1, 0)
		if i == 4 {
			dtorBrace = c
		}
	}

	sink := diag.New(true)
	e := New(l, funcindex.Build(l), "test.cpp", sink)
	e.AnalyzeClassMember("Widget", "data", []token.Cursor{ctorBrace, dtorBrace})

	if !hasMessage(sink, "Memory leak: Widget::data") {
		t.Fatalf("messages = %v, want a leak on Widget::data", messages(sink))
	}
}

func TestAnalyzeClassMemberCleanWhenDtorFrees(t *testing.T) {
	l := token.New()
	ctorBrace := token.Cursor{}
	for i, lx := range []string{
		"void", "ctor", "(", ")", "{",
		"data", "=", "new", "int", "[", "10", "]", ";",
		"}",
	} {
		c := l.Append(lx, 1, 0)
		if i == 4 {
			ctorBrace = c
		}
	}
	dtorBrace := token.Cursor{}
	for i, lx := range []string{
		"void", "dtor", "(", ")", "{",
		"delete", "[", "]", "data", ";",
		"}",
	} {
		c := l.Append(lx, 1, 0)
		if i == 4 {
			dtorBrace = c
		}
	}

	sink := diag.New(true)
	e := New(l, funcindex.Build(l), "test.cpp", sink)
	e.AnalyzeClassMember("Widget", "data", []token.Cursor{ctorBrace, dtorBrace})

	if sink.Len() != 0 {
		t.Fatalf("messages = %v, want none (dtor frees data)", messages(sink))
	}
}

func TestReduceIdempotentOnReducedStream(t *testing.T) {
	l := build("void", "f", "(", ")", "{",
		"int", "*", "a", "=", "new", "int", "[", "10", "]", ";",
		"}")
	idx := funcindex.Build(l)
	fn, _ := idx.Lookup("f")
	sink := diag.New(true)
	e := New(l, idx, "test.cpp", sink)
	events := e.Extract(fn.Body, "a", 0)
	first := Reduce(events)
	second := Reduce(first)
	if len(first) != len(second) {
		t.Fatalf("Reduce() is not idempotent: %v -> %v", tagsOf(first), tagsOf(second))
	}
}
