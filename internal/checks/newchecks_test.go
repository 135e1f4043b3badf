package checks

import (
	"testing"

	"github.com/danmar/cppcheck-sub017/internal/diag"
	"github.com/danmar/cppcheck-sub017/internal/funcindex"
	"github.com/danmar/cppcheck-sub017/internal/token"
)

func TestUnneededHeaderNotUsed(t *testing.T) {
	l := token.New()
	reg := token.NewRegistry()
	reg.Add("main.cpp")
	reg.Add("unused.h")
	l.Append("#include", 1, 0)
	l.Append(`"unused.h"`, 1, 0)
	l.Append("class", 1, 1)
	l.Append("Helper", 1, 1)
	l.Append("{", 1, 1)
	l.Append("}", 1, 1)
	l.Append(";", 1, 1)
	l.Append("int", 2, 0)
	l.Append("main", 2, 0)
	l.Append("(", 2, 0)
	l.Append(")", 2, 0)
	l.Append("{", 2, 0)
	l.Append("return", 2, 0)
	l.Append("0", 2, 0)
	l.Append(";", 2, 0)
	l.Append("}", 2, 0)

	sink := diag.New(true)
	UnneededHeader(l, reg, "main.cpp", sink)
	if !hasMessage(sink, "not needed") {
		t.Fatalf("messages = %v, want an unneeded-header diagnostic", messages(sink))
	}
}

func TestUnneededHeaderUsed(t *testing.T) {
	l := token.New()
	reg := token.NewRegistry()
	reg.Add("main.cpp")
	reg.Add("used.h")
	l.Append("#include", 1, 0)
	l.Append(`"used.h"`, 1, 0)
	l.Append("class", 1, 1)
	l.Append("Helper", 1, 1)
	l.Append("{", 1, 1)
	l.Append("}", 1, 1)
	l.Append(";", 1, 1)
	l.Append("int", 2, 0)
	l.Append("main", 2, 0)
	l.Append("(", 2, 0)
	l.Append(")", 2, 0)
	l.Append("{", 2, 0)
	l.Append("Helper", 2, 0)
	l.Append("h", 2, 0)
	l.Append(";", 2, 0)
	l.Append("}", 2, 0)

	sink := diag.New(true)
	UnneededHeader(l, reg, "main.cpp", sink)
	if hasMessage(sink, "not needed") {
		t.Fatalf("messages = %v, want none (Helper is used)", messages(sink))
	}
}

func TestDynamicDataCopyUncheckedSource(t *testing.T) {
	l := build(
		"void", "f", "(", "char", "*", "src", ")", "{",
		"char", "dst", "[", "10", "]", ";",
		"strcpy", "(", "dst", ",", "src", ")", ";",
		"}",
	)
	sink := diag.New(true)
	DynamicDataCopy(l, "test.cpp", sink, false)
	if !hasMessage(sink, "Unknown length") {
		t.Fatalf("messages = %v, want an unknown-length copy diagnostic", messages(sink))
	}
}

func TestDynamicDataCopyCheckedSourceIsClean(t *testing.T) {
	l := build(
		"void", "f", "(", ")", "{",
		"char", "*", "src", "=", "0", ";",
		"char", "dst", "[", "10", "]", ";",
		"if", "(", "strlen", "(", "src", ")", "<", "10", ")", "{",
		"strcpy", "(", "dst", ",", "src", ")", ";",
		"}",
		"}",
	)
	sink := diag.New(true)
	DynamicDataCopy(l, "test.cpp", sink, false)
	if sink.Len() != 0 {
		t.Fatalf("messages = %v, want none (bounds checked first)", messages(sink))
	}
}

func TestStrtokReachabilityAcrossCalls(t *testing.T) {
	l := build(
		"void", "a", "(", ")", "{",
		"strtok", "(", "0", ",", "0", ")", ";",
		"b", "(", ")", ";",
		"}",
		"void", "b", "(", ")", "{",
		"strtok", "(", "0", ",", "0", ")", ";",
		"}",
	)
	idx := funcindex.Build(l)
	sink := diag.New(true)
	StrtokReachability(l, idx, "test.cpp", sink)
	if !hasMessage(sink, "strtok") {
		t.Fatalf("messages = %v, want a strtok reachability diagnostic", messages(sink))
	}
}

func TestStrtokSingleUseIsClean(t *testing.T) {
	l := build(
		"void", "a", "(", ")", "{",
		"strtok", "(", "0", ",", "0", ")", ";",
		"}",
	)
	idx := funcindex.Build(l)
	sink := diag.New(true)
	StrtokReachability(l, idx, "test.cpp", sink)
	if sink.Len() != 0 {
		t.Fatalf("messages = %v, want none (only one function uses strtok)", messages(sink))
	}
}

func TestVariableScopeCanBeReduced(t *testing.T) {
	l := build(
		"void", "f", "(", "int", "cond", ")", "{",
		"int", "i", ";",
		"if", "(", "cond", ")", "{",
		"i", "=", "1", ";",
		"}",
		"}",
	)
	idx := funcindex.Build(l)
	sink := diag.New(true)
	VariableScope(l, idx, "test.cpp", sink)
	if !hasMessage(sink, "scope of the variable 'i'") {
		t.Fatalf("messages = %v, want a scope-reduction diagnostic for i", messages(sink))
	}
}

func TestVariableScopeUsedAtFunctionLevelIsClean(t *testing.T) {
	l := build(
		"void", "f", "(", "int", "cond", ")", "{",
		"int", "i", ";",
		"if", "(", "cond", ")", "{",
		"i", "=", "1", ";",
		"}",
		"i", "=", "2", ";",
		"}",
	)
	idx := funcindex.Build(l)
	sink := diag.New(true)
	VariableScope(l, idx, "test.cpp", sink)
	if sink.Len() != 0 {
		t.Fatalf("messages = %v, want none (i is used at function scope too)", messages(sink))
	}
}
