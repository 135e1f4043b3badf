package checks

import (
	"github.com/danmar/cppcheck-sub017/internal/diag"
	"github.com/danmar/cppcheck-sub017/internal/funcindex"
	"github.com/danmar/cppcheck-sub017/internal/token"
)

// Run executes every checker in this package against one file's
// simplified token list, reporting through sink. showStyle gates the
// checks named under --style on the CLI surface. showAll widens the
// dynamic-data-copy heuristic to the --all "strlen-only" mode per
// spec §6.
func Run(l *token.List, idx *funcindex.Index, file string, sink *diag.Sink, showStyle, showAll bool) {
	DangerousFunctions(l, file, sink)
	InvalidUsage(l, file, sink)
	AlwaysTrueFalseComparison(l, file, sink)
	AssignmentInCondition(l, file, sink)
	ArrayBounds(l, file, sink)
	ClassInvariants(l, file, sink)
	SignMismatch(l, file, sink)
	CharAsIndexOrBitop(l, file, sink)
	HeaderWithImplementation(l, idx, file, sink)
	DynamicDataCopy(l, file, sink, showAll)
	StrtokReachability(l, idx, file, sink)

	if showStyle {
		RedundantNullGuard(l, file, sink)
		EmptyIfNoElse(l, file, sink)
		CaseWithoutBreak(l, file, sink)
		ConstByValueParams(l, file, sink)
		UnusedStructMember(l, file, sink)
		UnusedPrivateMethods(l, file, sink)
		ASCIIRangeStyle(l, file, sink)
		OldStyleCast(l, file, sink)
		VariableScope(l, idx, file, sink)
	}
}
