package checks

import (
	"fmt"

	"github.com/danmar/cppcheck-sub017/internal/diag"
	"github.com/danmar/cppcheck-sub017/internal/funcindex"
	"github.com/danmar/cppcheck-sub017/internal/token"
)

// HeaderWithImplementation is the supplemented
// WarningHeaderWithImplementation check: a function whose body's
// tokens came from an included file (file index > 0, rather than the
// file under analysis itself) is flagged, since an implementation
// belongs in a source file rather than a header.
func HeaderWithImplementation(l *token.List, idx *funcindex.Index, file string, sink *diag.Sink) {
	for _, name := range idx.Names() {
		fn, ok := idx.Lookup(name)
		if !ok {
			continue
		}
		if l.FileIndex(fn.Body) > 0 {
			sink.Report(file, l.Line(fn.Body), fmt.Sprintf("Found implementation of '%s' in a header file; move it to the source file", name))
		}
	}
}
