// Package diag implements the §4.H diagnostic sink: the single append
// point every checker reports through, deduplicated per file unless a
// mode asks for every occurrence.
package diag

import "fmt"

// Diagnostic is one finding pinned to a source location.
type Diagnostic struct {
	File    string
	Line    int
	Message string
}

// String renders a diagnostic the way it is printed on the CLI's
// diagnostic stream.
func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s:%d]: %s", d.File, d.Line, d.Message)
}

// Sink is the single append point for diagnostics produced while
// analyzing one file. With dedup enabled (the default), two reports
// that render to an identical string are collapsed into one; with it
// disabled every occurrence is kept, for modes that want the full
// list rather than one representative hit per file.
type Sink struct {
	dedup bool
	seen  map[string]bool
	diags []Diagnostic
}

// New returns a Sink. dedup enables the "no two identical diagnostic
// strings for this file" guarantee described in spec §8.
func New(dedup bool) *Sink {
	return &Sink{dedup: dedup, seen: map[string]bool{}}
}

// Report appends a diagnostic, dropping it if dedup is enabled and an
// identical rendered string was already reported for this sink.
func (s *Sink) Report(file string, line int, message string) {
	d := Diagnostic{File: file, Line: line, Message: message}
	if s.dedup {
		text := d.String()
		if s.seen[text] {
			return
		}
		s.seen[text] = true
	}
	s.diags = append(s.diags, d)
}

// All returns every diagnostic reported so far, in emission order.
func (s *Sink) All() []Diagnostic { return s.diags }

// Len reports how many diagnostics survived deduplication.
func (s *Sink) Len() int { return len(s.diags) }
