// Package session models the per-file analyzer-session value called
// for in the design notes ("Global mutable state"): the option flags
// that used to live at module scope in the source are threaded
// explicitly as a Settings value, the same way the teacher threads
// functional options through its lexer (internal/lexer.LexerOption).
package session

// Option configures a Settings value. Following the teacher's own
// functional-options idiom (internal/lexer.Option in this repo),
// rather than a struct literal, so callers that only care about one
// flag don't have to spell out the rest.
type Option func(*Settings)

// Settings carries the CLI flags of spec §6 through one analysis run.
// It is constructed once by the CLI layer and passed by value to every
// file's analyzer.Analyze call; nothing here is mutated after
// construction.
type Settings struct {
	// ShowAll is --all: the more aggressive leak-reduction guard set
	// and the strlen-only dynamic-data-copy heuristic.
	ShowAll bool
	// Style is --style: the coding-style checker battery.
	Style bool
	// ErrorsOnly is --errorsonly: suppress per-file progress lines.
	ErrorsOnly bool
	// Recursive is --recursive: discover files under each path via
	// internal/fileutil instead of treating paths as explicit files.
	Recursive bool
}

// WithShowAll sets Settings.ShowAll.
func WithShowAll(v bool) Option { return func(s *Settings) { s.ShowAll = v } }

// WithStyle sets Settings.Style.
func WithStyle(v bool) Option { return func(s *Settings) { s.Style = v } }

// WithErrorsOnly sets Settings.ErrorsOnly.
func WithErrorsOnly(v bool) Option { return func(s *Settings) { s.ErrorsOnly = v } }

// WithRecursive sets Settings.Recursive.
func WithRecursive(v bool) Option { return func(s *Settings) { s.Recursive = v } }

// New builds a Settings value from zero-value defaults plus opts, in
// order.
func New(opts ...Option) Settings {
	var s Settings
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
