package analyzer

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/danmar/cppcheck-sub017/internal/session"
	"github.com/gkampitakis/go-snaps/snaps"
)

// writeSource writes src to a fresh .cpp file under t's temp directory
// and returns its path.
func writeSource(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.cpp")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

// TestEndToEndScenarios runs spec §8's six literal scenarios end to
// end through the full pipeline and checks for the expected
// diagnostic substring.
func TestEndToEndScenarios(t *testing.T) {
	cases := []struct {
		name     string
		src      string
		settings session.Settings
		want     string
	}{
		{
			name: "new-array-never-freed",
			src:  `void f(){int*a=new int[10];}`,
			want: "Memory leak: a",
		},
		{
			name: "strcpy-overruns-fixed-buffer",
			src:  `void f(){char str[3]; strcpy(str,"abc");}`,
			want: "Buffer overrun",
		},
		{
			name: "class-with-no-constructor",
			src:  `class F{public:int i;};`,
			want: "class 'F' has no constructor",
		},
		{
			name: "new-array-freed-with-free",
			src:  `void f(){int*a=new int[10]; free(a);}`,
			want: "Mismatching allocation and deallocation: a",
		},
		{
			name: "leak-on-early-return",
			src:  `void f(){char *s=strdup("x"); if(cond){return;} free(s);}`,
			want: "Memory leak: s",
		},
		{
			name:     "unread-struct-member-with-style",
			src:      `struct S{int a;}; int main(){return 0;}`,
			settings: session.New(session.WithStyle(true)),
			want:     "struct member 'S::a' is never read",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeSource(t, tc.src)
			var notes bytes.Buffer
			outcome := Analyze(path, &notes, tc.settings)
			if !outcome.Opened {
				t.Fatalf("file not opened: %s", notes.String())
			}
			found := false
			for _, d := range outcome.Sink.All() {
				if strings.Contains(d.Message, tc.want) {
					found = true
					break
				}
			}
			if !found {
				t.Fatalf("expected a diagnostic containing %q, got %v", tc.want, outcome.Sink.All())
			}
		})
	}
}

// TestUnreadStructMemberIsStyleGated is scenario 6's negative half:
// without --style the same input produces no struct-member finding.
func TestUnreadStructMemberIsStyleGated(t *testing.T) {
	path := writeSource(t, `struct S{int a;}; int main(){return 0;}`)
	var notes bytes.Buffer
	outcome := Analyze(path, &notes, session.New())
	if !outcome.Opened {
		t.Fatalf("file not opened: %s", notes.String())
	}
	for _, d := range outcome.Sink.All() {
		if strings.Contains(d.Message, "is never read") {
			t.Fatalf("unexpected struct-member finding without --style: %v", d)
		}
	}
}

// TestAnalyzeDiagnosticsSnapshot snapshots the full rendered
// diagnostic set for a fixture combining several checkers, the way
// the teacher's interpreter fixtures snapshot full program output.
func TestAnalyzeDiagnosticsSnapshot(t *testing.T) {
	src := `
class Widget {
public:
	int *buf;
	Widget() { buf = new int[4]; }
};

void useArray() {
	int a[4];
	a[4] = 0;
}
`
	path := writeSource(t, src)
	var notes bytes.Buffer
	outcome := Analyze(path, &notes, session.New(session.WithStyle(true)))
	if !outcome.Opened {
		t.Fatalf("file not opened: %s", notes.String())
	}

	lines := make([]string, 0, outcome.Sink.Len())
	for _, d := range outcome.Sink.All() {
		lines = append(lines, d.Message)
	}
	sort.Strings(lines)

	snaps.MatchSnapshot(t, "widget_and_array_diagnostics", strings.Join(lines, "\n"))
}

// TestAnalyzeMissingFileProducesNote confirms spec §7's user-input
// error path: a file that can't be opened yields no diagnostics and
// leaves Opened false, instead of a Go error.
func TestAnalyzeMissingFileProducesNote(t *testing.T) {
	var notes bytes.Buffer
	outcome := Analyze(filepath.Join(t.TempDir(), "does-not-exist.cpp"), &notes, session.New())
	if outcome.Opened {
		t.Fatalf("expected Opened=false for a missing file")
	}
	if outcome.Sink.Len() != 0 {
		t.Fatalf("expected no diagnostics for a missing file, got %v", outcome.Sink.All())
	}
	if !strings.Contains(notes.String(), "could not open file") {
		t.Fatalf("expected a note about the unopenable file, got %q", notes.String())
	}
}
