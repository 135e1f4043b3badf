package diag

import "testing"

func TestReportDedupsIdenticalMessages(t *testing.T) {
	s := New(true)
	s.Report("a.cpp", 3, "Memory leak: p")
	s.Report("a.cpp", 3, "Memory leak: p")
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 after duplicate report", s.Len())
	}
}

func TestReportKeepsDistinctLines(t *testing.T) {
	s := New(true)
	s.Report("a.cpp", 3, "Memory leak: p")
	s.Report("a.cpp", 9, "Memory leak: p")
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 for reports on different lines", s.Len())
	}
}

func TestDedupDisabledKeepsDuplicates(t *testing.T) {
	s := New(false)
	s.Report("a.cpp", 3, "Memory leak: p")
	s.Report("a.cpp", 3, "Memory leak: p")
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 with dedup disabled", s.Len())
	}
}

func TestStringFormat(t *testing.T) {
	d := Diagnostic{File: "a.cpp", Line: 5, Message: "Memory leak: p"}
	want := "[a.cpp:5]: Memory leak: p"
	if got := d.String(); got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}
