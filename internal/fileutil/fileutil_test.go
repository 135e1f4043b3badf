package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHasSourceExtensionCaseInsensitive(t *testing.T) {
	cases := map[string]bool{
		"main.c":   true,
		"main.cc":  true,
		"main.cpp": true,
		"MAIN.CPP": true,
		"main.h":   false,
		"main.go":  false,
		"README":   false,
	}
	for name, want := range cases {
		if got := HasSourceExtension(name); got != want {
			t.Errorf("HasSourceExtension(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestDiscoverFindsSourceFilesRecursively(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "a.cpp"), "")
	mustWrite(t, filepath.Join(root, "notes.txt"), "")
	mustWrite(t, filepath.Join(root, "sub", "b.cc"), "")
	mustWrite(t, filepath.Join(root, "sub", "deeper", "c.c"), "")

	got, err := Discover(root)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	want := []string{
		filepath.Join(root, "a.cpp"),
		filepath.Join(root, "sub", "b.cc"),
		filepath.Join(root, "sub", "deeper", "c.c"),
	}
	if !equalSlices(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestDiscoverOnSingleFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "only.cpp")
	mustWrite(t, path, "")

	got, err := Discover(path)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(got) != 1 || got[0] != path {
		t.Fatalf("got %v, want [%s]", got, path)
	}
}

func TestDiscoverAllConcatenatesRoots(t *testing.T) {
	rootA := t.TempDir()
	rootB := t.TempDir()
	mustWrite(t, filepath.Join(rootA, "a.cpp"), "")
	mustWrite(t, filepath.Join(rootB, "b.cpp"), "")

	got, err := DiscoverAll([]string{rootA, rootB})
	if err != nil {
		t.Fatalf("DiscoverAll: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %v, want 2 entries", got)
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func equalSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
