package session

import "testing"

func TestNewDefaultsAreAllFalse(t *testing.T) {
	s := New()
	if s.ShowAll || s.Style || s.ErrorsOnly || s.Recursive {
		t.Fatalf("got %+v, want all fields false", s)
	}
}

func TestNewAppliesOptionsInOrder(t *testing.T) {
	s := New(WithShowAll(true), WithStyle(true), WithErrorsOnly(true), WithRecursive(true))
	if !s.ShowAll || !s.Style || !s.ErrorsOnly || !s.Recursive {
		t.Fatalf("got %+v, want all fields true", s)
	}
}

func TestLaterOptionWins(t *testing.T) {
	s := New(WithStyle(true), WithStyle(false))
	if s.Style {
		t.Fatalf("got Style=true, want the later option (false) to win")
	}
}
