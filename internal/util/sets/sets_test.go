package sets

import (
	"reflect"
	"testing"
)

func TestSetBasics(t *testing.T) {
	s := New("a", "b")
	if !s.Has("a") || !s.Has("b") {
		t.Fatalf("expected initial members present")
	}
	s.Add("c")
	if !s.Has("c") {
		t.Fatalf("expected c after Add")
	}
	s.Delete("a")
	if s.Has("a") {
		t.Fatalf("expected a removed")
	}
	if s.Len() != 2 {
		t.Fatalf("expected len 2, got %d", s.Len())
	}
}

func TestCloneIsIndependent(t *testing.T) {
	s := New(1, 2)
	c := s.Clone()
	c.Add(3)
	if s.Has(3) {
		t.Fatalf("clone mutation leaked into original")
	}
}

func TestSortedStrings(t *testing.T) {
	s := New("main", "dev", "feature/x")
	got := SortedStrings(s)
	want := []string{"dev", "feature/x", "main"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}
