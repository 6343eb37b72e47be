package workflow

import "testing"

func TestTypeDeclExactAccepts(t *testing.T) {
	d := Exact("")
	if !d.Accepts("hello") {
		t.Fatal("expected Exact(string) to accept a string value")
	}
	if d.Accepts(42) {
		t.Fatal("expected Exact(string) to reject an int value")
	}
}

func TestTypeDeclUnionAccepts(t *testing.T) {
	d := Union(Exact(""), Exact(0))
	if !d.Accepts("hi") || !d.Accepts(1) {
		t.Fatal("expected union of string/int to accept both")
	}
	if d.Accepts(3.14) {
		t.Fatal("expected union of string/int to reject a float")
	}
}

func TestTypeDeclSliceOfAccepts(t *testing.T) {
	d := SliceOf(Exact(""))
	if !d.Accepts([]any{"a", "b"}) {
		t.Fatal("expected SliceOf(string) to accept a []any of strings")
	}
	if d.Accepts([]any{"a", 1}) {
		t.Fatal("expected SliceOf(string) to reject mixed-type contents")
	}
	if d.Accepts("not a slice") {
		t.Fatal("expected SliceOf to reject a non-slice value")
	}
}

func TestTypeDeclAnyAcceptsEverything(t *testing.T) {
	d := Any()
	if !d.Accepts(nil) || !d.Accepts(1) || !d.Accepts("x") {
		t.Fatal("expected Any to accept every value including nil")
	}
}

func TestTypeDeclSpecificityOrdering(t *testing.T) {
	if Exact("").specificity() <= SliceOf(Exact("")).specificity() {
		t.Fatal("expected exact to outrank generic")
	}
	if SliceOf(Exact("")).specificity() <= Union(Exact("")).specificity() {
		t.Fatal("expected generic to outrank union")
	}
	if Union(Exact("")).specificity() <= Any().specificity() {
		t.Fatal("expected union to outrank any")
	}
}

func TestTypeDeclOverlaps(t *testing.T) {
	if !Any().overlaps(Exact("")) {
		t.Fatal("expected Any to overlap anything")
	}
	if Exact("").overlaps(Exact(0)) {
		t.Fatal("expected different exact types to not overlap")
	}
	if !Exact("").overlaps(Exact("")) {
		t.Fatal("expected identical exact types to overlap")
	}
}
