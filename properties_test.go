package tabular

import (
	"errors"
	"slices"
	"testing"
)

func TestProperties(t *testing.T) {
	p := Props(Prop("width", 12), Prop("label", "Name"))

	if !p.Has("width", "label") || p.Has("width", "missing") {
		t.Fatal("unexpected Has result")
	}
	if !slices.Equal(p.Names(), []string{"label", "width"}) {
		t.Fatalf("unexpected names %v", p.Names())
	}

	width, err := GetProp[int](p, "width")
	if err != nil || width != 12 {
		t.Fatalf("unexpected width %d, %v", width, err)
	}
	if _, err := GetProp[string](p, "width"); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("expected ErrTypeMismatch, got %v", err)
	}
	if _, err := GetProp[int](p, "missing"); !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("expected ErrUnknownKey, got %v", err)
	}
	if got := GetPropOr(p, "label", "fallback"); got != "Name" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := GetPropOr(p, "width", "fallback"); got != "fallback" {
		t.Fatalf("a mistyped property falls back, got %q", got)
	}

	p.Remove("width").Set("sorted", true)
	if p.Len() != 2 || p.Has("width") {
		t.Fatalf("unexpected properties %v", p.Names())
	}
}

func TestProperties_Nil(t *testing.T) {
	var p *Properties
	if p.Len() != 0 {
		t.Fatal("nil properties are empty")
	}
	if _, err := GetProp[int](p, "any"); !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("expected ErrUnknownKey, got %v", err)
	}
	if got := GetPropOr(p, "any", 3); got != 3 {
		t.Fatalf("unexpected fallback %d", got)
	}

	var zero Properties
	zero.Set("a", 1)
	if !zero.Has("a") {
		t.Fatal("Set initialises the map")
	}
}

func TestColumns(t *testing.T) {
	cols := Cols("a", "b")
	if !slices.Equal(Names(cols), []string{"a", "b"}) {
		t.Fatalf("unexpected names %v", Names(cols))
	}
	cols[0].Properties.Set("kind", "key")
	if cols[1].Properties.Has("kind") {
		t.Fatal("columns must not share properties")
	}
	if !containsColumn(cols, "b") || containsColumn(cols, "c") {
		t.Fatal("unexpected containsColumn result")
	}
}
