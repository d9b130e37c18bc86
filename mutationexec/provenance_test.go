package mutationexec

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPath_String(t *testing.T) {
	tests := []struct {
		path Path
		want string
	}{
		{Path{{Key: "a"}}, "a"},
		{Path{{Key: "a"}, {Key: "b"}}, "a.b"},
		{Path{{Key: "a"}, {Any: true}}, "a[*]"},
		{Path{{Key: "a"}, {Key: "x y"}}, `a["x y"]`},
		{Path{{Key: "a"}, {Any: true}, {Key: "c"}}, "a[*].c"},
		{Path{{Key: "x-y"}}, `["x-y"]`},
		{nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.path.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPath_Child(t *testing.T) {
	base := make(Path, 1, 4)
	base[0] = PathSegment{Key: "a"}
	left := base.Child(PathSegment{Key: "b"})
	right := base.Child(PathSegment{Key: "c"})

	if diff := cmp.Diff([]string{"a", "b"}, left.Keys()); diff != "" {
		t.Errorf("Child shared storage with its sibling (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "c"}, right.Keys()); diff != "" {
		t.Errorf("Keys mismatch (-want +got):\n%s", diff)
	}
	if got := base.Child(segmentForKey(AnyKey)).String(); got != "a[*]" {
		t.Errorf("Expected a[*], got %s", got)
	}
}

func TestProvenance_FirstPathWins(t *testing.T) {
	shared := map[string]any{"n": 1}
	globals := map[string]any{
		"a": shared,
		"b": map[string]any{"c": shared},
	}

	prov := newProvenance()
	frame := newGlobalsBuilder(prov).frame(globals)

	aRef, _ := frame.Lookup("a")
	bRef, _ := frame.Lookup("b")
	viaB := bRef.GetKey(PropKey("c"))

	if aRef.Get()[0] != viaB.Get()[0] {
		t.Fatal("Expected shared host map to convert to one object")
	}
	path, ok := prov.LookupAny(viaB)
	if !ok {
		t.Fatal("Expected shared object to have provenance")
	}
	if got := path.String(); got != "a" {
		t.Errorf("Expected first discovered path a, got %s", got)
	}
	if prov.Len() != 2 {
		t.Errorf("Expected 2 recorded containers, got %d", prov.Len())
	}
}

func TestProvenance_Cycle(t *testing.T) {
	cyclic := map[string]any{}
	cyclic["self"] = cyclic

	prov := newProvenance()
	frame := newGlobalsBuilder(prov).frame(map[string]any{"root": cyclic})
	ref, _ := frame.Lookup("root")

	self := ref.GetKey(PropKey("self")).GetKey(PropKey("self"))
	if self.Get()[0] != ref.Get()[0] {
		t.Error("Expected cycle to be preserved")
	}
	if path, _ := prov.LookupAny(self); path.String() != "root" {
		t.Errorf("Expected root, got %s", path)
	}
}

func TestGlobalsBuilder_Convert(t *testing.T) {
	type point struct{ X int }
	globals := map[string]any{
		"list":   []any{"s", 1.5, true, nil, []int{1}},
		"count":  uint8(3),
		"ptr":    &map[string]any{"k": "v"},
		"struct": point{X: 1},
		"byInt":  map[int]string{1: "a"},
		"number": json.Number("42"),
		"bad":    json.Number("4x"),
	}
	prov := newProvenance()
	frame := newGlobalsBuilder(prov).frame(globals)

	if diff := cmp.Diff([]string{"bad", "byInt", "count", "list", "number", "ptr", "struct"}, frame.Names()); diff != "" {
		t.Errorf("Names mismatch (-want +got):\n%s", diff)
	}

	tests := []struct {
		name string
		want string
	}{
		{"list", `([("s"|1.5|[(1)]|null|true)])`},
		{"count", "(3)"},
		{"ptr", `({"k":("v")})`},
		{"struct", "(*)"},
		{"byInt", "(*)"},
		{"number", "(42)"},
		{"bad", "(*)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, ok := frame.Lookup(tt.name)
			if !ok {
				t.Fatalf("Missing binding %s", tt.name)
			}
			if got := ref.String(); got != tt.want {
				t.Errorf("Got %s, want %s", got, tt.want)
			}
		})
	}

	list, _ := frame.Lookup("list")
	inner := list.GetKey(AnyKey)
	path, ok := prov.LookupAny(inner)
	if !ok || path.String() != "list[*]" {
		t.Errorf("Expected nested array at list[*], got %v %v", path, ok)
	}
}
