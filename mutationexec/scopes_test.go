package mutationexec

import (
	"strings"
	"testing"

	"github.com/clockwork-dog/lint-no-global-mutations"
	"github.com/dop251/goja/ast"
	"github.com/google/go-cmp/cmp"
)

func TestBuildHoistedScopes(t *testing.T) {
	src := `var top = 1;
function outer(p, [q]) {
  var p, local;
  for (var i = 0; i < 1; i++) {}
  {
    let blockScoped = 1;
    var fromBlock;
    function nested() { var deep; }
  }
}
const arrow = (x) => { var inArrow; };
switch (top) {
  case 1:
    function inSwitch() {}
}`
	prog := nomut.MustParse(src)
	scopes := buildHoistedScopes(prog)

	blockAt := func(marker string) int {
		t.Helper()
		i := strings.Index(src, marker)
		if i < 0 {
			t.Fatalf("Marker %q not found", marker)
		}
		return i + strings.Index(src[i:], "{")
	}

	tests := []struct {
		name  string
		key   int
		vars  []string
		funcs []string
	}{
		{"program", programScopeKey, []string{"top"}, []string{"outer"}},
		{"outer body", blockAt("function outer"), []string{"local", "i", "fromBlock"}, nil},
		{"inner block", blockAt("{\n    let"), nil, []string{"nested"}},
		{"nested body", blockAt("function nested"), []string{"deep"}, nil},
		{"arrow body", blockAt("(x) =>"), []string{"inArrow"}, nil},
		{"switch", strings.Index(src, "switch"), nil, []string{"inSwitch"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scope := scopes.lookup(tt.key)
			if diff := cmp.Diff(tt.vars, scope.Vars); diff != "" {
				t.Errorf("Vars mismatch (-want +got):\n%s", diff)
			}
			var funcs []string
			for _, fn := range scope.Functions {
				funcs = append(funcs, fn.Name.Name.String())
			}
			if diff := cmp.Diff(tt.funcs, funcs); diff != "" {
				t.Errorf("Functions mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestHoistedScopes(t *testing.T) {
	src := "var a;\nfunction f() { var b; }"
	got, err := HoistedScopes(nomut.MustParse(src))
	if err != nil {
		t.Fatalf("HoistedScopes failed: %v", err)
	}
	want := []ScopeSummary{
		{Start: -1, Vars: []string{"a"}, Functions: []string{"f"}},
		{Start: strings.Index(src, "{"), Vars: []string{"b"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("HoistedScopes mismatch (-want +got):\n%s", diff)
	}

	if _, err := HoistedScopes(nil); err == nil {
		t.Error("Expected error for nil program")
	}
}

func TestHoistedScope_Instantiate(t *testing.T) {
	prog := nomut.MustParse("var a;\nfunction f() {}\nfunction g() {}")
	scope := buildHoistedScopes(prog).lookup(programScopeKey)

	globals := newFrame(nil)
	stack := scope.instantiate(nil, newStack(globals), prog)

	if diff := cmp.Diff([]string{"a", "f", "g"}, stack.Top().Names()); diff != "" {
		t.Errorf("Names mismatch (-want +got):\n%s", diff)
	}
	ref, _ := stack.Lookup("f")
	fn, ok := ref.Get()[0].(*Function)
	if !ok {
		t.Fatalf("Expected a function, got %v", ref)
	}
	if _, ok := fn.Scope.Lookup("g"); !ok {
		t.Error("Expected hoisted functions to see their siblings")
	}
	if a, _ := stack.Lookup("a"); !a.IsEmpty() {
		t.Errorf("Expected hoisted var to start empty, got %v", a)
	}
}

func TestHoistedScopes_LookupMissing(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for a missing scope")
		}
	}()
	buildHoistedScopes(nomut.MustParse("1")).lookup(42)
}

func TestStack(t *testing.T) {
	globals := newFrame(nil)
	globals.Define("g", NewReference(Null))
	program := newFrame(nil)
	inner := newFrame(nil)
	inner.Define("g", NewReference(Undefined))

	s := newStack(globals).Push(program).Push(inner)
	if s.Depth() != 3 {
		t.Errorf("Expected depth 3, got %d", s.Depth())
	}
	if s.Globals() != globals || s.programFrame() != program || s.Top() != inner {
		t.Error("Frame accessors returned the wrong frames")
	}
	if ref, _ := s.Lookup("g"); !ref.Contains(Undefined) {
		t.Errorf("Expected innermost binding to win, got %v", ref)
	}
	if ref, _ := s.Pop().Lookup("g"); !ref.Contains(Null) {
		t.Errorf("Expected global binding after pop, got %v", ref)
	}
	if _, ok := s.Lookup("missing"); ok {
		t.Error("Expected missing name to be unbound")
	}
	if newStack(globals).programFrame() != globals {
		t.Error("Expected a bare stack to use its only frame")
	}

	defer func() {
		if recover() == nil {
			t.Error("Expected panic popping the globals frame")
		}
	}()
	newStack(globals).Pop()
}

func TestBindingNames(t *testing.T) {
	prog := nomut.MustParse("const [a, , b = 1, ...rest] = x, { c, d: [e], ...others } = y;")
	decl := prog.AST.Body[0].(*ast.LexicalDeclaration)
	var got []string
	for _, b := range decl.List {
		got = append(got, bindingNames(b.Target)...)
	}
	want := []string{"a", "b", "rest", "c", "e", "others"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("bindingNames mismatch (-want +got):\n%s", diff)
	}
}
