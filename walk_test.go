package nomut_test

import (
	"testing"

	"github.com/clockwork-dog/lint-no-global-mutations"
	"github.com/dop251/goja/ast"
	"github.com/google/go-cmp/cmp"
)

func TestInspect(t *testing.T) {
	prog := nomut.MustParse("function f(a) { return a.b; }\nf([1, ...x]);")

	var kinds []string
	nomut.Inspect(prog.AST, func(n ast.Node) bool {
		kinds = append(kinds, nomut.KindOf(n).String())
		return true
	})
	want := []string{
		"program",
		"function-declaration", "function", "other", "other", "identifier", "block", "return", "member", "identifier",
		"expression-statement", "call", "identifier", "array", "literal", "spread", "identifier",
	}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("Inspect order mismatch (-want +got):\n%s", diff)
	}
}

func TestInspect_SkipChildren(t *testing.T) {
	prog := nomut.MustParse("const f = () => { globalArr.push(1); };\nglobalObj.x = 1;")

	var members []string
	nomut.Inspect(prog.AST, func(n ast.Node) bool {
		switch n.(type) {
		case *ast.ArrowFunctionLiteral:
			return false
		case *ast.DotExpression:
			members = append(members, prog.Text(n))
		}
		return true
	})
	if diff := cmp.Diff([]string{"globalObj.x"}, members); diff != "" {
		t.Errorf("Members mismatch (-want +got):\n%s", diff)
	}
}

func TestChildren_Nil(t *testing.T) {
	if got := nomut.Children(nil); len(got) != 0 {
		t.Errorf("Expected no children, got %v", got)
	}
	var lit *ast.BlockStatement
	nomut.Inspect(lit, func(ast.Node) bool {
		t.Error("Expected typed nil node to be skipped")
		return true
	})
}
