package nomut_test

import (
	"testing"

	"github.com/clockwork-dog/lint-no-global-mutations"
	"github.com/dop251/goja/ast"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		src  string
		want nomut.NodeKind
	}{
		{"x++", nomut.KindUpdate},
		{"--x", nomut.KindUpdate},
		{"!x", nomut.KindUnary},
		{"delete x.y", nomut.KindUnary},
		{"x = 1", nomut.KindAssign},
		{"x.y", nomut.KindMember},
		{"x[0]", nomut.KindMember},
		{"f()", nomut.KindCall},
		{"new F()", nomut.KindNew},
		{"'s'", nomut.KindLiteral},
		{"`t${x}`", nomut.KindTemplate},
		{"a ? b : c", nomut.KindConditional},
		{"a, b", nomut.KindSequence},
		{"a?.b", nomut.KindOptional},
		{"this", nomut.KindThis},
		{"() => 1", nomut.KindArrow},
		{"(function () {})", nomut.KindFunction},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			prog := nomut.MustParse(tt.src)
			expr := prog.AST.Body[0].(*ast.ExpressionStatement).Expression
			if got := nomut.KindOf(expr); got != tt.want {
				t.Errorf("KindOf(%s) = %v, want %v", tt.src, got, tt.want)
			}
		})
	}
	if got := nomut.KindOf(nil); got != nomut.KindUnknown {
		t.Errorf("KindOf(nil) = %v", got)
	}
}

func TestNodeKind_String(t *testing.T) {
	tests := map[nomut.NodeKind]string{
		nomut.KindProgram:  "program",
		nomut.KindUpdate:   "update",
		nomut.KindForOf:    "for-of",
		nomut.KindOther:    "other",
		nomut.NodeKind(-1): "unknown",
	}
	for k, want := range tests {
		if got := k.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}
