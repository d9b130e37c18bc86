package nomut_test

import (
	"strings"
	"testing"

	"github.com/clockwork-dog/lint-no-global-mutations"
	"github.com/dop251/goja/ast"
)

func TestParse(t *testing.T) {
	prog, err := nomut.Parse("globalArr.push(1);\nconst x = 2;")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(prog.AST.Body) != 2 {
		t.Fatalf("Expected 2 statements, got %d", len(prog.AST.Body))
	}
	stmt := prog.AST.Body[0].(*ast.ExpressionStatement)
	call := stmt.Expression.(*ast.CallExpression)

	if got := prog.Span(call); got != (nomut.Span{Start: 0, End: 17}) {
		t.Errorf("Span() = %v, want [0,17)", got)
	}
	if got := prog.Text(call); got != "globalArr.push(1)" {
		t.Errorf("Text() = %q", got)
	}
	// The terminating semicolon is not part of the declaration.
	if got := prog.Text(prog.AST.Body[1]); got != "const x = 2" {
		t.Errorf("Text() = %q", got)
	}
}

func TestParse_Error(t *testing.T) {
	_, err := nomut.ParseFile("broken.js", "const = ;")
	if err == nil {
		t.Fatal("Expected parse error")
	}
	if !strings.Contains(err.Error(), "failed to parse script") || !strings.Contains(err.Error(), "broken.js") {
		t.Errorf("Unexpected error %q", err.Error())
	}
}

func TestMustParse_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic")
		}
	}()
	nomut.MustParse("function (")
}

func TestProgram_Position(t *testing.T) {
	prog := nomut.MustParse("a;\nbb;\nccc;")
	tests := []struct {
		offset       int
		line, column int
	}{
		{0, 1, 1},
		{1, 1, 2},
		{3, 2, 1},
		{8, 3, 2},
	}
	for _, tt := range tests {
		line, column := prog.Position(tt.offset)
		if line != tt.line || column != tt.column {
			t.Errorf("Position(%d) = %d:%d, want %d:%d", tt.offset, line, column, tt.line, tt.column)
		}
	}
}

func TestSpan(t *testing.T) {
	tests := []struct {
		name     string
		a, b     nomut.Span
		contains bool
		overlaps bool
	}{
		{"same", nomut.Span{Start: 0, End: 5}, nomut.Span{Start: 0, End: 5}, true, true},
		{"inner", nomut.Span{Start: 0, End: 10}, nomut.Span{Start: 2, End: 5}, true, true},
		{"outer", nomut.Span{Start: 2, End: 5}, nomut.Span{Start: 0, End: 10}, false, true},
		{"partial", nomut.Span{Start: 0, End: 5}, nomut.Span{Start: 4, End: 8}, false, true},
		{"adjacent", nomut.Span{Start: 0, End: 5}, nomut.Span{Start: 5, End: 8}, false, false},
		{"zero width inside", nomut.Span{Start: 0, End: 5}, nomut.Span{Start: 3, End: 3}, true, false},
		{"zero width around", nomut.Span{Start: 3, End: 3}, nomut.Span{Start: 0, End: 5}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Contains(tt.b); got != tt.contains {
				t.Errorf("Contains() = %v, want %v", got, tt.contains)
			}
			if got := tt.a.Overlaps(tt.b); got != tt.overlaps {
				t.Errorf("Overlaps() = %v, want %v", got, tt.overlaps)
			}
		})
	}
	if got := (nomut.Span{Start: 1, End: 4}).String(); got != "[1,4)" {
		t.Errorf("String() = %q", got)
	}
}
