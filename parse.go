// Package nomut parses JavaScript sources into programs the no-global-mutation
// analyzer in package mutationexec consumes.
package nomut

import (
	"fmt"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/file"
	"github.com/dop251/goja/parser"
)

// Program is a parsed script together with its source text.
type Program struct {
	Name   string
	Source string
	AST    *ast.Program
}

// Span is a half-open byte range [Start, End) into a program's source.
type Span struct {
	Start int
	End   int
}

// Contains reports whether o lies wholly inside s.
func (s Span) Contains(o Span) bool {
	return o.Start >= s.Start && o.End <= s.End
}

// Overlaps reports whether s and o share at least one byte. A zero-width
// span overlaps nothing.
func (s Span) Overlaps(o Span) bool {
	return s.Start < s.End && o.Start < o.End && o.Start < s.End && s.Start < o.End
}

func (s Span) String() string {
	return fmt.Sprintf("[%d,%d)", s.Start, s.End)
}

// Parse parses src as a script.
//
// Example:
//
//	prog, err := nomut.Parse("globalArr.push(1)")
//	if err != nil {
//	    log.Fatal(err)
//	}
func Parse(src string) (*Program, error) {
	return ParseFile("", src)
}

// ParseFile parses src as a script named name. The name only shows up in
// error positions.
func ParseFile(name, src string) (*Program, error) {
	program, err := parser.ParseFile(nil, name, src, 0, parser.WithDisableSourceMaps)
	if err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	return &Program{Name: name, Source: src, AST: program}, nil
}

// MustParse is like Parse but panics on error. Intended for tests and fixed
// sources.
func MustParse(src string) *Program {
	p, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Program) base() int {
	if p.AST != nil && p.AST.File != nil {
		return p.AST.File.Base()
	}
	return 1
}

// Offset converts a parser index into a byte offset into p.Source.
func (p *Program) Offset(idx file.Idx) int {
	return int(idx) - p.base()
}

// Span returns the source range of n.
func (p *Program) Span(n ast.Node) Span {
	return Span{Start: p.Offset(n.Idx0()), End: p.Offset(n.Idx1())}
}

// Text returns the source text covered by n.
func (p *Program) Text(n ast.Node) string {
	s := p.Span(n)
	if s.Start < 0 || s.End > len(p.Source) || s.Start > s.End {
		return ""
	}
	return p.Source[s.Start:s.End]
}

// Position returns the 1-based line and column of a byte offset.
func (p *Program) Position(offset int) (line, column int) {
	line, column = 1, 1
	for i := 0; i < offset && i < len(p.Source); i++ {
		if p.Source[i] == '\n' {
			line++
			column = 1
			continue
		}
		column++
	}
	return line, column
}
