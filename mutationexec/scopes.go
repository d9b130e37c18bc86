package mutationexec

import (
	"fmt"
	"sort"

	"github.com/clockwork-dog/lint-no-global-mutations"
	"github.com/dop251/goja/ast"
)

// programScopeKey keys the hoisted scope of the program body.
const programScopeKey = -1

// hoistedScope is the template instantiated every time a block is entered:
// the var names hoisted into it (function bodies and the program only) and
// the function declarations it contains.
type hoistedScope struct {
	Start     int
	Vars      []string
	Functions []*ast.FunctionLiteral

	varSet map[string]struct{}
	params map[string]struct{}
}

func newHoistedScope(start int) *hoistedScope {
	return &hoistedScope{
		Start:  start,
		varSet: make(map[string]struct{}),
	}
}

func (s *hoistedScope) addVar(name string) {
	if _, isParam := s.params[name]; isParam {
		return
	}
	if _, ok := s.varSet[name]; ok {
		return
	}
	s.varSet[name] = struct{}{}
	s.Vars = append(s.Vars, name)
}

// hoistedScopes maps block start offsets (the `{`, or the `switch` keyword)
// to their templates.
type hoistedScopes map[int]*hoistedScope

// buildHoistedScopes runs the hoisting pre-pass over a program.
func buildHoistedScopes(p *nomut.Program) hoistedScopes {
	b := &scopeBuilder{prog: p, scopes: make(hoistedScopes)}
	root := newHoistedScope(programScopeKey)
	b.scopes[programScopeKey] = root
	for _, stmt := range p.AST.Body {
		b.visit(stmt, root, root)
	}
	return b.scopes
}

type scopeBuilder struct {
	prog   *nomut.Program
	scopes hoistedScopes
}

// visit records declarations under n. block is the innermost enclosing
// block scope, vars the nearest function body or program scope.
func (b *scopeBuilder) visit(n ast.Node, block, vars *hoistedScope) {
	switch n := n.(type) {
	case *ast.BlockStatement:
		scope := b.open(b.prog.Offset(n.LeftBrace))
		for _, stmt := range n.List {
			b.visit(stmt, scope, vars)
		}
		return

	case *ast.SwitchStatement:
		b.visit(n.Discriminant, block, vars)
		scope := b.open(b.prog.Offset(n.Switch))
		for _, c := range n.Body {
			b.visit(c, scope, vars)
		}
		return

	case *ast.FunctionDeclaration:
		if n.Function != nil {
			block.Functions = append(block.Functions, n.Function)
			b.function(n.Function.ParameterList, n.Function.Body)
		}
		return

	case *ast.FunctionLiteral:
		b.function(n.ParameterList, n.Body)
		return

	case *ast.ArrowFunctionLiteral:
		switch body := n.Body.(type) {
		case *ast.BlockStatement:
			b.function(n.ParameterList, body)
		case *ast.ExpressionBody:
			b.visitParams(n.ParameterList, block, vars)
			b.visit(body.Expression, block, vars)
		}
		return

	case *ast.VariableStatement:
		for _, binding := range n.List {
			for _, name := range bindingNames(binding.Target) {
				vars.addVar(name)
			}
		}
	case *ast.ForLoopInitializerVarDeclList:
		for _, binding := range n.List {
			for _, name := range bindingNames(binding.Target) {
				vars.addVar(name)
			}
		}
	case *ast.ForIntoVar:
		if n.Binding != nil {
			for _, name := range bindingNames(n.Binding.Target) {
				vars.addVar(name)
			}
		}
	}

	for _, c := range nomut.Children(n) {
		b.visit(c, block, vars)
	}
}

func (b *scopeBuilder) open(start int) *hoistedScope {
	if _, dup := b.scopes[start]; dup {
		panic(fmt.Sprintf("duplicate hoisted scope at offset %d", start))
	}
	scope := newHoistedScope(start)
	b.scopes[start] = scope
	return scope
}

// function opens the scope of a function body. Parameter names are never
// shadowed by hoisted vars of the same name.
func (b *scopeBuilder) function(params *ast.ParameterList, body *ast.BlockStatement) {
	if body == nil {
		return
	}
	scope := b.open(b.prog.Offset(body.LeftBrace))
	scope.params = make(map[string]struct{})
	if params != nil {
		for _, binding := range params.List {
			for _, name := range bindingNames(binding.Target) {
				scope.params[name] = struct{}{}
			}
		}
		if params.Rest != nil {
			for _, name := range bindingNames(params.Rest) {
				scope.params[name] = struct{}{}
			}
		}
	}
	b.visitParams(params, scope, scope)
	for _, stmt := range body.List {
		b.visit(stmt, scope, scope)
	}
}

// visitParams looks for nested functions in parameter defaults.
func (b *scopeBuilder) visitParams(params *ast.ParameterList, block, vars *hoistedScope) {
	if params == nil {
		return
	}
	for _, binding := range params.List {
		if binding.Initializer != nil {
			b.visit(binding.Initializer, block, vars)
		}
	}
}

// bindingNames returns every identifier a binding target declares.
func bindingNames(target ast.Expression) []string {
	var names []string
	var collect func(ast.Expression)
	collect = func(e ast.Expression) {
		switch e := e.(type) {
		case *ast.Identifier:
			names = append(names, e.Name.String())
		case *ast.AssignExpression:
			collect(e.Left)
		case *ast.ArrayPattern:
			for _, el := range e.Elements {
				if el != nil {
					collect(el)
				}
			}
			if e.Rest != nil {
				collect(e.Rest)
			}
		case *ast.ObjectPattern:
			for _, p := range e.Properties {
				switch p := p.(type) {
				case *ast.PropertyShort:
					names = append(names, p.Name.Name.String())
				case *ast.PropertyKeyed:
					collect(p.Value)
				case *ast.SpreadElement:
					collect(p.Expression)
				}
			}
			if e.Rest != nil {
				collect(e.Rest)
			}
		}
	}
	collect(target)
	return names
}

// instantiate creates the frame for one entry into the block and pushes it.
// Function declarations capture the returned stack, so siblings see each
// other.
func (s *hoistedScope) instantiate(owner ast.Node, stack *Stack, prog *nomut.Program) *Stack {
	f := newFrame(owner)
	for _, name := range s.Vars {
		f.Define(name, NewReference())
	}
	inner := stack.Push(f)
	for _, fn := range s.Functions {
		if fn.Name == nil {
			continue
		}
		f.Define(fn.Name.Name.String(), NewReference(newFunction(fn, inner, prog)))
	}
	return inner
}

// lookup returns the template for the block starting at start. A missing
// template means the pre-pass and the walker disagree.
func (hs hoistedScopes) lookup(start int) *hoistedScope {
	scope, ok := hs[start]
	if !ok {
		panic(fmt.Sprintf("no hoisted scope for block at offset %d", start))
	}
	return scope
}

// ScopeSummary describes the declarations hoisted into one block.
type ScopeSummary struct {
	Start     int // offset of the block; -1 for the program body
	Vars      []string
	Functions []string
}

// HoistedScopes returns the hoisted declarations of every block in prog,
// ordered by offset.
func HoistedScopes(prog *nomut.Program) ([]ScopeSummary, error) {
	if err := validateProgram(prog); err != nil {
		return nil, err
	}
	scopes := buildHoistedScopes(prog)
	out := make([]ScopeSummary, 0, len(scopes))
	for start, scope := range scopes {
		summary := ScopeSummary{Start: start, Vars: scope.Vars}
		for _, fn := range scope.Functions {
			if fn.Name != nil {
				summary.Functions = append(summary.Functions, fn.Name.Name.String())
			}
		}
		out = append(out, summary)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out, nil
}
