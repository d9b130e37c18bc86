package nomut

import "github.com/dop251/goja/ast"

// Inspect traverses the syntax tree rooted at n in depth-first order,
// calling fn for every node. If fn returns false the children of that node
// are skipped. It mirrors go/ast.Inspect for goja trees.
func Inspect(n ast.Node, fn func(ast.Node) bool) {
	if isNilNode(n) || !fn(n) {
		return
	}
	for _, c := range Children(n) {
		Inspect(c, fn)
	}
}

// Children returns the direct children of n in source order. Nil children
// are omitted.
func Children(n ast.Node) []ast.Node {
	var out []ast.Node
	add := func(cs ...ast.Node) {
		for _, c := range cs {
			if !isNilNode(c) {
				out = append(out, c)
			}
		}
	}
	addExprs := func(es []ast.Expression) {
		for _, e := range es {
			if e != nil {
				add(e)
			}
		}
	}
	addStmts := func(ss []ast.Statement) {
		for _, s := range ss {
			if s != nil {
				add(s)
			}
		}
	}
	addBindings := func(bs []*ast.Binding) {
		for _, b := range bs {
			if b != nil {
				add(b)
			}
		}
	}

	switch n := n.(type) {
	case *ast.Program:
		addStmts(n.Body)
	case *ast.BlockStatement:
		addStmts(n.List)
	case *ast.ExpressionStatement:
		add(n.Expression)
	case *ast.VariableStatement:
		addBindings(n.List)
	case *ast.LexicalDeclaration:
		addBindings(n.List)
	case *ast.Binding:
		add(n.Target)
		if n.Initializer != nil {
			add(n.Initializer)
		}
	case *ast.FunctionDeclaration:
		add(n.Function)
	case *ast.ClassDeclaration:
		add(n.Class)
	case *ast.ReturnStatement:
		if n.Argument != nil {
			add(n.Argument)
		}
	case *ast.ThrowStatement:
		add(n.Argument)
	case *ast.IfStatement:
		add(n.Test, n.Consequent)
		if n.Alternate != nil {
			add(n.Alternate)
		}
	case *ast.ForStatement:
		if n.Initializer != nil {
			add(n.Initializer)
		}
		if n.Test != nil {
			add(n.Test)
		}
		if n.Update != nil {
			add(n.Update)
		}
		add(n.Body)
	case *ast.ForLoopInitializerExpression:
		add(n.Expression)
	case *ast.ForLoopInitializerVarDeclList:
		addBindings(n.List)
	case *ast.ForLoopInitializerLexicalDecl:
		addBindings(n.LexicalDeclaration.List)
	case *ast.ForInStatement:
		add(n.Into, n.Source, n.Body)
	case *ast.ForOfStatement:
		add(n.Into, n.Source, n.Body)
	case *ast.ForIntoVar:
		if n.Binding != nil {
			add(n.Binding)
		}
	case *ast.ForDeclaration:
		add(n.Target)
	case *ast.ForIntoExpression:
		add(n.Expression)
	case *ast.WhileStatement:
		add(n.Test, n.Body)
	case *ast.DoWhileStatement:
		add(n.Body, n.Test)
	case *ast.WithStatement:
		add(n.Object, n.Body)
	case *ast.SwitchStatement:
		add(n.Discriminant)
		for _, c := range n.Body {
			add(c)
		}
	case *ast.CaseStatement:
		if n.Test != nil {
			add(n.Test)
		}
		addStmts(n.Consequent)
	case *ast.TryStatement:
		add(n.Body)
		if n.Catch != nil {
			add(n.Catch)
		}
		if n.Finally != nil {
			add(n.Finally)
		}
	case *ast.CatchStatement:
		if n.Parameter != nil {
			add(n.Parameter)
		}
		add(n.Body)
	case *ast.LabelledStatement:
		add(n.Statement)

	case *ast.ArrayLiteral:
		addExprs(n.Value)
	case *ast.ArrayPattern:
		addExprs(n.Elements)
		if n.Rest != nil {
			add(n.Rest)
		}
	case *ast.ObjectLiteral:
		for _, p := range n.Value {
			add(p)
		}
	case *ast.ObjectPattern:
		for _, p := range n.Properties {
			add(p)
		}
		if n.Rest != nil {
			add(n.Rest)
		}
	case *ast.PropertyShort:
		add(&n.Name)
		if n.Initializer != nil {
			add(n.Initializer)
		}
	case *ast.PropertyKeyed:
		add(n.Key, n.Value)
	case *ast.SpreadElement:
		add(n.Expression)
	case *ast.AssignExpression:
		add(n.Left, n.Right)
	case *ast.BinaryExpression:
		add(n.Left, n.Right)
	case *ast.UnaryExpression:
		add(n.Operand)
	case *ast.ConditionalExpression:
		add(n.Test, n.Consequent, n.Alternate)
	case *ast.SequenceExpression:
		addExprs(n.Sequence)
	case *ast.DotExpression:
		add(n.Left)
	case *ast.PrivateDotExpression:
		add(n.Left)
	case *ast.BracketExpression:
		add(n.Left, n.Member)
	case *ast.OptionalChain:
		add(n.Expression)
	case *ast.Optional:
		add(n.Expression)
	case *ast.CallExpression:
		add(n.Callee)
		addExprs(n.ArgumentList)
	case *ast.NewExpression:
		add(n.Callee)
		addExprs(n.ArgumentList)
	case *ast.TemplateLiteral:
		if n.Tag != nil {
			add(n.Tag)
		}
		addExprs(n.Expressions)
	case *ast.YieldExpression:
		if n.Argument != nil {
			add(n.Argument)
		}
	case *ast.AwaitExpression:
		add(n.Argument)
	case *ast.FunctionLiteral:
		if n.ParameterList != nil {
			add(n.ParameterList)
		}
		if n.Body != nil {
			add(n.Body)
		}
	case *ast.ArrowFunctionLiteral:
		if n.ParameterList != nil {
			add(n.ParameterList)
		}
		add(n.Body)
	case *ast.ExpressionBody:
		add(n.Expression)
	case *ast.ParameterList:
		addBindings(n.List)
		if n.Rest != nil {
			add(n.Rest)
		}
	case *ast.ClassLiteral:
		if n.SuperClass != nil {
			add(n.SuperClass)
		}
		for _, el := range n.Body {
			add(el)
		}
	case *ast.FieldDefinition:
		add(n.Key)
		if n.Initializer != nil {
			add(n.Initializer)
		}
	case *ast.MethodDefinition:
		add(n.Key, n.Body)
	case *ast.ClassStaticBlock:
		add(n.Block)
	}
	return out
}

// isNilNode reports whether n is nil or a typed nil pointer.
func isNilNode(n ast.Node) bool {
	if n == nil {
		return true
	}
	switch n := n.(type) {
	case *ast.BlockStatement:
		return n == nil
	case *ast.FunctionLiteral:
		return n == nil
	case *ast.Identifier:
		return n == nil
	case *ast.Binding:
		return n == nil
	case *ast.ParameterList:
		return n == nil
	case *ast.CatchStatement:
		return n == nil
	case *ast.ClassLiteral:
		return n == nil
	}
	return false
}
