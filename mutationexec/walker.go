package mutationexec

import (
	"fmt"

	"github.com/clockwork-dog/lint-no-global-mutations"
	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/token"
)

// Diagnostic messages. The %s verb receives the rendered global path.
const (
	msgUpdate          = "Cannot update global value %s"
	msgDelete          = "Cannot delete property of global value %s"
	msgAssign          = "Cannot assign to global value %s"
	msgAssignProperty  = "Cannot assign to property of global value %s"
	msgArrayMutation   = "Can't call mutating array instance method on %s"
	msgObjectMutation  = "Cannot call mutating Object prototype method on %s"
	msgPrototype       = "Don't touch prototypes"
	msgEval            = "Cannot call eval"
	msgFunctionFromSrc = "Cannot construct a function from source"
)

// walkState is the walker's view of one program or function body.
type walkState struct {
	stack *Stack
	ret   *Reference
	// fold makes expression statements contribute to ret, for programs
	// consisting of a single expression.
	fold bool
}

func (env *analysisEnv) walkStatements(list []ast.Statement, ws *walkState) error {
	for _, stmt := range list {
		if err := env.walkStatement(stmt, ws); err != nil {
			return err
		}
	}
	return nil
}

// walkStatement dispatches on the statement kind. Function declarations are
// skipped: their bodies are only walked when invoked.
func (env *analysisEnv) walkStatement(stmt ast.Statement, ws *walkState) error {
	switch n := stmt.(type) {
	case nil:
		return nil

	case *ast.BlockStatement:
		return env.walkBlock(n, ws, n)

	case *ast.ExpressionStatement:
		ref, err := env.resolve(n.Expression, ws.stack)
		if err != nil {
			return err
		}
		if ws.fold {
			ws.ret.Set(ref)
		}
		return nil

	case *ast.VariableStatement:
		for _, b := range n.List {
			if err := env.declare(b, ws.stack, false); err != nil {
				return err
			}
		}
		return nil

	case *ast.LexicalDeclaration:
		for _, b := range n.List {
			if err := env.declare(b, ws.stack, true); err != nil {
				return err
			}
		}
		return nil

	case *ast.FunctionDeclaration:
		return nil

	case *ast.ClassDeclaration:
		if n.Class != nil && n.Class.Name != nil {
			ws.stack.Top().Define(n.Class.Name.Name.String(), NewReference())
		}
		env.addWarning("class body at %s is not analyzed", env.prog.Span(n))
		return nil

	case *ast.ReturnStatement:
		ref, err := env.resolve(n.Argument, ws.stack)
		if err != nil {
			return err
		}
		ws.ret.Set(ref)
		return nil

	case *ast.ThrowStatement:
		ref, err := env.resolve(n.Argument, ws.stack)
		if err != nil {
			return err
		}
		env.thrown.Set(ref)
		return nil

	case *ast.IfStatement:
		if _, err := env.resolve(n.Test, ws.stack); err != nil {
			return err
		}
		if err := env.walkStatement(n.Consequent, ws); err != nil {
			return err
		}
		return env.walkStatement(n.Alternate, ws)

	case *ast.ForStatement:
		return env.walkFor(n, ws)
	case *ast.ForInStatement:
		return env.walkForInto(n, n.Into, n.Source, n.Body, false, ws)
	case *ast.ForOfStatement:
		return env.walkForInto(n, n.Into, n.Source, n.Body, true, ws)

	case *ast.WhileStatement:
		if _, err := env.resolve(n.Test, ws.stack); err != nil {
			return err
		}
		return env.walkStatement(n.Body, ws)

	case *ast.DoWhileStatement:
		if err := env.walkStatement(n.Body, ws); err != nil {
			return err
		}
		_, err := env.resolve(n.Test, ws.stack)
		return err

	case *ast.SwitchStatement:
		return env.walkSwitch(n, ws)

	case *ast.TryStatement:
		return env.walkTry(n, ws)

	case *ast.LabelledStatement:
		return env.walkStatement(n.Statement, ws)

	case *ast.WithStatement:
		if _, err := env.resolve(n.Object, ws.stack); err != nil {
			return err
		}
		env.addWarning("with statement at %s: property lookups through its object are not tracked", env.prog.Span(n))
		return env.walkStatement(n.Body, ws)

	case *ast.BranchStatement, *ast.EmptyStatement, *ast.DebuggerStatement, *ast.BadStatement:
		return nil
	}

	env.addWarning("%s statement at %s is not analyzed", nomut.KindOf(stmt), env.prog.Span(stmt))
	return nil
}

// walkBlock instantiates the block's hoisted frame, walks its statements and
// restores the enclosing stack.
func (env *analysisEnv) walkBlock(n *ast.BlockStatement, ws *walkState, owner ast.Node) error {
	if err := env.checkContext(); err != nil {
		return err
	}
	start := env.prog.Offset(n.LeftBrace)
	scope := env.hoisted().lookup(start)
	env.logger.With(map[string]any{
		"block":  start,
		"frames": ws.stack.Depth(),
		"vars":   len(scope.Vars),
		"funcs":  len(scope.Functions),
	}).Debugf("Entering block")

	saved := ws.stack
	ws.stack = scope.instantiate(owner, ws.stack, env.prog)
	defer func() { ws.stack = saved }()
	return env.walkStatements(n.List, ws)
}

func (env *analysisEnv) walkFor(n *ast.ForStatement, ws *walkState) error {
	saved := ws.stack
	ws.stack = ws.stack.Push(newFrame(n))
	defer func() { ws.stack = saved }()

	switch init := n.Initializer.(type) {
	case *ast.ForLoopInitializerExpression:
		if _, err := env.resolve(init.Expression, ws.stack); err != nil {
			return err
		}
	case *ast.ForLoopInitializerVarDeclList:
		for _, b := range init.List {
			if err := env.declare(b, ws.stack, false); err != nil {
				return err
			}
		}
	case *ast.ForLoopInitializerLexicalDecl:
		for _, b := range init.LexicalDeclaration.List {
			if err := env.declare(b, ws.stack, true); err != nil {
				return err
			}
		}
	}
	if n.Test != nil {
		if _, err := env.resolve(n.Test, ws.stack); err != nil {
			return err
		}
	}
	if err := env.walkStatement(n.Body, ws); err != nil {
		return err
	}
	if n.Update != nil {
		if _, err := env.resolve(n.Update, ws.stack); err != nil {
			return err
		}
	}
	return nil
}

// walkForInto handles for-in and for-of. for-of binds the source's
// elements, for-in some primitive key.
func (env *analysisEnv) walkForInto(n ast.Node, into ast.ForInto, source ast.Expression, body ast.Statement, of bool, ws *walkState) error {
	saved := ws.stack
	ws.stack = ws.stack.Push(newFrame(n))
	defer func() { ws.stack = saved }()

	src, err := env.resolve(source, ws.stack)
	if err != nil {
		return err
	}
	value := NewReference(AnyPrimitive)
	if of {
		value = src.GetKey(AnyKey)
	}

	switch target := into.(type) {
	case *ast.ForIntoVar:
		if err := env.bindDeclaration(target.Binding.Target, value, ws.stack, false); err != nil {
			return err
		}
	case *ast.ForDeclaration:
		if err := env.bindDeclaration(target.Target, value, ws.stack, true); err != nil {
			return err
		}
	case *ast.ForIntoExpression:
		if err := env.assignTo(target.Expression, value, n, ws.stack); err != nil {
			return err
		}
	}
	return env.walkStatement(body, ws)
}

func (env *analysisEnv) walkSwitch(n *ast.SwitchStatement, ws *walkState) error {
	if _, err := env.resolve(n.Discriminant, ws.stack); err != nil {
		return err
	}
	scope := env.hoisted().lookup(env.prog.Offset(n.Switch))
	saved := ws.stack
	ws.stack = scope.instantiate(n, ws.stack, env.prog)
	defer func() { ws.stack = saved }()

	for _, c := range n.Body {
		if c.Test != nil {
			if _, err := env.resolve(c.Test, ws.stack); err != nil {
				return err
			}
		}
		if err := env.walkStatements(c.Consequent, ws); err != nil {
			return err
		}
	}
	return nil
}

// walkTry walks every part once. The catch parameter sees everything thrown
// anywhere in the analysis.
func (env *analysisEnv) walkTry(n *ast.TryStatement, ws *walkState) error {
	if err := env.walkBlock(n.Body, ws, n.Body); err != nil {
		return err
	}
	if n.Catch != nil {
		saved := ws.stack
		ws.stack = ws.stack.Push(newFrame(n.Catch))
		err := func() error {
			if n.Catch.Parameter != nil {
				if err := env.bindDeclaration(n.Catch.Parameter, env.thrown, ws.stack, true); err != nil {
					return err
				}
			}
			return env.walkBlock(n.Catch.Body, ws, n.Catch.Body)
		}()
		ws.stack = saved
		if err != nil {
			return err
		}
	}
	if n.Finally != nil {
		return env.walkBlock(n.Finally, ws, n.Finally)
	}
	return nil
}

// declare evaluates one declarator and installs its bindings: lexical
// declarations in the innermost frame, var declarations in the frame their
// name was hoisted to.
func (env *analysisEnv) declare(b *ast.Binding, stack *Stack, lexical bool) error {
	init, err := env.resolve(b.Initializer, stack)
	if err != nil {
		return err
	}
	return env.bindDeclaration(b.Target, init, stack, lexical)
}

func (env *analysisEnv) bindDeclaration(target ast.Expression, init *Reference, stack *Stack, lexical bool) error {
	return env.bindPattern(target, init, stack, func(leaf ast.Expression, ref *Reference) error {
		id, ok := leaf.(*ast.Identifier)
		if !ok {
			return env.unsupported(CodeAssignBinding, leaf)
		}
		name := id.Name.String()
		if lexical {
			stack.Top().Define(name, ref)
			return nil
		}
		if f := stack.owner(name); f != nil && f != stack.Globals() {
			existing := f.bindings[name]
			f.Define(name, NewReference(existing, ref))
			return nil
		}
		stack.Top().Define(name, ref)
		return nil
	})
}

// assign checks and performs an assignment expression. Compound operators
// write some primitive; logical assignments may keep either side.
func (env *analysisEnv) assign(n *ast.AssignExpression, stack *Stack) (*Reference, error) {
	right, err := env.resolve(n.Right, stack)
	if err != nil {
		return nil, err
	}
	value := right
	switch n.Operator {
	case token.ASSIGN:
	case token.LOGICAL_AND, token.LOGICAL_OR, token.COALESCE:
		// x ||= y parses with the bare logical operator. The target keeps
		// its old value on one branch, which assignTo already unions in.
	default:
		value = NewReference(AnyPrimitive)
	}

	if isPattern(n.Left) {
		err = env.bindPattern(n.Left, value, stack, func(leaf ast.Expression, ref *Reference) error {
			return env.assignTo(leaf, ref, n, stack)
		})
	} else {
		err = env.assignTo(n.Left, value, n, stack)
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func isPattern(e ast.Expression) bool {
	switch e.(type) {
	case *ast.ArrayPattern, *ast.ObjectPattern:
		return true
	}
	return false
}

// assignTo checks a write of value into target, then records it. anchor is
// the node diagnostics are reported at.
func (env *analysisEnv) assignTo(target ast.Expression, value *Reference, anchor ast.Node, stack *Stack) error {
	switch t := target.(type) {
	case *ast.Identifier:
		name := t.Name.String()
		current := env.resolveIdentifier(name, stack)
		if !env.checkGlobal(current, anchor, msgAssign) {
			env.checkGlobalBinding(name, stack, anchor, msgAssign)
		}
		env.rebind(name, NewReference(current, value), stack)
		return nil

	case *ast.DotExpression, *ast.BracketExpression:
		object, key, err := env.memberTarget(t, stack)
		if err != nil {
			return err
		}
		slot := object.GetKey(key)
		env.checkGlobal(slot, anchor, msgAssign)
		env.checkGlobal(object, anchor, msgAssignProperty)
		if err := env.callSetters(slot, object, value, anchor); err != nil {
			return err
		}
		object.SetKey(key, value)
		return nil

	case *ast.PrivateDotExpression:
		object, err := env.resolve(t.Left, stack)
		if err != nil {
			return err
		}
		env.checkGlobal(object, anchor, msgAssignProperty)
		return nil
	}

	if err := env.unsupported(CodeAssignTarget, target); err != nil {
		return err
	}
	return nil
}

// checkGlobalBinding reports writes to a name bound directly in a globals
// frame. These hold primitives too, which carry no provenance.
func (env *analysisEnv) checkGlobalBinding(name string, stack *Stack, anchor ast.Node, format string) {
	if f := stack.owner(name); f != nil && f == stack.Globals() {
		path := Path{{Key: name}}
		env.report(anchor, fmt.Sprintf(format, path), path)
	}
}

// rebind replaces name's binding in the frame that owns it. Unbound names
// are created in the program frame.
func (env *analysisEnv) rebind(name string, ref *Reference, stack *Stack) {
	if f := stack.owner(name); f != nil {
		f.Define(name, ref)
		return
	}
	stack.programFrame().Define(name, ref)
}

// memberTarget evaluates the object and key of a member expression used as
// a write target.
func (env *analysisEnv) memberTarget(e ast.Expression, stack *Stack) (*Reference, Key, error) {
	switch m := e.(type) {
	case *ast.DotExpression:
		object, err := env.resolve(m.Left, stack)
		if err != nil {
			return nil, Key{}, err
		}
		return object, PropKey(m.Identifier.Name.String()), nil
	case *ast.BracketExpression:
		object, err := env.resolve(m.Left, stack)
		if err != nil {
			return nil, Key{}, err
		}
		key, err := env.memberKey(m.Member, stack)
		if err != nil {
			return nil, Key{}, err
		}
		return object, key, nil
	}
	ref, err := env.resolve(e, stack)
	return ref, AnyKey, err
}

// update checks `++`/`--`: the operand itself and, for members, the object
// written through.
func (env *analysisEnv) update(n *ast.UnaryExpression, stack *Stack) (*Reference, error) {
	switch t := n.Operand.(type) {
	case *ast.Identifier:
		name := t.Name.String()
		current := env.resolveIdentifier(name, stack)
		if !env.checkGlobal(current, n, msgUpdate) {
			env.checkGlobalBinding(name, stack, n, msgUpdate)
		}
		env.rebind(name, NewReference(current, AnyPrimitive), stack)

	case *ast.DotExpression, *ast.BracketExpression:
		object, key, err := env.memberTarget(t, stack)
		if err != nil {
			return nil, err
		}
		env.checkGlobal(object.GetKey(key), n, msgUpdate)
		env.checkGlobal(object, n, msgUpdate)
		object.SetKey(key, AnyPrimitive)

	default:
		operand, err := env.resolve(n.Operand, stack)
		if err != nil {
			return nil, err
		}
		env.checkGlobal(operand, n, msgUpdate)
	}
	return NewReference(AnyPrimitive), nil
}

// deleteProperty checks `delete o.p` against o.
func (env *analysisEnv) deleteProperty(n *ast.UnaryExpression, stack *Stack) (*Reference, error) {
	switch t := n.Operand.(type) {
	case *ast.DotExpression, *ast.BracketExpression:
		object, _, err := env.memberTarget(t, stack)
		if err != nil {
			return nil, err
		}
		env.checkGlobal(object, n, msgDelete)
	default:
		if _, err := env.resolve(n.Operand, stack); err != nil {
			return nil, err
		}
	}
	return NewReference(True, False), nil
}
