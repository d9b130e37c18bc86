package mutationexec

import (
	"fmt"

	"github.com/clockwork-dog/lint-no-global-mutations"
	"github.com/dop251/goja/ast"
)

// callSite is one evaluated call or construction.
type callSite struct {
	node     ast.Node   // call, new, or the member access running an accessor
	receiver *Reference // object the callee was read from; nil for plain calls
	args     []*Reference
}

// arg returns the i-th argument, or undefined when it was not passed.
func (c *callSite) arg(i int) *Reference {
	if i < len(c.args) {
		return c.args[i]
	}
	return NewReference(Undefined)
}

// newFunction creates the function value for a function or arrow literal.
func newFunction(node ast.Node, stack *Stack, prog *nomut.Program) *Function {
	fn := &Function{Node: node, Scope: stack, Program: prog}
	switch n := node.(type) {
	case *ast.FunctionLiteral:
		fn.Params = n.ParameterList
		if n.Name != nil {
			fn.Name = n.Name.Name.String()
		}
	case *ast.ArrowFunctionLiteral:
		fn.Params = n.ParameterList
	}
	return fn
}

func unwrapOptional(e ast.Expression) ast.Expression {
	for {
		switch n := e.(type) {
		case *ast.Optional:
			e = n.Expression
		case *ast.OptionalChain:
			e = n.Expression
		default:
			return e
		}
	}
}

// call evaluates a call expression: callee, then arguments, then every
// callee possibility. Calls through the globals graph are also dispatched to
// the callback resolver.
func (env *analysisEnv) call(n *ast.CallExpression, stack *Stack) (*Reference, error) {
	var (
		callee, receiver *Reference
		key              Key
		err              error
	)
	switch c := unwrapOptional(n.Callee).(type) {
	case *ast.FunctionLiteral, *ast.ArrowFunctionLiteral:
		callee = NewReference(newFunction(c, stack, env.prog))
	case *ast.DotExpression, *ast.BracketExpression:
		receiver, key, err = env.memberTarget(c, stack)
		if err != nil {
			return nil, err
		}
		callee, err = env.readMember(receiver, key, c)
		if err != nil {
			return nil, err
		}
	default:
		callee, err = env.resolve(c, stack)
		if err != nil {
			return nil, err
		}
	}

	args, err := env.resolveArgs(n.ArgumentList, callee, stack)
	if err != nil {
		return nil, err
	}
	site := &callSite{node: n, receiver: receiver, args: args}

	result, err := env.invokeAll(callee, site)
	if err != nil {
		return nil, err
	}

	if receiver != nil && env.opts.CallbackResolver != nil && !onlyNative(callee) {
		if path, ok := env.prov.LookupAny(receiver); ok {
			ref, err := env.resolveCallbacks(path.Child(segmentForKey(key)), site)
			if err != nil {
				return nil, err
			}
			result.Set(ref)
		}
	}
	return result, nil
}

// spreadSlots is how many positional slots a spread argument fills. No
// built-in model reads past the fourth argument.
const spreadSlots = 4

// resolveArgs evaluates call arguments. A spread argument and everything
// after it fold into one Reference that fills every later slot, so a callee
// reading by position sees each element at each position. User functions
// cannot bind spreads positionally and report SPREAD_ARGUMENT_ERR.
func (env *analysisEnv) resolveArgs(list []ast.Expression, callee *Reference, stack *Stack) ([]*Reference, error) {
	args := make([]*Reference, 0, len(list))
	var tail *Reference
	for _, a := range list {
		spread, ok := a.(*ast.SpreadElement)
		if !ok {
			ref, err := env.resolve(a, stack)
			if err != nil {
				return nil, err
			}
			if tail != nil {
				tail.Set(ref)
			} else {
				args = append(args, ref)
			}
			continue
		}

		src, err := env.resolve(spread.Expression, stack)
		if err != nil {
			return nil, err
		}
		if !onlyNative(callee) {
			if err := env.unsupported(CodeSpreadArgument, spread); err != nil {
				return nil, err
			}
		}
		if tail == nil {
			tail = NewReference()
		}
		tail.Set(src.GetKey(AnyKey))
	}
	for i := 0; tail != nil && i < spreadSlots; i++ {
		args = append(args, tail)
	}
	return args, nil
}

// onlyNative reports whether every possibility of callee is a built-in or an
// intrinsic.
func onlyNative(callee *Reference) bool {
	if callee.IsEmpty() {
		return false
	}
	for _, p := range callee.Get() {
		switch p.(type) {
		case Builtin, Intrinsic:
		default:
			return false
		}
	}
	return true
}

// construct evaluates a new expression.
func (env *analysisEnv) construct(n *ast.NewExpression, stack *Stack) (*Reference, error) {
	callee, err := env.resolve(unwrapOptional(n.Callee), stack)
	if err != nil {
		return nil, err
	}
	args, err := env.resolveArgs(n.ArgumentList, callee, stack)
	if err != nil {
		return nil, err
	}
	site := &callSite{node: n, args: args}

	result := NewReference()
	tracked := false
	for _, p := range callee.Get() {
		switch p := p.(type) {
		case Intrinsic:
			tracked = true
			ref, err := env.invokeValue(p, site)
			if err != nil {
				return nil, err
			}
			result.Set(ref)
		case *Function:
			tracked = true
			ref, err := env.invoke(p, args, site)
			if err != nil {
				return nil, err
			}
			result.Set(ref)
			result.Set(NewObject())
		}
	}
	if !tracked {
		env.addWarning("new expression at %s is not tracked", env.prog.Span(n))
	}
	return result, nil
}

// invokeAll calls every possibility of callee and unions the results.
func (env *analysisEnv) invokeAll(callee *Reference, site *callSite) (*Reference, error) {
	result := NewReference()
	for _, p := range callee.Get() {
		ref, err := env.invokeValue(p, site)
		if err != nil {
			return nil, err
		}
		result.Set(ref)
	}
	return result, nil
}

// invokeValue calls a single callee possibility. Primitives and containers
// are not callable and yield nothing.
func (env *analysisEnv) invokeValue(v Value, site *callSite) (*Reference, error) {
	switch v := v.(type) {
	case Intrinsic:
		switch v {
		case IntrinsicEval:
			env.report(site.node, msgEval, nil)
			return NewReference(), nil
		case IntrinsicFunction:
			env.report(site.node, msgFunctionFromSrc, nil)
			return NewReference(), nil
		case IntrinsicArray:
			elems := make([]Value, len(site.args))
			for i, a := range site.args {
				elems[i] = a
			}
			return NewReference(NewArray(elems...)), nil
		case IntrinsicObject:
			out := NewReference(NewObject())
			if len(site.args) > 0 {
				out.Set(NewReference(site.args[0].Containers()...))
			}
			return out, nil
		}
	case Builtin:
		return env.callBuiltin(v, site)
	case *Function:
		return env.invoke(v, site.args, site)
	}
	return NewReference(), nil
}

// invoke walks fn's body with args bound to its parameters and returns what
// it may return. Beyond the call-depth ceiling the call is skipped and yields
// nothing, as is a recursive re-entry of fn once its budget is spent.
func (env *analysisEnv) invoke(fn *Function, args []*Reference, site *callSite) (*Reference, error) {
	if err := env.checkContext(); err != nil {
		return nil, err
	}

	logger := env.logger.With(map[string]any{
		"depth":  env.depth,
		"callee": fn.Name,
		"at":     env.prog.Span(site.node),
	})
	switch {
	case env.opts.MaxCallDepth >= 0 && env.depth >= env.opts.MaxCallDepth:
		logger.Debugf("Call depth ceiling reached, skipping call")
		if !env.ceilingWarned {
			env.ceilingWarned = true
			env.addWarning("call at %s not followed: call depth ceiling %d reached", env.prog.Span(site.node), env.opts.MaxCallDepth)
		}
		return NewReference(), nil
	case env.opts.MaxCallDepth < 0 && env.depth >= hardCallDepthGuard:
		return nil, fmt.Errorf("%w: %d nested calls at %s", ErrCallDepthExceeded, env.depth, env.prog.Span(site.node))
	case env.budget > 0 && env.active[fn.Node] > 0 && env.reentries[fn.Node] >= env.budget:
		if !env.budgetWarned[fn.Node] {
			env.budgetWarned[fn.Node] = true
			env.addWarning("invocation budget of %d recursive calls to %s exhausted; further recursive calls are not followed", env.budget, fn.displayName())
		}
		return NewReference(), nil
	}

	args = append([]*Reference(nil), args...)
	summaries := make([]string, len(args))
	for i, a := range args {
		summaries[i] = referenceSummary(a, env.opts.LogMaxPossibilities)
	}
	logger.Debugf("Invoking function with args %v", summaries)

	if env.active[fn.Node] > 0 {
		env.reentries[fn.Node]++
	}
	env.depth++
	env.calls++
	env.active[fn.Node]++
	prev := env.prog
	env.prog = fn.Program
	defer func() {
		env.depth--
		env.active[fn.Node]--
		env.prog = prev
	}()

	stack, err := env.bindParams(fn, args)
	if err != nil {
		return nil, err
	}

	ws := &walkState{stack: stack, ret: NewReference()}
	switch n := fn.Node.(type) {
	case *ast.FunctionLiteral:
		err = env.walkBlock(n.Body, ws, fn.Node)
	case *ast.ArrowFunctionLiteral:
		switch body := n.Body.(type) {
		case *ast.BlockStatement:
			err = env.walkBlock(body, ws, fn.Node)
		case *ast.ExpressionBody:
			var ref *Reference
			ref, err = env.resolve(body.Expression, stack)
			ws.ret.Set(ref)
		}
	}
	if err != nil {
		return nil, err
	}
	return ws.ret, nil
}

// bindParams builds fn's parameter frame on top of its captured scope.
func (env *analysisEnv) bindParams(fn *Function, args []*Reference) (*Stack, error) {
	frame := newFrame(fn.Node)
	stack := fn.Scope.Push(frame)

	if _, ok := fn.Node.(*ast.FunctionLiteral); ok {
		if fn.Name != "" {
			frame.Define(fn.Name, NewReference(fn))
		}
		all := make([]Value, len(args))
		for i, a := range args {
			all[i] = a
		}
		frame.Define("arguments", NewReference(NewArray(all...)))
	}
	if fn.Params == nil {
		return stack, nil
	}

	for i, b := range fn.Params.List {
		value := NewReference(Undefined)
		if i < len(args) {
			value = args[i]
		}
		if b.Initializer != nil {
			fallback, err := env.resolve(b.Initializer, stack)
			if err != nil {
				return nil, err
			}
			value = NewReference(value, fallback)
		}
		id, ok := b.Target.(*ast.Identifier)
		if !ok {
			if err := env.unsupported(CodeParamBinding, b.Target); err != nil {
				return nil, err
			}
			if err := env.bindDeclaration(b.Target, value, stack, true); err != nil {
				return nil, err
			}
			continue
		}
		frame.Define(id.Name.String(), value)
	}

	if fn.Params.Rest != nil {
		id, ok := fn.Params.Rest.(*ast.Identifier)
		if !ok {
			return stack, env.unsupported(CodeParamBinding, fn.Params.Rest)
		}
		var rest []Value
		for i := len(fn.Params.List); i < len(args); i++ {
			rest = append(rest, args[i])
		}
		frame.Define(id.Name.String(), NewReference(NewArray(rest...)))
	}
	return stack, nil
}

// resolveCallbacks analyzes the implementations registered at path and
// invokes what they evaluate to with the call's arguments. Diagnostics
// raised meanwhile are anchored at the call.
func (env *analysisEnv) resolveCallbacks(path Path, site *callSite) (*Reference, error) {
	impls, err := env.opts.CallbackResolver(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve callbacks for %s: %w", path, err)
	}
	if len(impls) == 0 {
		return NewReference(), nil
	}
	env.logger.With(map[string]any{
		"path":            path.String(),
		"implementations": len(impls),
	}).Infof("Resolving callbacks")

	env.anchors = append(env.anchors, env.anchor(site.node))
	defer func() { env.anchors = env.anchors[:len(env.anchors)-1] }()

	result := NewReference()
	for i, impl := range impls {
		if impl.Program == nil {
			return nil, fmt.Errorf("failed to resolve callbacks for %s: implementation %d has no program", path, i)
		}
		if err := validateGlobals(impl.Globals); err != nil {
			return nil, fmt.Errorf("failed to resolve callbacks for %s: %w", path, err)
		}
		handlers, err := env.runProgram(impl.Program, newStack(env.globals.frame(impl.Globals)))
		if err != nil {
			return nil, fmt.Errorf("failed to resolve callbacks for %s: %w", path, err)
		}
		ref, err := env.invokeAll(handlers, &callSite{node: site.node, args: site.args})
		if err != nil {
			return nil, fmt.Errorf("failed to resolve callbacks for %s: %w", path, err)
		}
		result.Set(ref)
	}
	return result, nil
}
