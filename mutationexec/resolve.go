package mutationexec

import (
	"strconv"

	"github.com/clockwork-dog/lint-no-global-mutations"
	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/token"
)

// resolve returns every value e could evaluate to under stack. Each
// expression is evaluated exactly once; mutation points met on the way are
// checked as they are evaluated. A nil expression is undefined.
func (env *analysisEnv) resolve(e ast.Expression, stack *Stack) (*Reference, error) {
	if e == nil {
		return NewReference(Undefined), nil
	}

	switch n := e.(type) {
	case *ast.StringLiteral:
		return NewReference(String(n.Value.String())), nil
	case *ast.NumberLiteral:
		return NewReference(numberLiteral(n)), nil
	case *ast.BooleanLiteral:
		return NewReference(Bool(n.Value)), nil
	case *ast.NullLiteral:
		return NewReference(Null), nil
	case *ast.RegExpLiteral:
		return NewReference(AnyPrimitive), nil

	case *ast.TemplateLiteral:
		for _, sub := range n.Expressions {
			if _, err := env.resolve(sub, stack); err != nil {
				return nil, err
			}
		}
		if n.Tag != nil {
			if _, err := env.resolve(n.Tag, stack); err != nil {
				return nil, err
			}
			env.addWarning("tagged template at %s is not followed; its tag is treated as unknown", env.prog.Span(n))
			return NewReference(), nil
		}
		return NewReference(AnyPrimitive), nil

	case *ast.Identifier:
		return env.resolveIdentifier(n.Name.String(), stack), nil

	case *ast.BinaryExpression:
		left, err := env.resolve(n.Left, stack)
		if err != nil {
			return nil, err
		}
		right, err := env.resolve(n.Right, stack)
		if err != nil {
			return nil, err
		}
		switch {
		case n.Operator == token.LOGICAL_AND, n.Operator == token.LOGICAL_OR, n.Operator == token.COALESCE:
			return NewReference(left, right), nil
		case n.Comparison, n.Operator == token.INSTANCEOF, n.Operator == token.IN:
			return NewReference(True, False), nil
		default:
			return NewReference(AnyPrimitive), nil
		}

	case *ast.ConditionalExpression:
		if _, err := env.resolve(n.Test, stack); err != nil {
			return nil, err
		}
		consequent, err := env.resolve(n.Consequent, stack)
		if err != nil {
			return nil, err
		}
		alternate, err := env.resolve(n.Alternate, stack)
		if err != nil {
			return nil, err
		}
		return NewReference(consequent, alternate), nil

	case *ast.UnaryExpression:
		switch n.Operator {
		case token.INCREMENT, token.DECREMENT:
			return env.update(n, stack)
		case token.DELETE:
			return env.deleteProperty(n, stack)
		}
		if _, err := env.resolve(n.Operand, stack); err != nil {
			return nil, err
		}
		return NewReference(AnyPrimitive), nil

	case *ast.AssignExpression:
		return env.assign(n, stack)

	case *ast.ArrayLiteral:
		return env.resolveArrayLiteral(n, stack)
	case *ast.ObjectLiteral:
		return env.resolveObjectLiteral(n, stack)

	case *ast.DotExpression:
		object, err := env.resolve(n.Left, stack)
		if err != nil {
			return nil, err
		}
		return env.readMember(object, PropKey(n.Identifier.Name.String()), n)
	case *ast.BracketExpression:
		object, err := env.resolve(n.Left, stack)
		if err != nil {
			return nil, err
		}
		key, err := env.memberKey(n.Member, stack)
		if err != nil {
			return nil, err
		}
		return env.readMember(object, key, n)
	case *ast.PrivateDotExpression:
		if _, err := env.resolve(n.Left, stack); err != nil {
			return nil, err
		}
		return NewReference(), nil

	case *ast.OptionalChain:
		return env.resolve(n.Expression, stack)
	case *ast.Optional:
		return env.resolve(n.Expression, stack)

	case *ast.SequenceExpression:
		last := NewReference(Undefined)
		for _, sub := range n.Sequence {
			ref, err := env.resolve(sub, stack)
			if err != nil {
				return nil, err
			}
			last = ref
		}
		return last, nil

	case *ast.FunctionLiteral:
		return NewReference(newFunction(n, stack, env.prog)), nil
	case *ast.ArrowFunctionLiteral:
		return NewReference(newFunction(n, stack, env.prog)), nil

	case *ast.CallExpression:
		return env.call(n, stack)
	case *ast.NewExpression:
		return env.construct(n, stack)

	case *ast.SpreadElement:
		return env.resolve(n.Expression, stack)

	case *ast.YieldExpression:
		if _, err := env.resolve(n.Argument, stack); err != nil {
			return nil, err
		}
	case *ast.AwaitExpression:
		if _, err := env.resolve(n.Argument, stack); err != nil {
			return nil, err
		}
	case *ast.ClassLiteral:
		if n.SuperClass != nil {
			if _, err := env.resolve(n.SuperClass, stack); err != nil {
				return nil, err
			}
		}
	}

	env.addWarning("%s expression at %s is not tracked", nomut.KindOf(e), env.prog.Span(e))
	return NewReference(), nil
}

// resolveIdentifier walks the stack, then the intrinsics.
func (env *analysisEnv) resolveIdentifier(name string, stack *Stack) *Reference {
	if ref, ok := stack.Lookup(name); ok {
		return ref
	}
	if intrinsic, ok := intrinsicsByName[name]; ok {
		return NewReference(intrinsic)
	}
	if name == "undefined" {
		return NewReference(Undefined)
	}
	return NewReference()
}

// memberKey returns the key a computed member expression reads. Literal keys
// are used verbatim; anything else is evaluated and becomes the wildcard.
func (env *analysisEnv) memberKey(member ast.Expression, stack *Stack) (Key, error) {
	switch m := member.(type) {
	case *ast.StringLiteral:
		return PropKey(m.Value.String()), nil
	case *ast.NumberLiteral:
		return PropKey(numberLiteral(m).Text), nil
	}
	if _, err := env.resolve(member, stack); err != nil {
		return Key{}, err
	}
	return AnyKey, nil
}

// propertyKey returns the key of an object literal or pattern property.
func (env *analysisEnv) propertyKey(key ast.Expression, computed bool, stack *Stack) (Key, error) {
	if computed {
		return env.memberKey(key, stack)
	}
	switch k := key.(type) {
	case *ast.StringLiteral:
		return PropKey(k.Value.String()), nil
	case *ast.NumberLiteral:
		return PropKey(numberLiteral(k).Text), nil
	case *ast.Identifier:
		return PropKey(k.Name.String()), nil
	}
	return AnyKey, nil
}

func (env *analysisEnv) resolveArrayLiteral(n *ast.ArrayLiteral, stack *Stack) (*Reference, error) {
	arr := NewArray()
	for _, el := range n.Value {
		if el == nil {
			continue
		}
		if spread, ok := el.(*ast.SpreadElement); ok {
			src, err := env.resolve(spread.Expression, stack)
			if err != nil {
				return nil, err
			}
			for _, p := range src.Get() {
				if a, ok := p.(*Array); ok {
					arr.elems.Set(a.elems)
				}
			}
			continue
		}
		ref, err := env.resolve(el, stack)
		if err != nil {
			return nil, err
		}
		arr.elems.Set(ref)
	}
	return NewReference(arr), nil
}

func (env *analysisEnv) resolveObjectLiteral(n *ast.ObjectLiteral, stack *Stack) (*Reference, error) {
	obj := NewObject()
	for _, prop := range n.Value {
		switch p := prop.(type) {
		case *ast.PropertyShort:
			obj.set(PropKey(p.Name.Name.String()), env.resolveIdentifier(p.Name.Name.String(), stack))
		case *ast.PropertyKeyed:
			key, err := env.propertyKey(p.Key, p.Computed, stack)
			if err != nil {
				return nil, err
			}
			value, err := env.resolve(p.Value, stack)
			if err != nil {
				return nil, err
			}
			if p.Kind == ast.PropertyKindGet || p.Kind == ast.PropertyKindSet {
				for _, v := range value.Get() {
					if fn, ok := v.(*Function); ok {
						fn.Accessor = p.Kind
					}
				}
			}
			obj.set(key, value)
		case *ast.SpreadElement:
			src, err := env.resolve(p.Expression, stack)
			if err != nil {
				return nil, err
			}
			spreadInto(obj, src)
		}
	}
	return NewReference(obj), nil
}

// readMember reads key from object. Getters found in the slot are invoked
// and contribute what they return; setters read as undefined.
func (env *analysisEnv) readMember(object *Reference, key Key, node ast.Node) (*Reference, error) {
	slot := object.GetKey(key)
	if !hasAccessor(slot) {
		return slot, nil
	}
	out := NewReference()
	for _, p := range slot.Get() {
		fn, ok := p.(*Function)
		switch {
		case !ok || fn.Accessor == "":
			out.Set(p)
		case fn.Accessor == ast.PropertyKindGet:
			ref, err := env.invoke(fn, nil, &callSite{node: node, receiver: object})
			if err != nil {
				return nil, err
			}
			out.Set(ref)
		default:
			out.Set(Undefined)
		}
	}
	return out, nil
}

// callSetters invokes every setter in slot with value.
func (env *analysisEnv) callSetters(slot, object, value *Reference, node ast.Node) error {
	for _, p := range slot.Get() {
		if fn, ok := p.(*Function); ok && fn.Accessor == ast.PropertyKindSet {
			site := &callSite{node: node, receiver: object, args: []*Reference{value}}
			if _, err := env.invoke(fn, site.args, site); err != nil {
				return err
			}
		}
	}
	return nil
}

func hasAccessor(r *Reference) bool {
	for _, p := range r.Get() {
		if fn, ok := p.(*Function); ok && fn.Accessor != "" {
			return true
		}
	}
	return false
}

// spreadInto copies the slots of every container in src into obj. Array
// elements land in the wildcard slot.
func spreadInto(obj *Object, src *Reference) {
	for _, p := range src.Get() {
		switch p := p.(type) {
		case *Object:
			for k, ref := range p.props.All() {
				obj.set(PropKey(k), ref)
			}
			if p.any != nil {
				obj.set(AnyKey, p.any)
			}
		case *Array:
			obj.set(AnyKey, p.elems)
		}
	}
}

func numberLiteral(n *ast.NumberLiteral) Primitive {
	switch v := n.Value.(type) {
	case int64:
		return Number(float64(v))
	case float64:
		return Number(v)
	}
	if f, err := strconv.ParseFloat(n.Literal, 64); err == nil {
		return Number(f)
	}
	return AnyPrimitive
}
