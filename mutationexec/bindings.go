package mutationexec

import (
	"github.com/dop251/goja/ast"
)

// installFunc receives every leaf a pattern binds together with the values
// that reach it.
type installFunc func(leaf ast.Expression, ref *Reference) error

// bindPattern destructures init against target. Identifiers, and for
// assignment patterns member expressions, are leaves handed to install.
func (env *analysisEnv) bindPattern(target ast.Expression, init *Reference, stack *Stack, install installFunc) error {
	switch t := target.(type) {
	case *ast.ArrayPattern:
		return env.bindArrayPattern(t, init, stack, install)
	case *ast.ObjectPattern:
		return env.bindObjectPattern(t, init, stack, install)
	}
	return install(target, init)
}

func (env *analysisEnv) bindArrayPattern(p *ast.ArrayPattern, init *Reference, stack *Stack, install installFunc) error {
	elems := init.GetKey(AnyKey)
	for _, el := range p.Elements {
		if el == nil {
			continue
		}
		if def, ok := el.(*ast.AssignExpression); ok {
			if _, ok := def.Left.(*ast.Identifier); !ok {
				if err := env.unsupported(CodeAssignBinding, def); err != nil {
					return err
				}
				continue
			}
			fallback, err := env.resolve(def.Right, stack)
			if err != nil {
				return err
			}
			if err := install(def.Left, NewReference(elems, fallback)); err != nil {
				return err
			}
			continue
		}
		if err := env.bindPattern(el, elems, stack, install); err != nil {
			return err
		}
	}

	if p.Rest == nil {
		return nil
	}
	if _, ok := p.Rest.(*ast.Identifier); !ok {
		return env.unsupported(CodeRestBinding, p.Rest)
	}
	return install(p.Rest, NewReference(NewArray(elems)))
}

func (env *analysisEnv) bindObjectPattern(p *ast.ObjectPattern, init *Reference, stack *Stack, install installFunc) error {
	for _, prop := range p.Properties {
		switch prop := prop.(type) {
		case *ast.PropertyShort:
			name := prop.Name.Name.String()
			ref := init.GetKey(PropKey(name))
			if prop.Initializer != nil {
				fallback, err := env.resolve(prop.Initializer, stack)
				if err != nil {
					return err
				}
				ref = NewReference(ref, fallback)
			}
			if err := install(&prop.Name, ref); err != nil {
				return err
			}

		case *ast.PropertyKeyed:
			key, err := env.propertyKey(prop.Key, prop.Computed, stack)
			if err != nil {
				return err
			}
			if _, ok := prop.Value.(*ast.AssignExpression); ok {
				if err := env.unsupported(CodeAssignBinding, prop.Value); err != nil {
					return err
				}
				continue
			}
			if err := env.bindPattern(prop.Value, init.GetKey(key), stack, install); err != nil {
				return err
			}

		default:
			if err := env.unsupported(CodeAssignBinding, prop); err != nil {
				return err
			}
		}
	}

	if p.Rest == nil {
		return nil
	}
	if _, ok := p.Rest.(*ast.Identifier); !ok {
		return env.unsupported(CodeRestBinding, p.Rest)
	}
	rest := NewObject()
	rest.any = init.GetKey(AnyKey)
	return install(p.Rest, NewReference(rest))
}
