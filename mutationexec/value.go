package mutationexec

import (
	"strconv"

	"github.com/clockwork-dog/lint-no-global-mutations"
	"github.com/dop251/goja/ast"
	"github.com/speakeasy-api/openapi/sequencedmap"
)

// ValueKind classifies the possibilities held by a Reference.
type ValueKind uint8

const (
	VPrimitive ValueKind = iota
	VObject
	VArray
	VFunction
	VIntrinsic
	VBuiltin
	vReference // only seen while flattening
)

func (k ValueKind) String() string {
	switch k {
	case VPrimitive:
		return "primitive"
	case VObject:
		return "object"
	case VArray:
		return "array"
	case VFunction:
		return "function"
	case VIntrinsic:
		return "intrinsic"
	case VBuiltin:
		return "builtin"
	default:
		return "reference"
	}
}

// Value is one possibility an expression may evaluate to. Containers are
// compared by identity; primitives, intrinsics and built-ins by value.
type Value interface {
	Kind() ValueKind
}

// Key addresses a property or element. Any is the wildcard key that stands
// for every property at once.
type Key struct {
	Name string
	Any  bool
}

// AnyKey is the wildcard key.
var AnyKey = Key{Any: true}

// PropKey returns the concrete key name.
func PropKey(name string) Key {
	return Key{Name: name}
}

// IsIndex reports whether k can address array elements.
func (k Key) IsIndex() bool {
	if k.Any {
		return true
	}
	if k.Name == "" {
		return false
	}
	for i := 0; i < len(k.Name); i++ {
		if k.Name[i] < '0' || k.Name[i] > '9' {
			return false
		}
	}
	return true
}

func (k Key) String() string {
	if k.Any {
		return "*"
	}
	return k.Name
}

// PrimitiveKind enumerates the primitive lattice. PAny is "some primitive".
type PrimitiveKind uint8

const (
	PUndefined PrimitiveKind = iota
	PNull
	PBool
	PNumber
	PString
	PAny
)

// Primitive is a non-container value. Text holds the canonical literal.
type Primitive struct {
	Type PrimitiveKind
	Text string
}

func (Primitive) Kind() ValueKind { return VPrimitive }

func (p Primitive) String() string {
	switch p.Type {
	case PUndefined:
		return "undefined"
	case PNull:
		return "null"
	case PString:
		return strconv.Quote(p.Text)
	case PAny:
		return "*"
	default:
		return p.Text
	}
}

var (
	Undefined    = Primitive{Type: PUndefined}
	Null         = Primitive{Type: PNull}
	True         = Primitive{Type: PBool, Text: "true"}
	False        = Primitive{Type: PBool, Text: "false"}
	AnyPrimitive = Primitive{Type: PAny}
)

// Bool returns the boolean primitive for b.
func Bool(b bool) Primitive {
	if b {
		return True
	}
	return False
}

// Number returns the number primitive for f.
func Number(f float64) Primitive {
	return Primitive{Type: PNumber, Text: strconv.FormatFloat(f, 'g', -1, 64)}
}

// String returns the string primitive for s.
func String(s string) Primitive {
	return Primitive{Type: PString, Text: s}
}

// Object is an abstract object: named slots in insertion order plus an
// optional wildcard slot written through computed keys.
type Object struct {
	props *sequencedmap.Map[string, *Reference]
	any   *Reference
}

func (*Object) Kind() ValueKind { return VObject }

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{props: sequencedmap.New[string, *Reference]()}
}

// Keys returns the named slots in insertion order.
func (o *Object) Keys() []string {
	keys := make([]string, 0, o.props.Len())
	for k := range o.props.Keys() {
		keys = append(keys, k)
	}
	return keys
}

// Slot returns the named slot, if any.
func (o *Object) Slot(name string) (*Reference, bool) {
	return o.props.Get(name)
}

// Wildcard returns the wildcard slot, or nil when nothing was written to it.
func (o *Object) Wildcard() *Reference {
	return o.any
}

// get projects k onto o: a concrete key yields its slot plus the wildcard
// slot, the wildcard yields every slot.
func (o *Object) get(k Key, out *Reference) {
	if k.Any {
		for _, ref := range o.props.All() {
			out.Set(ref)
		}
	} else if ref, ok := o.props.Get(k.Name); ok {
		out.Set(ref)
	}
	if o.any != nil {
		out.Set(o.any)
	}
}

// set replaces the slot for k with a Reference holding the old and new
// possibilities.
func (o *Object) set(k Key, v Value) {
	if k.Any {
		next := NewReference(o.any, v)
		o.any = next
		return
	}
	old, _ := o.props.Get(k.Name)
	o.props.Set(k.Name, NewReference(old, v))
}

// Array is an abstract array. Positions are not tracked: every element lives
// in a single element store. Writes to named keys other than length land in
// the same store.
type Array struct {
	elems *Reference
	named bool // a named key was written
}

func (*Array) Kind() ValueKind { return VArray }

// NewArray returns an array whose element store holds elements.
func NewArray(elements ...Value) *Array {
	return &Array{elems: NewReference(elements...)}
}

// Elements returns the element store.
func (a *Array) Elements() *Reference {
	return a.elems
}

func (a *Array) get(k Key, out *Reference) {
	if k.IsIndex() {
		out.Set(a.elems)
		return
	}
	if k.Name == "length" {
		out.Set(AnyPrimitive)
		return
	}
	b, ok := arrayMethods[k.Name]
	if ok {
		out.Set(b)
	}
	if !ok || a.named {
		out.Set(a.elems)
	}
}

func (a *Array) set(k Key, v Value) {
	if k.Name == "length" && !k.Any {
		return
	}
	if !k.IsIndex() {
		a.named = true
	}
	a.elems.Set(v)
}

// Function is a closure: the literal that created it, the scope stack
// visible at that point and the program the literal belongs to.
type Function struct {
	Node    ast.Node // *ast.FunctionLiteral or *ast.ArrowFunctionLiteral
	Name    string
	Params  *ast.ParameterList
	Scope   *Stack
	Program *nomut.Program

	// Accessor is get or set for object literal accessors, empty otherwise.
	Accessor ast.PropertyKind
}

func (*Function) Kind() ValueKind { return VFunction }

// HasRest reports whether the function declares a rest parameter.
func (f *Function) HasRest() bool {
	return f.Params != nil && f.Params.Rest != nil
}

func (f *Function) displayName() string {
	if f.Name == "" {
		return "<anonymous>"
	}
	return f.Name
}

// Intrinsic tags the global constructors the analyzer models specially.
type Intrinsic uint8

const (
	IntrinsicObject Intrinsic = iota + 1
	IntrinsicArray
	IntrinsicEval
	IntrinsicFunction
)

func (Intrinsic) Kind() ValueKind { return VIntrinsic }

func (i Intrinsic) String() string {
	switch i {
	case IntrinsicObject:
		return "Object"
	case IntrinsicArray:
		return "Array"
	case IntrinsicEval:
		return "eval"
	case IntrinsicFunction:
		return "Function"
	default:
		return "intrinsic"
	}
}

var intrinsicsByName = map[string]Intrinsic{
	"Object":   IntrinsicObject,
	"Array":    IntrinsicArray,
	"eval":     IntrinsicEval,
	"Function": IntrinsicFunction,
}

func (i Intrinsic) get(k Key, out *Reference) {
	if k.Any {
		return
	}
	var table map[string]Builtin
	switch i {
	case IntrinsicObject:
		table = objectStatics
	case IntrinsicArray:
		table = arrayStatics
	default:
		return
	}
	if b, ok := table[k.Name]; ok {
		out.Set(b)
	}
}
