package mutationexec

// Builtin identifies a native method the analyzer models. Values are reached
// through GetKey on arrays and on the Object and Array intrinsics, never by
// matching names at the call site.
type Builtin uint8

const (
	builtinInvalid Builtin = iota

	// Array.prototype, mutating the receiver
	ArrayPush
	ArrayPop
	ArrayShift
	ArrayUnshift
	ArraySplice
	ArraySort
	ArrayReverse
	ArrayFill
	ArrayCopyWithin

	// Array.prototype, taking a callback
	ArrayMap
	ArrayFilter
	ArrayForEach
	ArrayFind
	ArrayFindIndex
	ArrayFindLast
	ArrayFindLastIndex
	ArrayEvery
	ArraySome
	ArrayFlatMap
	ArrayReduce
	ArrayReduceRight

	// Array.prototype, copying or reading
	ArraySlice
	ArrayConcat
	ArrayFlat
	ArrayToSorted
	ArrayToReversed
	ArrayToSpliced
	ArrayWith
	ArrayAt
	ArrayIndexOf
	ArrayLastIndexOf
	ArrayIncludes
	ArrayJoin
	ArrayEntries
	ArrayKeys
	ArrayValues
	ArrayToString
	ArrayToLocaleString

	// Array statics
	ArrayIsArray
	ArrayOf
	ArrayFrom

	// Object statics, mutating their first argument
	ObjectAssign
	ObjectDefineProperty
	ObjectDefineProperties
	ObjectFreeze
	ObjectSeal
	ObjectPreventExtensions
	ObjectSetPrototypeOf

	// Object statics, reading
	ObjectKeys
	ObjectGetOwnPropertyNames
	ObjectGetOwnPropertySymbols
	ObjectValues
	ObjectEntries
	ObjectFromEntries
	ObjectGroupBy
	ObjectGetOwnPropertyDescriptor
	ObjectGetOwnPropertyDescriptors
	ObjectCreate
	ObjectHasOwn
	ObjectIs
	ObjectIsExtensible
	ObjectIsFrozen
	ObjectIsSealed
	ObjectGetPrototypeOf

	builtinCount
)

func (Builtin) Kind() ValueKind { return VBuiltin }

func (b Builtin) String() string {
	if b <= builtinInvalid || b >= builtinCount {
		return "builtin"
	}
	d := builtinDefs[b]
	switch d.owner {
	case IntrinsicObject:
		return "Object." + d.name
	case IntrinsicArray:
		return "Array." + d.name
	default:
		return "Array.prototype." + d.name
	}
}

// Mutating reports whether b modifies its receiver or target argument.
func (b Builtin) Mutating() bool {
	return b > builtinInvalid && b < builtinCount && builtinDefs[b].mutating
}

// TakesCallback reports whether b invokes a function argument.
func (b Builtin) TakesCallback() bool {
	return b > builtinInvalid && b < builtinCount && builtinDefs[b].callback
}

// builtinFunc models one built-in: it checks what the call could mutate and
// returns what it may return.
type builtinFunc func(env *analysisEnv, c *callSite) (*Reference, error)

type builtinDef struct {
	name     string
	owner    Intrinsic // zero for Array.prototype methods
	mutating bool
	callback bool
	fn       builtinFunc
}

var (
	// builtinDefs is indexed by Builtin.
	builtinDefs [builtinCount]builtinDef

	arrayMethods  = make(map[string]Builtin)
	objectStatics = make(map[string]Builtin)
	arrayStatics  = make(map[string]Builtin)
)

// The tables reference the models, which call back into the evaluator, so
// they are filled at init time.
func init() {
	register := func(b Builtin, d builtinDef) {
		builtinDefs[b] = d
		switch d.owner {
		case IntrinsicObject:
			objectStatics[d.name] = b
		case IntrinsicArray:
			arrayStatics[d.name] = b
		default:
			arrayMethods[d.name] = b
		}
	}

	mutating := func(b Builtin, name string, fn builtinFunc) {
		register(b, builtinDef{name: name, mutating: true, fn: fn})
	}
	mutating(ArrayPush, "push", builtinArrayInsert)
	mutating(ArrayUnshift, "unshift", builtinArrayInsert)
	mutating(ArrayPop, "pop", builtinArrayRemove)
	mutating(ArrayShift, "shift", builtinArrayRemove)
	mutating(ArraySplice, "splice", builtinArraySplice)
	mutating(ArraySort, "sort", builtinArraySort)
	mutating(ArrayReverse, "reverse", builtinArrayInPlace)
	mutating(ArrayFill, "fill", builtinArrayFill)
	mutating(ArrayCopyWithin, "copyWithin", builtinArrayInPlace)

	callback := func(b Builtin, name string, fn builtinFunc) {
		register(b, builtinDef{name: name, callback: true, fn: fn})
	}
	callback(ArrayMap, "map", builtinArrayMap)
	callback(ArrayFilter, "filter", builtinArrayFilter)
	callback(ArrayForEach, "forEach", builtinArrayForEach)
	callback(ArrayFind, "find", builtinArrayFind)
	callback(ArrayFindLast, "findLast", builtinArrayFind)
	callback(ArrayFindIndex, "findIndex", builtinArrayFindIndex)
	callback(ArrayFindLastIndex, "findLastIndex", builtinArrayFindIndex)
	callback(ArrayEvery, "every", builtinArrayPredicate)
	callback(ArraySome, "some", builtinArrayPredicate)
	callback(ArrayFlatMap, "flatMap", builtinArrayFlatMap)
	callback(ArrayReduce, "reduce", builtinArrayReduce)
	callback(ArrayReduceRight, "reduceRight", builtinArrayReduce)

	method := func(b Builtin, name string, fn builtinFunc) {
		register(b, builtinDef{name: name, fn: fn})
	}
	method(ArraySlice, "slice", builtinArrayCopy)
	method(ArrayToReversed, "toReversed", builtinArrayCopy)
	method(ArrayValues, "values", builtinArrayCopy)
	method(ArrayConcat, "concat", builtinArrayConcat)
	method(ArrayFlat, "flat", builtinArrayFlat)
	method(ArrayToSorted, "toSorted", builtinArrayToSorted)
	method(ArrayToSpliced, "toSpliced", builtinArrayToSpliced)
	method(ArrayWith, "with", builtinArrayWith)
	method(ArrayAt, "at", builtinArrayAt)
	method(ArrayIndexOf, "indexOf", builtinPrimitive)
	method(ArrayLastIndexOf, "lastIndexOf", builtinPrimitive)
	method(ArrayJoin, "join", builtinPrimitive)
	method(ArrayToString, "toString", builtinPrimitive)
	method(ArrayToLocaleString, "toLocaleString", builtinPrimitive)
	method(ArrayIncludes, "includes", builtinBoolean)
	method(ArrayEntries, "entries", builtinArrayEntries)
	method(ArrayKeys, "keys", builtinIndexArray)

	register(ArrayIsArray, builtinDef{name: "isArray", owner: IntrinsicArray, fn: builtinBoolean})
	register(ArrayOf, builtinDef{name: "of", owner: IntrinsicArray, fn: builtinArrayOf})
	register(ArrayFrom, builtinDef{name: "from", owner: IntrinsicArray, callback: true, fn: builtinArrayFrom})

	registerObjectStatics(register)
}

// callBuiltin dispatches a call to the model of b.
func (env *analysisEnv) callBuiltin(b Builtin, c *callSite) (*Reference, error) {
	if b <= builtinInvalid || b >= builtinCount || builtinDefs[b].fn == nil {
		env.addWarning("built-in %s at %s is not modeled", b, env.prog.Span(c.node))
		return NewReference(), nil
	}
	env.logger.With(map[string]any{
		"builtin": b.String(),
		"args":    len(c.args),
	}).Debugf("Calling built-in")
	return builtinDefs[b].fn(env, c)
}

// callback invokes every function possibility of fn with args. Diagnostics
// raised inside are reported within the callback.
func (env *analysisEnv) callback(c *callSite, fn *Reference, args ...*Reference) (*Reference, error) {
	return env.invokeAll(fn, &callSite{node: c.node, args: args})
}

// arraysOf returns the array possibilities of r.
func arraysOf(r *Reference) *Reference {
	out := NewReference()
	for _, p := range r.Get() {
		if a, ok := p.(*Array); ok {
			out.Set(a)
		}
	}
	return out
}

// elementsOf returns the elements of every array possibility of r.
func elementsOf(r *Reference) *Reference {
	out := NewReference()
	for _, p := range r.Get() {
		if a, ok := p.(*Array); ok {
			out.Set(a.elems)
		}
	}
	return out
}

// arrayMutation reports a mutating method called on a global array and
// returns the receiver's arrays.
func (env *analysisEnv) arrayMutation(c *callSite) *Reference {
	arrays := arraysOf(c.receiver)
	env.checkGlobal(arrays, c.node, msgArrayMutation)
	return arrays
}

// elementCallback calls the first argument with (element, index, array) and
// returns the element and callback results.
func (env *analysisEnv) elementCallback(c *callSite) (elements, results *Reference, err error) {
	arrays := arraysOf(c.receiver)
	elements = arrays.GetKey(AnyKey)
	if len(c.args) == 0 {
		return elements, NewReference(), nil
	}
	results, err = env.callback(c, c.args[0], elements, NewReference(AnyPrimitive), arrays)
	return elements, results, err
}

func builtinArrayInsert(env *analysisEnv, c *callSite) (*Reference, error) {
	arrays := env.arrayMutation(c)
	for _, a := range c.args {
		arrays.SetKey(AnyKey, a)
	}
	return NewReference(AnyPrimitive), nil
}

func builtinArrayRemove(env *analysisEnv, c *callSite) (*Reference, error) {
	arrays := env.arrayMutation(c)
	return NewReference(arrays.GetKey(AnyKey), Undefined), nil
}

// builtinArraySplice inserts the arguments from index 2 and returns the
// removed elements.
func builtinArraySplice(env *analysisEnv, c *callSite) (*Reference, error) {
	arrays := env.arrayMutation(c)
	removed := NewArray(arrays.GetKey(AnyKey))
	for i := 2; i < len(c.args); i++ {
		arrays.SetKey(AnyKey, c.args[i])
	}
	return NewReference(removed), nil
}

func builtinArraySort(env *analysisEnv, c *callSite) (*Reference, error) {
	arrays := env.arrayMutation(c)
	if len(c.args) > 0 {
		elements := arrays.GetKey(AnyKey)
		if _, err := env.callback(c, c.args[0], elements, elements); err != nil {
			return nil, err
		}
	}
	return arrays, nil
}

func builtinArrayInPlace(env *analysisEnv, c *callSite) (*Reference, error) {
	return env.arrayMutation(c), nil
}

func builtinArrayFill(env *analysisEnv, c *callSite) (*Reference, error) {
	arrays := env.arrayMutation(c)
	arrays.SetKey(AnyKey, c.arg(0))
	return arrays, nil
}

func builtinArrayMap(env *analysisEnv, c *callSite) (*Reference, error) {
	_, results, err := env.elementCallback(c)
	if err != nil {
		return nil, err
	}
	return NewReference(NewArray(results)), nil
}

func builtinArrayFlatMap(env *analysisEnv, c *callSite) (*Reference, error) {
	_, results, err := env.elementCallback(c)
	if err != nil {
		return nil, err
	}
	return NewReference(NewArray(results, elementsOf(results))), nil
}

func builtinArrayFilter(env *analysisEnv, c *callSite) (*Reference, error) {
	elements, _, err := env.elementCallback(c)
	if err != nil {
		return nil, err
	}
	return NewReference(NewArray(elements)), nil
}

func builtinArrayForEach(env *analysisEnv, c *callSite) (*Reference, error) {
	if _, _, err := env.elementCallback(c); err != nil {
		return nil, err
	}
	return NewReference(), nil
}

func builtinArrayFind(env *analysisEnv, c *callSite) (*Reference, error) {
	elements, _, err := env.elementCallback(c)
	if err != nil {
		return nil, err
	}
	return elements, nil
}

func builtinArrayFindIndex(env *analysisEnv, c *callSite) (*Reference, error) {
	if _, _, err := env.elementCallback(c); err != nil {
		return nil, err
	}
	return NewReference(Undefined, AnyPrimitive), nil
}

func builtinArrayPredicate(env *analysisEnv, c *callSite) (*Reference, error) {
	if _, _, err := env.elementCallback(c); err != nil {
		return nil, err
	}
	return NewReference(True, False), nil
}

// builtinArrayReduce seeds the accumulator with the elements and the initial
// value and calls the reducer once with (acc, element, index, array).
func builtinArrayReduce(env *analysisEnv, c *callSite) (*Reference, error) {
	arrays := arraysOf(c.receiver)
	elements := arrays.GetKey(AnyKey)
	acc := NewReference(elements)
	if len(c.args) > 1 {
		acc.Set(c.args[1])
	}
	if len(c.args) == 0 {
		return acc, nil
	}
	results, err := env.callback(c, c.args[0], acc, elements, NewReference(AnyPrimitive), arrays)
	if err != nil {
		return nil, err
	}
	return NewReference(results, acc), nil
}

func builtinArrayCopy(env *analysisEnv, c *callSite) (*Reference, error) {
	return NewReference(NewArray(arraysOf(c.receiver).GetKey(AnyKey))), nil
}

// builtinArrayConcat spreads array arguments and appends anything else.
func builtinArrayConcat(env *analysisEnv, c *callSite) (*Reference, error) {
	out := NewArray(arraysOf(c.receiver).GetKey(AnyKey))
	for _, a := range c.args {
		for _, p := range a.Get() {
			if arr, ok := p.(*Array); ok {
				out.elems.Set(arr.elems)
				continue
			}
			out.elems.Set(p)
		}
	}
	return NewReference(out), nil
}

// builtinArrayFlat flattens every nesting level reachable from the receiver.
func builtinArrayFlat(env *analysisEnv, c *callSite) (*Reference, error) {
	out := NewArray()
	seen := make(map[*Array]bool)
	queue := arraysOf(c.receiver).Get()
	for len(queue) > 0 {
		arr := queue[0].(*Array)
		queue = queue[1:]
		if seen[arr] {
			continue
		}
		seen[arr] = true
		out.elems.Set(arr.elems)
		queue = append(queue, arraysOf(arr.elems).Get()...)
	}
	return NewReference(out), nil
}

func builtinArrayToSorted(env *analysisEnv, c *callSite) (*Reference, error) {
	elements := arraysOf(c.receiver).GetKey(AnyKey)
	if len(c.args) > 0 {
		if _, err := env.callback(c, c.args[0], elements, elements); err != nil {
			return nil, err
		}
	}
	return NewReference(NewArray(elements)), nil
}

func builtinArrayToSpliced(env *analysisEnv, c *callSite) (*Reference, error) {
	out := NewArray(arraysOf(c.receiver).GetKey(AnyKey))
	for i := 2; i < len(c.args); i++ {
		out.elems.Set(c.args[i])
	}
	return NewReference(out), nil
}

func builtinArrayWith(env *analysisEnv, c *callSite) (*Reference, error) {
	out := NewArray(arraysOf(c.receiver).GetKey(AnyKey))
	if len(c.args) > 1 {
		out.elems.Set(c.args[1])
	}
	return NewReference(out), nil
}

func builtinArrayAt(env *analysisEnv, c *callSite) (*Reference, error) {
	return NewReference(arraysOf(c.receiver).GetKey(AnyKey), Undefined), nil
}

func builtinArrayEntries(env *analysisEnv, c *callSite) (*Reference, error) {
	entry := NewArray(AnyPrimitive, arraysOf(c.receiver).GetKey(AnyKey))
	return NewReference(NewArray(entry)), nil
}

func builtinIndexArray(env *analysisEnv, c *callSite) (*Reference, error) {
	return NewReference(NewArray(AnyPrimitive)), nil
}

func builtinPrimitive(env *analysisEnv, c *callSite) (*Reference, error) {
	return NewReference(AnyPrimitive), nil
}

func builtinBoolean(env *analysisEnv, c *callSite) (*Reference, error) {
	return NewReference(True, False), nil
}

func builtinArrayOf(env *analysisEnv, c *callSite) (*Reference, error) {
	out := NewArray()
	for _, a := range c.args {
		out.elems.Set(a)
	}
	return NewReference(out), nil
}

// builtinArrayFrom copies the source's elements, or the mapper's results
// when a mapper is passed.
func builtinArrayFrom(env *analysisEnv, c *callSite) (*Reference, error) {
	elements := c.arg(0).GetKey(AnyKey)
	if len(c.args) < 2 {
		return NewReference(NewArray(elements)), nil
	}
	results, err := env.callback(c, c.args[1], elements, NewReference(AnyPrimitive))
	if err != nil {
		return nil, err
	}
	return NewReference(NewArray(results)), nil
}
