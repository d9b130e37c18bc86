package mutationexec

func registerObjectStatics(register func(Builtin, builtinDef)) {
	static := func(b Builtin, name string, mutating bool, fn builtinFunc) {
		register(b, builtinDef{name: name, owner: IntrinsicObject, mutating: mutating, fn: fn})
	}

	static(ObjectAssign, "assign", true, builtinObjectAssign)
	static(ObjectDefineProperty, "defineProperty", true, builtinObjectDefineProperty)
	static(ObjectDefineProperties, "defineProperties", true, builtinObjectDefineProperties)
	static(ObjectFreeze, "freeze", true, builtinObjectTarget)
	static(ObjectSeal, "seal", true, builtinObjectTarget)
	static(ObjectPreventExtensions, "preventExtensions", true, builtinObjectTarget)
	static(ObjectSetPrototypeOf, "setPrototypeOf", true, builtinObjectTarget)

	static(ObjectKeys, "keys", false, builtinIndexArray)
	static(ObjectGetOwnPropertyNames, "getOwnPropertyNames", false, builtinIndexArray)
	static(ObjectGetOwnPropertySymbols, "getOwnPropertySymbols", false, builtinIndexArray)
	static(ObjectValues, "values", false, builtinObjectValues)
	static(ObjectEntries, "entries", false, builtinObjectEntries)
	static(ObjectFromEntries, "fromEntries", false, builtinObjectFromEntries)
	static(ObjectGetOwnPropertyDescriptor, "getOwnPropertyDescriptor", false, builtinObjectDescriptor)
	static(ObjectGetOwnPropertyDescriptors, "getOwnPropertyDescriptors", false, builtinObjectDescriptors)
	static(ObjectCreate, "create", false, builtinObjectCreate)
	static(ObjectHasOwn, "hasOwn", false, builtinBoolean)
	static(ObjectIs, "is", false, builtinBoolean)
	static(ObjectIsExtensible, "isExtensible", false, builtinBoolean)
	static(ObjectIsFrozen, "isFrozen", false, builtinBoolean)
	static(ObjectIsSealed, "isSealed", false, builtinBoolean)
	static(ObjectGetPrototypeOf, "getPrototypeOf", false, builtinObjectGetPrototypeOf)

	register(ObjectGroupBy, builtinDef{name: "groupBy", owner: IntrinsicObject, callback: true, fn: builtinObjectGroupBy})
}

// objectMutation reports a mutating Object static called on a global value
// and returns the target. A spread first argument already holds its
// elements.
func (env *analysisEnv) objectMutation(c *callSite) *Reference {
	target := c.arg(0)
	env.checkGlobal(target, c.node, msgObjectMutation)
	return target
}

func builtinObjectTarget(env *analysisEnv, c *callSite) (*Reference, error) {
	return env.objectMutation(c), nil
}

// builtinObjectAssign folds the properties of every source into the
// target's wildcard slot.
func builtinObjectAssign(env *analysisEnv, c *callSite) (*Reference, error) {
	target := env.objectMutation(c)
	for i := 1; i < len(c.args); i++ {
		target.SetKey(AnyKey, c.args[i].GetKey(AnyKey))
	}
	return target, nil
}

func builtinObjectDefineProperty(env *analysisEnv, c *callSite) (*Reference, error) {
	target := env.objectMutation(c)
	target.SetKey(AnyKey, c.arg(2).GetKey(PropKey("value")))
	return target, nil
}

func builtinObjectDefineProperties(env *analysisEnv, c *callSite) (*Reference, error) {
	target := env.objectMutation(c)
	target.SetKey(AnyKey, c.arg(1).GetKey(AnyKey).GetKey(PropKey("value")))
	return target, nil
}

func builtinObjectGetPrototypeOf(env *analysisEnv, c *callSite) (*Reference, error) {
	env.report(c.node, msgPrototype, nil)
	return NewReference(), nil
}

func builtinObjectValues(env *analysisEnv, c *callSite) (*Reference, error) {
	return NewReference(NewArray(c.arg(0).GetKey(AnyKey))), nil
}

func builtinObjectEntries(env *analysisEnv, c *callSite) (*Reference, error) {
	entry := NewArray(AnyPrimitive, c.arg(0).GetKey(AnyKey))
	return NewReference(NewArray(entry)), nil
}

// builtinObjectFromEntries reads the entries' elements, keys included, into
// the wildcard slot.
func builtinObjectFromEntries(env *analysisEnv, c *callSite) (*Reference, error) {
	out := NewObject()
	out.any = c.arg(0).GetKey(AnyKey).GetKey(AnyKey)
	return NewReference(out), nil
}

func builtinObjectGroupBy(env *analysisEnv, c *callSite) (*Reference, error) {
	items := c.arg(0).GetKey(AnyKey)
	if len(c.args) > 1 {
		if _, err := env.callback(c, c.args[1], items, NewReference(AnyPrimitive)); err != nil {
			return nil, err
		}
	}
	out := NewObject()
	out.any = NewReference(NewArray(items))
	return NewReference(out), nil
}

func descriptor(value *Reference) *Object {
	d := NewObject()
	d.set(PropKey("value"), value)
	return d
}

func builtinObjectDescriptor(env *analysisEnv, c *callSite) (*Reference, error) {
	return NewReference(Undefined, descriptor(c.arg(0).GetKey(AnyKey))), nil
}

func builtinObjectDescriptors(env *analysisEnv, c *callSite) (*Reference, error) {
	out := NewObject()
	out.any = NewReference(descriptor(c.arg(0).GetKey(AnyKey)))
	return NewReference(out), nil
}

// builtinObjectCreate returns a fresh object whose reads may reach the
// prototype's properties and the given descriptors' values.
func builtinObjectCreate(env *analysisEnv, c *callSite) (*Reference, error) {
	out := NewObject()
	inherited := c.arg(0).GetKey(AnyKey)
	if len(c.args) > 1 {
		inherited.Set(c.args[1].GetKey(AnyKey).GetKey(PropKey("value")))
	}
	out.any = inherited
	return NewReference(out), nil
}
