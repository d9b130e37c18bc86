package mutationexec

// Reference is the may-set of values an expression could evaluate to. It is
// always flat: adding a Reference adds its possibilities. References only
// grow.
type Reference struct {
	possibilities []Value
	index         map[Value]struct{}
}

func (*Reference) Kind() ValueKind { return vReference }

// NewReference returns a Reference holding vs, flattening nested References
// and skipping nils.
func NewReference(vs ...Value) *Reference {
	r := &Reference{}
	for _, v := range vs {
		r.Set(v)
	}
	return r
}

// Get returns the possibilities in insertion order. The slice must not be
// modified.
func (r *Reference) Get() []Value {
	if r == nil {
		return nil
	}
	return r.possibilities
}

// Len returns the number of possibilities.
func (r *Reference) Len() int {
	if r == nil {
		return 0
	}
	return len(r.possibilities)
}

// IsEmpty reports whether r holds no possibility.
func (r *Reference) IsEmpty() bool {
	return r.Len() == 0
}

// Contains reports whether v is one of r's possibilities.
func (r *Reference) Contains(v Value) bool {
	if r == nil || r.index == nil {
		return false
	}
	_, ok := r.index[v]
	return ok
}

// Set unions v into r.
func (r *Reference) Set(v Value) {
	switch v := v.(type) {
	case nil:
		return
	case *Reference:
		if v == nil || v == r {
			return
		}
		// Iterate over a snapshot; v may alias a store that grows below us.
		for _, p := range append([]Value(nil), v.possibilities...) {
			r.add(p)
		}
	default:
		r.add(v)
	}
}

func (r *Reference) add(v Value) {
	if r.index == nil {
		r.index = make(map[Value]struct{})
	}
	if _, ok := r.index[v]; ok {
		return
	}
	r.index[v] = struct{}{}
	r.possibilities = append(r.possibilities, v)
}

// GetKey projects k over every possibility:
//   - arrays yield every element for index and wildcard keys, and the
//     built-in method for method names;
//   - objects yield the named slot and the wildcard slot, or every slot for
//     the wildcard key;
//   - the Object and Array intrinsics yield their static built-ins.
//
// Primitives, functions and built-ins contribute nothing.
func (r *Reference) GetKey(k Key) *Reference {
	out := NewReference()
	for _, p := range r.Get() {
		switch p := p.(type) {
		case *Object:
			p.get(k, out)
		case *Array:
			p.get(k, out)
		case Intrinsic:
			p.get(k, out)
		}
	}
	return out
}

// SetKey writes v at k on every container possibility, keeping whatever was
// there before.
func (r *Reference) SetKey(k Key, v Value) {
	for _, p := range r.Get() {
		switch p := p.(type) {
		case *Object:
			p.set(k, v)
		case *Array:
			p.set(k, v)
		}
	}
}

// Containers returns the object and array possibilities.
func (r *Reference) Containers() []Value {
	var out []Value
	for _, p := range r.Get() {
		switch p.(type) {
		case *Object, *Array:
			out = append(out, p)
		}
	}
	return out
}
