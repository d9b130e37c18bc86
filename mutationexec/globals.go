package mutationexec

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
)

var jsonNumberType = reflect.TypeOf(json.Number(""))

// globalsBuilder converts host data (maps, slices, scalars) into abstract
// values and records the provenance of every container it creates. The same
// host container always converts to the same abstract container, so shared
// and cyclic structure is preserved.
type globalsBuilder struct {
	prov *Provenance
	seen map[identity]Value
}

type identity struct {
	typ reflect.Type
	ptr uintptr
	len int
}

func newGlobalsBuilder(prov *Provenance) *globalsBuilder {
	return &globalsBuilder{
		prov: prov,
		seen: make(map[identity]Value),
	}
}

// validateGlobals checks that globals is a non-nil map-like object.
func validateGlobals(globals any) error {
	if globals == nil {
		return fmt.Errorf("%w: Expect globalSchema to be an object but received null", ErrInvalidGlobals)
	}
	v := reflect.ValueOf(globals)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return fmt.Errorf("%w: Expect globalSchema to be an object but received null", ErrInvalidGlobals)
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Map:
		if v.IsNil() {
			return fmt.Errorf("%w: Expect globalSchema to be an object but received null", ErrInvalidGlobals)
		}
		if v.Type().Key().Kind() != reflect.String {
			return fmt.Errorf("%w: Expect globalSchema to be an object but received map keyed by %s", ErrInvalidGlobals, v.Type().Key())
		}
		return nil
	case reflect.Slice, reflect.Array:
		return fmt.Errorf("%w: Expect globalSchema to be an object but received array %v", ErrInvalidGlobals, globals)
	default:
		return fmt.Errorf("%w: Expect globalSchema to be an object but received %v", ErrInvalidGlobals, globals)
	}
}

// frame converts the top-level globals into the outermost scope frame, one
// binding per key. The root itself has no path and is not recorded.
func (b *globalsBuilder) frame(globals any) *Frame {
	f := newFrame(nil)
	v := indirect(reflect.ValueOf(globals))
	for _, k := range sortedKeys(v) {
		name := k.String()
		f.Define(name, NewReference(b.convert(v.MapIndex(k), Path{{Key: name}})))
	}
	return f
}

// convert turns one host value into an abstract value at path.
func (b *globalsBuilder) convert(v reflect.Value, path Path) Value {
	v = indirect(v)
	if !v.IsValid() {
		return Null
	}

	if v.Type() == jsonNumberType {
		// YAML and JSON decoders that keep number literals hand them over as
		// strings.
		f, err := json.Number(v.String()).Float64()
		if err != nil {
			return AnyPrimitive
		}
		return Number(f)
	}

	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return AnyPrimitive
		}
		id, cacheable := identityOf(v)
		if cacheable {
			if known, ok := b.seen[id]; ok {
				return known
			}
		}
		obj := NewObject()
		if cacheable {
			b.seen[id] = obj
		}
		b.prov.record(obj, path)
		for _, k := range sortedKeys(v) {
			name := k.String()
			obj.set(PropKey(name), b.convert(v.MapIndex(k), path.Child(PathSegment{Key: name})))
		}
		return obj

	case reflect.Slice, reflect.Array:
		id, cacheable := identityOf(v)
		if cacheable {
			if known, ok := b.seen[id]; ok {
				return known
			}
		}
		arr := NewArray()
		if cacheable {
			b.seen[id] = arr
		}
		b.prov.record(arr, path)
		elemPath := path.Child(PathSegment{Any: true})
		for i := 0; i < v.Len(); i++ {
			arr.elems.Set(b.convert(v.Index(i), elemPath))
		}
		return arr

	case reflect.String:
		return String(v.String())
	case reflect.Bool:
		return Bool(v.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Number(float64(v.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Number(float64(v.Uint()))
	case reflect.Float32, reflect.Float64:
		return Number(v.Float())
	default:
		return AnyPrimitive
	}
}

func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

// identityOf returns the host identity of a map or slice. Empty and nil
// containers share backing storage in the runtime and are never cached.
func identityOf(v reflect.Value) (identity, bool) {
	switch v.Kind() {
	case reflect.Map:
		if v.IsNil() {
			return identity{}, false
		}
		return identity{typ: v.Type(), ptr: v.Pointer()}, true
	case reflect.Slice:
		if v.IsNil() || v.Len() == 0 {
			return identity{}, false
		}
		return identity{typ: v.Type(), ptr: v.Pointer(), len: v.Len()}, true
	default:
		return identity{}, false
	}
}

func sortedKeys(v reflect.Value) []reflect.Value {
	if !v.IsValid() || v.Kind() != reflect.Map {
		return nil
	}
	keys := v.MapKeys()
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}
