package mutationexec

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestReference_Set(t *testing.T) {
	obj := NewObject()
	inner := NewReference(Number(1), obj)
	r := NewReference(Number(1), inner, nil, Null)

	if r.Len() != 3 {
		t.Fatalf("Expected 3 possibilities, got %d: %v", r.Len(), r)
	}
	if !r.Contains(obj) || !r.Contains(Null) || !r.Contains(Number(1)) {
		t.Errorf("Missing possibilities in %v", r)
	}
	r.Set(r)
	if r.Len() != 3 {
		t.Errorf("Self union changed the reference: %v", r)
	}

	var nilRef *Reference
	if !nilRef.IsEmpty() || nilRef.Len() != 0 || nilRef.Contains(Null) {
		t.Error("Expected nil reference to behave as empty")
	}
}

func TestReference_GetKey(t *testing.T) {
	leaf := NewObject()
	obj := NewObject()
	obj.set(PropKey("a"), leaf)
	obj.set(PropKey("b"), Number(2))
	arr := NewArray(Number(1), obj)

	tests := []struct {
		name string
		ref  *Reference
		key  Key
		want string
	}{
		{"named slot", NewReference(obj), PropKey("a"), "({})"},
		{"missing slot", NewReference(obj), PropKey("z"), "()"},
		{"wildcard over object", NewReference(obj), AnyKey, `(2|{})`},
		{"array index", NewReference(arr), PropKey("0"), `(1|{"a":({}),"b":(2)})`},
		{"array length", NewReference(arr), PropKey("length"), "(*)"},
		{"array method", NewReference(arr), PropKey("push"), "(&Array.prototype.push)"},
		{"array named key", NewReference(arr), PropKey("extra"), `(1|{"a":({}),"b":(2)})`},
		{"object static", NewReference(IntrinsicObject), PropKey("assign"), "(&Object.assign)"},
		{"dynamic static", NewReference(IntrinsicObject), AnyKey, "()"},
		{"primitive", NewReference(String("s")), PropKey("length"), "()"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ref.GetKey(tt.key).String(); got != tt.want {
				t.Errorf("GetKey(%v) = %s, want %s", tt.key, got, tt.want)
			}
		})
	}
}

func TestReference_SetKey(t *testing.T) {
	obj := NewObject()
	r := NewReference(obj, Number(1))
	r.SetKey(PropKey("a"), Number(1))
	r.SetKey(PropKey("a"), Number(2))
	r.SetKey(AnyKey, Null)

	if got := r.GetKey(PropKey("a")).String(); got != "(1|2|null)" {
		t.Errorf("Expected a to keep both writes and the wildcard, got %s", got)
	}
	if diff := cmp.Diff([]string{"a"}, obj.Keys()); diff != "" {
		t.Errorf("Keys mismatch (-want +got):\n%s", diff)
	}

	arr := NewArray()
	NewReference(arr).SetKey(PropKey("length"), Number(0))
	if !arr.Elements().IsEmpty() {
		t.Errorf("Expected length write to be ignored, got %v", arr.Elements())
	}

	NewReference(arr).SetKey(PropKey("extra"), String("x"))
	if got := arr.Elements().String(); got != `("x")` {
		t.Errorf("Expected named write in the element store, got %s", got)
	}
	if got := NewReference(arr).GetKey(PropKey("push")).String(); got != `("x"|&Array.prototype.push)` {
		t.Errorf("Expected method read to see named writes, got %s", got)
	}
}

func TestReference_Equal(t *testing.T) {
	a := NewReference(NewArray(Number(1), Number(2)), Number(3))
	b := NewReference(Number(3), NewArray(Number(2), Number(1)))
	if !a.Equal(b) {
		t.Errorf("Expected %v to equal %v", a, b)
	}
	if a.Equal(NewReference(NewArray(Number(1)))) {
		t.Error("Expected different shapes to differ")
	}
	if Fingerprint(a) != Fingerprint(b) {
		t.Error("Expected equal fingerprints")
	}
}

func TestReference_StringCycle(t *testing.T) {
	obj := NewObject()
	obj.set(PropKey("self"), obj)
	if got := NewReference(obj).String(); got != `({"self":(#0)})` {
		t.Errorf("Unexpected rendering %s", got)
	}
}

func TestReference_Containers(t *testing.T) {
	obj, arr := NewObject(), NewArray()
	r := NewReference(Number(1), obj, Undefined, arr, IntrinsicArray)
	got := r.Containers()
	if len(got) != 2 || got[0] != Value(obj) || got[1] != Value(arr) {
		t.Errorf("Expected [object array], got %v", got)
	}
}
