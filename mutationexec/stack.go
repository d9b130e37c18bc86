package mutationexec

import (
	"sort"

	"github.com/dop251/goja/ast"
)

// Frame is one lexical scope: the node that owns it (nil for the globals
// and program frames) and its bindings.
type Frame struct {
	Owner    ast.Node
	bindings map[string]*Reference
}

// newFrame creates an empty frame owned by owner.
func newFrame(owner ast.Node) *Frame {
	return &Frame{
		Owner:    owner,
		bindings: make(map[string]*Reference),
	}
}

// Lookup returns the binding for name in this frame only.
func (f *Frame) Lookup(name string) (*Reference, bool) {
	ref, ok := f.bindings[name]
	return ref, ok
}

// Define binds name to ref, replacing any previous binding in this frame.
func (f *Frame) Define(name string, ref *Reference) {
	f.bindings[name] = ref
}

// Names returns the bound names in sorted order.
func (f *Frame) Names() []string {
	names := make([]string, 0, len(f.bindings))
	for name := range f.bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Stack is an immutable chain of frames, innermost first. Pushing returns a
// new Stack sharing the outer frames, so closures can keep the Stack they
// were created under while evaluation continues.
type Stack struct {
	frame  *Frame
	parent *Stack
}

// newStack returns a stack holding only the globals frame.
func newStack(globals *Frame) *Stack {
	return &Stack{frame: globals}
}

// Push returns a stack with f as the innermost frame.
func (s *Stack) Push(f *Frame) *Stack {
	return &Stack{frame: f, parent: s}
}

// Pop returns the enclosing stack. The globals frame is never removed.
// Panics on underflow.
func (s *Stack) Pop() *Stack {
	if s == nil || s.parent == nil {
		panic("scope stack underflow")
	}
	return s.parent
}

// Top returns the innermost frame.
func (s *Stack) Top() *Frame {
	if s == nil {
		panic("scope stack underflow")
	}
	return s.frame
}

// Globals returns the outermost frame.
func (s *Stack) Globals() *Frame {
	for s.parent != nil {
		s = s.parent
	}
	return s.frame
}

// programFrame returns the frame directly above the globals frame, or the
// globals frame if there is none.
func (s *Stack) programFrame() *Frame {
	for s.parent != nil && s.parent.parent != nil {
		s = s.parent
	}
	return s.frame
}

// Depth returns the number of frames.
func (s *Stack) Depth() int {
	n := 0
	for ; s != nil; s = s.parent {
		n++
	}
	return n
}

// Lookup resolves name from the innermost frame outwards; the first match
// wins.
func (s *Stack) Lookup(name string) (*Reference, bool) {
	if f := s.owner(name); f != nil {
		return f.bindings[name], true
	}
	return nil, false
}

// owner returns the innermost frame binding name.
func (s *Stack) owner(name string) *Frame {
	for ; s != nil; s = s.parent {
		if _, ok := s.frame.bindings[name]; ok {
			return s.frame
		}
	}
	return nil
}

// frames returns the frames innermost first.
func (s *Stack) frames() []*Frame {
	var out []*Frame
	for ; s != nil; s = s.parent {
		out = append(out, s.frame)
	}
	return out
}
