package mutationexec

import (
	"regexp"
	"strconv"
	"strings"
)

// PathSegment is one step from the globals root: a property name, or the
// wildcard standing for any element or property.
type PathSegment struct {
	Key string
	Any bool
}

// Path locates a value inside the globals graph.
type Path []PathSegment

var identSegment = regexp.MustCompile(`^\w+$`)

// String renders the path the way it would be written in source:
// `a.b`, `a["x y"]`, `a[*]`. The leading dot is stripped.
func (p Path) String() string {
	var b strings.Builder
	for _, seg := range p {
		switch {
		case seg.Any:
			b.WriteString("[*]")
		case identSegment.MatchString(seg.Key):
			b.WriteByte('.')
			b.WriteString(seg.Key)
		default:
			b.WriteByte('[')
			b.WriteString(strconv.Quote(seg.Key))
			b.WriteByte(']')
		}
	}
	return strings.TrimPrefix(b.String(), ".")
}

// Keys returns the raw segment keys, with "*" for the wildcard.
func (p Path) Keys() []string {
	keys := make([]string, len(p))
	for i, seg := range p {
		if seg.Any {
			keys[i] = "*"
		} else {
			keys[i] = seg.Key
		}
	}
	return keys
}

// Child returns a new path extended by seg. p is not modified.
func (p Path) Child(seg PathSegment) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, seg)
}

func segmentForKey(k Key) PathSegment {
	if k.Any {
		return PathSegment{Any: true}
	}
	return PathSegment{Key: k.Name}
}

// Provenance maps container identity to the first path under which the
// container was discovered in the globals graph.
type Provenance struct {
	paths map[Value]Path
}

func newProvenance() *Provenance {
	return &Provenance{paths: make(map[Value]Path)}
}

// Lookup returns the global path of v.
func (p *Provenance) Lookup(v Value) (Path, bool) {
	if p == nil {
		return nil, false
	}
	path, ok := p.paths[v]
	return path, ok
}

// LookupAny returns the path of the first possibility of r that is global.
func (p *Provenance) LookupAny(r *Reference) (Path, bool) {
	for _, v := range r.Get() {
		if path, ok := p.Lookup(v); ok {
			return path, true
		}
	}
	return nil, false
}

// Len returns the number of recorded containers.
func (p *Provenance) Len() int {
	return len(p.paths)
}

// record stores path for v unless v is already known. It reports whether
// the entry was new.
func (p *Provenance) record(v Value, path Path) bool {
	if _, ok := p.paths[v]; ok {
		return false
	}
	p.paths[v] = path
	return true
}
