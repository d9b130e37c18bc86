package mutationexec

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"sort"
	"strconv"
)

// canonCtx holds state for a single canonicalization traversal.
type canonCtx struct {
	inProgress map[Value]int // Cycle detection: container → cycle ID
	nextID     int           // Next cycle ID to assign
	depth      int           // Current recursion depth
	maxDepth   int           // Maximum recursion depth guard
}

func newCanonCtx(maxDepth int) *canonCtx {
	return &canonCtx{
		inProgress: make(map[Value]int),
		maxDepth:   maxDepth,
	}
}

const defaultCanonDepth = 1000

// canonicalize produces a deterministic byte encoding of a Reference.
// Structurally equal references encode identically; containers already on
// the current path encode as a back-reference so cycles terminate.
func canonicalize(r *Reference, ctx *canonCtx) []byte {
	var buf bytes.Buffer
	writeReference(&buf, r, ctx)
	return buf.Bytes()
}

func writeReference(buf *bytes.Buffer, r *Reference, ctx *canonCtx) {
	parts := make([]string, 0, r.Len())
	seen := make(map[string]struct{}, r.Len())
	for _, p := range r.Get() {
		var b bytes.Buffer
		writeValue(&b, p, ctx)
		s := b.String()
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		parts = append(parts, s)
	}
	// Possibility order is not part of identity
	sort.Strings(parts)

	buf.WriteByte('(')
	for i, s := range parts {
		if i > 0 {
			buf.WriteByte('|')
		}
		buf.WriteString(s)
	}
	buf.WriteByte(')')
}

func writeValue(buf *bytes.Buffer, v Value, ctx *canonCtx) {
	if ctx.depth >= ctx.maxDepth {
		buf.WriteString("…")
		return
	}
	ctx.depth++
	defer func() { ctx.depth-- }()

	switch v := v.(type) {
	case Primitive:
		buf.WriteString(v.String())
	case Intrinsic:
		buf.WriteString("%" + v.String())
	case Builtin:
		buf.WriteString("&" + v.String())
	case *Function:
		buf.WriteString("fn")
		if v.Name != "" {
			buf.WriteString(" " + v.Name)
		}
		if v.Program != nil && v.Node != nil {
			buf.WriteString("@" + v.Program.Span(v.Node).String())
		}
	case *Object:
		if id, ok := ctx.inProgress[v]; ok {
			fmt.Fprintf(buf, "#%d", id)
			return
		}
		ctx.inProgress[v] = ctx.nextID
		ctx.nextID++
		defer delete(ctx.inProgress, v)

		keys := v.Keys()
		sort.Strings(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(strconv.Quote(k))
			buf.WriteByte(':')
			slot, _ := v.Slot(k)
			writeReference(buf, slot, ctx)
		}
		if v.any != nil {
			if len(keys) > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString("*:")
			writeReference(buf, v.any, ctx)
		}
		buf.WriteByte('}')
	case *Array:
		if id, ok := ctx.inProgress[v]; ok {
			fmt.Fprintf(buf, "#%d", id)
			return
		}
		ctx.inProgress[v] = ctx.nextID
		ctx.nextID++
		defer delete(ctx.inProgress, v)

		buf.WriteByte('[')
		writeReference(buf, v.elems, ctx)
		buf.WriteByte(']')
		if v.named {
			buf.WriteByte('+')
		}
	default:
		buf.WriteString("?")
	}
}

// Fingerprint returns a deterministic hex digest of r's structure.
func Fingerprint(r *Reference) string {
	data := canonicalize(r, newCanonCtx(defaultCanonDepth))
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%x", sum[:])
}

// Equal reports whether r and o hold structurally equal possibility sets.
// Containers compare by shape, not identity.
func (r *Reference) Equal(o *Reference) bool {
	if r == o {
		return true
	}
	return Fingerprint(r) == Fingerprint(o)
}

// String renders r canonically, e.g. `([(1|2)]|{"a":(null)})`.
func (r *Reference) String() string {
	return string(canonicalize(r, newCanonCtx(defaultCanonDepth)))
}
