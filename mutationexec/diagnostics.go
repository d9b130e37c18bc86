package mutationexec

import (
	"sort"
)

// dedupeDiagnostics drops every diagnostic whose range overlaps or contains,
// or lies within, the range of one kept before it. The kept diagnostics are
// returned ordered by position.
func dedupeDiagnostics(diags []Diagnostic) []Diagnostic {
	kept := make([]Diagnostic, 0, len(diags))
	for _, d := range diags {
		if !conflictsWithAny(d, kept) {
			kept = append(kept, d)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Start != kept[j].Start {
			return kept[i].Start < kept[j].Start
		}
		return kept[i].End < kept[j].End
	})
	return kept
}

func conflictsWithAny(d Diagnostic, kept []Diagnostic) bool {
	span := d.Span()
	for _, k := range kept {
		other := k.Span()
		if span.Overlaps(other) || span.Contains(other) || other.Contains(span) {
			return true
		}
	}
	return false
}
