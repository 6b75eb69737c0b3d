package exhaustive

import (
	"fmt"
	"sort"

	"corec/internal/diag"
	"corec/internal/hir"
	"corec/internal/source"
	"corec/internal/types"
)

// CheckMatch runs spec.md §4.5's full exhaustiveness pass over one match
// expression: Or-pattern binding-name consistency, arm reachability, and
// missing-pattern exhaustiveness. It returns the recovered missing
// witnesses (one rendered string per missing row) so a caller — MIR
// lowering's decision-tree builder, per spec.md's lowering note — can
// reuse the exact set of uncovered shapes instead of re-deriving them.
func CheckMatch(ctx *types.Context, m *hir.Module, strings *source.Interner, bag *diag.Bag, scrutineeTy types.TyId, arms []hir.MatchArm, matchSpan source.Span) []string {
	checkOrBindings(m, strings, bag, arms)

	for _, i := range UnreachableArms(ctx, m, strings, scrutineeTy, arms) {
		sp := m.Pat(arms[i].Pattern).Span
		bag.Add(diagPtrC(diag.New(diag.SevWarning, diag.PatUnreachableArm, sp,
			"unreachable pattern: already covered by a preceding arm")))
	}

	rows := coveringMatrix(m, arms)
	missing := MissingRows(ctx, m, strings, rows, []types.TyId{scrutineeTy})
	if len(missing) == 0 {
		return nil
	}

	rendered := make([]string, len(missing))
	for i, row := range missing {
		rendered[i] = Render(m, strings, row[0])
	}
	bag.Add(diagPtrC(diag.NewError(diag.PatNonExhaustive, matchSpan,
		fmt.Sprintf("non-exhaustive match: missing %s", joinWitnesses(rendered)))))
	return rendered
}

// coveringMatrix builds the Or-expanded matrix used for the missing-pattern
// search. Guarded arms (`pat if cond => ...`) are excluded: a guard can fail
// at runtime, so its pattern cannot be assumed to cover the value space the
// way an unconditional arm does. This mirrors how Rust's own exhaustiveness
// checker treats match guards.
func coveringMatrix(m *hir.Module, arms []hir.MatchArm) Matrix {
	var rows Matrix
	for _, arm := range arms {
		if arm.Guard.IsValid() {
			continue
		}
		rows = append(rows, NewRow(m, arm.Pattern))
	}
	return ExpandOrRows(m, rows)
}

func joinWitnesses(rendered []string) string {
	out := rendered[0]
	for _, r := range rendered[1:] {
		out += ", " + r
	}
	return out
}

// checkOrBindings reports diag.PatOrBindingMismatch for every Or-pattern
// whose alternatives don't all bind the same set of names (spec.md §4.5:
// `Some(x) | None(x)` is fine, `Some(x) | None` is not, since `x` would be
// unbound on one branch).
func checkOrBindings(m *hir.Module, strings *source.Interner, bag *diag.Bag, arms []hir.MatchArm) {
	for _, arm := range arms {
		walkOrBindings(m, strings, bag, arm.Pattern)
	}
}

func walkOrBindings(m *hir.Module, strings *source.Interner, bag *diag.Bag, id hir.PatId) {
	if !id.IsValid() {
		return
	}
	p := m.Pat(id)
	if p == nil {
		return
	}
	switch p.Kind {
	case hir.PatBinding:
		walkOrBindings(m, strings, bag, p.Sub)
	case hir.PatTuple:
		for _, e := range p.Elements {
			walkOrBindings(m, strings, bag, e)
		}
	case hir.PatStruct:
		for _, f := range p.Fields {
			walkOrBindings(m, strings, bag, f.Pattern)
		}
	case hir.PatEnumVariant:
		for _, s := range p.SubPats {
			walkOrBindings(m, strings, bag, s)
		}
	case hir.PatOr:
		var want []string
		for i, alt := range p.Alternatives {
			walkOrBindings(m, strings, bag, alt)
			got := sortedBindingNames(m, strings, alt)
			if i == 0 {
				want = got
				continue
			}
			if !sameNames(want, got) {
				bag.Add(diagPtrC(diag.NewError(diag.PatOrBindingMismatch, p.Span,
					"or-pattern alternatives must bind the same set of names")))
				return
			}
		}
	}
}

func sortedBindingNames(m *hir.Module, strings *source.Interner, id hir.PatId) []string {
	set := map[string]bool{}
	collectBindingNames(m, strings, id, set)
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func collectBindingNames(m *hir.Module, strings *source.Interner, id hir.PatId, out map[string]bool) {
	if !id.IsValid() {
		return
	}
	p := m.Pat(id)
	if p == nil {
		return
	}
	switch p.Kind {
	case hir.PatBinding:
		if s, ok := strings.Lookup(p.Name); ok && s != "_" {
			out[s] = true
		}
		collectBindingNames(m, strings, p.Sub, out)
	case hir.PatTuple:
		for _, e := range p.Elements {
			collectBindingNames(m, strings, e, out)
		}
	case hir.PatStruct:
		for _, f := range p.Fields {
			collectBindingNames(m, strings, f.Pattern, out)
		}
	case hir.PatEnumVariant:
		for _, s := range p.SubPats {
			collectBindingNames(m, strings, s, out)
		}
	case hir.PatOr:
		for _, alt := range p.Alternatives {
			collectBindingNames(m, strings, alt, out)
		}
	}
}

func sameNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func diagPtrC(d diag.Diagnostic) *diag.Diagnostic {
	return &d
}
