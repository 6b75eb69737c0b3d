package exhaustive

import (
	"corec/internal/hir"
	"corec/internal/source"
	"corec/internal/types"
)

// Useful implements spec.md §4.5's Usefulness(M, v): whether a pattern
// vector v can match something rows doesn't already cover. For a
// wildcard-headed v this is exactly "check the default matrix" (the
// shortcut spec.md calls out by name); for a concrete head, only that
// single constructor's branch needs checking, since a concrete head
// cannot match any other constructor.
func Useful(ctx *types.Context, m *hir.Module, strings *source.Interner, rows Matrix, v Row, colTys []types.TyId) bool {
	if len(v) == 0 {
		return len(rows) == 0
	}
	head := v[0]
	if isWildcard(head) {
		return Useful(ctx, m, strings, Default(rows), v[1:], colTys[1:])
	}
	c, ok := headConstructor(head)
	if !ok {
		return Useful(ctx, m, strings, Default(rows), v[1:], colTys[1:])
	}
	sub := Specialize(m, rows, c)
	subTys := append(append([]types.TyId{}, FieldTypes(ctx, m, strings, colTys[0], c)...), colTys[1:]...)
	vSub := append(append(Row{}, subCells(m, head, c)...), v[1:]...)
	return Useful(ctx, m, strings, sub, vSub, subTys)
}

// UnreachableArms returns the indices of arms whose pattern can never
// match given every earlier arm: arm i is checked against the matrix
// built from arms[0:i], expanding any top-level Or in both the matrix and
// the candidate row first.
func UnreachableArms(ctx *types.Context, m *hir.Module, strings *source.Interner, scrutineeTy types.TyId, arms []hir.MatchArm) []int {
	var unreachable []int
	var seen Matrix
	for i, arm := range arms {
		candidateRows := ExpandOrRows(m, Matrix{NewRow(m, arm.Pattern)})
		anyUseful := false
		for _, v := range candidateRows {
			if Useful(ctx, m, strings, seen, v, []types.TyId{scrutineeTy}) {
				anyUseful = true
				break
			}
		}
		if !anyUseful {
			unreachable = append(unreachable, i)
		}
		seen = append(seen, candidateRows...)
	}
	return unreachable
}
