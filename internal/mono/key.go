// Package mono monomorphizes generic functions: given a generic DefId and a
// concrete list of type arguments, it produces (and caches) the DefId of a
// fresh, fully-substituted clone of that function's HIR body, ready for
// internal/mirlower to lower like any other non-generic function. Grounded
// on the teacher's internal/mono package, split the same way: a
// substitution step over types (subst_type.go, here), a structural clone of
// the HIR tree with substituted types threaded through (clone.go), and a
// cache keyed by (def, normalized type args) so a given instantiation is
// only ever lowered once (monomorphize.go) — the teacher's
// InstantiationMap/InstantiationKey idea, simplified to this core's single
// TyId-keyed substitution instead of the teacher's SymbolID/BoundInfo setup.
package mono

import (
	"strconv"
	"strings"

	"corec/internal/hir"
	"corec/internal/types"
)

// instKey identifies one (generic def, type-argument list) instantiation.
// Go maps can't key on a slice directly, so the argument list is folded
// into a stable string the same way the teacher's typeArgsKey does.
type instKey struct {
	def  hir.DefId
	args string
}

func typeArgsKey(args []types.TyId) string {
	if len(args) == 0 {
		return ""
	}
	var b strings.Builder
	for i, a := range args {
		if i > 0 {
			b.WriteByte('#')
		}
		b.WriteString(strconv.FormatUint(uint64(a), 10))
	}
	return b.String()
}

func keyFor(def hir.DefId, args []types.TyId) instKey {
	return instKey{def: def, args: typeArgsKey(args)}
}
