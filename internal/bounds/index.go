// Package bounds implements spec.md §4.4's Bound Checker: an impl index and
// the trait-bound/supertrait/where-clause checks that consume it.
//
// Grounded on the teacher's internal/sema/contract_bounds.go ("contract" is
// the teacher's name for what spec.md calls a trait): the same idea of an
// impl/requirement lookup keyed by a type parameter's bounds, rebuilt here
// around an explicit impls-by-self-type index instead of the teacher's
// symbol-table walk, since internal/hir has no symbols package of its own.
package bounds

import (
	"corec/internal/hir"
	"corec/internal/types"
)

// Index is impls: DefId(type) -> []ImplBlock from spec.md §4.4 item 1,
// keyed by the implementing type's nominal DefId (the struct/enum Def the
// impl's SelfType names).
type Index struct {
	module *hir.Module
	byType map[hir.DefId][]hir.DefId
}

// Build scans every DefImpl item reachable from the module's top-level
// items (including those nested in a DefModule) and groups them by the
// nominal DefId their SelfType resolves to.
func Build(m *hir.Module) *Index {
	idx := &Index{module: m, byType: make(map[hir.DefId][]hir.DefId)}
	for _, id := range m.Items {
		idx.visit(id)
	}
	return idx
}

func (idx *Index) visit(id hir.DefId) {
	d := idx.module.Def(id)
	if d == nil {
		return
	}
	switch d.Kind {
	case hir.DefImpl:
		if self, ok := idx.selfTypeDef(d.Impl.SelfType); ok {
			idx.byType[self] = append(idx.byType[self], id)
		}
	case hir.DefModule:
		for _, member := range d.Module.Members {
			idx.visit(member)
		}
	}
}

// selfTypeDef resolves an impl's declared SelfType node to the nominal
// DefId it names, if it names one at all (a blanket impl over a bare
// generic parameter has none, and is not indexed).
func (idx *Index) selfTypeDef(id hir.TypeId) (hir.DefId, bool) {
	n := idx.module.Type(id)
	if n == nil || n.Kind != hir.TypeNamed || !n.Def.IsValid() {
		return hir.NoDefId, false
	}
	return n.Def, true
}

// Impls returns every impl block targeting self, in source order.
func (idx *Index) Impls(self hir.DefId) []hir.DefId {
	return idx.byType[self]
}

// CheckBound implements spec.md §4.4 item 2: reports whether some impl of
// self targets trait with an arity-compatible set of generic args (see
// implArgsCompatible below: arity, not full identity, is checked).
func CheckBound(idx *Index, self hir.DefId, trait hir.DefId, args []types.TyId) bool {
	for _, implID := range idx.Impls(self) {
		d := idx.module.Def(implID)
		if d == nil || d.Impl == nil || d.Impl.Trait != trait {
			continue
		}
		if implArgsCompatible(idx, d.Impl, args) {
			return true
		}
	}
	return false
}

// implArgsCompatible checks arity between the requested bound's generic
// args and the impl's own SelfType generic-argument list. The args
// themselves are not compared position-wise against a concrete
// substitution. CheckCallSite (checker.go) calls CheckBound with no args,
// so at a call site only an impl whose SelfType carries no generic args
// is accepted. An impl targeting the right trait with the right arity is
// accepted as a candidate.
func implArgsCompatible(idx *Index, impl *hir.Impl, args []types.TyId) bool {
	selfNode := idx.module.Type(impl.SelfType)
	if selfNode == nil {
		return len(args) == 0
	}
	return len(selfNode.GenericArgs) == len(args)
}
