package types

import (
	"slices"

	"corec/internal/hir"
)

// namedInfo is the side table for KindNamed types: a struct/enum DefId plus
// its instantiation's type arguments. Two Named types are the same TyId iff
// Def and Args match exactly — this is what makes unification nominal
// rather than structural (spec.md §4.3: "two structurally identical types
// with distinct DefIds do not unify").
type namedInfo struct {
	Def  hir.DefId
	Args []TyId
}

// RegisterNamed interns (or reuses) the Named type for def instantiated with
// args. Grounded on the teacher's RegisterStructInstance/FindStructInstance
// split (internal/types/{nominal.go,find.go}): a linear scan of already-
// registered instantiations, since this pass runs once per compilation and
// never at runtime.
func (in *Interner) RegisterNamed(def hir.DefId, args []TyId) TyId {
	if existing, ok := in.FindNamed(def, args); ok {
		return existing
	}
	slot := uint32(len(in.named))
	in.named = append(in.named, namedInfo{Def: def, Args: slices.Clone(args)})
	return in.internRaw(Ty{Kind: KindNamed, Payload: slot})
}

// FindNamed returns the TyId of the Named(def, args) instantiation, if one
// was already registered.
func (in *Interner) FindNamed(def hir.DefId, args []TyId) (TyId, bool) {
	for id := 1; id <= len(in.tys); id++ {
		t := in.tys[id-1]
		if t.Kind != KindNamed || int(t.Payload) >= len(in.named) {
			continue
		}
		info := in.named[t.Payload]
		if info.Def == def && slices.Equal(info.Args, args) {
			return TyId(id), true
		}
	}
	return NoTyId, false
}

// NamedInfo returns the Def/Args pair behind a Named TyId.
func (in *Interner) NamedInfo(id TyId) (hir.DefId, []TyId, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindNamed || int(t.Payload) >= len(in.named) {
		return hir.NoDefId, nil, false
	}
	info := in.named[t.Payload]
	return info.Def, info.Args, true
}
