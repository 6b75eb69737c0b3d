package mono

import "corec/internal/types"

// substType rewrites ty by replacing every KindGenericParam(i) with
// args[i], rebuilding whatever compound type wraps it (Ref/Array/Named/
// Function/Tuple) through the interner so the result is itself a stable,
// structurally-deduped TyId. Anything with no generic parameter underneath
// (a primitive, an already-concrete Named type, an unbound Var) is returned
// unchanged. Grounded on the teacher's subst_type.go Type() walk, minus its
// ownership/ABI bookkeeping (spec.md's type system carries none).
func substType(tys *types.Interner, ty types.TyId, args []types.TyId) types.TyId {
	if !ty.IsValid() || len(args) == 0 {
		return ty
	}
	t, ok := tys.Lookup(ty)
	if !ok {
		return ty
	}
	switch t.Kind {
	case types.KindGenericParam:
		if int(t.Param) < len(args) && args[t.Param].IsValid() {
			return args[t.Param]
		}
		return ty

	case types.KindRef:
		elem := substType(tys, t.Elem, args)
		if elem == t.Elem {
			return ty
		}
		return tys.Intern(types.MakeRef(t.Mut, elem))

	case types.KindArray:
		elem := substType(tys, t.Elem, args)
		if elem == t.Elem {
			return ty
		}
		return tys.Intern(types.MakeArray(elem))

	case types.KindNamed:
		def, nargs, ok := tys.NamedInfo(ty)
		if !ok || len(nargs) == 0 {
			return ty
		}
		newArgs := substTypeSlice(tys, nargs, args)
		return tys.RegisterNamed(def, newArgs)

	case types.KindFunction:
		params, ret, ok := tys.FunctionInfo(ty)
		if !ok {
			return ty
		}
		newParams := substTypeSlice(tys, params, args)
		newRet := substType(tys, ret, args)
		return tys.RegisterFunction(newParams, newRet)

	case types.KindTuple:
		elems, ok := tys.TupleInfo(ty)
		if !ok {
			return ty
		}
		return tys.RegisterTuple(substTypeSlice(tys, elems, args))

	default:
		return ty
	}
}

func substTypeSlice(tys *types.Interner, elems []types.TyId, args []types.TyId) []types.TyId {
	out := make([]types.TyId, len(elems))
	for i, e := range elems {
		out[i] = substType(tys, e, args)
	}
	return out
}
