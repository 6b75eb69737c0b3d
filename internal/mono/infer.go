package mono

import (
	"corec/internal/hir"
	"corec/internal/types"
)

// InferTypeArgs recovers a generic call site's type arguments from its
// actual argument types, by structurally matching each parameter's
// declared (possibly generic) type against the corresponding argExprTypes
// entry and reading off what every KindGenericParam position resolved to.
// Returns a slice of length len(fn.TypeParams); a parameter this matching
// never touches stays types.NoTyId.
//
// This is a deliberately partial stand-in for full bidirectional inference
// over call sites (spec.md's unification already solves the harder version
// of this problem for expression types in general; re-deriving type
// arguments from a generic function's already-inferred parameter types is
// the one corner that inference's ExprTypes table doesn't hand back
// directly). It only recovers an argument that appears as, or inside, a
// parameter's own declared type — an argument a generic parameter
// constrains solely through its return type, with no occurrence in any
// parameter, is not recovered and that slot stays NoTyId.
func InferTypeArgs(ctx *types.Context, fn *hir.Function, argExprTypes []types.TyId) []types.TyId {
	if fn == nil || len(fn.TypeParams) == 0 {
		return nil
	}
	out := make([]types.TyId, len(fn.TypeParams))
	for i, p := range fn.Params {
		if i >= len(argExprTypes) {
			break
		}
		declared := ctx.LocalTypes[p.Def]
		matchGenericParam(ctx.Types, declared, argExprTypes[i], out)
	}
	return out
}

// matchGenericParam walks declared and actual in lockstep, recording
// actual's subtree at every KindGenericParam position found in declared.
func matchGenericParam(tys *types.Interner, declared, actual types.TyId, out []types.TyId) {
	if !declared.IsValid() || !actual.IsValid() {
		return
	}
	dt, ok := tys.Lookup(declared)
	if !ok {
		return
	}
	if dt.Kind == types.KindGenericParam {
		if int(dt.Param) < len(out) && !out[dt.Param].IsValid() {
			out[dt.Param] = actual
		}
		return
	}
	at, ok := tys.Lookup(actual)
	if !ok || dt.Kind != at.Kind {
		return
	}
	switch dt.Kind {
	case types.KindRef, types.KindArray:
		matchGenericParam(tys, dt.Elem, at.Elem, out)
	case types.KindNamed:
		_, dargs, ok1 := tys.NamedInfo(declared)
		_, aargs, ok2 := tys.NamedInfo(actual)
		if ok1 && ok2 && len(dargs) == len(aargs) {
			for i := range dargs {
				matchGenericParam(tys, dargs[i], aargs[i], out)
			}
		}
	case types.KindFunction:
		dparams, dret, ok1 := tys.FunctionInfo(declared)
		aparams, aret, ok2 := tys.FunctionInfo(actual)
		if ok1 && ok2 && len(dparams) == len(aparams) {
			for i := range dparams {
				matchGenericParam(tys, dparams[i], aparams[i], out)
			}
			matchGenericParam(tys, dret, aret, out)
		}
	case types.KindTuple:
		delems, ok1 := tys.TupleInfo(declared)
		aelems, ok2 := tys.TupleInfo(actual)
		if ok1 && ok2 && len(delems) == len(aelems) {
			for i := range delems {
				matchGenericParam(tys, delems[i], aelems[i], out)
			}
		}
	}
}
