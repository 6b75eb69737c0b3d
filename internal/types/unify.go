package types

import (
	"corec/internal/diag"
	"corec/internal/source"
)

// Unify implements spec.md §4.3's unify(a, b): follows substitutions on
// both sides, binds an unbound Var (after an occurs check), requires exact
// DefId equality for Named types (nominal, not structural), recurses
// structurally through Function/Tuple/Ref, and lets Error unify with
// anything silently. Reports TypMismatch/TypOccursCheck into ctx.Bag and
// returns false on failure; callers set the offending node's inferred type
// to ctx.Types.Builtins().Error rather than aborting the pass.
func Unify(ctx *Context, a, b TyId, span source.Span) bool {
	a = ctx.Resolve(a)
	b = ctx.Resolve(b)
	if a == b {
		return true
	}

	ta, okA := ctx.Types.Lookup(a)
	tb, okB := ctx.Types.Lookup(b)
	if !okA || !okB {
		return false
	}

	if ta.Kind == KindError || tb.Kind == KindError {
		return true
	}

	if ta.Kind == KindVar {
		return bindVar(ctx, ta.Var, b, span)
	}
	if tb.Kind == KindVar {
		return bindVar(ctx, tb.Var, a, span)
	}

	if ta.Kind != tb.Kind {
		return mismatch(ctx, a, b, span)
	}

	switch ta.Kind {
	case KindInt, KindFloat:
		// Unsuffixed-literal polymorphism (SPEC_FULL.md §4.3): WidthAny on
		// either side unifies with any concrete width, narrowing to the
		// concrete one. A width mismatch between two *concrete* widths is a
		// real type error.
		if ta.Width == WidthAny || tb.Width == WidthAny {
			return true
		}
		if ta.Width != tb.Width {
			return mismatch(ctx, a, b, span)
		}
		return true

	case KindBool, KindString, KindUnit, KindNever:
		return true // same discriminant, no payload to compare

	case KindNamed:
		defA, argsA, _ := ctx.Types.NamedInfo(a)
		defB, argsB, _ := ctx.Types.NamedInfo(b)
		if defA != defB {
			return mismatch(ctx, a, b, span)
		}
		if len(argsA) != len(argsB) {
			return mismatch(ctx, a, b, span)
		}
		ok := true
		for i := range argsA {
			if !Unify(ctx, argsA[i], argsB[i], span) {
				ok = false
			}
		}
		return ok

	case KindFunction:
		pa, ra, _ := ctx.Types.FunctionInfo(a)
		pb, rb, _ := ctx.Types.FunctionInfo(b)
		if len(pa) != len(pb) {
			return mismatch(ctx, a, b, span)
		}
		ok := Unify(ctx, ra, rb, span)
		for i := range pa {
			if !Unify(ctx, pa[i], pb[i], span) {
				ok = false
			}
		}
		return ok

	case KindTuple:
		ea, _ := ctx.Types.TupleInfo(a)
		eb, _ := ctx.Types.TupleInfo(b)
		if len(ea) != len(eb) {
			return mismatch(ctx, a, b, span)
		}
		ok := true
		for i := range ea {
			if !Unify(ctx, ea[i], eb[i], span) {
				ok = false
			}
		}
		return ok

	case KindRef:
		if ta.Mut != tb.Mut {
			return mismatch(ctx, a, b, span)
		}
		return Unify(ctx, ta.Elem, tb.Elem, span)

	case KindArray:
		return Unify(ctx, ta.Elem, tb.Elem, span)

	case KindGenericParam:
		if ta.Param != tb.Param {
			return mismatch(ctx, a, b, span)
		}
		return true

	default:
		return mismatch(ctx, a, b, span)
	}
}

func bindVar(ctx *Context, v TyVarId, t TyId, span source.Span) bool {
	if resolved, ok := ctx.IsBound(v); ok {
		return Unify(ctx, resolved, t, span)
	}
	if occurs(ctx, v, t) {
		ctx.Bag.Add(diagPtr(diag.NewError(diag.TypOccursCheck, span,
			"recursive type detected during unification")))
		return false
	}
	ctx.Bind(v, t)
	return true
}

// occurs recursively searches t (and whatever it resolves to) for v.
func occurs(ctx *Context, v TyVarId, t TyId) bool {
	t = ctx.Resolve(t)
	ty, ok := ctx.Types.Lookup(t)
	if !ok {
		return false
	}
	switch ty.Kind {
	case KindVar:
		return ty.Var == v
	case KindRef, KindArray:
		return occurs(ctx, v, ty.Elem)
	case KindNamed:
		_, args, _ := ctx.Types.NamedInfo(t)
		for _, arg := range args {
			if occurs(ctx, v, arg) {
				return true
			}
		}
		return false
	case KindFunction:
		params, ret, _ := ctx.Types.FunctionInfo(t)
		if occurs(ctx, v, ret) {
			return true
		}
		for _, p := range params {
			if occurs(ctx, v, p) {
				return true
			}
		}
		return false
	case KindTuple:
		elems, _ := ctx.Types.TupleInfo(t)
		for _, e := range elems {
			if occurs(ctx, v, e) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func mismatch(ctx *Context, a, b TyId, span source.Span) bool {
	ctx.Bag.Add(diagPtr(diag.NewError(diag.TypMismatch, span,
		"type mismatch: expected "+describe(ctx.Types, a)+", found "+describe(ctx.Types, b))))
	return false
}

// describe renders a TyId as a short human-readable string for diagnostics.
func describe(in *Interner, id TyId) string {
	t, ok := in.Lookup(id)
	if !ok {
		return "<unknown>"
	}
	switch t.Kind {
	case KindInt:
		if t.Width == WidthAny {
			return "integer"
		}
		return "i" + t.Width.String()
	case KindFloat:
		if t.Width == WidthAny {
			return "float"
		}
		return "f" + t.Width.String()
	case KindRef:
		if t.Mut {
			return "&mut " + describe(in, t.Elem)
		}
		return "&" + describe(in, t.Elem)
	case KindTuple:
		return "tuple"
	case KindArray:
		return "[" + describe(in, t.Elem) + "]"
	case KindFunction:
		return "function"
	case KindNamed:
		return "named type"
	case KindGenericParam:
		return "generic parameter"
	case KindVar:
		return "<unresolved>"
	default:
		return t.Kind.String()
	}
}

func diagPtr(d diag.Diagnostic) *diag.Diagnostic { return &d }
