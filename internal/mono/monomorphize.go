package mono

import (
	"corec/internal/hir"
	"corec/internal/types"
)

// Monomorphizer owns the instantiation cache for one compilation: every
// (generic def, type-argument list) pair lowers to exactly one cloned,
// fully-substituted function definition, reused across every call site
// that names the same instantiation. Its Monomorphize method has exactly
// the shape internal/mirlower.Monomorphize expects, so it plugs directly
// into LowerModule.
type Monomorphizer struct {
	m     *hir.Module
	ctx   *types.Context
	cache map[instKey]hir.DefId
}

// New creates a Monomorphizer over the module/context a type-checked
// compilation produced. Instantiated functions it creates are appended to
// m.Items; LowerModule keeps walking m.Items until no new item appears, so
// it lowers them like any other top-level function.
func New(m *hir.Module, ctx *types.Context) *Monomorphizer {
	return &Monomorphizer{
		m:     m,
		ctx:   ctx,
		cache: make(map[instKey]hir.DefId),
	}
}

// Monomorphize resolves def (a possibly-generic function) plus typeArgs (the
// concrete types its type parameters are instantiated with at this call
// site) to a concrete DefId with no remaining generic parameters. A call
// with no type arguments returns def unchanged — it was never generic, or
// inference produced nothing to substitute.
//
// Recursive generic functions are handled by reserving the new DefId (and
// recording it in the cache) before the body is cloned. The clone's
// self-call still names the generic def; when internal/mirlower lowers it
// with the same type arguments, the cache returns the reservation instead
// of instantiating the same instance again.
func (mm *Monomorphizer) Monomorphize(def hir.DefId, typeArgs []types.TyId) hir.DefId {
	if mm == nil || len(typeArgs) == 0 {
		return def
	}
	key := keyFor(def, typeArgs)
	if id, ok := mm.cache[key]; ok {
		return id
	}

	d := mm.m.Def(def)
	if d == nil || d.Function == nil || len(d.Function.TypeParams) == 0 {
		// Not a generic function after all (or unresolved): nothing to
		// instantiate, fall back to the definition as written.
		mm.cache[key] = def
		return def
	}
	fn := d.Function

	newDef := mm.m.NewDef(hir.Definition{Kind: hir.DefFunction, Span: d.Span, Function: &hir.Function{
		Name: fn.Name,
		Span: fn.Span,
		ABI:  fn.ABI,
	}})
	mm.cache[key] = newDef
	mm.m.Items = append(mm.m.Items, newDef)

	c := newCloner(mm.m, mm.ctx, typeArgs)
	newParams := make([]hir.Param, len(fn.Params))
	for i, p := range fn.Params {
		newParams[i] = hir.Param{Name: p.Name, Type: p.Type, Span: p.Span, Def: c.cloneLocal(p.Def)}
	}
	newBody := c.cloneExpr(fn.Body)

	newFn := mm.m.Def(newDef).Function
	newFn.Params = newParams
	newFn.Body = newBody
	newFn.Receiver = fn.Receiver

	mm.ctx.FuncReturn[newDef] = substType(mm.ctx.Types, mm.ctx.FuncReturn[def], typeArgs)

	return newDef
}
