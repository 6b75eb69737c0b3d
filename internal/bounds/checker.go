package bounds

import (
	"fmt"

	"corec/internal/diag"
	"corec/internal/hir"
	"corec/internal/source"
	"corec/internal/types"
)

// Checker runs spec.md §4.4's impl-well-formedness and call-site bound
// checks against an already-built Index. Grounded on the teacher's
// requirementsForBound/typeParamSatisfiesBound pair in
// internal/sema/contract_bounds.go, generalized from the teacher's
// symbol-table lookup to this module's impl index.
type Checker struct {
	module  *Index
	m       *hir.Module
	strings *source.Interner
	bag     *diag.Bag
}

func NewChecker(idx *Index, m *hir.Module, strings *source.Interner, bag *diag.Bag) *Checker {
	return &Checker{module: idx, m: m, strings: strings, bag: bag}
}

func (c *Checker) name(id source.StringID) string {
	if !id.IsValid() {
		return "<unnamed>"
	}
	if s, ok := c.strings.Lookup(id); ok {
		return s
	}
	return "<unnamed>"
}

// CheckImpl implements spec.md §4.4 item 3: every supertrait of the
// implemented trait must also be implemented for the same self type,
// every associated type the trait requires must be provided, and every
// where-clause on the impl must hold.
func (c *Checker) CheckImpl(implID hir.DefId) {
	d := c.m.Def(implID)
	if d == nil || d.Impl == nil || !d.Impl.Trait.IsValid() {
		return
	}
	impl := d.Impl
	self, ok := c.module.selfTypeDef(impl.SelfType)
	if !ok {
		return
	}
	traitDef := c.m.Def(impl.Trait)
	if traitDef == nil || traitDef.Trait == nil {
		return
	}

	for _, super := range traitDef.Trait.Supertraits {
		if !CheckBound(c.module, self, super, nil) {
			c.bag.Add(diagPtr(diag.NewError(diag.BndMissingSupertraitImpl, impl.Span, fmt.Sprintf(
				"impl of '%s' is missing a supertrait implementation required by '%s'",
				c.name(c.m.DefName(impl.Trait)), c.name(c.m.DefName(super))))))
		}
	}

	for _, assoc := range traitDef.Trait.AssocTypes {
		if !implProvidesAssocType(impl, assoc.Name) {
			c.bag.Add(diagPtr(diag.NewError(diag.BndMissingAssociatedType, impl.Span, fmt.Sprintf(
				"impl does not provide required associated type '%s'", c.name(assoc.Name)))))
		}
	}

	for _, w := range impl.Where {
		if !c.whereClauseHolds(impl, w) {
			c.bag.Add(diagPtr(diag.NewError(diag.BndUnsatisfiedWhereClause, w.Span,
				"where-clause constraint is not satisfied by this impl's generic environment")))
		}
	}
}

func implProvidesAssocType(impl *hir.Impl, name source.StringID) bool {
	for _, a := range impl.AssocTypes {
		if a.Name == name {
			return true
		}
	}
	return false
}

// whereClauseHolds checks a single `where T: Trait` constraint against
// the impl's own generic-parameter bound declarations: the constraint
// holds if the named type parameter already carries that trait as one of
// its declared Bounds (the impl's generic environment is exactly its
// TypeParams list). A where-clause is not matched against a concrete
// instantiation, here or in internal/mono.
func (c *Checker) whereClauseHolds(impl *hir.Impl, w hir.WhereClause) bool {
	if int(w.ParamIndex) >= len(impl.TypeParams) {
		return false
	}
	param := impl.TypeParams[w.ParamIndex]
	for _, b := range param.Bounds {
		if b == w.Trait {
			return true
		}
	}
	return false
}

// CheckCallSite implements spec.md §4.4 items 4-5: for each generic
// parameter with a declared bound, verify the substituted concrete type
// satisfies it. subst maps a TypeParam index to the TyId it was
// instantiated with at this call site. A still-unresolved TyVar is
// skipped unless final is set ("defer the check until the variable is
// resolved ... or until the pass ends"); call CheckCallSite once per call
// site during inference (final=false) and once more after the whole pass
// completes (final=true) so a bound that never resolved becomes a
// diagnostic instead of being silently dropped.
func (c *Checker) CheckCallSite(ctx *types.Context, params []hir.TypeParam, subst map[uint32]types.TyId, final bool, span source.Span) {
	for _, param := range params {
		concrete, ok := subst[param.Index]
		if !ok || len(param.Bounds) == 0 {
			continue
		}
		resolved := ctx.Resolve(concrete)
		ty, ok := ctx.Types.Lookup(resolved)
		if ok && ty.Kind == types.KindVar && !final {
			continue
		}

		self, isNamed := namedReceiverDef(ctx, resolved)
		for _, traitID := range param.Bounds {
			if !isNamed || !CheckBound(c.module, self, traitID, nil) {
				c.bag.Add(diagPtr(diag.NewError(diag.BndUnsatisfiedBound, span, fmt.Sprintf(
					"type parameter '%s' requires '%s' which is not implemented here",
					c.name(param.Name), c.name(c.m.DefName(traitID))))))
			}
		}
	}
}

func diagPtr(d diag.Diagnostic) *diag.Diagnostic {
	return &d
}
