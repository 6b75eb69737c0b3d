package bounds

import (
	"testing"

	"corec/internal/diag"
	"corec/internal/hir"
	"corec/internal/source"
	"corec/internal/types"
)

// newNamedType registers a struct/enum Def and its TypeNamed node, wiring
// Def on the node the way internal/resolve would after name resolution.
func newNamedType(m *hir.Module, def hir.DefId) hir.TypeId {
	return m.NewType(hir.TypeNode{Kind: hir.TypeNamed, Def: def})
}

func TestCheckBoundFindsMatchingInherentTraitImpl(t *testing.T) {
	m := hir.NewModule()
	strings := source.NewInterner()

	pointDef := m.NewDef(hir.Definition{Kind: hir.DefStruct, Struct: &hir.Struct{Name: strings.Intern("Point")}})
	traitDef := m.NewDef(hir.Definition{Kind: hir.DefTrait, Trait: &hir.Trait{Name: strings.Intern("Show")}})
	otherTraitDef := m.NewDef(hir.Definition{Kind: hir.DefTrait, Trait: &hir.Trait{Name: strings.Intern("Eq")}})

	implDef := m.NewDef(hir.Definition{Kind: hir.DefImpl, Impl: &hir.Impl{
		Trait:    traitDef,
		SelfType: newNamedType(m, pointDef),
	}})
	m.Items = append(m.Items, pointDef, traitDef, otherTraitDef, implDef)

	idx := Build(m)
	if !CheckBound(idx, pointDef, traitDef, nil) {
		t.Fatalf("Point implements Show and should satisfy the bound")
	}
	if CheckBound(idx, pointDef, otherTraitDef, nil) {
		t.Fatalf("Point does not implement Eq and should not satisfy the bound")
	}
}

func TestCheckImplReportsMissingSupertrait(t *testing.T) {
	m := hir.NewModule()
	strings := source.NewInterner()

	pointDef := m.NewDef(hir.Definition{Kind: hir.DefStruct, Struct: &hir.Struct{Name: strings.Intern("Point")}})
	baseTrait := m.NewDef(hir.Definition{Kind: hir.DefTrait, Trait: &hir.Trait{Name: strings.Intern("Eq")}})
	subTrait := m.NewDef(hir.Definition{Kind: hir.DefTrait, Trait: &hir.Trait{Name: strings.Intern("Ord"), Supertraits: []hir.DefId{baseTrait}}})

	implSub := m.NewDef(hir.Definition{Kind: hir.DefImpl, Impl: &hir.Impl{
		Trait:    subTrait,
		SelfType: newNamedType(m, pointDef),
	}})
	m.Items = append(m.Items, pointDef, baseTrait, subTrait, implSub)

	idx := Build(m)
	bag := diag.NewBag(16)
	checker := NewChecker(idx, m, strings, bag)
	checker.CheckImpl(implSub)

	if !bag.HasErrors() {
		t.Fatalf("expected a missing-supertrait diagnostic")
	}
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.BndMissingSupertraitImpl {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected BndMissingSupertraitImpl, got %v", bag.Items())
	}
}

func TestCheckImplAcceptsSatisfiedSupertrait(t *testing.T) {
	m := hir.NewModule()
	strings := source.NewInterner()

	pointDef := m.NewDef(hir.Definition{Kind: hir.DefStruct, Struct: &hir.Struct{Name: strings.Intern("Point")}})
	baseTrait := m.NewDef(hir.Definition{Kind: hir.DefTrait, Trait: &hir.Trait{Name: strings.Intern("Eq")}})
	subTrait := m.NewDef(hir.Definition{Kind: hir.DefTrait, Trait: &hir.Trait{Name: strings.Intern("Ord"), Supertraits: []hir.DefId{baseTrait}}})

	implBase := m.NewDef(hir.Definition{Kind: hir.DefImpl, Impl: &hir.Impl{
		Trait:    baseTrait,
		SelfType: newNamedType(m, pointDef),
	}})
	implSub := m.NewDef(hir.Definition{Kind: hir.DefImpl, Impl: &hir.Impl{
		Trait:    subTrait,
		SelfType: newNamedType(m, pointDef),
	}})
	m.Items = append(m.Items, pointDef, baseTrait, subTrait, implBase, implSub)

	idx := Build(m)
	bag := diag.NewBag(16)
	checker := NewChecker(idx, m, strings, bag)
	checker.CheckImpl(implSub)

	if bag.HasErrors() {
		t.Fatalf("Point implements both Eq and Ord; expected no diagnostics, got %v", bag.Items())
	}
}

func TestWhereClauseHoldsAgainstDeclaredBound(t *testing.T) {
	m := hir.NewModule()
	strings := source.NewInterner()

	pointDef := m.NewDef(hir.Definition{Kind: hir.DefStruct, Struct: &hir.Struct{Name: strings.Intern("Point")}})
	traitDef := m.NewDef(hir.Definition{Kind: hir.DefTrait, Trait: &hir.Trait{Name: strings.Intern("Eq")}})

	implDef := m.NewDef(hir.Definition{Kind: hir.DefImpl, Impl: &hir.Impl{
		SelfType:   newNamedType(m, pointDef),
		TypeParams: []hir.TypeParam{{Name: strings.Intern("T"), Index: 0, Bounds: []hir.DefId{traitDef}}},
		Where:      []hir.WhereClause{{ParamIndex: 0, Trait: traitDef}},
	}})
	m.Items = append(m.Items, pointDef, traitDef, implDef)

	idx := Build(m)
	bag := diag.NewBag(16)
	checker := NewChecker(idx, m, strings, bag)
	d := m.Def(implDef)
	for _, w := range d.Impl.Where {
		if !checker.whereClauseHolds(d.Impl, w) {
			t.Fatalf("where-clause should be satisfied by the impl's declared bound")
		}
	}
}

func TestCheckCallSiteReportsUnsatisfiedBound(t *testing.T) {
	m := hir.NewModule()
	strings := source.NewInterner()

	pointDef := m.NewDef(hir.Definition{Kind: hir.DefStruct, Struct: &hir.Struct{Name: strings.Intern("Point")}})
	traitDef := m.NewDef(hir.Definition{Kind: hir.DefTrait, Trait: &hir.Trait{Name: strings.Intern("Show")}})
	m.Items = append(m.Items, pointDef, traitDef)

	idx := Build(m) // no impls registered: Point implements nothing

	bag := diag.NewBag(16)
	checker := NewChecker(idx, m, strings, bag)
	ctx := types.NewContext(types.NewInterner(), diag.NewBag(16))
	pointTy := ctx.Types.RegisterNamed(pointDef, nil)

	params := []hir.TypeParam{{Name: strings.Intern("T"), Index: 0, Bounds: []hir.DefId{traitDef}}}
	subst := map[uint32]types.TyId{0: pointTy}

	checker.CheckCallSite(ctx, params, subst, true, source.Span{})

	if !bag.HasErrors() {
		t.Fatalf("expected an unsatisfied-bound diagnostic since Point implements nothing")
	}
}

func TestCheckCallSiteDefersUnresolvedVariableUntilFinal(t *testing.T) {
	m := hir.NewModule()
	strings := source.NewInterner()
	traitDef := m.NewDef(hir.Definition{Kind: hir.DefTrait, Trait: &hir.Trait{Name: strings.Intern("Show")}})
	m.Items = append(m.Items, traitDef)

	idx := Build(m)
	bag := diag.NewBag(16)
	checker := NewChecker(idx, m, strings, bag)
	ctx := types.NewContext(types.NewInterner(), diag.NewBag(16))
	v := ctx.Fresh()

	params := []hir.TypeParam{{Name: strings.Intern("T"), Index: 0, Bounds: []hir.DefId{traitDef}}}
	subst := map[uint32]types.TyId{0: v}

	checker.CheckCallSite(ctx, params, subst, false, source.Span{})
	if bag.HasErrors() {
		t.Fatalf("an unresolved type variable must be deferred, not reported, when final=false")
	}

	checker.CheckCallSite(ctx, params, subst, true, source.Span{})
	if !bag.HasErrors() {
		t.Fatalf("an unresolved type variable must be reported once the pass is final")
	}
}
