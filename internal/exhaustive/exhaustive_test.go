package exhaustive

import (
	"testing"

	"corec/internal/diag"
	"corec/internal/hir"
	"corec/internal/source"
	"corec/internal/types"
)

func newCtx() (*types.Context, *types.Interner) {
	tys := types.NewInterner()
	return types.NewContext(tys, diag.NewBag(16)), tys
}

func boolPat(m *hir.Module, v bool) hir.PatId {
	return m.NewPat(hir.Pattern{Kind: hir.PatLiteral, Literal: &hir.Literal{Kind: hir.LitBool, Bool: v}})
}

func wildcardPat(m *hir.Module) hir.PatId {
	return m.NewPat(hir.Pattern{Kind: hir.PatWildcard})
}

func bindingPat(m *hir.Module, strings *source.Interner, name string) hir.PatId {
	return m.NewPat(hir.Pattern{Kind: hir.PatBinding, Name: strings.Intern(name)})
}

func TestUnreachableArmsDetectsDuplicateBoolArm(t *testing.T) {
	ctx, tys := newCtx()
	m := hir.NewModule()
	strings := source.NewInterner()

	arms := []hir.MatchArm{
		{Pattern: boolPat(m, true)},
		{Pattern: boolPat(m, true)},
		{Pattern: boolPat(m, false)},
	}

	got := UnreachableArms(ctx, m, strings, tys.Builtins().Bool, arms)
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("expected arm 1 (second `true`) unreachable, got %v", got)
	}
}

func TestUnreachableArmsAcceptsExhaustiveBoolMatch(t *testing.T) {
	ctx, tys := newCtx()
	m := hir.NewModule()
	strings := source.NewInterner()

	arms := []hir.MatchArm{
		{Pattern: boolPat(m, true)},
		{Pattern: boolPat(m, false)},
	}

	got := UnreachableArms(ctx, m, strings, tys.Builtins().Bool, arms)
	if len(got) != 0 {
		t.Fatalf("expected no unreachable arms, got %v", got)
	}
}

func TestCheckMatchReportsNonExhaustiveBoolMatch(t *testing.T) {
	ctx, tys := newCtx()
	m := hir.NewModule()
	strings := source.NewInterner()

	arms := []hir.MatchArm{
		{Pattern: boolPat(m, true)},
	}

	bag := diag.NewBag(16)
	missing := CheckMatch(ctx, m, strings, bag, tys.Builtins().Bool, arms, source.Span{})
	if len(missing) != 1 || missing[0] != "false" {
		t.Fatalf("expected missing witness [\"false\"], got %v", missing)
	}
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.PatNonExhaustive {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected PatNonExhaustive, got %v", bag.Items())
	}
}

func TestCheckMatchAcceptsExhaustiveBoolMatchWithWildcard(t *testing.T) {
	ctx, tys := newCtx()
	m := hir.NewModule()
	strings := source.NewInterner()

	arms := []hir.MatchArm{
		{Pattern: boolPat(m, true)},
		{Pattern: wildcardPat(m)},
	}

	bag := diag.NewBag(16)
	missing := CheckMatch(ctx, m, strings, bag, tys.Builtins().Bool, arms, source.Span{})
	if len(missing) != 0 {
		t.Fatalf("expected no missing witnesses, got %v", missing)
	}
	if bag.HasErrors() {
		t.Fatalf("expected no diagnostics, got %v", bag.Items())
	}
}

// buildOption registers an Option-like enum (Some(T), None) and returns its
// DefId plus the TyId of Option<Bool>.
func buildOption(m *hir.Module, strings *source.Interner, tys *types.Interner) (hir.DefId, types.TyId) {
	boolTy := tys.Builtins().Bool
	optionDef := m.NewDef(hir.Definition{Kind: hir.DefEnum, Enum: &hir.Enum{
		Name: strings.Intern("Option"),
		Variants: []hir.Variant{
			{Name: strings.Intern("Some"), VariantIdx: 0, Fields: []hir.Field{{Name: strings.Intern("0")}}},
			{Name: strings.Intern("None"), VariantIdx: 1},
		},
	}})
	m.Items = append(m.Items, optionDef)
	optionTy := tys.RegisterNamed(optionDef, []types.TyId{boolTy})
	return optionDef, optionTy
}

func someBoolPat(m *hir.Module, enumDef hir.DefId, sub hir.PatId) hir.PatId {
	return m.NewPat(hir.Pattern{Kind: hir.PatEnumVariant, EnumDef: enumDef, VariantIdx: 0, SubPats: []hir.PatId{sub}})
}

func nonePat(m *hir.Module, enumDef hir.DefId) hir.PatId {
	return m.NewPat(hir.Pattern{Kind: hir.PatEnumVariant, EnumDef: enumDef, VariantIdx: 1})
}

func TestCheckMatchReportsMissingEnumVariantWitness(t *testing.T) {
	ctx, tys := newCtx()
	m := hir.NewModule()
	strings := source.NewInterner()
	enumDef, optionTy := buildOption(m, strings, tys)

	arms := []hir.MatchArm{
		{Pattern: someBoolPat(m, enumDef, wildcardPat(m))},
	}

	bag := diag.NewBag(16)
	missing := CheckMatch(ctx, m, strings, bag, optionTy, arms, source.Span{})
	if len(missing) != 1 || missing[0] != "None" {
		t.Fatalf("expected missing witness [\"None\"], got %v", missing)
	}
}

func TestCheckMatchAcceptsExhaustiveEnumMatch(t *testing.T) {
	ctx, tys := newCtx()
	m := hir.NewModule()
	strings := source.NewInterner()
	enumDef, optionTy := buildOption(m, strings, tys)

	arms := []hir.MatchArm{
		{Pattern: someBoolPat(m, enumDef, wildcardPat(m))},
		{Pattern: nonePat(m, enumDef)},
	}

	bag := diag.NewBag(16)
	missing := CheckMatch(ctx, m, strings, bag, optionTy, arms, source.Span{})
	if len(missing) != 0 {
		t.Fatalf("expected no missing witnesses, got %v", missing)
	}
	if bag.HasErrors() {
		t.Fatalf("expected no diagnostics, got %v", bag.Items())
	}
}

func TestCheckMatchIgnoresGuardedArmForExhaustiveness(t *testing.T) {
	ctx, tys := newCtx()
	m := hir.NewModule()
	strings := source.NewInterner()

	guardExpr := m.NewExpr(hir.Expr{Kind: hir.ExprLiteral})

	arms := []hir.MatchArm{
		{Pattern: boolPat(m, true), Guard: guardExpr},
		{Pattern: wildcardPat(m)},
	}

	bag := diag.NewBag(16)
	missing := CheckMatch(ctx, m, strings, bag, tys.Builtins().Bool, arms, source.Span{})
	if len(missing) != 0 {
		t.Fatalf("wildcard arm alone should make this exhaustive, got missing=%v", missing)
	}
}

func TestCheckMatchReportsOrPatternBindingMismatch(t *testing.T) {
	ctx, tys := newCtx()
	m := hir.NewModule()
	strings := source.NewInterner()
	enumDef, optionTy := buildOption(m, strings, tys)

	orPat := m.NewPat(hir.Pattern{Kind: hir.PatOr, Alternatives: []hir.PatId{
		someBoolPat(m, enumDef, bindingPat(m, strings, "x")),
		nonePat(m, enumDef),
	}})

	arms := []hir.MatchArm{{Pattern: orPat}}

	bag := diag.NewBag(16)
	CheckMatch(ctx, m, strings, bag, optionTy, arms, source.Span{})
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.PatOrBindingMismatch {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected PatOrBindingMismatch, got %v", bag.Items())
	}
}

func TestCheckMatchAcceptsConsistentOrPatternBindings(t *testing.T) {
	ctx, tys := newCtx()
	m := hir.NewModule()
	strings := source.NewInterner()
	enumDef, optionTy := buildOption(m, strings, tys)

	orPat := m.NewPat(hir.Pattern{Kind: hir.PatOr, Alternatives: []hir.PatId{
		someBoolPat(m, enumDef, bindingPat(m, strings, "x")),
		someBoolPat(m, enumDef, bindingPat(m, strings, "x")),
	}})

	arms := []hir.MatchArm{{Pattern: orPat}, {Pattern: nonePat(m, enumDef)}}

	bag := diag.NewBag(16)
	CheckMatch(ctx, m, strings, bag, optionTy, arms, source.Span{})
	for _, d := range bag.Items() {
		if d.Code == diag.PatOrBindingMismatch {
			t.Fatalf("bindings agree on name `x`; unexpected mismatch diagnostic: %v", d)
		}
	}
}
