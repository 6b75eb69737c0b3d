package types

import (
	"testing"

	"corec/internal/diag"
	"corec/internal/source"
)

func newTestContext() *Context {
	return NewContext(NewInterner(), diag.NewBag(64))
}

// TestNominalEqualityRejectsStructurallyIdenticalNewtypes covers testable
// property 1: two Named types with distinct DefIds but identical structure
// do not unify, even though they'd be indistinguishable if compared
// structurally.
func TestNominalEqualityRejectsStructurallyIdenticalNewtypes(t *testing.T) {
	ctx := newTestContext()
	const defA, defB = 11, 22 // stand-in hir.DefIds for two distinct newtypes

	a := ctx.Types.RegisterNamed(defA, nil)
	b := ctx.Types.RegisterNamed(defB, nil)

	if Unify(ctx, a, b, source.Span{}) {
		t.Fatalf("two Named types with different DefIds must not unify")
	}
	if !ctx.Bag.HasErrors() {
		t.Fatalf("expected a TypMismatch diagnostic")
	}
}

func TestNominalEqualityAcceptsSameDefIdAndArgs(t *testing.T) {
	ctx := newTestContext()
	const def = 5
	args := []TyId{ctx.Types.Builtins().Int32}
	a := ctx.Types.RegisterNamed(def, args)
	b := ctx.Types.RegisterNamed(def, args)
	if !Unify(ctx, a, b, source.Span{}) {
		t.Fatalf("identical (def, args) Named types must unify")
	}
}

// TestOccursCheckRejectsSelfReferentialSubstitution covers testable
// property 2: binding a TyVar to a type that contains it (transitively)
// must fail rather than loop or produce an infinite type.
func TestOccursCheckRejectsSelfReferentialSubstitution(t *testing.T) {
	ctx := newTestContext()
	v := ctx.Fresh()
	ref := ctx.Types.Intern(MakeRef(false, v)) // &v, containing v itself

	if Unify(ctx, v, ref, source.Span{}) {
		t.Fatalf("binding v to &v must fail the occurs check")
	}
	found := false
	for _, d := range ctx.Bag.Items() {
		if d.Code == diag.TypOccursCheck {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a TypOccursCheck diagnostic")
	}
}

func TestUnifyVarBindsToConcreteType(t *testing.T) {
	ctx := newTestContext()
	v := ctx.Fresh()
	if !Unify(ctx, v, ctx.Types.Builtins().Bool, source.Span{}) {
		t.Fatalf("unbound variable should unify with any concrete type")
	}
	if ctx.Resolve(v) != ctx.Types.Builtins().Bool {
		t.Fatalf("v should now resolve to Bool")
	}
}

func TestUnifyIntLiteralPolymorphism(t *testing.T) {
	ctx := newTestContext()
	any := ctx.Types.Intern(MakeInt(WidthAny))
	i32 := ctx.Types.Builtins().Int32
	if !Unify(ctx, i32, any, source.Span{}) {
		t.Fatalf("an unsuffixed integer type should unify into any width")
	}
}

func TestUnifyConcreteWidthMismatch(t *testing.T) {
	ctx := newTestContext()
	i32 := ctx.Types.Builtins().Int32
	i64 := ctx.Types.Builtins().Int64
	if Unify(ctx, i32, i64, source.Span{}) {
		t.Fatalf("two different concrete integer widths must not unify")
	}
}

func TestUnifyErrorSubsumesAnything(t *testing.T) {
	ctx := newTestContext()
	errTy := ctx.Types.Builtins().Error
	if !Unify(ctx, errTy, ctx.Types.Builtins().Bool, source.Span{}) {
		t.Fatalf("Error must unify with anything silently")
	}
	if ctx.Bag.HasErrors() {
		t.Fatalf("unifying with Error must not itself report a diagnostic")
	}
}

func TestUnifyReferenceMutabilityMustMatch(t *testing.T) {
	ctx := newTestContext()
	elem := ctx.Types.Builtins().Int32
	mut := ctx.Types.Intern(MakeRef(true, elem))
	imm := ctx.Types.Intern(MakeRef(false, elem))
	if Unify(ctx, mut, imm, source.Span{}) {
		t.Fatalf("&T and &mut T must not unify")
	}
}

func TestUnifyGenericParamRequiresEqualIndex(t *testing.T) {
	ctx := newTestContext()
	p0 := ctx.Types.Intern(MakeGenericParam(0))
	p1 := ctx.Types.Intern(MakeGenericParam(1))
	if Unify(ctx, p0, p1, source.Span{}) {
		t.Fatalf("generic params with different indices must not unify")
	}
	p0b := ctx.Types.Intern(MakeGenericParam(0))
	if !Unify(ctx, p0, p0b, source.Span{}) {
		t.Fatalf("generic params with the same index must unify")
	}
}
