package types

import (
	"testing"

	"corec/internal/diag"
	"corec/internal/hir"
	"corec/internal/source"
)

func newTestInferer() (*hir.Module, *source.Interner, *Inferer) {
	m := hir.NewModule()
	strings := source.NewInterner()
	ctx := NewContext(NewInterner(), diag.NewBag(64))
	return m, strings, NewInferer(m, strings, ctx)
}

// TestInferBinaryOpOnDeclaredParamTypes builds `fn add(x: i32, y: i32) -> i32
// { x + y }` by hand and checks the body and declared return type agree.
func TestInferBinaryOpOnDeclaredParamTypes(t *testing.T) {
	m, strings, inf := newTestInferer()

	i32Type := m.NewType(hir.TypeNode{Kind: hir.TypeNamed, Name: strings.Intern("i32")})
	defX := m.NewDef(hir.Definition{Kind: hir.DefLocal, Local: &hir.Local{Name: strings.Intern("x")}})
	defY := m.NewDef(hir.Definition{Kind: hir.DefLocal, Local: &hir.Local{Name: strings.Intern("y")}})

	exprX := m.NewExpr(hir.Expr{Kind: hir.ExprVariable, Ref: defX})
	exprY := m.NewExpr(hir.Expr{Kind: hir.ExprVariable, Ref: defY})
	addExpr := m.NewExpr(hir.Expr{Kind: hir.ExprBinaryOp, BinOp: hir.OpAdd, LHS: exprX, RHS: exprY})

	fn := &hir.Function{
		Name:       strings.Intern("add"),
		Params:     []hir.Param{{Name: strings.Intern("x"), Type: i32Type, Def: defX}, {Name: strings.Intern("y"), Type: i32Type, Def: defY}},
		ReturnType: i32Type,
		Body:       addExpr,
	}
	fnDef := m.NewDef(hir.Definition{Kind: hir.DefFunction, Function: fn})
	m.Items = append(m.Items, fnDef)

	inf.InferFunction(fnDef)

	want := inf.Ctx.Types.Builtins().Int32
	if got := inf.Ctx.Resolve(inf.Ctx.FuncReturn[fnDef]); got != want {
		t.Fatalf("declared return type: got %v, want %v", got, want)
	}
	if got := inf.Ctx.Resolve(inf.Ctx.ExprTypes[addExpr]); got != want {
		t.Fatalf("x + y inferred type: got %v, want %v", got, want)
	}
	if inf.Ctx.Bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", inf.Ctx.Bag.Items())
	}
}

// TestInferUnsuffixedLiteralDefaultsToI64 covers the integer-literal
// polymorphism decision (SPEC_FULL.md §4.3 / DESIGN.md): with no
// constraining context, an unsuffixed literal is i64.
func TestInferUnsuffixedLiteralDefaultsToI64(t *testing.T) {
	m, _, inf := newTestInferer()
	lit := m.NewExpr(hir.Expr{Kind: hir.ExprLiteral, Literal: &hir.Literal{Kind: hir.LitInt, Int: 42}})
	got := inf.infer(lit, NoTyId)
	if got != inf.Ctx.Types.Builtins().Int64 {
		t.Fatalf("unsuffixed literal with no context should default to i64, got %v", got)
	}
}

// TestInferUnsuffixedLiteralCoercesToExpectedWidth checks that the same
// literal node types as u8/i32/etc. depending on its expected type.
func TestInferUnsuffixedLiteralCoercesToExpectedWidth(t *testing.T) {
	m, _, inf := newTestInferer()
	lit := m.NewExpr(hir.Expr{Kind: hir.ExprLiteral, Literal: &hir.Literal{Kind: hir.LitInt, Int: 1}})
	got := inf.infer(lit, inf.Ctx.Types.Builtins().Int8)
	if got != inf.Ctx.Types.Builtins().Int8 {
		t.Fatalf("literal 1 should coerce into the expected i8 type, got %v", got)
	}
}

func TestInferUnsuffixedLiteralRejectsOutOfRangeWidth(t *testing.T) {
	m, _, inf := newTestInferer()
	lit := m.NewExpr(hir.Expr{Kind: hir.ExprLiteral, Literal: &hir.Literal{Kind: hir.LitInt, Int: 1000}})
	inf.infer(lit, inf.Ctx.Types.Builtins().Int8)
	if !inf.Ctx.Bag.HasErrors() {
		t.Fatalf("1000 does not fit in i8 and should have been reported")
	}
}

// TestReceiverMutabilityTracksMutableLocal covers spec.md §4.3's receiver
// mutability rule for the simplest case: a mutably-declared Local used
// directly as a method receiver.
func TestReceiverMutabilityTracksMutableLocal(t *testing.T) {
	m, strings, inf := newTestInferer()
	recvDef := m.NewDef(hir.Definition{Kind: hir.DefLocal, Local: &hir.Local{Name: strings.Intern("self"), Mutable: true}})
	recvExpr := m.NewExpr(hir.Expr{Kind: hir.ExprVariable, Ref: recvDef})
	call := m.NewExpr(hir.Expr{Kind: hir.ExprMethodCall, Receiver: recvExpr, Method: strings.Intern("push")})

	inf.infer(call, NoTyId)

	if !inf.Ctx.ReceiverMut[call] {
		t.Fatalf("a mutably-declared local receiver must be recorded as mutable")
	}
}

func TestReceiverMutabilityFalseForImmutableLocal(t *testing.T) {
	m, strings, inf := newTestInferer()
	recvDef := m.NewDef(hir.Definition{Kind: hir.DefLocal, Local: &hir.Local{Name: strings.Intern("self"), Mutable: false}})
	recvExpr := m.NewExpr(hir.Expr{Kind: hir.ExprVariable, Ref: recvDef})
	call := m.NewExpr(hir.Expr{Kind: hir.ExprMethodCall, Receiver: recvExpr, Method: strings.Intern("len")})

	inf.infer(call, NoTyId)

	if inf.Ctx.ReceiverMut[call] {
		t.Fatalf("an immutably-declared local receiver must not be recorded as mutable")
	}
}

// TestReceiverMutabilityThroughDereferenceOfMutRef covers the "dereference
// of &mut T" leg of the mutability rule.
func TestReceiverMutabilityThroughDereferenceOfMutRef(t *testing.T) {
	m, strings, inf := newTestInferer()
	recvDef := m.NewDef(hir.Definition{Kind: hir.DefLocal, Local: &hir.Local{Name: strings.Intern("r")}})
	recvExpr := m.NewExpr(hir.Expr{Kind: hir.ExprVariable, Ref: recvDef})
	mutRefTy := inf.Ctx.Types.Intern(MakeRef(true, inf.Ctx.Types.Builtins().Int32))
	inf.Ctx.LocalTypes[recvDef] = mutRefTy

	deref := m.NewExpr(hir.Expr{Kind: hir.ExprDereference, Inner: recvExpr})
	call := m.NewExpr(hir.Expr{Kind: hir.ExprMethodCall, Receiver: deref, Method: strings.Intern("set")})

	inf.infer(call, NoTyId)

	if !inf.Ctx.ReceiverMut[call] {
		t.Fatalf("dereferencing a &mut T receiver must be recorded as mutable")
	}
}
