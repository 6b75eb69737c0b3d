package bounds

import (
	"corec/internal/hir"
	"corec/internal/mono"
	"corec/internal/source"
	"corec/internal/types"
)

// CheckCallSites implements spec.md §4.4 items 4-5's call-site sweep:
// walk every call expression reachable from the module's items and, for
// each one whose callee names a generic function/method, verify the
// inferred type arguments satisfy its declared bounds via
// Checker.CheckCallSite. Run once, after inference has reached its
// fixpoint (spec.md §4.3's unification is monotonic - a substitution is
// never retracted), so every check here is final: a type variable still
// unresolved at this point never will be.
func CheckCallSites(m *hir.Module, ctx *types.Context, checker *Checker) {
	w := &callSiteWalker{m: m, ctx: ctx, checker: checker}
	for _, id := range m.Items {
		w.visitItem(id)
	}
}

type callSiteWalker struct {
	m       *hir.Module
	ctx     *types.Context
	checker *Checker
}

func (w *callSiteWalker) visitItem(id hir.DefId) {
	d := w.m.Def(id)
	if d == nil {
		return
	}
	switch d.Kind {
	case hir.DefFunction:
		if d.Function != nil && d.Function.Body.IsValid() {
			w.expr(d.Function.Body)
		}
	case hir.DefImpl:
		if d.Impl != nil {
			for _, methodID := range d.Impl.Methods {
				w.visitItem(methodID)
			}
		}
	case hir.DefTrait:
		if d.Trait != nil {
			for _, methodID := range d.Trait.Methods {
				w.visitItem(methodID)
			}
		}
	case hir.DefModule:
		if d.Module != nil {
			for _, member := range d.Module.Members {
				w.visitItem(member)
			}
		}
	}
}

// exprType reads back an already-inferred expression's resolved type.
func (w *callSiteWalker) exprType(id hir.ExprId) types.TyId {
	return w.ctx.Resolve(w.ctx.ExprTypes[id])
}

func (w *callSiteWalker) expr(id hir.ExprId) {
	if !id.IsValid() {
		return
	}
	e := w.m.Expr(id)
	if e == nil {
		return
	}
	switch e.Kind {
	case hir.ExprCall:
		w.expr(e.Callee)
		for _, a := range e.Args {
			w.expr(a)
		}
		w.checkDirectCall(e.Callee, e.Args, e.Span)
	case hir.ExprMethodCall:
		w.expr(e.Receiver)
		for _, a := range e.MethodArgs {
			w.expr(a)
		}
		w.checkMethodCall(e.ResolvedMethod, e.MethodArgs, e.Span)
	case hir.ExprBlock:
		for _, s := range e.Stmts {
			w.stmt(s)
		}
		w.expr(e.Tail)
	case hir.ExprIf:
		w.expr(e.Cond)
		w.expr(e.Then)
		w.expr(e.Else)
	case hir.ExprMatch:
		w.expr(e.Scrutinee)
		for _, a := range e.Arms {
			w.expr(a.Guard)
			w.expr(a.Body)
		}
	case hir.ExprReturn:
		w.expr(e.Value)
	case hir.ExprAggregate:
		if e.Aggregate != nil {
			for _, f := range e.Aggregate.Fields {
				w.expr(f.Value)
			}
		}
	case hir.ExprReference, hir.ExprDereference:
		w.expr(e.Inner)
	case hir.ExprClosure:
		if e.Closure != nil {
			w.expr(e.Closure.Body)
		}
	case hir.ExprAssign:
		w.expr(e.Target)
		w.expr(e.RHS)
	case hir.ExprBinaryOp:
		w.expr(e.LHS)
		w.expr(e.RHS)
	case hir.ExprUnaryOp:
		w.expr(e.Operand)
	case hir.ExprFieldAccess:
		w.expr(e.Receiver)
	case hir.ExprIndex:
		w.expr(e.Receiver)
		for _, a := range e.Args {
			w.expr(a)
		}
	}
}

func (w *callSiteWalker) stmt(id hir.StmtId) {
	s := w.m.Stmt(id)
	if s == nil {
		return
	}
	switch s.Kind {
	case hir.StmtLet:
		if s.Let != nil {
			w.expr(s.Let.Init)
		}
	case hir.StmtExpr:
		w.expr(s.Expr)
	}
}

// checkDirectCall resolves a free-function call's callee to its
// definition, if it names one directly, and checks its bounds.
func (w *callSiteWalker) checkDirectCall(calleeID hir.ExprId, argIDs []hir.ExprId, span source.Span) {
	ce := w.m.Expr(calleeID)
	if ce == nil || ce.Kind != hir.ExprVariable || !ce.Ref.IsValid() {
		return
	}
	w.checkMethodCall(ce.Ref, argIDs, span)
}

// checkMethodCall runs CheckCallSite for a resolved callee/method def
// against its call site's inferred argument types.
func (w *callSiteWalker) checkMethodCall(def hir.DefId, argIDs []hir.ExprId, span source.Span) {
	d := w.m.Def(def)
	if d == nil || d.Function == nil || len(d.Function.TypeParams) == 0 {
		return
	}
	argTypes := make([]types.TyId, len(argIDs))
	for i, a := range argIDs {
		argTypes[i] = w.exprType(a)
	}
	out := mono.InferTypeArgs(w.ctx, d.Function, argTypes)
	subst := make(map[uint32]types.TyId, len(d.Function.TypeParams))
	for i, p := range d.Function.TypeParams {
		if i < len(out) && out[i].IsValid() {
			subst[p.Index] = out[i]
		}
	}
	w.checker.CheckCallSite(w.ctx, d.Function.TypeParams, subst, true, span)
}
