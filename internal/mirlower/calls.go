package mirlower

import (
	"corec/internal/hir"
	"corec/internal/mir"
	"corec/internal/mono"
	"corec/internal/source"
	"corec/internal/types"
)

// lowerCall lowers a free-function call. The callee is direct when it
// names a DefFunction/DefExternalFunction; anything else (a closure value
// held in a local, a higher-order parameter) is an indirect call through
// that value, per spec.md §3's Callee sum.
func (l *funcLowerer) lowerCall(id hir.ExprId, e *hir.Expr) (mir.Operand, error) {
	args, err := l.lowerArgs(e.Args)
	if err != nil {
		return mir.Operand{}, err
	}
	callee, err := l.lowerCallee(e.Callee, e.Args)
	if err != nil {
		return mir.Operand{}, err
	}
	return l.emitCall(id, e.Span, callee, args)
}

// lowerMethodCall rewrites `receiver.method(args)` to a direct call with
// the receiver prepended, per spec.md §4.7: a by-ref/by-ref-mut receiver
// is passed through a synthesized Ref{mut}, a by-value receiver is passed
// as a plain operand.
func (l *funcLowerer) lowerMethodCall(id hir.ExprId, e *hir.Expr) (mir.Operand, error) {
	def := l.m.Def(e.ResolvedMethod)
	recvKind := hir.ReceiverByValue
	if def != nil && def.Function != nil {
		recvKind = def.Function.Receiver
	}

	var recv mir.Operand
	if recvKind == hir.ReceiverByRef || recvKind == hir.ReceiverByRefMut {
		place, err := l.lowerPlace(e.Receiver)
		if err != nil {
			return mir.Operand{}, err
		}
		temp := l.newTemp(l.exprType(e.Receiver), e.Span)
		l.emit(mir.Assign(mir.Place{Local: temp}, mir.RValue{
			Kind: mir.RValueRef,
			Ref:  mir.RefOp{Mut: recvKind == hir.ReceiverByRefMut, Place: place},
		}))
		recv = mir.CopyOf(mir.Place{Local: temp})
	} else {
		op, err := l.lowerExpr(e.Receiver)
		if err != nil {
			return mir.Operand{}, err
		}
		recv = op
	}

	rest, err := l.lowerArgs(e.MethodArgs)
	if err != nil {
		return mir.Operand{}, err
	}
	args := append([]mir.Operand{recv}, rest...)

	typeArgs := l.inferCalleeTypeArgs(e.ResolvedMethod, e.MethodArgs)
	callee := mir.Callee{Kind: mir.CalleeDirect, Def: l.mono(e.ResolvedMethod, typeArgs)}
	return l.emitCall(id, e.Span, callee, args)
}

func (l *funcLowerer) lowerArgs(argIDs []hir.ExprId) ([]mir.Operand, error) {
	args := make([]mir.Operand, len(argIDs))
	for i, a := range argIDs {
		op, err := l.lowerExpr(a)
		if err != nil {
			return nil, err
		}
		args[i] = op
	}
	return args, nil
}

// lowerCallee resolves a call's Callee expression to a mir.Callee: direct
// when it names a function definition, indirect (through its runtime
// value) otherwise. argIDs is the call's value arguments, used only to
// recover a generic callee's type arguments (inferCalleeTypeArgs).
func (l *funcLowerer) lowerCallee(calleeID hir.ExprId, argIDs []hir.ExprId) (mir.Callee, error) {
	ce := l.m.Expr(calleeID)
	if ce != nil && ce.Kind == hir.ExprVariable && ce.Ref.IsValid() {
		d := l.m.Def(ce.Ref)
		if d != nil && (d.Kind == hir.DefFunction || d.Kind == hir.DefExternalFunction) {
			typeArgs := l.inferCalleeTypeArgs(ce.Ref, argIDs)
			return mir.Callee{Kind: mir.CalleeDirect, Def: l.mono(ce.Ref, typeArgs)}, nil
		}
	}
	val, err := l.lowerExpr(calleeID)
	if err != nil {
		return mir.Callee{}, err
	}
	return mir.Callee{Kind: mir.CalleeIndirect, Value: val}, nil
}

// inferCalleeTypeArgs recovers def's type arguments at this call site from
// its arguments' already-inferred types (mono.InferTypeArgs), when def
// names a generic function; nil otherwise (mono.Monomorphize then returns
// def unchanged, exactly as it does for an ordinary non-generic call).
func (l *funcLowerer) inferCalleeTypeArgs(def hir.DefId, argIDs []hir.ExprId) []types.TyId {
	d := l.m.Def(def)
	if d == nil || d.Function == nil || len(d.Function.TypeParams) == 0 {
		return nil
	}
	argTypes := make([]types.TyId, len(argIDs))
	for i, a := range argIDs {
		argTypes[i] = l.exprType(a)
	}
	return mono.InferTypeArgs(l.ctx, d.Function, argTypes)
}

// emitCall lowers a call site's RValueCall (the common in-place-call-as-
// value shape; CallTerm exists in internal/mir for a future need this
// core's straight-line calls never exercise — see its doc comment).
func (l *funcLowerer) emitCall(id hir.ExprId, span source.Span, callee mir.Callee, args []mir.Operand) (mir.Operand, error) {
	ty := l.exprType(id)
	temp := l.newTemp(ty, span)
	l.emit(mir.Assign(mir.Place{Local: temp}, mir.RValue{
		Kind: mir.RValueCall,
		Call: mir.CallRValue{Callee: callee, Args: args},
	}))
	if l.isUnitType(ty) {
		return l.unitOperand(), nil
	}
	return mir.CopyOf(mir.Place{Local: temp}), nil
}

// lowerClosure builds the struct-aggregate-of-captures spec.md §4.7 calls
// for; invoking the closure through a generated thunk is out of this
// core's scope (the same deferral spec.md makes for closure ABI), so the
// aggregate is the full extent of closure lowering here.
func (l *funcLowerer) lowerClosure(id hir.ExprId, e *hir.Expr) (mir.Operand, error) {
	cl := e.Closure
	ty := l.exprType(id)
	if cl == nil {
		return l.unitOperand(), nil
	}
	operands := make([]mir.Operand, len(cl.Captures))
	for i, c := range cl.Captures {
		local := l.ensureLocal(c.Def, l.m.DefName(c.Def), l.ctx.LocalTypes[c.Def], e.Span)
		if c.ByRef {
			ref := l.newTemp(ty, e.Span)
			l.emit(mir.Assign(mir.Place{Local: ref}, mir.RValue{
				Kind: mir.RValueRef,
				Ref:  mir.RefOp{Mut: false, Place: mir.Place{Local: local}},
			}))
			operands[i] = mir.CopyOf(mir.Place{Local: ref})
		} else {
			operands[i] = mir.CopyOf(mir.Place{Local: local})
		}
	}
	temp := l.newTemp(ty, e.Span)
	l.emit(mir.Assign(mir.Place{Local: temp}, mir.RValue{
		Kind: mir.RValueAggregate,
		Aggregate: mir.Aggregate{
			Kind:     mir.AggregateClosure,
			Type:     ty,
			Operands: operands,
		},
	}))
	return mir.CopyOf(mir.Place{Local: temp}), nil
}
