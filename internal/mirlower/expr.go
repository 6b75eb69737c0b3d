package mirlower

import (
	"fmt"

	"corec/internal/hir"
	"corec/internal/mir"
)

// lowerExpr lowers one HIR expression to an operand carrying its value,
// emitting whatever statements/terminators it needs into the current
// block as a side effect. Control-flow-shaped expressions (if/match/
// block) live in control_flow.go and match.go; everything else is here.
func (l *funcLowerer) lowerExpr(id hir.ExprId) (mir.Operand, error) {
	if l.curBlock().Terminated() {
		return l.unitOperand(), nil
	}
	e := l.m.Expr(id)
	if e == nil {
		return mir.Operand{}, fmt.Errorf("mirlower: nil expr %d", id)
	}

	switch e.Kind {
	case hir.ExprLiteral:
		return l.lowerLiteral(id, e), nil

	case hir.ExprVariable:
		local := l.ensureLocal(e.Ref, e.Name, l.ctx.LocalTypes[e.Ref], e.Span)
		return mir.CopyOf(mir.Place{Local: local}), nil

	case hir.ExprCall:
		return l.lowerCall(id, e)

	case hir.ExprMethodCall:
		return l.lowerMethodCall(id, e)

	case hir.ExprBlock:
		return l.lowerBlockExpr(id, e)

	case hir.ExprIf:
		return l.lowerIfExpr(id, e)

	case hir.ExprMatch:
		return l.lowerMatchExpr(id, e)

	case hir.ExprReturn:
		return l.lowerReturnExpr(e)

	case hir.ExprAggregate:
		return l.lowerAggregate(id, e)

	case hir.ExprReference:
		place, err := l.lowerPlace(e.Inner)
		if err != nil {
			return mir.Operand{}, err
		}
		temp := l.newTemp(l.exprType(id), e.Span)
		l.emit(mir.Assign(mir.Place{Local: temp}, mir.RValue{
			Kind: mir.RValueRef,
			Ref:  mir.RefOp{Mut: e.Mut, Place: place},
		}))
		return mir.CopyOf(mir.Place{Local: temp}), nil

	case hir.ExprDereference:
		place, err := l.lowerPlace(id)
		if err != nil {
			return mir.Operand{}, err
		}
		return mir.CopyOf(place), nil

	case hir.ExprClosure:
		return l.lowerClosure(id, e)

	case hir.ExprAssign:
		dst, err := l.lowerPlace(e.Target)
		if err != nil {
			return mir.Operand{}, err
		}
		rhs, err := l.lowerExpr(e.RHS)
		if err != nil {
			return mir.Operand{}, err
		}
		l.emit(mir.Assign(dst, mir.UseOf(rhs)))
		return l.unitOperand(), nil

	case hir.ExprBinaryOp:
		return l.lowerBinaryOp(id, e)

	case hir.ExprUnaryOp:
		operand, err := l.lowerExpr(e.Operand)
		if err != nil {
			return mir.Operand{}, err
		}
		temp := l.newTemp(l.exprType(id), e.Span)
		l.emit(mir.Assign(mir.Place{Local: temp}, mir.RValue{
			Kind:  mir.RValueUnaryOp,
			Unary: mir.UnOp{Op: e.UnOp, Operand: operand},
		}))
		return mir.CopyOf(mir.Place{Local: temp}), nil

	case hir.ExprFieldAccess, hir.ExprIndex:
		place, err := l.lowerPlace(id)
		if err != nil {
			return mir.Operand{}, err
		}
		return mir.CopyOf(place), nil

	default:
		return l.unitOperand(), nil
	}
}

func (l *funcLowerer) lowerLiteral(id hir.ExprId, e *hir.Expr) mir.Operand {
	lit := e.Literal
	b := l.ctx.Types.Builtins()
	if lit == nil {
		return l.unitOperand()
	}
	switch lit.Kind {
	case hir.LitInt:
		ty := l.exprType(id)
		if !ty.IsValid() {
			ty = b.Int
		}
		return mir.ConstOf(mir.Const{Kind: mir.ConstInt, Type: ty, IntValue: lit.Int})
	case hir.LitFloat:
		return mir.ConstOf(mir.Const{Kind: mir.ConstFloat, Type: b.Float, FloatValue: lit.Float})
	case hir.LitBool:
		return mir.ConstOf(mir.Const{Kind: mir.ConstBool, Type: b.Bool, BoolValue: lit.Bool})
	case hir.LitString:
		s, _ := l.strings.Lookup(lit.Str)
		return mir.ConstOf(mir.Const{Kind: mir.ConstString, Type: b.String, StringValue: s})
	default:
		return l.unitOperand()
	}
}

// lowerBinaryOp lowers e.LHS <op> e.RHS. && and || need short-circuit
// control flow (spec.md §4.3's Bool operators), so they branch instead of
// emitting a plain RValueBinaryOp.
func (l *funcLowerer) lowerBinaryOp(id hir.ExprId, e *hir.Expr) (mir.Operand, error) {
	if e.BinOp == hir.OpAnd || e.BinOp == hir.OpOr {
		return l.lowerShortCircuit(id, e)
	}
	left, err := l.lowerExpr(e.LHS)
	if err != nil {
		return mir.Operand{}, err
	}
	right, err := l.lowerExpr(e.RHS)
	if err != nil {
		return mir.Operand{}, err
	}
	temp := l.newTemp(l.exprType(id), e.Span)
	l.emit(mir.Assign(mir.Place{Local: temp}, mir.RValue{
		Kind:   mir.RValueBinaryOp,
		Binary: mir.BinOp{Op: e.BinOp, Left: left, Right: right},
	}))
	return mir.CopyOf(mir.Place{Local: temp}), nil
}

// lowerShortCircuit lowers `a && b` to `if a { b } else { false }` and
// `a || b` to `if a { true } else { b }`, each via the same join-block
// shape lowerIfExpr uses.
func (l *funcLowerer) lowerShortCircuit(id hir.ExprId, e *hir.Expr) (mir.Operand, error) {
	left, err := l.lowerExpr(e.LHS)
	if err != nil {
		return mir.Operand{}, err
	}
	ty := l.exprType(id)
	result := l.newTemp(ty, e.Span)

	rhsBB := l.newBlock()
	shortBB := l.newBlock()
	joinBB := l.newBlock()

	if e.BinOp == hir.OpAnd {
		l.branchOnBool(left, rhsBB, shortBB)
	} else {
		l.branchOnBool(left, shortBB, rhsBB)
	}

	l.startBlock(rhsBB)
	right, err := l.lowerExpr(e.RHS)
	if err != nil {
		return mir.Operand{}, err
	}
	if !l.curBlock().Terminated() {
		l.emit(mir.Assign(mir.Place{Local: result}, mir.UseOf(right)))
		l.setTerm(mir.Terminator{Kind: mir.TermGoto, Goto: mir.GotoTerm{Target: joinBB}})
	}

	l.startBlock(shortBB)
	shortValue := e.BinOp == hir.OpOr
	l.emit(mir.Assign(mir.Place{Local: result}, mir.UseOf(mir.ConstOf(mir.Const{Kind: mir.ConstBool, Type: l.ctx.Types.Builtins().Bool, BoolValue: shortValue}))))
	l.setTerm(mir.Terminator{Kind: mir.TermGoto, Goto: mir.GotoTerm{Target: joinBB}})

	l.startBlock(joinBB)
	return mir.CopyOf(mir.Place{Local: result}), nil
}

// branchOnBool emits a SwitchInt on cond's 0/1 value: spec.md §4.7's
// if-lowering recipe (`SwitchInt{0 -> else, otherwise -> then}`), reused
// here for every other boolean branch point (short-circuit operators,
// pattern-match guards and tests).
func (l *funcLowerer) branchOnBool(cond mir.Operand, whenTrue, whenFalse mir.BlockID) {
	l.setTerm(mir.Terminator{
		Kind: mir.TermSwitchInt,
		SwitchInt: mir.SwitchIntTerm{
			Discriminant: cond,
			Targets:      []mir.SwitchIntCase{{Value: 0, Target: whenFalse}},
			Otherwise:    whenTrue,
		},
	})
}

// lowerExprForSideEffects lowers an expression purely for its side
// effects, discarding the resulting operand.
func (l *funcLowerer) lowerExprForSideEffects(id hir.ExprId) error {
	_, err := l.lowerExpr(id)
	return err
}
