package mirlower

import (
	"corec/internal/hir"
	"corec/internal/mir"
)

// lowerIfExpr lowers `if cond { then } else { else }` to spec.md §4.7's
// recipe exactly: the condition into a temp, a SwitchInt{0 -> else,
// otherwise -> then}, and a join block the result (if any) is read back
// from. internal/mir deliberately has no dedicated If terminator (see
// internal/mir/terminator.go) so this is the only lowering this core has
// for a conditional branch.
func (l *funcLowerer) lowerIfExpr(id hir.ExprId, e *hir.Expr) (mir.Operand, error) {
	cond, err := l.lowerExpr(e.Cond)
	if err != nil {
		return mir.Operand{}, err
	}

	ty := l.exprType(id)
	hasResult := !l.isUnitType(ty)
	var result mir.LocalID
	if hasResult {
		result = l.newTemp(ty, e.Span)
	}

	thenBB := l.newBlock()
	elseBB := l.newBlock()
	joinBB := l.newBlock()
	l.branchOnBool(cond, thenBB, elseBB)

	l.startBlock(thenBB)
	if err := l.lowerBranchArm(e.Then, hasResult, result, joinBB); err != nil {
		return mir.Operand{}, err
	}

	l.startBlock(elseBB)
	if e.Else.IsValid() {
		if err := l.lowerBranchArm(e.Else, hasResult, result, joinBB); err != nil {
			return mir.Operand{}, err
		}
	} else if !l.curBlock().Terminated() {
		l.setTerm(mir.Terminator{Kind: mir.TermGoto, Goto: mir.GotoTerm{Target: joinBB}})
	}

	l.startBlock(joinBB)
	if !hasResult {
		return l.unitOperand(), nil
	}
	return mir.CopyOf(mir.Place{Local: result}), nil
}

// lowerBranchArm lowers one if/match arm body, storing its value into
// result (when the expression as a whole produces one) before joining.
func (l *funcLowerer) lowerBranchArm(body hir.ExprId, hasResult bool, result mir.LocalID, joinBB mir.BlockID) error {
	op, err := l.lowerExpr(body)
	if err != nil {
		return err
	}
	if l.curBlock().Terminated() {
		return nil
	}
	if hasResult {
		l.emit(mir.Assign(mir.Place{Local: result}, mir.UseOf(op)))
	}
	l.setTerm(mir.Terminator{Kind: mir.TermGoto, Goto: mir.GotoTerm{Target: joinBB}})
	return nil
}

// lowerBlockExpr lowers `{ stmts...; tail }`: every statement in order,
// then the tail expression's value (or Unit if the block has none).
func (l *funcLowerer) lowerBlockExpr(_ hir.ExprId, e *hir.Expr) (mir.Operand, error) {
	for _, stID := range e.Stmts {
		if l.curBlock().Terminated() {
			return l.unitOperand(), nil
		}
		if err := l.lowerStmt(stID); err != nil {
			return mir.Operand{}, err
		}
	}
	if l.curBlock().Terminated() {
		return l.unitOperand(), nil
	}
	if !e.Tail.IsValid() {
		return l.unitOperand(), nil
	}
	return l.lowerExpr(e.Tail)
}

// lowerReturnExpr lowers `return value` / bare `return` directly to a
// TermReturn on the current block. Once emitted, the block is terminated,
// so any HIR statement/tail expression lexically following the return in
// the same or an enclosing block is skipped by the Terminated() guard at
// the top of lowerExpr/lowerStmt/lowerBlockExpr — spec.md's MIR model
// allows any number of Return-terminated blocks, so no single function
// exit block is needed.
func (l *funcLowerer) lowerReturnExpr(e *hir.Expr) (mir.Operand, error) {
	if !e.Value.IsValid() {
		l.setTerm(mir.Terminator{Kind: mir.TermReturn, Return: mir.ReturnTerm{HasValue: false}})
		return l.unitOperand(), nil
	}
	val, err := l.lowerExpr(e.Value)
	if err != nil {
		return mir.Operand{}, err
	}
	if l.curBlock().Terminated() {
		return l.unitOperand(), nil
	}
	l.setTerm(mir.Terminator{Kind: mir.TermReturn, Return: mir.ReturnTerm{HasValue: true, Value: val}})
	return l.unitOperand(), nil
}

func (l *funcLowerer) lowerStmt(id hir.StmtId) error {
	st := l.m.Stmt(id)
	if st == nil {
		return nil
	}
	switch st.Kind {
	case hir.StmtLet:
		return l.lowerLetStmt(st)
	case hir.StmtExpr:
		return l.lowerExprForSideEffects(st.Expr)
	default:
		return nil
	}
}

func (l *funcLowerer) lowerLetStmt(st *hir.Stmt) error {
	if st.Let == nil {
		return nil
	}
	lt := st.Let
	if !lt.Init.IsValid() {
		return nil
	}
	val, err := l.lowerExpr(lt.Init)
	if err != nil {
		return err
	}
	if l.curBlock().Terminated() {
		return nil
	}
	return l.bindPatternToValue(lt.Pattern, val)
}

// bindPatternToValue assigns an already-computed value into the local(s)
// a `let` pattern introduces. Simple `let x = ...` is a single binding;
// `let (a, b) = ...` walks the tuple pattern, materializing the value into
// a place first so each element can be read back with a Field projection.
func (l *funcLowerer) bindPatternToValue(patID hir.PatId, val mir.Operand) error {
	p := l.m.Pat(patID)
	if p == nil {
		return nil
	}
	switch p.Kind {
	case hir.PatWildcard:
		return nil
	case hir.PatBinding:
		local := l.ensureLocal(p.Def, p.Name, l.ctx.LocalTypes[p.Def], p.Span)
		l.emit(mir.Assign(mir.Place{Local: local}, mir.UseOf(val)))
		if p.Sub.IsValid() {
			return l.bindPatternToValue(p.Sub, mir.CopyOf(mir.Place{Local: local}))
		}
		return nil
	case hir.PatTuple:
		base := l.operandToLocal(val, l.ctx.Types.Builtins().Error, p.Span)
		for i, elem := range p.Elements {
			if err := l.bindPatternToValue(elem, mir.CopyOf(mir.Field(mir.Place{Local: base}, i))); err != nil {
				return err
			}
		}
		return nil
	default:
		// Struct/enum/or/literal/range patterns in `let` position are
		// refutable and out of this core's scope (the surface grammar
		// restricts `let` to irrefutable patterns); nothing further to
		// bind.
		return nil
	}
}
