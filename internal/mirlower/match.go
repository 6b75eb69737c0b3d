package mirlower

import (
	"corec/internal/exhaustive"
	"corec/internal/hir"
	"corec/internal/mir"
	"corec/internal/source"
)

// lowerMatchExpr lowers `match scrutinee { arms... }`. It re-runs
// exhaustive.CheckMatch (spec.md §4.5) to get the arm-reachability
// diagnostics and the set of missing-pattern witnesses in one place with
// the codegen that needs to agree with it — the "MIR lowering consumes
// this analysis" note spec.md §4.7 makes. The decision procedure itself
// is a linear sequence of per-arm pattern tests in source order rather
// than the compiled decision tree a production backend would want: always
// correct, simpler to ground in this core's matrix-free Place model, at
// the cost of re-testing shared prefixes across arms. Documented as a
// deliberate simplification in DESIGN.md.
func (l *funcLowerer) lowerMatchExpr(id hir.ExprId, e *hir.Expr) (mir.Operand, error) {
	scrutTy := l.exprType(e.Scrutinee)
	exhaustive.CheckMatch(l.ctx, l.m, l.strings, l.bag, scrutTy, e.Arms, e.Span)

	scrutVal, err := l.lowerExpr(e.Scrutinee)
	if err != nil {
		return mir.Operand{}, err
	}
	scrutLocal := l.operandToLocal(scrutVal, scrutTy, e.Span)
	scrutPlace := mir.Place{Local: scrutLocal}

	ty := l.exprType(id)
	hasResult := !l.isUnitType(ty)
	var result mir.LocalID
	if hasResult {
		result = l.newTemp(ty, e.Span)
	}
	joinBB := l.newBlock()
	failBB := l.newBlock()

	for i, arm := range e.Arms {
		onFail := failBB
		if i < len(e.Arms)-1 {
			onFail = l.newBlock()
		}
		if err := l.emitPatternTest(arm.Pattern, scrutPlace, onFail); err != nil {
			return mir.Operand{}, err
		}
		if !l.curBlock().Terminated() {
			if arm.Guard.IsValid() {
				cond, err := l.lowerExpr(arm.Guard)
				if err != nil {
					return mir.Operand{}, err
				}
				bodyBB := l.newBlock()
				l.branchOnBool(cond, bodyBB, onFail)
				l.startBlock(bodyBB)
			}
			if err := l.lowerBranchArm(arm.Body, hasResult, result, joinBB); err != nil {
				return mir.Operand{}, err
			}
		}
		if i < len(e.Arms)-1 {
			l.startBlock(onFail)
		}
	}

	l.startBlock(failBB)
	l.setTerm(mir.Terminator{Kind: mir.TermUnreachable})

	l.startBlock(joinBB)
	if !hasResult {
		return l.unitOperand(), nil
	}
	return mir.CopyOf(mir.Place{Local: result}), nil
}

// emitPatternTest emits whatever blocks/branches are needed to test place
// against pat, leaving l.cur positioned at the "matched" continuation on
// success; any failure path branches directly to onFail. Bindings
// introduced along the way are assigned immediately rather than deferred,
// since a later mismatch simply abandons this arm's locals unread.
func (l *funcLowerer) emitPatternTest(patID hir.PatId, place mir.Place, onFail mir.BlockID) error {
	p := l.m.Pat(patID)
	if p == nil {
		return nil
	}
	switch p.Kind {
	case hir.PatWildcard:
		return nil

	case hir.PatBinding:
		local := l.ensureLocal(p.Def, p.Name, l.ctx.LocalTypes[p.Def], p.Span)
		l.emit(mir.Assign(mir.Place{Local: local}, mir.UseOf(mir.CopyOf(place))))
		if p.Sub.IsValid() {
			return l.emitPatternTest(p.Sub, place, onFail)
		}
		return nil

	case hir.PatLiteral:
		return l.testLiteral(p, place, onFail)

	case hir.PatRange:
		return l.testRange(p, place, onFail)

	case hir.PatTuple:
		for i, elem := range p.Elements {
			if err := l.emitPatternTest(elem, mir.Field(place, i), onFail); err != nil {
				return err
			}
			if l.curBlock().Terminated() {
				return nil
			}
		}
		return nil

	case hir.PatStruct:
		for _, f := range p.Fields {
			idx := l.structFieldIndex(p.StructDef, f.Name)
			if err := l.emitPatternTest(f.Pattern, mir.Field(place, idx), onFail); err != nil {
				return err
			}
			if l.curBlock().Terminated() {
				return nil
			}
		}
		return nil

	case hir.PatEnumVariant:
		tag := mir.CopyOf(mir.Field(place, 0))
		cond := l.emitCompareInt(tag, int64(p.VariantIdx), p.Span)
		okBB := l.newBlock()
		l.branchOnBool(cond, okBB, onFail)
		l.startBlock(okBB)
		for i, sp := range p.SubPats {
			if err := l.emitPatternTest(sp, mir.Field(place, i+1), onFail); err != nil {
				return err
			}
			if l.curBlock().Terminated() {
				return nil
			}
		}
		return nil

	case hir.PatOr:
		matchedBB := l.newBlock()
		for i, alt := range p.Alternatives {
			altFail := onFail
			if i < len(p.Alternatives)-1 {
				altFail = l.newBlock()
			}
			if err := l.emitPatternTest(alt, place, altFail); err != nil {
				return err
			}
			if !l.curBlock().Terminated() {
				l.setTerm(mir.Terminator{Kind: mir.TermGoto, Goto: mir.GotoTerm{Target: matchedBB}})
			}
			if i < len(p.Alternatives)-1 {
				l.startBlock(altFail)
			}
		}
		l.startBlock(matchedBB)
		return nil

	default:
		return nil
	}
}

// structFieldIndex looks a named field up directly against the pattern's
// own StructDef, used when the scrutinee's inferred type isn't available
// to fieldIndex's expression-based lookup (pattern positions have no
// ExprId of their own to read a type from).
func (l *funcLowerer) structFieldIndex(structDef hir.DefId, fieldName source.StringID) int {
	d := l.m.Def(structDef)
	if d == nil || d.Struct == nil {
		return 0
	}
	for i, f := range d.Struct.Fields {
		if f.Name == fieldName {
			return i
		}
	}
	return 0
}

func (l *funcLowerer) testLiteral(p *hir.Pattern, place mir.Place, onFail mir.BlockID) error {
	if p.Literal == nil {
		return nil
	}
	rhs := l.literalOperand(p.Literal)
	cond := l.emitCompare(hir.OpEq, mir.CopyOf(place), rhs, p.Span)
	okBB := l.newBlock()
	l.branchOnBool(cond, okBB, onFail)
	l.startBlock(okBB)
	return nil
}

func (l *funcLowerer) testRange(p *hir.Pattern, place mir.Place, onFail mir.BlockID) error {
	lo, hi := int64(minInt64Pat), int64(maxInt64Pat)
	if p.Start != nil {
		lo = p.Start.Int
	}
	if p.End != nil {
		hi = p.End.Int
		if !p.Inclusive {
			hi--
		}
	}
	b := l.ctx.Types.Builtins()
	geLo := l.emitCompare(hir.OpGreaterEq, mir.CopyOf(place), mir.ConstOf(mir.Const{Kind: mir.ConstInt, Type: b.Int, IntValue: lo}), p.Span)
	leHi := l.emitCompare(hir.OpLessEq, mir.CopyOf(place), mir.ConstOf(mir.Const{Kind: mir.ConstInt, Type: b.Int, IntValue: hi}), p.Span)
	both := l.newTemp(b.Bool, p.Span)
	l.emit(mir.Assign(mir.Place{Local: both}, mir.RValue{Kind: mir.RValueBinaryOp, Binary: mir.BinOp{Op: hir.OpAnd, Left: geLo, Right: leHi}}))
	okBB := l.newBlock()
	l.branchOnBool(mir.CopyOf(mir.Place{Local: both}), okBB, onFail)
	l.startBlock(okBB)
	return nil
}

const (
	minInt64Pat = -1 << 63
	maxInt64Pat = 1<<63 - 1
)

func (l *funcLowerer) emitCompare(op hir.BinaryOp, left, right mir.Operand, span source.Span) mir.Operand {
	temp := l.newTemp(l.ctx.Types.Builtins().Bool, span)
	l.emit(mir.Assign(mir.Place{Local: temp}, mir.RValue{Kind: mir.RValueBinaryOp, Binary: mir.BinOp{Op: op, Left: left, Right: right}}))
	return mir.CopyOf(mir.Place{Local: temp})
}

func (l *funcLowerer) emitCompareInt(left mir.Operand, value int64, span source.Span) mir.Operand {
	b := l.ctx.Types.Builtins()
	return l.emitCompare(hir.OpEq, left, mir.ConstOf(mir.Const{Kind: mir.ConstInt, Type: b.Int32, IntValue: value}), span)
}

// literalOperand turns a pattern's literal payload into a constant
// operand, independent of any ExprId (patterns carry their literal
// inline, unlike expressions).
func (l *funcLowerer) literalOperand(lit *hir.Literal) mir.Operand {
	b := l.ctx.Types.Builtins()
	switch lit.Kind {
	case hir.LitInt:
		return mir.ConstOf(mir.Const{Kind: mir.ConstInt, Type: b.Int, IntValue: lit.Int})
	case hir.LitFloat:
		return mir.ConstOf(mir.Const{Kind: mir.ConstFloat, Type: b.Float, FloatValue: lit.Float})
	case hir.LitBool:
		return mir.ConstOf(mir.Const{Kind: mir.ConstBool, Type: b.Bool, BoolValue: lit.Bool})
	case hir.LitString:
		s, _ := l.strings.Lookup(lit.Str)
		return mir.ConstOf(mir.Const{Kind: mir.ConstString, Type: b.String, StringValue: s})
	default:
		return mir.ConstOf(mir.Const{Kind: mir.ConstUnit, Type: b.Unit})
	}
}
