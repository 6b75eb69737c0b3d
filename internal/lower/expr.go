package lower

import (
	"corec/internal/cst"
	"corec/internal/hir"
	"corec/internal/source"
)

var binaryOps = map[string]hir.BinaryOp{
	"+": hir.OpAdd, "-": hir.OpSub, "*": hir.OpMul, "/": hir.OpDiv, "%": hir.OpMod,
	"==": hir.OpEq, "!=": hir.OpNotEq, "<": hir.OpLess, "<=": hir.OpLessEq,
	">": hir.OpGreater, ">=": hir.OpGreaterEq, "&&": hir.OpAnd, "||": hir.OpOr,
	"&": hir.OpBitAnd, "|": hir.OpBitOr, "^": hir.OpBitXor, "<<": hir.OpShl, ">>": hir.OpShr,
}

var unaryOps = map[string]hir.UnaryOp{
	"-": hir.OpNeg, "!": hir.OpNot,
}

// lowerExpr lowers an expression CST node to an ExprId.
func (l *Lowerer) lowerExpr(scope hir.ScopeId, n *cst.Node) hir.ExprId {
	if n == nil {
		return l.Module.NewExpr(hir.Expr{Kind: hir.ExprLiteral, Literal: &hir.Literal{Kind: hir.LitUnit}})
	}
	switch n.Kind {
	case cst.KindLiteral:
		lit := l.lowerLiteralFields(n)
		return l.Module.NewExpr(hir.Expr{Kind: hir.ExprLiteral, Span: n.Span, Literal: lit})

	case cst.KindIdentifier:
		name := l.intern(n.Text)
		eid := l.Module.NewExpr(hir.Expr{Kind: hir.ExprVariable, Span: n.Span, Name: name})
		if def, ok := l.Module.Scopes.Lookup(scope, name); ok {
			e := l.Module.Expr(eid)
			e.Ref = def
			l.Module.VarRefs[eid] = def
		} else {
			l.Module.AddPending(hir.Pending{
				Kind: hir.PendingVariable, Path: []source.StringID{name}, Scope: scope,
				Span: n.Span, ExprID: eid,
			})
		}
		return eid

	case cst.KindBinary:
		op, ok := binaryOps[n.Field("op")]
		if !ok {
			op = hir.OpAdd
		}
		lhs := l.lowerExpr(scope, n.ChildByRole("lhs"))
		rhs := l.lowerExpr(scope, n.ChildByRole("rhs"))
		return l.Module.NewExpr(hir.Expr{Kind: hir.ExprBinaryOp, Span: n.Span, BinOp: op, LHS: lhs, RHS: rhs})

	case cst.KindUnary:
		op, ok := unaryOps[n.Field("op")]
		if !ok {
			op = hir.OpNeg
		}
		operand := l.lowerExpr(scope, n.ChildByRole("operand"))
		return l.Module.NewExpr(hir.Expr{Kind: hir.ExprUnaryOp, Span: n.Span, UnOp: op, Operand: operand})

	case cst.KindCall:
		callee := l.lowerExpr(scope, n.ChildByRole("callee"))
		var args []hir.ExprId
		for _, a := range n.ChildrenByRole("arg") {
			args = append(args, l.lowerExpr(scope, a))
		}
		return l.Module.NewExpr(hir.Expr{Kind: hir.ExprCall, Span: n.Span, Callee: callee, Args: args})

	case cst.KindMethodCall:
		recv := l.lowerExpr(scope, n.ChildByRole("receiver"))
		method := l.intern(n.Field("method"))
		var args []hir.ExprId
		for _, a := range n.ChildrenByRole("arg") {
			args = append(args, l.lowerExpr(scope, a))
		}
		return l.Module.NewExpr(hir.Expr{
			Kind: hir.ExprMethodCall, Span: n.Span, Receiver: recv, Method: method, MethodArgs: args,
		})

	case cst.KindFieldAccess:
		recv := l.lowerExpr(scope, n.ChildByRole("receiver"))
		field := l.intern(n.Field("field"))
		return l.Module.NewExpr(hir.Expr{Kind: hir.ExprFieldAccess, Span: n.Span, Receiver: recv, Method: field})

	case cst.KindIndex:
		recv := l.lowerExpr(scope, n.ChildByRole("receiver"))
		idx := l.lowerExpr(scope, n.ChildByRole("index"))
		return l.Module.NewExpr(hir.Expr{Kind: hir.ExprIndex, Span: n.Span, Receiver: recv, Args: []hir.ExprId{idx}})

	case cst.KindReference:
		mut := n.Field("mut") == "true"
		inner := l.lowerExpr(scope, n.ChildByRole("inner"))
		return l.Module.NewExpr(hir.Expr{Kind: hir.ExprReference, Span: n.Span, Inner: inner, Mut: mut})

	case cst.KindDereference:
		inner := l.lowerExpr(scope, n.ChildByRole("inner"))
		return l.Module.NewExpr(hir.Expr{Kind: hir.ExprDereference, Span: n.Span, Inner: inner})

	case cst.KindIfExpression:
		cond := l.lowerExpr(scope, n.ChildByRole("condition"))
		then := l.lowerExpr(scope, n.ChildByRole("then"))
		var els hir.ExprId = hir.NoExprId
		if e := n.ChildByRole("else"); e != nil {
			els = l.lowerExpr(scope, e)
		}
		return l.Module.NewExpr(hir.Expr{Kind: hir.ExprIf, Span: n.Span, Cond: cond, Then: then, Else: els})

	case cst.KindMatchExpression:
		return l.lowerMatch(scope, n)

	case cst.KindBlock:
		return l.lowerBlock(scope, n)

	case cst.KindClosureExpression:
		return l.lowerClosure(scope, n)

	case cst.KindStructExpression:
		return l.lowerAggregate(scope, n, hir.AggStruct)

	case cst.KindTupleExpression:
		return l.lowerAggregate(scope, n, hir.AggTuple)

	case cst.KindArrayExpression:
		return l.lowerAggregate(scope, n, hir.AggArray)

	case cst.KindReturnStatement:
		var val hir.ExprId = hir.NoExprId
		if v := n.ChildByRole("value"); v != nil {
			val = l.lowerExpr(scope, v)
		}
		return l.Module.NewExpr(hir.Expr{Kind: hir.ExprReturn, Span: n.Span, Value: val})

	default:
		if assign := n.Field("assign"); assign == "true" {
			target := l.lowerExpr(scope, n.ChildByRole("target"))
			rhs := l.lowerExpr(scope, n.ChildByRole("value"))
			return l.Module.NewExpr(hir.Expr{Kind: hir.ExprAssign, Span: n.Span, Target: target, RHS: rhs})
		}
		span := l.placeholder(n, "an expression")
		return l.Module.NewExpr(hir.Expr{Kind: hir.ExprInvalid, Span: span})
	}
}

func (l *Lowerer) lowerBlock(scope hir.ScopeId, n *cst.Node) hir.ExprId {
	inner := l.Module.Scopes.Enter(hir.ScopeBlock, n.Span)
	defer l.Module.Scopes.Leave()

	var stmts []hir.StmtId
	for _, s := range n.ChildrenByRole("statement") {
		stmts = append(stmts, l.lowerStmt(inner, s))
	}
	var tail hir.ExprId = hir.NoExprId
	if t := n.ChildByRole("tail"); t != nil {
		tail = l.lowerExpr(inner, t)
	}
	return l.Module.NewExpr(hir.Expr{Kind: hir.ExprBlock, Span: n.Span, Stmts: stmts, Tail: tail})
}

func (l *Lowerer) lowerMatch(scope hir.ScopeId, n *cst.Node) hir.ExprId {
	scrutinee := l.lowerExpr(scope, n.ChildByRole("scrutinee"))
	var arms []hir.MatchArm
	for _, armNode := range n.ChildrenByRole("arm") {
		armScope := l.Module.Scopes.Enter(hir.ScopeMatchArm, armNode.Span)
		pat := l.lowerPattern(armScope, armNode.ChildByRole("pattern"))
		var guard hir.ExprId = hir.NoExprId
		if g := armNode.ChildByRole("guard"); g != nil {
			guard = l.lowerExpr(armScope, g)
		}
		body := l.lowerExpr(armScope, armNode.ChildByRole("body"))
		l.Module.Scopes.Leave()
		arms = append(arms, hir.MatchArm{Pattern: pat, Guard: guard, Body: body, Span: armNode.Span})
	}
	return l.Module.NewExpr(hir.Expr{Kind: hir.ExprMatch, Span: n.Span, Scrutinee: scrutinee, Arms: arms})
}

func (l *Lowerer) lowerClosure(scope hir.ScopeId, n *cst.Node) hir.ExprId {
	inner := l.Module.Scopes.Enter(hir.ScopeFunction, n.Span)
	defer l.Module.Scopes.Leave()

	var params []hir.Param
	for _, p := range n.ChildrenByRole("param") {
		name := l.intern(p.Field("name"))
		typ := l.lowerType(inner, p.ChildByRole("type"))
		def := l.Module.NewDef(hir.Definition{
			Kind: hir.DefLocal, Span: p.Span,
			Local: &hir.Local{Name: name, Mutable: p.Field("mut") == "true", Span: p.Span},
		})
		l.Module.Scopes.Bind(inner, name, def)
		params = append(params, hir.Param{Name: name, Type: typ, Span: p.Span, Def: def})
	}
	ret := l.lowerType(inner, n.ChildByRole("return_type"))

	body := l.lowerExpr(inner, n.ChildByRole("body"))
	paramDefs := make(map[hir.DefId]bool, len(params))
	for _, p := range params {
		paramDefs[p.Def] = true
	}
	captures := collectCaptures(l.Module, body, paramDefs)

	eid := l.Module.NewExpr(hir.Expr{
		Kind: hir.ExprClosure, Span: n.Span,
		Closure: &hir.Closure{Params: params, ReturnType: ret, Captures: captures, Body: body},
	})
	return eid
}

// collectCaptures walks the lowered body's variable references and records
// every reference resolving to a Local DefId not bound by the closure's own
// parameters, let-bindings or match-arm patterns (spec.md §4.1: "collect free variables during
// body lowering and record them as explicit captures").
func collectCaptures(m *hir.Module, body hir.ExprId, localDefs map[hir.DefId]bool) []hir.ClosureCapture {
	seen := make(map[hir.DefId]bool)
	var captures []hir.ClosureCapture
	var walk func(id hir.ExprId)
	var walkPat func(id hir.PatId)
	walkPat = func(id hir.PatId) {
		if !id.IsValid() {
			return
		}
		p := m.Pat(id)
		if p == nil {
			return
		}
		if p.Kind == hir.PatBinding {
			localDefs[p.Def] = true
		}
		subs := append(append([]hir.PatId{p.Sub}, p.Elements...), p.SubPats...)
		subs = append(subs, p.Alternatives...)
		for _, f := range p.Fields {
			subs = append(subs, f.Pattern)
		}
		for _, s := range subs {
			walkPat(s)
		}
	}
	walk = func(id hir.ExprId) {
		e := m.Expr(id)
		if e == nil || !id.IsValid() {
			return
		}
		switch e.Kind {
		case hir.ExprVariable:
			if e.Ref.IsValid() && !localDefs[e.Ref] && !seen[e.Ref] {
				d := m.Def(e.Ref)
				if d != nil && d.Kind == hir.DefLocal {
					seen[e.Ref] = true
					captures = append(captures, hir.ClosureCapture{Def: e.Ref})
				}
			}
		case hir.ExprBlock:
			for _, s := range e.Stmts {
				st := m.Stmt(s)
				if st == nil {
					continue
				}
				if st.Kind == hir.StmtLet {
					if st.Let.Init.IsValid() {
						walk(st.Let.Init)
					}
					walkPat(st.Let.Pattern)
				} else {
					walk(st.Expr)
				}
			}
			walk(e.Tail)
		case hir.ExprIf:
			walk(e.Cond)
			walk(e.Then)
			walk(e.Else)
		case hir.ExprMatch:
			walk(e.Scrutinee)
			for _, arm := range e.Arms {
				walkPat(arm.Pattern)
				walk(arm.Guard)
				walk(arm.Body)
			}
		case hir.ExprCall:
			walk(e.Callee)
			for _, a := range e.Args {
				walk(a)
			}
		case hir.ExprMethodCall:
			walk(e.Receiver)
			for _, a := range e.MethodArgs {
				walk(a)
			}
		case hir.ExprFieldAccess:
			walk(e.Receiver)
		case hir.ExprIndex:
			walk(e.Receiver)
			for _, a := range e.Args {
				walk(a)
			}
		case hir.ExprReference, hir.ExprDereference:
			walk(e.Inner)
		case hir.ExprAssign:
			walk(e.Target)
			walk(e.RHS)
		case hir.ExprBinaryOp:
			walk(e.LHS)
			walk(e.RHS)
		case hir.ExprUnaryOp:
			walk(e.Operand)
		case hir.ExprReturn:
			walk(e.Value)
		case hir.ExprAggregate:
			if e.Aggregate != nil {
				for _, f := range e.Aggregate.Fields {
					walk(f.Value)
				}
			}
		case hir.ExprClosure:
			if e.Closure != nil {
				walk(e.Closure.Body)
			}
		}
	}
	walk(body)
	return captures
}

func (l *Lowerer) lowerAggregate(scope hir.ScopeId, n *cst.Node, kind hir.AggregateKind) hir.ExprId {
	var def hir.DefId
	var variantIdx uint32
	if kind == hir.AggStruct || kind == hir.AggEnumVariant {
		name := l.intern(n.Text)
		def, _ = l.Module.Scopes.Lookup(scope, name)
	}
	var fields []hir.AggregateField
	for _, f := range n.ChildrenByRole("field") {
		fname := l.intern(f.Field("name"))
		val := l.lowerExpr(scope, f.ChildByRole("value"))
		fields = append(fields, hir.AggregateField{Name: fname, Value: val})
	}
	for _, el := range n.ChildrenByRole("element") {
		fields = append(fields, hir.AggregateField{Value: l.lowerExpr(scope, el)})
	}
	return l.Module.NewExpr(hir.Expr{
		Kind: hir.ExprAggregate, Span: n.Span,
		Aggregate: &hir.Aggregate{Kind: kind, Def: def, VariantIdx: variantIdx, Fields: fields},
	})
}
