package lower

import (
	"testing"

	"corec/internal/cst"
	"corec/internal/diag"
	"corec/internal/hir"
	"corec/internal/source"
)

var b cst.Builder

func newLowerer() (*Lowerer, *source.Interner, *diag.Bag) {
	strings := source.NewInterner()
	bag := diag.NewBag(64)
	module := hir.NewModule()
	return New(module, strings, bag), strings, bag
}

// TestLowerFileRegistersItemsInSourceOrder checks spec.md §4.1's two-phase
// registration: every top-level item gets a DefId and lands in Module.Items
// in source order, before any body is lowered.
func TestLowerFileRegistersItemsInSourceOrder(t *testing.T) {
	l, _, bag := newLowerer()

	root := b.Node(cst.KindFile, source.Span{}, "",
		cst.Child{Role: "item", Node: b.Leaf(cst.KindStructItem, source.Span{}, "").WithField("name", "Point")},
		cst.Child{Role: "item", Node: b.Leaf(cst.KindFunctionItem, source.Span{}, "").WithField("name", "main")},
	)
	l.LowerFile(root)

	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	if len(l.Module.Items) != 2 {
		t.Fatalf("expected 2 registered items, got %d", len(l.Module.Items))
	}
	first := l.Module.Def(l.Module.Items[0])
	if first.Kind != hir.DefStruct {
		t.Fatalf("first item kind = %v, want DefStruct", first.Kind)
	}
	second := l.Module.Def(l.Module.Items[1])
	if second.Kind != hir.DefFunction {
		t.Fatalf("second item kind = %v, want DefFunction", second.Kind)
	}
}

// TestLowerFunctionForwardReferencesSibling exercises the two-phase
// registration's reason for existing: a function body can call a sibling
// declared later in the same file.
func TestLowerFunctionForwardReferencesSibling(t *testing.T) {
	l, _, bag := newLowerer()

	calleeBody := b.Node(cst.KindBlock, source.Span{}, "")
	callNode := b.Node(cst.KindCall, source.Span{}, "",
		cst.Child{Role: "callee", Node: b.Leaf(cst.KindIdentifier, source.Span{}, "helper")},
	)
	callerBody := b.Node(cst.KindBlock, source.Span{}, "",
		cst.Child{Role: "statement", Node: b.Node(cst.KindExprStatement, source.Span{}, "",
			cst.Child{Role: "expr", Node: callNode},
		)},
	)

	root := b.Node(cst.KindFile, source.Span{}, "",
		cst.Child{Role: "item", Node: b.Node(cst.KindFunctionItem, source.Span{}, "",
			cst.Child{Role: "body", Node: callerBody},
		).WithField("name", "caller")},
		cst.Child{Role: "item", Node: b.Node(cst.KindFunctionItem, source.Span{}, "",
			cst.Child{Role: "body", Node: calleeBody},
		).WithField("name", "helper")},
	)
	l.LowerFile(root)

	if bag.HasErrors() {
		t.Fatalf("forward reference to a sibling function must resolve cleanly, got %+v", bag.Items())
	}
	if len(l.Module.Pending) != 0 {
		t.Fatalf("a same-file forward reference must resolve during lowering, not via Pending: %+v", l.Module.Pending)
	}
}

// TestLowerDuplicateDefinitionInSameScopeReportsError exercises
// bindChecked's duplicate-definition diagnostic (spec.md §4.2).
func TestLowerDuplicateDefinitionInSameScopeReportsError(t *testing.T) {
	l, _, bag := newLowerer()

	root := b.Node(cst.KindFile, source.Span{}, "",
		cst.Child{Role: "item", Node: b.Leaf(cst.KindFunctionItem, source.Span{}, "").WithField("name", "dup")},
		cst.Child{Role: "item", Node: b.Leaf(cst.KindFunctionItem, source.Span{}, "").WithField("name", "dup")},
	)
	l.LowerFile(root)

	if !bag.HasErrors() {
		t.Fatalf("expected a duplicate-definition diagnostic")
	}
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.ResDuplicateDefinition {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected ResDuplicateDefinition among diagnostics, got %+v", bag.Items())
	}
}

// TestLowerBinaryExpression checks operator-field dispatch and operand wiring.
func TestLowerBinaryExpression(t *testing.T) {
	l, _, _ := newLowerer()
	scope := l.Module.Scopes.Enter(hir.ScopeBlock, source.Span{})
	defer l.Module.Scopes.Leave()

	lhs := b.Leaf(cst.KindLiteral, source.Span{}, "").WithField("kind", "int").WithField("value", "1")
	rhs := b.Leaf(cst.KindLiteral, source.Span{}, "").WithField("kind", "int").WithField("value", "2")
	n := b.Node(cst.KindBinary, source.Span{}, "",
		cst.Child{Role: "lhs", Node: lhs},
		cst.Child{Role: "rhs", Node: rhs},
	).WithField("op", "+")

	id := l.lowerExpr(scope, n)
	e := l.Module.Expr(id)
	if e.Kind != hir.ExprBinaryOp {
		t.Fatalf("Kind = %v, want ExprBinaryOp", e.Kind)
	}
	if e.BinOp != hir.OpAdd {
		t.Fatalf("BinOp = %v, want OpAdd", e.BinOp)
	}
	if l.Module.Expr(e.LHS).Literal.Int != 1 || l.Module.Expr(e.RHS).Literal.Int != 2 {
		t.Fatalf("operands not lowered correctly")
	}
}

// TestLowerIdentifierResolvesLocalBinding checks that a name already bound in
// the active scope chain resolves immediately, without going through Pending.
func TestLowerIdentifierResolvesLocalBinding(t *testing.T) {
	l, strings, _ := newLowerer()
	scope := l.Module.Scopes.Enter(hir.ScopeBlock, source.Span{})
	defer l.Module.Scopes.Leave()

	name := strings.Intern("x")
	localDef := l.Module.NewDef(hir.Definition{Kind: hir.DefLocal, Local: &hir.Local{Name: name}})
	l.Module.Scopes.Bind(scope, name, localDef)

	id := l.lowerExpr(scope, b.Leaf(cst.KindIdentifier, source.Span{}, "x"))
	e := l.Module.Expr(id)
	if e.Ref != localDef {
		t.Fatalf("Ref = %v, want %v", e.Ref, localDef)
	}
	if len(l.Module.Pending) != 0 {
		t.Fatalf("a locally resolvable identifier should not be queued as Pending")
	}
}

// TestLowerIdentifierQueuesPendingWhenUnresolved checks the fallback path
// that internal/resolve later finishes (spec.md §4.1/§4.2).
func TestLowerIdentifierQueuesPendingWhenUnresolved(t *testing.T) {
	l, strings, _ := newLowerer()
	scope := l.Module.Scopes.Enter(hir.ScopeBlock, source.Span{})
	defer l.Module.Scopes.Leave()

	id := l.lowerExpr(scope, b.Leaf(cst.KindIdentifier, source.Span{}, "unknown_name"))
	e := l.Module.Expr(id)
	if e.Ref.IsValid() {
		t.Fatalf("expected no Ref for an unresolved name, got %v", e.Ref)
	}
	if len(l.Module.Pending) != 1 {
		t.Fatalf("expected exactly one Pending entry, got %d", len(l.Module.Pending))
	}
	p := l.Module.Pending[0]
	if p.Kind != hir.PendingVariable || p.ExprID != id {
		t.Fatalf("Pending entry = %+v, want PendingVariable for %v", p, id)
	}
	if strings.MustLookup(p.Path[0]) != "unknown_name" {
		t.Fatalf("Pending.Path[0] = %q, want \"unknown_name\"", strings.MustLookup(p.Path[0]))
	}
}

// TestLowerLetStatementInitBeforeBinding checks the documented ordering
// guarantee: `let x = x + 1` must resolve the right-hand `x` to whatever was
// already in scope, since the new binding isn't registered until after the
// initializer is lowered.
func TestLowerLetStatementInitBeforeBinding(t *testing.T) {
	l, strings, _ := newLowerer()
	scope := l.Module.Scopes.Enter(hir.ScopeBlock, source.Span{})
	defer l.Module.Scopes.Leave()

	outerName := strings.Intern("x")
	outerDef := l.Module.NewDef(hir.Definition{Kind: hir.DefLocal, Local: &hir.Local{Name: outerName}})
	l.Module.Scopes.Bind(scope, outerName, outerDef)

	initNode := b.Leaf(cst.KindIdentifier, source.Span{}, "x")
	patNode := b.Leaf(cst.KindPatIdentifier, source.Span{}, "x")
	letNode := b.Node(cst.KindLetStatement, source.Span{}, "",
		cst.Child{Role: "init", Node: initNode},
		cst.Child{Role: "pattern", Node: patNode},
	)

	sid := l.lowerStmt(scope, letNode)
	st := l.Module.Stmt(sid)
	if st.Kind != hir.StmtLet {
		t.Fatalf("Kind = %v, want StmtLet", st.Kind)
	}
	initExpr := l.Module.Expr(st.Let.Init)
	if initExpr.Ref != outerDef {
		t.Fatalf("init expr resolved to %v, want the outer binding %v", initExpr.Ref, outerDef)
	}
	newDef, ok := l.Module.Scopes.Lookup(scope, outerName)
	if !ok || newDef == outerDef {
		t.Fatalf("the let binding should shadow the outer one in this scope")
	}
}

// TestLowerOrPatternMismatchedBindingsReportsError exercises the Or-pattern
// name-set invariant (spec.md §4.1).
func TestLowerOrPatternMismatchedBindingsReportsError(t *testing.T) {
	l, _, bag := newLowerer()
	scope := l.Module.Scopes.Enter(hir.ScopeBlock, source.Span{})
	defer l.Module.Scopes.Leave()

	alt1 := b.Leaf(cst.KindPatIdentifier, source.Span{}, "a")
	alt2 := b.Leaf(cst.KindPatIdentifier, source.Span{}, "b")
	orNode := b.Node(cst.KindPatOr, source.Span{}, "",
		cst.Child{Role: "alternative", Node: alt1},
		cst.Child{Role: "alternative", Node: alt2},
	)

	l.lowerPattern(scope, orNode)

	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.PatOrBindingMismatch {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected PatOrBindingMismatch for alternatives binding different names")
	}
}

// TestLowerOrPatternMatchingBindingsIsClean is the mirror of the above: two
// alternatives binding the identical name set must not be flagged.
func TestLowerOrPatternMatchingBindingsIsClean(t *testing.T) {
	l, _, bag := newLowerer()
	scope := l.Module.Scopes.Enter(hir.ScopeBlock, source.Span{})
	defer l.Module.Scopes.Leave()

	alt1 := b.Leaf(cst.KindPatIdentifier, source.Span{}, "a")
	alt2 := b.Leaf(cst.KindPatIdentifier, source.Span{}, "a")
	orNode := b.Node(cst.KindPatOr, source.Span{}, "",
		cst.Child{Role: "alternative", Node: alt1},
		cst.Child{Role: "alternative", Node: alt2},
	)

	l.lowerPattern(scope, orNode)

	if bag.HasErrors() {
		t.Fatalf("matching alternatives must not raise a diagnostic, got %+v", bag.Items())
	}
}

// TestLowerClosureCollectsOuterCapture checks collectCaptures: a closure
// referencing an outer local (not its own parameter) must record it as a
// capture exactly once.
func TestLowerClosureCollectsOuterCapture(t *testing.T) {
	l, strings, _ := newLowerer()
	outerScope := l.Module.Scopes.Enter(hir.ScopeBlock, source.Span{})
	defer l.Module.Scopes.Leave()

	capturedName := strings.Intern("total")
	capturedDef := l.Module.NewDef(hir.Definition{Kind: hir.DefLocal, Local: &hir.Local{Name: capturedName}})
	l.Module.Scopes.Bind(outerScope, capturedName, capturedDef)

	paramNode := b.Leaf(cst.KindParameter, source.Span{}, "").WithField("name", "x")
	bodyExpr := b.Node(cst.KindBinary, source.Span{}, "",
		cst.Child{Role: "lhs", Node: b.Leaf(cst.KindIdentifier, source.Span{}, "x")},
		cst.Child{Role: "rhs", Node: b.Leaf(cst.KindIdentifier, source.Span{}, "total")},
	).WithField("op", "+")
	closureNode := b.Node(cst.KindClosureExpression, source.Span{}, "",
		cst.Child{Role: "param", Node: paramNode},
		cst.Child{Role: "body", Node: bodyExpr},
	)

	id := l.lowerExpr(outerScope, closureNode)
	e := l.Module.Expr(id)
	if e.Kind != hir.ExprClosure {
		t.Fatalf("Kind = %v, want ExprClosure", e.Kind)
	}
	if len(e.Closure.Captures) != 1 || e.Closure.Captures[0].Def != capturedDef {
		t.Fatalf("Captures = %+v, want exactly [%v]", e.Closure.Captures, capturedDef)
	}
}

// TestLowerUnrecognizedNodeBecomesPlaceholder checks spec.md §4.1/§6's
// tolerance for unrecognized CST kinds: lowering must never panic, and
// instead emit a diagnostic plus a recovery node.
func TestLowerUnrecognizedNodeBecomesPlaceholder(t *testing.T) {
	l, _, bag := newLowerer()
	scope := l.Module.Scopes.Enter(hir.ScopeBlock, source.Span{})
	defer l.Module.Scopes.Leave()

	id := l.lowerExpr(scope, b.Leaf(cst.Kind("mystery_node_kind"), source.Span{}, ""))
	e := l.Module.Expr(id)
	if e.Kind != hir.ExprInvalid {
		t.Fatalf("Kind = %v, want ExprInvalid", e.Kind)
	}
	if !bag.HasErrors() {
		t.Fatalf("expected a placeholder diagnostic for an unrecognized node kind")
	}
}
