package hir

import (
	"testing"

	"corec/internal/source"
)

func TestModuleArenaAccessorsRoundTrip(t *testing.T) {
	m := NewModule()

	defID := m.NewDef(Definition{Kind: DefStruct, Struct: &Struct{}})
	exprID := m.NewExpr(Expr{Kind: ExprLiteral, Literal: &Literal{Kind: LitInt, Int: 7}})
	stmtID := m.NewStmt(Stmt{Kind: StmtExpr, Expr: exprID})
	patID := m.NewPat(Pattern{Kind: PatWildcard})
	typeID := m.NewType(TypeNode{Kind: TypeInferred})

	if m.Def(defID).Kind != DefStruct {
		t.Fatalf("Def(%v).Kind = %v, want DefStruct", defID, m.Def(defID).Kind)
	}
	if m.Expr(exprID).Literal.Int != 7 {
		t.Fatalf("Expr(%v).Literal.Int = %d, want 7", exprID, m.Expr(exprID).Literal.Int)
	}
	if m.Stmt(stmtID).Expr != exprID {
		t.Fatalf("Stmt(%v).Expr = %v, want %v", stmtID, m.Stmt(stmtID).Expr, exprID)
	}
	if m.Pat(patID).Kind != PatWildcard {
		t.Fatalf("Pat(%v).Kind = %v, want PatWildcard", patID, m.Pat(patID).Kind)
	}
	if m.Type(typeID).Kind != TypeInferred {
		t.Fatalf("Type(%v).Kind = %v, want TypeInferred", typeID, m.Type(typeID).Kind)
	}
}

// TestUnknownDefIdAllocatedOnce checks that UnknownDefId is lazily allocated
// and stable across calls, and that IsUnknown only reports true for it.
func TestUnknownDefIdAllocatedOnce(t *testing.T) {
	m := NewModule()
	realDef := m.NewDef(Definition{Kind: DefStruct, Struct: &Struct{}})

	if m.IsUnknown(realDef) {
		t.Fatalf("a real definition must never report IsUnknown")
	}

	first := m.UnknownDefId(source.Span{})
	second := m.UnknownDefId(source.Span{})
	if first != second {
		t.Fatalf("UnknownDefId allocated twice: %v != %v", first, second)
	}
	if !m.IsUnknown(first) {
		t.Fatalf("IsUnknown(%v) = false, want true", first)
	}
}

// TestUnknownDefIdNotAllocatedUntilUsed checks the "never pay for it" claim:
// a Module with no resolution errors must never allocate the unknown def.
func TestUnknownDefIdNotAllocatedUntilUsed(t *testing.T) {
	m := NewModule()
	if m.IsUnknown(NoDefId) {
		t.Fatalf("IsUnknown(NoDefId) must be false before UnknownDefId is ever called")
	}
}

func TestDefNameByKind(t *testing.T) {
	strings := source.NewInterner()
	m := NewModule()

	funcName := strings.Intern("doIt")
	funcDef := m.NewDef(Definition{Kind: DefFunction, Function: &Function{Name: funcName}})
	if got := m.DefName(funcDef); got != funcName {
		t.Fatalf("DefName(function) = %v, want %v", got, funcName)
	}

	structName := strings.Intern("Widget")
	structDef := m.NewDef(Definition{Kind: DefStruct, Struct: &Struct{Name: structName}})
	if got := m.DefName(structDef); got != structName {
		t.Fatalf("DefName(struct) = %v, want %v", got, structName)
	}

	// Impl carries no single name.
	implDef := m.NewDef(Definition{Kind: DefImpl, Impl: &Impl{}})
	if got := m.DefName(implDef); got != source.NoStringID {
		t.Fatalf("DefName(impl) = %v, want NoStringID", got)
	}
}

func TestDefNameUsePrefersAlias(t *testing.T) {
	strings := source.NewInterner()
	m := NewModule()

	pathName := strings.Intern("helper")
	aliasName := strings.Intern("h")
	useDef := m.NewDef(Definition{Kind: DefUse, Use: &Use{
		Path:  []source.StringID{pathName},
		Alias: aliasName,
	}})
	if got := m.DefName(useDef); got != aliasName {
		t.Fatalf("DefName(use with alias) = %v, want the alias %v", got, aliasName)
	}

	noAliasDef := m.NewDef(Definition{Kind: DefUse, Use: &Use{Path: []source.StringID{pathName}}})
	if got := m.DefName(noAliasDef); got != pathName {
		t.Fatalf("DefName(use without alias) = %v, want the final path segment %v", got, pathName)
	}
}

// TestScopeTreeLookupWalksParentChain checks inner-out lookup across nested
// scopes (spec.md §3's scope tree).
func TestScopeTreeLookupWalksParentChain(t *testing.T) {
	strings := source.NewInterner()
	tree := NewScopeTree()

	outer := tree.Enter(ScopeModule, source.Span{})
	outerName := strings.Intern("x")
	outerDef := DefId(1)
	tree.Bind(outer, outerName, outerDef)

	inner := tree.Enter(ScopeBlock, source.Span{})
	got, ok := tree.Lookup(inner, outerName)
	if !ok || got != outerDef {
		t.Fatalf("Lookup from inner scope = (%v, %v), want (%v, true)", got, ok, outerDef)
	}
}

// TestScopeTreeInnerBindingShadowsOuter checks that a name bound in the
// inner scope hides the outer binding without mutating it.
func TestScopeTreeInnerBindingShadowsOuter(t *testing.T) {
	strings := source.NewInterner()
	tree := NewScopeTree()
	name := strings.Intern("x")

	outer := tree.Enter(ScopeModule, source.Span{})
	outerDef := DefId(1)
	tree.Bind(outer, name, outerDef)

	inner := tree.Enter(ScopeBlock, source.Span{})
	innerDef := DefId(2)
	tree.Bind(inner, name, innerDef)

	got, ok := tree.Lookup(inner, name)
	if !ok || got != innerDef {
		t.Fatalf("Lookup(inner) = (%v, %v), want (%v, true)", got, ok, innerDef)
	}

	tree.Leave()
	got, ok = tree.Lookup(outer, name)
	if !ok || got != outerDef {
		t.Fatalf("outer binding must be unaffected by the inner shadow, got (%v, %v)", got, ok)
	}
}

// TestScopeTreeBindReportsShadowingWithinSameScope checks Bind's return
// value, which bindChecked in internal/lower uses to report a
// duplicate-definition diagnostic (spec.md §4.2) — rebinding in the *same*
// scope must report existed=true, unlike shadowing an outer scope.
func TestScopeTreeBindReportsShadowingWithinSameScope(t *testing.T) {
	strings := source.NewInterner()
	tree := NewScopeTree()
	scope := tree.Enter(ScopeModule, source.Span{})
	name := strings.Intern("dup")

	if existed := tree.Bind(scope, name, DefId(1)); existed {
		t.Fatalf("first Bind reported existed=true, want false")
	}
	if existed := tree.Bind(scope, name, DefId(2)); !existed {
		t.Fatalf("second Bind in the same scope reported existed=false, want true")
	}
}

// TestScopeTreeLookupLocalDoesNotWalkParents checks LookupLocal's contract:
// used to detect duplicate definitions, it must not see outer bindings.
func TestScopeTreeLookupLocalDoesNotWalkParents(t *testing.T) {
	strings := source.NewInterner()
	tree := NewScopeTree()
	name := strings.Intern("x")

	outer := tree.Enter(ScopeModule, source.Span{})
	tree.Bind(outer, name, DefId(1))
	inner := tree.Enter(ScopeBlock, source.Span{})

	if _, ok := tree.LookupLocal(inner, name); ok {
		t.Fatalf("LookupLocal must not see an outer scope's binding")
	}
	if _, ok := tree.Lookup(inner, name); !ok {
		t.Fatalf("sanity check: Lookup should still find it via the parent chain")
	}
}

// TestScopeTreeEnterLeaveStackDiscipline checks the documented
// enter/defer-leave stack discipline (spec.md §9 "Scoped resources"):
// Current() must track the innermost active scope and Leave() pops exactly
// one level, safely becoming a no-op once the stack is empty.
func TestScopeTreeEnterLeaveStackDiscipline(t *testing.T) {
	tree := NewScopeTree()
	if tree.Current().IsValid() {
		t.Fatalf("a fresh ScopeTree must report no current scope")
	}

	a := tree.Enter(ScopeModule, source.Span{})
	if tree.Current() != a {
		t.Fatalf("Current() = %v, want %v", tree.Current(), a)
	}
	b := tree.Enter(ScopeBlock, source.Span{})
	if tree.Current() != b {
		t.Fatalf("Current() = %v, want %v", tree.Current(), b)
	}

	tree.Leave()
	if tree.Current() != a {
		t.Fatalf("after one Leave, Current() = %v, want %v", tree.Current(), a)
	}
	tree.Leave()
	if tree.Current().IsValid() {
		t.Fatalf("after popping every scope, Current() must be invalid")
	}
	tree.Leave() // must not panic on an empty stack
	if tree.Current().IsValid() {
		t.Fatalf("Leave() on an empty stack must remain a no-op")
	}
}

// TestPendingRecordsUnresolvedReference checks AddPending's bookkeeping,
// the hand-off point to internal/resolve (spec.md §4.1/§4.2).
func TestPendingRecordsUnresolvedReference(t *testing.T) {
	strings := source.NewInterner()
	m := NewModule()
	name := strings.Intern("undefined")
	exprID := m.NewExpr(Expr{Kind: ExprVariable, Name: name})

	m.AddPending(Pending{Kind: PendingVariable, Path: []source.StringID{name}, ExprID: exprID})

	if len(m.Pending) != 1 {
		t.Fatalf("expected exactly one Pending entry, got %d", len(m.Pending))
	}
	p := m.Pending[0]
	if p.Kind != PendingVariable || p.ExprID != exprID {
		t.Fatalf("Pending = %+v, want Kind=PendingVariable ExprID=%v", p, exprID)
	}
}

// TestIDZeroValuesAreInvalid checks the NoXxxId sentinel convention every
// arena-indexed ID type in this package follows.
func TestIDZeroValuesAreInvalid(t *testing.T) {
	var (
		defID  DefId
		exprID ExprId
		stmtID StmtId
		patID  PatId
		typeID TypeId
		scope  ScopeId
	)
	if defID.IsValid() || defID != NoDefId {
		t.Fatalf("zero DefId must equal NoDefId and be invalid")
	}
	if exprID.IsValid() || exprID != NoExprId {
		t.Fatalf("zero ExprId must equal NoExprId and be invalid")
	}
	if stmtID.IsValid() || stmtID != NoStmtId {
		t.Fatalf("zero StmtId must equal NoStmtId and be invalid")
	}
	if patID.IsValid() || patID != NoPatId {
		t.Fatalf("zero PatId must equal NoPatId and be invalid")
	}
	if typeID.IsValid() || typeID != NoTypeId {
		t.Fatalf("zero TypeId must equal NoTypeId and be invalid")
	}
	if scope.IsValid() || scope != NoScopeId {
		t.Fatalf("zero ScopeId must equal NoScopeId and be invalid")
	}
}
