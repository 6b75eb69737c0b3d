package resolve

import (
	"testing"

	"corec/internal/diag"
	"corec/internal/hir"
	"corec/internal/source"
)

// newVarRef allocates an ExprVariable and a matching PendingVariable queued
// against scope (NoScopeId if the reference has nothing to find locally).
func newVarRef(m *hir.Module, scope hir.ScopeId, path ...source.StringID) hir.ExprId {
	id := m.NewExpr(hir.Expr{Kind: hir.ExprVariable, Name: path[len(path)-1]})
	m.AddPending(hir.Pending{Kind: hir.PendingVariable, Path: path, Scope: scope, ExprID: id})
	return id
}

func TestResolveFindsPublicCrossModuleUse(t *testing.T) {
	strings := source.NewInterner()
	lib := hir.NewModule()
	name := strings.Intern("widget")
	widgetDef := lib.NewDef(hir.Definition{Kind: hir.DefStruct, Struct: &hir.Struct{Name: name}})
	lib.Items = append(lib.Items, widgetDef)

	app := hir.NewModule()
	ref := newVarRef(app, hir.NoScopeId, name)

	bag := diag.NewBag(16)
	r := New(strings, bag, lib, app)
	r.Resolve(app)

	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics resolving a visible cross-module name")
	}
	if got := app.Expr(ref).Ref; got != widgetDef {
		t.Fatalf("Ref = %v, want %v", got, widgetDef)
	}
	if got := app.VarRefs[ref]; got != widgetDef {
		t.Fatalf("VarRefs[ref] = %v, want %v", got, widgetDef)
	}
}

func TestResolveRejectsPrivateCrossModuleUse(t *testing.T) {
	strings := source.NewInterner()
	lib := hir.NewModule()
	name := strings.Intern("internalHelper")
	useDef := lib.NewDef(hir.Definition{Kind: hir.DefUse, Use: &hir.Use{
		Path:   []source.StringID{name},
		Public: false,
	}})
	lib.Items = append(lib.Items, useDef)

	app := hir.NewModule()
	ref := newVarRef(app, hir.NoScopeId, name)

	bag := diag.NewBag(16)
	r := New(strings, bag, lib, app)
	r.Resolve(app)

	if !bag.HasErrors() {
		t.Fatalf("expected a diagnostic for a private cross-module reference")
	}
	diags := bagDiagnostics(bag)
	if len(diags) != 1 {
		t.Fatalf("expected exactly one diagnostic (no double-report), got %d", len(diags))
	}
	if diags[0].Code != diag.ResPrivateAccess {
		t.Fatalf("Code = %v, want ResPrivateAccess", diags[0].Code)
	}
	if got := app.Expr(ref).Ref; !app.IsUnknown(got) {
		t.Fatalf("Ref should patch to the unknown def on a private access rejection")
	}
}

func TestResolvePublicCrossModuleUseStillVisible(t *testing.T) {
	strings := source.NewInterner()
	lib := hir.NewModule()
	name := strings.Intern("helper")
	target := lib.NewDef(hir.Definition{Kind: hir.DefFunction, Function: &hir.Function{Name: name}})
	useDef := lib.NewDef(hir.Definition{Kind: hir.DefUse, Use: &hir.Use{
		Path:   []source.StringID{name},
		Public: true,
		Target: target,
	}})
	lib.Items = append(lib.Items, useDef) // target is reached only through the use item

	app := hir.NewModule()
	ref := newVarRef(app, hir.NoScopeId, name)

	bag := diag.NewBag(16)
	r := New(strings, bag, lib, app)
	r.Resolve(app)

	if bag.HasErrors() {
		t.Fatalf("a public use re-export should be visible, got diagnostics")
	}
	if got := app.Expr(ref).Ref; got != useDef {
		t.Fatalf("Ref = %v, want the use item %v", got, useDef)
	}
}

func TestResolveUnknownNameSuggestsClosestMatch(t *testing.T) {
	strings := source.NewInterner()
	lib := hir.NewModule()
	widget := strings.Intern("widget")
	widgetDef := lib.NewDef(hir.Definition{Kind: hir.DefStruct, Struct: &hir.Struct{Name: widget}})
	lib.Items = append(lib.Items, widgetDef)

	app := hir.NewModule()
	typo := strings.Intern("widgt")
	ref := newVarRef(app, hir.NoScopeId, typo)

	bag := diag.NewBag(16)
	r := New(strings, bag, lib, app)
	r.Resolve(app)

	diags := bagDiagnostics(bag)
	if len(diags) != 1 || diags[0].Code != diag.ResUnknownName {
		t.Fatalf("expected a single ResUnknownName diagnostic, got %+v", diags)
	}
	if got := app.Expr(ref).Ref; !app.IsUnknown(got) {
		t.Fatalf("unresolved reference should patch to the unknown def")
	}
}

func TestResolveAmbiguousCrossModuleNameResolvesToFirstCandidate(t *testing.T) {
	strings := source.NewInterner()
	name := strings.Intern("clash")

	first := hir.NewModule()
	firstDef := first.NewDef(hir.Definition{Kind: hir.DefStruct, Struct: &hir.Struct{Name: name}})
	first.Items = append(first.Items, firstDef)

	second := hir.NewModule()
	secondDef := second.NewDef(hir.Definition{Kind: hir.DefStruct, Struct: &hir.Struct{Name: name}})
	second.Items = append(second.Items, secondDef)

	app := hir.NewModule()
	ref := newVarRef(app, hir.NoScopeId, name)

	bag := diag.NewBag(16)
	r := New(strings, bag, first, second, app)
	r.Resolve(app)

	diags := bagDiagnostics(bag)
	if len(diags) != 1 || diags[0].Code != diag.ResAmbiguousName {
		t.Fatalf("expected a single ResAmbiguousName diagnostic, got %+v", diags)
	}
	if got := app.Expr(ref).Ref; got != firstDef {
		t.Fatalf("Ref = %v, want the first-registered candidate %v", got, firstDef)
	}
}

func TestResolvePrefersLocalScopeOverCrossModule(t *testing.T) {
	strings := source.NewInterner()
	name := strings.Intern("shadowed")

	lib := hir.NewModule()
	libDef := lib.NewDef(hir.Definition{Kind: hir.DefStruct, Struct: &hir.Struct{Name: name}})
	lib.Items = append(lib.Items, libDef)

	app := hir.NewModule()
	scope := app.Scopes.Enter(hir.ScopeModule, source.Span{})
	localDef := app.NewDef(hir.Definition{Kind: hir.DefLocal, Local: &hir.Local{Name: name}})
	app.Scopes.Bind(scope, name, localDef)
	ref := newVarRef(app, scope, name)

	bag := diag.NewBag(16)
	r := New(strings, bag, lib, app)
	r.Resolve(app)

	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bagDiagnostics(bag))
	}
	if got := app.Expr(ref).Ref; got != localDef {
		t.Fatalf("Ref = %v, want the local binding %v, not the cross-module one", got, localDef)
	}
}

func bagDiagnostics(bag *diag.Bag) []*diag.Diagnostic {
	return bag.Items()
}
