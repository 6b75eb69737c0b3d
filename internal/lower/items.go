package lower

import (
	"corec/internal/cst"
	"corec/internal/diag"
	"corec/internal/hir"
	"corec/internal/source"
)

// registerItem allocates a skeletal Definition for one top-level item (name
// and Span only) and binds its name in scope, without lowering fields,
// params, bodies, or type annotations. This is phase 1 of spec.md §4.1's
// two-phase lowering: every sibling's DefId exists before any sibling's
// content is lowered, so phase 2 can resolve forward references by plain
// scope lookup.
func (l *Lowerer) registerItem(scope hir.ScopeId, n *cst.Node) hir.DefId {
	name := l.intern(n.Field("name"))
	var def hir.DefId
	switch n.Kind {
	case cst.KindFunctionItem:
		def = l.Module.NewDef(hir.Definition{
			Kind: hir.DefFunction, Span: n.Span,
			Function: &hir.Function{Name: name, Span: n.Span, Body: hir.NoExprId, ReturnType: hir.NoTypeId},
		})
	case cst.KindStructItem:
		def = l.Module.NewDef(hir.Definition{
			Kind: hir.DefStruct, Span: n.Span, Struct: &hir.Struct{Name: name, Span: n.Span},
		})
	case cst.KindEnumItem:
		def = l.Module.NewDef(hir.Definition{
			Kind: hir.DefEnum, Span: n.Span, Enum: &hir.Enum{Name: name, Span: n.Span},
		})
	case cst.KindTraitItem:
		def = l.Module.NewDef(hir.Definition{
			Kind: hir.DefTrait, Span: n.Span, Trait: &hir.Trait{Name: name, Span: n.Span},
		})
	case cst.KindImplItem:
		def = l.Module.NewDef(hir.Definition{
			Kind: hir.DefImpl, Span: n.Span, Impl: &hir.Impl{Span: n.Span, SelfType: hir.NoTypeId},
		})
		name = source.NoStringID // impl blocks bind no name
	case cst.KindExternBlock:
		return l.registerExternBlock(scope, n)
	case cst.KindUseDeclaration:
		return l.registerUse(scope, n)
	case cst.KindModuleItem:
		def = l.Module.NewDef(hir.Definition{
			Kind: hir.DefModule, Span: n.Span, Module: &hir.Module{Name: name, Span: n.Span},
		})
	default:
		l.placeholder(n, "an item")
		return hir.NoDefId
	}
	if name.IsValid() {
		l.bindChecked(scope, name, def, n.Span)
	}
	l.itemNodes[def] = n
	return def
}

// bindChecked binds name in scope and reports a duplicate-definition
// diagnostic if another item already claimed that name in the same scope
// (spec.md §4.2; shadowing an *outer* scope, which Bind can't see, is fine).
func (l *Lowerer) bindChecked(scope hir.ScopeId, name source.StringID, def hir.DefId, span source.Span) {
	if l.Module.Scopes.Bind(scope, name, def) {
		l.Bag.Add(diagPtr(diag.NewError(diag.ResDuplicateDefinition, span,
			"'"+l.Interner.MustLookup(name)+"' is defined more than once in this scope")))
	}
}

// registerExternBlock fully registers every declaration inside an extern
// block (they have no bodies to defer, so phase 1 and phase 2 coincide).
func (l *Lowerer) registerExternBlock(scope hir.ScopeId, n *cst.Node) hir.DefId {
	abi := hir.ABIUnspecified
	switch n.Field("abi") {
	case "c":
		abi = hir.ABIC
	case "private-v0":
		abi = hir.ABIPrivateV0
	}
	var first hir.DefId
	for _, item := range n.ChildrenByRole("item") {
		name := l.intern(item.Field("name"))
		raw := item.Field("symbol")
		if raw == "" {
			raw = l.Interner.MustLookup(name)
		}
		fn := &hir.Function{Name: name, Span: item.Span, Body: hir.NoExprId, ABI: abi, RawSymbol: l.intern(raw)}
		if abi == hir.ABIPrivateV0 {
			fn.MangledSymbol = mangledSymbolV0(raw)
		}
		for _, p := range item.ChildrenByRole("param") {
			fn.Params = append(fn.Params, hir.Param{
				Name: l.intern(p.Field("name")), Type: l.lowerType(scope, p.ChildByRole("type")), Span: p.Span,
			})
		}
		fn.ReturnType = l.lowerType(scope, item.ChildByRole("return_type"))
		def := l.Module.NewDef(hir.Definition{Kind: hir.DefExternalFunction, Span: item.Span, Function: fn})
		l.bindChecked(scope, name, def, item.Span)
		if !first.IsValid() {
			first = def
		}
	}
	return first
}

func (l *Lowerer) registerUse(scope hir.ScopeId, n *cst.Node) hir.DefId {
	var segs []source.StringID
	for _, s := range n.ChildrenByRole("segment") {
		segs = append(segs, l.intern(s.Text))
	}
	use := &hir.Use{Path: segs, Public: n.Field("public") == "true", Span: n.Span}
	if alias := n.Field("alias"); alias != "" {
		use.Alias = l.intern(alias)
	}
	def := l.Module.NewDef(hir.Definition{Kind: hir.DefUse, Span: n.Span, Use: use})

	bindAs := use.Alias
	if !bindAs.IsValid() && len(segs) > 0 {
		bindAs = segs[len(segs)-1]
	}
	if bindAs.IsValid() {
		l.bindChecked(scope, bindAs, def, n.Span)
	}
	l.Module.AddPending(hir.Pending{Kind: hir.PendingUseTarget, Path: segs, Scope: scope, Span: n.Span, UseID: def})
	return def
}

// lowerItemBody fills in the full content of an already phase-1-registered
// item: field/param/return types, type params, where-clauses, trait
// supertraits/methods, impl methods, module members, and function bodies.
// This is phase 2 of spec.md §4.1.
func (l *Lowerer) lowerItemBody(scope hir.ScopeId, id hir.DefId) {
	d := l.Module.Def(id)
	n := l.itemNodes[id]
	if d == nil || n == nil {
		return
	}
	switch d.Kind {
	case hir.DefFunction:
		l.fillFunction(scope, d.Function, n, hir.ReceiverNone)
	case hir.DefStruct:
		l.fillStruct(scope, d.Struct, n)
	case hir.DefEnum:
		l.fillEnum(scope, d.Enum, n)
	case hir.DefTrait:
		l.fillTrait(scope, id, d.Trait, n)
	case hir.DefImpl:
		l.fillImpl(scope, id, d.Impl, n)
	case hir.DefModule:
		l.fillModule(scope, d.Module, n)
	}
}

func (l *Lowerer) fillTypeParams(scope hir.ScopeId, owner hir.DefId, n *cst.Node) []hir.TypeParam {
	var out []hir.TypeParam
	for i, tp := range n.ChildrenByRole("type_param") {
		tparam := hir.TypeParam{Name: l.intern(tp.Field("name")), Index: uint32(i), Span: tp.Span}
		for bi, b := range tp.ChildrenByRole("bound") {
			bname := l.intern(b.Text)
			if d, ok := l.Module.Scopes.Lookup(scope, bname); ok {
				tparam.Bounds = append(tparam.Bounds, d)
			} else {
				tparam.Bounds = append(tparam.Bounds, hir.NoDefId)
				l.Module.AddPending(hir.Pending{
					Kind: hir.PendingTypeParamBound, Path: []source.StringID{bname}, Scope: scope,
					Span: b.Span, Owner: owner, ParamIndex: i, BoundIndex: bi,
				})
			}
		}
		out = append(out, tparam)
	}
	return out
}

func (l *Lowerer) fillWhereClauses(scope hir.ScopeId, owner hir.DefId, n *cst.Node) []hir.WhereClause {
	var out []hir.WhereClause
	for i, w := range n.ChildrenByRole("where") {
		wc := hir.WhereClause{Span: w.Span}
		traitNode := w.ChildByRole("trait")
		if traitNode != nil {
			tname := l.intern(traitNode.Text)
			if d, ok := l.Module.Scopes.Lookup(scope, tname); ok {
				wc.Trait = d
			} else {
				l.Module.AddPending(hir.Pending{
					Kind: hir.PendingWhereClauseTrait, Path: []source.StringID{tname}, Scope: scope,
					Span: w.Span, Owner: owner, ParamIndex: i,
				})
			}
		}
		out = append(out, wc)
	}
	return out
}

// fillFunction lowers a function item's signature in place. defaultRecv is
// used when the function has no explicit self parameter at all (plain
// function) versus a method context (the caller already knows by context).
func (l *Lowerer) fillFunction(scope hir.ScopeId, fn *hir.Function, n *cst.Node, defaultRecv hir.ReceiverKind) {
	def, _ := l.Module.Scopes.Lookup(scope, fn.Name)
	fn.TypeParams = l.fillTypeParams(scope, def, n)
	fn.Where = l.fillWhereClauses(scope, def, n)
	fn.Receiver = defaultRecv

	rawParams := n.ChildrenByRole("param")
	for i, p := range rawParams {
		pname := p.Field("name")
		if i == 0 && pname == "self" {
			switch {
			case p.Field("ref") == "true" && p.Field("mut") == "true":
				fn.Receiver = hir.ReceiverByRefMut
			case p.Field("ref") == "true":
				fn.Receiver = hir.ReceiverByRef
			default:
				fn.Receiver = hir.ReceiverByValue
			}
			continue
		}
		fn.Params = append(fn.Params, hir.Param{
			Name: l.intern(pname), Type: l.lowerType(scope, p.ChildByRole("type")), Span: p.Span,
		})
	}
	fn.ReturnType = l.lowerType(scope, n.ChildByRole("return_type"))
	if body := n.ChildByRole("body"); body != nil {
		l.pendingBodies = append(l.pendingBodies, pendingBody{fn: fn, node: body, outerScope: scope})
	}
}

type pendingBody struct {
	fn         *hir.Function
	node       *cst.Node
	outerScope hir.ScopeId
}

// lowerQueuedBodies lowers every function body queued by fillFunction. Must
// run after every item's signature has been filled in.
func (l *Lowerer) lowerQueuedBodies() {
	for _, pb := range l.pendingBodies {
		fnScope := l.Module.Scopes.Enter(hir.ScopeFunction, pb.fn.Span)
		for i := range pb.fn.Params {
			p := &pb.fn.Params[i]
			def := l.Module.NewDef(hir.Definition{
				Kind: hir.DefLocal, Span: p.Span, Local: &hir.Local{Name: p.Name, Span: p.Span},
			})
			l.Module.Scopes.Bind(fnScope, p.Name, def)
			p.Def = def
		}
		pb.fn.Body = l.lowerExpr(fnScope, pb.node)
		l.Module.Scopes.Leave()
	}
	l.pendingBodies = nil
}

func (l *Lowerer) fillStruct(scope hir.ScopeId, s *hir.Struct, n *cst.Node) {
	def, _ := l.Module.Scopes.Lookup(scope, s.Name)
	s.TypeParams = l.fillTypeParams(scope, def, n)
	for _, f := range n.ChildrenByRole("field") {
		s.Fields = append(s.Fields, hir.Field{
			Name: l.intern(f.Field("name")), Type: l.lowerType(scope, f.ChildByRole("type")), Span: f.Span,
		})
	}
}

func (l *Lowerer) fillEnum(scope hir.ScopeId, e *hir.Enum, n *cst.Node) {
	def, _ := l.Module.Scopes.Lookup(scope, e.Name)
	e.TypeParams = l.fillTypeParams(scope, def, n)
	for i, v := range n.ChildrenByRole("variant") {
		var fields []hir.Field
		for _, f := range v.ChildrenByRole("field") {
			fields = append(fields, hir.Field{
				Name: l.intern(f.Field("name")), Type: l.lowerType(scope, f.ChildByRole("type")), Span: f.Span,
			})
		}
		e.Variants = append(e.Variants, hir.Variant{
			Name: l.intern(v.Field("name")), Fields: fields, VariantIdx: uint32(i), Span: v.Span,
		})
	}
}

func (l *Lowerer) fillTrait(scope hir.ScopeId, def hir.DefId, t *hir.Trait, n *cst.Node) {
	t.TypeParams = l.fillTypeParams(scope, def, n)
	for i, sup := range n.ChildrenByRole("supertrait") {
		supName := l.intern(sup.Text)
		if d, ok := l.Module.Scopes.Lookup(scope, supName); ok {
			t.Supertraits = append(t.Supertraits, d)
		} else {
			t.Supertraits = append(t.Supertraits, hir.NoDefId)
			l.Module.AddPending(hir.Pending{
				Kind: hir.PendingImplTrait, Path: []source.StringID{supName}, Scope: scope,
				Span: sup.Span, Owner: def, ParamIndex: i,
			})
		}
	}
	for _, at := range n.ChildrenByRole("assoc_type") {
		t.AssocTypes = append(t.AssocTypes, hir.AssocType{Name: l.intern(at.Field("name")), Span: at.Span})
	}
	inner := l.Module.Scopes.Enter(hir.ScopeFunction, n.Span)
	defer l.Module.Scopes.Leave()
	for _, m := range n.ChildrenByRole("method") {
		mname := l.intern(m.Field("name"))
		fn := &hir.Function{Name: mname, Span: m.Span, Body: hir.NoExprId, ReturnType: hir.NoTypeId}
		mdef := l.Module.NewDef(hir.Definition{Kind: hir.DefFunction, Span: m.Span, Function: fn})
		l.bindChecked(inner, mname, mdef, m.Span)
		l.fillFunction(inner, fn, m, hir.ReceiverByRef)
		t.Methods = append(t.Methods, mdef)
	}
}

func (l *Lowerer) fillImpl(scope hir.ScopeId, def hir.DefId, imp *hir.Impl, n *cst.Node) {
	imp.TypeParams = l.fillTypeParams(scope, def, n)
	imp.Where = l.fillWhereClauses(scope, def, n)
	imp.SelfType = l.lowerType(scope, n.ChildByRole("self_type"))

	if tn := n.ChildByRole("trait"); tn != nil {
		traitName := l.intern(tn.Text)
		if d, ok := l.Module.Scopes.Lookup(scope, traitName); ok {
			imp.Trait = d
		} else {
			l.Module.AddPending(hir.Pending{
				Kind: hir.PendingImplTrait, Path: []source.StringID{traitName}, Scope: scope,
				Span: tn.Span, Owner: def, ParamIndex: -1,
			})
		}
	}
	for _, b := range n.ChildrenByRole("assoc_type_binding") {
		typ := l.lowerType(scope, b.ChildByRole("type"))
		imp.AssocTypes = append(imp.AssocTypes, hir.ImplAssocType{Name: l.intern(b.Field("name")), Type: typ})
	}

	inner := l.Module.Scopes.Enter(hir.ScopeFunction, n.Span)
	defer l.Module.Scopes.Leave()
	for _, m := range n.ChildrenByRole("method") {
		mname := l.intern(m.Field("name"))
		fn := &hir.Function{Name: mname, Span: m.Span, Body: hir.NoExprId, ReturnType: hir.NoTypeId}
		mdef := l.Module.NewDef(hir.Definition{Kind: hir.DefFunction, Span: m.Span, Function: fn})
		l.bindChecked(inner, mname, mdef, m.Span)
		l.fillFunction(inner, fn, m, hir.ReceiverByRef)
		imp.Methods = append(imp.Methods, mdef)
	}
}

func (l *Lowerer) fillModule(scope hir.ScopeId, mod *hir.Module, n *cst.Node) {
	inner := l.Module.Scopes.Enter(hir.ScopeModule, n.Span)
	defer l.Module.Scopes.Leave()

	items := n.ChildrenByRole("item")
	defs := make([]hir.DefId, 0, len(items))
	for _, item := range items {
		id := l.registerItem(inner, item)
		if id.IsValid() {
			defs = append(defs, id)
			mod.Members = append(mod.Members, id)
		}
	}
	for _, id := range defs {
		l.lowerItemBody(inner, id)
	}
}
