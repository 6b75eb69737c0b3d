package mono

import (
	"corec/internal/hir"
	"corec/internal/types"
)

// cloner deep-clones one generic function's body into fresh arena slots,
// substituting every KindGenericParam type it encounters along the way
// (via substType) and remapping every DefLocal (param/let binding) the
// body introduces to a fresh DefId, so the clone shares no mutable state
// with the original generic body or with any other instantiation of it.
// Grounded on the teacher's clone.go/clone_rewrite.go split, folded into
// one pass since this core's HIR carries types per-expression rather than
// per-node-kind-specific payloads the teacher rewrites separately.
type cloner struct {
	m       *hir.Module
	ctx     *types.Context
	args    []types.TyId
	localID map[hir.DefId]hir.DefId
}

func newCloner(m *hir.Module, ctx *types.Context, args []types.TyId) *cloner {
	return &cloner{m: m, ctx: ctx, args: args, localID: make(map[hir.DefId]hir.DefId)}
}

func (c *cloner) ty(old types.TyId) types.TyId {
	return substType(c.ctx.Types, old, c.args)
}

// cloneLocal remaps a param/let DefId to a fresh DefLocal, carrying its
// substituted type into ctx.LocalTypes under the new id.
func (c *cloner) cloneLocal(old hir.DefId) hir.DefId {
	if old == hir.NoDefId || !old.IsValid() {
		return old
	}
	if mapped, ok := c.localID[old]; ok {
		return mapped
	}
	d := c.m.Def(old)
	var local hir.Local
	if d != nil && d.Local != nil {
		local = *d.Local
	}
	newDef := c.m.NewDef(hir.Definition{Kind: hir.DefLocal, Local: &local, Span: local.Span})
	c.localID[old] = newDef
	c.ctx.LocalTypes[newDef] = c.ty(c.ctx.LocalTypes[old])
	return newDef
}

// remapRef rewrites a Variable's resolved DefId: a param/let bound within
// this clone maps to its fresh local, anything else (another top-level
// item) is left pointing at the original definition.
func (c *cloner) remapRef(old hir.DefId) hir.DefId {
	if mapped, ok := c.localID[old]; ok {
		return mapped
	}
	return old
}

func (c *cloner) cloneExprIDs(ids []hir.ExprId) []hir.ExprId {
	if len(ids) == 0 {
		return nil
	}
	out := make([]hir.ExprId, len(ids))
	for i, id := range ids {
		out[i] = c.cloneExpr(id)
	}
	return out
}

func (c *cloner) cloneStmtIDs(ids []hir.StmtId) []hir.StmtId {
	if len(ids) == 0 {
		return nil
	}
	out := make([]hir.StmtId, len(ids))
	for i, id := range ids {
		out[i] = c.cloneStmt(id)
	}
	return out
}

// cloneExpr clones one expression tree node and every expression/statement/
// pattern it owns, registering the new id's type in ctx.ExprTypes.
func (c *cloner) cloneExpr(id hir.ExprId) hir.ExprId {
	if !id.IsValid() {
		return id
	}
	src := c.m.Expr(id)
	if src == nil {
		return id
	}
	e := *src

	switch e.Kind {
	case hir.ExprVariable:
		e.Ref = c.remapRef(e.Ref)
	case hir.ExprCall:
		e.Callee = c.cloneExpr(e.Callee)
		e.Args = c.cloneExprIDs(e.Args)
	case hir.ExprMethodCall:
		e.Receiver = c.cloneExpr(e.Receiver)
		e.MethodArgs = c.cloneExprIDs(e.MethodArgs)
	case hir.ExprBlock:
		e.Stmts = c.cloneStmtIDs(e.Stmts)
		e.Tail = c.cloneExpr(e.Tail)
	case hir.ExprIf:
		e.Cond = c.cloneExpr(e.Cond)
		e.Then = c.cloneExpr(e.Then)
		e.Else = c.cloneExpr(e.Else)
	case hir.ExprMatch:
		e.Scrutinee = c.cloneExpr(e.Scrutinee)
		arms := make([]hir.MatchArm, len(e.Arms))
		for i, a := range e.Arms {
			arms[i] = hir.MatchArm{
				Pattern: c.clonePat(a.Pattern),
				Guard:   c.cloneExpr(a.Guard),
				Body:    c.cloneExpr(a.Body),
				Span:    a.Span,
			}
		}
		e.Arms = arms
	case hir.ExprReturn:
		e.Value = c.cloneExpr(e.Value)
	case hir.ExprAggregate:
		if e.Aggregate != nil {
			agg := *e.Aggregate
			fields := make([]hir.AggregateField, len(agg.Fields))
			for i, f := range agg.Fields {
				fields[i] = hir.AggregateField{Name: f.Name, Value: c.cloneExpr(f.Value)}
			}
			agg.Fields = fields
			e.Aggregate = &agg
		}
	case hir.ExprReference, hir.ExprDereference:
		e.Inner = c.cloneExpr(e.Inner)
	case hir.ExprClosure:
		if e.Closure != nil {
			cl := *e.Closure
			cl.Body = c.cloneExpr(cl.Body)
			e.Closure = &cl
		}
	case hir.ExprAssign:
		e.Target = c.cloneExpr(e.Target)
		e.RHS = c.cloneExpr(e.RHS)
	case hir.ExprBinaryOp:
		e.LHS = c.cloneExpr(e.LHS)
		e.RHS = c.cloneExpr(e.RHS)
	case hir.ExprUnaryOp:
		e.Operand = c.cloneExpr(e.Operand)
	case hir.ExprFieldAccess:
		e.Receiver = c.cloneExpr(e.Receiver)
	case hir.ExprIndex:
		e.Receiver = c.cloneExpr(e.Receiver)
		e.Args = c.cloneExprIDs(e.Args)
	}

	newID := c.m.NewExpr(e)
	if ty, ok := c.ctx.ExprTypes[id]; ok {
		c.ctx.ExprTypes[newID] = c.ty(ty)
	}
	if mut, ok := c.ctx.ReceiverMut[id]; ok {
		c.ctx.ReceiverMut[newID] = mut
	}
	return newID
}

func (c *cloner) cloneStmt(id hir.StmtId) hir.StmtId {
	src := c.m.Stmt(id)
	if src == nil {
		return id
	}
	st := *src
	switch st.Kind {
	case hir.StmtLet:
		if st.Let != nil {
			lt := *st.Let
			lt.Pattern = c.clonePat(lt.Pattern)
			lt.Init = c.cloneExpr(lt.Init)
			st.Let = &lt
		}
	case hir.StmtExpr:
		st.Expr = c.cloneExpr(st.Expr)
	}
	return c.m.NewStmt(st)
}

func (c *cloner) clonePat(id hir.PatId) hir.PatId {
	if !id.IsValid() {
		return id
	}
	src := c.m.Pat(id)
	if src == nil {
		return id
	}
	p := *src
	switch p.Kind {
	case hir.PatBinding:
		p.Def = c.cloneLocal(p.Def)
		p.Sub = c.clonePat(p.Sub)
	case hir.PatTuple:
		elems := make([]hir.PatId, len(p.Elements))
		for i, e := range p.Elements {
			elems[i] = c.clonePat(e)
		}
		p.Elements = elems
	case hir.PatStruct:
		fields := make([]hir.StructPatField, len(p.Fields))
		for i, f := range p.Fields {
			fields[i] = hir.StructPatField{Name: f.Name, Pattern: c.clonePat(f.Pattern)}
		}
		p.Fields = fields
	case hir.PatEnumVariant:
		sub := make([]hir.PatId, len(p.SubPats))
		for i, s := range p.SubPats {
			sub[i] = c.clonePat(s)
		}
		p.SubPats = sub
	case hir.PatOr:
		alts := make([]hir.PatId, len(p.Alternatives))
		for i, a := range p.Alternatives {
			alts[i] = c.clonePat(a)
		}
		p.Alternatives = alts
	}
	return c.m.NewPat(p)
}
