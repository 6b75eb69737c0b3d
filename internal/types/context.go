package types

import (
	"corec/internal/diag"
	"corec/internal/hir"
)

// Context is spec.md §3's TyContext: the substitution map a unification
// pass writes to, plus every per-expression/per-function fact later passes
// (bound checker, MIR lowering) read back out.
type Context struct {
	Types *Interner
	Bag   *diag.Bag

	// Subst is the substitution map TyVarId → TyId. Once a variable is
	// bound it is never rebound to a different type (spec.md §3 invariant);
	// Bind panics if that discipline is violated by a caller.
	Subst map[TyVarId]TyId

	// ExprTypes is the per-expression inferred type table.
	ExprTypes map[hir.ExprId]TyId

	// ReceiverMut records, for every MethodCall ExprId, whether its receiver
	// was mutably reachable (spec.md §4.3 "Receiver mutability").
	ReceiverMut map[hir.ExprId]bool

	// FuncReturn is the function→declared-return-type map Return-expression
	// inference unifies against.
	FuncReturn map[hir.DefId]TyId

	// LocalTypes is the Local/parameter DefId → TyId map; a Variable whose
	// parameter type was not yet recorded gets a fresh TyVar here (§4.3).
	LocalTypes map[hir.DefId]TyId

	// genericEnv is the stack PushGenericEnv/PopGenericEnv maintain:
	// TypeParam index → the TyId standing in for it. Nothing in this module
	// pushes an environment (internal/mono substitutes through its own
	// substType), so GenericParamTy falls back to KindGenericParam.
	genericEnv []map[uint32]TyId
}

// NewContext creates an inference context over a shared type interner.
func NewContext(types *Interner, bag *diag.Bag) *Context {
	return &Context{
		Types:       types,
		Bag:         bag,
		Subst:       make(map[TyVarId]TyId),
		ExprTypes:   make(map[hir.ExprId]TyId),
		ReceiverMut: make(map[hir.ExprId]bool),
		FuncReturn:  make(map[hir.DefId]TyId),
		LocalTypes:  make(map[hir.DefId]TyId),
	}
}

// Fresh allocates a new, unbound type variable.
func (c *Context) Fresh() TyId { return c.Types.NewVar() }

// Bind records that v resolves to t. Panics if v is already bound to a
// different type — that would violate the "never reused" substitution
// invariant, and every call site in this package checks IsBound first.
func (c *Context) Bind(v TyVarId, t TyId) {
	if existing, ok := c.Subst[v]; ok && existing != t {
		panic("types: attempted to rebind an already-substituted type variable")
	}
	c.Subst[v] = t
}

// IsBound reports whether v already has a substitution.
func (c *Context) IsBound(v TyVarId) (TyId, bool) {
	t, ok := c.Subst[v]
	return t, ok
}

// Resolve follows substitution chains starting from id, returning the
// deepest type that is either not a Var or an unbound Var. Used before
// every unification step and before a type is read back out for a later
// pass (spec.md §4.3 "Follow substitutions on both sides").
func (c *Context) Resolve(id TyId) TyId {
	for {
		t, ok := c.Types.Lookup(id)
		if !ok || t.Kind != KindVar {
			return id
		}
		next, bound := c.Subst[t.Var]
		if !bound {
			return id
		}
		id = next
	}
}

// PushGenericEnv enters a new generic-parameter scope (one item's body).
func (c *Context) PushGenericEnv(env map[uint32]TyId) {
	c.genericEnv = append(c.genericEnv, env)
}

// PopGenericEnv leaves the innermost generic-parameter scope.
func (c *Context) PopGenericEnv() {
	if len(c.genericEnv) == 0 {
		return
	}
	c.genericEnv = c.genericEnv[:len(c.genericEnv)-1]
}

// GenericParamTy resolves a generic-parameter index against the innermost
// active environment, falling back to an uninstantiated KindGenericParam
// marker when no substitution is in scope (ordinary, non-monomorphized
// inference).
func (c *Context) GenericParamTy(index uint32) TyId {
	for i := len(c.genericEnv) - 1; i >= 0; i-- {
		if t, ok := c.genericEnv[i][index]; ok {
			return t
		}
	}
	return c.Types.Intern(MakeGenericParam(index))
}
