package hir

import (
	"corec/internal/arena"
	"corec/internal/source"
)

// Module owns every HIR arena for one compilation unit (spec.md §3: "a
// component exclusively owns its arena; other components reference by
// index only"). internal/lower is the sole writer; every later pass reads
// through the same Module.
type Module struct {
	Defs  *arena.Arena[Definition]
	Exprs *arena.Arena[Expr]
	Stmts *arena.Arena[Stmt]
	Pats  *arena.Arena[Pattern]
	Types *arena.Arena[TypeNode]

	Scopes *ScopeTree

	// Items are the top-level DefIds registered directly in the module's
	// root scope (functions, structs, enums, traits, impls, extern blocks,
	// use declarations, nested modules), in source order.
	Items []DefId

	// VarRefs records, for every ExprVariable node, the resolved DefId —
	// identical information to Expr.Ref, kept here too as the "symbol
	// table" spec.md §4.1 calls out explicitly, addressable without
	// touching the expression arena.
	VarRefs map[ExprId]DefId

	// PatternBindings maps every PatBinding node to the Local DefId it
	// introduced — the other half of the symbol table.
	PatternBindings map[PatId]DefId

	// Pending holds every reference lowering could not resolve against the
	// local scope chain; internal/resolve walks this list once all files'
	// items are registered.
	Pending []Pending

	// unknownDef is the distinguished "unknown" DefId used by name
	// resolution (spec.md §4.2) for a reference that could not be
	// resolved. Allocated lazily so Modules with no resolution errors never
	// pay for it.
	unknownDef DefId
}

// NewModule creates an empty Module with its arenas ready for lowering.
func NewModule() *Module {
	return &Module{
		Defs:            arena.New[Definition](64),
		Exprs:           arena.New[Expr](256),
		Stmts:           arena.New[Stmt](128),
		Pats:            arena.New[Pattern](64),
		Types:           arena.New[TypeNode](64),
		Scopes:          NewScopeTree(),
		VarRefs:         make(map[ExprId]DefId),
		PatternBindings: make(map[PatId]DefId),
	}
}

// UnknownDefId returns the distinguished DefId standing in for an
// unresolved reference, allocating it (as an invalid-kind Definition) on
// first use.
func (m *Module) UnknownDefId(span source.Span) DefId {
	if m.unknownDef.IsValid() {
		return m.unknownDef
	}
	id := m.Defs.Allocate(Definition{Kind: DefInvalid, Span: span})
	m.unknownDef = DefId(id)
	return m.unknownDef
}

// IsUnknown reports whether id is the module's distinguished unknown DefId.
func (m *Module) IsUnknown(id DefId) bool {
	return m.unknownDef.IsValid() && id == m.unknownDef
}

// Def/Expr/Stmt/Pat/Type are convenience accessors over the arenas.
func (m *Module) Def(id DefId) *Definition   { return m.Defs.Get(uint32(id)) }
func (m *Module) Expr(id ExprId) *Expr       { return m.Exprs.Get(uint32(id)) }
func (m *Module) Stmt(id StmtId) *Stmt       { return m.Stmts.Get(uint32(id)) }
func (m *Module) Pat(id PatId) *Pattern      { return m.Pats.Get(uint32(id)) }
func (m *Module) Type(id TypeId) *TypeNode   { return m.Types.Get(uint32(id)) }

func (m *Module) NewDef(d Definition) DefId   { return DefId(m.Defs.Allocate(d)) }
func (m *Module) NewExpr(e Expr) ExprId       { return ExprId(m.Exprs.Allocate(e)) }
func (m *Module) NewStmt(s Stmt) StmtId       { return StmtId(m.Stmts.Allocate(s)) }
func (m *Module) NewPat(p Pattern) PatId      { return PatId(m.Pats.Allocate(p)) }
func (m *Module) NewType(t TypeNode) TypeId   { return TypeId(m.Types.Allocate(t)) }

// DefName returns the interned name of a definition, or NoStringID if the
// kind carries no single name (e.g. Impl).
func (m *Module) DefName(id DefId) source.StringID {
	d := m.Def(id)
	if d == nil {
		return source.NoStringID
	}
	switch d.Kind {
	case DefFunction, DefExternalFunction:
		if d.Function != nil {
			return d.Function.Name
		}
	case DefStruct:
		if d.Struct != nil {
			return d.Struct.Name
		}
	case DefEnum:
		if d.Enum != nil {
			return d.Enum.Name
		}
	case DefTrait:
		if d.Trait != nil {
			return d.Trait.Name
		}
	case DefModule:
		if d.Module != nil {
			return d.Module.Name
		}
	case DefUse:
		if d.Use != nil {
			if d.Use.Alias.IsValid() {
				return d.Use.Alias
			}
			if len(d.Use.Path) > 0 {
				return d.Use.Path[len(d.Use.Path)-1]
			}
		}
	case DefLocal:
		if d.Local != nil {
			return d.Local.Name
		}
	}
	return source.NoStringID
}
