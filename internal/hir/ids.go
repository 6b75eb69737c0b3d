// Package hir is the desugared, arena-indexed high-level intermediate
// representation described in spec.md §3-§4.1: items, expressions,
// statements, patterns and type nodes, plus the scope tree and symbol
// table that internal/lower populates and internal/resolve consumes.
package hir

// DefId identifies a Definition: Function, Struct, Enum, Trait, Impl,
// Module, Use, ExternalFunction, or Local.
type DefId uint32

// NoDefId marks the absence of a definition reference.
const NoDefId DefId = 0

// IsValid reports whether id refers to an allocated definition.
func (id DefId) IsValid() bool { return id != NoDefId }

// UnknownDefId is the distinguished placeholder DefId name resolution
// assigns to an unresolved reference (spec.md §4.2); later passes treat it
// as Error to avoid cascading diagnostics. It is allocated lazily, at most
// once per Module, at the next free definition index — see
// Module.unknownDef.

// ExprId identifies an Expression node.
type ExprId uint32

// NoExprId marks the absence of an expression reference.
const NoExprId ExprId = 0

func (id ExprId) IsValid() bool { return id != NoExprId }

// StmtId identifies a Statement node.
type StmtId uint32

const NoStmtId StmtId = 0

func (id StmtId) IsValid() bool { return id != NoStmtId }

// PatId identifies a Pattern node.
type PatId uint32

const NoPatId PatId = 0

func (id PatId) IsValid() bool { return id != NoPatId }

// TypeId identifies a (syntactic, HIR-level) type node. Distinct from
// types.TyId, which is the type-system's semantic type handle produced by
// inference from these nodes.
type TypeId uint32

const NoTypeId TypeId = 0

func (id TypeId) IsValid() bool { return id != NoTypeId }

// A "Local" (function parameter or let-bound name) is itself a Definition
// of DefLocal, addressed by plain DefId — spec.md §3 lists Local among
// the Definition kinds, so Variable/pattern-binding references never need a
// second ID namespace.
