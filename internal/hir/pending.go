package hir

import "corec/internal/source"

// PendingKind classifies what a Pending reference patches once resolved.
type PendingKind uint8

const (
	PendingVariable PendingKind = iota
	PendingType
	PendingTypeParamBound
	PendingWhereClauseTrait
	PendingImplTrait
	PendingUseTarget
	PendingTypeParamBoundOwnerIsFunction
)

// Pending is one name that lowering could not resolve against the local
// scope chain alone (spec.md §4.1 registers items before bodies, so most
// same-file references resolve during lowering; anything left over —
// qualified paths, cross-module names, forward references into sibling
// files — is recorded here for internal/resolve to finish). Exactly one of
// the *ID fields is meaningful, selected by Kind.
type Pending struct {
	Kind  PendingKind
	Path  []source.StringID // full path; Path[len(Path)-1] is the name itself
	Scope ScopeId           // scope to resolve from
	Span  source.Span

	ExprID ExprId // PendingVariable
	TypeID TypeId // PendingType

	// PendingTypeParamBound / PendingWhereClauseTrait / PendingImplTrait.
	Owner      DefId // the Function/Struct/Enum/Trait/Impl declaring the param/clause
	ParamIndex int   // index into Owner's TypeParams or Where slice
	BoundIndex int   // index into TypeParam.Bounds; unused for where-clauses/impl traits

	UseID DefId // PendingUseTarget: the Use definition whose Target field to patch
}

// AddPending records an unresolved reference for internal/resolve.
func (m *Module) AddPending(p Pending) {
	m.Pending = append(m.Pending, p)
}
