package hir

import "corec/internal/source"

// TypeKind enumerates the syntactic type-node forms of spec.md §3. This is
// the HIR's notion of "a type as written"; internal/types.TyKind is the
// type-system's semantic counterpart produced by inference.
type TypeKind uint8

const (
	TypeInvalid TypeKind = iota
	TypeNamed
	TypeTuple
	TypeFunction
	TypeReference
	TypeGenericParam
	TypeInferred
)

// TypeNode is one arena-indexed type-syntax node.
type TypeNode struct {
	Kind TypeKind
	Span source.Span

	// Named: Name is the path's final segment as written (lowering resolves
	// it locally when possible, same discipline as Expr.Name/Ref); Def is
	// the resolved target, NoDefId until resolve finishes it.
	Name        source.StringID
	Def         DefId
	GenericArgs []TypeId

	// Tuple.
	Elements []TypeId

	// Function.
	Params []TypeId
	Ret    TypeId

	// Reference.
	Mut   bool
	Inner TypeId

	// GenericParam.
	ParamIndex uint32
}
