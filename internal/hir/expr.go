package hir

import "corec/internal/source"

// ExprKind enumerates the expression forms of spec.md §3.
type ExprKind uint8

const (
	ExprInvalid ExprKind = iota
	ExprLiteral
	ExprVariable
	ExprCall
	ExprMethodCall
	ExprBlock
	ExprIf
	ExprMatch
	ExprReturn
	ExprAggregate
	ExprReference
	ExprDereference
	ExprClosure
	ExprAssign
	ExprBinaryOp
	ExprUnaryOp
	ExprFieldAccess
	ExprIndex
)

func (k ExprKind) String() string {
	names := [...]string{
		"invalid", "literal", "variable", "call", "method_call", "block",
		"if", "match", "return", "aggregate", "reference", "dereference",
		"closure", "assign", "binary_op", "unary_op", "field_access", "index",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "invalid"
}

// LiteralKind enumerates the literal value kinds.
type LiteralKind uint8

const (
	LitInt LiteralKind = iota
	LitFloat
	LitBool
	LitString
	LitUnit
)

// Literal is the payload of an ExprLiteral node.
type Literal struct {
	Kind    LiteralKind
	Int     int64
	Float   float64
	Bool    bool
	Str     source.StringID
	Suffix  source.StringID // NoStringID if unsuffixed (integer-literal polymorphism, §4.3)
}

// AggregateKind enumerates what an ExprAggregate builds.
type AggregateKind uint8

const (
	AggStruct AggregateKind = iota
	AggTuple
	AggArray
	AggEnumVariant
)

// AggregateField is one field/element initializer of an aggregate literal.
type AggregateField struct {
	Name  source.StringID // NoStringID for positional (tuple/array) fields
	Value ExprId
}

// Aggregate is the payload of an ExprAggregate node.
type Aggregate struct {
	Kind       AggregateKind
	Def        DefId // Struct/Enum DefId; NoDefId for Tuple/Array
	VariantIdx uint32
	Fields     []AggregateField
}

// BinaryOp enumerates binary operators.
type BinaryOp uint8

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNotEq
	OpLess
	OpLessEq
	OpGreater
	OpGreaterEq
	OpAnd
	OpOr
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl
	OpShr
)

// UnaryOp enumerates unary operators.
type UnaryOp uint8

const (
	OpNeg UnaryOp = iota
	OpNot
)

// MatchArm is one arm of an ExprMatch node.
type MatchArm struct {
	Pattern PatId
	Guard   ExprId // NoExprId if no guard
	Body    ExprId
	Span    source.Span
}

// ClosureCapture is one free variable captured by a closure, recorded
// during body lowering (spec.md §4.1).
type ClosureCapture struct {
	Def   DefId // the outer Local/parameter being captured
	ByRef bool
}

// Closure is the payload of an ExprClosure node.
type Closure struct {
	Params     []Param
	ReturnType TypeId
	Captures   []ClosureCapture
	Body       ExprId
}

// Expr is one arena-indexed expression node. Exactly one payload field is
// meaningful, selected by Kind.
type Expr struct {
	Kind ExprKind
	Span source.Span

	Literal *Literal

	// Variable: Name is the identifier as written; Ref is the resolution
	// lowering found by walking the local scope chain, or NoDefId if lowering
	// could not resolve it locally (cross-module names, or names that turn
	// out not to exist). internal/resolve finishes unresolved Refs (§4.2).
	Name source.StringID
	Ref  DefId

	// Call.
	Callee ExprId
	Args   []ExprId

	// MethodCall.
	Receiver   ExprId
	Method     source.StringID
	MethodArgs []ExprId
	// ResolvedMethod is filled by method resolution (§4.6).
	ResolvedMethod DefId

	// Block.
	Stmts  []StmtId
	Tail   ExprId // NoExprId if the block has no trailing expression

	// If.
	Cond ExprId
	Then ExprId
	Else ExprId // NoExprId if no else branch

	// Match.
	Scrutinee ExprId
	Arms      []MatchArm

	// Return.
	Value ExprId // NoExprId for bare `return`

	Aggregate *Aggregate

	// Reference / Dereference.
	Inner ExprId
	Mut   bool // Reference only: &mut vs &

	Closure *Closure

	// Assign.
	Target ExprId
	RHS    ExprId

	// BinaryOp.
	BinOp BinaryOp
	LHS   ExprId

	// UnaryOp.
	UnOp    UnaryOp
	Operand ExprId

	// FieldAccess: Receiver.Field — reuses Receiver/Method from MethodCall.
	// Index: Receiver[Args[0]] — reuses Receiver/Args from Call/MethodCall.
}
