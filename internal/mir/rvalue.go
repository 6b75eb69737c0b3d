package mir

import (
	"corec/internal/hir"
	"corec/internal/types"
)

// CalleeKind distinguishes a direct call (a resolved DefId, possibly a
// monomorphic instance of a generic) from an indirect call through a value
// (a closure capture struct, per spec.md §4.7's deferred closure-thunk note).
type CalleeKind uint8

const (
	CalleeDirect CalleeKind = iota
	CalleeIndirect
)

// Callee is a call's target.
type Callee struct {
	Kind CalleeKind

	Def  hir.DefId // CalleeDirect
	Args []types.TyId // CalleeDirect: the call's concrete type arguments; internal/mirlower leaves it empty, Def already naming the instance

	Value Operand // CalleeIndirect
}

// RValueKind enumerates spec.md §3's RValue sum.
type RValueKind uint8

const (
	RValueUse RValueKind = iota
	RValueBinaryOp
	RValueUnaryOp
	RValueRef
	RValueCall
	RValueAggregate
)

// AggregateKind enumerates spec.md §3's Aggregate kinds.
type AggregateKind uint8

const (
	AggregateStruct AggregateKind = iota
	AggregateTuple
	AggregateArray
	AggregateEnum
	AggregateClosure
)

// BinOp is a binary operation over two operands.
type BinOp struct {
	Op    hir.BinaryOp
	Left  Operand
	Right Operand
}

// UnOp is a unary operation over one operand.
type UnOp struct {
	Op      hir.UnaryOp
	Operand Operand
}

// RefOp borrows a place, producing a reference value.
type RefOp struct {
	Mut   bool
	Place Place
}

// CallRValue is a call used in operand position (its result is the
// RValue's value; it does not itself branch the CFG). Method calls lower
// here after being rewritten to a direct Call with the receiver prepended
// to Args (spec.md §4.7).
type CallRValue struct {
	Callee Callee
	Args   []Operand
}

// Aggregate builds a struct/tuple/array/enum/closure value in place.
type Aggregate struct {
	Kind AggregateKind
	Type types.TyId

	ElemType   types.TyId // AggregateArray
	EnumDef    hir.DefId  // AggregateEnum
	VariantIdx uint32     // AggregateEnum

	Operands []Operand
}

// RValue is the right-hand side of an Assign statement.
type RValue struct {
	Kind RValueKind

	Use       Operand
	Binary    BinOp
	Unary     UnOp
	Ref       RefOp
	Call      CallRValue
	Aggregate Aggregate
}

// UseOf wraps a bare operand as an RValue.
func UseOf(op Operand) RValue { return RValue{Kind: RValueUse, Use: op} }
