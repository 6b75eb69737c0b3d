package mir

import (
	"corec/internal/hir"
	"corec/internal/types"
)

// ConstKind enumerates constant literal kinds an Operand can carry.
type ConstKind uint8

const (
	ConstInt ConstKind = iota
	ConstUint
	ConstFloat
	ConstBool
	ConstString
	ConstUnit
	ConstFn
)

// Const is a literal value baked into the MIR, spec.md §3's Constant(lit).
type Const struct {
	Kind ConstKind
	Type types.TyId

	IntValue    int64
	UintValue   uint64
	FloatValue  float64
	BoolValue   bool
	StringValue string
	Fn          hir.DefId // ConstFn: the referenced function
}

// OperandKind enumerates spec.md §3's Operand = Copy(Place) | Move(Place) |
// Constant(lit).
type OperandKind uint8

const (
	OperandCopy OperandKind = iota
	OperandMove
	OperandConstant
)

// Operand is a value an RValue or terminator can consume.
type Operand struct {
	Kind  OperandKind
	Place Place // Copy, Move
	Const Const // Constant
}

// CopyOf builds a Copy operand over p.
func CopyOf(p Place) Operand { return Operand{Kind: OperandCopy, Place: p} }

// MoveOf builds a Move operand over p.
func MoveOf(p Place) Operand { return Operand{Kind: OperandMove, Place: p} }

// ConstOf builds a Constant operand.
func ConstOf(c Const) Operand { return Operand{Kind: OperandConstant, Const: c} }
