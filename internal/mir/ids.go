// Package mir is spec.md §3's mid-level IR: a CFG of basic blocks, places
// with projections, rvalues, and terminators. It is a pure data model with
// no lowering logic of its own (internal/mirlower builds it; backends
// consume it) — split from the teacher's single internal/mir package
// because this core has no codegen package of its own to justify sharing
// data types with lowering in one package.
package mir

// LocalID identifies a local variable (parameter, let-binding, or
// lowering-introduced temporary) within one function.
type LocalID int32

// BlockID identifies a basic block within one function.
type BlockID int32

// FuncID identifies a lowered function within a MirModule.
type FuncID int32

const (
	NoLocalID LocalID = -1
	NoBlockID BlockID = -1
	NoFuncID  FuncID  = -1
)
