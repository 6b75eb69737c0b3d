package mir

import (
	"corec/internal/hir"
	"corec/internal/source"
	"corec/internal/types"
)

// MirFunction is one compiled function: spec.md §6's "dense local table,
// dense block table, parameter count, return type" per-function record.
// LocalID/BlockID 0 is always the entry's first local/block; ParamCount of
// Locals[0:ParamCount] are the function's parameters, in declaration order
// (spec.md §4.7: "allocate locals for parameters first").
type MirFunction struct {
	Def  hir.DefId // the DefFunction (or monomorphic instance) this was lowered from
	Name source.StringID
	Span source.Span

	ParamCount int
	ReturnType types.TyId

	// TypeArgs is the substitution a monomorphic instance was built with
	// (spec.md §4.8). internal/mirlower does not fill it, so it is empty for
	// every function it lowers, instances included; Def names the instance.
	TypeArgs []types.TyId

	Locals []Local
	Blocks []BasicBlock
	Entry  BlockID
}

// Block returns the function's block with the given ID, or nil if id is
// out of range.
func (f *MirFunction) Block(id BlockID) *BasicBlock {
	if id < 0 || int(id) >= len(f.Blocks) {
		return nil
	}
	return &f.Blocks[id]
}

// LocalAt returns the function's local with the given ID, or nil if id is
// out of range.
func (f *MirFunction) LocalAt(id LocalID) *Local {
	if id < 0 || int(id) >= len(f.Locals) {
		return nil
	}
	return &f.Locals[id]
}
