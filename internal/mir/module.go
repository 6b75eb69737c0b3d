package mir

import (
	"corec/internal/hir"
	"corec/internal/types"
)

// ExternFunc is one external-function declaration (spec.md §6): a symbol
// (mangled per the ABI, or raw for ABIC), its parameter/return TyIds, and
// its ABI tag.
type ExternFunc struct {
	Def    hir.DefId
	Symbol string
	Params []types.TyId
	Return types.TyId
	ABI    hir.ABIKind
}

// MirModule is spec.md §6's "list of MirFunction + external-function
// declarations + type-definition table (for layout)" produced for
// backends. TypeDefs lists the struct/enum DefIds MIR code references, so a
// backend can compute concrete field layouts; layout computation itself is
// a backend concern and out of this core's scope.
type MirModule struct {
	Functions []*MirFunction
	Externs   []ExternFunc
	TypeDefs  []hir.DefId

	byDef map[hir.DefId]int
}

// NewMirModule creates an empty module ready to receive lowered functions.
func NewMirModule() *MirModule {
	return &MirModule{byDef: make(map[hir.DefId]int)}
}

// AddFunction registers a lowered function, indexed by its source DefId
// (or monomorphic-instance DefId) for later lookup.
func (m *MirModule) AddFunction(f *MirFunction) {
	m.byDef[f.Def] = len(m.Functions)
	m.Functions = append(m.Functions, f)
}

// FunctionByDef looks up a previously added function by DefId.
func (m *MirModule) FunctionByDef(def hir.DefId) (*MirFunction, bool) {
	i, ok := m.byDef[def]
	if !ok {
		return nil, false
	}
	return m.Functions[i], true
}
