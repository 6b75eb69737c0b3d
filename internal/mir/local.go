package mir

import (
	"corec/internal/source"
	"corec/internal/types"
)

// Local is one local variable: a parameter, a `let` binding, or a
// lowering-introduced temporary. Its LocalID is its index into the owning
// MirFunction's Locals slice.
type Local struct {
	Name    source.StringID // NoStringID for a compiler-introduced temporary
	Type    types.TyId
	Mutable bool
	Span    source.Span
}
