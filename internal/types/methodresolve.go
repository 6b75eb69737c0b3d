package types

import (
	"corec/internal/hir"
	"corec/internal/source"
)

// MethodResolver implements spec.md §4.6's method resolution procedure.
// It is defined here, not in internal/bounds (which owns the impl index
// method resolution actually searches), so that Inferer can hold one
// without this package importing bounds — bounds already imports types
// for TyContext/TyId, and the reverse edge would cycle. internal/driver
// wires a *bounds.MethodResolver in, since it structurally satisfies this
// interface without bounds ever needing to know about it.
type MethodResolver interface {
	// ResolveMethod looks up method on receiverTy (already ctx.Resolve'd)
	// with the given receiver-mutability flag, and reports any failure
	// (NoMatch/AmbiguousMethod/MutabilityMismatch/AmbiguousReceiver)
	// against span. Returns the method's DefId and true on a unique match.
	ResolveMethod(ctx *Context, receiverTy TyId, method source.StringID, mutableReceiver bool, span source.Span) (hir.DefId, bool)
}
