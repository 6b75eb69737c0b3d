package bounds

import (
	"fmt"

	"corec/internal/diag"
	"corec/internal/hir"
	"corec/internal/source"
	"corec/internal/types"
)

// MethodResolver implements spec.md §4.6's method resolution procedure
// against an already-built Index, satisfying types.MethodResolver so
// internal/types never needs to import this package. Grounded on the
// teacher's method-lookup half of internal/sema/contract_bounds.go,
// generalized the same way Checker is from a symbol-table walk to this
// module's impl index.
type MethodResolver struct {
	idx     *Index
	m       *hir.Module
	strings *source.Interner
	bag     *diag.Bag
}

// NewMethodResolver creates a MethodResolver over an already-built Index.
func NewMethodResolver(idx *Index, m *hir.Module, strings *source.Interner, bag *diag.Bag) *MethodResolver {
	return &MethodResolver{idx: idx, m: m, strings: strings, bag: bag}
}

func (r *MethodResolver) name(id source.StringID) string {
	if !id.IsValid() {
		return "<unnamed>"
	}
	if s, ok := r.strings.Lookup(id); ok {
		return s
	}
	return "<unnamed>"
}

// ResolveMethod implements types.MethodResolver. Procedure (spec.md §4.6):
// substitute the receiver type to a concrete Named type (else
// AmbiguousReceiver), search impls[self] inherent-then-trait, keep the
// candidates whose self-parameter matches the receiver's mutability/
// value-ness, and return the unique match (else NoMatch/AmbiguousMethod).
func (r *MethodResolver) ResolveMethod(ctx *types.Context, receiverTy types.TyId, method source.StringID, mutableReceiver bool, span source.Span) (hir.DefId, bool) {
	self, ok := namedReceiverDef(ctx, receiverTy)
	if !ok {
		r.bag.Add(diagPtr(diag.NewError(diag.MthAmbiguousReceiver, span, fmt.Sprintf(
			"cannot resolve method '%s': receiver type is not yet known", r.name(method)))))
		return hir.NoDefId, false
	}

	var named, compatible []hir.DefId
	for _, group := range [][]hir.DefId{r.namedMethods(self, method, false), r.namedMethods(self, method, true)} {
		named = append(named, group...)
		for _, methodID := range group {
			if r.selfCompatible(methodID, mutableReceiver) {
				compatible = append(compatible, methodID)
			}
		}
		// Inherent impls take priority over trait impls (§4.6 item 2): stop
		// as soon as the inherent group alone yields a usable match.
		if len(compatible) > 0 {
			break
		}
	}

	switch {
	case len(compatible) == 1:
		return compatible[0], true
	case len(compatible) > 1:
		r.bag.Add(diagPtr(diag.NewError(diag.MthAmbiguousMethod, span, fmt.Sprintf(
			"call to '%s' is ambiguous between more than one impl", r.name(method)))))
		return hir.NoDefId, false
	case len(named) > 0:
		r.bag.Add(diagPtr(diag.NewError(diag.MthMutabilityMismatch, span, fmt.Sprintf(
			"method '%s' requires a mutable receiver", r.name(method)))))
		return hir.NoDefId, false
	default:
		r.bag.Add(diagPtr(diag.NewError(diag.MthNoMatch, span, fmt.Sprintf(
			"no method '%s' found for this type", r.name(method)))))
		return hir.NoDefId, false
	}
}

// namedMethods returns self's impl methods (trait impls if trait is true,
// inherent impls otherwise) named method.
func (r *MethodResolver) namedMethods(self hir.DefId, method source.StringID, trait bool) []hir.DefId {
	var out []hir.DefId
	for _, implID := range r.idx.Impls(self) {
		implDef := r.m.Def(implID)
		if implDef == nil || implDef.Impl == nil {
			continue
		}
		if implDef.Impl.Trait.IsValid() != trait {
			continue
		}
		for _, methodID := range implDef.Impl.Methods {
			md := r.m.Def(methodID)
			if md != nil && md.Function != nil && md.Function.Name == method {
				out = append(out, methodID)
			}
		}
	}
	return out
}

// selfCompatible implements the self-parameter-variant rule (§4.6 item 3):
// `self` by value or `&self` accept any receiver; `&mut self` requires the
// receiver-mutability flag. A function with no self parameter at all
// (ReceiverNone, an associated function) is never callable as a method.
func (r *MethodResolver) selfCompatible(methodID hir.DefId, mutableReceiver bool) bool {
	md := r.m.Def(methodID)
	if md == nil || md.Function == nil {
		return false
	}
	switch md.Function.Receiver {
	case hir.ReceiverByValue, hir.ReceiverByRef:
		return true
	case hir.ReceiverByRefMut:
		return mutableReceiver
	default:
		return false
	}
}

// namedReceiverDef resolves a receiver's type to the nominal DefId it
// names, or false if it is anything other than a concrete Named type
// (still an unbound variable, or a generic parameter no impl is indexed
// against).
func namedReceiverDef(ctx *types.Context, id types.TyId) (hir.DefId, bool) {
	ty, ok := ctx.Types.Lookup(id)
	if !ok || ty.Kind != types.KindNamed {
		return hir.NoDefId, false
	}
	def, _, ok := ctx.Types.NamedInfo(id)
	return def, ok
}
