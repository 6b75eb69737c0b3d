// Package exhaustive implements spec.md §4.5's pattern-matrix exhaustiveness
// algorithm: explicit constructor enumeration, specialization, the default
// matrix, and a usefulness check used both to find unreachable arms and to
// recover missing-pattern witnesses.
//
// No direct teacher analogue exists (the teacher has no exhaustiveness
// checker of its own); written from spec.md's own algorithm description in
// the style of internal/mir/recognize_switch.go — pure functions over
// slices, no arena of its own, diagnostics via diag.Bag.
package exhaustive

import (
	"corec/internal/hir"
	"corec/internal/source"
	"corec/internal/types"
)

// ConstructorKind enumerates spec.md §4.5's constructor families.
type ConstructorKind uint8

const (
	CtorWildcard ConstructorKind = iota
	CtorBoolTrue
	CtorBoolFalse
	CtorEnumVariant
	CtorStruct
	CtorTuple
	CtorIntRange
	CtorReference
)

// Constructor is one concrete shape a scrutinee's value can take.
type Constructor struct {
	Kind       ConstructorKind
	EnumDef    hir.DefId // CtorEnumVariant
	VariantIdx uint32    // CtorEnumVariant
	StructDef  hir.DefId // CtorStruct
	Arity      int
	Lo, Hi     int64 // CtorIntRange, inclusive on both ends
}

// EnumerateConstructors returns the full constructor set for a scrutinee
// type and whether that set is complete (covering every value the type
// can take). Integer types are never reported complete — spec.md §4.5
// calls integers "open range"; any finite set of IntRange constructors
// collected from the patterns actually written can't enumerate the whole
// domain, so usefulness against an int column always falls back to the
// default-matrix path (spec.md's wildcard-head shortcut), same as any
// other non-enumerable type.
func EnumerateConstructors(ctx *types.Context, m *hir.Module, ty types.TyId) ([]Constructor, bool) {
	t, ok := ctx.Types.Lookup(ctx.Resolve(ty))
	if !ok {
		return nil, false
	}
	switch t.Kind {
	case types.KindBool:
		return []Constructor{{Kind: CtorBoolTrue}, {Kind: CtorBoolFalse}}, true

	case types.KindNamed:
		def, _, ok := ctx.Types.NamedInfo(ctx.Resolve(ty))
		if !ok {
			return nil, false
		}
		d := m.Def(def)
		if d == nil {
			return nil, false
		}
		switch d.Kind {
		case hir.DefEnum:
			ctors := make([]Constructor, len(d.Enum.Variants))
			for i, v := range d.Enum.Variants {
				ctors[i] = Constructor{Kind: CtorEnumVariant, EnumDef: def, VariantIdx: v.VariantIdx, Arity: len(v.Fields)}
			}
			return ctors, true
		case hir.DefStruct:
			return []Constructor{{Kind: CtorStruct, StructDef: def, Arity: len(d.Struct.Fields)}}, true
		}
		return nil, false

	case types.KindTuple:
		elems, ok := ctx.Types.TupleInfo(ctx.Resolve(ty))
		if !ok {
			return nil, false
		}
		return []Constructor{{Kind: CtorTuple, Arity: len(elems)}}, true

	case types.KindRef:
		return []Constructor{{Kind: CtorReference, Arity: 1}}, true

	default:
		return nil, false
	}
}

// FieldTypes returns the TyIds of a constructor's sub-positions, resolved
// against the enclosing scrutinee type ty. Generic-argument substitution
// is not applied here (the field's TypeId is resolved as written, the same
// simplification internal/types' inferAggregate documents for struct
// literals) — acceptable for a monomorphic core, noted in DESIGN.md.
func FieldTypes(ctx *types.Context, m *hir.Module, strings *source.Interner, ty types.TyId, c Constructor) []types.TyId {
	switch c.Kind {
	case CtorEnumVariant:
		d := m.Def(c.EnumDef)
		if d == nil || d.Kind != hir.DefEnum {
			return nil
		}
		for _, v := range d.Enum.Variants {
			if v.VariantIdx == c.VariantIdx {
				return fieldTyIds(ctx, m, strings, v.Fields)
			}
		}
		return nil

	case CtorStruct:
		d := m.Def(c.StructDef)
		if d == nil || d.Kind != hir.DefStruct {
			return nil
		}
		return fieldTyIds(ctx, m, strings, d.Struct.Fields)

	case CtorTuple:
		elems, _ := ctx.Types.TupleInfo(ctx.Resolve(ty))
		return elems

	case CtorReference:
		t, ok := ctx.Types.Lookup(ctx.Resolve(ty))
		if !ok {
			return nil
		}
		return []types.TyId{t.Elem}

	default:
		return nil
	}
}

func fieldTyIds(ctx *types.Context, m *hir.Module, strings *source.Interner, fields []hir.Field) []types.TyId {
	out := make([]types.TyId, len(fields))
	for i, f := range fields {
		out[i] = types.FromHIR(ctx, m, strings, nil, f.Type)
	}
	return out
}
