package types

import (
	"corec/internal/hir"
	"corec/internal/source"
)

// FromHIR turns a syntactic hir.TypeNode into a semantic TyId. typeParams
// maps the enclosing item's generic-parameter names to their declaration
// index — the internal/hir "known simplification" workaround documented in
// DESIGN.md: a bare `T` in a signature lowers as an unresolved TypeNamed
// rather than a TypeGenericParam node, so this is where that gets sorted
// out.
func FromHIR(ctx *Context, m *hir.Module, strings *source.Interner, typeParams map[source.StringID]uint32, id hir.TypeId) TyId {
	n := m.Type(id)
	if n == nil {
		return ctx.Types.Builtins().Error
	}

	switch n.Kind {
	case hir.TypeInferred:
		return ctx.Fresh()

	case hir.TypeGenericParam:
		return ctx.GenericParamTy(n.ParamIndex)

	case hir.TypeNamed:
		if idx, ok := typeParams[n.Name]; ok {
			return ctx.GenericParamTy(idx)
		}
		if n.Def.IsValid() && !m.IsUnknown(n.Def) {
			d := m.Def(n.Def)
			if d != nil && (d.Kind == hir.DefStruct || d.Kind == hir.DefEnum) {
				args := make([]TyId, len(n.GenericArgs))
				for i, a := range n.GenericArgs {
					args[i] = FromHIR(ctx, m, strings, typeParams, a)
				}
				return ctx.Types.RegisterNamed(n.Def, args)
			}
			return ctx.Types.Builtins().Error
		}
		if bt, ok := builtinByName(ctx.Types, strings, n.Name); ok {
			return bt
		}
		return ctx.Types.Builtins().Error

	case hir.TypeTuple:
		elems := make([]TyId, len(n.Elements))
		for i, e := range n.Elements {
			elems[i] = FromHIR(ctx, m, strings, typeParams, e)
		}
		return ctx.Types.RegisterTuple(elems)

	case hir.TypeFunction:
		params := make([]TyId, len(n.Params))
		for i, p := range n.Params {
			params[i] = FromHIR(ctx, m, strings, typeParams, p)
		}
		ret := FromHIR(ctx, m, strings, typeParams, n.Ret)
		return ctx.Types.RegisterFunction(params, ret)

	case hir.TypeReference:
		inner := FromHIR(ctx, m, strings, typeParams, n.Inner)
		return ctx.Types.Intern(MakeRef(n.Mut, inner))

	default:
		return ctx.Types.Builtins().Error
	}
}

// builtinByName maps a primitive type's surface name to its TyId.
func builtinByName(in *Interner, strings *source.Interner, name source.StringID) (TyId, bool) {
	if !name.IsValid() {
		return NoTyId, false
	}
	text, ok := strings.Lookup(name)
	if !ok {
		return NoTyId, false
	}
	b := in.Builtins()
	switch text {
	case "bool":
		return b.Bool, true
	case "string", "str":
		return b.String, true
	case "unit", "()":
		return b.Unit, true
	case "never":
		return b.Never, true
	// spec.md §3's TyKind list has one Int kind with no Signed field, so an
	// unsigned surface name interns to the same TyId as its signed sibling
	// of equal width (documented as a decision in DESIGN.md).
	case "int", "i64", "uint", "u64":
		return b.Int64, true
	case "i32", "u32":
		return b.Int32, true
	case "i16", "u16":
		return b.Int16, true
	case "i8", "u8":
		return b.Int8, true
	case "float", "f64":
		return b.Float64, true
	case "f32":
		return b.Float32, true
	default:
		return NoTyId, false
	}
}
