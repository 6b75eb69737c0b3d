package exhaustive

import (
	"strconv"
	stdstrings "strings"

	"corec/internal/hir"
	"corec/internal/source"
	"corec/internal/types"
)

// Witness is a recovered constructor shape for one missing-pattern column,
// e.g. `Some(_)` is Witness{Ctor: EnumVariant(Some), Sub: [Witness{Wildcard}]}.
type Witness struct {
	Ctor Constructor
	Sub  []Witness
}

// MissingRows implements spec.md §4.5's missing-pattern recovery: run
// usefulness with v = [Wildcard, ...] against the full matrix and, where
// useful, recover the witnessing constructors instead of a generic
// wildcard. Each returned row has exactly len(colTys) witnesses, one per
// remaining column.
func MissingRows(ctx *types.Context, m *hir.Module, strings *source.Interner, rows Matrix, colTys []types.TyId) [][]Witness {
	if len(colTys) == 0 {
		if len(rows) == 0 {
			return [][]Witness{{}}
		}
		return nil
	}

	ctors, complete := EnumerateConstructors(ctx, m, colTys[0])
	if !complete {
		tails := MissingRows(ctx, m, strings, Default(rows), colTys[1:])
		out := make([][]Witness, 0, len(tails))
		for _, tail := range tails {
			out = append(out, append([]Witness{{Ctor: Constructor{Kind: CtorWildcard}}}, tail...))
		}
		return out
	}

	var out [][]Witness
	for _, c := range ctors {
		sub := Specialize(m, rows, c)
		subTys := append(append([]types.TyId{}, FieldTypes(ctx, m, strings, colTys[0], c)...), colTys[1:]...)
		subRows := MissingRows(ctx, m, strings, sub, subTys)
		for _, sr := range subRows {
			fields := append([]Witness{}, sr[:c.Arity]...)
			tail := sr[c.Arity:]
			out = append(out, append([]Witness{{Ctor: c, Sub: fields}}, tail...))
		}
	}
	return out
}

// Render produces a human-readable rendering of a witness for a
// diagnostic message, e.g. "Some(_)", "(1, _)", "Point{_, _}".
func Render(m *hir.Module, strings *source.Interner, w Witness) string {
	switch w.Ctor.Kind {
	case CtorWildcard:
		return "_"
	case CtorBoolTrue:
		return "true"
	case CtorBoolFalse:
		return "false"
	case CtorIntRange:
		if w.Ctor.Lo == w.Ctor.Hi {
			return strconv.FormatInt(w.Ctor.Lo, 10)
		}
		return strconv.FormatInt(w.Ctor.Lo, 10) + ".." + strconv.FormatInt(w.Ctor.Hi, 10)
	case CtorTuple:
		return "(" + renderSubs(m, strings, w.Sub) + ")"
	case CtorReference:
		if len(w.Sub) == 1 {
			return "&" + Render(m, strings, w.Sub[0])
		}
		return "&_"
	case CtorStruct:
		name := lookupName(strings, m.DefName(w.Ctor.StructDef))
		return name + "{" + renderSubs(m, strings, w.Sub) + "}"
	case CtorEnumVariant:
		name := variantName(m, strings, w.Ctor.EnumDef, w.Ctor.VariantIdx)
		if len(w.Sub) == 0 {
			return name
		}
		return name + "(" + renderSubs(m, strings, w.Sub) + ")"
	default:
		return "_"
	}
}

func renderSubs(m *hir.Module, strings *source.Interner, subs []Witness) string {
	parts := make([]string, len(subs))
	for i, s := range subs {
		parts[i] = Render(m, strings, s)
	}
	return stdstrings.Join(parts, ", ")
}

func variantName(m *hir.Module, strings *source.Interner, enumDef hir.DefId, idx uint32) string {
	d := m.Def(enumDef)
	if d == nil || d.Kind != hir.DefEnum {
		return "_"
	}
	for _, v := range d.Enum.Variants {
		if v.VariantIdx == idx {
			return lookupName(strings, v.Name)
		}
	}
	return "_"
}

func lookupName(strings *source.Interner, id source.StringID) string {
	if s, ok := strings.Lookup(id); ok {
		return s
	}
	return "<unnamed>"
}
