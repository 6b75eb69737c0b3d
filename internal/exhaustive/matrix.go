package exhaustive

import "corec/internal/hir"

// Cell is one matrix position: a resolved pattern node, or nil standing
// for the wildcard position (either a genuine PatWildcard/bare binding, or
// a synthetic wildcard introduced by specializing a wildcard head).
type Cell = *hir.Pattern

// Row is one pattern vector; Matrix is spec.md §4.5's M, a set of rows all
// of the same width.
type Row []Cell
type Matrix []Row

// NewRow resolves an arm's top-level pattern id into a single-cell Row,
// the matrix algorithm's entry representation.
func NewRow(m *hir.Module, id hir.PatId) Row {
	return Row{normalize(m, id)}
}

// normalize follows a Binding pattern down to its sub-pattern (or nil,
// i.e. the wildcard position, if it has none), so the matrix algorithm
// only ever has to reason about a pattern's "real" shape.
func normalize(m *hir.Module, id hir.PatId) Cell {
	p := m.Pat(id)
	for p != nil && p.Kind == hir.PatBinding && p.Sub.IsValid() {
		p = m.Pat(p.Sub)
	}
	return p
}

// isWildcard reports whether a cell occupies the wildcard position: nil,
// an actual wildcard, or a binding with no sub-pattern.
func isWildcard(p Cell) bool {
	if p == nil {
		return true
	}
	switch p.Kind {
	case hir.PatWildcard:
		return true
	case hir.PatBinding:
		return !p.Sub.IsValid()
	default:
		return false
	}
}

// headConstructor extracts the constructor a concrete (non-wildcard) cell
// builds, or ok=false if the cell is a wildcard.
func headConstructor(p Cell) (Constructor, bool) {
	if isWildcard(p) {
		return Constructor{}, false
	}
	switch p.Kind {
	case hir.PatLiteral:
		if p.Literal != nil && p.Literal.Kind == hir.LitBool {
			if p.Literal.Bool {
				return Constructor{Kind: CtorBoolTrue}, true
			}
			return Constructor{Kind: CtorBoolFalse}, true
		}
		if p.Literal != nil && p.Literal.Kind == hir.LitInt {
			return Constructor{Kind: CtorIntRange, Lo: p.Literal.Int, Hi: p.Literal.Int}, true
		}
		return Constructor{}, false
	case hir.PatRange:
		lo, hi := rangeBounds(p)
		return Constructor{Kind: CtorIntRange, Lo: lo, Hi: hi}, true
	case hir.PatTuple:
		return Constructor{Kind: CtorTuple, Arity: len(p.Elements)}, true
	case hir.PatStruct:
		return Constructor{Kind: CtorStruct, StructDef: p.StructDef, Arity: len(p.Fields)}, true
	case hir.PatEnumVariant:
		return Constructor{Kind: CtorEnumVariant, EnumDef: p.EnumDef, VariantIdx: p.VariantIdx, Arity: len(p.SubPats)}, true
	default:
		return Constructor{}, false
	}
}

func rangeBounds(p *hir.Pattern) (int64, int64) {
	lo, hi := int64(minInt64), int64(maxInt64)
	if p.Start != nil {
		lo = p.Start.Int
	}
	if p.End != nil {
		hi = p.End.Int
		if !p.Inclusive {
			hi--
		}
	}
	return lo, hi
}

const (
	minInt64 = -1 << 63
	maxInt64 = 1<<63 - 1
)

// rangesOverlap is the interval-intersection test spec.md §4.5 calls for
// when specializing against an IntRange constructor. This is an overlap
// test, not an exact split of disjoint sub-ranges (Maranget's full
// algorithm partitions ranges so a partially-overlapping pattern only
// contributes the intersecting slice); documented simplification, noted
// in DESIGN.md.
func rangesOverlap(a, b Constructor) bool {
	return a.Lo <= b.Hi && b.Lo <= a.Hi
}

// subCells returns a head cell's sub-positions, in constructor field
// order, once its shape is known to match c. A wildcard head expands to
// c.Arity synthetic wildcard cells (nil).
func subCells(m *hir.Module, p Cell, c Constructor) []Cell {
	if isWildcard(p) {
		return make([]Cell, c.Arity)
	}
	switch p.Kind {
	case hir.PatTuple:
		return resolveAll(m, p.Elements)
	case hir.PatStruct:
		ids := make([]hir.PatId, len(p.Fields))
		for i, f := range p.Fields {
			ids[i] = f.Pattern
		}
		return resolveAll(m, ids)
	case hir.PatEnumVariant:
		return resolveAll(m, p.SubPats)
	default:
		return nil
	}
}

func resolveAll(m *hir.Module, ids []hir.PatId) []Cell {
	out := make([]Cell, len(ids))
	for i, id := range ids {
		out[i] = normalize(m, id)
	}
	return out
}

// Specialize implements S(M, c): for each row, if the head matches c,
// replace the head with c's sub-cells; rows whose head is a different
// constructor are dropped.
func Specialize(m *hir.Module, rows Matrix, c Constructor) Matrix {
	var out Matrix
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		head := row[0]
		if isWildcard(head) {
			newRow := make(Row, 0, c.Arity+len(row)-1)
			newRow = append(newRow, make(Row, c.Arity)...)
			newRow = append(newRow, row[1:]...)
			out = append(out, newRow)
			continue
		}
		hc, ok := headConstructor(head)
		if !ok || !ctorMatches(hc, c) {
			continue
		}
		subs := subCells(m, head, c)
		newRow := make(Row, 0, len(subs)+len(row)-1)
		newRow = append(newRow, subs...)
		newRow = append(newRow, row[1:]...)
		out = append(out, newRow)
	}
	return out
}

func ctorMatches(head, target Constructor) bool {
	if head.Kind != target.Kind {
		return false
	}
	switch head.Kind {
	case CtorEnumVariant:
		return head.VariantIdx == target.VariantIdx
	case CtorIntRange:
		return rangesOverlap(head, target)
	default:
		return true
	}
}

// Default implements D(M): keep rows whose head is a wildcard, dropping
// the head column.
func Default(rows Matrix) Matrix {
	var out Matrix
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		if isWildcard(row[0]) {
			out = append(out, row[1:])
		}
	}
	return out
}

// ExpandOrRows flattens top-level Or-patterns (spec.md §4.5: "Or-patterns
// flatten to multiple rows") into one row per alternative. Only the first
// column is expanded — the common `Some(x) | None => ...` shape — not an
// Or nested arbitrarily deep inside a tuple/struct/enum sub-position,
// which would require a full cartesian expansion; documented
// simplification.
func ExpandOrRows(m *hir.Module, rows Matrix) Matrix {
	var out Matrix
	for _, row := range rows {
		if len(row) == 0 || row[0] == nil || row[0].Kind != hir.PatOr {
			out = append(out, row)
			continue
		}
		for _, alt := range row[0].Alternatives {
			newRow := append(Row{normalize(m, alt)}, row[1:]...)
			out = append(out, newRow)
		}
	}
	return out
}
