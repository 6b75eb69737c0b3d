package mirlower

import (
	"fmt"

	"corec/internal/hir"
	"corec/internal/mir"
	"corec/internal/source"
	"corec/internal/types"
)

// lowerPlace lowers an expression used as an lvalue — an assignment
// target, a reference operand, or a dereference's inner operand — into a
// mir.Place. Anything not directly addressable (a call result, an
// aggregate literal, ...) is materialized into a fresh temp local first,
// which is always a valid place to read back from or assign into.
func (l *funcLowerer) lowerPlace(id hir.ExprId) (mir.Place, error) {
	e := l.m.Expr(id)
	if e == nil {
		return mir.Place{}, fmt.Errorf("mirlower: nil expr for place %d", id)
	}
	switch e.Kind {
	case hir.ExprVariable:
		local := l.ensureLocal(e.Ref, e.Name, l.ctx.LocalTypes[e.Ref], e.Span)
		return mir.Place{Local: local}, nil

	case hir.ExprFieldAccess:
		base, err := l.lowerPlace(e.Receiver)
		if err != nil {
			return mir.Place{}, err
		}
		idx, err := l.fieldIndex(e.Receiver, e.Method)
		if err != nil {
			return mir.Place{}, err
		}
		return mir.Field(base, idx), nil

	case hir.ExprIndex:
		base, err := l.lowerPlace(e.Receiver)
		if err != nil {
			return mir.Place{}, err
		}
		if len(e.Args) == 0 {
			return mir.Place{}, fmt.Errorf("mirlower: index expression with no index argument")
		}
		idxOp, err := l.lowerExpr(e.Args[0])
		if err != nil {
			return mir.Place{}, err
		}
		idxLocal := l.operandToLocal(idxOp, l.exprType(e.Args[0]), e.Span)
		return mir.Index(base, idxLocal), nil

	case hir.ExprDereference:
		base, err := l.lowerPlace(e.Inner)
		if err != nil {
			return mir.Place{}, err
		}
		return mir.Deref(base), nil

	default:
		op, err := l.lowerExpr(id)
		if err != nil {
			return mir.Place{}, err
		}
		local := l.operandToLocal(op, l.exprType(id), e.Span)
		return mir.Place{Local: local}, nil
	}
}

// fieldIndex resolves a named field access against the struct type of
// receiverExpr, returning the field's 0-based position (spec.md §4.7
// lowers field access through Field(idx), never by name).
func (l *funcLowerer) fieldIndex(receiverExpr hir.ExprId, fieldName source.StringID) (int, error) {
	ty := l.ctx.Resolve(l.exprType(receiverExpr))
	ty = derefTy(l.ctx, ty)
	def, _, ok := l.ctx.Types.NamedInfo(ty)
	if !ok {
		return 0, fmt.Errorf("mirlower: field access on a non-struct type")
	}
	d := l.m.Def(def)
	if d == nil || d.Struct == nil {
		return 0, fmt.Errorf("mirlower: field access target is not a struct definition")
	}
	for i, f := range d.Struct.Fields {
		if f.Name == fieldName {
			return i, nil
		}
	}
	return 0, fmt.Errorf("mirlower: field %q not found", name(l.strings, fieldName))
}

// derefTy strips a single layer of Ref, so `receiver.field` works the same
// whether receiver's static type is T or &T / &mut T.
func derefTy(ctx *types.Context, ty types.TyId) types.TyId {
	if t, ok := ctx.Types.Lookup(ty); ok && t.Kind == types.KindRef {
		return t.Elem
	}
	return ty
}
