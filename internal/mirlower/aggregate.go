package mirlower

import (
	"corec/internal/hir"
	"corec/internal/mir"
)

// lowerAggregate lowers a struct/tuple/array/enum-variant literal per
// spec.md §4.7: allocate a temp, Assign each field into temp.field(i),
// then yield Copy(temp). An enum variant additionally writes its
// discriminant into field 0 ahead of its payload fields (the same
// `{tag, payload...}` layout convention §4.7's match-lowering note reads
// the discriminant back from).
func (l *funcLowerer) lowerAggregate(id hir.ExprId, e *hir.Expr) (mir.Operand, error) {
	agg := e.Aggregate
	ty := l.exprType(id)
	if agg == nil {
		return l.unitOperand(), nil
	}
	temp := l.newTemp(ty, e.Span)
	place := mir.Place{Local: temp}

	fieldOffset := 0
	if agg.Kind == hir.AggEnumVariant {
		l.emit(mir.Assign(mir.Field(place, 0), mir.UseOf(mir.ConstOf(mir.Const{
			Kind:     mir.ConstInt,
			Type:     l.ctx.Types.Builtins().Int32,
			IntValue: int64(agg.VariantIdx),
		}))))
		fieldOffset = 1
	}

	for i, f := range agg.Fields {
		op, err := l.lowerExpr(f.Value)
		if err != nil {
			return mir.Operand{}, err
		}
		l.emit(mir.Assign(mir.Field(place, i+fieldOffset), mir.UseOf(op)))
	}

	return mir.CopyOf(place), nil
}
