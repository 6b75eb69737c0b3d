package mir

// ProjKind enumerates spec.md §3's Place projections.
type ProjKind uint8

const (
	ProjField ProjKind = iota
	ProjIndex
	ProjDeref
)

// Projection is one step in a Place's projection chain.
type Projection struct {
	Kind ProjKind

	FieldIdx   int     // ProjField
	IndexLocal LocalID // ProjIndex: the local holding the index value
}

// Place is spec.md §3's (LocalId, [Projection]) location-valued expression.
type Place struct {
	Local LocalID
	Proj  []Projection
}

// IsValid reports whether Local names a real local.
func (p Place) IsValid() bool {
	return p.Local != NoLocalID
}

// Field returns the place for the ith field/element of p.
func Field(p Place, idx int) Place {
	return Place{Local: p.Local, Proj: append(append([]Projection{}, p.Proj...), Projection{Kind: ProjField, FieldIdx: idx})}
}

// Deref returns the place a reference/pointer place points to.
func Deref(p Place) Place {
	return Place{Local: p.Local, Proj: append(append([]Projection{}, p.Proj...), Projection{Kind: ProjDeref})}
}

// Index returns the place at index local idx into p.
func Index(p Place, idx LocalID) Place {
	return Place{Local: p.Local, Proj: append(append([]Projection{}, p.Proj...), Projection{Kind: ProjIndex, IndexLocal: idx})}
}
