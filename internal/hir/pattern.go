package hir

import "corec/internal/source"

// PatKind enumerates the pattern forms of spec.md §3.
type PatKind uint8

const (
	PatInvalid PatKind = iota
	PatWildcard
	PatLiteral
	PatBinding
	PatTuple
	PatStruct
	PatEnumVariant
	PatOr
	PatRange
)

func (k PatKind) String() string {
	names := [...]string{
		"invalid", "wildcard", "literal", "binding", "tuple", "struct",
		"enum_variant", "or", "range",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "invalid"
}

// StructPatField binds one field of a Struct pattern to a sub-pattern.
type StructPatField struct {
	Name    source.StringID
	Pattern PatId
}

// Pattern is one arena-indexed pattern node.
type Pattern struct {
	Kind PatKind
	Span source.Span

	// Literal.
	Literal *Literal

	// Binding.
	Name    source.StringID
	Mutable bool
	Sub     PatId // NoPatId if no `@` sub-pattern
	// Def is the Local DefId this binding introduces (filled during
	// lowering, consumed by name resolution / inference).
	Def DefId

	// Tuple: element patterns, in order.
	Elements []PatId

	// Struct.
	StructDef DefId
	Fields    []StructPatField

	// EnumVariant.
	EnumDef    DefId
	VariantIdx uint32
	SubPats    []PatId

	// Or.
	Alternatives []PatId

	// Range.
	Start     *Literal
	End       *Literal
	Inclusive bool
}
