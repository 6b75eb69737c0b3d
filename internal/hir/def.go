package hir

import "corec/internal/source"

// DefKind enumerates the kinds of Definition, per spec.md §3.
type DefKind uint8

const (
	DefInvalid DefKind = iota
	DefFunction
	DefStruct
	DefEnum
	DefTrait
	DefImpl
	DefModule
	DefUse
	DefExternalFunction
	DefLocal
)

func (k DefKind) String() string {
	switch k {
	case DefFunction:
		return "function"
	case DefStruct:
		return "struct"
	case DefEnum:
		return "enum"
	case DefTrait:
		return "trait"
	case DefImpl:
		return "impl"
	case DefModule:
		return "module"
	case DefUse:
		return "use"
	case DefExternalFunction:
		return "extern_function"
	case DefLocal:
		return "local"
	default:
		return "invalid"
	}
}

// ABIKind enumerates the ABI tags an extern function/block may carry.
type ABIKind uint8

const (
	ABIUnspecified ABIKind = iota
	ABIC
	ABIPrivateV0
)

func (a ABIKind) String() string {
	switch a {
	case ABIC:
		return "c"
	case ABIPrivateV0:
		return "private-v0"
	default:
		return "unspecified"
	}
}

// Param is one function parameter: a name, its declared type node, and the
// Local DefId registered for it inside the function's scope.
type Param struct {
	Name source.StringID
	Type TypeId
	Span source.Span
	Def  DefId
}

// Field is one struct field or enum-variant field.
type Field struct {
	Name source.StringID
	Type TypeId
	Span source.Span
}

// Variant is one enum variant: a name plus an ordered list of (possibly
// unnamed, i.e. tuple-style) fields. VariantIdx is its 0-based position,
// used by exhaustiveness and MIR discriminants.
type Variant struct {
	Name       source.StringID
	Fields     []Field
	VariantIdx uint32
	Span       source.Span
}

// TypeParam is one generic parameter on a Function/Struct/Enum/Trait/Impl,
// together with the trait bounds declared on it (by DefId of the Trait).
type TypeParam struct {
	Name   source.StringID
	Index  uint32
	Bounds []DefId
	Span   source.Span
}

// WhereClause is one `where T: Trait` constraint attached to a generic item.
type WhereClause struct {
	ParamIndex uint32
	Trait      DefId
	Span       source.Span
}

// Function is the body of a DefFunction/DefExternalFunction Definition.
type Function struct {
	Name       source.StringID
	Params     []Param
	ReturnType TypeId
	TypeParams []TypeParam
	Where      []WhereClause
	Body       ExprId // NoExprId for an extern declaration
	Span       source.Span

	// Extern-only fields.
	ABI           ABIKind
	RawSymbol     source.StringID // as written, for ABIC
	MangledSymbol string          // length-prefixed mangled form, for ABIPrivateV0

	// Set by lowering for a method (Function living inside an Impl): the
	// declared `self` parameter shape, used by method resolution (§4.6).
	Receiver ReceiverKind
}

// ReceiverKind classifies how (or whether) a function takes `self`.
type ReceiverKind uint8

const (
	ReceiverNone ReceiverKind = iota
	ReceiverByValue
	ReceiverByRef
	ReceiverByRefMut
)

// Struct is the body of a DefStruct Definition.
type Struct struct {
	Name       source.StringID
	Fields     []Field
	TypeParams []TypeParam
	Span       source.Span
}

// Enum is the body of a DefEnum Definition.
type Enum struct {
	Name       source.StringID
	Variants   []Variant
	TypeParams []TypeParam
	Span       source.Span
}

// AssocType is one `type Name;` associated-type slot declared by a Trait.
type AssocType struct {
	Name source.StringID
	Span source.Span
}

// Trait is the body of a DefTrait Definition.
type Trait struct {
	Name        source.StringID
	Supertraits []DefId
	Methods     []DefId // DefFunction entries, signature-only (Body may be NoExprId)
	AssocTypes  []AssocType
	TypeParams  []TypeParam
	Span        source.Span
}

// ImplAssocType is one associated-type binding provided by an impl block.
type ImplAssocType struct {
	Name source.StringID
	Type TypeId
}

// Impl is the body of a DefImpl Definition: `impl [Trait for] SelfType`.
type Impl struct {
	Trait      DefId // NoDefId for an inherent impl
	SelfType   TypeId
	Methods    []DefId // DefFunction entries
	AssocTypes []ImplAssocType
	TypeParams []TypeParam
	Where      []WhereClause
	Span       source.Span
}

// Module is the body of a DefModule Definition: a nested namespace.
type Module struct {
	Name    source.StringID
	Members []DefId
	Span    source.Span
}

// Use is the body of a DefUse Definition: an import, optionally re-exported.
type Use struct {
	Path   []source.StringID
	Alias  source.StringID // NoStringID if none
	Public bool
	Target DefId // resolved by name resolution; NoDefId until then
	Span   source.Span
}

// Local is the body of a DefLocal Definition: a function parameter or a
// `let`-bound name.
type Local struct {
	Name    source.StringID
	Mutable bool
	Span    source.Span
}

// Definition is one arena-indexed entry of any DefKind. Exactly one of the
// payload fields is meaningful, selected by Kind.
type Definition struct {
	Kind DefKind
	Span source.Span

	Function *Function
	Struct   *Struct
	Enum     *Enum
	Trait    *Trait
	Impl     *Impl
	Module   *Module
	Use      *Use
	Local    *Local
}
