// Package types is the semantic type system: TyId arena, constraint-based
// unification with occurs check and nominal equality, and the bidirectional
// inference walk over internal/hir bodies (spec.md §3, §4.3). TyId is
// distinct from hir.TypeId: the latter is "a type as written", the former is
// what inference resolves it to.
package types

import (
	"fmt"

	"fortio.org/safecast"
)

// TyId indexes into an Interner's type table. Zero is the invalid sentinel.
type TyId uint32

// NoTyId marks the absence of a type.
const NoTyId TyId = 0

// IsValid reports whether id names an interned type.
func (id TyId) IsValid() bool { return id != NoTyId }

// TyVarId names one unification variable. Once Context.Bind substitutes it,
// it is never reused for a different type (spec.md §3 invariant).
type TyVarId uint32

// NoTyVarId marks the absence of a type variable.
const NoTyVarId TyVarId = 0

// Width distinguishes the bit-width of an Int/Float type. WidthAny stands
// for the unsuffixed-literal default before it is pinned to a concrete
// width by context.
type Width uint8

const (
	WidthAny Width = iota
	Width8
	Width16
	Width32
	Width64
)

func (w Width) String() string {
	switch w {
	case Width8:
		return "8"
	case Width16:
		return "16"
	case Width32:
		return "32"
	case Width64:
		return "64"
	default:
		return ""
	}
}

// Kind enumerates the semantic type forms of spec.md §3's TyKind.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindInt
	KindFloat
	KindBool
	KindString
	KindUnit
	KindNever
	KindNamed
	KindFunction
	KindTuple
	KindRef
	KindVar
	KindGenericParam
	KindArray
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindUnit:
		return "unit"
	case KindNever:
		return "never"
	case KindNamed:
		return "named"
	case KindFunction:
		return "function"
	case KindTuple:
		return "tuple"
	case KindRef:
		return "ref"
	case KindVar:
		return "var"
	case KindGenericParam:
		return "generic_param"
	case KindArray:
		return "array"
	case KindError:
		return "error"
	default:
		return "invalid"
	}
}

// Ty is the fixed-size, comparable descriptor an Interner hash-conses on.
// Variants with variable-length payloads (Named's args, Function's
// params/ret, Tuple's elements) are stored in side tables and addressed by
// Payload, the same split the teacher's Interner uses for Struct/Alias.
type Ty struct {
	Kind  Kind
	Width Width   // Int/Float only
	Mut   bool    // Ref only: &mut T vs &T
	Elem  TyId    // Ref only: the referent
	Var   TyVarId // Var only
	Param uint32  // GenericParam only: declaration index

	Payload uint32 // Named/Function/Tuple: index into the matching side table
}

// typeKey is Ty minus nothing — every field participates in structural
// dedup, same as the teacher's typeKey.
type typeKey = Ty

// Builtins holds the TyIds of every primitive, interned once up front.
type Builtins struct {
	Bool    TyId
	String  TyId
	Unit    TyId
	Never   TyId
	Error   TyId
	Int     TyId
	Int8    TyId
	Int16   TyId
	Int32   TyId
	Int64   TyId
	Float   TyId
	Float32 TyId
	Float64 TyId
}

// Interner provides stable TyIds by hashing structural descriptors
// (grounded on internal/types/interner.go's Intern/internRaw/Lookup shape).
type Interner struct {
	tys   []Ty
	index map[typeKey]TyId

	named  []namedInfo
	fns    []fnInfo
	tuples []tupleInfo

	builtins Builtins
	nextVar  uint32
}

// NewInterner creates an interner seeded with every primitive Ty.
func NewInterner() *Interner {
	in := &Interner{index: make(map[typeKey]TyId, 64)}
	in.named = append(in.named, namedInfo{})   // reserve 0
	in.fns = append(in.fns, fnInfo{})           // reserve 0
	in.tuples = append(in.tuples, tupleInfo{}) // reserve 0

	in.builtins.Bool = in.Intern(Ty{Kind: KindBool})
	in.builtins.String = in.Intern(Ty{Kind: KindString})
	in.builtins.Unit = in.Intern(Ty{Kind: KindUnit})
	in.builtins.Never = in.Intern(Ty{Kind: KindNever})
	in.builtins.Error = in.internRaw(Ty{Kind: KindError})
	in.builtins.Int = in.Intern(MakeInt(WidthAny))
	in.builtins.Int8 = in.Intern(MakeInt(Width8))
	in.builtins.Int16 = in.Intern(MakeInt(Width16))
	in.builtins.Int32 = in.Intern(MakeInt(Width32))
	in.builtins.Int64 = in.Intern(MakeInt(Width64))
	in.builtins.Float = in.Intern(MakeFloat(WidthAny))
	in.builtins.Float32 = in.Intern(MakeFloat(Width32))
	in.builtins.Float64 = in.Intern(MakeFloat(Width64))
	return in
}

// Builtins returns the interned primitive TyIds.
func (in *Interner) Builtins() Builtins { return in.builtins }

// MakeInt/MakeFloat build the (un-interned) descriptor for an integer/float
// type of the given width. WidthAny is the unsuffixed-literal default.
func MakeInt(w Width) Ty   { return Ty{Kind: KindInt, Width: w} }
func MakeFloat(w Width) Ty { return Ty{Kind: KindFloat, Width: w} }

// MakeRef builds the descriptor for a reference type.
func MakeRef(mut bool, inner TyId) Ty {
	return Ty{Kind: KindRef, Mut: mut, Elem: inner}
}

// MakeArray builds the descriptor for an array type. spec.md §3's TyKind
// list has no Array variant (it only appears on the MIR Aggregate side),
// but §3's Expression/HIR Aggregate list and §6's array_expression node
// kind both need a semantic type for array literals to infer against; this
// is the one place SPEC_FULL.md adds a TyKind the base spec omitted,
// recorded in DESIGN.md. Shares Ref's Elem slot rather than adding a field.
func MakeArray(elem TyId) Ty {
	return Ty{Kind: KindArray, Elem: elem}
}

// MakeGenericParam builds the descriptor for a generic-parameter reference.
func MakeGenericParam(index uint32) Ty {
	return Ty{Kind: KindGenericParam, Param: index}
}

// Intern ensures t has a stable TyId, reusing an existing one structurally
// equal to it.
func (in *Interner) Intern(t Ty) TyId {
	if id, ok := in.index[t]; ok {
		return id
	}
	return in.internRaw(t)
}

func (in *Interner) internRaw(t Ty) TyId {
	n, err := safecast.Conv[uint32](len(in.tys) + 1)
	if err != nil {
		panic(fmt.Errorf("types: interner overflow: %w", err))
	}
	id := TyId(n)
	in.tys = append(in.tys, t)
	in.index[t] = id
	return id
}

// Lookup returns the descriptor for id.
func (in *Interner) Lookup(id TyId) (Ty, bool) {
	if !id.IsValid() || int(id) > len(in.tys) {
		return Ty{}, false
	}
	return in.tys[id-1], true
}

// MustLookup panics on an invalid TyId; used where id is known-valid.
func (in *Interner) MustLookup(id TyId) Ty {
	t, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TyId")
	}
	return t
}

// NewVar allocates a fresh, unbound type variable and interns a Var(TyVarId)
// wrapping it.
func (in *Interner) NewVar() TyId {
	in.nextVar++
	return in.internRaw(Ty{Kind: KindVar, Var: TyVarId(in.nextVar)})
}
