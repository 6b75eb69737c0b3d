package diag

import "fmt"

// Code is a compact, stable identifier for a diagnostic kind. Codes are
// grouped into dense ranges by taxonomy category so that ID() can derive a
// short mnemonic prefix purely from the numeric value.
type Code uint16

const (
	UnknownCode Code = 0

	// Syntax placeholder (1000s): malformed CST node lowered to a placeholder.
	SynInfo            Code = 1000
	SynPlaceholderNode Code = 1001 // generic "expected X" recovery node

	// Resolution (2000s).
	ResInfo               Code = 2000
	ResUnknownName        Code = 2001
	ResDuplicateDefinition Code = 2002
	ResAmbiguousName       Code = 2003
	ResPrivateAccess       Code = 2004

	// Type (3000s).
	TypInfo          Code = 3000
	TypMismatch      Code = 3001
	TypOccursCheck   Code = 3002
	TypArityMismatch Code = 3003
	TypUnknownField  Code = 3004
	TypUnknownVariant Code = 3005

	// Bound (4000s).
	BndInfo                   Code = 4000
	BndUnsatisfiedBound       Code = 4001
	BndMissingSupertraitImpl  Code = 4002
	BndMissingAssociatedType  Code = 4003
	BndUnsatisfiedWhereClause Code = 4004

	// Method (5000s).
	MthInfo                Code = 5000
	MthNoMatch              Code = 5001
	MthAmbiguousMethod      Code = 5002
	MthMutabilityMismatch   Code = 5003
	MthAmbiguousReceiver    Code = 5004

	// Pattern (6000s).
	PatInfo            Code = 6000
	PatNonExhaustive   Code = 6001
	PatUnreachableArm  Code = 6002
	PatOrBindingMismatch Code = 6003
)

var codeDescription = map[Code]string{
	UnknownCode:            "Unknown error",
	SynInfo:                "Syntax recovery information",
	SynPlaceholderNode:     "malformed node lowered to placeholder",
	ResInfo:                "Resolution information",
	ResUnknownName:         "unknown name",
	ResDuplicateDefinition: "duplicate definition",
	ResAmbiguousName:       "ambiguous name",
	ResPrivateAccess:       "private item is not visible here",
	TypInfo:                "Type information",
	TypMismatch:            "type mismatch",
	TypOccursCheck:         "recursive type detected during unification",
	TypArityMismatch:       "wrong number of arguments",
	TypUnknownField:        "unknown field",
	TypUnknownVariant:      "unknown enum variant",
	BndInfo:                   "Bound information",
	BndUnsatisfiedBound:       "unsatisfied trait bound",
	BndMissingSupertraitImpl:  "missing supertrait implementation",
	BndMissingAssociatedType:  "missing associated type",
	BndUnsatisfiedWhereClause: "unsatisfied where-clause constraint",
	MthInfo:                "Method resolution information",
	MthNoMatch:             "no matching method",
	MthAmbiguousMethod:     "ambiguous method call",
	MthMutabilityMismatch:  "receiver is not mutable",
	MthAmbiguousReceiver:   "receiver type is not yet known",
	PatInfo:                "Pattern information",
	PatNonExhaustive:       "non-exhaustive match",
	PatUnreachableArm:      "unreachable match arm",
	PatOrBindingMismatch:   "or-pattern alternatives bind different names",
}

// ID returns a short mnemonic identifier such as "TYP3001".
func (c Code) ID() string {
	switch n := int(c); {
	case n >= 1000 && n < 2000:
		return fmt.Sprintf("SYN%04d", n)
	case n >= 2000 && n < 3000:
		return fmt.Sprintf("RES%04d", n)
	case n >= 3000 && n < 4000:
		return fmt.Sprintf("TYP%04d", n)
	case n >= 4000 && n < 5000:
		return fmt.Sprintf("BND%04d", n)
	case n >= 5000 && n < 6000:
		return fmt.Sprintf("MTH%04d", n)
	case n >= 6000 && n < 7000:
		return fmt.Sprintf("PAT%04d", n)
	}
	return "E0000"
}

// Title returns the human-readable description registered for the code.
func (c Code) Title() string {
	if desc, ok := codeDescription[c]; ok {
		return desc
	}
	return codeDescription[UnknownCode]
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
