package mir

// TermKind enumerates spec.md §3's Terminator sum. TermNone marks a block
// that has not yet been given a terminator (a lowering-in-progress state;
// Validate rejects it in finished MIR).
type TermKind uint8

const (
	TermNone TermKind = iota
	TermReturn
	TermGoto
	TermSwitchInt
	TermUnreachable
	TermCall
)

func (k TermKind) String() string {
	switch k {
	case TermNone:
		return "none"
	case TermReturn:
		return "return"
	case TermGoto:
		return "goto"
	case TermSwitchInt:
		return "switch_int"
	case TermUnreachable:
		return "unreachable"
	case TermCall:
		return "call"
	default:
		return "unknown"
	}
}

// ReturnTerm ends the function, optionally with a value.
type ReturnTerm struct {
	HasValue bool
	Value    Operand
}

// GotoTerm is an unconditional jump.
type GotoTerm struct {
	Target BlockID
}

// SwitchIntCase is one (value, target) arm of a SwitchInt.
type SwitchIntCase struct {
	Value  int64
	Target BlockID
}

// SwitchIntTerm is spec.md §3's SwitchInt{discriminant, targets, otherwise}:
// the decision-tree primitive `if` and `match` both lower to (§4.7). An
// enum discriminant is read beforehand as a Field(0) projection on the
// conventional {tag, payload...} layout; SwitchIntTerm itself just
// dispatches on the resulting integer.
type SwitchIntTerm struct {
	Discriminant Operand
	Targets      []SwitchIntCase
	Otherwise    BlockID
}

// CallTerm is a call used in terminator position: its result is written to
// Dest and control resumes at Target. Reserved for callees that need an
// explicit post-call block boundary; internal/mirlower's direct method/
// function calls normally use the simpler RValueCall operand form instead
// (spec.md §3 lists Call under both RValue and Terminator; this core has no
// unwinding or async suspension to require the terminator form, so it
// exists for completeness and for any future backend that wants one call
// per block).
type CallTerm struct {
	Callee Callee
	Args   []Operand
	Dest   Place
	Target BlockID
}

// Terminator ends a BasicBlock. Exactly one terminator kind applies.
type Terminator struct {
	Kind TermKind

	Return      ReturnTerm
	Goto        GotoTerm
	SwitchInt   SwitchIntTerm
	Call        CallTerm
	Unreachable struct{}
}
