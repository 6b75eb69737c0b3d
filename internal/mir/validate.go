package mir

import (
	"errors"
	"fmt"

	"corec/internal/types"
)

// Validate checks spec.md §3's MIR invariants across every function in m:
// block ids dense and stable, every block terminated exactly once,
// SwitchInt/Goto/Call targets in range, and every Place/Operand reference
// resolving to a local that exists.
func Validate(m *MirModule, tys *types.Interner) error {
	if m == nil {
		return nil
	}
	var errs []error
	for _, f := range m.Functions {
		if f == nil {
			continue
		}
		if err := validateFunction(f, tys); err != nil {
			errs = append(errs, fmt.Errorf("function %s: %w", f.Name, err))
		}
	}
	return errors.Join(errs...)
}

func validateFunction(f *MirFunction, tys *types.Interner) error {
	var errs []error
	if err := validateDenseBlocks(f); err != nil {
		errs = append(errs, err)
	}
	if err := validateTerminated(f); err != nil {
		errs = append(errs, err)
	}
	if err := validateTargets(f); err != nil {
		errs = append(errs, err)
	}
	if err := validateLocalRefs(f); err != nil {
		errs = append(errs, err)
	}
	if err := validateEntry(f); err != nil {
		errs = append(errs, err)
	}
	if err := validateReturnShape(f, tys); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// validateReturnShape checks that every TermReturn's HasValue agrees with
// whether the function's declared return type is Unit.
func validateReturnShape(f *MirFunction, tys *types.Interner) error {
	if tys == nil || !f.ReturnType.IsValid() {
		return nil
	}
	isUnit := f.ReturnType == tys.Builtins().Unit
	var errs []error
	for i := range f.Blocks {
		bb := &f.Blocks[i]
		if bb.Term.Kind != TermReturn {
			continue
		}
		if isUnit && bb.Term.Return.HasValue {
			errs = append(errs, fmt.Errorf("bb%d: return with value in a Unit-returning function", i))
		}
		if !isUnit && !bb.Term.Return.HasValue {
			errs = append(errs, fmt.Errorf("bb%d: return without value in a non-Unit-returning function", i))
		}
	}
	return errors.Join(errs...)
}

// validateDenseBlocks checks that block ids within a function are dense and
// stable: block i's ID equals its index.
func validateDenseBlocks(f *MirFunction) error {
	var errs []error
	for i, bb := range f.Blocks {
		if int(bb.ID) != i {
			errs = append(errs, fmt.Errorf("block at index %d has ID %d, want %d", i, bb.ID, i))
		}
	}
	return errors.Join(errs...)
}

func validateTerminated(f *MirFunction) error {
	var errs []error
	for i := range f.Blocks {
		if !f.Blocks[i].Terminated() {
			errs = append(errs, fmt.Errorf("bb%d: unterminated block", i))
		}
	}
	return errors.Join(errs...)
}

func blockExists(f *MirFunction, id BlockID) bool {
	return id >= 0 && int(id) < len(f.Blocks)
}

// validateTargets checks that SwitchInt's targets are exhaustive together
// with otherwise (spec.md §3 invariant) and that every Goto/Call/SwitchInt
// target block exists.
func validateTargets(f *MirFunction) error {
	var errs []error
	for i := range f.Blocks {
		bb := &f.Blocks[i]
		switch bb.Term.Kind {
		case TermGoto:
			if !blockExists(f, bb.Term.Goto.Target) {
				errs = append(errs, fmt.Errorf("bb%d: goto target bb%d does not exist", i, bb.Term.Goto.Target))
			}
		case TermSwitchInt:
			seen := make(map[int64]bool)
			for _, c := range bb.Term.SwitchInt.Targets {
				if seen[c.Value] {
					errs = append(errs, fmt.Errorf("bb%d: switch_int has duplicate case for value %d", i, c.Value))
				}
				seen[c.Value] = true
				if !blockExists(f, c.Target) {
					errs = append(errs, fmt.Errorf("bb%d: switch_int case %d target bb%d does not exist", i, c.Value, c.Target))
				}
			}
			if !blockExists(f, bb.Term.SwitchInt.Otherwise) {
				errs = append(errs, fmt.Errorf("bb%d: switch_int otherwise target bb%d does not exist", i, bb.Term.SwitchInt.Otherwise))
			}
		case TermCall:
			if !blockExists(f, bb.Term.Call.Target) {
				errs = append(errs, fmt.Errorf("bb%d: call target bb%d does not exist", i, bb.Term.Call.Target))
			}
		}
	}
	return errors.Join(errs...)
}

// validateLocalRefs checks that every Place/Operand in the function refers
// to a local that exists.
func validateLocalRefs(f *MirFunction) error {
	var errs []error
	localExists := func(id LocalID) bool {
		return id >= 0 && int(id) < len(f.Locals)
	}
	checkPlace := func(p Place, ctx string) {
		if p.Local != NoLocalID && !localExists(p.Local) {
			errs = append(errs, fmt.Errorf("%s: local L%d does not exist", ctx, p.Local))
		}
		for _, proj := range p.Proj {
			if proj.Kind == ProjIndex && proj.IndexLocal != NoLocalID && !localExists(proj.IndexLocal) {
				errs = append(errs, fmt.Errorf("%s: index local L%d does not exist", ctx, proj.IndexLocal))
			}
		}
	}
	checkOperand := func(op Operand, ctx string) {
		if op.Kind == OperandCopy || op.Kind == OperandMove {
			checkPlace(op.Place, ctx)
		}
	}
	checkRValue := func(rv *RValue, ctx string) {
		switch rv.Kind {
		case RValueUse:
			checkOperand(rv.Use, ctx)
		case RValueUnaryOp:
			checkOperand(rv.Unary.Operand, ctx)
		case RValueBinaryOp:
			checkOperand(rv.Binary.Left, ctx)
			checkOperand(rv.Binary.Right, ctx)
		case RValueRef:
			checkPlace(rv.Ref.Place, ctx)
		case RValueCall:
			if rv.Call.Callee.Kind == CalleeIndirect {
				checkOperand(rv.Call.Callee.Value, ctx)
			}
			for _, a := range rv.Call.Args {
				checkOperand(a, ctx)
			}
		case RValueAggregate:
			for _, o := range rv.Aggregate.Operands {
				checkOperand(o, ctx)
			}
		}
	}

	for i := range f.Blocks {
		bb := &f.Blocks[i]
		for j := range bb.Stmts {
			st := &bb.Stmts[j]
			ctx := fmt.Sprintf("bb%d stmt %d", i, j)
			switch st.Kind {
			case StmtAssign:
				checkPlace(st.Assign.Dst, ctx)
				checkRValue(&st.Assign.Src, ctx)
			case StmtStorageLive, StmtStorageDead:
				if !localExists(st.Local) {
					errs = append(errs, fmt.Errorf("%s: local L%d does not exist", ctx, st.Local))
				}
			}
		}
		ctx := fmt.Sprintf("bb%d terminator", i)
		switch bb.Term.Kind {
		case TermReturn:
			if bb.Term.Return.HasValue {
				checkOperand(bb.Term.Return.Value, ctx)
			}
		case TermSwitchInt:
			checkOperand(bb.Term.SwitchInt.Discriminant, ctx)
		case TermCall:
			checkPlace(bb.Term.Call.Dest, ctx)
			if bb.Term.Call.Callee.Kind == CalleeIndirect {
				checkOperand(bb.Term.Call.Callee.Value, ctx)
			}
			for _, a := range bb.Term.Call.Args {
				checkOperand(a, ctx)
			}
		}
	}
	return errors.Join(errs...)
}

func validateEntry(f *MirFunction) error {
	if !blockExists(f, f.Entry) {
		return fmt.Errorf("entry block bb%d does not exist", f.Entry)
	}
	return nil
}
