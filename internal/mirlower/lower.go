// Package mirlower lowers type-checked internal/hir bodies into
// internal/mir's control-flow-graph data model (spec.md §4.7). It is kept
// separate from internal/mir itself (which stays a pure data-model
// package with no HIR dependency) the same way internal/exhaustive's
// matrix algorithm stays separate from the diagnostics it feeds: one
// package owns the shape, another owns the walk that produces it.
//
// Lowering assumes internal/types has already run over the module: every
// expression's type is available from the shared *types.Context.
// internal/exhaustive's CheckMatch runs here, once per match expression
// (match.go); type checking does not call it, so this is where its
// diagnostics are produced, per spec.md's "MIR lowering consumes this
// analysis" note.
package mirlower

import (
	"fmt"

	"corec/internal/diag"
	"corec/internal/hir"
	"corec/internal/mir"
	"corec/internal/source"
	"corec/internal/types"
)

// Monomorphize resolves a generic call site to a concrete instance DefId,
// registering the (def, substitution) pair with internal/mono's cache.
// LowerModule uses the identity hook when none is supplied (the driver
// passes mono.Monomorphizer.Monomorphize), so a module with no generic
// call sites lowers correctly without internal/mono.
type Monomorphize func(def hir.DefId, typeArgs []types.TyId) hir.DefId

func identityMonomorphize(def hir.DefId, _ []types.TyId) hir.DefId { return def }

// LowerModule walks every function item reachable from m.Items (including
// methods nested in impl blocks) and lowers each to a mir.MirFunction,
// plus a mir.ExternFunc record for every extern declaration. Items the
// Monomorphize hook appends to m.Items during the walk are lowered too.
// Diagnostics from the exhaustiveness checks are added to bag; a malformed
// body never panics — it lowers to the conservative placeholder spec.md
// §4.7 calls for (an Unreachable-terminated block) and continues to the
// next function.
func LowerModule(m *hir.Module, ctx *types.Context, strings *source.Interner, bag *diag.Bag, mono Monomorphize) (*mir.MirModule, error) {
	if mono == nil {
		mono = identityMonomorphize
	}
	out := mir.NewMirModule()
	seen := make(map[hir.DefId]bool)

	var walk func(ids []hir.DefId) error
	walk = func(ids []hir.DefId) error {
		for _, id := range ids {
			if seen[id] {
				continue
			}
			seen[id] = true
			d := m.Def(id)
			if d == nil {
				continue
			}
			switch d.Kind {
			case hir.DefFunction:
				fl := newFuncLowerer(m, ctx, strings, bag, mono)
				f, err := fl.lowerFunc(id, d.Function)
				if err != nil {
					return fmt.Errorf("mirlower: function %q: %w", name(strings, d.Function.Name), err)
				}
				out.AddFunction(f)
			case hir.DefExternalFunction:
				out.Externs = append(out.Externs, lowerExternFunc(ctx, id, d.Function))
			case hir.DefImpl:
				if d.Impl != nil {
					if err := walk(d.Impl.Methods); err != nil {
						return err
					}
				}
			case hir.DefModule:
				if d.Module != nil {
					if err := walk(d.Module.Members); err != nil {
						return err
					}
				}
			case hir.DefStruct, hir.DefEnum:
				out.TypeDefs = append(out.TypeDefs, id)
			}
		}
		return nil
	}
	// The Monomorphize hook appends new instances to m.Items while the walk
	// runs, so keep walking the newly appended tail until none appear.
	for done := 0; done < len(m.Items); {
		next := m.Items[done:]
		done = len(m.Items)
		if err := walk(next); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func lowerExternFunc(ctx *types.Context, def hir.DefId, fn *hir.Function) mir.ExternFunc {
	params := make([]types.TyId, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = ctx.LocalTypes[p.Def]
	}
	symbol := fn.MangledSymbol
	if fn.ABI == hir.ABIC {
		symbol = "" // raw: the backend uses RawSymbol's interned text directly
	}
	return mir.ExternFunc{
		Def:    def,
		Symbol: symbol,
		Params: params,
		Return: ctx.FuncReturn[def],
		ABI:    fn.ABI,
	}
}

func name(strings *source.Interner, id source.StringID) string {
	if s, ok := strings.Lookup(id); ok {
		return s
	}
	return "<unnamed>"
}

// funcLowerer carries one function's in-progress lowering state, grounded
// on the teacher's funcLowerer (internal/mir/lower.go): an output module
// to register finished functions into, the function under construction,
// a cursor block, and the symbol→local map built as locals are allocated.
type funcLowerer struct {
	m       *hir.Module
	ctx     *types.Context
	strings *source.Interner
	bag     *diag.Bag
	mono    Monomorphize

	f   *mir.MirFunction
	cur mir.BlockID

	symToLocal map[hir.DefId]mir.LocalID
}

func newFuncLowerer(m *hir.Module, ctx *types.Context, strings *source.Interner, bag *diag.Bag, mono Monomorphize) *funcLowerer {
	return &funcLowerer{
		m:          m,
		ctx:        ctx,
		strings:    strings,
		bag:        bag,
		mono:       mono,
		symToLocal: make(map[hir.DefId]mir.LocalID),
	}
}

// lowerFunc lowers one DefFunction's body. Locals are allocated for
// parameters first (spec.md §4.7), then for each `let` and temporary as
// lowering walks the body in order.
func (l *funcLowerer) lowerFunc(def hir.DefId, fn *hir.Function) (*mir.MirFunction, error) {
	l.f = &mir.MirFunction{
		Def:        def,
		Name:       fn.Name,
		Span:       fn.Span,
		ParamCount: len(fn.Params),
		ReturnType: l.ctx.FuncReturn[def],
		Entry:      0,
	}

	for _, p := range fn.Params {
		l.ensureLocal(p.Def, p.Name, l.ctx.LocalTypes[p.Def], p.Span)
	}

	entry := l.newBlock()
	l.f.Entry = entry
	l.cur = entry

	if fn.Body.IsValid() {
		if _, err := l.lowerExpr(fn.Body); err != nil {
			// The region lowering could not finish ends in the conservative
			// Unreachable placeholder; lowering goes on with the next function.
			l.setTerm(mir.Terminator{Kind: mir.TermUnreachable})
		}
	}

	if !l.curBlock().Terminated() {
		if l.isUnitType(l.f.ReturnType) {
			l.setTerm(mir.Terminator{Kind: mir.TermReturn, Return: mir.ReturnTerm{HasValue: false}})
		} else {
			// Every path in a non-Unit function must produce a value;
			// falling off the end here means an earlier error already
			// tainted this body (spec.md §4.7: conservative placeholder,
			// never a panic).
			l.setTerm(mir.Terminator{Kind: mir.TermUnreachable})
		}
	}
	for i := range l.f.Blocks {
		if l.f.Blocks[i].Term.Kind == mir.TermNone {
			l.f.Blocks[i].Term.Kind = mir.TermUnreachable
		}
	}
	return l.f, nil
}

func (l *funcLowerer) curBlock() *mir.BasicBlock {
	return l.f.Block(l.cur)
}

func (l *funcLowerer) newBlock() mir.BlockID {
	id := mir.BlockID(len(l.f.Blocks))
	l.f.Blocks = append(l.f.Blocks, mir.BasicBlock{ID: id})
	return id
}

func (l *funcLowerer) startBlock(id mir.BlockID) {
	l.cur = id
}

func (l *funcLowerer) setTerm(t mir.Terminator) {
	b := l.curBlock()
	if b == nil || b.Terminated() {
		return
	}
	b.Term = t
}

func (l *funcLowerer) emit(st mir.Statement) {
	b := l.curBlock()
	if b == nil || b.Terminated() {
		return
	}
	b.Stmts = append(b.Stmts, st)
}

// ensureLocal returns the local already allocated for def, or allocates
// one (recording name/type/span) on first reference.
func (l *funcLowerer) ensureLocal(def hir.DefId, name source.StringID, ty types.TyId, span source.Span) mir.LocalID {
	if id, ok := l.symToLocal[def]; ok {
		return id
	}
	id := mir.LocalID(len(l.f.Locals))
	l.symToLocal[def] = id
	l.f.Locals = append(l.f.Locals, mir.Local{Name: name, Type: ty, Span: span})
	return id
}

// newTemp allocates a fresh, unnamed local for an intermediate value.
func (l *funcLowerer) newTemp(ty types.TyId, span source.Span) mir.LocalID {
	id := mir.LocalID(len(l.f.Locals))
	l.f.Locals = append(l.f.Locals, mir.Local{Type: ty, Span: span})
	return id
}

func (l *funcLowerer) isUnitType(ty types.TyId) bool {
	return ty == l.ctx.Types.Builtins().Unit
}

func (l *funcLowerer) exprType(id hir.ExprId) types.TyId {
	if ty, ok := l.ctx.ExprTypes[id]; ok {
		return l.ctx.Resolve(ty)
	}
	return l.ctx.Types.Builtins().Error
}

// operandToLocal returns op's local directly when it is already a bare
// Copy(Place{Local}) with no projection, materializing it into a fresh
// temp otherwise. Needed wherever the MIR grammar requires a LocalID
// rather than a general Operand (spec.md §3: Projection.Index(LocalId)).
func (l *funcLowerer) operandToLocal(op mir.Operand, ty types.TyId, span source.Span) mir.LocalID {
	if op.Kind == mir.OperandCopy && len(op.Place.Proj) == 0 {
		return op.Place.Local
	}
	temp := l.newTemp(ty, span)
	l.emit(mir.Assign(mir.Place{Local: temp}, mir.UseOf(op)))
	return temp
}

func (l *funcLowerer) unitOperand() mir.Operand {
	return mir.ConstOf(mir.Const{Kind: mir.ConstUnit, Type: l.ctx.Types.Builtins().Unit})
}
