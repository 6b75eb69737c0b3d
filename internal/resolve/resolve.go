// Package resolve finishes the name resolution internal/lower could not
// complete by itself: every entry queued on hir.Module.Pending (qualified
// paths, forward references into sibling files of the same compilation,
// trait bounds/where-clauses/use targets that named a not-yet-registered
// definition) is resolved here against the module's root scope and, for a
// multi-file compilation, the sibling modules passed to Resolve (spec.md
// §4.2).
package resolve

import (
	"fmt"
	"sort"

	"corec/internal/diag"
	"corec/internal/hir"
	"corec/internal/source"
)

// byNameEntry is one cross-module byName hit: the def it names, plus the
// module it was registered from (hir.DefId is only meaningful relative to
// the arena that allocated it, so looking up an entry's own Definition
// requires keeping its owning Module alongside the id).
type byNameEntry struct {
	module *hir.Module
	id     hir.DefId
}

// Resolver finishes pending references for one compilation (one or more
// hir.Modules sharing an interner).
type Resolver struct {
	interner *source.Interner
	bag      *diag.Bag

	// byName indexes every module's root-scope bindings by interned name,
	// for cross-module (cross-file) lookups a single module's own scope
	// tree cannot see.
	byName map[source.StringID][]byNameEntry
}

// New creates a Resolver over the given modules' root scopes.
func New(interner *source.Interner, bag *diag.Bag, modules ...*hir.Module) *Resolver {
	r := &Resolver{interner: interner, bag: bag, byName: make(map[source.StringID][]byNameEntry)}
	for _, m := range modules {
		for _, id := range m.Items {
			name := m.DefName(id)
			if name.IsValid() {
				r.byName[name] = append(r.byName[name], byNameEntry{module: m, id: id})
			}
		}
	}
	return r
}

// Resolve walks m.Pending and patches every reference it can, leaving
// genuinely unresolved ones pointing at m.UnknownDefId and reporting a
// diagnostic with an edit-distance suggestion (spec.md §4.2).
func (r *Resolver) Resolve(m *hir.Module) {
	for _, p := range m.Pending {
		def, ok, diagnosed := r.lookup(m, p)
		if !ok {
			def = m.UnknownDefId(p.Span)
			if !diagnosed {
				r.reportUnknown(p)
			}
		}
		r.apply(m, p, def)
	}
}

// lookup resolves p's name, first against m's own scope chain, then against
// every other module's top-level items. diagnosed reports whether lookup
// already added a diagnostic for this failure (so Resolve does not also
// report it as a plain unknown-name).
func (r *Resolver) lookup(m *hir.Module, p hir.Pending) (def hir.DefId, ok bool, diagnosed bool) {
	if len(p.Path) == 0 {
		return hir.NoDefId, false, false
	}
	name := p.Path[len(p.Path)-1]
	if def, ok := m.Scopes.Lookup(p.Scope, name); ok {
		return def, true, false
	}

	var visible []byNameEntry
	sawPrivate := false
	for _, c := range r.byName[name] {
		if c.module != m && isPrivateUse(c.module, c.id) {
			sawPrivate = true
			continue
		}
		visible = append(visible, c)
	}
	if len(visible) == 0 {
		if sawPrivate {
			r.bag.Add(diagPtr(diag.NewError(diag.ResPrivateAccess, p.Span,
				"'"+r.interner.MustLookup(name)+"' is private in its defining module")))
			return hir.NoDefId, false, true
		}
		return hir.NoDefId, false, false
	}
	if len(visible) > 1 {
		r.bag.Add(diagPtr(diag.NewError(diag.ResAmbiguousName, p.Span,
			"'"+r.interner.MustLookup(name)+"' resolves to more than one definition")))
	}
	return visible[0].id, true, false
}

// isPrivateUse reports whether id names a `use` item in module that was not
// declared `pub` (spec.md §4.2: "a use item re-exports only if marked
// public; non-public items from other modules are invisible"). Every other
// item kind has no visibility modifier of its own and is always visible.
func isPrivateUse(module *hir.Module, id hir.DefId) bool {
	d := module.Def(id)
	return d != nil && d.Kind == hir.DefUse && d.Use != nil && !d.Use.Public
}

func (r *Resolver) apply(m *hir.Module, p hir.Pending, def hir.DefId) {
	switch p.Kind {
	case hir.PendingVariable:
		if e := m.Expr(p.ExprID); e != nil {
			e.Ref = def
			m.VarRefs[p.ExprID] = def
		}
	case hir.PendingType:
		if t := m.Type(p.TypeID); t != nil {
			t.Def = def
		}
	case hir.PendingTypeParamBound:
		owner := m.Def(p.Owner)
		if owner == nil {
			return
		}
		params := typeParamsOf(owner)
		if params != nil && p.ParamIndex < len(*params) && p.BoundIndex < len((*params)[p.ParamIndex].Bounds) {
			(*params)[p.ParamIndex].Bounds[p.BoundIndex] = def
		}
	case hir.PendingWhereClauseTrait:
		owner := m.Def(p.Owner)
		if owner == nil {
			return
		}
		where := whereClausesOf(owner)
		if where != nil && p.ParamIndex < len(*where) {
			(*where)[p.ParamIndex].Trait = def
		}
	case hir.PendingImplTrait:
		owner := m.Def(p.Owner)
		if owner == nil {
			return
		}
		switch owner.Kind {
		case hir.DefTrait:
			if p.ParamIndex >= 0 && p.ParamIndex < len(owner.Trait.Supertraits) {
				owner.Trait.Supertraits[p.ParamIndex] = def
			}
		case hir.DefImpl:
			owner.Impl.Trait = def
		}
	case hir.PendingUseTarget:
		owner := m.Def(p.UseID)
		if owner != nil && owner.Use != nil {
			owner.Use.Target = def
		}
	}
}

func typeParamsOf(d *hir.Definition) *[]hir.TypeParam {
	switch d.Kind {
	case hir.DefFunction, hir.DefExternalFunction:
		return &d.Function.TypeParams
	case hir.DefStruct:
		return &d.Struct.TypeParams
	case hir.DefEnum:
		return &d.Enum.TypeParams
	case hir.DefTrait:
		return &d.Trait.TypeParams
	case hir.DefImpl:
		return &d.Impl.TypeParams
	}
	return nil
}

func whereClausesOf(d *hir.Definition) *[]hir.WhereClause {
	switch d.Kind {
	case hir.DefFunction, hir.DefExternalFunction:
		return &d.Function.Where
	case hir.DefImpl:
		return &d.Impl.Where
	}
	return nil
}

func (r *Resolver) reportUnknown(p hir.Pending) {
	if len(p.Path) == 0 {
		return
	}
	name := p.Path[len(p.Path)-1]
	msg := fmt.Sprintf("cannot find '%s' in this scope", r.interner.MustLookup(name))
	if suggestion, ok := r.suggest(name); ok {
		msg += fmt.Sprintf(" (did you mean '%s'?)", suggestion)
	}
	r.bag.Add(diagPtr(diag.NewError(diag.ResUnknownName, p.Span, msg)))
}

// suggest returns the closest known name within edit distance 2, if any.
func (r *Resolver) suggest(name source.StringID) (string, bool) {
	target := r.interner.MustLookup(name)
	type candidate struct {
		name string
		dist int
	}
	var best *candidate
	names := make([]string, 0, len(r.byName))
	for id := range r.byName {
		names = append(names, r.interner.MustLookup(id))
	}
	sort.Strings(names) // deterministic tie-break
	for _, cand := range names {
		d := levenshtein(target, cand)
		if d == 0 || d > 2 {
			continue
		}
		if best == nil || d < best.dist {
			best = &candidate{name: cand, dist: d}
		}
	}
	if best == nil {
		return "", false
	}
	return best.name, true
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			min := del
			if ins < min {
				min = ins
			}
			if sub < min {
				min = sub
			}
			curr[j] = min
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func diagPtr(d diag.Diagnostic) *diag.Diagnostic { return &d }
