// Package lower builds internal/hir from the generic syntax tree
// internal/cst defines (spec.md §4.1): item registration in two phases so
// forward references work, then per-body lowering of expressions,
// statements, patterns and type nodes. Malformed or unrecognized CST nodes
// become placeholder HIR nodes instead of aborting the pass.
package lower

import (
	"corec/internal/cst"
	"corec/internal/diag"
	"corec/internal/hir"
	"corec/internal/source"
)

// Lowerer carries the shared state for one file's CST→HIR lowering.
type Lowerer struct {
	Module   *hir.Module
	Interner *source.Interner
	Bag      *diag.Bag

	// itemNodes remembers the CST node a skeletal item Definition came from,
	// so phase 2 (lowerItemBody) can fill in its content.
	itemNodes map[hir.DefId]*cst.Node

	// pendingBodies queues function bodies discovered while filling in
	// signatures; flushed once every sibling's signature is complete so a
	// body can reference any sibling by name (spec.md §4.1 forward refs).
	pendingBodies []pendingBody
}

// New creates a Lowerer writing into module, interning names with in and
// reporting diagnostics into bag.
func New(module *hir.Module, in *source.Interner, bag *diag.Bag) *Lowerer {
	return &Lowerer{Module: module, Interner: in, Bag: bag, itemNodes: make(map[hir.DefId]*cst.Node)}
}

// LowerFile lowers a top-level "file" CST node, registering every item it
// contains into the module's root scope and then lowering every item body.
// Returns the root scope id.
func (l *Lowerer) LowerFile(root *cst.Node) hir.ScopeId {
	scope := l.Module.Scopes.Enter(hir.ScopeModule, root.Span)
	defer l.Module.Scopes.Leave()

	items := root.ChildrenByRole("item")
	defs := make([]hir.DefId, 0, len(items))

	// Phase 1: register every item's signature so bodies can forward-reference
	// sibling definitions (spec.md §4.1, §9 "Cyclic graphs").
	for _, item := range items {
		id := l.registerItem(scope, item)
		if id.IsValid() {
			defs = append(defs, id)
			l.Module.Items = append(l.Module.Items, id)
		}
	}

	// Phase 2: lower bodies now that every sibling is registered.
	for _, id := range defs {
		l.lowerItemBody(scope, id)
	}
	l.lowerQueuedBodies()

	return scope
}

// placeholder records a malformed or unrecognized node and returns a span to
// anchor a recovery HIR node at. The lowering pass never panics on this.
func (l *Lowerer) placeholder(n *cst.Node, expected string) source.Span {
	if n == nil {
		return source.Span{}
	}
	l.Bag.Add(diagPtr(diag.NewError(diag.SynPlaceholderNode, n.Span,
		"expected "+expected+", found "+string(n.Kind))))
	return n.Span
}

func diagPtr(d diag.Diagnostic) *diag.Diagnostic { return &d }

func (l *Lowerer) intern(s string) source.StringID {
	if s == "" {
		return source.NoStringID
	}
	return l.Interner.Intern(s)
}
