package lower

import (
	"corec/internal/cst"
	"corec/internal/hir"
	"corec/internal/source"
)

// lowerType lowers a type-syntax CST node into a TypeId. A nil node (no
// annotation written) lowers to an inferred-type placeholder.
func (l *Lowerer) lowerType(scope hir.ScopeId, n *cst.Node) hir.TypeId {
	if n == nil {
		return l.Module.NewType(hir.TypeNode{Kind: hir.TypeInferred})
	}
	switch n.Kind {
	case cst.KindTypeNamed:
		name := l.intern(n.Text)
		tid := l.Module.NewType(hir.TypeNode{Kind: hir.TypeNamed, Span: n.Span, Name: name})
		if def, ok := l.Module.Scopes.Lookup(scope, name); ok {
			t := l.Module.Type(tid)
			t.Def = def
		} else {
			l.Module.AddPending(hir.Pending{
				Kind: hir.PendingType, Path: []source.StringID{name}, Scope: scope,
				Span: n.Span, TypeID: tid,
			})
		}
		for _, arg := range n.ChildrenByRole("arg") {
			t := l.Module.Type(tid)
			t.GenericArgs = append(t.GenericArgs, l.lowerType(scope, arg))
		}
		return tid
	case cst.KindTypeTuple:
		var elems []hir.TypeId
		for _, el := range n.ChildrenByRole("element") {
			elems = append(elems, l.lowerType(scope, el))
		}
		return l.Module.NewType(hir.TypeNode{Kind: hir.TypeTuple, Span: n.Span, Elements: elems})
	case cst.KindTypeReference:
		mut := n.Field("mut") == "true"
		inner := l.lowerType(scope, n.ChildByRole("inner"))
		return l.Module.NewType(hir.TypeNode{Kind: hir.TypeReference, Span: n.Span, Mut: mut, Inner: inner})
	case cst.KindTypeFunction:
		var params []hir.TypeId
		for _, p := range n.ChildrenByRole("param") {
			params = append(params, l.lowerType(scope, p))
		}
		ret := l.lowerType(scope, n.ChildByRole("return"))
		return l.Module.NewType(hir.TypeNode{Kind: hir.TypeFunction, Span: n.Span, Params: params, Ret: ret})
	default:
		span := l.placeholder(n, "a type")
		return l.Module.NewType(hir.TypeNode{Kind: hir.TypeInvalid, Span: span})
	}
}
