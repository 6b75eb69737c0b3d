package lower

import (
	"strconv"

	"corec/internal/cst"
	"corec/internal/diag"
	"corec/internal/hir"
	"corec/internal/source"
)

// lowerPattern lowers a pattern CST node into a PatId, binding any
// identifier patterns into scope as it goes.
func (l *Lowerer) lowerPattern(scope hir.ScopeId, n *cst.Node) hir.PatId {
	if n == nil {
		return l.Module.NewPat(hir.Pattern{Kind: hir.PatInvalid})
	}
	switch n.Kind {
	case cst.KindPatWildcard:
		return l.Module.NewPat(hir.Pattern{Kind: hir.PatWildcard, Span: n.Span})

	case cst.KindPatLiteral:
		lit := l.lowerLiteralFields(n)
		return l.Module.NewPat(hir.Pattern{Kind: hir.PatLiteral, Span: n.Span, Literal: lit})

	case cst.KindPatIdentifier:
		name := l.intern(n.Text)
		mutable := n.Field("mut") == "true"
		def := l.Module.NewDef(hir.Definition{
			Kind: hir.DefLocal, Span: n.Span,
			Local: &hir.Local{Name: name, Mutable: mutable, Span: n.Span},
		})
		l.Module.Scopes.Bind(scope, name, def)
		pid := l.Module.NewPat(hir.Pattern{
			Kind: hir.PatBinding, Span: n.Span, Name: name, Mutable: mutable, Def: def,
			Sub: hir.NoPatId,
		})
		if sub := n.ChildByRole("sub"); sub != nil {
			p := l.Module.Pat(pid)
			p.Sub = l.lowerPattern(scope, sub)
		}
		l.Module.PatternBindings[pid] = def
		return pid

	case cst.KindPatTuple:
		var elems []hir.PatId
		for _, el := range n.ChildrenByRole("element") {
			elems = append(elems, l.lowerPattern(scope, el))
		}
		return l.Module.NewPat(hir.Pattern{Kind: hir.PatTuple, Span: n.Span, Elements: elems})

	case cst.KindPatStruct:
		name := l.intern(n.Text)
		def, _ := l.Module.Scopes.Lookup(scope, name)
		var fields []hir.StructPatField
		for _, f := range n.ChildrenByRole("field") {
			fname := l.intern(f.Field("name"))
			sub := f.ChildByRole("pattern")
			fields = append(fields, hir.StructPatField{Name: fname, Pattern: l.lowerPattern(scope, sub)})
		}
		return l.Module.NewPat(hir.Pattern{Kind: hir.PatStruct, Span: n.Span, StructDef: def, Fields: fields})

	case cst.KindPatEnum:
		name := l.intern(n.Text)
		def, _ := l.Module.Scopes.Lookup(scope, name)
		variantIdx := uint32(0)
		if v := n.Field("variant_index"); v != "" {
			if idx, err := strconv.ParseUint(v, 10, 32); err == nil {
				variantIdx = uint32(idx)
			}
		}
		var subs []hir.PatId
		for _, el := range n.ChildrenByRole("element") {
			subs = append(subs, l.lowerPattern(scope, el))
		}
		return l.Module.NewPat(hir.Pattern{
			Kind: hir.PatEnumVariant, Span: n.Span, EnumDef: def, VariantIdx: variantIdx, SubPats: subs,
		})

	case cst.KindPatOr:
		alts := n.ChildrenByRole("alternative")
		var altIds []hir.PatId
		var altNames []map[source.StringID]hir.DefId
		for _, alt := range alts {
			id := l.lowerPattern(scope, alt)
			altIds = append(altIds, id)
			altNames = append(altNames, bindingNames(l.Module, id))
		}
		if len(altNames) > 1 {
			mismatch := false
			for i := 1; i < len(altNames); i++ {
				if !sameKeySet(altNames[0], altNames[i]) {
					mismatch = true
					break
				}
			}
			if mismatch {
				l.Bag.Add(diagPtr(diag.NewError(diag.PatOrBindingMismatch, n.Span,
					"or-pattern alternatives must bind the same set of names")))
			}
		}
		return l.Module.NewPat(hir.Pattern{Kind: hir.PatOr, Span: n.Span, Alternatives: altIds})

	case cst.KindPatRange:
		start := l.literalFromField(n, "start")
		end := l.literalFromField(n, "end")
		inclusive := n.Field("inclusive") == "true"
		return l.Module.NewPat(hir.Pattern{
			Kind: hir.PatRange, Span: n.Span, Start: start, End: end, Inclusive: inclusive,
		})

	default:
		span := l.placeholder(n, "a pattern")
		return l.Module.NewPat(hir.Pattern{Kind: hir.PatInvalid, Span: span})
	}
}

// bindingNames collects the name set a (possibly nested) pattern binds,
// used to validate Or-pattern alternatives bind identical name sets
// (spec.md §4.1: "Or patterns require an identical name set across
// alternatives").
func bindingNames(m *hir.Module, id hir.PatId) map[source.StringID]hir.DefId {
	out := make(map[source.StringID]hir.DefId)
	collectBindingNames(m, id, out)
	return out
}

func collectBindingNames(m *hir.Module, id hir.PatId, out map[source.StringID]hir.DefId) {
	p := m.Pat(id)
	if p == nil {
		return
	}
	switch p.Kind {
	case hir.PatBinding:
		out[p.Name] = p.Def
		if p.Sub.IsValid() {
			collectBindingNames(m, p.Sub, out)
		}
	case hir.PatTuple:
		for _, e := range p.Elements {
			collectBindingNames(m, e, out)
		}
	case hir.PatStruct:
		for _, f := range p.Fields {
			collectBindingNames(m, f.Pattern, out)
		}
	case hir.PatEnumVariant:
		for _, s := range p.SubPats {
			collectBindingNames(m, s, out)
		}
	case hir.PatOr:
		// Only consider the first alternative: a well-formed Or already has
		// matching name sets; a malformed one already reported the mismatch.
		if len(p.Alternatives) > 0 {
			collectBindingNames(m, p.Alternatives[0], out)
		}
	}
}

func sameKeySet(a, b map[source.StringID]hir.DefId) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

func (l *Lowerer) literalFromField(n *cst.Node, role string) *hir.Literal {
	child := n.ChildByRole(role)
	if child == nil {
		return nil
	}
	return l.lowerLiteralFields(child)
}

func (l *Lowerer) lowerLiteralFields(n *cst.Node) *hir.Literal {
	kindTag := n.Field("kind")
	return l.litFromValue(kindTag, n.Field("value"), n.Field("suffix"))
}

func (l *Lowerer) litFromValue(kindTag, value, suffix string) *hir.Literal {
	lit := &hir.Literal{}
	switch kindTag {
	case "float":
		lit.Kind = hir.LitFloat
		f, _ := strconv.ParseFloat(value, 64)
		lit.Float = f
	case "bool":
		lit.Kind = hir.LitBool
		lit.Bool = value == "true"
	case "string":
		lit.Kind = hir.LitString
		lit.Str = l.intern(value)
	case "unit":
		lit.Kind = hir.LitUnit
	default:
		lit.Kind = hir.LitInt
		lit.Int = parseIntOr(value, 0)
	}
	if suffix != "" {
		lit.Suffix = l.intern(suffix)
	}
	return lit
}

func parseIntOr(s string, fallback int64) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fallback
	}
	return v
}
