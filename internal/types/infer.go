package types

import (
	"corec/internal/diag"
	"corec/internal/hir"
	"corec/internal/source"
)

// Inferer drives the bidirectional inference walk of spec.md §4.3 over
// every function body in a module, writing results into a shared Context.
type Inferer struct {
	Module  *hir.Module
	Strings *source.Interner
	Ctx     *Context

	// Methods resolves a method call's ResolvedMethod (§4.6) the first time
	// inferMethodCall sees it. Left nil, method calls behave as before this
	// was wired in: ResolvedMethod stays unset and the call's result is a
	// fresh, never-unified type variable.
	Methods MethodResolver

	// sigCache memoizes a Function DefId's Function TyId so a Variable
	// referencing a top-level function by name doesn't re-resolve its
	// signature's type nodes on every use.
	sigCache map[hir.DefId]TyId
	// fieldCache memoizes a Struct/Enum-variant DefId's field TyIds.
	fieldCache map[hir.DefId][]TyId

	currentFn     hir.DefId
	currentParams map[source.StringID]uint32
}

// NewInferer creates an inference driver over module, interning declared
// types and unification variables through ctx.
func NewInferer(module *hir.Module, strings *source.Interner, ctx *Context) *Inferer {
	return &Inferer{
		Module:     module,
		Strings:    strings,
		Ctx:        ctx,
		sigCache:   make(map[hir.DefId]TyId),
		fieldCache: make(map[hir.DefId][]TyId),
	}
}

// InferModule infers every function/method body reachable from the
// module's top-level items.
func (inf *Inferer) InferModule() {
	for _, id := range inf.Module.Items {
		inf.inferItem(id)
	}
}

func (inf *Inferer) inferItem(id hir.DefId) {
	d := inf.Module.Def(id)
	if d == nil {
		return
	}
	switch d.Kind {
	case hir.DefFunction, hir.DefExternalFunction:
		inf.InferFunction(id)
	case hir.DefImpl:
		for _, m := range d.Impl.Methods {
			inf.InferFunction(m)
		}
	case hir.DefTrait:
		for _, m := range d.Trait.Methods {
			inf.InferFunction(m)
		}
	case hir.DefModule:
		for _, member := range d.Module.Members {
			inf.inferItem(member)
		}
	}
}

// InferFunction types one function's signature and, if present, its body.
func (inf *Inferer) InferFunction(id hir.DefId) {
	d := inf.Module.Def(id)
	if d == nil || d.Function == nil {
		return
	}
	fn := d.Function

	params := make(map[source.StringID]uint32, len(fn.TypeParams))
	for _, tp := range fn.TypeParams {
		params[tp.Name] = tp.Index
	}
	prevFn, prevParams := inf.currentFn, inf.currentParams
	inf.currentFn, inf.currentParams = id, params
	defer func() { inf.currentFn, inf.currentParams = prevFn, prevParams }()

	for i := range fn.Params {
		p := &fn.Params[i]
		pt := FromHIR(inf.Ctx, inf.Module, inf.Strings, params, p.Type)
		if p.Def.IsValid() {
			inf.Ctx.LocalTypes[p.Def] = pt
		}
	}
	retTy := FromHIR(inf.Ctx, inf.Module, inf.Strings, params, fn.ReturnType)
	inf.Ctx.FuncReturn[id] = retTy

	if fn.Body.IsValid() {
		inf.infer(fn.Body, retTy)
	}
}

// FunctionTy returns (computing and caching on first use) the Function TyId
// for a Function/ExternalFunction definition's declared signature.
func (inf *Inferer) FunctionTy(id hir.DefId) TyId {
	if t, ok := inf.sigCache[id]; ok {
		return t
	}
	d := inf.Module.Def(id)
	if d == nil || d.Function == nil {
		return inf.Ctx.Types.Builtins().Error
	}
	fn := d.Function
	params := make(map[source.StringID]uint32, len(fn.TypeParams))
	for _, tp := range fn.TypeParams {
		params[tp.Name] = tp.Index
	}
	paramTys := make([]TyId, len(fn.Params))
	for i, p := range fn.Params {
		paramTys[i] = FromHIR(inf.Ctx, inf.Module, inf.Strings, params, p.Type)
	}
	ret := FromHIR(inf.Ctx, inf.Module, inf.Strings, params, fn.ReturnType)
	t := inf.Ctx.Types.RegisterFunction(paramTys, ret)
	inf.sigCache[id] = t
	return t
}

// StructFieldTypes returns (computing and caching) the resolved field types
// of a Struct definition, in declaration order.
func (inf *Inferer) StructFieldTypes(id hir.DefId) []TyId {
	if t, ok := inf.fieldCache[id]; ok {
		return t
	}
	d := inf.Module.Def(id)
	if d == nil || d.Struct == nil {
		return nil
	}
	params := typeParamIndex(d.Struct.TypeParams)
	out := make([]TyId, len(d.Struct.Fields))
	for i, f := range d.Struct.Fields {
		out[i] = FromHIR(inf.Ctx, inf.Module, inf.Strings, params, f.Type)
	}
	inf.fieldCache[id] = out
	return out
}

// EnumVariantFieldTypes returns the resolved field types of one enum
// variant.
func (inf *Inferer) EnumVariantFieldTypes(id hir.DefId, variantIdx uint32) []TyId {
	d := inf.Module.Def(id)
	if d == nil || d.Enum == nil || int(variantIdx) >= len(d.Enum.Variants) {
		return nil
	}
	params := typeParamIndex(d.Enum.TypeParams)
	v := d.Enum.Variants[variantIdx]
	out := make([]TyId, len(v.Fields))
	for i, f := range v.Fields {
		out[i] = FromHIR(inf.Ctx, inf.Module, inf.Strings, params, f.Type)
	}
	return out
}

func typeParamIndex(tps []hir.TypeParam) map[source.StringID]uint32 {
	m := make(map[source.StringID]uint32, len(tps))
	for _, tp := range tps {
		m[tp.Name] = tp.Index
	}
	return m
}

// infer is spec.md §4.3's `infer(expr, expected)`: every branch computes
// the expression's natural type, then — uniformly — unifies it against
// expected when the caller supplied one, coercing the recorded type to
// expected's resolved form on success or to Error on failure.
func (inf *Inferer) infer(id hir.ExprId, expected TyId) TyId {
	e := inf.Module.Expr(id)
	errTy := inf.Ctx.Types.Builtins().Error
	if e == nil {
		return errTy
	}

	var result TyId
	switch e.Kind {
	case hir.ExprLiteral:
		result = inf.inferLiteral(e, expected)
		if result == errTy {
			inf.Ctx.ExprTypes[id] = errTy
			return errTy
		}

	case hir.ExprVariable:
		result = inf.inferVariable(e)

	case hir.ExprCall:
		result = inf.inferCall(e)

	case hir.ExprMethodCall:
		result = inf.inferMethodCall(id, e)

	case hir.ExprFieldAccess:
		result = inf.inferFieldAccess(e)

	case hir.ExprIndex:
		recvTy := inf.Ctx.Resolve(inf.infer(e.Receiver, NoTyId))
		if t, ok := inf.Ctx.Types.Lookup(recvTy); ok && t.Kind == KindArray {
			result = t.Elem
		} else {
			result = inf.Ctx.Fresh()
		}
		if len(e.Args) > 0 {
			inf.infer(e.Args[0], NoTyId)
		}

	case hir.ExprBlock:
		result = inf.inferBlock(e, expected)

	case hir.ExprIf:
		inf.infer(e.Cond, inf.Ctx.Types.Builtins().Bool)
		thenTy := inf.infer(e.Then, expected)
		if e.Else.IsValid() {
			elseTy := inf.infer(e.Else, expected)
			Unify(inf.Ctx, thenTy, elseTy, e.Span)
		} else {
			Unify(inf.Ctx, thenTy, inf.Ctx.Types.Builtins().Unit, e.Span)
		}
		result = inf.Ctx.Resolve(thenTy)

	case hir.ExprMatch:
		result = inf.inferMatch(e, expected)

	case hir.ExprReturn:
		fnRet := inf.Ctx.FuncReturn[inf.currentFn]
		if e.Value.IsValid() {
			inf.infer(e.Value, fnRet)
		} else {
			Unify(inf.Ctx, fnRet, inf.Ctx.Types.Builtins().Unit, e.Span)
		}
		result = inf.Ctx.Types.Builtins().Never

	case hir.ExprAggregate:
		result = inf.inferAggregate(e)

	case hir.ExprReference:
		inner := inf.infer(e.Inner, NoTyId)
		result = inf.Ctx.Types.Intern(MakeRef(e.Mut, inner))

	case hir.ExprDereference:
		innerTy := inf.Ctx.Resolve(inf.infer(e.Inner, NoTyId))
		if t, ok := inf.Ctx.Types.Lookup(innerTy); ok && t.Kind == KindRef {
			result = t.Elem
		} else {
			result = errTy
		}

	case hir.ExprClosure:
		result = inf.inferClosure(e)

	case hir.ExprAssign:
		targetTy := inf.infer(e.Target, NoTyId)
		inf.infer(e.RHS, targetTy)
		result = inf.Ctx.Types.Builtins().Unit

	case hir.ExprBinaryOp:
		result = inf.inferBinaryOp(e)

	case hir.ExprUnaryOp:
		result = inf.infer(e.Operand, expected)

	default:
		result = errTy
	}

	inf.Ctx.ExprTypes[id] = result
	if expected.IsValid() && inf.Ctx.Resolve(result) != inf.Ctx.Resolve(expected) {
		if Unify(inf.Ctx, expected, result, e.Span) {
			result = inf.Ctx.Resolve(expected)
		} else {
			result = errTy
		}
		inf.Ctx.ExprTypes[id] = result
	}
	return result
}

func (inf *Inferer) inferLiteral(e *hir.Expr, expected TyId) TyId {
	b := inf.Ctx.Types.Builtins()
	lit := e.Literal
	if lit == nil {
		return b.Error
	}
	switch lit.Kind {
	case hir.LitBool:
		return b.Bool
	case hir.LitString:
		return b.String
	case hir.LitUnit:
		return b.Unit

	case hir.LitInt:
		if lit.Suffix.IsValid() {
			w := widthFromSuffix(inf.Strings, lit.Suffix)
			return inf.Ctx.Types.Intern(MakeInt(w))
		}
		if expected.IsValid() {
			resolved := inf.Ctx.Resolve(expected)
			if t, ok := inf.Ctx.Types.Lookup(resolved); ok && t.Kind == KindInt && t.Width != WidthAny {
				if !literalFitsWidth(lit.Int, t.Width) {
					inf.Ctx.Bag.Add(diagPtr(diag.NewError(diag.TypMismatch, e.Span,
						"integer literal does not fit in the expected type")))
					return b.Error
				}
				return resolved
			}
		}
		return b.Int64 // defaults to i64 with no constraining context (SPEC_FULL.md §4.3)

	case hir.LitFloat:
		if lit.Suffix.IsValid() {
			if s, ok := inf.Strings.Lookup(lit.Suffix); ok && s == "f32" {
				return b.Float32
			}
			return b.Float64
		}
		return b.Float64

	default:
		return b.Error
	}
}

func widthFromSuffix(strings *source.Interner, suffix source.StringID) Width {
	s, ok := strings.Lookup(suffix)
	if !ok {
		return WidthAny
	}
	switch s {
	case "i8", "u8":
		return Width8
	case "i16", "u16":
		return Width16
	case "i32", "u32":
		return Width32
	default:
		return Width64
	}
}

func literalFitsWidth(v int64, w Width) bool {
	switch w {
	case Width8:
		return v >= -128 && v <= 255
	case Width16:
		return v >= -32768 && v <= 65535
	case Width32:
		return v >= -2147483648 && v <= 4294967295
	default:
		return true
	}
}

func (inf *Inferer) inferVariable(e *hir.Expr) TyId {
	errTy := inf.Ctx.Types.Builtins().Error
	if !e.Ref.IsValid() || inf.Module.IsUnknown(e.Ref) {
		return errTy
	}
	if t, ok := inf.Ctx.LocalTypes[e.Ref]; ok {
		return t
	}
	d := inf.Module.Def(e.Ref)
	if d != nil && (d.Kind == hir.DefFunction || d.Kind == hir.DefExternalFunction) {
		return inf.FunctionTy(e.Ref)
	}
	// A parameter/local not yet recorded (e.g. forward-referenced closure
	// capture): mint a fresh variable and remember it (spec.md §4.3
	// "Variable: ... if absent, create a fresh TyVar and store").
	fresh := inf.Ctx.Fresh()
	inf.Ctx.LocalTypes[e.Ref] = fresh
	return fresh
}

func (inf *Inferer) inferCall(e *hir.Expr) TyId {
	errTy := inf.Ctx.Types.Builtins().Error
	calleeTy := inf.Ctx.Resolve(inf.infer(e.Callee, NoTyId))
	params, ret, ok := inf.Ctx.Types.FunctionInfo(calleeTy)
	if !ok {
		for _, a := range e.Args {
			inf.infer(a, NoTyId)
		}
		return errTy
	}
	if len(params) != len(e.Args) {
		inf.Ctx.Bag.Add(diagPtr(diag.NewError(diag.TypArityMismatch, e.Span,
			"wrong number of arguments in call")))
		for _, a := range e.Args {
			inf.infer(a, NoTyId)
		}
		return errTy
	}
	for i, a := range e.Args {
		inf.infer(a, params[i])
	}
	return ret
}

// inferMethodCall infers the receiver and arguments, records receiver
// mutability (spec.md §4.3), and — once the receiver's type is known —
// resolves the method itself (§4.6) through inf.Methods, filling
// e.ResolvedMethod. A call already carrying a resolved method (e.g. a
// monomorphized clone of an already-resolved body) is not re-resolved.
func (inf *Inferer) inferMethodCall(id hir.ExprId, e *hir.Expr) TyId {
	recvTy := inf.infer(e.Receiver, NoTyId)
	mutable := inf.isMutableReceiver(e.Receiver)
	inf.Ctx.ReceiverMut[id] = mutable

	if !e.ResolvedMethod.IsValid() && inf.Methods != nil {
		if def, ok := inf.Methods.ResolveMethod(inf.Ctx, inf.Ctx.Resolve(recvTy), e.Method, mutable, e.Span); ok {
			e.ResolvedMethod = def
		} else {
			e.ResolvedMethod = inf.Module.UnknownDefId(e.Span)
		}
	}

	if e.ResolvedMethod.IsValid() && !inf.Module.IsUnknown(e.ResolvedMethod) {
		sig := inf.FunctionTy(e.ResolvedMethod)
		params, ret, ok := inf.Ctx.Types.FunctionInfo(sig)
		if ok && len(params) == len(e.MethodArgs)+1 {
			// params[0] is the receiver slot; MethodArgs align with params[1:].
			for i, a := range e.MethodArgs {
				inf.infer(a, params[i+1])
			}
			return ret
		}
	}
	for _, a := range e.MethodArgs {
		inf.infer(a, NoTyId)
	}
	return inf.Ctx.Fresh()
}

// isMutableReceiver implements spec.md §4.3's receiver-mutability rule: a
// mutably-declared Local, a field projection of a mutable receiver, or a
// dereference of `&mut T`.
func (inf *Inferer) isMutableReceiver(id hir.ExprId) bool {
	e := inf.Module.Expr(id)
	if e == nil {
		return false
	}
	switch e.Kind {
	case hir.ExprVariable:
		if !e.Ref.IsValid() {
			return false
		}
		d := inf.Module.Def(e.Ref)
		return d != nil && d.Kind == hir.DefLocal && d.Local != nil && d.Local.Mutable
	case hir.ExprFieldAccess:
		return inf.isMutableReceiver(e.Receiver)
	case hir.ExprDereference:
		innerTy := inf.Ctx.Resolve(inf.Ctx.ExprTypes[e.Inner])
		t, ok := inf.Ctx.Types.Lookup(innerTy)
		return ok && t.Kind == KindRef && t.Mut
	default:
		return false
	}
}

// inferFieldAccess resolves Receiver.Method (the field name, reusing
// MethodCall's Method slot per expr.go) against the receiver's concrete
// Named struct type.
func (inf *Inferer) inferFieldAccess(e *hir.Expr) TyId {
	recvTy := inf.Ctx.Resolve(inf.infer(e.Receiver, NoTyId))
	def, _, ok := inf.Ctx.Types.NamedInfo(recvTy)
	if !ok {
		return inf.Ctx.Fresh()
	}
	fields := inf.StructFieldTypes(def)
	names := structFieldNames(inf.Module, def)
	idx := indexOfName(names, e.Method)
	if idx < 0 || idx >= len(fields) {
		inf.Ctx.Bag.Add(diagPtr(diag.NewError(diag.TypUnknownField, e.Span,
			"unknown field '"+inf.Strings.MustLookup(e.Method)+"'")))
		return inf.Ctx.Types.Builtins().Error
	}
	return fields[idx]
}

func (inf *Inferer) inferBlock(e *hir.Expr, expected TyId) TyId {
	for _, sid := range e.Stmts {
		inf.inferStmt(sid)
	}
	if e.Tail.IsValid() {
		return inf.infer(e.Tail, expected)
	}
	return inf.Ctx.Types.Builtins().Unit
}

func (inf *Inferer) inferStmt(id hir.StmtId) {
	s := inf.Module.Stmt(id)
	if s == nil {
		return
	}
	switch s.Kind {
	case hir.StmtLet:
		l := s.Let
		if l == nil {
			return
		}
		var declared TyId = NoTyId
		if l.Type.IsValid() {
			params := inf.currentParams
			declared = FromHIR(inf.Ctx, inf.Module, inf.Strings, params, l.Type)
		}
		var initTy TyId
		if l.Init.IsValid() {
			initTy = inf.infer(l.Init, declared)
		} else if declared.IsValid() {
			initTy = declared
		} else {
			initTy = inf.Ctx.Fresh()
		}
		if l.Pattern.IsValid() {
			inf.bindPatternType(l.Pattern, initTy)
		}
	case hir.StmtExpr:
		inf.infer(s.Expr, NoTyId)
	}
}

// bindPatternType assigns ty (and its structural parts) to every Binding
// a pattern introduces.
func (inf *Inferer) bindPatternType(id hir.PatId, ty TyId) {
	p := inf.Module.Pat(id)
	if p == nil {
		return
	}
	resolved := inf.Ctx.Resolve(ty)
	switch p.Kind {
	case hir.PatBinding:
		if p.Def.IsValid() {
			inf.Ctx.LocalTypes[p.Def] = ty
		}
		if p.Sub.IsValid() {
			inf.bindPatternType(p.Sub, ty)
		}
	case hir.PatTuple:
		elems, ok := inf.Ctx.Types.TupleInfo(resolved)
		for i, sub := range p.Elements {
			if ok && i < len(elems) {
				inf.bindPatternType(sub, elems[i])
			} else {
				inf.bindPatternType(sub, inf.Ctx.Fresh())
			}
		}
	case hir.PatStruct:
		fields := inf.StructFieldTypes(p.StructDef)
		names := structFieldNames(inf.Module, p.StructDef)
		for _, sf := range p.Fields {
			idx := indexOfName(names, sf.Name)
			if idx >= 0 && idx < len(fields) {
				inf.bindPatternType(sf.Pattern, fields[idx])
			} else {
				inf.bindPatternType(sf.Pattern, inf.Ctx.Fresh())
			}
		}
	case hir.PatEnumVariant:
		fields := inf.EnumVariantFieldTypes(p.EnumDef, p.VariantIdx)
		for i, sub := range p.SubPats {
			if i < len(fields) {
				inf.bindPatternType(sub, fields[i])
			} else {
				inf.bindPatternType(sub, inf.Ctx.Fresh())
			}
		}
	case hir.PatOr:
		for _, alt := range p.Alternatives {
			inf.bindPatternType(alt, ty)
		}
	}
}

func structFieldNames(m *hir.Module, id hir.DefId) []source.StringID {
	d := m.Def(id)
	if d == nil || d.Struct == nil {
		return nil
	}
	names := make([]source.StringID, len(d.Struct.Fields))
	for i, f := range d.Struct.Fields {
		names[i] = f.Name
	}
	return names
}

func indexOfName(names []source.StringID, name source.StringID) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

func (inf *Inferer) inferMatch(e *hir.Expr, expected TyId) TyId {
	scrutTy := inf.infer(e.Scrutinee, NoTyId)
	resultTy := expected
	if !resultTy.IsValid() {
		resultTy = inf.Ctx.Fresh()
	}
	for _, arm := range e.Arms {
		if arm.Pattern.IsValid() {
			inf.bindPatternType(arm.Pattern, scrutTy)
		}
		if arm.Guard.IsValid() {
			inf.infer(arm.Guard, inf.Ctx.Types.Builtins().Bool)
		}
		inf.infer(arm.Body, resultTy)
	}
	return inf.Ctx.Resolve(resultTy)
}

func (inf *Inferer) inferAggregate(e *hir.Expr) TyId {
	errTy := inf.Ctx.Types.Builtins().Error
	agg := e.Aggregate
	if agg == nil {
		return errTy
	}
	switch agg.Kind {
	case hir.AggStruct:
		fields := inf.StructFieldTypes(agg.Def)
		names := structFieldNames(inf.Module, agg.Def)
		for _, f := range agg.Fields {
			idx := indexOfName(names, f.Name)
			if idx >= 0 && idx < len(fields) {
				inf.infer(f.Value, fields[idx])
			} else {
				inf.infer(f.Value, NoTyId)
			}
		}
		return inf.Ctx.Types.RegisterNamed(agg.Def, nil)

	case hir.AggTuple:
		elems := make([]TyId, len(agg.Fields))
		for i, f := range agg.Fields {
			elems[i] = inf.infer(f.Value, NoTyId)
		}
		return inf.Ctx.Types.RegisterTuple(elems)

	case hir.AggArray:
		var elemTy TyId
		for i, f := range agg.Fields {
			if i == 0 {
				elemTy = inf.infer(f.Value, NoTyId)
			} else {
				inf.infer(f.Value, elemTy)
			}
		}
		if !elemTy.IsValid() {
			elemTy = inf.Ctx.Fresh()
		}
		return inf.Ctx.Types.Intern(MakeArray(elemTy))

	case hir.AggEnumVariant:
		fields := inf.EnumVariantFieldTypes(agg.Def, agg.VariantIdx)
		for i, f := range agg.Fields {
			if i < len(fields) {
				inf.infer(f.Value, fields[i])
			} else {
				inf.infer(f.Value, NoTyId)
			}
		}
		return inf.Ctx.Types.RegisterNamed(agg.Def, nil)

	default:
		return errTy
	}
}

func (inf *Inferer) inferClosure(e *hir.Expr) TyId {
	c := e.Closure
	if c == nil {
		return inf.Ctx.Types.Builtins().Error
	}
	paramTys := make([]TyId, len(c.Params))
	for i, p := range c.Params {
		var pt TyId
		if p.Type.IsValid() {
			pt = FromHIR(inf.Ctx, inf.Module, inf.Strings, inf.currentParams, p.Type)
		} else {
			pt = inf.Ctx.Fresh()
		}
		paramTys[i] = pt
		if p.Def.IsValid() {
			inf.Ctx.LocalTypes[p.Def] = pt
		}
	}
	var retTy TyId
	if c.ReturnType.IsValid() {
		retTy = FromHIR(inf.Ctx, inf.Module, inf.Strings, inf.currentParams, c.ReturnType)
	} else {
		retTy = inf.Ctx.Fresh()
	}
	if c.Body.IsValid() {
		inf.infer(c.Body, retTy)
	}
	return inf.Ctx.Types.RegisterFunction(paramTys, retTy)
}

func (inf *Inferer) inferBinaryOp(e *hir.Expr) TyId {
	b := inf.Ctx.Types.Builtins()
	switch e.BinOp {
	case hir.OpEq, hir.OpNotEq, hir.OpLess, hir.OpLessEq, hir.OpGreater, hir.OpGreaterEq:
		lt := inf.infer(e.LHS, NoTyId)
		inf.infer(e.RHS, lt)
		return b.Bool
	case hir.OpAnd, hir.OpOr:
		inf.infer(e.LHS, b.Bool)
		inf.infer(e.RHS, b.Bool)
		return b.Bool
	default:
		lt := inf.infer(e.LHS, NoTyId)
		return inf.infer(e.RHS, lt)
	}
}
