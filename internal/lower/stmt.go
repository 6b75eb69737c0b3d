package lower

import (
	"corec/internal/cst"
	"corec/internal/hir"
)

// lowerStmt lowers a statement CST node. `let` lowers its initializer
// before registering the binding (spec.md §4.1: "this ensures `let x = x +
// 1` resolves the right-hand `x` to the outer scope").
func (l *Lowerer) lowerStmt(scope hir.ScopeId, n *cst.Node) hir.StmtId {
	switch n.Kind {
	case cst.KindLetStatement:
		var init hir.ExprId = hir.NoExprId
		if v := n.ChildByRole("init"); v != nil {
			init = l.lowerExpr(scope, v)
		}
		typ := l.lowerType(scope, n.ChildByRole("type"))
		pat := l.lowerPattern(scope, n.ChildByRole("pattern"))
		mutable := n.Field("mut") == "true"
		return l.Module.NewStmt(hir.Stmt{
			Kind: hir.StmtLet, Span: n.Span,
			Let: &hir.Let{Pattern: pat, Type: typ, Init: init, Mutable: mutable},
		})

	case cst.KindExprStatement:
		expr := l.lowerExpr(scope, n.ChildByRole("expr"))
		return l.Module.NewStmt(hir.Stmt{Kind: hir.StmtExpr, Span: n.Span, Expr: expr})

	default:
		// A bare expression used as a statement without an explicit wrapper.
		expr := l.lowerExpr(scope, n)
		return l.Module.NewStmt(hir.Stmt{Kind: hir.StmtExpr, Span: n.Span, Expr: expr})
	}
}
