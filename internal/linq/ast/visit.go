package ast

import "fmt"

// ExprVisitor handles every expression variant.
type ExprVisitor[T any] interface {
	VisitIdentifier(*Identifier) (T, error)
	VisitLiteral(*Literal) (T, error)
	VisitParameter(*Parameter) (T, error)
	VisitArray(*ArrayExpr) (T, error)
	VisitObject(*ObjectExpr) (T, error)
	VisitSpread(*Spread) (T, error)
	VisitMember(*MemberExpr) (T, error)
	VisitCall(*Call) (T, error)
	VisitUnary(*Unary) (T, error)
	VisitUpdate(*Update) (T, error)
	VisitBinary(*Binary) (T, error)
	VisitQuery(*QueryExpr) (T, error)
}

// VisitExpr dispatches e to the matching method of v.
func VisitExpr[T any](v ExprVisitor[T], e Expr) (T, error) {
	switch n := e.(type) {
	case *Identifier:
		return v.VisitIdentifier(n)
	case *Literal:
		return v.VisitLiteral(n)
	case *Parameter:
		return v.VisitParameter(n)
	case *ArrayExpr:
		return v.VisitArray(n)
	case *ObjectExpr:
		return v.VisitObject(n)
	case *Spread:
		return v.VisitSpread(n)
	case *MemberExpr:
		return v.VisitMember(n)
	case *Call:
		return v.VisitCall(n)
	case *Unary:
		return v.VisitUnary(n)
	case *Update:
		return v.VisitUpdate(n)
	case *Binary:
		return v.VisitBinary(n)
	case *QueryExpr:
		return v.VisitQuery(n)
	}
	var zero T
	return zero, fmt.Errorf("ast: unknown expression %T", e)
}

// ClauseVisitor handles every clause variant.
type ClauseVisitor[T any] interface {
	VisitFrom(*From) (T, error)
	VisitJoin(*Join) (T, error)
	VisitJoinInto(*JoinInto) (T, error)
	VisitConst(*Const) (T, error)
	VisitWhere(*Where) (T, error)
	VisitOrderBy(*OrderBy) (T, error)
	VisitGroupBy(*GroupBy) (T, error)
	VisitGroupInto(*GroupInto) (T, error)
	VisitSelect(*Select) (T, error)
}

// VisitClause dispatches c to the matching method of v.
func VisitClause[T any](v ClauseVisitor[T], c Clause) (T, error) {
	switch n := c.(type) {
	case *From:
		return v.VisitFrom(n)
	case *Join:
		return v.VisitJoin(n)
	case *JoinInto:
		return v.VisitJoinInto(n)
	case *Const:
		return v.VisitConst(n)
	case *Where:
		return v.VisitWhere(n)
	case *OrderBy:
		return v.VisitOrderBy(n)
	case *GroupBy:
		return v.VisitGroupBy(n)
	case *GroupInto:
		return v.VisitGroupInto(n)
	case *Select:
		return v.VisitSelect(n)
	}
	var zero T
	return zero, fmt.Errorf("ast: unknown clause %T", c)
}

// Walk calls fn for e and every expression nested in it, depth first,
// including expressions inside nested queries. Walking stops at a node for
// which fn returns false.
func Walk(e Expr, fn func(Expr) bool) {
	if e == nil || !fn(e) {
		return
	}
	switch n := e.(type) {
	case *ArrayExpr:
		for _, el := range n.Elements {
			Walk(el, fn)
		}
	case *ObjectExpr:
		for _, m := range n.Members {
			switch m := m.(type) {
			case *Property:
				Walk(m.Computed, fn)
				Walk(m.Value, fn)
			case *Spread:
				Walk(m, fn)
			}
		}
	case *Spread:
		Walk(n.Arg, fn)
	case *MemberExpr:
		Walk(n.Object, fn)
		Walk(n.Index, fn)
	case *Call:
		Walk(n.Callee, fn)
		for _, a := range n.Args {
			Walk(a, fn)
		}
	case *Unary:
		Walk(n.Operand, fn)
	case *Update:
		Walk(n.Operand, fn)
	case *Binary:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *QueryExpr:
		for _, c := range n.Clauses() {
			for _, sub := range clauseExprs(c) {
				Walk(sub, fn)
			}
		}
	}
}

func clauseExprs(c Clause) []Expr {
	switch n := c.(type) {
	case *From:
		return []Expr{n.Source}
	case *Join:
		return []Expr{n.Source, n.Left, n.Right}
	case *JoinInto:
		return []Expr{n.Source, n.Left, n.Right}
	case *Const:
		return []Expr{n.Value}
	case *Where:
		return []Expr{n.Predicate}
	case *OrderBy:
		out := make([]Expr, len(n.Keys))
		for i, k := range n.Keys {
			out[i] = k.Key
		}
		return out
	case *GroupBy:
		return []Expr{n.Key}
	case *GroupInto:
		return []Expr{n.Key}
	case *Select:
		return []Expr{n.Projection}
	}
	return nil
}
