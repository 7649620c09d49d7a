package parser

import (
	"github.com/sinclairzx81/linqbox/internal/linq/ast"
	"github.com/sinclairzx81/linqbox/internal/linq/scanner"
)

func asClause[T ast.Clause](p Parser[T]) Parser[ast.Clause] {
	return Map(p, func(c T) ast.Clause { return c })
}

// fromRule parses from ID in ITER followed by the clause chain.
func fromRule(iter Parser[ast.Expr], clause Parser[ast.Clause]) Parser[*ast.QueryExpr] {
	return Map(fromClause(iter, clause), func(f *ast.From) *ast.QueryExpr { return &ast.QueryExpr{From: f} })
}

func fromClause(iter Parser[ast.Expr], clause Parser[ast.Clause]) Parser[*ast.From] {
	from, in, id := Keyword("from"), Keyword("in"), name()
	return func(s scanner.Stream) (*ast.From, scanner.Stream, bool) {
		f := Begin(s)
		Take(f, from)
		n := &ast.From{Binding: Take(f, id)}
		Take(f, in)
		n.Source = Take(f, iter)
		n.Then = Take(f, clause)
		next, ok := f.Done()
		if !ok {
			return nil, s, false
		}
		return n, next, true
	}
}

// joinClause parses join ID in ITER on OPERAND equals OPERAND with an
// optional into ID, producing *ast.JoinInto when into is present.
func joinClause(iter, operand Parser[ast.Expr], clause Parser[ast.Clause]) Parser[ast.Clause] {
	join, in, on, equals, id := Keyword("join"), Keyword("in"), Contextual("on"), Keyword("equals"), name()
	into := ZeroOrOne(Map(Seq2(Keyword("into"), id), func(p Pair[scanner.Token, string]) string { return p.Second }))
	return func(s scanner.Stream) (ast.Clause, scanner.Stream, bool) {
		f := Begin(s)
		Take(f, join)
		binding := Take(f, id)
		Take(f, in)
		source := Take(f, iter)
		Take(f, on)
		left := Take(f, operand)
		Take(f, equals)
		right := Take(f, operand)
		target := Take(f, into)
		then := Take(f, clause)
		next, ok := f.Done()
		if !ok {
			return nil, s, false
		}
		if target.Ok {
			return &ast.JoinInto{Binding: binding, Source: source, Left: left, Right: right, Into: target.Value, Then: then}, next, true
		}
		return &ast.Join{Binding: binding, Source: source, Left: left, Right: right, Then: then}, next, true
	}
}

func constClause(expr Parser[ast.Expr], clause Parser[ast.Clause]) Parser[*ast.Const] {
	kw, id, eq := Any(Keyword("const"), Keyword("let")), name(), Punct("=")
	return func(s scanner.Stream) (*ast.Const, scanner.Stream, bool) {
		f := Begin(s)
		let := Take(f, kw).Text == "let"
		n := &ast.Const{Let: let, Binding: Take(f, id)}
		Take(f, eq)
		n.Value = Take(f, expr)
		n.Then = Take(f, clause)
		next, ok := f.Done()
		if !ok {
			return nil, s, false
		}
		return n, next, true
	}
}

func whereClause(expr Parser[ast.Expr], clause Parser[ast.Clause]) Parser[*ast.Where] {
	return Map(Seq3(Keyword("where"), expr, clause), func(t Triple[scanner.Token, ast.Expr, ast.Clause]) *ast.Where {
		return &ast.Where{Predicate: t.Second, Then: t.Third}
	})
}

func orderByClause(operand Parser[ast.Expr], clause Parser[ast.Clause]) Parser[*ast.OrderBy] {
	direction := ZeroOrOne(Any(Keyword("ascending"), Keyword("descending")))
	key := Map(Seq2(operand, direction), func(p Pair[ast.Expr, Option[scanner.Token]]) ast.OrderKey {
		return ast.OrderKey{Key: p.First, Descending: p.Second.Ok && p.Second.Value.Text == "descending"}
	})
	return Map(Seq3(Keyword("orderby"), Delimited(key, Punct(",")), clause), func(t Triple[scanner.Token, []ast.OrderKey, ast.Clause]) *ast.OrderBy {
		return &ast.OrderBy{Keys: t.Second, Then: t.Third}
	})
}

// groupClause parses group ID by expr, which ends the query, or
// group ID by expr into ID followed by the clause chain.
func groupClause(expr Parser[ast.Expr], clause Parser[ast.Clause]) Parser[ast.Clause] {
	group, by, into, id := Keyword("group"), Keyword("by"), Keyword("into"), name()
	tail := Map(Seq3(into, id, clause), func(t Triple[scanner.Token, string, ast.Clause]) Pair[string, ast.Clause] {
		return Pair[string, ast.Clause]{First: t.Second, Second: t.Third}
	})
	return func(s scanner.Stream) (ast.Clause, scanner.Stream, bool) {
		f := Begin(s)
		Take(f, group)
		binding := Take(f, id)
		Take(f, by)
		key := Take(f, expr)
		cont := Take(f, ZeroOrOne(tail))
		next, ok := f.Done()
		if !ok {
			return nil, s, false
		}
		if cont.Ok {
			return &ast.GroupInto{Binding: binding, Key: key, Into: cont.Value.First, Then: cont.Value.Second}, next, true
		}
		return &ast.GroupBy{Binding: binding, Key: key}, next, true
	}
}

func selectClause(expr Parser[ast.Expr]) Parser[*ast.Select] {
	return Map(Seq2(Keyword("select"), expr), func(p Pair[scanner.Token, ast.Expr]) *ast.Select {
		return &ast.Select{Projection: p.Second}
	})
}

// clauseRule is the continuation of a from clause.
func clauseRule(g *grammar, expr, iter, operand Parser[ast.Expr]) Parser[ast.Clause] {
	clause := Lazy(func() Parser[ast.Clause] { return g.clause })
	return Any(
		asClause(fromClause(iter, clause)),
		joinClause(iter, operand, clause),
		asClause(constClause(expr, clause)),
		asClause(whereClause(expr, clause)),
		asClause(orderByClause(operand, clause)),
		groupClause(expr, clause),
		asClause(selectClause(expr)),
	)
}
