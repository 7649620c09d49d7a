// Package parser builds query syntax trees from token streams using a small
// library of backtracking parser combinators.
package parser

import (
	"strconv"

	"github.com/sinclairzx81/linqbox/internal/linq/ast"
	"github.com/sinclairzx81/linqbox/internal/linq/scanner"
)

// Parse parses a complete query. Every token must be consumed.
func Parse(s scanner.Stream) (*ast.QueryExpr, error) {
	q, rest, ok := rules.query(s)
	if !ok {
		return nil, mismatch(s)
	}
	if err := incomplete(rest); err != nil {
		return nil, err
	}
	return q, nil
}

// ParseExpr parses a standalone expression. Every token must be consumed.
func ParseExpr(s scanner.Stream) (ast.Expr, error) {
	e, rest, ok := rules.expression(s)
	if !ok {
		return nil, mismatch(s)
	}
	if err := incomplete(rest); err != nil {
		return nil, err
	}
	return e, nil
}

// mismatch reports the furthest token the grammar tried to read, which is
// where every alternative gave up.
func mismatch(s scanner.Stream) error {
	at := s.Furthest()
	tok, _ := at.Peek()
	return &GrammarMismatchError{Offset: at.Offset(), Near: near(tok)}
}

func incomplete(rest scanner.Stream) error {
	tok, ok := rest.Peek()
	if !ok {
		return nil
	}
	return &IncompleteParseError{Offset: tok.Offset, Near: near(tok)}
}

func near(tok scanner.Token) string {
	if tok.Kind == scanner.Parameter {
		return "$" + strconv.Itoa(tok.Index+1)
	}
	return tok.Text
}
