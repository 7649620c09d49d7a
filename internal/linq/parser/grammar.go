package parser

import (
	"strconv"
	"strings"

	"github.com/sinclairzx81/linqbox/internal/linq/ast"
	"github.com/sinclairzx81/linqbox/internal/linq/scanner"
	"github.com/sinclairzx81/linqbox/internal/linq/value"
)

// binaryOperators lists infix operators longest spelling first so that a
// shorter operator never matches the prefix of a longer one.
var binaryOperators = []string{
	"===", "!==", ">>>", "instanceof",
	"||", "&&", "??", "==", "!=", ">=", "<=", "<<", ">>", "**", "in",
	">", "<", "&", "|", "^", "+", "-", "*", "/", "%",
}

// precedence orders binary operators from tightest to loosest binding.
var precedence = []string{
	"**", "*", "/", "%", "+", "-", "<<", ">>", ">>>",
	"<", "<=", ">", ">=", "in", "instanceof",
	"==", "!=", "===", "!==", "&", "^", "|", "??", "&&", "||",
}

var unaryOperators = []string{"!", "~", "+", "-", "typeof", "void", "delete"}

// grammar holds the expression and clause rules. Rules reference each
// other through Lazy so that construction order does not matter.
type grammar struct {
	expression Parser[ast.Expr]
	operand    Parser[ast.Expr]
	chain      Parser[ast.Expr]
	primary    Parser[ast.Expr]
	query      Parser[*ast.QueryExpr]
	clause     Parser[ast.Clause]
}

var rules = newGrammar()

func newGrammar() *grammar {
	g := &grammar{}
	expr := Lazy(func() Parser[ast.Expr] { return g.expression })
	chain := Lazy(func() Parser[ast.Expr] { return g.chain })
	operand := Lazy(func() Parser[ast.Expr] { return g.operand })
	query := Lazy(func() Parser[*ast.QueryExpr] { return g.query })
	clause := Lazy(func() Parser[ast.Clause] { return g.clause })

	g.primary = Any(
		arrayRule(expr),
		objectRule(expr),
		parameterRule(),
		literalRule(),
		identifierRule(),
		Enclosed(Punct("("), expr, Punct(")")),
		Map(query, func(q *ast.QueryExpr) ast.Expr { return q }),
	)
	g.chain = chainRule(g.primary, expr)
	g.operand = Any(prefixUpdateRule(chain), unaryRule(operand), postfixRule(chain))
	g.expression = Map(
		Seq2(g.operand, ZeroOrMore(Seq2(binaryOperatorRule(), g.operand))),
		func(p Pair[ast.Expr, []Pair[string, ast.Expr]]) ast.Expr {
			return reduceBinary(p.First, p.Second)
		},
	)
	g.query = fromRule(chain, clause)
	g.clause = clauseRule(g, expr, chain, operand)
	return g
}

func name() Parser[string] {
	return Map(Kind(scanner.Word), func(t scanner.Token) string { return t.Text })
}

// propertyName accepts reserved words, which are valid after a dot and as
// object keys.
func propertyName() Parser[string] {
	return Map(Token(func(t scanner.Token) bool {
		return t.Kind == scanner.Word || t.Kind == scanner.Keyword
	}), func(t scanner.Token) string { return t.Text })
}

func identifierRule() Parser[ast.Expr] {
	return Map(Kind(scanner.Word), func(t scanner.Token) ast.Expr {
		return &ast.Identifier{Name: t.Text, Offset: t.Offset}
	})
}

func literalRule() Parser[ast.Expr] {
	str := Map(Kind(scanner.String), func(t scanner.Token) ast.Expr {
		return &ast.Literal{Kind: ast.StringLiteral, Raw: t.Text, Value: unquote(t.Text)}
	})
	num := Map(Kind(scanner.Number), func(t scanner.Token) ast.Expr {
		return &ast.Literal{Kind: ast.NumberLiteral, Raw: t.Text, Value: parseNumber(t.Text)}
	})
	boolean := Map(Any(Keyword("true"), Keyword("false")), func(t scanner.Token) ast.Expr {
		return &ast.Literal{Kind: ast.BooleanLiteral, Raw: t.Text, Value: t.Text == "true"}
	})
	null := Map(Keyword("null"), func(t scanner.Token) ast.Expr {
		return &ast.Literal{Kind: ast.NullLiteral, Raw: t.Text}
	})
	return Any(str, num, boolean, null)
}

func parameterRule() Parser[ast.Expr] {
	return Map(Kind(scanner.Parameter), func(t scanner.Token) ast.Expr {
		return &ast.Parameter{Index: t.Index, Kind: KindOf(t.Value)}
	})
}

func spreadRule(expr Parser[ast.Expr]) Parser[*ast.Spread] {
	return Map(Seq2(Punct("..."), expr), func(p Pair[string, ast.Expr]) *ast.Spread {
		return &ast.Spread{Arg: p.Second}
	})
}

// elementRule matches an array element or call argument.
func elementRule(expr Parser[ast.Expr]) Parser[ast.Expr] {
	return Any(Map(spreadRule(expr), func(s *ast.Spread) ast.Expr { return s }), expr)
}

func arrayRule(expr Parser[ast.Expr]) Parser[ast.Expr] {
	return Map(EnclosedDelimited(Punct("["), elementRule(expr), Punct("]"), Punct(",")), func(els []ast.Expr) ast.Expr {
		return &ast.ArrayExpr{Elements: els}
	})
}

func objectRule(expr Parser[ast.Expr]) Parser[ast.Expr] {
	key := Any(
		propertyName(),
		Map(Kind(scanner.String), func(t scanner.Token) string { return unquote(t.Text) }),
		Map(Kind(scanner.Number), func(t scanner.Token) string { return value.ToString(parseNumber(t.Text)) }),
	)
	keyed := Map(Seq3(key, Punct(":"), expr), func(t Triple[string, string, ast.Expr]) ast.Member {
		return &ast.Property{Key: t.First, Value: t.Third}
	})
	computed := Map(
		Seq3(Enclosed(Punct("["), expr, Punct("]")), Punct(":"), expr),
		func(t Triple[ast.Expr, string, ast.Expr]) ast.Member {
			return &ast.Property{Computed: t.First, Value: t.Third}
		},
	)
	shorthand := Map(Kind(scanner.Word), func(t scanner.Token) ast.Member {
		return &ast.Property{Key: t.Text, Value: &ast.Identifier{Name: t.Text, Offset: t.Offset}, Shorthand: true}
	})
	spread := Map(spreadRule(expr), func(s *ast.Spread) ast.Member { return s })
	member := Any(spread, keyed, computed, shorthand)
	return Map(EnclosedDelimited(Punct("{"), member, Punct("}"), Punct(",")), func(ms []ast.Member) ast.Expr {
		return &ast.ObjectExpr{Members: ms}
	})
}

// chainRule parses a primary expression followed by any run of .name,
// [expr] and (args) suffixes, folded left to right.
func chainRule(primary, expr Parser[ast.Expr]) Parser[ast.Expr] {
	type suffix func(ast.Expr) ast.Expr
	dot := Map(Seq2(Punct("."), propertyName()), func(p Pair[string, string]) suffix {
		return func(obj ast.Expr) ast.Expr { return &ast.MemberExpr{Object: obj, Name: p.Second} }
	})
	index := Map(Enclosed(Punct("["), expr, Punct("]")), func(e ast.Expr) suffix {
		return func(obj ast.Expr) ast.Expr { return &ast.MemberExpr{Object: obj, Index: e} }
	})
	call := Map(EnclosedDelimited(Punct("("), elementRule(expr), Punct(")"), Punct(",")), func(args []ast.Expr) suffix {
		return func(callee ast.Expr) ast.Expr { return &ast.Call{Callee: callee, Args: args} }
	})
	return Map(Seq2(primary, ZeroOrMore(Any(dot, index, call))), func(p Pair[ast.Expr, []suffix]) ast.Expr {
		acc := p.First
		for _, fn := range p.Second {
			acc = fn(acc)
		}
		return acc
	})
}

func assignable(e ast.Expr) bool {
	switch e.(type) {
	case *ast.Identifier, *ast.MemberExpr:
		return true
	}
	return false
}

func updateOperator() Parser[string] { return Any(Punct("++"), Punct("--")) }

func prefixUpdateRule(chain Parser[ast.Expr]) Parser[ast.Expr] {
	return Map(Seq2(updateOperator(), Check(chain, assignable)), func(p Pair[string, ast.Expr]) ast.Expr {
		return &ast.Update{Op: p.First, Operand: p.Second, Prefix: true}
	})
}

// postfixRule parses a chain once and then looks for a trailing ++ or --,
// leaving the operator unconsumed when the chain is not assignable.
func postfixRule(chain Parser[ast.Expr]) Parser[ast.Expr] {
	op := updateOperator()
	return func(s scanner.Stream) (ast.Expr, scanner.Stream, bool) {
		e, next, ok := chain(s)
		if !ok {
			return nil, s, false
		}
		if !assignable(e) {
			return e, next, true
		}
		if o, after, ok := op(next); ok {
			return &ast.Update{Op: o, Operand: e}, after, true
		}
		return e, next, true
	}
}

func unaryRule(operand Parser[ast.Expr]) Parser[ast.Expr] {
	ops := make([]Parser[string], len(unaryOperators))
	for i, op := range unaryOperators {
		if op[0] >= 'a' && op[0] <= 'z' {
			ops[i] = Map(Keyword(op), func(t scanner.Token) string { return t.Text })
		} else {
			ops[i] = Punct(op)
		}
	}
	return Map(Seq2(Any(ops...), operand), func(p Pair[string, ast.Expr]) ast.Expr {
		return &ast.Unary{Op: p.First, Operand: p.Second}
	})
}

func binaryOperatorRule() Parser[string] {
	ops := make([]Parser[string], len(binaryOperators))
	for i, op := range binaryOperators {
		if op == "in" || op == "instanceof" {
			ops[i] = Map(Keyword(op), func(t scanner.Token) string { return t.Text })
		} else {
			ops[i] = Punct(op)
		}
	}
	return Any(ops...)
}

// reduceBinary folds the flat sequence first (op operand)* into a tree.
// For each operator in precedence order it makes one left-to-right pass,
// collapsing every (left, op, right) triple whose operator matches.
func reduceBinary(first ast.Expr, rest []Pair[string, ast.Expr]) ast.Expr {
	operands := make([]ast.Expr, 0, len(rest)+1)
	operands = append(operands, first)
	ops := make([]string, 0, len(rest))
	for _, p := range rest {
		ops = append(ops, p.First)
		operands = append(operands, p.Second)
	}
	for _, level := range precedence {
		if len(ops) == 0 {
			break
		}
		outOperands := []ast.Expr{operands[0]}
		var outOps []string
		for i, op := range ops {
			right := operands[i+1]
			if op == level {
				left := outOperands[len(outOperands)-1]
				outOperands[len(outOperands)-1] = &ast.Binary{Op: op, Left: left, Right: right}
				continue
			}
			outOps = append(outOps, op)
			outOperands = append(outOperands, right)
		}
		operands, ops = outOperands, outOps
	}
	return operands[0]
}

// KindOf classifies a host value the way parameter tokens record it.
func KindOf(v any) ast.ParamKind {
	switch value.Classify(v) {
	case value.TypeUndefined:
		return ast.ParamUndefined
	case value.TypeNull:
		return ast.ParamNull
	case value.TypeBoolean:
		return ast.ParamBoolean
	case value.TypeNumber:
		return ast.ParamNumber
	case value.TypeString:
		return ast.ParamString
	case value.TypeArray:
		return ast.ParamArray
	case value.TypeFunction:
		return ast.ParamFunction
	}
	return ast.ParamObject
}

func parseNumber(text string) float64 {
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return value.NaN()
	}
	return f
}

// unquote strips the surrounding quotes of a string token and decodes
// backslash escapes. Unknown escapes stand for the escaped character.
func unquote(raw string) string {
	if len(raw) < 2 {
		return raw
	}
	body := raw[1 : len(raw)-1]
	if !strings.Contains(body, `\`) {
		return body
	}
	var b strings.Builder
	rs := []rune(body)
	for i := 0; i < len(rs); i++ {
		if rs[i] != '\\' || i+1 >= len(rs) {
			b.WriteRune(rs[i])
			continue
		}
		i++
		switch rs[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '0':
			b.WriteByte(0)
		case 'u', 'x':
			width := 4
			if rs[i] == 'x' {
				width = 2
			}
			if i+width < len(rs) {
				if n, err := strconv.ParseUint(string(rs[i+1:i+1+width]), 16, 32); err == nil {
					b.WriteRune(rune(n))
					i += width
					continue
				}
			}
			b.WriteRune(rs[i])
		default:
			b.WriteRune(rs[i])
		}
	}
	return b.String()
}
