package ast

import (
	"strconv"
	"strings"
)

func (n *Identifier) String() string { return n.Name }
func (n *Literal) String() string    { return n.Raw }
func (n *Parameter) String() string  { return "$" + strconv.Itoa(n.Index+1) }

func (n *ArrayExpr) String() string {
	return "[" + list(n.Elements) + "]"
}

func (n *ObjectExpr) String() string {
	if len(n.Members) == 0 {
		return "{}"
	}
	parts := make([]string, len(n.Members))
	for i, m := range n.Members {
		parts[i] = m.String()
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

func (n *Property) String() string {
	switch {
	case n.Shorthand:
		return n.Key
	case n.Computed != nil:
		return "[" + sub(n.Computed) + "]: " + sub(n.Value)
	case isIdent(n.Key):
		return n.Key + ": " + sub(n.Value)
	}
	return strconv.Quote(n.Key) + ": " + sub(n.Value)
}

func (n *Spread) String() string { return "..." + sub(n.Arg) }

func (n *MemberExpr) String() string {
	if n.Index != nil {
		return sub(n.Object) + "[" + sub(n.Index) + "]"
	}
	return sub(n.Object) + "." + n.Name
}

func (n *Call) String() string {
	return sub(n.Callee) + "(" + list(n.Args) + ")"
}

func (n *Unary) String() string {
	switch n.Op {
	case "typeof", "void", "delete":
		return n.Op + " " + sub(n.Operand)
	}
	operand := sub(n.Operand)
	if (n.Op == "-" || n.Op == "+") && strings.HasPrefix(operand, n.Op) {
		// keep - -x from printing as the decrement operator
		return n.Op + " " + operand
	}
	return n.Op + operand
}

func (n *Update) String() string {
	if n.Prefix {
		return n.Op + sub(n.Operand)
	}
	return sub(n.Operand) + n.Op
}

// String fully parenthesizes binary expressions so that the printed form
// shows how precedence was resolved.
func (n *Binary) String() string {
	return "(" + sub(n.Left) + " " + n.Op + " " + sub(n.Right) + ")"
}

func (n *QueryExpr) String() string {
	parts := make([]string, 0, 4)
	for _, c := range n.Clauses() {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, " ")
}

func (n *From) String() string {
	return "from " + n.Binding + " in " + sub(n.Source)
}

func (n *Join) String() string {
	return "join " + n.Binding + " in " + sub(n.Source) + " on " + sub(n.Left) + " equals " + sub(n.Right)
}

func (n *JoinInto) String() string {
	return "join " + n.Binding + " in " + sub(n.Source) + " on " + sub(n.Left) + " equals " + sub(n.Right) + " into " + n.Into
}

func (n *Const) String() string {
	kw := "const"
	if n.Let {
		kw = "let"
	}
	return kw + " " + n.Binding + " = " + sub(n.Value)
}

func (n *Where) String() string { return "where " + sub(n.Predicate) }

func (n *OrderBy) String() string {
	keys := make([]string, len(n.Keys))
	for i, k := range n.Keys {
		keys[i] = sub(k.Key)
		if k.Descending {
			keys[i] += " descending"
		}
	}
	return "orderby " + strings.Join(keys, ", ")
}

func (n *GroupBy) String() string { return "group " + n.Binding + " by " + sub(n.Key) }

func (n *GroupInto) String() string {
	return "group " + n.Binding + " by " + sub(n.Key) + " into " + n.Into
}

func (n *Select) String() string { return "select " + sub(n.Projection) }

// sub prints a nested expression; nested queries are parenthesized.
func sub(e Expr) string {
	if q, ok := e.(*QueryExpr); ok {
		return "(" + q.String() + ")"
	}
	return e.String()
}

func list(es []Expr) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = sub(e)
	}
	return strings.Join(parts, ", ")
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		letter := r == '_' || r == '$' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		if !letter && (i == 0 || r < '0' || r > '9') {
			return false
		}
	}
	return true
}
