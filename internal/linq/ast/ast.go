// Package ast defines the syntax tree of query expressions.
//
// Expression and clause variants are closed sets: each interface carries an
// unexported marker method, and ExprVisitor/ClauseVisitor enumerate every
// variant so that an implementation that misses one fails to compile.
package ast

// Node is implemented by every syntax tree node.
type Node interface {
	String() string
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// Member is an entry of an object expression: a *Property or a *Spread.
type Member interface {
	Node
	memberNode()
}

// Clause is a query clause. Every clause except Select and GroupBy carries
// the clause that follows it.
type Clause interface {
	Node
	clauseNode()
}

// LiteralKind classifies literal values.
type LiteralKind int

const (
	StringLiteral LiteralKind = iota
	NumberLiteral
	BooleanLiteral
	NullLiteral
)

// ParamKind is the runtime kind of a captured parameter value.
type ParamKind int

const (
	ParamUndefined ParamKind = iota
	ParamNull
	ParamBoolean
	ParamNumber
	ParamString
	ParamArray
	ParamObject
	ParamFunction
)

var paramKindNames = [...]string{"undefined", "null", "boolean", "number", "string", "array", "object", "function"}

func (k ParamKind) String() string {
	if int(k) < len(paramKindNames) {
		return paramKindNames[k]
	}
	return "unknown"
}

type (
	// Identifier references a binding or a global by name.
	Identifier struct {
		Name   string
		Offset int
	}

	// Literal is a string, number, boolean or null constant. Raw holds the
	// source text; Value the decoded Go value (string, float64, bool or nil).
	Literal struct {
		Kind  LiteralKind
		Raw   string
		Value any
	}

	// Parameter references the host value captured at Index.
	Parameter struct {
		Index int
		Kind  ParamKind
	}

	// ArrayExpr is an array literal. Elements may be *Spread.
	ArrayExpr struct {
		Elements []Expr
	}

	// ObjectExpr is an object literal.
	ObjectExpr struct {
		Members []Member
	}

	// Property is a key/value entry of an object literal. Computed is set
	// for [expr]: value entries, in which case Key is empty.
	Property struct {
		Key       string
		Computed  Expr
		Value     Expr
		Shorthand bool
	}

	// Spread expands an iterable into an array or call arguments, or an
	// object into an object literal.
	Spread struct {
		Arg Expr
	}

	// MemberExpr reads a property. Index is set for obj[expr], Name for obj.name.
	MemberExpr struct {
		Object Expr
		Name   string
		Index  Expr
	}

	// Call invokes Callee with Args. Args may be *Spread.
	Call struct {
		Callee Expr
		Args   []Expr
	}

	// Unary applies one of ! + - ~ typeof void delete.
	Unary struct {
		Op      string
		Operand Expr
	}

	// Update is ++ or -- in prefix or postfix position.
	Update struct {
		Op      string
		Operand Expr
		Prefix  bool
	}

	// Binary applies an infix operator.
	Binary struct {
		Op    string
		Left  Expr
		Right Expr
	}

	// QueryExpr is a complete query: a from clause and its continuation.
	QueryExpr struct {
		From *From
	}
)

func (*Identifier) exprNode() {}
func (*Literal) exprNode()    {}
func (*Parameter) exprNode()  {}
func (*ArrayExpr) exprNode()  {}
func (*ObjectExpr) exprNode() {}
func (*Spread) exprNode()     {}
func (*MemberExpr) exprNode() {}
func (*Call) exprNode()       {}
func (*Unary) exprNode()      {}
func (*Update) exprNode()     {}
func (*Binary) exprNode()     {}
func (*QueryExpr) exprNode()  {}

func (*Property) memberNode() {}
func (*Spread) memberNode()   {}

type (
	// From introduces Binding over each element of Source.
	From struct {
		Binding string
		Source  Expr
		Then    Clause
	}

	// Join pairs each environment with the elements of Source whose Right
	// key strictly equals the Left key.
	Join struct {
		Binding string
		Source  Expr
		Left    Expr
		Right   Expr
		Then    Clause
	}

	// JoinInto is a join whose matches are collected into one list bound
	// to Into.
	JoinInto struct {
		Binding string
		Source  Expr
		Left    Expr
		Right   Expr
		Into    string
		Then    Clause
	}

	// Const binds the value of an expression. Let records that the clause
	// was spelled with let.
	Const struct {
		Binding string
		Value   Expr
		Let     bool
		Then    Clause
	}

	// Where keeps environments for which Predicate is truthy.
	Where struct {
		Predicate Expr
		Then      Clause
	}

	// OrderBy sorts environments by Keys, most significant first.
	OrderBy struct {
		Keys []OrderKey
		Then Clause
	}

	// GroupBy ends a query with groupings of Binding keyed by Key.
	GroupBy struct {
		Binding string
		Key     Expr
	}

	// GroupInto groups like GroupBy and continues with each grouping bound
	// to Into.
	GroupInto struct {
		Binding string
		Key     Expr
		Into    string
		Then    Clause
	}

	// Select ends a query with a projection.
	Select struct {
		Projection Expr
	}
)

// OrderKey is one sort directive of an orderby clause.
type OrderKey struct {
	Key        Expr
	Descending bool
}

func (*From) clauseNode()      {}
func (*Join) clauseNode()      {}
func (*JoinInto) clauseNode()  {}
func (*Const) clauseNode()     {}
func (*Where) clauseNode()     {}
func (*OrderBy) clauseNode()   {}
func (*GroupBy) clauseNode()   {}
func (*GroupInto) clauseNode() {}
func (*Select) clauseNode()    {}

// Next returns the clause following c, or nil for a terminal clause.
func Next(c Clause) Clause {
	switch n := c.(type) {
	case *From:
		return n.Then
	case *Join:
		return n.Then
	case *JoinInto:
		return n.Then
	case *Const:
		return n.Then
	case *Where:
		return n.Then
	case *OrderBy:
		return n.Then
	case *GroupInto:
		return n.Then
	}
	return nil
}

// Clauses flattens the clause chain of q.
func (q *QueryExpr) Clauses() []Clause {
	var out []Clause
	for c := Clause(q.From); c != nil; c = Next(c) {
		out = append(out, c)
	}
	return out
}
