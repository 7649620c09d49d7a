package plan

import (
	"fmt"

	"github.com/sinclairzx81/linqbox/internal/linq/ast"
	"github.com/sinclairzx81/linqbox/internal/linq/value"
)

// runtime carries the state shared by one run of a program.
type runtime struct {
	params []value.Value
}

// eval is a compiled expression.
type eval func(rt *runtime, f *frame) (value.Value, error)

func constant(v value.Value) eval {
	return func(*runtime, *frame) (value.Value, error) { return v, nil }
}

// exprCompiler turns expressions into closures over resolved slots.
type exprCompiler struct {
	p     *compiler
	scope *scope
}

var _ ast.ExprVisitor[eval] = (*exprCompiler)(nil)

func (c *exprCompiler) compile(e ast.Expr) (eval, error) {
	return ast.VisitExpr[eval](c, e)
}

func (c *exprCompiler) VisitIdentifier(n *ast.Identifier) (eval, error) {
	if depth, slot, ok := c.scope.resolve(n.Name); ok {
		return func(_ *runtime, f *frame) (value.Value, error) {
			return f.lookup(depth, slot), nil
		}, nil
	}
	if g, ok := value.Global(n.Name); ok {
		return constant(g), nil
	}
	return nil, &UnboundIdentifierError{Name: n.Name, Offset: n.Offset}
}

func (c *exprCompiler) VisitLiteral(n *ast.Literal) (eval, error) {
	if n.Kind == ast.NullLiteral {
		return constant(nil), nil
	}
	return constant(n.Value), nil
}

func (c *exprCompiler) VisitParameter(n *ast.Parameter) (eval, error) {
	index := n.Index
	return func(rt *runtime, _ *frame) (value.Value, error) {
		if index < len(rt.params) {
			return rt.params[index], nil
		}
		return value.Undefined, nil
	}, nil
}

func (c *exprCompiler) VisitArray(n *ast.ArrayExpr) (eval, error) {
	elements, err := c.list(n.Elements)
	if err != nil {
		return nil, err
	}
	return func(rt *runtime, f *frame) (value.Value, error) {
		return elements(rt, f)
	}, nil
}

// list compiles array elements or call arguments, expanding spreads.
func (c *exprCompiler) list(es []ast.Expr) (func(*runtime, *frame) ([]value.Value, error), error) {
	type item struct {
		fn     eval
		spread bool
	}
	items := make([]item, len(es))
	for i, e := range es {
		it := item{}
		if s, ok := e.(*ast.Spread); ok {
			e, it.spread = s.Arg, true
		}
		fn, err := c.compile(e)
		if err != nil {
			return nil, err
		}
		it.fn = fn
		items[i] = it
	}
	return func(rt *runtime, f *frame) ([]value.Value, error) {
		out := value.NewArray(len(items))
		for _, it := range items {
			v, err := it.fn(rt, f)
			if err != nil {
				return nil, err
			}
			if !it.spread {
				out = append(out, v)
				continue
			}
			els, err := value.Iterate(v)
			if err != nil {
				return nil, err
			}
			out = append(out, els...)
		}
		return out, nil
	}, nil
}

func (c *exprCompiler) VisitObject(n *ast.ObjectExpr) (eval, error) {
	type setter func(rt *runtime, f *frame, o *value.Object) error
	setters := make([]setter, 0, len(n.Members))
	for _, m := range n.Members {
		switch m := m.(type) {
		case *ast.Spread:
			arg, err := c.compile(m.Arg)
			if err != nil {
				return nil, err
			}
			setters = append(setters, func(rt *runtime, f *frame, o *value.Object) error {
				v, err := arg(rt, f)
				if err != nil {
					return err
				}
				spreadInto(o, v)
				return nil
			})
		case *ast.Property:
			val, err := c.compile(m.Value)
			if err != nil {
				return nil, err
			}
			key := constant(m.Key)
			if m.Computed != nil {
				if key, err = c.compile(m.Computed); err != nil {
					return nil, err
				}
			}
			setters = append(setters, func(rt *runtime, f *frame, o *value.Object) error {
				k, err := key(rt, f)
				if err != nil {
					return err
				}
				v, err := val(rt, f)
				if err != nil {
					return err
				}
				o.Set(value.ToString(k), v)
				return nil
			})
		}
	}
	return func(rt *runtime, f *frame) (value.Value, error) {
		o := value.NewObject()
		for _, set := range setters {
			if err := set(rt, f, o); err != nil {
				return nil, err
			}
		}
		return o, nil
	}, nil
}

// spreadInto copies the enumerable properties of v into o. Primitives
// other than strings contribute nothing.
func spreadInto(o *value.Object, v value.Value) {
	switch x := v.(type) {
	case *value.Object:
		o.Assign(x)
	case []value.Value:
		for i, el := range x {
			o.Set(value.ToString(float64(i)), el)
		}
	case string:
		i := 0
		for _, r := range x {
			o.Set(value.ToString(float64(i)), string(r))
			i++
		}
	case *value.Grouping:
		o.Set("key", x.Key)
		o.Set("values", x.Values)
	}
}

func (c *exprCompiler) VisitSpread(n *ast.Spread) (eval, error) {
	return nil, &UnsupportedExpressionError{Expr: n.String()}
}

// memberKey compiles the property part of a member expression.
func (c *exprCompiler) memberKey(n *ast.MemberExpr) (eval, error) {
	if n.Index == nil {
		return constant(n.Name), nil
	}
	return c.compile(n.Index)
}

// member compiles the object and key of n together.
func (c *exprCompiler) member(n *ast.MemberExpr) (obj, key eval, err error) {
	if obj, err = c.compile(n.Object); err != nil {
		return nil, nil, err
	}
	if key, err = c.memberKey(n); err != nil {
		return nil, nil, err
	}
	return obj, key, nil
}

func evalPair(rt *runtime, f *frame, a, b eval) (value.Value, value.Value, error) {
	x, err := a(rt, f)
	if err != nil {
		return nil, nil, err
	}
	y, err := b(rt, f)
	if err != nil {
		return nil, nil, err
	}
	return x, y, nil
}

func (c *exprCompiler) VisitMember(n *ast.MemberExpr) (eval, error) {
	obj, key, err := c.member(n)
	if err != nil {
		return nil, err
	}
	return func(rt *runtime, f *frame) (value.Value, error) {
		o, k, err := evalPair(rt, f, obj, key)
		if err != nil {
			return nil, err
		}
		return value.Get(o, k)
	}, nil
}

func (c *exprCompiler) VisitCall(n *ast.Call) (eval, error) {
	args, err := c.list(n.Args)
	if err != nil {
		return nil, err
	}
	text := n.Callee.String()
	if m, ok := n.Callee.(*ast.MemberExpr); ok {
		obj, key, err := c.member(m)
		if err != nil {
			return nil, err
		}
		return func(rt *runtime, f *frame) (value.Value, error) {
			this, k, err := evalPair(rt, f, obj, key)
			if err != nil {
				return nil, err
			}
			fn, err := value.Get(this, k)
			if err != nil {
				return nil, err
			}
			return call(rt, f, text, fn, this, args)
		}, nil
	}
	callee, err := c.compile(n.Callee)
	if err != nil {
		return nil, err
	}
	return func(rt *runtime, f *frame) (value.Value, error) {
		fn, err := callee(rt, f)
		if err != nil {
			return nil, err
		}
		return call(rt, f, text, fn, value.Undefined, args)
	}, nil
}

func call(rt *runtime, f *frame, text string, fn, this value.Value, args func(*runtime, *frame) ([]value.Value, error)) (value.Value, error) {
	c, ok := fn.(value.Callable)
	if !ok {
		return nil, &value.TypeError{Msg: text + " is not a function"}
	}
	vs, err := args(rt, f)
	if err != nil {
		return nil, err
	}
	return c.Call(this, vs)
}

func (c *exprCompiler) VisitUnary(n *ast.Unary) (eval, error) {
	if m, ok := n.Operand.(*ast.MemberExpr); ok && n.Op == "delete" {
		obj, key, err := c.member(m)
		if err != nil {
			return nil, err
		}
		return func(rt *runtime, f *frame) (value.Value, error) {
			o, k, err := evalPair(rt, f, obj, key)
			if err != nil {
				return nil, err
			}
			return value.Delete(o, k)
		}, nil
	}
	operand, err := c.compile(n.Operand)
	if err != nil {
		return nil, err
	}
	op := n.Op
	return func(rt *runtime, f *frame) (value.Value, error) {
		v, err := operand(rt, f)
		if err != nil {
			return nil, err
		}
		if op == "delete" {
			return true, nil
		}
		return value.Unary(op, v)
	}, nil
}

// VisitUpdate compiles ++ and --. Bindings are constant, so only member
// targets can be updated.
func (c *exprCompiler) VisitUpdate(n *ast.Update) (eval, error) {
	switch target := n.Operand.(type) {
	case *ast.Identifier:
		if _, err := c.compile(target); err != nil {
			return nil, err
		}
		msg := fmt.Sprintf("assignment to constant binding '%s'", target.Name)
		return func(*runtime, *frame) (value.Value, error) {
			return nil, &value.TypeError{Msg: msg}
		}, nil
	case *ast.MemberExpr:
		obj, key, err := c.member(target)
		if err != nil {
			return nil, err
		}
		delta := 1.0
		if n.Op == "--" {
			delta = -1
		}
		prefix := n.Prefix
		return func(rt *runtime, f *frame) (value.Value, error) {
			o, k, err := evalPair(rt, f, obj, key)
			if err != nil {
				return nil, err
			}
			old, err := value.Get(o, k)
			if err != nil {
				return nil, err
			}
			before := value.ToNumber(old)
			after := before + delta
			if err := value.Set(o, k, after); err != nil {
				return nil, err
			}
			if prefix {
				return after, nil
			}
			return before, nil
		}, nil
	}
	return nil, &UnsupportedExpressionError{Expr: n.String()}
}

func (c *exprCompiler) VisitBinary(n *ast.Binary) (eval, error) {
	left, err := c.compile(n.Left)
	if err != nil {
		return nil, err
	}
	right, err := c.compile(n.Right)
	if err != nil {
		return nil, err
	}
	op := n.Op
	switch op {
	case "&&", "||", "??":
		return func(rt *runtime, f *frame) (value.Value, error) {
			l, err := left(rt, f)
			if err != nil {
				return nil, err
			}
			switch {
			case op == "&&" && !value.Truthy(l),
				op == "||" && value.Truthy(l),
				op == "??" && !value.Nullish(l):
				return l, nil
			}
			return right(rt, f)
		}, nil
	}
	return func(rt *runtime, f *frame) (value.Value, error) {
		l, r, err := evalPair(rt, f, left, right)
		if err != nil {
			return nil, err
		}
		return value.Binary(op, l, r)
	}, nil
}

// VisitQuery compiles a nested query. Its results are collected into an
// array each time the expression is evaluated.
func (c *exprCompiler) VisitQuery(n *ast.QueryExpr) (eval, error) {
	nested, err := c.p.query(n, &scope{outer: c.scope})
	if err != nil {
		return nil, err
	}
	return func(rt *runtime, f *frame) (value.Value, error) {
		out := value.NewArray(0)
		for v, err := range nested(rt, f, start()) {
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}, nil
}
