package plan

import (
	"iter"

	"github.com/sinclairzx81/linqbox/internal/linq/ast"
	"github.com/sinclairzx81/linqbox/internal/linq/value"
)

// envs is a lazy sequence of environments, one slot per binding in scope.
type envs = iter.Seq2[[]value.Value, error]

// stage runs a clause and everything after it over the environments
// produced by the clauses before it. outer is the frame of the enclosing
// query, or nil at the top level.
type stage func(rt *runtime, outer *frame, in envs) iter.Seq2[value.Value, error]

// start is the input of a query: a single empty environment.
func start() envs {
	return func(yield func([]value.Value, error) bool) {
		yield(nil, nil)
	}
}

// forEach calls fn for each environment of in until fn returns false. The
// first error, from in or from fn, is passed to yield and ends the loop.
func forEach(in envs, yield func([]value.Value, error) bool, fn func(env []value.Value) (bool, error)) {
	for env, err := range in {
		if err != nil {
			yield(nil, err)
			return
		}
		more, err := fn(env)
		if err != nil {
			yield(nil, err)
			return
		}
		if !more {
			return
		}
	}
}

// collect drains in.
func collect(in envs) ([][]value.Value, error) {
	var out [][]value.Value
	for env, err := range in {
		if err != nil {
			return nil, err
		}
		out = append(out, env)
	}
	return out, nil
}

// clauseCompiler compiles the clause chain that follows a scope.
type clauseCompiler struct {
	p     *compiler
	scope *scope
}

var _ ast.ClauseVisitor[stage] = (*clauseCompiler)(nil)

func (c *clauseCompiler) expr(e ast.Expr) (eval, error) {
	return (&exprCompiler{p: c.p, scope: c.scope}).compile(e)
}

func (c *clauseCompiler) next(s *scope, clause ast.Clause) (stage, error) {
	c.p.clauses++
	return ast.VisitClause[stage](&clauseCompiler{p: c.p, scope: s}, clause)
}

func (c *clauseCompiler) bind(name string) *scope {
	c.p.bindings++
	return c.scope.with(name)
}

func (c *clauseCompiler) VisitFrom(n *ast.From) (stage, error) {
	source, err := c.expr(n.Source)
	if err != nil {
		return nil, err
	}
	then, err := c.next(c.bind(n.Binding), n.Then)
	if err != nil {
		return nil, err
	}
	return func(rt *runtime, outer *frame, in envs) iter.Seq2[value.Value, error] {
		return then(rt, outer, func(yield func([]value.Value, error) bool) {
			forEach(in, yield, func(env []value.Value) (bool, error) {
				items, err := iterate(rt, &frame{env: env, outer: outer}, source)
				if err != nil {
					return false, err
				}
				for _, item := range items {
					if !yield(extend(env, item), nil) {
						return false, nil
					}
				}
				return true, nil
			})
		})
	}, nil
}

func iterate(rt *runtime, f *frame, source eval) ([]value.Value, error) {
	v, err := source(rt, f)
	if err != nil {
		return nil, err
	}
	return value.Iterate(v)
}

// joinKeys compiles the source and key expressions shared by join and
// join into. The right key sees the join binding.
func (c *clauseCompiler) joinKeys(binding string, source, left, right ast.Expr) (src, l, r eval, err error) {
	if src, err = c.expr(source); err != nil {
		return
	}
	if l, err = c.expr(left); err != nil {
		return
	}
	inner := &exprCompiler{p: c.p, scope: c.scope.with(binding)}
	r, err = inner.compile(right)
	return
}

// matches returns the elements of source whose right key strictly equals
// the left key of env.
func matches(rt *runtime, outer *frame, env []value.Value, source, left, right eval, each func(item value.Value) bool) error {
	f := &frame{env: env, outer: outer}
	items, err := iterate(rt, f, source)
	if err != nil {
		return err
	}
	lk, err := left(rt, f)
	if err != nil {
		return err
	}
	for _, item := range items {
		rk, err := right(rt, &frame{env: extend(env, item), outer: outer})
		if err != nil {
			return err
		}
		if value.StrictEquals(lk, rk) && !each(item) {
			return nil
		}
	}
	return nil
}

func (c *clauseCompiler) VisitJoin(n *ast.Join) (stage, error) {
	source, left, right, err := c.joinKeys(n.Binding, n.Source, n.Left, n.Right)
	if err != nil {
		return nil, err
	}
	then, err := c.next(c.bind(n.Binding), n.Then)
	if err != nil {
		return nil, err
	}
	return func(rt *runtime, outer *frame, in envs) iter.Seq2[value.Value, error] {
		return then(rt, outer, func(yield func([]value.Value, error) bool) {
			forEach(in, yield, func(env []value.Value) (bool, error) {
				more := true
				err := matches(rt, outer, env, source, left, right, func(item value.Value) bool {
					more = yield(extend(env, item), nil)
					return more
				})
				return more, err
			})
		})
	}, nil
}

func (c *clauseCompiler) VisitJoinInto(n *ast.JoinInto) (stage, error) {
	source, left, right, err := c.joinKeys(n.Binding, n.Source, n.Left, n.Right)
	if err != nil {
		return nil, err
	}
	then, err := c.next(c.bind(n.Into), n.Then)
	if err != nil {
		return nil, err
	}
	return func(rt *runtime, outer *frame, in envs) iter.Seq2[value.Value, error] {
		return then(rt, outer, func(yield func([]value.Value, error) bool) {
			forEach(in, yield, func(env []value.Value) (bool, error) {
				group := value.NewArray(0)
				err := matches(rt, outer, env, source, left, right, func(item value.Value) bool {
					group = append(group, item)
					return true
				})
				if err != nil {
					return false, err
				}
				return yield(extend(env, group), nil), nil
			})
		})
	}, nil
}

func (c *clauseCompiler) VisitConst(n *ast.Const) (stage, error) {
	val, err := c.expr(n.Value)
	if err != nil {
		return nil, err
	}
	then, err := c.next(c.bind(n.Binding), n.Then)
	if err != nil {
		return nil, err
	}
	return func(rt *runtime, outer *frame, in envs) iter.Seq2[value.Value, error] {
		return then(rt, outer, func(yield func([]value.Value, error) bool) {
			forEach(in, yield, func(env []value.Value) (bool, error) {
				v, err := val(rt, &frame{env: env, outer: outer})
				if err != nil {
					return false, err
				}
				return yield(extend(env, v), nil), nil
			})
		})
	}, nil
}

func (c *clauseCompiler) VisitWhere(n *ast.Where) (stage, error) {
	pred, err := c.expr(n.Predicate)
	if err != nil {
		return nil, err
	}
	then, err := c.next(c.scope, n.Then)
	if err != nil {
		return nil, err
	}
	return func(rt *runtime, outer *frame, in envs) iter.Seq2[value.Value, error] {
		return then(rt, outer, func(yield func([]value.Value, error) bool) {
			forEach(in, yield, func(env []value.Value) (bool, error) {
				v, err := pred(rt, &frame{env: env, outer: outer})
				if err != nil || !value.Truthy(v) {
					return err == nil, err
				}
				return yield(env, nil), nil
			})
		})
	}, nil
}

func (c *clauseCompiler) VisitOrderBy(n *ast.OrderBy) (stage, error) {
	type key struct {
		fn         eval
		descending bool
	}
	keys := make([]key, len(n.Keys))
	for i, k := range n.Keys {
		fn, err := c.expr(k.Key)
		if err != nil {
			return nil, err
		}
		keys[i] = key{fn: fn, descending: k.Descending}
	}
	then, err := c.next(c.scope, n.Then)
	if err != nil {
		return nil, err
	}
	return func(rt *runtime, outer *frame, in envs) iter.Seq2[value.Value, error] {
		return then(rt, outer, func(yield func([]value.Value, error) bool) {
			all, err := collect(in)
			if err != nil {
				yield(nil, err)
				return
			}
			ds := make([]directive[[]value.Value], len(keys))
			for i, k := range keys {
				ds[i] = directive[[]value.Value]{
					key: func(env []value.Value) (value.Value, error) {
						return k.fn(rt, &frame{env: env, outer: outer})
					},
					descending: k.descending,
				}
			}
			sorted, err := order(all, ds)
			if err != nil {
				yield(nil, err)
				return
			}
			for _, env := range sorted {
				if !yield(env, nil) {
					return
				}
			}
		})
	}, nil
}

// grouper compiles the element and key of a group clause into a function
// that drains its input and returns the groupings in first-seen key order.
func (c *clauseCompiler) grouper(binding string, keyExpr ast.Expr) (func(rt *runtime, outer *frame, in envs) ([]*value.Grouping, error), error) {
	element, err := c.expr(&ast.Identifier{Name: binding})
	if err != nil {
		return nil, err
	}
	key, err := c.expr(keyExpr)
	if err != nil {
		return nil, err
	}
	return func(rt *runtime, outer *frame, in envs) ([]*value.Grouping, error) {
		all, err := collect(in)
		if err != nil {
			return nil, err
		}
		groups, err := partition(all, func(env []value.Value) (value.Value, error) {
			return key(rt, &frame{env: env, outer: outer})
		})
		if err != nil {
			return nil, err
		}
		out := make([]*value.Grouping, len(groups))
		for i, g := range groups {
			values := value.NewArray(len(g.members))[:len(g.members)]
			for j, env := range g.members {
				if values[j], err = element(rt, &frame{env: env, outer: outer}); err != nil {
					return nil, err
				}
			}
			out[i] = &value.Grouping{Key: g.key, Values: values}
		}
		return out, nil
	}, nil
}

func (c *clauseCompiler) VisitGroupBy(n *ast.GroupBy) (stage, error) {
	groups, err := c.grouper(n.Binding, n.Key)
	if err != nil {
		return nil, err
	}
	return func(rt *runtime, outer *frame, in envs) iter.Seq2[value.Value, error] {
		return func(yield func(value.Value, error) bool) {
			gs, err := groups(rt, outer, in)
			if err != nil {
				yield(nil, err)
				return
			}
			for _, g := range gs {
				if !yield(g, nil) {
					return
				}
			}
		}
	}, nil
}

// VisitGroupInto continues the query with the grouping as the only binding
// of the enclosing query level.
func (c *clauseCompiler) VisitGroupInto(n *ast.GroupInto) (stage, error) {
	groups, err := c.grouper(n.Binding, n.Key)
	if err != nil {
		return nil, err
	}
	c.p.bindings++
	then, err := c.next(&scope{names: []string{n.Into}, outer: c.scope.outer}, n.Then)
	if err != nil {
		return nil, err
	}
	return func(rt *runtime, outer *frame, in envs) iter.Seq2[value.Value, error] {
		return then(rt, outer, func(yield func([]value.Value, error) bool) {
			gs, err := groups(rt, outer, in)
			if err != nil {
				yield(nil, err)
				return
			}
			for _, g := range gs {
				if !yield([]value.Value{g}, nil) {
					return
				}
			}
		})
	}, nil
}

func (c *clauseCompiler) VisitSelect(n *ast.Select) (stage, error) {
	projection, err := c.expr(n.Projection)
	if err != nil {
		return nil, err
	}
	return func(rt *runtime, outer *frame, in envs) iter.Seq2[value.Value, error] {
		return func(yield func(value.Value, error) bool) {
			for env, err := range in {
				if err != nil {
					yield(nil, err)
					return
				}
				v, err := projection(rt, &frame{env: env, outer: outer})
				if err != nil {
					yield(nil, err)
					return
				}
				if !yield(v, nil) {
					return
				}
			}
		}
	}, nil
}
