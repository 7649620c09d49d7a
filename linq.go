// Package linq compiles language-integrated queries written in a
// JavaScript expression dialect extended with from, join, where, orderby,
// group by, const and select clauses, and runs them lazily over host
// values passed in as parameters.
//
//	users := []map[string]any{{"name": "amy", "age": 31}, {"name": "bob", "age": 17}}
//	q, err := linq.Query(`from u in $1 where u.age >= 18 select u.name`, users)
//	if err != nil {
//		return err
//	}
//	names, err := q.All()
package linq

import (
	"context"
	"iter"

	"github.com/sirupsen/logrus"

	"github.com/sinclairzx81/linqbox/internal/cursor"
	"github.com/sinclairzx81/linqbox/internal/linq/ast"
	"github.com/sinclairzx81/linqbox/internal/linq/parser"
	"github.com/sinclairzx81/linqbox/internal/linq/plan"
	"github.com/sinclairzx81/linqbox/internal/linq/scanner"
	"github.com/sinclairzx81/linqbox/internal/linq/value"
)

type (
	// Value is a runtime value: nil, Undefined, bool, float64, string,
	// []Value, *Object, *Grouping or a callable.
	Value = value.Value
	// Object is an object value with ordered keys.
	Object = value.Object
	// Grouping is the element type produced by group by.
	Grouping = value.Grouping
	// Cursor pulls query results one at a time.
	Cursor = cursor.Cursor
	// Expression is the syntax tree of a query.
	Expression = ast.QueryExpr
)

// Undefined is the value of missing members and parameters.
var Undefined = value.Undefined

// Export converts a result value into plain Go values.
func Export(v Value) any { return value.Export(v) }

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger routes compile and run diagnostics to l at debug level.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Compiler) { c.log = l }
}

// Compiler turns query text into Enumerables. A Compiler is safe for
// concurrent use.
type Compiler struct {
	log logrus.FieldLogger
}

// NewCompiler returns a Compiler configured by opts.
func NewCompiler(opts ...Option) *Compiler {
	c := &Compiler{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var std = NewCompiler()

// Query compiles text with the default compiler. See Compiler.Query.
func Query(text string, args ...any) (*Enumerable, error) { return std.Query(text, args...) }

// Named compiles text with the default compiler. See Compiler.Named.
func Named(text string, values map[string]any) (*Enumerable, error) { return std.Named(text, values) }

// Template compiles a template with the default compiler. See
// Compiler.Template.
func Template(parts []string, args ...any) (*Enumerable, error) { return std.Template(parts, args...) }

// Query compiles text, binding the placeholders $1 to $n to args.
func (c *Compiler) Query(text string, args ...any) (*Enumerable, error) {
	inputs, err := scanner.Positional(text, args)
	if err != nil {
		return nil, err
	}
	return c.compile(inputs, args)
}

// Named compiles text, binding each $name placeholder to values[name].
// Placeholders with no entry in values are left as identifiers.
func (c *Compiler) Named(text string, values map[string]any) (*Enumerable, error) {
	inputs, params := scanner.Named(text, values)
	return c.compile(inputs, params)
}

// Template compiles parts interleaved with args, where args[i] sits
// between parts[i] and parts[i+1].
func (c *Compiler) Template(parts []string, args ...any) (*Enumerable, error) {
	return c.compile(scanner.Template(parts, args), args)
}

func (c *Compiler) compile(inputs []scanner.Input, params []any) (*Enumerable, error) {
	stream, err := scanner.Tokenize(inputs)
	if err != nil {
		return nil, err
	}
	q, err := parser.Parse(stream)
	if err != nil {
		return nil, err
	}
	var opts []plan.Option
	if c.log != nil {
		opts = append(opts, plan.WithLogger(c.log))
	}
	p, err := plan.Compile(q, opts...)
	if err != nil {
		return nil, err
	}
	return &Enumerable{program: p, params: params}, nil
}

// Enumerable is a compiled query bound to a parameter list. Nothing runs
// until its results are pulled, and each pull sequence runs the query
// afresh.
type Enumerable struct {
	program *plan.Program
	params  []any
}

// Seq returns the lazy result sequence. Iteration stops after the first
// error.
func (e *Enumerable) Seq() iter.Seq2[Value, error] { return e.program.Run(e.params) }

// All runs the query to completion and returns every result.
func (e *Enumerable) All() ([]Value, error) {
	out := []Value{}
	for v, err := range e.Seq() {
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Cursor returns a cursor over the results. The cursor stops with ctx's
// error once ctx is done.
func (e *Enumerable) Cursor(ctx context.Context) Cursor {
	return cursor.NewSeq(ctx, e.Seq())
}

// Rebind returns the same compiled query bound to args. Each argument must
// have the kind of the value it replaces. Arguments in slots the query
// never references are not checked.
func (e *Enumerable) Rebind(args ...any) (*Enumerable, error) {
	slots := e.program.Params()
	if len(args) < len(slots) {
		return nil, &ParamCountError{Want: len(slots), Got: len(args)}
	}
	for i, slot := range slots {
		if !slot.Used {
			continue
		}
		if got := parser.KindOf(args[i]); got != slot.Kind {
			return nil, &ParamKindError{Index: i, Want: slot.Kind.String(), Got: got.String()}
		}
	}
	return &Enumerable{program: e.program, params: args}, nil
}

// Expression returns the syntax tree of the query.
func (e *Enumerable) Expression() *Expression { return e.program.Query() }

// String prints the query in canonical form.
func (e *Enumerable) String() string { return e.program.Query().String() }
