// Package plan compiles a query syntax tree into a lazy pipeline. Each
// clause becomes a stage that threads environments, the ordered values of
// the bindings introduced so far, to the clause after it. Expressions are
// compiled once into closures with every identifier resolved to a slot.
package plan

import (
	"io"
	"iter"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sinclairzx81/linqbox/internal/linq/ast"
	"github.com/sinclairzx81/linqbox/internal/linq/value"
)

// Option configures Compile.
type Option func(*compiler)

// WithLogger sets the logger that receives compile and run diagnostics at
// debug level.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *compiler) { c.log = l }
}

type compiler struct {
	log      logrus.FieldLogger
	clauses  int
	bindings int
}

func discard() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// query compiles a query whose first clause sees s.
func (c *compiler) query(q *ast.QueryExpr, s *scope) (stage, error) {
	c.clauses++
	return (&clauseCompiler{p: c, scope: s}).VisitFrom(q.From)
}

// Program is a compiled query. It is immutable and may be run any number
// of times with different parameters.
type Program struct {
	query  *ast.QueryExpr
	run    stage
	params []ParamSlot
	log    logrus.FieldLogger
}

// Compile resolves every identifier of q and builds its pipeline.
func Compile(q *ast.QueryExpr, opts ...Option) (*Program, error) {
	c := &compiler{log: discard()}
	for _, opt := range opts {
		opt(c)
	}
	run, err := c.query(q, &scope{})
	if err != nil {
		return nil, err
	}
	p := &Program{query: q, run: run, params: paramSlots(q), log: c.log}
	c.log.WithFields(logrus.Fields{
		"clauses":  c.clauses,
		"bindings": c.bindings,
		"params":   len(p.params),
	}).Debug("compiled query")
	return p, nil
}

// ParamSlot describes one positional parameter. Slots below the highest
// referenced index that no placeholder names are unused.
type ParamSlot struct {
	Kind ast.ParamKind
	Used bool
}

func paramSlots(q *ast.QueryExpr) []ParamSlot {
	var slots []ParamSlot
	ast.Walk(q, func(e ast.Expr) bool {
		if p, ok := e.(*ast.Parameter); ok {
			if p.Index >= len(slots) {
				slots = append(slots, make([]ParamSlot, p.Index+1-len(slots))...)
			}
			slots[p.Index] = ParamSlot{Kind: p.Kind, Used: true}
		}
		return true
	})
	return slots
}

// Query returns the syntax tree the program was compiled from.
func (p *Program) Query() *ast.QueryExpr { return p.query }

// Params returns each parameter slot with the kind captured at compile
// time, indexed by parameter position.
func (p *Program) Params() []ParamSlot { return p.params }

// Run returns the lazy result sequence of the query over params. Nothing
// is evaluated until the sequence is iterated, and iteration stops at the
// first error.
func (p *Program) Run(params []any) iter.Seq2[value.Value, error] {
	rt := &runtime{params: make([]value.Value, len(params))}
	for i, v := range params {
		rt.params[i] = value.Of(v)
	}
	return func(yield func(value.Value, error) bool) {
		began, rows := time.Now(), 0
		defer func() {
			p.log.WithFields(logrus.Fields{
				"rows":    rows,
				"elapsed": time.Since(began),
			}).Debug("query finished")
		}()
		for v, err := range p.run(rt, nil, start()) {
			if !yield(v, err) || err != nil {
				return
			}
			rows++
		}
	}
}
