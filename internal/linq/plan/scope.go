package plan

import (
	"slices"

	"github.com/sinclairzx81/linqbox/internal/linq/value"
)

// scope lists the bindings visible at a clause, one name per environment
// slot. Nested queries start an empty scope whose outer is the scope of
// the expression that contains them.
type scope struct {
	names []string
	outer *scope
}

// with returns a scope that has name appended as the newest slot.
func (s *scope) with(name string) *scope {
	return &scope{names: append(slices.Clip(s.names), name), outer: s.outer}
}

// resolve finds the newest binding of name, counting how many nested query
// boundaries separate it from s.
func (s *scope) resolve(name string) (depth, slot int, ok bool) {
	for cur := s; cur != nil; cur = cur.outer {
		for i := len(cur.names) - 1; i >= 0; i-- {
			if cur.names[i] == name {
				return depth, i, true
			}
		}
		depth++
	}
	return 0, 0, false
}

// frame is one environment at run time. outer links the environment of the
// enclosing query while a nested query runs.
type frame struct {
	env   []value.Value
	outer *frame
}

func (f *frame) lookup(depth, slot int) value.Value {
	for ; depth > 0; depth-- {
		f = f.outer
	}
	return f.env[slot]
}

// extend returns env with v appended, never sharing the backing array of env.
func extend(env []value.Value, v value.Value) []value.Value {
	return append(slices.Clip(env), v)
}
