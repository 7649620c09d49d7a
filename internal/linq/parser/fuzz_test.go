package parser

import (
	"errors"
	"testing"

	"github.com/sinclairzx81/linqbox/internal/linq/scanner"
)

func FuzzParse(f *testing.F) {
	for _, s := range []string{
		"from x in xs select x",
		"from u in users where u.age > 18 orderby u.name descending, u.id select {name: u.name, ...u}",
		"from a in as join b in bs on a.id equals b.id into g select g",
		"from x in xs group x by x.k into g select [g.key, g.values.length]",
		"from x in xs const y = x * 2 let z = y ?? 0 select z",
		"from x in (from y in ys select y) select typeof x === 'number' ? x : -x",
		"from x in xs select x.f(1, ...rest)[0]",
		"",
		"select x",
		"from x in [,] select x",
		"from x in xs select x x",
		"from x in xs where",
		"((((((((",
	} {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, input string) {
		s, err := scanner.Tokenize(scanner.Chars(input, 0))
		if err != nil {
			return
		}
		q, err := Parse(s)
		var (
			me *GrammarMismatchError
			ie *IncompleteParseError
		)
		switch {
		case err == nil:
			if q == nil {
				t.Fatalf("%q: nil query without error", input)
			}
		case errors.As(err, &me):
			if me.Offset < 0 || me.Offset > len(input) {
				t.Fatalf("%q: mismatch offset %d out of range", input, me.Offset)
			}
		case errors.As(err, &ie):
			if ie.Offset < 0 || ie.Offset >= len(input) {
				t.Fatalf("%q: incomplete offset %d out of range", input, ie.Offset)
			}
		default:
			t.Fatalf("%q: unexpected error %T: %v", input, err, err)
		}
	})
}
